package services

import (
	"context"
	"fmt"

	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/ytdlp"
)

// Source 连续任务的枚举源
type Source struct {
	URL      string
	Windowed bool // 播放列表分页可靠,按窗口分批;频道一次性穷举
}

// PlaylistFetcher 枚举条目所需的平台能力
type PlaylistFetcher interface {
	FetchPlaylist(ctx context.Context, url string) (*ytdlp.Playlist, error)
	FetchPlaylistWindow(ctx context.Context, url string, start, end int) (*ytdlp.Playlist, error)
}

// VideoURLFetcher 把平台分页细节挡在任务处理循环之外
// 窗口源任何时刻只在内存保留一窗条目,几万条的列表也不会撑爆内存
//
// 条目顺序以平台返回的自然发布顺序为准;长时间消费过程中
// 远端列表发生增删重排时,游标可能跳过或重复个别条目,
// 这是游标式断点消费对外部列表的固有限制
type VideoURLFetcher struct {
	client     PlaylistFetcher
	windowSize int
}

// NewVideoURLFetcher 创建枚举器,windowSize非正时取50
func NewVideoURLFetcher(client PlaylistFetcher, windowSize int) *VideoURLFetcher {
	if windowSize <= 0 {
		windowSize = 50
	}
	return &VideoURLFetcher{client: client, windowSize: windowSize}
}

// WindowSize 单窗条目数
func (f *VideoURLFetcher) WindowSize() int { return f.windowSize }

// Count 估算源的条目总数,尽力而为
// 窗口源探测首条读取playlist_count;穷举源的总数只能全量
// 枚举得知,返回0表示未知,由调用方走穷举路径定数
func (f *VideoURLFetcher) Count(ctx context.Context, source Source) (int, error) {
	if !source.Windowed {
		return 0, nil
	}
	pl, err := f.client.FetchPlaylistWindow(ctx, source.URL, 1, 1)
	if err != nil {
		return 0, fmt.Errorf("failed to probe playlist size: %w", err)
	}
	return pl.EntryCount, nil
}

// FetchAll 一次性枚举全部条目
func (f *VideoURLFetcher) FetchAll(ctx context.Context, source Source) ([]ytdlp.FlatEntry, error) {
	pl, err := f.client.FetchPlaylist(ctx, source.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate %s: %w", source.URL, err)
	}
	return pl.Entries, nil
}

// FetchWindow 获取从start(0基)开始的size条
// 越过列表末尾返回空切片;分页失败不影响已取回的窗口,
// 调用方按列表到头收尾
func (f *VideoURLFetcher) FetchWindow(ctx context.Context, source Source, start, size int) ([]ytdlp.FlatEntry, error) {
	if size <= 0 {
		size = f.windowSize
	}
	// yt-dlp的playlist-items为1基闭区间
	first := start + 1
	last := start + size
	pl, err := f.client.FetchPlaylistWindow(ctx, source.URL, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch window [%d:%d] of %s: %w", first, last, source.URL, err)
	}
	return pl.Entries, nil
}
