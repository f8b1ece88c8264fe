package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/ratelimit"
	"github.com/franklioxygen/MyTube-sub001/pkg/utils"
)

const (
	maxDownloadAttempts = 3
	retryDelay          = 5 * time.Second
	rateLimitDelay      = 30 * time.Second
)

// Client yt-dlp子进程客户端
// 元数据和媒体下载都通过拉起yt-dlp完成,每个进行中的下载
// 按ID登记取消函数,Cancel杀掉对应子进程
type Client struct {
	binaryPath      string
	format          string
	metadataTimeout time.Duration
	limiter         *ratelimit.RateLimiter

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewClient 创建yt-dlp客户端
// qps限制作用于元数据和列表枚举请求,媒体下载不受限
func NewClient(binaryPath, format string, metadataTimeoutSeconds, qps int) *Client {
	if binaryPath == "" {
		binaryPath = "yt-dlp"
	}
	if format == "" {
		format = "bestvideo*+bestaudio/best"
	}
	if metadataTimeoutSeconds <= 0 {
		metadataTimeoutSeconds = 60
	}
	return &Client{
		binaryPath:      binaryPath,
		format:          format,
		metadataTimeout: time.Duration(metadataTimeoutSeconds) * time.Second,
		limiter:         ratelimit.NewRateLimiter(qps),
		cancels:         make(map[string]context.CancelFunc),
	}
}

// CheckBinary 检查yt-dlp可执行文件是否存在
func (c *Client) CheckBinary() error {
	if _, err := exec.LookPath(c.binaryPath); err != nil {
		return fmt.Errorf("yt-dlp binary not found at %q: %w", c.binaryPath, err)
	}
	return nil
}

// FetchMetadata 拉取单个视频的元数据
func (c *Client) FetchMetadata(ctx context.Context, url string) (*Metadata, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.metadataTimeout)
	defer cancel()

	out, err := c.runJSON(ctx, "--dump-single-json", "--no-playlist", url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata for %s: %w", url, err)
	}

	var meta Metadata
	if err := json.Unmarshal(out, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata for %s: %w", url, err)
	}
	return &meta, nil
}

// FetchPlaylist 枚举频道或播放列表的全部条目
// flat模式只取浅层字段,不做逐条提取;大频道耗时由调用方ctx控制
func (c *Client) FetchPlaylist(ctx context.Context, url string) (*Playlist, error) {
	return c.fetchPlaylist(ctx, url, "")
}

// FetchPlaylistWindow 枚举列表的一个窗口,start/end为1基且含端点
func (c *Client) FetchPlaylistWindow(ctx context.Context, url string, start, end int) (*Playlist, error) {
	return c.fetchPlaylist(ctx, url, fmt.Sprintf("%d:%d", start, end))
}

func (c *Client) fetchPlaylist(ctx context.Context, url, items string) (*Playlist, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	args := []string{"--dump-single-json", "--flat-playlist", "--yes-playlist"}
	if items != "" {
		args = append(args, "--playlist-items", items)
	}
	args = append(args, url)

	out, err := c.runJSON(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate %s: %w", url, err)
	}

	var pl Playlist
	if err := json.Unmarshal(out, &pl); err != nil {
		return nil, fmt.Errorf("failed to parse playlist for %s: %w", url, err)
	}
	return &pl, nil
}

// runJSON 执行yt-dlp并返回完整stdout
// dump-single-json输出是单行巨量JSON,不能按行扫描
func (c *Client) runJSON(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.binaryPath, args...)
	out, err := cmd.Output()
	if err != nil {
		return nil, wrapExecError(err)
	}
	return out, nil
}

const tempDirPrefix = ".dl-"

// TempWorkDirName 返回指定下载的工作目录名前缀
// 目录名携带下载ID,崩溃遗留的目录可以按登记行归属后清理
func TempWorkDirName(id string) string {
	return tempDirPrefix + id + "-"
}

// IsTempWorkDir 识别媒体目录下的下载工作目录
func IsTempWorkDir(name string) bool {
	return strings.HasPrefix(name, tempDirPrefix)
}

// FetchMedia 下载媒体文件
// 先写入输出目录下的隐藏工作目录,成功后改名入库,
// 取消或失败时整个工作目录被清除,库内不会留下半截文件
func (c *Client) FetchMedia(ctx context.Context, id string, req MediaRequest, onProgress func(Progress)) (*MediaResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.registerCancel(id, cancel)
	defer c.unregisterCancel(id)

	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	tmpDir, err := os.MkdirTemp(req.OutputDir, TempWorkDirName(id))
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	args := []string{
		req.URL,
		"-o", filepath.Join(tmpDir, "media.%(ext)s"),
		"--no-playlist",
		"--no-mtime",
		"--newline",
	}
	if req.AudioOnly {
		args = append(args, "-x", "--audio-format", "mp3", "--audio-quality", "0")
	} else {
		format := req.Format
		if format == "" {
			format = c.format
		}
		args = append(args, "-f", format, "--merge-output-format", "mp4")
	}

	var lastErr error
	for attempt := 1; attempt <= maxDownloadAttempts; attempt++ {
		lastErr = c.execDownload(ctx, args, onProgress)
		if lastErr == nil {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !isRetryable(lastErr) {
			return nil, lastErr
		}

		delay := retryDelay
		if strings.Contains(lastErr.Error(), "HTTP Error 429") {
			delay = rateLimitDelay
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("download failed after %d attempts: %w", maxDownloadAttempts, lastErr)
	}

	produced, err := largestFile(tmpDir)
	if err != nil {
		return nil, err
	}

	finalPath := utils.EnsureUniquePath(filepath.Join(req.OutputDir, req.FilenameBase+filepath.Ext(produced)))
	if err := os.Rename(produced, finalPath); err != nil {
		return nil, fmt.Errorf("failed to move media into place: %w", err)
	}

	info, err := os.Stat(finalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat media file: %w", err)
	}
	return &MediaResult{FilePath: finalPath, FileSize: info.Size()}, nil
}

// Cancel 取消指定ID的下载,杀掉子进程
// 返回是否存在该下载
func (c *Client) Cancel(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	cancel, ok := c.cancels[id]
	if ok {
		cancel()
		delete(c.cancels, id)
	}
	return ok
}

func (c *Client) registerCancel(id string, cancel context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancels[id] = cancel
}

func (c *Client) unregisterCancel(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cancels, id)
}

func (c *Client) execDownload(ctx context.Context, args []string, onProgress func(Progress)) error {
	cmd := exec.CommandContext(ctx, c.binaryPath, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if p, ok := ParseProgress(scanner.Text()); ok && onProgress != nil {
			onProgress(p)
		}
	}

	if err := cmd.Wait(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%v | %s", err, tail(msg, 500))
		}
		return err
	}
	return nil
}

var progressRegex = regexp.MustCompile(`\[download\]\s+(\d+\.?\d*)%(?:\s+of\s+~?\s*([\d.]+)([KMGT]?i?B))?(?:\s+at\s+([\d.]+)([KMGT]?i?B)/s)?`)

// ParseProgress 解析yt-dlp --newline输出的进度行
// 总量带~为估算值,照常采用;速度为Unknown时置0
func ParseProgress(line string) (Progress, bool) {
	matches := progressRegex.FindStringSubmatch(line)
	if len(matches) == 0 {
		return Progress{}, false
	}
	percent, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return Progress{}, false
	}

	p := Progress{Percent: percent}
	if matches[2] != "" {
		p.TotalBytes = parseByteSize(matches[2], matches[3])
		p.DownloadedBytes = int64(percent / 100 * float64(p.TotalBytes))
	}
	if matches[4] != "" {
		p.SpeedBPS = parseByteSize(matches[4], matches[5])
	}
	return p, true
}

// parseByteSize 把yt-dlp输出的人类可读字节量换算为字节数
func parseByteSize(value, unit string) int64 {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	var mult float64
	switch unit {
	case "B":
		mult = 1
	case "KiB":
		mult = 1 << 10
	case "MiB":
		mult = 1 << 20
	case "GiB":
		mult = 1 << 30
	case "TiB":
		mult = 1 << 40
	case "KB":
		mult = 1e3
	case "MB":
		mult = 1e6
	case "GB":
		mult = 1e9
	case "TB":
		mult = 1e12
	default:
		return 0
	}
	return int64(v * mult)
}

// isRetryable 限流和分片缺失值得重试,其他错误直接上报
func isRetryable(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "HTTP Error 429") || strings.Contains(msg, "fragment not found")
}

// wrapExecError 把ExitError的stderr带进错误信息
func wrapExecError(err error) error {
	if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
		return fmt.Errorf("%v | %s", err, tail(strings.TrimSpace(string(ee.Stderr)), 500))
	}
	return err
}

// largestFile 返回目录中最大的产出文件,跳过yt-dlp的中间文件
func largestFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read temp dir: %w", err)
	}

	var best string
	var bestSize int64 = -1
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".ytdl") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.Size() > bestSize {
			best = filepath.Join(dir, name)
			bestSize = info.Size()
		}
	}
	if best == "" {
		return "", fmt.Errorf("yt-dlp produced no output file")
	}
	return best, nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
