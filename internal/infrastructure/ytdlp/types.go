package ytdlp

// Metadata 单个视频的元数据,yt-dlp --dump-single-json输出的子集
type Metadata struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Uploader     string  `json:"uploader"`
	Channel      string  `json:"channel"`
	Duration     float64 `json:"duration"`
	ThumbnailURL string  `json:"thumbnail"`
	WebpageURL   string  `json:"webpage_url"`
	UploadDate   string  `json:"upload_date"`
	Type         string  `json:"_type"`
}

// BestUploader uploader缺失时退回channel字段
func (m *Metadata) BestUploader() string {
	if m.Uploader != "" {
		return m.Uploader
	}
	return m.Channel
}

// FlatEntry flat-playlist模式下的列表条目
// 只含浅层字段,不触发逐条提取
type FlatEntry struct {
	ID       string  `json:"id"`
	URL      string  `json:"url"`
	Title    string  `json:"title"`
	Uploader string  `json:"uploader"`
	Duration float64 `json:"duration"`
}

// Playlist 频道或播放列表的flat枚举结果
type Playlist struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Uploader   string      `json:"uploader"`
	Channel    string      `json:"channel"`
	Type       string      `json:"_type"`
	Entries    []FlatEntry `json:"entries"`
	EntryCount int         `json:"playlist_count"`
}

// BestTitle 列表标题缺失时退回uploader/channel
func (p *Playlist) BestTitle() string {
	if p.Title != "" {
		return p.Title
	}
	if p.Uploader != "" {
		return p.Uploader
	}
	return p.Channel
}

// MediaRequest 媒体下载请求
type MediaRequest struct {
	URL          string // 视频页面URL
	OutputDir    string // 最终落盘目录
	FilenameBase string // 不含扩展名的目标文件名
	Format       string // yt-dlp格式选择表达式,空则用客户端默认
	AudioOnly    bool   // 只提取音频,输出mp3
}

// MediaResult 媒体下载结果
type MediaResult struct {
	FilePath string // 最终文件路径
	FileSize int64  // 字节数
}

// Progress 一行进度输出解析出的瞬时快照
// 总量和速度未必每行都有,缺失时为0
type Progress struct {
	Percent         float64 // 0-100
	TotalBytes      int64   // 预估总字节数
	DownloadedBytes int64   // 按百分比折算的已下载字节数
	SpeedBPS        int64   // 瞬时速度,字节每秒
}
