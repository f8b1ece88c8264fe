package valueobjects

import (
	"net/url"
	"strings"
)

// Platform 视频平台值对象
// 不可变的值对象,决定元数据和下载走哪条提取路径
type Platform string

const (
	PlatformYouTube  Platform = "youtube"
	PlatformBilibili Platform = "bilibili"
	PlatformGeneric  Platform = "generic" // 其他yt-dlp支持的站点
)

// String 返回平台的字符串表示
func (p Platform) String() string {
	return string(p)
}

// IsValid 检查平台是否有效
func (p Platform) IsValid() bool {
	switch p {
	case PlatformYouTube, PlatformBilibili, PlatformGeneric:
		return true
	default:
		return false
	}
}

// NewPlatform 创建平台值对象,自动验证
func NewPlatform(value string) Platform {
	p := Platform(value)
	if p.IsValid() {
		return p
	}
	return PlatformGeneric
}

// DetectPlatform 根据URL主机名识别平台
func DetectPlatform(rawURL string) Platform {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return PlatformGeneric
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")

	switch {
	case host == "youtu.be" || host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		return PlatformYouTube
	case host == "b23.tv" || host == "bilibili.com" || strings.HasSuffix(host, ".bilibili.com"):
		return PlatformBilibili
	default:
		return PlatformGeneric
	}
}
