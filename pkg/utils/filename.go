package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const maxFilenameRunes = 150

var (
	unsafeChars  = regexp.MustCompile(`[<>:"/\\|?*]`)
	controlChars = regexp.MustCompile(`[\x00-\x1f]`)
	multiSpace   = regexp.MustCompile(`\s+`)
)

// SanitizeFilename 清理文件名中的非法字符并限制长度
func SanitizeFilename(name string) string {
	safe := unsafeChars.ReplaceAllString(name, "_")
	safe = controlChars.ReplaceAllString(safe, "")
	safe = multiSpace.ReplaceAllString(safe, " ")
	safe = strings.TrimSpace(safe)
	safe = strings.Trim(safe, ".")

	runes := []rune(safe)
	if len(runes) > maxFilenameRunes {
		safe = strings.TrimSpace(string(runes[:maxFilenameRunes]))
	}
	if safe == "" {
		return "untitled"
	}
	return safe
}

// MediaFilename 生成"标题 - 上传者"形式的文件名,不含扩展名
// 同一元数据总是产出同一文件名
func MediaFilename(title, uploader string) string {
	title = strings.TrimSpace(title)
	uploader = strings.TrimSpace(uploader)

	base := title
	if base == "" {
		base = "untitled"
	}
	if uploader != "" {
		base = base + " - " + uploader
	}
	return SanitizeFilename(base)
}

// EnsureUniquePath 路径已存在时追加" (N)"后缀
func EnsureUniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
