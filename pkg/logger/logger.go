package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Options 日志初始化选项
type Options struct {
	Level     string // debug/info/warn/error,默认info
	Output    string // console/file/both,默认console
	Format    string // text/json,默认text
	FilePath  string // Output为file或both时必填
	Colorize  bool   // 控制台彩色输出
	AddSource bool   // 记录调用位置
}

var (
	mu  sync.Mutex
	std = newDefault()
)

// newDefault 返回未经Init时的兜底日志器
func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// Init 按配置初始化全局日志器,进程启动时调用一次
func Init(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	level := opts.Level
	if level == "" {
		level = "info"
	}
	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	out, err := buildOutput(opts)
	if err != nil {
		return err
	}

	std.SetLevel(parsed)
	std.SetOutput(out)
	std.SetReportCaller(opts.AddSource)

	switch strings.ToLower(opts.Format) {
	case "json":
		std.SetFormatter(&logrus.JSONFormatter{})
	default:
		std.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   opts.Colorize,
			DisableColors: !opts.Colorize,
		})
	}

	return nil
}

// buildOutput 根据Output选项构造日志写入目标
func buildOutput(opts Options) (io.Writer, error) {
	switch strings.ToLower(opts.Output) {
	case "", "console":
		return os.Stdout, nil
	case "file":
		return openLogFile(opts.FilePath)
	case "both":
		f, err := openLogFile(opts.FilePath)
		if err != nil {
			return nil, err
		}
		return io.MultiWriter(os.Stdout, f), nil
	default:
		return nil, fmt.Errorf("unknown log output %q", opts.Output)
	}
}

func openLogFile(path string) (io.Writer, error) {
	if path == "" {
		return nil, fmt.Errorf("log file path is required for file output")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}

// SetLevel 运行期动态调整日志级别
func SetLevel(level string) error {
	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	std.SetLevel(parsed)
	return nil
}

// fields 将键值对参数转换为logrus.Fields,值按键名自动脱敏
func fields(args []interface{}) logrus.Fields {
	if len(args) == 0 {
		return nil
	}
	sanitized := SanitizeArgs(args...)
	f := make(logrus.Fields, len(sanitized)/2+1)
	for i := 0; i < len(sanitized); i += 2 {
		key, ok := sanitized[i].(string)
		if !ok {
			key = fmt.Sprintf("arg%d", i)
		}
		if i+1 < len(sanitized) {
			f[key] = sanitized[i+1]
		} else {
			f[key] = "(MISSING)"
		}
	}
	return f
}

func Debug(msg string, args ...interface{}) {
	std.WithFields(fields(args)).Debug(msg)
}

func Info(msg string, args ...interface{}) {
	std.WithFields(fields(args)).Info(msg)
}

func Warn(msg string, args ...interface{}) {
	std.WithFields(fields(args)).Warn(msg)
}

func Error(msg string, args ...interface{}) {
	std.WithFields(fields(args)).Error(msg)
}
