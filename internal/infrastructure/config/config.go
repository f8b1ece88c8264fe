package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Download    DownloadConfig    `mapstructure:"download"`
	Task        TaskConfig        `mapstructure:"task"`
	Ytdlp       YtdlpConfig       `mapstructure:"ytdlp"`
	Telegram    TelegramConfig    `mapstructure:"telegram"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type StorageConfig struct {
	DataDir  string `mapstructure:"data_dir"`  // 数据库与日志目录
	MediaDir string `mapstructure:"media_dir"` // 媒体文件落盘目录
}

type DownloadConfig struct {
	Concurrency int `mapstructure:"concurrency"` // 同时下载数上限,默认3
	QueueSize   int `mapstructure:"queue_size"`  // 排队上限,0表示不限制
}

type TaskConfig struct {
	ItemDelaySeconds int `mapstructure:"item_delay_seconds"` // 连续任务逐条下载间隔
	WindowSize       int `mapstructure:"window_size"`        // 播放列表单次处理窗口大小
}

type YtdlpConfig struct {
	BinaryPath             string `mapstructure:"binary_path"`
	Format                 string `mapstructure:"format"`
	MetadataTimeoutSeconds int    `mapstructure:"metadata_timeout_seconds"`
	QPS                    int    `mapstructure:"qps"` // 元数据请求每秒限速
}

type TelegramConfig struct {
	Enabled  bool    `mapstructure:"enabled"`
	BotToken string  `mapstructure:"bot_token"`
	ChatIDs  []int64 `mapstructure:"chat_ids"`
}

type MaintenanceConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	ClearFinishedCron    string `mapstructure:"clear_finished_cron"`     // cron表达式,如 "0 4 * * *" 每天凌晨4点
	HistoryRetentionDays int    `mapstructure:"history_retention_days"`  // 0表示永久保留
	QueuedRetentionDays  int    `mapstructure:"queued_retention_days"`   // 排队记录保留天数
	RecoverActiveOnStart bool   `mapstructure:"recover_active_on_start"` // 启动时恢复active任务
}

type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	Output    string `mapstructure:"output"`
	FilePath  string `mapstructure:"file_path"`
	Colorize  bool   `mapstructure:"colorize"`
	AddSource bool   `mapstructure:"add_source"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// 设置默认值
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")

	viper.SetDefault("storage.data_dir", "./data")
	viper.SetDefault("storage.media_dir", "./media")

	viper.SetDefault("download.concurrency", 3)
	viper.SetDefault("download.queue_size", 0)

	viper.SetDefault("task.item_delay_seconds", 3)
	viper.SetDefault("task.window_size", 50)

	viper.SetDefault("ytdlp.binary_path", "yt-dlp")
	viper.SetDefault("ytdlp.format", "bestvideo*+bestaudio/best")
	viper.SetDefault("ytdlp.metadata_timeout_seconds", 60)
	viper.SetDefault("ytdlp.qps", 5)

	viper.SetDefault("telegram.enabled", false)

	viper.SetDefault("maintenance.enabled", true)
	viper.SetDefault("maintenance.clear_finished_cron", "0 4 * * *")
	viper.SetDefault("maintenance.history_retention_days", 0)
	viper.SetDefault("maintenance.queued_retention_days", 7)
	viper.SetDefault("maintenance.recover_active_on_start", true)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
	viper.SetDefault("log.output", "console")
	viper.SetDefault("log.file_path", "./data/logs/server.log")
	viper.SetDefault("log.colorize", true)
	viper.SetDefault("log.add_source", false)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
