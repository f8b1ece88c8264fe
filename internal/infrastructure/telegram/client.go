package telegram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/franklioxygen/MyTube-sub001/internal/infrastructure/config"
	"github.com/franklioxygen/MyTube-sub001/pkg/logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Client Telegram通知客户端,只负责单向推送
type Client struct {
	config *config.TelegramConfig
	bot    *tgbotapi.BotAPI
}

// NewClient 创建Telegram客户端
// 连接失败只降级为不发通知,不阻止进程启动
func NewClient(cfg *config.TelegramConfig) *Client {
	if !cfg.Enabled || cfg.BotToken == "" {
		return &Client{config: cfg}
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Error("Failed to create Telegram bot", "error", err)
		return &Client{config: cfg}
	}

	logger.Info("Telegram bot connected successfully", "username", bot.Self.UserName)
	return &Client{config: cfg, bot: bot}
}

// cleanUTF8 确保文本是有效的UTF-8编码
func cleanUTF8(text string) string {
	if !utf8.ValidString(text) {
		return strings.ToValidUTF8(text, "?")
	}
	return text
}

func (c *Client) sendMessage(chatID int64, text string) error {
	if c.bot == nil {
		return fmt.Errorf("telegram bot not initialized")
	}

	msg := tgbotapi.NewMessage(chatID, cleanUTF8(text))
	msg.ParseMode = "Markdown"

	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// SendNotification 向所有配置的chat推送通知
func (c *Client) SendNotification(msg *NotificationMessage) error {
	if !c.config.Enabled || c.bot == nil || len(c.config.ChatIDs) == 0 {
		return nil
	}

	text := c.formatNotification(msg)

	for _, chatID := range c.config.ChatIDs {
		if err := c.sendMessage(chatID, text); err != nil {
			logger.Error("Failed to send notification", "chatID", chatID, "error", err)
			continue
		}
		logger.Debug("Notification sent", "chatID", chatID, "type", msg.Type)
	}
	return nil
}

func (c *Client) formatNotification(msg *NotificationMessage) string {
	ts := msg.Timestamp.Format("2006-01-02 15:04:05")

	switch msg.Type {
	case NotifyDownloadCompleted:
		return fmt.Sprintf("✅ *下载完成*\n\n📁 `%s`\n⏰ %s\n%s", msg.Title, ts, msg.Content)

	case NotifyDownloadFailed:
		return fmt.Sprintf("❌ *下载失败*\n\n📁 `%s`\n⏰ %s\n🚨 `%s`", msg.Title, ts, msg.Content)

	case NotifyTaskCompleted:
		return fmt.Sprintf("🏁 *任务完成*\n\n📋 `%s`\n⏰ %s\n%s", msg.Title, ts, msg.Content)

	case NotifyTaskCancelled:
		return fmt.Sprintf("🛑 *任务取消*\n\n📋 `%s`\n⏰ %s\n%s", msg.Title, ts, msg.Content)

	default:
		return fmt.Sprintf("*%s*\n\n%s\n\n⏰ %s", msg.Title, msg.Content, ts)
	}
}
