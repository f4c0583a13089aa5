package mailer

import (
	"context"
	"fmt"
	"net/mail"
	"seclink_backend/internal/config"
	"seclink_backend/pkg/logger"

	"go.uber.org/zap"
)

type Message struct {
	To       []mail.Address
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer 邮件发送接口
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// New 根据配置选择发送驱动，未配置 SendGrid Key 时退回控制台输出
func New(cfg *config.MailConfig) Mailer {
	if cfg.Driver == "sendgrid" {
		if cfg.SendgridAPIKey != "" {
			return NewSendgridMailer(cfg.SendgridAPIKey, cfg.AppName, cfg.FromEmail)
		}
		logger.Log.Warn("mail driver is sendgrid but no api key configured, using console mailer")
	}
	return &ConsoleMailer{}
}

// ConsoleMailer 开发环境使用，邮件内容写入日志
type ConsoleMailer struct{}

func (m *ConsoleMailer) Send(ctx context.Context, msg *Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("mail %q has no recipients", msg.Subject)
	}
	to := make([]string, 0, len(msg.To))
	for _, a := range msg.To {
		to = append(to, a.String())
	}
	logger.Log.Info("email",
		zap.Strings("to", to),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.TextBody),
	)
	return nil
}
