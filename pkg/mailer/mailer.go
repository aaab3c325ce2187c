package mailer

import (
	"context"
	"fmt"

	"ClipServer/config"
	"ClipServer/pkg/logger"

	"gopkg.in/gomail.v2"
)

var global *Mailer

// Mailer 邮件发送封装。只承载尽力而为的通知类邮件，
// 发送失败记日志即止，不向调用方传播错误。
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	on     bool
}

// M 返回全局 Mailer（未初始化时为 nil）
func M() *Mailer {
	return global
}

// ReplaceGlobal 设置全局 Mailer
func ReplaceGlobal(m *Mailer) {
	global = m
}

// Build 基于配置创建 Mailer。Enabled 为 false 时返回关闭状态的实例，
// Send 直接跳过，本地开发不需要起 SMTP。
func Build(cfg config.SMTPConfig) *Mailer {
	m := &Mailer{
		from: cfg.From,
		on:   cfg.Enabled,
	}
	if cfg.Enabled {
		m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return m
}

// Send 发送一封 HTML 邮件，失败只记日志
func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) {
	if m == nil || !m.on {
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		logger.Warn(ctx, "通知邮件发送失败",
			logger.String("to", to),
			logger.String("subject", subject),
			logger.ErrorField(err),
		)
		return
	}

	logger.Info(ctx, "通知邮件发送成功",
		logger.String("to", to),
		logger.String("subject", subject),
	)
}

// SendWelcome 注册成功欢迎邮件
func (m *Mailer) SendWelcome(ctx context.Context, to, handle string) {
	body := fmt.Sprintf("<p>你好 %s，欢迎加入！</p>", handle)
	m.Send(ctx, to, "欢迎加入", body)
}
