// Package mail 找回码邮件投递
//
// Mailer 是投递抽象：生产环境走 SMTP，开发/测试环境用 LogMailer
// 仅打印日志。业务层只依赖接口，投递提供商可替换。
package mail

import (
	"fmt"
	"log"
	"net/smtp"
)

// Mailer 邮件投递接口
type Mailer interface {
	// SendRecoveryCode 发送密码找回码
	SendRecoveryCode(email, code string) error
}

// ============================================================================
// SMTP 实现
// ============================================================================

// SMTPConfig SMTP 配置
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"-"` // 只从 SMTP_PASSWORD 环境变量读取
	From     string `yaml:"from"`
}

// SMTPMailer 通过 SMTP 发送邮件
type SMTPMailer struct {
	cfg SMTPConfig
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer 创建 SMTP 投递器
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// SendRecoveryCode 发送密码找回码邮件
func (m *SMTPMailer) SendRecoveryCode(email, code string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	msg := []byte("From: " + m.cfg.From + "\r\n" +
		"To: " + email + "\r\n" +
		"Subject: Password recovery code\r\n" +
		"\r\n" +
		"Your password recovery code is: " + code + "\r\n" +
		"It expires in 5 minutes.\r\n")

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{email}, msg); err != nil {
		return fmt.Errorf("send recovery mail to %s: %w", email, err)
	}
	return nil
}

// ============================================================================
// 日志实现（开发/测试）
// ============================================================================

// LogMailer 不真正发信，只打印日志
type LogMailer struct{}

var _ Mailer = (*LogMailer)(nil)

// NewLogMailer 创建日志投递器
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

// SendRecoveryCode 打印找回码（仅开发环境）
func (m *LogMailer) SendRecoveryCode(email, code string) error {
	log.Printf("[mail] recovery code for %s: %s", email, code)
	return nil
}
