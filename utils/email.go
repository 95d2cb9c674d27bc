package utils

import (
	"fmt"
	"html"
	"net/smtp"
	"os"

	"go.uber.org/zap"
)

type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func GetEmailConfig() EmailConfig {
	return EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends transactional email over SMTP. A Mailer without a host is a
// no-op so local setups do not need a relay.
type Mailer struct {
	config EmailConfig
	logger *zap.Logger
	send   sendFunc
}

func NewMailer(config EmailConfig, logger *zap.Logger) *Mailer {
	return &Mailer{config: config, logger: logger, send: smtp.SendMail}
}

func NewMailerFromEnv(logger *zap.Logger) *Mailer {
	return NewMailer(GetEmailConfig(), logger)
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.config.Host != "" && m.config.Port != "" && m.config.From != ""
}

func (m *Mailer) SendEmail(to, subject, htmlBody string) error {
	if !m.Enabled() {
		return fmt.Errorf("SMTP not configured")
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		m.config.From, to, subject)
	msg := []byte(headers + htmlBody)

	var auth smtp.Auth
	if m.config.Username != "" && m.config.Password != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	addr := m.config.Host + ":" + m.config.Port
	return m.send(addr, auth, m.config.From, []string{to}, msg)
}

// ClaimReceipt is what a member is told after a successful claim.
type ClaimReceipt struct {
	Email        string
	TenantName   string
	Points       int
	MerchantName *string
}

func claimReceiptBody(r ClaimReceipt) (string, string) {
	from := "a LifeStyle Network partner"
	if r.MerchantName != nil && *r.MerchantName != "" {
		from = *r.MerchantName
	}
	subject := fmt.Sprintf("You earned %d points on %s", r.Points, r.TenantName)
	body := fmt.Sprintf(`<h2>Points added!</h2>
<p>You just claimed <strong>%d points</strong> from %s.</p>
<p>Open your %s wallet to see your balance across the LifeStyle Network.</p>
<p>The LifeStyle Network Team</p>`, r.Points, html.EscapeString(from), html.EscapeString(r.TenantName))
	return subject, body
}

// SendClaimReceipt emails the receipt in the background. Failures are logged
// and never affect the claim.
func (m *Mailer) SendClaimReceipt(r ClaimReceipt) {
	if !m.Enabled() || r.Email == "" {
		return
	}
	go func() {
		subject, body := claimReceiptBody(r)
		if err := m.SendEmail(r.Email, subject, body); err != nil {
			m.logger.Warn("failed to send claim receipt", zap.String("email", r.Email), zap.Error(err))
		}
	}()
}
