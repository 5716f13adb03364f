package notification

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/LohithR22/DoseWise/internal/shared/config"
)

// SMTPProvider delivers messages over plain SMTP with AUTH. It is
// disabled when no credentials are configured; Send then logs and
// reports success so the surrounding service keeps working without a
// mail account.
type SMTPProvider struct {
	cfg config.SMTPConfig
}

// NewSMTPProvider creates an email provider from SMTP settings
func NewSMTPProvider(cfg config.SMTPConfig) *SMTPProvider {
	return &SMTPProvider{cfg: cfg}
}

// Enabled reports whether credentials are configured
func (p *SMTPProvider) Enabled() bool {
	return p.cfg.Username != "" && p.cfg.Password != ""
}

// Send delivers one message to its recipient
func (p *SMTPProvider) Send(ctx context.Context, msg *Message) error {
	if !p.Enabled() {
		fmt.Printf("[EMAIL DISABLED] To: %s, Subject: %s\n", msg.Recipient, msg.Subject)
		return nil
	}
	if msg.Recipient == "" {
		return fmt.Errorf("no recipient configured")
	}

	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		p.cfg.Username, msg.Recipient, msg.Subject, msg.Body,
	)

	addr := fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)
	auth := smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)

	if err := smtp.SendMail(addr, auth, p.cfg.Username, []string{msg.Recipient}, []byte(body)); err != nil {
		return fmt.Errorf("smtp delivery failed: %w", err)
	}
	return nil
}
