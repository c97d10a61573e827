package mailer

import (
	"context"
	"fmt"
	"strings"

	"marketplace-api/pkg/utils"

	"go.uber.org/zap"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// SendResult reports what the provider did with a message.
type SendResult struct {
	Provider  string
	MessageID string
	Success   bool
}

type Sender interface {
	Send(ctx context.Context, msg *Message) (*SendResult, error)
	Name() string
}

// New picks the email provider named in config. Unknown names fall back to the log sender.
func New(cfg utils.EmailConfig, log *zap.Logger) (Sender, error) {
	switch strings.ToLower(cfg.Provider) {
	case "smtp":
		if cfg.Host == "" || cfg.From == "" {
			return nil, fmt.Errorf("smtp provider needs SMTP_HOST and EMAIL_FROM")
		}
		return NewSMTPSender(cfg), nil
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("sendgrid provider needs SENDGRID_API_KEY")
		}
		return NewSendGridSender(cfg), nil
	case "", "log":
		return NewLogSender(log), nil
	default:
		log.Warn("Unknown email provider, falling back to log sender", zap.String("provider", cfg.Provider))
		return NewLogSender(log), nil
	}
}

// OTPMessage renders the email carrying a one-time code.
func OTPMessage(to, code, purposeLabel string, validMinutes int) *Message {
	subject := fmt.Sprintf("Your %s code", purposeLabel)
	text := fmt.Sprintf("Your %s code is %s. It expires in %d minutes.", purposeLabel, code, validMinutes)
	html := fmt.Sprintf(`<div style="font-family:Arial,sans-serif">
<h2>%s</h2>
<p>Use the code below. It expires in %d minutes.</p>
<p style="font-size:28px;letter-spacing:6px;font-weight:bold">%s</p>
<p>If you did not request this, you can ignore this email.</p>
</div>`, subject, validMinutes, code)

	return &Message{To: to, Subject: subject, HTML: html, Text: text}
}
