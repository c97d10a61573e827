package mailer

import (
	"context"
	"fmt"

	"marketplace-api/pkg/utils"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendgridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type SendGridSender struct {
	client   sendgridClient
	from     string
	fromName string
}

func NewSendGridSender(cfg utils.EmailConfig) *SendGridSender {
	return &SendGridSender{
		client:   sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:     cfg.From,
		fromName: cfg.FromName,
	}
}

func (s *SendGridSender) Name() string { return "sendgrid" }

func (s *SendGridSender) Send(ctx context.Context, msg *Message) (*SendResult, error) {
	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail("", msg.To)
	m := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)

	// transactional mail: no link rewriting, no open pixel
	tracking := mail.NewTrackingSettings()
	click := mail.NewClickTrackingSetting()
	click.SetEnable(false)
	click.SetEnableText(false)
	tracking.SetClickTracking(click)
	open := mail.NewOpenTrackingSetting()
	open.SetEnable(false)
	tracking.SetOpenTracking(open)
	m.SetTrackingSettings(tracking)

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return &SendResult{Provider: s.Name()}, fmt.Errorf("sendgrid send to %s: %w", msg.To, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &SendResult{Provider: s.Name()}, fmt.Errorf("sendgrid api error: %d", resp.StatusCode)
	}

	var messageID string
	if ids, ok := resp.Headers["X-Message-Id"]; ok && len(ids) > 0 {
		messageID = ids[0]
	}
	return &SendResult{Provider: s.Name(), MessageID: messageID, Success: true}, nil
}
