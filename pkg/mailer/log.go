package mailer

import (
	"context"

	"go.uber.org/zap"
)

// LogSender writes the message to the log instead of delivering it. Local development only.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log.With(zap.String("mailer", "log"))}
}

func (s *LogSender) Name() string { return "log" }

func (s *LogSender) Send(_ context.Context, msg *Message) (*SendResult, error) {
	s.log.Info("Email (not delivered)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Text),
	)
	return &SendResult{Provider: s.Name(), Success: true}, nil
}
