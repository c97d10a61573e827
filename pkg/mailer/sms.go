package mailer

import (
	"context"

	"go.uber.org/zap"
)

// SMSSender delivers short text messages to a phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) (*SendResult, error)
}

// LogSMSSender has no carrier behind it; messages go to the log.
type LogSMSSender struct {
	log *zap.Logger
}

func NewLogSMSSender(log *zap.Logger) *LogSMSSender {
	return &LogSMSSender{log: log.With(zap.String("mailer", "sms"))}
}

func (s *LogSMSSender) SendSMS(_ context.Context, to, message string) (*SendResult, error) {
	s.log.Info("SMS (not delivered)", zap.String("to", to), zap.String("message", message))
	return &SendResult{Provider: "sms-log", Success: true}, nil
}
