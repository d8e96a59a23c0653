// Package notification delivers SMS notifications for appointment lifecycle
// events. The default sender only logs; a real gateway integration plugs in
// behind the SMSSender interface.
package notification

import (
	"context"

	"github.com/rs/zerolog"
)

// SMSSender is the interface for sending SMS messages to a user.
type SMSSender interface {
	SendSMS(ctx context.Context, userID, body string) error
}

// LogSender writes every message to the structured log instead of a
// carrier. Used in development and as the default wiring.
type LogSender struct {
	logger zerolog.Logger
}

func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendSMS(_ context.Context, userID, body string) error {
	s.logger.Info().
		Str("user_id", userID).
		Str("body", body).
		Msg("sms notification")
	return nil
}
