package email

import (
	"context"
	"log/slog"
)

// Sender delivers a rendered email
type Sender interface {
	Send(ctx context.Context, to string, content Content) error
}

// LogSender writes emails to the log instead of delivering them. It stands in
// for a real provider until one is integrated; the dispatch path is identical.
type LogSender struct {
	from   string
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger, from string) *LogSender {
	return &LogSender{
		from:   from,
		logger: logger,
	}
}

func (s *LogSender) Send(_ context.Context, to string, content Content) error {
	preview := content.Text
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}

	s.logger.Info("EMAIL SENT",
		"from", s.from,
		"to", to,
		"subject", content.Subject,
		"text", preview,
	)
	return nil
}
