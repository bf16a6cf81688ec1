package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/Mojasagwe/taxiRankApp/domain"
)

// New creates a JSON slog logger configured at the provided level. If the
// level string is invalid it defaults to info.
func New(level string) *slog.Logger {
	lvl := new(slog.LevelVar)
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl.Set(slog.LevelInfo)
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}

// Discard returns a logger that drops all output. Useful for tests.
func Discard() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

// EventSink publishes domain events as structured log records.
type EventSink struct {
	logger *slog.Logger
}

// NewEventSink creates an event sink backed by the given logger.
func NewEventSink(logger *slog.Logger) *EventSink {
	return &EventSink{logger: logger}
}

// Publish implements domain.EventSink.
func (s *EventSink) Publish(ctx context.Context, event *domain.Event) {
	if event == nil {
		return
	}
	attrs := []any{
		slog.String("event", string(event.Type)),
		slog.Bool("success", event.Success),
	}
	if event.UserID != 0 {
		attrs = append(attrs, slog.Uint64("user_id", uint64(event.UserID)))
	}
	if event.Email != "" {
		attrs = append(attrs, slog.String("email", event.Email))
	}
	for k, v := range event.Metadata {
		attrs = append(attrs, slog.Any(k, v))
	}
	if !event.Success {
		if event.ErrorMsg != "" {
			attrs = append(attrs, slog.String("error", event.ErrorMsg))
		}
		s.logger.WarnContext(ctx, "event", attrs...)
		return
	}
	s.logger.InfoContext(ctx, "event", attrs...)
}
