package trace

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger.
// Useful for development when you want resolver activity on the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("category", event.Category.String()),
	}
	if event.ResolutionID != "" {
		attrs = append(attrs, slog.String("resolution_id", event.ResolutionID))
	}

	switch {
	case event.Query != nil:
		attrs = append(attrs,
			slog.String("op", event.Query.Op),
			slog.Uint64("status", uint64(event.Query.Status)),
		)
	case event.Parse != nil:
		attrs = append(attrs, slog.String("location", event.Parse.Location))
		if event.Parse.Err != "" {
			attrs = append(attrs, slog.String("error", event.Parse.Err))
		} else {
			attrs = append(attrs, slog.Uint64("port", uint64(event.Parse.Port)))
		}
	case event.Port != nil:
		attrs = append(attrs,
			slog.Uint64("index", uint64(event.Port.Index)),
			slog.Bool("is_hub", event.Port.IsHub),
			slog.Uint64("address", uint64(event.Port.Address)),
			slog.Uint64("connection", uint64(event.Port.Connection)),
		)
	case event.Resolve != nil:
		if event.Resolve.Err != "" {
			attrs = append(attrs, slog.String("error", event.Resolve.Err))
		} else {
			attrs = append(attrs,
				slog.Uint64("port", uint64(event.Resolve.Port)),
				slog.Uint64("address", uint64(event.Resolve.Address)),
			)
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "usb topology trace", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
