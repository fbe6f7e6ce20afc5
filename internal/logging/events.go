package logging

import "log/slog"

// Event classifies a warning or error for operators: what happened, what to
// check, and what the client or the host experienced as a result.
type Event struct {
	Type   string
	Hint   string
	Impact string
}

var (
	EventMixFailed = Event{
		Type:   "mix_failed",
		Hint:   "check logs for details",
		Impact: "request answered with an error",
	}
	EventStreamFailed = Event{
		Type:   "stream_failed",
		Hint:   "client likely disconnected",
		Impact: "response truncated; scratch files are still removed",
	}
	EventScratchCleanupFailed = Event{
		Type:   "scratch_cleanup_failed",
		Hint:   "check scratch_dir permissions",
		Impact: "disk space not reclaimed until the next sweep",
	}
	EventScratchSweepFailed = Event{
		Type:   "scratch_sweep_failed",
		Hint:   "check scratch_dir exists and is writable",
		Impact: "abandoned scratch files accumulate",
	}
	EventHandlerPanic = Event{
		Type:   "handler_panic",
		Hint:   "report the stack trace",
		Impact: "request answered with a generic 500",
	}
)

// WithHint returns a copy of e with a request-specific hint.
func (e Event) WithHint(hint string) Event {
	if hint != "" {
		e.Hint = hint
	}
	return e
}

func (e Event) attrs(extra []Attr) []any {
	args := make([]any, 0, len(extra)+3)
	args = append(args,
		slog.String(FieldEventType, e.Type),
		slog.String(FieldErrorHint, e.Hint),
	)
	if e.Impact != "" {
		args = append(args, slog.String(FieldImpact, e.Impact))
	}
	for _, attr := range extra {
		args = append(args, attr)
	}
	return args
}

// WarnEvent logs msg at warn level tagged with ev.
func WarnEvent(logger *slog.Logger, msg string, ev Event, attrs ...Attr) {
	if logger == nil {
		return
	}
	logger.Warn(msg, ev.attrs(attrs)...)
}

// ErrorEvent logs msg at error level tagged with ev.
func ErrorEvent(logger *slog.Logger, msg string, ev Event, attrs ...Attr) {
	if logger == nil {
		return
	}
	logger.Error(msg, ev.attrs(attrs)...)
}
