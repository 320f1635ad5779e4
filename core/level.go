package core

// Level specifies the severity of a log message. The seven values mirror the
// canonical trace/debug/info/warn/err/critical/off ladder used throughout the
// async core; Off never admits a message past a logger's threshold check.
type Level int

const (
	// TraceLevel is the most detailed logging level.
	TraceLevel Level = iota

	// DebugLevel is for debugging information.
	DebugLevel

	// InfoLevel is for informational messages.
	InfoLevel

	// WarnLevel is for warnings.
	WarnLevel

	// ErrorLevel is for errors.
	ErrorLevel

	// CriticalLevel is for events that require immediate attention.
	CriticalLevel

	// OffLevel disables logging entirely; no message is ever enabled at it.
	OffLevel
)

// String renders the level as its short lowercase name ("trace", "debug",
// "info", "warn", "error", "critical", "off").
func (l Level) String() string {
	switch l {
	case TraceLevel:
		return "trace"
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	case CriticalLevel:
		return "critical"
	case OffLevel:
		return "off"
	default:
		return "unknown"
	}
}
