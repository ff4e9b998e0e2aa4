package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
)

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

var (
	providerMu sync.RWMutex
	provider   LoggerProvider = NewZerologProvider(os.Stderr, LevelWarn)
)

// SetProvider replaces the package-level provider.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
}

// GetLogger returns the default logger of the package-level provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLogger()
}

// GetLoggerWithName returns a component logger of the package-level provider.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLoggerWithName(name)
}

// Enabled reports whether the package-level provider emits level. It is
// cheaper than GetLogger().Enabled on hot paths.
func Enabled(level Level) bool {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.Enabled(level)
}

// Setup installs a zerolog provider writing JSON to stderr at the given level,
// routes errors.Warn into it and enables cockroach stack extraction.
func Setup(loglevel string) error {
	return SetupWriter(os.Stderr, loglevel)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(w io.Writer, loglevel string) error {
	level, err := ToLogLevel(loglevel)
	if err != nil {
		return err
	}

	zerolog.ErrorStackMarshaler = extractStacktrace
	p := NewZerologProvider(w, level)
	SetProvider(p)

	warnLogger := NewZerologLogger(w, level).Zerolog()
	serrors.SetZerologWarnFunc(func(warning error) {
		ev := warnLogger.Warn()
		if m, ok := warning.(zerolog.LogObjectMarshaler); ok {
			ev = ev.EmbedObject(m)
		}
		ev.Msg(warning.Error())
	})
	return nil
}

// ToLogLevel parses a level name.
func ToLogLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, serrors.NewValidationError("log.level", fmt.Sprintf("invalid log level: %s", level), level)
	}
}

// ErrAttr pairs an error with the standard error key for use as fields.
func ErrAttr(err error) []any {
	return []any{ErrAttrKey, err}
}

func extractStacktrace(err error) interface{} {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return fmt.Sprintf("%+v", err)
}
