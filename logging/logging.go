// ABOUTME: Logger wraps the standard log package in the component=...
// ABOUTME: action=... key/value convention, dispatched to one of the four
// ABOUTME: logging_config sinks (off/console/file/remote).
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/2389-research/conveyor/config"
)

// Logger is the logging surface every handler flavor and engine component
// receives; it matches registry.Logger and submit.Logger's Printf method
// exactly so neither needs to import this package directly (spec.md §4.3's
// "the executor adapts" narrow-interface discipline extends to logging
// too). Grounded on spec/store/manager.go and spec/store/recovery.go's
// log.Printf("component=... action=...") convention, the only logging
// style anywhere in the retrieved pack.
type Logger struct {
	out  *log.Logger
	file *os.File
}

// New builds a Logger for cfg. "off" discards everything; "console" writes
// to stderr; "file" appends to directory/conveyor.log; "remote" is
// accepted and validated but falls back to a console sink with one
// warning, since no remote log-shipping library exists anywhere in the
// retrieved pack to ground a real implementation on (see DESIGN.md's Open
// Question resolutions).
func New(cfg config.LoggingConfig) (*Logger, error) {
	switch cfg.Type {
	case "off":
		return &Logger{}, nil
	case "console":
		return &Logger{out: log.New(os.Stderr, "", log.LstdFlags)}, nil
	case "file":
		path := filepath.Join(cfg.Directory, "conveyor.log")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logging: open %s: %w", path, err)
		}
		return &Logger{out: log.New(f, "", log.LstdFlags), file: f}, nil
	case "remote":
		l := &Logger{out: log.New(os.Stderr, "", log.LstdFlags)}
		l.Printf("component=logging action=remote_sink_unavailable detail=falling_back_to_console")
		return l, nil
	default:
		return nil, fmt.Errorf("logging: unknown logging_config.type %q", cfg.Type)
	}
}

// Printf writes a formatted line. A nil-sink Logger (the "off" case) is a
// no-op, not an error.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.out == nil {
		return
	}
	l.out.Printf(format, args...)
}

// Close releases the underlying file sink, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Fields renders a flat list of key/value pairs in the
// "component=x action=y k=v" convention, for callers building up a log
// line piece by piece rather than via one Printf format string.
func Fields(pairs ...string) string {
	var sb strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(pairs[i])
		sb.WriteByte('=')
		sb.WriteString(pairs[i+1])
	}
	return sb.String()
}
