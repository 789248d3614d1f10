package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// newLogger creates the application logger writing to w and, when logPath is
// set, appending to that file too. The returned closer releases the file.
func newLogger(w io.Writer, logPath, logLevel string, pretty bool) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(logLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.WarnLevel
	}

	var closer io.Closer = io.NopCloser(nil)
	writers := io.MultiWriter(w)
	if len(logPath) > 0 {
		file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("cannot open log file: %w", err)
		}
		closer = file
		writers = io.MultiWriter(w, file)
	}
	if pretty {
		writers = zerolog.ConsoleWriter{Out: writers}
	}
	return zerolog.New(writers).Level(level).With().Timestamp().Logger(), closer, nil
}
