package core

import (
	"io"
	"log/slog"
	"os"
	"path"

	"github.com/encodeous/tint"
	slogmulti "github.com/samber/slog-multi"
)

// NewLogger builds the console logger, and if logPath is not empty, an additional plain text file logger.
// The returned closer releases the log file.
func NewLogger(prefix string, level slog.Level, logPath string, stderr io.Writer) (*slog.Logger, func() error, error) {
	handlers := make([]slog.Handler, 0)
	handlers = append(handlers,
		tint.NewHandler(stderr, &tint.Options{
			Level:        level,
			AddSource:    false,
			CustomPrefix: prefix,
			ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
				if attr.Key == "time" {
					return slog.Attr{}
				}
				return attr
			},
		}))

	closer := func() error { return nil }
	if logPath != "" {
		err := os.MkdirAll(path.Dir(logPath), 0700)
		if err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(logPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
		if err != nil {
			return nil, nil, err
		}
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
		closer = f.Close
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}
