package logs

import (
	"context"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

type Logger = *slog.Logger

func (Module) Logger(
	writer Writer,
) Logger {
	var handlers []slog.Handler

	underSystemd := isSystemdService()
	var terminal slog.Handler
	if !underSystemd {
		terminal = newTerminalHandler(writer)
		handlers = append(handlers, terminal)
	}

	if underSystemd || *journalSwitch {
		journal, err := newJournalHandler()
		if err != nil {
			if terminal != nil {
				record := slog.NewRecord(time.Now(), slog.LevelWarn, "new systemd journal handler", 0)
				record.Add("error", err)
				_ = terminal.Handle(context.Background(), record)
			}
		} else {
			handlers = append(handlers, journal)
		}
	}

	return slog.New(&Handler{
		Handler: slogmulti.Fanout(handlers...),
	})
}

func newTerminalHandler(writer Writer) slog.Handler {
	return slog.NewTextHandler(
		writer,
		&slog.HandlerOptions{
			Level: level,
		},
	)
}

func newJournalHandler() (slog.Handler, error) {
	return slogjournal.NewHandler(&slogjournal.Options{
		ReplaceGroup: func(key string) string {
			return toJournalKey(key)
		},
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			a.Key = toJournalKey(a.Key)
			return a
		},
	})
}

// toJournalKey maps a slog key to the journal field alphabet.
func toJournalKey(str string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' ||
			r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, strings.ToUpper(str))
}

func isSystemdService() bool {
	content, err := os.ReadFile("/proc/self/cgroup")
	if err != nil {
		return false
	}
	parts := strings.Split(strings.TrimSpace(string(content)), ":")
	if len(parts) < 3 {
		return false
	}
	return strings.HasSuffix(path.Dir(parts[2]), ".service")
}
