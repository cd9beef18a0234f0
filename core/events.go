package core

import (
	"context"
	"fmt"
	"log/slog"
)

type RouterEvent int

// trace events

const (
	LsaAccepted RouterEvent = iota
	LsaStale
	SpfComputed
	Converged
	LinkChanged
)

// warn events

const (
	InconsistentState RouterEvent = iota + 1000
)

func (e RouterEvent) String() string {
	switch e {
	case LsaAccepted:
		return "LsaAccepted"
	case LsaStale:
		return "LsaStale"
	case SpfComputed:
		return "SpfComputed"
	case Converged:
		return "Converged"
	case LinkChanged:
		return "LinkChanged"
	case InconsistentState:
		return "InconsistentState"
	}
	return fmt.Sprintf("RouterEvent(%d)", int(e))
}

func logEvent(log *slog.Logger, event RouterEvent, desc string, args ...any) {
	if log == nil {
		return
	}
	level := slog.LevelDebug
	if event >= InconsistentState {
		level = slog.LevelWarn
	}
	log.Log(context.Background(), level, desc, append([]any{"event", event.String()}, args...)...)
}
