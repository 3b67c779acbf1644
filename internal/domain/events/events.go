package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TypeCompleted = "evaluation.completed"
	TypeFailed    = "evaluation.failed"
	TypeSkipped   = "evaluation.skipped"
)

// Event is published once per file after its pipeline run ends.
type Event struct {
	Type         string     `json:"type"`
	FilePath     string     `json:"file_path"`
	Quest        string     `json:"quest,omitempty"`
	EvaluationID *uuid.UUID `json:"evaluation_id,omitempty"`
	Grade        string     `json:"grade,omitempty"`
	Score        int        `json:"score,omitempty"`
	UsedFallback bool       `json:"used_fallback,omitempty"`
	Corrected    bool       `json:"corrected,omitempty"`
	Error        string     `json:"error,omitempty"`
	OccurredAt   time.Time  `json:"occurred_at"`
}

type Bus interface {
	Publish(ctx context.Context, ev Event) error
	StartForwarder(ctx context.Context, onEvent func(ev Event)) error
	Close() error
}

type noopBus struct{}

// NewNoop drops every event.
func NewNoop() Bus { return noopBus{} }

func (noopBus) Publish(context.Context, Event) error { return nil }

func (noopBus) StartForwarder(ctx context.Context, onEvent func(ev Event)) error { return nil }

func (noopBus) Close() error { return nil }
