package domain

import (
	"encoding/json"
	"fmt"
)

// EventKind tags a message coming from a hosted game.
type EventKind string

const (
	EventScore       EventKind = "score"
	EventProgress    EventKind = "progress"
	EventAchievement EventKind = "achievement"
	EventComplete    EventKind = "complete"
	// EventRestart is sent by the hosting screen, not by the game.
	EventRestart EventKind = "restart"
)

// GameEvent is one message on the hosted game channel.
type GameEvent interface {
	Kind() EventKind
}

// ScoreEvent updates the running score.
type ScoreEvent struct {
	Score int `json:"score"`
}

// ProgressEvent carries an opaque payload that is only logged.
type ProgressEvent struct {
	Data json.RawMessage
}

// AchievementEvent is surfaced to the learner.
type AchievementEvent struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// CompleteEvent ends the session. Nil members fall back to recorder defaults.
type CompleteEvent struct {
	Score        *int     `json:"score,omitempty"`
	MaxScore     *int     `json:"maxScore,omitempty"`
	Difficulty   *string  `json:"difficulty,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

// RestartEvent asks the recorder to start the session over.
type RestartEvent struct{}

func (ScoreEvent) Kind() EventKind       { return EventScore }
func (ProgressEvent) Kind() EventKind    { return EventProgress }
func (AchievementEvent) Kind() EventKind { return EventAchievement }
func (CompleteEvent) Kind() EventKind    { return EventComplete }
func (RestartEvent) Kind() EventKind     { return EventRestart }

type gameMessage struct {
	Type EventKind       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ParseGameMessage decodes a `{"type": ..., "data": ...}` envelope into a typed event.
func ParseGameMessage(raw []byte) (GameEvent, error) {
	var msg gameMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("decode game message: %w", err)
	}
	switch msg.Type {
	case EventScore:
		var ev ScoreEvent
		if err := decodeData(msg.Data, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case EventProgress:
		return ProgressEvent{Data: msg.Data}, nil
	case EventAchievement:
		var ev AchievementEvent
		if err := decodeData(msg.Data, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case EventComplete:
		var ev CompleteEvent
		if err := decodeData(msg.Data, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case EventRestart:
		return RestartEvent{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
}

func decodeData(data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode game message data: %w", err)
	}
	return nil
}
