package app

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"kidlearn-service/internal/metrics"
)

// EventPublisher fans completion events out to other consumers (e.g., Redis pub/sub).
type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// Channels used for completion events.
const (
	ChannelQuizCompleted = "quiz-completed"
	ChannelGameCompleted = "game-completed"
)

// Deps carries the ambient collaborators shared by the services. Zero values are
// replaced with working defaults.
type Deps struct {
	Log       logrus.FieldLogger
	Metrics   *metrics.Metrics
	Publisher EventPublisher
	Retry     RetryPolicy
	Now       func() time.Time
	NewID     func() string
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		d.Log = l
	}
	if d.Publisher == nil {
		d.Publisher = nopPublisher{}
	}
	if d.Retry == (RetryPolicy{}) {
		d.Retry = DefaultRetryPolicy
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = func() string { return uuid.NewString() }
	}
	return d
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) error { return nil }
