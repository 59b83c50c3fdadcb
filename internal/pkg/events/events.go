// Package events publishes record change notifications to side channels.
package events

import (
	"context"
	"errors"
	"time"
)

// Type names a record change
type Type string

const (
	RecordUpdated           Type = "record.updated"
	RecordCounselingUpdated Type = "record.counseling_updated"
	StudentBanChanged       Type = "student.ban_changed"
	StudentPhotoUpdated     Type = "student.photo_updated"
)

// Event describes one change to a student's record
type Event struct {
	Type     Type              `json:"type"`
	RecordID string            `json:"recordId"`
	Email    string            `json:"email,omitempty"`
	Actor    string            `json:"actor,omitempty"`
	At       time.Time         `json:"at"`
	Data     map[string]string `json:"data,omitempty"`
}

// New creates an event stamped with the current time
func New(t Type, recordID, email, actor string) Event {
	return Event{Type: t, RecordID: recordID, Email: email, Actor: actor, At: time.Now().UTC()}
}

// Publisher delivers events. Callers log a returned error and carry on.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop discards every event
type Nop struct{}

// Publish implements Publisher
func (Nop) Publish(context.Context, Event) error { return nil }

// Multi fans an event out to every publisher and joins their errors
type Multi []Publisher

// Publish implements Publisher
func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
