package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type recorder struct {
	got []Event
	err error
}

func (r *recorder) Publish(_ context.Context, ev Event) error {
	r.got = append(r.got, ev)
	return r.err
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, logger: zerolog.Nop()}

	ev := New(RecordUpdated, "rec-1", "asha@college.edu", "student:rec-1")
	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "rec-1", string(w.msgs[0].Key))

	var decoded Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, RecordUpdated, decoded.Type)
	assert.Equal(t, "asha@college.edu", decoded.Email)
}

func TestKafkaPublisher_WithoutBrokersIsNoop(t *testing.T) {
	p := NewKafkaPublisher(nil, "record-events", zerolog.Nop())

	assert.NoError(t, p.Publish(context.Background(), New(RecordUpdated, "r", "", "")))
	assert.NoError(t, p.Close())

	var nilPublisher *KafkaPublisher
	assert.NoError(t, nilPublisher.Publish(context.Background(), Event{}))
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("broker down")}, logger: zerolog.Nop()}

	err := p.Publish(context.Background(), New(StudentBanChanged, "r", "", ""))
	assert.ErrorContains(t, err, "broker down")
}

func TestMulti(t *testing.T) {
	a := &recorder{}
	b := &recorder{err: errors.New("b failed")}
	c := &recorder{}

	err := Multi{a, nil, b, c}.Publish(context.Background(), New(StudentPhotoUpdated, "r", "", ""))

	assert.ErrorContains(t, err, "b failed")
	assert.Len(t, a.got, 1)
	assert.Len(t, c.got, 1)
	assert.NoError(t, Nop{}.Publish(context.Background(), Event{}))
}
