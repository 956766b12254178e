package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-review/internal/types"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu      sync.Mutex
	got     []types.BulletFeedback
	err     error
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (r *recordingSink) Send(ctx context.Context, fb types.BulletFeedback) error {
	if r.started != nil {
		r.once.Do(func() { close(r.started) })
	}
	if r.release != nil {
		<-r.release
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, fb)
	return r.err
}

func (r *recordingSink) events() []types.BulletFeedback {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.BulletFeedback(nil), r.got...)
}

func sampleFeedback(index int) types.BulletFeedback {
	return types.BulletFeedback{
		SessionID:   uuid.New(),
		RoleKey:     "abc123",
		BulletIndex: index,
		Source:      "ai",
		Text:        "Cut costs",
		Vote:        types.VoteUp,
		At:          time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
	}
}

func TestEmitter_DeliversInOrder(t *testing.T) {
	sink := &recordingSink{}
	e := NewEmitter(sink, 8, nil)

	for i := 0; i < 5; i++ {
		assert.True(t, e.Emit(sampleFeedback(i)))
	}
	e.Close()

	got := sink.events()
	require.Len(t, got, 5)
	for i, fb := range got {
		assert.Equal(t, i, fb.BulletIndex)
	}
	assert.Zero(t, e.Dropped())
}

func TestEmitter_DropsWhenFull(t *testing.T) {
	sink := &recordingSink{started: make(chan struct{}), release: make(chan struct{})}
	e := NewEmitter(sink, 1, nil)

	require.True(t, e.Emit(sampleFeedback(0)))
	<-sink.started
	require.True(t, e.Emit(sampleFeedback(1)))

	done := make(chan bool)
	go func() { done <- e.Emit(sampleFeedback(2)) }()
	select {
	case accepted := <-done:
		assert.False(t, accepted)
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full queue")
	}

	close(sink.release)
	e.Close()
	assert.Len(t, sink.events(), 2)
	assert.Equal(t, int64(1), e.Dropped())
}

func TestEmitter_EmitAfterClose(t *testing.T) {
	e := NewEmitter(&recordingSink{}, 1, nil)
	e.Close()
	e.Close()

	assert.False(t, e.Emit(sampleFeedback(0)))
	assert.Equal(t, int64(1), e.Dropped())
}

func TestEmitter_CountsSinkFailures(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	e := NewEmitter(&recordingSink{err: errors.New("down")}, 4, logger)

	e.Emit(sampleFeedback(0))
	e.Close()

	assert.Equal(t, int64(1), e.Failed())
	assert.Contains(t, logs.String(), "feedback delivery failed")
}

func TestLogSink(t *testing.T) {
	var logs bytes.Buffer
	sink := LogSink{Logger: slog.New(slog.NewJSONHandler(&logs, nil))}

	require.NoError(t, sink.Send(t.Context(), sampleFeedback(3)))

	var record map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &record))
	assert.Equal(t, "bullet feedback", record["msg"])
	assert.Equal(t, "up", record["vote"])
	assert.Equal(t, float64(3), record["bullet_index"])
}

type fakeRecorder struct {
	got []*types.BulletFeedback
}

func (f *fakeRecorder) RecordFeedback(_ context.Context, fb *types.BulletFeedback) error {
	f.got = append(f.got, fb)
	return nil
}

func TestStoreSinkAndMultiSink(t *testing.T) {
	rec := &fakeRecorder{}
	failing := &recordingSink{err: errors.New("nope")}
	sink := MultiSink{StoreSink{Store: rec}, failing}

	err := sink.Send(t.Context(), sampleFeedback(1))

	assert.ErrorContains(t, err, "nope")
	require.Len(t, rec.got, 1)
	assert.Equal(t, 1, rec.got[0].BulletIndex)
	assert.Len(t, failing.events(), 1)
}

type fakePublisher struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (f *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func TestAMQPSink_Send(t *testing.T) {
	pub := &fakePublisher{}
	sink := &AMQPSink{channel: pub, queue: DefaultQueue}
	fb := sampleFeedback(2)

	require.NoError(t, sink.Send(t.Context(), fb))

	assert.Equal(t, "", pub.exchange)
	assert.Equal(t, "bullet_feedback", pub.key)
	assert.Equal(t, "application/json", pub.msg.ContentType)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)

	var decoded types.BulletFeedback
	require.NoError(t, json.Unmarshal(pub.msg.Body, &decoded))
	assert.Equal(t, fb, decoded)

	pub.err = errors.New("channel closed")
	assert.ErrorContains(t, sink.Send(t.Context(), fb), "failed to publish feedback")
	assert.NoError(t, sink.Close())
}

type fakeAck struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAck) Ack(bool) error { f.acked = true; return nil }
func (f *fakeAck) Nack(_, requeue bool) error {
	f.nacked, f.requeue = true, requeue
	return nil
}

func TestHandleDelivery(t *testing.T) {
	body, err := json.Marshal(sampleFeedback(4))
	require.NoError(t, err)

	t.Run("ack on success", func(t *testing.T) {
		ack := &fakeAck{}
		sink := &recordingSink{}
		handle(t.Context(), body, false, ack, sink)
		assert.True(t, ack.acked)
		assert.Len(t, sink.events(), 1)
	})

	t.Run("reject malformed", func(t *testing.T) {
		ack := &fakeAck{}
		handle(t.Context(), []byte("{"), false, ack, &recordingSink{})
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeue)
	})

	t.Run("requeue first failure only", func(t *testing.T) {
		ack := &fakeAck{}
		handle(t.Context(), body, false, ack, &recordingSink{err: errors.New("db down")})
		assert.True(t, ack.requeue)

		ack = &fakeAck{}
		handle(t.Context(), body, true, ack, &recordingSink{err: errors.New("db down")})
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeue)
	})
}
