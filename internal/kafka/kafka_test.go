package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"aufgussplan/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error { return nil }

type fakeReader struct {
	messages []kafka.Message
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.messages) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *fakeReader) Close() error { return nil }

var testTopics = Topics{StatistikLogged: "stats", AufguesseChanged: "changes"}

func TestPublishStatistikLogged(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{Writer: w, Topics: testTopics}
	plan := int64(2)

	err := p.PublishStatistikLogged(context.Background(), models.StatistikLoggedEvent{AufgussID: 42, Datum: "2024-01-10", PlanID: &plan})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)
	assert.Equal(t, "stats", w.messages[0].Topic)
	assert.Equal(t, "42", string(w.messages[0].Key))

	var decoded models.StatistikLoggedEvent
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &decoded))
	assert.Equal(t, "2024-01-10", decoded.Datum)
	assert.Equal(t, int64(2), *decoded.PlanID)
}

func TestAufguesseChangedSwallowsErrors(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := &Producer{Writer: w, Topics: testTopics}

	p.AufguesseChanged(context.Background(), models.AufguesseChangedEvent{Action: models.ChangeDeleted, AufgussID: 7})
	require.Len(t, w.messages, 1)
	assert.Equal(t, "changes", w.messages[0].Topic)
}

func TestConsumeDecodesAndSkipsJunk(t *testing.T) {
	good, err := json.Marshal(models.StatistikLoggedEvent{AufgussID: 1, Datum: "2024-01-10"})
	require.NoError(t, err)
	c := &Consumer{reader: &fakeReader{messages: []kafka.Message{
		{Value: []byte("not json")},
		{Value: good},
	}}, topic: "stats"}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var got []models.StatistikLoggedEvent
	err = Consume(ctx, c, func(_ context.Context, e models.StatistikLoggedEvent) {
		got = append(got, e)
		cancel()
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].AufgussID)
}
