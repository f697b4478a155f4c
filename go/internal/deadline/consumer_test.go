package deadline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
)

type fakeMsg struct {
	jetstream.Msg
	data    []byte
	outcome string
	delay   time.Duration
}

func (m *fakeMsg) Data() []byte    { return m.data }
func (m *fakeMsg) Subject() string { return Subject(1) }
func (m *fakeMsg) Ack() error      { m.outcome = "ack"; return nil }
func (m *fakeMsg) Nak() error      { m.outcome = "nak"; return nil }
func (m *fakeMsg) Term() error     { m.outcome = "term"; return nil }
func (m *fakeMsg) NakWithDelay(d time.Duration) error {
	m.outcome, m.delay = "nak", d
	return nil
}

func TestHandleMsg(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		sum     *Summary
		err     error
		outcome string
		delay   time.Duration
	}{
		{name: "finished run", data: `{"deadline_id": 7}`, sum: &Summary{DeadlineID: 7, Done: 3}, outcome: "ack"},
		{name: "malformed payload", data: `{"deadline_id":`, outcome: "term"},
		{name: "missing deadline id", data: `{}`, outcome: "term"},
		{name: "unknown deadline", data: `{"deadline_id": 7}`, err: fmt.Errorf("failed to get deadline: %w", apperr.NotFound("deadline", 7)), outcome: "term"},
		{
			name:    "failed units",
			data:    `{"deadline_id": 7}`,
			sum:     &Summary{DeadlineID: 7, Done: 1, Failed: []string{"lock:team:x"}},
			err:     errors.New("1 of 2 deadline units failed"),
			outcome: "nak",
			delay:   redeliverDelay,
		},
		{name: "shutdown", data: `{"deadline_id": 7}`, err: context.Canceled, outcome: "nak"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ran []int64
			c := &Consumer{numWorkers: 1, run: func(_ context.Context, id int64) (*Summary, error) {
				ran = append(ran, id)
				return tt.sum, tt.err
			}}
			msg := &fakeMsg{data: []byte(tt.data)}

			c.handleMsg(context.Background(), msg)

			assert.Equal(t, tt.outcome, msg.outcome)
			assert.Equal(t, tt.delay, msg.delay)
			if tt.outcome == "term" && tt.err == nil {
				assert.Empty(t, ran)
			}
		})
	}
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "capspace.deadlines.run.42", Subject(42))
}
