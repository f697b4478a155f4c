package deadline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/mcdev12/capspace/go/internal/apperr"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

const (
	StreamName    = "DEADLINES"
	SubjectPrefix = "capspace.deadlines"

	consumerName          = "deadline-runner"
	consumerMaxDeliver    = 5
	consumerAckWait       = 5 * time.Minute
	consumerMaxAckPending = 16
	redeliverDelay        = 30 * time.Second

	natsMaxReconnects = -1
	natsReconnectWait = 2 * time.Second
)

// Connect creates a NATS connection with JetStream
func Connect(natsURL string) (*nats.Conn, jetstream.JetStream, error) {
	opts := []nats.Option{
		nats.Name("capspace"),
		nats.MaxReconnects(natsMaxReconnects),
		nats.ReconnectWait(natsReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(natsURL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("create JetStream context: %w", err)
	}
	return nc, js, nil
}

// EnsureStream creates the deadline trigger stream if it does not exist yet
func EnsureStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectPrefix + ".>"},
		Retention: jetstream.WorkQueuePolicy,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("create stream: %w", err)
	}
	return stream, nil
}

// Subject is the subject a trigger for deadlineID is published on
func Subject(deadlineID int64) string {
	return SubjectPrefix + ".run." + strconv.FormatInt(deadlineID, 10)
}

// Publish asks the runners to run a deadline. The message id dedupes repeated triggers
// inside the stream's duplicate window.
func Publish(ctx context.Context, js jetstream.JetStream, deadlineID int64) error {
	data, err := json.Marshal(Trigger{DeadlineID: deadlineID})
	if err != nil {
		return fmt.Errorf("marshal trigger: %w", err)
	}
	_, err = js.Publish(ctx, Subject(deadlineID), data, jetstream.WithMsgID("deadline-"+strconv.FormatInt(deadlineID, 10)))
	if err != nil {
		return fmt.Errorf("publish trigger: %w", err)
	}
	return nil
}

// runFunc runs one deadline
type runFunc func(ctx context.Context, deadlineID int64) (*Summary, error)

// Consumer runs deadlines as their triggers arrive on JetStream
type Consumer struct {
	consumer   jetstream.Consumer
	run        runFunc
	numWorkers int
}

// NewConsumer creates or gets the durable deadline consumer
func NewConsumer(ctx context.Context, js jetstream.JetStream, runner *Runner, numWorkers int) (*Consumer, error) {
	stream, err := EnsureStream(ctx, js)
	if err != nil {
		return nil, err
	}

	consumer, err := stream.Consumer(ctx, consumerName)
	if err != nil {
		consumer, err = stream.CreateConsumer(ctx, jetstream.ConsumerConfig{
			Name:          consumerName,
			Durable:       consumerName,
			Description:   "Runs deadline batch work",
			FilterSubject: SubjectPrefix + ".run.>",
			AckPolicy:     jetstream.AckExplicitPolicy,
			MaxDeliver:    consumerMaxDeliver,
			AckWait:       consumerAckWait,
			MaxAckPending: consumerMaxAckPending,
		})
		if err != nil {
			return nil, fmt.Errorf("create consumer: %w", err)
		}
		log.Info().Msg("created JetStream consumer for deadlines")
	} else {
		log.Info().Msg("using existing JetStream consumer for deadlines")
	}

	if numWorkers <= 0 {
		numWorkers = 1
	}
	return &Consumer{consumer: consumer, run: runner.Run, numWorkers: numWorkers}, nil
}

// Run consumes triggers until ctx is cancelled
func (c *Consumer) Run(ctx context.Context) error {
	log.Info().Int("workers", c.numWorkers).Msg("deadline consumer started")

	msgCh := make(chan jetstream.Msg, c.numWorkers)
	consumeCtx, err := c.consumer.Consume(func(msg jetstream.Msg) {
		select {
		case msgCh <- msg:
		case <-ctx.Done():
			_ = msg.Nak()
		}
	})
	if err != nil {
		return fmt.Errorf("start JetStream consumer: %w", err)
	}
	defer consumeCtx.Stop()

	var wg sync.WaitGroup
	for i := 0; i < c.numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg := <-msgCh:
					c.handleMsg(ctx, msg)
				}
			}
		}(i)
	}

	<-ctx.Done()
	log.Info().Msg("deadline consumer shutting down")
	wg.Wait()
	return nil
}

// handleMsg acks a finished run, naks a run with failed units for a delayed retry and
// terminates a message that can never succeed.
func (c *Consumer) handleMsg(ctx context.Context, msg jetstream.Msg) {
	var trig Trigger
	if err := json.Unmarshal(msg.Data(), &trig); err != nil || trig.DeadlineID <= 0 {
		log.Error().Err(err).Str("subject", msg.Subject()).Msg("dropping malformed deadline trigger")
		_ = msg.Term()
		return
	}

	sum, err := c.run(ctx, trig.DeadlineID)
	switch {
	case err == nil:
		_ = msg.Ack()
	case errors.Is(err, context.Canceled):
		_ = msg.Nak()
	case apperr.HasCode(err, apperr.CodeNotFound):
		log.Error().Err(err).Int64("deadline_id", trig.DeadlineID).Msg("deadline run aborted")
		_ = msg.Term()
	default:
		var failed []string
		if sum != nil {
			failed = sum.Failed
		}
		log.Warn().Err(err).Int64("deadline_id", trig.DeadlineID).Strs("failed", failed).Msg("deadline run incomplete")
		_ = msg.NakWithDelay(redeliverDelay)
	}
}
