package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/caseworks/entitygraph/internal/util"
	"github.com/caseworks/entitygraph/pkg/common"
	"github.com/caseworks/entitygraph/pkg/logger"
	"github.com/caseworks/entitygraph/pkg/match"
	"github.com/caseworks/entitygraph/pkg/screen"

	"github.com/rabbitmq/amqp091-go"
)

const maxDeliveries = 3

// ProcessDedupeMessage runs one batch deduplication job and publishes its
// result to the results queue.
func ProcessDedupeMessage(ctx context.Context, cmp *match.Comparator, ch *amqp091.Channel, msg []byte) error {
	data := new(DedupeJobMsg)
	if err := json.Unmarshal(msg, data); err != nil {
		return fmt.Errorf("failed to decode dedupe job: %w", err)
	}

	logger.Info("[Queue] Running dedupe job", "job_id", data.JobID, "records", len(data.Records))

	result, err := cmp.BatchResolve(ctx, data.Records, data.Options)
	if err != nil {
		return fmt.Errorf("dedupe job %s failed: %w", data.JobID, err)
	}

	return publishResult(ctx, ch, JobResultMsg{
		JobID:  data.JobID,
		Kind:   "dedupe",
		Dedupe: &result,
	})
}

// ProcessScreenMessage screens each requested name against the reference
// list and publishes the hits to the results queue.
func ProcessScreenMessage(ctx context.Context, scr *screen.Screener, ch *amqp091.Channel, msg []byte) error {
	data := new(ScreenJobMsg)
	if err := json.Unmarshal(msg, data); err != nil {
		return fmt.Errorf("failed to decode screen job: %w", err)
	}

	logger.Info("[Queue] Running screen job", "job_id", data.JobID, "names", len(data.Names))

	screening := make(map[string][]common.ScreeningHit, len(data.Names))
	for _, name := range data.Names {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		hits, err := scr.Screen(name, data.TopN)
		if err != nil {
			return fmt.Errorf("screen job %s failed on %q: %w", data.JobID, name, err)
		}
		screening[name] = hits
	}

	return publishResult(ctx, ch, JobResultMsg{
		JobID:     data.JobID,
		Kind:      "screen",
		Screening: screening,
	})
}

func publishResult(ctx context.Context, ch *amqp091.Channel, result JobResultMsg) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode job result: %w", err)
	}
	return util.RetryErrWithContext(ctx, 3, func(context.Context) error {
		return PublishFIFO(ch, ResultsQueue, payload)
	})
}

// ConsumeJobs attaches consumers to both job queues and blocks until the
// context is done. Failed deliveries are requeued through the TTL retry
// queue up to maxDeliveries, then parked on the dead-letter queue.
func ConsumeJobs(ctx context.Context, ch *amqp091.Channel, cmp *match.Comparator, scr *screen.Screener) error {
	handlers := map[string]func(context.Context, []byte) error{
		DedupeQueue: func(ctx context.Context, body []byte) error {
			return ProcessDedupeMessage(ctx, cmp, ch, body)
		},
		ScreenQueue: func(ctx context.Context, body []byte) error {
			return ProcessScreenMessage(ctx, scr, ch, body)
		},
	}

	for name, handler := range handlers {
		deliveries, err := ch.Consume(
			name,
			"",    // consumer tag
			false, // autoAck
			false, // exclusive
			false, // noLocal
			false, // noWait
			nil,
		)
		if err != nil {
			return fmt.Errorf("failed to consume %s: %w", name, err)
		}

		go consumeLoop(ctx, ch, name, deliveries, handler)
	}

	<-ctx.Done()
	return nil
}

func consumeLoop(
	ctx context.Context,
	ch *amqp091.Channel,
	queueName string,
	deliveries <-chan amqp091.Delivery,
	handler func(context.Context, []byte) error,
) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}

			err := handler(ctx, d.Body)
			if err == nil {
				if ackErr := d.Ack(false); ackErr != nil {
					logger.Error("[Queue] Failed to ack delivery", "queue", queueName, "err", ackErr)
				}
				continue
			}

			logger.Error("[Queue] Job failed", "queue", queueName, "err", err)
			requeueOrPark(ch, queueName, d)
		}
	}
}

// requeueOrPark sends a failed delivery to the retry queue, or to the
// dead-letter queue once it has exhausted its deliveries.
func requeueOrPark(ch *amqp091.Channel, queueName string, d amqp091.Delivery) {
	attempts := deliveryAttempts(d) + 1

	target := queueName + "_retry"
	if attempts >= maxDeliveries {
		target = queueName + "_dlq"
		logger.Warn("[Queue] Parking message on dead-letter queue", "queue", queueName, "attempts", attempts)
	}

	publishing := amqp091.Publishing{
		ContentType:  d.ContentType,
		Body:         d.Body,
		DeliveryMode: amqp091.Persistent,
		Headers:      amqp091.Table{"x-delivery-attempts": int32(attempts)},
	}
	if err := ch.Publish("", target, false, false, publishing); err != nil {
		logger.Error("[Queue] Failed to republish message", "queue", target, "err", err)
		if nackErr := d.Nack(false, true); nackErr != nil {
			logger.Error("[Queue] Failed to nack delivery", "queue", queueName, "err", nackErr)
		}
		return
	}

	if err := d.Ack(false); err != nil {
		logger.Error("[Queue] Failed to ack delivery", "queue", queueName, "err", err)
	}
}

func deliveryAttempts(d amqp091.Delivery) int {
	if d.Headers == nil {
		return 0
	}
	if v, ok := d.Headers["x-delivery-attempts"].(int32); ok {
		return int(v)
	}
	return 0
}
