package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
)

const (
	numConsumers      = 2
	consumerBatchSize = 20
)

func StartConsumers(connection rmq.Connection) error {
	log.Info().Str("queue", QueueName).Msg("Starting events consumers")

	queue, err := connection.OpenQueue(QueueName)
	if err != nil {
		return err
	}
	if err := queue.StartConsuming(numConsumers*consumerBatchSize, 1*time.Second); err != nil {
		return err
	}

	for i := 0; i < numConsumers; i++ {
		log.Info().Msgf("Starting events consumer %d", i)

		if _, err := queue.AddBatchConsumer(fmt.Sprintf("route-schedules-%d", i), consumerBatchSize, 2*time.Second, NewBatchConsumer(i)); err != nil {
			return err
		}
	}

	return nil
}

// BatchConsumer logs each route schedule update as it arrives
type BatchConsumer struct {
	id int

	Received int
}

func NewBatchConsumer(id int) *BatchConsumer {
	return &BatchConsumer{id: id}
}

func (consumer *BatchConsumer) Consume(batch rmq.Deliveries) {
	for _, payload := range batch.Payloads() {
		var event struct {
			Type      EventType
			Timestamp time.Time
			Body      RouteScheduleUpdated
		}

		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			log.Error().Err(err).Int("consumer", consumer.id).Msg("Failed to decode event")
			continue
		}

		consumer.Received++

		log.Info().
			Str("type", string(event.Type)).
			Str("route", event.Body.Slug).
			Int("forward", event.Body.ForwardTrains).
			Int("backward", event.Body.BackwardTrains).
			Time("timestamp", event.Timestamp).
			Msg("Route schedule updated")
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Error().Err(err).Msg("Failed to ack event")
		}
	}
}
