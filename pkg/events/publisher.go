package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/travigo/srt-timetables/pkg/output"
	"github.com/travigo/srt-timetables/pkg/redis_client"
)

// Publisher announces every saved route on the redis queue
type Publisher struct {
	Queue rmq.Queue
	Now   func() time.Time
}

func NewPublisher() (*Publisher, error) {
	queue, err := redis_client.QueueConnection.OpenQueue(QueueName)
	if err != nil {
		return nil, err
	}

	return &Publisher{Queue: queue}, nil
}

func (p *Publisher) Name() string {
	return "redis-events"
}

func (p *Publisher) Publish(ctx context.Context, route output.SavedRoute) error {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	event := Event{
		Type:      EventTypeRouteScheduleUpdated,
		Timestamp: now(),
		Body: RouteScheduleUpdated{
			Slug:           route.Slug,
			Path:           route.Path,
			From:           route.From,
			To:             route.To,
			ForwardTrains:  len(route.Schedule.Forward),
			BackwardTrains: len(route.Schedule.Backward),
		},
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.Queue.PublishBytes(eventBytes)
}
