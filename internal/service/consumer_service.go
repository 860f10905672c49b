package service

import (
	"context"
	"encoding/json"
	"time"

	"peermatch-be/internal/pkg/logger"
	"peermatch-be/pkg/events"
	pktNats "peermatch-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains presence events off the in-process bus and
// forwards them to NATS. Keeping the NATS round-trip out of the hub's
// run loop is the point: registry mutations stay non-blocking.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	natsPub   *pktNats.Publisher
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	natsPub *pktNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		natsPub:   natsPub,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload struct {
		Type       string                 `json:"type"`
		Data       map[string]interface{} `json:"data"`
		OccurredAt time.Time              `json:"occurred_at"`
	}
	// Presence events are advisory: ack up front so the bus slot frees
	// before the NATS round-trip, and never redeliver on failure.
	msg.Ack()

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal presence event", map[string]interface{}{"error": err})
		return
	}

	if cs.natsPub == nil {
		cs.logger.Debug("ConsumerService", "NATS not configured, presence event logged only", map[string]interface{}{
			"type": payload.Type,
			"data": payload.Data,
		})
		return
	}

	evt := events.BaseEvent{
		Type:       payload.Type,
		Data:       payload.Data,
		OccurredAt: payload.OccurredAt,
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := cs.natsPub.Publish(pubCtx, evt); err != nil {
		cs.logger.Warn("ConsumerService", "Failed to forward presence event to NATS", map[string]interface{}{
			"type":  payload.Type,
			"error": err,
		})
	}
}
