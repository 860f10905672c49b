package service

import (
	"encoding/json"

	"peermatch-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	IdentityOnline(identity string)
	IdentityOffline(identity string)
}

// publisherService feeds presence transitions into the in-process bus.
// The hub calls it inline, so publishing must never block; gochannel
// hands the message off to subscriber goroutines.
type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (s *publisherService) IdentityOnline(identity string) {
	s.publish(events.NewPresenceEvent(events.PresenceOnline, identity))
}

func (s *publisherService) IdentityOffline(identity string) {
	s.publish(events.NewPresenceEvent(events.PresenceOffline, identity))
}

func (s *publisherService) publish(evt events.BaseEvent) {
	payload, err := json.Marshal(map[string]interface{}{
		"type":        evt.EventType(),
		"data":        evt.Payload(),
		"occurred_at": evt.Timestamp(),
	})
	if err != nil {
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	// Best-effort: presence events are advisory, a failed publish
	// never disturbs the hub.
	_ = s.pubSub.Publish(s.topicName, msg)
}
