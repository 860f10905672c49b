package service

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The hub announces presence transitions inline, so publishing must
// return promptly even when the subscriber is not draining its
// channel. Mirrors the buffered bus configuration from bootstrap.
func TestPublisherDoesNotBlockOnIdleSubscriber(t *testing.T) {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NopLogger{},
	)
	defer pubSub.Close()

	// Subscribe but never read a message.
	_, err := pubSub.Subscribe(context.Background(), "presence-test")
	require.NoError(t, err)

	pub := NewPublisherService("presence-test", pubSub)

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			pub.IdentityOnline("alice")
			pub.IdentityOffline("alice")
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("presence publishing blocked on an idle subscriber")
	}
}

func TestPublisherEventPayload(t *testing.T) {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 1},
		watermill.NopLogger{},
	)
	defer pubSub.Close()

	messages, err := pubSub.Subscribe(context.Background(), "presence-test")
	require.NoError(t, err)

	pub := NewPublisherService("presence-test", pubSub)
	pub.IdentityOnline("alice")

	select {
	case msg := <-messages:
		assert.Contains(t, string(msg.Payload), `"PRESENCE_ONLINE"`)
		assert.Contains(t, string(msg.Payload), `"alice"`)
		msg.Ack()
	case <-time.After(time.Second):
		t.Fatal("presence event never arrived")
	}
}
