package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"ai-jobassist-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu       sync.Mutex
	failed   []string
	canceled []string
}

func (m *recordingMailer) SendPaymentFailed(to, _, plan string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, to+"|"+plan)
	return nil
}

func (m *recordingMailer) SendSubscriptionCanceled(to, _, plan string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.canceled = append(m.canceled, to+"|"+plan)
	return nil
}

func (m *recordingMailer) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.failed), len(m.canceled)
}

func TestNotificationConsumer_EmailsOnBillingTrouble(t *testing.T) {
	h := newHarness(t)
	userId := h.user(t)
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, watermill.NopLogger{})
	defer pubSub.Close()

	mail := &recordingMailer{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	consumer := NewNotificationConsumer(pubSub, "billing", h.factory, h.catalog, mail, h.log)
	require.NoError(t, consumer.Consume(ctx))

	pub := events.NewWatermillPublisher("billing", pubSub)
	data := map[string]interface{}{"user_id": userId.String(), "plan_id": "pro_monthly"}
	require.NoError(t, pub.Publish(ctx, events.New(events.TypeSubscriptionUpdated, data)))
	require.NoError(t, pub.Publish(ctx, events.New(events.TypeSubscriptionPastDue, data)))
	require.NoError(t, pub.Publish(ctx, events.New(events.TypeSubscriptionCanceled, data)))

	assert.Eventually(t, func() bool {
		failed, canceled := mail.counts()
		return failed == 1 && canceled == 1
	}, 2*time.Second, 10*time.Millisecond)

	mail.mu.Lock()
	defer mail.mu.Unlock()
	assert.Contains(t, mail.failed[0], "|Pro Monthly")
}
