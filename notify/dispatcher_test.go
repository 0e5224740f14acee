package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"burger-order-api/logger"
	"burger-order-api/notify"
	"burger-order-api/notify/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestDispatcherDeliversRenderedEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)

	sender.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, email notify.Email) error {
			assert.Equal(t, "ravi@example.com", email.To)
			assert.Equal(t, "Welcome to Burrrgerr!", email.Subject)
			assert.Contains(t, email.HTML, "Hi Ravi")
			return nil
		})

	d := notify.NewDispatcher(sender, logger.Discard(), 1, 4)
	d.Notify(notify.Message{
		To:   "ravi@example.com",
		Kind: notify.KindRegistration,
		Data: map[string]any{"name": "Ravi"},
	})

	require.NoError(t, d.Close(context.Background()))
}

func TestDispatcherSwallowsSendFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)

	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("smtp down")).Times(2)

	d := notify.NewDispatcher(sender, logger.Discard(), 1, 4)
	for i := 0; i < 2; i++ {
		d.Notify(notify.Message{
			To:   "a@example.com",
			Kind: notify.KindOrderConfirmation,
			Data: map[string]any{"customerName": "A", "orderId": "BRG1", "totalAmount": "200"},
		})
	}

	require.NoError(t, d.Close(context.Background()))
}

func TestDispatcherSkipsUnknownKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)

	d := notify.NewDispatcher(sender, logger.Discard(), 1, 1)
	d.Notify(notify.Message{To: "a@example.com", Kind: "newsletter"})

	require.NoError(t, d.Close(context.Background()))
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)

	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	sender.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, notify.Email) error {
			once.Do(func() { close(started) })
			<-release
			return nil
		}).
		Times(2)

	d := notify.NewDispatcher(sender, logger.Discard(), 1, 1)
	msg := notify.Message{To: "a@example.com", Kind: notify.KindRegistration, Data: map[string]any{"name": "A"}}

	d.Notify(msg)
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never picked up the first message")
	}

	d.Notify(msg) // fills the queue
	d.Notify(msg) // dropped

	close(release)
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatcherNotifyAfterClose(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)

	d := notify.NewDispatcher(sender, logger.Discard(), 2, 2)
	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()))

	assert.NotPanics(t, func() {
		d.Notify(notify.Message{To: "a@example.com", Kind: notify.KindRegistration})
	})
}

func TestDispatcherNegativeQueueSize(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)

	var d *notify.Dispatcher
	require.NotPanics(t, func() {
		d = notify.NewDispatcher(sender, logger.Discard(), 1, -1)
	})
	require.NoError(t, d.Close(context.Background()))
}
