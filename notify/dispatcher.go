package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"burger-order-api/logger"
)

const sendTimeout = 30 * time.Second

// Dispatcher queues messages and delivers them from a fixed pool of
// workers. A full queue drops the message.
type Dispatcher struct {
	sender Sender
	log    *slog.Logger
	queue  chan Message
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(sender Sender, log *slog.Logger, workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	d := &Dispatcher{
		sender: sender,
		log:    logger.Component(log, "notify"),
		queue:  make(chan Message, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

// Notify never blocks.
func (d *Dispatcher) Notify(msg Message) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Warn("Dispatcher closed, dropping email", "kind", msg.Kind, "to", msg.To)
		return
	}
	select {
	case d.queue <- msg:
	default:
		d.log.Warn("Email queue full, dropping email", "kind", msg.Kind, "to", msg.To)
	}
}

// Close stops accepting messages and waits for queued ones to be sent.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	email, err := Render(msg)
	if err != nil {
		d.log.Error("Failed to render email", "kind", msg.Kind, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, email); err != nil {
		d.log.Error("Email sending failed", "kind", msg.Kind, "to", msg.To, "error", err)
		return
	}
	d.log.Info("Email sent successfully", "kind", msg.Kind, "to", msg.To)
}
