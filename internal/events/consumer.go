package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Worker consumes order events from the fulfillment queue. Each worker owns
// its channel and processes one message at a time.
type Worker struct {
	workerID  int
	channel   *amqp.Channel
	queueName string
	tracker   *FulfillmentTracker
	log       *slog.Logger
}

// NewWorker opens a dedicated channel for one consumer worker.
func NewWorker(workerID int, conn *amqp.Connection, queueName string, tracker *FulfillmentTracker, log *slog.Logger) (*Worker, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel for worker %d: %w", workerID, err)
	}

	// Prefetch one so slow workers do not hoard messages.
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to set QoS for worker %d: %w", workerID, err)
	}

	return &Worker{
		workerID:  workerID,
		channel:   ch,
		queueName: queueName,
		tracker:   tracker,
		log:       log,
	}, nil
}

// Start consumes messages until the channel closes.
func (w *Worker) Start(wg *sync.WaitGroup) {
	defer wg.Done()
	defer w.channel.Close()

	msgs, err := w.channel.Consume(
		w.queueName,
		fmt.Sprintf("warehouse-worker-%d", w.workerID),
		false, // manual acknowledgements
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		w.log.Error("worker failed to register consumer", "worker", w.workerID, "error", err)
		return
	}

	w.log.Info("worker started", "worker", w.workerID)

	for msg := range msgs {
		w.processMessage(msg)
	}

	w.log.Info("worker stopped", "worker", w.workerID)
}

func (w *Worker) processMessage(msg amqp.Delivery) {
	var event OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		w.log.Error("failed to unmarshal order event", "worker", w.workerID, "error", err)
		// Malformed message, do not requeue.
		msg.Nack(false, false)
		return
	}

	w.tracker.Record(event)
	w.log.Info("order picked for fulfillment",
		"worker", w.workerID,
		"order_id", event.OrderID,
		"items", len(event.Items),
		"total", event.Total,
	)

	msg.Ack(false)
}

// FulfillmentTracker accumulates what the warehouse has processed.
type FulfillmentTracker struct {
	mu         sync.Mutex
	orders     int
	units      int
	revenue    float64
	seenOrders map[string]struct{}
	duplicates int
}

// NewFulfillmentTracker creates an empty tracker.
func NewFulfillmentTracker() *FulfillmentTracker {
	return &FulfillmentTracker{
		seenOrders: make(map[string]struct{}),
	}
}

// Record counts one processed order event. Redeliveries of an already-seen
// order are counted separately and not double-counted in the totals.
func (t *FulfillmentTracker) Record(event OrderEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, seen := t.seenOrders[event.OrderID]; seen {
		t.duplicates++
		return
	}
	t.seenOrders[event.OrderID] = struct{}{}

	t.orders++
	t.revenue += event.Total
	for _, item := range event.Items {
		t.units += item.Quantity
	}
}

// Snapshot returns the current counters.
func (t *FulfillmentTracker) Snapshot() (orders, units, duplicates int, revenue float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.orders, t.units, t.duplicates, t.revenue
}
