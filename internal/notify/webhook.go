package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const defaultWebhookQueue = 16

// Webhook posts each notification as JSON to a URL. Delivery happens on a
// background worker so Notify never waits on the network. Transient failures
// are retried; anything still failing is logged and otherwise ignored.
type Webhook struct {
	url     string
	client  *http.Client
	timeout time.Duration
	retry   retryPolicy
	size    int

	mu     sync.Mutex
	closed bool
	queue  chan Notification
	done   chan struct{}
}

// WebhookOption configures a Webhook.
type WebhookOption func(*Webhook)

// WithRetry sets the delivery attempts and the delay before the first retry.
// attempts of 1 disables retries.
func WithRetry(attempts int, initial time.Duration) WebhookOption {
	return func(w *Webhook) {
		w.retry.attempts = attempts
		w.retry.initial = initial
	}
}

// WithQueueSize sets how many notifications may wait for delivery. Further
// notifications are dropped until the queue drains.
func WithQueueSize(n int) WebhookOption {
	return func(w *Webhook) {
		w.size = n
	}
}

// NewWebhook creates a Webhook notifier for url and starts its delivery
// worker. Call Close to flush pending notifications.
func NewWebhook(url string, opts ...WebhookOption) *Webhook {
	w := &Webhook{
		url:     url,
		client:  &http.Client{Timeout: 10 * time.Second},
		timeout: 10 * time.Second,
		retry:   defaultRetryPolicy(),
		size:    defaultWebhookQueue,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.queue = make(chan Notification, max(w.size, 1))
	go w.run()
	return w
}

// Notify queues the notification for delivery and returns immediately.
func (w *Webhook) Notify(kind Kind, title, message string) {
	if w.url == "" {
		return
	}
	n := Notification{Kind: kind, Title: title, Message: message, Timestamp: time.Now().UTC()}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		zap.L().Warn("notify: webhook closed, dropping notification", zap.String("title", title))
		return
	}
	select {
	case w.queue <- n:
	default:
		zap.L().Warn("notify: webhook queue full, dropping notification", zap.String("title", title))
	}
}

// Close stops accepting notifications and waits until queued ones have been
// delivered or have failed. It is safe to call more than once.
func (w *Webhook) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()

	<-w.done
	return nil
}

func (w *Webhook) run() {
	defer close(w.done)
	for n := range w.queue {
		w.deliver(n)
	}
}

func (w *Webhook) deliver(n Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	err := w.retry.do(ctx, func(ctx context.Context) error {
		return w.send(ctx, n)
	})
	if err != nil {
		zap.L().Warn("notify: failed to deliver webhook",
			zap.String("kind", string(n.Kind)),
			zap.String("title", n.Title),
			zap.Error(err),
		)
		return
	}
	zap.L().Debug("notify: webhook delivered", zap.String("kind", string(n.Kind)))
}

func (w *Webhook) send(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return eris.Wrap(err, "notify: marshal notification")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "notify: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return &transientError{err: eris.Wrap(err, "notify: webhook request")}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		err := eris.Errorf("notify: webhook returned status %d", resp.StatusCode)
		if isTransientStatus(resp.StatusCode) {
			return &transientError{err: err, status: resp.StatusCode}
		}
		return err
	}
	return nil
}
