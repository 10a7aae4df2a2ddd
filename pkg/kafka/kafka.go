// Package kafka builds bounded kafka-go writers for the order event topics
// and publishes JSON payloads keyed by order id.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

var ErrDisabled = errors.New("kafka disabled")

// WriterOptions bound how long publishing can hold up a request. Zero
// fields take the package defaults.
type WriterOptions struct {
	BatchTimeout time.Duration
	WriteTimeout time.Duration
	MaxAttempts  int
	// PublishTimeout caps one publish call, retries included.
	PublishTimeout time.Duration
}

const (
	defaultBatchTimeout   = 10 * time.Millisecond
	defaultWriteTimeout   = 2 * time.Second
	defaultMaxAttempts    = 3
	defaultPublishTimeout = 3 * time.Second
)

func (o WriterOptions) withDefaults() WriterOptions {
	if o.BatchTimeout <= 0 {
		o.BatchTimeout = defaultBatchTimeout
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = defaultWriteTimeout
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaultMaxAttempts
	}
	if o.PublishTimeout <= 0 {
		o.PublishTimeout = defaultPublishTimeout
	}
	return o
}

type Client struct {
	Brokers []string
	opts    WriterOptions
}

// NewClient parses a comma separated broker list. An empty list yields a
// disabled client.
func NewClient(brokersCSV string, opts WriterOptions) *Client {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return &Client{Brokers: brokers, opts: opts.withDefaults()}
}

func (c *Client) Enabled() bool {
	return len(c.Brokers) > 0
}

func (c *Client) Options() WriterOptions {
	return c.opts
}

// NewWriter returns a synchronous writer that flushes each event on its own
// instead of waiting for a batch to fill.
func (c *Client) NewWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    1,
		BatchTimeout: c.opts.BatchTimeout,
		WriteTimeout: c.opts.WriteTimeout,
		ReadTimeout:  c.opts.WriteTimeout,
		MaxAttempts:  c.opts.MaxAttempts,
	}
}

// MessageWriter is the subset of *kafka.Writer used by publishers.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// PublishJSON encodes payload and writes it under key, giving up after
// timeout. A non-positive timeout leaves ctx as is.
func PublishJSON(ctx context.Context, w MessageWriter, timeout time.Duration, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return w.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: data, Time: time.Now().UTC()})
}
