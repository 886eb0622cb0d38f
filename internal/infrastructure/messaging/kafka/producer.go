package kafka

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/simheat/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simheat/pkg/errors"
)

var ErrProducerClosed = errors.New(errors.ErrCodeEventPublishFailed, "producer closed")

// ProducerConfig holds configuration for the Producer.
type ProducerConfig struct {
	Brokers          []string
	Acks             string
	MaxRetries       int
	BatchTimeout     time.Duration
	WriteTimeout     time.Duration
	MaxMessageBytes  int
	CompressionCodec string
}

// ProducerMetrics holds producer counters.
type ProducerMetrics struct {
	MessagesSent   atomic.Int64
	MessagesFailed atomic.Int64
	BytesSent      atomic.Int64
}

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Message is one record to publish.
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Producer writes messages to Kafka.
type Producer struct {
	writer  WriterInterface
	config  ProducerConfig
	logger  logging.Logger
	closed  atomic.Bool
	metrics *ProducerMetrics
}

// NewProducer builds a producer over a kafka.Writer. No connection is made
// until the first publish.
func NewProducer(cfg ProducerConfig, logger logging.Logger) (*Producer, error) {
	if err := ValidateProducerConfig(cfg); err != nil {
		return nil, err
	}
	applyProducerDefaults(&cfg)

	var acks kafka.RequiredAcks
	switch cfg.Acks {
	case "none":
		acks = kafka.RequireNone
	case "all":
		acks = kafka.RequireAll
	default:
		acks = kafka.RequireOne
	}

	var compression kafka.Compression
	switch cfg.CompressionCodec {
	case "gzip":
		compression = kafka.Gzip
	case "snappy":
		compression = kafka.Snappy
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		MaxAttempts:            cfg.MaxRetries + 1,
		BatchTimeout:           cfg.BatchTimeout,
		WriteTimeout:           cfg.WriteTimeout,
		RequiredAcks:           acks,
		Compression:            compression,
		AllowAutoTopicCreation: true,
	}
	return newProducerWithWriter(writer, cfg, logger), nil
}

func newProducerWithWriter(w WriterInterface, cfg ProducerConfig, logger logging.Logger) *Producer {
	applyProducerDefaults(&cfg)
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Producer{
		writer:  w,
		config:  cfg,
		logger:  logger.Named("kafka"),
		metrics: &ProducerMetrics{},
	}
}

func applyProducerDefaults(cfg *ProducerConfig) {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.MaxMessageBytes == 0 {
		cfg.MaxMessageBytes = 1 << 20
	}
}

// Publish writes a single message synchronously.
func (p *Producer) Publish(ctx context.Context, msg *Message) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	switch {
	case msg == nil || msg.Topic == "":
		return errors.New(errors.ErrCodeValidation, "topic required")
	case len(msg.Value) == 0:
		return errors.New(errors.ErrCodeValidation, "value required")
	case len(msg.Value) > p.config.MaxMessageBytes:
		return errors.Newf(errors.ErrCodeValidation, "message of %d bytes exceeds %d", len(msg.Value), p.config.MaxMessageBytes)
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, toKafkaMessage(msg)); err != nil {
		p.metrics.MessagesFailed.Add(1)
		return errors.Wrap(err, errors.ErrCodeEventPublishFailed, "publish failed").
			WithDetailf("topic=%s", msg.Topic)
	}

	p.metrics.MessagesSent.Add(1)
	p.metrics.BytesSent.Add(int64(len(msg.Value)))
	p.logger.Debug("Message published",
		logging.String("topic", msg.Topic),
		logging.Duration("latency", time.Since(start)))
	return nil
}

// Sent returns the number of messages written successfully.
func (p *Producer) Sent() int64 { return p.metrics.MessagesSent.Load() }

// Failed returns the number of failed writes.
func (p *Producer) Failed() int64 { return p.metrics.MessagesFailed.Load() }

// Close flushes and closes the writer; it is idempotent.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("Kafka producer closed", logging.Int64("sent", p.metrics.MessagesSent.Load()))
	return err
}

func toKafkaMessage(msg *Message) kafka.Message {
	headers := make([]kafka.Header, 0, len(msg.Headers))
	for k, v := range msg.Headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return kafka.Message{
		Topic:   msg.Topic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
		Time:    ts,
	}
}

func ValidateProducerConfig(cfg ProducerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if cfg.MaxRetries < 0 {
		return errors.New(errors.ErrCodeValidation, "max retries must be >= 0")
	}
	return nil
}

//Personal.AI order the ending
