package kafka

import (
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/filipal/graph-platform-iam/internal/infra/config"
)

// Producer wraps a Sarama AsyncProducer with error handling and lifecycle
// management.
type Producer struct {
	producer sarama.AsyncProducer
	logger   *zap.Logger
	cfg      config.KafkaSettings
	errChan  chan error
	done     chan struct{}
}

// NewProducer initializes the Kafka async producer.
func NewProducer(cfg config.KafkaSettings, logger *zap.Logger) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_5_0_0

	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Flush.Frequency = 100 * time.Millisecond
	saramaConfig.Producer.Flush.Messages = 100
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = false
	saramaConfig.Producer.Return.Errors = true

	saramaConfig.Metadata.Retry.Max = 3
	saramaConfig.Metadata.Retry.Backoff = 250 * time.Millisecond

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	p := &Producer{
		producer: producer,
		logger:   logger,
		cfg:      cfg,
		errChan:  make(chan error, 256),
		done:     make(chan struct{}),
	}

	go p.handleErrors()

	logger.Info("kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic_prefix", cfg.TopicPrefix),
	)

	return p, nil
}

// handleErrors is the only sender on errChan and owns its close, so a late
// producer error can never hit a closed channel.
func (p *Producer) handleErrors() {
	defer close(p.errChan)
	for {
		select {
		case err, ok := <-p.producer.Errors():
			if !ok {
				return
			}
			if err != nil {
				p.logger.Error("kafka producer error",
					zap.Error(err.Err),
					zap.String("topic", err.Msg.Topic),
					zap.Int32("partition", err.Msg.Partition),
					zap.Int64("offset", err.Msg.Offset),
				)
				select {
				case p.errChan <- err.Err:
				default:
					p.logger.Warn("error channel full, dropping error")
				}
			}
		case <-p.done:
			return
		}
	}
}

// Producer returns the underlying Sarama AsyncProducer.
func (p *Producer) Producer() sarama.AsyncProducer {
	return p.producer
}

// Errors returns the error channel for external monitoring.
func (p *Producer) Errors() <-chan error {
	return p.errChan
}

// Close flushes pending messages and stops the error handler. Closing the
// underlying producer first lets handleErrors drain remaining errors before
// it shuts the external channel.
func (p *Producer) Close() error {
	p.logger.Info("closing kafka producer")

	err := p.producer.Close()
	close(p.done)
	if err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}

// TopicName returns the full topic name with prefix.
func (p *Producer) TopicName(eventType string) string {
	if p.cfg.TopicPrefix == "" {
		return eventType
	}
	return strings.Join([]string{p.cfg.TopicPrefix, eventType}, ".")
}
