package kafka

import (
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"go.uber.org/zap/zaptest"

	"github.com/filipal/graph-platform-iam/internal/infra/config"
)

func newMockedProducer(t *testing.T) (*Producer, *mocks.AsyncProducer) {
	t.Helper()

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = false
	saramaConfig.Producer.Return.Errors = true

	mock := mocks.NewAsyncProducer(t, saramaConfig)

	p := &Producer{
		producer: mock,
		logger:   zaptest.NewLogger(t),
		cfg:      config.KafkaSettings{TopicPrefix: "iam"},
		errChan:  make(chan error, 256),
		done:     make(chan struct{}),
	}
	go p.handleErrors()

	return p, mock
}

func TestProducerClosesErrorChannelAfterDrain(t *testing.T) {
	p, mock := newMockedProducer(t)
	mock.ExpectInputAndFail(errors.New("broker unavailable"))

	p.Producer().Input() <- &sarama.ProducerMessage{
		Topic: p.TopicName("account.registered"),
		Value: sarama.StringEncoder("{}"),
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	// The error channel must end up closed without a send-on-closed panic,
	// so draining it terminates.
	for range p.Errors() {
	}
}

func TestProducerCloseWithoutTraffic(t *testing.T) {
	p, _ := newMockedProducer(t)

	if err := p.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	for range p.Errors() {
	}
}

func TestTopicName(t *testing.T) {
	p := &Producer{cfg: config.KafkaSettings{TopicPrefix: "iam"}}
	if got := p.TopicName("account.registered"); got != "iam.account.registered" {
		t.Fatalf("expected iam.account.registered, got %s", got)
	}

	p = &Producer{cfg: config.KafkaSettings{}}
	if got := p.TopicName("account.registered"); got != "account.registered" {
		t.Fatalf("expected unprefixed topic, got %s", got)
	}
}
