// Package kafka connects the worker to a Kafka consumer group.
package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/topcoder-platform/playoff-processor/internal/adapters/mq/worker"
	"github.com/topcoder-platform/playoff-processor/pkg/logger"
)

const (
	dialTimeout = 10 * time.Second
	maxBytes    = 10 << 20
)

// Config selects the brokers, group and topic.
type Config struct {
	Brokers []string
	GroupID string
	Topic   string
	// ClientCert and ClientKey are PEM blocks for mutual TLS. Both or neither.
	ClientCert string
	ClientKey  string
}

// TLS builds the client TLS configuration, or nil when no certificate is set.
func (c Config) TLS() (*tls.Config, error) {
	if c.ClientCert == "" && c.ClientKey == "" {
		return nil, nil
	}
	cert, err := tls.X509KeyPair([]byte(c.ClientCert), []byte(c.ClientKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTLSConfig, err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// Source reads one topic as a member of a consumer group. Offsets are
// committed explicitly through Commit.
type Source struct {
	reader *kafkago.Reader
}

// NewSource creates a Source.
func NewSource(cfg Config, log logger.Logger) (*Source, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	tlsCfg, err := cfg.TLS()
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MaxBytes: maxBytes,
		Dialer: &kafkago.Dialer{
			Timeout:   dialTimeout,
			DualStack: true,
			TLS:       tlsCfg,
		},
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error(ctx, fmt.Sprintf(msg, args...))
		}),
	})
	return &Source{reader: reader}, nil
}

// Fetch implements worker.Source.
func (s *Source) Fetch(ctx context.Context) (worker.Message, error) {
	m, err := s.reader.FetchMessage(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return worker.Message{}, worker.ErrSourceClosed
		}
		return worker.Message{}, err
	}
	return toMessage(m), nil
}

// Commit implements worker.Source.
func (s *Source) Commit(ctx context.Context, msg worker.Message) error {
	return s.reader.CommitMessages(ctx, fromMessage(msg))
}

// Close leaves the consumer group.
func (s *Source) Close() error {
	return s.reader.Close()
}

func toMessage(m kafkago.Message) worker.Message {
	return worker.Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Value:     m.Value,
	}
}

func fromMessage(msg worker.Message) kafkago.Message {
	return kafkago.Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
	}
}

// Publisher writes messages to one topic.
type Publisher struct {
	writer *kafkago.Writer
}

// NewPublisher creates a Publisher.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	tlsCfg, err := cfg.TLS()
	if err != nil {
		return nil, err
	}
	return &Publisher{writer: &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
		Transport:    &kafkago.Transport{TLS: tlsCfg},
	}}, nil
}

// Publish writes value with an optional key.
func (p *Publisher) Publish(ctx context.Context, key, value []byte) error {
	if err := p.writer.WriteMessages(ctx, kafkago.Message{Key: key, Value: value}); err != nil {
		return fmt.Errorf("publish to %s: %w", p.writer.Topic, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
