package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"aufgussplan/internal/logger"
	"aufgussplan/internal/models"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes domain events. The topic is set per message so one
// writer serves both topics.
type Producer struct {
	Writer messageWriter
	Topics Topics
	Logger *logger.Logger
}

type Topics struct {
	StatistikLogged  string
	AufguesseChanged string
}

func NewProducer(brokers []string, topics Topics, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &Producer{Writer: writer, Topics: topics, Logger: log}
}

func (p *Producer) publish(ctx context.Context, topic, key string, event interface{}) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.Logger.LogKafka("PUBLISH", topic, string(msgBytes))

	return p.Writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: msgBytes,
	})
}

// PublishStatistikLogged streams a counted session to Kafka.
func (p *Producer) PublishStatistikLogged(ctx context.Context, event models.StatistikLoggedEvent) error {
	return p.publish(ctx, p.Topics.StatistikLogged, strconv.FormatInt(event.AufgussID, 10), event)
}

// AufguesseChanged streams a session change to Kafka. Failures are logged.
func (p *Producer) AufguesseChanged(ctx context.Context, event models.AufguesseChangedEvent) {
	if err := p.publish(ctx, p.Topics.AufguesseChanged, strconv.FormatInt(event.AufgussID, 10), event); err != nil {
		p.Logger.Warn("KAFKA", fmt.Sprintf("aufguesse event not published: %v", err))
	}
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
