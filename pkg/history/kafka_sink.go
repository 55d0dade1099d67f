package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/morfien101/fila/pkg/fila"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

const kafkaWriteTimeout = 5 * time.Second

// KafkaSink publishes each record keyed by entry ID.
type KafkaSink struct {
	writer *kafka.Writer
	queue  string
}

func NewKafkaSink(brokers []string, topic, queue string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			WriteTimeout: kafkaWriteTimeout,
		},
		queue: queue,
	}
}

func (s *KafkaSink) Write(ctx context.Context, rec fila.ServedRecord) error {
	msg, err := kafkaMessage(s.queue, rec)
	if err != nil {
		return err
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, "failed to write messages")
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

func kafkaMessage(queue string, rec fila.ServedRecord) (kafka.Message, error) {
	payload, err := json.Marshal(NewDocument(queue, rec))
	if err != nil {
		return kafka.Message{}, errors.Wrap(err, "failed to marshal payload")
	}
	return kafka.Message{
		Key:   []byte(rec.ID),
		Value: payload,
		Time:  rec.ServiceTime,
	}, nil
}
