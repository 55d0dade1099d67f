package history

import (
	"context"

	"github.com/morfien101/fila/pkg/fila"
	log "github.com/sirupsen/logrus"
)

// LogSink only logs records. It is the default backend.
type LogSink struct {
	queue string
}

func NewLogSink(queue string) *LogSink {
	return &LogSink{queue: queue}
}

func (s *LogSink) Write(_ context.Context, rec fila.ServedRecord) error {
	log.WithFields(log.Fields{
		"queueName":    s.queue,
		"id":           rec.ID,
		"name":         rec.Name,
		"serviceClass": string(rec.ServiceClass),
		"position":     rec.Position,
		"waited":       rec.ServiceTime.Sub(rec.ArrivalTime).String(),
	}).Info("Client served")
	return nil
}

func (s *LogSink) Close() error {
	return nil
}
