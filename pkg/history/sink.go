package history

import (
	"context"
	"time"

	"github.com/morfien101/fila/pkg/fila"
)

// Sink receives every served record. Sinks are write-only: nothing is read
// back when the server starts.
type Sink interface {
	Write(ctx context.Context, rec fila.ServedRecord) error
	Close() error
}

// Document is the backend-neutral shape of an exported record.
type Document struct {
	Queue        string    `json:"queue"`
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ServiceClass string    `json:"service_class"`
	Position     int       `json:"position"`
	ArrivalTime  time.Time `json:"arrival_time"`
	ServiceTime  time.Time `json:"service_time"`
}

func NewDocument(queue string, rec fila.ServedRecord) Document {
	return Document{
		Queue:        queue,
		ID:           rec.ID,
		Name:         rec.Name,
		ServiceClass: string(rec.ServiceClass),
		Position:     rec.Position,
		ArrivalTime:  rec.ArrivalTime.UTC(),
		ServiceTime:  rec.ServiceTime.UTC(),
	}
}
