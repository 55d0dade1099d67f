package comms

import (
	"time"

	"github.com/morfien101/fila/pkg/fila"
)

type Entry struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ServiceClass string    `json:"service_class"`
	Position     int32     `json:"position"`
	ArrivalTime  time.Time `json:"arrival_time"`
}

type ServedRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ServiceClass string    `json:"service_class"`
	Position     int32     `json:"position"`
	ArrivalTime  time.Time `json:"arrival_time"`
	ServiceTime  time.Time `json:"service_time"`
}

type EnqueueRequest struct {
	Name         string `json:"name"`
	ServiceClass string `json:"service_class"`
}

type EnqueueResponse struct {
	Entry Entry `json:"entry"`
}

type ServeNextRequest struct{}

// ServeNextResponse carries Record only when Outcome is "served".
type ServeNextResponse struct {
	Outcome string        `json:"outcome"`
	Record  *ServedRecord `json:"record,omitempty"`
}

type PositionRequest struct {
	Position int32 `json:"position"`
}

type EntryResponse struct {
	Entry Entry `json:"entry"`
}

type ListPendingRequest struct{}

type ListPendingResponse struct {
	Entries []Entry `json:"entries"`
}

type ListServedRequest struct{}

type ListServedResponse struct {
	Records []ServedRecord `json:"records"`
}

type SubscribeRequest struct{}

type QueueSnapshot struct {
	Pending     []Entry   `json:"pending"`
	ServedCount int32     `json:"served_count"`
	At          time.Time `json:"at"`
}

type ShutdownRequest struct{}

type ShutdownResponse struct{}

func FromEntry(e fila.Entry) Entry {
	return Entry{
		ID:           e.ID,
		Name:         e.Name,
		ServiceClass: string(e.ServiceClass),
		Position:     int32(e.Position),
		ArrivalTime:  e.ArrivalTime.UTC(),
	}
}

func FromEntries(entries []fila.Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = FromEntry(e)
	}
	return out
}

func FromServedRecord(r fila.ServedRecord) ServedRecord {
	return ServedRecord{
		ID:           r.ID,
		Name:         r.Name,
		ServiceClass: string(r.ServiceClass),
		Position:     int32(r.Position),
		ArrivalTime:  r.ArrivalTime.UTC(),
		ServiceTime:  r.ServiceTime.UTC(),
	}
}

func FromServedRecords(records []fila.ServedRecord) []ServedRecord {
	out := make([]ServedRecord, len(records))
	for i, r := range records {
		out[i] = FromServedRecord(r)
	}
	return out
}
