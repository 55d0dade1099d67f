package fila

import (
	"fmt"
	"strings"
	"time"
)

// MaxNameLength is the longest client name accepted, counted in characters.
const MaxNameLength = 20

// ServiceClass decides where a new entry is inserted.
type ServiceClass string

const (
	Normal   ServiceClass = "N"
	Priority ServiceClass = "P"
)

func (c ServiceClass) Valid() bool {
	return c == Normal || c == Priority
}

// ParseServiceClass accepts the one-letter wire codes and the full words.
func ParseServiceClass(s string) (ServiceClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "normal":
		return Normal, nil
	case "p", "priority":
		return Priority, nil
	}
	return "", &ValidationError{Field: FieldServiceClass, Reason: fmt.Sprintf("%q is not N or P", s)}
}

// Entry is a client waiting in the pending sequence.
type Entry struct {
	ID           string
	Name         string
	ServiceClass ServiceClass
	Position     int
	ArrivalTime  time.Time
	Served       bool
}

// ServedRecord is an entry after it was served. Records are never mutated.
type ServedRecord struct {
	ID           string
	Name         string
	ServiceClass ServiceClass
	Position     int
	ArrivalTime  time.Time
	ServiceTime  time.Time
}

// Outcome reports what ServeNext did.
type Outcome int

const (
	Served Outcome = iota
	QueueEmpty
	AllServed
)

func (o Outcome) String() string {
	switch o {
	case Served:
		return "served"
	case QueueEmpty:
		return "queue_empty"
	case AllServed:
		return "all_served"
	default:
		return "unknown"
	}
}
