package comms

import (
	"testing"
	"time"

	"github.com/morfien101/fila/pkg/fila"
	"google.golang.org/grpc/encoding"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	if c == nil {
		t.Fatalf("codec %q not registered", CodecName)
	}

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	in := &ServeNextResponse{
		Outcome: fila.Served.String(),
		Record:  &ServedRecord{ID: "id-1", Name: "Ana", ServiceClass: "P", ArrivalTime: at, ServiceTime: at.Add(time.Minute)},
	}
	data, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	out := new(ServeNextResponse)
	if err := c.Unmarshal(data, out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Outcome != "served" || out.Record == nil || out.Record.Name != "Ana" {
		t.Fatalf("got %+v", out)
	}
	if !out.Record.ServiceTime.Equal(at.Add(time.Minute)) {
		t.Fatalf("service time = %v", out.Record.ServiceTime)
	}
}

func TestEmptyOutcomeOmitsRecord(t *testing.T) {
	data, err := jsonCodec{}.Marshal(&ServeNextResponse{Outcome: fila.QueueEmpty.String()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(data); got != `{"outcome":"queue_empty"}` {
		t.Fatalf("got %s", got)
	}
}

func TestFromEntryConvertsToUTC(t *testing.T) {
	sp := time.FixedZone("BRT", -3*60*60)
	e := fila.Entry{ID: "id-1", Name: "Bia", ServiceClass: fila.Priority, Position: 2, ArrivalTime: time.Date(2024, 3, 1, 9, 0, 0, 0, sp)}

	got := FromEntry(e)
	if got.Position != 2 || got.ServiceClass != "P" {
		t.Fatalf("got %+v", got)
	}
	if got.ArrivalTime.Location() != time.UTC || got.ArrivalTime.Hour() != 12 {
		t.Fatalf("arrival time = %v", got.ArrivalTime)
	}
}
