package main

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/morfien101/fila/pkg/comms"
	"github.com/morfien101/fila/pkg/desk"
	"github.com/morfien101/fila/pkg/fila"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1 << 20

type recordingPublisher struct {
	records chan fila.ServedRecord
}

func (p *recordingPublisher) Publish(rec fila.ServedRecord) bool {
	p.records <- rec
	return true
}

func startTestServer(t *testing.T, pub desk.RecordPublisher) (comms.QueueServiceClient, *QueueServer, chan bool) {
	t.Helper()
	shutdown := make(chan bool, 1)
	qs := newQueueServer(desk.New(fila.NewStore(), pub), shutdown)

	lis := bufconn.Listen(bufSize)
	go qs.serve(lis)
	t.Cleanup(qs.Stop)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, err := grpc.DialContext(ctx, "bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return comms.NewQueueServiceClient(conn), qs, shutdown
}

func TestWalkInOverGRPC(t *testing.T) {
	pub := &recordingPublisher{records: make(chan fila.ServedRecord, 4)}
	client, _, _ := startTestServer(t, pub)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, c := range []struct{ name, class string }{{"Ana", "N"}, {"Bia", "P"}, {"Caio", "priority"}} {
		if _, err := client.Enqueue(ctx, &comms.EnqueueRequest{Name: c.name, ServiceClass: c.class}); err != nil {
			t.Fatalf("enqueue %s: %v", c.name, err)
		}
	}

	list, err := client.ListPending(ctx, &comms.ListPendingRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"Bia", "Caio", "Ana"}
	for i, e := range list.Entries {
		if e.Name != want[i] || e.Position != int32(i) {
			t.Fatalf("entries[%d] = %+v", i, e)
		}
	}

	served, err := client.ServeNext(ctx, &comms.ServeNextRequest{})
	if err != nil {
		t.Fatalf("serve: %v", err)
	}
	if served.Outcome != "served" || served.Record == nil || served.Record.Name != "Bia" {
		t.Fatalf("served = %+v", served)
	}
	select {
	case rec := <-pub.records:
		if rec.Name != "Bia" {
			t.Fatalf("published %s", rec.Name)
		}
	case <-ctx.Done():
		t.Fatalf("record not published")
	}

	head, err := client.GetAt(ctx, &comms.PositionRequest{Position: 0})
	if err != nil || head.Entry.Name != "Caio" {
		t.Fatalf("head = %+v, %v", head, err)
	}

	removed, err := client.RemoveAt(ctx, &comms.PositionRequest{Position: 1})
	if err != nil || removed.Entry.Name != "Ana" {
		t.Fatalf("removed = %+v, %v", removed, err)
	}

	history, err := client.ListServed(ctx, &comms.ListServedRequest{})
	if err != nil || len(history.Records) != 1 || history.Records[0].Position != 0 {
		t.Fatalf("history = %+v, %v", history, err)
	}
}

func TestGRPCErrorCodes(t *testing.T) {
	client, _, _ := startTestServer(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Enqueue(ctx, &comms.EnqueueRequest{Name: "Ana", ServiceClass: "X"})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("enqueue code = %v", status.Code(err))
	}
	_, err = client.GetAt(ctx, &comms.PositionRequest{Position: 3})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("get code = %v", status.Code(err))
	}
	_, err = client.RemoveAt(ctx, &comms.PositionRequest{Position: -1})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("remove code = %v", status.Code(err))
	}

	empty, err := client.ServeNext(ctx, &comms.ServeNextRequest{})
	if err != nil {
		t.Fatalf("serve empty: %v", err)
	}
	if empty.Outcome != "queue_empty" || empty.Record != nil {
		t.Fatalf("empty = %+v", empty)
	}
}

func TestSubscribeQueue(t *testing.T) {
	client, _, _ := startTestServer(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.SubscribeQueue(ctx, &comms.SubscribeRequest{})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	first, err := stream.Recv()
	if err != nil {
		t.Fatalf("first snapshot: %v", err)
	}
	if len(first.Pending) != 0 {
		t.Fatalf("first = %+v", first)
	}

	if _, err := client.Enqueue(ctx, &comms.EnqueueRequest{Name: "Ana", ServiceClass: "N"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	next, err := stream.Recv()
	if err != nil {
		t.Fatalf("next snapshot: %v", err)
	}
	if len(next.Pending) != 1 || next.Pending[0].Name != "Ana" {
		t.Fatalf("next = %+v", next)
	}
}

func TestShutdownRequest(t *testing.T) {
	client, _, shutdown := startTestServer(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := 0; i < 2; i++ {
		if _, err := client.Shutdown(ctx, &comms.ShutdownRequest{}); err != nil {
			t.Fatalf("shutdown %d: %v", i, err)
		}
	}
	select {
	case <-shutdown:
	default:
		t.Fatalf("shutdown not signalled")
	}
}

func TestStopEndsSubscriptions(t *testing.T) {
	client, qs, _ := startTestServer(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.SubscribeQueue(ctx, &comms.SubscribeRequest{})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, err := stream.Recv(); err != nil {
		t.Fatalf("first snapshot: %v", err)
	}

	stopped := make(chan struct{})
	go func() {
		qs.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		t.Fatalf("Stop blocked on an open subscription")
	}
}
