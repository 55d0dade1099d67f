package main

import (
	context "context"
	"fmt"
	"net"
	sync "sync"
	"time"

	"github.com/morfien101/fila/pkg/comms"
	"github.com/morfien101/fila/pkg/desk"
	"github.com/morfien101/fila/pkg/fila"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const gracefulStopTimeout = 30 * time.Second

type QueueServer struct {
	comms.UnimplementedQueueServiceServer
	desk     *desk.Desk
	shutdown chan bool

	grpc     *grpc.Server
	done     chan struct{}
	stopOnce sync.Once
}

func newQueueServer(d *desk.Desk, shutdown chan bool) *QueueServer {
	s := &QueueServer{
		desk:     d,
		shutdown: shutdown,
		done:     make(chan struct{}),
	}
	s.grpc = grpc.NewServer()
	comms.RegisterQueueServiceServer(s.grpc, s)
	return s
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, fila.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, fila.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func (s *QueueServer) Enqueue(ctx context.Context, req *comms.EnqueueRequest) (*comms.EnqueueResponse, error) {
	e, err := s.desk.Enqueue(ctx, req.Name, req.ServiceClass)
	if err != nil {
		return nil, toStatus(err)
	}
	return &comms.EnqueueResponse{Entry: comms.FromEntry(e)}, nil
}

func (s *QueueServer) ServeNext(ctx context.Context, req *comms.ServeNextRequest) (*comms.ServeNextResponse, error) {
	rec, outcome := s.desk.ServeNext(ctx)
	resp := &comms.ServeNextResponse{Outcome: outcome.String()}
	if outcome == fila.Served {
		r := comms.FromServedRecord(rec)
		resp.Record = &r
	}
	return resp, nil
}

func (s *QueueServer) RemoveAt(ctx context.Context, req *comms.PositionRequest) (*comms.EntryResponse, error) {
	e, err := s.desk.RemoveAt(ctx, int(req.Position))
	if err != nil {
		return nil, toStatus(err)
	}
	return &comms.EntryResponse{Entry: comms.FromEntry(e)}, nil
}

func (s *QueueServer) GetAt(ctx context.Context, req *comms.PositionRequest) (*comms.EntryResponse, error) {
	e, err := s.desk.GetAt(int(req.Position))
	if err != nil {
		return nil, toStatus(err)
	}
	return &comms.EntryResponse{Entry: comms.FromEntry(e)}, nil
}

func (s *QueueServer) ListPending(ctx context.Context, req *comms.ListPendingRequest) (*comms.ListPendingResponse, error) {
	return &comms.ListPendingResponse{Entries: comms.FromEntries(s.desk.ListPending())}, nil
}

func (s *QueueServer) ListServed(ctx context.Context, req *comms.ListServedRequest) (*comms.ListServedResponse, error) {
	return &comms.ListServedResponse{Records: comms.FromServedRecords(s.desk.ListServed())}, nil
}

func (s *QueueServer) SubscribeQueue(req *comms.SubscribeRequest, stream comms.QueueService_SubscribeQueueServer) error {
	ctx, cancel := context.WithCancel(stream.Context())
	defer cancel()

	updates, err := s.desk.Watch(ctx)
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}

	for {
		select {
		case <-s.done:
			return nil
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			log.WithField("pending", len(snap.Pending)).Debug("Sending snapshot to subscriber")
			if err := stream.Send(&comms.QueueSnapshot{
				Pending:     comms.FromEntries(snap.Pending),
				ServedCount: int32(snap.ServedCount),
				At:          snap.At,
			}); err != nil {
				return err
			}
		}
	}
}

// Shutdown asks main to stop the process. Repeated requests are ignored.
func (s *QueueServer) Shutdown(ctx context.Context, req *comms.ShutdownRequest) (*comms.ShutdownResponse, error) {
	select {
	case s.shutdown <- true:
		log.Info("Shutdown requested over gRPC")
	default:
	}
	return &comms.ShutdownResponse{}, nil
}

// StartServer listens on address and serves in the background.
func (s *QueueServer) StartServer(address string) error {
	log.WithFields(log.Fields{"address": address}).Info("Starting gRPC server")
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("gRPC failure: %v", err)
	}
	go s.serve(lis)
	return nil
}

func (s *QueueServer) serve(lis net.Listener) {
	if err := s.grpc.Serve(lis); err != nil {
		log.WithFields(log.Fields{"error": err}).Error("gRPC server stopped with an error")
	}
}

// Stop ends subscriptions and waits for in-flight calls, forcing the server
// down if that takes longer than gracefulStopTimeout.
func (s *QueueServer) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)

		timer := time.NewTimer(gracefulStopTimeout)
		defer timer.Stop()
		serverStopped := make(chan bool)
		go func() {
			s.grpc.GracefulStop()
			close(serverStopped)
		}()

		select {
		case <-serverStopped:
		case <-timer.C:
			log.Error("gRPC server did not stop in time, forcing shutdown!")
			s.grpc.Stop()
		}
	})
}
