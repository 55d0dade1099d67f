package history

import (
	"context"
	"encoding/base64"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/morfien101/fila/pkg/fila"
)

type FirestoreSink struct {
	client     *firestore.Client
	collection string
	queue      string
}

func NewFirestoreSink(ctx context.Context, projectID, databaseID, collection, queue string) (*FirestoreSink, error) {
	var (
		client *firestore.Client
		err    error
	)
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, err
	}
	return &FirestoreSink{client: client, collection: collection, queue: queue}, nil
}

func (s *FirestoreSink) Write(ctx context.Context, rec fila.ServedRecord) error {
	_, err := s.client.Collection(s.collection).Doc(firestoreDocID(s.queue, rec.ID)).Set(ctx, firestoreFields(s.queue, rec))
	return err
}

func (s *FirestoreSink) Close() error {
	return s.client.Close()
}

func firestoreFields(queue string, rec fila.ServedRecord) map[string]interface{} {
	doc := NewDocument(queue, rec)
	return map[string]interface{}{
		"queueName":    doc.Queue,
		"entryId":      doc.ID,
		"name":         doc.Name,
		"serviceClass": doc.ServiceClass,
		"position":     int64(doc.Position),
		"arrivalTime":  doc.ArrivalTime,
		"serviceTime":  doc.ServiceTime,
	}
}

// Entry IDs are unique, so rewriting the same record is idempotent.
func firestoreDocID(queue, entryID string) string {
	safeQueue := base64.RawURLEncoding.EncodeToString([]byte(queue))
	return fmt.Sprintf("%s-%s", safeQueue, entryID)
}
