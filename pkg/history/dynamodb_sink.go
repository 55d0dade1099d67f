package history

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/morfien101/fila/pkg/fila"
)

// DynamoDBSink writes one item per served record. The table is keyed by
// queueName (hash) and serviceTime in unix nanoseconds (range).
type DynamoDBSink struct {
	svc       dynamodbiface.DynamoDBAPI
	tableName string
	queue     string
}

func NewDynamoDBSink(sess *session.Session, tableName, queue string) *DynamoDBSink {
	return &DynamoDBSink{svc: dynamodb.New(sess), tableName: tableName, queue: queue}
}

func (s *DynamoDBSink) Write(ctx context.Context, rec fila.ServedRecord) error {
	_, err := s.svc.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      servedItem(s.queue, rec),
	})
	return err
}

func (s *DynamoDBSink) Close() error {
	return nil
}

func servedItem(queue string, rec fila.ServedRecord) map[string]*dynamodb.AttributeValue {
	doc := NewDocument(queue, rec)
	return map[string]*dynamodb.AttributeValue{
		"queueName": {
			S: aws.String(doc.Queue),
		},
		"serviceTime": {
			N: aws.String(strconv.FormatInt(doc.ServiceTime.UnixNano(), 10)),
		},
		"entryId": {
			S: aws.String(doc.ID),
		},
		"name": {
			S: aws.String(doc.Name),
		},
		"serviceClass": {
			S: aws.String(doc.ServiceClass),
		},
		"position": {
			N: aws.String(strconv.Itoa(doc.Position)),
		},
		"arrivalTime": {
			S: aws.String(doc.ArrivalTime.Format(time.RFC3339Nano)),
		},
	}
}
