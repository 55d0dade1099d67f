package history

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws/session"
)

// Options selects and configures a backend. Only the fields of the chosen
// backend are read.
type Options struct {
	Backend string
	// Queue names the queue inside shared tables, topics and keys.
	Queue string

	// DynamoDB table or Firestore collection.
	Table             string
	GCPProject        string
	FirestoreDatabase string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	KafkaBrokers []string
	KafkaTopic   string

	PostgresDSN string
}

// Backends lists the accepted backend names, aliases included.
var Backends = []string{"log", "dynamodb", "aws", "firestore", "gcp", "redis", "kafka", "postgres"}

func NewSink(ctx context.Context, opts Options) (Sink, error) {
	selected := strings.ToLower(strings.TrimSpace(opts.Backend))
	if selected == "" {
		selected = "log"
	}

	switch selected {
	case "log":
		return NewLogSink(opts.Queue), nil
	case "aws", "dynamodb":
		if opts.Table == "" {
			return nil, fmt.Errorf("table name is required when backend is set to aws/dynamodb")
		}
		sess := session.Must(session.NewSession())
		return NewDynamoDBSink(sess, opts.Table, opts.Queue), nil
	case "gcp", "firestore":
		projectID := strings.TrimSpace(opts.GCPProject)
		if projectID == "" {
			projectID = strings.TrimSpace(os.Getenv("GCP_PROJECT"))
		}
		if projectID == "" {
			projectID = strings.TrimSpace(os.Getenv("GOOGLE_CLOUD_PROJECT"))
		}
		if projectID == "" {
			return nil, fmt.Errorf("gcp project ID is required when backend is set to gcp/firestore")
		}
		if opts.Table == "" {
			return nil, fmt.Errorf("collection name is required when backend is set to gcp/firestore")
		}
		return NewFirestoreSink(ctx, projectID, opts.FirestoreDatabase, opts.Table, opts.Queue)
	case "redis":
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("redis address is required when backend is set to redis")
		}
		return NewRedisSink(ctx, opts)
	case "kafka":
		if len(opts.KafkaBrokers) == 0 || opts.KafkaTopic == "" {
			return nil, fmt.Errorf("kafka brokers and topic are required when backend is set to kafka")
		}
		return NewKafkaSink(opts.KafkaBrokers, opts.KafkaTopic, opts.Queue), nil
	case "postgres":
		if opts.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres DSN is required when backend is set to postgres")
		}
		return NewPostgresSink(opts.PostgresDSN, opts.Queue)
	default:
		return nil, fmt.Errorf("unsupported backend: %s", opts.Backend)
	}
}
