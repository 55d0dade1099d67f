package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/morfien101/fila/pkg/comms"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var (
	version = "development"
)

// dialFunc opens a client for address. The closer releases the connection.
type dialFunc func(ctx context.Context, address string) (comms.QueueServiceClient, io.Closer, error)

func dialGRPC(ctx context.Context, address string) (comms.QueueServiceClient, io.Closer, error) {
	conn, err := grpc.DialContext(ctx, address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to server: %v", err)
	}
	return comms.NewQueueServiceClient(conn), conn, nil
}

func main() {
	if err := newRootCmd(dialGRPC).Execute(); err != nil {
		os.Exit(1)
	}
}

type checker struct {
	dial     dialFunc
	host     string
	port     int
	logLevel string
	timeout  time.Duration
}

func newRootCmd(dial dialFunc) *cobra.Command {
	c := &checker{dial: dial}

	root := &cobra.Command{
		Use:           "fila_checker",
		Short:         "Talk to a running fila_server over gRPC",
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(c.logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level: %v", err)
			}
			log.SetLevel(level)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.host, "host", "localhost", "The host to connect to gRPC on.")
	root.PersistentFlags().IntVar(&c.port, "port", 50051, "The port to connect on.")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "info", "The log level to use. Options are: trace, debug, info, warn, error, fatal, panic")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 10*time.Second, "Timeout for unary calls.")

	root.AddCommand(
		c.enqueueCmd(),
		c.serveCmd(),
		c.getCmd(),
		c.removeCmd(),
		c.listCmd(),
		c.servedCmd(),
		c.watchCmd(),
		c.shutdownCmd(),
	)
	return root
}

func (c *checker) address() string {
	return c.host + ":" + strconv.Itoa(c.port)
}

// call runs fn with a connected client and the unary timeout applied.
func (c *checker) call(cmd *cobra.Command, fn func(ctx context.Context, client comms.QueueServiceClient) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), c.timeout)
	defer cancel()

	client, closer, err := c.dial(ctx, c.address())
	if err != nil {
		log.WithFields(log.Fields{"host": c.host, "port": strconv.Itoa(c.port)}).Error("Could not connect to server")
		return err
	}
	defer closer.Close()
	return fn(ctx, client)
}
