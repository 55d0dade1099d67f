package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/morfien101/fila/pkg/comms"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04:05"

func (c *checker) enqueueCmd() *cobra.Command {
	var class string
	cmd := &cobra.Command{
		Use:   "enqueue NAME",
		Short: "Add a client to the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(cmd, func(ctx context.Context, client comms.QueueServiceClient) error {
				resp, err := client.Enqueue(ctx, &comms.EnqueueRequest{Name: args[0], ServiceClass: class})
				if err != nil {
					return fmt.Errorf("could not enqueue: %v", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s joined at position %d\n", resp.Entry.Name, resp.Entry.Position)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&class, "class", "c", "N", "Service class: N (normal) or P (priority).")
	return cmd
}

func (c *checker) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the client at the front of the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(cmd, func(ctx context.Context, client comms.QueueServiceClient) error {
				resp, err := client.ServeNext(ctx, &comms.ServeNextRequest{})
				if err != nil {
					return fmt.Errorf("could not serve: %v", err)
				}
				if resp.Record == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "nothing to serve (%s)\n", resp.Outcome)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "served %s at %s\n", resp.Record.Name, resp.Record.ServiceTime.Local().Format(timeLayout))
				return nil
			})
		},
	}
}

func (c *checker) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get POSITION",
		Short: "Show the client at a position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			return c.call(cmd, func(ctx context.Context, client comms.QueueServiceClient) error {
				resp, err := client.GetAt(ctx, &comms.PositionRequest{Position: pos})
				if err != nil {
					return fmt.Errorf("could not get position %d: %v", pos, err)
				}
				printEntries(cmd.OutOrStdout(), []comms.Entry{resp.Entry})
				return nil
			})
		},
	}
}

func (c *checker) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove POSITION",
		Short: "Remove the client at a position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			return c.call(cmd, func(ctx context.Context, client comms.QueueServiceClient) error {
				resp, err := client.RemoveAt(ctx, &comms.PositionRequest{Position: pos})
				if err != nil {
					return fmt.Errorf("could not remove position %d: %v", pos, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s from position %d\n", resp.Entry.Name, pos)
				return nil
			})
		},
	}
}

func (c *checker) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the pending clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(cmd, func(ctx context.Context, client comms.QueueServiceClient) error {
				resp, err := client.ListPending(ctx, &comms.ListPendingRequest{})
				if err != nil {
					return fmt.Errorf("could not list queue: %v", err)
				}
				printEntries(cmd.OutOrStdout(), resp.Entries)
				return nil
			})
		},
	}
}

func (c *checker) servedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "served",
		Short: "List the served clients in service order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(cmd, func(ctx context.Context, client comms.QueueServiceClient) error {
				resp, err := client.ListServed(ctx, &comms.ListServedRequest{})
				if err != nil {
					return fmt.Errorf("could not list served clients: %v", err)
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "POSITION\tNAME\tCLASS\tARRIVED\tSERVED")
				for _, r := range resp.Records {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.Position, r.Name, r.ServiceClass,
						r.ArrivalTime.Local().Format(timeLayout), r.ServiceTime.Local().Format(timeLayout))
				}
				return w.Flush()
			})
		},
	}
}

func (c *checker) watchCmd() *cobra.Command {
	var untilEmpty bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream the queue as it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closer, err := c.dial(cmd.Context(), c.address())
			if err != nil {
				return err
			}
			defer closer.Close()

			stream, err := client.SubscribeQueue(cmd.Context(), &comms.SubscribeRequest{})
			if err != nil {
				return fmt.Errorf("could not subscribe to queue: %v", err)
			}
			for {
				log.Debug("Waiting for response from stream...")
				snap, err := stream.Recv()
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return fmt.Errorf("error receiving from stream: %v", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "-- %s: %d waiting, %d served\n", snap.At.Local().Format(timeLayout), len(snap.Pending), snap.ServedCount)
				printEntries(cmd.OutOrStdout(), snap.Pending)
				if untilEmpty && len(snap.Pending) == 0 {
					log.Info("Queue is empty")
					return nil
				}
			}
		},
	}
	cmd.Flags().BoolVar(&untilEmpty, "until-empty", false, "Exit once the queue has no pending clients.")
	return cmd
}

func (c *checker) shutdownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shutdown",
		Short: "Ask the server to stop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info("Sending shutdown signal...")
			return c.call(cmd, func(ctx context.Context, client comms.QueueServiceClient) error {
				if _, err := client.Shutdown(ctx, &comms.ShutdownRequest{}); err != nil {
					return fmt.Errorf("could not send shutdown: %v", err)
				}
				return nil
			})
		},
	}
}

func parsePosition(s string) (int32, error) {
	pos, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("position must be an integer: %q", s)
	}
	return int32(pos), nil
}

func printEntries(out io.Writer, entries []comms.Entry) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "POSITION\tNAME\tCLASS\tARRIVED")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.Position, e.Name, e.ServiceClass, e.ArrivalTime.Local().Format(timeLayout))
	}
	w.Flush()
}
