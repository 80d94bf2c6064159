package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"sort"
	"syscall"

	"content-qa-cms/events"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var watchOutput string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream changeset events as items are saved",
	Long: `Stream changeset events published by running servers.

Output Formats:
  default - one line per changeset with the changed fields
  json    - line-delimited JSON for programmatic processing

Requires REDIS_ADDR.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "default", "output format (default or json)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchOutput != "default" && watchOutput != "json" {
		return fmt.Errorf("unknown output format %q, use default or json", watchOutput)
	}
	if !app.cfg.Redis.Enabled() {
		return errors.New("REDIS_ADDR is not set")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{Addr: app.cfg.Redis.Addr, DB: app.cfg.Redis.DB})
	defer rdb.Close()

	stream, err := events.NewRedisPublisher(rdb, app.cfg.Redis.Prefix, app.log).Subscribe(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if watchOutput == "default" {
		faint.Fprintf(out, "watching %s\n", events.ChangesetEventsChannel(app.cfg.Redis.Prefix))
	}
	for event := range stream {
		if err := printEvent(out, event, watchOutput); err != nil {
			return err
		}
	}
	return nil
}

func printEvent(w io.Writer, event events.ChangesetEvent, format string) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(event)
	}

	fields := make([]string, 0, len(event.Diff))
	for field := range event.Diff {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	faint.Fprintf(w, "%s ", event.OccurredAt.Format("15:04:05"))
	cyan.Fprintf(w, "%s #%d", event.ItemType, event.ItemID)
	fmt.Fprintf(w, " changeset %d", event.ChangesetID)
	if event.UserID != nil {
		fmt.Fprintf(w, " by user %d", *event.UserID)
	}
	fmt.Fprintln(w)
	for _, field := range fields {
		yellow.Fprintf(w, "  %s", field)
		fmt.Fprintf(w, " %v\n", event.Diff[field])
	}
	return nil
}
