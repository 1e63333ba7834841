package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/veillard/tabulaire/internal/events"
	"github.com/veillard/tabulaire/internal/ui"
)

func defaultNATSURL() string {
	if s := os.Getenv("TABULAIRE_NATS_URL"); s != "" {
		return s
	}
	if s := activeRemoteNATSURL(); s != "" {
		return s
	}
	return "nats://localhost:4222"
}

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Stream server events from NATS",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		natsURL, _ := cmd.Flags().GetString("nats")
		topic, _ := cmd.Flags().GetString("topic")

		sub, err := events.NewNATSSubscriber(natsURL)
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		defer sub.Close()

		ch, cancel, err := sub.Subscribe(topic)
		if err != nil {
			return fmt.Errorf("subscribe %q: %w", topic, err)
		}
		defer cancel()

		fmt.Printf("watching %s (ctrl-c to stop)\n", ui.RenderAccent(topic))

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

		for {
			select {
			case <-sig:
				return nil
			case data, ok := <-ch:
				if !ok {
					return nil
				}
				printEvent(data)
			}
		}
	},
}

// printEvent renders one event payload, compacting JSON when possible.
func printEvent(data []byte) {
	var buf map[string]any
	if err := json.Unmarshal(data, &buf); err != nil {
		fmt.Println(string(data))
		return
	}
	compact, err := json.Marshal(buf)
	if err != nil {
		fmt.Println(string(data))
		return
	}
	fmt.Println(string(compact))
}

func init() {
	watchCmd.Flags().String("nats", defaultNATSURL(), "NATS server URL")
	watchCmd.Flags().String("topic", "tabulaire.>", "topic pattern to subscribe to")
}
