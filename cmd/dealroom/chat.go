package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/dealroom-client/internal/events"
	"github.com/spec-kit/dealroom-client/internal/live"
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Per-deal chat",
	}
	cmd.AddCommand(
		newChatLogCmd(),
		newChatSendCmd(),
		newChatTailCmd(),
	)
	return cmd
}

func newChatLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log <deal-id>",
		Short: "Show a deal's message history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			messages, err := a.chat.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(messages) == 0 {
				fmt.Println("No messages yet.")
				return nil
			}
			for _, msg := range messages {
				fmt.Printf("[%s] %s: %s\n",
					msg.Timestamp.Format("15:04:05"), msg.Sender, msg.Content)
			}
			return nil
		},
	}
}

func newChatSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <deal-id> <message>...",
		Short: "Send a message to a deal",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			msg, err := a.chat.Send(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Printf("Sent at %s\n", msg.Timestamp.Format("15:04:05"))
			return nil
		},
	}
}

func newChatTailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tail <deal-id>",
		Short: "Follow a deal's messages live (Ctrl-C to stop)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			a.dispatcher.Subscribe(events.EventChatMessageReceived, func(_ context.Context, event events.Event) {
				payload, ok := event.Payload.(events.ChatMessagePayload)
				if !ok {
					return
				}
				fmt.Printf("[%s] %s: %s\n",
					payload.Message.Timestamp.Format("15:04:05"),
					payload.Message.Sender, payload.Message.Content)
			})

			channel, err := live.Dial(cmd.Context(), a.cfg.Live.URL, a.dispatcher, a.logger)
			if err != nil {
				return err
			}
			defer channel.Close()
			if err := channel.Join(args[0]); err != nil {
				return err
			}

			fmt.Println("Following messages; press Ctrl-C to stop.")
			<-cmd.Context().Done()
			return nil
		},
	}
}
