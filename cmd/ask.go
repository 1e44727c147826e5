package cmd

import (
	"encoding/json"
	"strings"

	"github.com/ZanzyTHEbar/hybridchat/hchat/chat"
	"github.com/spf13/cobra"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	var (
		sessionID string
		teach     string
	)

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one chat message and print the JSON reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wireApp(cmd.Context(), opts.configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			reply, err := a.service.Chat(cmd.Context(), chat.Request{
				SessionID:     sessionID,
				Message:       strings.Join(args, " "),
				TeachResponse: teach,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(reply)
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id (generated when empty)")
	cmd.Flags().StringVar(&teach, "teach", "", "teach this answer for the message instead of chatting")

	return cmd
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <session-id>",
		Short: "Print a session's stored turns as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wireApp(cmd.Context(), opts.configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			history, err := a.service.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"session_id": args[0], "history": history})
		},
	}
}
