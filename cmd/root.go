// Package cmd implements the hchat command line.
package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "hchat",
		Short:         "Hybrid chatbot: learned answers, intent model, escalation and generative fallback",
		Long:          "hchat answers chat messages by trying, in order, answers users have taught it, a trained intent classifier, human-escalation keywords, a remote generation service and finally a canned reply.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.yaml (default: search ., .., etc/hchat, user config dir)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(opts),
		newAskCmd(opts),
		newHistoryCmd(opts),
	)

	return rootCmd
}
