package cmd

import (
	"fmt"

	internal "github.com/ZanzyTHEbar/hybridchat/hchat"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), internal.Version)
			return err
		},
	}
}
