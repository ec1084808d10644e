package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd assembles the svcmap command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "svcmap",
		Short: "Generate and maintain the ECS services Terraform variables file",
	}

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newUpdateTagsCmd())
	root.AddCommand(newExtractCmd())
	root.AddCommand(newFilterCmd())

	root.SilenceUsage = true
	root.SilenceErrors = true

	return root
}

// Execute runs the CLI entrypoint.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
