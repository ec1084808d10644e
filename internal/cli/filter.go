package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tfbuild/svcmap/internal/tfvars"
)

func newFilterCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "filter <tfvars-file> <application>",
		Short: "List the services in a generated map belonging to an application",
		Long: `List the service names in a generated services map that belong to the
given application. Pass "all" to list every service; blocks without an
application attribute count as belonging to the legacy application.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tfvarsFile := args[0]
			application := args[1]

			raw, err := os.ReadFile(tfvarsFile)
			if err != nil {
				return fmt.Errorf("read %s: %w", tfvarsFile, err)
			}

			names, err := tfvars.ServicesByApplication(raw, filepath.Base(tfvarsFile), application)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				encoded, err := json.Marshal(names)
				if err != nil {
					return fmt.Errorf("encode service names: %w", err)
				}
				fmt.Fprintln(out, string(encoded))
			case "list":
				fmt.Fprintln(out, strings.Join(names, " "))
			default:
				return fmt.Errorf("unsupported format %q (expected json or list)", format)
			}

			if len(names) == 0 {
				return fmt.Errorf("no services found for application %q in %s", application, tfvarsFile)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or list")
	return cmd
}
