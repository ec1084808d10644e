package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tfbuild/svcmap/internal/tfvars"
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <tfvars-file> <output-file> <service>...",
		Short: "Extract complete service blocks into a separate services map",
		Long: `Extract the full, brace-balanced blocks for the named services from a
generated services map and append them to the output file, re-indented to
nest inside the enclosing map. The closing brace of the map is written after
the extracted blocks.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			tfvarsFile := args[0]
			outputFile := args[1]
			names := args[2:]

			raw, err := os.ReadFile(tfvarsFile)
			if err != nil {
				return fmt.Errorf("read %s: %w", tfvarsFile, err)
			}

			blocks, count := tfvars.ExtractServiceBlocks(string(raw), names)

			f, err := os.OpenFile(outputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("open %s: %w", outputFile, err)
			}
			if _, err := f.WriteString(blocks + "}\n"); err != nil {
				f.Close()
				return fmt.Errorf("write %s: %w", outputFile, err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", outputFile, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d service(s)\n", count)
			if count == 0 {
				return fmt.Errorf("no requested service blocks found in %s", tfvarsFile)
			}
			return nil
		},
	}
	return cmd
}
