package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tfbuild/svcmap/internal/tfvars"
)

func newUpdateTagsCmd() *cobra.Command {
	var (
		tfvarsFile  string
		serviceTags string
	)

	cmd := &cobra.Command{
		Use:   "update-tags",
		Short: "Update image_tag values inside an existing services map",
		Long: `Update the image_tag assignment for the named services in a generated
services map, leaving every other byte of the document untouched. Requesting
a tag that is already current is a success, not an error, so promotion
workflows can re-run safely.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var tags map[string]string
			if err := json.Unmarshal([]byte(serviceTags), &tags); err != nil {
				return fmt.Errorf("invalid JSON in --service-tags: %w", err)
			}

			raw, err := os.ReadFile(tfvarsFile)
			if err != nil {
				return fmt.Errorf("read %s: %w", tfvarsFile, err)
			}

			result := tfvars.PatchImageTags(string(raw), tags)
			for _, warning := range result.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warning)
			}

			out := cmd.OutOrStdout()
			if len(result.Changes) == 0 {
				fmt.Fprintln(out, "No changes needed; all image tags are already up to date")
				return nil
			}

			for _, change := range result.Changes {
				fmt.Fprintf(out, "Updated %s: %s -> %s\n", change.Service, change.From, change.To)
			}
			if err := os.WriteFile(tfvarsFile, []byte(result.Content), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", tfvarsFile, err)
			}
			fmt.Fprintf(out, "Updated %s\n", tfvarsFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&tfvarsFile, "tfvars-file", "", "Path to the generated services map")
	cmd.Flags().StringVar(&serviceTags, "service-tags", "", `JSON object mapping service names to image tags, e.g. '{"web": "v1.2.0"}'`)
	_ = cmd.MarkFlagRequired("tfvars-file")
	_ = cmd.MarkFlagRequired("service-tags")

	return cmd
}
