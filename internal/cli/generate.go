package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tfbuild/svcmap/internal/spec"
	"github.com/tfbuild/svcmap/internal/tfvars"
)

const generatedFileName = "services.generated.tfvars"

func newGenerateCmd() *cobra.Command {
	var (
		baseDir     string
		outputDir   string
		environment string
		modulePath  string
		application string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render the services map from service spec documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(baseDir); err != nil {
				return fmt.Errorf("base directory does not exist: %s", baseDir)
			}

			services, err := spec.Load(baseDir)
			if err != nil {
				return err
			}
			if len(services) == 0 {
				return fmt.Errorf("no service specs found under %s: at least one *.yaml spec is required in services/ or applications/*/services/", baseDir)
			}

			if application != "" {
				if err := spec.ValidateApplicationName(application, "command line"); err != nil {
					return err
				}
				available := spec.Applications(services)
				filtered := services[:0:0]
				for _, svc := range services {
					if svc.Application == application {
						filtered = append(filtered, svc)
					}
				}
				if len(filtered) == 0 {
					return fmt.Errorf("no services found for application %q; available applications: %s", application, strings.Join(available, ", "))
				}
				services = filtered
			}

			if err := spec.ValidateUniqueNames(services); err != nil {
				return err
			}
			if err := spec.ValidateRoutingConflicts(services); err != nil {
				return err
			}

			content, err := tfvars.Render(services)
			if err != nil {
				return err
			}
			if err := tfvars.CheckSyntax(generatedFileName, []byte(content)); err != nil {
				return err
			}

			targetDir := filepath.Join(outputDir, "live", environment, modulePath)
			if err := os.MkdirAll(targetDir, 0o755); err != nil {
				return fmt.Errorf("create target directory: %w", err)
			}
			targetFile := filepath.Join(targetDir, generatedFileName)
			if err := os.WriteFile(targetFile, []byte(content), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", targetFile, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote services map for environment %q to %s\n", environment, targetFile)
			fmt.Fprintf(out, "Generated %d service(s) across %d application(s): %s\n",
				len(services), len(spec.Applications(services)), applicationSummary(services))
			return nil
		},
	}

	cmd.Flags().StringVar(&baseDir, "base-dir", ".", "Path to the repository root containing services/ and applications/")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Path to the infrastructure repo root that receives the generated file")
	cmd.Flags().StringVar(&environment, "environment", "", "Target environment (e.g. dev, staging, production)")
	cmd.Flags().StringVar(&modulePath, "module-path", "04-ecs-fargate", "Terraform module path under live/<environment>")
	cmd.Flags().StringVar(&application, "application", "", "Only include services belonging to this application")
	_ = cmd.MarkFlagRequired("output-dir")
	_ = cmd.MarkFlagRequired("environment")

	return cmd
}

func applicationSummary(services []*spec.Service) string {
	counts := map[string]int{}
	for _, svc := range services {
		counts[svc.Application]++
	}
	apps := make([]string, 0, len(counts))
	for app := range counts {
		apps = append(apps, app)
	}
	sort.Strings(apps)

	parts := make([]string, 0, len(apps))
	for _, app := range apps {
		parts = append(parts, fmt.Sprintf("%s (%d service(s))", app, counts[app]))
	}
	return strings.Join(parts, ", ")
}
