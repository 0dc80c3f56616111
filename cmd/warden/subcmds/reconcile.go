package subcmds

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/pkg/warden"
)

func newReconcileCommand(args *inArgs) *cobra.Command {
	var allows []string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "reconcile <target>",
		Short: "Drive a group's ingress to the declared intent",
		Long: `Reconcile the target group's ingress rules against the declared
intent. Every source group named by an --allow converges on its port
spec; every other known group loses its rules on the target. An --allow
with an empty spec ("source=") revokes that source's rules too.

Failures on individual source groups are contained: the remaining
groups are still reconciled and the failures are reported in the
summary. The command exits nonzero when any source group failed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			intent, err := parseAllows(allows)
			if err != nil {
				return err
			}
			manager, err := buildManager(cmd.Context(), args)
			if err != nil {
				return err
			}

			var summary *warden.Summary
			if dryRun {
				summary, err = manager.Plan(cmd.Context(), args.scope(), posArgs[0], intent)
			} else {
				summary, err = manager.Reconcile(cmd.Context(), args.scope(), posArgs[0], intent)
			}
			if err != nil {
				return err
			}

			printSummary(cmd, summary)
			if !summary.Ok() {
				return fmt.Errorf("%d source group(s) failed", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&allows, "allow", nil,
		"source=portspec pair, repeatable; an empty spec revokes the source's rules")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"compute and report the changes without applying them")

	return cmd
}

// parseAllows turns repeated source=portspec pairs into an intent. Specs
// are parsed up front so a typo aborts before anything is touched.
func parseAllows(allows []string) (warden.Intent, error) {
	intent := warden.Intent{Specs: make(map[string]string, len(allows))}
	for _, allow := range allows {
		source, spec, found := strings.Cut(allow, "=")
		if !found {
			return warden.Intent{}, fmt.Errorf("--allow %q: expected source=portspec", allow)
		}
		if source == "" {
			return warden.Intent{}, fmt.Errorf("--allow %q: empty source group name", allow)
		}
		if _, err := warden.ParsePortSpec(spec); err != nil {
			return warden.Intent{}, fmt.Errorf("--allow %q: %w", allow, err)
		}
		if _, dup := intent.Specs[source]; !dup {
			intent.Selected = append(intent.Selected, source)
		}
		intent.Specs[source] = spec
	}
	return intent, nil
}

func printSummary(cmd *cobra.Command, summary *warden.Summary) {
	for _, result := range summary.Results {
		switch {
		case result.Err != nil:
			cmd.Printf("  %s: failed: %v\n", result.Source, result.Err)
		case result.Changed():
			cmd.Printf("  %s: granted %d, revoked %d\n", result.Source, len(result.Granted), len(result.Revoked))
		}
	}
	cmd.Println(summary.Message())
}
