package subcmds

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/pkg/warden"
)

func newShowCommand(args *inArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "show <group>",
		Short: "Show a security group and its ingress rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			manager, err := buildManager(cmd.Context(), args)
			if err != nil {
				return err
			}
			group, err := manager.GetGroup(cmd.Context(), args.scope(), posArgs[0])
			if err != nil {
				return err
			}

			cmd.Printf("%s %s vpc=%s\n", group.Name, group.ID, group.VPCID)
			if group.Description != "" {
				cmd.Printf("  %s\n", group.Description)
			}
			for _, rule := range sortedIngress(group.Ingress) {
				if rule.FromPort == rule.ToPort {
					cmd.Printf("  allow %s %s:%d\n", rule.Source, rule.Protocol, rule.FromPort)
				} else {
					cmd.Printf("  allow %s %s:%d-%d\n", rule.Source, rule.Protocol, rule.FromPort, rule.ToPort)
				}
			}
			return nil
		},
	}
}

func sortedIngress(rules []warden.IngressRule) []warden.IngressRule {
	sorted := make([]warden.IngressRule, len(rules))
	copy(sorted, rules)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Protocol != b.Protocol {
			return a.Protocol < b.Protocol
		}
		if a.FromPort != b.FromPort {
			return a.FromPort < b.FromPort
		}
		return a.ToPort < b.ToPort
	})
	return sorted
}
