package subcmds

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/pkg/warden"
)

func newListCommand(args *inArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "list [app]",
		Short: "List security groups, optionally one application's",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			manager, err := buildManager(cmd.Context(), args)
			if err != nil {
				return err
			}

			var groups []warden.SecurityGroup
			if len(posArgs) == 1 {
				groups, err = manager.ListGroupsForApp(cmd.Context(), args.scope(), posArgs[0])
			} else {
				groups, err = manager.ListGroups(cmd.Context(), args.scope())
			}
			if err != nil {
				return err
			}

			sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
			for _, g := range groups {
				cmd.Printf("%-40s %-22s %-22s %d rules\n", g.Name, g.ID, g.VPCID, len(g.Ingress))
			}
			return nil
		},
	}
}
