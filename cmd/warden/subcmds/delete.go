package subcmds

import (
	"github.com/spf13/cobra"
)

func newDeleteCommand(args *inArgs) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <group>",
		Short: "Delete a security group after checking it is unused",
		Long: `Delete a security group. The group is first scanned for usage and the
deletion is refused while anything still references it; --force skips
the scan.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			manager, err := buildManager(cmd.Context(), args)
			if err != nil {
				return err
			}
			if err := manager.DeleteGroup(cmd.Context(), args.scope(), posArgs[0], force); err != nil {
				return err
			}
			cmd.Printf("deleted %s\n", posArgs[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "delete without checking usage")

	return cmd
}
