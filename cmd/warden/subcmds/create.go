package subcmds

import (
	"github.com/spf13/cobra"
)

func newCreateCommand(args *inArgs) *cobra.Command {
	var description, vpcID string

	cmd := &cobra.Command{
		Use:   "create <app> [detail]",
		Short: "Create a security group named after an application",
		Long: `Create a security group whose name is built from the application name
and optional detail. Creation is idempotent: if the group already
exists it is reported instead of recreated.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			detail := ""
			if len(posArgs) == 2 {
				detail = posArgs[1]
			}
			manager, err := buildManager(cmd.Context(), args)
			if err != nil {
				return err
			}
			group, err := manager.CreateGroup(cmd.Context(), args.scope(), posArgs[0], detail, description, vpcID)
			if err != nil {
				return err
			}
			cmd.Printf("%s %s\n", group.Name, group.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "group description; defaults to the group name")
	cmd.Flags().StringVar(&vpcID, "vpc", "", "VPC to create the group in")

	return cmd
}
