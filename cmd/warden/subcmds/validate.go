package subcmds

import (
	"github.com/spf13/cobra"
)

func newValidateCommand(args *inArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <app> [detail]",
		Short: "Check an application name against the naming rules",
		Long: `Check that an application name and optional detail produce a legal
security group name and that the application is registered, then print
the group name the pair would produce.`,
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
			name, err := manager.ValidateName(cmd.Context(), args.scope(), posArgs[0], detail)
			if err != nil {
				return err
			}
			cmd.Println(name)
			return nil
		},
	}
}
