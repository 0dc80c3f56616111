package subcmds

import (
	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/pkg/warden"
)

func newUsageCommand(args *inArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "usage <group>",
		Short: "Report everything still referencing a security group",
		Long: `Scan network interfaces, load balancers, databases, functions, cache
clusters, VPC links and other security groups for references to the
given group. A group with no references is safe to delete.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			manager, err := buildManager(cmd.Context(), args)
			if err != nil {
				return err
			}
			usage, err := manager.ScanUsage(cmd.Context(), args.scope(), posArgs[0])
			if err != nil {
				return err
			}
			printUsage(cmd, usage)
			return nil
		},
	}
}

func printUsage(cmd *cobra.Command, usage *warden.GroupUsage) {
	cmd.Printf("%s %s\n", usage.GroupName, usage.GroupID)

	for _, eni := range usage.NetworkInterfaces {
		if eni.AttachedTo != "" {
			cmd.Printf("  network interface %s (%s, attached to %s)\n", eni.ID, eni.Status, eni.AttachedTo)
		} else {
			cmd.Printf("  network interface %s (%s)\n", eni.ID, eni.Status)
		}
	}
	printReferences(cmd, "classic load balancer", usage.ClassicLoadBalancers)
	printReferences(cmd, "application load balancer", usage.ApplicationLoadBalancers)
	printReferences(cmd, "network load balancer", usage.NetworkLoadBalancers)
	printReferences(cmd, "db instance", usage.DBInstances)
	printReferences(cmd, "lambda function", usage.LambdaFunctions)
	printReferences(cmd, "cache cluster", usage.CacheClusters)
	printReferences(cmd, "vpc link", usage.VPCLinks)
	printReferences(cmd, "referenced by group", usage.ReferencedBy)

	if usage.InUse() {
		cmd.Printf("in use: %d reference(s)\n", usage.References())
	} else {
		cmd.Println("not in use")
	}
}

func printReferences(cmd *cobra.Command, label string, names []string) {
	for _, name := range names {
		cmd.Printf("  %s %s\n", label, name)
	}
}
