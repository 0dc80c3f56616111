// Package subcmds defines warden's subcommands, their flags and their
// behavior.
//
// The cobra Run methods are used as follows (order corresponds to
// execution order):
//  1. PersistentPreRunE (root) - merge environment config, initialize
//     the logger, resolve the operator
//  2. PreRunE (subcommands) - check flag validity
//  3. RunE (subcommands) - build the manager and run the operation
//
// Scope flags (account, region, operator) are persistent on the root so
// every subcommand accepts them. Each flag's default comes from the
// corresponding WARDEN_* environment variable; a flag set on the command
// line wins.
package subcmds

import (
	"context"
	"fmt"
	"os/user"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wardenhq/warden/pkg/warden"
)

const (
	accountFlag      = "account"
	regionFlag       = "region"
	operatorFlag     = "operator"
	rolePatternFlag  = "role-pattern"
	applicationsFlag = "applications"
	parallelismFlag  = "parallelism"
	quietFlag        = "quiet"
	verboseFlag      = "verbose"
)

// envConfig is the WARDEN_* environment surface. Flag values override it.
type envConfig struct {
	Account        string   `env:"WARDEN_ACCOUNT"`
	Region         string   `env:"WARDEN_REGION"`
	Operator       string   `env:"WARDEN_OPERATOR"`
	RoleARNPattern string   `env:"WARDEN_ROLE_PATTERN"`
	Applications   []string `env:"WARDEN_APPLICATIONS"`
	Parallelism    int      `env:"WARDEN_PARALLELISM"`
}

// inArgs holds parsed flag values.
type inArgs struct {
	account      string
	region       string
	operator     string
	rolePattern  string
	applications []string
	parallelism  int
	quiet        bool
	verbose      bool

	logger *zap.Logger
	envErr error
}

func (args *inArgs) scope() warden.Scope {
	return warden.Scope{
		Account:  args.account,
		Region:   args.region,
		Operator: args.operator,
	}
}

func NewRootCommand() *cobra.Command {
	args := &inArgs{}

	var cfg envConfig
	args.envErr = env.Parse(&cfg)

	rootCmd := &cobra.Command{
		Use:   "warden",
		Short: "warden manages application security groups",
		Long: `warden creates, inspects, reconciles and retires the security groups
that carry application-to-application ingress permissions.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if args.envErr != nil {
				return fmt.Errorf("parse environment: %w", args.envErr)
			}
			args.logger = newLogger(args.quiet, args.verbose)
			if args.operator == "" {
				if u, err := user.Current(); err == nil {
					args.operator = u.Username
				}
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&args.account, accountFlag, cfg.Account,
		"account ID to operate in; empty uses the base credentials' account")
	rootCmd.PersistentFlags().StringVarP(&args.region, regionFlag, "r", cfg.Region,
		"region to operate in; empty uses the base config's region")
	rootCmd.PersistentFlags().StringVar(&args.operator, operatorFlag, cfg.Operator,
		"operator recorded on every mutation; empty uses the current user")
	rootCmd.PersistentFlags().StringVar(&args.rolePattern, rolePatternFlag, cfg.RoleARNPattern,
		"cross-account role ARN pattern, %s stands in for the account ID")
	rootCmd.PersistentFlags().StringSliceVar(&args.applications, applicationsFlag, cfg.Applications,
		"registered application names; empty accepts every application")
	rootCmd.PersistentFlags().IntVar(&args.parallelism, parallelismFlag, cfg.Parallelism,
		"concurrent targets in multi-target reconciliation")

	rootCmd.PersistentFlags().BoolVarP(&args.quiet, quietFlag, "q", false,
		"log only the results")
	rootCmd.PersistentFlags().BoolVarP(&args.verbose, verboseFlag, "v", false,
		"log every step, including converged groups")
	rootCmd.MarkFlagsMutuallyExclusive(quietFlag, verboseFlag)

	rootCmd.PersistentFlags().SortFlags = false

	rootCmd.AddCommand(newValidateCommand(args))
	rootCmd.AddCommand(newCreateCommand(args))
	rootCmd.AddCommand(newListCommand(args))
	rootCmd.AddCommand(newShowCommand(args))
	rootCmd.AddCommand(newReconcileCommand(args))
	rootCmd.AddCommand(newUsageCommand(args))
	rootCmd.AddCommand(newDeleteCommand(args))
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	return rootCmd
}

func newLogger(quiet, verbose bool) *zap.Logger {
	switch {
	case quiet:
		return zap.NewNop()
	case verbose:
		return zap.Must(zap.NewDevelopment())
	default:
		return zap.Must(zap.NewProduction())
	}
}

func buildManager(ctx context.Context, args *inArgs) (*warden.Manager, error) {
	optFns := []func(*config.LoadOptions) error{}
	if args.region != "" {
		optFns = append(optFns, config.WithRegion(args.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return warden.NewWithOptions(cfg, warden.Options{
		RoleARNPattern: args.rolePattern,
		Applications:   args.applications,
		Logger:         args.logger,
		Parallelism:    args.parallelism,
	}), nil
}
