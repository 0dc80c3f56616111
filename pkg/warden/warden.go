// Package warden manages application security groups on AWS: validated
// naming, declarative ingress reconciliation, usage scanning, and group
// lifecycle. Create a Manager with New or NewWithOptions and call its
// methods; every call is scoped to an account, region, and operator.
package warden

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"go.uber.org/zap"

	internalaws "github.com/wardenhq/warden/internal/aws"
	"github.com/wardenhq/warden/internal/domain"
	"github.com/wardenhq/warden/internal/naming"
	"github.com/wardenhq/warden/internal/reconcile"
	"github.com/wardenhq/warden/internal/registry"
	"github.com/wardenhq/warden/internal/usage"
)

// Options tunes a Manager beyond its defaults. The zero value is valid.
type Options struct {
	// RoleARNPattern is the cross-account role assumed for foreign
	// accounts, with %s standing in for the account ID. Empty selects
	// the default WardenGroupManagerRole pattern.
	RoleARNPattern string

	// Applications is the inventory of registered application names.
	// Empty means every application is accepted.
	Applications []string

	// Logger receives structured progress and failure events. Nil
	// silences them.
	Logger *zap.Logger

	// Parallelism bounds concurrent targets in ReconcileMany. Zero or
	// negative selects the default of 4.
	Parallelism int
}

// Manager is the entry point for all security group operations.
type Manager struct {
	directory   *internalaws.Directory
	driver      *reconcile.Driver
	scanner     *usage.Scanner
	apps        domain.ApplicationDirectory
	logger      *zap.Logger
	parallelism int
}

// New creates a Manager with default options. The aws.Config carries
// the base credentials and region; load it with config.LoadDefaultConfig.
func New(cfg aws.Config) *Manager {
	return NewWithOptions(cfg, Options{})
}

// NewWithOptions creates a Manager with explicit options.
func NewWithOptions(cfg aws.Config, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var apps domain.ApplicationDirectory = registry.AllowAll{}
	if len(opts.Applications) > 0 {
		apps = registry.NewStatic(opts.Applications)
	}

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = 4
	}

	accounts := internalaws.NewAccountContext(cfg, opts.RoleARNPattern)
	directory := internalaws.NewDirectory(accounts)
	gateway := internalaws.NewGateway(accounts)

	return &Manager{
		directory:   directory,
		driver:      reconcile.NewDriver(directory, gateway, logger),
		scanner:     usage.NewScanner(directory, internalaws.NewUsage(accounts), logger),
		apps:        apps,
		logger:      logger,
		parallelism: parallelism,
	}
}

// ValidateName checks an application name and optional detail against
// the naming rules and the application registry, and returns the group
// name the pair produces. Character and format violations are reported
// before the registry is consulted, so offline validation never makes a
// network call for malformed input.
func (m *Manager) ValidateName(ctx context.Context, scope Scope, appName, detail string) (string, error) {
	if err := naming.ValidateNewGroup(ctx, scope, appName, detail, m.apps); err != nil {
		return "", err
	}
	return naming.BuildGroupName(appName, detail), nil
}

// CreateGroup validates the name, then creates the security group. The
// call is idempotent: if a group with that name already exists it is
// returned unchanged. An empty description defaults to the group name.
func (m *Manager) CreateGroup(ctx context.Context, scope Scope, appName, detail, description, vpcID string) (*SecurityGroup, error) {
	name, err := m.ValidateName(ctx, scope, appName, detail)
	if err != nil {
		return nil, err
	}
	if description == "" {
		description = name
	}

	group, err := m.directory.CreateGroup(ctx, scope, name, description, vpcID)
	if err != nil {
		return nil, err
	}
	m.logger.Info("created security group",
		zap.String("group", group.Name),
		zap.String("id", group.ID),
		zap.String("operator", scope.Operator))
	return group, nil
}

// ListGroups returns every security group visible in the scope.
func (m *Manager) ListGroups(ctx context.Context, scope Scope) ([]SecurityGroup, error) {
	return m.directory.ListGroups(ctx, scope)
}

// ListGroupsForApp returns the security groups whose names belong to
// the application, matching on the name segment before the first hyphen.
func (m *Manager) ListGroupsForApp(ctx context.Context, scope Scope, appName string) ([]SecurityGroup, error) {
	groups, err := m.directory.ListGroups(ctx, scope)
	if err != nil {
		return nil, err
	}
	var matched []SecurityGroup
	for _, g := range groups {
		if naming.ExtractAppName(g.Name) == appName {
			matched = append(matched, g)
		}
	}
	return matched, nil
}

// GetGroup fetches one group by ID or name.
func (m *Manager) GetGroup(ctx context.Context, scope Scope, idOrName string) (*SecurityGroup, error) {
	return m.directory.GetGroup(ctx, scope, idOrName)
}

// DeleteGroup removes a security group. Unless force is set, the group
// is first scanned for usage and deletion is refused with a GroupInUse
// error while anything still references it.
func (m *Manager) DeleteGroup(ctx context.Context, scope Scope, idOrName string, force bool) error {
	group, err := m.directory.GetGroup(ctx, scope, idOrName)
	if err != nil {
		return err
	}

	if !force {
		used, err := m.scanner.Scan(ctx, scope, group.ID)
		if err != nil {
			return err
		}
		if used.InUse() {
			return &Error{
				Kind:   GroupInUse,
				Detail: fmt.Sprintf("security group %s has %d references", group.Name, used.References()),
			}
		}
	}

	if err := m.directory.DeleteGroup(ctx, scope, group.ID); err != nil {
		return err
	}
	m.logger.Info("deleted security group",
		zap.String("group", group.Name),
		zap.String("id", group.ID),
		zap.String("operator", scope.Operator))
	return nil
}

// Reconcile drives the target group's ingress to the intent: every
// selected source group converges on its port spec, every other known
// group loses its rules. Failures on individual source groups are
// contained and reported in the summary; only a missing target aborts.
func (m *Manager) Reconcile(ctx context.Context, scope Scope, target string, intent Intent) (*Summary, error) {
	known, err := m.directory.ListGroups(ctx, scope)
	if err != nil {
		return nil, err
	}
	return m.driver.Reconcile(ctx, scope, target, known, intent)
}

// Plan computes the summary Reconcile would produce without mutating
// anything.
func (m *Manager) Plan(ctx context.Context, scope Scope, target string, intent Intent) (*Summary, error) {
	known, err := m.directory.ListGroups(ctx, scope)
	if err != nil {
		return nil, err
	}
	return m.driver.Plan(ctx, scope, target, known, intent)
}

// ReconcileMany reconciles several target groups concurrently. Targets
// are independent: one target's failure never stops the others, and the
// returned map holds a summary for every target that produced one. The
// error joins the per-target failures.
func (m *Manager) ReconcileMany(ctx context.Context, scope Scope, intents map[string]Intent) (map[string]*Summary, error) {
	known, err := m.directory.ListGroups(ctx, scope)
	if err != nil {
		return nil, err
	}
	return m.driver.ReconcileMany(ctx, scope, known, intents, m.parallelism)
}

// ScanUsage reports everything that still references the group:
// attached network interfaces, load balancers, databases, functions,
// cache clusters, VPC links, and other security groups.
func (m *Manager) ScanUsage(ctx context.Context, scope Scope, idOrName string) (*GroupUsage, error) {
	return m.scanner.Scan(ctx, scope, idOrName)
}
