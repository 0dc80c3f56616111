// Package reconcile converges a security group's ingress rules to the
// operator's declared intent: every known source group is diffed against
// the desired state and the delta is applied through the permission
// gateway, one source group at a time.
package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/wardenhq/warden/internal/domain"
	"github.com/wardenhq/warden/internal/portspec"
)

type Driver struct {
	directory domain.GroupDirectory
	gateway   domain.PermissionGateway
	logger    *zap.Logger
}

// NewDriver builds a reconciliation driver. A nil logger is replaced by
// a no-op one.
func NewDriver(directory domain.GroupDirectory, gateway domain.PermissionGateway, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{directory: directory, gateway: gateway, logger: logger}
}

// Reconcile fetches a fresh snapshot of the target group and walks every
// known source group: unselected sources (and selected ones with blank
// spec text) get their leftover rules revoked, selected sources converge
// to their parsed spec. Per-source failures are recorded in the summary
// and never abort the pass; the only fatal error is a target that cannot
// be fetched. On cancellation between source groups the partial summary
// is returned together with the context error.
func (d *Driver) Reconcile(ctx context.Context, scope domain.Scope, target string, known []domain.SecurityGroup, intent domain.Intent) (*domain.Summary, error) {
	return d.run(ctx, scope, target, known, intent, true)
}

// Plan computes the same summary as Reconcile without touching the
// gateway. The reported grants and revocations are what a real run would
// apply.
func (d *Driver) Plan(ctx context.Context, scope domain.Scope, target string, known []domain.SecurityGroup, intent domain.Intent) (*domain.Summary, error) {
	return d.run(ctx, scope, target, known, intent, false)
}

func (d *Driver) run(ctx context.Context, scope domain.Scope, target string, known []domain.SecurityGroup, intent domain.Intent, apply bool) (*domain.Summary, error) {
	tgt, err := d.directory.GetGroup(ctx, scope, target)
	if err != nil {
		return nil, fmt.Errorf("fetch target group %s: %w", target, err)
	}

	byName := make(map[string]domain.SecurityGroup, len(known))
	names := make([]string, 0, len(known))
	for _, g := range known {
		if _, seen := byName[g.Name]; seen {
			continue
		}
		byName[g.Name] = g
		names = append(names, g.Name)
	}
	sort.Strings(names)

	currentBySource := make(map[string][]domain.PortRange)
	for _, rule := range tgt.Ingress {
		currentBySource[rule.Source] = append(currentBySource[rule.Source], rule.Range())
	}

	summary := &domain.Summary{Target: tgt.Name, DryRun: !apply}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		result := d.reconcileSource(ctx, scope, *tgt, byName[name], currentBySource[name], intent, apply)
		d.record(summary, result)
	}

	// Selected names that are not known groups still deserve a verdict.
	for _, name := range sortedUnknown(intent.Selected, byName) {
		d.record(summary, domain.GroupResult{
			Source: name,
			Err: &domain.Error{
				Kind:   domain.GroupNotFound,
				Detail: fmt.Sprintf("source group %q not found", name),
			},
		})
	}

	return summary, nil
}

func (d *Driver) reconcileSource(ctx context.Context, scope domain.Scope, target, source domain.SecurityGroup, current []domain.PortRange, intent domain.Intent, apply bool) domain.GroupResult {
	result := domain.GroupResult{Source: source.Name}

	var desired []domain.PortRange
	if text, ok := desiredSpec(intent, source.Name); ok {
		parsed, err := portspec.Parse(text)
		if err != nil {
			result.Err = err
			return result
		}
		desired = parsed
	}

	delta := Diff(current, desired)
	if delta.Empty() {
		d.logger.Debug("ingress already converged",
			zap.String("target", target.Name),
			zap.String("source", source.Name))
		return result
	}

	if !apply {
		result.Revoked = delta.Revoke
		result.Granted = delta.Grant
		return result
	}

	// Revoke before grant, so replacing a range never transiently widens
	// access.
	if len(delta.Revoke) > 0 {
		if err := d.gateway.Revoke(ctx, scope, target, source, delta.Revoke); err != nil {
			result.Err = err
			return result
		}
		result.Revoked = delta.Revoke
	}
	if len(delta.Grant) > 0 {
		if err := d.gateway.Grant(ctx, scope, target, source, delta.Grant); err != nil {
			result.Err = err
			return result
		}
		result.Granted = delta.Grant
	}

	d.logger.Info("updated ingress",
		zap.String("target", target.Name),
		zap.String("source", source.Name),
		zap.Int("granted", len(result.Granted)),
		zap.Int("revoked", len(result.Revoked)),
		zap.String("operator", scope.Operator))
	return result
}

func (d *Driver) record(summary *domain.Summary, result domain.GroupResult) {
	summary.Results = append(summary.Results, result)
	switch {
	case result.Err != nil:
		summary.Failed++
		d.logger.Warn("source group failed",
			zap.String("target", summary.Target),
			zap.String("source", result.Source),
			zap.Error(result.Err))
	case result.Changed():
		summary.Updated++
	default:
		summary.Skipped++
	}
}

func desiredSpec(intent domain.Intent, name string) (string, bool) {
	if !intent.IsSelected(name) {
		return "", false
	}
	text := intent.Specs[name]
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

func sortedUnknown(selected []string, known map[string]domain.SecurityGroup) []string {
	var unknown []string
	for _, name := range selected {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}
