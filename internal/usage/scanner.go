// Package usage answers the question "what is still pointing at this
// security group". Deletion guards and operator tooling both depend on
// the answer being complete, so a scan fails as a whole when any
// describe fails rather than returning a partial picture.
package usage

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wardenhq/warden/internal/domain"
)

type Scanner struct {
	directory domain.GroupDirectory
	client    domain.UsageClient
	logger    *zap.Logger
}

func NewScanner(directory domain.GroupDirectory, client domain.UsageClient, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{directory: directory, client: client, logger: logger}
}

// Scan resolves the group by ID or name, then fans out over every
// service that can hold a reference to it. Other security groups count
// as references too; a group's reference to itself does not.
func (s *Scanner) Scan(ctx context.Context, scope domain.Scope, idOrName string) (*domain.GroupUsage, error) {
	group, err := s.directory.GetGroup(ctx, scope, idOrName)
	if err != nil {
		return nil, err
	}

	usage := &domain.GroupUsage{GroupID: group.ID, GroupName: group.Name}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	g.Go(func() error {
		var err error
		usage.NetworkInterfaces, err = s.client.GetENIsBySecurityGroup(gCtx, scope, group.ID)
		return err
	})
	g.Go(func() error {
		var err error
		usage.ClassicLoadBalancers, err = s.client.GetCLBsBySecurityGroup(gCtx, scope, group.ID)
		return err
	})
	g.Go(func() error {
		var err error
		usage.ApplicationLoadBalancers, err = s.client.GetALBsBySecurityGroup(gCtx, scope, group.ID)
		return err
	})
	g.Go(func() error {
		var err error
		usage.NetworkLoadBalancers, err = s.client.GetNLBsBySecurityGroup(gCtx, scope, group.ID)
		return err
	})
	g.Go(func() error {
		var err error
		usage.DBInstances, err = s.client.GetRDSInstancesBySecurityGroup(gCtx, scope, group.ID)
		return err
	})
	g.Go(func() error {
		var err error
		usage.LambdaFunctions, err = s.client.GetLambdaFunctionsBySecurityGroup(gCtx, scope, group.ID)
		return err
	})
	g.Go(func() error {
		var err error
		usage.CacheClusters, err = s.client.GetElastiCacheClustersBySecurityGroup(gCtx, scope, group.ID)
		return err
	})
	g.Go(func() error {
		var err error
		usage.VPCLinks, err = s.client.GetVPCLinksBySecurityGroup(gCtx, scope, group.ID)
		return err
	})
	g.Go(func() error {
		groups, err := s.directory.ListGroups(gCtx, scope)
		if err != nil {
			return err
		}
		for _, other := range groups {
			if other.ID == group.ID {
				continue
			}
			for _, rule := range other.Ingress {
				if rule.Source == group.Name {
					usage.ReferencedBy = append(usage.ReferencedBy, other.Name)
					break
				}
			}
		}
		sort.Strings(usage.ReferencedBy)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan usage of %s: %w", group.Name, err)
	}

	s.logger.Debug("scanned security group usage",
		zap.String("group", group.Name),
		zap.Int("references", usage.References()))

	return usage, nil
}
