package reconcile

import (
	"context"
	"fmt"
	"sync"

	"github.com/wardenhq/warden/internal/domain"
)

// mockDirectory serves groups from memory. mockGateway applies grants and
// revokes back onto the directory's groups, so a second reconciliation
// pass observes the converged state.

type mockDirectory struct {
	mu     sync.Mutex
	groups map[string]*domain.SecurityGroup
}

func newMockDirectory(groups ...domain.SecurityGroup) *mockDirectory {
	m := &mockDirectory{groups: make(map[string]*domain.SecurityGroup)}
	for _, g := range groups {
		copied := g
		m.groups[g.Name] = &copied
	}
	return m
}

func (m *mockDirectory) ListGroups(_ context.Context, _ domain.Scope) ([]domain.SecurityGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var groups []domain.SecurityGroup
	for _, g := range m.groups {
		groups = append(groups, *g)
	}
	return groups, nil
}

func (m *mockDirectory) GetGroup(_ context.Context, _ domain.Scope, idOrName string) (*domain.SecurityGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.groups {
		if g.ID == idOrName || g.Name == idOrName {
			copied := *g
			return &copied, nil
		}
	}
	return nil, &domain.Error{
		Kind:   domain.GroupNotFound,
		Detail: fmt.Sprintf("security group %s not found", idOrName),
	}
}

func (m *mockDirectory) CreateGroup(_ context.Context, _ domain.Scope, name, description, vpcID string) (*domain.SecurityGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.groups[name]; ok {
		copied := *g
		return &copied, nil
	}
	g := &domain.SecurityGroup{
		ID:          "sg-" + name,
		Name:        name,
		Description: description,
		VPCID:       vpcID,
	}
	m.groups[name] = g
	copied := *g
	return &copied, nil
}

func (m *mockDirectory) DeleteGroup(_ context.Context, _ domain.Scope, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, g := range m.groups {
		if g.ID == id {
			delete(m.groups, name)
			return nil
		}
	}
	return &domain.Error{
		Kind:   domain.GroupNotFound,
		Detail: fmt.Sprintf("security group %s not found", id),
	}
}

func (m *mockDirectory) ingressOf(name string) []domain.IngressRule {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[name]
	if !ok {
		return nil
	}
	return append([]domain.IngressRule(nil), g.Ingress...)
}

type mutation struct {
	target string
	source string
	ranges []domain.PortRange
}

type mockGateway struct {
	mu           sync.Mutex
	directory    *mockDirectory
	grants       []mutation
	revokes      []mutation
	failGrantOn  map[string]error
	failRevokeOn map[string]error
}

func newMockGateway(directory *mockDirectory) *mockGateway {
	return &mockGateway{
		directory:    directory,
		failGrantOn:  make(map[string]error),
		failRevokeOn: make(map[string]error),
	}
}

func (m *mockGateway) Grant(_ context.Context, _ domain.Scope, target, source domain.SecurityGroup, ranges []domain.PortRange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failGrantOn[source.Name]; err != nil {
		return err
	}
	m.grants = append(m.grants, mutation{target: target.Name, source: source.Name, ranges: ranges})

	m.directory.mu.Lock()
	defer m.directory.mu.Unlock()
	g := m.directory.groups[target.Name]
	for _, r := range ranges {
		g.Ingress = append(g.Ingress, domain.IngressRule{
			Source:   source.Name,
			Protocol: r.Protocol,
			FromPort: r.FromPort,
			ToPort:   r.ToPort,
		})
	}
	return nil
}

func (m *mockGateway) Revoke(_ context.Context, _ domain.Scope, target, source domain.SecurityGroup, ranges []domain.PortRange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failRevokeOn[source.Name]; err != nil {
		return err
	}
	m.revokes = append(m.revokes, mutation{target: target.Name, source: source.Name, ranges: ranges})

	revoked := make(map[domain.PortRange]bool, len(ranges))
	for _, r := range ranges {
		revoked[r] = true
	}
	m.directory.mu.Lock()
	defer m.directory.mu.Unlock()
	g := m.directory.groups[target.Name]
	var kept []domain.IngressRule
	for _, rule := range g.Ingress {
		if rule.Source == source.Name && revoked[rule.Range()] {
			continue
		}
		kept = append(kept, rule)
	}
	g.Ingress = kept
	return nil
}
