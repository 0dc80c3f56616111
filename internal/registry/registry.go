// Package registry provides application directories consulted during
// group name validation.
package registry

import (
	"context"
	"strings"

	"github.com/wardenhq/warden/internal/domain"
)

// Static answers registration checks from a fixed list of application
// names. Matching is case-insensitive.
type Static struct {
	apps map[string]bool
}

func NewStatic(apps []string) *Static {
	m := make(map[string]bool, len(apps))
	for _, app := range apps {
		m[strings.ToLower(app)] = true
	}
	return &Static{apps: m}
}

func (s *Static) IsRegistered(_ context.Context, _ domain.Scope, appName string) (bool, error) {
	return s.apps[strings.ToLower(appName)], nil
}

// AllowAll treats every application as registered. It is the directory
// of record when no application inventory is configured.
type AllowAll struct{}

func (AllowAll) IsRegistered(context.Context, domain.Scope, string) (bool, error) {
	return true, nil
}
