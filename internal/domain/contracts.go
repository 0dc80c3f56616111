package domain

import "context"

// GroupDirectory is the lookup and lifecycle surface of the cloud
// account's security groups. CreateGroup is idempotent on name collision:
// it returns the existing group rather than failing.
type GroupDirectory interface {
	ListGroups(ctx context.Context, scope Scope) ([]SecurityGroup, error)
	GetGroup(ctx context.Context, scope Scope, idOrName string) (*SecurityGroup, error)
	CreateGroup(ctx context.Context, scope Scope, name, description, vpcID string) (*SecurityGroup, error)
	DeleteGroup(ctx context.Context, scope Scope, id string) error
}

// PermissionGateway applies ingress mutations. Both calls are idempotent:
// granting a range that already exists, or revoking one already absent,
// succeeds. Everything else surfaces as a GatewayFailure.
type PermissionGateway interface {
	Grant(ctx context.Context, scope Scope, target SecurityGroup, source SecurityGroup, ranges []PortRange) error
	Revoke(ctx context.Context, scope Scope, target SecurityGroup, source SecurityGroup, ranges []PortRange) error
}

// ApplicationDirectory answers whether an application name is known to
// the platform. Consulted by name validation only.
type ApplicationDirectory interface {
	IsRegistered(ctx context.Context, scope Scope, appName string) (bool, error)
}

// UsageClient is the describe surface the usage scanner fans out over.
type UsageClient interface {
	GetENIsBySecurityGroup(ctx context.Context, scope Scope, groupID string) ([]ENIAttachment, error)
	GetCLBsBySecurityGroup(ctx context.Context, scope Scope, groupID string) ([]string, error)
	GetALBsBySecurityGroup(ctx context.Context, scope Scope, groupID string) ([]string, error)
	GetNLBsBySecurityGroup(ctx context.Context, scope Scope, groupID string) ([]string, error)
	GetRDSInstancesBySecurityGroup(ctx context.Context, scope Scope, groupID string) ([]string, error)
	GetLambdaFunctionsBySecurityGroup(ctx context.Context, scope Scope, groupID string) ([]string, error)
	GetElastiCacheClustersBySecurityGroup(ctx context.Context, scope Scope, groupID string) ([]string, error)
	GetVPCLinksBySecurityGroup(ctx context.Context, scope Scope, groupID string) ([]string, error)
}
