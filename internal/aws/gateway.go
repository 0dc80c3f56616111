package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"

	"github.com/wardenhq/warden/internal/domain"
)

// Gateway implements domain.PermissionGateway on the EC2 API. Grant and
// Revoke swallow EC2's duplicate and not-found permission errors so a
// replayed call converges instead of failing.
type Gateway struct {
	accounts *AccountContext
}

func NewGateway(accounts *AccountContext) *Gateway {
	return &Gateway{accounts: accounts}
}

func (g *Gateway) Grant(ctx context.Context, scope domain.Scope, target, source domain.SecurityGroup, ranges []domain.PortRange) error {
	if len(ranges) == 0 {
		return nil
	}
	client, err := g.accounts.ClientFor(ctx, scope)
	if err != nil {
		return err
	}

	err = g.authorize(ctx, client, target, source, ranges)
	if err == nil {
		return nil
	}
	if apiErrorCode(err) != errCodeDuplicatePermission {
		return gatewayError("grant", target, source, err)
	}

	// EC2 rejects the whole batch when any entry already exists, so a
	// partially applied replay has to be finished one range at a time.
	for _, r := range ranges {
		err := g.authorize(ctx, client, target, source, []domain.PortRange{r})
		if err != nil && apiErrorCode(err) != errCodeDuplicatePermission {
			return gatewayError("grant", target, source, err)
		}
	}
	return nil
}

func (g *Gateway) Revoke(ctx context.Context, scope domain.Scope, target, source domain.SecurityGroup, ranges []domain.PortRange) error {
	if len(ranges) == 0 {
		return nil
	}
	client, err := g.accounts.ClientFor(ctx, scope)
	if err != nil {
		return err
	}

	err = g.revoke(ctx, client, target, source, ranges)
	if err == nil {
		return nil
	}
	if apiErrorCode(err) != errCodePermissionNotFound {
		return gatewayError("revoke", target, source, err)
	}

	for _, r := range ranges {
		err := g.revoke(ctx, client, target, source, []domain.PortRange{r})
		if err != nil && apiErrorCode(err) != errCodePermissionNotFound {
			return gatewayError("revoke", target, source, err)
		}
	}
	return nil
}

func (g *Gateway) authorize(ctx context.Context, client *Client, target, source domain.SecurityGroup, ranges []domain.PortRange) error {
	_, err := client.ec2Client.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId:       aws.String(target.ID),
		IpPermissions: toIPPermissions(source, ranges),
	})
	return err
}

func (g *Gateway) revoke(ctx context.Context, client *Client, target, source domain.SecurityGroup, ranges []domain.PortRange) error {
	_, err := client.ec2Client.RevokeSecurityGroupIngress(ctx, &ec2.RevokeSecurityGroupIngressInput{
		GroupId:       aws.String(target.ID),
		IpPermissions: toIPPermissions(source, ranges),
	})
	return err
}

func gatewayError(verb string, target, source domain.SecurityGroup, err error) error {
	return &domain.Error{
		Kind:   domain.GatewayFailure,
		Detail: fmt.Sprintf("%s %s ingress from %s", verb, target.Name, source.Name),
		Err:    err,
	}
}
