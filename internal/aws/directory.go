package aws

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/wardenhq/warden/internal/domain"
)

// Directory implements domain.GroupDirectory on the EC2 API.
type Directory struct {
	accounts *AccountContext
}

func NewDirectory(accounts *AccountContext) *Directory {
	return &Directory{accounts: accounts}
}

func (d *Directory) ListGroups(ctx context.Context, scope domain.Scope) ([]domain.SecurityGroup, error) {
	client, err := d.accounts.ClientFor(ctx, scope)
	if err != nil {
		return nil, err
	}

	paginator := ec2.NewDescribeSecurityGroupsPaginator(client.ec2Client, &ec2.DescribeSecurityGroupsInput{})
	raw, err := collectPages(ctx, paginator.HasMorePages,
		func(ctx context.Context) (*ec2.DescribeSecurityGroupsOutput, error) {
			return paginator.NextPage(ctx)
		},
		func(out *ec2.DescribeSecurityGroupsOutput) []ec2types.SecurityGroup {
			return out.SecurityGroups
		})
	if err != nil {
		return nil, fmt.Errorf("describe security groups: %w", err)
	}

	nameOf, err := d.resolveNames(ctx, client, raw)
	if err != nil {
		return nil, err
	}

	groups := make([]domain.SecurityGroup, 0, len(raw))
	for _, sg := range raw {
		groups = append(groups, toSecurityGroup(sg, nameOf))
	}
	return groups, nil
}

func (d *Directory) GetGroup(ctx context.Context, scope domain.Scope, idOrName string) (*domain.SecurityGroup, error) {
	client, err := d.accounts.ClientFor(ctx, scope)
	if err != nil {
		return nil, err
	}

	input := &ec2.DescribeSecurityGroupsInput{}
	if strings.HasPrefix(idOrName, "sg-") {
		input.GroupIds = []string{idOrName}
	} else {
		input.Filters = []ec2types.Filter{{
			Name:   aws.String("group-name"),
			Values: []string{idOrName},
		}}
	}

	out, err := client.ec2Client.DescribeSecurityGroups(ctx, input)
	if err != nil {
		if apiErrorCode(err) == errCodeGroupNotFound {
			return nil, &domain.Error{
				Kind:   domain.GroupNotFound,
				Detail: fmt.Sprintf("security group %s not found", idOrName),
				Err:    err,
			}
		}
		return nil, fmt.Errorf("describe security group %s: %w", idOrName, err)
	}
	if len(out.SecurityGroups) == 0 {
		return nil, &domain.Error{
			Kind:   domain.GroupNotFound,
			Detail: fmt.Sprintf("security group %s not found", idOrName),
		}
	}

	nameOf, err := d.resolveNames(ctx, client, out.SecurityGroups)
	if err != nil {
		return nil, err
	}
	group := toSecurityGroup(out.SecurityGroups[0], nameOf)
	return &group, nil
}

func (d *Directory) CreateGroup(ctx context.Context, scope domain.Scope, name, description, vpcID string) (*domain.SecurityGroup, error) {
	client, err := d.accounts.ClientFor(ctx, scope)
	if err != nil {
		return nil, err
	}

	input := &ec2.CreateSecurityGroupInput{
		GroupName:   aws.String(name),
		Description: aws.String(description),
	}
	if vpcID != "" {
		input.VpcId = aws.String(vpcID)
	}

	out, err := client.ec2Client.CreateSecurityGroup(ctx, input)
	if err != nil {
		if apiErrorCode(err) == errCodeDuplicateGroup {
			return d.GetGroup(ctx, scope, name)
		}
		return nil, fmt.Errorf("create security group %s: %w", name, err)
	}

	id := derefString(out.GroupId)
	client.names.set(client.cacheKey("name", id), name)
	return &domain.SecurityGroup{
		ID:          id,
		Name:        name,
		Description: description,
		VPCID:       vpcID,
	}, nil
}

func (d *Directory) DeleteGroup(ctx context.Context, scope domain.Scope, id string) error {
	client, err := d.accounts.ClientFor(ctx, scope)
	if err != nil {
		return err
	}

	_, err = client.ec2Client.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{
		GroupId: aws.String(id),
	})
	if err != nil {
		switch apiErrorCode(err) {
		case errCodeGroupNotFound:
			return &domain.Error{
				Kind:   domain.GroupNotFound,
				Detail: fmt.Sprintf("security group %s not found", id),
				Err:    err,
			}
		case errCodeDependencyViolation:
			return &domain.Error{
				Kind:   domain.GroupInUse,
				Detail: fmt.Sprintf("security group %s is still referenced", id),
				Err:    err,
			}
		}
		return fmt.Errorf("delete security group %s: %w", id, err)
	}
	return nil
}

// resolveNames returns a lookup from group ID to group name covering
// every same-account pair referenced by the given groups. Names are
// primed from the groups themselves, then any remaining IDs are fetched
// in one describe. Foreign-account pairs are not resolvable and are
// excluded from the managed surface by the converter.
func (d *Directory) resolveNames(ctx context.Context, client *Client, groups []ec2types.SecurityGroup) (func(groupID string) string, error) {
	for _, sg := range groups {
		if sg.GroupId != nil && sg.GroupName != nil {
			client.names.set(client.cacheKey("name", *sg.GroupId), *sg.GroupName)
		}
	}

	var missing []string
	seen := make(map[string]bool)
	for _, sg := range groups {
		owner := derefString(sg.OwnerId)
		for _, perm := range sg.IpPermissions {
			for _, pair := range perm.UserIdGroupPairs {
				id := derefString(pair.GroupId)
				if id == "" || seen[id] || derefString(pair.GroupName) != "" {
					continue
				}
				if pairOwner := derefString(pair.UserId); pairOwner != "" && pairOwner != owner {
					continue
				}
				seen[id] = true
				if _, ok := client.names.get(client.cacheKey("name", id)); !ok {
					missing = append(missing, id)
				}
			}
		}
	}

	if len(missing) > 0 {
		out, err := client.ec2Client.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
			GroupIds: missing,
		})
		if err != nil {
			return nil, fmt.Errorf("resolve %d referenced security groups: %w", len(missing), err)
		}
		for _, sg := range out.SecurityGroups {
			if sg.GroupId != nil && sg.GroupName != nil {
				client.names.set(client.cacheKey("name", *sg.GroupId), *sg.GroupName)
			}
		}
	}

	return func(groupID string) string {
		name, _ := client.names.get(client.cacheKey("name", groupID))
		return name
	}, nil
}
