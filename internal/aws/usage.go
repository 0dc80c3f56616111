package aws

import (
	"context"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewayv2"
	apigwv2types "github.com/aws/aws-sdk-go-v2/service/apigatewayv2/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/elasticache"
	elasticachetypes "github.com/aws/aws-sdk-go-v2/service/elasticache/types"
	elb "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing/types"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/wardenhq/warden/internal/domain"
)

// Usage implements domain.UsageClient. Each method describes one service
// and reports the resources configured with the given security group.
type Usage struct {
	accounts *AccountContext
}

func NewUsage(accounts *AccountContext) *Usage {
	return &Usage{accounts: accounts}
}

func (u *Usage) GetENIsBySecurityGroup(ctx context.Context, scope domain.Scope, groupID string) ([]domain.ENIAttachment, error) {
	client, err := u.accounts.ClientFor(ctx, scope)
	if err != nil {
		return nil, err
	}

	input := &ec2.DescribeNetworkInterfacesInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("group-id"), Values: []string{groupID}},
		},
	}
	paginator := ec2.NewDescribeNetworkInterfacesPaginator(client.ec2Client, input)
	interfaces, err := collectPages(ctx, paginator.HasMorePages,
		func(ctx context.Context) (*ec2.DescribeNetworkInterfacesOutput, error) {
			return paginator.NextPage(ctx)
		},
		func(out *ec2.DescribeNetworkInterfacesOutput) []ec2types.NetworkInterface {
			return out.NetworkInterfaces
		})
	if err != nil {
		return nil, fmt.Errorf("describe network interfaces for sg %s: %w", groupID, err)
	}

	var attachments []domain.ENIAttachment
	for _, eni := range interfaces {
		attachedTo := ""
		if eni.Attachment != nil {
			attachedTo = derefString(eni.Attachment.InstanceId)
		}
		attachments = append(attachments, domain.ENIAttachment{
			ID:          derefString(eni.NetworkInterfaceId),
			Description: derefString(eni.Description),
			Status:      string(eni.Status),
			AttachedTo:  attachedTo,
		})
	}
	return attachments, nil
}

func (u *Usage) GetCLBsBySecurityGroup(ctx context.Context, scope domain.Scope, groupID string) ([]string, error) {
	client, err := u.accounts.ClientFor(ctx, scope)
	if err != nil {
		return nil, err
	}

	paginator := elb.NewDescribeLoadBalancersPaginator(client.elbClient, &elb.DescribeLoadBalancersInput{})
	balancers, err := collectPages(ctx, paginator.HasMorePages,
		func(ctx context.Context) (*elb.DescribeLoadBalancersOutput, error) {
			return paginator.NextPage(ctx)
		},
		func(out *elb.DescribeLoadBalancersOutput) []elbtypes.LoadBalancerDescription {
			return out.LoadBalancerDescriptions
		})
	if err != nil {
		return nil, fmt.Errorf("describe classic load balancers: %w", err)
	}

	var names []string
	for _, lb := range balancers {
		if slices.Contains(lb.SecurityGroups, groupID) {
			names = append(names, derefString(lb.LoadBalancerName))
		}
	}
	return names, nil
}

func (u *Usage) GetALBsBySecurityGroup(ctx context.Context, scope domain.Scope, groupID string) ([]string, error) {
	return u.loadBalancersBySecurityGroup(ctx, scope, groupID, elbv2types.LoadBalancerTypeEnumApplication)
}

func (u *Usage) GetNLBsBySecurityGroup(ctx context.Context, scope domain.Scope, groupID string) ([]string, error) {
	return u.loadBalancersBySecurityGroup(ctx, scope, groupID, elbv2types.LoadBalancerTypeEnumNetwork)
}

func (u *Usage) loadBalancersBySecurityGroup(ctx context.Context, scope domain.Scope, groupID string, typ elbv2types.LoadBalancerTypeEnum) ([]string, error) {
	client, err := u.accounts.ClientFor(ctx, scope)
	if err != nil {
		return nil, err
	}

	paginator := elbv2.NewDescribeLoadBalancersPaginator(client.elbv2Client, &elbv2.DescribeLoadBalancersInput{})
	balancers, err := collectPages(ctx, paginator.HasMorePages,
		func(ctx context.Context) (*elbv2.DescribeLoadBalancersOutput, error) {
			return paginator.NextPage(ctx)
		},
		func(out *elbv2.DescribeLoadBalancersOutput) []elbv2types.LoadBalancer {
			return out.LoadBalancers
		})
	if err != nil {
		return nil, fmt.Errorf("describe %s load balancers: %w", typ, err)
	}

	var names []string
	for _, lb := range balancers {
		if lb.Type != typ {
			continue
		}
		if slices.Contains(lb.SecurityGroups, groupID) {
			names = append(names, derefString(lb.LoadBalancerName))
		}
	}
	return names, nil
}

func (u *Usage) GetRDSInstancesBySecurityGroup(ctx context.Context, scope domain.Scope, groupID string) ([]string, error) {
	client, err := u.accounts.ClientFor(ctx, scope)
	if err != nil {
		return nil, err
	}

	paginator := rds.NewDescribeDBInstancesPaginator(client.rdsClient, &rds.DescribeDBInstancesInput{})
	instances, err := collectPages(ctx, paginator.HasMorePages,
		func(ctx context.Context) (*rds.DescribeDBInstancesOutput, error) {
			return paginator.NextPage(ctx)
		},
		func(out *rds.DescribeDBInstancesOutput) []rdstypes.DBInstance {
			return out.DBInstances
		})
	if err != nil {
		return nil, fmt.Errorf("describe rds instances: %w", err)
	}

	var ids []string
	for _, db := range instances {
		for _, sg := range db.VpcSecurityGroups {
			if derefString(sg.VpcSecurityGroupId) == groupID {
				ids = append(ids, derefString(db.DBInstanceIdentifier))
				break
			}
		}
	}
	return ids, nil
}

func (u *Usage) GetLambdaFunctionsBySecurityGroup(ctx context.Context, scope domain.Scope, groupID string) ([]string, error) {
	client, err := u.accounts.ClientFor(ctx, scope)
	if err != nil {
		return nil, err
	}

	paginator := lambda.NewListFunctionsPaginator(client.lambdaClient, &lambda.ListFunctionsInput{})
	functions, err := collectPages(ctx, paginator.HasMorePages,
		func(ctx context.Context) (*lambda.ListFunctionsOutput, error) {
			return paginator.NextPage(ctx)
		},
		func(out *lambda.ListFunctionsOutput) []lambdatypes.FunctionConfiguration {
			return out.Functions
		})
	if err != nil {
		return nil, fmt.Errorf("list lambda functions: %w", err)
	}

	var names []string
	for _, fn := range functions {
		if fn.VpcConfig == nil {
			continue
		}
		if slices.Contains(fn.VpcConfig.SecurityGroupIds, groupID) {
			names = append(names, derefString(fn.FunctionName))
		}
	}
	return names, nil
}

func (u *Usage) GetElastiCacheClustersBySecurityGroup(ctx context.Context, scope domain.Scope, groupID string) ([]string, error) {
	client, err := u.accounts.ClientFor(ctx, scope)
	if err != nil {
		return nil, err
	}

	paginator := elasticache.NewDescribeCacheClustersPaginator(client.elasticacheClient, &elasticache.DescribeCacheClustersInput{})
	clusters, err := collectPages(ctx, paginator.HasMorePages,
		func(ctx context.Context) (*elasticache.DescribeCacheClustersOutput, error) {
			return paginator.NextPage(ctx)
		},
		func(out *elasticache.DescribeCacheClustersOutput) []elasticachetypes.CacheCluster {
			return out.CacheClusters
		})
	if err != nil {
		return nil, fmt.Errorf("describe elasticache clusters: %w", err)
	}

	var ids []string
	for _, cluster := range clusters {
		for _, sg := range cluster.SecurityGroups {
			if derefString(sg.SecurityGroupId) == groupID {
				ids = append(ids, derefString(cluster.CacheClusterId))
				break
			}
		}
	}
	return ids, nil
}

// GetVPCLinksBySecurityGroup lists API Gateway v2 VPC links configured
// with the group. The SDK has no paginator for GetVpcLinks, so the token
// loop is spelled out.
func (u *Usage) GetVPCLinksBySecurityGroup(ctx context.Context, scope domain.Scope, groupID string) ([]string, error) {
	client, err := u.accounts.ClientFor(ctx, scope)
	if err != nil {
		return nil, err
	}

	var links []apigwv2types.VpcLink
	input := &apigatewayv2.GetVpcLinksInput{}
	for {
		out, err := client.apigwv2Client.GetVpcLinks(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("list vpc links: %w", err)
		}
		links = append(links, out.Items...)
		if out.NextToken == nil || *out.NextToken == "" {
			break
		}
		input.NextToken = out.NextToken
	}

	var ids []string
	for _, link := range links {
		if slices.Contains(link.SecurityGroupIds, groupID) {
			ids = append(ids, derefString(link.VpcLinkId))
		}
	}
	return ids, nil
}
