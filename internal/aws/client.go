// Package aws implements the cloud-facing contracts over aws-sdk-go-v2:
// the security group directory, the ingress permission gateway, and the
// describe surface the usage scanner fans out over. Calls are issued
// through per-account clients resolved by AccountContext.
package aws

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/ratelimit"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/service/apigatewayv2"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/elasticache"
	elb "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/smithy-go"
)

// EC2 error codes the directory and gateway translate or swallow.
const (
	errCodeDuplicatePermission = "InvalidPermission.Duplicate"
	errCodePermissionNotFound  = "InvalidPermission.NotFound"
	errCodeDuplicateGroup      = "InvalidGroup.Duplicate"
	errCodeGroupNotFound       = "InvalidGroup.NotFound"
	errCodeDependencyViolation = "DependencyViolation"
)

// ec2API is the slice of the EC2 surface this package calls, in the
// shape the SDK's paginator constructors accept. *ec2.Client satisfies
// it; tests substitute a hand-rolled fake.
type ec2API interface {
	DescribeSecurityGroups(ctx context.Context, input *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
	CreateSecurityGroup(ctx context.Context, input *ec2.CreateSecurityGroupInput, optFns ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error)
	DeleteSecurityGroup(ctx context.Context, input *ec2.DeleteSecurityGroupInput, optFns ...func(*ec2.Options)) (*ec2.DeleteSecurityGroupOutput, error)
	AuthorizeSecurityGroupIngress(ctx context.Context, input *ec2.AuthorizeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error)
	RevokeSecurityGroupIngress(ctx context.Context, input *ec2.RevokeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.RevokeSecurityGroupIngressOutput, error)
	DescribeNetworkInterfaces(ctx context.Context, input *ec2.DescribeNetworkInterfacesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeNetworkInterfacesOutput, error)
}

type Client struct {
	ec2Client         ec2API
	elbClient         *elb.Client
	elbv2Client       *elbv2.Client
	rdsClient         *rds.Client
	lambdaClient      *lambda.Client
	elasticacheClient *elasticache.Client
	apigwv2Client     *apigatewayv2.Client
	accountID         string
	region            string
	names             *ttlCache[string]
}

func newRetryer() aws.Retryer {
	return retry.NewStandard(func(o *retry.StandardOptions) {
		o.MaxAttempts = 5
		o.MaxBackoff = 30 * time.Second
		o.Backoff = retry.NewExponentialJitterBackoff(o.MaxBackoff)
		o.RateLimiter = ratelimit.None
	})
}

func NewClient(cfg aws.Config, accountID, region string) *Client {
	retryer := newRetryer()
	return &Client{
		ec2Client:         ec2.NewFromConfig(cfg, func(o *ec2.Options) { o.Retryer = retryer }),
		elbClient:         elb.NewFromConfig(cfg, func(o *elb.Options) { o.Retryer = retryer }),
		elbv2Client:       elbv2.NewFromConfig(cfg, func(o *elbv2.Options) { o.Retryer = retryer }),
		rdsClient:         rds.NewFromConfig(cfg, func(o *rds.Options) { o.Retryer = retryer }),
		lambdaClient:      lambda.NewFromConfig(cfg, func(o *lambda.Options) { o.Retryer = retryer }),
		elasticacheClient: elasticache.NewFromConfig(cfg, func(o *elasticache.Options) { o.Retryer = retryer }),
		apigwv2Client:     apigatewayv2.NewFromConfig(cfg, func(o *apigatewayv2.Options) { o.Retryer = retryer }),
		accountID:         accountID,
		region:            region,
		names:             newTTLCache[string](30*time.Minute, 5000),
	}
}

func (c *Client) cacheKey(parts ...string) string {
	return strings.Join(parts, ":")
}

func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
