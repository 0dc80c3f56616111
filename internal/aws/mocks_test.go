package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ec2"

	"github.com/wardenhq/warden/internal/domain"
)

// fakeEC2 satisfies ec2API with per-call hooks. A nil hook returns an
// empty output. Inputs are recorded so tests can assert the wire shape
// of each call.
type fakeEC2 struct {
	describeInputs  []*ec2.DescribeSecurityGroupsInput
	createInputs    []*ec2.CreateSecurityGroupInput
	deleteInputs    []*ec2.DeleteSecurityGroupInput
	authorizeInputs []*ec2.AuthorizeSecurityGroupIngressInput
	revokeInputs    []*ec2.RevokeSecurityGroupIngressInput

	describeSecurityGroups        func(input *ec2.DescribeSecurityGroupsInput) (*ec2.DescribeSecurityGroupsOutput, error)
	createSecurityGroup           func(input *ec2.CreateSecurityGroupInput) (*ec2.CreateSecurityGroupOutput, error)
	deleteSecurityGroup           func(input *ec2.DeleteSecurityGroupInput) (*ec2.DeleteSecurityGroupOutput, error)
	authorizeSecurityGroupIngress func(input *ec2.AuthorizeSecurityGroupIngressInput) (*ec2.AuthorizeSecurityGroupIngressOutput, error)
	revokeSecurityGroupIngress    func(input *ec2.RevokeSecurityGroupIngressInput) (*ec2.RevokeSecurityGroupIngressOutput, error)
	describeNetworkInterfaces     func(input *ec2.DescribeNetworkInterfacesInput) (*ec2.DescribeNetworkInterfacesOutput, error)
}

func (f *fakeEC2) DescribeSecurityGroups(_ context.Context, input *ec2.DescribeSecurityGroupsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	f.describeInputs = append(f.describeInputs, input)
	if f.describeSecurityGroups == nil {
		return &ec2.DescribeSecurityGroupsOutput{}, nil
	}
	return f.describeSecurityGroups(input)
}

func (f *fakeEC2) CreateSecurityGroup(_ context.Context, input *ec2.CreateSecurityGroupInput, _ ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error) {
	f.createInputs = append(f.createInputs, input)
	if f.createSecurityGroup == nil {
		return &ec2.CreateSecurityGroupOutput{}, nil
	}
	return f.createSecurityGroup(input)
}

func (f *fakeEC2) DeleteSecurityGroup(_ context.Context, input *ec2.DeleteSecurityGroupInput, _ ...func(*ec2.Options)) (*ec2.DeleteSecurityGroupOutput, error) {
	f.deleteInputs = append(f.deleteInputs, input)
	if f.deleteSecurityGroup == nil {
		return &ec2.DeleteSecurityGroupOutput{}, nil
	}
	return f.deleteSecurityGroup(input)
}

func (f *fakeEC2) AuthorizeSecurityGroupIngress(_ context.Context, input *ec2.AuthorizeSecurityGroupIngressInput, _ ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error) {
	f.authorizeInputs = append(f.authorizeInputs, input)
	if f.authorizeSecurityGroupIngress == nil {
		return &ec2.AuthorizeSecurityGroupIngressOutput{}, nil
	}
	return f.authorizeSecurityGroupIngress(input)
}

func (f *fakeEC2) RevokeSecurityGroupIngress(_ context.Context, input *ec2.RevokeSecurityGroupIngressInput, _ ...func(*ec2.Options)) (*ec2.RevokeSecurityGroupIngressOutput, error) {
	f.revokeInputs = append(f.revokeInputs, input)
	if f.revokeSecurityGroupIngress == nil {
		return &ec2.RevokeSecurityGroupIngressOutput{}, nil
	}
	return f.revokeSecurityGroupIngress(input)
}

func (f *fakeEC2) DescribeNetworkInterfaces(_ context.Context, input *ec2.DescribeNetworkInterfacesInput, _ ...func(*ec2.Options)) (*ec2.DescribeNetworkInterfacesOutput, error) {
	if f.describeNetworkInterfaces == nil {
		return &ec2.DescribeNetworkInterfacesOutput{}, nil
	}
	return f.describeNetworkInterfaces(input)
}

// fakeAccounts pools a Client backed by the fake under the zero scope,
// so directory and gateway calls reach the fake without touching STS.
func fakeAccounts(api ec2API) (*AccountContext, domain.Scope) {
	client := &Client{
		ec2Client: api,
		names:     newTTLCache[string](time.Minute, 100),
	}
	accounts := &AccountContext{clientPool: map[string]*Client{"/": client}}
	return accounts, domain.Scope{}
}
