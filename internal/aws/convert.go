package aws

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/wardenhq/warden/internal/domain"
)

func toSecurityGroup(sg ec2types.SecurityGroup, nameOf func(groupID string) string) domain.SecurityGroup {
	return domain.SecurityGroup{
		ID:          derefString(sg.GroupId),
		Name:        derefString(sg.GroupName),
		Description: derefString(sg.Description),
		VPCID:       derefString(sg.VpcId),
		Ingress:     toIngressRules(sg.IpPermissions, nameOf),
	}
}

// toIngressRules keeps only group-to-group permissions. CIDR, IPv6 and
// prefix-list entries are outside the managed surface and never appear
// in a snapshot, so they are never revoked. A pair whose group name
// cannot be resolved is likewise left alone.
func toIngressRules(perms []ec2types.IpPermission, nameOf func(groupID string) string) []domain.IngressRule {
	var rules []domain.IngressRule
	for _, perm := range perms {
		protocol := derefString(perm.IpProtocol)
		from := int(derefInt32(perm.FromPort))
		to := int(derefInt32(perm.ToPort))
		if protocol == "-1" {
			from, to = 0, 65535
		}
		for _, pair := range perm.UserIdGroupPairs {
			source := derefString(pair.GroupName)
			if source == "" {
				source = nameOf(derefString(pair.GroupId))
			}
			if source == "" {
				continue
			}
			rules = append(rules, domain.IngressRule{
				Source:   source,
				Protocol: protocol,
				FromPort: from,
				ToPort:   to,
			})
		}
	}
	return rules
}

// toIPPermissions builds the wire form of a grant or revoke. EC2 rejects
// port fields on "-1" permissions, so those are sent portless.
func toIPPermissions(source domain.SecurityGroup, ranges []domain.PortRange) []ec2types.IpPermission {
	perms := make([]ec2types.IpPermission, 0, len(ranges))
	for _, r := range ranges {
		pair := ec2types.UserIdGroupPair{GroupId: aws.String(source.ID)}
		if source.ID == "" {
			pair = ec2types.UserIdGroupPair{GroupName: aws.String(source.Name)}
		}
		perm := ec2types.IpPermission{
			IpProtocol:       aws.String(r.Protocol),
			UserIdGroupPairs: []ec2types.UserIdGroupPair{pair},
		}
		if r.Protocol != "-1" {
			perm.FromPort = aws.Int32(int32(r.FromPort))
			perm.ToPort = aws.Int32(int32(r.ToPort))
		}
		perms = append(perms, perm)
	}
	return perms
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt32(i *int32) int32 {
	if i == nil {
		return 0
	}
	return *i
}
