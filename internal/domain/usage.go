package domain

type ENIAttachment struct {
	ID          string
	Description string
	Status      string
	AttachedTo  string
}

// GroupUsage lists everything in an account that holds a reference to a
// security group: attached interfaces, services configured with it, and
// other groups whose ingress rules name it.
type GroupUsage struct {
	GroupID                  string
	GroupName                string
	NetworkInterfaces        []ENIAttachment
	ClassicLoadBalancers     []string
	ApplicationLoadBalancers []string
	NetworkLoadBalancers     []string
	DBInstances              []string
	LambdaFunctions          []string
	CacheClusters            []string
	VPCLinks                 []string
	ReferencedBy             []string
}

func (u *GroupUsage) InUse() bool {
	return u.References() > 0
}

func (u *GroupUsage) References() int {
	return len(u.NetworkInterfaces) +
		len(u.ClassicLoadBalancers) +
		len(u.ApplicationLoadBalancers) +
		len(u.NetworkLoadBalancers) +
		len(u.DBInstances) +
		len(u.LambdaFunctions) +
		len(u.CacheClusters) +
		len(u.VPCLinks) +
		len(u.ReferencedBy)
}
