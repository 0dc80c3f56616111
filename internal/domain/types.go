package domain

// Scope identifies where an operation runs and who asked for it.
// It is threaded explicitly through every call that touches the cloud.
type Scope struct {
	Account  string
	Region   string
	Operator string
}

type SecurityGroup struct {
	ID          string
	Name        string
	Description string
	VPCID       string
	Ingress     []IngressRule
}

// IngressRule is a managed permission: inbound access from another named
// security group over a protocol and port range. CIDR and prefix-list
// rules are not represented here and are never touched.
type IngressRule struct {
	Source   string
	Protocol string
	FromPort int
	ToPort   int
}

func (r IngressRule) Range() PortRange {
	return PortRange{Protocol: r.Protocol, FromPort: r.FromPort, ToPort: r.ToPort}
}

type PortRange struct {
	Protocol string
	FromPort int
	ToPort   int
}

// Intent is the operator's declared desired state for one target group:
// which source groups may reach it, and on which ports. Source groups
// absent from Selected (or selected with blank spec text) get no access.
type Intent struct {
	Selected []string
	Specs    map[string]string
}

func (in Intent) IsSelected(name string) bool {
	for _, s := range in.Selected {
		if s == name {
			return true
		}
	}
	return false
}
