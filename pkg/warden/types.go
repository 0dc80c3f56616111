package warden

import (
	"github.com/wardenhq/warden/internal/domain"
	"github.com/wardenhq/warden/internal/naming"
	"github.com/wardenhq/warden/internal/portspec"
)

// Scope identifies where an operation runs and who asked for it.
type Scope = domain.Scope

type SecurityGroup = domain.SecurityGroup

type IngressRule = domain.IngressRule

type PortRange = domain.PortRange

// Intent declares the desired ingress of a target group: which source
// groups are selected and the port spec text for each.
type Intent = domain.Intent

type Summary = domain.Summary

type GroupResult = domain.GroupResult

type GroupUsage = domain.GroupUsage

type ENIAttachment = domain.ENIAttachment

type Error = domain.Error

type ErrorKind = domain.ErrorKind

const (
	IllegalCharacter         = domain.IllegalCharacter
	ReservedFormat           = domain.ReservedFormat
	NameTooLong              = domain.NameTooLong
	ApplicationNotRegistered = domain.ApplicationNotRegistered
	MalformedPortSpec        = domain.MalformedPortSpec
	PortOutOfRange           = domain.PortOutOfRange
	InvalidPortRange         = domain.InvalidPortRange
	GroupNotFound            = domain.GroupNotFound
	GroupInUse               = domain.GroupInUse
	GatewayFailure           = domain.GatewayFailure
)

// IsKind reports whether err, anywhere in its chain, is a warden Error
// of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return domain.IsKind(err, kind)
}

// KindOf returns the kind of the first warden Error in the chain, or
// the empty kind when there is none.
func KindOf(err error) ErrorKind {
	return domain.KindOf(err)
}

// ParsePortSpec parses port spec text like "80, 443-8443, udp:53" into
// port ranges. A blank spec parses to nothing.
func ParsePortSpec(text string) ([]PortRange, error) {
	return portspec.Parse(text)
}

// BuildGroupName joins an application name and optional detail into a
// group name.
func BuildGroupName(appName, detail string) string {
	return naming.BuildGroupName(appName, detail)
}

// ExtractAppName recovers the application name from a group name: the
// segment before the first hyphen.
func ExtractAppName(groupName string) string {
	return naming.ExtractAppName(groupName)
}
