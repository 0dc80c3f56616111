// Package warden mirrors the facade's domain types at the module root
// for callers that import the module path directly.
package warden

import "github.com/wardenhq/warden/internal/domain"

type Scope = domain.Scope

type SecurityGroup = domain.SecurityGroup

type IngressRule = domain.IngressRule

type PortRange = domain.PortRange

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
