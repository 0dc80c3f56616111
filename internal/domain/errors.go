package domain

import "errors"

type ErrorKind string

const (
	IllegalCharacter         ErrorKind = "IllegalCharacter"
	ReservedFormat           ErrorKind = "ReservedFormat"
	NameTooLong              ErrorKind = "NameTooLong"
	ApplicationNotRegistered ErrorKind = "ApplicationNotRegistered"
	MalformedPortSpec        ErrorKind = "MalformedPortSpec"
	PortOutOfRange           ErrorKind = "PortOutOfRange"
	InvalidPortRange         ErrorKind = "InvalidPortRange"
	GroupNotFound            ErrorKind = "GroupNotFound"
	GroupInUse               ErrorKind = "GroupInUse"
	GatewayFailure           ErrorKind = "GatewayFailure"
)

type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Detail + ": " + e.Err.Error()
	}
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err, anywhere in its chain, is a domain Error of
// the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}

// KindOf returns the kind of the first domain Error in the chain, or the
// empty kind when there is none.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
