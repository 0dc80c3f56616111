// Package naming validates and composes security group names. Group names
// follow the convention <appName> or <appName>-<detail>: the application
// name carries no hyphens, so the owning application is always recoverable
// from the leading segment.
package naming

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/wardenhq/warden/internal/domain"
)

// MaxGroupNameLength is the EC2 limit on security group names.
const MaxGroupNameLength = 255

var (
	appNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._]+$`)
	detailPattern  = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

	// Push labels (v000..v999) are appended to cluster names by the
	// deployment tooling; user-chosen names must never end in one.
	reservedPattern = regexp.MustCompile(`(^|-)v[0-9]{3}$`)
)

// ValidateAppName checks an application name against the allowed character
// set and the reserved push-label format, in that order.
func ValidateAppName(name string) error {
	if !appNamePattern.MatchString(name) {
		return &domain.Error{
			Kind:   domain.IllegalCharacter,
			Detail: fmt.Sprintf("application name %q may only contain letters, digits, dots and underscores", name),
		}
	}
	if reservedPattern.MatchString(name) {
		return &domain.Error{
			Kind:   domain.ReservedFormat,
			Detail: fmt.Sprintf("application name %q is reserved for push labels", name),
		}
	}
	return nil
}

// ValidateDetail checks an optional detail suffix. An empty detail is
// valid; a non-empty one must be alphanumeric-and-hyphen and must not end
// in a push label.
func ValidateDetail(detail string) error {
	if detail == "" {
		return nil
	}
	if !detailPattern.MatchString(detail) {
		return &domain.Error{
			Kind:   domain.IllegalCharacter,
			Detail: fmt.Sprintf("detail %q may only contain letters, digits and hyphens", detail),
		}
	}
	if reservedPattern.MatchString(detail) {
		return &domain.Error{
			Kind:   domain.ReservedFormat,
			Detail: fmt.Sprintf("detail %q is reserved for push labels", detail),
		}
	}
	return nil
}

// BuildGroupName composes the group name from an application name and an
// optional detail.
func BuildGroupName(appName, detail string) string {
	if detail == "" {
		return appName
	}
	return appName + "-" + detail
}

// CheckLength rejects composed names longer than MaxGroupNameLength.
func CheckLength(appName, detail string) error {
	name := BuildGroupName(appName, detail)
	if len(name) > MaxGroupNameLength {
		return &domain.Error{
			Kind:   domain.NameTooLong,
			Detail: fmt.Sprintf("group name %q exceeds %d characters", name, MaxGroupNameLength),
		}
	}
	return nil
}

// ExtractAppName returns the application that owns a group name: the
// segment before the first hyphen. A name with no hyphen is returned
// unchanged.
func ExtractAppName(groupName string) string {
	if idx := strings.Index(groupName, "-"); idx >= 0 {
		return groupName[:idx]
	}
	return groupName
}

// ValidateGroupName runs every pure rule in the user-facing order:
// app-name characters, app-name reserved format, detail characters,
// detail reserved format, composed length. The first violation wins.
func ValidateGroupName(appName, detail string) error {
	if err := ValidateAppName(appName); err != nil {
		return err
	}
	if err := ValidateDetail(detail); err != nil {
		return err
	}
	return CheckLength(appName, detail)
}

// ValidateNewGroup runs ValidateGroupName and then confirms the
// application is registered. The registry lookup comes last so that
// syntactically invalid names never trigger I/O.
func ValidateNewGroup(ctx context.Context, scope domain.Scope, appName, detail string, apps domain.ApplicationDirectory) error {
	if err := ValidateGroupName(appName, detail); err != nil {
		return err
	}
	registered, err := apps.IsRegistered(ctx, scope, appName)
	if err != nil {
		return fmt.Errorf("check application %s: %w", appName, err)
	}
	if !registered {
		return &domain.Error{
			Kind:   domain.ApplicationNotRegistered,
			Detail: fmt.Sprintf("application %q is not registered", appName),
		}
	}
	return nil
}
