package domain

import (
	"fmt"
	"strings"
)

// GroupResult records what happened for one source group during a
// reconciliation pass. Granted and Revoked list the ranges actually
// applied (or planned, on a dry run); Err is set when the group was
// skipped over a parse or gateway failure.
type GroupResult struct {
	Source  string
	Granted []PortRange
	Revoked []PortRange
	Err     error
}

func (r GroupResult) Changed() bool {
	return len(r.Granted) > 0 || len(r.Revoked) > 0
}

type Summary struct {
	Target  string
	DryRun  bool
	Updated int
	Skipped int
	Failed  int
	Results []GroupResult
}

func (s *Summary) Ok() bool {
	return s.Failed == 0
}

// Message renders the operator-facing one-liner, including every
// per-group failure so nothing is silently swallowed.
func (s *Summary) Message() string {
	verb := "reconciled"
	if s.DryRun {
		verb = "planned for"
	}
	msg := fmt.Sprintf("%s %s: %d updated, %d unchanged, %d failed",
		verb, s.Target, s.Updated, s.Skipped, s.Failed)
	if s.Failed == 0 {
		return msg
	}
	var failures []string
	for _, r := range s.Results {
		if r.Err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", r.Source, r.Err))
		}
	}
	return msg + " (" + strings.Join(failures, "; ") + ")"
}
