package reconcile

import (
	"sort"

	"github.com/wardenhq/warden/internal/domain"
)

// Delta is the outcome of diffing one source group's current port ranges
// against the desired set.
type Delta struct {
	Revoke []domain.PortRange
	Grant  []domain.PortRange
}

func (d Delta) Empty() bool {
	return len(d.Revoke) == 0 && len(d.Grant) == 0
}

// Diff compares current and desired ranges for a single source group.
// Matching is exact on the (protocol, fromPort, toPort) triple; there is
// no range merging or overlap collapsing. Ranges present on both sides
// are left untouched, so rediffing a converged state yields an empty
// delta. Output order is deterministic.
func Diff(current, desired []domain.PortRange) Delta {
	currentSet := toSet(current)
	desiredSet := toSet(desired)

	var delta Delta
	for r := range currentSet {
		if !desiredSet[r] {
			delta.Revoke = append(delta.Revoke, r)
		}
	}
	for r := range desiredSet {
		if !currentSet[r] {
			delta.Grant = append(delta.Grant, r)
		}
	}
	sortRanges(delta.Revoke)
	sortRanges(delta.Grant)
	return delta
}

func toSet(ranges []domain.PortRange) map[domain.PortRange]bool {
	set := make(map[domain.PortRange]bool, len(ranges))
	for _, r := range ranges {
		set[r] = true
	}
	return set
}

func sortRanges(ranges []domain.PortRange) {
	sort.Slice(ranges, func(i, j int) bool {
		a, b := ranges[i], ranges[j]
		if a.Protocol != b.Protocol {
			return a.Protocol < b.Protocol
		}
		if a.FromPort != b.FromPort {
			return a.FromPort < b.FromPort
		}
		return a.ToPort < b.ToPort
	})
}
