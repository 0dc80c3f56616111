package reconcile

import (
	"reflect"
	"testing"

	"github.com/wardenhq/warden/internal/domain"
)

func tcp(from, to int) domain.PortRange {
	return domain.PortRange{Protocol: "tcp", FromPort: from, ToPort: to}
}

func TestDiffIdenticalSetsAreUntouched(t *testing.T) {
	rules := []domain.PortRange{tcp(80, 80), tcp(443, 8443)}
	delta := Diff(rules, rules)
	if !delta.Empty() {
		t.Errorf("Diff(identical) = %+v, want empty", delta)
	}
}

func TestDiffDisjointSets(t *testing.T) {
	current := []domain.PortRange{tcp(22, 22), tcp(80, 80)}
	desired := []domain.PortRange{tcp(443, 443), {Protocol: "udp", FromPort: 53, ToPort: 53}}

	delta := Diff(current, desired)

	if !reflect.DeepEqual(delta.Revoke, []domain.PortRange{tcp(22, 22), tcp(80, 80)}) {
		t.Errorf("Revoke = %+v, want all current", delta.Revoke)
	}
	if !reflect.DeepEqual(delta.Grant, []domain.PortRange{tcp(443, 443), {Protocol: "udp", FromPort: 53, ToPort: 53}}) {
		t.Errorf("Grant = %+v, want all desired", delta.Grant)
	}
}

func TestDiffOverlapKept(t *testing.T) {
	current := []domain.PortRange{tcp(80, 80), tcp(8080, 8080)}
	desired := []domain.PortRange{tcp(80, 80), tcp(9090, 9090)}

	delta := Diff(current, desired)

	if !reflect.DeepEqual(delta.Revoke, []domain.PortRange{tcp(8080, 8080)}) {
		t.Errorf("Revoke = %+v, want [8080]", delta.Revoke)
	}
	if !reflect.DeepEqual(delta.Grant, []domain.PortRange{tcp(9090, 9090)}) {
		t.Errorf("Grant = %+v, want [9090]", delta.Grant)
	}
}

func TestDiffExactTripleMatching(t *testing.T) {
	// Overlapping ranges are distinct units: no merging or collapsing.
	current := []domain.PortRange{tcp(80, 443)}
	desired := []domain.PortRange{tcp(80, 8443)}

	delta := Diff(current, desired)

	if len(delta.Revoke) != 1 || len(delta.Grant) != 1 {
		t.Errorf("Diff = %+v, want one revoke and one grant", delta)
	}
}

func TestDiffDuplicatesCollapse(t *testing.T) {
	current := []domain.PortRange{tcp(80, 80), tcp(80, 80)}
	delta := Diff(current, []domain.PortRange{tcp(80, 80)})
	if !delta.Empty() {
		t.Errorf("Diff(dup current) = %+v, want empty", delta)
	}

	delta = Diff(nil, []domain.PortRange{tcp(80, 80), tcp(80, 80)})
	if len(delta.Grant) != 1 {
		t.Errorf("Grant = %+v, want single collapsed range", delta.Grant)
	}
}

func TestDiffIdempotence(t *testing.T) {
	current := []domain.PortRange{tcp(22, 22), tcp(8080, 8080)}
	desired := []domain.PortRange{tcp(8080, 8080), tcp(9090, 9090)}

	delta := Diff(current, desired)

	// Apply the delta, then diff again against the same desired state.
	next := applyDelta(current, delta)
	again := Diff(next, desired)
	if !again.Empty() {
		t.Errorf("Diff after apply = %+v, want empty", again)
	}
}

func TestDiffDeterministicOrder(t *testing.T) {
	current := []domain.PortRange{tcp(9090, 9090), tcp(22, 22), {Protocol: "udp", FromPort: 53, ToPort: 53}}
	delta := Diff(current, nil)
	want := []domain.PortRange{tcp(22, 22), tcp(9090, 9090), {Protocol: "udp", FromPort: 53, ToPort: 53}}
	if !reflect.DeepEqual(delta.Revoke, want) {
		t.Errorf("Revoke = %+v, want sorted %+v", delta.Revoke, want)
	}
}

func applyDelta(current []domain.PortRange, delta Delta) []domain.PortRange {
	revoked := make(map[domain.PortRange]bool, len(delta.Revoke))
	for _, r := range delta.Revoke {
		revoked[r] = true
	}
	var next []domain.PortRange
	for _, r := range current {
		if !revoked[r] {
			next = append(next, r)
		}
	}
	return append(next, delta.Grant...)
}
