package reconcile

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/wardenhq/warden/internal/domain"
)

var testScope = domain.Scope{Account: "111122223333", Region: "us-east-1", Operator: "jsmith"}

func group(name string, ingress ...domain.IngressRule) domain.SecurityGroup {
	return domain.SecurityGroup{
		ID:      "sg-" + name,
		Name:    name,
		VPCID:   "vpc-abc",
		Ingress: ingress,
	}
}

func rule(source string, from, to int) domain.IngressRule {
	return domain.IngressRule{Source: source, Protocol: "tcp", FromPort: from, ToPort: to}
}

func resultFor(t *testing.T, summary *domain.Summary, source string) domain.GroupResult {
	t.Helper()
	for _, r := range summary.Results {
		if r.Source == source {
			return r
		}
	}
	t.Fatalf("no result for source %s in %+v", source, summary.Results)
	return domain.GroupResult{}
}

func TestReconcileReplacesPortRange(t *testing.T) {
	dir := newMockDirectory(
		group("myapp-frontend", rule("myapp-backend", 8080, 8080)),
		group("myapp-backend"),
	)
	gw := newMockGateway(dir)
	driver := NewDriver(dir, gw, nil)

	known, _ := dir.ListGroups(context.Background(), testScope)
	intent := domain.Intent{
		Selected: []string{"myapp-backend"},
		Specs:    map[string]string{"myapp-backend": "9090"},
	}

	summary, err := driver.Reconcile(context.Background(), testScope, "myapp-frontend", known, intent)
	if err != nil {
		t.Fatalf("Reconcile error = %v, want nil", err)
	}

	backend := resultFor(t, summary, "myapp-backend")
	if !reflect.DeepEqual(backend.Revoked, []domain.PortRange{tcp(8080, 8080)}) {
		t.Errorf("Revoked = %+v, want [(tcp,8080,8080)]", backend.Revoked)
	}
	if !reflect.DeepEqual(backend.Granted, []domain.PortRange{tcp(9090, 9090)}) {
		t.Errorf("Granted = %+v, want [(tcp,9090,9090)]", backend.Granted)
	}
	if summary.Updated != 1 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want 1 updated, 0 failed", summary)
	}

	// Revoke must land before grant for the same source group.
	if len(gw.revokes) != 1 || len(gw.grants) != 1 {
		t.Fatalf("gateway calls = %d revokes, %d grants, want 1 each", len(gw.revokes), len(gw.grants))
	}

	want := []domain.IngressRule{rule("myapp-backend", 9090, 9090)}
	if got := dir.ingressOf("myapp-frontend"); !reflect.DeepEqual(got, want) {
		t.Errorf("ingress after reconcile = %+v, want %+v", got, want)
	}

	// A second pass over the converged state changes nothing.
	summary, err = driver.Reconcile(context.Background(), testScope, "myapp-frontend", known, intent)
	if err != nil {
		t.Fatalf("second Reconcile error = %v, want nil", err)
	}
	if summary.Updated != 0 || summary.Failed != 0 {
		t.Errorf("second pass summary = %+v, want all unchanged", summary)
	}
	if len(gw.grants) != 1 || len(gw.revokes) != 1 {
		t.Errorf("second pass issued gateway calls: %d grants, %d revokes", len(gw.grants), len(gw.revokes))
	}
}

func TestReconcilePartialFailure(t *testing.T) {
	dir := newMockDirectory(
		group("myapp",
			rule("app-a", 8080, 8080),
			rule("app-b", 9090, 9090),
		),
		group("app-a"),
		group("app-b"),
		group("app-c"),
	)
	gw := newMockGateway(dir)
	driver := NewDriver(dir, gw, nil)

	known, _ := dir.ListGroups(context.Background(), testScope)
	intent := domain.Intent{
		Selected: []string{"app-a", "app-b", "app-c"},
		Specs: map[string]string{
			"app-a": "80",
			"app-b": "not a port",
			"app-c": "443",
		},
	}

	summary, err := driver.Reconcile(context.Background(), testScope, "myapp", known, intent)
	if err != nil {
		t.Fatalf("Reconcile error = %v, want nil", err)
	}

	if summary.Updated != 2 || summary.Failed != 1 {
		t.Errorf("summary = %d updated, %d failed, want 2 and 1", summary.Updated, summary.Failed)
	}

	b := resultFor(t, summary, "app-b")
	if !domain.IsKind(b.Err, domain.MalformedPortSpec) {
		t.Errorf("app-b error = %v, want MalformedPortSpec", b.Err)
	}

	// The failed group's existing rules stay untouched; the others
	// converged.
	final := dir.ingressOf("myapp")
	wantRules := map[domain.IngressRule]bool{
		rule("app-a", 80, 80):     true,
		rule("app-b", 9090, 9090): true,
		rule("app-c", 443, 443):   true,
	}
	if len(final) != len(wantRules) {
		t.Fatalf("final ingress = %+v, want %v", final, wantRules)
	}
	for _, r := range final {
		if !wantRules[r] {
			t.Errorf("unexpected rule %+v", r)
		}
	}
}

func TestReconcileUnselectedGroupIsRevoked(t *testing.T) {
	dir := newMockDirectory(
		group("myapp", rule("app-a", 8080, 8080)),
		group("app-a"),
	)
	gw := newMockGateway(dir)
	driver := NewDriver(dir, gw, nil)

	known, _ := dir.ListGroups(context.Background(), testScope)

	summary, err := driver.Reconcile(context.Background(), testScope, "myapp", known, domain.Intent{})
	if err != nil {
		t.Fatalf("Reconcile error = %v, want nil", err)
	}
	if summary.Updated != 1 {
		t.Errorf("summary = %+v, want app-a revoked", summary)
	}
	if got := dir.ingressOf("myapp"); len(got) != 0 {
		t.Errorf("ingress after reconcile = %+v, want empty", got)
	}
}

func TestReconcileBlankSpecMeansRevoke(t *testing.T) {
	dir := newMockDirectory(
		group("myapp", rule("app-a", 8080, 8080)),
		group("app-a"),
	)
	gw := newMockGateway(dir)
	driver := NewDriver(dir, gw, nil)

	known, _ := dir.ListGroups(context.Background(), testScope)
	intent := domain.Intent{
		Selected: []string{"app-a"},
		Specs:    map[string]string{"app-a": "   "},
	}

	_, err := driver.Reconcile(context.Background(), testScope, "myapp", known, intent)
	if err != nil {
		t.Fatalf("Reconcile error = %v, want nil", err)
	}
	if got := dir.ingressOf("myapp"); len(got) != 0 {
		t.Errorf("ingress after reconcile = %+v, want empty", got)
	}
}

func TestReconcileTargetNotFoundIsFatal(t *testing.T) {
	dir := newMockDirectory(group("app-a"))
	driver := NewDriver(dir, newMockGateway(dir), nil)

	known, _ := dir.ListGroups(context.Background(), testScope)

	summary, err := driver.Reconcile(context.Background(), testScope, "ghost", known, domain.Intent{})
	if summary != nil {
		t.Errorf("summary = %+v, want nil", summary)
	}
	if !domain.IsKind(err, domain.GroupNotFound) {
		t.Errorf("error = %v, want GroupNotFound", err)
	}
}

func TestReconcileGatewayFailureContained(t *testing.T) {
	dir := newMockDirectory(
		group("myapp"),
		group("app-a"),
		group("app-b"),
	)
	gw := newMockGateway(dir)
	gw.failGrantOn["app-a"] = &domain.Error{Kind: domain.GatewayFailure, Detail: "authorize failed"}
	driver := NewDriver(dir, gw, nil)

	known, _ := dir.ListGroups(context.Background(), testScope)
	intent := domain.Intent{
		Selected: []string{"app-a", "app-b"},
		Specs:    map[string]string{"app-a": "80", "app-b": "443"},
	}

	summary, err := driver.Reconcile(context.Background(), testScope, "myapp", known, intent)
	if err != nil {
		t.Fatalf("Reconcile error = %v, want nil", err)
	}
	if summary.Failed != 1 || summary.Updated != 1 {
		t.Errorf("summary = %+v, want app-a failed, app-b updated", summary)
	}
	a := resultFor(t, summary, "app-a")
	if !domain.IsKind(a.Err, domain.GatewayFailure) {
		t.Errorf("app-a error = %v, want GatewayFailure", a.Err)
	}
}

func TestReconcileSelectedUnknownSourceReported(t *testing.T) {
	dir := newMockDirectory(group("myapp"), group("app-a"))
	driver := NewDriver(dir, newMockGateway(dir), nil)

	known, _ := dir.ListGroups(context.Background(), testScope)
	intent := domain.Intent{
		Selected: []string{"app-a", "ghost"},
		Specs:    map[string]string{"app-a": "80", "ghost": "443"},
	}

	summary, err := driver.Reconcile(context.Background(), testScope, "myapp", known, intent)
	if err != nil {
		t.Fatalf("Reconcile error = %v, want nil", err)
	}
	ghost := resultFor(t, summary, "ghost")
	if !domain.IsKind(ghost.Err, domain.GroupNotFound) {
		t.Errorf("ghost error = %v, want GroupNotFound", ghost.Err)
	}
	if summary.Updated != 1 || summary.Failed != 1 {
		t.Errorf("summary = %+v, want 1 updated, 1 failed", summary)
	}
}

func TestPlanDoesNotMutate(t *testing.T) {
	dir := newMockDirectory(
		group("myapp", rule("app-a", 8080, 8080)),
		group("app-a"),
	)
	gw := newMockGateway(dir)
	driver := NewDriver(dir, gw, nil)

	known, _ := dir.ListGroups(context.Background(), testScope)
	intent := domain.Intent{
		Selected: []string{"app-a"},
		Specs:    map[string]string{"app-a": "9090"},
	}

	summary, err := driver.Plan(context.Background(), testScope, "myapp", known, intent)
	if err != nil {
		t.Fatalf("Plan error = %v, want nil", err)
	}
	if !summary.DryRun {
		t.Error("summary.DryRun = false, want true")
	}
	if summary.Updated != 1 {
		t.Errorf("summary = %+v, want 1 planned update", summary)
	}
	a := resultFor(t, summary, "app-a")
	if len(a.Revoked) != 1 || len(a.Granted) != 1 {
		t.Errorf("planned delta = %+v, want one revoke and one grant", a)
	}
	if len(gw.grants) != 0 || len(gw.revokes) != 0 {
		t.Error("Plan touched the gateway")
	}
	if got := dir.ingressOf("myapp"); !reflect.DeepEqual(got, []domain.IngressRule{rule("app-a", 8080, 8080)}) {
		t.Errorf("Plan mutated the directory: %+v", got)
	}
}

func TestReconcileHonorsCancellation(t *testing.T) {
	dir := newMockDirectory(group("myapp"), group("app-a"))
	driver := NewDriver(dir, newMockGateway(dir), nil)

	known, _ := dir.ListGroups(context.Background(), testScope)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := driver.Reconcile(ctx, testScope, "myapp", known, domain.Intent{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if summary == nil {
		t.Fatal("summary = nil, want partial summary")
	}
	if len(summary.Results) != 0 {
		t.Errorf("results = %+v, want none after immediate cancel", summary.Results)
	}
}

func TestReconcileManyContainsTargetFailures(t *testing.T) {
	dir := newMockDirectory(
		group("myapp-frontend", rule("myapp-backend", 8080, 8080)),
		group("myapp-backend"),
	)
	gw := newMockGateway(dir)
	driver := NewDriver(dir, gw, nil)

	known, _ := dir.ListGroups(context.Background(), testScope)
	intents := map[string]domain.Intent{
		"myapp-frontend": {
			Selected: []string{"myapp-backend"},
			Specs:    map[string]string{"myapp-backend": "9090"},
		},
		"ghost": {},
	}

	summaries, err := driver.ReconcileMany(context.Background(), testScope, known, intents, 2)
	if !domain.IsKind(err, domain.GroupNotFound) {
		t.Errorf("error = %v, want GroupNotFound for ghost", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("summaries = %+v, want one for myapp-frontend", summaries)
	}
	if s := summaries["myapp-frontend"]; s == nil || s.Updated != 1 {
		t.Errorf("frontend summary = %+v, want 1 updated", s)
	}
}

func TestSummaryMessageListsFailures(t *testing.T) {
	dir := newMockDirectory(group("myapp"), group("app-a"))
	driver := NewDriver(dir, newMockGateway(dir), nil)

	known, _ := dir.ListGroups(context.Background(), testScope)
	intent := domain.Intent{
		Selected: []string{"app-a"},
		Specs:    map[string]string{"app-a": "443-80"},
	}

	summary, err := driver.Reconcile(context.Background(), testScope, "myapp", known, intent)
	if err != nil {
		t.Fatalf("Reconcile error = %v, want nil", err)
	}
	msg := summary.Message()
	for _, fragment := range []string{"myapp", "1 failed", "app-a", "from greater than to"} {
		if !strings.Contains(msg, fragment) {
			t.Errorf("Message() = %q, missing %q", msg, fragment)
		}
	}
}
