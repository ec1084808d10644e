package spec

import (
	"strings"
	"testing"
)

func routedService(name, application, albID string, paths, hosts []string) *Service {
	return &Service{
		Name:        name,
		Application: application,
		ImageRepo:   "repo/" + name,
		ALB: &ALBSpec{
			ALBID:            albID,
			ListenerProtocol: "HTTPS",
			ListenerPort:     443,
			PathPatterns:     paths,
			HostPatterns:     hosts,
		},
	}
}

func TestValidateRoutingConflictsAllowsDistinctPaths(t *testing.T) {
	services := []*Service{
		routedService("svc-a", "shop", "alb-1", []string{"/api/*"}, nil),
		routedService("svc-b", "shop", "alb-1", []string{"/admin/*"}, nil),
	}
	if err := ValidateRoutingConflicts(services); err != nil {
		t.Fatalf("unexpected conflict: %v", err)
	}
}

func TestValidateRoutingConflictsDetectsDuplicatePath(t *testing.T) {
	services := []*Service{
		routedService("svc-a", "shop", "alb-1", []string{"/api/*"}, nil),
		routedService("svc-b", "shop", "alb-1", []string{"/api/*"}, nil),
	}
	err := ValidateRoutingConflicts(services)
	if err == nil {
		t.Fatalf("expected conflict error")
	}
	for _, want := range []string{"alb-1", "/api/*", "shop::svc-a", "shop::svc-b"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}

func TestValidateRoutingConflictsHostPatternsDisambiguate(t *testing.T) {
	services := []*Service{
		routedService("svc-a", "shop", "alb-1", []string{"/api/*"}, []string{"a.example.com"}),
		routedService("svc-b", "shop", "alb-1", []string{"/api/*"}, []string{"b.example.com"}),
	}
	if err := ValidateRoutingConflicts(services); err != nil {
		t.Fatalf("unexpected conflict: %v", err)
	}
}

func TestValidateRoutingConflictsNormalizesHostCase(t *testing.T) {
	services := []*Service{
		routedService("svc-a", "shop", "alb-1", []string{"/api/*"}, []string{"API.Example.com "}),
		routedService("svc-b", "shop", "alb-1", []string{"/api/*"}, []string{"api.example.com"}),
	}
	err := ValidateRoutingConflicts(services)
	if err == nil {
		t.Fatalf("expected conflict after host normalization")
	}
	if !strings.Contains(err.Error(), "api.example.com") {
		t.Fatalf("error %q missing normalized host", err)
	}
}

func TestValidateRoutingConflictsNormalizesTrailingSlash(t *testing.T) {
	services := []*Service{
		routedService("svc-a", "shop", "alb-1", []string{"/api/"}, nil),
		routedService("svc-b", "shop", "alb-1", []string{"/api"}, nil),
	}
	if err := ValidateRoutingConflicts(services); err == nil {
		t.Fatalf("expected conflict after path normalization")
	}
}

func TestValidateRoutingConflictsIgnoresServicesWithoutPaths(t *testing.T) {
	services := []*Service{
		routedService("svc-a", "shop", "alb-1", []string{"/api/*"}, nil),
		routedService("svc-b", "shop", "alb-1", nil, nil),
	}
	if err := ValidateRoutingConflicts(services); err != nil {
		t.Fatalf("unexpected conflict: %v", err)
	}
}

func TestValidateRoutingConflictsIgnoresServicesWithoutALB(t *testing.T) {
	services := []*Service{
		routedService("svc-a", "shop", "alb-1", []string{"/api/*"}, nil),
		{Name: "worker", Application: "shop", ImageRepo: "repo/worker"},
	}
	if err := ValidateRoutingConflicts(services); err != nil {
		t.Fatalf("unexpected conflict: %v", err)
	}
}

func TestValidateRoutingConflictsSeparateALBsDoNotCollide(t *testing.T) {
	services := []*Service{
		routedService("svc-a", "shop", "alb-1", []string{"/api/*"}, nil),
		routedService("svc-b", "shop", "alb-2", []string{"/api/*"}, nil),
	}
	if err := ValidateRoutingConflicts(services); err != nil {
		t.Fatalf("unexpected conflict: %v", err)
	}
}

func TestValidateRoutingConflictsCollectsAcrossALBs(t *testing.T) {
	services := []*Service{
		routedService("svc-a", "shop", "alb-1", []string{"/api/*"}, nil),
		routedService("svc-b", "shop", "alb-1", []string{"/api/*"}, nil),
		routedService("svc-c", "ops", "alb-2", []string{"/metrics"}, nil),
		routedService("svc-d", "ops", "alb-2", []string{"/metrics"}, nil),
	}
	err := ValidateRoutingConflicts(services)
	if err == nil {
		t.Fatalf("expected conflict error")
	}
	for _, want := range []string{"alb-1", "alb-2", "ops::svc-c", "ops::svc-d"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}

	conflictErr, ok := err.(*ConflictError)
	if !ok {
		t.Fatalf("expected *ConflictError, got %T", err)
	}
	if got, want := len(conflictErr.Conflicts), 2; got != want {
		t.Fatalf("conflict count mismatch: got %d want %d", got, want)
	}
}
