package tfvars

import (
	"reflect"
	"testing"

	"github.com/tfbuild/svcmap/internal/spec"
)

func TestServicesByApplication(t *testing.T) {
	content, err := Render([]*spec.Service{
		minimalService("web", "shop"),
		minimalService("api", "shop"),
		minimalService("pager", "ops"),
	})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	cases := []struct {
		name        string
		application string
		want        []string
	}{
		{name: "single application", application: "shop", want: []string{"web", "api"}},
		{name: "other application", application: "ops", want: []string{"pager"}},
		{name: "all services", application: "all", want: []string{"web", "api", "pager"}},
		{name: "no matches", application: "billing", want: []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ServicesByApplication([]byte(content), "services.generated.tfvars", tc.application)
			if err != nil {
				t.Fatalf("ServicesByApplication returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("service list mismatch: got %v want %v", got, tc.want)
			}
		})
	}
}

func TestServicesByApplicationLegacyFallback(t *testing.T) {
	document := `services = {
  "old-svc" = {
    container_image = "repo/old"
    image_tag       = "latest"
  }
  "new-svc" = {
    container_image = "repo/new"
    image_tag       = "latest"
    application     = "shop"
  }
}
`
	got, err := ServicesByApplication([]byte(document), "services.generated.tfvars", "legacy")
	if err != nil {
		t.Fatalf("ServicesByApplication returned error: %v", err)
	}
	if want := []string{"old-svc"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("legacy fallback mismatch: got %v want %v", got, want)
	}
}

func TestServicesByApplicationRejectsBadSyntax(t *testing.T) {
	if _, err := ServicesByApplication([]byte("services = {"), "broken.tfvars", "all"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestServicesByApplicationRequiresServicesAttribute(t *testing.T) {
	if _, err := ServicesByApplication([]byte(`other = {}`), "other.tfvars", "all"); err == nil {
		t.Fatalf("expected error for missing services attribute")
	}
}
