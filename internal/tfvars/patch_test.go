package tfvars

import (
	"strings"
	"testing"

	"github.com/tfbuild/svcmap/internal/spec"
)

func renderTwoServices(t *testing.T) string {
	t.Helper()
	content, err := Render([]*spec.Service{
		minimalService("web", "shop"),
		minimalService("api", "shop"),
	})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	return content
}

func TestPatchUpdatesOnlyTargetBlock(t *testing.T) {
	content := renderTwoServices(t)

	result := PatchImageTags(content, map[string]string{"web": "v2"})
	if len(result.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", result.Warnings)
	}
	if got, want := len(result.Changes), 1; got != want {
		t.Fatalf("change count mismatch: got %d want %d", got, want)
	}
	if got, want := result.Changes[0], (TagChange{Service: "web", From: "latest", To: "v2"}); got != want {
		t.Fatalf("change mismatch: got %+v want %+v", got, want)
	}

	// web comes first in document order, so the first image_tag occurrence
	// is the one that must change and nothing else may.
	want := strings.Replace(content, `image_tag       = "latest"`, `image_tag       = "v2"`, 1)
	if result.Content != want {
		t.Fatalf("patched content differs outside the target span")
	}
}

func TestPatchLastBlockUsesBraceScan(t *testing.T) {
	content := renderTwoServices(t)

	result := PatchImageTags(content, map[string]string{"api": "v7"})
	if got, want := len(result.Changes), 1; got != want {
		t.Fatalf("change count mismatch: got %d want %d", got, want)
	}

	idx := strings.LastIndex(content, `image_tag       = "latest"`)
	want := content[:idx] + `image_tag       = "v7"` + content[idx+len(`image_tag       = "latest"`):]
	if result.Content != want {
		t.Fatalf("patched content differs outside the last block")
	}
}

func TestPatchMultipleServicesInOneRun(t *testing.T) {
	content := renderTwoServices(t)

	result := PatchImageTags(content, map[string]string{"web": "v2", "api": "v3"})
	if got, want := len(result.Changes), 2; got != want {
		t.Fatalf("change count mismatch: got %d want %d", got, want)
	}
	// Changes are reported in document order regardless of patch order.
	if got, want := result.Changes[0].Service, "web"; got != want {
		t.Fatalf("first change mismatch: got %q want %q", got, want)
	}
	if got, want := result.Changes[1].Service, "api"; got != want {
		t.Fatalf("second change mismatch: got %q want %q", got, want)
	}
	if strings.Contains(result.Content, `"latest"`) {
		t.Fatalf("a placeholder tag survived the patch:\n%s", result.Content)
	}
}

func TestPatchIsIdempotent(t *testing.T) {
	content := renderTwoServices(t)

	first := PatchImageTags(content, map[string]string{"web": "v2"})
	second := PatchImageTags(first.Content, map[string]string{"web": "v2"})

	if len(second.Changes) != 0 {
		t.Fatalf("second patch reported changes: %+v", second.Changes)
	}
	if second.Content != first.Content {
		t.Fatalf("second patch altered the document")
	}
}

func TestPatchUnknownServiceWarns(t *testing.T) {
	content := renderTwoServices(t)

	result := PatchImageTags(content, map[string]string{"web": "v2", "ghost": "v9"})
	if got, want := len(result.Changes), 1; got != want {
		t.Fatalf("change count mismatch: got %d want %d", got, want)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "ghost") {
		t.Fatalf("expected not-found warning for ghost, got %v", result.Warnings)
	}
}

func TestPatchMissingImageTagWarns(t *testing.T) {
	content := `services = {
  "web" = {
    container_image = "repo/web"
  }
}
`
	result := PatchImageTags(content, map[string]string{"web": "v2"})
	if len(result.Changes) != 0 {
		t.Fatalf("unexpected changes: %+v", result.Changes)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "image_tag") {
		t.Fatalf("expected missing image_tag warning, got %v", result.Warnings)
	}
	if result.Content != content {
		t.Fatalf("document was modified despite missing image_tag")
	}
}

func TestPatchEmptyDocumentWarns(t *testing.T) {
	result := PatchImageTags("services = {\n}\n", map[string]string{"web": "v2"})
	if len(result.Warnings) == 0 {
		t.Fatalf("expected warning for document without service blocks")
	}
}
