package spec

import (
	"fmt"
	"strings"
)

// ValidateUniqueNames checks that no two specs declare the same service name.
// The generated document keys services by name, so a duplicate block would let
// downstream tooling silently take one service's configuration for another.
// Every colliding name is collected before failing.
func ValidateUniqueNames(services []*Service) error {
	byName := map[string][]*Service{}
	var order []string
	for _, svc := range services {
		if svc == nil {
			continue
		}
		if _, ok := byName[svc.Name]; !ok {
			order = append(order, svc.Name)
		}
		byName[svc.Name] = append(byName[svc.Name], svc)
	}

	var lines []string
	for _, name := range order {
		group := byName[name]
		if len(group) < 2 {
			continue
		}
		sources := make([]string, 0, len(group))
		for _, svc := range group {
			sources = append(sources, svc.Source)
		}
		lines = append(lines, fmt.Sprintf("  %q is declared by %s", name, strings.Join(sources, ", ")))
	}
	if len(lines) == 0 {
		return nil
	}
	return fmt.Errorf("duplicate service names detected:\n%s\nService names key the generated map; rename the conflicting specs", strings.Join(lines, "\n"))
}
