package spec

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Service describes one deployable unit parsed from a spec document.
type Service struct {
	Name          string       `yaml:"name"`
	Application   string       `yaml:"application"`
	ImageRepo     string       `yaml:"image_repo"`
	ContainerPort int          `yaml:"container_port"`
	CPU           int          `yaml:"cpu"`
	Memory        int          `yaml:"memory"`
	DesiredCount  int          `yaml:"desired_count"`
	Env           EnvMap       `yaml:"env"`
	ALB           *ALBSpec     `yaml:"alb"`
	Autoscaling   *Autoscaling `yaml:"autoscaling"`
	Deployment    *Deployment  `yaml:"deployment"`

	// Source records the originating spec file and only feeds error messages.
	Source string `yaml:"-"`
}

// EnvVar is a single environment variable entry.
type EnvVar struct {
	Key   string
	Value string
}

// EnvMap preserves the document order of the env mapping so that rendering
// stays byte-stable across runs.
type EnvMap []EnvVar

// UnmarshalYAML decodes a YAML mapping into ordered key/value pairs. Scalar
// values authored as bare numbers or booleans are coerced to strings.
func (m *EnvMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("env must be a mapping of variable names to values")
	}
	out := make(EnvMap, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return fmt.Errorf("env key on line %d: %w", keyNode.Line, err)
		}
		var raw any
		if err := valueNode.Decode(&raw); err != nil {
			return fmt.Errorf("env value for %q: %w", key, err)
		}
		value, err := cast.ToStringE(raw)
		if err != nil {
			return fmt.Errorf("env value for %q: %w", key, err)
		}
		out = append(out, EnvVar{Key: key, Value: value})
	}
	*m = out
	return nil
}

// ALBSpec attaches a service to an existing load balancer.
type ALBSpec struct {
	ALBID            string   `yaml:"alb_id"`
	ListenerProtocol string   `yaml:"listener_protocol"`
	ListenerPort     int      `yaml:"listener_port"`
	PathPatterns     []string `yaml:"path_patterns"`
	HostPatterns     []string `yaml:"host_patterns"`

	HealthCheckPath         string `yaml:"health_check_path"`
	HealthCheckMatcher      any    `yaml:"health_check_matcher"`
	HealthCheckInterval     *int   `yaml:"health_check_interval"`
	HealthCheckTimeout      *int   `yaml:"health_check_timeout"`
	HealthCheckHealthyThr   *int   `yaml:"health_check_healthy_thr"`
	HealthCheckUnhealthyThr *int   `yaml:"health_check_unhealthy_thr"`
}

// Autoscaling configures target-tracking scaling for a service.
type Autoscaling struct {
	MinCapacity  *int `yaml:"min_capacity"`
	MaxCapacity  *int `yaml:"max_capacity"`
	CPUTarget    *int `yaml:"cpu_target"`
	MemoryTarget *int `yaml:"memory_target"`
}

// Deployment overrides the rollout thresholds for a service.
type Deployment struct {
	MinimumHealthyPercent *int `yaml:"minimum_healthy_percent"`
	MaximumPercent        *int `yaml:"maximum_percent"`
}

// ApplyDefaults fills in sizing fields that the spec document omitted.
func (s *Service) ApplyDefaults() {
	if s.ContainerPort == 0 {
		s.ContainerPort = 80
	}
	if s.CPU == 0 {
		s.CPU = 256
	}
	if s.Memory == 0 {
		s.Memory = 512
	}
	if s.DesiredCount == 0 {
		s.DesiredCount = 1
	}
}

var appNamePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidateApplicationName enforces the naming rules for application
// identifiers: lowercase letters, digits and hyphens only, with no leading,
// trailing or consecutive hyphens. Each broken rule is reported separately so
// spec authors can tell exactly what to fix.
func ValidateApplicationName(name, source string) error {
	if name == "" {
		return fmt.Errorf("application name cannot be empty (in %s)", source)
	}
	if name != strings.ToLower(name) {
		return fmt.Errorf("application name %q must be lowercase only (in %s): found uppercase characters", name, source)
	}
	if !appNamePattern.MatchString(name) {
		return fmt.Errorf("application name %q contains invalid characters %s (in %s): only lowercase letters, digits and hyphens are allowed", name, invalidAppNameChars(name), source)
	}
	if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
		return fmt.Errorf("application name %q cannot start or end with a hyphen (in %s)", name, source)
	}
	if strings.Contains(name, "--") {
		return fmt.Errorf("application name %q cannot contain consecutive hyphens (in %s)", name, source)
	}
	return nil
}

func invalidAppNameChars(name string) string {
	seen := map[rune]struct{}{}
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			continue
		}
		seen[r] = struct{}{}
	}
	chars := make([]string, 0, len(seen))
	for r := range seen {
		chars = append(chars, strconv.QuoteRune(r))
	}
	sort.Strings(chars)
	return strings.Join(chars, ", ")
}

// Applications returns the distinct application names present in the list,
// sorted alphabetically.
func Applications(services []*Service) []string {
	seen := map[string]struct{}{}
	for _, svc := range services {
		if svc == nil || svc.Application == "" {
			continue
		}
		seen[svc.Application] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
