package tfvars

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/tfbuild/svcmap/internal/spec"
)

var header = []string{
	"# Generated by svcmap from services/*.yaml or applications/*/services/*.yaml.",
	"# DO NOT EDIT MANUALLY; changes will be overwritten on the next generation run.",
	"#",
	"# Services attach to existing ALBs by referencing the ALB's key in the",
	"# 'alb_id' field. ALB definitions themselves are managed elsewhere.",
	"#",
	"# The image_tag placeholder is rewritten at deploy time by 'svcmap update-tags';",
	"# re-running generation never touches deployed tags.",
	"",
	"services = {",
}

// Render produces the services map document for the given specs. Output order
// follows input order and the result is byte-stable for identical input. No
// partial document is ever returned: the first invalid spec aborts the whole
// render.
func Render(services []*spec.Service) (string, error) {
	lines := append([]string(nil), header...)

	for _, svc := range services {
		block, err := renderService(svc)
		if err != nil {
			return "", err
		}
		lines = append(lines, block...)
	}

	lines = append(lines, "}", "")
	return strings.Join(lines, "\n"), nil
}

func renderService(svc *spec.Service) ([]string, error) {
	if strings.TrimSpace(svc.Name) == "" {
		return nil, fmt.Errorf("service spec %s is missing required field \"name\"", svc.Source)
	}
	if svc.Application == "" {
		return nil, fmt.Errorf("service %q is missing required field \"application\"", svc.Name)
	}
	if svc.ImageRepo == "" {
		return nil, fmt.Errorf("service %q is missing required field \"image_repo\"", svc.Name)
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("  %s = {", quote(svc.Name)))
	lines = append(lines, fmt.Sprintf("    container_image = %s", quote(svc.ImageRepo)))
	// The deployed tag is applied later by the patcher, never here.
	lines = append(lines, `    image_tag       = "latest"`)
	lines = append(lines, fmt.Sprintf("    container_port  = %d", svc.ContainerPort))
	lines = append(lines, fmt.Sprintf("    cpu             = %d", svc.CPU))
	lines = append(lines, fmt.Sprintf("    memory          = %d", svc.Memory))
	lines = append(lines, fmt.Sprintf("    desired_count   = %d", svc.DesiredCount))
	lines = append(lines, fmt.Sprintf("    application     = %s", quote(svc.Application)))
	lines = append(lines, "")

	if len(svc.Env) > 0 {
		lines = append(lines, "    environment_variables = {")
		for _, v := range svc.Env {
			lines = append(lines, fmt.Sprintf("      %s = %s", v.Key, quote(v.Value)))
		}
		lines = append(lines, "    }", "")
	}

	if svc.ALB != nil {
		albLines, err := renderALB(svc.Name, svc.ALB)
		if err != nil {
			return nil, err
		}
		lines = append(lines, albLines...)
	}

	if svc.Autoscaling != nil {
		scalingLines, err := renderAutoscaling(svc.Name, svc.Autoscaling)
		if err != nil {
			return nil, err
		}
		lines = append(lines, scalingLines...)
	}

	if svc.Deployment != nil {
		lines = append(lines, "    deployment = {")
		if svc.Deployment.MinimumHealthyPercent != nil {
			lines = append(lines, fmt.Sprintf("      minimum_healthy_percent = %d", *svc.Deployment.MinimumHealthyPercent))
		}
		if svc.Deployment.MaximumPercent != nil {
			lines = append(lines, fmt.Sprintf("      maximum_percent = %d", *svc.Deployment.MaximumPercent))
		}
		lines = append(lines, "    }", "")
	}

	lines = append(lines, "  }", "")
	return lines, nil
}

func renderALB(service string, alb *spec.ALBSpec) ([]string, error) {
	var missing []string
	if alb.ALBID == "" {
		missing = append(missing, "alb_id")
	}
	if alb.ListenerProtocol == "" {
		missing = append(missing, "listener_protocol")
	}
	if alb.ListenerPort == 0 {
		missing = append(missing, "listener_port")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("service %q alb block missing required fields: %s", service, strings.Join(missing, ", "))
	}

	var lines []string
	lines = append(lines, "    alb = {")
	lines = append(lines, fmt.Sprintf("      alb_id            = %s", quote(alb.ALBID)))
	lines = append(lines, fmt.Sprintf("      listener_protocol = %s", quote(alb.ListenerProtocol)))
	lines = append(lines, fmt.Sprintf("      listener_port     = %d", alb.ListenerPort))

	if len(alb.PathPatterns) > 0 {
		lines = append(lines, fmt.Sprintf("      path_patterns = [%s]", quoteList(alb.PathPatterns)))
	}
	if len(alb.HostPatterns) > 0 {
		lines = append(lines, fmt.Sprintf("      host_patterns = [%s]", quoteList(alb.HostPatterns)))
	}

	if alb.HealthCheckPath != "" {
		lines = append(lines, fmt.Sprintf("      health_check_path = %s", quote(alb.HealthCheckPath)))
	}
	switch matcher := alb.HealthCheckMatcher.(type) {
	case nil:
	case string:
		lines = append(lines, fmt.Sprintf("      health_check_matcher = %s", quote(matcher)))
	default:
		value, err := cast.ToIntE(matcher)
		if err != nil {
			return nil, fmt.Errorf("service %q alb block has invalid health_check_matcher: %v", service, matcher)
		}
		lines = append(lines, fmt.Sprintf("      health_check_matcher = %d", value))
	}
	if alb.HealthCheckInterval != nil {
		lines = append(lines, fmt.Sprintf("      health_check_interval = %d", *alb.HealthCheckInterval))
	}
	if alb.HealthCheckTimeout != nil {
		lines = append(lines, fmt.Sprintf("      health_check_timeout = %d", *alb.HealthCheckTimeout))
	}
	if alb.HealthCheckHealthyThr != nil {
		lines = append(lines, fmt.Sprintf("      health_check_healthy_thr = %d", *alb.HealthCheckHealthyThr))
	}
	if alb.HealthCheckUnhealthyThr != nil {
		lines = append(lines, fmt.Sprintf("      health_check_unhealthy_thr = %d", *alb.HealthCheckUnhealthyThr))
	}

	lines = append(lines, "    }", "")
	return lines, nil
}

func renderAutoscaling(service string, scaling *spec.Autoscaling) ([]string, error) {
	if scaling.MinCapacity == nil || scaling.MaxCapacity == nil {
		return nil, fmt.Errorf("service %q autoscaling block must include min_capacity and max_capacity", service)
	}

	var lines []string
	lines = append(lines, "    autoscaling = {")
	lines = append(lines, fmt.Sprintf("      min_capacity  = %d", *scaling.MinCapacity))
	lines = append(lines, fmt.Sprintf("      max_capacity  = %d", *scaling.MaxCapacity))
	if scaling.CPUTarget != nil {
		lines = append(lines, fmt.Sprintf("      cpu_target    = %d", *scaling.CPUTarget))
	}
	if scaling.MemoryTarget != nil {
		lines = append(lines, fmt.Sprintf("      memory_target = %d", *scaling.MemoryTarget))
	}
	lines = append(lines, "    }", "")
	return lines, nil
}

// quote wraps the value for HCL output. Backslashes are escaped before
// quotes so a value like `C:\path` never produces a stray escape sequence.
func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

func quoteList(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, quote(v))
	}
	return strings.Join(quoted, ", ")
}
