package spec

import (
	"fmt"
	"strings"
)

// routingRule is the normalized (host, path) pair a service claims on a load
// balancer. An empty host means the rule matches any host.
type routingRule struct {
	host string
	path string
}

// RoutingClaim identifies one service's claim on a routing rule, keeping the
// patterns as authored for display.
type RoutingClaim struct {
	Service     string
	Application string
	Path        string
	Host        string
}

// RoutingConflict reports a routing rule claimed by more than one service on
// the same load balancer.
type RoutingConflict struct {
	ALBID  string
	Host   string
	Path   string
	Claims []RoutingClaim
}

// ConflictError carries every routing conflict found across the whole input
// set, grouped by load balancer.
type ConflictError struct {
	Conflicts []RoutingConflict
}

func (e *ConflictError) Error() string {
	var b strings.Builder
	b.WriteString("ALB routing conflicts detected:\n")
	lastALB := ""
	for _, c := range e.Conflicts {
		if c.ALBID != lastALB {
			fmt.Fprintf(&b, "ALB %q:\n", c.ALBID)
			lastALB = c.ALBID
		}
		names := make([]string, 0, len(c.Claims))
		for _, claim := range c.Claims {
			names = append(names, claim.Application+"::"+claim.Service)
		}
		if c.Host != "" {
			fmt.Fprintf(&b, "  host pattern %q with path pattern %q is claimed by multiple services:\n", c.Host, c.Path)
		} else {
			fmt.Fprintf(&b, "  path pattern %q is claimed by multiple services:\n", c.Path)
		}
		fmt.Fprintf(&b, "    - %s\n", strings.Join(names, ", "))
	}
	b.WriteString("\nEach service on the same ALB must claim a unique host and path pattern combination.\n")
	b.WriteString("Update the service definitions to use different path patterns or host patterns.")
	return b.String()
}

// ValidateRoutingConflicts checks that no two services would register
// indistinguishable routing rules on the same load balancer. Every conflict
// across every load balancer is collected before failing, so one run surfaces
// the complete picture.
func ValidateRoutingConflicts(services []*Service) error {
	groups := map[string][]*Service{}
	var order []string
	for _, svc := range services {
		if svc == nil || svc.ALB == nil || svc.ALB.ALBID == "" {
			continue
		}
		id := svc.ALB.ALBID
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], svc)
	}

	var conflicts []RoutingConflict
	for _, albID := range order {
		group := groups[albID]
		if len(group) < 2 {
			continue
		}
		conflicts = append(conflicts, albConflicts(albID, group)...)
	}
	if len(conflicts) == 0 {
		return nil
	}
	return &ConflictError{Conflicts: conflicts}
}

// albConflicts computes the claimed routing rules for one load balancer and
// returns the rules claimed more than once, in first-claim order.
func albConflicts(albID string, group []*Service) []RoutingConflict {
	claims := map[routingRule][]RoutingClaim{}
	var ruleOrder []routingRule

	for _, svc := range group {
		alb := svc.ALB
		// No path patterns means the service attaches to the ALB but
		// claims no route, so it cannot collide.
		if len(alb.PathPatterns) == 0 {
			continue
		}
		hosts := normalizeHosts(alb.HostPatterns)
		for _, path := range alb.PathPatterns {
			normalized := normalizePath(path)
			for _, host := range hosts {
				rule := routingRule{host: host, path: normalized}
				if _, ok := claims[rule]; !ok {
					ruleOrder = append(ruleOrder, rule)
				}
				claims[rule] = append(claims[rule], RoutingClaim{
					Service:     svc.Name,
					Application: svc.Application,
					Path:        path,
					Host:        host,
				})
			}
		}
	}

	var conflicts []RoutingConflict
	for _, rule := range ruleOrder {
		if len(claims[rule]) < 2 {
			continue
		}
		conflicts = append(conflicts, RoutingConflict{
			ALBID:  albID,
			Host:   rule.host,
			Path:   rule.path,
			Claims: claims[rule],
		})
	}
	return conflicts
}

// normalizeHosts lowercases and trims host patterns. Absence of host patterns
// is represented as a single empty sentinel so path-only rules compare equal.
func normalizeHosts(hosts []string) []string {
	if len(hosts) == 0 {
		return []string{""}
	}
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		out = append(out, strings.ToLower(strings.TrimSpace(h)))
	}
	return out
}

// normalizePath strips trailing slashes so "/api/" and "/api" compare equal;
// a bare "/" (or empty pattern) normalizes to "/".
func normalizePath(path string) string {
	normalized := strings.TrimRight(path, "/")
	if normalized == "" {
		return "/"
	}
	return normalized
}
