package tfvars

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/tfbuild/svcmap/internal/spec"
)

// ServicesByApplication parses a generated document and returns the names of
// the services belonging to the given application, in document order. The
// literal "all" matches every service; blocks without an application
// attribute are treated as belonging to the legacy application.
func ServicesByApplication(src []byte, filename, application string) ([]string, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %s", filename, diags.Error())
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected body type", filename)
	}
	attr, ok := body.Attributes["services"]
	if !ok {
		return nil, fmt.Errorf("%s: no services attribute found", filename)
	}
	obj, ok := attr.Expr.(*hclsyntax.ObjectConsExpr)
	if !ok {
		return nil, fmt.Errorf("%s: services attribute is not a map", filename)
	}

	names := make([]string, 0, len(obj.Items))
	for _, item := range obj.Items {
		name, err := objectKeyString(item.KeyExpr)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid service key: %w", filename, err)
		}
		app, hasApp := serviceApplication(item.ValueExpr)

		switch {
		case application == "all":
		case hasApp && app == application:
		case !hasApp && application == spec.LegacyApplication:
		default:
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func objectKeyString(expr hclsyntax.Expression) (string, error) {
	value, diags := expr.Value(nil)
	if diags.HasErrors() {
		return "", fmt.Errorf("%s", diags.Error())
	}
	if value.Type() != cty.String {
		return "", fmt.Errorf("expected string key, got %s", value.Type().FriendlyName())
	}
	return value.AsString(), nil
}

// serviceApplication digs the application attribute out of a service block
// expression. Blocks that are not objects or carry no string application are
// reported as having none.
func serviceApplication(expr hclsyntax.Expression) (string, bool) {
	obj, ok := expr.(*hclsyntax.ObjectConsExpr)
	if !ok {
		return "", false
	}
	for _, item := range obj.Items {
		key, err := objectKeyString(item.KeyExpr)
		if err != nil || key != "application" {
			continue
		}
		value, diags := item.ValueExpr.Value(nil)
		if diags.HasErrors() || value.Type() != cty.String {
			return "", false
		}
		return value.AsString(), true
	}
	return "", false
}
