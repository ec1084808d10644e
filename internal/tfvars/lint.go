package tfvars

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// CheckSyntax parses src with the HCL grammar and reports any diagnostics.
// Generation runs it on the rendered document before anything touches disk,
// so a renderer regression can never ship an unparseable file.
func CheckSyntax(filename string, src []byte) error {
	_, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return fmt.Errorf("rendered document failed syntax check: %s", diags.Error())
	}
	return nil
}
