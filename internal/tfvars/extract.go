package tfvars

import (
	"regexp"
	"strings"
)

var blockHeaderPattern = regexp.MustCompile(`(?m)^\s+"([^"]+)"\s*=\s*\{`)

// ExtractServiceBlocks pulls the complete, brace-balanced blocks for the
// requested service names out of a generated document. Blocks are returned in
// the order they appear in the document, each line re-indented by two spaces
// so the result nests inside an enclosing map. The count reports how many of
// the requested names were found.
func ExtractServiceBlocks(content string, names []string) (string, int) {
	want := make(map[string]bool, len(names))
	for _, name := range names {
		want[name] = true
	}

	var b strings.Builder
	count := 0
	for _, m := range blockHeaderPattern.FindAllStringSubmatchIndex(content, -1) {
		key := content[m[2]:m[3]]
		if !want[key] {
			continue
		}
		end := scanBlockEnd(content, m[1])
		b.WriteString(reindent(content[m[0]:end]))
		count++
	}
	return b.String(), count
}

// reindent shifts every non-blank line right by two spaces and normalizes
// blank lines to empty ones.
func reindent(block string) string {
	lines := strings.Split(block, "\n")
	var b strings.Builder
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			b.WriteByte('\n')
			continue
		}
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
