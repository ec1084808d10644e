package tfvars

import (
	"fmt"
	"regexp"
	"sort"
)

var (
	blockKeyPattern = regexp.MustCompile(`(?m)^\s*"([^"]+)"\s*=\s*\{`)
	imageTagPattern = regexp.MustCompile(`(image_tag\s*=\s*)"([^"]*)"`)
)

// TagChange records one applied image tag update.
type TagChange struct {
	Service string
	From    string
	To      string
}

// PatchResult describes the outcome of an image tag patch pass. Content is
// the full document, identical to the input outside the patched spans.
type PatchResult struct {
	Content  string
	Changes  []TagChange
	Warnings []string
}

// PatchImageTags updates the image_tag assignment inside each named service
// block, leaving every other byte untouched. Blocks are processed in reverse
// document order so earlier replacements never shift the offsets of blocks
// still to be patched. A tag that already matches is left alone; unknown
// names and blocks without an image_tag assignment produce warnings, not
// errors.
func PatchImageTags(content string, tags map[string]string) PatchResult {
	result := PatchResult{Content: content}

	matches := blockKeyPattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		result.Warnings = append(result.Warnings, "no service blocks found in document")
		return result
	}

	seen := make(map[string]bool, len(matches))
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		key := content[m[2]:m[3]]
		seen[key] = true

		newTag, ok := tags[key]
		if !ok {
			continue
		}

		start := m[1]
		var end int
		if i+1 < len(matches) {
			end = matches[i+1][0]
		} else {
			end = scanBlockEnd(result.Content, start)
		}

		span := result.Content[start:end]
		loc := imageTagPattern.FindStringSubmatchIndex(span)
		if loc == nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("service %q has no image_tag assignment", key))
			continue
		}

		oldTag := span[loc[4]:loc[5]]
		if oldTag == newTag {
			continue
		}

		result.Content = result.Content[:start+loc[4]] + newTag + result.Content[start+loc[5]:]
		result.Changes = append(result.Changes, TagChange{Service: key, From: oldTag, To: newTag})
	}

	requested := make([]string, 0, len(tags))
	for name := range tags {
		requested = append(requested, name)
	}
	sort.Strings(requested)
	for _, name := range requested {
		if !seen[name] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("service %q not found in document", name))
		}
	}

	// Changes were collected back to front; report them in document order.
	for i, j := 0, len(result.Changes)-1; i < j; i, j = i+1, j-1 {
		result.Changes[i], result.Changes[j] = result.Changes[j], result.Changes[i]
	}
	return result
}

// scanBlockEnd walks forward from just past an opening brace and returns the
// offset one past the brace that closes it.
func scanBlockEnd(content string, start int) int {
	depth := 1
	for i := start; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(content)
}
