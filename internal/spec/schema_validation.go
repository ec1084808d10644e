package spec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	svcschema "github.com/tfbuild/svcmap/schema"
)

var (
	schemaOnce    sync.Once
	serviceSchema *jsonschema.Schema
	schemaErr     error
)

func loadServiceSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("service.v1.json", bytes.NewReader(svcschema.ServiceV1Schema)); err != nil {
			schemaErr = fmt.Errorf("add service schema resource: %w", err)
			return
		}
		serviceSchema, schemaErr = compiler.Compile("service.v1.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile service schema: %w", schemaErr)
		}
	})
	if schemaErr != nil {
		return nil, schemaErr
	}
	return serviceSchema, nil
}

// validateAgainstSchema checks a decoded spec document against the embedded
// service schema. Violations are reported one per line with the offending
// file and the field path, so authors never have to decode raw JSON pointers.
func validateAgainstSchema(path string, doc map[string]any) error {
	schema, err := loadServiceSchema()
	if err != nil {
		return fmt.Errorf("load service schema: %w", err)
	}

	normalized, err := normalizeForSchema(doc)
	if err != nil {
		return fmt.Errorf("prepare spec %s for schema validation: %w", path, err)
	}

	if err := schema.Validate(normalized); err != nil {
		var vErr *jsonschema.ValidationError
		if errors.As(err, &vErr) {
			return fmt.Errorf("service spec %s is invalid:\n%s", path, strings.Join(schemaViolations(vErr), "\n"))
		}
		return fmt.Errorf("service spec %s is invalid: %w", path, err)
	}
	return nil
}

// normalizeForSchema round-trips the YAML-decoded document through JSON so
// numbers survive as json.Number, which is what the schema library compares
// against integer bounds.
func normalizeForSchema(doc map[string]any) (any, error) {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(doc); err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(bytes.NewReader(buf.Bytes()))
	decoder.UseNumber()
	var out any
	if err := decoder.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// schemaViolations flattens a validation error tree into one line per leaf
// violation. Aggregating nodes only restate which subschema failed, so they
// contribute nothing a spec author can act on and are skipped.
func schemaViolations(vErr *jsonschema.ValidationError) []string {
	var lines []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			lines = append(lines, fmt.Sprintf("  - %s: %s", fieldPath(e.InstanceLocation), e.Message))
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(vErr)
	return lines
}

// fieldPath converts a JSON pointer into the dotted field notation spec
// authors write, with array indices in brackets (env entries, path_patterns).
func fieldPath(pointer string) string {
	trimmed := strings.TrimPrefix(pointer, "/")
	if trimmed == "" {
		return "document"
	}

	var b strings.Builder
	for _, segment := range strings.Split(trimmed, "/") {
		decoded := strings.ReplaceAll(strings.ReplaceAll(segment, "~1", "/"), "~0", "~")
		if _, err := strconv.Atoi(decoded); err == nil {
			fmt.Fprintf(&b, "[%s]", decoded)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(decoded)
	}
	if b.Len() == 0 {
		return "document"
	}
	return b.String()
}
