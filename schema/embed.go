package schema

import _ "embed"

// ServiceV1Schema contains the JSON schema for service spec documents.
//
//go:embed service.v1.json
var ServiceV1Schema []byte
