// Package swagger serves the OpenAPI document for the tally HTTP API.
package swagger

import _ "embed"

// OpenAPI contains the embedded OpenAPI YAML document.
//
//go:embed openapi.yaml
var OpenAPI []byte
