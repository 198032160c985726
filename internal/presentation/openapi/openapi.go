// Package openapi REST APIのOpenAPI仕様
package openapi

import _ "embed"

// Spec OpenAPI仕様（YAML）
//
//go:embed openapi.yaml
var Spec []byte
