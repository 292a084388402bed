// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package shuttle

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateInput validates tool call parameters against a tool's declared
// JSON Schema before dispatch. A nil or object-with-no-type schema skips
// validation.
func ValidateInput(schema *JSONSchema, params map[string]interface{}) error {
	if schema == nil || schema.Type == "" {
		return nil
	}

	schemaBytes, err := schema.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)
	paramsLoader := gojsonschema.NewGoLoader(params)

	result, err := gojsonschema.Validate(schemaLoader, paramsLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return &Error{
			Code:    "invalid_input",
			Message: "tool input failed schema validation",
			Details: map[string]interface{}{"errors": msgs},
		}
	}

	return nil
}

// Error implements the error interface so *Error satisfies errors.As.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
