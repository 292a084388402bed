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
	"context"
	"fmt"
	"time"
	"unicode"
)

// Executor executes tools looked up from a Registry, applying permission
// checks, input-schema validation, and parameter normalization uniformly so
// individual Tool implementations don't repeat this bookkeeping.
type Executor struct {
	registry          *Registry
	permissionChecker *PermissionChecker
}

// NewExecutor creates a new tool executor over registry.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// SetPermissionChecker configures permission checking for tool execution.
func (e *Executor) SetPermissionChecker(checker *PermissionChecker) {
	e.permissionChecker = checker
}

// Execute executes a tool by name with the given parameters.
func (e *Executor) Execute(ctx context.Context, toolName string, params map[string]interface{}) (*Result, error) {
	tool, ok := e.registry.Get(toolName)
	if !ok {
		return nil, fmt.Errorf("tool not found: %s", toolName)
	}
	return e.ExecuteWithTool(ctx, tool, params)
}

// ExecuteWithTool executes a specific tool instance, bypassing registry
// lookup. Useful when the caller already resolved the tool (e.g. the Agent
// Loop dispatching a parsed tool-use block).
func (e *Executor) ExecuteWithTool(ctx context.Context, tool Tool, params map[string]interface{}) (*Result, error) {
	toolName := tool.Name()

	if e.permissionChecker != nil {
		if err := e.permissionChecker.CheckPermission(ctx, toolName, params); err != nil {
			return &Result{
				Success: false,
				Error:   &Error{Code: "permission_denied", Message: err.Error(), Retryable: false},
			}, nil
		}
	}

	normalized := normalizeParametersToSchema(tool, params)

	if err := ValidateInput(tool.InputSchema(), normalized); err != nil {
		return &Result{
			Success: false,
			Error:   &Error{Code: "invalid_input", Message: err.Error(), Retryable: false},
		}, nil
	}

	start := time.Now()
	result, err := tool.Execute(ctx, normalized)
	duration := time.Since(start)

	if err != nil {
		return &Result{
			Success:         false,
			Error:           &Error{Code: "execution_failed", Message: err.Error(), Retryable: false},
			ExecutionTimeMs: duration.Milliseconds(),
		}, nil
	}

	if result == nil {
		result = &Result{Success: true}
	}
	result.ExecutionTimeMs = duration.Milliseconds()
	return result, nil
}

// ListAvailableTools returns all tools available in the executor's registry.
func (e *Executor) ListAvailableTools() []Tool {
	return e.registry.ListTools()
}

// normalizeParametersToSchema maps LLM-supplied parameter names onto the
// tool's declared schema keys regardless of casing convention (snake_case
// vs camelCase), since models are inconsistent about which they emit.
func normalizeParametersToSchema(tool Tool, params map[string]interface{}) map[string]interface{} {
	if len(params) == 0 {
		return params
	}

	schema := tool.InputSchema()
	if schema == nil || schema.Properties == nil {
		return params
	}

	schemaKeys := make(map[string]string, len(schema.Properties))
	for key := range schema.Properties {
		schemaKeys[toLowerUnderscore(key)] = key
	}

	normalized := make(map[string]interface{}, len(params))
	for key, value := range params {
		if schemaKey, exists := schemaKeys[toLowerUnderscore(key)]; exists {
			normalized[schemaKey] = value
		} else {
			normalized[key] = value
		}
	}
	return normalized
}

// toLowerUnderscore converts any naming convention to lowercase with
// underscores so camelCase, PascalCase, and snake_case all compare equal.
func toLowerUnderscore(s string) string {
	if s == "" {
		return ""
	}
	var result []rune
	for i, r := range s {
		lower := unicode.ToLower(r)
		if i > 0 && unicode.IsUpper(r) {
			result = append(result, '_')
		}
		result = append(result, lower)
	}
	return string(result)
}
