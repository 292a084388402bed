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
package builtin

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/weftrun/weftcore/pkg/shuttle"
)

// DefaultTestTimeout bounds how long a test invocation may run.
const DefaultTestTimeout = 5 * time.Minute

// TestRunnerTool runs a project's test suite (or a narrowed subset) and
// reports pass/fail with captured output. Unlike terminal_command, it
// dispatches to a known test command per ecosystem rather than taking an
// arbitrary shell string, so the agent can't accidentally run destructive
// commands under the guise of "running tests".
type TestRunnerTool struct {
	baseDir string
}

func NewTestRunnerTool(baseDir string) *TestRunnerTool {
	if baseDir == "" {
		baseDir, _ = os.Getwd()
	}
	return &TestRunnerTool{baseDir: baseDir}
}

func (t *TestRunnerTool) Name() string    { return string(shuttle.ToolTypeTestRunner) }
func (t *TestRunnerTool) Backend() string { return "" }
func (t *TestRunnerTool) Description() string {
	return `Runs the test suite for the workspace using a known test command for the given ecosystem (go, npm, pytest, cargo).
Returns pass/fail, duration, and captured output. Use target to narrow to a package or file.`
}

func (t *TestRunnerTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema(
		"Parameters for running the test suite",
		map[string]*shuttle.JSONSchema{
			"ecosystem": shuttle.NewStringSchema("Which test runner to use.").
				WithEnum("go", "npm", "pytest", "cargo"),
			"target":          shuttle.NewStringSchema("Package, path, or test name to narrow the run to (optional; runs everything if omitted)."),
			"timeout_seconds": shuttle.NewNumberSchema("Maximum run time in seconds (default: 300)."),
		},
		[]string{"ecosystem"},
	)
}

func testCommand(ecosystem, target string) ([]string, error) {
	switch ecosystem {
	case "go":
		pkg := "./..."
		if target != "" {
			pkg = target
		}
		return []string{"go", "test", pkg}, nil
	case "npm":
		args := []string{"npm", "test"}
		if target != "" {
			args = append(args, "--", target)
		}
		return args, nil
	case "pytest":
		args := []string{"pytest"}
		if target != "" {
			args = append(args, target)
		}
		return args, nil
	case "cargo":
		args := []string{"cargo", "test"}
		if target != "" {
			args = append(args, target)
		}
		return args, nil
	default:
		return nil, errUnsupportedEcosystem(ecosystem)
	}
}

type unsupportedEcosystemError string

func (e unsupportedEcosystemError) Error() string {
	return "unsupported ecosystem: " + string(e)
}

func errUnsupportedEcosystem(ecosystem string) error {
	return unsupportedEcosystemError(ecosystem)
}

func (t *TestRunnerTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	start := time.Now()
	ecosystem, _ := params["ecosystem"].(string)
	target, _ := params["target"].(string)

	args, err := testCommand(ecosystem, target)
	if err != nil {
		return errResult("invalid_input", err.Error(), start), nil
	}

	timeout := DefaultTestTimeout
	if v, ok := params["timeout_seconds"].(float64); ok && v > 0 {
		timeout = time.Duration(v) * time.Second
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
	cmd.Dir = t.baseDir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	runErr := cmd.Run()
	duration := time.Since(start)

	output := out.String()
	truncated := false
	if len(output) > MaxCommandOutput {
		output = output[:MaxCommandOutput]
		truncated = true
	}

	exitCode := 0
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return errResult("execution_failed", runErr.Error(), start), nil
		}
	}

	return &shuttle.Result{
		Success: exitCode == 0,
		Data: map[string]interface{}{
			"ecosystem": ecosystem,
			"command":   strings.Join(args, " "),
			"output":    output,
			"exit_code": exitCode,
			"truncated": truncated,
			"passed":    exitCode == 0,
		},
		ExecutionTimeMs: duration.Milliseconds(),
	}, nil
}
