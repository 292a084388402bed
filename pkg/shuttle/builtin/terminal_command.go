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
	"time"

	"github.com/weftrun/weftcore/pkg/shuttle"
)

// DefaultCommandTimeout bounds how long a terminal command may run before
// it is killed, so a stuck process can't hang the agent loop indefinitely.
const DefaultCommandTimeout = 2 * time.Minute

// MaxCommandOutput caps how much combined stdout/stderr is returned inline.
const MaxCommandOutput = 200 * 1024

// TerminalCommandTool runs a shell command in the workspace and captures
// its combined output and exit code. Commands always run through "sh -c"
// so the caller can use pipes and redirection.
type TerminalCommandTool struct {
	baseDir string
	shell   string
}

func NewTerminalCommandTool(baseDir string) *TerminalCommandTool {
	if baseDir == "" {
		baseDir, _ = os.Getwd()
	}
	return &TerminalCommandTool{baseDir: baseDir, shell: "sh"}
}

func (t *TerminalCommandTool) Name() string    { return string(shuttle.ToolTypeTerminalCommand) }
func (t *TerminalCommandTool) Backend() string { return "" }
func (t *TerminalCommandTool) Description() string {
	return "Runs a shell command in the workspace directory and returns its combined stdout/stderr and exit code."
}

func (t *TerminalCommandTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema(
		"Parameters for running a terminal command",
		map[string]*shuttle.JSONSchema{
			"command":         shuttle.NewStringSchema("Shell command to execute."),
			"timeout_seconds": shuttle.NewNumberSchema("Maximum run time in seconds (default: 120)."),
			"working_dir":     shuttle.NewStringSchema("Directory to run the command in, relative to the workspace root (default: workspace root)."),
		},
		[]string{"command"},
	)
}

func (t *TerminalCommandTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	start := time.Now()
	command, _ := params["command"].(string)
	if command == "" {
		return errResult("invalid_input", "command is required", start), nil
	}

	timeout := DefaultCommandTimeout
	if v, ok := params["timeout_seconds"].(float64); ok && v > 0 {
		timeout = time.Duration(v) * time.Second
	}

	workDir := t.baseDir
	if wd, ok := params["working_dir"].(string); ok && wd != "" {
		resolved, err := resolvePath(t.baseDir, wd)
		if err != nil {
			return errResult("unsafe_path", err.Error(), start), nil
		}
		workDir = resolved
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, t.shell, "-c", command)
	cmd.Dir = workDir

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
	timedOut := runCtx.Err() == context.DeadlineExceeded
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else if !timedOut {
			return errResult("execution_failed", runErr.Error(), start), nil
		}
	}

	return &shuttle.Result{
		Success: exitCode == 0 && !timedOut,
		Data: map[string]interface{}{
			"command":   command,
			"output":    output,
			"exit_code": exitCode,
			"timed_out": timedOut,
			"truncated": truncated,
		},
		ExecutionTimeMs: duration.Milliseconds(),
	}, nil
}
