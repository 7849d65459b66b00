// Package osint shells out to the supported account enumeration tools and
// normalizes whatever happens, including timeouts and missing binaries, into
// plain result values.
package osint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/maildive/maildive/internal/log"
	"github.com/maildive/maildive/internal/model"
)

// Adapter invokes one external tool. The entry point is resolved once at
// construction time and never re-checked, availability is decided by Probe
// and cached by the caller.
type Adapter struct {
	spec  Spec
	argv0 string   // resolved binary or interpreter, empty when nothing was found
	base  []string // script path prepended when running through an interpreter
}

// New resolves the entry point for the tool described by spec. Script
// candidates under root win over a plain PATH lookup. A tool which cannot be
// resolved still yields an Adapter, its Probe reports unavailable and Run
// fails fast.
func New(spec Spec, root string) *Adapter {
	a := &Adapter{spec: spec}
	a.argv0, a.base = resolve(spec, root)
	return a
}

func resolve(spec Spec, root string) (string, []string) {
	for _, rel := range spec.Candidates {
		script := filepath.Join(root, rel)
		info, err := os.Stat(script)
		if err != nil || info.IsDir() {
			continue
		}
		interp, err := exec.LookPath(spec.Interpreter)
		if err != nil {
			// no interpreter means no candidate can run
			break
		}
		return interp, []string{script}
	}
	if spec.Command == "" {
		return "", nil
	}
	path, err := exec.LookPath(spec.Command)
	if err != nil {
		return "", nil
	}
	return path, nil
}

func (a *Adapter) Kind() model.ToolKind {
	return a.spec.Kind
}

// Timeout returns the per invocation budget.
func (a *Adapter) Timeout() time.Duration {
	return a.spec.Timeout
}

// LocalPart tells whether the tool wants the part before @ instead of the
// full address.
func (a *Adapter) LocalPart() bool {
	return a.spec.LocalPart
}

// Probe executes the tool once with its probe arguments. Any failure, from a
// missing entry point to a non-zero exit, means unavailable. Probe never
// returns an error.
func (a *Adapter) Probe(ctx context.Context) model.ToolAvailability {
	avail := model.ToolAvailability{Tool: a.spec.Kind}
	if a.argv0 == "" {
		slog.DebugContext(ctx, "tool not installed", "tool", a.spec.Kind.String())
		return avail
	}

	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	args := append(append([]string(nil), a.base...), a.spec.ProbeArgs...)
	cmd := exec.CommandContext(ctx, a.argv0, args...)
	cmd.WaitDelay = time.Second
	err := cmd.Run()
	avail.Available = err == nil
	slog.DebugContext(ctx, "tool probed",
		"tool", a.spec.Kind.String(),
		"argv0", a.argv0,
		"available", avail.Available)
	return avail
}

// Run executes one job and blocks until the tool finishes or its budget runs
// out. All outcomes are encoded in the returned value, Run never fails.
func (a *Adapter) Run(ctx context.Context, job model.ScanJob) model.ToolRunResult {
	res := model.ToolRunResult{
		ScanID: job.ScanID,
		Tool:   a.spec.Kind,
		Query:  job.Query,
	}
	if a.argv0 == "" {
		res.Stderr = fmt.Sprintf("%s: no executable found", a.spec.Kind)
		res.ExitCode = -1
		return res
	}

	ctx = log.ContextAttrs(ctx,
		slog.String("tool", a.spec.Kind.String()),
		slog.String("scan_id", job.ScanID))
	ctx, cancel := context.WithTimeout(ctx, a.spec.Timeout)
	defer cancel()

	args := append(append([]string(nil), a.base...), job.Query)
	args = append(args, a.spec.Args...)
	cmd := exec.CommandContext(ctx, a.argv0, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// give up on grandchildren holding the output pipes open after a kill
	cmd.WaitDelay = 5 * time.Second

	started := time.Now()
	err := cmd.Run()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	switch {
	case err == nil:
		res.Succeeded = true
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.ExitCode = -1
		res.Stderr = appendLine(res.Stderr, fmt.Sprintf("timed out after %s", a.spec.Timeout))
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
			res.Stderr = appendLine(res.Stderr, err.Error())
		}
	}
	slog.DebugContext(ctx, "tool finished",
		"succeeded", res.Succeeded,
		"exit_code", res.ExitCode,
		"elapsed", time.Since(started).String())
	return res
}

func appendLine(s, line string) string {
	if s == "" {
		return line
	}
	return s + "\n" + line
}
