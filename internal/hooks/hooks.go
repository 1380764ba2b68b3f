// Package hooks runs user scripts at lifecycle points.
//
// Scripts are the executable files in {hooks_dir}/<point>/, run in name
// order with context passed through SENDPANEL_* environment variables.
// Hook failures are logged and never affect the caller.
package hooks

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/cristianoliveira/sendpanel/internal/config"
	"github.com/cristianoliveira/sendpanel/internal/logging"
	"github.com/cristianoliveira/sendpanel/internal/run"
)

// PointRunFinished fires when a run reaches Completed, Stopped or Failed.
const PointRunFinished = "run-finished"

const defaultMaxAsync = 10

// Options configures a Runner.
type Options struct {
	Dir      string
	Enabled  bool
	Async    bool
	Timeout  time.Duration
	MaxAsync int
	Logger   logging.Logger
}

// Runner executes hook scripts.
type Runner struct {
	opts    Options
	logger  logging.Logger
	pending sync.WaitGroup

	mu    sync.Mutex
	count int
}

// New creates a Runner.
func New(opts Options) *Runner {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxAsync <= 0 {
		opts.MaxAsync = defaultMaxAsync
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Runner{opts: opts, logger: opts.Logger.With("component", "hooks")}
}

// NewFromConfig creates a Runner from the hooks_* settings.
func NewFromConfig(logger logging.Logger) *Runner {
	return New(Options{
		Dir:     config.Get("hooks_dir", ""),
		Enabled: config.GetBool("hooks_enabled", true),
		Async:   config.GetBool("hooks_async", false),
		Timeout: config.GetDuration("hooks_timeout", 30*time.Second),
		Logger:  logger,
	})
}

// FinishedEnv is the environment passed to run-finished hooks.
func FinishedEnv(o run.Outcome) map[string]string {
	return map[string]string{
		"SENDPANEL_RUN_STATE":      string(o.State.Kind),
		"SENDPANEL_FILE":           o.Config.SourceFileID,
		"SENDPANEL_MESSAGES_SENT":  strconv.Itoa(o.Stats.MessagesSent),
		"SENDPANEL_TOTAL_CONTACTS": strconv.Itoa(o.Stats.TotalContacts),
		"SENDPANEL_REASON":         o.State.Reason,
	}
}

// RunFinished runs the run-finished hooks for o. It matches the
// run.Controller OnFinish signature.
func (r *Runner) RunFinished(o run.Outcome) {
	r.Run(PointRunFinished, FinishedEnv(o))
}

// Scripts lists the executable scripts for point in execution order.
func (r *Runner) Scripts(point string) []string {
	if r.opts.Dir == "" {
		return nil
	}
	dir := filepath.Join(r.opts.Dir, point)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var scripts []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		info, err := os.Stat(path)
		if err != nil || info.Mode()&0111 == 0 {
			continue
		}
		scripts = append(scripts, path)
	}
	sort.Strings(scripts)
	return scripts
}

// Run executes every script for point. In async mode it returns once the
// scripts are started; use Wait to block until they finish.
func (r *Runner) Run(point string, env map[string]string) {
	if !r.opts.Enabled {
		return
	}
	scripts := r.Scripts(point)
	if len(scripts) == 0 {
		return
	}

	environ := os.Environ()
	environ = append(environ,
		"SENDPANEL_HOOK_POINT="+point,
		"SENDPANEL_HOOK_TIMESTAMP="+time.Now().Format(time.RFC3339),
	)
	if exe, err := os.Executable(); err == nil {
		environ = append(environ, "SENDPANEL_BINARY="+exe)
	}
	for k, v := range env {
		environ = append(environ, fmt.Sprintf("%s=%s", k, v))
	}

	r.logger.Info("running hooks", "point", point, "count", len(scripts))
	for _, script := range scripts {
		if !r.opts.Async {
			r.exec(script, environ)
			continue
		}
		r.mu.Lock()
		if r.count >= r.opts.MaxAsync {
			r.mu.Unlock()
			r.logger.Warn("too many pending hooks, skipping", "script", script, "max", r.opts.MaxAsync)
			continue
		}
		r.count++
		r.pending.Add(1)
		r.mu.Unlock()

		go func(script string) {
			defer func() {
				r.mu.Lock()
				r.count--
				r.mu.Unlock()
				r.pending.Done()
			}()
			r.exec(script, environ)
		}(script)
	}
}

func (r *Runner) exec(script string, environ []string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.opts.Timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, script)
	cmd.Env = environ
	output, err := cmd.CombinedOutput()
	elapsed := time.Since(start)

	name := filepath.Base(script)
	switch {
	case ctx.Err() == context.DeadlineExceeded:
		r.logger.Warn("hook timed out", "script", name, "timeout", r.opts.Timeout.String())
	case err != nil:
		r.logger.Warn("hook failed", "script", name, "error", err.Error(), "output", string(output))
	default:
		r.logger.Info("hook completed", "script", name, "duration", elapsed.String())
	}
}

// Wait blocks until all async hooks have finished.
func (r *Runner) Wait() {
	r.pending.Wait()
}
