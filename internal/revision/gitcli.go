package revision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	BackendGit   = "git"
	BackendGoGit = "gogit"

	// DefaultTimeout bounds each external query.
	DefaultTimeout = 5 * time.Second
)

var (
	shortHashArgs  = []string{"rev-parse", "--short", "HEAD"}
	commitDateArgs = []string{"log", "-1", "--format=%cd", "--date=short"}
)

// GitCLI reads metadata by invoking the git command-line tool.
type GitCLI struct {
	// Dir is the working directory to query; empty means the process cwd.
	Dir string
	// Binary overrides the git executable; empty means "git" from PATH.
	Binary string
	// Timeout bounds each query; zero means DefaultTimeout.
	Timeout time.Duration
	// Parallel runs both queries concurrently.
	Parallel bool
}

func (g GitCLI) Backend() string { return BackendGit }

func (g GitCLI) Read(ctx context.Context) (Metadata, error) {
	var md Metadata
	if !g.Parallel {
		hash, err := g.query(ctx, shortHashArgs...)
		if err != nil {
			return Metadata{}, err
		}
		date, err := g.query(ctx, commitDateArgs...)
		if err != nil {
			return Metadata{}, err
		}
		return Metadata{Hash: hash, Date: date}, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		hash, err := g.query(egCtx, shortHashArgs...)
		md.Hash = hash
		return err
	})
	eg.Go(func() error {
		date, err := g.query(egCtx, commitDateArgs...)
		md.Date = date
		return err
	})
	if err := eg.Wait(); err != nil {
		return Metadata{}, err
	}
	return md, nil
}

func (g GitCLI) query(ctx context.Context, args ...string) (string, error) {
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	qctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	bin := g.Binary
	if bin == "" {
		bin = "git"
	}
	full := args
	if g.Dir != "" {
		full = append([]string{"-C", g.Dir}, args...)
	}

	// #nosec G204 -- fixed git subcommands, binary from trusted config
	cmd := exec.CommandContext(qctx, bin, full...)
	// Optional locks off: these queries must never touch the index.
	cmd.Env = append(os.Environ(), "GIT_OPTIONAL_LOCKS=0", "GIT_TERMINAL_PROMPT=0", "LC_ALL=C")
	cmd.WaitDelay = time.Second

	out, err := cmd.Output()
	if err != nil {
		if errors.Is(qctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("git %s timed out after %s: %w", args[0], timeout, qctx.Err())
		}
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return "", fmt.Errorf("git %s failed: %w: %s", args[0], err, strings.TrimSpace(string(ee.Stderr)))
		}
		return "", fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return strings.TrimSpace(string(out)), nil
}
