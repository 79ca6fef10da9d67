package revision

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// DefaultAbbrev matches git's minimum abbreviated hash length.
const DefaultAbbrev = 7

// GoGit reads metadata in-process without a git binary.
type GoGit struct {
	// Dir is any path inside the work tree; empty means ".".
	Dir string
	// Abbrev is the hash length; zero means DefaultAbbrev.
	Abbrev int
	// Timeout bounds the whole read; zero means DefaultTimeout.
	Timeout time.Duration

	open func(dir string) (*git.Repository, error)
}

func (g GoGit) Backend() string { return BackendGoGit }

// Read bounds the repository walk by Timeout. The walk runs on its own
// goroutine and is abandoned, not interrupted, when the deadline passes.
func (g GoGit) Read(ctx context.Context) (Metadata, error) {
	if err := ctx.Err(); err != nil {
		return Metadata{}, err
	}
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		md  Metadata
		err error
	}
	done := make(chan result, 1)
	go func() {
		md, err := g.read()
		done <- result{md, err}
	}()

	select {
	case r := <-done:
		return r.md, r.err
	case <-rctx.Done():
		if errors.Is(rctx.Err(), context.DeadlineExceeded) {
			return Metadata{}, fmt.Errorf("go-git read timed out after %s: %w", timeout, rctx.Err())
		}
		return Metadata{}, rctx.Err()
	}
}

func (g GoGit) read() (Metadata, error) {
	dir := g.Dir
	if dir == "" {
		dir = "."
	}
	open := g.open
	if open == nil {
		open = plainOpen
	}

	repo, err := open(dir)
	if err != nil {
		return Metadata{}, fmt.Errorf("open repository %s: %w", dir, err)
	}
	head, err := repo.Head()
	if err != nil {
		return Metadata{}, fmt.Errorf("resolve HEAD: %w", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return Metadata{}, fmt.Errorf("read HEAD commit: %w", err)
	}

	abbrev := g.Abbrev
	full := head.Hash().String()
	if abbrev <= 0 || abbrev > len(full) {
		abbrev = DefaultAbbrev
	}
	// Committer date in the commit's own zone, like git log --date=short.
	return Metadata{
		Hash: full[:abbrev],
		Date: commit.Committer.When.Format(time.DateOnly),
	}, nil
}

func plainOpen(dir string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
}

// GitDir returns the absolute .git directory of the repository containing dir.
func GitDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repository %s: %w", abs, err)
	}
	st, ok := repo.Storer.(*filesystem.Storage)
	if !ok {
		return "", fmt.Errorf("repository %s is not on disk", abs)
	}
	return st.Filesystem().Root(), nil
}
