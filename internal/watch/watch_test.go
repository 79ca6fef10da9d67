package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testDebounce = 100 * time.Millisecond

// run starts w and returns a channel receiving one value per rebuild plus a
// stop function that waits for Run to return.
func run(t *testing.T, w *Watcher) (<-chan struct{}, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	rebuilds := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) { rebuilds <- struct{}{} })
	}()

	select {
	case <-w.Ready():
	case err := <-done:
		cancel()
		t.Fatalf("watcher exited early: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("watcher not ready")
	}
	return rebuilds, func() {
		cancel()
		require.NoError(t, <-done)
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func expectRebuilds(t *testing.T, ch <-chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-time.After(5 * time.Second):
			t.Fatalf("expected rebuild %d of %d", i+1, n)
		}
	}
	select {
	case <-ch:
		t.Fatal("unexpected extra rebuild")
	case <-time.After(3 * testDebounce):
	}
}

func TestRun_DebouncesMarkdownChanges(t *testing.T) {
	defer goleak.VerifyNone(t)
	dir := t.TempDir()
	write(t, filepath.Join(dir, "index.md"), "# Home\n")

	w, err := New(dir, WithDebounce(testDebounce))
	require.NoError(t, err)
	rebuilds, stop := run(t, w)
	defer stop()

	for i := 0; i < 3; i++ {
		write(t, filepath.Join(dir, "note.md"), "# Note\n")
	}
	expectRebuilds(t, rebuilds, 1)
}

func TestRun_IgnoresIrrelevantChanges(t *testing.T) {
	defer goleak.VerifyNone(t)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules"), 0o750))
	output := filepath.Join(dir, "site.md")

	w, err := New(dir, WithDebounce(testDebounce), WithIgnore(output))
	require.NoError(t, err)
	rebuilds, stop := run(t, w)
	defer stop()

	write(t, filepath.Join(dir, "notes.txt"), "plain")
	write(t, filepath.Join(dir, ".vitepress", "config.md"), "# hidden")
	write(t, filepath.Join(dir, "node_modules", "pkg.md"), "# vendored")
	write(t, output, "{}")
	expectRebuilds(t, rebuilds, 0)
}

func TestRun_WatchesNewDirectories(t *testing.T) {
	defer goleak.VerifyNone(t)
	dir := t.TempDir()

	w, err := New(dir, WithDebounce(testDebounce))
	require.NoError(t, err)
	rebuilds, stop := run(t, w)
	defer stop()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "guides"), 0o750))
	expectRebuilds(t, rebuilds, 1)

	write(t, filepath.Join(dir, "guides", "setup.md"), "# Setup\n")
	expectRebuilds(t, rebuilds, 1)
}

func TestRun_GitHeadChange(t *testing.T) {
	defer goleak.VerifyNone(t)
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	write(t, filepath.Join(dir, "index.md"), "# Home\n")
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("index.md")
	require.NoError(t, err)
	sig := &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	_, err = wt.Commit("Initial commit", &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)

	w, err := New(dir, WithDebounce(testDebounce))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".git"), w.gitDir)

	rebuilds, stop := run(t, w)
	defer stop()

	_, err = wt.Commit("Second commit", &git.CommitOptions{Author: sig, Committer: sig, AllowEmptyCommits: true})
	require.NoError(t, err)
	expectRebuilds(t, rebuilds, 1)

	require.NoError(t, repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("other"))))
	expectRebuilds(t, rebuilds, 1)
}

func TestGitRelevant(t *testing.T) {
	gitDir := filepath.Join("/repo", ".git")
	tests := []struct {
		name string
		want bool
	}{
		{"HEAD", true},
		{"HEAD.lock", false},
		{"packed-refs", true},
		{"refs/heads/main", true},
		{"refs/heads/main.lock", false},
		{"index", false},
		{"objects/ab/cdef", false},
		{"FETCH_HEAD", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gitRelevant(gitDir, filepath.Join(gitDir, filepath.FromSlash(tt.name))))
		})
	}
}

func TestWithin(t *testing.T) {
	assert.True(t, within("/repo/.git", "/repo/.git/HEAD"))
	assert.False(t, within("/repo/.git", "/repo/docs/a.md"))
	assert.False(t, within("/repo/.git", "/repo/.github/x.md"))
}
