package revision

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kberrors "git.home.luguber.info/inful/kbsite/internal/errors"
)

type stubReader struct {
	md    Metadata
	err   error
	panic bool
}

func (s stubReader) Backend() string { return "stub" }

func (s stubReader) Read(context.Context) (Metadata, error) {
	if s.panic {
		panic("boom")
	}
	return s.md, s.err
}

func TestResolve_Success(t *testing.T) {
	res := ReadRevisionMetadata(context.Background(), stubReader{md: Metadata{Hash: " abc1234\n", Date: "2024-03-01\n"}})

	assert.False(t, res.Degraded)
	assert.NoError(t, res.Err)
	assert.Equal(t, Metadata{Hash: "abc1234", Date: "2024-03-01"}, res.Metadata)
}

func TestResolve_FallbackIsAllOrNothing(t *testing.T) {
	tests := []struct {
		name   string
		reader Reader
	}{
		{"reader error", stubReader{err: errors.New("not a git repository")}},
		{"hash only", stubReader{md: Metadata{Hash: "abc1234"}}},
		{"date only", stubReader{md: Metadata{Date: "2024-03-01"}}},
		{"malformed hash", stubReader{md: Metadata{Hash: "HEAD", Date: "2024-03-01"}}},
		{"malformed date", stubReader{md: Metadata{Hash: "abc1234", Date: "Fri Mar 1 2024"}}},
		{"panic", stubReader{panic: true}},
		{"nil reader", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ReadRevisionMetadata(context.Background(), tt.reader)

			assert.True(t, res.Degraded)
			assert.Equal(t, Fallback, res.Metadata)
			assert.True(t, res.IsFallback())
			assert.True(t, kberrors.IsCategory(res.Err, kberrors.CategoryRevision))
		})
	}
}

// fakeGit writes a shell script standing in for git. It answers the two
// queries with the given output, or exits 1 when the output is empty.
func fakeGit(t *testing.T, hash, date string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake requires a POSIX shell")
	}
	answer := func(out string) string {
		if out == "" {
			return "echo 'fatal: simulated' >&2; exit 1"
		}
		return "echo '" + out + "'"
	}
	script := "#!/bin/sh\n" +
		"case \"$3\" in\n" +
		"  rev-parse) " + answer(hash) + " ;;\n" +
		"  log) " + answer(date) + " ;;\n" +
		"  *) exit 2 ;;\n" +
		"esac\n"
	path := filepath.Join(t.TempDir(), "git")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o700))
	return path
}

func TestGitCLI_FakeBinary(t *testing.T) {
	tests := []struct {
		name     string
		hash     string
		date     string
		parallel bool
		want     Metadata
	}{
		{"both succeed", "abc1234", "2024-03-01", false, Metadata{Hash: "abc1234", Date: "2024-03-01"}},
		{"both succeed in parallel", "abc1234", "2024-03-01", true, Metadata{Hash: "abc1234", Date: "2024-03-01"}},
		{"date query fails", "abc1234", "", false, Fallback},
		{"hash query fails in parallel", "", "2024-03-01", true, Fallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := GitCLI{Dir: t.TempDir(), Binary: fakeGit(t, tt.hash, tt.date), Parallel: tt.parallel}
			res := ReadRevisionMetadata(context.Background(), reader)
			assert.Equal(t, tt.want, res.Metadata)
		})
	}
}

func TestGitCLI_MissingBinary(t *testing.T) {
	reader := GitCLI{Binary: filepath.Join(t.TempDir(), "no-such-git")}
	res := ReadRevisionMetadata(context.Background(), reader)

	assert.True(t, res.Degraded)
	assert.Equal(t, Fallback, res.Metadata)
}

func TestGitCLI_TimeoutFallsBack(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "git")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexec sleep 10\n"), 0o700))

	start := time.Now()
	res := ReadRevisionMetadata(context.Background(), GitCLI{Binary: path, Timeout: 100 * time.Millisecond})

	assert.Equal(t, Fallback, res.Metadata)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestGitCLI_OutsideRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))

	res := ReadRevisionMetadata(context.Background(), GitCLI{Dir: dir})
	assert.Equal(t, Metadata{Hash: "unknown", Date: "unknown"}, res.Metadata)
}

// initRepo creates a repository with one commit dated 2024-03-01 and
// returns its path and full commit hash.
func initRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.md"), []byte("# Notes\n"), 0o600))

	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add("index.md")
	require.NoError(t, err)

	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sig := &object.Signature{Name: "Test User", Email: "test@example.com", When: when}
	commit, err := w.Commit("Initial commit", &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)
	return dir, commit.String()
}

var shortHex = regexp.MustCompile(`^[0-9a-f]{7,}$`)

func TestGitCLI_RealRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir, full := initRepo(t)

	res := ReadRevisionMetadata(context.Background(), GitCLI{Dir: dir})
	require.False(t, res.Degraded, "unexpected fallback: %v", res.Err)
	assert.Regexp(t, shortHex, res.Hash)
	assert.Equal(t, full[:len(res.Hash)], res.Hash)
	assert.Equal(t, "2024-03-01", res.Date)
}

func TestGoGit_Repository(t *testing.T) {
	dir, full := initRepo(t)
	sub := filepath.Join(dir, "guides")
	require.NoError(t, os.MkdirAll(sub, 0o750))

	res := ReadRevisionMetadata(context.Background(), GoGit{Dir: sub})
	require.False(t, res.Degraded, "unexpected fallback: %v", res.Err)
	assert.Equal(t, full[:7], res.Hash)
	assert.Equal(t, "2024-03-01", res.Date)
}

func TestGoGit_Failures(t *testing.T) {
	empty := t.TempDir()
	_, err := git.PlainInit(empty, false)
	require.NoError(t, err)

	tests := []struct {
		name string
		dir  string
	}{
		{"not a repository", t.TempDir()},
		{"no commits", empty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ReadRevisionMetadata(context.Background(), GoGit{Dir: tt.dir})
			assert.Equal(t, Fallback, res.Metadata)
		})
	}
}

func TestGoGit_CanceledContext(t *testing.T) {
	dir, _ := initRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := ReadRevisionMetadata(ctx, GoGit{Dir: dir})
	assert.Equal(t, Fallback, res.Metadata)
}

func TestGoGit_Timeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	reader := GoGit{
		Timeout: 50 * time.Millisecond,
		open: func(string) (*git.Repository, error) {
			<-release
			return nil, errors.New("released")
		},
	}

	start := time.Now()
	_, err := reader.Read(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)

	res := ReadRevisionMetadata(context.Background(), reader)
	assert.Equal(t, Fallback, res.Metadata)
	assert.True(t, res.Degraded)
}

func TestGitDir(t *testing.T) {
	dir, _ := initRepo(t)
	sub := filepath.Join(dir, "guides")
	require.NoError(t, os.MkdirAll(sub, 0o750))

	got, err := GitDir(sub)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".git"), got)

	_, err = GitDir(t.TempDir())
	assert.Error(t, err)
}
