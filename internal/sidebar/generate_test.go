package sidebar

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func file(s string) *fstest.MapFile { return &fstest.MapFile{Data: []byte(s)} }

func knowledgeBase() fstest.MapFS {
	return fstest.MapFS{
		"index.md":                            file("# Home\n"),
		"README.md":                           file("# Read me\n"),
		"getting-started.md":                  file("No heading here.\n"),
		"programming/index.md":                file("# Programming Notes\n"),
		"programming/go_concurrency.md":       file("---\ntitle: Go Concurrency Patterns\n---\n# Ignored\n"),
		"programming/rust-ownership.md":       file("Intro\n\n# Rust *Ownership* and `Borrowing`\n"),
		"programming/tools/git-tips.md":       file("## Only H2\n"),
		"programming/tools/deep/very-deep.md": file("# Deep Page\n"),
		"empty-dir/notes.txt":                 file("not markdown"),
		".vitepress/config.md":                file("# hidden"),
		"node_modules/pkg/readme.md":          file("# vendored"),
		"drafts/wip.md":                       file("# WIP"),
	}
}

func ptr(b bool) *bool { return &b }

func TestGenerate_DefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.ExcludePatterns = []string{"drafts"}

	items, err := Generate(knowledgeBase(), opts)
	require.NoError(t, err)

	want := []Item{
		{Text: "getting started", Link: "/getting-started"},
		{
			Text:      "Programming Notes",
			Link:      "/programming/",
			Collapsed: ptr(false),
			Items: []Item{
				{Text: "Go Concurrency Patterns", Link: "/programming/go_concurrency"},
				{Text: "Rust Ownership and Borrowing", Link: "/programming/rust-ownership"},
				{
					Text:      "tools",
					Collapsed: ptr(true),
					Items: []Item{
						{
							Text:      "deep",
							Collapsed: ptr(true),
							Items:     []Item{{Text: "Deep Page", Link: "/programming/tools/deep/very-deep"}},
						},
						{Text: "git tips", Link: "/programming/tools/git-tips"},
					},
				},
			},
		},
		{Text: "Read me", Link: "/README"},
	}
	assert.Equal(t, want, items)
	assert.Equal(t, 9, Count(items))
}

func TestGenerate_TitlesFromFileNames(t *testing.T) {
	opts := Options{HyphenToSpace: true}
	items, err := Generate(fstest.MapFS{
		"snake_case_note.md": file("# Heading"),
		"kebab-case-note.md": file("# Heading"),
	}, opts)
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "kebab case note", items[0].Text)
	assert.Equal(t, "snake_case_note", items[1].Text)
}

func TestGenerate_NotCollapsible(t *testing.T) {
	items, err := Generate(fstest.MapFS{"a/b/page.md": file("# P")}, Options{})
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Nil(t, items[0].Collapsed)
	assert.Nil(t, items[0].Items[0].Collapsed)
}

func TestGenerate_NumericOrdering(t *testing.T) {
	items, err := Generate(fstest.MapFS{
		"day-10.md": file(""),
		"day-2.md":  file(""),
		"Day-1.md":  file(""),
	}, Options{HyphenToSpace: true})
	require.NoError(t, err)

	var texts []string
	for _, it := range items {
		texts = append(texts, it.Text)
	}
	assert.Equal(t, []string{"Day 1", "day 2", "day 10"}, texts)
}

func TestGenerate_Empty(t *testing.T) {
	items, err := Generate(fstest.MapFS{"index.md": file("# Home")}, DefaultOptions())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestGenerate_InvalidExclude(t *testing.T) {
	opts := DefaultOptions()
	opts.ExcludePatterns = []string{"[unterminated"}
	_, err := Generate(knowledgeBase(), opts)
	assert.Error(t, err)
}

func TestDiskGenerator(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "guides"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "guides", "setup.md"), []byte("# Setup Guide\n"), 0o600))

	opts := DefaultOptions()
	opts.DocumentRootPath = root
	items, err := DiskGenerator{}.Generate(opts)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "guides", items[0].Text)
	assert.Equal(t, []Item{{Text: "Setup Guide", Link: "/guides/setup"}}, items[0].Items)

	opts.DocumentRootPath = filepath.Join(root, "missing")
	_, err = DiskGenerator{}.Generate(opts)
	assert.Error(t, err)
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"my-note_draft.md", Options{HyphenToSpace: true, UnderscoreToSpace: true}, "my note draft"},
		{"my-note_draft.md", Options{HyphenToSpace: true}, "my note_draft"},
		{"my-note_draft.md", Options{UnderscoreToSpace: true}, "my-note draft"},
		{"-leading-", Options{HyphenToSpace: true}, "leading"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTitle(tt.name, tt.opts))
		})
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, ".", opts.DocumentRootPath)
	assert.True(t, opts.UseTitleFromFileHeading)
	assert.True(t, opts.HyphenToSpace)
	assert.True(t, opts.UnderscoreToSpace)
	assert.True(t, opts.Collapsed)
	assert.Equal(t, 2, opts.CollapseDepth)
}

func TestDocumentTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"front matter wins", "---\ntitle: From FM\n---\n# From Heading\n", "From FM"},
		{"crlf front matter", "---\r\ntitle: CRLF\r\n---\r\n# H\r\n", "CRLF"},
		{"empty front matter", "---\n---\n# After Empty\n", "After Empty"},
		{"unterminated front matter", "---\ntitle: x\n# Heading\n", "Heading"},
		{"setext heading", "Setext Title\n===\n", "Setext Title"},
		{"skips h2", "## Two\n\n# One\n", "One"},
		{"none", "plain text", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, documentTitle([]byte(tt.content)))
		})
	}
}
