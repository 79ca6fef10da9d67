package sidebar

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Item is one sidebar entry: a page link, or a group when Items is set.
type Item struct {
	Text      string `json:"text" yaml:"text" toml:"text"`
	Link      string `json:"link,omitempty" yaml:"link,omitempty" toml:"link,omitempty"`
	Items     []Item `json:"items,omitempty" yaml:"items,omitempty" toml:"items,omitempty"`
	Collapsed *bool  `json:"collapsed,omitempty" yaml:"collapsed,omitempty" toml:"collapsed,omitempty"`
}

const indexFile = "index.md"

// Generator builds sidebar trees.
type Generator interface {
	Generate(opts Options) ([]Item, error)
}

// DiskGenerator generates from the OS filesystem rooted at Options.DocumentRootPath.
type DiskGenerator struct{}

func (DiskGenerator) Generate(opts Options) ([]Item, error) {
	root := opts.DocumentRootPath
	if root == "" {
		root = "."
	}
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("document root: %w", err)
	}
	return Generate(os.DirFS(root), opts)
}

// Generate walks fsys from its root and returns the sidebar tree.
// Directories become groups, markdown files become links. Hidden entries,
// node_modules and excluded paths are skipped; groups without any page are
// dropped.
func Generate(fsys fs.FS, opts Options) ([]Item, error) {
	excl, err := compileExcludes(opts.ExcludePatterns)
	if err != nil {
		return nil, err
	}
	w := &walker{
		fsys: fsys,
		opts: opts,
		excl: excl,
		coll: collate.New(language.English, collate.Loose, collate.Numeric),
	}
	items, _, err := w.dir(".", 0)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// Count returns the number of entries in items, groups included.
func Count(items []Item) int {
	n := 0
	for _, it := range items {
		n += 1 + Count(it.Items)
	}
	return n
}

type walker struct {
	fsys fs.FS
	opts Options
	excl matcher
	coll *collate.Collator
}

// index describes a directory's index.md page.
type index struct {
	title string // heading or front matter title; empty when absent
}

// dir returns the entries of rel and its index page, if any.
func (w *walker) dir(rel string, depth int) ([]Item, *index, error) {
	entries, err := fs.ReadDir(w.fsys, rel)
	if err != nil {
		return nil, nil, err
	}

	var items []Item
	var idx *index
	for _, e := range entries {
		name := e.Name()
		child := path.Join(rel, name)
		if skip(name) || w.excl.excluded(child, name) {
			continue
		}

		if e.IsDir() {
			group, err := w.group(child, name, depth+1)
			if err != nil {
				return nil, nil, err
			}
			if group != nil {
				items = append(items, *group)
			}
			continue
		}
		if !strings.EqualFold(path.Ext(name), ".md") {
			continue
		}

		page, title, err := w.page(child, name)
		if err != nil {
			return nil, nil, err
		}
		if name == indexFile {
			idx = &index{title: title}
			continue
		}
		items = append(items, page)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return w.coll.CompareString(items[i].Text, items[j].Text) < 0
	})
	return items, idx, nil
}

func (w *walker) group(rel, name string, depth int) (*Item, error) {
	children, idx, err := w.dir(rel, depth)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 && idx == nil {
		return nil, nil
	}

	g := Item{Text: NormalizeTitle(name, w.opts), Items: children}
	if idx != nil {
		g.Link = "/" + rel + "/"
		if idx.title != "" {
			g.Text = idx.title
		}
	}
	if g.Items == nil {
		g.Items = []Item{}
	}
	if w.opts.Collapsed {
		collapsed := depth >= w.opts.CollapseDepth
		g.Collapsed = &collapsed
	}
	return &g, nil
}

// page returns the link item for a markdown file and the title found in
// the document itself ("" when titles come from file names).
func (w *walker) page(rel, name string) (Item, string, error) {
	it := Item{
		Text: NormalizeTitle(name, w.opts),
		Link: "/" + strings.TrimSuffix(rel, path.Ext(rel)),
	}
	if !w.opts.UseTitleFromFileHeading {
		return it, "", nil
	}
	content, err := fs.ReadFile(w.fsys, rel)
	if err != nil {
		return Item{}, "", err
	}
	title := documentTitle(content)
	if title != "" {
		it.Text = title
	}
	return it, title, nil
}

func skip(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}
