package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fnctui/fnc/pkg/reptree"
	"github.com/fnctui/fnc/pkg/scm"
	"github.com/fnctui/fnc/pkg/style"
)

// TreeView renders one directory's worth of reptree.Object entries over a
// reptree.Tree.
type TreeView struct {
	base

	repo   *scm.Repository
	hash   string
	tree   *reptree.Tree
	nav    *reptree.Navigator
	styles *style.Set
	showID bool

	vp        viewport
	successor View
	matched   int
	matchedOK bool
}

func NewTreeView(repo *scm.Repository, hash string) (*TreeView, error) {
	return NewTreeViewAtPath(repo, hash, "")
}

// NewTreeViewAtPath opens a Tree View already descended into startPath (one
// path component per navigation frame), the way `fnc tree <path>` seeds its
// initial directory. An unresolvable path falls back to root.
func NewTreeViewAtPath(repo *scm.Repository, hash, startPath string) (*TreeView, error) {
	commit, err := repo.LookupCommit(scm.NewHash(hash))
	if err != nil {
		return nil, fmt.Errorf("lookup commit: %w", err)
	}
	defer commit.Free()

	commitTree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("load commit tree: %w", err)
	}

	tree, err := reptree.Build(repo, commitTree, nil)
	if err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}

	nav := reptree.NewNavigator(tree)

	if startPath != "" {
		descendPath(nav, startPath)
	}

	return &TreeView{
		repo:   repo,
		hash:   hash,
		tree:   tree,
		nav:    nav,
		styles: style.NewSet(style.DefaultTreeRules()...),
		vp:     viewport{height: 20},
	}, nil
}

// SetColorEnabled forces colouring on or off, seeding the view's initial
// state from the `-C`/`--no-color` CLI flag. Call before Init.
func (v *TreeView) SetColorEnabled(enabled bool) {
	v.styles.SetEnabled(enabled)
}

// descendPath walks nav into each component of path in turn, stopping at the
// first component it can't find (leaving nav at the deepest resolved
// directory) rather than failing the whole view open.
func descendPath(nav *reptree.Navigator, path string) {
	for _, component := range strings.Split(strings.Trim(path, "/"), "/") {
		if component == "" {
			continue
		}

		obj := nav.Current()

		idx := -1

		for i, entry := range obj.Entries {
			if entry.Node.Basename == component && entry.Node.IsDir() {
				idx = entry.Idx

				break
			}
		}

		if idx < 0 {
			return
		}

		nav.Descend(idx, 0, 0)
	}
}

func (v *TreeView) Kind() Kind    { return KindTree }
func (v *TreeView) Title() string { return "tree " + v.hash }
func (v *TreeView) Close()        {}
func (v *TreeView) Init() tea.Cmd { return nil }

func (v *TreeView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case Resize:
		v.vp.height = m.Height - 2
		v.vp.clamp(v.rowCount())

		return v, nil
	case tea.KeyMsg:
		return v.handleKey(m)
	default:
		return v, nil
	}
}

// rowCount accounts for the synthetic ".." row prepended whenever the
// current object isn't root.
func (v *TreeView) rowCount() int {
	n := v.nav.Current().Len()
	if !v.nav.AtRoot() {
		n++
	}

	return n
}

func (v *TreeView) entryAt(row int) (reptree.Entry, bool) {
	obj := v.nav.Current()

	offset := 0
	if !v.nav.AtRoot() {
		if row == 0 {
			return reptree.Entry{}, false
		}

		offset = 1
	}

	idx := row - offset
	if idx < 0 || idx >= obj.Len() {
		return reptree.Entry{}, false
	}

	return obj.Entries[idx], true
}

func (v *TreeView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "j", "down", "k", "up", "pgdown", "pgup", "home", "end":
		v.vp.move(key, v.rowCount())

		return v, nil
	case "i":
		v.showID = !v.showID

		return v, nil
	case "c":
		v.styles.Toggle()

		return v, nil
	case "h", "backspace", "left":
		if frame, ok := v.nav.Ascend(); ok {
			v.vp.selected = frame.Selected
			v.vp.first = frame.FirstOnscreen
			v.vp.clamp(v.rowCount())
		}

		return v, nil
	case "l", "right", "enter":
		entry, ok := v.entryAt(v.vp.selected)
		if !ok {
			if !v.nav.AtRoot() {
				if frame, ok := v.nav.Ascend(); ok {
					v.vp.selected = frame.Selected
					v.vp.first = frame.FirstOnscreen
					v.vp.clamp(v.rowCount())
				}
			}

			return v, nil
		}

		if entry.Node.IsDir() {
			v.nav.Descend(entry.Idx, v.vp.first, v.vp.selected)
			v.vp.selected, v.vp.first = 0, 0

			return v, nil
		}

		bv, err := NewBlameView(v.repo, v.hash, entry.Node.Path)
		if err == nil {
			v.successor = bv
		}

		return v, nil
	case "t":
		entry, ok := v.entryAt(v.vp.selected)
		path := ""

		if ok {
			path = entry.Node.Path
		}

		tv, err := NewTimelineView(v.repo, nil, TimelineFilter{Path: path})
		if err == nil {
			v.successor = tv
		}

		return v, nil
	default:
		return v, nil
	}
}

func (v *TreeView) TakeSuccessor() (View, bool, bool) {
	if v.successor == nil {
		return nil, false, false
	}

	s := v.successor
	v.successor = nil

	return s, s.Kind() == KindBlame, true
}

// SearchInit resets the match cursor against basenames.
func (v *TreeView) SearchInit() {
	v.matched = v.vp.selected
	v.matchedOK = false
}

// SearchNext matches basenames, wrapping once around the directory if no
// match is found before reaching the starting point.
func (v *TreeView) SearchNext(pattern string, forward bool) SearchStatus {
	re, err := compilePattern(pattern)
	if err != nil {
		return SearchNoMatchStatus
	}

	n := v.rowCount()
	if n == 0 {
		return SearchNoMatchStatus
	}

	step := 1
	if !forward {
		step = -1
	}

	i := (v.vp.selected + step + n) % n

	for count := 0; count < n; count++ {
		if i == 0 && !v.nav.AtRoot() {
			if re.MatchString("..") {
				v.vp.selected = i
				v.vp.clamp(n)

				return SearchComplete
			}
		} else if entry, ok := v.entryAt(i); ok && re.MatchString(entry.Node.Basename) {
			v.vp.selected = i
			v.vp.clamp(n)

			return SearchComplete
		}

		i = (i + step + n) % n
	}

	return SearchNoMatchStatus
}

func (v *TreeView) View() string {
	var b strings.Builder

	fmt.Fprintf(&b, "tree %s\n", v.hash)

	n := v.rowCount()

	end := v.vp.first + v.vp.height
	if end > n {
		end = n
	}

	for row := v.vp.first; row < end; row++ {
		line := v.styles.Apply(v.renderRow(row))
		if row == v.vp.selected {
			line = selectedStyle.Render(line)
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func (v *TreeView) renderRow(row int) string {
	if !v.nav.AtRoot() && row == 0 {
		return ".."
	}

	entry, ok := v.entryAt(row)
	if !ok {
		return ""
	}

	name := entry.Node.Basename

	switch entry.Node.Mode {
	case reptree.ModeDirectory:
		name += "/"
	case reptree.ModeExecutable:
		name += "*"
	case reptree.ModeSymlink:
		name += "@ -> " + entry.Node.Target
	}

	if v.showID && entry.Node.HasHash {
		return fmt.Sprintf("%s %s", entry.Node.Hash.String()[:10], name)
	}

	return name
}
