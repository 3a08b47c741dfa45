package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fnctui/fnc/pkg/artifact"
	"github.com/fnctui/fnc/pkg/diffengine"
	"github.com/fnctui/fnc/pkg/scm"
	"github.com/fnctui/fnc/pkg/style"
)

// DiffView renders the diffengine.Buffer assembled for one artifact.
type DiffView struct {
	base

	repo   *scm.Repository
	target *artifact.Artifact
	parent *artifact.Artifact
	opts   diffengine.Options
	styles *style.Set

	result *diffengine.Result
	err    error

	vp        viewport
	matched   int
	matchedOK bool
}

func NewDiffView(repo *scm.Repository, target, parent *artifact.Artifact) *DiffView {
	return NewDiffViewWithOptions(repo, target, parent, diffengine.Options{
		ContextLines: diffengine.DefaultContextLines,
		ShowMeta:     true,
	})
}

// NewDiffViewWithOptions constructs a Diff View with caller-supplied rendering
// options, letting CLI flags (-i/-q/-w/-x) seed the initial build directly
// instead of toggling defaults one keypress at a time.
func NewDiffViewWithOptions(repo *scm.Repository, target, parent *artifact.Artifact, opts diffengine.Options) *DiffView {
	v := &DiffView{
		repo:   repo,
		target: target,
		parent: parent,
		styles: style.NewSet(style.DefaultDiffRules()...),
		opts:   opts,
		vp:     viewport{height: 20},
	}
	v.build()

	return v
}

// SetColorEnabled forces colouring on or off, seeding the view's initial
// state from the `-C`/`--no-color` CLI flag. Call before Init.
func (v *DiffView) SetColorEnabled(enabled bool) {
	v.styles.SetEnabled(enabled)
}

func (v *DiffView) Kind() Kind    { return KindDiff }
func (v *DiffView) Title() string { return "diff " + v.target.Hash }
func (v *DiffView) Close()        {}
func (v *DiffView) Init() tea.Cmd { return nil }

func (v *DiffView) build() {
	v.result, v.err = diffengine.Build(v.repo, v.target, v.parent, v.opts)

	total := 0
	if v.result != nil {
		total = v.result.Buffer.NumLines()
	}

	v.vp.clamp(total)
}

func (v *DiffView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case Resize:
		v.vp.height = m.Height - 2
		v.vp.clamp(v.numLines())

		return v, nil
	case tea.KeyMsg:
		return v.handleKey(m)
	default:
		return v, nil
	}
}

func (v *DiffView) numLines() int {
	if v.result == nil {
		return 0
	}

	return v.result.Buffer.NumLines()
}

func (v *DiffView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "j", "down", "k", "up", "pgdown", "pgup", "home", "end":
		v.vp.move(key, v.numLines())

		return v, nil
	case "c":
		v.styles.Toggle()

		return v, nil
	case "i":
		v.opts.Invert = !v.opts.Invert
		v.build()

		return v, nil
	case "v":
		v.opts.Verbose = !v.opts.Verbose
		v.build()

		return v, nil
	case "w":
		v.opts.IgnoreWhitespace = !v.opts.IgnoreWhitespace
		v.build()

		return v, nil
	case "-", "_":
		v.opts.ContextLines--
		v.build()

		return v, nil
	case "+", "=":
		v.opts.ContextLines++
		v.build()

		return v, nil
	default:
		return v, nil
	}
}

// SearchInit resets the match cursor.
func (v *DiffView) SearchInit() {
	v.matched = v.vp.selected
	v.matchedOK = false
}

// SearchNext scans the line-offset index forward/backward for a line
// matching pattern, indexing directly into the in-memory Buffer at each
// recorded offset.
func (v *DiffView) SearchNext(pattern string, forward bool) SearchStatus {
	re, err := compilePattern(pattern)
	if err != nil || v.result == nil {
		return SearchNoMatchStatus
	}

	n := v.result.Buffer.NumLines()

	start := v.matched + 1
	if !v.matchedOK {
		start = 0
	}

	if !forward {
		start = v.matched - 1
		if !v.matchedOK {
			start = n - 1
		}
	}

	for i := start; i >= 0 && i < n; {
		if re.MatchString(v.result.Buffer.Line(i)) {
			v.matched = i
			v.matchedOK = true
			v.vp.selected = i
			v.vp.clamp(n)

			return SearchComplete
		}

		if forward {
			i++
		} else {
			i--
		}
	}

	return SearchNoMatchStatus
}

func (v *DiffView) View() string {
	if v.err != nil {
		return fmt.Sprintf("diff error: %v\n", v.err)
	}

	if v.result == nil {
		return ""
	}

	var b strings.Builder

	n := v.result.Buffer.NumLines()

	end := v.vp.first + v.vp.height
	if end > n {
		end = n
	}

	for i := v.vp.first; i < end; i++ {
		line := v.styles.Apply(v.result.Buffer.Line(i))
		if i == v.vp.selected {
			line = selectedStyle.Render(line)
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}
