package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fnctui/fnc/pkg/artifact"
	"github.com/fnctui/fnc/pkg/blame"
	"github.com/fnctui/fnc/pkg/scm"
)

type blameDoneMsg struct {
	result *blame.Result
	err    error
}

// BlameView renders blame.Line records as they fill in, with "b"/"p"/"B"
// pivot keys to walk backward through a file's history.
type BlameView struct {
	base

	repo   *scm.Repository
	path   string
	commit scm.Hash
	stack  *blame.Stack

	opts blame.Options

	result    *blame.Result
	err       error
	annotating bool
	cancel    context.CancelFunc

	vp        viewport
	successor View
	matched   int
	matchedOK bool
}

func NewBlameView(repo *scm.Repository, hash, path string) (*BlameView, error) {
	return NewBlameViewWithOptions(repo, hash, path, blame.Options{})
}

// NewBlameViewWithOptions opens a Blame View constrained by opts, letting the
// CLI's -n (line range) and -r (reverse, via OldestCommit) flags seed the
// first annotation run.
func NewBlameViewWithOptions(repo *scm.Repository, hash, path string, opts blame.Options) (*BlameView, error) {
	return &BlameView{
		repo:   repo,
		path:   path,
		commit: scm.NewHash(hash),
		stack:  blame.NewStack(),
		opts:   opts,
		vp:     viewport{height: 20},
	}, nil
}

func (v *BlameView) Kind() Kind    { return KindBlame }
func (v *BlameView) Title() string { return "blame " + v.path }

func (v *BlameView) Close() {
	if v.cancel != nil {
		v.cancel()
	}
}

func (v *BlameView) Init() tea.Cmd {
	return v.runAnnotate()
}

func (v *BlameView) runAnnotate() tea.Cmd {
	v.annotating = true

	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel

	repo, commit, path, opts := v.repo, v.commit, v.path, v.opts

	return func() tea.Msg {
		result, err := blame.Annotate(ctx, repo, commit, path, opts)

		return blameDoneMsg{result: result, err: err}
	}
}

func (v *BlameView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case blameDoneMsg:
		v.annotating = false
		v.result = m.result
		v.err = m.err

		if v.result != nil {
			v.vp.clamp(len(v.result.Lines))
		}

		return v, nil
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

func (v *BlameView) numLines() int {
	if v.result == nil {
		return 0
	}

	return len(v.result.Lines)
}

func (v *BlameView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "j", "down", "k", "up", "pgdown", "pgup", "home", "end":
		v.vp.move(key, v.numLines())

		return v, nil
	case "b":
		if line, ok := v.selectedLine(); ok && !line.Hash.IsZero() {
			v.stack.Push(v.commit)
			v.commit = line.Hash

			return v, v.runAnnotate()
		}

		return v, nil
	case "p":
		if line, ok := v.selectedLine(); ok {
			parent, err := blame.ParentForPath(v.repo, line.Hash, v.path)
			if err == nil {
				v.stack.Push(v.commit)
				v.commit = parent

				return v, v.runAnnotate()
			}
		}

		return v, nil
	case "B", "backspace":
		if prev, ok := v.stack.Pop(); ok {
			v.commit = prev

			return v, v.runAnnotate()
		}

		return v, nil
	case "enter":
		if line, ok := v.selectedLine(); ok {
			dv, err := NewDiffViewFromHash(v.repo, line.Hash)
			if err == nil {
				v.successor = dv
			}
		}

		return v, nil
	default:
		return v, nil
	}
}

func (v *BlameView) selectedLine() (blame.Line, bool) {
	if v.result == nil || v.vp.selected < 0 || v.vp.selected >= len(v.result.Lines) {
		return blame.Line{}, false
	}

	return v.result.Lines[v.vp.selected], true
}

func (v *BlameView) TakeSuccessor() (View, bool, bool) {
	if v.successor == nil {
		return nil, false, false
	}

	s := v.successor
	v.successor = nil

	return s, true, true
}

// SearchInit resets the match cursor, the same pattern DiffView uses.
func (v *BlameView) SearchInit() {
	v.matched = v.vp.selected
	v.matchedOK = false
}

// SearchNext matches against each line's raw text.
func (v *BlameView) SearchNext(pattern string, forward bool) SearchStatus {
	re, err := compilePattern(pattern)
	if err != nil || v.result == nil {
		return SearchNoMatchStatus
	}

	n := len(v.result.Lines)

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
		if re.MatchString(v.result.Lines[i].Text) {
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

func (v *BlameView) View() string {
	if v.err != nil {
		return fmt.Sprintf("blame error: %v\n", v.err)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "checkin %s\n", v.commit)

	status := ""
	if v.annotating {
		status = "annotating... "
	}

	fmt.Fprintf(&b, "%s/%s\n", status, v.path)

	if v.result == nil {
		return b.String()
	}

	n := len(v.result.Lines)

	end := v.vp.first + v.vp.height
	if end > n {
		end = n
	}

	var prevHash scm.Hash

	for i := v.vp.first; i < end; i++ {
		line := v.result.Lines[i]

		prefix := "..........."

		switch {
		case !line.Annotated:
			prefix = "..........."
		case line.Hash == prevHash:
			prefix = "           "
		default:
			prefix = fmt.Sprintf("%.10s ", line.Hash.String())
		}

		prevHash = line.Hash

		row := prefix + line.Text
		if i == v.vp.selected {
			row = selectedStyle.Render(row)
		}

		b.WriteString(row)
		b.WriteString("\n")
	}

	return b.String()
}

func NewDiffViewFromHash(repo *scm.Repository, hash scm.Hash) (*DiffView, error) {
	commit, err := repo.LookupCommit(hash)
	if err != nil {
		return nil, fmt.Errorf("lookup commit: %w", err)
	}
	defer commit.Free()

	var parentHashStr *string

	if commit.NumParents() > 0 {
		h := commit.ParentHash(0).String()
		parentHashStr = &h
	}

	author := commit.Author()

	target := artifact.New(1, 0, hash.String(), parentHashStr, author.Name, author.When, commit.Message(), "", artifact.TypeCheckin, nil)

	var parent *artifact.Artifact

	if commit.NumParents() > 0 {
		pc, err := commit.Parent(0)
		if err == nil {
			defer pc.Free()

			pa := pc.Author()
			target.ParentRID = 1

			parent = artifact.New(0, 0, pc.Hash().String(), nil, pa.Name, pa.When, pc.Message(), "", artifact.TypeCheckin, nil)
		}
	}

	return NewDiffView(repo, target, parent), nil
}
