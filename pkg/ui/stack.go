package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// minSplitWidth is the terminal width below which a child opens full-screen
// instead of split.
const minSplitWidth = 120

// minSplitHalf is the minimum column budget the child side of a split gets.
const minSplitHalf = 80

var splitBorder = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

// frame is one entry of the view stack: a parent view and an optional child
// it hosts in split or full-screen geometry. Frames are held in a slice
// rather than a linked list since views never move between frames.
type frame struct {
	parent     View
	child      View
	focusChild bool
	splitCol   int // 0 means the child (if any) is full-screen, not split
}

// active returns whichever of parent/child currently has input focus.
func (f *frame) active() View {
	if f.focusChild && f.child != nil {
		return f.child
	}

	return f.parent
}

// views returns every live view the frame holds, parent first.
func (f *frame) views() []View {
	if f.child != nil {
		return []View{f.parent, f.child}
	}

	return []View{f.parent}
}

// Loop is the bubbletea program model driving the view stack: render, poll
// input, dispatch (Tab/help/q/Q/f/search triad), detach-and-promote on
// egress, install successors.
type Loop struct {
	frames []*frame
	width  int
	height int

	driver *searchDriver
	help   bool
	helpY  int

	err       error
	terminate bool
}

// NewLoop starts the loop with a single initial view on the stack.
func NewLoop(initial View) *Loop {
	return &Loop{
		frames: []*frame{{parent: initial}},
		driver: newSearchDriver(),
	}
}

// Err returns the loop's recorded error. No code path in the loop records
// one, so it is always nil; view errors are shown by the views themselves.
func (l *Loop) Err() error {
	return l.err
}

func (l *Loop) Init() tea.Cmd {
	return l.top().parent.Init()
}

func (l *Loop) top() *frame {
	return l.frames[len(l.frames)-1]
}

func (l *Loop) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		l.width, l.height = m.Width, m.Height
		l.recomputeGeometry()

		return l, l.broadcastResize()
	case tea.KeyMsg:
		return l.dispatchKey(m)
	default:
		return l, l.forward(msg)
	}
}

// forward sends msg to the active view of the top frame and reconciles any
// successor it produced.
func (l *Loop) forward(msg tea.Msg) tea.Cmd {
	f := l.top()
	active := f.active()

	updated, cmd := active.Update(msg)
	view, ok := updated.(View)
	if !ok {
		return cmd
	}

	if f.focusChild && f.child != nil {
		f.child = view
	} else {
		f.parent = view
	}

	return tea.Batch(cmd, l.installSuccessor(view))
}

func (l *Loop) dispatchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if l.help {
		return l.dispatchHelpKey(msg)
	}

	if l.driver.prompting {
		cmd, _ := l.driver.HandleKey(l.top().active(), msg)

		return l, cmd
	}

	switch msg.String() {
	case "tab":
		f := l.top()
		if f.child != nil {
			f.focusChild = !f.focusChild
		}

		return l, nil
	case "f1", "H", "?":
		l.help = true
		l.helpY = 0

		return l, nil
	case "Q":
		return l, tea.Quit
	case "f":
		f := l.top()
		if f.splitCol > 0 {
			f.splitCol = 0
		} else {
			f.splitCol = l.splitColumn()
		}

		return l, l.broadcastResize()
	case "/":
		view := l.top().active()
		if _, ok := view.(Searchable); ok {
			return l, l.driver.Start(view, false)
		}

		return l, nil
	case "n":
		l.driver.Repeat(l.top().active(), true)

		return l, nil
	case "N":
		l.driver.Repeat(l.top().active(), false)

		return l, nil
	case "q":
		cmd := l.forward(msg)

		if setter, ok := l.top().active().(EgressSetter); ok {
			setter.SetEgress()
		}

		return l, tea.Batch(cmd, l.reapEgress())
	default:
		return l, l.forward(msg)
	}
}

func (l *Loop) dispatchHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		l.helpY++
	case "k", "up":
		if l.helpY > 0 {
			l.helpY--
		}
	case "home":
		l.helpY = 0
	case "pgdown", " ":
		l.helpY += l.height
	case "pgup":
		l.helpY -= l.height
		if l.helpY < 0 {
			l.helpY = 0
		}
	case "end":
		l.helpY = strings.Count(helpText, "\n")
	case "q", "esc":
		l.help = false
	}

	return l, nil
}

// reapEgress detaches an egressed active view, closes it, and promotes its
// successor: the frame's other slot, or the previous stack entry.
func (l *Loop) reapEgress() tea.Cmd {
	f := l.top()
	active := f.active()

	if !active.Egress() {
		return nil
	}

	switch {
	case f.focusChild && f.child != nil:
		f.child.Close()
		f.child = nil
		f.focusChild = false
	case f.child != nil:
		f.parent.Close()
		f.parent = f.child
		f.child = nil
		f.focusChild = false
	case len(l.frames) > 1:
		f.parent.Close()
		l.frames = l.frames[:len(l.frames)-1]
	default:
		f.parent.Close()
		l.terminate = true

		return tea.Quit
	}

	return l.broadcastResize()
}

// installSuccessor wires a newly produced view into the stack, closing any
// existing view of the same kind first.
func (l *Loop) installSuccessor(view View) tea.Cmd {
	successor, ok := view.(Successor)
	if !ok {
		return nil
	}

	next, asChild, has := successor.TakeSuccessor()
	if !has {
		return nil
	}

	l.closeExistingKind(next.Kind())

	f := l.top()

	if asChild {
		f.child = next
		f.focusChild = true
		f.splitCol = l.splitColumn()
	} else {
		l.frames = append(l.frames, &frame{parent: next})
	}

	return tea.Batch(next.Init(), l.broadcastResize())
}

// closeExistingKind removes and closes any view of kind already on the
// stack, so opening a second Tree View replaces rather than stacks atop
// the first.
func (l *Loop) closeExistingKind(kind Kind) {
	kept := l.frames[:0]

	for _, f := range l.frames {
		if f.child != nil && f.child.Kind() == kind {
			f.child.Close()
			f.child = nil
			f.focusChild = false
		}

		if f.parent.Kind() == kind {
			f.parent.Close()

			if f.child != nil {
				f.child.Close()
			}

			continue
		}

		kept = append(kept, f)
	}

	l.frames = kept
}

// splitColumn computes the child's starting column: max(0, COLS -
// max(COLS/2, minSplitHalf)), or 0 (full-screen) when the terminal is
// narrower than minSplitWidth.
func (l *Loop) splitColumn() int {
	if l.width < minSplitWidth {
		return 0
	}

	half := l.width / 2
	if half < minSplitHalf {
		half = minSplitHalf
	}

	col := l.width - half
	if col < 0 {
		col = 0
	}

	return col
}

func (l *Loop) recomputeGeometry() {
	for _, f := range l.frames {
		if f.child != nil {
			f.splitCol = l.splitColumn()
		}
	}
}

// broadcastResize forwards a synthetic resize to every view on every frame,
// sized to its own geometry.
func (l *Loop) broadcastResize() tea.Cmd {
	var cmds []tea.Cmd

	for _, f := range l.frames {
		parentWidth := l.width
		if f.child != nil && f.splitCol > 0 {
			parentWidth = f.splitCol
		}

		childWidth := l.width - f.splitCol

		updated, cmd := f.parent.Update(Resize{Width: parentWidth, Height: l.height})
		if view, ok := updated.(View); ok {
			f.parent = view
		}

		cmds = append(cmds, cmd)

		if f.child != nil {
			updated, cmd := f.child.Update(Resize{Width: childWidth, Height: l.height})
			if view, ok := updated.(View); ok {
				f.child = view
			}

			cmds = append(cmds, cmd)
		}
	}

	return tea.Batch(cmds...)
}

func (l *Loop) View() string {
	if l.terminate {
		return ""
	}

	if l.help {
		return l.renderHelp()
	}

	f := l.top()

	body := l.renderFrame(f)

	if status := l.driver.StatusLine(); status != "" {
		return body + "\n" + status
	}

	return body
}

func (l *Loop) renderFrame(f *frame) string {
	if f.child == nil {
		return f.parent.View()
	}

	if f.splitCol == 0 {
		return f.child.View()
	}

	left := f.parent.View()
	border := splitBorder.Render(strings.Repeat("│\n", l.height))
	right := f.child.View()

	return lipgloss.JoinHorizontal(lipgloss.Top, left, border, right)
}

func (l *Loop) renderHelp() string {
	lines := strings.Split(helpText, "\n")

	start := l.helpY
	if start > len(lines) {
		start = len(lines)
	}

	return strings.Join(lines[start:], "\n")
}

const helpText = `Keys

j/k, Up/Down      move selection
PgUp/PgDn         page
Home/End          jump to first/last (g g is not bound)
Tab               swap focus between split parent/child
f                 toggle full-screen / split
/                 start search
n / N             repeat search forward / backward
q                 close the current view
Q                 quit
F1, H, ?          this help (j/k/PgUp/PgDn/Home/End/Space/q/Esc to navigate, q/Esc to close)`
