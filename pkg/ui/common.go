package ui

import (
	"regexp"

	"github.com/charmbracelet/lipgloss"
)

// compilePattern compiles a POSIX-extended regex; views call it from
// SearchNext rather than trusting a pre-compiled pattern crosses view
// boundaries.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	return regexp.CompilePOSIX(pattern)
}

// base is embedded by every concrete view to supply the egress flag the
// loop flips after forwarding 'q'.
type base struct {
	egress bool
}

func (b *base) Egress() bool    { return b.egress }
func (b *base) SetEgress()      { b.egress = true }
func (b *base) clearEgress()    { b.egress = false }

// viewport tracks the visible window over an ordered list of n rows: the
// shared "selected index relative to screen, first line onscreen"
// bookkeeping every view repeats (Timeline's selected commit, Diff/Blame's
// scrolled line, Tree's highlighted entry).
type viewport struct {
	selected int
	first    int
	height   int
}

func (v *viewport) clamp(n int) {
	if n <= 0 {
		v.selected, v.first = 0, 0

		return
	}

	if v.selected >= n {
		v.selected = n - 1
	}

	if v.selected < 0 {
		v.selected = 0
	}

	if v.height <= 0 {
		v.height = 1
	}

	if v.selected < v.first {
		v.first = v.selected
	}

	if v.selected >= v.first+v.height {
		v.first = v.selected - v.height + 1
	}

	maxFirst := n - v.height
	if maxFirst < 0 {
		maxFirst = 0
	}

	if v.first > maxFirst {
		v.first = maxFirst
	}

	if v.first < 0 {
		v.first = 0
	}
}

// move applies a navigation keystroke against n rows, returning whether the
// selection changed.
func (v *viewport) move(key string, n int) bool {
	before := v.selected

	switch key {
	case "j", "down":
		v.selected++
	case "k", "up":
		v.selected--
	case "pgdown":
		v.selected += v.height
	case "pgup":
		v.selected -= v.height
	case "home", "g":
		v.selected = 0
	case "end", "G":
		v.selected = n - 1
	}

	v.clamp(n)

	return v.selected != before
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)
