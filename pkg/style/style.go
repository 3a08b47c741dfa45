// Package style holds the per-view list of (compiled regex -> colour style)
// pairs used to colourise matching lines in the diff, timeline, tree, and
// blame views, and the single toggle ('c') that turns colouring on or off.
package style

import (
	"regexp"

	"github.com/charmbracelet/lipgloss"
)

// Rule pairs a compiled regex with the style applied to a line it matches.
// Rules are tried in order; the first match wins.
type Rule struct {
	Pattern *regexp.Regexp
	Style   lipgloss.Style
}

// Set is an ordered list of colouring rules for one view, with a runtime
// on/off toggle.
type Set struct {
	rules   []Rule
	enabled bool
}

// NewSet returns a Set with colouring enabled by default.
func NewSet(rules ...Rule) *Set {
	return &Set{rules: rules, enabled: true}
}

// Toggle flips colouring on or off, bound to the 'c' key in every view that
// embeds a Set.
func (s *Set) Toggle() {
	s.enabled = !s.enabled
}

// SetEnabled forces colouring on or off, used to seed a view's initial state
// from the `-C`/`--no-color` flag before the first render.
func (s *Set) SetEnabled(enabled bool) {
	s.enabled = enabled
}

// Enabled reports whether colouring is currently on.
func (s *Set) Enabled() bool {
	return s.enabled
}

// Apply renders line styled per the first matching rule, or unstyled if
// colouring is off or no rule matches.
func (s *Set) Apply(line string) string {
	if !s.enabled {
		return line
	}

	for _, rule := range s.rules {
		if rule.Pattern.MatchString(line) {
			return rule.Style.Render(line)
		}
	}

	return line
}

// Rule builders for the four diff-view line classes: meta, minus, plus, and
// chunk-header lines.

var (
	metaPattern  = regexp.MustCompile(`^(Index:|={10,}|checkin |user: |date: |tags: )`)
	minusPattern = regexp.MustCompile(`^(-|REMOVED)`)
	plusPattern  = regexp.MustCompile(`^(\+|ADDED)`)
	chunkPattern = regexp.MustCompile(`^@@`)
)

// DefaultDiffRules returns the standard meta/minus/plus/chunk colouring used
// by the diff view.
func DefaultDiffRules() []Rule {
	return []Rule{
		{Pattern: chunkPattern, Style: lipgloss.NewStyle().Foreground(lipgloss.Color("6"))},
		{Pattern: minusPattern, Style: lipgloss.NewStyle().Foreground(lipgloss.Color("1"))},
		{Pattern: plusPattern, Style: lipgloss.NewStyle().Foreground(lipgloss.Color("2"))},
		{Pattern: metaPattern, Style: lipgloss.NewStyle().Foreground(lipgloss.Color("4"))},
	}
}

// Rule builders for the three suffix-marked tree-entry classes rendered by
// the tree view: symlinks ("@ -> target"), directories ("name/"), and
// executables ("name*").

var (
	treeSymlinkPattern = regexp.MustCompile(`@ -> `)
	treeDirPattern     = regexp.MustCompile(`/$`)
	treeExecPattern    = regexp.MustCompile(`\*$`)
)

// DefaultTreeRules returns the standard symlink/directory/executable
// colouring used by the tree view.
func DefaultTreeRules() []Rule {
	return []Rule{
		{Pattern: treeSymlinkPattern, Style: lipgloss.NewStyle().Foreground(lipgloss.Color("5"))},
		{Pattern: treeDirPattern, Style: lipgloss.NewStyle().Foreground(lipgloss.Color("6"))},
		{Pattern: treeExecPattern, Style: lipgloss.NewStyle().Foreground(lipgloss.Color("2"))},
	}
}
