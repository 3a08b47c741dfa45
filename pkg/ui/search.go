package ui

import (
	"regexp"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// searchDriver layers a uniform prompt/compile/next/prev incremental search
// atop whichever active view implements Searchable. It owns the compiled
// pattern and direction; "what counts as a match" stays with the view.
type searchDriver struct {
	prompt    textinput.Model
	prompting bool
	pattern   *regexp.Regexp
	forward   bool
	status    SearchStatus
	forEnd    bool
}

func newSearchDriver() *searchDriver {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.CharLimit = 256

	return &searchDriver{prompt: ti, forward: true}
}

// Start begins a new search prompt, per view_search_start. forEnd skips the
// prompt entirely: it's the 'G'/End "jump to last row" special case the
// Timeline View alone interprets.
func (d *searchDriver) Start(view View, forEnd bool) tea.Cmd {
	if searchable, ok := view.(Searchable); ok {
		searchable.SearchInit()
	}

	d.pattern = nil
	d.status = SearchIdle
	d.forEnd = forEnd

	if forEnd {
		d.status = SearchWaiting

		return nil
	}

	d.prompting = true
	d.prompt.SetValue("")
	d.prompt.Focus()

	return textinput.Blink
}

// HandleKey feeds a keystroke to the prompt while it's open. Returns true
// once the prompt has been resolved (Enter compiles and fires the first
// search, Esc cancels).
func (d *searchDriver) HandleKey(view View, msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.Type {
	case tea.KeyEnter:
		d.prompting = false
		d.prompt.Blur()

		pattern, err := regexp.CompilePOSIX(d.prompt.Value())
		if err != nil {
			d.status = SearchNoMatchStatus

			return nil, true
		}

		d.pattern = pattern
		d.forward = true
		d.status = SearchWaiting
		d.Advance(view)

		return nil, true
	case tea.KeyEsc:
		d.prompting = false
		d.prompt.Blur()
		d.status = SearchIdle

		return nil, true
	default:
		var cmd tea.Cmd
		d.prompt, cmd = d.prompt.Update(msg)

		return cmd, false
	}
}

// Advance drives search_next once, normalizing the view's reported status.
func (d *searchDriver) Advance(view View) {
	searchable, ok := view.(Searchable)
	if !ok || d.pattern == nil {
		return
	}

	d.status = searchable.SearchNext(d.pattern.String(), d.forward)
}

// Repeat handles 'n'/'N': re-runs the last pattern in the given direction.
func (d *searchDriver) Repeat(view View, forward bool) {
	if d.pattern == nil {
		return
	}

	d.forward = forward
	d.Advance(view)
}

func (d *searchDriver) StatusLine() string {
	if d.prompting {
		return d.prompt.View()
	}

	switch d.status {
	case SearchNoMatchStatus:
		return "pattern not found"
	case SearchWaiting:
		return "searching..."
	default:
		return ""
	}
}
