// Package ui hosts the view-stack and input loop: a cooperative, single
// bubbletea program that drives up to two simultaneously visible views
// (parent plus an optional split or full-screen child), dispatches input,
// and layers a uniform incremental search facility over whichever view is
// active.
package ui

import tea "github.com/charmbracelet/bubbletea"

// Kind identifies which concrete view a Frame holds, used by the loop to
// dedupe "open a view of this kind" requests (a second Tree View replaces
// the first rather than stacking beside it).
type Kind int

const (
	KindTimeline Kind = iota
	KindDiff
	KindTree
	KindBlame
)

// SearchStatus is the normalized outcome the search driver reports after
// each search_init/search_next call against the active view.
type SearchStatus int

const (
	SearchIdle SearchStatus = iota
	SearchWaiting
	SearchContinueStatus
	SearchComplete
	SearchNoMatchStatus
)

// Resize carries a synthetic terminal resize, forwarded to every view on the
// stack (and any child) whenever a real resize is observed.
type Resize struct {
	Width  int
	Height int
}

// View is the contract every concrete screen region satisfies: a bubbletea
// model plus the handful of callbacks the stack and search driver need that
// don't fit tea.Model's shape (show, input, close, search_init, search_next).
type View interface {
	tea.Model

	// Kind identifies the view for stack dedup purposes.
	Kind() Kind

	// Title is the first header line the stack may render above the view
	// (most views fold this into their own View() output instead).
	Title() string

	// Egress reports whether the view has asked to close; the loop sets it
	// after forwarding a 'q' keypress to the view.
	Egress() bool

	// Close releases any resources the view owns (background workers,
	// temp buffers). Called exactly once, when the view leaves the stack.
	Close()
}

// Searchable is implemented by views that expose the uniform search driver.
// Views without incremental search (none currently) simply don't implement
// it; the loop type-asserts before wiring '/'.
type Searchable interface {
	// SearchInit resets per-search state (e.g. matched_line) ahead of a new
	// pattern being compiled.
	SearchInit()

	// SearchNext scans for the next match in the given direction (true =
	// forward) from the current position, returning the normalized status.
	SearchNext(pattern string, forward bool) SearchStatus
}

// EgressSetter lets the loop flip a view's egress flag after forwarding a
// 'q' keypress to it: the key reaches the view first, then the loop marks
// it for removal.
type EgressSetter interface {
	SetEgress()
}

// Successor is implemented by a view that, in response to input, wants to
// open a new view (e.g. Tree View's Enter-on-file opening a Blame View,
// Timeline's 't' opening a Tree View, or Timeline's Enter opening a Diff
// View). The loop installs the returned view, closing any existing view of
// the same kind first. AsChild reports whether the new view should attach
// to the current frame as a split/full-screen child (Diff, Blame) or take
// over as a new frame on the stack (Tree, Timeline).
type Successor interface {
	TakeSuccessor() (view View, asChild bool, ok bool)
}
