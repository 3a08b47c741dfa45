package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fnctui/fnc/pkg/artifact"
	"github.com/fnctui/fnc/pkg/metrics"
	"github.com/fnctui/fnc/pkg/scm"
	"github.com/fnctui/fnc/pkg/style"
	"github.com/fnctui/fnc/pkg/timeline"
)

// TimelineFilter carries the optional timeline constraints. User (substring),
// Branch, Types and Path (prefix) become the producer's row filter, Limit
// caps the rows requested, and UTC renders row timestamps in UTC. Tag is
// carried but not applied: rows are not filtered by tag.
type TimelineFilter struct {
	Branch string
	Tag    string
	User   string
	Path   string
	Types  []string
	Limit  int
	UTC    bool
}

// matcher builds a timeline.MatchFunc from the filter's non-empty fields, or
// nil when no filtering was requested.
func (f TimelineFilter) matcher() timeline.MatchFunc {
	if f.User == "" && f.Path == "" && f.Branch == "" && len(f.Types) == 0 {
		return nil
	}

	return func(a *artifact.Artifact) bool {
		if f.User != "" && !strings.Contains(a.User, f.User) {
			return false
		}

		if f.Branch != "" && a.Branch != f.Branch {
			return false
		}

		if len(f.Types) > 0 {
			match := false

			for _, t := range f.Types {
				if string(a.Type) == t {
					match = true

					break
				}
			}

			if !match {
				return false
			}
		}

		if f.Path != "" {
			entries, err := a.Changeset()
			if err != nil {
				return false
			}

			found := false

			for _, e := range entries {
				if e.Name == f.Path || strings.HasPrefix(e.Name, f.Path+"/") {
					found = true

					break
				}
			}

			if !found {
				return false
			}
		}

		return true
	}
}

type batchMsg timeline.CommitBatch

type producerDoneMsg struct{}

type searchStatusMsg timeline.SearchStatus

// TimelineView renders the artifact.Queue as the timeline.Producer fills it.
type TimelineView struct {
	base

	repo     *scm.Repository
	producer *timeline.Producer
	cancel   context.CancelFunc
	queue    *artifact.Queue
	filter   TimelineFilter
	styles   *style.Set

	vp         viewport
	producerEOF bool
	successor  View
	matched    int
	matchedSet bool
}

// NewTimelineView constructs a Timeline View. opts configures the producer's
// underlying commit walk.
func NewTimelineView(repo *scm.Repository, opts *scm.LogOptions, filter TimelineFilter) (*TimelineView, error) {
	producer, err := timeline.NewProducer(repo, opts, nil)
	if err != nil {
		return nil, fmt.Errorf("open timeline: %w", err)
	}

	if match := filter.matcher(); match != nil {
		producer.SetFilter(match)
	}

	return &TimelineView{
		repo:     repo,
		producer: producer,
		queue:    artifact.NewQueue(),
		filter:   filter,
		styles:   style.NewSet(style.DefaultDiffRules()...),
		vp:       viewport{height: 20},
	}, nil
}

// SetMetrics attaches an instrument set the underlying producer records
// commit production against. Call before Init.
func (v *TimelineView) SetMetrics(m *metrics.Metrics) {
	v.producer.SetMetrics(m)
}

func (v *TimelineView) Kind() Kind   { return KindTimeline }
func (v *TimelineView) Title() string { return "timeline" }

func (v *TimelineView) Close() {
	if v.cancel != nil {
		v.cancel()
	}
}

// requestMore asks the producer for up to n more rows, clamped so the queue
// never exceeds filter.Limit (0 means unbounded).
func (v *TimelineView) requestMore(n int) {
	if v.filter.Limit > 0 {
		remaining := v.filter.Limit - v.queue.Len()
		if remaining <= 0 {
			v.producerEOF = true

			return
		}

		if n > remaining {
			n = remaining
		}
	}

	v.producer.Replenish(n)
}

func (v *TimelineView) Init() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel

	go v.producer.Run(ctx)

	v.requestMore(v.vp.height + 1)

	return v.waitForBatch()
}

func (v *TimelineView) waitForBatch() tea.Cmd {
	out := v.producer.Out()

	return func() tea.Msg {
		batch, ok := <-out
		if !ok {
			return producerDoneMsg{}
		}

		return batchMsg(batch)
	}
}

func (v *TimelineView) waitForSearchStatus() tea.Cmd {
	ch := v.producer.SearchStatus()

	return func() tea.Msg {
		status, ok := <-ch
		if !ok {
			return nil
		}

		return searchStatusMsg(status)
	}
}

func (v *TimelineView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case batchMsg:
		for _, a := range m.Artifacts {
			v.queue.Append(a)
		}

		v.vp.clamp(v.queue.Len())

		return v, v.waitForBatch()
	case producerDoneMsg:
		v.producerEOF = true

		return v, nil
	case searchStatusMsg:
		return v, nil
	case Resize:
		v.vp.height = m.Height - 2
		v.vp.clamp(v.queue.Len())

		return v, nil
	case tea.KeyMsg:
		return v.handleKey(m)
	default:
		return v, nil
	}
}

func (v *TimelineView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "j", "down", "k", "up", "pgdown", "pgup", "home", "end":
		if v.vp.move(key, v.queue.Len()) {
			v.ensureMaterialized()
		}

		return v, nil
	case "c":
		v.styles.Toggle()

		return v, nil
	case "enter":
		if entry, ok := v.selectedEntry(); ok {
			v.successor = NewDiffView(v.repo, entry.Artifact, v.previousArtifact(entry.Index))
		}

		return v, nil
	case "t":
		if entry, ok := v.selectedEntry(); ok {
			tv, err := NewTreeView(v.repo, entry.Artifact.Hash)
			if err == nil {
				v.successor = tv
			}
		}

		return v, nil
	default:
		return v, nil
	}
}

// ensureMaterialized asks the producer for more rows when the viewport has
// scrolled to the edge of what's been produced so far.
func (v *TimelineView) ensureMaterialized() {
	needed := v.vp.first + v.vp.height - v.queue.Len()
	if needed > 0 && !v.producerEOF {
		v.requestMore(needed)
	}
}

func (v *TimelineView) selectedEntry() (artifact.QueueEntry, bool) {
	if v.vp.selected < 0 || v.vp.selected >= v.queue.Len() {
		return artifact.QueueEntry{}, false
	}

	return v.queue.At(v.vp.selected), true
}

func (v *TimelineView) previousArtifact(index int) *artifact.Artifact {
	if index+1 >= v.queue.Len() {
		return nil
	}

	return v.queue.At(index + 1).Artifact
}

// TakeSuccessor implements Successor: Enter opens a Diff View as a split
// child, 't' opens a Tree View taking over the stack.
func (v *TimelineView) TakeSuccessor() (View, bool, bool) {
	if v.successor == nil {
		return nil, false, false
	}

	s := v.successor
	v.successor = nil

	return s, s.Kind() == KindDiff, true
}

func (v *TimelineView) View() string {
	var b strings.Builder

	total := v.queue.Len()
	status := "loading"

	if v.producerEOF {
		status = "end"
	}

	fmt.Fprintf(&b, "checkin timeline  [%d/%d]  %s\n", v.vp.selected+1, total, status)

	end := v.vp.first + v.vp.height
	if end > total {
		end = total
	}

	for i := v.vp.first; i < end; i++ {
		entry := v.queue.At(i)
		line := formatTimelineRow(entry.Artifact, v.filter.UTC)
		line = v.styles.Apply(line)

		if i == v.vp.selected {
			line = selectedStyle.Render(line)
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

// SearchInit resets the match cursor ahead of a new pattern.
func (v *TimelineView) SearchInit() {
	v.matched = v.vp.selected
	v.matchedSet = false
}

// SearchNext scans the artifact.Queue for a row matching pattern against
// user/hash/comment/branch, requesting more rows from the producer when the
// queue runs out before a match is found.
func (v *TimelineView) SearchNext(pattern string, forward bool) SearchStatus {
	re, err := compilePattern(pattern)
	if err != nil {
		return SearchNoMatchStatus
	}

	start := v.matched + 1
	if !v.matchedSet {
		start = v.vp.selected
	}

	if !forward {
		start = v.matched - 1
	}

	for i := start; i >= 0 && i < v.queue.Len(); {
		a := v.queue.At(i).Artifact

		if re.MatchString(a.User) || re.MatchString(a.Hash) || re.MatchString(a.Comment) || re.MatchString(a.Branch) {
			v.matched = i
			v.matchedSet = true
			v.vp.selected = i
			v.vp.clamp(v.queue.Len())

			return SearchComplete
		}

		if forward {
			i++
		} else {
			i--
		}
	}

	if forward && !v.producerEOF {
		v.requestMore(v.vp.height)

		return SearchWaiting
	}

	return SearchNoMatchStatus
}

func formatTimelineRow(a *artifact.Artifact, utc bool) string {
	user := a.User
	if at := strings.Index(user, "@"); at > 0 && strings.Contains(user, "<") {
		user = strings.TrimPrefix(user, "<")
		user = user[:strings.Index(user, "@")]
	}

	comment := strings.SplitN(a.Comment, "\n", 2)[0]

	ts := a.Timestamp
	if utc {
		ts = ts.UTC()
	}

	return fmt.Sprintf("%s %.8s %-12s %s", ts.Format("2006-01-02 15:04"), a.Hash, user, comment)
}
