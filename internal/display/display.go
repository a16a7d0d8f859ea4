// Package display implements the stable-index display model: an
// append-only backing store of scan results plus a separately
// sortable/filterable view over it, so that size completions and
// keyboard input never need to resolve positions, only stable indices.
// There is no teacher analogue for an interactive model; this is built
// directly from the append/rebuild/sort contract the walker and event
// loop share, using samber/lo to collect the marked indices.
package display

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/cache-sweep/cachesweep/internal/model"
)

// FilterKind selects which rows of results are eligible for view.
type FilterKind int

const (
	FilterAll FilterKind = iota
	FilterByTarget
	FilterBySearch
)

// Filter is the active row filter.
type Filter struct {
	Kind  FilterKind
	Value string // target name for ByTarget, substring for BySearch
}

// SortKey selects how view is ordered.
type SortKey int

const (
	SortSizeDesc SortKey = iota
	SortPathAsc
	SortAgeOldestFirst
)

// Model is the event loop's exclusive, single-owner view of scan state.
// No method is safe for concurrent use; all calls happen on the event
// loop's goroutine.
type Model struct {
	results     []model.Result
	sizeState   []model.SizeState
	deleteState []model.DeleteState

	view   []int
	cursor int
	marks  map[int]struct{}

	filter  Filter
	sortKey SortKey

	needsSort   bool
	needsFilter bool
}

// New returns an empty Model with no filter (all rows visible) and the
// given initial sort key.
func New(sortKey SortKey) *Model {
	return &Model{
		marks:   make(map[int]struct{}),
		sortKey: sortKey,
	}
}

// Append assigns stable indices to each entry in batch, appends them to
// the backing store with Pending size state and Alive delete state, and
// returns the assigned indices so the caller can submit size-computation
// tasks for each. The new indices are appended to view if they pass the
// active filter; needs_sort is set whenever at least one row is appended,
// since new rows must be placed by sort order.
func (m *Model) Append(batch []model.Result) []int {
	indices := make([]int, 0, len(batch))
	for _, r := range batch {
		idx := len(m.results)
		r.StableIndex = idx
		m.results = append(m.results, r)
		m.sizeState = append(m.sizeState, model.SizeState{Kind: model.SizePending})
		m.deleteState = append(m.deleteState, model.DeleteState{Kind: model.DeleteAlive})
		indices = append(indices, idx)

		if m.passesFilter(r) {
			m.view = append(m.view, idx)
		}
	}
	if len(indices) > 0 {
		m.needsSort = true
	}
	return indices
}

// UpdateSize applies a size completion for the given stable index. If the
// active sort key is Size and the index is currently visible, a re-sort
// is scheduled.
func (m *Model) UpdateSize(idx int, state model.SizeState) {
	if idx < 0 || idx >= len(m.sizeState) {
		return
	}
	m.sizeState[idx] = state
	if m.sortKey == SortSizeDesc && m.inView(idx) {
		m.needsSort = true
	}
}

func (m *Model) inView(idx int) bool {
	for _, v := range m.view {
		if v == idx {
			return true
		}
	}
	return false
}

// SetFilter installs a new filter and schedules a view rebuild.
func (m *Model) SetFilter(f Filter) {
	m.filter = f
	m.needsFilter = true
}

// MarkDirty schedules a view rebuild without changing the filter or sort
// key. The rebuild reapplies the current Filter and drops Deleted rows;
// passesFilter does not look at a result's Sensitive flag.
func (m *Model) MarkDirty() {
	m.needsFilter = true
}

// SetSortKey installs a new sort key and schedules a re-sort.
func (m *Model) SetSortKey(k SortKey) {
	m.sortKey = k
	m.needsSort = true
}

// Rebuild performs the deferred filter/sort pass, intended to run once
// per tick. It is a no-op unless needs_filter or needs_sort is set. After
// any rebuild, cursor is clamped into [0, len(view)), preserving the
// previously selected stable index when it is still visible, or moving
// to the closest smaller position otherwise.
func (m *Model) Rebuild() {
	if !m.needsFilter && !m.needsSort {
		return
	}

	var selected int
	hadSelection := len(m.view) > 0
	if hadSelection {
		selected = m.view[m.cursor]
	}

	if m.needsFilter {
		m.rebuildView()
		m.needsFilter = false
	}
	if m.needsSort {
		m.sortView()
		m.needsSort = false
	}

	m.clampCursor(selected, hadSelection)
}

func (m *Model) rebuildView() {
	view := make([]int, 0, len(m.results))
	for i, r := range m.results {
		if m.deleteState[i].Kind == model.DeleteDeleted {
			continue
		}
		if m.passesFilter(r) {
			view = append(view, i)
		}
	}
	m.view = view
}

func (m *Model) passesFilter(r model.Result) bool {
	switch m.filter.Kind {
	case FilterByTarget:
		return r.Target == m.filter.Value
	case FilterBySearch:
		return strings.Contains(r.Path, m.filter.Value)
	default:
		return true
	}
}

func (m *Model) sortView() {
	switch m.sortKey {
	case SortSizeDesc:
		sortBy(m.view, func(a, b int) bool {
			sa, sb := m.sizeState[a], m.sizeState[b]
			if sa.Kind == model.SizeReady && sb.Kind == model.SizeReady {
				return sa.Bytes > sb.Bytes
			}
			if sa.Kind == model.SizeReady {
				return true
			}
			if sb.Kind == model.SizeReady {
				return false
			}
			return a < b
		})
	case SortPathAsc:
		sortBy(m.view, func(a, b int) bool { return m.results[a].Path < m.results[b].Path })
	case SortAgeOldestFirst:
		sortBy(m.view, func(a, b int) bool { return m.results[a].ModTime.Before(m.results[b].ModTime) })
	}
}

func sortBy(s []int, less func(a, b int) bool) {
	sort.Slice(s, func(i, j int) bool { return less(s[i], s[j]) })
}

func (m *Model) clampCursor(selected int, hadSelection bool) {
	if len(m.view) == 0 {
		m.cursor = 0
		return
	}
	if hadSelection {
		for i, idx := range m.view {
			if idx == selected {
				m.cursor = i
				return
			}
		}
		// No longer present: move to the closest smaller position.
		if m.cursor >= len(m.view) {
			m.cursor = len(m.view) - 1
		}
		return
	}
	if m.cursor >= len(m.view) {
		m.cursor = len(m.view) - 1
	}
}

// View returns the currently visible stable indices, in display order.
func (m *Model) View() []int { return m.view }

// Cursor returns the current cursor position within View().
func (m *Model) Cursor() int { return m.cursor }

// MoveCursor shifts the cursor by delta, clamped to the view bounds.
func (m *Model) MoveCursor(delta int) {
	if len(m.view) == 0 {
		return
	}
	next := m.cursor + delta
	if next < 0 {
		next = 0
	}
	if next >= len(m.view) {
		next = len(m.view) - 1
	}
	m.cursor = next
}

// CurrentStableIndex resolves the cursor to a stable index, or -1 if the
// view is empty.
func (m *Model) CurrentStableIndex() int {
	if len(m.view) == 0 {
		return -1
	}
	return m.view[m.cursor]
}

// ToggleMark flips the mark state of a stable index in multi-select mode.
func (m *Model) ToggleMark(idx int) {
	if _, ok := m.marks[idx]; ok {
		delete(m.marks, idx)
		return
	}
	m.marks[idx] = struct{}{}
}

// Marks returns the set of marked stable indices.
func (m *Model) Marks() []int {
	return lo.Keys(m.marks)
}

// Result returns the immutable Result at a stable index.
func (m *Model) Result(idx int) model.Result { return m.results[idx] }

// SizeState returns the current size lifecycle at a stable index.
func (m *Model) SizeState(idx int) model.SizeState { return m.sizeState[idx] }

// DeleteState returns the current delete lifecycle at a stable index.
func (m *Model) DeleteState(idx int) model.DeleteState { return m.deleteState[idx] }

// MarkDeleting transitions a row into the Deleting state ahead of an
// asynchronous Deleter call.
func (m *Model) MarkDeleting(idx int) {
	m.deleteState[idx] = model.DeleteState{Kind: model.DeleteDeleting}
}

// MarkDeleted transitions a row into the Deleted state and schedules a
// view rebuild so it disappears from view on the next tick.
func (m *Model) MarkDeleted(idx int) {
	m.deleteState[idx] = model.DeleteState{Kind: model.DeleteDeleted}
	m.needsFilter = true
}

// MarkDeleteFailed records a failed deletion attempt with its reason.
func (m *Model) MarkDeleteFailed(idx int, reason string) {
	m.deleteState[idx] = model.DeleteState{Kind: model.DeleteFailed, Reason: reason}
}

// MarkRefused records that a deletion was refused (e.g. a sensitive path
// without an override) without ever invoking the deleter.
func (m *Model) MarkRefused(idx int, reason string) {
	m.deleteState[idx] = model.DeleteState{Kind: model.DeleteRefused, Reason: reason}
}

// Len returns the total number of results ever appended, including
// logically deleted ones still held in the backing store.
func (m *Model) Len() int { return len(m.results) }

// TotalReady sums bytes and file counts across all Ready size states,
// for the aggregated-summary sinks.
func (m *Model) TotalReady() (bytes int64, files int) {
	for _, s := range m.sizeState {
		if s.Kind == model.SizeReady {
			bytes += s.Bytes
			files += s.FileCount
		}
	}
	return bytes, files
}
