package dispatch

import "sort"

// PendingSet is the ordered work list for one cycle, computed from a
// snapshot of the canonical tables. Never-run annotations come first so
// the catalog converges toward full coverage before retry churn consumes
// the dispatch budget; failed annotations follow, sorted, for retry.
type PendingSet struct {
	NeverRun []string
	Failed   []string
}

// IDs returns the full pending sequence: sorted never-run ids followed by
// sorted failed ids. The total order is what makes chunk assignment
// reproducible run-to-run on unchanged state.
func (p PendingSet) IDs() []string {
	out := make([]string, 0, len(p.NeverRun)+len(p.Failed))
	out = append(out, p.NeverRun...)
	out = append(out, p.Failed...)
	return out
}

func (p PendingSet) Len() int { return len(p.NeverRun) + len(p.Failed) }

// Resolve computes the pending set: all − success − attempted are never
// run, attempted − success are failed retries. An id with a success row
// never comes back, regardless of its run log history.
func Resolve(all, success, attempted map[string]struct{}) PendingSet {
	var p PendingSet
	for id := range all {
		if _, ok := success[id]; ok {
			continue
		}
		if _, ok := attempted[id]; ok {
			continue
		}
		p.NeverRun = append(p.NeverRun, id)
	}
	for id := range attempted {
		if _, ok := success[id]; ok {
			continue
		}
		p.Failed = append(p.Failed, id)
	}
	sort.Strings(p.NeverRun)
	sort.Strings(p.Failed)
	return p
}
