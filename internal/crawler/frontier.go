package crawler

// Frontier records, per page fingerprint, the labels taken during the
// current descent.
//
// Visits bracket their work with Acquire and Release. A page visited again
// while it is still on the stack shares the record set of the enclosing
// visit, so neither visit takes a label the other already took. The set is
// dropped when the outermost visit releases it.
type Frontier struct {
	entries map[Fingerprint]*frontierEntry
}

type frontierEntry struct {
	tried map[string]struct{}
	refs  int
}

// NewFrontier returns an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{entries: make(map[Fingerprint]*frontierEntry)}
}

// Acquire opens a visit of fp.
func (f *Frontier) Acquire(fp Fingerprint) {
	e, ok := f.entries[fp]
	if !ok {
		e = &frontierEntry{tried: make(map[string]struct{})}
		f.entries[fp] = e
	}
	e.refs++
}

// Tried reports whether label was already taken from fp.
func (f *Frontier) Tried(fp Fingerprint, label string) bool {
	e, ok := f.entries[fp]
	if !ok {
		return false
	}
	_, tried := e.tried[label]
	return tried
}

// TryLabel records label as taken from fp. It returns false when the label
// was already recorded. Recording a label for a page with no open visit
// opens one that only Release closes.
func (f *Frontier) TryLabel(fp Fingerprint, label string) bool {
	e, ok := f.entries[fp]
	if !ok {
		e = &frontierEntry{tried: make(map[string]struct{}), refs: 1}
		f.entries[fp] = e
	}
	if _, tried := e.tried[label]; tried {
		return false
	}
	e.tried[label] = struct{}{}
	return true
}

// Release closes a visit of fp. The records are dropped when no visit of
// fp remains open.
func (f *Frontier) Release(fp Fingerprint) {
	e, ok := f.entries[fp]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(f.entries, fp)
	}
}

// Len returns the number of pages with open visits.
func (f *Frontier) Len() int {
	return len(f.entries)
}
