package result

import (
	"sort"
	"sync"
)

// Outcome is the result of running one scenario.
type Outcome struct {
	Name        string
	Steps       int      // instructions executed
	Failures    []string // one line per mismatched expectation
	Err         error    // execution error, if the run stopped early
	Fingerprint uint64   // register file + memory after the run
}

// Passed reports whether the scenario met every expectation.
func (o Outcome) Passed() bool {
	return o.Err == nil && len(o.Failures) == 0
}

// Table collects outcomes from concurrent runners.
type Table struct {
	mu       sync.Mutex
	outcomes []Outcome
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{}
}

// Add records an outcome.
func (t *Table) Add(o Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outcomes = append(t.outcomes, o)
}

// Outcomes returns a copy of all outcomes, failures first, then by name.
func (t *Table) Outcomes() []Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make([]Outcome, len(t.outcomes))
	copy(result, t.outcomes)
	sort.Slice(result, func(i, j int) bool {
		pi, pj := result[i].Passed(), result[j].Passed()
		if pi != pj {
			return !pi
		}
		return result[i].Name < result[j].Name
	})
	return result
}

// Failed returns the number of outcomes that did not pass.
func (t *Table) Failed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for i := range t.outcomes {
		if !t.outcomes[i].Passed() {
			n++
		}
	}
	return n
}

// Len returns the number of outcomes.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.outcomes)
}
