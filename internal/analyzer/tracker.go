package analyzer

import (
	"sort"
	"sync"
)

// maxUnresolvedSamples caps the diagnostic declarations kept per name
const maxUnresolvedSamples = 5

// UnresolvedSample is one declaration that referenced an unresolvable name
type UnresolvedSample struct {
	File       string `json:"file"`
	Descriptor string `json:"descriptor"`
	Value      string `json:"value"`
}

// UnresolvedVariable is the per-name summary in the unresolved report
type UnresolvedVariable struct {
	Name    string             `json:"name"`
	Total   int                `json:"total"`
	Files   map[string]int     `json:"files"`
	Samples []UnresolvedSample `json:"samples"`
}

// UnresolvedReport is the serializable run summary of unresolved references
type UnresolvedReport struct {
	Total     int                  `json:"total"`
	Variables []UnresolvedVariable `json:"variables"`
}

type unresolvedEntry struct {
	total   int
	files   map[string]int
	samples []UnresolvedSample
}

// UnresolvedTracker accumulates every unresolved or cyclic reference seen
// during one run. It is scoped to a RunContext, never a package global, so
// runs cannot leak into each other. Safe for concurrent recording.
type UnresolvedTracker struct {
	mu      sync.Mutex
	entries map[string]*unresolvedEntry
}

// NewUnresolvedTracker creates an empty tracker
func NewUnresolvedTracker() *UnresolvedTracker {
	return &UnresolvedTracker{entries: map[string]*unresolvedEntry{}}
}

// Record notes one unresolved reference to name from the given declaration
func (t *UnresolvedTracker) Record(name, file, descriptor, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[name]
	if !ok {
		entry = &unresolvedEntry{files: map[string]int{}}
		t.entries[name] = entry
	}
	entry.total++
	entry.files[file]++
	if len(entry.samples) < maxUnresolvedSamples {
		entry.samples = append(entry.samples, UnresolvedSample{
			File:       file,
			Descriptor: descriptor,
			Value:      value,
		})
	}
}

// Reset empties the tracker for reuse between runs
func (t *UnresolvedTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = map[string]*unresolvedEntry{}
}

// ToReport produces the serializable summary, variables sorted by name
func (t *UnresolvedTracker) ToReport() *UnresolvedReport {
	t.mu.Lock()
	defer t.mu.Unlock()

	report := &UnresolvedReport{Variables: []UnresolvedVariable{}}
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry := t.entries[name]
		files := make(map[string]int, len(entry.files))
		for file, count := range entry.files {
			files[file] = count
		}
		report.Total += entry.total
		report.Variables = append(report.Variables, UnresolvedVariable{
			Name:    name,
			Total:   entry.total,
			Files:   files,
			Samples: append([]UnresolvedSample(nil), entry.samples...),
		})
	}
	return report
}
