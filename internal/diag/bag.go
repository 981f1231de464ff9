package diag

import (
	"fmt"
	"math"
	"sort"
)

type Bag struct {
	items []Diagnostic
	max   uint16
}

// NewBag creates a bag that keeps at most limit diagnostics.
func NewBag(limit int) *Bag {
	if limit <= 0 || limit > math.MaxUint16 {
		limit = math.MaxUint16
	}
	return &Bag{
		items: make([]Diagnostic, 0, min(limit, 64)),
		max:   uint16(limit),
	}
}

// Add appends d unless the limit is reached; it reports whether d was kept.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() uint16 {
	return b.max
}

// HasErrors reports whether any diagnostic is an error.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any diagnostic is a warning or worse.
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the backing slice; callers must not modify it.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge appends other's diagnostics, growing the limit when needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	newTotal := min(len(b.items)+len(other.items), math.MaxUint16)
	if newTotal > int(b.max) {
		b.max = uint16(newTotal)
	}
	b.items = append(b.items, other.items...)
}

// Sort orders diagnostics by file, start, end, severity (desc) and code.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})
}

// Dedup drops diagnostics repeating an earlier Code+Primary pair.
func (b *Bag) Dedup() {
	seen := make(map[string]bool)
	newitems := make([]Diagnostic, 0, len(b.items))
	for _, d := range b.items {
		key := fmt.Sprintf("%s:%s", d.Code.String(), d.Primary.String())
		if seen[key] {
			continue
		}
		seen[key] = true
		newitems = append(newitems, d)
	}
	b.items = newitems
}

// FirstError returns the first error-level diagnostic.
func (b *Bag) FirstError() (Diagnostic, bool) {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return b.items[i], true
		}
	}
	return Diagnostic{}, false
}
