package extract

import "fmt"

// Hoisted is one declaration moved out of the source into a CSS module.
type Hoisted struct {
	OriginalName string
	MangledName  string
	Content      string
	ModuleID     string
}

// Ledger is the naming state of one transform invocation. It is not safe for
// concurrent use and must not outlive the invocation.
type Ledger struct {
	counters map[string]int
	issued   map[string]struct{}
	reserved map[string]struct{}
	hoisted  []Hoisted
}

// NewLedger creates a ledger. reserved holds identifiers already present in
// the source; a mangled name equal to one of them is a collision.
func NewLedger(reserved []string) *Ledger {
	l := &Ledger{
		counters: make(map[string]int),
		issued:   make(map[string]struct{}),
		reserved: make(map[string]struct{}, len(reserved)),
	}
	for _, name := range reserved {
		l.reserved[name] = struct{}{}
	}
	return l
}

// Mangle issues the next name for original: original_0, original_1, ...
func (l *Ledger) Mangle(original string) (string, error) {
	count := l.counters[original]
	mangled := fmt.Sprintf("%s_%d", original, count)
	l.counters[original] = count + 1

	if _, taken := l.issued[mangled]; taken {
		return "", fmt.Errorf("%s already issued", mangled)
	}
	if _, taken := l.reserved[mangled]; taken {
		return "", fmt.Errorf("%s is already declared in this file", mangled)
	}

	l.issued[mangled] = struct{}{}
	return mangled, nil
}

// Hoist appends a declaration and returns its zero-based index.
func (l *Ledger) Hoist(h Hoisted) int {
	l.hoisted = append(l.hoisted, h)
	return len(l.hoisted) - 1
}

// Len is the number of hoisted declarations so far, which is also the index
// the next one will get.
func (l *Ledger) Len() int {
	return len(l.hoisted)
}

// Hoisted returns the declarations in discovery order.
func (l *Ledger) Hoisted() []Hoisted {
	out := make([]Hoisted, len(l.hoisted))
	copy(out, l.hoisted)
	return out
}
