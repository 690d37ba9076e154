package transform

import (
	"fmt"
	"sort"
	"sync"
)

// Frame is a column oriented batch of rows. Every column has NumRows values.
type Frame struct {
	NumRows int
	Columns map[string][]interface{}
}

func NewFrame(numRows int) Frame {
	return Frame{NumRows: numRows, Columns: make(map[string][]interface{})}
}

// ColumnNames returns the column names in sorted order.
func (f Frame) ColumnNames() []string {
	names := make([]string, 0, len(f.Columns))
	for name := range f.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Func computes output columns from the whole input batch in one call. Each
// returned column must have in.NumRows values; a nil cell means no value.
type Func func(in Frame) (map[string][]interface{}, error)

type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

func (r *Registry) Get(name string) (Func, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Run invokes fn and checks that every column it returns is aligned with the input.
func Run(fn Func, in Frame) (map[string][]interface{}, error) {
	out, err := fn(in)
	if err != nil {
		return nil, err
	}
	for name, column := range out {
		if len(column) != in.NumRows {
			return nil, fmt.Errorf("transform output %s has %d values, expected %d", name, len(column), in.NumRows)
		}
	}
	return out, nil
}
