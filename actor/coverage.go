// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package actor

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"sync"

	goset "github.com/deckarep/golang-set/v2"
)

// Transition is a state change observed during a run
type Transition struct {
	Definition string `json:"definition"`
	From       string `json:"from"`
	Event      string `json:"event"`
	To         string `json:"to"`
}

// DefinitionCoverage summarizes the coverage of one definition
type DefinitionCoverage struct {
	Name      string   `json:"name"`
	States    []string `json:"states"`
	Visited   []string `json:"visited"`
	Unvisited []string `json:"unvisited"`
}

// Coverage records the states entered and the transitions taken by the state
// machines of one or several iterations. It is safe for concurrent use so that
// parallel workers can merge into a shared report.
type Coverage struct {
	mu          sync.Mutex
	declared    map[string][]string
	visited     map[string]goset.Set[string]
	transitions goset.Set[Transition]
}

// NewCoverage creates an empty coverage report
func NewCoverage() *Coverage {
	return &Coverage{
		declared:    make(map[string][]string),
		visited:     make(map[string]goset.Set[string]),
		transitions: goset.NewThreadUnsafeSet[Transition](),
	}
}

func (c *Coverage) register(def *Definition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.declared[def.name]; ok {
		return
	}
	c.declared[def.name] = def.States()
	c.visited[def.name] = goset.NewThreadUnsafeSet[string]()
}

func (c *Coverage) visit(definition, state string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	visited, ok := c.visited[definition]
	if !ok {
		visited = goset.NewThreadUnsafeSet[string]()
		c.visited[definition] = visited
	}
	visited.Add(state)
}

func (c *Coverage) transition(definition, from, event, to string) {
	c.mu.Lock()
	c.transitions.Add(Transition{Definition: definition, From: from, Event: event, To: to})
	c.mu.Unlock()
	c.visit(definition, to)
}

// Merge adds the coverage of other into c
func (c *Coverage) Merge(other *Coverage) {
	if other == nil || other == c {
		return
	}

	other.mu.Lock()
	declared := make(map[string][]string, len(other.declared))
	for name, states := range other.declared {
		declared[name] = states
	}
	visited := make(map[string][]string, len(other.visited))
	for name, states := range other.visited {
		visited[name] = states.ToSlice()
	}
	transitions := other.transitions.ToSlice()
	other.mu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	for name, states := range declared {
		if _, ok := c.declared[name]; !ok {
			c.declared[name] = states
		}
	}
	for name, states := range visited {
		set, ok := c.visited[name]
		if !ok {
			set = goset.NewThreadUnsafeSet[string]()
			c.visited[name] = set
		}
		set.Append(states...)
	}
	c.transitions.Append(transitions...)
}

// Definitions returns the coverage of every definition, sorted by name
func (c *Coverage) Definitions() []DefinitionCoverage {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]DefinitionCoverage, 0, len(c.declared))
	for name, states := range c.declared {
		visited := c.visited[name]
		entry := DefinitionCoverage{
			Name:      name,
			States:    slices.Clone(states),
			Visited:   make([]string, 0, len(states)),
			Unvisited: make([]string, 0),
		}
		for _, state := range states {
			if visited != nil && visited.Contains(state) {
				entry.Visited = append(entry.Visited, state)
				continue
			}
			entry.Unvisited = append(entry.Unvisited, state)
		}
		out = append(out, entry)
	}

	slices.SortFunc(out, func(a, b DefinitionCoverage) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Transitions returns the observed transitions in a stable order
func (c *Coverage) Transitions() []Transition {
	c.mu.Lock()
	out := c.transitions.ToSlice()
	c.mu.Unlock()

	slices.SortFunc(out, func(a, b Transition) int {
		return cmp.Or(
			cmp.Compare(a.Definition, b.Definition),
			cmp.Compare(a.From, b.From),
			cmp.Compare(a.Event, b.Event),
			cmp.Compare(a.To, b.To))
	})
	return out
}

// StateCoverage returns the ratio of declared states that were visited
func (c *Coverage) StateCoverage() float64 {
	var total, visited int
	for _, entry := range c.Definitions() {
		total += len(entry.States)
		visited += len(entry.Visited)
	}
	if total == 0 {
		return 0
	}
	return float64(visited) / float64(total)
}

// WriteTo writes a human readable coverage report
func (c *Coverage) WriteTo(w io.Writer) (int64, error) {
	var written int64
	write := func(format string, args ...any) error {
		n, err := fmt.Fprintf(w, format, args...)
		written += int64(n)
		return err
	}

	if err := write("state coverage: %.1f%%\n", 100*c.StateCoverage()); err != nil {
		return written, err
	}
	for _, entry := range c.Definitions() {
		if err := write("%s: %d/%d states\n", entry.Name, len(entry.Visited), len(entry.States)); err != nil {
			return written, err
		}
		for _, state := range entry.Unvisited {
			if err := write("  not visited: %s\n", state); err != nil {
				return written, err
			}
		}
	}
	for _, tr := range c.Transitions() {
		if err := write("  %s: %s --%s--> %s\n", tr.Definition, tr.From, tr.Event, tr.To); err != nil {
			return written, err
		}
	}
	return written, nil
}
