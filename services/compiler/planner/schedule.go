// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package planner

import "fmt"

// Node coloring for the iterative DFS.
const (
	white = iota // unvisited
	grey         // on the current DFS path
	black        // fully explored
)

// frame is one explicit DFS stack frame: the node and the index of the
// next dependency to descend into. An explicit stack keeps large graphs
// from blowing the goroutine stack.
type frame struct {
	id   string
	next int
}

// computeOrder runs the two-phase scheduler over the plan graph.
//
// Phase one walks every task with an iterative depth-first search,
// recording each cycle's full path the moment a grey node is re-entered.
// Phase two emits a reverse-finish-time topological order over the tasks
// not involved in any cycle, visiting roots in stable discovery order so
// equal-depth peers keep their declaration order.
//
// Dependencies on unknown task IDs are skipped with a warning rather than
// failing the plan.
func computeOrder(plan *Plan) (order []string, cycles [][]string, warnings []string) {
	excluded := make(map[string]bool)
	state := make(map[string]int, len(plan.Tasks))

	deps := func(id string) []string {
		var out []string
		for _, dep := range plan.Graph[id] {
			if _, ok := plan.byID[dep]; !ok {
				warnings = appendOnce(warnings,
					fmt.Sprintf("task %s depends on unknown task %s", id, dep))
				continue
			}
			out = append(out, dep)
		}
		return out
	}

	// Phase one: cycle detection.
	for _, t := range plan.Tasks {
		if state[t.ID] != white {
			continue
		}
		stack := []frame{{id: t.ID}}
		path := []string{t.ID}
		state[t.ID] = grey

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			ds := deps(top.id)

			if top.next >= len(ds) {
				state[top.id] = black
				stack = stack[:len(stack)-1]
				path = path[:len(path)-1]
				continue
			}

			dep := ds[top.next]
			top.next++

			switch state[dep] {
			case white:
				state[dep] = grey
				stack = append(stack, frame{id: dep})
				path = append(path, dep)
			case grey:
				// Back edge: the cycle is the path suffix from dep onward,
				// closed back on dep.
				start := 0
				for i, id := range path {
					if id == dep {
						start = i
						break
					}
				}
				cycle := append(append([]string(nil), path[start:]...), dep)
				cycles = append(cycles, cycle)
				for _, id := range cycle {
					excluded[id] = true
				}
			}
		}
	}

	// Phase two: topological order over the acyclic remainder. A task on
	// a cycle is excluded; a task whose dependency sits on a cycle still
	// generates, since the broken edge is already reported via the cycle
	// record. Postorder emission puts dependencies before dependents.
	visited := make(map[string]bool, len(plan.Tasks))

	for _, t := range plan.Tasks {
		if visited[t.ID] || excluded[t.ID] {
			continue
		}
		visited[t.ID] = true
		stack := []frame{{id: t.ID}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			ds := deps(top.id)

			if top.next >= len(ds) {
				order = append(order, top.id)
				stack = stack[:len(stack)-1]
				continue
			}

			dep := ds[top.next]
			top.next++
			if !visited[dep] && !excluded[dep] {
				visited[dep] = true
				stack = append(stack, frame{id: dep})
			}
		}
	}

	return order, cycles, warnings
}

func appendOnce(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
