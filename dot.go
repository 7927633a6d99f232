// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/gogpu/framegraph/device"
)

// dotEscaper quotes text for a double-quoted DOT string.
var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// WriteDOT writes the executed frame as a Graphviz digraph. Passes are
// grouped into one cluster per queue; an edge runs from the pass that
// last touched a subresource to the pass that synchronizes on it, dashed
// when it crosses queues.
func (g *Graph) WriteDOT(w io.Writer) error {
	if !g.executed {
		return ErrNotExecuted
	}
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "digraph %q {\n", g.opts.label)
	fmt.Fprintln(bw, "\trankdir=LR;")
	fmt.Fprintln(bw, "\tnode [shape=box];")

	for q := range device.QueueCount {
		queue := device.QueueType(q)
		var members []int
		for i := range g.passes {
			if g.passes[i].queue == queue {
				members = append(members, i)
			}
		}
		if len(members) == 0 {
			continue
		}
		fmt.Fprintf(bw, "\tsubgraph cluster_%v {\n\t\tlabel=%q;\n", queue, queue.String())
		for _, i := range members {
			p := &g.passes[i]
			// Graphviz DOT: use "\l" as a newline to obtain left-aligned text.
			fmt.Fprintf(bw, "\t\tp%d [label=\"%s\\lbatch:%d\\lsignal:%d\\l\"];\n", i, dotEscaper.Replace(p.name), p.batch, p.signalValue)
		}
		fmt.Fprintln(bw, "\t}")
	}

	type edge struct{ from, to int }
	labels := make(map[edge]map[string]struct{})
	for i := range g.passes {
		for _, b := range g.passes[i].before {
			if b.Producer < 0 {
				continue
			}
			e := edge{b.Producer, i}
			if labels[e] == nil {
				labels[e] = make(map[string]struct{})
			}
			labels[e][g.resources[b.Resource.index()].name] = struct{}{}
		}
	}
	edges := make([]edge, 0, len(labels))
	for e := range labels {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].from != edges[j].from {
			return edges[i].from < edges[j].from
		}
		return edges[i].to < edges[j].to
	})
	for _, e := range edges {
		names := make([]string, 0, len(labels[e]))
		for n := range labels[e] {
			names = append(names, n)
		}
		sort.Strings(names)
		style := ""
		if g.passes[e.from].queue != g.passes[e.to].queue {
			style = ", style=dashed"
		}
		fmt.Fprintf(bw, "\tp%d -> p%d [label=%q%s];\n", e.from, e.to, fmt.Sprint(names), style)
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}
