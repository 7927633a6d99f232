// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/framegraph/device"
)

func TestWriteDOT(t *testing.T) {
	g, _ := newTestGraph(t, WithLabel("deferred"))

	var buf bytes.Buffer
	if err := g.WriteDOT(&buf); !errors.Is(err, ErrNotExecuted) {
		t.Fatalf("WriteDOT before Execute = %v, want ErrNotExecuted", err)
	}

	gbuf := g.DefaultImageView(g.CreateImage(colorImage("gbuffer")))
	light := g.DefaultImageView(g.CreateImage(colorImage("light")))
	g.AddPass("geometry", device.QueueGraphics, []Usage{Use(gbuf, device.StateColorAttachment)}, nil)
	g.AddPass("lighting", device.QueueGraphics, []Usage{
		Use(gbuf, device.StateTextureRead),
		Use(light, device.StateColorAttachment),
	}, nil)
	g.AddPass("blur", device.QueueCompute, []Usage{Use(light, device.StateTextureRead)}, nil)
	execute(t, g)

	if err := g.WriteDOT(&buf); err != nil {
		t.Fatalf("WriteDOT: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`digraph "deferred" {`,
		"subgraph cluster_graphics {",
		"subgraph cluster_compute {",
		`p0 [label="geometry\lbatch:0\lsignal:1\l"];`,
		`p0 -> p1 [label="[gbuffer]"];`,
		`p1 -> p2 [label="[light]", style=dashed];`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "cluster_transfer") {
		t.Error("empty transfer cluster emitted")
	}
}

func TestWriteDOTEscapesPassNames(t *testing.T) {
	g, _ := newTestGraph(t)
	v := g.DefaultImageView(g.CreateImage(colorImage("c")))
	g.AddPass(`shadow\"cascade"`, device.QueueGraphics, []Usage{Use(v, device.StateColorAttachment)}, nil)
	execute(t, g)

	var buf bytes.Buffer
	if err := g.WriteDOT(&buf); err != nil {
		t.Fatalf("WriteDOT: %v", err)
	}
	want := `p0 [label="shadow\\\"cascade\"\lbatch:0\lsignal:1\l"];`
	if !strings.Contains(buf.String(), want) {
		t.Errorf("DOT output missing %q:\n%s", want, buf.String())
	}
}
