// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"errors"
	"fmt"
)

// Graph errors.
var (
	// ErrWaitTimeout is returned when a frame slot's outstanding work does
	// not complete within the configured wait timeout.
	ErrWaitTimeout = errors.New("framegraph: timed out waiting for frame slot")

	// ErrClosed is returned by operations on a closed graph.
	ErrClosed = errors.New("framegraph: graph is closed")

	// ErrNotExecuted is returned by diagnostics that need a synthesized
	// frame when Execute has not run yet.
	ErrNotExecuted = errors.New("framegraph: frame not executed")
)

// invariant panics with a framegraph-prefixed message. It reports
// programmer errors: stale handles, wrong resource kinds, unsupported
// queues and calls out of lifecycle order.
func invariant(format string, args ...any) {
	panic(fmt.Sprintf("framegraph: "+format, args...))
}
