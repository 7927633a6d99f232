// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package framegraph

import (
	"testing"
	"time"

	"github.com/gogpu/framegraph/device"
)

// mockDescriptors is a test registry for DI testing.
type mockDescriptors struct{}

func (mockDescriptors) RegisterImage(device.DescriptorKind, device.ImageView) uint32   { return 1 }
func (mockDescriptors) RegisterBuffer(device.DescriptorKind, device.BufferView) uint32 { return 1 }
func (mockDescriptors) Release(device.DescriptorKind, uint32)                          {}

func TestGraphOptions(t *testing.T) {
	reg := mockDescriptors{}

	tests := []struct {
		name string
		opts []Option
		want graphOptions
	}{
		{
			name: "defaults",
			want: graphOptions{framesInFlight: 2, waitTimeout: 5 * time.Second, label: "framegraph"},
		},
		{
			name: "three frames",
			opts: []Option{WithFramesInFlight(3)},
			want: graphOptions{framesInFlight: 3, waitTimeout: 5 * time.Second, label: "framegraph"},
		},
		{
			name: "registry and label",
			opts: []Option{WithDescriptorRegistry(reg), WithLabel("ui")},
			want: graphOptions{framesInFlight: 2, descriptors: reg, waitTimeout: 5 * time.Second, label: "ui"},
		},
		{
			name: "timeout",
			opts: []Option{WithWaitTimeout(time.Millisecond)},
			want: graphOptions{framesInFlight: 2, waitTimeout: time.Millisecond, label: "framegraph"},
		},
		{
			name: "non-positive timeout ignored",
			opts: []Option{WithWaitTimeout(0), WithWaitTimeout(-time.Second)},
			want: graphOptions{framesInFlight: 2, waitTimeout: 5 * time.Second, label: "framegraph"},
		},
		{
			name: "last option wins",
			opts: []Option{WithLabel("a"), WithLabel("b")},
			want: graphOptions{framesInFlight: 2, waitTimeout: 5 * time.Second, label: "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := defaultOptions()
			for _, opt := range tt.opts {
				opt(&got)
			}
			if got != tt.want {
				t.Errorf("options = %+v, want %+v", got, tt.want)
			}
		})
	}
}
