// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// NewDispatcherFromProvider creates a Dispatcher on a shared GPU device
// from an external provider (e.g. gogpu). The provider must implement
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue,
// so the fractal pass shares the window's device instead of opening a
// second one.
func NewDispatcherFromProvider(provider any, width, height uint32) (*Dispatcher, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("fractal gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("fractal gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("fractal gpu: provider HalQueue is not hal.Queue")
	}
	return NewDispatcher(device, queue, width, height), nil
}
