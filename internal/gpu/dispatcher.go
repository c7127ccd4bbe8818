// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu implements the fractal compute pass on the wgpu HAL. It
// compiles the embedded WGSL shader, owns the per-frame GPU buffers,
// and satisfies render.PassRenderer for the orchestrator.
package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fractal/render"
)

//go:embed shaders/fractal.wgsl
var shaderFractal string

const (
	// fractalWGSize is the workgroup edge length; the shader dispatches
	// 16x16 threads per workgroup. Matches @workgroup_size in fractal.wgsl.
	fractalWGSize = 16

	// fenceTimeout is the maximum time to wait for GPU work to complete.
	fenceTimeout = 5 * time.Second
)

// fractalConfig is the uniform parameter block for the fractal shader.
// This struct must match the Config struct in fractal.wgsl: 20
// consecutive 32-bit words, with the two threshold groups at 16-byte
// aligned offsets (32 and 48).
type fractalConfig struct {
	XMin, XMax     float32
	YMin, YMax     float32
	Width, Height  float32
	MaxIterations  uint32
	Mandelbrot     uint32
	ThresholdsLow  [4]uint32
	ThresholdsHigh [4]uint32
	ThresholdMax   uint32
	Function       uint32
	Colorize       uint32
	Scheme         uint32
}

// sizeInBytes returns the byte size of fractalConfig: 20 words = 80 bytes.
func (c fractalConfig) sizeInBytes() uint64 {
	return 20 * 4
}

// toBytes serializes fractalConfig to a byte slice in little-endian
// format, in the field order of the WGSL Config struct.
func (c fractalConfig) toBytes() []byte {
	buf := make([]byte, c.sizeInBytes())
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], math.Float32bits(c.XMin))
	le.PutUint32(buf[4:8], math.Float32bits(c.XMax))
	le.PutUint32(buf[8:12], math.Float32bits(c.YMin))
	le.PutUint32(buf[12:16], math.Float32bits(c.YMax))
	le.PutUint32(buf[16:20], math.Float32bits(c.Width))
	le.PutUint32(buf[20:24], math.Float32bits(c.Height))
	le.PutUint32(buf[24:28], c.MaxIterations)
	le.PutUint32(buf[28:32], c.Mandelbrot)
	for i, t := range c.ThresholdsLow {
		le.PutUint32(buf[32+i*4:36+i*4], t)
	}
	for i, t := range c.ThresholdsHigh {
		le.PutUint32(buf[48+i*4:52+i*4], t)
	}
	le.PutUint32(buf[64:68], c.ThresholdMax)
	le.PutUint32(buf[68:72], c.Function)
	le.PutUint32(buf[72:76], c.Colorize)
	le.PutUint32(buf[76:80], c.Scheme)
	return buf
}

// configFromParams maps the orchestrator's pass parameters onto the
// shader uniform layout.
func configFromParams(p *render.Params) fractalConfig {
	return fractalConfig{
		XMin:           p.XMin,
		XMax:           p.XMax,
		YMin:           p.YMin,
		YMax:           p.YMax,
		Width:          p.Width,
		Height:         p.Height,
		MaxIterations:  p.MaxIterations,
		Mandelbrot:     p.Mandelbrot,
		ThresholdsLow:  p.ThresholdsLow,
		ThresholdsHigh: p.ThresholdsHigh,
		ThresholdMax:   p.MaxThreshold,
		Function:       p.Function,
		Colorize:       p.Colorize,
		Scheme:         p.Scheme,
	}
}

// frameBuffers owns the GPU buffers shared by every pass: the uniform
// config, the two shader outputs, and the staging buffer for readback.
// The surface size is fixed, so they are allocated once in Init and
// re-bound each frame rather than reallocated.
type frameBuffers struct {
	// Config is the uniform buffer containing fractalConfig.
	// Bound at group(0) binding(0).
	Config hal.Buffer

	// Colors holds one packed RGBA u32 per pixel (R in the low byte).
	// Written by the shader at binding(1), copied to Staging for readback.
	Colors hal.Buffer

	// Iterations holds one (count u32, escaped u32) pair per pixel.
	// Written by the shader at binding(2), copied to Staging for readback.
	Iterations hal.Buffer

	// Staging is the CPU-readable buffer both outputs are copied into.
	// Sized for the larger of the two.
	Staging hal.Buffer
}

// Dispatcher runs the fractal compute pass. It is created once per
// process with a fixed surface size, initialized with Init, and driven
// through the render.PassRenderer methods.
type Dispatcher struct {
	mu sync.Mutex

	device hal.Device
	queue  hal.Queue

	width, height uint32

	module   hal.ShaderModule
	bgLayout hal.BindGroupLayout
	layout   hal.PipelineLayout
	pipeline hal.ComputePipeline

	bufs frameBuffers

	initialized bool
}

var _ render.PassRenderer = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher attached to the given HAL device
// and queue for a surface of the given pixel size. Init must be called
// before the first Render.
func NewDispatcher(device hal.Device, queue hal.Queue, width, height uint32) *Dispatcher {
	return &Dispatcher{
		device: device,
		queue:  queue,
		width:  width,
		height: height,
	}
}

// Init compiles the shader, creates the compute pipeline, and allocates
// the frame buffers. Safe to call multiple times; subsequent calls are
// no-ops.
func (d *Dispatcher) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized {
		return nil
	}

	spirv, err := compileShaderToSPIRV(shaderFractal)
	if err != nil {
		return fmt.Errorf("fractal gpu: %w", err)
	}
	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "fractal",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("fractal gpu: create shader module: %w", err)
	}
	d.module = module

	// @binding(0) uniform config
	// @binding(1) storage(read_write) colors
	// @binding(2) storage(read_write) iterations
	storageRW := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
		}
	}
	bgLayout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "fractal_bgl",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageCompute,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			storageRW(1),
			storageRW(2),
		},
	})
	if err != nil {
		d.destroyPartialInit()
		return fmt.Errorf("fractal gpu: create bind group layout: %w", err)
	}
	d.bgLayout = bgLayout

	layout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "fractal_pl",
		BindGroupLayouts: []hal.BindGroupLayout{bgLayout},
	})
	if err != nil {
		d.destroyPartialInit()
		return fmt.Errorf("fractal gpu: create pipeline layout: %w", err)
	}
	d.layout = layout

	pipeline, err := d.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "fractal",
		Layout: layout,
		Compute: hal.ComputeState{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		d.destroyPartialInit()
		return fmt.Errorf("fractal gpu: create compute pipeline: %w", err)
	}
	d.pipeline = pipeline

	if err := d.allocateBuffers(); err != nil {
		d.destroyPartialInit()
		return err
	}

	slogger().Info("fractal gpu: pipeline ready",
		"surface", fmt.Sprintf("%dx%d", d.width, d.height),
		"shader_bytes", len(shaderFractal))

	d.initialized = true
	return nil
}

func (d *Dispatcher) colorBufSize() uint64 {
	return uint64(d.width) * uint64(d.height) * 4
}

func (d *Dispatcher) iterBufSize() uint64 {
	return uint64(d.width) * uint64(d.height) * 8
}

func (d *Dispatcher) allocateBuffers() error {
	type bufSpec struct {
		target *hal.Buffer
		label  string
		size   uint64
		usage  gputypes.BufferUsage
	}

	specs := []bufSpec{
		{&d.bufs.Config, "fractal_config", fractalConfig{}.sizeInBytes(),
			gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst},
		{&d.bufs.Colors, "fractal_colors", d.colorBufSize(),
			gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc},
		{&d.bufs.Iterations, "fractal_iterations", d.iterBufSize(),
			gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc},
		{&d.bufs.Staging, "fractal_staging", d.iterBufSize(),
			gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst},
	}

	for _, s := range specs {
		buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: s.label,
			Size:  s.size,
			Usage: s.usage,
		})
		if err != nil {
			return fmt.Errorf("fractal gpu: create %s buffer: %w", s.label, err)
		}
		*s.target = buf
	}
	return nil
}

// destroyPartialInit cleans up after a failed Init so a retry starts
// from scratch.
func (d *Dispatcher) destroyPartialInit() {
	d.destroyResources()
}

func (d *Dispatcher) destroyResources() {
	destroyBuf := func(b *hal.Buffer) {
		if *b != nil {
			d.device.DestroyBuffer(*b)
			*b = nil
		}
	}
	destroyBuf(&d.bufs.Staging)
	destroyBuf(&d.bufs.Iterations)
	destroyBuf(&d.bufs.Colors)
	destroyBuf(&d.bufs.Config)

	if d.pipeline != nil {
		d.device.DestroyComputePipeline(d.pipeline)
		d.pipeline = nil
	}
	if d.layout != nil {
		d.device.DestroyPipelineLayout(d.layout)
		d.layout = nil
	}
	if d.bgLayout != nil {
		d.device.DestroyBindGroupLayout(d.bgLayout)
		d.bgLayout = nil
	}
	if d.module != nil {
		d.device.DestroyShaderModule(d.module)
		d.module = nil
	}
}

// Close releases all GPU resources held by the dispatcher. After Close,
// the dispatcher must be re-initialized with Init before use.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyResources()
	d.initialized = false
}

// Render runs one fractal pass with the given parameters and blocks
// until the GPU work completes. Implements render.PassRenderer.
func (d *Dispatcher) Render(p *render.Params) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return fmt.Errorf("fractal gpu: dispatcher not initialized, call Init() first")
	}

	cfg := configFromParams(p)
	d.queue.WriteBuffer(d.bufs.Config, 0, cfg.toBytes())

	bg, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "fractal_bg",
		Layout: d.bgLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: d.bufs.Config.NativeHandle()}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: d.bufs.Colors.NativeHandle()}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: d.bufs.Iterations.NativeHandle()}},
		},
	})
	if err != nil {
		return fmt.Errorf("fractal gpu: create bind group: %w", err)
	}
	defer d.device.DestroyBindGroup(bg)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "fractal_pass"})
	if err != nil {
		return fmt.Errorf("fractal gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("fractal_pass"); err != nil {
		return fmt.Errorf("fractal gpu: begin encoding: %w", err)
	}

	wgX := (d.width + fractalWGSize - 1) / fractalWGSize
	wgY := (d.height + fractalWGSize - 1) / fractalWGSize

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "fractal"})
	pass.SetPipeline(d.pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch(wgX, wgY, 1)
	pass.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("fractal gpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	if err := d.submitAndWait(cmdBuf); err != nil {
		return err
	}

	slogger().Debug("fractal gpu: pass dispatched",
		"workgroups", fmt.Sprintf("%dx%d", wgX, wgY),
		"max_iterations", p.MaxIterations)
	return nil
}

// ReadColors copies the color output of the last Render into dst, one
// RGBA quad per pixel. Implements render.PassRenderer.
func (d *Dispatcher) ReadColors(dst []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return fmt.Errorf("fractal gpu: dispatcher not initialized, call Init() first")
	}
	size := d.colorBufSize()
	if uint64(len(dst)) < size {
		return fmt.Errorf("fractal gpu: color dst holds %d bytes, need %d", len(dst), size)
	}

	readback, err := d.readbackBuffer(d.bufs.Colors, size)
	if err != nil {
		return err
	}
	copy(dst, readback)
	return nil
}

// ReadIterations copies the raw escape-time output of the last Render
// into dst. Implements render.PassRenderer.
func (d *Dispatcher) ReadIterations(dst []render.IterationSample) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return fmt.Errorf("fractal gpu: dispatcher not initialized, call Init() first")
	}
	pixels := int(d.width) * int(d.height)
	if len(dst) < pixels {
		return fmt.Errorf("fractal gpu: iteration dst holds %d samples, need %d", len(dst), pixels)
	}

	readback, err := d.readbackBuffer(d.bufs.Iterations, d.iterBufSize())
	if err != nil {
		return err
	}

	le := binary.LittleEndian
	for i := 0; i < pixels; i++ {
		off := i * 8
		dst[i] = render.IterationSample{
			Count:   le.Uint32(readback[off : off+4]),
			Escaped: le.Uint32(readback[off+4:off+8]) != 0,
		}
	}
	return nil
}

// readbackBuffer copies size bytes from src into the staging buffer and
// reads them back to the host.
func (d *Dispatcher) readbackBuffer(src hal.Buffer, size uint64) ([]byte, error) {
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "fractal_readback"})
	if err != nil {
		return nil, fmt.Errorf("fractal gpu: create readback encoder: %w", err)
	}
	if err := encoder.BeginEncoding("fractal_readback"); err != nil {
		return nil, fmt.Errorf("fractal gpu: begin readback encoding: %w", err)
	}

	encoder.CopyBufferToBuffer(src, d.bufs.Staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: size},
	})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("fractal gpu: end readback encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	if err := d.submitAndWait(cmdBuf); err != nil {
		return nil, err
	}

	readback := make([]byte, size)
	if err := d.queue.ReadBuffer(d.bufs.Staging, 0, readback); err != nil {
		return nil, fmt.Errorf("fractal gpu: readback: %w", err)
	}
	return readback, nil
}

// submitAndWait submits the command buffer and waits for GPU completion.
func (d *Dispatcher) submitAndWait(cmdBuf hal.CommandBuffer) error {
	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("fractal gpu: create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("fractal gpu: submit: %w", err)
	}

	ok, err := d.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return fmt.Errorf("fractal gpu: wait for GPU: %w", err)
	}
	if !ok {
		return fmt.Errorf("fractal gpu: GPU timeout after %v", fenceTimeout)
	}
	return nil
}
