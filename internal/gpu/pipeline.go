//go:build !nogpu

package gpu

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Embedded glyph shader source.
//
//go:embed shaders/glyph.wgsl
var glyphShaderSource string

// ErrPipelineDestroyed is returned when recording with a destroyed pipeline.
var ErrPipelineDestroyed = errors.New("gpu: glyph pipeline is destroyed")

// uniformSize is the byte size of the glyph uniform buffer: one mat4x4<f32>.
const uniformSize = 64

// IdentityMatrix is the default transform applied to glyph clip coordinates.
var IdentityMatrix = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// PipelineConfig selects the formats of the attachments glyphs are drawn
// into. They must match the views passed at draw time.
type PipelineConfig struct {
	ColorFormat gputypes.TextureFormat
	DepthFormat gputypes.TextureFormat
	SampleCount uint32
}

// DefaultPipelineConfig returns BGRA8 color, 32-bit float depth, no MSAA.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		ColorFormat: gputypes.TextureFormatBGRA8Unorm,
		DepthFormat: gputypes.TextureFormatDepth32Float,
		SampleCount: 1,
	}
}

// GlyphBlendState is straight alpha over for color. Alpha accumulates with
// One/One so overlapping glyphs never reduce destination coverage.
func GlyphBlendState() gputypes.BlendState {
	return gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorOne,
			DstFactor: gputypes.BlendFactorOne,
			Operation: gputypes.BlendOperationAdd,
		},
	}
}

// GlyphDepthState tests with LessEqual and writes depth. Stencil is unused.
func GlyphDepthState(format gputypes.TextureFormat) *hal.DepthStencilState {
	keep := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
	return &hal.DepthStencilState{
		Format:            format,
		DepthWriteEnabled: true,
		DepthCompare:      gputypes.CompareFunctionLessEqual,
		StencilFront:      keep,
		StencilBack:       keep,
		StencilReadMask:   0x00,
		StencilWriteMask:  0x00,
	}
}

// GlyphVertexLayout describes one Vertex per instance. Matches GlyphInstance
// in glyph.wgsl.
func GlyphVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: VertexStride,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 20, ShaderLocation: 2},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 28, ShaderLocation: 3},
				{Format: gputypes.VertexFormatFloat32x4, Offset: 36, ShaderLocation: 4},
			},
		},
	}
}

// GlyphPipeline owns everything needed to draw glyph instances sampled from
// one atlas view: shader, layouts, render pipeline, sampler, transform
// uniform and the bind group tying them together.
type GlyphPipeline struct {
	device hal.Device
	queue  hal.Queue
	config PipelineConfig

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	sampler    hal.Sampler
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup

	transform    [16]float32
	transformSet bool
}

// NewGlyphPipeline builds the pipeline and binds atlasView to it. On error
// every resource created so far is released.
func NewGlyphPipeline(device hal.Device, queue hal.Queue, atlasView hal.TextureView, config PipelineConfig) (*GlyphPipeline, error) {
	if config.SampleCount == 0 {
		config.SampleCount = 1
	}
	p := &GlyphPipeline{
		device: device,
		queue:  queue,
		config: config,
	}
	if err := p.createPipeline(); err != nil {
		p.Destroy()
		return nil, err
	}
	if err := p.createBindings(atlasView); err != nil {
		p.Destroy()
		return nil, err
	}
	slogger().Info("glyph pipeline created",
		"color", config.ColorFormat, "depth", config.DepthFormat, "samples", config.SampleCount)
	return p, nil
}

// createPipeline compiles the glyph shader and creates the render pipeline.
func (p *GlyphPipeline) createPipeline() error {
	if glyphShaderSource == "" {
		return fmt.Errorf("glyph shader source is empty")
	}

	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "glyph_shader",
		Source: hal.ShaderSource{WGSL: glyphShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile glyph shader: %w", err)
	}
	p.shader = shader

	// Bind group layout:
	//   Binding 0: transform (uniform buffer, vertex)
	//   Binding 1: glyph atlas (texture_2d, fragment)
	//   Binding 2: sampler (fragment)
	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "glyph_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create glyph bind group layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "glyph_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create glyph pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	blend := GlyphBlendState()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "glyph_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    GlyphVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    p.config.ColorFormat,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: GlyphDepthState(p.config.DepthFormat),
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: p.config.SampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create glyph pipeline: %w", err)
	}
	p.pipeline = pipeline
	return nil
}

// createBindings creates the sampler, the transform uniform and the bind
// group for atlasView.
func (p *GlyphPipeline) createBindings(atlasView hal.TextureView) error {
	sampler, err := p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "glyph_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("create glyph sampler: %w", err)
	}
	p.sampler = sampler

	uniformBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "glyph_uniforms",
		Size:  uniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create glyph uniform buffer: %w", err)
	}
	p.uniformBuf = uniformBuf

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "glyph_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: p.uniformBuf.NativeHandle(), Offset: 0, Size: uniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: atlasView.NativeHandle()}},
			{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: p.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		return fmt.Errorf("create glyph bind group: %w", err)
	}
	p.bindGroup = bindGroup

	return p.SetTransform(IdentityMatrix)
}

// SetTransform uploads a column-major 4x4 matrix applied to every glyph
// vertex. Uploading the matrix already in place is skipped.
func (p *GlyphPipeline) SetTransform(m [16]float32) error {
	if p.uniformBuf == nil {
		return ErrPipelineDestroyed
	}
	if p.transformSet && p.transform == m {
		return nil
	}
	buf := make([]byte, uniformSize)
	for i, v := range m {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	if err := p.queue.WriteBuffer(p.uniformBuf, 0, buf); err != nil {
		return fmt.Errorf("upload glyph transform: %w", err)
	}
	p.transform = m
	p.transformSet = true
	return nil
}

// Record draws count glyph instances from vertices into an open render pass:
// four strip vertices per instance.
func (p *GlyphPipeline) Record(rp hal.RenderPassEncoder, vertices hal.Buffer, count uint32) error {
	if p.pipeline == nil || p.bindGroup == nil {
		return ErrPipelineDestroyed
	}
	if vertices == nil || count == 0 {
		return nil
	}
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, p.bindGroup, nil)
	rp.SetVertexBuffer(0, vertices, 0)
	rp.Draw(4, count, 0, 0)
	return nil
}

// Config returns the attachment formats the pipeline was built for.
func (p *GlyphPipeline) Config() PipelineConfig { return p.config }

// Destroy releases all pipeline resources in reverse creation order. Safe to
// call multiple times.
func (p *GlyphPipeline) Destroy() {
	if p.device == nil {
		return
	}
	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	if p.uniformBuf != nil {
		p.device.DestroyBuffer(p.uniformBuf)
		p.uniformBuf = nil
	}
	if p.sampler != nil {
		p.device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
	p.transformSet = false
}
