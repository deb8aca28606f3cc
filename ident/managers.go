package ident

// Per-kind IdentityManager aliases and constructors. The marker types
// themselves stay unexported (so nothing outside this package can forge
// an ID for the wrong kind), but a Cache still needs to allocate and
// release ids of each kind, so each gets a named manager type and
// constructor instead of requiring callers to name the marker directly.

type BufferIdentityManager = IdentityManager[bufferMarker]
type ImageBufferIdentityManager = IdentityManager[imageBufferMarker]
type ImageIdentityManager = IdentityManager[imageMarker]
type ImageViewIdentityManager = IdentityManager[imageViewMarker]
type IndexBufferIdentityManager = IdentityManager[indexBufferMarker]
type ShaderIdentityManager = IdentityManager[shaderMarker]
type SamplerIdentityManager = IdentityManager[samplerMarker]

func NewBufferIdentityManager() *BufferIdentityManager           { return NewIdentityManager[bufferMarker]() }
func NewImageBufferIdentityManager() *ImageBufferIdentityManager { return NewIdentityManager[imageBufferMarker]() }
func NewImageIdentityManager() *ImageIdentityManager             { return NewIdentityManager[imageMarker]() }
func NewImageViewIdentityManager() *ImageViewIdentityManager     { return NewIdentityManager[imageViewMarker]() }
func NewIndexBufferIdentityManager() *IndexBufferIdentityManager { return NewIdentityManager[indexBufferMarker]() }
func NewShaderIdentityManager() *ShaderIdentityManager           { return NewIdentityManager[shaderMarker]() }
func NewSamplerIdentityManager() *SamplerIdentityManager         { return NewIdentityManager[samplerMarker]() }
