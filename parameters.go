// parameters.go
package vkvideo

/*
#include <vulkan/vulkan.h>
*/
import "C"

// DescriptorType mirrors the subset of descriptor types the compute path
// uses.
type DescriptorType int32

const (
	DESCRIPTOR_TYPE_STORAGE_IMAGE  DescriptorType = 3
	DESCRIPTOR_TYPE_UNIFORM_BUFFER DescriptorType = 6
	DESCRIPTOR_TYPE_STORAGE_BUFFER DescriptorType = 7
)

// Parameter is one shader-visible resource at a fixed binding slot. The
// binding index is the parameter's position in the list.
type Parameter interface {
	descriptorType() DescriptorType
}

// BufferParameter binds a buffer as a storage buffer.
type BufferParameter struct {
	Buffer *Buffer
}

func (BufferParameter) descriptorType() DescriptorType { return DESCRIPTOR_TYPE_STORAGE_BUFFER }

// UniformParameter binds a buffer as a uniform buffer.
type UniformParameter struct {
	Buffer *Buffer
}

func (UniformParameter) descriptorType() DescriptorType { return DESCRIPTOR_TYPE_UNIFORM_BUFFER }

// ImageParameter binds an image view as a storage image. Layout is the
// layout the image will be in when the dispatch runs; zero means GENERAL.
type ImageParameter struct {
	View   *ImageView
	Layout ImageLayout
}

func (ImageParameter) descriptorType() DescriptorType { return DESCRIPTOR_TYPE_STORAGE_IMAGE }

func (param ImageParameter) layout() ImageLayout {
	if param.Layout == IMAGE_LAYOUT_UNDEFINED {
		return IMAGE_LAYOUT_GENERAL
	}
	return param.Layout
}
