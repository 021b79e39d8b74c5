// image.go
package vkvideo

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import (
	"math/bits"
	"unsafe"
)

// ImageInfo configures image creation.
type ImageInfo struct {
	format      Format
	extent      Extent3D
	mipLevels   uint32
	arrayLayers uint32
	samples     SampleCountFlags
	imageType   ImageType
	tiling      ImageTiling
	usage       ImageUsageFlags
	layout      ImageLayout
}

func NewImageInfo() *ImageInfo {
	return &ImageInfo{
		mipLevels:   1,
		arrayLayers: 1,
		samples:     SAMPLE_COUNT_1_BIT,
		imageType:   IMAGE_TYPE_2D,
		tiling:      IMAGE_TILING_OPTIMAL,
		layout:      IMAGE_LAYOUT_UNDEFINED,
	}
}

func (info *ImageInfo) Format(format Format) *ImageInfo          { info.format = format; return info }
func (info *ImageInfo) Extent(extent Extent3D) *ImageInfo        { info.extent = extent; return info }
func (info *ImageInfo) MipLevels(levels uint32) *ImageInfo       { info.mipLevels = levels; return info }
func (info *ImageInfo) ArrayLayers(layers uint32) *ImageInfo     { info.arrayLayers = layers; return info }
func (info *ImageInfo) Samples(s SampleCountFlags) *ImageInfo    { info.samples = s; return info }
func (info *ImageInfo) ImageType(t ImageType) *ImageInfo         { info.imageType = t; return info }
func (info *ImageInfo) Tiling(tiling ImageTiling) *ImageInfo     { info.tiling = tiling; return info }
func (info *ImageInfo) Usage(usage ImageUsageFlags) *ImageInfo   { info.usage = usage; return info }
func (info *ImageInfo) Layout(layout ImageLayout) *ImageInfo     { info.layout = layout; return info }

// MemoryRequirements of a created image or buffer.
type MemoryRequirements struct {
	Size           uint64
	Alignment      uint64
	MemoryTypeBits uint32
}

// AnyHeap picks the lowest memory type index the resource accepts.
func (reqs MemoryRequirements) AnyHeap() MemoryTypeIndex {
	return MemoryTypeIndex(bits.TrailingZeros32(reqs.MemoryTypeBits))
}

// Image is a bound image: driver object plus backing memory. It is only
// obtainable through UnboundImage.Bind, which enforces the one-shot bind.
type Image struct {
	handle  C.VkImage
	device  *Device
	node    *owner
	format  Format
	extent  Extent3D
	layers  uint32
}

// UnboundImage is a created image with no memory attached yet.
type UnboundImage struct {
	img   *Image
	reqs  MemoryRequirements
	bound bool
}

// NewUnboundImage creates an image for general use.
func NewUnboundImage(device *Device, info *ImageInfo) (*UnboundImage, error) {
	return newUnboundImage(device, info, false)
}

// NewVideoTargetImage creates an image usable as H.264 decode output and
// DPB storage; the decode profile list is attached at creation.
func NewVideoTargetImage(device *Device, info *ImageInfo) (*UnboundImage, error) {
	return newUnboundImage(device, info, true)
}

func newUnboundImage(device *Device, info *ImageInfo, decodeProfile bool) (*UnboundImage, error) {
	cInfo := (*C.VkImageCreateInfo)(C.calloc(1, C.sizeof_VkImageCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_IMAGE_CREATE_INFO
	cInfo.imageType = C.VkImageType(info.imageType)
	cInfo.format = C.VkFormat(info.format)
	cInfo.extent.width = C.uint32_t(info.extent.Width)
	cInfo.extent.height = C.uint32_t(info.extent.Height)
	cInfo.extent.depth = C.uint32_t(info.extent.Depth)
	cInfo.mipLevels = C.uint32_t(info.mipLevels)
	cInfo.arrayLayers = C.uint32_t(info.arrayLayers)
	cInfo.samples = C.VkSampleCountFlagBits(info.samples)
	cInfo.tiling = C.VkImageTiling(info.tiling)
	cInfo.usage = C.VkImageUsageFlags(info.usage)
	cInfo.sharingMode = C.VK_SHARING_MODE_EXCLUSIVE
	cInfo.initialLayout = C.VkImageLayout(info.layout)

	var profiles *decodeProfileList
	if decodeProfile {
		profiles = newDecodeProfileList()
		defer profiles.free()
		cInfo.pNext = profiles.ptr()
	}

	var handle C.VkImage
	result := C.vkCreateImage(device.handle, cInfo, nil, &handle)
	if result != C.VK_SUCCESS {
		return nil, errVulkanMsg(Result(result), "vkCreateImage")
	}

	var memReqs C.VkMemoryRequirements
	C.vkGetImageMemoryRequirements(device.handle, handle, &memReqs)

	img := &Image{
		handle: handle,
		device: device,
		format: info.format,
		extent: info.extent,
		layers: info.arrayLayers,
	}
	deviceHandle := device.handle
	img.node = newOwner("image", device.log, func() {
		C.vkDestroyImage(deviceHandle, handle, nil)
	}, device.node)

	return &UnboundImage{
		img: img,
		reqs: MemoryRequirements{
			Size:           uint64(memReqs.size),
			Alignment:      uint64(memReqs.alignment),
			MemoryTypeBits: uint32(memReqs.memoryTypeBits),
		},
	}, nil
}

func (unbound *UnboundImage) MemoryRequirement() MemoryRequirements {
	return unbound.reqs
}

// Bind attaches the image to an allocation. Binding happens exactly once;
// a second call fails and leaves the original binding intact.
func (unbound *UnboundImage) Bind(allocation *Allocation) (*Image, error) {
	if unbound.bound {
		return nil, errKind(ErrImageAlreadyBound)
	}

	result := C.vkBindImageMemory(unbound.img.device.handle, unbound.img.handle, allocation.handle, 0)
	if result != C.VK_SUCCESS {
		return nil, errVulkanMsg(Result(result), "vkBindImageMemory")
	}
	unbound.bound = true

	// The bound image now also keeps the allocation alive.
	allocation.node.retain()
	unbound.img.node.parents = append(unbound.img.node.parents, allocation.node)

	return unbound.img, nil
}

// Release drops the image that was created even if it was never bound.
func (unbound *UnboundImage) Release() { unbound.img.node.release() }

func (img *Image) Retain()  { img.node.retain() }
func (img *Image) Release() { img.node.release() }

func (img *Image) Format() Format   { return img.format }
func (img *Image) Extent() Extent3D { return img.extent }
