// imageview.go
package vkvideo

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

// ImageViewInfo configures view creation.
type ImageViewInfo struct {
	aspectMask ImageAspectFlags
	format     Format
	viewType   ImageViewType
	layerCount uint32
	levelCount uint32
}

func NewImageViewInfo() *ImageViewInfo {
	return &ImageViewInfo{
		aspectMask: IMAGE_ASPECT_COLOR_BIT,
		viewType:   IMAGE_VIEW_TYPE_2D,
		layerCount: 1,
		levelCount: 1,
	}
}

func (info *ImageViewInfo) AspectMask(mask ImageAspectFlags) *ImageViewInfo {
	info.aspectMask = mask
	return info
}

func (info *ImageViewInfo) Format(format Format) *ImageViewInfo {
	info.format = format
	return info
}

func (info *ImageViewInfo) ViewType(viewType ImageViewType) *ImageViewInfo {
	info.viewType = viewType
	return info
}

func (info *ImageViewInfo) LayerCount(count uint32) *ImageViewInfo {
	info.layerCount = count
	return info
}

func (info *ImageViewInfo) LevelCount(count uint32) *ImageViewInfo {
	info.levelCount = count
	return info
}

// ImageView retains the image it views.
type ImageView struct {
	handle C.VkImageView
	image  *Image
	node   *owner
}

func NewImageView(image *Image, info *ImageViewInfo) (*ImageView, error) {
	cInfo := (*C.VkImageViewCreateInfo)(C.calloc(1, C.sizeof_VkImageViewCreateInfo))
	defer C.free(unsafe.Pointer(cInfo))

	cInfo.sType = C.VK_STRUCTURE_TYPE_IMAGE_VIEW_CREATE_INFO
	cInfo.image = image.handle
	cInfo.viewType = C.VkImageViewType(info.viewType)
	cInfo.format = C.VkFormat(info.format)
	cInfo.components.r = C.VK_COMPONENT_SWIZZLE_IDENTITY
	cInfo.components.g = C.VK_COMPONENT_SWIZZLE_IDENTITY
	cInfo.components.b = C.VK_COMPONENT_SWIZZLE_IDENTITY
	cInfo.components.a = C.VK_COMPONENT_SWIZZLE_IDENTITY
	cInfo.subresourceRange.aspectMask = C.VkImageAspectFlags(info.aspectMask)
	cInfo.subresourceRange.baseMipLevel = 0
	cInfo.subresourceRange.levelCount = C.uint32_t(info.levelCount)
	cInfo.subresourceRange.baseArrayLayer = 0
	cInfo.subresourceRange.layerCount = C.uint32_t(info.layerCount)

	var handle C.VkImageView
	result := C.vkCreateImageView(image.device.handle, cInfo, nil, &handle)
	if result != C.VK_SUCCESS {
		return nil, errVulkanMsg(Result(result), "vkCreateImageView")
	}

	view := &ImageView{handle: handle, image: image}
	deviceHandle := image.device.handle
	view.node = newOwner("image view", image.device.log, func() {
		C.vkDestroyImageView(deviceHandle, handle, nil)
	}, image.node)

	return view, nil
}

func (view *ImageView) Retain()  { view.node.retain() }
func (view *ImageView) Release() { view.node.release() }

func (view *ImageView) Image() *Image { return view.image }
