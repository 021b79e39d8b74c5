// video.go
package vkvideo

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
#include <string.h>

// Function pointer types for the Vulkan Video decode extensions
typedef VkResult (*PFN_vkGetPhysicalDeviceVideoCapabilitiesKHR)(VkPhysicalDevice, const VkVideoProfileInfoKHR*, VkVideoCapabilitiesKHR*);
typedef VkResult (*PFN_vkGetPhysicalDeviceVideoFormatPropertiesKHR)(VkPhysicalDevice, const VkPhysicalDeviceVideoFormatInfoKHR*, uint32_t*, VkVideoFormatPropertiesKHR*);
typedef VkResult (*PFN_vkCreateVideoSessionKHR)(VkDevice, const VkVideoSessionCreateInfoKHR*, const VkAllocationCallbacks*, VkVideoSessionKHR*);
typedef void (*PFN_vkDestroyVideoSessionKHR)(VkDevice, VkVideoSessionKHR, const VkAllocationCallbacks*);
typedef VkResult (*PFN_vkGetVideoSessionMemoryRequirementsKHR)(VkDevice, VkVideoSessionKHR, uint32_t*, VkVideoSessionMemoryRequirementsKHR*);
typedef VkResult (*PFN_vkBindVideoSessionMemoryKHR)(VkDevice, VkVideoSessionKHR, uint32_t, const VkBindVideoSessionMemoryInfoKHR*);
typedef VkResult (*PFN_vkCreateVideoSessionParametersKHR)(VkDevice, const VkVideoSessionParametersCreateInfoKHR*, const VkAllocationCallbacks*, VkVideoSessionParametersKHR*);
typedef void (*PFN_vkDestroyVideoSessionParametersKHR)(VkDevice, VkVideoSessionParametersKHR, const VkAllocationCallbacks*);
typedef void (*PFN_vkCmdBeginVideoCodingKHR)(VkCommandBuffer, const VkVideoBeginCodingInfoKHR*);
typedef void (*PFN_vkCmdEndVideoCodingKHR)(VkCommandBuffer, const VkVideoEndCodingInfoKHR*);
typedef void (*PFN_vkCmdControlVideoCodingKHR)(VkCommandBuffer, const VkVideoCodingControlInfoKHR*);
typedef void (*PFN_vkCmdDecodeVideoKHR)(VkCommandBuffer, const VkVideoDecodeInfoKHR*);

// Global function pointers
static PFN_vkGetPhysicalDeviceVideoCapabilitiesKHR pfn_vkGetPhysicalDeviceVideoCapabilitiesKHR = NULL;
static PFN_vkGetPhysicalDeviceVideoFormatPropertiesKHR pfn_vkGetPhysicalDeviceVideoFormatPropertiesKHR = NULL;
static PFN_vkCreateVideoSessionKHR pfn_vkCreateVideoSessionKHR = NULL;
static PFN_vkDestroyVideoSessionKHR pfn_vkDestroyVideoSessionKHR = NULL;
static PFN_vkGetVideoSessionMemoryRequirementsKHR pfn_vkGetVideoSessionMemoryRequirementsKHR = NULL;
static PFN_vkBindVideoSessionMemoryKHR pfn_vkBindVideoSessionMemoryKHR = NULL;
static PFN_vkCreateVideoSessionParametersKHR pfn_vkCreateVideoSessionParametersKHR = NULL;
static PFN_vkDestroyVideoSessionParametersKHR pfn_vkDestroyVideoSessionParametersKHR = NULL;
static PFN_vkCmdBeginVideoCodingKHR pfn_vkCmdBeginVideoCodingKHR = NULL;
static PFN_vkCmdEndVideoCodingKHR pfn_vkCmdEndVideoCodingKHR = NULL;
static PFN_vkCmdControlVideoCodingKHR pfn_vkCmdControlVideoCodingKHR = NULL;
static PFN_vkCmdDecodeVideoKHR pfn_vkCmdDecodeVideoKHR = NULL;

// Load video extension functions from instance
static int loadVideoFunctionsInstance(VkInstance instance) {
	pfn_vkGetPhysicalDeviceVideoCapabilitiesKHR = (PFN_vkGetPhysicalDeviceVideoCapabilitiesKHR)
		vkGetInstanceProcAddr(instance, "vkGetPhysicalDeviceVideoCapabilitiesKHR");
	pfn_vkGetPhysicalDeviceVideoFormatPropertiesKHR = (PFN_vkGetPhysicalDeviceVideoFormatPropertiesKHR)
		vkGetInstanceProcAddr(instance, "vkGetPhysicalDeviceVideoFormatPropertiesKHR");
	return pfn_vkGetPhysicalDeviceVideoCapabilitiesKHR != NULL;
}

// Load video extension functions from device
static int loadVideoFunctionsDevice(VkDevice device) {
	pfn_vkCreateVideoSessionKHR = (PFN_vkCreateVideoSessionKHR)
		vkGetDeviceProcAddr(device, "vkCreateVideoSessionKHR");
	pfn_vkDestroyVideoSessionKHR = (PFN_vkDestroyVideoSessionKHR)
		vkGetDeviceProcAddr(device, "vkDestroyVideoSessionKHR");
	pfn_vkGetVideoSessionMemoryRequirementsKHR = (PFN_vkGetVideoSessionMemoryRequirementsKHR)
		vkGetDeviceProcAddr(device, "vkGetVideoSessionMemoryRequirementsKHR");
	pfn_vkBindVideoSessionMemoryKHR = (PFN_vkBindVideoSessionMemoryKHR)
		vkGetDeviceProcAddr(device, "vkBindVideoSessionMemoryKHR");
	pfn_vkCreateVideoSessionParametersKHR = (PFN_vkCreateVideoSessionParametersKHR)
		vkGetDeviceProcAddr(device, "vkCreateVideoSessionParametersKHR");
	pfn_vkDestroyVideoSessionParametersKHR = (PFN_vkDestroyVideoSessionParametersKHR)
		vkGetDeviceProcAddr(device, "vkDestroyVideoSessionParametersKHR");
	pfn_vkCmdBeginVideoCodingKHR = (PFN_vkCmdBeginVideoCodingKHR)
		vkGetDeviceProcAddr(device, "vkCmdBeginVideoCodingKHR");
	pfn_vkCmdEndVideoCodingKHR = (PFN_vkCmdEndVideoCodingKHR)
		vkGetDeviceProcAddr(device, "vkCmdEndVideoCodingKHR");
	pfn_vkCmdControlVideoCodingKHR = (PFN_vkCmdControlVideoCodingKHR)
		vkGetDeviceProcAddr(device, "vkCmdControlVideoCodingKHR");
	pfn_vkCmdDecodeVideoKHR = (PFN_vkCmdDecodeVideoKHR)
		vkGetDeviceProcAddr(device, "vkCmdDecodeVideoKHR");

	return pfn_vkCreateVideoSessionKHR != NULL;
}

// Fills in the H.264 decode profile all queries and resources share:
// High profile, progressive frames, 4:2:0 at 8-bit.
static void buildH264DecodeProfile(VkVideoProfileInfoKHR* profile, VkVideoDecodeH264ProfileInfoKHR* h264Profile) {
	h264Profile->sType = VK_STRUCTURE_TYPE_VIDEO_DECODE_H264_PROFILE_INFO_KHR;
	h264Profile->pNext = NULL;
	h264Profile->stdProfileIdc = STD_VIDEO_H264_PROFILE_IDC_HIGH;
	h264Profile->pictureLayout = VK_VIDEO_DECODE_H264_PICTURE_LAYOUT_PROGRESSIVE_KHR;

	profile->sType = VK_STRUCTURE_TYPE_VIDEO_PROFILE_INFO_KHR;
	profile->pNext = h264Profile;
	profile->videoCodecOperation = VK_VIDEO_CODEC_OPERATION_DECODE_H264_BIT_KHR;
	profile->chromaSubsampling = VK_VIDEO_CHROMA_SUBSAMPLING_420_BIT_KHR;
	profile->lumaBitDepth = VK_VIDEO_COMPONENT_BIT_DEPTH_8_BIT_KHR;
	profile->chromaBitDepth = VK_VIDEO_COMPONENT_BIT_DEPTH_8_BIT_KHR;
}

// Global to store the queried STD header version
static VkExtensionProperties g_h264DecodeStdHeaderVersion = {0};

// H.264 decode capabilities query with proper pNext chaining
static VkResult call_vkGetPhysicalDeviceVideoCapabilitiesH264KHR(
	VkPhysicalDevice pd,
	VkVideoCapabilitiesKHR* caps,
	VkVideoDecodeCapabilitiesKHR* decodeCaps,
	VkVideoDecodeH264CapabilitiesKHR* h264Caps
) {
	if (pfn_vkGetPhysicalDeviceVideoCapabilitiesKHR == NULL) return VK_ERROR_EXTENSION_NOT_PRESENT;

	VkVideoDecodeH264ProfileInfoKHR h264ProfileInfo;
	VkVideoProfileInfoKHR profile;
	buildH264DecodeProfile(&profile, &h264ProfileInfo);

	// Chain capabilities: caps -> decodeCaps -> h264Caps
	h264Caps->sType = VK_STRUCTURE_TYPE_VIDEO_DECODE_H264_CAPABILITIES_KHR;
	h264Caps->pNext = NULL;

	decodeCaps->sType = VK_STRUCTURE_TYPE_VIDEO_DECODE_CAPABILITIES_KHR;
	decodeCaps->pNext = h264Caps;

	caps->sType = VK_STRUCTURE_TYPE_VIDEO_CAPABILITIES_KHR;
	caps->pNext = decodeCaps;

	VkResult result = pfn_vkGetPhysicalDeviceVideoCapabilitiesKHR(pd, &profile, caps);

	// Store the STD header version from capabilities for later use
	if (result == VK_SUCCESS) {
		g_h264DecodeStdHeaderVersion = caps->stdHeaderVersion;
	}

	return result;
}

// Video format properties for the decode profile and a given image usage
static VkResult call_vkGetPhysicalDeviceVideoFormatPropertiesKHR(
	VkPhysicalDevice pd,
	VkImageUsageFlags usage,
	uint32_t* count,
	VkVideoFormatPropertiesKHR* properties
) {
	if (pfn_vkGetPhysicalDeviceVideoFormatPropertiesKHR == NULL) return VK_ERROR_EXTENSION_NOT_PRESENT;

	VkVideoDecodeH264ProfileInfoKHR h264ProfileInfo;
	VkVideoProfileInfoKHR profile;
	buildH264DecodeProfile(&profile, &h264ProfileInfo);

	VkVideoProfileListInfoKHR profileList = {
		.sType = VK_STRUCTURE_TYPE_VIDEO_PROFILE_LIST_INFO_KHR,
		.pNext = NULL,
		.profileCount = 1,
		.pProfiles = &profile
	};

	VkPhysicalDeviceVideoFormatInfoKHR formatInfo = {
		.sType = VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_VIDEO_FORMAT_INFO_KHR,
		.pNext = &profileList,
		.imageUsage = usage
	};

	uint32_t i;
	for (i = 0; i < *count; i++) {
		properties[i].sType = VK_STRUCTURE_TYPE_VIDEO_FORMAT_PROPERTIES_KHR;
		properties[i].pNext = NULL;
	}

	return pfn_vkGetPhysicalDeviceVideoFormatPropertiesKHR(pd, &formatInfo, count, properties);
}

// H.264 decode video session creation with proper pNext chaining
static VkResult call_vkCreateVideoSessionH264KHR(
	VkDevice device,
	uint32_t queueFamilyIndex,
	VkExtent2D maxCodedExtent,
	uint32_t maxDpbSlots,
	uint32_t maxActiveReferencePictures,
	VkVideoSessionKHR* session
) {
	if (pfn_vkCreateVideoSessionKHR == NULL) return VK_ERROR_EXTENSION_NOT_PRESENT;

	VkVideoDecodeH264ProfileInfoKHR h264ProfileInfo;
	VkVideoProfileInfoKHR profile;
	buildH264DecodeProfile(&profile, &h264ProfileInfo);

	VkExtensionProperties stdHeaderVersion = {
		.specVersion = VK_MAKE_API_VERSION(0, 1, 0, 0)
	};
	strncpy(stdHeaderVersion.extensionName, VK_STD_VULKAN_VIDEO_CODEC_H264_DECODE_EXTENSION_NAME, sizeof(stdHeaderVersion.extensionName) - 1);

	VkVideoSessionCreateInfoKHR createInfo = {
		.sType = VK_STRUCTURE_TYPE_VIDEO_SESSION_CREATE_INFO_KHR,
		.pNext = NULL,
		.queueFamilyIndex = queueFamilyIndex,
		.flags = 0,
		.pVideoProfile = &profile,
		.pictureFormat = VK_FORMAT_G8_B8R8_2PLANE_420_UNORM,
		.maxCodedExtent = maxCodedExtent,
		.referencePictureFormat = VK_FORMAT_G8_B8R8_2PLANE_420_UNORM,
		.maxDpbSlots = maxDpbSlots,
		.maxActiveReferencePictures = maxActiveReferencePictures,
		.pStdHeaderVersion = &stdHeaderVersion
	};

	return pfn_vkCreateVideoSessionKHR(device, &createInfo, NULL, session);
}

static void call_vkDestroyVideoSessionKHR(VkDevice device, VkVideoSessionKHR session) {
	if (pfn_vkDestroyVideoSessionKHR != NULL) {
		pfn_vkDestroyVideoSessionKHR(device, session, NULL);
	}
}

static VkResult call_vkGetVideoSessionMemoryRequirementsKHR(VkDevice device, VkVideoSessionKHR session, uint32_t* count, VkVideoSessionMemoryRequirementsKHR* reqs) {
	if (pfn_vkGetVideoSessionMemoryRequirementsKHR == NULL) return VK_ERROR_EXTENSION_NOT_PRESENT;
	uint32_t i;
	if (reqs != NULL) {
		for (i = 0; i < *count; i++) {
			reqs[i].sType = VK_STRUCTURE_TYPE_VIDEO_SESSION_MEMORY_REQUIREMENTS_KHR;
			reqs[i].pNext = NULL;
		}
	}
	return pfn_vkGetVideoSessionMemoryRequirementsKHR(device, session, count, reqs);
}

static VkResult call_vkBindVideoSessionMemoryKHR(VkDevice device, VkVideoSessionKHR session, uint32_t count, const VkBindVideoSessionMemoryInfoKHR* bindings) {
	if (pfn_vkBindVideoSessionMemoryKHR == NULL) return VK_ERROR_EXTENSION_NOT_PRESENT;
	return pfn_vkBindVideoSessionMemoryKHR(device, session, count, bindings);
}

static VkResult call_vkCreateVideoSessionParametersKHR(VkDevice device, const VkVideoSessionParametersCreateInfoKHR* info, VkVideoSessionParametersKHR* params) {
	if (pfn_vkCreateVideoSessionParametersKHR == NULL) return VK_ERROR_EXTENSION_NOT_PRESENT;
	return pfn_vkCreateVideoSessionParametersKHR(device, info, NULL, params);
}

static void call_vkDestroyVideoSessionParametersKHR(VkDevice device, VkVideoSessionParametersKHR params) {
	if (pfn_vkDestroyVideoSessionParametersKHR != NULL) {
		pfn_vkDestroyVideoSessionParametersKHR(device, params, NULL);
	}
}

static void call_vkCmdBeginVideoCodingKHR(VkCommandBuffer cb, const VkVideoBeginCodingInfoKHR* info) {
	if (pfn_vkCmdBeginVideoCodingKHR != NULL) {
		pfn_vkCmdBeginVideoCodingKHR(cb, info);
	}
}

static void call_vkCmdEndVideoCodingKHR(VkCommandBuffer cb, const VkVideoEndCodingInfoKHR* info) {
	if (pfn_vkCmdEndVideoCodingKHR != NULL) {
		pfn_vkCmdEndVideoCodingKHR(cb, info);
	}
}

static void call_vkCmdControlVideoCodingKHR(VkCommandBuffer cb, const VkVideoCodingControlInfoKHR* info) {
	if (pfn_vkCmdControlVideoCodingKHR != NULL) {
		pfn_vkCmdControlVideoCodingKHR(cb, info);
	}
}

static void call_vkCmdDecodeVideoKHR(VkCommandBuffer cb, const VkVideoDecodeInfoKHR* info) {
	if (pfn_vkCmdDecodeVideoKHR != NULL) {
		pfn_vkCmdDecodeVideoKHR(cb, info);
	}
}
*/
import "C"
import "unsafe"

const (
	maxDpbSlots             = 17
	maxActiveReferenceCount = 16
)

// loadInstanceVideoFunctions resolves the instance-level video entry points.
// Reports whether the capability query is available.
func loadInstanceVideoFunctions(instance *Instance) bool {
	return C.loadVideoFunctionsInstance(instance.handle) != 0
}

// loadDeviceVideoFunctions resolves the device-level video entry points.
func loadDeviceVideoFunctions(device *Device) bool {
	return C.loadVideoFunctionsDevice(device.handle) != 0
}

// decodeProfileList is the VkVideoProfileListInfoKHR chain attached to
// buffers and images that participate in decoding. C-heap allocated so it
// can be linked into a pNext chain without cgo pointer rules interfering.
type decodeProfileList struct {
	list    *C.VkVideoProfileListInfoKHR
	profile *C.VkVideoProfileInfoKHR
	h264    *C.VkVideoDecodeH264ProfileInfoKHR
}

func newDecodeProfileList() *decodeProfileList {
	profiles := &decodeProfileList{
		list:    (*C.VkVideoProfileListInfoKHR)(C.calloc(1, C.sizeof_VkVideoProfileListInfoKHR)),
		profile: (*C.VkVideoProfileInfoKHR)(C.calloc(1, C.sizeof_VkVideoProfileInfoKHR)),
		h264:    (*C.VkVideoDecodeH264ProfileInfoKHR)(C.calloc(1, C.sizeof_VkVideoDecodeH264ProfileInfoKHR)),
	}

	C.buildH264DecodeProfile(profiles.profile, profiles.h264)

	profiles.list.sType = C.VK_STRUCTURE_TYPE_VIDEO_PROFILE_LIST_INFO_KHR
	profiles.list.profileCount = 1
	profiles.list.pProfiles = profiles.profile

	return profiles
}

func (profiles *decodeProfileList) ptr() unsafe.Pointer {
	return unsafe.Pointer(profiles.list)
}

func (profiles *decodeProfileList) free() {
	C.free(unsafe.Pointer(profiles.h264))
	C.free(unsafe.Pointer(profiles.profile))
	C.free(unsafe.Pointer(profiles.list))
}

// VideoCapabilities is the H.264 decode capability set of a physical
// device.
type VideoCapabilities struct {
	MinBitstreamBufferOffsetAlignment uint64
	MinBitstreamBufferSizeAlignment   uint64
	MaxDpbSlots                       uint32
	MaxActiveReferencePictures        uint32
	MinCodedExtent                    Extent2D
	MaxCodedExtent                    Extent2D
	MaxLevelIdc                       int32
}

// DecodeCapabilities queries what the device's H.264 decoder can do.
func DecodeCapabilities(physicalDevice *PhysicalDevice) (*VideoCapabilities, error) {
	caps := (*C.VkVideoCapabilitiesKHR)(C.calloc(1, C.sizeof_VkVideoCapabilitiesKHR))
	decodeCaps := (*C.VkVideoDecodeCapabilitiesKHR)(C.calloc(1, C.sizeof_VkVideoDecodeCapabilitiesKHR))
	h264Caps := (*C.VkVideoDecodeH264CapabilitiesKHR)(C.calloc(1, C.sizeof_VkVideoDecodeH264CapabilitiesKHR))
	defer C.free(unsafe.Pointer(caps))
	defer C.free(unsafe.Pointer(decodeCaps))
	defer C.free(unsafe.Pointer(h264Caps))

	result := C.call_vkGetPhysicalDeviceVideoCapabilitiesH264KHR(physicalDevice.handle, caps, decodeCaps, h264Caps)
	if result != C.VK_SUCCESS {
		return nil, errVulkanMsg(Result(result), "vkGetPhysicalDeviceVideoCapabilitiesKHR")
	}

	return &VideoCapabilities{
		MinBitstreamBufferOffsetAlignment: uint64(caps.minBitstreamBufferOffsetAlignment),
		MinBitstreamBufferSizeAlignment:   uint64(caps.minBitstreamBufferSizeAlignment),
		MaxDpbSlots:                       uint32(caps.maxDpbSlots),
		MaxActiveReferencePictures:        uint32(caps.maxActiveReferencePictures),
		MinCodedExtent:                    Extent2D{Width: uint32(caps.minCodedExtent.width), Height: uint32(caps.minCodedExtent.height)},
		MaxCodedExtent:                    Extent2D{Width: uint32(caps.maxCodedExtent.width), Height: uint32(caps.maxCodedExtent.height)},
		MaxLevelIdc:                       int32(h264Caps.maxLevelIdc),
	}, nil
}

// DecodeFormats lists the image formats the device accepts for the decode
// profile with the given usage, typically DPB or decode DST.
func DecodeFormats(physicalDevice *PhysicalDevice, usage ImageUsageFlags) ([]Format, error) {
	var count C.uint32_t
	result := C.call_vkGetPhysicalDeviceVideoFormatPropertiesKHR(physicalDevice.handle, C.VkImageUsageFlags(usage), &count, nil)
	if result != C.VK_SUCCESS {
		return nil, errVulkanMsg(Result(result), "vkGetPhysicalDeviceVideoFormatPropertiesKHR")
	}
	if count == 0 {
		return nil, nil
	}

	properties := make([]C.VkVideoFormatPropertiesKHR, count)
	result = C.call_vkGetPhysicalDeviceVideoFormatPropertiesKHR(physicalDevice.handle, C.VkImageUsageFlags(usage), &count, &properties[0])
	if result != C.VK_SUCCESS {
		return nil, errVulkanMsg(Result(result), "vkGetPhysicalDeviceVideoFormatPropertiesKHR")
	}

	formats := make([]Format, count)
	for i := range formats {
		formats[i] = Format(properties[i].format)
	}

	return formats, nil
}

// VideoSession is the driver-side decoder state. Creation allocates and
// binds the session's memory bindings; the session owns those allocations.
type VideoSession struct {
	handle      C.VkVideoSessionKHR
	device      *Device
	node        *owner
	allocations []*Allocation
	maxCoded    Extent2D
	resetDone   bool
}

// NewVideoSession creates an H.264 decode session on the given queue
// family, sized for streams up to maxCoded.
func NewVideoSession(device *Device, queueFamily uint32, maxCoded Extent2D) (*VideoSession, error) {
	extent := C.VkExtent2D{
		width:  C.uint32_t(maxCoded.Width),
		height: C.uint32_t(maxCoded.Height),
	}

	var handle C.VkVideoSessionKHR
	result := C.call_vkCreateVideoSessionH264KHR(device.handle, C.uint32_t(queueFamily), extent, maxDpbSlots, maxActiveReferenceCount, &handle)
	if result != C.VK_SUCCESS {
		return nil, errVulkanMsg(Result(result), "vkCreateVideoSessionKHR")
	}

	session := &VideoSession{
		handle:   handle,
		device:   device,
		maxCoded: maxCoded,
	}
	deviceHandle := device.handle
	session.node = newOwner("video session", device.log, func() {
		C.call_vkDestroyVideoSessionKHR(deviceHandle, handle)
	}, device.node)

	if err := session.bindMemory(); err != nil {
		session.node.release()
		return nil, err
	}

	device.log.Debugf("video session created, %d memory bindings, max coded extent %dx%d",
		len(session.allocations), maxCoded.Width, maxCoded.Height)

	return session, nil
}

func (session *VideoSession) bindMemory() error {
	var count C.uint32_t
	result := C.call_vkGetVideoSessionMemoryRequirementsKHR(session.device.handle, session.handle, &count, nil)
	if result != C.VK_SUCCESS {
		return errVulkanMsg(Result(result), "vkGetVideoSessionMemoryRequirementsKHR")
	}
	if count == 0 {
		return nil
	}

	requirements := make([]C.VkVideoSessionMemoryRequirementsKHR, count)
	result = C.call_vkGetVideoSessionMemoryRequirementsKHR(session.device.handle, session.handle, &count, &requirements[0])
	if result != C.VK_SUCCESS {
		return errVulkanMsg(Result(result), "vkGetVideoSessionMemoryRequirementsKHR")
	}

	bindings := (*[1 << 24]C.VkBindVideoSessionMemoryInfoKHR)(C.calloc(C.size_t(count), C.sizeof_VkBindVideoSessionMemoryInfoKHR))[:count:count]
	defer C.free(unsafe.Pointer(&bindings[0]))

	for i, reqs := range requirements[:count] {
		heap := MemoryRequirements{
			Size:           uint64(reqs.memoryRequirements.size),
			Alignment:      uint64(reqs.memoryRequirements.alignment),
			MemoryTypeBits: uint32(reqs.memoryRequirements.memoryTypeBits),
		}

		allocation, err := NewAllocation(session.device, heap.Size, heap.AnyHeap())
		if err != nil {
			return err
		}
		session.allocations = append(session.allocations, allocation)

		bindings[i].sType = C.VK_STRUCTURE_TYPE_BIND_VIDEO_SESSION_MEMORY_INFO_KHR
		bindings[i].memoryBindIndex = reqs.memoryBindIndex
		bindings[i].memory = allocation.handle
		bindings[i].memoryOffset = 0
		bindings[i].memorySize = reqs.memoryRequirements.size

		// The session keeps its backing memory alive.
		session.node.parents = append(session.node.parents, allocation.node)
	}

	result = C.call_vkBindVideoSessionMemoryKHR(session.device.handle, session.handle, count, &bindings[0])
	if result != C.VK_SUCCESS {
		return errVulkanMsg(Result(result), "vkBindVideoSessionMemoryKHR")
	}

	return nil
}

func (session *VideoSession) Retain()  { session.node.retain() }
func (session *VideoSession) Release() { session.node.release() }

func (session *VideoSession) MaxCodedExtent() Extent2D { return session.maxCoded }

// VideoSessionParameters holds the SPS/PPS sets the decoder works from.
// Parameters are immutable; when the stream context changes, build a new
// set instead of updating this one.
type VideoSessionParameters struct {
	handle  C.VkVideoSessionParametersKHR
	session *VideoSession
	node    *owner
}

// NewVideoSessionParameters uploads every SPS and PPS the inspector has
// seen into a fresh parameters object for the session.
func NewVideoSessionParameters(session *VideoSession, inspector *StreamInspector) (*VideoSessionParameters, error) {
	var handle C.VkVideoSessionParametersKHR

	err := inspector.runWithCreateInfo(func(info *C.VkVideoSessionParametersCreateInfoKHR) error {
		info.videoSession = session.handle

		result := C.call_vkCreateVideoSessionParametersKHR(session.device.handle, info, &handle)
		if result != C.VK_SUCCESS {
			return errVulkanMsg(Result(result), "vkCreateVideoSessionParametersKHR")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	parameters := &VideoSessionParameters{handle: handle, session: session}
	deviceHandle := session.device.handle
	parameters.node = newOwner("video session parameters", session.device.log, func() {
		C.call_vkDestroyVideoSessionParametersKHR(deviceHandle, handle)
	}, session.node)

	return parameters, nil
}

func (parameters *VideoSessionParameters) Retain()  { parameters.node.retain() }
func (parameters *VideoSessionParameters) Release() { parameters.node.release() }

// Thin wrappers so other files can record video commands; the loaded
// function pointers live in this file's preamble.

func videoCmdBegin(cb C.VkCommandBuffer, info *C.VkVideoBeginCodingInfoKHR) {
	C.call_vkCmdBeginVideoCodingKHR(cb, info)
}

func videoCmdEnd(cb C.VkCommandBuffer, info *C.VkVideoEndCodingInfoKHR) {
	C.call_vkCmdEndVideoCodingKHR(cb, info)
}

func videoCmdControl(cb C.VkCommandBuffer, info *C.VkVideoCodingControlInfoKHR) {
	C.call_vkCmdControlVideoCodingKHR(cb, info)
}

func videoCmdDecode(cb C.VkCommandBuffer, info *C.VkVideoDecodeInfoKHR) {
	C.call_vkCmdDecodeVideoKHR(cb, info)
}
