// device.go
package vkvideo

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import (
	"unsafe"

	"github.com/pion/logging"
)

var deviceExtensions = []string{
	"VK_KHR_video_queue",
	"VK_KHR_video_decode_queue",
	"VK_KHR_video_decode_h264",
}

type deviceCreateData struct {
	cInfo            *C.VkDeviceCreateInfo
	queueCreateInfos []C.VkDeviceQueueCreateInfo
	queuePriorities  []C.float
	extensions       []*C.char
	sync2            *C.VkPhysicalDeviceSynchronization2Features
}

func vulkanizeDeviceCreate(queueFamilies []uint32) *deviceCreateData {
	data := &deviceCreateData{}

	data.cInfo = (*C.VkDeviceCreateInfo)(C.calloc(1, C.sizeof_VkDeviceCreateInfo))
	data.cInfo.sType = C.VK_STRUCTURE_TYPE_DEVICE_CREATE_INFO

	data.queuePriorities = []C.float{1.0}
	data.queueCreateInfos = make([]C.VkDeviceQueueCreateInfo, len(queueFamilies))
	for i, family := range queueFamilies {
		data.queueCreateInfos[i].sType = C.VK_STRUCTURE_TYPE_DEVICE_QUEUE_CREATE_INFO
		data.queueCreateInfos[i].queueFamilyIndex = C.uint32_t(family)
		data.queueCreateInfos[i].queueCount = 1
		data.queueCreateInfos[i].pQueuePriorities = &data.queuePriorities[0]
	}
	data.cInfo.queueCreateInfoCount = C.uint32_t(len(data.queueCreateInfos))
	data.cInfo.pQueueCreateInfos = &data.queueCreateInfos[0]

	data.extensions = make([]*C.char, len(deviceExtensions))
	for i, ext := range deviceExtensions {
		data.extensions[i] = C.CString(ext)
	}
	data.cInfo.enabledExtensionCount = C.uint32_t(len(data.extensions))
	data.cInfo.ppEnabledExtensionNames = &data.extensions[0]

	// All barriers in this library are synchronization2 barriers.
	data.sync2 = (*C.VkPhysicalDeviceSynchronization2Features)(C.calloc(1, C.sizeof_VkPhysicalDeviceSynchronization2Features))
	data.sync2.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_SYNCHRONIZATION_2_FEATURES
	data.sync2.synchronization2 = C.VK_TRUE
	data.cInfo.pNext = unsafe.Pointer(data.sync2)

	return data
}

func (data *deviceCreateData) free() {
	for _, ext := range data.extensions {
		C.free(unsafe.Pointer(ext))
	}
	if data.sync2 != nil {
		C.free(unsafe.Pointer(data.sync2))
	}
	if data.cInfo != nil {
		C.free(unsafe.Pointer(data.cInfo))
	}
}

// Device owns the logical device and sits between the physical device and
// every resource created from it.
type Device struct {
	handle         C.VkDevice
	physicalDevice *PhysicalDevice
	node           *owner
	log            logging.LeveledLogger
	queueFamilies  []uint32
}

// NewDevice creates a logical device with one queue on every family that
// offers compute or video decode, the video decode extensions enabled, and
// synchronization2 on.
func NewDevice(physicalDevice *PhysicalDevice) (*Device, error) {
	var families []uint32
	for i, info := range physicalDevice.QueueFamilyInfos() {
		if info.QueueCount == 0 {
			continue
		}
		if info.QueueFlags&(QUEUE_COMPUTE_BIT|QUEUE_VIDEO_DECODE_BIT_KHR) != 0 {
			families = append(families, uint32(i))
		}
	}
	if len(families) == 0 {
		return nil, errKind(ErrQueueNotFound)
	}

	data := vulkanizeDeviceCreate(families)
	defer data.free()

	var handle C.VkDevice
	result := C.vkCreateDevice(physicalDevice.handle, data.cInfo, nil, &handle)
	if result != C.VK_SUCCESS {
		return nil, errVulkanMsg(Result(result), "vkCreateDevice")
	}

	device := &Device{
		handle:         handle,
		physicalDevice: physicalDevice,
		log:            physicalDevice.instance.log,
		queueFamilies:  families,
	}
	device.node = newOwner("device", device.log, func() {
		C.vkDestroyDevice(handle, nil)
	}, physicalDevice.node)

	if !loadDeviceVideoFunctions(device) {
		device.Release()
		return nil, errKindf(ErrLoading, "video decode entry points missing")
	}

	return device, nil
}

func (device *Device) Retain()  { device.node.retain() }
func (device *Device) Release() { device.node.release() }

func (device *Device) PhysicalDevice() *PhysicalDevice { return device.physicalDevice }

func (device *Device) WaitIdle() error {
	result := C.vkDeviceWaitIdle(device.handle)
	if result != C.VK_SUCCESS {
		return errVulkan(Result(result))
	}
	return nil
}
