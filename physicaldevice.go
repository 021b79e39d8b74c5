// physicaldevice.go
package vkvideo

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"

// PhysicalDevice is a non-owning view of a GPU; it lives as long as its
// Instance and retains it for the duration.
type PhysicalDevice struct {
	handle   C.VkPhysicalDevice
	instance *Instance
	node     *owner
}

// NewAnyPhysicalDevice picks the first GPU that advertises an H.264 decode
// queue family.
func NewAnyPhysicalDevice(instance *Instance) (*PhysicalDevice, error) {
	var count C.uint32_t
	result := C.vkEnumeratePhysicalDevices(instance.handle, &count, nil)
	if result != C.VK_SUCCESS {
		return nil, errVulkanMsg(Result(result), "vkEnumeratePhysicalDevices")
	}
	if count == 0 {
		return nil, errKind(ErrNoVideoDevice)
	}

	handles := make([]C.VkPhysicalDevice, count)
	result = C.vkEnumeratePhysicalDevices(instance.handle, &count, &handles[0])
	if result != C.VK_SUCCESS {
		return nil, errVulkanMsg(Result(result), "vkEnumeratePhysicalDevices")
	}

	for _, handle := range handles {
		candidate := &PhysicalDevice{handle: handle, instance: instance}
		if _, ok := candidate.QueueFamilyInfos().AnyDecode(); ok {
			candidate.node = newOwner("physical device", instance.log, nil, instance.node)
			return candidate, nil
		}
	}

	return nil, errKindf(ErrNoVideoDevice, "%d devices enumerated, none with an H.264 decode queue", count)
}

func (physicalDevice *PhysicalDevice) Release() { physicalDevice.node.release() }

func (physicalDevice *PhysicalDevice) Instance() *Instance { return physicalDevice.instance }

// QueueFamilyInfos snapshots the queue family table.
func (physicalDevice *PhysicalDevice) QueueFamilyInfos() QueueFamilyInfos {
	var count C.uint32_t
	C.vkGetPhysicalDeviceQueueFamilyProperties(physicalDevice.handle, &count, nil)

	if count == 0 {
		return nil
	}

	props := make([]C.VkQueueFamilyProperties, count)
	C.vkGetPhysicalDeviceQueueFamilyProperties(physicalDevice.handle, &count, &props[0])

	infos := make(QueueFamilyInfos, count)
	for i := range infos {
		infos[i] = QueueFamilyProperties{
			QueueFlags:         QueueFlags(props[i].queueFlags),
			QueueCount:         uint32(props[i].queueCount),
			TimestampValidBits: uint32(props[i].timestampValidBits),
			MinImageTransferGranularity: Extent3D{
				Width:  uint32(props[i].minImageTransferGranularity.width),
				Height: uint32(props[i].minImageTransferGranularity.height),
				Depth:  uint32(props[i].minImageTransferGranularity.depth),
			},
		}
	}

	return infos
}

type QueueFamilyInfos []QueueFamilyProperties

// AnyCompute returns the index of a queue family with compute support.
func (infos QueueFamilyInfos) AnyCompute() (uint32, bool) {
	return infos.any(QUEUE_COMPUTE_BIT)
}

// AnyDecode returns the index of a queue family with video decode support.
func (infos QueueFamilyInfos) AnyDecode() (uint32, bool) {
	return infos.any(QUEUE_VIDEO_DECODE_BIT_KHR)
}

func (infos QueueFamilyInfos) any(flags QueueFlags) (uint32, bool) {
	for i, info := range infos {
		if info.QueueCount > 0 && info.QueueFlags&flags == flags {
			return uint32(i), true
		}
	}
	return 0, false
}

// MemoryTypeIndex names one entry of the device's memory type table.
type MemoryTypeIndex uint32

type HeapInfo struct {
	Index         MemoryTypeIndex
	PropertyFlags MemoryPropertyFlags
	HeapSize      uint64
}

type HeapInfos []HeapInfo

// HeapInfos snapshots the memory type table with heap sizes attached.
func (physicalDevice *PhysicalDevice) HeapInfos() HeapInfos {
	var props C.VkPhysicalDeviceMemoryProperties
	C.vkGetPhysicalDeviceMemoryProperties(physicalDevice.handle, &props)

	infos := make(HeapInfos, 0, props.memoryTypeCount)
	for i := C.uint32_t(0); i < props.memoryTypeCount; i++ {
		memType := props.memoryTypes[i]
		infos = append(infos, HeapInfo{
			Index:         MemoryTypeIndex(i),
			PropertyFlags: MemoryPropertyFlags(memType.propertyFlags),
			HeapSize:      uint64(props.memoryHeaps[memType.heapIndex].size),
		})
	}
	return infos
}

// AnyHostVisible returns a coherent host-visible memory type.
func (infos HeapInfos) AnyHostVisible() (MemoryTypeIndex, bool) {
	return infos.any(MEMORY_PROPERTY_HOST_VISIBLE_BIT | MEMORY_PROPERTY_HOST_COHERENT_BIT)
}

// AnyDeviceLocal returns a device-local memory type.
func (infos HeapInfos) AnyDeviceLocal() (MemoryTypeIndex, bool) {
	return infos.any(MEMORY_PROPERTY_DEVICE_LOCAL_BIT)
}

func (infos HeapInfos) any(flags MemoryPropertyFlags) (MemoryTypeIndex, bool) {
	for _, info := range infos {
		if info.PropertyFlags&flags == flags {
			return info.Index, true
		}
	}
	return 0, false
}

// AnyFiltered is AnyHostVisible/AnyDeviceLocal restricted to the memory
// types a specific resource accepts.
func (infos HeapInfos) AnyFiltered(typeBits uint32, flags MemoryPropertyFlags) (MemoryTypeIndex, bool) {
	for _, info := range infos {
		if typeBits&(1<<uint32(info.Index)) == 0 {
			continue
		}
		if info.PropertyFlags&flags == flags {
			return info.Index, true
		}
	}
	return 0, false
}
