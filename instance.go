// instance.go
package vkvideo

/*
#cgo windows LDFLAGS: -LC:/VulkanSDK/1.4.328.1/Lib -lvulkan-1
#cgo windows CFLAGS: -IC:/VulkanSDK/1.4.328.1/Include
#cgo linux LDFLAGS: -L/usr/lib/x86_64-linux-gnu -lvulkan
#cgo darwin LDFLAGS: -lvulkan
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import (
	"strings"
	"unsafe"

	"github.com/pion/logging"
)

const validationLayerName = "VK_LAYER_KHRONOS_validation"

// InstanceInfo configures Instance creation.
type InstanceInfo struct {
	appName       string
	appVersion    uint32
	validation    bool
	loggerFactory logging.LoggerFactory
}

func NewInstanceInfo() *InstanceInfo {
	return &InstanceInfo{appName: "vkvideo"}
}

func (info *InstanceInfo) AppName(name string) *InstanceInfo {
	info.appName = name
	return info
}

func (info *InstanceInfo) AppVersion(version uint32) *InstanceInfo {
	info.appVersion = version
	return info
}

func (info *InstanceInfo) Validation(enabled bool) *InstanceInfo {
	info.validation = enabled
	return info
}

func (info *InstanceInfo) LoggerFactory(factory logging.LoggerFactory) *InstanceInfo {
	info.loggerFactory = factory
	return info
}

type instanceCreateData struct {
	cInfo   *C.VkInstanceCreateInfo
	appInfo *C.VkApplicationInfo
	appName *C.char
	layers  []*C.char
}

func (info *InstanceInfo) vulkanize() *instanceCreateData {
	data := &instanceCreateData{}

	data.appName = C.CString(info.appName)

	data.appInfo = (*C.VkApplicationInfo)(C.calloc(1, C.sizeof_VkApplicationInfo))
	data.appInfo.sType = C.VK_STRUCTURE_TYPE_APPLICATION_INFO
	data.appInfo.pApplicationName = data.appName
	data.appInfo.applicationVersion = C.uint32_t(info.appVersion)
	data.appInfo.pEngineName = data.appName
	data.appInfo.engineVersion = C.uint32_t(info.appVersion)
	data.appInfo.apiVersion = C.VK_API_VERSION_1_3

	data.cInfo = (*C.VkInstanceCreateInfo)(C.calloc(1, C.sizeof_VkInstanceCreateInfo))
	data.cInfo.sType = C.VK_STRUCTURE_TYPE_INSTANCE_CREATE_INFO
	data.cInfo.pNext = nil
	data.cInfo.pApplicationInfo = data.appInfo

	if info.validation {
		data.layers = []*C.char{C.CString(validationLayerName)}
		data.cInfo.enabledLayerCount = C.uint32_t(len(data.layers))
		data.cInfo.ppEnabledLayerNames = &data.layers[0]
	}

	return data
}

func (data *instanceCreateData) free() {
	for _, layer := range data.layers {
		C.free(unsafe.Pointer(layer))
	}
	if data.appInfo != nil {
		C.free(unsafe.Pointer(data.appInfo))
	}
	if data.cInfo != nil {
		C.free(unsafe.Pointer(data.cInfo))
	}
	C.free(unsafe.Pointer(data.appName))
}

// Instance is the root of the ownership graph.
type Instance struct {
	handle        C.VkInstance
	node          *owner
	log           logging.LeveledLogger
	loggerFactory logging.LoggerFactory
}

func NewInstance(info *InstanceInfo) (*Instance, error) {
	if strings.ContainsRune(info.appName, 0) {
		return nil, errKindf(ErrNul, "application name %q", info.appName)
	}

	factory := info.loggerFactory
	if factory == nil {
		factory = logging.NewDefaultLoggerFactory()
	}
	log := factory.NewLogger("vkvideo")

	data := info.vulkanize()
	defer data.free()

	var handle C.VkInstance
	result := C.vkCreateInstance(data.cInfo, nil, &handle)
	if result != C.VK_SUCCESS {
		return nil, errVulkanMsg(Result(result), "vkCreateInstance")
	}

	instance := &Instance{
		handle:        handle,
		log:           log,
		loggerFactory: factory,
	}
	instance.node = newOwner("instance", log, func() {
		C.vkDestroyInstance(handle, nil)
	})

	if !loadInstanceVideoFunctions(instance) {
		instance.log.Warn("video capability queries unavailable on this loader")
	}

	return instance, nil
}

// Retain adds an ownership reference for callers that share the instance.
func (instance *Instance) Retain() { instance.node.retain() }

// Release drops one ownership reference. The native instance is destroyed
// once the last holder, including every child resource, has released it.
func (instance *Instance) Release() { instance.node.release() }

func EnumerateInstanceVersion() (uint32, error) {
	var version C.uint32_t
	result := C.vkEnumerateInstanceVersion(&version)

	if result != C.VK_SUCCESS {
		return 0, errVulkan(Result(result))
	}

	return uint32(version), nil
}
