// queue.go
package vkvideo

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import (
	"time"
	"unsafe"
)

// SubmitTimeout bounds the fence wait inside BuildAndSubmit. A fence that
// has not signaled after this long on an otherwise idle queue is treated as
// a lost device. Zero waits forever.
var SubmitTimeout = 10 * time.Second

// CommandBuilder is the recording context handed to operations. It carries
// the queue family so operations can record queue-ownership transfer
// barriers against the right family.
type CommandBuilder struct {
	handle      C.VkCommandBuffer
	device      *Device
	queueFamily uint32
}

func (builder *CommandBuilder) QueueFamily() uint32 { return builder.queueFamily }

// Queue wraps one device queue.
type Queue struct {
	handle      C.VkQueue
	device      *Device
	node        *owner
	queueFamily uint32
}

func NewQueue(device *Device, queueFamily, queueIndex uint32) (*Queue, error) {
	var handle C.VkQueue
	C.vkGetDeviceQueue(device.handle, C.uint32_t(queueFamily), C.uint32_t(queueIndex), &handle)
	if handle == nil {
		return nil, errKindf(ErrQueueNotFound, "family %d index %d", queueFamily, queueIndex)
	}

	queue := &Queue{
		handle:      handle,
		device:      device,
		queueFamily: queueFamily,
	}
	// Queues belong to the device; there is nothing to destroy.
	queue.node = newOwner("queue", device.log, nil, device.node)

	return queue, nil
}

func (queue *Queue) Retain()  { queue.node.retain() }
func (queue *Queue) Release() { queue.node.release() }

func (queue *Queue) QueueFamily() uint32 { return queue.queueFamily }

// BuildAndSubmit records the given operations into the command buffer,
// submits, and blocks until the work completed: reset, begin, record, end,
// submit with a fresh fence, wait on the fence, then wait for the queue to
// go idle. Any driver failure aborts the submission and is surfaced
// verbatim; partially recorded commands are discarded by the reset on the
// next use.
func (queue *Queue) BuildAndSubmit(cb *CommandBuffer, record func(*CommandBuilder) error) error {
	return queue.BuildAndSubmitTimeout(cb, SubmitTimeout, record)
}

// BuildAndSubmitTimeout is BuildAndSubmit with an explicit fence timeout.
// A timeout of zero waits forever.
func (queue *Queue) BuildAndSubmitTimeout(cb *CommandBuffer, timeout time.Duration, record func(*CommandBuilder) error) error {
	if cb == nil {
		return errKind(ErrNoCommandBuffer)
	}

	fenceInfo := (*C.VkFenceCreateInfo)(C.calloc(1, C.sizeof_VkFenceCreateInfo))
	fenceInfo.sType = C.VK_STRUCTURE_TYPE_FENCE_CREATE_INFO

	var fence C.VkFence
	result := C.vkCreateFence(queue.device.handle, fenceInfo, nil, &fence)
	C.free(unsafe.Pointer(fenceInfo))
	if result != C.VK_SUCCESS {
		return errVulkanMsg(Result(result), "vkCreateFence")
	}
	defer C.vkDestroyFence(queue.device.handle, fence, nil)

	if err := cb.reset(); err != nil {
		return err
	}
	if err := cb.begin(); err != nil {
		return err
	}

	builder := &CommandBuilder{
		handle:      cb.handle,
		device:      queue.device,
		queueFamily: cb.queueFamily,
	}
	if err := record(builder); err != nil {
		return err
	}

	if err := cb.end(); err != nil {
		return err
	}

	submitInfo := (*C.VkSubmitInfo)(C.calloc(1, C.sizeof_VkSubmitInfo))
	submitInfo.sType = C.VK_STRUCTURE_TYPE_SUBMIT_INFO
	submitInfo.commandBufferCount = 1
	submitInfo.pCommandBuffers = &cb.handle

	result = C.vkQueueSubmit(queue.handle, 1, submitInfo, fence)
	C.free(unsafe.Pointer(submitInfo))
	if result != C.VK_SUCCESS {
		return errVulkanMsg(Result(result), "vkQueueSubmit")
	}

	if err := queue.waitFence(fence, timeout); err != nil {
		return err
	}

	return queue.WaitIdle()
}

func (queue *Queue) waitFence(fence C.VkFence, timeout time.Duration) error {
	nanos := C.uint64_t(C.UINT64_MAX)
	if timeout > 0 {
		nanos = C.uint64_t(timeout.Nanoseconds())
	}

	result := C.vkWaitForFences(queue.device.handle, 1, &fence, C.VK_TRUE, nanos)
	switch Result(result) {
	case SUCCESS:
		return nil
	case TIMEOUT:
		return errVulkanMsg(DEVICE_LOST, "fence not signaled within submit timeout")
	default:
		return errVulkanMsg(Result(result), "vkWaitForFences")
	}
}

func (queue *Queue) WaitIdle() error {
	result := C.vkQueueWaitIdle(queue.handle)
	if result != C.VK_SUCCESS {
		return errVulkanMsg(Result(result), "vkQueueWaitIdle")
	}
	return nil
}
