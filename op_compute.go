// op_compute.go
package vkvideo

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
*/
import "C"
import "unsafe"

// ComputeDispatch binds a compute pipeline with a parameter list and
// dispatches it. The operation allocates its own descriptor pool and set on
// first use and keeps them until Release, so the same operation can be
// resubmitted. Params must match the list the pipeline was created with.
type ComputeDispatch struct {
	Pipeline *ComputePipeline
	Params   []Parameter
	X, Y, Z  uint32

	pool C.VkDescriptorPool
	set  C.VkDescriptorSet
	node *owner
}

func (op *ComputeDispatch) RunIn(builder *CommandBuilder) error {
	if len(op.Params) != len(op.Pipeline.bindings) {
		return errKindf(ErrNoComputePipeline, "pipeline expects %d parameters, got %d", len(op.Pipeline.bindings), len(op.Params))
	}
	for i, param := range op.Params {
		if param.descriptorType() != op.Pipeline.bindings[i] {
			return errKindf(ErrNoComputePipeline, "parameter %d type mismatch", i)
		}
	}

	if op.set == nil {
		if err := op.allocateSet(builder.device); err != nil {
			return err
		}
	}

	// Host writes to parameter buffers become visible to the shader.
	var acquire []bufferBarrier
	for _, param := range op.Params {
		buffer := parameterBuffer(param)
		if buffer == nil {
			continue
		}
		acquire = append(acquire, bufferBarrier{
			srcStageMask:  PIPELINE_STAGE_2_HOST_BIT,
			srcAccessMask: ACCESS_2_HOST_WRITE_BIT,
			dstStageMask:  PIPELINE_STAGE_2_COMPUTE_SHADER_BIT,
			dstAccessMask: ACCESS_2_SHADER_READ_BIT | ACCESS_2_SHADER_WRITE_BIT,
			srcQueue:      builder.queueFamily,
			dstQueue:      builder.queueFamily,
			buffer:        buffer.handle,
		})
	}
	if len(acquire) > 0 {
		builder.pipelineBarrier(nil, acquire)
	}

	C.vkCmdBindPipeline(builder.handle, C.VK_PIPELINE_BIND_POINT_COMPUTE, op.Pipeline.handle)
	C.vkCmdBindDescriptorSets(builder.handle, C.VK_PIPELINE_BIND_POINT_COMPUTE, op.Pipeline.layout, 0, 1, &op.set, 0, nil)
	C.vkCmdDispatch(builder.handle, C.uint32_t(op.X), C.uint32_t(op.Y), C.uint32_t(op.Z))

	// Shader writes become visible to the host.
	var release []bufferBarrier
	for _, param := range op.Params {
		buffer := parameterBuffer(param)
		if buffer == nil {
			continue
		}
		release = append(release, bufferBarrier{
			srcStageMask:  PIPELINE_STAGE_2_COMPUTE_SHADER_BIT,
			srcAccessMask: ACCESS_2_SHADER_WRITE_BIT,
			dstStageMask:  PIPELINE_STAGE_2_HOST_BIT,
			dstAccessMask: ACCESS_2_HOST_READ_BIT,
			srcQueue:      builder.queueFamily,
			dstQueue:      builder.queueFamily,
			buffer:        buffer.handle,
		})
	}
	if len(release) > 0 {
		builder.pipelineBarrier(nil, release)
	}

	return nil
}

func parameterBuffer(param Parameter) *Buffer {
	switch p := param.(type) {
	case BufferParameter:
		return p.Buffer
	case UniformParameter:
		return p.Buffer
	default:
		return nil
	}
}

func (op *ComputeDispatch) allocateSet(device *Device) error {
	counts := map[DescriptorType]uint32{}
	for _, descriptorType := range op.Pipeline.bindings {
		counts[descriptorType]++
	}

	poolInfo := (*C.VkDescriptorPoolCreateInfo)(C.calloc(1, C.sizeof_VkDescriptorPoolCreateInfo))
	poolInfo.sType = C.VK_STRUCTURE_TYPE_DESCRIPTOR_POOL_CREATE_INFO
	poolInfo.maxSets = 1

	var sizes []C.VkDescriptorPoolSize
	if len(counts) > 0 {
		sizes = make([]C.VkDescriptorPoolSize, 0, len(counts))
		for descriptorType, count := range counts {
			sizes = append(sizes, C.VkDescriptorPoolSize{
				_type:           C.VkDescriptorType(descriptorType),
				descriptorCount: C.uint32_t(count),
			})
		}
		poolInfo.poolSizeCount = C.uint32_t(len(sizes))
		poolInfo.pPoolSizes = &sizes[0]
	}

	var pool C.VkDescriptorPool
	result := C.vkCreateDescriptorPool(device.handle, poolInfo, nil, &pool)
	C.free(unsafe.Pointer(poolInfo))
	if result != C.VK_SUCCESS {
		return errVulkanMsg(Result(result), "vkCreateDescriptorPool")
	}

	allocInfo := (*C.VkDescriptorSetAllocateInfo)(C.calloc(1, C.sizeof_VkDescriptorSetAllocateInfo))
	allocInfo.sType = C.VK_STRUCTURE_TYPE_DESCRIPTOR_SET_ALLOCATE_INFO
	allocInfo.descriptorPool = pool
	allocInfo.descriptorSetCount = 1
	allocInfo.pSetLayouts = &op.Pipeline.setLayout

	var set C.VkDescriptorSet
	result = C.vkAllocateDescriptorSets(device.handle, allocInfo, &set)
	C.free(unsafe.Pointer(allocInfo))
	if result != C.VK_SUCCESS {
		C.vkDestroyDescriptorPool(device.handle, pool, nil)
		return errVulkanMsg(Result(result), "vkAllocateDescriptorSets")
	}

	op.pool = pool
	op.set = set
	deviceHandle := device.handle
	op.node = newOwner("compute dispatch", device.log, func() {
		// Destroying the pool frees the set.
		C.vkDestroyDescriptorPool(deviceHandle, pool, nil)
	}, op.Pipeline.node)

	op.writeSet(device)
	return nil
}

func (op *ComputeDispatch) writeSet(device *Device) {
	if len(op.Params) == 0 {
		return
	}

	writes := (*[1 << 24]C.VkWriteDescriptorSet)(C.calloc(C.size_t(len(op.Params)), C.sizeof_VkWriteDescriptorSet))[:len(op.Params):len(op.Params)]
	defer C.free(unsafe.Pointer(&writes[0]))

	var frees []unsafe.Pointer
	defer func() {
		for _, ptr := range frees {
			C.free(ptr)
		}
	}()

	for i, param := range op.Params {
		writes[i].sType = C.VK_STRUCTURE_TYPE_WRITE_DESCRIPTOR_SET
		writes[i].dstSet = op.set
		writes[i].dstBinding = C.uint32_t(i)
		writes[i].descriptorCount = 1
		writes[i].descriptorType = C.VkDescriptorType(param.descriptorType())

		switch p := param.(type) {
		case BufferParameter, UniformParameter:
			buffer := parameterBuffer(param)
			info := (*C.VkDescriptorBufferInfo)(C.calloc(1, C.sizeof_VkDescriptorBufferInfo))
			frees = append(frees, unsafe.Pointer(info))
			info.buffer = buffer.handle
			info.offset = 0
			info._range = C.VK_WHOLE_SIZE
			writes[i].pBufferInfo = info
		case ImageParameter:
			info := (*C.VkDescriptorImageInfo)(C.calloc(1, C.sizeof_VkDescriptorImageInfo))
			frees = append(frees, unsafe.Pointer(info))
			info.imageView = p.View.handle
			info.imageLayout = C.VkImageLayout(p.layout())
			writes[i].pImageInfo = info
		}
	}

	C.vkUpdateDescriptorSets(device.handle, C.uint32_t(len(op.Params)), &writes[0], 0, nil)
}

// Release frees the descriptor pool the operation allocated. Safe to call
// on an operation that never ran.
func (op *ComputeDispatch) Release() {
	if op.node != nil {
		op.node.release()
		op.node = nil
		op.pool = nil
		op.set = nil
	}
}
