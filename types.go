package vkvideo

import "fmt"

type Result int32

const (
	SUCCESS                                  Result = 0
	NOT_READY                                Result = 1
	TIMEOUT                                  Result = 2
	EVENT_SET                                Result = 3
	EVENT_RESET                              Result = 4
	INCOMPLETE                               Result = 5
	OUT_OF_HOST_MEMORY                       Result = -1
	OUT_OF_DEVICE_MEMORY                     Result = -2
	INITIALIZATION_FAILED                    Result = -3
	DEVICE_LOST                              Result = -4
	MEMORY_MAP_FAILED                        Result = -5
	LAYER_NOT_PRESENT                        Result = -6
	EXTENSION_NOT_PRESENT                    Result = -7
	FEATURE_NOT_PRESENT                      Result = -8
	INCOMPATIBLE_DRIVER                      Result = -9
	TOO_MANY_OBJECTS                         Result = -10
	FORMAT_NOT_SUPPORTED                     Result = -11
	FRAGMENTED_POOL                          Result = -12
	UNKNOWN                                  Result = -13
	OUT_OF_POOL_MEMORY                       Result = -1000069000
	INVALID_EXTERNAL_HANDLE                  Result = -1000072003
	FRAGMENTATION                            Result = -1000161000
	INVALID_OPAQUE_CAPTURE_ADDRESS           Result = -1000257000
	VALIDATION_FAILED                        Result = -1000011001
	INVALID_SHADER                           Result = -1000012000
	IMAGE_USAGE_NOT_SUPPORTED                Result = -1000023000
	VIDEO_PICTURE_LAYOUT_NOT_SUPPORTED       Result = -1000023001
	VIDEO_PROFILE_OPERATION_NOT_SUPPORTED    Result = -1000023002
	VIDEO_PROFILE_FORMAT_NOT_SUPPORTED       Result = -1000023003
	VIDEO_PROFILE_CODEC_NOT_SUPPORTED        Result = -1000023004
	VIDEO_STD_VERSION_NOT_SUPPORTED          Result = -1000023005
	INVALID_VIDEO_STD_PARAMETERS             Result = -1000299000
	COMPRESSION_EXHAUSTED                    Result = -1000338000
	NOT_ENOUGH_SPACE                         Result = -1000483000
)

func (r Result) Error() string {
	// Convert result codes to strings
	switch r {
	case SUCCESS:
		return "SUCCESS"
	case NOT_READY:
		return "NOT READY"
	case TIMEOUT:
		return "TIMEOUT"
	case EVENT_SET:
		return "EVENT SET"
	case EVENT_RESET:
		return "EVENT RESET"
	case INCOMPLETE:
		return "INCOMPLETE"
	case OUT_OF_HOST_MEMORY:
		return "OUT OF HOST MEMORY"
	case OUT_OF_DEVICE_MEMORY:
		return "OUT OF DEVICE MEMORY"
	case INITIALIZATION_FAILED:
		return "INITIALIZATION FAILED"
	case DEVICE_LOST:
		return "DEVICE LOST"
	case MEMORY_MAP_FAILED:
		return "MEMORY MAP FAILED"
	case LAYER_NOT_PRESENT:
		return "LAYER NOT PRESENT"
	case EXTENSION_NOT_PRESENT:
		return "EXTENSION NOT PRESENT"
	case FEATURE_NOT_PRESENT:
		return "FEATURE NOT PRESENT"
	case INCOMPATIBLE_DRIVER:
		return "INCOMPATIBLE DRIVER"
	case TOO_MANY_OBJECTS:
		return "TOO MANY OBJECTS"
	case FORMAT_NOT_SUPPORTED:
		return "FORMAT NOT SUPPORTED"
	case FRAGMENTED_POOL:
		return "FRAGMENTED POOL"
	case UNKNOWN:
		return "UNKNOWN"
	case OUT_OF_POOL_MEMORY:
		return "OUT OF POOL MEMORY"
	case INVALID_EXTERNAL_HANDLE:
		return "INVALID EXTERNAL HANDLE"
	case FRAGMENTATION:
		return "FRAGMENTATION"
	case INVALID_OPAQUE_CAPTURE_ADDRESS:
		return "INVALID OPAQUE CAPTURE ADDRESS"
	case VALIDATION_FAILED:
		return "VALIDATION FAILED"
	case INVALID_SHADER:
		return "INVALID SHADER"
	case IMAGE_USAGE_NOT_SUPPORTED:
		return "IMAGE USAGE NOT SUPPORTED"
	case VIDEO_PICTURE_LAYOUT_NOT_SUPPORTED:
		return "VIDEO PICTURE LAYOUT NOT SUPPORTED"
	case VIDEO_PROFILE_OPERATION_NOT_SUPPORTED:
		return "VIDEO PROFILE OPERATION NOT SUPPORTED"
	case VIDEO_PROFILE_FORMAT_NOT_SUPPORTED:
		return "VIDEO PROFILE FORMAT NOT SUPPORTED"
	case VIDEO_PROFILE_CODEC_NOT_SUPPORTED:
		return "VIDEO PROFILE CODEC NOT SUPPORTED"
	case VIDEO_STD_VERSION_NOT_SUPPORTED:
		return "VIDEO STD VERSION NOT SUPPORTED"
	case INVALID_VIDEO_STD_PARAMETERS:
		return "INVALID VIDEO STD PARAMETERS"
	case COMPRESSION_EXHAUSTED:
		return "COMPRESSION EXHAUSTED"
	case NOT_ENOUGH_SPACE:
		return "NOT ENOUGH SPACE"
	default:
		return fmt.Sprintf("VkResult(%d)", r)
	}
}

type Extent2D struct {
	Width  uint32
	Height uint32
}

type Extent3D struct {
	Width  uint32
	Height uint32
	Depth  uint32
}

type Offset3D struct {
	X int32
	Y int32
	Z int32
}

type Format int32

const (
	FORMAT_UNDEFINED                 Format = 0
	FORMAT_R8G8B8A8_UNORM            Format = 37
	FORMAT_B8G8R8A8_UNORM            Format = 44
	FORMAT_G8_B8R8_2PLANE_420_UNORM  Format = 1000156003
	FORMAT_G8_B8_R8_3PLANE_420_UNORM Format = 1000156002
)

type SharingMode int32

const (
	SHARING_MODE_EXCLUSIVE  SharingMode = 0
	SHARING_MODE_CONCURRENT SharingMode = 1
)

type SampleCountFlags uint32

const (
	SAMPLE_COUNT_1_BIT SampleCountFlags = 0x1
	SAMPLE_COUNT_4_BIT SampleCountFlags = 0x4
)

type QueueFlags uint32

const (
	QUEUE_GRAPHICS_BIT         QueueFlags = 0x001
	QUEUE_COMPUTE_BIT          QueueFlags = 0x002
	QUEUE_TRANSFER_BIT         QueueFlags = 0x004
	QUEUE_VIDEO_DECODE_BIT_KHR QueueFlags = 0x020
	QUEUE_VIDEO_ENCODE_BIT_KHR QueueFlags = 0x040
)

type QueueFamilyProperties struct {
	QueueFlags                  QueueFlags
	QueueCount                  uint32
	TimestampValidBits          uint32
	MinImageTransferGranularity Extent3D
}

type ImageLayout int32

const (
	IMAGE_LAYOUT_UNDEFINED            ImageLayout = 0
	IMAGE_LAYOUT_GENERAL              ImageLayout = 1
	IMAGE_LAYOUT_TRANSFER_SRC_OPTIMAL ImageLayout = 6
	IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL ImageLayout = 7
	IMAGE_LAYOUT_VIDEO_DECODE_DST_KHR ImageLayout = 1000024000
	IMAGE_LAYOUT_VIDEO_DECODE_SRC_KHR ImageLayout = 1000024001
	IMAGE_LAYOUT_VIDEO_DECODE_DPB_KHR ImageLayout = 1000024002
)

type ImageType int32

const (
	IMAGE_TYPE_1D ImageType = 0
	IMAGE_TYPE_2D ImageType = 1
	IMAGE_TYPE_3D ImageType = 2
)

type ImageTiling int32

const (
	IMAGE_TILING_OPTIMAL ImageTiling = 0
	IMAGE_TILING_LINEAR  ImageTiling = 1
)

type ImageUsageFlags uint32

const (
	IMAGE_USAGE_TRANSFER_SRC_BIT         ImageUsageFlags = 0x00000001
	IMAGE_USAGE_TRANSFER_DST_BIT         ImageUsageFlags = 0x00000002
	IMAGE_USAGE_SAMPLED_BIT              ImageUsageFlags = 0x00000004
	IMAGE_USAGE_STORAGE_BIT              ImageUsageFlags = 0x00000008
	IMAGE_USAGE_VIDEO_DECODE_DST_BIT_KHR ImageUsageFlags = 0x00000400
	IMAGE_USAGE_VIDEO_DECODE_SRC_BIT_KHR ImageUsageFlags = 0x00000800
	IMAGE_USAGE_VIDEO_DECODE_DPB_BIT_KHR ImageUsageFlags = 0x00001000
)

type ImageAspectFlags uint32

const (
	IMAGE_ASPECT_COLOR_BIT   ImageAspectFlags = 0x001
	IMAGE_ASPECT_PLANE_0_BIT ImageAspectFlags = 0x010
	IMAGE_ASPECT_PLANE_1_BIT ImageAspectFlags = 0x020
	IMAGE_ASPECT_PLANE_2_BIT ImageAspectFlags = 0x040
)

type ImageViewType int32

const (
	IMAGE_VIEW_TYPE_1D ImageViewType = 0
	IMAGE_VIEW_TYPE_2D ImageViewType = 1
	IMAGE_VIEW_TYPE_3D ImageViewType = 2
)

type BufferUsageFlags uint32

const (
	BUFFER_USAGE_TRANSFER_SRC_BIT         BufferUsageFlags = 0x00000001
	BUFFER_USAGE_TRANSFER_DST_BIT         BufferUsageFlags = 0x00000002
	BUFFER_USAGE_UNIFORM_BUFFER_BIT       BufferUsageFlags = 0x00000010
	BUFFER_USAGE_STORAGE_BUFFER_BIT       BufferUsageFlags = 0x00000020
	BUFFER_USAGE_VIDEO_DECODE_SRC_BIT_KHR BufferUsageFlags = 0x00002000
	BUFFER_USAGE_VIDEO_DECODE_DST_BIT_KHR BufferUsageFlags = 0x00004000
)

type MemoryPropertyFlags uint32

const (
	MEMORY_PROPERTY_DEVICE_LOCAL_BIT  MemoryPropertyFlags = 0x001
	MEMORY_PROPERTY_HOST_VISIBLE_BIT  MemoryPropertyFlags = 0x002
	MEMORY_PROPERTY_HOST_COHERENT_BIT MemoryPropertyFlags = 0x004
	MEMORY_PROPERTY_HOST_CACHED_BIT   MemoryPropertyFlags = 0x008
)

// Synchronization2 stage and access masks. 64-bit on the driver side.
type PipelineStageFlags2 uint64

const (
	PIPELINE_STAGE_2_NONE                 PipelineStageFlags2 = 0
	PIPELINE_STAGE_2_TOP_OF_PIPE_BIT      PipelineStageFlags2 = 0x00000001
	PIPELINE_STAGE_2_COMPUTE_SHADER_BIT   PipelineStageFlags2 = 0x00000800
	PIPELINE_STAGE_2_TRANSFER_BIT         PipelineStageFlags2 = 0x00001000
	PIPELINE_STAGE_2_BOTTOM_OF_PIPE_BIT   PipelineStageFlags2 = 0x00002000
	PIPELINE_STAGE_2_HOST_BIT             PipelineStageFlags2 = 0x00004000
	PIPELINE_STAGE_2_ALL_COMMANDS_BIT     PipelineStageFlags2 = 0x00010000
	PIPELINE_STAGE_2_COPY_BIT             PipelineStageFlags2 = 0x100000000
	PIPELINE_STAGE_2_CLEAR_BIT            PipelineStageFlags2 = 0x800000000
	PIPELINE_STAGE_2_VIDEO_DECODE_BIT_KHR PipelineStageFlags2 = 0x04000000
)

type AccessFlags2 uint64

const (
	ACCESS_2_NONE                       AccessFlags2 = 0
	ACCESS_2_SHADER_READ_BIT            AccessFlags2 = 0x00000020
	ACCESS_2_SHADER_WRITE_BIT           AccessFlags2 = 0x00000040
	ACCESS_2_TRANSFER_READ_BIT          AccessFlags2 = 0x00000800
	ACCESS_2_TRANSFER_WRITE_BIT         AccessFlags2 = 0x00001000
	ACCESS_2_HOST_READ_BIT              AccessFlags2 = 0x00002000
	ACCESS_2_HOST_WRITE_BIT             AccessFlags2 = 0x00004000
	ACCESS_2_MEMORY_READ_BIT            AccessFlags2 = 0x00008000
	ACCESS_2_MEMORY_WRITE_BIT           AccessFlags2 = 0x00010000
	ACCESS_2_VIDEO_DECODE_READ_BIT_KHR  AccessFlags2 = 0x800000000
	ACCESS_2_VIDEO_DECODE_WRITE_BIT_KHR AccessFlags2 = 0x1000000000
)

type ShaderStageFlags uint32

const (
	SHADER_STAGE_COMPUTE_BIT ShaderStageFlags = 0x20
)

// QUEUE_FAMILY_IGNORED disables queue-ownership transfer on a barrier.
const QUEUE_FAMILY_IGNORED uint32 = 0xFFFFFFFF

// WHOLE_SIZE addresses a buffer from an offset to its end.
const WHOLE_SIZE uint64 = 0xFFFFFFFFFFFFFFFF
