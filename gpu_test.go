// gpu_test.go
//
// Tests that need a live Vulkan driver. Each skips when no instance or no
// suitable queue family is available, so the suite stays green on machines
// without video hardware.
package vkvideo

import (
	"bytes"
	"encoding/binary"
	"os"
	"testing"
)

func newTestDevice(t *testing.T) *Device {
	t.Helper()

	instance, err := NewInstance(NewInstanceInfo().AppName("vkvideo test"))
	if err != nil {
		t.Skipf("no vulkan instance: %v", err)
	}
	t.Cleanup(instance.Release)

	physicalDevice, err := NewAnyPhysicalDevice(instance)
	if err != nil {
		t.Skipf("no video-capable physical device: %v", err)
	}
	t.Cleanup(physicalDevice.Release)

	device, err := NewDevice(physicalDevice)
	if err != nil {
		t.Skipf("device creation failed: %v", err)
	}
	t.Cleanup(device.Release)

	return device
}

func hostAllocation(t *testing.T, device *Device, size uint64) *Allocation {
	t.Helper()
	index, ok := device.PhysicalDevice().HeapInfos().AnyHostVisible()
	if !ok {
		t.Skip("no host visible memory type")
	}
	allocation, err := NewAllocation(device, size, index)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(allocation.Release)
	return allocation
}

func TestFillBufferRoundTrip(t *testing.T) {
	device := newTestDevice(t)

	family, ok := device.PhysicalDevice().QueueFamilyInfos().AnyCompute()
	if !ok {
		t.Skip("no compute queue family")
	}
	queue, err := NewQueue(device, family, 0)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(queue.Release)

	cb, err := NewCommandBuffer(device, family)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(cb.Release)

	const size = 256
	buffer, err := NewBuffer(hostAllocation(t, device, size), NewBufferInfo().Size(size))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(buffer.Release)

	op := FillBuffer{Target: buffer, Data: 0x11223344}
	if err := queue.BuildAndSubmit(cb, op.RunIn); err != nil {
		t.Fatal(err)
	}

	got := make([]byte, size)
	if err := buffer.DownloadInto(got); err != nil {
		t.Fatal(err)
	}
	want := make([]byte, 4)
	binary.LittleEndian.PutUint32(want, 0x11223344)
	for off := 0; off < size; off += 4 {
		if !bytes.Equal(got[off:off+4], want) {
			t.Fatalf("word at %d: got % x, want % x", off, got[off:off+4], want)
		}
	}
}

func TestImageBindTwice(t *testing.T) {
	device := newTestDevice(t)

	unbound, err := NewUnboundImage(device, NewImageInfo().
		Format(FORMAT_G8_B8R8_2PLANE_420_UNORM).
		Extent(Extent3D{Width: 64, Height: 64, Depth: 1}).
		Usage(IMAGE_USAGE_TRANSFER_SRC_BIT))
	if err != nil {
		t.Skipf("image creation failed: %v", err)
	}

	reqs := unbound.MemoryRequirement()
	memory, err := NewAllocation(device, reqs.Size, reqs.AnyHeap())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(memory.Release)

	image, err := unbound.Bind(memory)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(image.Release)

	if _, err := unbound.Bind(memory); !IsKind(err, ErrImageAlreadyBound) {
		t.Fatalf("second bind: got %v, want already-bound error", err)
	}
}

func TestDecodeCapabilities(t *testing.T) {
	device := newTestDevice(t)

	caps, err := DecodeCapabilities(device.PhysicalDevice())
	if err != nil {
		t.Skipf("no decode capabilities: %v", err)
	}
	if caps.MaxCodedExtent.Width == 0 || caps.MaxCodedExtent.Height == 0 {
		t.Errorf("empty max coded extent: %+v", caps)
	}
	if caps.MaxDpbSlots == 0 {
		t.Errorf("no DPB slots: %+v", caps)
	}

	formats, err := DecodeFormats(device.PhysicalDevice(), IMAGE_USAGE_VIDEO_DECODE_DST_BIT_KHR)
	if err != nil {
		t.Fatal(err)
	}
	if len(formats) == 0 {
		t.Error("no decode output formats")
	}
}

func TestDecodeFirstFrame(t *testing.T) {
	stream, err := os.ReadFile("testdata/multi_512x512.h264")
	if err != nil {
		t.Skipf("no test stream: %v", err)
	}

	device := newTestDevice(t)
	families := device.PhysicalDevice().QueueFamilyInfos()
	decodeFamily, ok := families.AnyDecode()
	if !ok {
		t.Skip("no video decode queue family")
	}
	computeFamily, ok := families.AnyCompute()
	if !ok {
		t.Skip("no compute queue family")
	}

	inspector := NewStreamInspector()
	if err := inspector.FeedAll(stream); err != nil {
		t.Fatal(err)
	}
	sps := inspector.SPS(0)
	if sps == nil {
		t.Fatal("stream carries no SPS")
	}
	width, height := sps.Width(), sps.Height()

	session, err := NewVideoSession(device, decodeFamily, Extent2D{Width: width, Height: height})
	if err != nil {
		t.Skipf("session creation failed: %v", err)
	}
	t.Cleanup(session.Release)

	parameters, err := NewVideoSessionParameters(session, inspector)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(parameters.Release)

	bitstreamSize := (uint64(len(stream)) + 4095) &^ 4095
	bitstream, err := NewVideoDecodeBuffer(hostAllocation(t, device, bitstreamSize), NewBufferInfo().Size(bitstreamSize))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(bitstream.Release)
	if err := bitstream.Upload(stream); err != nil {
		t.Fatal(err)
	}

	extent := Extent3D{Width: width, Height: height, Depth: 1}
	targetView := testVideoImage(t, device, extent,
		IMAGE_USAGE_VIDEO_DECODE_DST_BIT_KHR|IMAGE_USAGE_VIDEO_DECODE_DPB_BIT_KHR|IMAGE_USAGE_TRANSFER_SRC_BIT)
	dpbView := testVideoImage(t, device, extent, IMAGE_USAGE_VIDEO_DECODE_DPB_BIT_KHR)

	decodeQueue, err := NewQueue(device, decodeFamily, 0)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(decodeQueue.Release)
	decodeCB, err := NewCommandBuffer(device, decodeFamily)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(decodeCB.Release)

	decode := DecodeH264{
		Parameters: parameters,
		Bitstream:  bitstream,
		TargetView: targetView,
		DpbView:    dpbView,
		Info:       DecodeInfo{Offset: 0, Size: 16 * 256},
	}
	if err := decodeQueue.BuildAndSubmit(decodeCB, decode.RunIn); err != nil {
		t.Fatal(err)
	}

	lumaSize := uint64(width) * uint64(height)
	readback, err := NewBuffer(hostAllocation(t, device, lumaSize), NewBufferInfo().Size(lumaSize))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(readback.Release)

	computeQueue, err := NewQueue(device, computeFamily, 0)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(computeQueue.Release)
	computeCB, err := NewCommandBuffer(device, computeFamily)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(computeCB.Release)

	copyOp := CopyImage2Buffer{
		Source: targetView.Image(),
		Target: readback,
		Aspect: IMAGE_ASPECT_PLANE_0_BIT,
		Extent: extent,
	}
	if err := computeQueue.BuildAndSubmit(computeCB, copyOp.RunIn); err != nil {
		t.Fatal(err)
	}

	luma := make([]byte, lumaSize)
	if err := readback.DownloadInto(luma); err != nil {
		t.Fatal(err)
	}
	if luma[0] != 108 {
		t.Errorf("first luma byte: got %d, want 108", luma[0])
	}
}

func testVideoImage(t *testing.T, device *Device, extent Extent3D, usage ImageUsageFlags) *ImageView {
	t.Helper()

	unbound, err := NewVideoTargetImage(device, NewImageInfo().
		Format(FORMAT_G8_B8R8_2PLANE_420_UNORM).
		Extent(extent).
		Usage(usage))
	if err != nil {
		t.Fatal(err)
	}

	reqs := unbound.MemoryRequirement()
	memory, err := NewAllocation(device, reqs.Size, reqs.AnyHeap())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(memory.Release)

	image, err := unbound.Bind(memory)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(image.Release)

	view, err := NewImageView(image, NewImageViewInfo())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(view.Release)
	return view
}
