// Package gpu drives the OpenCL search kernel: one Engine owns the
// platform/device/context/queue/program/kernel/buffer set for a single GPU
// and performs one batch search per FindNonce call.
package gpu

import (
	"fmt"
	"log"
	"sync"

	"github.com/Gustav-Simonsson/go-opencl/cl"

	"lotusminer/core/config"
	"lotusminer/core/header"
)

// bufferWords is the fixed length of both the partial-header and output
// buffers the kernel ABI specifies.
const bufferWords = 255

// partialHeaderWords is how many of the 255 partial-header buffer words
// actually carry data; the rest pad out to the fixed buffer size.
const partialHeaderWords = 21

// Engine owns one GPU's OpenCL resources for the lifetime of the process.
// Access is serialized: a synchronous mutex is held for the duration of
// one batch. A panic mid-batch does not leave the lock held: FindNonce
// releases it in a deferred call and returns the panic as an error, since
// GPU state is stateless between batches.
type Engine struct {
	mu sync.Mutex

	settings config.MiningSettings

	platform *cl.Platform
	device   *cl.Device
	ctx      *cl.Context
	queue    *cl.CommandQueue
	program  *cl.Program
	kernel   *cl.Kernel

	headerBuff *cl.MemObject
	outputBuff *cl.MemObject
}

// NewEngine enumerates OpenCL platforms and their devices, flattens them
// into a single global device list, and builds the configured kernel
// variant against the device at gpu_indices[0].
func NewEngine(settings config.MiningSettings) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("gpu: invalid settings: %w", err)
	}

	platforms, err := cl.GetPlatforms()
	if err != nil {
		return nil, fmt.Errorf("gpu: enumerate platforms: %w", err)
	}

	var allDevices []*cl.Device
	var platformOf []*cl.Platform
	for _, p := range platforms {
		devices, err := p.GetDevices(cl.DeviceTypeGPU)
		if err != nil {
			return nil, fmt.Errorf("gpu: enumerate devices: %w", err)
		}
		for _, d := range devices {
			allDevices = append(allDevices, d)
			platformOf = append(platformOf, p)
		}
	}

	idx := settings.GPUIndices[0]
	if idx < 0 || idx >= len(allDevices) {
		return nil, fmt.Errorf("gpu: index %d out of range, found %d devices", idx, len(allDevices))
	}
	device := allDevices[idx]
	platform := platformOf[idx]

	ctx, err := cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, fmt.Errorf("gpu: create context: %w", err)
	}

	queue, err := ctx.CreateCommandQueue(device, 0)
	if err != nil {
		ctx.Release()
		return nil, fmt.Errorf("gpu: create command queue: %w", err)
	}

	program, err := ctx.CreateProgramWithSource([]string{sourceFor(settings.KernelType)})
	if err != nil {
		queue.Release()
		ctx.Release()
		return nil, fmt.Errorf("gpu: create program: %w", err)
	}

	buildOpts := fmt.Sprintf("-D WORKSIZE=%d -D ITERATIONS=%d",
		settings.EffectiveLocalWorkSize(), settings.EffectiveInnerIterSize())
	if err := program.BuildProgram([]*cl.Device{device}, buildOpts); err != nil {
		program.Release()
		queue.Release()
		ctx.Release()
		return nil, fmt.Errorf("gpu: build program: %w", err)
	}

	kernel, err := program.CreateKernel("search")
	if err != nil {
		program.Release()
		queue.Release()
		ctx.Release()
		return nil, fmt.Errorf("gpu: create kernel: %w", err)
	}

	headerBuff, err := ctx.CreateEmptyBuffer(cl.MemReadOnly, bufferWords*4)
	if err != nil {
		kernel.Release()
		program.Release()
		queue.Release()
		ctx.Release()
		return nil, fmt.Errorf("gpu: allocate header buffer: %w", err)
	}

	outputBuff, err := ctx.CreateEmptyBuffer(cl.MemReadWrite, bufferWords*4)
	if err != nil {
		headerBuff.Release()
		kernel.Release()
		program.Release()
		queue.Release()
		ctx.Release()
		return nil, fmt.Errorf("gpu: allocate output buffer: %w", err)
	}

	return &Engine{
		settings:   settings,
		platform:   platform,
		device:     device,
		ctx:        ctx,
		queue:      queue,
		program:    program,
		kernel:     kernel,
		headerBuff: headerBuff,
		outputBuff: outputBuff,
	}, nil
}

// Close releases every OpenCL resource the Engine holds, in reverse
// acquisition order.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.outputBuff.Release()
	e.headerBuff.Release()
	e.kernel.Release()
	e.program.Release()
	e.queue.Release()
	e.ctx.Release()
}

// Result is the outcome of one FindNonce batch.
type Result struct {
	Found bool
	Nonce uint64
}

// FindNonce performs exactly one search batch against h/target at the
// given batch index, per the GPU search engine's batch procedure: compute
// the offset, write the partial header, dispatch, read back candidates,
// and verify each one MSB-first against target before accepting.
func (e *Engine) FindNonce(h header.Header, target [32]byte, nonceIdx uint32) (result Result, err error) {
	e.mu.Lock()
	defer func() {
		e.mu.Unlock()
		if r := recover(); r != nil {
			err = fmt.Errorf("gpu: recovered from panic mid-batch: %v", r)
		}
	}()

	numNoncesPerSearch := uint64(e.settings.KernelSize) * uint64(e.settings.EffectiveInnerIterSize())
	base := uint64(nonceIdx) * numNoncesPerSearch
	if base > 0xFFFFFFFF {
		return Result{}, fmt.Errorf("gpu: nonce_idx overflow at base=%d", base)
	}
	offset := uint32(base)

	partial := h.PartialHeader()
	var buf [bufferWords]uint32
	copy(buf[:partialHeaderWords], partial[:])

	if _, err := e.queue.EnqueueWriteBufferUint32(e.headerBuff, true, 0, buf[:], nil); err != nil {
		return Result{}, fmt.Errorf("gpu: write header buffer: %w", err)
	}

	var zero [bufferWords]uint32
	if _, err := e.queue.EnqueueWriteBufferUint32(e.outputBuff, true, 0, zero[:], nil); err != nil {
		return Result{}, fmt.Errorf("gpu: zero output buffer: %w", err)
	}

	if err := e.kernel.SetArgs(offset, e.headerBuff, e.outputBuff); err != nil {
		return Result{}, fmt.Errorf("gpu: set kernel args: %w", err)
	}

	global := []int{int(e.settings.KernelSize)}
	var local []int
	if e.settings.KernelType == config.KernelPOCLBM {
		local = []int{64}
	}
	if _, err := e.queue.EnqueueNDRangeKernel(e.kernel, nil, global, local, nil); err != nil {
		return Result{}, fmt.Errorf("gpu: enqueue kernel: %w", err)
	}

	var output [bufferWords]uint32
	if _, err := e.queue.EnqueueReadBufferUint32(e.outputBuff, true, 0, output[:], nil); err != nil {
		return Result{}, fmt.Errorf("gpu: read output buffer: %w", err)
	}

	if output[128] == 0 {
		return Result{}, nil
	}

	return verifyCandidates(h, target, output)
}

// NumNoncesPerSearch returns kernel_size * inner_iter_size, the number of
// nonces one batch covers — used by callers to account hashes searched
// even on a miss.
func (e *Engine) NumNoncesPerSearch() uint64 {
	return uint64(e.settings.KernelSize) * uint64(e.settings.EffectiveInnerIterSize())
}

// Search is FindNonce with a primitive-typed return, matching the
// mining.Searcher interface so the mining loop doesn't need to import gpu.
func (e *Engine) Search(h header.Header, target [32]byte, nonceIdx uint32) (bool, uint64, error) {
	result, err := e.FindNonce(h, target, nonceIdx)
	if err != nil {
		return false, 0, err
	}
	return result.Found, result.Nonce, nil
}

// verifyCandidates walks the kernel's candidate list and returns the first
// one whose Lotus hash actually beats target, splicing each candidate into
// a scratch copy of the header rather than the caller's.
func verifyCandidates(h header.Header, target [32]byte, output [bufferWords]uint32) (Result, error) {
	for i := 0; i < 127; i++ {
		word := output[i]
		if word == 0 {
			continue
		}
		candidate := swapBytes(word)

		scratch := h
		scratch.SetLowNonce(candidate)

		hash := scratch.Hash()
		if hash[31] != 0 {
			// Sanity check failed: the kernel produced a candidate whose
			// hash doesn't end in zero. Signal the bug but keep scanning.
			log.Printf("[GPU][BUG] candidate %#x hash does not end in a zero byte", candidate)
			continue
		}

		if beatsTarget(hash, target) {
			return Result{Found: true, Nonce: scratch.Nonce()}, nil
		}
	}
	return Result{}, nil
}

func swapBytes(w uint32) uint32 {
	return (w>>24)&0xff | (w>>8)&0xff00 | (w<<8)&0xff0000 | (w << 24)
}

// beatsTarget reports whether hash is numerically below target. Both arrays
// are already in identical internal-LE byte order (target was reversed once
// on ingest, same as hash coming out of a Lotus double-SHA256), so the
// comparison walks matching indices from the most significant byte (31)
// down to the least, and the first index where they differ decides it.
func beatsTarget(hash, target [32]byte) bool {
	for i := 31; i >= 0; i-- {
		h, t := hash[i], target[i]
		if h != t {
			return h < t
		}
	}
	return false
}
