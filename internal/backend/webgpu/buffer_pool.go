package webgpu

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

// maxFreePerSize caps how many released buffers of one size class are kept
// for reuse before further releases free GPU memory outright.
const maxFreePerSize = 32

// PoolStats reports buffer pool activity since creation.
type PoolStats struct {
	Hits      uint64
	Misses    uint64
	Allocated uint64
	Freed     uint64
}

// BufferPool recycles storage buffers by size class. Tensor workloads
// allocate the same handful of shapes over and over; reusing buffers avoids
// a driver round-trip per intermediate result.
type BufferPool struct {
	device *wgpu.Device

	mu   sync.Mutex
	free map[poolKey][]*wgpu.Buffer

	stats PoolStats
}

// poolKey identifies a reusable buffer: exact allocation size plus usage.
type poolKey struct {
	size  uint64
	usage wgpu.BufferUsage
}

// NewBufferPool creates an empty pool allocating from device.
func NewBufferPool(device *wgpu.Device) *BufferPool {
	return &BufferPool{
		device: device,
		free:   make(map[poolKey][]*wgpu.Buffer),
	}
}

// Acquire returns a buffer of exactly size bytes with the given usage,
// reusing a previously returned one when possible. Reused buffers keep
// their prior contents; callers must overwrite before reading.
func (p *BufferPool) Acquire(size uint64, usage wgpu.BufferUsage) *wgpu.Buffer {
	key := poolKey{size: size, usage: usage}

	p.mu.Lock()
	if list := p.free[key]; len(list) > 0 {
		buffer := list[len(list)-1]
		p.free[key] = list[:len(list)-1]
		p.stats.Hits++
		p.mu.Unlock()
		return buffer
	}
	p.stats.Misses++
	p.stats.Allocated++
	p.mu.Unlock()

	return p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: usage,
		Size:  size,
	})
}

// Return hands a buffer back for reuse. Buffers beyond the per-size cap
// are freed immediately.
func (p *BufferPool) Return(buffer *wgpu.Buffer, size uint64, usage wgpu.BufferUsage) {
	key := poolKey{size: size, usage: usage}

	p.mu.Lock()
	if len(p.free[key]) < maxFreePerSize {
		p.free[key] = append(p.free[key], buffer)
		p.mu.Unlock()
		return
	}
	p.stats.Freed++
	p.mu.Unlock()

	buffer.Release()
}

// Clear frees every pooled buffer. Called when the backend shuts down.
func (p *BufferPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, list := range p.free {
		for _, buffer := range list {
			buffer.Release()
			p.stats.Freed++
		}
		delete(p.free, key)
	}
}

// Stats returns a snapshot of pool activity.
func (p *BufferPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}
