package wasmlauncher

import (
	"fmt"

	"github.com/wasmerio/wasmer-go/wasmer"
)

// memoryExportName is the name a guest module MUST export its linear memory
// under for the Memory Bridge to find it (spec.md §6).
const memoryExportName = "memory"

// allocExportName is the name a guest module MUST export its allocator
// function under. The allocator takes an i32 byte count and returns an i32
// guest pointer, mirroring the teacher's own convention for talking to a
// guest-managed bump allocator.
const allocExportName = "mem_alloc"

// MemoryBridge is the host side of the frame protocol (spec.md §4.B): it
// allocates space in guest linear memory, and reads/writes raw bytes across
// the host/guest boundary. It is bound to one *wasmer.Instance for its
// entire lifetime; a fresh bridge is built per Instance Handle.
type MemoryBridge struct {
	instance *wasmer.Instance
	memory   *wasmer.Memory
	allocFn  *wasmer.Function
}

// NewMemoryBridge resolves the memory and allocator exports of instance. It
// fails closed: a guest module missing either export cannot be driven by
// this launcher (spec.md §6 external interface requirement).
func NewMemoryBridge(instance *wasmer.Instance) (*MemoryBridge, error) {
	mem, err := instance.Exports.GetMemory(memoryExportName)
	if err != nil || mem == nil {
		return nil, newMemoryError(MemoryErrExportMissing, err)
	}
	allocFn, err := instance.Exports.GetFunction(allocExportName)
	if err != nil || allocFn == nil {
		return nil, newMemoryError(MemoryErrAllocFnMissing, err)
	}
	return &MemoryBridge{instance: instance, memory: mem, allocFn: allocFn}, nil
}

// Alloc asks the guest's allocator for n bytes and returns the guest pointer
// it reports. A zero-length allocation is legal and typically returns a
// guest's sentinel "empty" pointer; callers MUST NOT assume it is non-zero.
func (b *MemoryBridge) Alloc(n uint32) (uint32, error) {
	raw, err := b.allocFn.Call(int32(n))
	if err != nil {
		return 0, newMemoryError(MemoryErrAllocCallFailed, err)
	}
	ptr, ok := raw.(int32)
	if !ok {
		return 0, newMemoryError(MemoryErrAllocReturnedNil, fmt.Errorf("alloc export returned %T, want int32", raw))
	}
	if ptr < 0 {
		return 0, newMemoryError(MemoryErrAllocReturnedNil, fmt.Errorf("alloc export returned negative pointer %d", ptr))
	}
	return uint32(ptr), nil
}

// Write copies data into guest linear memory starting at ptr. The caller is
// responsible for having obtained ptr from Alloc (or from a value the guest
// itself reported) and for not writing past memory's current size.
func (b *MemoryBridge) Write(ptr uint32, data []byte) error {
	view := b.memory.Data()
	end := uint64(ptr) + uint64(len(data))
	if end > uint64(len(view)) {
		return newMemoryError(MemoryErrWriteFailed, fmt.Errorf("write of %d bytes at %d exceeds memory size %d", len(data), ptr, len(view)))
	}
	copy(view[ptr:end], data)
	return nil
}

// Read copies n bytes out of guest linear memory starting at ptr.
func (b *MemoryBridge) Read(ptr, n uint32) ([]byte, error) {
	view := b.memory.Data()
	end := uint64(ptr) + uint64(n)
	if end > uint64(len(view)) {
		return nil, newMemoryError(MemoryErrReadBodyFailed, fmt.Errorf("read of %d bytes at %d exceeds memory size %d", n, ptr, len(view)))
	}
	out := make([]byte, n)
	copy(out, view[ptr:end])
	return out, nil
}

// ReadFrame reads a length-prefixed frame starting at ptr: first the 4-byte
// little-endian length prefix, then that many bytes of payload (spec.md
// §4.A). It is the read-side composite operation (WriteFrame is the
// write side), used by the Launcher to pull a guest's result frame off the
// wire.
func (b *MemoryBridge) ReadFrame(ptr uint32) ([]byte, error) {
	lenBytes, err := b.Read(ptr, frameLenPrefixSize)
	if err != nil {
		return nil, newMemoryError(MemoryErrReadLenFailed, err)
	}
	n := DecodeLength(lenBytes)
	payload, err := b.Read(ptr+frameLenPrefixSize, n)
	if err != nil {
		return nil, newMemoryError(MemoryErrReadBodyFailed, err)
	}
	return payload, nil
}

// WriteFrame allocates guest memory for payload's encoded frame, writes it,
// and returns the guest pointer the frame now lives at.
func (b *MemoryBridge) WriteFrame(payload []byte) (uint32, error) {
	frame := EncodeFrame(payload)
	ptr, err := b.Alloc(uint32(len(frame)))
	if err != nil {
		return 0, err
	}
	if err := b.Write(ptr, frame); err != nil {
		return 0, err
	}
	return ptr, nil
}
