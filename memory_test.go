package wasmlauncher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wasmerio/wasmer-go/wasmer"
)

func newTestBridge(t *testing.T) *MemoryBridge {
	t.Helper()
	wasmBytes, err := wasmer.Wat2Wasm(watEcho)
	require.NoError(t, err)

	manager, err := NewModuleManager(0)
	require.NoError(t, err)
	mod, err := manager.CompileRaw(wasmBytes)
	require.NoError(t, err)

	gas := NewGasPolicy(0, 0, nil)
	_, _, bridge, err := NewInstance(manager.Store(), mod, gas, nil)
	require.NoError(t, err)
	return bridge
}

func TestMemoryBridge_AllocWriteRead(t *testing.T) {
	b := newTestBridge(t)

	ptr, err := b.Alloc(5)
	require.NoError(t, err)

	require.NoError(t, b.Write(ptr, []byte("abcde")))
	got, err := b.Read(ptr, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcde"), got)
}

func TestMemoryBridge_WriteFrameThenReadFrame(t *testing.T) {
	b := newTestBridge(t)

	payload := []byte{CodeOk.ToByte(), 'h', 'i'}
	ptr, err := b.WriteFrame(payload)
	require.NoError(t, err)

	got, err := b.ReadFrame(ptr)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestMemoryBridge_ReadPastMemoryFails(t *testing.T) {
	b := newTestBridge(t)
	_, err := b.Read(0xFFFFFFF0, 64)
	assert.Error(t, err)
}

func TestNewMemoryBridge_MissingExportsFail(t *testing.T) {
	wasmBytes, err := wasmer.Wat2Wasm(`(module (memory (export "memory") 1))`)
	require.NoError(t, err)

	manager, err := NewModuleManager(0)
	require.NoError(t, err)
	mod, err := manager.CompileRaw(wasmBytes)
	require.NoError(t, err)

	gas := NewGasPolicy(0, 0, nil)
	_, _, _, err = NewInstance(manager.Store(), mod, gas, nil)
	assert.Error(t, err)
}
