package wasmlauncher

import (
	_ "embed"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wasmerio/wasmer-go/wasmer"
)

//go:embed testdata/echo.wat
var watEcho string

//go:embed testdata/no_entry.wat
var watNoEntry string

//go:embed testdata/spin.wat
var watSpin string

func compileWat(t *testing.T, wat string) []byte {
	t.Helper()
	b, err := wasmer.Wat2Wasm(wat)
	require.NoError(t, err)
	return b
}

func TestLauncher_HappyPath(t *testing.T) {
	wasmBytes := compileWat(t, watEcho)
	l, err := Construct(wasmBytes, false, DefaultConfig(), DefaultCostFn)
	require.NoError(t, err)

	res := l.Run(1, 1_000_000, "example")
	require.NoError(t, res.Error)
	assert.Equal(t, CodeOk, res.Code)
	assert.Equal(t, []byte("hello"), res.Data)
	assert.Greater(t, res.GasUsed, uint64(0))
}

func TestLauncher_MissingEntry(t *testing.T) {
	wasmBytes := compileWat(t, watNoEntry)
	l, err := Construct(wasmBytes, false, DefaultConfig(), DefaultCostFn)
	require.NoError(t, err)

	res := l.Run(1, 1_000_000, "example")
	assert.Equal(t, CodeFnInvalidEntryPoint, res.Code)
	require.Error(t, res.Error)
}

func TestLauncher_OutOfGas(t *testing.T) {
	wasmBytes := compileWat(t, watSpin)
	l, err := Construct(wasmBytes, false, DefaultConfig(), DefaultCostFn)
	require.NoError(t, err)

	res := l.Run(1, 100, "example")
	assert.Equal(t, CodeOutOfGas, res.Code)
	require.Error(t, res.Error)
	assert.Greater(t, res.GasUsed, uint64(0))
}

func TestLauncher_EmptyBinary(t *testing.T) {
	_, err := Construct(nil, false, DefaultConfig(), DefaultCostFn)
	assert.ErrorIs(t, err, ErrEmptyBinary)
}

func TestLauncher_ExportThenReimportPrecompiled(t *testing.T) {
	wasmBytes := compileWat(t, watEcho)
	l, err := Construct(wasmBytes, false, DefaultConfig(), DefaultCostFn)
	require.NoError(t, err)

	blob, err := l.ExportModuleOpcode()
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	l2, err := Construct(blob, true, DefaultConfig(), DefaultCostFn)
	require.NoError(t, err)

	res := l2.Run(1, 1_000_000, "example")
	require.NoError(t, res.Error)
	assert.Equal(t, CodeOk, res.Code)
	assert.Equal(t, []byte("hello"), res.Data)
}

func TestLauncher_RunIsReentrantAndResetsGas(t *testing.T) {
	wasmBytes := compileWat(t, watEcho)
	l, err := Construct(wasmBytes, false, DefaultConfig(), DefaultCostFn)
	require.NoError(t, err)

	first := l.Run(1, 1_000_000, "example")
	require.NoError(t, first.Error)
	second := l.Run(1, 1_000_000, "example")
	require.NoError(t, second.Error)

	assert.Equal(t, first.GasUsed, second.GasUsed)
}

func TestLauncher_ModuleCacheAcrossPriorities(t *testing.T) {
	wasmBytes := compileWat(t, watEcho)
	cfg := DefaultConfig()
	cfg.ModuleCacheSize = 8

	manager, err := NewModuleManager(cfg.ModuleCacheSize)
	require.NoError(t, err)

	low, err := ConstructWithManager(manager, wasmBytes, false, cfg, DefaultCostFn, nil)
	require.NoError(t, err)
	high, err := ConstructWithManager(manager, wasmBytes, false, cfg, DefaultCostFn, nil)
	require.NoError(t, err)
	assert.Same(t, low.mod, high.mod)

	lowRes := low.Run(1, 1_000_000, "example")
	highRes := high.Run(10, 1_000_000, "example")
	require.NoError(t, lowRes.Error)
	require.NoError(t, highRes.Error)
	assert.Equal(t, CodeOk, lowRes.Code)
	assert.Equal(t, CodeOk, highRes.Code)
}
