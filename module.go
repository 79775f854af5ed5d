package wasmlauncher

import (
	"crypto/sha256"

	lru "github.com/hashicorp/golang-lru"
	"github.com/wasmerio/wasmer-go/wasmer"
)

// ModuleCacheKey is the SHA-256 digest of a module's raw WASM bytes, used
// to memoize compilation on the Module Manager's raw-ingest path (spec.md
// §3 Module Handle, I6).
type ModuleCacheKey [sha256.Size]byte

func newModuleCacheKey(wasmBytes []byte) ModuleCacheKey {
	return sha256.Sum256(wasmBytes)
}

// ModuleManager owns module compilation, serialization and caching (spec.md
// §4.E). It holds one wasmer.Store and one optional compiled-module LRU
// cache, shared across every module it produces.
type ModuleManager struct {
	store *wasmer.Store
	cache *lru.Cache // ModuleCacheKey -> *wasmer.Module, nil when caching disabled
}

// NewModuleManager builds a manager backed by a fresh wasmer.Store. A
// cacheSize of 0 disables the raw-compile memoization entirely (§4.J).
func NewModuleManager(cacheSize int) (*ModuleManager, error) {
	m := &ModuleManager{store: wasmer.NewStore(wasmer.NewEngine())}
	if cacheSize > 0 {
		c, err := lru.New(cacheSize)
		if err != nil {
			return nil, err
		}
		m.cache = c
	}
	return m, nil
}

// Store exposes the manager's wasmer.Store; the Instance Factory needs it
// to instantiate modules this manager compiled.
func (m *ModuleManager) Store() *wasmer.Store {
	return m.store
}

// CompileRaw compiles raw WASM bytes into a *wasmer.Module, memoizing the
// result by content hash when a cache is configured. This is the "compile
// a module from wasm bytecode" path of spec.md §4.E.
func (m *ModuleManager) CompileRaw(wasmBytes []byte) (*wasmer.Module, error) {
	if len(wasmBytes) == 0 {
		return nil, ErrEmptyBinary
	}
	if m.cache != nil {
		key := newModuleCacheKey(wasmBytes)
		if cached, ok := m.cache.Get(key); ok {
			return cached.(*wasmer.Module), nil
		}
		mod, err := wasmer.NewModule(m.store, wasmBytes)
		if err != nil {
			return nil, newModuleErr(ErrRawCompileFailed, err)
		}
		m.cache.Add(key, mod)
		return mod, nil
	}
	mod, err := wasmer.NewModule(m.store, wasmBytes)
	if err != nil {
		return nil, newModuleErr(ErrRawCompileFailed, err)
	}
	return mod, nil
}

// LoadPrecompiled deserializes a module previously produced by
// ExportModuleOpcode. Per §4.J this path never touches the cache: the
// caller who produced the blob already paid the compile cost once, and
// deserialization is engine-native and cheap.
func (m *ModuleManager) LoadPrecompiled(serialized []byte) (*wasmer.Module, error) {
	if len(serialized) == 0 {
		return nil, ErrEmptyBinary
	}
	mod, err := wasmer.DeserializeModule(m.store, serialized)
	if err != nil {
		return nil, newModuleErr(ErrPrecompiledLoadFailed, err)
	}
	return mod, nil
}

// Export serializes mod into engine-specific pre-compiled bytes suitable
// for later LoadPrecompiled calls, possibly by a different process
// entirely (spec.md §1's "cache an engine-specific pre-compiled module"
// goal).
func (m *ModuleManager) Export(mod *wasmer.Module) ([]byte, error) {
	b, err := mod.Serialize()
	if err != nil {
		return nil, newModuleErr(ErrExportModuleFailed, err)
	}
	return b, nil
}

func newModuleErr(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return &wrappedErr{sentinel: sentinel, cause: cause}
}

// wrappedErr pairs a fixed sentinel with engine-reported detail so callers
// can still errors.Is against the sentinel.
type wrappedErr struct {
	sentinel error
	cause    error
}

func (e *wrappedErr) Error() string {
	return e.sentinel.Error() + ": " + e.cause.Error()
}

func (e *wrappedErr) Unwrap() error { return e.sentinel }
