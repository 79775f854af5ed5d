package wasmlauncher

import (
	"github.com/google/uuid"
	"github.com/wasmerio/wasmer-go/wasmer"
)

// RunResult is the outcome of one Launcher.Run call (spec.md §3 Run
// Result). Code and Data come from the guest's returned frame on the
// success path; Error is set whenever the host itself failed to drive the
// call (entry missing, trap, out-of-gas) rather than the guest reporting a
// non-Ok program code through its own frame.
type RunResult struct {
	Code    ProgramCode
	Data    []byte
	GasUsed uint64
	Error   error
}

// Launcher is the top-level construct/run/export façade of spec.md §4.G.
// One Launcher owns exactly one compiled module and, once Run has bound an
// instance, exactly one live instance: it is not safe to call Run
// concurrently on the same Launcher (spec.md §5).
type Launcher struct {
	id       string
	manager  *ModuleManager
	mod      *wasmer.Module
	cfg      LauncherConfig
	costFn   CostFn
	imports  []ImportedFn
	instance *wasmer.Instance
	data     *VmData
	bridge   *MemoryBridge
}

// Construct is the "no external state" specialization of spec.md §4.G's
// construct operation: it compiles wasmBytes (raw, or pre-compiled when
// precompiled is true) with an empty import set beyond the built-in
// env.gas_checkpoint. cfg.MeteringEnabled false makes costFn irrelevant;
// cfg.MeteringEnabled true requires a non-nil costFn (spec.md §4.G
// contract), else ErrMissingCostFn.
func Construct(wasmBytes []byte, precompiled bool, cfg LauncherConfig, costFn CostFn) (*Launcher, error) {
	return ConstructWithExternal(wasmBytes, precompiled, cfg, costFn, nil)
}

// ConstructWithExternal is the full form of spec.md §4.G's construct
// operation: callers can supply their own host-imported functions
// (external_state/imports) in addition to the built-in gas checkpoint. It
// builds a private Module Manager (and thus a private Module Cache) for
// this one Launcher; use ConstructWithManager to share a cache across
// several Launchers (spec.md §5, SPEC_FULL.md §4.J).
func ConstructWithExternal(wasmBytes []byte, precompiled bool, cfg LauncherConfig, costFn CostFn, imports []ImportedFn) (*Launcher, error) {
	manager, err := NewModuleManager(cfg.ModuleCacheSize)
	if err != nil {
		return nil, err
	}
	return ConstructWithManager(manager, wasmBytes, precompiled, cfg, costFn, imports)
}

// ConstructWithManager is ConstructWithExternal against a caller-supplied
// ModuleManager, letting several Launchers share one Module Cache safely
// (hashicorp/golang-lru's Cache is internally mutex-protected; see
// SPEC_FULL.md §5).
func ConstructWithManager(manager *ModuleManager, wasmBytes []byte, precompiled bool, cfg LauncherConfig, costFn CostFn, imports []ImportedFn) (*Launcher, error) {
	id := uuid.NewString()
	if len(wasmBytes) == 0 {
		logConstructError(id, ErrEmptyBinary)
		return nil, ErrEmptyBinary
	}
	if cfg.MeteringEnabled && costFn == nil {
		logConstructError(id, ErrMissingCostFn)
		return nil, ErrMissingCostFn
	}

	var mod *wasmer.Module
	var err error
	if precompiled {
		mod, err = manager.LoadPrecompiled(wasmBytes)
	} else {
		mod, err = manager.CompileRaw(wasmBytes)
	}
	if err != nil {
		logConstructError(id, err)
		return nil, err
	}

	l := &Launcher{id: id, manager: manager, mod: mod, cfg: cfg, costFn: costFn, imports: imports}
	logConstruct(id, len(wasmBytes), cfg.MeteringEnabled, cfg.ModuleCacheSize > 0 && !precompiled)
	return l, nil
}

// Run instantiates the module (if not already instantiated), invokes the
// zero-argument entry point, and decodes the guest's returned frame into a
// RunResult (spec.md §4.G step-by-step control flow). Gas state is reset
// every call: a fresh GasPolicy is installed before invocation regardless
// of what a prior Run on the same Launcher consumed.
//
// On the success path the returned frame's first byte is decoded via
// FromByte into Code, and the remainder of the frame is Data. Any other
// first byte re-parses the WHOLE frame as a single code byte with empty
// Data: a one-byte frame yields FromByte(frame[0]), a longer one
// CodeUnknownError, preserving the legacy guest-compatibility behavior
// spec.md documents as intentional rather than a parsing bug.
//
// With cfg.MeteringEnabled false, Run never meters: gasPriority is treated
// as 0, costFn is not consulted and GasUsed is always 0.
func (l *Launcher) Run(gasPriority, gasLimit uint64, entry string) RunResult {
	policyPriority := gasPriority
	if !l.cfg.MeteringEnabled {
		policyPriority = 0
	}
	gas := NewGasPolicy(gasLimit, policyPriority, l.costFn)
	logRunStart(l.id, entry, gasLimit, gasPriority)

	if l.instance == nil {
		instance, data, bridge, err := NewInstance(l.manager.Store(), l.mod, gas, l.imports)
		if err != nil {
			res := RunResult{Code: CodeVmError, Error: err}
			logRunResult(l.id, res.Code, 0, err)
			return res
		}
		l.instance, l.data, l.bridge = instance, data, bridge
	} else {
		l.data.gas = gas
	}

	fn, err := l.instance.Exports.GetFunction(entry)
	if err != nil || fn == nil {
		res := RunResult{Code: CodeFnInvalidEntryPoint, Error: newHostError(HostErrEntryMissing, err)}
		logRunResult(l.id, res.Code, 0, res.Error)
		return res
	}

	retRaw, callErr := fn.Call()
	if callErr != nil {
		code := CodeUnknownError
		herr := newHostError(HostErrCallFailed, callErr)
		gasUsed := gas.ConsumedToGasUsed()
		if gas.OutOfGas() {
			// Out-of-gas reports the nominal gas_limit the caller supplied,
			// not the scaled/consumed amount (spec.md §4.D, S5).
			code = CodeOutOfGas
			herr = newHostError(HostErrCallOutOfGas, callErr)
			gasUsed = gasLimit
		}
		res := RunResult{Code: code, GasUsed: gasUsed, Error: herr}
		logRunResult(l.id, res.Code, gasUsed, herr)
		return res
	}

	retPtr, ok := retRaw.(int32)
	if !ok {
		res := RunResult{Code: CodeUndefinedErrPtr, GasUsed: gas.ConsumedToGasUsed(), Error: newHostError(HostErrReturnReadFailed, nil)}
		logRunResult(l.id, res.Code, res.GasUsed, res.Error)
		return res
	}

	frame, err := l.bridge.ReadFrame(uint32(retPtr))
	if err != nil {
		res := RunResult{Code: CodeUndefinedErrPtr, GasUsed: gas.ConsumedToGasUsed(), Error: newHostError(HostErrReturnReadFailed, err)}
		logRunResult(l.id, res.Code, res.GasUsed, res.Error)
		return res
	}

	gasUsed := gas.ConsumedToGasUsed()
	if len(frame) == 0 {
		res := RunResult{Code: CodeUndefinedErrPtr, GasUsed: gasUsed}
		logRunResult(l.id, res.Code, gasUsed, nil)
		return res
	}

	code := FromByte(frame[0])
	if code == CodeOk {
		res := RunResult{Code: code, Data: frame[1:], GasUsed: gasUsed}
		logRunResult(l.id, res.Code, gasUsed, nil)
		return res
	}

	// Legacy compatibility: a non-Ok first byte re-parses the ENTIRE frame
	// as a single raw code byte rather than treating frame[1:] as payload.
	// A one-byte frame keeps FromByte(frame[0]); a longer frame is not a
	// valid single code and collapses to CodeUnknownError.
	if len(frame) > 1 {
		code = CodeUnknownError
	}
	res := RunResult{Code: code, GasUsed: gasUsed}
	logRunResult(l.id, res.Code, gasUsed, nil)
	return res
}

// ExportModuleOpcode serializes the Launcher's compiled module into
// engine-specific bytes a later Construct/ConstructWithExternal call with
// precompiled=true (possibly in a different process) can load without
// repeating compilation.
func (l *Launcher) ExportModuleOpcode() ([]byte, error) {
	b, err := l.manager.Export(l.mod)
	logExport(l.id, len(b), err)
	if err != nil {
		return nil, err
	}
	return b, nil
}
