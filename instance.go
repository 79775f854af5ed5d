package wasmlauncher

import (
	"github.com/wasmerio/wasmer-go/wasmer"
)

// VmData is the cyclic host/guest handle described in spec.md §3: it is
// constructed blank (no instance, no bridge, no policy), handed to the
// engine's instantiation call by pointer so host-imported closures can
// capture it, and mutated exactly once — after instantiation succeeds — to
// point back at the instance it was used to build. Clone always yields a
// fresh blank copy, never a reference to a bound one, mirroring the
// original Rust's VmData::blank()/clone split.
type VmData struct {
	instance *wasmer.Instance
	bridge   *MemoryBridge
	gas      *GasPolicy
}

// Clone returns a new, unbound VmData. Used whenever a caller needs a
// placeholder to satisfy an API that wants a VmData before one exists yet.
func (d *VmData) Clone() *VmData {
	return &VmData{}
}

func (d *VmData) bind(instance *wasmer.Instance, bridge *MemoryBridge, gas *GasPolicy) {
	d.instance = instance
	d.bridge = bridge
	d.gas = gas
}

// Bridge returns the bound Memory Bridge, or nil if d is not yet bound.
func (d *VmData) Bridge() *MemoryBridge { return d.bridge }

// Gas returns the bound Gas Policy, or nil if d is not yet bound.
func (d *VmData) Gas() *GasPolicy { return d.gas }

// ImportedFn is a caller-supplied host function made available to the
// guest under the "env" namespace alongside the built-in gas_checkpoint
// import. Params/Results describe its WASM signature; Call implements its
// body and receives the instance's VmData so it can read/write guest
// memory through the same Memory Bridge the Launcher itself uses (spec.md
// §6: "each closure receives engine-provided environment access to
// VmData").
type ImportedFn struct {
	Name    string
	Params  []wasmer.ValueKind
	Results []wasmer.ValueKind
	Call    func(data *VmData, args []wasmer.Value) ([]wasmer.Value, error)
}

const gasCheckpointImportName = "gas_checkpoint"

// NewInstance compiles the caller's imports (plus the built-in
// env.gas_checkpoint checkpoint function, generalized from the teacher's
// own EVM registerGasCheckFunction/GasImportedFunction pattern in
// core/vm/wasm.go) into a *wasmer.Instance bound to mod, and returns the
// VmData now pointing back at it together with its Memory Bridge (spec.md
// §4.F).
func NewInstance(store *wasmer.Store, mod *wasmer.Module, gas *GasPolicy, extra []ImportedFn) (*wasmer.Instance, *VmData, *MemoryBridge, error) {
	data := &VmData{}
	importObject := wasmer.NewImportObject()

	envFns := map[string]wasmer.IntoExtern{
		gasCheckpointImportName: wasmer.NewFunction(
			store,
			wasmer.NewFunctionType(wasmer.NewValueTypes(wasmer.I32), wasmer.NewValueTypes()),
			func(args []wasmer.Value) ([]wasmer.Value, error) {
				op := operatorFromI32(args[0].I32())
				if !data.gas.Checkpoint(op) {
					return nil, newHostError(HostErrCallOutOfGas, nil)
				}
				return []wasmer.Value{}, nil
			},
		),
	}
	for _, fn := range extra {
		f := fn
		envFns[f.Name] = wasmer.NewFunction(
			store,
			wasmer.NewFunctionType(wasmer.NewValueTypes(f.Params...), wasmer.NewValueTypes(f.Results...)),
			func(args []wasmer.Value) ([]wasmer.Value, error) {
				return f.Call(data, args)
			},
		)
	}
	importObject.Register("env", envFns)

	instance, err := wasmer.NewInstance(mod, importObject)
	if err != nil {
		return nil, nil, nil, newModuleErr(ErrInstantiateFailed, err)
	}

	bridge, err := NewMemoryBridge(instance)
	if err != nil {
		return nil, nil, nil, err
	}
	data.bind(instance, bridge, gas)
	return instance, data, bridge, nil
}
