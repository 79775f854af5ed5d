package wasmlauncher

import (
	"github.com/holiman/uint256"
)

// Operator classifies the WASM instruction a guest is about to execute when
// it calls the host's env.gas_checkpoint import. It stands in for
// wasmparser::Operator from the original Rust implementation: wasmer-go's
// C-API bindings do not expose wasmer_middlewares::metering's compile-time
// bytecode injection, so cost accounting happens at guest-reported
// checkpoints instead of via static rewriting (see SPEC_FULL.md §3/§9).
type Operator int32

const (
	OpConst Operator = iota
	OpArithmetic
	OpControlFlow
	OpCall
	OpCallIndirect
	OpMemory
	OpOther
)

func operatorFromI32(v int32) Operator {
	if v < int32(OpConst) || v > int32(OpOther) {
		return OpOther
	}
	return Operator(v)
}

// CostFn assigns a gas cost to a classified operator. Callers supply their
// own table (the teacher's EVM interpreter uses a dense opcode-indexed
// array for the analogous lookup in core/vm/wasm.go's gas table).
type CostFn func(op Operator) uint64

// DefaultCostFn is a conservative, flat-rate table used when a caller
// enables metering but does not supply one of their own. Control flow and
// calls cost more than arithmetic, mirroring the relative weighting the
// original Rust custom_gas_consumption() gives call/control instructions
// versus arithmetic ones.
func DefaultCostFn(op Operator) uint64 {
	switch op {
	case OpConst:
		return 1
	case OpArithmetic:
		return 2
	case OpMemory:
		return 3
	case OpControlFlow:
		return 4
	case OpCall:
		return 8
	case OpCallIndirect:
		return 12
	default:
		return 2
	}
}

// GasPolicy governs one run's metering: the effective limit derived from a
// caller's gas_limit and gas_priority, the running remaining-points
// counter, and the cost function consulted per checkpoint.
type GasPolicy struct {
	enabled   bool
	cost      CostFn
	limit     uint64
	remaining uint64
	consumed  uint64
	priority  uint64
}

// NewGasPolicy builds the policy for one run. gasPriority == 0 disables
// metering entirely: the checkpoint import becomes a no-op counter and
// Remaining always reports as unmetered (spec.md §6).
func NewGasPolicy(gasLimit, gasPriority uint64, cost CostFn) *GasPolicy {
	p := &GasPolicy{priority: gasPriority, cost: cost}
	if gasPriority == 0 {
		return p
	}
	p.enabled = true
	if cost == nil {
		p.cost = DefaultCostFn
	}
	p.limit = EffectiveLimit(gasLimit, gasPriority)
	p.remaining = p.limit
	return p
}

// EffectiveLimit scales a caller's nominal gas_limit down by gas_priority
// via integer division, per spec.md §3: a priority of 1 spends the limit at
// face value, higher priorities leave the guest fewer points, each of which
// ConsumedToGasUsed later counts gasPriority times.
func EffectiveLimit(gasLimit, gasPriority uint64) uint64 {
	if gasPriority == 0 {
		return gasLimit
	}
	return gasLimit / gasPriority
}

// Checkpoint is invoked by the env.gas_checkpoint host import for every
// classified operator the guest is about to execute. It returns false once
// the policy is out of gas, at which point the caller (the import closure
// in instance.go) traps the call.
func (p *GasPolicy) Checkpoint(op Operator) bool {
	if !p.enabled {
		p.consumed++
		return true
	}
	cost := p.cost(op)
	if cost > p.remaining {
		p.remaining = 0
		return false
	}
	p.remaining -= cost
	p.consumed += cost
	return true
}

// Remaining reports the policy's remaining-points counter. Unmetered
// policies always report 0 remaining as used by the out-of-gas synthesis
// rule below, but never trap a checkpoint.
func (p *GasPolicy) Remaining() uint64 {
	return p.remaining
}

// OutOfGas reports whether the policy was exhausted: metering is enabled
// and the remaining-points counter has hit zero. A checkpoint whose cost
// exceeds the leftover remaining zeroes remaining without crediting that
// partial cost to consumed (see Checkpoint), so consumed reaching limit is
// not a reliable signal here; remaining == 0 is (spec.md §4.D/P6: "engine
// error AND remaining = 0"). An unmetered policy is never "out of gas".
func (p *GasPolicy) OutOfGas() bool {
	return p.enabled && p.remaining == 0
}

// ConsumedToGasUsed converts the raw consumed-points counter back to the
// caller's original gas_limit units by scaling up with gas_priority,
// checked against uint64 overflow via holiman/uint256 (the teacher's own
// choice of checked-arithmetic library in core/vm/wasm.go). Metering off
// always reports 0, regardless of how many checkpoints the guest hit
// (spec.md P5: "metering off ⇒ gas_used = 0").
func (p *GasPolicy) ConsumedToGasUsed() uint64 {
	if !p.enabled {
		return 0
	}
	if p.priority == 0 {
		return p.consumed
	}
	consumed := uint256.NewInt(p.consumed)
	priority := uint256.NewInt(p.priority)
	used, overflow := new(uint256.Int).MulOverflow(consumed, priority)
	if overflow {
		return ^uint64(0)
	}
	if !used.IsUint64() {
		return ^uint64(0)
	}
	return used.Uint64()
}
