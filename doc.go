// Package wasmlauncher constructs, runs, and exports WebAssembly guest
// modules behind a small host/guest frame protocol: a host calls a
// zero-argument guest entry point that returns a pointer into guest linear
// memory, and reads back the length-prefixed result frame there, whose
// first byte is a program code. Host-imported functions can allocate and
// write frames into guest memory through the same Memory Bridge.
//
// A Launcher owns one compiled module and, once Run has bound it, one live
// instance. Gas metering is enforced at guest-reported checkpoints through
// a built-in env.gas_checkpoint host import rather than compile-time
// bytecode injection, since the underlying engine binding (wasmer-go) does
// not expose that capability through its C-API.
package wasmlauncher
