package wasmlauncher

// ProgramCode is the small, closed enum a guest reports back through the
// first byte of a result frame. The mapping to its wire byte is injective,
// total, and stable across versions: the guest SDK and this host MUST
// agree on the table.
type ProgramCode uint8

const (
	CodeOk ProgramCode = iota
	CodeFnInvalidEntryPoint
	CodeFnInvalidIndex
	CodeFnInvalidArgs
	CodeUndefinedErrPtr
	CodeUnknownError
	CodeOutOfGas
	CodeVmError
	CodeSerializeInvalidArg
	CodeDeserializeInvalidArg
)

// programCodeNames is used only for logging; it has no bearing on the wire
// format.
var programCodeNames = map[ProgramCode]string{
	CodeOk:                    "Ok",
	CodeFnInvalidEntryPoint:   "FnInvalidEntryPoint",
	CodeFnInvalidIndex:        "FnInvalidIndex",
	CodeFnInvalidArgs:         "FnInvalidArgs",
	CodeUndefinedErrPtr:       "UndefinedErrPtr",
	CodeUnknownError:          "UnknownError",
	CodeOutOfGas:              "OutOfGas",
	CodeVmError:               "VmError",
	CodeSerializeInvalidArg:   "SerializeInvalidArg",
	CodeDeserializeInvalidArg: "DeserializeInvalidArg",
}

func (c ProgramCode) String() string {
	if name, ok := programCodeNames[c]; ok {
		return name
	}
	return "UnknownError"
}

// ToByte returns the single-byte wire representation of c.
func (c ProgramCode) ToByte() byte {
	return byte(c)
}

// ToI32 returns the i32 wire representation of c, used when a guest or host
// carries the code on the WASM value stack instead of in a frame.
func (c ProgramCode) ToI32() int32 {
	return int32(c)
}

// FromByte maps a wire byte back to a ProgramCode. Any byte not assigned to
// a known variant maps to CodeUnknownError (P4).
func FromByte(b byte) ProgramCode {
	c := ProgramCode(b)
	if _, ok := programCodeNames[c]; ok {
		return c
	}
	return CodeUnknownError
}

// FromI32 is the i32-carried counterpart of FromByte.
func FromI32(v int32) ProgramCode {
	if v < 0 || v > 0xff {
		return CodeUnknownError
	}
	return FromByte(byte(v))
}
