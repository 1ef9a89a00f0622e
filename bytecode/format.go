// Package bytecode defines the compiled dialogue file format: a constant
// pool, a flat instruction stream, and node/label tables for the debugger
// and jump resolution.
package bytecode

const (
	// Magic spells 'CRTZ' when written little-endian.
	Magic   uint32 = 0x5A545243
	Version uint16 = 1
)

type Op uint8

const (
	OpHalt Op = iota
	// OpPushConst carries a u32 index into the constant pool.
	OpPushConst
	// OpLoadVar and OpStoreVar carry a u32 constant index naming the
	// variable; ids resolve by name.
	OpLoadVar
	OpStoreVar
	// OpLine carries a u32 string index. Placeholders inside the string
	// are substituted at execution.
	OpLine
	// OpChoiceAdd carries a u32 string index then a u32 target label id.
	OpChoiceAdd
	// OpChoiceFlush presents the accumulated choices and jumps to the
	// chosen target.
	OpChoiceFlush
	OpJump
	// OpJumpIfFalse pops the condition from the stack.
	OpJumpIfFalse
	// OpLabel marks a jump target in the stream; execution skips it.
	OpLabel
	OpEnterNode
	OpLeaveNode
	OpCmpEq
	OpCmpNeq
	OpCmpLt
	OpCmpLte
	OpCmpGt
	OpCmpGte
	OpAdd
	OpSub
	OpMul
	OpDiv
	// OpPrint consumes one stack item.
	OpPrint
	// OpSignal carries a u32 string index naming the signal; the value is
	// popped from the stack.
	OpSignal
)

// Header leads an encoded file. Reserved pads the version to an 8-byte
// boundary.
type Header struct {
	Magic      uint32
	Version    uint16
	Reserved   uint16
	ConstCount uint32
	CodeSize   uint32
	NodeCount  uint32
	LabelCount uint32
}

// File is a compiled dialogue blob.
type File struct {
	Header   Header
	Consts   []string
	Code     []byte
	NodeIDs  map[string]uint32
	LabelIDs map[string]uint32
}

func NewFile() *File {
	return &File{
		Header:   Header{Magic: Magic, Version: Version},
		NodeIDs:  map[string]uint32{},
		LabelIDs: map[string]uint32{},
	}
}

// AddConst interns a string in the pool and returns its index.
func (f *File) AddConst(s string) uint32 {
	for i, c := range f.Consts {
		if c == s {
			return uint32(i)
		}
	}
	f.Consts = append(f.Consts, s)
	return uint32(len(f.Consts) - 1)
}

func (f *File) emitOp(op Op) {
	f.Code = append(f.Code, byte(op))
}

func (f *File) emitU32(v uint32) {
	f.Code = append(f.Code, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func (f *File) emitOpU32(op Op, v uint32) {
	f.emitOp(op)
	f.emitU32(v)
}
