package regalloc

// RealReg is one of the 14 general-purpose x86-64 registers this compiler
// ever assigns a value to. %rsp and %rbp are reserved for the stack/frame
// pointer (spec.md §4.7's System V partition) and never appear here.
type RealReg uint8

const (
	RealRegInvalid RealReg = iota
	RAX
	RBX
	RCX
	RDX
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

func (r RealReg) String() string {
	switch r {
	case RAX:
		return "rax"
	case RBX:
		return "rbx"
	case RCX:
		return "rcx"
	case RDX:
		return "rdx"
	case RSI:
		return "rsi"
	case RDI:
		return "rdi"
	case R8:
		return "r8"
	case R9:
		return "r9"
	case R10:
		return "r10"
	case R11:
		return "r11"
	case R12:
		return "r12"
	case R13:
		return "r13"
	case R14:
		return "r14"
	case R15:
		return "r15"
	default:
		return "invalid"
	}
}

// CallerSaved lists the registers a callee is free to clobber, in the order
// they get spilled/restored around a call site — grounded on
// original_source/compiler-lib/src/lowering/amd64/function.rs's
// `save_regs!([Rdi, Rsi, Rdx, Rcx, R8, R9, R10, R11, Rax], ...)`, minus Rax
// kept last since it carries a call's return value and is saved/restored
// around the call rather than across it.
var CallerSaved = []RealReg{RDI, RSI, RDX, RCX, R8, R9, R10, R11, RAX}

// CalleeSaved lists the 5 registers a callee must restore before returning
// (the 6th, %rbp, is reserved for the frame pointer and never allocated),
// grounded on the same source's "There are 5 callee save registers: %rbx,
// %r12-r15" comment.
var CalleeSaved = []RealReg{RBX, R12, R13, R14, R15}

// ArgRegs is the System V integer/pointer argument-passing order: up to 6
// arguments (including an implicit receiver, which occupies the first slot)
// go in registers before the rest spill to the stack.
var ArgRegs = []RealReg{RDI, RSI, RDX, RCX, R8, R9}

// allocatable is every register the allocator may hand out, ordered
// caller-saved-first so straight-line code without a call in it never pays
// for a callee-save push/pop pair it doesn't need.
var allocatable = append(append([]RealReg{}, CallerSaved...), CalleeSaved...)

// NumCallerSaved is how many of allocatable's registers are free without
// widening the callee-save footprint.
var NumCallerSaved = len(CallerSaved)
