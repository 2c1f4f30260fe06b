package amd64

import "github.com/mjc-lang/minijavac/internal/regalloc"

// regNames maps a RealReg to its 64-bit AT&T mnemonic, grounded on the
// teacher's isa/amd64/abi.go RealRegName-table idiom (a plain array/map
// indexed by RealReg rather than a switch per call site).
var regNames = map[regalloc.RealReg]string{
	regalloc.RAX: "rax",
	regalloc.RBX: "rbx",
	regalloc.RCX: "rcx",
	regalloc.RDX: "rdx",
	regalloc.RSI: "rsi",
	regalloc.RDI: "rdi",
	regalloc.R8:  "r8",
	regalloc.R9:  "r9",
	regalloc.R10: "r10",
	regalloc.R11: "r11",
	regalloc.R12: "r12",
	regalloc.R13: "r13",
	regalloc.R14: "r14",
	regalloc.R15: "r15",
}

// reg64 renders a RealReg as its 64-bit AT&T register operand ("%rax").
func reg64(r regalloc.RealReg) string { return "%" + regNames[r] }
