package cpu

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Instruction is a raw 16-bit CHIP-8 instruction word, fetched big endian.
type Instruction uint16

// Nibbles returns the four 4-bit fields of the word, most significant first.
func (i Instruction) Nibbles() [4]uint8 {
	return [4]uint8{
		uint8(i>>12) & 0x0F,
		uint8(i>>8) & 0x0F,
		uint8(i>>4) & 0x0F,
		uint8(i) & 0x0F,
	}
}

func (i Instruction) X() uint8 { return uint8(i>>8) & 0x0F }
func (i Instruction) Y() uint8 { return uint8(i>>4) & 0x0F }
func (i Instruction) N() uint8 { return uint8(i) & 0x0F }

// NN returns the 8-bit immediate held in the low two nibbles.
func (i Instruction) NN() uint8 { return ByteFromNibbles(uint8(i>>4)&0x0F, uint8(i)&0x0F) }

// NNN returns the 12-bit address held in the low three nibbles.
func (i Instruction) NNN() uint16 {
	n := i.Nibbles()
	return AddressFromNibbles(n[1], n[2], n[3])
}

func (i Instruction) String() string {
	return fmt.Sprintf("%04X", uint16(i))
}

// Mnemonic returns the assembler name of the instruction, or an empty string
// if the word is not a CHIP-8 instruction.
func (i Instruction) Mnemonic() string {
	w := uint16(i)
	for _, op := range chip8.Opcodes[int(w>>12)] {
		if op.Info.Mask&w == op.Info.Value && op.Instruction != nil {
			return op.Instruction.Name
		}
	}
	return ""
}

// ByteFromNibbles joins two nibbles into a byte.
func ByteFromNibbles(hi, lo uint8) uint8 {
	return (hi&0x0F)<<4 | lo&0x0F
}

// AddressFromNibbles joins three nibbles into a 12-bit address.
func AddressFromNibbles(n1, n2, n3 uint8) uint16 {
	return uint16(n1&0x0F)<<8 | uint16(n2&0x0F)<<4 | uint16(n3&0x0F)
}

// Op identifies the operation an instruction word encodes.
type Op uint8

const (
	OpInvalid Op = iota
	OpCls        // 00E0
	OpRet        // 00EE
	OpJp         // 1NNN
	OpCall       // 2NNN
	OpSeImm      // 3XNN
	OpSneImm     // 4XNN
	OpSeReg      // 5XY0
	OpLdImm      // 6XNN
	OpAddImm     // 7XNN
	OpLdReg      // 8XY0
	OpOr         // 8XY1
	OpAnd        // 8XY2
	OpXor        // 8XY3
	OpAddReg     // 8XY4
	OpSub        // 8XY5
	OpShr        // 8XY6
	OpSubn       // 8XY7
	OpShl        // 8XYE
	OpSneReg     // 9XY0
	OpLdI        // ANNN
	OpJpV0       // BNNN
	OpRnd        // CXNN
	OpDrw        // DXYN
	OpSkp        // EX9E
	OpSknp       // EXA1
	OpLdVxDT     // FX07
	OpLdK        // FX0A
	OpLdDT       // FX15
	OpLdST       // FX18
	OpAddI       // FX1E
	OpLdF        // FX29
	OpLdB        // FX33
	OpStore      // FX55
	OpLoad       // FX65
)

var opNames = [...]string{
	OpInvalid: "???",
	OpCls:     "CLS",
	OpRet:     "RET",
	OpJp:      "JP addr",
	OpCall:    "CALL addr",
	OpSeImm:   "SE Vx, byte",
	OpSneImm:  "SNE Vx, byte",
	OpSeReg:   "SE Vx, Vy",
	OpLdImm:   "LD Vx, byte",
	OpAddImm:  "ADD Vx, byte",
	OpLdReg:   "LD Vx, Vy",
	OpOr:      "OR Vx, Vy",
	OpAnd:     "AND Vx, Vy",
	OpXor:     "XOR Vx, Vy",
	OpAddReg:  "ADD Vx, Vy",
	OpSub:     "SUB Vx, Vy",
	OpShr:     "SHR Vx, Vy",
	OpSubn:    "SUBN Vx, Vy",
	OpShl:     "SHL Vx, Vy",
	OpSneReg:  "SNE Vx, Vy",
	OpLdI:     "LD I, addr",
	OpJpV0:    "JP V0, addr",
	OpRnd:     "RND Vx, byte",
	OpDrw:     "DRW Vx, Vy, nibble",
	OpSkp:     "SKP Vx",
	OpSknp:    "SKNP Vx",
	OpLdVxDT:  "LD Vx, DT",
	OpLdK:     "LD Vx, K",
	OpLdDT:    "LD DT, Vx",
	OpLdST:    "LD ST, Vx",
	OpAddI:    "ADD I, Vx",
	OpLdF:     "LD F, Vx",
	OpLdB:     "LD B, Vx",
	OpStore:   "LD [I], Vx",
	OpLoad:    "LD Vx, [I]",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return opNames[OpInvalid]
}

// Decode classifies an instruction word. Every word decodes; words that are
// not CHIP-8 instructions decode to OpInvalid.
func Decode(i Instruction) Op {
	n := i.Nibbles()
	switch n[0] {
	case 0x0:
		switch uint16(i) {
		case 0x00E0:
			return OpCls
		case 0x00EE:
			return OpRet
		}
	case 0x1:
		return OpJp
	case 0x2:
		return OpCall
	case 0x3:
		return OpSeImm
	case 0x4:
		return OpSneImm
	case 0x5:
		if n[3] == 0x0 {
			return OpSeReg
		}
	case 0x6:
		return OpLdImm
	case 0x7:
		return OpAddImm
	case 0x8:
		switch n[3] {
		case 0x0:
			return OpLdReg
		case 0x1:
			return OpOr
		case 0x2:
			return OpAnd
		case 0x3:
			return OpXor
		case 0x4:
			return OpAddReg
		case 0x5:
			return OpSub
		case 0x6:
			return OpShr
		case 0x7:
			return OpSubn
		case 0xE:
			return OpShl
		}
	case 0x9:
		if n[3] == 0x0 {
			return OpSneReg
		}
	case 0xA:
		return OpLdI
	case 0xB:
		return OpJpV0
	case 0xC:
		return OpRnd
	case 0xD:
		return OpDrw
	case 0xE:
		switch i.NN() {
		case 0x9E:
			return OpSkp
		case 0xA1:
			return OpSknp
		}
	case 0xF:
		switch i.NN() {
		case 0x07:
			return OpLdVxDT
		case 0x0A:
			return OpLdK
		case 0x15:
			return OpLdDT
		case 0x18:
			return OpLdST
		case 0x1E:
			return OpAddI
		case 0x29:
			return OpLdF
		case 0x33:
			return OpLdB
		case 0x55:
			return OpStore
		case 0x65:
			return OpLoad
		}
	}
	return OpInvalid
}
