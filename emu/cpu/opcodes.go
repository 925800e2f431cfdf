package cpu

// execute runs a single instruction. Every check that can fail happens before
// the first state change, so a faulting instruction leaves the machine as it
// was fetched. Control flow ops assign the target address to next directly,
// all other ops fall through to the following instruction.
func (emu *EMU) execute(ins Instruction) error {
	x, y := ins.X(), ins.Y()
	next := emu.pc + InstructionSize

	switch Decode(ins) {
	case OpCls:
		emu.display.clear()

	case OpRet:
		addr, err := emu.pop()
		if err != nil {
			return err
		}
		next = addr

	case OpJp:
		next = ins.NNN()

	case OpCall:
		if err := emu.push(next); err != nil {
			return err
		}
		next = ins.NNN()

	case OpSeImm:
		if emu.v[x] == ins.NN() {
			next += InstructionSize
		}

	case OpSneImm:
		if emu.v[x] != ins.NN() {
			next += InstructionSize
		}

	case OpSeReg:
		if emu.v[x] == emu.v[y] {
			next += InstructionSize
		}

	case OpLdImm:
		emu.v[x] = ins.NN()

	case OpAddImm:
		emu.v[x] += ins.NN() // VF untouched

	case OpLdReg:
		emu.v[x] = emu.v[y]

	case OpOr:
		emu.v[x] |= emu.v[y]

	case OpAnd:
		emu.v[x] &= emu.v[y]

	case OpXor:
		emu.v[x] ^= emu.v[y]

	case OpAddReg:
		sum := uint16(emu.v[x]) + uint16(emu.v[y])
		emu.v[0xF] = flag(sum > 0xFF)
		emu.v[x] = uint8(sum)

	case OpSub:
		vx, vy := emu.v[x], emu.v[y]
		emu.v[0xF] = flag(vx >= vy) // 0 on borrow
		emu.v[x] = vx - vy

	case OpSubn:
		vx, vy := emu.v[x], emu.v[y]
		emu.v[0xF] = flag(vy >= vx)
		emu.v[x] = vy - vx

	case OpShr:
		src := emu.shiftSource(x, y)
		emu.v[0xF] = src & 0x01 // least significant bit
		emu.v[x] = src >> 1

	case OpShl:
		src := emu.shiftSource(x, y)
		emu.v[0xF] = src >> 7 // most significant bit
		emu.v[x] = src << 1

	case OpSneReg:
		if emu.v[x] != emu.v[y] {
			next += InstructionSize
		}

	case OpLdI:
		emu.i = ins.NNN()

	case OpJpV0:
		target := ins.NNN() + uint16(emu.v[0])
		if target > MaxAddress {
			return outOfRange(target, InstructionSize)
		}
		next = target

	case OpRnd:
		emu.v[x] = uint8(emu.rng.Uint32()) & ins.NN()

	case OpDrw:
		n := int(ins.N())
		if err := checkRange(emu.i, n); err != nil {
			return err
		}
		sprite := emu.memory[emu.i : int(emu.i)+n]
		emu.v[0xF] = emu.display.drawSprite(emu.v[x], emu.v[y], sprite)

	case OpSkp:
		if emu.keypad.pressed(emu.v[x]) {
			next += InstructionSize
		}

	case OpSknp:
		if !emu.keypad.pressed(emu.v[x]) {
			next += InstructionSize
		}

	case OpLdVxDT:
		emu.v[x] = emu.delayTimer

	case OpLdK:
		emu.waitReg = x
		emu.state = WaitingForKey
		emu.keypad.arm()

	case OpLdDT:
		emu.delayTimer = emu.v[x]

	case OpLdST:
		emu.soundTimer = emu.v[x]

	case OpAddI:
		addr := emu.i + uint16(emu.v[x])
		if addr > MaxAddress {
			return outOfRange(emu.i, int(emu.v[x]))
		}
		emu.i = addr

	case OpLdF:
		// fonts are stored starting at FontAddress
		emu.i = FontAddress + uint16(emu.v[x])*GlyphSize

	case OpLdB:
		if err := checkRange(emu.i, 3); err != nil {
			return err
		}
		value := emu.v[x]
		emu.memory[emu.i] = value / 100        // hundreds
		emu.memory[emu.i+1] = (value / 10) % 10 // tens
		emu.memory[emu.i+2] = value % 10        // ones

	case OpStore:
		count := int(x) + 1
		if err := checkRange(emu.i, count); err != nil {
			return err
		}
		copy(emu.memory[emu.i:int(emu.i)+count], emu.v[:count])
		emu.i += uint16(count)

	case OpLoad:
		count := int(x) + 1
		if err := checkRange(emu.i, count); err != nil {
			return err
		}
		copy(emu.v[:count], emu.memory[emu.i:int(emu.i)+count])
		emu.i += uint16(count)

	default:
		return ErrUnknownOpcode
	}

	emu.pc = next
	return nil
}

func (emu *EMU) shiftSource(x, y uint8) uint8 {
	if emu.settings.ShiftVY {
		return emu.v[y]
	}
	return emu.v[x]
}

func flag(set bool) uint8 {
	if set {
		return 1
	}
	return 0
}
