// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package isa

import "fmt"

// Opcode selects which task the dispatch state machine runs for an
// instruction.  Opcodes outside the table below are executed as no-ops.
type Opcode uint8

const (
	// OpCopy moves one tagged value between two slots verbatim.
	OpCopy Opcode = 0x01
	// OpInvert computes the modular (or extension-field) inverse.
	OpInvert Opcode = 0x02
	// OpMultiply multiplies two field or extension-field elements.
	OpMultiply Opcode = 0x03
	// OpSubtract subtracts two field or extension-field elements.
	OpSubtract Opcode = 0x04
	// OpAdd adds two field or extension-field elements.
	OpAdd Opcode = 0x05
	// OpReport streams one tagged value out over the report channel.
	OpReport Opcode = 0x06
	// OpScalarMul multiplies an in-memory point by an in-memory scalar.
	OpScalarMul Opcode = 0x07
	// OpFixedMulG1 multiplies the fixed G1 generator by a scalar.
	OpFixedMulG1 Opcode = 0x08
	// OpFixedMulG2 multiplies the fixed G2 generator by a scalar.
	OpFixedMulG2 Opcode = 0x09
	// OpPairing evaluates the pairing of a G1/G2 affine point pair.
	OpPairing Opcode = 0x0a
)

// opcodeNames maps opcodes to their assembler mnemonics.
var opcodeNames = map[Opcode]string{
	OpCopy:       "copy",
	OpInvert:     "inv",
	OpMultiply:   "mul",
	OpSubtract:   "sub",
	OpAdd:        "add",
	OpReport:     "report",
	OpScalarMul:  "smul",
	OpFixedMulG1: "fmul1",
	OpFixedMulG2: "fmul2",
	OpPairing:    "pair",
}

// OpcodeOf resolves a mnemonic into its opcode, returning false if the
// mnemonic is not recognised.
func OpcodeOf(mnemonic string) (Opcode, bool) {
	for op, name := range opcodeNames {
		if name == mnemonic {
			return op, true
		}
	}
	//
	return 0, false
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	//
	return fmt.Sprintf("op(%#02x)", uint8(o))
}

// Instruction is one program-store word: an opcode plus three operand-store
// addresses.  Instructions are read-only once fetched.
type Instruction struct {
	// Opcode determines the task to run.
	Opcode Opcode
	// A is the first operand address (source).
	A uint
	// B is the second operand address (source or destination, depending
	// on the opcode).
	B uint
	// C is the third operand address (destination).
	C uint
}

func (i Instruction) String() string {
	return fmt.Sprintf("%s $%d $%d $%d", i.Opcode, i.A, i.B, i.C)
}
