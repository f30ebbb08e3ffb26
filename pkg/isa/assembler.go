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

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// OperandInit describes one value of the initial operand image: the base
// slot it occupies, its tag, and its tag-determined number of words.
type OperandInit struct {
	// Addr is the base slot of the value.
	Addr uint
	// Tag determines the shape (and word count) of the value.
	Tag Tag
	// Words holds exactly Tag.Words() limbs, low address first.
	Words []big.Int
}

// Program is the result of assembling a source file: the instruction
// sequence for the program store plus the initial operand image.
type Program struct {
	// Code is loaded into the program store.
	Code []Instruction
	// Operands is written into the operand store before execution.
	Operands []OperandInit
}

// Assemble parses the line-based assembly format:
//
//	; operand image
//	%0 fe  0x03
//	%1 fe2 0x01 0x04
//	.text
//	add    $0 $0 $2
//	report $2
//
// Lines starting with '%' declare operand-image values; the '.text' and
// '.data' markers are accepted and ignored; everything else is an
// instruction of the form "mnemonic $a [$b] [$c]".
func Assemble(src string) (Program, error) {
	var program Program
	//
	for num, line := range strings.Split(src, "\n") {
		// Strip comments and surrounding whitespace
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}
		//
		line = strings.TrimSpace(line)
		//
		switch {
		case line == "" || line == ".text" || line == ".data":
			continue
		case line[0] == '%':
			init, err := parseOperand(line)
			if err != nil {
				return program, errors.Wrapf(err, "line %d", num+1)
			}
			//
			program.Operands = append(program.Operands, init)
		default:
			insn, err := parseInstruction(line)
			if err != nil {
				return program, errors.Wrapf(err, "line %d", num+1)
			}
			//
			program.Code = append(program.Code, insn)
		}
	}
	//
	return program, nil
}

// ===================================================================
// Helpers
// ===================================================================

// operandShape determines how the positional address tokens of a mnemonic
// map onto the instruction's A/B/C fields.
var operandShape = map[Opcode]string{
	OpCopy:       "ab",
	OpInvert:     "ac",
	OpMultiply:   "abc",
	OpSubtract:   "abc",
	OpAdd:        "abc",
	OpReport:     "a",
	OpScalarMul:  "abc",
	OpFixedMulG1: "ac",
	OpFixedMulG2: "ac",
	OpPairing:    "abc",
}

func parseInstruction(line string) (Instruction, error) {
	var (
		insn   Instruction
		tokens = strings.Fields(line)
	)
	//
	opcode, ok := OpcodeOf(tokens[0])
	if !ok {
		return insn, errors.Errorf("unknown mnemonic %q", tokens[0])
	}
	//
	insn.Opcode = opcode
	shape := operandShape[opcode]
	//
	if len(tokens)-1 != len(shape) {
		return insn, errors.Errorf("%s expects %d operand(s), got %d", opcode, len(shape), len(tokens)-1)
	}
	//
	for i, token := range tokens[1:] {
		addr, err := parseAddress(token)
		if err != nil {
			return insn, err
		}
		//
		switch shape[i] {
		case 'a':
			insn.A = addr
		case 'b':
			insn.B = addr
		case 'c':
			insn.C = addr
		}
	}
	//
	return insn, nil
}

func parseOperand(line string) (OperandInit, error) {
	var (
		init   OperandInit
		tokens = strings.Fields(line)
	)
	//
	if len(tokens) < 2 {
		return init, errors.New("malformed operand declaration")
	}
	//
	addr, err := strconv.ParseUint(tokens[0][1:], 0, 32)
	if err != nil {
		return init, errors.Wrapf(err, "bad operand address %q", tokens[0])
	}
	//
	tag, ok := TagOf(tokens[1])
	if !ok {
		return init, errors.Errorf("unknown tag %q", tokens[1])
	}
	//
	init.Addr = uint(addr)
	init.Tag = tag
	//
	if uint(len(tokens)-2) != tag.Words() {
		return init, errors.Errorf("tag %s expects %d word(s), got %d", tag, tag.Words(), len(tokens)-2)
	}
	//
	for _, token := range tokens[2:] {
		var word big.Int
		//
		if _, ok := word.SetString(token, 0); !ok {
			return init, errors.Errorf("bad word %q", token)
		}
		//
		init.Words = append(init.Words, word)
	}
	//
	return init, nil
}

func parseAddress(token string) (uint, error) {
	if !strings.HasPrefix(token, "$") {
		return 0, errors.Errorf("bad address %q (expected $n)", token)
	}
	//
	addr, err := strconv.ParseUint(token[1:], 0, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "bad address %q", token)
	}
	//
	return uint(addr), nil
}
