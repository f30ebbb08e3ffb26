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
package engine

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/consensys/go-eccop/pkg/isa"
)

// state enumerates the dispatch state machine.  IDLE fetches; every other
// state runs one task's micro-sequence to completion and returns to IDLE.
type state uint8

const (
	// StateIdle holds while fetching the next instruction.
	StateIdle state = iota
	// StateCopy runs the copy executor.
	StateCopy
	// StateInvert runs the invert executor.
	StateInvert
	// StateMultiply runs the multiply executor.
	StateMultiply
	// StateSubtract runs the subtract executor.
	StateSubtract
	// StateAdd runs the add executor.
	StateAdd
	// StateReport runs the report executor.
	StateReport
	// StateScalarMul runs the scalar point-multiplication sequencer.
	StateScalarMul
	// StateFixedMulG1 runs the fixed-base sequencer for the G1 generator.
	StateFixedMulG1
	// StateFixedMulG2 runs the fixed-base sequencer for the G2 generator.
	StateFixedMulG2
	// StatePairing runs the pairing sequencer.
	StatePairing
)

var stateNames = [...]string{
	"IDLE", "COPY", "INVERT", "MULTIPLY", "SUBTRACT", "ADD",
	"REPORT", "SCALAR_MUL", "FIXED_MUL_G1", "FIXED_MUL_G2", "PAIRING",
}

func (s state) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	//
	return fmt.Sprintf("state(%d)", uint8(s))
}

// task is one executor's micro-sequence.  Each call to step advances at
// most one micro-step and corresponds to one engine cycle; step returns
// true once the terminal step has run.
type task interface {
	step(c *Coprocessor) bool
}

// decode routes an opcode to its executor.  Unrecognised opcodes decode to
// no task and execute as no-ops.
func (c *Coprocessor) decode(insn isa.Instruction) (task, state) {
	switch insn.Opcode {
	case isa.OpCopy:
		return &copyTask{a: insn.A, b: insn.B}, StateCopy
	case isa.OpInvert:
		return &invertTask{a: insn.A, c: insn.C}, StateInvert
	case isa.OpMultiply:
		return &multiplyTask{a: insn.A, b: insn.B, c: insn.C}, StateMultiply
	case isa.OpSubtract:
		return &arithTask{a: insn.A, b: insn.B, c: insn.C, sub: true}, StateSubtract
	case isa.OpAdd:
		return &arithTask{a: insn.A, b: insn.B, c: insn.C}, StateAdd
	case isa.OpReport:
		return &reportTask{a: insn.A}, StateReport
	case isa.OpScalarMul:
		return &scalarMulTask{a: insn.A, b: insn.B, c: insn.C}, StateScalarMul
	case isa.OpFixedMulG1:
		return &fixedMulTask{a: insn.A, c: insn.C}, StateFixedMulG1
	case isa.OpFixedMulG2:
		return &fixedMulTask{a: insn.A, c: insn.C, g2: true}, StateFixedMulG2
	case isa.OpPairing:
		return &pairingTask{a: insn.A, b: insn.B, c: insn.C}, StatePairing
	default:
		return nil, StateIdle
	}
}

// Run drives the fetch/decode/execute loop until the program counter runs
// off the end of the program, the context is cancelled, or a host reset
// aborts execution.  At most one instruction is active at a time.
func (c *Coprocessor) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return fmt.Errorf("engine already running")
	}
	//
	defer c.running.Store(false)
	//
	for {
		if err := c.interrupted(ctx); err != nil {
			return err
		}
		// Consume the one-shot program-counter override, if latched.
		c.mu.Lock()
		if c.jumpValid {
			c.pc.Store(uint64(c.jumpAddr))
			c.jumpValid = false
		}
		c.mu.Unlock()
		//
		pc := uint(c.pc.Load())
		if pc >= c.program.Len() {
			// Ran to completion.
			return nil
		}
		// Fetch, honouring the program store latency.
		fetch := c.program.Read(pc, c.now())
		//
		for !fetch.Ready(c.now()) {
			c.tick()
			//
			if err := c.interrupted(ctx); err != nil {
				return err
			}
		}
		//
		insn := fetch.Instruction(c.now())
		exec, st := c.decode(insn)
		//
		log.WithFields(log.Fields{
			"pc": pc, "state": st.String(), "insn": insn.String(),
		}).Debug("dispatch")
		// Per-task step counter restarts with the instruction.
		c.insnStart.Store(c.cycle.Load())
		//
		for exec != nil && !exec.step(c) {
			c.tick()
			//
			if err := c.interrupted(ctx); err != nil {
				return err
			}
		}
		// Back to IDLE; advance past the completed instruction.
		c.tick()
		c.pc.Store(uint64(pc + 1))
	}
}

// interrupted checks for context cancellation and host reset between
// micro-steps.  Reset is destructive: stores are reinitialized and the run
// aborts with ErrAborted.
func (c *Coprocessor) interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	//
	c.mu.Lock()
	defer c.mu.Unlock()
	//
	if c.resetReq {
		c.doReset()
		return ErrAborted
	}
	//
	return nil
}
