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
	"errors"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/consensys/go-eccop/pkg/arbiter"
	"github.com/consensys/go-eccop/pkg/isa"
	"github.com/consensys/go-eccop/pkg/mem"
	"github.com/consensys/go-eccop/pkg/report"
	"github.com/consensys/go-eccop/pkg/units"
)

// ErrAborted is returned by Run when a host reset destroys the in-flight
// program state.
var ErrAborted = errors.New("aborted by host reset")

// Config carries the provisioning parameters of a coprocessor instance.
// Zero values select the defaults.
type Config struct {
	// Modulus of the base field; nil selects the BLS12-381 base field.
	Modulus *big.Int
	// OperandSlots is the operand store size (default 256).
	OperandSlots uint
	// MemLatency is the operand store read latency in cycles (default 2).
	MemLatency uint64
	// ProgLatency is the program store fetch latency in cycles (default 2).
	ProgLatency uint64
	// ReportDepth is the report index queue depth (default 8).
	ReportDepth uint
	// OutBuffer is the outbound beat channel capacity (default 64; zero
	// capacity is selected with OutUnbuffered).
	OutBuffer uint
	// OutUnbuffered forces an unbuffered outbound channel.
	OutUnbuffered bool
}

// Status is the read-only host-facing status surface.
type Status struct {
	// PC is the current program counter.
	PC uint
	// Cycles elapsed since the current instruction began.
	Cycles uint64
	// Ready indicates the stores have been (re)initialized.
	Ready bool
	// Fault is the sticky arithmetic error flag.  It is latched from the
	// engines' error signal but never acted upon: a faulted operation
	// still stores its (incorrect) result and the program runs on.
	Fault bool
}

// Coprocessor is the instruction execution engine together with its stores,
// engine bank and report subsystem, exposed through the host-facing
// control surface.
type Coprocessor struct {
	params   *units.Params
	operands *mem.OperandStore
	program  *mem.ProgramStore
	bank     *units.Bank
	pmul     *units.PointMulEngine
	pairer   units.PairingEvaluator
	reporter *report.Reporter
	out      chan report.Beat
	// Elementary executors hold lane 0 of every shared engine.
	mulLane, addLane, subLane *arbiter.Lane
	//
	mu        sync.Mutex
	jumpAddr  uint
	jumpValid bool
	resetReq  bool
	//
	pc        atomic.Uint64
	cycle     atomic.Uint64
	insnStart atomic.Uint64
	fault     atomic.Bool
	ready     atomic.Bool
	running   atomic.Bool
}

// New provisions a coprocessor.  The arbitration processes and the report
// drain process start immediately; the engine itself runs only once the
// host calls Run.
func New(cfg Config) *Coprocessor {
	if cfg.OperandSlots == 0 {
		cfg.OperandSlots = 256
	}
	//
	if cfg.MemLatency == 0 {
		cfg.MemLatency = 2
	}
	//
	if cfg.ProgLatency == 0 {
		cfg.ProgLatency = 2
	}
	//
	if cfg.ReportDepth == 0 {
		cfg.ReportDepth = 8
	}
	//
	if cfg.OutBuffer == 0 && !cfg.OutUnbuffered {
		cfg.OutBuffer = 64
	}
	//
	params := units.BLS12381()
	if cfg.Modulus != nil {
		params = units.NewParams(cfg.Modulus)
	}
	//
	c := &Coprocessor{
		params:   params,
		operands: mem.NewOperandStore(cfg.OperandSlots, cfg.MemLatency),
		program:  mem.NewProgramStore(cfg.ProgLatency),
		bank:     units.NewBank(params),
		out:      make(chan report.Beat, cfg.OutBuffer),
	}
	//
	c.pmul = units.NewPointMulEngine(c.bank, c.noteFault)
	c.reporter = report.New(cfg.ReportDepth, params.WordBytes(), c.out)
	c.mulLane = c.bank.Mul.Lane(arbiter.LaneElementary)
	c.addLane = c.bank.Add.Lane(arbiter.LaneElementary)
	c.subLane = c.bank.Sub.Lane(arbiter.LaneElementary)
	c.ready.Store(true)
	//
	return c
}

// Out is the outbound report beat stream.  It is closed on Close once all
// queued reports have drained.
func (c *Coprocessor) Out() <-chan report.Beat {
	return c.out
}

// Params returns the field parameters the engine bank was provisioned with.
func (c *Coprocessor) Params() *units.Params {
	return c.params
}

// LoadProgram writes the instruction sequence into the program store.
func (c *Coprocessor) LoadProgram(code []isa.Instruction) {
	c.program.Load(code)
}

// Load provisions both stores from an assembled program.
func (c *Coprocessor) Load(p isa.Program) {
	c.program.Load(p.Code)
	//
	for _, init := range p.Operands {
		c.SetOperand(init.Addr, init.Tag, init.Words)
	}
}

// SetOperand writes one tagged value into the operand store, one slot per
// word starting at addr.
func (c *Coprocessor) SetOperand(addr uint, tag isa.Tag, words []big.Int) {
	for i := range words {
		var cell mem.Cell
		//
		cell.Tag = tag
		cell.Word.Set(&words[i])
		c.operands.Write(addr+uint(i), cell)
	}
}

// Operand reads one tagged value back out of the operand store; the word
// count follows the tag stored at the base slot.
func (c *Coprocessor) Operand(addr uint) (isa.Tag, []big.Int) {
	now := c.now() + c.operands.Latency()
	base := c.operands.Read(addr, c.now())
	tag := base.Cell(now).Tag
	words := make([]big.Int, tag.Words())
	words[0] = base.Cell(now).Word
	//
	for i := uint(1); i < tag.Words(); i++ {
		p := c.operands.Read(addr+i, c.now())
		words[i] = p.Cell(now).Word
	}
	//
	return tag, words
}

// Jump latches a one-shot program-counter override, taking effect at the
// next fetch boundary.  Repeated assertions before the latch is consumed
// coalesce: only the most recent address survives.
func (c *Coprocessor) Jump(addr uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	//
	c.jumpAddr = addr
	c.jumpValid = true
}

// Reset unconditionally aborts any in-flight instruction and reinitializes
// both stores.  There is no graceful drain.
func (c *Coprocessor) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	//
	if c.running.Load() {
		// The run loop performs the destructive re-init at its next step
		// boundary.
		c.resetReq = true
		return
	}
	//
	c.doReset()
}

// ResetProgram clears the program store only.
func (c *Coprocessor) ResetProgram() {
	c.program.Reset()
}

// ResetOperands clears the operand store only.
func (c *Coprocessor) ResetOperands() {
	c.operands.Reset()
}

// doReset holds c.mu.
func (c *Coprocessor) doReset() {
	c.ready.Store(false)
	c.program.Reset()
	c.operands.Reset()
	c.pc.Store(0)
	c.cycle.Store(0)
	c.insnStart.Store(0)
	c.jumpValid = false
	c.resetReq = false
	c.ready.Store(true)
}

// Status returns the host-facing status registers.
func (c *Coprocessor) Status() Status {
	return Status{
		PC:     uint(c.pc.Load()),
		Cycles: c.cycle.Load() - c.insnStart.Load(),
		Ready:  c.ready.Load(),
		Fault:  c.fault.Load(),
	}
}

// Close tears down the arbitration processes and the report drain.  The
// outbound channel is closed once queued reports have drained.
func (c *Coprocessor) Close() {
	c.reporter.Close()
	c.bank.Close()
}

// ===================================================================
// Internal clock and engine access
// ===================================================================

// now returns the current cycle.
func (c *Coprocessor) now() uint64 {
	return c.cycle.Load()
}

// tick advances the global cycle counter by one.
func (c *Coprocessor) tick() {
	c.cycle.Add(1)
}

// noteFault latches the engines' error signal into the sticky status flag.
func (c *Coprocessor) noteFault(fault bool) {
	if fault {
		c.fault.Store(true)
	}
}

// do issues one elementary-lane engine operation and awaits its tagged
// response; the calling micro-step is suspended until the response arrives.
func (c *Coprocessor) do(lane *arbiter.Lane, id uint, x, y *big.Int) big.Int {
	resp := lane.Do(id, x, y)
	//
	if resp.ID != id {
		panic("engine response does not match issued micro-operation")
	}
	//
	c.noteFault(resp.Fault)
	//
	return resp.Z
}
