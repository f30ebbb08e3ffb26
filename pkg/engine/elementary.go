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
	"math/big"

	"github.com/consensys/go-eccop/pkg/isa"
)

// copyTask implements COPY: one read/write round trip moving the value at
// a, tag included, to b.
type copyTask struct {
	a, b uint
	ld   *loader
	wr   *writer
}

func (t *copyTask) step(c *Coprocessor) bool {
	if t.ld == nil {
		t.ld = newLoader(c.operands, t.a)
	}
	//
	if !t.ld.done {
		t.ld.step(c.now())
		return false
	}
	//
	if t.wr == nil {
		t.wr = newWriter(c.operands, t.b, t.ld.tag, t.ld.words)
	}
	//
	return t.wr.step()
}

// arithTask implements ADD and SUBTRACT.  The operand shape follows a's
// tag: one engine request for Fe, two sequential requests (low limb then
// high limb) for Fe2.  b is read with a's shape, as the hardware does.
type arithTask struct {
	a, b, c uint
	sub     bool
	//
	phase  uint8
	la, lb *loader
	limb   uint
	res    []big.Int
	wr     *writer
}

func (t *arithTask) step(c *Coprocessor) bool {
	const (
		phLoadA = iota
		phLoadB
		phCompute
		phWrite
	)
	//
	switch t.phase {
	case phLoadA:
		if t.la == nil {
			t.la = newLoader(c.operands, t.a)
		}
		//
		if t.la.step(c.now()) {
			t.phase = phLoadB
		}
	case phLoadB:
		if t.lb == nil {
			t.lb = newLoaderN(c.operands, t.b, t.limbs())
		}
		//
		if t.lb.step(c.now()) {
			t.phase = phCompute
		}
	case phCompute:
		lane := c.addLane
		if t.sub {
			lane = c.subLane
		}
		// One limb per micro-step, low limb first.
		z := c.do(lane, t.limb, &t.la.words[t.limb], &t.lb.words[t.limb])
		t.res = append(t.res, z)
		t.limb++
		//
		if t.limb == t.limbs() {
			t.phase = phWrite
		}
	case phWrite:
		if t.wr == nil {
			t.wr = newWriter(c.operands, t.c, t.la.tag, t.res)
		}
		//
		return t.wr.step()
	}
	//
	return false
}

// limbs is the request count determined by a's tag.
func (t *arithTask) limbs() uint {
	if t.la.tag == isa.TagFe2 {
		return 2
	}
	//
	return 1
}

// multiplyTask implements MULTIPLY.  Fe operands need a single engine
// request; Fe2 operands use the 3-multiplication Karatsuba identity over
// u^2 = -1, each multiply tagged so the executor can recover which partial
// product completed.
type multiplyTask struct {
	a, b, c uint
	//
	phase  uint8
	la, lb *loader
	// Partial products and limb sums of the Karatsuba sequence.
	t0, t1, t2, s0, s1 big.Int
	res                []big.Int
	wr                 *writer
}

// Request ids for the three partial products.
const (
	mulT0 = iota
	mulT1
	mulT2
)

func (t *multiplyTask) step(c *Coprocessor) bool {
	const (
		phLoadA = iota
		phLoadB
		phFe
		phT0
		phT1
		phS0
		phS1
		phT2
		phC0
		phC1a
		phC1b
		phWrite
	)
	//
	switch t.phase {
	case phLoadA:
		if t.la == nil {
			t.la = newLoader(c.operands, t.a)
		}
		//
		if !t.la.step(c.now()) {
			break
		}
		//
		t.phase = phLoadB
	case phLoadB:
		if t.lb == nil {
			n := uint(1)
			if t.la.tag == isa.TagFe2 {
				n = 2
			}
			//
			t.lb = newLoaderN(c.operands, t.b, n)
		}
		//
		if !t.lb.step(c.now()) {
			break
		}
		//
		if t.la.tag == isa.TagFe2 {
			t.phase = phT0
		} else {
			t.phase = phFe
		}
	case phFe:
		z := c.do(c.mulLane, mulT0, &t.la.words[0], &t.lb.words[0])
		t.res = []big.Int{z}
		t.phase = phWrite
	case phT0:
		t.t0 = c.do(c.mulLane, mulT0, &t.la.words[0], &t.lb.words[0])
		t.phase = phT1
	case phT1:
		t.t1 = c.do(c.mulLane, mulT1, &t.la.words[1], &t.lb.words[1])
		t.phase = phS0
	case phS0:
		t.s0 = c.do(c.addLane, 0, &t.la.words[0], &t.la.words[1])
		t.phase = phS1
	case phS1:
		t.s1 = c.do(c.addLane, 1, &t.lb.words[0], &t.lb.words[1])
		t.phase = phT2
	case phT2:
		t.t2 = c.do(c.mulLane, mulT2, &t.s0, &t.s1)
		t.phase = phC0
	case phC0:
		// c0 = t0 - t1
		z := c.do(c.subLane, 0, &t.t0, &t.t1)
		t.res = []big.Int{z}
		t.phase = phC1a
	case phC1a:
		// c1 = t2 - t0 ...
		t.t2 = c.do(c.subLane, 1, &t.t2, &t.t0)
		t.phase = phC1b
	case phC1b:
		// ... - t1
		z := c.do(c.subLane, 2, &t.t2, &t.t1)
		t.res = append(t.res, z)
		t.phase = phWrite
	case phWrite:
		if t.wr == nil {
			t.wr = newWriter(c.operands, t.c, t.la.tag, t.res)
		}
		//
		return t.wr.step()
	}
	//
	return false
}

// invertTask implements INVERT.  Fe operands go straight to the dedicated
// inverter; Fe2 operands use norm = a0^2 + a1^2, inv = norm^-1, result
// (a0*inv, -a1*inv), sequenced in data-dependency order.
type invertTask struct {
	a, c uint
	//
	phase        uint8
	ld           *loader
	m0, m1, norm big.Int
	inv, neg     big.Int
	res          []big.Int
	wr           *writer
}

func (t *invertTask) step(c *Coprocessor) bool {
	const (
		phLoad = iota
		phFe
		phM0
		phM1
		phNorm
		phInv
		phR0
		phR1
		phNeg
		phWrite
	)
	//
	switch t.phase {
	case phLoad:
		if t.ld == nil {
			t.ld = newLoader(c.operands, t.a)
		}
		//
		if !t.ld.step(c.now()) {
			break
		}
		//
		if t.ld.tag == isa.TagFe2 {
			t.phase = phM0
		} else {
			t.phase = phFe
		}
	case phFe:
		z, fault := c.bank.Inv.Invert(&t.ld.words[0])
		c.noteFault(fault)
		t.res = []big.Int{z}
		t.phase = phWrite
	case phM0:
		t.m0 = c.do(c.mulLane, 0, &t.ld.words[0], &t.ld.words[0])
		t.phase = phM1
	case phM1:
		t.m1 = c.do(c.mulLane, 1, &t.ld.words[1], &t.ld.words[1])
		t.phase = phNorm
	case phNorm:
		t.norm = c.do(c.addLane, 0, &t.m0, &t.m1)
		t.phase = phInv
	case phInv:
		z, fault := c.bank.Inv.Invert(&t.norm)
		c.noteFault(fault)
		t.inv = z
		t.phase = phR0
	case phR0:
		z := c.do(c.mulLane, 2, &t.ld.words[0], &t.inv)
		t.res = []big.Int{z}
		t.phase = phR1
	case phR1:
		t.neg = c.do(c.mulLane, 3, &t.ld.words[1], &t.inv)
		t.phase = phNeg
	case phNeg:
		var zero big.Int
		// -a1*inv
		z := c.do(c.subLane, 0, &zero, &t.neg)
		t.res = append(t.res, z)
		t.phase = phWrite
	case phWrite:
		if t.wr == nil {
			t.wr = newWriter(c.operands, t.c, t.ld.tag, t.res)
		}
		//
		return t.wr.step()
	}
	//
	return false
}
