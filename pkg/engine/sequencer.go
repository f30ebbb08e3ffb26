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
	"github.com/consensys/go-eccop/pkg/units"
)

// scalarMulTask implements SCALAR_MUL: scalar at a, point at b (shape from
// its stored tag), result at c in Jacobian form matching the input field.
type scalarMulTask struct {
	a, b, c uint
	//
	phase  uint8
	ls, lp *loader
	wr     *writer
}

func (t *scalarMulTask) step(c *Coprocessor) bool {
	const (
		phLoadScalar = iota
		phLoadPoint
		phCompute
		phWrite
	)
	//
	switch t.phase {
	case phLoadScalar:
		if t.ls == nil {
			t.ls = newLoaderN(c.operands, t.a, 1)
		}
		//
		if t.ls.step(c.now()) {
			t.phase = phLoadPoint
		}
	case phLoadPoint:
		if t.lp == nil {
			t.lp = newLoader(c.operands, t.b)
		}
		//
		if t.lp.step(c.now()) {
			t.phase = phCompute
		}
	case phCompute:
		point := normalize(t.lp.tag, t.lp.words)
		result := c.pmul.ScalarMul(&t.ls.words[0], point)
		//
		tag := isa.TagFpJacobian
		if result.Ext() {
			tag = isa.TagFp2Jacobian
		}
		//
		t.wr = newWriter(c.operands, t.c, tag, result.Words())
		t.phase = phWrite
	case phWrite:
		return t.wr.step()
	}
	//
	return false
}

// normalize converts a stored point into the Jacobian representation the
// point-multiplication engine requires, defaulting the auxiliary coordinate
// to one when the source was affine.  Non-point tags are the program
// author's problem; they normalize to the base-field identity.
func normalize(tag isa.Tag, words []big.Int) units.JacPoint {
	one := []big.Int{*big.NewInt(1)}
	oneExt := []big.Int{*big.NewInt(1), {}}
	//
	switch tag {
	case isa.TagFpAffine:
		return units.JacPoint{X: words[0:1], Y: words[1:2], Z: one}
	case isa.TagFpJacobian:
		return units.JacPoint{X: words[0:1], Y: words[1:2], Z: words[2:3]}
	case isa.TagFp2Affine:
		return units.JacPoint{X: words[0:2], Y: words[2:4], Z: oneExt}
	case isa.TagFp2Jacobian:
		return units.JacPoint{X: words[0:2], Y: words[2:4], Z: words[4:6]}
	default:
		return units.Identity(false)
	}
}

// fixedMulTask implements FIXED_MUL_G1 and FIXED_MUL_G2: scalar at a,
// compile-time generator base point, Jacobian result at c.  The g2 flag
// selects extension-field arithmetic in the shared gadgets.
type fixedMulTask struct {
	a, c uint
	g2   bool
	//
	phase uint8
	ls    *loader
	wr    *writer
}

func (t *fixedMulTask) step(c *Coprocessor) bool {
	const (
		phLoadScalar = iota
		phCompute
		phWrite
	)
	//
	switch t.phase {
	case phLoadScalar:
		if t.ls == nil {
			t.ls = newLoaderN(c.operands, t.a, 1)
		}
		//
		if t.ls.step(c.now()) {
			t.phase = phCompute
		}
	case phCompute:
		base := units.GeneratorG1()
		tag := isa.TagFpJacobian
		//
		if t.g2 {
			base = units.GeneratorG2()
			tag = isa.TagFp2Jacobian
		}
		//
		result := c.pmul.ScalarMul(&t.ls.words[0], base)
		t.wr = newWriter(c.operands, t.c, tag, result.Words())
		t.phase = phWrite
	case phWrite:
		return t.wr.step()
	}
	//
	return false
}

// pairingTask implements PAIRING: a G1 affine point (2 slots) at a, a G2
// affine point (4 slots) at b, and the 12-limb evaluator result at c.
type pairingTask struct {
	a, b, c uint
	//
	phase  uint8
	lp, lq *loader
	wr     *writer
}

func (t *pairingTask) step(c *Coprocessor) bool {
	const (
		phLoadP = iota
		phLoadQ
		phCompute
		phWrite
	)
	//
	switch t.phase {
	case phLoadP:
		if t.lp == nil {
			t.lp = newLoaderN(c.operands, t.a, 2)
		}
		//
		if t.lp.step(c.now()) {
			t.phase = phLoadQ
		}
	case phLoadQ:
		if t.lq == nil {
			t.lq = newLoaderN(c.operands, t.b, 4)
		}
		//
		if t.lq.step(c.now()) {
			t.phase = phCompute
		}
	case phCompute:
		// Single-shot completion signal from the external evaluator.
		limbs, err := c.pairer.Pair(t.lp.words, t.lq.words)
		if err != nil {
			c.noteFault(true)
			limbs = make([]big.Int, units.PairingWords)
		}
		//
		t.wr = newWriter(c.operands, t.c, isa.TagFe12, limbs)
		t.phase = phWrite
	case phWrite:
		return t.wr.step()
	}
	//
	return false
}

// reportTask implements REPORT: read the value at a and hand its payload
// and index entry to the report subsystem.  The enqueue blocks when the
// report queues are full.
type reportTask struct {
	a  uint
	ld *loader
}

func (t *reportTask) step(c *Coprocessor) bool {
	if t.ld == nil {
		t.ld = newLoader(c.operands, t.a)
	}
	//
	if !t.ld.step(c.now()) {
		return false
	}
	//
	c.reporter.Enqueue(t.a, t.ld.tag, t.ld.words)
	//
	return true
}
