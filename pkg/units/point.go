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
package units

import (
	"math/big"

	"github.com/consensys/go-eccop/pkg/arbiter"
)

// JacPoint is a Jacobian curve point as the gadgets consume it: coordinate
// elements of one word (base field) or two words (quadratic extension, low
// limb first).
type JacPoint struct {
	X, Y, Z []big.Int
}

// Identity returns the Jacobian group identity (1, 1, 0) in the requested
// field mode.
func Identity(ext bool) JacPoint {
	width := 1
	if ext {
		width = 2
	}
	//
	p := JacPoint{
		X: make([]big.Int, width),
		Y: make([]big.Int, width),
		Z: make([]big.Int, width),
	}
	p.X[0].SetUint64(1)
	p.Y[0].SetUint64(1)
	//
	return p
}

// Ext reports whether the point's coordinates live in the quadratic
// extension.
func (p JacPoint) Ext() bool {
	return len(p.X) == 2
}

// IsZero reports whether the point is the group identity (z == 0).
func (p JacPoint) IsZero() bool {
	return zeroElt(p.Z)
}

// Words flattens the point into operand-store order (x, y, z; low limb
// first within each coordinate).
func (p JacPoint) Words() []big.Int {
	var words []big.Int
	//
	words = append(words, p.X...)
	words = append(words, p.Y...)
	words = append(words, p.Z...)
	//
	return words
}

// Gadget is one curve-operation micro-program's handle onto the shared
// arithmetic engines: a lane on each of the multiply, add and subtract
// arbiters.  Both the point-add and point-double gadgets are instances of
// this type on their respective lanes.
type Gadget struct {
	mul, add, sub *arbiter.Lane
	// note receives the engine fault signal of every response.
	note func(bool)
	// nextID tags requests so responses can be matched to the micro-step
	// that issued them.
	nextID uint
}

// NewGadget attaches a gadget to the given lane of each engine in the bank.
// The note callback observes the engine fault signal; it may be nil.
func NewGadget(bank *Bank, lane uint, note func(bool)) *Gadget {
	if note == nil {
		note = func(bool) {}
	}
	//
	return &Gadget{
		mul:  bank.Mul.Lane(lane),
		add:  bank.Add.Lane(lane),
		sub:  bank.Sub.Lane(lane),
		note: note,
	}
}

// Double computes 2p using the dbl-2009-l micro-sequence, issuing every
// field operation through this gadget's arbiter lanes.
func (g *Gadget) Double(p JacPoint) JacPoint {
	if p.IsZero() {
		return Identity(p.Ext())
	}
	// A = X^2, B = Y^2, C = B^2
	a := g.fmul(p.X, p.X)
	b := g.fmul(p.Y, p.Y)
	c := g.fmul(b, b)
	// D = 2*((X+B)^2 - A - C)
	d := g.fadd(p.X, b)
	d = g.fmul(d, d)
	d = g.fsub(d, a)
	d = g.fsub(d, c)
	d = g.fdbl(d)
	// E = 3A, F = E^2
	e := g.fadd(g.fdbl(a), a)
	f := g.fmul(e, e)
	// X3 = F - 2D
	x3 := g.fsub(f, g.fdbl(d))
	// Y3 = E*(D - X3) - 8C
	y3 := g.fsub(g.fmul(e, g.fsub(d, x3)), g.fdbl(g.fdbl(g.fdbl(c))))
	// Z3 = 2*Y*Z
	z3 := g.fdbl(g.fmul(p.Y, p.Z))
	//
	return JacPoint{X: x3, Y: y3, Z: z3}
}

// AddPoints computes p+q using the add-2007-bl micro-sequence.  Doubling
// (p == q) falls back to the doubling sequence; p == -q yields the identity.
func (g *Gadget) AddPoints(p, q JacPoint) JacPoint {
	if p.IsZero() {
		return q
	} else if q.IsZero() {
		return p
	}
	//
	z1z1 := g.fmul(p.Z, p.Z)
	z2z2 := g.fmul(q.Z, q.Z)
	u1 := g.fmul(p.X, z2z2)
	u2 := g.fmul(q.X, z1z1)
	s1 := g.fmul(g.fmul(p.Y, q.Z), z2z2)
	s2 := g.fmul(g.fmul(q.Y, p.Z), z1z1)
	//
	h := g.fsub(u2, u1)
	r := g.fdbl(g.fsub(s2, s1))
	//
	if zeroElt(h) {
		if zeroElt(r) {
			return g.Double(p)
		}
		// p == -q
		return Identity(p.Ext())
	}
	// I = (2H)^2, J = H*I, V = U1*I
	i := g.fdbl(h)
	i = g.fmul(i, i)
	j := g.fmul(h, i)
	v := g.fmul(u1, i)
	// X3 = r^2 - J - 2V
	x3 := g.fsub(g.fsub(g.fmul(r, r), j), g.fdbl(v))
	// Y3 = r*(V - X3) - 2*S1*J
	y3 := g.fsub(g.fmul(r, g.fsub(v, x3)), g.fdbl(g.fmul(s1, j)))
	// Z3 = ((Z1+Z2)^2 - Z1Z1 - Z2Z2) * H
	z3 := g.fadd(p.Z, q.Z)
	z3 = g.fmul(z3, z3)
	z3 = g.fsub(z3, z1z1)
	z3 = g.fsub(z3, z2z2)
	z3 = g.fmul(z3, h)
	//
	return JacPoint{X: x3, Y: y3, Z: z3}
}

// ===================================================================
// Field micro-operations
// ===================================================================

// do issues one engine operation on the given lane and awaits its tagged
// response.
func (g *Gadget) do(lane *arbiter.Lane, x, y *big.Int) *big.Int {
	id := g.nextID
	g.nextID++
	//
	resp := lane.Do(id, x, y)
	if resp.ID != id {
		panic("engine response does not match issued micro-operation")
	}
	//
	g.note(resp.Fault)
	//
	return &resp.Z
}

// fmul multiplies two elements.  Extension elements use the 3-multiply
// Karatsuba identity over u^2 = -1: t0 = a0*b0, t1 = a1*b1,
// t2 = (a0+a1)*(b0+b1), giving (t0 - t1, t2 - t0 - t1).
func (g *Gadget) fmul(a, b []big.Int) []big.Int {
	if len(a) == 1 {
		return []big.Int{*g.do(g.mul, &a[0], &b[0])}
	}
	//
	t0 := g.do(g.mul, &a[0], &b[0])
	t1 := g.do(g.mul, &a[1], &b[1])
	s0 := g.do(g.add, &a[0], &a[1])
	s1 := g.do(g.add, &b[0], &b[1])
	t2 := g.do(g.mul, s0, s1)
	//
	c0 := g.do(g.sub, t0, t1)
	c1 := g.do(g.sub, t2, t0)
	c1 = g.do(g.sub, c1, t1)
	//
	return []big.Int{*c0, *c1}
}

// fadd adds two elements limb-wise, low limb first.
func (g *Gadget) fadd(a, b []big.Int) []big.Int {
	z := make([]big.Int, len(a))
	//
	for i := range a {
		z[i] = *g.do(g.add, &a[i], &b[i])
	}
	//
	return z
}

// fsub subtracts two elements limb-wise, low limb first.
func (g *Gadget) fsub(a, b []big.Int) []big.Int {
	z := make([]big.Int, len(a))
	//
	for i := range a {
		z[i] = *g.do(g.sub, &a[i], &b[i])
	}
	//
	return z
}

// fdbl doubles an element via the add engine.
func (g *Gadget) fdbl(a []big.Int) []big.Int {
	return g.fadd(a, a)
}

// zeroElt reports whether every limb of an element is zero.
func zeroElt(a []big.Int) bool {
	for i := range a {
		if a[i].Sign() != 0 {
			return false
		}
	}
	//
	return true
}
