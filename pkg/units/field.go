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

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"

	"github.com/consensys/go-eccop/pkg/arbiter"
)

// Params fixes the prime modulus the arithmetic engines reduce against, and
// the derived word width used when values leave the engine (e.g. on the
// report channel).
type Params struct {
	modulus   big.Int
	wordBytes int
}

// NewParams constructs engine parameters for an arbitrary prime modulus.
// Toy moduli are primarily useful for exercising the elementary datapath;
// the pairing evaluator and the fixed base points are only meaningful at
// the BLS12-381 modulus.
func NewParams(modulus *big.Int) *Params {
	var p Params
	//
	p.modulus.Set(modulus)
	p.wordBytes = (modulus.BitLen() + 7) / 8
	//
	return &p
}

// BLS12381 constructs engine parameters for the BLS12-381 base field.
func BLS12381() *Params {
	return NewParams(fp.Modulus())
}

// Modulus returns the configured prime.
func (p *Params) Modulus() *big.Int {
	return new(big.Int).Set(&p.modulus)
}

// WordBytes returns the byte width of one field word.
func (p *Params) WordBytes() int {
	return p.wordBytes
}

// unreduced is the engines' fault condition: an operand outside [0, P).
func (p *Params) unreduced(x *big.Int) bool {
	return x.Sign() < 0 || x.Cmp(&p.modulus) >= 0
}

// MulEngine returns the shared modular-multiply engine.
func (p *Params) MulEngine() arbiter.Engine {
	return func(x, y *big.Int) (big.Int, bool) {
		var z big.Int
		//
		z.Mul(x, y)
		z.Mod(&z, &p.modulus)
		//
		return z, p.unreduced(x) || p.unreduced(y)
	}
}

// AddEngine returns the shared modular-add engine.
func (p *Params) AddEngine() arbiter.Engine {
	return func(x, y *big.Int) (big.Int, bool) {
		var z big.Int
		//
		z.Add(x, y)
		z.Mod(&z, &p.modulus)
		//
		return z, p.unreduced(x) || p.unreduced(y)
	}
}

// SubEngine returns the shared modular-subtract engine.
func (p *Params) SubEngine() arbiter.Engine {
	return func(x, y *big.Int) (big.Int, bool) {
		var z big.Int
		//
		z.Sub(x, y)
		z.Mod(&z, &p.modulus)
		// Mod can return a negative result for a negative dividend.
		if z.Sign() < 0 {
			z.Add(&z, &p.modulus)
		}
		//
		return z, p.unreduced(x) || p.unreduced(y)
	}
}

// Inverter is the dedicated modular-inverse engine.  Unlike the multiply,
// add and subtract engines it is not arbitrated: its only consumer is the
// elementary INVERT executor.
type Inverter struct {
	params *Params
}

// NewInverter constructs the inverter over the given parameters.
func NewInverter(params *Params) *Inverter {
	return &Inverter{params}
}

// Invert computes x^-1 mod P.  A non-invertible input raises the fault
// signal and yields zero.
func (i *Inverter) Invert(x *big.Int) (big.Int, bool) {
	var z big.Int
	//
	if z.ModInverse(x, &i.params.modulus) == nil {
		return big.Int{}, true
	}
	//
	return z, i.params.unreduced(x)
}

// Bank bundles one arbitrated instance of each shared engine kind together
// with the dedicated inverter.  This is the complete set of physical
// arithmetic resources the coprocessor owns.
type Bank struct {
	// Mul fronts the shared multiply engine.
	Mul *arbiter.Arbiter
	// Add fronts the shared add engine.
	Add *arbiter.Arbiter
	// Sub fronts the shared subtract engine.
	Sub *arbiter.Arbiter
	// Inv is the dedicated inverter.
	Inv *Inverter
	//
	params *Params
}

// NewBank constructs the engine bank, starting one arbitration process per
// shared engine.
func NewBank(params *Params) *Bank {
	return &Bank{
		Mul:    arbiter.New("mul", params.MulEngine()),
		Add:    arbiter.New("add", params.AddEngine()),
		Sub:    arbiter.New("sub", params.SubEngine()),
		Inv:    NewInverter(params),
		params: params,
	}
}

// Params returns the parameters the bank was built over.
func (b *Bank) Params() *Params {
	return b.params
}

// Close tears down the arbitration processes.
func (b *Bank) Close() {
	b.Mul.Close()
	b.Add.Close()
	b.Sub.Close()
}
