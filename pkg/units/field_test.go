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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consensys/go-eccop/pkg/arbiter"
)

func Test_Engines_00(t *testing.T) {
	params := NewParams(big.NewInt(7))
	//
	// 3 + 5 = 1 (mod 7)
	z, fault := params.AddEngine()(big.NewInt(3), big.NewInt(5))
	assert.False(t, fault)
	assert.Equal(t, int64(1), z.Int64())
	// 2 - 5 = 4 (mod 7)
	z, fault = params.SubEngine()(big.NewInt(2), big.NewInt(5))
	assert.False(t, fault)
	assert.Equal(t, int64(4), z.Int64())
	// 3 * 5 = 1 (mod 7)
	z, fault = params.MulEngine()(big.NewInt(3), big.NewInt(5))
	assert.False(t, fault)
	assert.Equal(t, int64(1), z.Int64())
}

func Test_Engines_01(t *testing.T) {
	// Unreduced operands raise the error signal, but the (reduced) result
	// is still produced.
	params := NewParams(big.NewInt(7))
	//
	z, fault := params.AddEngine()(big.NewInt(9), big.NewInt(5))
	assert.True(t, fault)
	assert.Equal(t, int64(0), z.Int64())
}

func Test_Inverter_00(t *testing.T) {
	inv := NewInverter(NewParams(big.NewInt(7)))
	//
	z, fault := inv.Invert(big.NewInt(3))
	assert.False(t, fault)
	assert.Equal(t, int64(5), z.Int64())
}

func Test_Inverter_01(t *testing.T) {
	// Zero has no inverse; the fault signal is raised.
	inv := NewInverter(NewParams(big.NewInt(7)))
	//
	z, fault := inv.Invert(big.NewInt(0))
	assert.True(t, fault)
	assert.Equal(t, int64(0), z.Int64())
}

func Test_Fe2Mul_00(t *testing.T) {
	// (2,3)*(1,4) against schoolbook multiplication, mod 1009.
	bank := NewBank(NewParams(big.NewInt(1009)))
	defer bank.Close()
	//
	g := NewGadget(bank, arbiter.LaneReserved, nil)
	z := g.fmul(eltOf(2, 3), eltOf(1, 4))
	//
	c0, c1 := schoolbook(big.NewInt(1009), 2, 3, 1, 4)
	assert.Equal(t, c0, z[0].Int64())
	assert.Equal(t, c1, z[1].Int64())
}

func Test_Fe2Mul_01(t *testing.T) {
	// The 3-multiply identity equals schoolbook multiplication for random
	// operand pairs.
	var (
		modulus = int64(1009)
		rng     = rand.New(rand.NewSource(42))
		bank    = NewBank(NewParams(big.NewInt(modulus)))
	)
	defer bank.Close()
	//
	g := NewGadget(bank, arbiter.LaneReserved, nil)
	//
	for i := 0; i < 500; i++ {
		a0, a1 := rng.Int63n(modulus), rng.Int63n(modulus)
		b0, b1 := rng.Int63n(modulus), rng.Int63n(modulus)
		//
		z := g.fmul(eltOf(a0, a1), eltOf(b0, b1))
		c0, c1 := schoolbook(big.NewInt(modulus), a0, a1, b0, b1)
		//
		require.Equal(t, c0, z[0].Int64())
		require.Equal(t, c1, z[1].Int64())
	}
}

func Test_Fe2Mul_02(t *testing.T) {
	// Gadget faults are reported through the note callback.
	var faulted bool
	//
	bank := NewBank(NewParams(big.NewInt(7)))
	defer bank.Close()
	//
	g := NewGadget(bank, arbiter.LaneReserved, func(f bool) { faulted = faulted || f })
	g.fmul(eltOf(9, 0), eltOf(1, 0))
	//
	assert.True(t, faulted)
}

// ===================================================================
// Test Helpers
// ===================================================================

func eltOf(limbs ...int64) []big.Int {
	z := make([]big.Int, len(limbs))
	//
	for i, l := range limbs {
		z[i].SetInt64(l)
	}
	//
	return z
}

// schoolbook computes (a0 + a1 u)(b0 + b1 u) with u^2 = -1:
// (a0 b0 - a1 b1, a0 b1 + a1 b0) mod p.
func schoolbook(p *big.Int, a0, a1, b0, b1 int64) (int64, int64) {
	var c0, c1 big.Int
	//
	c0.Sub(big.NewInt(a0*b0), big.NewInt(a1*b1))
	c0.Mod(&c0, p)
	//
	if c0.Sign() < 0 {
		c0.Add(&c0, p)
	}
	//
	c1.Add(big.NewInt(a0*b1), big.NewInt(a1*b0))
	c1.Mod(&c1, p)
	//
	return c0.Int64(), c1.Int64()
}
