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
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consensys/go-eccop/pkg/arbiter"
)

func Test_PointDouble_00(t *testing.T) {
	bank := NewBank(BLS12381())
	defer bank.Close()
	//
	g := NewGadget(bank, arbiter.LanePointDouble, nil)
	//
	for _, k := range testScalars() {
		p := g1TestPoint(k)
		//
		expected := p
		expected.DoubleAssign()
		//
		actual := g1FromJac(g.Double(g1ToJac(p)))
		require.True(t, actual.Equal(&expected), "doubling [%s]G1", k)
	}
}

func Test_PointDouble_01(t *testing.T) {
	// Doubling the identity stays at the identity.
	bank := NewBank(BLS12381())
	defer bank.Close()
	//
	g := NewGadget(bank, arbiter.LanePointDouble, nil)
	//
	assert.True(t, g.Double(Identity(false)).IsZero())
	assert.True(t, g.Double(Identity(true)).IsZero())
}

func Test_PointAdd_00(t *testing.T) {
	bank := NewBank(BLS12381())
	defer bank.Close()
	//
	g := NewGadget(bank, arbiter.LanePointAdd, nil)
	//
	for _, k := range testScalars() {
		var expected bls12381.G1Jac
		//
		p, q := g1TestPoint(k), g1TestPoint(new(big.Int).Add(k, big.NewInt(3)))
		expected.Set(&p)
		expected.AddAssign(&q)
		//
		actual := g1FromJac(g.AddPoints(g1ToJac(p), g1ToJac(q)))
		require.True(t, actual.Equal(&expected), "adding G1 points")
	}
}

func Test_PointAdd_01(t *testing.T) {
	// Adding a point to itself falls back to the doubling sequence.
	bank := NewBank(BLS12381())
	defer bank.Close()
	//
	g := NewGadget(bank, arbiter.LanePointAdd, nil)
	//
	p := g1TestPoint(big.NewInt(11))
	expected := p
	expected.DoubleAssign()
	//
	actual := g1FromJac(g.AddPoints(g1ToJac(p), g1ToJac(p)))
	assert.True(t, actual.Equal(&expected))
}

func Test_PointAdd_02(t *testing.T) {
	// p + (-p) is the identity; identity is the neutral element.
	bank := NewBank(BLS12381())
	defer bank.Close()
	//
	g := NewGadget(bank, arbiter.LanePointAdd, nil)
	//
	p := g1TestPoint(big.NewInt(5))
	neg := p
	neg.Neg(&p)
	//
	assert.True(t, g.AddPoints(g1ToJac(p), g1ToJac(neg)).IsZero())
	//
	sum := g1FromJac(g.AddPoints(Identity(false), g1ToJac(p)))
	assert.True(t, sum.Equal(&p))
}

func Test_ScalarMul_00(t *testing.T) {
	// Double-and-add over the gadgets agrees with gnark-crypto on G1.
	bank := NewBank(BLS12381())
	defer bank.Close()
	//
	engine := NewPointMulEngine(bank, nil)
	base := g1TestPoint(big.NewInt(1))
	//
	for _, k := range testScalars() {
		var expected bls12381.G1Jac
		//
		expected.ScalarMultiplication(&base, k)
		//
		actual := g1FromJac(engine.ScalarMul(k, g1ToJac(base)))
		require.True(t, actual.Equal(&expected), "[%s]G1", k)
	}
}

func Test_ScalarMul_01(t *testing.T) {
	// The zero scalar yields the group identity in Jacobian form.
	bank := NewBank(BLS12381())
	defer bank.Close()
	//
	engine := NewPointMulEngine(bank, nil)
	//
	z := engine.ScalarMul(big.NewInt(0), g1ToJac(g1TestPoint(big.NewInt(9))))
	assert.True(t, z.IsZero())
	//
	z = engine.ScalarMul(big.NewInt(0), GeneratorG2())
	assert.True(t, z.IsZero())
}

func Test_ScalarMul_02(t *testing.T) {
	// Extension-field mode against gnark-crypto on G2.
	bank := NewBank(BLS12381())
	defer bank.Close()
	//
	engine := NewPointMulEngine(bank, nil)
	g2Jac, _ := g2Generator()
	//
	for _, k := range testScalars() {
		var expected bls12381.G2Jac
		//
		expected.ScalarMultiplication(&g2Jac, k)
		//
		actual := g2FromJac(engine.ScalarMul(k, GeneratorG2()))
		require.True(t, actual.Equal(&expected), "[%s]G2", k)
	}
}

func Test_Pairing_00(t *testing.T) {
	// The evaluator agrees limb-for-limb with a direct gnark-crypto
	// pairing of the generators.
	var evaluator PairingEvaluator
	//
	_, _, g1, g2 := bls12381.Generators()
	//
	limbs, err := evaluator.Pair(
		affineWordsG1(g1),
		affineWordsG2(g2),
	)
	require.NoError(t, err)
	require.Len(t, limbs, PairingWords)
	//
	expected, err := bls12381.Pair([]bls12381.G1Affine{g1}, []bls12381.G2Affine{g2})
	require.NoError(t, err)
	//
	assert.Equal(t, flattenGT(&expected), limbs)
}

func Test_Generators_00(t *testing.T) {
	// The fixed base points are the curve generators with z = 1.
	g1 := g1FromJac(GeneratorG1())
	g1Jac, _, _, _ := bls12381.Generators()
	assert.True(t, g1.Equal(&g1Jac))
	//
	g2 := g2FromJac(GeneratorG2())
	g2Jac, _ := g2Generator()
	assert.True(t, g2.Equal(&g2Jac))
}

// ===================================================================
// Test Helpers
// ===================================================================

func testScalars() []*big.Int {
	var huge big.Int
	//
	huge.SetString("0x30644e72e131a029b85045b68181585d2833e84879b9709143e1f593f0000001", 0)
	//
	return []*big.Int{
		big.NewInt(1), big.NewInt(2), big.NewInt(3), big.NewInt(5),
		big.NewInt(7), big.NewInt(123456789), &huge,
	}
}

// g1TestPoint derives a deterministic non-trivial G1 point.
func g1TestPoint(k *big.Int) bls12381.G1Jac {
	var p bls12381.G1Jac
	//
	gen, _, _, _ := bls12381.Generators()
	p.ScalarMultiplication(&gen, k)
	//
	return p
}

func g2Generator() (bls12381.G2Jac, bls12381.G2Affine) {
	_, g2Jac, _, g2Aff := bls12381.Generators()
	return g2Jac, g2Aff
}

func g1ToJac(p bls12381.G1Jac) JacPoint {
	return JacPoint{
		X: eltOfFp(p.X.BigInt(new(big.Int))),
		Y: eltOfFp(p.Y.BigInt(new(big.Int))),
		Z: eltOfFp(p.Z.BigInt(new(big.Int))),
	}
}

func g1FromJac(p JacPoint) bls12381.G1Jac {
	var q bls12381.G1Jac
	//
	q.X.SetBigInt(&p.X[0])
	q.Y.SetBigInt(&p.Y[0])
	q.Z.SetBigInt(&p.Z[0])
	//
	return q
}

func g2FromJac(p JacPoint) bls12381.G2Jac {
	var q bls12381.G2Jac
	//
	q.X.A0.SetBigInt(&p.X[0])
	q.X.A1.SetBigInt(&p.X[1])
	q.Y.A0.SetBigInt(&p.Y[0])
	q.Y.A1.SetBigInt(&p.Y[1])
	q.Z.A0.SetBigInt(&p.Z[0])
	q.Z.A1.SetBigInt(&p.Z[1])
	//
	return q
}

func eltOfFp(limbs ...*big.Int) []big.Int {
	z := make([]big.Int, len(limbs))
	//
	for i, l := range limbs {
		z[i].Set(l)
	}
	//
	return z
}

func affineWordsG1(p bls12381.G1Affine) []big.Int {
	return eltOfFp(p.X.BigInt(new(big.Int)), p.Y.BigInt(new(big.Int)))
}

func affineWordsG2(p bls12381.G2Affine) []big.Int {
	return eltOfFp(
		p.X.A0.BigInt(new(big.Int)), p.X.A1.BigInt(new(big.Int)),
		p.Y.A0.BigInt(new(big.Int)), p.Y.A1.BigInt(new(big.Int)),
	)
}
