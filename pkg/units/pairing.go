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

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"
)

// PairingWords is the number of base-field limbs in a pairing result.
const PairingWords = 12

// PairingEvaluator is the external pairing engine: a single-shot evaluator
// taking a G1 affine point (2 words) and a G2 affine point (4 words:
// x0, x1, y0, y1) and producing the 12 limbs of the degree-12 extension
// result.  Its Miller loop and final exponentiation are internal to
// gnark-crypto; the core only sees this words-in/words-out contract.
type PairingEvaluator struct{}

// Pair evaluates the pairing.  Inputs are reduced into the BLS12-381 base
// field; the result limbs come back in tower order
// (c0.b0.a0, c0.b0.a1, c0.b1.a0, ..., c1.b2.a1).
func (PairingEvaluator) Pair(g1 []big.Int, g2 []big.Int) ([]big.Int, error) {
	var (
		p bls12381.G1Affine
		q bls12381.G2Affine
	)
	//
	p.X.SetBigInt(&g1[0])
	p.Y.SetBigInt(&g1[1])
	q.X.A0.SetBigInt(&g2[0])
	q.X.A1.SetBigInt(&g2[1])
	q.Y.A0.SetBigInt(&g2[2])
	q.Y.A1.SetBigInt(&g2[3])
	//
	gt, err := bls12381.Pair([]bls12381.G1Affine{p}, []bls12381.G2Affine{q})
	if err != nil {
		return nil, err
	}
	//
	return flattenGT(&gt), nil
}

// flattenGT unpacks a degree-12 tower element into 12 base-field limbs.
func flattenGT(gt *bls12381.GT) []big.Int {
	limbs := make([]big.Int, PairingWords)
	//
	for i, e := range []*fp.Element{
		&gt.C0.B0.A0, &gt.C0.B0.A1,
		&gt.C0.B1.A0, &gt.C0.B1.A1,
		&gt.C0.B2.A0, &gt.C0.B2.A1,
		&gt.C1.B0.A0, &gt.C1.B0.A1,
		&gt.C1.B1.A0, &gt.C1.B1.A1,
		&gt.C1.B2.A0, &gt.C1.B2.A1,
	} {
		e.BigInt(&limbs[i])
	}
	//
	return limbs
}
