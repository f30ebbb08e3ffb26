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
)

// The two compile-time-fixed base points of the fixed-base multiplication
// sequencers: the BLS12-381 G1 and G2 generators in Jacobian form (z = 1).
var (
	generatorG1 JacPoint
	generatorG2 JacPoint
)

func init() {
	_, _, g1, g2 := bls12381.Generators()
	//
	generatorG1 = JacPoint{
		X: []big.Int{*g1.X.BigInt(new(big.Int))},
		Y: []big.Int{*g1.Y.BigInt(new(big.Int))},
		Z: []big.Int{*big.NewInt(1)},
	}
	generatorG2 = JacPoint{
		X: []big.Int{*g2.X.A0.BigInt(new(big.Int)), *g2.X.A1.BigInt(new(big.Int))},
		Y: []big.Int{*g2.Y.A0.BigInt(new(big.Int)), *g2.Y.A1.BigInt(new(big.Int))},
		Z: []big.Int{*big.NewInt(1), *big.NewInt(0)},
	}
}

// GeneratorG1 returns a copy of the fixed G1 base point.
func GeneratorG1() JacPoint {
	return copyPoint(generatorG1)
}

// GeneratorG2 returns a copy of the fixed G2 base point.
func GeneratorG2() JacPoint {
	return copyPoint(generatorG2)
}

func copyPoint(p JacPoint) JacPoint {
	var q JacPoint
	//
	q.X = copyElt(p.X)
	q.Y = copyElt(p.Y)
	q.Z = copyElt(p.Z)
	//
	return q
}

func copyElt(a []big.Int) []big.Int {
	z := make([]big.Int, len(a))
	//
	for i := range a {
		z[i].Set(&a[i])
	}
	//
	return z
}
