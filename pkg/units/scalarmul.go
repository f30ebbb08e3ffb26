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

// PointMulEngine is the external scalar point-multiplication engine: an
// MSB-first double-and-add over the point-add and point-double gadgets,
// which contend for the shared field engines on their own arbiter lanes.
type PointMulEngine struct {
	addG *Gadget
	dblG *Gadget
}

// NewPointMulEngine attaches a point-multiplication engine to the given
// bank, placing the add and double gadgets on their fixed lanes.
func NewPointMulEngine(bank *Bank, note func(bool)) *PointMulEngine {
	return &PointMulEngine{
		addG: NewGadget(bank, arbiter.LanePointAdd, note),
		dblG: NewGadget(bank, arbiter.LanePointDouble, note),
	}
}

// ScalarMul computes k*p in Jacobian form.  The zero scalar yields the
// group identity; the field mode (base vs extension) follows the point.
func (e *PointMulEngine) ScalarMul(k *big.Int, p JacPoint) JacPoint {
	acc := Identity(p.Ext())
	//
	for i := k.BitLen() - 1; i >= 0; i-- {
		acc = e.dblG.Double(acc)
		//
		if k.Bit(i) == 1 {
			acc = e.addG.AddPoints(acc, p)
		}
	}
	//
	return acc
}
