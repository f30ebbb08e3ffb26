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
package isa

import "fmt"

// Tag identifies the shape of a value held in the operand store.  The tag
// fully determines how many contiguous slots the value occupies, and it
// travels with the value end-to-end: every executor either propagates the
// source tag or sets the destination tag explicitly.
type Tag uint8

const (
	// TagFe is a base-field element occupying a single slot.
	TagFe Tag = iota
	// TagFe2 is a degree-2 extension element (c0 + c1*u) occupying two
	// slots, low limb first.
	TagFe2
	// TagFpAffine is an affine point over the base field (x, y).
	TagFpAffine
	// TagFpJacobian is a Jacobian point over the base field (x, y, z).
	TagFpJacobian
	// TagFp2Affine is an affine point over the quadratic extension
	// (x0, x1, y0, y1).
	TagFp2Affine
	// TagFp2Jacobian is a Jacobian point over the quadratic extension
	// (x0, x1, y0, y1, z0, z1).
	TagFp2Jacobian
	// TagFe12 is a degree-12 extension element (a pairing result) held as
	// twelve base-field limbs.  The core only moves such values.
	TagFe12
)

// tagWords gives the slot count for each tag.
var tagWords = [...]uint{1, 2, 2, 3, 4, 6, 12}

// tagNames gives the assembler-facing name for each tag.
var tagNames = [...]string{"fe", "fe2", "fpa", "fpj", "fp2a", "fp2j", "fe12"}

// Words returns the number of contiguous operand-store slots a value of
// this tag occupies.
func (t Tag) Words() uint {
	if int(t) < len(tagWords) {
		return tagWords[t]
	}
	// Unknown tags behave as single-slot values.
	return 1
}

// Extension indicates whether coordinates of this tag live in the quadratic
// extension rather than the base field.  Only meaningful for point tags and
// Fe2 itself.
func (t Tag) Extension() bool {
	switch t {
	case TagFe2, TagFp2Affine, TagFp2Jacobian:
		return true
	}
	//
	return false
}

// Jacobian indicates whether this tag is one of the two Jacobian point
// representations.
func (t Tag) Jacobian() bool {
	return t == TagFpJacobian || t == TagFp2Jacobian
}

// Affine indicates whether this tag is one of the two affine point
// representations.
func (t Tag) Affine() bool {
	return t == TagFpAffine || t == TagFp2Affine
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	//
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// TagOf resolves an assembler tag name (e.g. "fe2") into its Tag, returning
// false if the name is not recognised.
func TagOf(name string) (Tag, bool) {
	for i, n := range tagNames {
		if n == name {
			return Tag(i), true
		}
	}
	//
	return 0, false
}
