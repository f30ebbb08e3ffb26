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
package mem

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consensys/go-eccop/pkg/isa"
)

func Test_OperandStore_00(t *testing.T) {
	// A read is not valid until the fixed latency has elapsed.
	store := NewOperandStore(16, 3)
	store.Write(5, cellOf(isa.TagFe, 42))
	//
	pend := store.Read(5, 100)
	//
	assert.False(t, pend.Ready(100))
	assert.False(t, pend.Ready(102))
	assert.True(t, pend.Ready(103))
	cell := pend.Cell(103)
	assert.Equal(t, uint64(42), cell.Word.Uint64())
	assert.Equal(t, isa.TagFe, cell.Tag)
}

func Test_OperandStore_01(t *testing.T) {
	// Consuming an immature read violates the access discipline.
	store := NewOperandStore(16, 2)
	pend := store.Read(0, 10)
	//
	assert.Panics(t, func() { pend.Cell(11) })
}

func Test_OperandStore_02(t *testing.T) {
	// Reads sample at address presentation; a later write does not alter
	// an in-flight read.
	store := NewOperandStore(16, 2)
	store.Write(3, cellOf(isa.TagFe, 1))
	//
	pend := store.Read(3, 0)
	store.Write(3, cellOf(isa.TagFe, 2))
	//
	cell := pend.Cell(2)
	assert.Equal(t, uint64(1), cell.Word.Uint64())
}

func Test_OperandStore_03(t *testing.T) {
	// Addresses wrap at the store size.
	store := NewOperandStore(8, 1)
	store.Write(9, cellOf(isa.TagFe, 7))
	//
	pend := store.Read(1, 0)
	cell := pend.Cell(1)
	assert.Equal(t, uint64(7), cell.Word.Uint64())
}

func Test_OperandStore_04(t *testing.T) {
	store := NewOperandStore(8, 1)
	store.Write(2, cellOf(isa.TagFe2, 9))
	store.Reset()
	//
	pend := store.Read(2, 0)
	cell := pend.Cell(1)
	//
	assert.Equal(t, isa.TagFe, cell.Tag)
	assert.Equal(t, int64(0), cell.Word.Int64())
}

func Test_ProgramStore_00(t *testing.T) {
	store := NewProgramStore(2)
	store.Load([]isa.Instruction{
		{Opcode: isa.OpAdd, A: 0, B: 1, C: 2},
		{Opcode: isa.OpReport, A: 2},
	})
	//
	require.Equal(t, uint(2), store.Len())
	//
	fetch := store.Read(1, 5)
	assert.False(t, fetch.Ready(6))
	assert.True(t, fetch.Ready(7))
	assert.Equal(t, isa.OpReport, fetch.Instruction(7).Opcode)
}

func Test_ProgramStore_01(t *testing.T) {
	// Fetching past the end yields the zero instruction, which is not a
	// recognised opcode and so executes as a no-op.
	store := NewProgramStore(1)
	store.Load([]isa.Instruction{{Opcode: isa.OpAdd}})
	//
	fetch := store.Read(10, 0)
	assert.Equal(t, isa.Opcode(0), fetch.Instruction(1).Opcode)
}

func Test_ProgramStore_02(t *testing.T) {
	store := NewProgramStore(1)
	store.Load([]isa.Instruction{{Opcode: isa.OpAdd}})
	store.Reset()
	//
	assert.Equal(t, uint(0), store.Len())
}

// ===================================================================
// Test Helpers
// ===================================================================

func cellOf(tag isa.Tag, word uint64) Cell {
	var cell Cell
	//
	cell.Tag = tag
	cell.Word.Set(new(big.Int).SetUint64(word))
	//
	return cell
}
