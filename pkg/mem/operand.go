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
	"sync"

	"github.com/consensys/go-eccop/pkg/isa"
)

// Cell is one operand-store slot: a word together with the tag of the value
// it belongs to.  Every slot of a multi-word value carries the value's tag.
type Cell struct {
	// Tag of the value this slot belongs to.
	Tag isa.Tag
	// Word is the slot contents.
	Word big.Int
}

// Pending is an in-flight operand-store read.  The cell was sampled when the
// address was presented, but is not valid until the store's read latency has
// elapsed.  Executors must check Ready before consuming the cell.
type Pending struct {
	readyAt uint64
	cell    Cell
}

// Ready reports whether the read latency has elapsed at the given cycle.
func (p *Pending) Ready(now uint64) bool {
	return now >= p.readyAt
}

// Cell returns the read result.  Calling this before Ready reports true
// violates the memory access discipline and panics.
func (p *Pending) Cell(now uint64) Cell {
	if !p.Ready(now) {
		panic("operand read consumed before its latency elapsed")
	}
	//
	return p.cell
}

// OperandStore is the typed value memory: a single-ported array of tagged
// slots with a fixed, pipelined multi-cycle read latency and single-cycle
// writes.  The store enforces no hazard protection; write-after-read
// ordering on the same address is the executor's responsibility.
type OperandStore struct {
	mu      sync.Mutex
	latency uint64
	cells   []Cell
}

// NewOperandStore allocates a store of the given size with the given read
// latency in cycles.
func NewOperandStore(size uint, latency uint64) *OperandStore {
	return &OperandStore{
		latency: latency,
		cells:   make([]Cell, size),
	}
}

// Latency returns the fixed read latency in cycles.
func (s *OperandStore) Latency() uint64 {
	return s.latency
}

// Size returns the number of slots.
func (s *OperandStore) Size() uint {
	return uint(len(s.cells))
}

// Read presents an address at the given cycle and returns a pending read
// which matures after the fixed latency.  One new address may be presented
// per cycle (the port is pipelined).  Addresses wrap at the store size, as
// a hardware decoder would truncate them.
func (s *OperandStore) Read(addr uint, now uint64) Pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	//
	return Pending{
		readyAt: now + s.latency,
		cell:    s.cells[addr%uint(len(s.cells))],
	}
}

// Write stores a cell at the given address, completing in a single cycle.
func (s *OperandStore) Write(addr uint, cell Cell) {
	s.mu.Lock()
	defer s.mu.Unlock()
	//
	s.cells[addr%uint(len(s.cells))] = cell
}

// Reset clears every slot, abandoning any in-flight reads.
func (s *OperandStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	//
	for i := range s.cells {
		s.cells[i] = Cell{}
	}
}
