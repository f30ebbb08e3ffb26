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
	"sync"

	"github.com/consensys/go-eccop/pkg/isa"
)

// PendingInsn is an in-flight program-store fetch, maturing after the
// store's fixed read latency.
type PendingInsn struct {
	readyAt uint64
	insn    isa.Instruction
}

// Ready reports whether the fetch latency has elapsed at the given cycle.
func (p *PendingInsn) Ready(now uint64) bool {
	return now >= p.readyAt
}

// Instruction returns the fetched instruction, panicking if consumed before
// its latency elapsed.
func (p *PendingInsn) Instruction(now uint64) isa.Instruction {
	if !p.Ready(now) {
		panic("instruction fetch consumed before its latency elapsed")
	}
	//
	return p.insn
}

// ProgramStore holds the instruction sequence, with the same single-port,
// fixed-latency read discipline as the operand store.  It is provisioned by
// the host before a run and only read by the engine while running.
type ProgramStore struct {
	mu      sync.Mutex
	latency uint64
	code    []isa.Instruction
}

// NewProgramStore allocates an empty program store with the given fetch
// latency in cycles.
func NewProgramStore(latency uint64) *ProgramStore {
	return &ProgramStore{latency: latency}
}

// Latency returns the fixed fetch latency in cycles.
func (s *ProgramStore) Latency() uint64 {
	return s.latency
}

// Len returns the number of loaded instructions.
func (s *ProgramStore) Len() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	//
	return uint(len(s.code))
}

// Load replaces the program contents.
func (s *ProgramStore) Load(code []isa.Instruction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	//
	s.code = make([]isa.Instruction, len(code))
	copy(s.code, code)
}

// Read presents a program counter at the given cycle and returns a pending
// fetch which matures after the fixed latency.  Fetches past the end of the
// program return the zero instruction, whose opcode is not in the dispatch
// table and hence executes as a no-op.
func (s *ProgramStore) Read(pc uint, now uint64) PendingInsn {
	s.mu.Lock()
	defer s.mu.Unlock()
	//
	pending := PendingInsn{readyAt: now + s.latency}
	if pc < uint(len(s.code)) {
		pending.insn = s.code[pc]
	}
	//
	return pending
}

// Reset discards the loaded program, abandoning any in-flight fetches.
func (s *ProgramStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	//
	s.code = nil
}
