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
package engine

import (
	"math/big"

	"github.com/consensys/go-eccop/pkg/isa"
	"github.com/consensys/go-eccop/pkg/mem"
)

// loader is the shared multi-word read micro-sequence.  It issues one
// address per cycle against the single pipelined port and collects words in
// issue order as their latency elapses.  Unless a word count is forced, the
// count is taken from the tag of the base slot once that read matures.
type loader struct {
	store *mem.OperandStore
	base  uint
	// count is the total words to read; zero until known.
	count uint
	// forced indicates count was fixed by the executor rather than the tag.
	forced bool
	//
	issued uint
	pend   []mem.Pending
	words  []big.Int
	tag    isa.Tag
	done   bool
}

// newLoader reads a value whose word count follows its stored tag.
func newLoader(store *mem.OperandStore, base uint) *loader {
	return &loader{store: store, base: base}
}

// newLoaderN reads exactly n words regardless of the stored tag; the tag of
// the base slot is still captured.
func newLoaderN(store *mem.OperandStore, base uint, n uint) *loader {
	return &loader{store: store, base: base, count: n, forced: true}
}

// step advances the load by one cycle, returning true once every word has
// been collected.
func (l *loader) step(now uint64) bool {
	if l.done {
		return true
	}
	// Collect the next matured read, in issue order.
	if k := uint(len(l.words)); k < uint(len(l.pend)) && l.pend[k].Ready(now) {
		cell := l.pend[k].Cell(now)
		//
		if k == 0 {
			l.tag = cell.Tag
			//
			if !l.forced {
				l.count = l.tag.Words()
			}
		}
		//
		l.words = append(l.words, cell.Word)
	}
	// Present at most one new address per cycle.
	if l.issued == 0 || (l.count > 0 && l.issued < l.count) {
		l.pend = append(l.pend, l.store.Read(l.base+l.issued, now))
		l.issued++
	}
	//
	l.done = l.count > 0 && uint(len(l.words)) == l.count
	//
	return l.done
}

// writer is the shared multi-word write micro-sequence: one single-cycle
// write per step, every slot tagged with the destination tag.
type writer struct {
	store *mem.OperandStore
	base  uint
	tag   isa.Tag
	words []big.Int
	n     uint
}

func newWriter(store *mem.OperandStore, base uint, tag isa.Tag, words []big.Int) *writer {
	return &writer{store: store, base: base, tag: tag, words: words}
}

// step writes one word, returning true once the final word is stored.
func (w *writer) step() bool {
	var cell mem.Cell
	//
	cell.Tag = w.tag
	cell.Word.Set(&w.words[w.n])
	w.store.Write(w.base+w.n, cell)
	w.n++
	//
	return w.n == uint(len(w.words))
}
