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
package report

import (
	"math/big"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/consensys/go-eccop/pkg/isa"
)

// HeaderBytes is the fixed size of a report message header: the type tag
// followed by the 16-bit big-endian slot address.
const HeaderBytes = 3

// Beat is one transfer on the outbound byte stream.  Last marks the final
// payload byte of a message (the end-of-message marker).
type Beat struct {
	// Data is the byte transferred.
	Data byte
	// Last is asserted on the final payload byte of a message.
	Last bool
}

// entry is one queued report request: the addressed slot and its tag, from
// which the payload word count is derived.
type entry struct {
	addr uint
	tag  isa.Tag
}

// Reporter queues (address, tag) report requests and their payload words,
// and drains them strictly in FIFO order onto the outbound beat stream.
// The drain process runs independently of the dispatch engine; a stalled
// consumer stalls the drain process only.
type Reporter struct {
	wordBytes int
	index     chan entry
	words     chan big.Int
	out       chan<- Beat
	//
	done sync.WaitGroup
}

// New constructs a reporter with the given index-queue depth and field word
// width, draining onto out.  The reporter owns out and closes it once
// Close has been called and all queued reports have drained.
func New(depth uint, wordBytes int, out chan<- Beat) *Reporter {
	r := &Reporter{
		wordBytes: wordBytes,
		index:     make(chan entry, depth),
		// The word queue holds the payloads of every queued index entry.
		words: make(chan big.Int, depth*uint(isa.TagFe12.Words())),
		out:   out,
	}
	//
	r.done.Add(1)
	go r.drain()
	//
	return r
}

// Enqueue queues one report.  The payload words are queued before the index
// entry, so the drain process never sees a header whose payload is not yet
// fully queued.  Blocks when the queues are full.
func (r *Reporter) Enqueue(addr uint, tag isa.Tag, payload []big.Int) {
	for _, w := range payload {
		r.words <- w
	}
	//
	r.index <- entry{addr, tag}
}

// Close stops the drain process once every queued report has been emitted,
// then closes the outbound stream.
func (r *Reporter) Close() {
	close(r.index)
	r.done.Wait()
}

// drain pops index entries strictly in FIFO order, collects each one's full
// payload, and emits the header followed by the payload bytes.  Sends on
// the outbound channel block while the consumer is not accepting.
func (r *Reporter) drain() {
	defer r.done.Done()
	defer close(r.out)
	//
	for e := range r.index {
		n := e.tag.Words()
		payload := make([]big.Int, n)
		//
		for i := range payload {
			payload[i] = <-r.words
		}
		//
		log.WithFields(log.Fields{
			"addr": e.addr, "tag": e.tag.String(), "words": n,
		}).Debug("draining report")
		// Header first, then the narrowed payload words in order.
		r.emit(e.addr, e.tag, payload)
	}
}

// emit serializes one message: the fixed header, then each payload word
// big-endian at the field word width, with the end-of-message marker on the
// final byte.
func (r *Reporter) emit(addr uint, tag isa.Tag, payload []big.Int) {
	r.out <- Beat{Data: byte(tag)}
	r.out <- Beat{Data: byte(addr >> 8)}
	r.out <- Beat{Data: byte(addr)}
	//
	for i := range payload {
		word := payload[i].FillBytes(make([]byte, r.wordBytes))
		last := i == len(payload)-1
		//
		for j, b := range word {
			r.out <- Beat{Data: b, Last: last && j == len(word)-1}
		}
	}
}
