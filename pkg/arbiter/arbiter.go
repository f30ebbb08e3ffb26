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
package arbiter

import (
	"math/big"
	"sync"

	"github.com/bits-and-blooms/bitset"
	log "github.com/sirupsen/logrus"
)

// Lanes is the number of logical request lanes multiplexed onto each shared
// arithmetic engine.
const Lanes = 5

// Fixed lane assignment.  Lower lane index wins arbitration ties.
const (
	// LaneElementary serves the elementary opcode executors.
	LaneElementary uint = iota
	// LanePointAdd serves the curve point-addition gadget.
	LanePointAdd
	// LanePointDouble serves the curve point-doubling gadget.
	LanePointDouble
	// LanePairing is held by the pairing evaluator.
	LanePairing
	// LaneReserved is the reserved top-level lane.
	LaneReserved
)

// Engine is the compute contract of one shared arithmetic unit.  The fault
// result mirrors the hardware error signal on the arithmetic path; the
// arbiter carries it back to the requesting lane but never inspects it.
type Engine func(x, y *big.Int) (z big.Int, fault bool)

// Request is one lane's operation submitted for arbitration.  The ID is an
// opaque value chosen by the submitter, echoed in the response so that a
// micro-sequence can recover which of its operations completed.
type Request struct {
	// Lane that issued the request.
	Lane uint
	// ID chosen by the submitter, echoed in the response.
	ID uint
	// X is the left operand.
	X big.Int
	// Y is the right operand.
	Y big.Int
}

// Response carries an engine result back to the originating lane.
type Response struct {
	// Lane the response is routed to; always the requesting lane.
	Lane uint
	// ID echoed from the request.
	ID uint
	// Z is the engine result.
	Z big.Int
	// Fault is the engine's error signal for this operation.
	Fault bool
}

// Arbiter multiplexes up to five request lanes onto one shared arithmetic
// engine.  Each lane may have at most one outstanding request; among
// currently-pending lanes the lowest index is serviced first.  Responses are
// tagged with the originating lane and delivered only on that lane's
// response channel, so no lane ever observes another lane's result.
type Arbiter struct {
	name   string
	engine Engine
	//
	mu      sync.Mutex
	grant   *sync.Cond
	pending *bitset.BitSet
	slots   [Lanes]Request
	lanes   [Lanes]*Lane
	closed  bool
}

// Lane is one logical consumer's handle onto an arbiter.
type Lane struct {
	arb   *Arbiter
	index uint
	resp  chan Response
	// busy is guarded by arb.mu and enforces the one-outstanding-request
	// contract.
	busy bool
}

// New constructs an arbiter fronting the given engine and starts its service
// process.  The name appears in trace logging only.
func New(name string, engine Engine) *Arbiter {
	a := &Arbiter{
		name:    name,
		engine:  engine,
		pending: bitset.New(Lanes),
	}
	a.grant = sync.NewCond(&a.mu)
	//
	for i := uint(0); i < Lanes; i++ {
		a.lanes[i] = &Lane{arb: a, index: i, resp: make(chan Response, 1)}
	}
	//
	go a.serve()
	//
	return a
}

// Lane returns the handle for the given lane index.
func (a *Arbiter) Lane(index uint) *Lane {
	return a.lanes[index]
}

// Close shuts the service process down.  Outstanding requests are abandoned;
// this is only used on teardown or destructive reset.
func (a *Arbiter) Close() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	//
	a.grant.Signal()
}

// serve is the arbitration loop: wait for any pending lane, grant the lowest
// index, run the engine, and route the tagged response back.
func (a *Arbiter) serve() {
	for {
		a.mu.Lock()
		//
		for !a.closed && a.pending.None() {
			a.grant.Wait()
		}
		//
		if a.closed {
			a.mu.Unlock()
			return
		}
		//
		lane, _ := a.pending.NextSet(0)
		req := a.slots[lane]
		a.pending.Clear(lane)
		a.mu.Unlock()
		// Engine runs outside the lock, so further submissions can queue
		// behind it.
		z, fault := a.engine(&req.X, &req.Y)
		//
		log.WithFields(log.Fields{
			"engine": a.name, "lane": req.Lane, "id": req.ID, "fault": fault,
		}).Trace("arbiter grant")
		// At most one outstanding request per lane, hence this never blocks.
		a.lanes[req.Lane].resp <- Response{Lane: req.Lane, ID: req.ID, Z: z, Fault: fault}
	}
}

// Submit queues a request on this lane.  Submitting while a previous request
// is still outstanding violates the lane contract and panics.
func (l *Lane) Submit(id uint, x, y *big.Int) {
	l.arb.mu.Lock()
	//
	if l.busy {
		l.arb.mu.Unlock()
		panic("lane submitted a second outstanding request")
	}
	//
	l.busy = true
	req := Request{Lane: l.index, ID: id}
	req.X.Set(x)
	req.Y.Set(y)
	l.arb.slots[l.index] = req
	l.arb.pending.Set(l.index)
	l.arb.mu.Unlock()
	//
	l.arb.grant.Signal()
}

// Await blocks until the response for this lane's outstanding request
// arrives.  A response tagged for a different lane indicates a routing bug
// and panics; there is no timeout, so a non-responding engine stalls the
// caller indefinitely.
func (l *Lane) Await() Response {
	resp := <-l.resp
	//
	if resp.Lane != l.index {
		panic("response misrouted across arbitration lanes")
	}
	//
	l.arb.mu.Lock()
	l.busy = false
	l.arb.mu.Unlock()
	//
	return resp
}

// Do submits a request and awaits its response.
func (l *Lane) Do(id uint, x, y *big.Int) Response {
	l.Submit(id, x, y)
	return l.Await()
}
