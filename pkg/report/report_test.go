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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consensys/go-eccop/pkg/isa"
)

func Test_Report_00(t *testing.T) {
	// One Fe report: header, one payload word, end-of-message on the
	// final byte.
	out := make(chan Beat, 64)
	r := New(4, 2, out)
	//
	r.Enqueue(0x0102, isa.TagFe, words(0x0a0b))
	r.Close()
	//
	beats := collect(out)
	require.Len(t, beats, HeaderBytes+2)
	// Header: tag, address high, address low.
	assert.Equal(t, byte(isa.TagFe), beats[0].Data)
	assert.Equal(t, byte(0x01), beats[1].Data)
	assert.Equal(t, byte(0x02), beats[2].Data)
	// Payload, big-endian.
	assert.Equal(t, byte(0x0a), beats[3].Data)
	assert.Equal(t, byte(0x0b), beats[4].Data)
	// End-of-message marker on the final payload byte only.
	for i, beat := range beats {
		assert.Equal(t, i == len(beats)-1, beat.Last, "beat %d", i)
	}
}

func Test_Report_01(t *testing.T) {
	// An Fe12 report drains one header and exactly 12 payload words.
	out := make(chan Beat, 64)
	r := New(4, 1, out)
	//
	r.Enqueue(3, isa.TagFe12, words(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12))
	r.Close()
	//
	beats := collect(out)
	require.Len(t, beats, HeaderBytes+12)
	//
	for i := 0; i < 12; i++ {
		assert.Equal(t, byte(i+1), beats[HeaderBytes+i].Data)
		assert.Equal(t, i == 11, beats[HeaderBytes+i].Last)
	}
}

func Test_Report_02(t *testing.T) {
	// Reports drain in strict FIFO order matching issue order.
	out := make(chan Beat, 256)
	r := New(8, 1, out)
	//
	for i := 0; i < 8; i++ {
		r.Enqueue(uint(i), isa.TagFe, words(uint64(0x10+i)))
	}
	//
	r.Close()
	beats := collect(out)
	require.Len(t, beats, 8*(HeaderBytes+1))
	//
	for i := 0; i < 8; i++ {
		message := beats[i*(HeaderBytes+1):]
		assert.Equal(t, byte(i), message[2].Data, "message %d address", i)
		assert.Equal(t, byte(0x10+i), message[3].Data, "message %d payload", i)
	}
}

func Test_Report_03(t *testing.T) {
	// A stalled consumer applies backpressure to the drain process, not
	// data loss: every beat still arrives, in order.
	out := make(chan Beat)
	r := New(2, 1, out)
	//
	go func() {
		r.Enqueue(1, isa.TagFe2, words(0xaa, 0xbb))
		r.Close()
	}()
	// Consume slowly.
	var beats []Beat
	//
	for beat := range out {
		time.Sleep(time.Millisecond)
		beats = append(beats, beat)
	}
	//
	require.Len(t, beats, HeaderBytes+2)
	assert.Equal(t, byte(0xaa), beats[3].Data)
	assert.Equal(t, byte(0xbb), beats[4].Data)
	assert.True(t, beats[4].Last)
}

func Test_Report_04(t *testing.T) {
	// Multi-byte words narrow big-endian, preserving word order.
	out := make(chan Beat, 64)
	r := New(2, 3, out)
	//
	r.Enqueue(0, isa.TagFe2, words(0x010203, 0x040506))
	r.Close()
	//
	beats := collect(out)
	require.Len(t, beats, HeaderBytes+6)
	//
	expected := []byte{1, 2, 3, 4, 5, 6}
	for i, b := range expected {
		assert.Equal(t, b, beats[HeaderBytes+i].Data)
	}
}

// ===================================================================
// Test Helpers
// ===================================================================

func words(values ...uint64) []big.Int {
	z := make([]big.Int, len(values))
	//
	for i, v := range values {
		z[i].SetUint64(v)
	}
	//
	return z
}

func collect(out <-chan Beat) []Beat {
	var beats []Beat
	//
	for beat := range out {
		beats = append(beats, beat)
	}
	//
	return beats
}
