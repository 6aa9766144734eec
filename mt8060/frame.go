// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mt8060

import (
	"fmt"
	"sync/atomic"

	"github.com/GermanBionicSystems/co2devices/common"
)

const (
	// FrameLen is the number of bytes in a frame.
	FrameLen = 5
	// GapThreshold is the longest interval, in milliseconds, between two
	// bits of the same frame. A longer interval starts a new frame.
	GapThreshold = 2
	// Terminator is the last byte of every valid frame.
	Terminator byte = 0x0D

	frameBits = FrameLen * 8
)

// Byte offsets within a frame.
const (
	idxKind = iota
	idxValueHigh
	idxValueLow
	idxChecksum
	idxTerminator
)

// Kind is the kind of reading carried by a frame. Codes not listed below are
// kept as-is so the caller can decide what to do with them.
type Kind byte

const (
	Humidity    Kind = 0x41
	Temperature Kind = 0x42
	CO2         Kind = 0x50
)

// Known returns true if k is one of the reading kinds this package converts.
func (k Kind) Known() bool {
	switch k {
	case Humidity, Temperature, CO2:
		return true
	}
	return false
}

func (k Kind) String() string {
	switch k {
	case Humidity:
		return "humidity"
	case Temperature:
		return "temperature"
	case CO2:
		return "co2"
	}
	return fmt.Sprintf("Kind(0x%02x)", byte(k))
}

// Message is the result of decoding one frame.
//
// When Valid is false, Kind and Value hold whatever the last valid frame
// carried.
type Message struct {
	Kind  Kind
	Value uint16
	Valid bool
}

func (m Message) String() string {
	if !m.Valid {
		return fmt.Sprintf("%s=%d (invalid)", m.Kind, m.Value)
	}
	return fmt.Sprintf("%s=%d", m.Kind, m.Value)
}

// Frame returns the frame the sensor sends for m. The checksum and
// terminator are always correct, regardless of m.Valid.
func (m Message) Frame() Frame {
	f := Frame{byte(m.Kind), byte(m.Value >> 8), byte(m.Value), 0, Terminator}
	f[idxChecksum] = common.Sum8(f[:idxChecksum])
	return f
}

// Frame is the raw content of one frame.
type Frame [FrameLen]byte

// Bit returns bit i of the frame in transmission order, MSB first within
// each byte.
func (f Frame) Bit(i int) bool {
	return f[i/8]&(0x80>>(i%8)) != 0
}

// Bits returns the 40 bits of the frame in transmission order.
func (f Frame) Bits() []bool {
	bits := make([]bool, frameBits)
	for i := range bits {
		bits[i] = f.Bit(i)
	}
	return bits
}

// Valid returns true if the checksum and the terminator match.
func (f Frame) Valid() bool {
	return common.Sum8(f[:idxChecksum]) == f[idxChecksum] && f[idxTerminator] == Terminator
}

// Message returns the reading carried by the frame. The result is only
// meaningful when Valid is true.
func (f Frame) Message() Message {
	return Message{
		Kind:  Kind(f[idxKind]),
		Value: uint16(f[idxValueHigh])<<8 | uint16(f[idxValueLow]),
		Valid: f.Valid(),
	}
}

// Decoder reassembles frames from individual bits.
//
// Feed must not be called concurrently. Last may be called from any
// goroutine.
//
// The zero value is ready to use.
type Decoder struct {
	buf  Frame
	bits int
	// Timestamp of the previous bit, in milliseconds.
	last uint32
	// Packed Message, see pack().
	msg atomic.Uint32
}

// Feed adds one bit sampled at time ms, in milliseconds. It returns true when
// the bit completed a frame; Last then returns the decoded message.
//
// Timestamps are compared with unsigned subtraction so a millisecond counter
// wrapping around 2^32 does not break framing.
//
// Feed does not allocate and runs in constant time, so it can be called from
// an edge callback.
func (d *Decoder) Feed(ms uint32, bit bool) bool {
	if ms-d.last > GapThreshold {
		d.bits = 0
	}
	d.last = ms
	if d.bits >= frameBits {
		return false
	}
	i := d.bits / 8
	d.buf[i] <<= 1
	if bit {
		d.buf[i] |= 1
	}
	d.bits++
	if d.bits == frameBits {
		d.decode()
		return true
	}
	return false
}

// Last returns the most recently decoded message.
func (d *Decoder) Last() Message {
	return unpack(d.msg.Load())
}

// Reset drops the frame in progress. The last message is kept.
func (d *Decoder) Reset() {
	d.bits = 0
}

func (d *Decoder) decode() {
	m := d.buf.Message()
	if !m.Valid {
		// Keep the previous reading, only flag it.
		m = d.Last()
		m.Valid = false
	}
	d.msg.Store(pack(m))
}

// pack stores a Message in a single word so it can be published atomically:
// bits 0-15 value, 16-23 kind, 24 valid.
func pack(m Message) uint32 {
	w := uint32(m.Value) | uint32(m.Kind)<<16
	if m.Valid {
		w |= 1 << 24
	}
	return w
}

func unpack(w uint32) Message {
	return Message{
		Kind:  Kind(w >> 16),
		Value: uint16(w),
		Valid: w&(1<<24) != 0,
	}
}
