// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mt8060 decodes the clocked single-wire output of MT8060 family CO2
// sensors (ZyAura ZG01 modules and the many meters built on them). The
// sensor reports CO2 concentration, temperature and, on some models,
// relative humidity.
//
// The sensor drives a clock line and a data line. The host samples the data
// line on every falling clock edge. Bits are packed MSB first into 5-byte
// frames:
//
//	[kind][value high][value low][checksum][0x0D]
//
// There is no start marker. A frame starts after the line has been idle for
// more than GapThreshold milliseconds.
//
// Decoder holds the framing state machine and can be fed from any edge
// source, including an interrupt handler. Dev wires a Decoder to a pair of
// periph GPIO pins and implements the usual Sense, SenseContinuous and Halt
// methods.
//
// Protocol notes: https://revspace.nl/CO2MeterHacking
package mt8060
