// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains functions used across multiple packages. For
// example, the additive frame checksum used by the MT8060 line protocol.
package common

// Sum8 returns the sum of the byte slice parameter truncated to 8 bits.
// Overflow wraps around, which is how ZyAura style sensors checksum their
// frames.
func Sum8(bytes []byte) byte {
	var sum byte
	for _, val := range bytes {
		sum += val
	}
	return sum
}
