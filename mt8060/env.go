// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mt8060

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// PPM=Parts Per Million. Units of measure for CO2 concentration.
type PPM int

func (ppm PPM) String() string {
	return fmt.Sprintf("%d PPM", int(ppm))
}

// Env is the latest value of every reading the sensor reported.
//
// The sensor sends one kind per frame so the fields fill in over a few
// frames. Pressure is never set.
type Env struct {
	physic.Env
	CO2 PPM
}

func (e *Env) String() string {
	return fmt.Sprintf("Temperature: %s Humidity: %s CO2: %s", e.Temperature.String(), e.Humidity.String(), e.CO2.String())
}

// Update stores the reading carried by m. It returns false, leaving e
// untouched, when m is invalid or of an unknown kind.
func (e *Env) Update(m Message) bool {
	if !m.Valid {
		return false
	}
	switch m.Kind {
	case CO2:
		e.CO2 = PPM(m.Value)
	case Temperature:
		e.Temperature = countToTemp(m.Value)
	case Humidity:
		e.Humidity = countToHumidity(m.Value)
	default:
		return false
	}
	return true
}

// countToTemp converts a temperature frame value, in 1/16 K, to Temperature.
func countToTemp(count uint16) physic.Temperature {
	return physic.Temperature(count) * physic.Kelvin / 16
}

// countToHumidity converts a humidity frame value, in 1/100 %rH.
func countToHumidity(count uint16) physic.RelativeHumidity {
	return physic.RelativeHumidity(count) * physic.PercentRH / 100
}
