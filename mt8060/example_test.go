//go:build examples
// +build examples

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mt8060_test

import (
	"fmt"
	"log"
	"time"

	"github.com/GermanBionicSystems/co2devices/mt8060"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Basic example program reading an MT8060 based CO2 meter. The meter's
// clock pad is wired to GPIO17 and its data pad to GPIO27.
func Example() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	clk := gpioreg.ByName("GPIO17")
	data := gpioreg.ByName("GPIO27")
	if clk == nil || data == nil {
		log.Fatal("failed to find GPIO17 or GPIO27")
	}
	dev, err := mt8060.New(clk, data, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer dev.Halt()

	env := mt8060.Env{}
	if err := dev.Sense(&env); err != nil {
		log.Fatal(err)
	}
	fmt.Println(env.String())

	ch, err := dev.SenseContinuous(5 * time.Second)
	if err != nil {
		log.Fatal(err)
	}
	for range 3 {
		e := <-ch
		fmt.Println(e.String())
	}
	fmt.Printf("%#v\n", dev.Stats())
}

// Feed a decoder directly, for example from an edge callback.
func ExampleDecoder() {
	var d mt8060.Decoder
	frame := mt8060.Frame{0x50, 0x03, 0xe8, 0x3b, 0x0d}
	for i, bit := range frame.Bits() {
		if d.Feed(uint32(100+i), bit) {
			fmt.Println(d.Last())
		}
	}
	// Output: co2=1000
}
