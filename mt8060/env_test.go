// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mt8060

import (
	"testing"

	"periph.io/x/conn/v3/physic"
)

func TestEnvUpdate(t *testing.T) {
	var tests = []struct {
		name    string
		msg     Message
		updated bool
		want    Env
	}{
		{
			name:    "co2",
			msg:     Message{Kind: CO2, Value: 1000, Valid: true},
			updated: true,
			want:    Env{CO2: 1000},
		},
		{
			// 4726/16 = 295.375K
			name:    "temperature",
			msg:     Message{Kind: Temperature, Value: 4726, Valid: true},
			updated: true,
			want:    Env{Env: physic.Env{Temperature: 295375 * physic.MilliKelvin}},
		},
		{
			name:    "humidity",
			msg:     Message{Kind: Humidity, Value: 4512, Valid: true},
			updated: true,
			want:    Env{Env: physic.Env{Humidity: 4512 * physic.PercentRH / 100}},
		},
		{
			name: "invalid",
			msg:  Message{Kind: CO2, Value: 1000, Valid: false},
		},
		{
			name: "unknown kind",
			msg:  Message{Kind: Kind(0x6e), Value: 1000, Valid: true},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			e := Env{}
			if updated := e.Update(test.msg); updated != test.updated {
				t.Errorf("Update()=%t expected %t", updated, test.updated)
			}
			if e != test.want {
				t.Errorf("Update() env %s expected %s", e.String(), test.want.String())
			}
		})
	}
}

func TestEnvString(t *testing.T) {
	e := Env{CO2: 812}
	e.Update(Message{Kind: Temperature, Value: 4726, Valid: true})
	e.Update(Message{Kind: Humidity, Value: 4512, Valid: true})
	expected := "Temperature: 22.225°C Humidity: 45.1%rH CO2: 812 PPM"
	if s := e.String(); s != expected {
		t.Errorf("String()=%q expected %q", s, expected)
	}
}

func TestPrecision(t *testing.T) {
	d := &Dev{}
	e := Env{}
	d.Precision(&e)
	if e.CO2 != 1 {
		t.Errorf("CO2 precision %s", e.CO2)
	}
	if e.Temperature != 62500*physic.MicroKelvin {
		t.Errorf("temperature precision %d", e.Temperature)
	}
	if e.Humidity != 1000*physic.TenthMicroRH {
		t.Errorf("humidity precision %d", e.Humidity)
	}
}
