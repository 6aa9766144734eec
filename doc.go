// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package co2devices is a container for the MT8060 CO2 meter driver and the
// tools built on it.
//
// The mt8060 package decodes the meter's clock and data lines. co2bar and
// co2panel show readings on a terminal or a small display. monitor and
// cmd/mt8060mon forward readings to MQTT and InfluxDB.
package co2devices
