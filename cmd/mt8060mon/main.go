// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// mt8060mon reads an MT8060 based CO2 meter and publishes its readings to
// MQTT, InfluxDB and the terminal.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/co2devices/co2bar"
	"github.com/GermanBionicSystems/co2devices/monitor"
	"github.com/GermanBionicSystems/co2devices/mt8060"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel)
	configFile := flag.String("config", "mt8060mon.yaml", "YAML config file")
	flag.Parse()

	cfg, err := monitor.Load(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("error loading config file")
	}
	level, _ := cfg.Level()
	log.Logger = log.Logger.Level(level)

	if _, err := host.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize periph")
	}
	clk := gpioreg.ByName(cfg.Sensor.ClockPin)
	if clk == nil {
		log.Fatal().Str("pin", cfg.Sensor.ClockPin).Msg("clock pin not found")
	}
	data := gpioreg.ByName(cfg.Sensor.DataPin)
	if data == nil {
		log.Fatal().Str("pin", cfg.Sensor.DataPin).Msg("data pin not found")
	}
	dev, err := mt8060.New(clk, data, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize sensor")
	}
	log.Info().Stringer("device", dev).Str("sensor", cfg.Sensor.Name).Msg("sensor ready")

	m := monitor.New(cfg.Sensor.Name, sinks(cfg), monitor.WithLogger(log.Logger))

	envs, err := dev.SenseContinuous(cfg.Sensor.Interval)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start sensing")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	eg.Go(func() error {
		select {
		case <-sigChan:
			log.Info().Msg("stopping")
		case <-ctx.Done():
		}
		return dev.Halt()
	})

	eg.Go(func() error {
		defer cancel()
		return m.Run(ctx, envs)
	})

	err = eg.Wait()
	stats := dev.Stats()
	log.Info().Int("frames", stats.Frames).Int("invalid", stats.Invalid).Int("unknown", stats.Unknown).Msg("sensor stats")
	if cerr := m.Close(); cerr != nil {
		log.Error().Err(cerr).Msg("failed to close sinks")
	}
	if err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("exited program")
	}
}

// sinks returns the sinks enabled in cfg. A sink that cannot be created is
// logged and skipped.
func sinks(cfg *monitor.Config) []monitor.Sink {
	var out []monitor.Sink
	if cfg.MQTT.Broker != "" {
		s, err := monitor.NewMQTTSink(cfg.MQTT)
		if err != nil {
			log.Error().Err(err).Str("broker", cfg.MQTT.Broker).Msg("mqtt disabled")
		} else {
			log.Info().Str("broker", cfg.MQTT.Broker).Str("prefix", cfg.MQTT.TopicPrefix).Msg("publishing to mqtt")
			out = append(out, s)
		}
	}
	if cfg.InfluxDB.URL != "" {
		log.Info().Str("url", cfg.InfluxDB.URL).Str("bucket", cfg.InfluxDB.Bucket).Msg("writing to influxdb")
		out = append(out, monitor.NewInfluxSink(cfg.InfluxDB))
	}
	if cfg.Gauge.Enabled {
		out = append(out, monitor.NewGaugeSink(&co2bar.Opts{X: cfg.Gauge.Width}))
	}
	if cfg.Panel.Path != "" {
		s, err := monitor.NewPanelSink(cfg.Panel)
		if err != nil {
			log.Error().Err(err).Msg("panel disabled")
		} else {
			log.Info().Str("path", cfg.Panel.Path).Msg("rendering panel")
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		log.Warn().Msg("no sink configured, readings are only logged at debug level")
	}
	return out
}
