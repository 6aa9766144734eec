// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mt8060

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// ErrTimeout is returned by Sense when no valid frame arrived within
// Opts.ReadTimeout.
var ErrTimeout = errors.New("mt8060: timeout waiting for a valid frame")

// Opts holds the configuration options for the device.
type Opts struct {
	// EdgeTimeout is the longest single wait for a clock edge. It bounds how
	// long Halt takes to stop acquisition. Default is 100ms.
	EdgeTimeout time.Duration
	// ReadTimeout is how long Sense waits for a valid frame. It is also the
	// age after which the last readings are considered stale. The sensor
	// sends a burst of frames every few seconds. Default is 10s.
	ReadTimeout time.Duration
	// Clock timestamps the clock edges. Leave nil to use the system clock.
	Clock clockwork.Clock
}

// DefaultOpts holds the default configuration options for the device.
var DefaultOpts = Opts{
	EdgeTimeout: 100 * time.Millisecond,
	ReadTimeout: 10 * time.Second,
}

// Stats counts the frames seen since the device was created.
type Stats struct {
	// Frames is the number of complete frames, valid or not.
	Frames int
	// Invalid is the number of frames with a bad checksum or terminator.
	Invalid int
	// Unknown is the number of valid frames of a kind this package does not
	// convert.
	Unknown int
}

// Dev is an MT8060 sensor read through a clock pin and a data pin.
type Dev struct {
	clk   gpio.PinIn
	data  gpio.PinIn
	opts  Opts
	clock clockwork.Clock
	epoch time.Time
	// Only used by the acquisition goroutine.
	dec Decoder

	mu    sync.Mutex
	env   Env
	ready bool
	// Clock time of the last valid frame.
	lastValid time.Time
	stats     Stats
	// Closed and replaced each time a valid frame is decoded.
	updated chan struct{}
	// Acquisition goroutine control.
	stop chan struct{}
	done chan struct{}
	// SenseContinuous control.
	chHalt chan struct{}
	wg     sync.WaitGroup
}

// New returns a Dev reading the sensor through clk and data. The clock pin is
// configured for falling edges. Acquisition starts immediately. The Opts can
// be nil.
func New(clk, data gpio.PinIn, opts *Opts) (*Dev, error) {
	if clk == nil || data == nil {
		return nil, errors.New("mt8060: clock and data pins are required")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{clk: clk, data: data, opts: *opts, updated: make(chan struct{})}
	if d.opts.EdgeTimeout <= 0 {
		d.opts.EdgeTimeout = DefaultOpts.EdgeTimeout
	}
	if d.opts.ReadTimeout <= 0 {
		d.opts.ReadTimeout = DefaultOpts.ReadTimeout
	}
	d.clock = d.opts.Clock
	if d.clock == nil {
		d.clock = clockwork.NewRealClock()
	}
	d.epoch = d.clock.Now()

	if err := data.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("mt8060: data pin %s: %w", data, err)
	}
	if err := clk.In(gpio.PullNoChange, gpio.FallingEdge); err != nil {
		return nil, fmt.Errorf("mt8060: clock pin %s: %w", clk, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.start()
	return d, nil
}

// Sense returns the latest readings. If no valid frame was decoded within the
// last Opts.ReadTimeout, it blocks until one arrives or Opts.ReadTimeout
// elapses.
//
// Fields the sensor has not reported yet are left at zero.
func (d *Dev) Sense(e *Env) error {
	d.mu.Lock()
	d.start()
	if d.fresh() {
		*e = d.env
		d.mu.Unlock()
		return nil
	}
	updated := d.updated
	d.mu.Unlock()

	select {
	case <-updated:
	case <-d.clock.After(d.opts.ReadTimeout):
		return ErrTimeout
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	*e = d.env
	return nil
}

// SenseContinuous returns a channel that receives the latest readings every
// interval, once a first valid frame has been decoded. A tick is skipped when
// no valid frame arrived within Opts.ReadTimeout. Call Halt() to stop.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan Env, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("mt8060: invalid interval %s", interval)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.chHalt != nil {
		return nil, errors.New("mt8060: SenseContinuous() running already")
	}
	d.start()
	d.chHalt = make(chan struct{})
	channel := make(chan Env)
	ticker := d.clock.NewTicker(interval)
	d.wg.Add(1)
	go d.senseContinuous(ticker, channel, d.chHalt)
	return channel, nil
}

func (d *Dev) senseContinuous(ticker clockwork.Ticker, channel chan<- Env, halt <-chan struct{}) {
	defer d.wg.Done()
	defer close(channel)
	defer ticker.Stop()
	for {
		select {
		case <-halt:
			return
		case <-ticker.Chan():
			d.mu.Lock()
			e, fresh := d.env, d.fresh()
			d.mu.Unlock()
			if !fresh {
				continue
			}
			select {
			case channel <- e:
			case <-halt:
				return
			}
		}
	}
}

// Halt stops SenseContinuous and the acquisition of clock edges. A later
// call to Sense or SenseContinuous restarts acquisition.
func (d *Dev) Halt() error {
	d.mu.Lock()
	if d.chHalt != nil {
		close(d.chHalt)
		d.chHalt = nil
	}
	stop, done := d.stop, d.done
	d.stop = nil
	d.mu.Unlock()

	d.wg.Wait()
	if stop != nil {
		close(stop)
		<-done
	}
	return nil
}

// Last returns the message from the most recent complete frame, valid or
// not.
func (d *Dev) Last() Message {
	return d.dec.Last()
}

// Stats returns frame counters.
func (d *Dev) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Precision returns the resolution of each reading: 1 PPM, 1/16 K and
// 0.01 %rH.
func (d *Dev) Precision(e *Env) {
	e.Temperature = physic.Kelvin / 16
	e.Pressure = 0
	e.Humidity = physic.PercentRH / 100
	e.CO2 = 1
}

func (d *Dev) String() string {
	return fmt.Sprintf("mt8060{clk: %s, data: %s}", d.clk, d.data)
}

// start launches the acquisition goroutine if it is not running. d.mu must
// be held.
func (d *Dev) start() {
	if d.stop != nil {
		return
	}
	prev := d.done
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	go d.acquire(prev, d.stop, d.done)
}

// acquire feeds the decoder until stop is closed. It first waits for the
// previous acquisition goroutine, if any, to exit.
func (d *Dev) acquire(prev <-chan struct{}, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	if prev != nil {
		<-prev
	}
	// A partial frame from before Halt is useless.
	d.dec.Reset()
	for {
		select {
		case <-stop:
			return
		default:
		}
		if !d.clk.WaitForEdge(d.opts.EdgeTimeout) {
			continue
		}
		// The sensor changes the data line on the rising edge, so it is
		// stable now.
		bit := d.data.Read() == gpio.High
		if d.dec.Feed(d.millis(), bit) {
			d.frame(d.dec.Last())
		}
	}
}

// fresh returns true if a valid frame was decoded within the last
// Opts.ReadTimeout. d.mu must be held.
func (d *Dev) fresh() bool {
	return d.ready && d.clock.Since(d.lastValid) <= d.opts.ReadTimeout
}

// millis returns the time since the device was created in milliseconds,
// truncated to 32 bits. Decoder handles the wrap around.
func (d *Dev) millis() uint32 {
	return uint32(d.clock.Since(d.epoch) / time.Millisecond)
}

func (d *Dev) frame(m Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.Frames++
	if !m.Valid {
		d.stats.Invalid++
		return
	}
	if !d.env.Update(m) {
		d.stats.Unknown++
		return
	}
	d.ready = true
	d.lastValid = d.clock.Now()
	close(d.updated)
	d.updated = make(chan struct{})
}
