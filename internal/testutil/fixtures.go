// Package testutil holds fixtures shared by sarsim tests.
package testutil

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/udisondev/sarsim/internal/config"
)

// Epoch is the fixed start time of Clock.
var Epoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// Config returns the default configuration with the given population.
// Seed is fixed so spawn positions repeat between runs.
func Config(scouts, rescuers, victims int) config.Config {
	cfg := config.Default()
	cfg.Scouts.Count = scouts
	cfg.Rescuers.Count = rescuers
	cfg.Victims.Count = victims
	cfg.Simulation.Seed = 42
	return cfg
}

// Rand returns a deterministic generator.
func Rand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Clock is a manually advanced clock. Zero value starts at Epoch.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock set to Epoch.
func NewClock() *Clock {
	return &Clock{now: Epoch}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.now.IsZero() {
		c.now = Epoch
	}
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.now.IsZero() {
		c.now = Epoch
	}
	c.now = c.now.Add(d)
}
