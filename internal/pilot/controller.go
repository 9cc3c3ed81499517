package pilot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Moha1423/WIFI-drone/internal/command"
	"github.com/Moha1423/WIFI-drone/internal/mixer"
)

// Link timing used by the stock web UI.
const (
	DefaultControlInterval = 100 * time.Millisecond
	DefaultSensorInterval  = 200 * time.Millisecond
)

// Sticks is the pilot's input state.
type Sticks struct {
	Throttle int
	Pitch    int
	Roll     int
	Yaw      int
	Armed    bool
}

// State is the latest link state reported to the UI.
type State struct {
	Sticks   Sticks
	Status   command.Status
	Attitude Attitude
	Err      error
	At       time.Time
}

// Config holds controller settings.
type Config struct {
	ControlInterval time.Duration
	SensorInterval  time.Duration
}

// Controller owns the stick state and the link loops.
type Controller struct {
	client          *Client
	controlInterval time.Duration
	sensorInterval  time.Duration

	mu     sync.Mutex
	sticks Sticks
	state  State
	linkUp bool

	stateCh chan State
	logCh   chan string
}

// NewController creates a controller. Zero intervals use the defaults.
func NewController(client *Client, cfg Config) *Controller {
	if cfg.ControlInterval <= 0 {
		cfg.ControlInterval = DefaultControlInterval
	}
	if cfg.SensorInterval <= 0 {
		cfg.SensorInterval = DefaultSensorInterval
	}
	return &Controller{
		client:          client,
		controlInterval: cfg.ControlInterval,
		sensorInterval:  cfg.SensorInterval,
		linkUp:          true,
		stateCh:         make(chan State, 1),
		logCh:           make(chan string, 10),
	}
}

// States delivers the latest state; stale states are dropped.
func (c *Controller) States() <-chan State { return c.stateCh }

// Logs delivers link messages.
func (c *Controller) Logs() <-chan string { return c.logCh }

// Sticks returns the current stick state.
func (c *Controller) Sticks() Sticks {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sticks
}

// ToggleArm flips the arm switch. Disarming recentres every stick and
// closes the throttle.
func (c *Controller) ToggleArm() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sticks.Armed = !c.sticks.Armed
	if !c.sticks.Armed {
		c.sticks = Sticks{}
	}
	return c.sticks.Armed
}

// AdjustThrottle moves the throttle by delta within 0..100.
func (c *Controller) AdjustThrottle(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sticks.Throttle = clamp(c.sticks.Throttle+delta, 0, mixer.MaxThrottle)
}

// Nudge moves pitch, roll and yaw by the given deltas within ±50.
func (c *Controller) Nudge(pitch, roll, yaw int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sticks.Pitch = clamp(c.sticks.Pitch+pitch, -mixer.MaxAxis, mixer.MaxAxis)
	c.sticks.Roll = clamp(c.sticks.Roll+roll, -mixer.MaxAxis, mixer.MaxAxis)
	c.sticks.Yaw = clamp(c.sticks.Yaw+yaw, -mixer.MaxAxis, mixer.MaxAxis)
}

// Center returns pitch, roll and yaw to zero.
func (c *Controller) Center() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sticks.Pitch, c.sticks.Roll, c.sticks.Yaw = 0, 0, 0
}

// SendNow sends the current sticks once.
func (c *Controller) SendNow(ctx context.Context) {
	sticks := c.Sticks()
	st, err := c.client.Control(ctx, sticks)

	c.mu.Lock()
	c.state.Sticks = sticks
	c.state.Err = err
	c.state.At = time.Now()
	if err == nil {
		c.state.Status = st
		// The vehicle disarms itself on a failsafe; follow it. A reply to a
		// request sent disarmed says nothing about a later arm press.
		if sticks.Armed && c.sticks.Armed && !st.Armed {
			c.sticks = Sticks{}
		}
	}
	wasUp := c.linkUp
	c.linkUp = err == nil
	state := c.state
	c.mu.Unlock()

	switch {
	case err != nil && wasUp:
		c.log(fmt.Sprintf("link lost: %v", err))
	case err == nil && !wasUp:
		c.log("link restored")
	}
	c.emit(state)
}

func (c *Controller) pollSensor(ctx context.Context) {
	a, err := c.client.Sensor(ctx)
	if err != nil {
		return
	}

	c.mu.Lock()
	c.state.Attitude = a
	state := c.state
	c.mu.Unlock()
	c.emit(state)
}

// Start runs the control and sensor loops until ctx is cancelled. On exit
// it sends one disarm with a short deadline.
func (c *Controller) Start(ctx context.Context) error {
	controlTicker := time.NewTicker(c.controlInterval)
	defer controlTicker.Stop()
	sensorTicker := time.NewTicker(c.sensorInterval)
	defer sensorTicker.Stop()

	c.SendNow(ctx)
	c.pollSensor(ctx)

	for {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			c.sticks = Sticks{}
			c.mu.Unlock()

			disarmCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
			_, _ = c.client.Control(disarmCtx, Sticks{})
			cancel()
			return ctx.Err()
		case <-controlTicker.C:
			c.SendNow(ctx)
		case <-sensorTicker.C:
			c.pollSensor(ctx)
		}
	}
}

func (c *Controller) emit(s State) {
	select {
	case c.stateCh <- s:
		return
	default:
	}
	// Replace the stale state.
	select {
	case <-c.stateCh:
	default:
	}
	select {
	case c.stateCh <- s:
	default:
	}
}

func (c *Controller) log(msg string) {
	select {
	case c.logCh <- msg:
	default:
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
