package command

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Moha1423/WIFI-drone/internal/actuator"
	"github.com/Moha1423/WIFI-drone/internal/arming"
	"github.com/Moha1423/WIFI-drone/internal/clock"
	"github.com/Moha1423/WIFI-drone/internal/config"
	"github.com/Moha1423/WIFI-drone/internal/mixer"
	"github.com/Moha1423/WIFI-drone/internal/orientation"
	"github.com/Moha1423/WIFI-drone/internal/telemetry"
)

// actuatorWriteTimeout bounds one four-channel write.
const actuatorWriteTimeout = 50 * time.Millisecond

// ControlRequest is one parsed control message. Nil fields are absent.
type ControlRequest struct {
	Input mixer.PilotInput
	Arm   *string

	// Subject identifies the pilot for audit records.
	Subject string
}

// Status is returned for every control request.
type Status struct {
	Armed   bool    `json:"armed"`
	MotorFL int     `json:"motorFL"`
	MotorFR int     `json:"motorFR"`
	MotorBL int     `json:"motorBL"`
	MotorBR int     `json:"motorBR"`
	Pitch   float64 `json:"pitch"`
	Roll    float64 `json:"roll"`
	Yaw     float64 `json:"yaw"`
}

// Health summarises subsystem state.
type Health struct {
	Armed          bool
	SensorOK       bool
	SensorError    string
	LastSampleAge  time.Duration
	ActuatorOK     bool
	ActuatorError  string
	LastCommandAge time.Duration
}

// Orchestrator owns the flight state.
type Orchestrator struct {
	mu     sync.Mutex
	arming *arming.StateMachine
	motors mixer.MotorCommand

	output actuator.Output
	source orientation.Source
	clock  clock.Clock
	cfg    config.FlightConfig

	// Latest orientation sample; readers never touch the sensor.
	orientMu    sync.RWMutex
	orient      orientation.Snapshot
	sensorErr   error
	actuatorErr error

	telemetry           EventPublisher
	orientationInterval time.Duration
	lastOrientationPub  time.Time
	lastStatusLog       time.Time

	auditLogger AuditLogger
	indicator   Indicator
}

var _ FlightPort = (*Orchestrator)(nil)

// NewOrchestrator creates a disarmed orchestrator.
func NewOrchestrator(output actuator.Output, source orientation.Source, cfg config.FlightConfig) *Orchestrator {
	return &Orchestrator{
		arming: arming.New(cfg.FailsafeTimeout),
		output: output,
		source: source,
		clock:  clock.System{},
		cfg:    cfg,
	}
}

// SetClock replaces the time source.
func (o *Orchestrator) SetClock(c clock.Clock) {
	o.clock = c
}

// SetTelemetry sets the event publisher. Orientation events are sent at most
// once per interval; zero sends every sample.
func (o *Orchestrator) SetTelemetry(p EventPublisher, orientationInterval time.Duration) {
	o.telemetry = p
	o.orientationInterval = orientationInterval
}

// SetAuditLogger sets the audit logger.
func (o *Orchestrator) SetAuditLogger(logger AuditLogger) {
	o.auditLogger = logger
}

// SetIndicator sets the status indicator.
func (o *Orchestrator) SetIndicator(ind Indicator) {
	o.indicator = ind
}

// Start zeroes the actuator. It must run before anything else touches the motors.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	o.motors = mixer.Zero
	err := o.writeLocked(ctx, mixer.Zero)
	o.mu.Unlock()

	if o.indicator != nil {
		o.indicator.SetArmed(false)
	}
	return err
}

// HandleControl applies one control request: refresh the command clock,
// apply the arm field, mix, write the actuator and report status.
func (o *Orchestrator) HandleControl(ctx context.Context, req ControlRequest) Status {
	start := time.Now()
	now := o.clock.Now()

	o.mu.Lock()
	tr := arming.NoChange
	if req.Arm != nil {
		tr = o.arming.Apply(*req.Arm, now)
	} else {
		o.arming.Touch(now)
	}

	armed := o.arming.Armed()
	prev := o.motors
	next := mixer.Clamp(mixer.Mix(prev, req.Input, armed))
	o.motors = next

	drive := next
	if !armed {
		drive = mixer.Zero
	}
	werr := o.writeLocked(ctx, drive)
	o.mu.Unlock()

	latency := time.Since(start)

	switch tr {
	case arming.Armed:
		log.Printf("flight: armed by %s", subjectOrUnknown(req.Subject))
		o.logAudit(ctx, "arm", req.Subject, "SUCCESS", latency)
		o.publishArmingEvent(telemetry.EventArmed, req.Subject)
		o.showArmed(true)
	case arming.Disarmed:
		log.Printf("flight: disarmed by %s", subjectOrUnknown(req.Subject))
		o.logAudit(ctx, "disarm", req.Subject, "SUCCESS", latency)
		o.publishArmingEvent(telemetry.EventDisarmed, req.Subject)
		o.showArmed(false)
	}

	if werr != nil {
		o.logAudit(ctx, "actuatorWrite", req.Subject, "ERROR", latency)
	}
	if next != prev {
		o.publishMotorsEvent(next)
	}

	return o.status(armed, next)
}

// Tick runs one control-loop iteration: poll the sensor, then check the failsafe.
func (o *Orchestrator) Tick(ctx context.Context) {
	o.pollSensor(ctx)

	now := o.clock.Now()

	o.mu.Lock()
	last := o.arming.State().LastCommand
	tr := o.arming.CheckFailsafe(now)
	if tr == arming.Failsafe {
		o.motors = mixer.Zero
		_ = o.writeLocked(ctx, mixer.Zero)
	}
	armed := o.arming.Armed()
	motors := o.motors
	o.mu.Unlock()

	if tr == arming.Failsafe {
		silence := now.Sub(last)
		log.Printf("flight: FAILSAFE - no command for %v, disarmed", silence.Round(time.Millisecond))
		o.logAudit(ctx, "failsafe", "", "DISARMED", 0)
		o.publishFailsafeEvent(silence)
		if o.indicator != nil {
			o.indicator.Failsafe()
		}
	}

	o.maybeLogStatus(now, armed, motors)
}

// Run ticks at the poll interval until ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) {
	interval := o.cfg.PollInterval
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.Tick(ctx)
		}
	}
}

// Shutdown disarms and stops the motors.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	now := o.clock.Now()

	o.mu.Lock()
	tr := o.arming.Disarm(now)
	o.motors = mixer.Zero
	err := o.writeLocked(ctx, mixer.Zero)
	o.mu.Unlock()

	if tr == arming.Disarmed {
		log.Printf("flight: disarmed for shutdown")
		o.logAudit(ctx, "disarm", "shutdown", "SUCCESS", 0)
		o.publishArmingEvent(telemetry.EventDisarmed, "shutdown")
	}
	o.showArmed(false)
	return err
}

// Orientation returns the latest sample.
func (o *Orchestrator) Orientation() orientation.Snapshot {
	o.orientMu.RLock()
	defer o.orientMu.RUnlock()
	return o.orient
}

// Status returns the current state without touching the command clock.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	armed := o.arming.Armed()
	motors := o.motors
	o.mu.Unlock()
	return o.status(armed, motors)
}

// Snapshot returns the status as a map for telemetry ready events.
func (o *Orchestrator) Snapshot() map[string]interface{} {
	s := o.Status()
	return map[string]interface{}{
		"armed":   s.Armed,
		"motorFL": s.MotorFL,
		"motorFR": s.MotorFR,
		"motorBL": s.MotorBL,
		"motorBR": s.MotorBR,
		"pitch":   s.Pitch,
		"roll":    s.Roll,
		"yaw":     s.Yaw,
	}
}

// Health reports subsystem state.
func (o *Orchestrator) Health() Health {
	now := o.clock.Now()

	o.mu.Lock()
	st := o.arming.State()
	o.mu.Unlock()

	o.orientMu.RLock()
	defer o.orientMu.RUnlock()

	h := Health{
		Armed:      st.Armed,
		SensorOK:   o.sensorErr == nil && !o.orient.At.IsZero(),
		ActuatorOK: o.actuatorErr == nil,
	}
	if o.sensorErr != nil {
		h.SensorError = o.sensorErr.Error()
	}
	if o.actuatorErr != nil {
		h.ActuatorError = o.actuatorErr.Error()
	}
	if !o.orient.At.IsZero() {
		h.LastSampleAge = now.Sub(o.orient.At)
	}
	if !st.LastCommand.IsZero() {
		h.LastCommandAge = now.Sub(st.LastCommand)
	}
	return h
}

func (o *Orchestrator) status(armed bool, m mixer.MotorCommand) Status {
	snap := o.Orientation()
	return Status{
		Armed:   armed,
		MotorFL: m.FL,
		MotorFR: m.FR,
		MotorBL: m.BL,
		MotorBR: m.BR,
		Pitch:   snap.Pitch,
		Roll:    snap.Roll,
		Yaw:     snap.Yaw,
	}
}

// writeLocked writes drive to the actuator. Caller holds o.mu. The write is
// detached from ctx cancellation so a dropped request never skips a zero write.
func (o *Orchestrator) writeLocked(ctx context.Context, drive mixer.MotorCommand) error {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), actuatorWriteTimeout)
	defer cancel()

	err := o.output.Write(wctx, drive)

	o.orientMu.Lock()
	prevErr := o.actuatorErr
	o.actuatorErr = err
	o.orientMu.Unlock()

	if err != nil {
		if prevErr == nil {
			log.Printf("flight: actuator write failed: %v", err)
		}
		o.publishFaultEvent("actuator", err)
	} else if prevErr != nil {
		log.Printf("flight: actuator recovered")
	}
	return err
}

func (o *Orchestrator) pollSensor(ctx context.Context) {
	snap, err := o.source.Update(ctx)

	o.orientMu.Lock()
	prevErr := o.sensorErr
	o.sensorErr = err
	if err == nil {
		o.orient = snap
	}
	o.orientMu.Unlock()

	switch {
	case err != nil && prevErr == nil:
		log.Printf("flight: orientation read failed: %v", err)
		o.publishFaultEvent("sensor", err)
	case err == nil && prevErr != nil:
		log.Printf("flight: orientation recovered")
	}

	if err == nil {
		o.maybePublishOrientation(snap)
	}
}

func (o *Orchestrator) maybeLogStatus(now time.Time, armed bool, m mixer.MotorCommand) {
	if !armed || o.cfg.StatusLogInterval <= 0 {
		return
	}
	if now.Sub(o.lastStatusLog) < o.cfg.StatusLogInterval {
		return
	}
	o.lastStatusLog = now

	snap := o.Orientation()
	log.Printf("flight: FL=%d FR=%d BL=%d BR=%d pitch=%.1f roll=%.1f yaw=%.1f",
		m.FL, m.FR, m.BL, m.BR, snap.Pitch, snap.Roll, snap.Yaw)
}

func (o *Orchestrator) showArmed(armed bool) {
	if o.indicator != nil {
		o.indicator.SetArmed(armed)
	}
}

func (o *Orchestrator) maybePublishOrientation(snap orientation.Snapshot) {
	if o.telemetry == nil {
		return
	}
	if o.orientationInterval > 0 && snap.At.Sub(o.lastOrientationPub) < o.orientationInterval {
		return
	}
	o.lastOrientationPub = snap.At

	o.publish(telemetry.NewEvent(telemetry.EventOrientation, map[string]interface{}{
		"pitch": snap.Pitch,
		"roll":  snap.Roll,
		"yaw":   snap.Yaw,
	}))
}

func (o *Orchestrator) publishArmingEvent(eventType, subject string) {
	o.publish(telemetry.NewEvent(eventType, map[string]interface{}{
		"subject": subject,
	}))
}

func (o *Orchestrator) publishFailsafeEvent(silence time.Duration) {
	o.publish(telemetry.NewEvent(telemetry.EventFailsafe, map[string]interface{}{
		"silenceMs": silence.Milliseconds(),
		"timeoutMs": o.arming.Timeout().Milliseconds(),
	}))
}

func (o *Orchestrator) publishMotorsEvent(m mixer.MotorCommand) {
	o.publish(telemetry.NewEvent(telemetry.EventMotors, map[string]interface{}{
		"motorFL": m.FL,
		"motorFR": m.FR,
		"motorBL": m.BL,
		"motorBR": m.BR,
	}))
}

func (o *Orchestrator) publishFaultEvent(component string, err error) {
	o.publish(telemetry.NewEvent(telemetry.EventFault, map[string]interface{}{
		"component": component,
		"code":      err.Error(),
	}))
}

func (o *Orchestrator) publish(event telemetry.Event) {
	if o.telemetry == nil {
		return
	}
	if err := o.telemetry.Publish(event); err != nil {
		log.Printf("flight: telemetry publish %s: %v", event.Type, err)
	}
}

// logAudit logs an audit record for a flight action.
func (o *Orchestrator) logAudit(ctx context.Context, action, subject, result string, latency time.Duration) {
	if o.auditLogger != nil {
		o.auditLogger.LogAction(ctx, action, subject, result, latency)
	}
}

func subjectOrUnknown(s string) string {
	if s == "" {
		return "pilot"
	}
	return s
}
