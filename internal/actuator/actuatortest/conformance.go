// Package actuatortest provides a backend-agnostic conformance suite for
// actuator.Output implementations.
package actuatortest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/Moha1423/WIFI-drone/internal/actuator"
	"github.com/Moha1423/WIFI-drone/internal/mixer"
)

// MaxWriteLatency bounds one four-channel write. The control loop ticks every
// 10 ms and a write must fit comfortably inside one tick.
const MaxWriteLatency = 5 * time.Millisecond

// Readback returns the command last applied to the hardware, as seen by the
// backend under test. It may be nil when the backend has no readback.
type Readback func() mixer.MotorCommand

// Result is the outcome of one conformance check.
type Result struct {
	Name     string
	Passed   bool
	Error    string
	Duration time.Duration
}

// Report collects conformance results.
type Report struct {
	Backend string
	Results []Result
	Passed  int
	Failed  int
}

func (r *Report) add(res Result) {
	if res.Passed {
		r.Passed++
	} else {
		r.Failed++
	}
	r.Results = append(r.Results, res)
}

// RunConformance runs the suite against fresh outputs created by newOutput.
func RunConformance(t *testing.T, backend string, newOutput func() (actuator.Output, Readback)) {
	t.Helper()

	report := &Report{Backend: backend}

	runRangeChecks(newOutput, report)
	runContextChecks(newOutput, report)
	runIdempotencyChecks(newOutput, report)
	runTimingChecks(newOutput, report)

	printReport(t, report)

	if report.Failed > 0 {
		t.Fatalf("actuator conformance failed: %d/%d checks passed", report.Passed, report.Passed+report.Failed)
	}
}

func runRangeChecks(newOutput func() (actuator.Output, Readback), report *Report) {
	out, readback := newOutput()
	defer out.Close()
	ctx := context.Background()

	valid := []mixer.MotorCommand{
		mixer.Zero,
		{FL: 255, FR: 255, BL: 255, BR: 255},
		{FL: 77, FR: 77, BL: 177, BR: 177},
		{FL: 1, FR: 254, BL: 128, BR: 0},
	}
	for _, cmd := range valid {
		res := Result{Name: fmt.Sprintf("Write_Valid_%d_%d_%d_%d", cmd.FL, cmd.FR, cmd.BL, cmd.BR)}
		start := time.Now()
		err := out.Write(ctx, cmd)
		res.Duration = time.Since(start)

		switch {
		case err != nil:
			res.Error = fmt.Sprintf("Write(%+v) failed: %v", cmd, err)
		case readback != nil && readback() != cmd:
			res.Error = fmt.Sprintf("readback %+v, want %+v", readback(), cmd)
		default:
			res.Passed = true
		}
		report.add(res)
	}

	invalid := []mixer.MotorCommand{
		{FL: -1},
		{FR: 256},
		{BL: 1000},
		{BR: -255},
	}
	for _, cmd := range invalid {
		res := Result{Name: fmt.Sprintf("Write_Invalid_%d_%d_%d_%d", cmd.FL, cmd.FR, cmd.BL, cmd.BR)}
		start := time.Now()
		err := out.Write(ctx, cmd)
		res.Duration = time.Since(start)

		if !errors.Is(err, actuator.ErrInvalidRange) {
			res.Error = fmt.Sprintf("Write(%+v) = %v, want INVALID_RANGE", cmd, err)
		} else {
			res.Passed = true
		}
		report.add(res)
	}
}

func runContextChecks(newOutput func() (actuator.Output, Readback), report *Report) {
	out, _ := newOutput()
	defer out.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := Result{Name: "Write_CancelledContext"}
	err := out.Write(ctx, mixer.Zero)
	if !errors.Is(err, context.Canceled) {
		res.Error = fmt.Sprintf("Write with cancelled context = %v, want context.Canceled", err)
	} else {
		res.Passed = true
	}
	report.add(res)
}

func runIdempotencyChecks(newOutput func() (actuator.Output, Readback), report *Report) {
	out, readback := newOutput()
	defer out.Close()
	ctx := context.Background()

	res := Result{Name: "Write_ZeroRepeated"}
	var err error
	for i := 0; i < 3 && err == nil; i++ {
		err = out.Write(ctx, mixer.Zero)
	}
	switch {
	case err != nil:
		res.Error = fmt.Sprintf("repeated zero write failed: %v", err)
	case readback != nil && readback() != mixer.Zero:
		res.Error = fmt.Sprintf("readback %+v after zero writes", readback())
	default:
		res.Passed = true
	}
	report.add(res)
}

func runTimingChecks(newOutput func() (actuator.Output, Readback), report *Report) {
	out, _ := newOutput()
	defer out.Close()
	ctx := context.Background()

	res := Result{Name: "Write_Latency"}
	start := time.Now()
	err := out.Write(ctx, mixer.MotorCommand{FL: 127, FR: 127, BL: 127, BR: 127})
	res.Duration = time.Since(start)

	switch {
	case err != nil:
		res.Error = fmt.Sprintf("Write failed: %v", err)
	case res.Duration > MaxWriteLatency:
		res.Error = fmt.Sprintf("Write took %v, limit %v", res.Duration, MaxWriteLatency)
	default:
		res.Passed = true
	}
	report.add(res)
}

func printReport(t *testing.T, report *Report) {
	t.Logf("%s", strings.Repeat("=", 72))
	t.Logf("ACTUATOR CONFORMANCE: %s  passed=%d failed=%d", report.Backend, report.Passed, report.Failed)
	t.Logf("%s", strings.Repeat("-", 72))

	results := append([]Result(nil), report.Results...)
	sort.SliceStable(results, func(i, j int) bool { return !results[i].Passed && results[j].Passed })

	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		t.Logf("%-36s %-5s %-10v %s", r.Name, status, r.Duration, r.Error)
	}
}
