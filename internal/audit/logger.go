//
//
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Moha1423/WIFI-drone/internal/auth"
	"github.com/Moha1423/WIFI-drone/internal/config"
)

// FileName is the audit log file inside the audit directory.
const FileName = "audit.jsonl"

// Entry is a single audit record.
type Entry struct {
	Timestamp time.Time `json:"ts"`
	Subject   string    `json:"subject"`
	Action    string    `json:"action"`
	Outcome   string    `json:"outcome"`
	Code      string    `json:"code"`
	LatencyMs float64   `json:"latencyMs"`
}

// queueSize bounds entries waiting for the writer.
const queueSize = 256

// sink is the rotated file behind the logger.
type sink interface {
	Write(p []byte) (int, error)
	Rotate() error
	Close() error
}

type item struct {
	entry   Entry
	flushed chan struct{}
}

// Logger appends audit entries to a rotated JSONL file. A background
// goroutine does the writing; when its queue is full the entry is dropped
// and counted.
type Logger struct {
	filePath string
	out      sink

	mu      sync.RWMutex
	queue   chan item
	closed  bool
	done    chan struct{}
	dropped atomic.Int64
}

// NewLogger creates the audit directory if needed and opens the log.
func NewLogger(cfg config.AuditConfig) (*Logger, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	filePath := filepath.Join(cfg.Dir, FileName)
	return newLogger(&lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}, filePath, queueSize), nil
}

func newLogger(out sink, filePath string, size int) *Logger {
	l := &Logger{
		filePath: filePath,
		out:      out,
		queue:    make(chan item, size),
		done:     make(chan struct{}),
	}
	go l.run()
	return l
}

// LogAction queues one record. An empty subject is taken from the token
// claims in ctx, or recorded as "system".
func (l *Logger) LogAction(ctx context.Context, action, subject, result string, latency time.Duration) {
	if subject == "" {
		subject = subjectFromContext(ctx)
	}

	l.enqueue(item{entry: Entry{
		Timestamp: time.Now().UTC(),
		Subject:   subject,
		Action:    action,
		Outcome:   result,
		Code:      codeFromResult(result),
		LatencyMs: float64(latency.Microseconds()) / 1000,
	}})
}

func (l *Logger) enqueue(it item) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return false
	}
	select {
	case l.queue <- it:
		return true
	default:
		if n := l.dropped.Add(1); n == 1 || n%100 == 0 {
			fmt.Fprintf(os.Stderr, "audit: queue full, %d entries dropped\n", n)
		}
		return false
	}
}

func (l *Logger) run() {
	defer close(l.done)
	for it := range l.queue {
		if it.flushed != nil {
			close(it.flushed)
			continue
		}
		l.writeEntry(it.entry)
	}
}

func (l *Logger) writeEntry(entry Entry) {
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "audit: marshal entry: %v\n", err)
		return
	}
	if _, err := l.out.Write(append(data, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "audit: write entry: %v\n", err)
	}
}

// Flush waits until every entry queued before the call is written.
func (l *Logger) Flush() {
	flushed := make(chan struct{})

	l.mu.RLock()
	if l.closed {
		l.mu.RUnlock()
		return
	}
	// Blocks if the queue is full; Flush is never called on the control loop.
	l.queue <- item{flushed: flushed}
	l.mu.RUnlock()

	<-flushed
}

// Dropped returns how many entries were discarded because the queue was full.
func (l *Logger) Dropped() int64 {
	return l.dropped.Load()
}

func subjectFromContext(ctx context.Context) string {
	if claims, ok := ctx.Value(auth.ClaimsKey).(*auth.Claims); ok && claims.Subject != "" {
		return claims.Subject
	}
	return "system"
}

// codeFromResult maps outcomes to normalized codes.
func codeFromResult(result string) string {
	switch result {
	case "SUCCESS", "DISARMED":
		return "SUCCESS"
	case "INVALID_RANGE", "UNAVAILABLE", "ERROR":
		return result
	default:
		return "UNKNOWN"
	}
}

// Rotate writes pending entries, closes the current file and starts a new one.
func (l *Logger) Rotate() error {
	l.Flush()
	return l.out.Rotate()
}

// Close writes pending entries and closes the log file. Later entries are
// discarded.
func (l *Logger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	<-l.done
	return l.out.Close()
}

// GetFilePath returns the path of the active log file.
func (l *Logger) GetFilePath() string {
	return l.filePath
}
