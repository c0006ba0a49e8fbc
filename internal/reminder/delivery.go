// ABOUTME: Default reminder delivery: log the message and append it to a log file
// ABOUTME: Each delivered reminder appends one "[<timestamp>] Reminder: <message>" line

package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// DefaultLogPath is the reminder log file, relative to the working directory.
const DefaultLogPath = "reminder_log.txt"

// TimestampLayout is the layout of the timestamp prefix in the reminder log.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// lineEscaper keeps each reminder on a single log line.
var lineEscaper = strings.NewReplacer("\\", `\\`, "\r", `\r`, "\n", `\n`)

// LogDelivery emits reminders to the operational log and an append-only file.
type LogDelivery struct {
	path   string
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
}

// NewLogDelivery creates a LogDelivery writing to path (DefaultLogPath if empty).
func NewLogDelivery(path string, logger *slog.Logger) *LogDelivery {
	if path == "" {
		path = DefaultLogPath
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LogDelivery{path: path, logger: logger, now: time.Now}
}

// Path returns the file reminders are appended to.
func (d *LogDelivery) Path() string {
	return d.path
}

// Deliver logs the reminder and appends it to the log file.
func (d *LogDelivery) Deliver(_ context.Context, r Reminder) error {
	d.logger.Info("[REMINDER]", "message", r.Message, "reminder_id", r.ID)

	d.mu.Lock()
	defer d.mu.Unlock()

	f, err := os.OpenFile(d.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening reminder log: %w", err)
	}

	line := fmt.Sprintf("[%s] Reminder: %s\n", d.now().Format(TimestampLayout), lineEscaper.Replace(r.Message))
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing reminder log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing reminder log: %w", err)
	}
	return nil
}
