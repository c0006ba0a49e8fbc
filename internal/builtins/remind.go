// ABOUTME: Reminder pack provides the remind tool backed by the reminder scheduler.
// ABOUTME: Acknowledges immediately; delivery happens later on the scheduler's goroutine.

package builtins

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/2389/remind-gateway/internal/auth"
	"github.com/2389/remind-gateway/internal/packs"
	"github.com/2389/remind-gateway/internal/reminder"
)

// ReminderScheduler is the part of reminder.Scheduler the remind tool needs.
type ReminderScheduler interface {
	ScheduleAfter(message string, delay time.Duration) (reminder.Reminder, error)
}

// ReminderPack creates the reminder pack.
func ReminderPack(s ReminderScheduler) *packs.BuiltinPack {
	h := &reminderHandlers{scheduler: s}
	return &packs.BuiltinPack{
		ID: "builtin:reminder",
		Tools: []*packs.BuiltinTool{
			{
				Definition: &packs.ToolDefinition{
					Name:        "remind",
					Description: "Sets a reminder to notify you after a certain number of minutes.",
					InputSchema: `{"type":"object","properties":{"message":{"type":"string","description":"What to remind you about."},"after_minutes":{"type":"integer","description":"How many minutes from now to remind you."}},"required":["message","after_minutes"]}`,
					Doc: &packs.ToolDoc{
						Description: "Sets a reminder to notify you after a certain number of minutes.",
						UseWhen:     "User says something like 'Remind me to drink water in 10 minutes'.",
						SideEffects: "Sends a reminder message after the specified delay.",
					},
				},
				Handler: h.Remind,
			},
		},
	}
}

// MaxAfterMinutes is the largest delay that fits in a time.Duration.
const MaxAfterMinutes = math.MaxInt64 / int64(time.Minute)

type reminderHandlers struct {
	scheduler ReminderScheduler
}

type remindInput struct {
	Message      string `json:"message"`
	AfterMinutes int64  `json:"after_minutes"`
}

func (h *reminderHandlers) Remind(_ context.Context, _ *auth.Grant, input json.RawMessage) (string, error) {
	var in remindInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", packs.Fail(packs.KindInvalidInput, "invalid input: "+err.Error(), err)
	}
	if in.AfterMinutes < 0 {
		return "", packs.Fail(packs.KindInvalidInput, fmt.Sprintf("after_minutes must not be negative, got %d", in.AfterMinutes), nil)
	}
	if in.AfterMinutes > MaxAfterMinutes {
		return "", packs.Fail(packs.KindInvalidInput, fmt.Sprintf("after_minutes must be at most %d, got %d", MaxAfterMinutes, in.AfterMinutes), nil)
	}

	if _, err := h.scheduler.ScheduleAfter(in.Message, time.Duration(in.AfterMinutes)*time.Minute); err != nil {
		return "", packs.Fail(packs.KindInternal, "Failed to set reminder: "+err.Error(), err)
	}
	return fmt.Sprintf("Reminder set: '%s' in %d minute(s).", in.Message, in.AfterMinutes), nil
}
