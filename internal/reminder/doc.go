// Package reminder schedules one-shot reminders and delivers them when due.
//
// # Scheduling
//
// A Scheduler keeps pending reminders in a min-heap ordered by fire-at
// instant (ties broken by enqueue order) and runs one driver goroutine that
// sleeps until the earliest reminder is due:
//
//	sched := reminder.NewScheduler(reminder.Config{
//		Delivery: reminder.NewLogDelivery("reminder_log.txt", logger),
//		Logger:   logger,
//	})
//	sched.Start(ctx)
//	defer sched.Stop()
//
//	r, err := sched.ScheduleAfter("drink water", 10*time.Minute)
//
// Reminders fire in non-decreasing fire-at order, each exactly once, and are
// discarded afterwards. Identical messages are not deduplicated. There is no
// cancel or reschedule operation.
//
// # Delivery
//
// When a reminder is due the scheduler calls its Delivery. LogDelivery writes
// the message to the structured log and appends a line to the reminder log:
//
//	[2026-10-15 09:30:00.000000] Reminder: drink water
//
// Newlines, carriage returns and backslashes in the message are written as
// \n, \r and \\ so every reminder is exactly one line.
//
// Delivery errors are logged and otherwise dropped: the call that scheduled
// the reminder returned long before.
//
// Pending reminders live only in memory and are lost on shutdown.
package reminder
