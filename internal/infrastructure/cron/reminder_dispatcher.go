package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"habit-tracker/internal/domain/service"

	"github.com/robfig/cron/v3"
)

// ReminderDispatcher periodically pushes reminders for due habits through
// the messaging gateway. Runs never overlap: a tick that fires while the
// previous run is still in progress is skipped.
type ReminderDispatcher struct {
	reminderService service.ReminderService
	cron            *cron.Cron
	interval        time.Duration
}

// NewReminderDispatcher creates a new reminder dispatcher
func NewReminderDispatcher(reminderService service.ReminderService, interval time.Duration) *ReminderDispatcher {
	logger := cron.PrintfLogger(log.Default())

	return &ReminderDispatcher{
		reminderService: reminderService,
		cron:            cron.New(cron.WithChain(cron.SkipIfStillRunning(logger))),
		interval:        interval,
	}
}

// Start starts the reminder dispatcher
func (d *ReminderDispatcher) Start() error {
	cronExpr := fmt.Sprintf("@every %s", d.interval.String())

	log.Printf("Starting reminder dispatcher with interval: %s", d.interval)

	_, err := d.cron.AddFunc(cronExpr, func() {
		d.dispatch()
	})

	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	d.cron.Start()
	log.Println("Reminder dispatcher started successfully")

	return nil
}

// Stop stops the reminder dispatcher and waits for the current run
func (d *ReminderDispatcher) Stop() {
	log.Println("Stopping reminder dispatcher...")
	ctx := d.cron.Stop()
	<-ctx.Done()
	log.Println("Reminder dispatcher stopped")
}

// dispatch runs one reminder batch
func (d *ReminderDispatcher) dispatch() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	sent, err := d.reminderService.DispatchDue(ctx)
	if err != nil {
		log.Printf("Error dispatching reminders: %v", err)
		return
	}

	if sent > 0 {
		log.Printf("Reminder dispatch completed, %d sent", sent)
	}
}
