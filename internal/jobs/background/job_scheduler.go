package background

import (
	"context"
	"log"
	"sync"
	"time"

	"billmart/internal/jobs"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages the recurring background jobs.
type JobScheduler struct {
	scheduler gocron.Scheduler
	alertSvc  *jobs.StockAlertService
	jobJobs   map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(alertSvc *jobs.StockAlertService) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		alertSvc:  alertSvc,
		jobJobs:   make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	// Low stock scan - every hour
	alertsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.alertSvc.ScheduledLowStockCheck, context.Background()),
		gocron.WithName("low-stock-alerts"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create low stock alerts job: %v", err)
	} else {
		js.jobJobs["low-stock-alerts"] = alertsJob
	}

	log.Printf("Registered %d background jobs", len(js.jobJobs))
}

// JobNames lists the registered job names.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobJobs))
	for name := range js.jobJobs {
		names = append(names, name)
	}
	return names
}
