package jobs

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

const (
	JobBackendScan    = "backend-scan"
	JobGalleryRefresh = "gallery-refresh"
)

// RegisterAll registers the built-in jobs with the app's job manager.
func RegisterAll(app JobContext) {
	jm := app.JobManager()
	jm.Register(JobBackendScan, "Backend Scan", runBackendScan)
	jm.Register(JobGalleryRefresh, "Gallery Refresh", runGalleryRefresh)
}

// StartJobs starts the background job scheduler.
func StartJobs(app JobContext) {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	startBackendScanJob(s, app)

	log.Println("Starting background job scheduler...")
	s.StartAsync()
}

func startBackendScanJob(s *gocron.Scheduler, app JobContext) {
	interval := app.Config().ScanInterval
	if interval == 0 {
		log.Println("Backend scan interval is 0, scheduled scan is disabled.")
		return
	}

	log.Printf("Scheduling job: '%s' to run every %d minutes.", JobBackendScan, interval)

	_, err := s.Every(interval).Minutes().Do(func() {
		log.Println("Scheduler is triggering job:", JobBackendScan)
		// Submit the job to the manager instead of running it directly.
		// This prevents conflicts with manually triggered jobs.
		err := app.JobManager().RunJob(JobBackendScan, app)
		if err != nil {
			log.Printf("Scheduled job '%s' could not start: %v", JobBackendScan, err)
		}
	})
	if err != nil {
		log.Printf("Error scheduling '%s' job: %v", JobBackendScan, err)
	}
}

// runBackendScan asks the backend to re-index its image folders, then pulls
// the refreshed listing into the gallery.
func runBackendScan(app JobContext) {
	ctx := context.Background()
	if err := app.Backend().TriggerScan(ctx); err != nil {
		log.Printf("Backend scan failed: %v", err)
		return
	}
	if err := app.Gallery().Refresh(ctx); err != nil {
		log.Printf("Gallery refresh after scan failed: %v", err)
	}
}

// runGalleryRefresh re-fetches the current gallery listing without asking
// the backend to rescan its folders.
func runGalleryRefresh(app JobContext) {
	if err := app.Gallery().Refresh(context.Background()); err != nil {
		log.Printf("Gallery refresh failed: %v", err)
	}
}
