package seed

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/chironhq/chiron/internal/domain/model"
	"github.com/chironhq/chiron/pkg/logger"
)

// Delay between seeding and matching so queued profile events get
// processed by the workers.
const processingDelay = 2 * time.Second

// Run seeds the service with generated participants, submits profile events
// and doubts, runs a bulk match and verifies the resulting assignment.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting chiron seed run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("mentees", config.NumMentees),
		logger.Int("mentors", config.NumMentors),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate participants
	mentors := generateMentors(ctx, config, stats)
	mentees := generateMentees(ctx, config, stats)

	// Step 3: Seed mentors, then their profile events, then mentees
	if err := seedMentors(ctx, config, mentors, stats); err != nil {
		return fmt.Errorf("mentor seeding failed: %w", err)
	}
	submitProfileEvents(ctx, config, mentors, stats)
	if err := seedMentees(ctx, config, mentees, stats); err != nil {
		return fmt.Errorf("mentee seeding failed: %w", err)
	}

	// Step 4: Submit doubts so breakdowns and per-mentee matches exist
	submitDoubts(ctx, config, mentees, stats)

	// Step 5: Wait for queued profile events to be processed
	logger.Get().Info(ctx, "waiting for profile events to be processed")
	time.Sleep(processingDelay)

	// Step 6: Run the bulk match
	matches, err := runBulkMatch(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("bulk match failed: %w", err)
	}

	// Step 7: Verify the assignment
	if err := verifyAssignment(ctx, matches, mentors); err != nil {
		return fmt.Errorf("assignment verification failed: %w", err)
	}

	// Step 8: Fetch service stats
	logServiceStats(ctx, config)

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "seed run completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// seedMentors PUTs every generated mentor to the service.
func seedMentors(ctx context.Context, config *Config, mentors []model.Mentor, stats *Stats) error {
	logger.Get().Info(ctx, "seeding mentors", logger.Int("count", len(mentors)))

	jobs := make([]upsertJob, len(mentors))
	for i, mentor := range mentors {
		jobs[i] = upsertJob{
			url:  config.BaseURL + "/mentors/" + mentor.ID,
			body: mentor,
		}
	}
	successful, failed := submitUpserts(ctx, config, jobs)
	stats.MentorsSeeded = successful
	stats.SeedsFailed += failed
	if successful == 0 && len(mentors) > 0 {
		return fmt.Errorf("no mentors were accepted by the service")
	}
	return nil
}

// seedMentees PUTs every generated mentee to the service.
func seedMentees(ctx context.Context, config *Config, mentees []model.Mentee, stats *Stats) error {
	logger.Get().Info(ctx, "seeding mentees", logger.Int("count", len(mentees)))

	jobs := make([]upsertJob, len(mentees))
	for i, mentee := range mentees {
		jobs[i] = upsertJob{
			url:  config.BaseURL + "/mentees/" + mentee.ID,
			body: mentee,
		}
	}
	successful, failed := submitUpserts(ctx, config, jobs)
	stats.MenteesSeeded = successful
	stats.SeedsFailed += failed
	if successful == 0 && len(mentees) > 0 {
		return fmt.Errorf("no mentees were accepted by the service")
	}
	return nil
}

// submitProfileEvents posts one profile event per mentor so the worker pool
// derives subject breakdowns from job role, skills and education.
func submitProfileEvents(ctx context.Context, config *Config, mentors []model.Mentor, stats *Stats) {
	logger.Get().Info(ctx, "submitting profile events", logger.Int("count", len(mentors)))

	client := newHTTPClient(config.Timeout)

	var failed int64
	jobChan := make(chan model.Mentor, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for mentor := range jobChan {
				body := map[string]interface{}{
					"event_id":  uuid.New().String(),
					"job_role":  mentor.JobRole,
					"skills":    mentor.Skills,
					"education": mentor.Education,
				}
				url := config.BaseURL + "/mentors/" + mentor.ID + "/profile-events"
				resp, err := client.Post(ctx, url, body)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					continue
				}
				_, _ = readResponseBody(resp)
				if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}

	for _, mentor := range mentors {
		select {
		case <-ctx.Done():
		case jobChan <- mentor:
		}
	}
	close(jobChan)
	wg.Wait()

	if n := atomic.LoadInt64(&failed); n > 0 {
		logger.Get().Warn(ctx, "some profile events were not accepted", logger.Int("failed", int(n)))
		stats.SeedsFailed += int(n)
	}
}

// submitDoubts posts one doubt per mentee and records duplicate acks.
func submitDoubts(ctx context.Context, config *Config, mentees []model.Mentee, stats *Stats) {
	logger.Get().Info(ctx, "submitting doubts", logger.Int("count", len(mentees)))

	client := newHTTPClient(config.Timeout)

	var (
		submitted int64
		duplicate int64
		failed    int64
	)

	jobChan := make(chan model.Mentee, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for mentee := range jobChan {
				body := map[string]interface{}{
					"doubt_id":  uuid.New().String(),
					"mentee_id": mentee.ID,
					"doubt":     randomDoubt(),
				}
				resp, err := client.Post(ctx, config.BaseURL+"/doubts", body)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					continue
				}
				payload, err := readResponseBody(resp)
				if err != nil || resp.StatusCode != http.StatusOK {
					atomic.AddInt64(&failed, 1)
					continue
				}

				var ack AckResponse
				if err := unmarshalJSON(payload, &ack); err == nil && ack.Duplicate {
					atomic.AddInt64(&duplicate, 1)
					continue
				}
				atomic.AddInt64(&submitted, 1)
			}
		}()
	}

	for _, mentee := range mentees {
		select {
		case <-ctx.Done():
		case jobChan <- mentee:
		}
	}
	close(jobChan)
	wg.Wait()

	stats.DoubtsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.DoubtsDuplicate = int(atomic.LoadInt64(&duplicate))
	if n := atomic.LoadInt64(&failed); n > 0 {
		logger.Get().Warn(ctx, "some doubts were not accepted", logger.Int("failed", int(n)))
		stats.SeedsFailed += int(n)
	}
}

// runBulkMatch triggers a service wide matching round.
func runBulkMatch(ctx context.Context, config *Config, stats *Stats) ([]model.Match, error) {
	logger.Get().Info(ctx, "running bulk match")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Post(ctx, config.BaseURL+"/match/bulk", nil)
	if err != nil {
		return nil, fmt.Errorf("bulk match request failed: %w", err)
	}
	payload, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read bulk match response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bulk match failed with status %d: %s", resp.StatusCode, string(payload))
	}

	var result BulkMatchResponse
	if err := unmarshalJSON(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to decode bulk match response: %w", err)
	}

	stats.MatchesProduced = result.Count
	logger.Get().Info(ctx, "bulk match completed", logger.Int("matches", result.Count))
	return result.Matches, nil
}

// logServiceStats fetches and logs the /stats payload.
func logServiceStats(ctx context.Context, config *Config) {
	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/stats")
	if err != nil {
		logger.Get().Warn(ctx, "failed to fetch service stats", logger.Error(err))
		return
	}
	payload, err := readResponseBody(resp)
	if err != nil || resp.StatusCode != http.StatusOK {
		logger.Get().Warn(ctx, "failed to read service stats")
		return
	}
	logger.Get().Info(ctx, "service stats", logger.String("stats", string(payload)))
}

// displayFinalStats prints the final seed run statistics.
func displayFinalStats(stats *Stats) {
	var matchRate float64
	if stats.MenteesSeeded > 0 {
		matchRate = float64(stats.MatchesProduced) / float64(stats.MenteesSeeded) * 100.0
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("menteesGenerated", stats.MenteesGenerated),
		logger.Int("mentorsGenerated", stats.MentorsGenerated),
		logger.Int("menteesSeeded", stats.MenteesSeeded),
		logger.Int("mentorsSeeded", stats.MentorsSeeded),
		logger.Int("doubtsSubmitted", stats.DoubtsSubmitted),
		logger.Int("doubtsDuplicate", stats.DoubtsDuplicate),
		logger.Int("seedsFailed", stats.SeedsFailed),
		logger.Int("matchesProduced", stats.MatchesProduced),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("matchRate", matchRate))
}
