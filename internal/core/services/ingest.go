package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
	"github.com/atacama-labs/tenderwatch/internal/core/ports/driven"
	"github.com/atacama-labs/tenderwatch/internal/core/ports/driving"
	"github.com/atacama-labs/tenderwatch/internal/logger"
)

// Ensure IngestOrchestrator implements the interface.
var _ driving.Ingestor = (*IngestOrchestrator)(nil)

// Evaluator is the scoring surface the orchestrator needs. Satisfied by
// *Scorer; narrowed to an interface so tests can substitute it.
type Evaluator interface {
	EvaluateTitle(text string) (int, []string)
	EvaluateDetail(description, productText string) (int, []string)
}

// IngestConfig tunes the range workflow.
type IngestConfig struct {
	// ScoreThreshold gates the detail fetch: a title scoring at or below
	// it is recorded from the listing alone. The same threshold decides
	// candidate vs ignored for the combined score.
	ScoreThreshold int

	// DayPause is the pause between consecutive days of a range run.
	DayPause time.Duration
}

// DefaultIngestConfig returns the stock threshold 0 / 5 s pause tuning.
func DefaultIngestConfig() IngestConfig {
	return IngestConfig{ScoreThreshold: 0, DayPause: 5 * time.Second}
}

// IngestOrchestrator composes the API client, scoring engine and
// persistence layer into the manual and ranged ingestion workflows. It
// holds no persistent state of its own; the organization-bias lookup is a
// transient cache scoped to one run.
type IngestOrchestrator struct {
	fetcher driven.TenderFetcher
	tenders driven.TenderStore
	queries driven.QueryRepository
	orgs    driven.OrganizationStore
	runs    driven.RunStore
	scorer  Evaluator
	cfg     IngestConfig

	mu      sync.Mutex
	running bool
	orgBias map[string]domain.Organization
}

// NewIngestOrchestrator wires the pipeline. The run store may be nil when
// run history is not wanted.
func NewIngestOrchestrator(
	fetcher driven.TenderFetcher,
	tenders driven.TenderStore,
	queries driven.QueryRepository,
	orgs driven.OrganizationStore,
	runs driven.RunStore,
	scorer Evaluator,
	cfg IngestConfig,
) *IngestOrchestrator {
	if cfg.DayPause <= 0 {
		cfg.DayPause = 5 * time.Second
	}
	return &IngestOrchestrator{
		fetcher: fetcher,
		tenders: tenders,
		queries: queries,
		orgs:    orgs,
		runs:    runs,
		scorer:  scorer,
		cfg:     cfg,
	}
}

// ProcessManual fetches, scores and stores one tender, then moves it to
// the target stage. The stage move only happens once persistence
// succeeded.
func (o *IngestOrchestrator) ProcessManual(
	ctx context.Context,
	code string,
	target domain.Stage,
	progress driving.ProgressFunc,
) (bool, string) {
	if !target.Valid() {
		return false, fmt.Sprintf("unknown stage %q", target)
	}

	emit(progress, "Consulting the Mercado Público API...")
	rec, status := o.fetcher.Detail(ctx, code)
	if status != domain.FetchOK || rec == nil {
		return false, fmt.Sprintf("tender %s could not be retrieved (%s)", code, status)
	}

	emit(progress, "Evaluating business rules...")
	o.ensureBiasCache(ctx)

	titleScore, reasons := o.scorer.EvaluateTitle(rec.Name)
	total := titleScore
	if org, ok := o.lookupBias(rec.OrgCode); ok && org.Score != 0 {
		total += org.Score
		reasons = append(reasons, biasReason(org))
	}
	detailScore, detailReasons := o.scorer.EvaluateDetail(rec.Description, rec.ProductText)
	total += detailScore
	reasons = append(reasons, detailReasons...)

	rec.Score = total
	rec.ScoreReasons = strings.Join(reasons, "\n")
	rec.Stage = target

	emit(progress, "Saving to the database...")
	if err := o.tenders.Upsert(ctx, *rec); err != nil {
		logger.Errorf("manual upsert %s: %v", code, err)
		return false, fmt.Sprintf("tender %s could not be stored: %v", code, err)
	}

	if err := o.queries.MoveStage(ctx, code, target); err != nil {
		logger.Errorf("manual stage move %s -> %s: %v", code, target, err)
		return false, fmt.Sprintf("tender %s stored but the stage move failed: %v", code, err)
	}

	return true, fmt.Sprintf("tender %s processed successfully", code)
}

// ProcessDateRange ingests every day in the inclusive range. A bad day or
// item never aborts the range; cancellation is cooperative via ctx,
// polled before each day and each item. At most one range run is in
// flight at a time; a second call returns domain.ErrIngestRunning.
// Otherwise the returned error is non-nil only when the context was
// cancelled.
func (o *IngestOrchestrator) ProcessDateRange(
	ctx context.Context,
	start, end time.Time,
	progress driving.ProgressFunc,
) (domain.IngestStats, error) {
	var stats domain.IngestStats

	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return stats, fmt.Errorf("%w: range end before start", domain.ErrInvalidInput)
	}
	days := int(end.Sub(start).Hours()/24) + 1

	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return stats, domain.ErrIngestRunning
	}
	o.running = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
	}()

	run := &domain.IngestRun{ID: uuid.NewString(), StartedAt: time.Now()}
	o.refreshBiasCache(ctx)

	emit(progress, fmt.Sprintf("Starting ingestion over %d day(s).", days))

	for i := 0; i < days; i++ {
		if ctx.Err() != nil {
			emit(progress, "Run interrupted by the caller.")
			break
		}

		day := start.AddDate(0, 0, i)
		dayLabel := day.Format("2006-01-02")
		emit(progress, fmt.Sprintf("Day %d/%d (%s): requesting listing...", i+1, days, dayLabel))

		listing := o.fetcher.DailyListing(ctx, day)
		if len(listing) == 0 {
			emit(progress, fmt.Sprintf("No tenders recorded for %s.", dayLabel))
			continue
		}
		stats.Listings += len(listing)
		emit(progress, fmt.Sprintf("Detected %d tenders, applying title filter.", len(listing)))

		batch, dayStats := o.processDay(ctx, listing, progress)
		stats.Add(dayStats)

		orgs, states := collectRefs(batch)
		if err := o.tenders.UpsertBatch(ctx, batch, orgs, states); err != nil {
			logger.Errorf("day batch %s: %v", dayLabel, err)
			emit(progress, fmt.Sprintf("Persistence failed for %s, day rolled back: %v", dayLabel, err))
			stats.Errors++
		} else {
			emit(progress, fmt.Sprintf(
				"Summary %s: %d details fetched, %d omitted, %d pending.",
				dayLabel, dayStats.DetailsFetched, dayStats.Omitted, dayStats.DetailsPending,
			))
		}

		if i < days-1 && ctx.Err() == nil {
			emit(progress, fmt.Sprintf("Pausing %s before the next day...", o.cfg.DayPause))
			select {
			case <-ctx.Done():
			case <-time.After(o.cfg.DayPause):
			}
		}
	}

	run.EndedAt = time.Now()
	run.Stats = stats
	run.Success = ctx.Err() == nil && !stats.Failed()
	if ctx.Err() != nil {
		run.Error = ctx.Err().Error()
	} else if stats.Failed() {
		run.Error = fmt.Sprintf("%d errors, %d pending details", stats.Errors, stats.DetailsPending)
	}
	o.recordRun(ctx, run)

	return stats, ctx.Err()
}

// processDay scores one day's listing and assembles the batch to persist.
// Items whose title scores at or below the threshold skip the detail
// fetch entirely; everything else is fetched, deep-scored and staged.
func (o *IngestOrchestrator) processDay(
	ctx context.Context,
	listing []domain.TenderRecord,
	progress driving.ProgressFunc,
) ([]domain.TenderRecord, domain.IngestStats) {
	var stats domain.IngestStats
	batch := make([]domain.TenderRecord, 0, len(listing))

	for idx, rec := range listing {
		if ctx.Err() != nil {
			break
		}
		if (idx+1)%20 == 0 {
			emit(progress, fmt.Sprintf("Analysing item %d of %d...", idx+1, len(listing)))
		}

		titleScore, titleReasons := o.scorer.EvaluateTitle(rec.Name)
		rec.Score = titleScore
		rec.ScoreReasons = strings.Join(titleReasons, "\n")
		rec.Stage = domain.StageIgnored

		if titleScore <= o.cfg.ScoreThreshold {
			stats.Omitted++
			batch = append(batch, rec)
			continue
		}

		emit(progress, fmt.Sprintf("Fetching detail %s (title score %d)...", rec.Code, titleScore))
		det, status := o.fetcher.Detail(ctx, rec.Code)
		if status != domain.FetchOK || det == nil {
			switch {
			case status.Pending():
				stats.DetailsPending++
				emit(progress, fmt.Sprintf("Detail %s pending (%s), will retry on a later run.", rec.Code, status))
			case status == domain.FetchNotFound:
				// Permanent; the listing entry is all we will ever have.
			default:
				stats.Errors++
				logger.Warnf("detail %s: %s", rec.Code, status)
			}
			batch = append(batch, rec)
			continue
		}

		stats.DetailsFetched++
		total := titleScore
		reasons := titleReasons
		if org, ok := o.lookupBias(det.OrgCode); ok && org.Score != 0 {
			total += org.Score
			reasons = append(reasons, biasReason(org))
		}
		detailScore, detailReasons := o.scorer.EvaluateDetail(det.Description, det.ProductText)
		total += detailScore
		reasons = append(reasons, detailReasons...)

		det.Score = total
		det.ScoreReasons = strings.Join(reasons, "\n")
		det.Stage = domain.StageIgnored
		if total > o.cfg.ScoreThreshold {
			det.Stage = domain.StageCandidate
		}
		batch = append(batch, *det)
	}

	return batch, stats
}

// refreshBiasCache reloads the organization-bias lookup for a new run.
// A load failure degrades to text-only scoring rather than aborting.
func (o *IngestOrchestrator) refreshBiasCache(ctx context.Context) {
	m, err := o.orgs.BiasMap(ctx)
	if err != nil {
		logger.Errorf("loading organization bias map: %v", err)
		m = map[string]domain.Organization{}
	}
	o.mu.Lock()
	o.orgBias = m
	o.mu.Unlock()
}

// ensureBiasCache loads the bias lookup if no run has populated it yet.
func (o *IngestOrchestrator) ensureBiasCache(ctx context.Context) {
	o.mu.Lock()
	loaded := o.orgBias != nil
	o.mu.Unlock()
	if !loaded {
		o.refreshBiasCache(ctx)
	}
}

func (o *IngestOrchestrator) lookupBias(code string) (domain.Organization, bool) {
	if code == "" {
		return domain.Organization{}, false
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	org, ok := o.orgBias[code]
	return org, ok
}

func (o *IngestOrchestrator) recordRun(ctx context.Context, run *domain.IngestRun) {
	if o.runs == nil {
		return
	}
	if err := o.runs.Record(context.WithoutCancel(ctx), run); err != nil {
		logger.Errorf("recording ingest run %s: %v", run.ID, err)
	}
}

func biasReason(org domain.Organization) string {
	name := org.Name
	if name == "" {
		name = org.Code
	}
	return fmt.Sprintf("organization bias %s (%+d)", name, org.Score)
}

// collectRefs gathers the organizations and states a batch references,
// deduplicated, so the store can flush them once before the tender loop.
func collectRefs(batch []domain.TenderRecord) ([]domain.Organization, []domain.State) {
	orgSeen := map[string]bool{}
	stateSeen := map[int]bool{}
	var orgs []domain.Organization
	var states []domain.State

	for _, rec := range batch {
		if rec.HasDetail && rec.OrgCode != "" && !orgSeen[rec.OrgCode] {
			orgSeen[rec.OrgCode] = true
			orgs = append(orgs, domain.Organization{Code: rec.OrgCode, Name: rec.OrgName})
		}
		if rec.StateCode != nil && !stateSeen[*rec.StateCode] {
			stateSeen[*rec.StateCode] = true
			states = append(states, domain.State{
				Code:        *rec.StateCode,
				Description: domain.StateDescription(*rec.StateCode, rec.StateName),
			})
		}
	}
	return orgs, states
}

func emit(progress driving.ProgressFunc, message string) {
	if progress != nil {
		progress(message)
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
