package driven

import (
	"context"
	"time"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
)

// TenderFetcher talks to the upstream tender API. Implementations own
// rate limiting and retry policy; callers only see classified outcomes.
type TenderFetcher interface {
	// DailyListing returns the day's active tenders as normalised records
	// without detail fields. Transport failures are logged by the
	// implementation and yield an empty slice: a missed day must not
	// abort a range run.
	DailyListing(ctx context.Context, date time.Time) []domain.TenderRecord

	// Detail fetches the full record for one tender. The record is nil
	// unless the status is domain.FetchOK.
	Detail(ctx context.Context, code string) (*domain.TenderRecord, domain.FetchStatus)
}
