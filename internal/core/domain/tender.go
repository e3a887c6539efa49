package domain

import (
	"fmt"
	"time"
)

// Stage is the workflow bucket a tender sits in.
type Stage string

const (
	// StageCandidate marks a tender the scoring pass considers worth a look.
	StageCandidate Stage = "candidate"

	// StageFollowUp marks a tender a user decided to track.
	StageFollowUp Stage = "follow_up"

	// StageBid marks a tender an offer was submitted for.
	StageBid Stage = "bid"

	// StageIgnored marks a tender that scored below the threshold or was
	// discarded by a user.
	StageIgnored Stage = "ignored"
)

// Valid reports whether s is one of the known workflow stages.
func (s Stage) Valid() bool {
	switch s {
	case StageCandidate, StageFollowUp, StageBid, StageIgnored:
		return true
	}
	return false
}

// ParseStage converts a string into a Stage.
func ParseStage(s string) (Stage, error) {
	stage := Stage(s)
	if !stage.Valid() {
		return "", fmt.Errorf("%w: unknown stage %q", ErrInvalidInput, s)
	}
	return stage, nil
}

// Tender is a stored public procurement opportunity.
// Code is the upstream external code and the stable identity of the row;
// everything else may be refreshed by later ingestions.
type Tender struct {
	ID           int64
	Code         string
	Name         string
	Description  string
	ProductText  string
	Score        int
	ScoreReasons string
	Stage        Stage
	StateCode    *int
	OrgCode      *string

	PublishedAt *time.Time
	StartsAt    *time.Time
	ClosesAt    *time.Time
	AwardedAt   *time.Time

	// HasDetail distinguishes a bare daily-listing entry from a fully
	// fetched record. While false, Description, ProductText and OrgCode
	// must not be trusted.
	HasDetail bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TenderDetail is a tender joined with its organization and state rows,
// as consumed by the detail view.
type TenderDetail struct {
	Tender

	OrgName          string
	OrgScore         int
	StateDescription string
}

// TenderRecord is the normalised upsert input produced by the transformer:
// one tender as seen by a single API response, plus the metadata the
// orchestrator stamps on after scoring.
type TenderRecord struct {
	Code      string
	Name      string
	StateCode *int

	// StateName is the API-supplied state description, used as a fallback
	// when the state code is not in the official dictionary.
	StateName string

	OrgCode string
	OrgName string

	Description string
	ProductText string

	PublishedAt *time.Time
	StartsAt    *time.Time
	ClosesAt    *time.Time
	AwardedAt   *time.Time

	// HasDetail is true only when the record came from a detail fetch.
	HasDetail bool

	Score        int
	ScoreReasons string
	Stage        Stage
}
