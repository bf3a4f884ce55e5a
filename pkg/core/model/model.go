package model

import "time"

// ServiceFlag labels a flight as requiring ground service or not.
// Flags are assigned per run and may be rewritten by later runs.
type ServiceFlag string

const (
	FlagAtender   ServiceFlag = "ATENDER"
	FlagNoAtender ServiceFlag = "NO_ATENDER"
)

// FlagSource records whether a service flag came from an assignment run
// or a manual override.
type FlagSource string

const (
	SourceAuto   FlagSource = "auto"
	SourceManual FlagSource = "manual"
)

// Dataset owns one uploaded manifest plus its configuration.
type Dataset struct {
	ID        string
	Name      string
	CreatedAt time.Time
	CreatedBy string
}

// Flight is one manifest entry. ScheduledDate and ScheduledTime are kept
// as the raw text the manifest carried; dates are canonicalized on demand.
type Flight struct {
	ID            string
	DatasetID     string
	FlightKey     string
	Category      string
	FlightType    string
	ScheduledDate string
	ScheduledTime string
	CarrierCode   string
	CarrierName   string
	DocCode       string
	FlightNumber  string

	Operated   bool
	OperatedAt *time.Time
	OperatedBy string

	ServiceFlag          ServiceFlag
	ServiceFlagSource    FlagSource
	ServiceFlagUpdatedAt *time.Time
	ServiceFlagUpdatedBy string
	ServiceFlagRunID     string
}

// CategoryTarget is the minimum-service percentage for one category of a
// dataset. At most one row per (dataset, category); last writer wins.
type CategoryTarget struct {
	DatasetID     string
	Category      string
	TargetPercent float64
	UpdatedAt     time.Time
	UpdatedBy     string
}

// DatasetSettings holds the locked work date for a dataset. WorkDate keeps
// the raw text as entered, not necessarily ISO.
type DatasetSettings struct {
	DatasetID string
	WorkDate  string
	UpdatedAt time.Time
	UpdatedBy string
}

// CategorySummary is one line of an assignment run report.
type CategorySummary struct {
	Category      string  `json:"category"`
	Total         int     `json:"total"`
	TargetPercent float64 `json:"targetPercent"`
	RequiredCount int     `json:"requiredCount"`
	AssignedCount int     `json:"assignedCount"`
}

// AssignmentRun is the immutable audit record of one auto-assignment
// execution. WorkDate stores the caller-supplied raw text as it was at run
// time; the seed makes the run's ranking reproducible.
type AssignmentRun struct {
	ID                 string
	DatasetID          string
	WorkDate           string
	Seed               string
	Summary            []CategorySummary
	UpdatedFlightCount int
	CreatedAt          time.Time
	CreatedBy          string
}

// FlightLabel is one flight's assignment outcome within a run.
type FlightLabel struct {
	FlightID string
	Flag     ServiceFlag
}
