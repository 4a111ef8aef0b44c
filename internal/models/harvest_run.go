package models

import (
	"fmt"
	"time"
)

// Valid terminal and in-flight statuses for a harvest run.
var harvestRunStatuses = map[string]bool{
	"running":   true,
	"completed": true,
	"cancelled": true,
	"errored":   true,
}

// HarvestRun is a persistent record of one harvest: what was asked for, what
// was delivered, and where the export landed.
//
// Implements [Model]. Fields are unexported; mutation goes through setters so
// repositories control identity and timestamps.
type HarvestRun struct {
	id         string
	sequence   int
	target     int
	found      int
	skipped    int
	status     string
	reason     string
	format     string
	outputPath string
	startedAt  *time.Time
	finishedAt *time.Time
	createdAt  time.Time
	updatedAt  time.Time
	deletedAt  *time.Time
}

// NewHarvestRun creates a harvest run in the running state with fresh timestamps.
func NewHarvestRun(sequence, target int, format string) *HarvestRun {
	now := time.Now()
	return &HarvestRun{
		sequence:  sequence,
		target:    target,
		format:    format,
		status:    "running",
		createdAt: now,
		updatedAt: now,
	}
}

func (h *HarvestRun) ID() string             { return h.id }
func (h *HarvestRun) Sequence() int          { return h.sequence }
func (h *HarvestRun) Target() int            { return h.target }
func (h *HarvestRun) Found() int             { return h.found }
func (h *HarvestRun) Skipped() int           { return h.skipped }
func (h *HarvestRun) Status() string         { return h.status }
func (h *HarvestRun) Reason() string         { return h.reason }
func (h *HarvestRun) Format() string         { return h.format }
func (h *HarvestRun) OutputPath() string     { return h.outputPath }
func (h *HarvestRun) StartedAt() *time.Time  { return h.startedAt }
func (h *HarvestRun) FinishedAt() *time.Time { return h.finishedAt }
func (h *HarvestRun) CreatedAt() time.Time   { return h.createdAt }
func (h *HarvestRun) UpdatedAt() time.Time   { return h.updatedAt }
func (h *HarvestRun) DeletedAt() *time.Time  { return h.deletedAt }

func (h *HarvestRun) SetID(id string)            { h.id = id }
func (h *HarvestRun) SetSequence(sequence int)   { h.sequence = sequence }
func (h *HarvestRun) SetFound(found int)         { h.found = found }
func (h *HarvestRun) SetSkipped(skipped int)     { h.skipped = skipped }
func (h *HarvestRun) SetStatus(status string)    { h.status = status }
func (h *HarvestRun) SetReason(reason string)    { h.reason = reason }
func (h *HarvestRun) SetOutputPath(path string)  { h.outputPath = path }
func (h *HarvestRun) SetStartedAt(t *time.Time)  { h.startedAt = t }
func (h *HarvestRun) SetFinishedAt(t *time.Time) { h.finishedAt = t }
func (h *HarvestRun) SetUpdatedAt(t time.Time)   { h.updatedAt = t }
func (h *HarvestRun) SetDeletedAt(t *time.Time)  { h.deletedAt = t }
func (h *HarvestRun) SetCreatedAt(t time.Time)   { h.createdAt = t }

// Validate checks that the run's data is internally consistent.
func (h *HarvestRun) Validate() error {
	if h.target < 1 {
		return fmt.Errorf("harvest run target must be at least 1, got %d", h.target)
	}
	if h.format == "" {
		return fmt.Errorf("harvest run format is required")
	}
	if !harvestRunStatuses[h.status] {
		return fmt.Errorf("invalid harvest run status: %q", h.status)
	}
	if h.found < 0 || h.skipped < 0 {
		return fmt.Errorf("harvest run counts cannot be negative")
	}
	return nil
}
