// Package scraper defines the core types and contracts shared across the
// service's subsystems.
package scraper

import (
	"errors"
	"fmt"
)

// JobStatus represents the lifecycle state of a scrape job. Progress states
// carry a running counter and are built with ProcessingStatus.
type JobStatus string

// Job status values held by the registry.
const (
	JobStatusStarting  JobStatus = "starting"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// ProcessingStatus formats the transient progress status for the done-th of
// total completions. done is 1-based.
func ProcessingStatus(done, total int) JobStatus {
	return JobStatus(fmt.Sprintf("processing %d/%d", done, total))
}

// Job is the registry-owned record for one scrape request. Result stays nil
// until the terminal transition.
type Job struct {
	ID     string    `json:"id"`
	Status JobStatus `json:"status"`
	Result *string   `json:"result"`
}

// Sentinel field values substituted when an extractor finds nothing. Missing
// fields are not errors.
const (
	NotAvailable     = "Not available"
	NotFound         = "Not found"
	MissingThumbnail = "not-found.jpg"
	UntitledItem     = "No Title"
)

// ErrRenderTimeout reports that an expected element never materialized within
// the configured wait. Fatal during enumeration, item-level during a detail
// fetch.
var ErrRenderTimeout = errors.New("render wait timed out")

// ListingItem is one candidate enumerated from the listing page. Immutable
// once created; input to exactly one detail fetch task.
type ListingItem struct {
	// Index is the zero-based position in document order.
	Index        int    `json:"id"`
	Title        string `json:"title"`
	DetailURL    string `json:"detail_page_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Duration     string `json:"duration"`
}

// DetailRecord holds the fields extracted from a detail page. DownloadURL is
// empty when the page has no media element; the other fields fall back to the
// NotAvailable sentinel.
type DetailRecord struct {
	DownloadURL string `json:"download_url,omitempty"`
	Quality     string `json:"quality"`
	Views       string `json:"views"`
	Uploader    string `json:"uploader"`
}

// MergedRecord combines the listing fields with the detail fields for one
// fully scraped item.
type MergedRecord struct {
	ListingItem
	DetailRecord
}

// DetailOutcome is the typed result of one detail fetch task: either a merged
// record or a per-item failure. A failure never aborts the job.
type DetailOutcome struct {
	Item   ListingItem
	Record *MergedRecord
	Err    error
}
