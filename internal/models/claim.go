// Package models defines the versioned claim entities persisted by the backend.
package models

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ClaimStatus represents the status of an insurance claim version.
type ClaimStatus string

// Possible values for ClaimStatus
const (
	StatusPending  ClaimStatus = "PENDING"
	StatusApproved ClaimStatus = "APPROVED"
	StatusDenied   ClaimStatus = "DENIED"
)

// Sentinel errors shared by the store and the services.
var (
	// ErrNotFound means the claim has never been written.
	ErrNotFound = eris.New("claim not found")
	// ErrLatestConflict means another writer installed a new latest version
	// between our read and our write.
	ErrLatestConflict = eris.New("latest version changed concurrently")
	// ErrMissingField means a required property was absent from the request.
	ErrMissingField = eris.New("missing required field")
)

// ParseStatus maps a free-form claim_status value onto the enum.
// Unknown or absent values default to PENDING.
func ParseStatus(v any) ClaimStatus {
	s, _ := v.(string)
	switch ClaimStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusApproved:
		return StatusApproved
	case StatusDenied:
		return StatusDenied
	default:
		return StatusPending
	}
}

// staticDetailFields are the claim_details attributes that are write-once:
// the first non-empty value wins and later merges never overwrite it.
// Everything else in claim_details is dynamic and always takes the newest
// non-empty incoming value.
var staticDetailFields = map[string]struct{}{
	"policy_number":             {},
	"customer_id":               {},
	"coverage_amount":           {},
	"deductible":                {},
	"active_policy":             {},
	"incident_date":             {},
	"incident_location":         {},
	"estimated_cost_from_image": {},
	"total_repair_cost":         {},
	"claim_type":                {},
}

// IsStaticDetail reports whether a claim_details field is write-once.
func IsStaticDetail(name string) bool {
	_, ok := staticDetailFields[name]
	return ok
}

// Documents tracks the uploads attached to a claim. The uploaded set only
// ever grows across versions; required_documents is replaced wholesale by
// each update.
type Documents struct {
	CurrentUploadedDocuments []string `json:"current_uploaded_documents"`
	RequiredDocuments        []string `json:"required_documents"`
}

// ClaimVersion is one immutable snapshot of a claim's state, keyed by
// (claim_id, version). Exactly one version per claim carries IsLatest at
// any time; a version is never mutated after creation except for the
// single is_latest demotion when a newer version is installed.
type ClaimVersion struct {
	ClaimID        string         `json:"claim_id"`
	Version        string         `json:"version"`
	IsLatest       bool           `json:"is_latest"`
	Status         ClaimStatus    `json:"status"`
	CreatedAt      string         `json:"created_at"` // ISO8601, equals Version
	ClaimDetails   map[string]any `json:"claim_details"`
	VehicleInfo    map[string]any `json:"vehicle_info"`
	Documents      Documents      `json:"documents"`
	VersionSummary map[string]any `json:"version_summary"`
}

// ClaimData is the externally visible subset of a version returned in
// action-group responses.
type ClaimData struct {
	Status         ClaimStatus    `json:"status"`
	VersionSummary map[string]any `json:"version_summary"`
	ClaimDetails   map[string]any `json:"claim_details"`
	Documents      Documents      `json:"documents"`
}

// Data returns the response view of the version.
func (v ClaimVersion) Data() ClaimData {
	return ClaimData{
		Status:         v.Status,
		VersionSummary: v.VersionSummary,
		ClaimDetails:   v.ClaimDetails,
		Documents:      v.Documents,
	}
}

// HistoryEntry is the reduced view of a non-latest version returned by the
// read service.
type HistoryEntry struct {
	Version        string         `json:"version"`
	VersionSummary map[string]any `json:"version_summary"`
	Documents      []string       `json:"documents"`
}
