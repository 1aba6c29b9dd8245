// Package claims implements the version-merge engine and the claim
// read/write services on top of the versioned store.
package claims

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/anycompany/claims-processing/internal/models"
	"github.com/anycompany/claims-processing/internal/propbag"
)

// UpdateRequest is a typed partial claim update, decoded from the agent's
// property bag.
type UpdateRequest struct {
	ClaimID        string
	ClaimDetails   map[string]any
	VehicleInfo    map[string]any
	Documents      models.Documents
	VersionSummary map[string]any
}

// UpdateFromBag builds an UpdateRequest from coerced properties. The claim
// identifier is assigned externally and is the only required field.
func UpdateFromBag(bag propbag.Bag) (UpdateRequest, error) {
	claimID := bag.String("claim_id")
	if claimID == "" {
		return UpdateRequest{}, eris.Wrap(models.ErrMissingField, "claim_id")
	}

	docs := bag.Map("documents")
	return UpdateRequest{
		ClaimID:      claimID,
		ClaimDetails: normalizeNumbers(bag.Map("claim_details")),
		VehicleInfo:  normalizeNumbers(bag.Map("vehicle_info")),
		Documents: models.Documents{
			CurrentUploadedDocuments: propbag.ToStringSlice(docs["current_uploaded_documents"]),
			RequiredDocuments:        propbag.ToStringSlice(docs["required_documents"]),
		},
		VersionSummary: normalizeNumbers(bag.Map("version_summary")),
	}, nil
}

// versionLayout is a fixed-width UTC timestamp so that lexicographic order
// of version tokens equals chronological order. RFC3339Nano would trim
// trailing zeros and break that.
const versionLayout = "2006-01-02T15:04:05.000000000Z"

// nextVersionToken derives a token from now that sorts strictly after the
// prior token even when the clock has not advanced past it.
func nextVersionToken(now time.Time, prior string) string {
	tok := now.UTC().Format(versionLayout)
	if prior != "" && tok <= prior {
		if t, err := time.Parse(versionLayout, prior); err == nil {
			tok = t.Add(time.Nanosecond).UTC().Format(versionLayout)
		}
	}
	return tok
}

// Merge computes the next claim version from the latest stored version
// (nil for a new claim) and an incoming partial update.
//
// With no existing version the update passes through verbatim. Otherwise:
// uploaded documents are the deduplicated union; required documents and the
// version summary are replaced wholesale; static claim_details fields keep
// their first non-empty value; dynamic fields take the newest non-empty
// incoming value; vehicle_info fields are all static. Keys absent from the
// update keep their existing value. Status is recomputed from the merged
// summary's claim_status, defaulting to PENDING.
func Merge(existing *models.ClaimVersion, upd UpdateRequest, token string) models.ClaimVersion {
	next := models.ClaimVersion{
		ClaimID:        upd.ClaimID,
		Version:        token,
		IsLatest:       true,
		CreatedAt:      token,
		VersionSummary: normalizeNumbers(upd.VersionSummary),
	}
	next.Status = models.ParseStatus(next.VersionSummary["claim_status"])

	if existing == nil {
		next.ClaimDetails = normalizeNumbers(upd.ClaimDetails)
		next.VehicleInfo = normalizeNumbers(upd.VehicleInfo)
		next.Documents = upd.Documents
		return next
	}

	next.ClaimDetails = mergeDetails(existing.ClaimDetails, upd.ClaimDetails)
	next.VehicleInfo = mergeStatic(existing.VehicleInfo, upd.VehicleInfo)
	next.Documents = models.Documents{
		CurrentUploadedDocuments: unionDocuments(
			existing.Documents.CurrentUploadedDocuments,
			upd.Documents.CurrentUploadedDocuments,
		),
		RequiredDocuments: upd.Documents.RequiredDocuments,
	}
	return next
}

// mergeDetails applies the static/dynamic policy to claim_details.
func mergeDetails(existing, incoming map[string]any) map[string]any {
	merged := make(map[string]any, len(existing)+len(incoming))
	for k, v := range normalizeNumbers(existing) {
		merged[k] = v
	}
	for k, v := range normalizeNumbers(incoming) {
		if isEmpty(v) {
			continue
		}
		if models.IsStaticDetail(k) && !isEmpty(merged[k]) {
			continue // first non-empty write wins
		}
		merged[k] = v
	}
	return merged
}

// mergeStatic treats every field as write-once-if-empty.
func mergeStatic(existing, incoming map[string]any) map[string]any {
	merged := make(map[string]any, len(existing)+len(incoming))
	for k, v := range normalizeNumbers(existing) {
		merged[k] = v
	}
	for k, v := range normalizeNumbers(incoming) {
		if isEmpty(v) || !isEmpty(merged[k]) {
			continue
		}
		merged[k] = v
	}
	return merged
}

// unionDocuments merges uploaded-document lists preserving first-seen order.
// The result never shrinks relative to existing.
func unionDocuments(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	merged := make([]string, 0, len(existing)+len(incoming))
	for _, d := range existing {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		merged = append(merged, d)
	}
	for _, d := range incoming {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		merged = append(merged, d)
	}
	return merged
}

// normalizeNumbers rewrites binary floats into exact decimals before any
// value is stored, so monetary fields never drift.
func normalizeNumbers(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
	return m
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t)
	case float32:
		return decimal.NewFromFloat32(t)
	case map[string]any:
		return normalizeNumbers(t)
	case []any:
		for i, e := range t {
			t[i] = normalizeValue(e)
		}
		return t
	default:
		return v
	}
}

// isEmpty mirrors the truthiness rules the merge policy is defined in terms
// of: empty strings, zero numbers, false booleans and empty containers all
// count as unset.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case decimal.Decimal:
		return t.IsZero()
	case float64:
		return t == 0
	case int:
		return t == 0
	case int64:
		return t == 0
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
