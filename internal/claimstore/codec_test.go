package claimstore

import (
	"testing"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anycompany/claims-processing/internal/models"
)

func sampleVersion(t *testing.T) models.ClaimVersion {
	t.Helper()
	cost, err := decimal.NewFromString("1234.56")
	require.NoError(t, err)
	return models.ClaimVersion{
		ClaimID:   "CLM-001",
		Version:   "2026-03-01T12:00:00.000000000Z",
		IsLatest:  true,
		Status:    models.StatusPending,
		CreatedAt: "2026-03-01T12:00:00.000000000Z",
		ClaimDetails: map[string]any{
			"policy_number":     "AUTO-5678-9012",
			"total_repair_cost": cost,
			"active_policy":     true,
			"affected_areas":    []any{"hood", "bumper"},
		},
		VehicleInfo: map[string]any{"make": "Honda", "model": "CR-V", "year": "2023"},
		Documents: models.Documents{
			CurrentUploadedDocuments: []string{"claim_form.pdf", "damage.png"},
			RequiredDocuments:        []string{"police_report.pdf"},
		},
		VersionSummary: map[string]any{
			"claim_status":      "PENDING",
			"document_analysis": "rear-end collision",
		},
	}
}

func TestMarshalVersion_RowShape(t *testing.T) {
	item := marshalVersion(sampleVersion(t))

	// Keys and the GSI flag are stored as strings; is_latest is "true"/"false"
	// because it doubles as the index sort key.
	assert.Equal(t, "CLM-001", item[attrClaimID].(*ddbtypes.AttributeValueMemberS).Value)
	assert.Equal(t, "true", item[attrIsLatest].(*ddbtypes.AttributeValueMemberS).Value)
	assert.Equal(t, "PENDING", item[attrStatus].(*ddbtypes.AttributeValueMemberS).Value)

	details := item[attrDetails].(*ddbtypes.AttributeValueMemberM).Value
	n, ok := details["total_repair_cost"].(*ddbtypes.AttributeValueMemberN)
	require.True(t, ok, "monetary values must be stored as exact number attributes")
	assert.Equal(t, "1234.56", n.Value)
}

func TestVersionRoundTrip(t *testing.T) {
	want := sampleVersion(t)

	got, err := unmarshalVersion(marshalVersion(want))
	require.NoError(t, err)

	assert.Equal(t, want.ClaimID, got.ClaimID)
	assert.Equal(t, want.Version, got.Version)
	assert.Equal(t, want.IsLatest, got.IsLatest)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.Documents, got.Documents)
	assert.Equal(t, want.VehicleInfo, got.VehicleInfo)
	assert.Equal(t, want.VersionSummary, got.VersionSummary)

	// Monetary fidelity: exactly 1234.56, not 1234.5599999...
	d, ok := got.ClaimDetails["total_repair_cost"].(decimal.Decimal)
	require.True(t, ok)
	assert.Equal(t, "1234.56", d.String())
	assert.Equal(t, true, got.ClaimDetails["active_policy"])
	assert.Equal(t, []any{"hood", "bumper"}, got.ClaimDetails["affected_areas"])
}

func TestUnmarshalVersion_DemotedFlag(t *testing.T) {
	v := sampleVersion(t)
	v.IsLatest = false

	got, err := unmarshalVersion(marshalVersion(v))
	require.NoError(t, err)
	assert.False(t, got.IsLatest)
}

func TestUnmarshalVersion_MissingKeysRejected(t *testing.T) {
	_, err := unmarshalVersion(map[string]ddbtypes.AttributeValue{
		attrClaimID: &ddbtypes.AttributeValueMemberS{Value: "CLM-001"},
	})
	assert.Error(t, err)
}

func TestEncodeValue_FloatNormalizedExactly(t *testing.T) {
	n, ok := encodeValue(float64(1234.56)).(*ddbtypes.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, "1234.56", n.Value)
}

func TestDecodeValue_NumberComesBackAsDecimal(t *testing.T) {
	d, ok := decodeValue(&ddbtypes.AttributeValueMemberN{Value: "0.1"}).(decimal.Decimal)
	require.True(t, ok)
	assert.Equal(t, "0.1", d.String())
}
