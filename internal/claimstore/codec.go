package claimstore

import (
	"fmt"
	"strconv"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/anycompany/claims-processing/internal/models"
)

// The codec maps claim versions to DynamoDB items by hand instead of going
// through the generic attributevalue marshaller: claim_details is a
// map[string]any whose numeric values must stay exact decimals (N members),
// and the generic path would route them through float64.

// encodeValue converts a coerced Go value to a DynamoDB attribute.
func encodeValue(v any) ddbtypes.AttributeValue {
	switch t := v.(type) {
	case nil:
		return &ddbtypes.AttributeValueMemberNULL{Value: true}
	case string:
		return &ddbtypes.AttributeValueMemberS{Value: t}
	case models.ClaimStatus:
		return &ddbtypes.AttributeValueMemberS{Value: string(t)}
	case bool:
		return &ddbtypes.AttributeValueMemberBOOL{Value: t}
	case decimal.Decimal:
		return &ddbtypes.AttributeValueMemberN{Value: t.String()}
	case int:
		return &ddbtypes.AttributeValueMemberN{Value: strconv.Itoa(t)}
	case int64:
		return &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(t, 10)}
	case float64:
		// Floats should have been normalized upstream; NewFromFloat uses the
		// shortest exact round-trip representation.
		return &ddbtypes.AttributeValueMemberN{Value: decimal.NewFromFloat(t).String()}
	case []string:
		items := make([]ddbtypes.AttributeValue, len(t))
		for i, e := range t {
			items[i] = &ddbtypes.AttributeValueMemberS{Value: e}
		}
		return &ddbtypes.AttributeValueMemberL{Value: items}
	case []any:
		items := make([]ddbtypes.AttributeValue, len(t))
		for i, e := range t {
			items[i] = encodeValue(e)
		}
		return &ddbtypes.AttributeValueMemberL{Value: items}
	case map[string]any:
		return &ddbtypes.AttributeValueMemberM{Value: encodeMap(t)}
	default:
		return &ddbtypes.AttributeValueMemberS{Value: fmt.Sprintf("%v", t)}
	}
}

func encodeMap(m map[string]any) map[string]ddbtypes.AttributeValue {
	out := make(map[string]ddbtypes.AttributeValue, len(m))
	for k, v := range m {
		out[k] = encodeValue(v)
	}
	return out
}

// decodeValue converts a DynamoDB attribute back to a Go value. Numbers come
// back as decimal.Decimal so monetary fields round-trip exactly.
func decodeValue(av ddbtypes.AttributeValue) any {
	switch t := av.(type) {
	case *ddbtypes.AttributeValueMemberNULL:
		return nil
	case *ddbtypes.AttributeValueMemberS:
		return t.Value
	case *ddbtypes.AttributeValueMemberBOOL:
		return t.Value
	case *ddbtypes.AttributeValueMemberN:
		d, err := decimal.NewFromString(t.Value)
		if err != nil {
			return decimal.Zero
		}
		return d
	case *ddbtypes.AttributeValueMemberL:
		out := make([]any, len(t.Value))
		for i, e := range t.Value {
			out[i] = decodeValue(e)
		}
		return out
	case *ddbtypes.AttributeValueMemberSS:
		out := make([]any, len(t.Value))
		for i, e := range t.Value {
			out[i] = e
		}
		return out
	case *ddbtypes.AttributeValueMemberM:
		return decodeMap(t.Value)
	default:
		return nil
	}
}

func decodeMap(m map[string]ddbtypes.AttributeValue) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = decodeValue(v)
	}
	return out
}

func decodeString(m map[string]ddbtypes.AttributeValue, key string) string {
	if s, ok := m[key].(*ddbtypes.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func decodeStringList(av ddbtypes.AttributeValue) []string {
	v, ok := decodeValue(av).([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(v))
	for _, e := range v {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// marshalVersion builds the persisted row. is_latest is stored as the
// strings "true"/"false" because it doubles as the GSI sort key, which is a
// string attribute.
func marshalVersion(v models.ClaimVersion) map[string]ddbtypes.AttributeValue {
	isLatest := "false"
	if v.IsLatest {
		isLatest = "true"
	}
	return map[string]ddbtypes.AttributeValue{
		attrClaimID:   &ddbtypes.AttributeValueMemberS{Value: v.ClaimID},
		attrVersion:   &ddbtypes.AttributeValueMemberS{Value: v.Version},
		attrIsLatest:  &ddbtypes.AttributeValueMemberS{Value: isLatest},
		attrStatus:    &ddbtypes.AttributeValueMemberS{Value: string(v.Status)},
		attrCreatedAt: &ddbtypes.AttributeValueMemberS{Value: v.CreatedAt},
		attrDetails:   &ddbtypes.AttributeValueMemberM{Value: encodeMap(v.ClaimDetails)},
		attrVehicle:   &ddbtypes.AttributeValueMemberM{Value: encodeMap(v.VehicleInfo)},
		attrDocuments: &ddbtypes.AttributeValueMemberM{Value: map[string]ddbtypes.AttributeValue{
			attrUploadedDocs: encodeValue(v.Documents.CurrentUploadedDocuments),
			attrRequiredDocs: encodeValue(v.Documents.RequiredDocuments),
		}},
		attrSummary: &ddbtypes.AttributeValueMemberM{Value: encodeMap(v.VersionSummary)},
	}
}

func unmarshalVersion(item map[string]ddbtypes.AttributeValue) (models.ClaimVersion, error) {
	claimID := decodeString(item, attrClaimID)
	version := decodeString(item, attrVersion)
	if claimID == "" || version == "" {
		return models.ClaimVersion{}, eris.New("claim row missing key attributes")
	}

	v := models.ClaimVersion{
		ClaimID:        claimID,
		Version:        version,
		IsLatest:       decodeString(item, attrIsLatest) == "true",
		Status:         models.ParseStatus(decodeString(item, attrStatus)),
		CreatedAt:      decodeString(item, attrCreatedAt),
		ClaimDetails:   map[string]any{},
		VehicleInfo:    map[string]any{},
		VersionSummary: map[string]any{},
	}
	if m, ok := item[attrDetails].(*ddbtypes.AttributeValueMemberM); ok {
		v.ClaimDetails = decodeMap(m.Value)
	}
	if m, ok := item[attrVehicle].(*ddbtypes.AttributeValueMemberM); ok {
		v.VehicleInfo = decodeMap(m.Value)
	}
	if m, ok := item[attrSummary].(*ddbtypes.AttributeValueMemberM); ok {
		v.VersionSummary = decodeMap(m.Value)
	}
	if m, ok := item[attrDocuments].(*ddbtypes.AttributeValueMemberM); ok {
		if av, ok := m.Value[attrUploadedDocs]; ok {
			v.Documents.CurrentUploadedDocuments = decodeStringList(av)
		}
		if av, ok := m.Value[attrRequiredDocs]; ok {
			v.Documents.RequiredDocuments = decodeStringList(av)
		}
	}
	return v, nil
}
