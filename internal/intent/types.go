package intent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is the closed set of utterance classifications. Consumption sites
// switch over every kind.
type Kind string

const (
	KindActivity    Kind = "ACTIVITY"
	KindTransaction Kind = "TRANSACTION"
	KindSoilTest    Kind = "SOIL_TEST"
	KindQuery       Kind = "QUERY"
	KindUnknown     Kind = "UNKNOWN"
)

// ParseKind validates a raw kind tag from a classifier response.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToUpper(strings.TrimSpace(raw))) {
	case KindActivity:
		return KindActivity, nil
	case KindTransaction:
		return KindTransaction, nil
	case KindSoilTest:
		return KindSoilTest, nil
	case KindQuery:
		return KindQuery, nil
	case KindUnknown:
		return KindUnknown, nil
	}
	return "", fmt.Errorf("unknown intent kind %q", raw)
}

// ActivityDetail is the payload of an ACTIVITY intent.
type ActivityDetail struct {
	ActivityType string  `json:"activity_type"`
	Crop         string  `json:"crop"`
	AreaAcres    float64 `json:"area_acres"`
}

// TransactionDetail is the payload of a TRANSACTION intent.
type TransactionDetail struct {
	Type     string  `json:"type"` // INCOME or EXPENSE
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// SoilTestDetail is the payload of a SOIL_TEST intent.
type SoilTestDetail struct {
	Crop string `json:"crop"`
}

// ParsedIntent is the structured result of classifying one utterance. The
// payload is a tagged union keyed by Kind: exactly the variant matching
// Kind is non-nil, QUERY and UNKNOWN carry no variant.
type ParsedIntent struct {
	Kind         Kind    `json:"kind"`
	Confidence   float64 `json:"confidence"`
	RawText      string  `json:"raw_text,omitempty"`
	Confirmation string  `json:"confirmation"`

	Activity    *ActivityDetail    `json:"activity,omitempty"`
	Transaction *TransactionDetail `json:"transaction,omitempty"`
	SoilTest    *SoilTestDetail    `json:"soil_test,omitempty"`
}

// wireIntent mirrors the JSON contract of the remote classifier: one loose
// bag of optional fields covering every kind.
type wireIntent struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Data       struct {
		ActivityType    string  `json:"activity_type"`
		Crop            string  `json:"crop"`
		Area            float64 `json:"area"`
		Amount          float64 `json:"amount"`
		TransactionType string  `json:"transaction_type"`
		Category        string  `json:"category"`
		RawText         string  `json:"raw_text"`
	} `json:"data"`
	ConfirmationMessage string `json:"confirmation_message"`
}

// Decode parses a classifier response body into a ParsedIntent, collapsing
// the loose field bag into the variant selected by the intent kind. A
// response with an unknown kind or an empty confirmation message is
// malformed and fails the whole classification.
func Decode(data []byte) (ParsedIntent, error) {
	var wire wireIntent
	if err := json.Unmarshal(data, &wire); err != nil {
		return ParsedIntent{}, fmt.Errorf("decode intent: %w", err)
	}
	kind, err := ParseKind(wire.Intent)
	if err != nil {
		return ParsedIntent{}, err
	}
	if strings.TrimSpace(wire.ConfirmationMessage) == "" {
		return ParsedIntent{}, fmt.Errorf("intent %s missing confirmation message", kind)
	}

	parsed := ParsedIntent{
		Kind:         kind,
		Confidence:   clampConfidence(wire.Confidence),
		RawText:      wire.Data.RawText,
		Confirmation: wire.ConfirmationMessage,
	}

	switch kind {
	case KindActivity:
		parsed.Activity = &ActivityDetail{
			ActivityType: wire.Data.ActivityType,
			Crop:         wire.Data.Crop,
			AreaAcres:    wire.Data.Area,
		}
	case KindTransaction:
		parsed.Transaction = &TransactionDetail{
			Type:     strings.ToUpper(wire.Data.TransactionType),
			Category: wire.Data.Category,
			Amount:   wire.Data.Amount,
		}
	case KindSoilTest:
		parsed.SoilTest = &SoilTestDetail{Crop: wire.Data.Crop}
	case KindQuery, KindUnknown:
		// no variant
	}
	return parsed, nil
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
