// Package models provides the data structures shared by the scan client,
// the history store and the remote mirror.
//
// This file contains the persisted scan-history record and the reduction
// rules that derive it from a raw scan result: the compliance-status mapping,
// the display product name and the accent color assignment.
package models

import (
	"math/rand"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/puremark/puremark-go/internal/constants"
)

// IngredientStatus is the reduced per-ingredient view stored with a history
// record: enough to render the ingredient list without the full analysis.
type IngredientStatus struct {
	Name   string         `json:"name"`
	Status string         `json:"status"`
	Halal  *HalalVerdict  `json:"halal,omitempty"`
	Kosher *KosherVerdict `json:"kosher,omitempty"`
}

// ScanHistoryItem is the persisted record of one completed scan. It is
// created exactly once per scan, mutated only by an explicit rename, and
// destroyed by an explicit delete or a full history clear.
type ScanHistoryItem struct {
	// ID uniquely identifies the record. IDs are generated at creation time
	// and never reused, even after deletion.
	ID string `json:"id"`

	// ProductName is the display name derived from the first ingredient,
	// or set by an explicit rename.
	ProductName string `json:"productName"`

	// Date and Time are the formatted creation moment for display.
	Date string `json:"date"`
	Time string `json:"time"`

	// Timestamp is the creation moment in Unix milliseconds; it is the
	// sort key that keeps the history newest-first.
	Timestamp int64 `json:"timestamp"`

	// IngredientCount is the number of ingredients detected in the scan.
	IngredientCount int `json:"ingredientCount"`

	// Status is the overall compliance status for the diet the scan was
	// evaluated against. It is always derivable from DietVerdict and Diet;
	// the two are never stored inconsistently.
	Status string `json:"status"`

	// Color is the display accent color assigned from the fixed palette.
	Color string `json:"color"`

	// Diet is the diet the scan was evaluated against.
	Diet string `json:"diet"`

	// DietVerdict is the raw product-level verdict from the service.
	DietVerdict *DietVerdict `json:"dietVerdict,omitempty"`

	// Ingredients is the reduced per-ingredient view.
	Ingredients []IngredientStatus `json:"ingredients"`

	// Allergens lists the allergens detected in the product.
	Allergens []string `json:"allergens,omitempty"`

	// DetectedLanguage is the language of the source label.
	DetectedLanguage string `json:"detectedLanguage,omitempty"`
}

// accentPalette is the fixed set of display accent colors for history cards.
var accentPalette = []string{
	"#4CAF50",
	"#2196F3",
	"#9C27B0",
	"#FF9800",
	"#009688",
}

// mapStatus reduces one diet's sub-verdict status to a compliance status.
// An empty status means the sub-verdict was absent.
func mapStatus(diet, halalStatus, kosherStatus string) string {
	switch diet {
	case constants.DietHalal:
		switch halalStatus {
		case constants.HalalStatusConfirmed:
			return constants.ComplianceCompliant
		case constants.HalalStatusHaram:
			return constants.ComplianceNotCompliant
		default:
			// NOT_HALAL_UNVERIFIED, MUSHBOOH or missing
			return constants.ComplianceConditional
		}
	case constants.DietKosher:
		switch kosherStatus {
		case constants.KosherStatusConfirmed:
			return constants.ComplianceCompliant
		case constants.KosherStatusNotKosher:
			return constants.ComplianceNotCompliant
		default:
			// REQUIRES_KOSHER_CERTIFICATION or missing
			return constants.ComplianceConditional
		}
	}
	return constants.ComplianceConditional
}

// ComplianceStatusFor derives the scan-level compliance status from a
// product verdict and the active diet.
func ComplianceStatusFor(verdict *DietVerdict, diet string) string {
	if verdict == nil {
		return constants.ComplianceConditional
	}
	halalStatus := ""
	if verdict.Halal != nil {
		halalStatus = verdict.Halal.Status
	}
	kosherStatus := ""
	if verdict.Kosher != nil {
		kosherStatus = verdict.Kosher.Status
	}
	return mapStatus(diet, halalStatus, kosherStatus)
}

// IngredientComplianceFor derives an ingredient's compliance status from its
// own sub-verdicts, applying the same mapping rule as the scan level.
func IngredientComplianceFor(a *IngredientAnalysis, diet string) string {
	halalStatus := ""
	if a.Halal != nil {
		halalStatus = a.Halal.Status
	}
	kosherStatus := ""
	if a.Kosher != nil {
		kosherStatus = a.Kosher.Status
	}
	return mapStatus(diet, halalStatus, kosherStatus)
}

// DeriveProductName builds a display product name from the first detected
// ingredient: the text before the first comma, first letter capitalized,
// with " Product" appended. An empty ingredient list yields "Unknown Product".
func DeriveProductName(ingredients []Ingredient) string {
	if len(ingredients) == 0 {
		return "Unknown Product"
	}

	first := ingredients[0]
	token := first.English
	if token == "" {
		token = first.Normalized
	}
	if token == "" {
		token = first.Original
	}

	token = strings.TrimSpace(strings.SplitN(token, ",", 2)[0])
	if token == "" {
		return "Unknown Product"
	}

	r, size := utf8.DecodeRuneInString(token)
	return string(unicode.ToUpper(r)) + token[size:] + " Product"
}

// NewScanHistoryItem derives a history record from a raw scan result and the
// diet it was evaluated against. The caller supplies the creation moment so
// records stay reproducible in tests.
func NewScanHistoryItem(result *ScanResult, diet string, now time.Time) *ScanHistoryItem {
	reduced := make([]IngredientStatus, 0, len(result.Analysis))
	for i := range result.Analysis {
		a := &result.Analysis[i]
		reduced = append(reduced, IngredientStatus{
			Name:   a.Name,
			Status: IngredientComplianceFor(a, diet),
			Halal:  a.Halal,
			Kosher: a.Kosher,
		})
	}

	count := len(result.Ingredients)
	if count == 0 {
		count = len(result.Analysis)
	}

	return &ScanHistoryItem{
		ID:               uuid.New().String(),
		ProductName:      DeriveProductName(result.Ingredients),
		Date:             now.Format("Jan 2, 2006"),
		Time:             now.Format("3:04 PM"),
		Timestamp:        now.UnixMilli(),
		IngredientCount:  count,
		Status:           ComplianceStatusFor(result.DietVerdict, diet),
		Color:            accentPalette[rand.Intn(len(accentPalette))],
		Diet:             diet,
		DietVerdict:      result.DietVerdict,
		Ingredients:      reduced,
		Allergens:        result.Allergens,
		DetectedLanguage: result.DetectedLanguage,
	}
}
