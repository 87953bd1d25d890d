// Package main runs the development fixture server backing the local-dev
// backend. It replays canned scan responses so the client can be exercised
// offline; it performs no OCR and no classification.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/puremark/puremark-go/internal/constants"
	"github.com/puremark/puremark-go/internal/models"
)

func main() {
	var (
		addr        string
		fixturePath string
	)

	flag.StringVar(&addr, "addr", ":8000", "Listen address")
	flag.StringVar(&fixturePath, "fixture", "", "Path to a JSON scan result to replay (optional)")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("app", "devstub").Logger()

	fixture, err := loadFixture(fixturePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load fixture")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get(constants.HealthPath, handleHealth)
	r.Post(constants.ScanPath, handleScan(fixture))
	r.Post(constants.FeedbackPath, handleFeedback)

	log.Info().Str("addr", addr).Msg("Dev stub listening")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}

// loadFixture reads the scan result to replay, or builds the default one.
func loadFixture(path string) (*models.ScanResult, error) {
	if path == "" {
		return defaultFixture(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	result := &models.ScanResult{}
	if err := json.Unmarshal(data, result); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return result, nil
}

// defaultFixture is a plausible halal-compliant scan of a simple product.
func defaultFixture() *models.ScanResult {
	return &models.ScanResult{
		Success:          true,
		DetectedLanguage: "en",
		OCRSource:        "devstub",
		DietVerdict: &models.DietVerdict{
			Halal: &models.ProductVerdict{
				Status:     constants.HalalStatusConfirmed,
				Confidence: constants.ConfidenceHigh,
				Reason:     "All ingredients verified halal",
			},
		},
		Ingredients: []models.Ingredient{
			{Original: "sugar", English: "sugar", Normalized: "sugar"},
			{Original: "cocoa butter", English: "cocoa butter", Normalized: "cocoa butter"},
		},
		Analysis: []models.IngredientAnalysis{
			{
				Name:    "sugar",
				English: "sugar",
				Halal: &models.HalalVerdict{
					Status:     constants.HalalStatusConfirmed,
					Confidence: constants.ConfidenceHigh,
				},
			},
			{
				Name:    "cocoa butter",
				English: "cocoa butter",
				Halal: &models.HalalVerdict{
					Status:     constants.HalalStatusConfirmed,
					Confidence: constants.ConfidenceHigh,
				},
			},
		},
		Allergens: []string{},
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{Status: constants.HealthStatusOK})
}

// handleScan applies the same payload checks as the real service before
// replaying the fixture, so client-side failure paths stay exercisable.
func handleScan(fixture *models.ScanResult) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ScanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusOK, models.FailedScan("Invalid request body"))
			return
		}

		if req.Image == "" {
			writeJSON(w, http.StatusOK, models.FailedScan("No image provided"))
			return
		}
		if strings.HasPrefix(req.Image, "data:") {
			writeJSON(w, http.StatusOK, models.FailedScan("Invalid image encoding"))
			return
		}
		if len(req.Image)*3/4 > constants.MaxImageBytes {
			writeJSON(w, http.StatusOK, models.FailedScan(
				fmt.Sprintf("Image too large. Maximum size is %dMB", constants.MaxImageMiB)))
			return
		}

		log.Info().Int("image_bytes", len(req.Image)).Msg("Replaying scan fixture")
		writeJSON(w, http.StatusOK, fixture)
	}
}

func handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req models.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, models.FeedbackResult{Success: false, Error: "Invalid request body"})
		return
	}

	log.Info().Str("category", req.Category).Msg("Feedback received")
	writeJSON(w, http.StatusOK, models.FeedbackResult{Success: true})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
