package models

// ScanRequest is the body of POST /scan. Image carries raw base64 without a
// data-URL prefix; the profile travels with every request so the service can
// evaluate the right diet and flag the user's allergens.
type ScanRequest struct {
	Image   string       `json:"image"`
	Profile *UserProfile `json:"profile,omitempty"`
}

// HalalVerdict is the per-ingredient halal evaluation returned by the service.
type HalalVerdict struct {
	Status      string   `json:"status"`
	Confidence  string   `json:"confidence,omitempty"`
	ReasonCodes []string `json:"reason_codes,omitempty"`
	Evidence    []string `json:"evidence,omitempty"`
}

// KosherVerdict is the per-ingredient kosher evaluation returned by the service.
// Tags carries the pareve/dairy/meat classification derived from the evidence.
type KosherVerdict struct {
	Status      string   `json:"status"`
	Confidence  string   `json:"confidence,omitempty"`
	ReasonCodes []string `json:"reason_codes,omitempty"`
	Evidence    []string `json:"evidence,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// IngredientAnalysis is one entry of the per-ingredient analysis list.
// It is immutable once received from the remote service.
type IngredientAnalysis struct {
	// Name is the display name after source corrections (e.g. lecithin
	// source resolution) applied by the service.
	Name string `json:"name"`

	// Original is the ingredient text as it appeared on the label.
	Original string `json:"original,omitempty"`

	// English is the English-normalized ingredient text.
	English string `json:"english,omitempty"`

	// Halal carries the halal evaluation, present only when the active
	// profile requested the halal diet.
	Halal *HalalVerdict `json:"halal,omitempty"`

	// Kosher carries the kosher evaluation, present only when the active
	// profile requested the kosher diet.
	Kosher *KosherVerdict `json:"kosher,omitempty"`

	// AllergyFlag names the user allergen matched by this ingredient, if any.
	AllergyFlag string `json:"allergy_flag,omitempty"`
}

// Ingredient is one entry of the raw parsed ingredient list, before analysis.
type Ingredient struct {
	Original   string `json:"original,omitempty"`
	English    string `json:"english,omitempty"`
	Normalized string `json:"normalized,omitempty"`
}

// ProductVerdict is a product-level verdict for one diet: the aggregated
// status over all ingredients, plus the ingredients that caused a failure.
type ProductVerdict struct {
	Status             string   `json:"status"`
	Confidence         string   `json:"confidence,omitempty"`
	Reason             string   `json:"reason,omitempty"`
	FailingIngredients []string `json:"failing_ingredients,omitempty"`
	ReasonCodes        []string `json:"reason_codes,omitempty"`
}

// DietVerdict holds the independent halal and kosher product verdicts.
// A scan may carry either, both, or neither depending on the active profile.
type DietVerdict struct {
	Halal  *ProductVerdict `json:"halal,omitempty"`
	Kosher *ProductVerdict `json:"kosher,omitempty"`
}

// ScanResult is the normalized outcome of a scan, identical in shape for
// every backend. Validation failures, transport failures, non-2xx responses
// and malformed bodies all fold into Success=false with a human-readable
// Error; the scan client never surfaces them as raw errors.
type ScanResult struct {
	Success          bool                 `json:"success"`
	DetectedLanguage string               `json:"detected_language,omitempty"`
	OCRSource        string               `json:"ocr_source,omitempty"`
	DietVerdict      *DietVerdict         `json:"diet_verdict,omitempty"`
	Ingredients      []Ingredient         `json:"ingredients,omitempty"`
	Analysis         []IngredientAnalysis `json:"analysis,omitempty"`
	Allergens        []string             `json:"allergens,omitempty"`
	Error            string               `json:"error,omitempty"`
	ErrorCode        string               `json:"error_code,omitempty"`
}

// FailedScan builds a normalized failure result.
func FailedScan(message string) *ScanResult {
	return &ScanResult{
		Success: false,
		Error:   message,
	}
}

// FeedbackRequest is the body of POST /submit_feedback.
type FeedbackRequest struct {
	ID        string   `json:"id"`
	Timestamp int64    `json:"timestamp"`
	Category  string   `json:"category" validate:"required,oneof=bug suggestion accuracy other"`
	Message   string   `json:"message" validate:"required,min=1,max=2000"`
	Images    []string `json:"images,omitempty"`
}

// FeedbackResult is the response of POST /submit_feedback.
type FeedbackResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse is the response of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
