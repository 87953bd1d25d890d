// Package client implements the scan client: pre-flight validation of image
// payloads, dispatch to the selected backend, and normalization of every
// outcome into one result shape. No failure escapes as a raw error; callers
// always receive a ScanResult and decide themselves whether to retry.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/puremark/puremark-go/internal/backend"
	"github.com/puremark/puremark-go/internal/constants"
	"github.com/puremark/puremark-go/internal/models"
	"github.com/puremark/puremark-go/internal/utils"
)

// TokenSource supplies the current session token, or "" when signed out.
// *auth.Manager satisfies it.
type TokenSource interface {
	Token() string
}

// noToken is the TokenSource used when no session manager is wired in.
type noToken struct{}

func (noToken) Token() string { return "" }

// ScanClient issues classification requests against the resolved endpoint.
// Requests carry no client-side timeout; callers bound them through ctx.
type ScanClient struct {
	endpoint *backend.Endpoint
	http     *http.Client
	tokens   TokenSource
}

// New creates a ScanClient for the given endpoint. tokens may be nil for
// anonymous-only use.
func New(endpoint *backend.Endpoint, tokens TokenSource) *ScanClient {
	if tokens == nil {
		tokens = noToken{}
	}
	return &ScanClient{
		endpoint: endpoint,
		http:     &http.Client{},
		tokens:   tokens,
	}
}

// imageSignatures maps the base64 prefix of each recognized encoded-image
// format. These are literal prefix checks, not a real header parse: the
// remote service validates payloads the same way, so matching its heuristic
// keeps client and server agreeing on what is scannable.
var imageSignatures = []string{
	"/9j/",  // JPEG
	"iVBOR", // PNG
	"UklGR", // WebP
}

// ValidateImage runs the pre-flight checks on a base64 image payload.
// It fails fast with a distinct error per defect; no network call is made.
func ValidateImage(imageData string) error {
	if imageData == "" {
		return utils.NewEmptyImageError()
	}

	// Estimated decoded size: 3 bytes per 4 base64 characters
	if len(imageData)*3/4 > constants.MaxImageBytes {
		return utils.NewImageTooLargeError()
	}

	if strings.HasPrefix(imageData, "data:") {
		return utils.NewUnstrippedDataURLError()
	}

	for _, sig := range imageSignatures {
		if strings.HasPrefix(imageData, sig) {
			return nil
		}
	}
	return utils.NewUnrecognizedFormatError()
}

// Scan validates the payload, dispatches it to the selected backend and
// returns the normalized result. imageData is raw base64 without a data-URL
// prefix.
func (c *ScanClient) Scan(ctx context.Context, imageData string, profile *models.UserProfile) *models.ScanResult {
	if err := ValidateImage(imageData); err != nil {
		log.Debug().Str("kind", utils.ErrorKind(err)).Msg("Image rejected before dispatch")
		return models.FailedScan(err.Error())
	}

	body := models.ScanRequest{
		Image:   imageData,
		Profile: profile,
	}

	result := &models.ScanResult{}
	if err := c.postJSON(ctx, constants.ScanPath, body, result); err != nil {
		return models.FailedScan(err.Error())
	}
	return result
}

// Health reports whether the active backend is reachable and willing. Any
// failure of any kind yields false, never an error.
func (c *ScanClient) Health(ctx context.Context) bool {
	url := c.endpoint.URL(constants.HealthPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	authorized := c.authorize(req)

	startTime := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		utils.LogHTTPCall(http.MethodGet, url, authorized, 0, time.Since(startTime), err)
		return false
	}
	defer resp.Body.Close()

	utils.LogHTTPCall(http.MethodGet, url, authorized, resp.StatusCode, time.Since(startTime), nil)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false
	}

	var health models.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return false
	}

	return health.Status == constants.HealthStatusOK || health.Status == constants.HealthStatusHealthy
}

// SubmitFeedback sends a user feedback report. Validation, transport and
// server failures fold into the result exactly like scan failures do.
func (c *ScanClient) SubmitFeedback(ctx context.Context, category, message string, images []string) *models.FeedbackResult {
	feedback := models.FeedbackRequest{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UnixMilli(),
		Category:  category,
		Message:   strings.TrimSpace(message),
		Images:    images,
	}

	if err := utils.ValidateStruct(&feedback); err != nil {
		return &models.FeedbackResult{Success: false, Error: err.Error()}
	}

	result := &models.FeedbackResult{}
	if err := c.postJSON(ctx, constants.FeedbackPath, feedback, result); err != nil {
		return &models.FeedbackResult{Success: false, Error: err.Error()}
	}
	return result
}

// postJSON posts body to path and decodes the 2xx response into out.
// Transport failures, non-2xx statuses and malformed bodies come back as
// AppErrors with user-facing messages; callers fold them into results.
func (c *ScanClient) postJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return utils.NewTransportError(err)
	}

	url := c.endpoint.URL(path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return utils.NewTransportError(err)
	}
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	authorized := c.authorize(req)

	startTime := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		utils.LogHTTPCall(http.MethodPost, url, authorized, 0, time.Since(startTime), err)
		return utils.NewTransportError(err)
	}
	defer resp.Body.Close()

	utils.LogHTTPCall(http.MethodPost, url, authorized, resp.StatusCode, time.Since(startTime), nil)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return utils.NewTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return utils.NewServerError(resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return utils.NewServerError(resp.StatusCode, "malformed response body")
	}

	return nil
}

// authorize attaches the endpoint's bearer credential to req, preferring the
// session token over the anonymous key. Reports whether a credential was set.
func (c *ScanClient) authorize(req *http.Request) bool {
	token := c.endpoint.BearerToken(c.tokens.Token())
	if token == "" {
		return false
	}
	req.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+token)
	return true
}
