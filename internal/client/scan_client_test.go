package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puremark/puremark-go/internal/backend"
	"github.com/puremark/puremark-go/internal/client"
	"github.com/puremark/puremark-go/internal/config"
	"github.com/puremark/puremark-go/internal/models"
	"github.com/puremark/puremark-go/internal/utils"
)

// staticToken is a TokenSource returning a fixed token.
type staticToken string

func (s staticToken) Token() string { return string(s) }

// jpegPayload is a minimal payload carrying the JPEG base64 signature.
const jpegPayload = "/9j/4AAQSkZJRgABAQEASABIAAD"

// newTestClient points a ScanClient at the given test server.
func newTestClient(t *testing.T, serverURL string, tokens client.TokenSource) *client.ScanClient {
	t.Helper()

	settings := config.BackendSettings{
		Mode:       "primary",
		PrimaryURL: serverURL,
		AnonKey:    "anon-key",
	}
	endpoint, err := backend.Resolve(&settings)
	require.NoError(t, err, "Test endpoint should resolve")

	return client.New(endpoint, tokens)
}

func TestValidateImage(t *testing.T) {
	testCases := []struct {
		name         string
		payload      string
		expectedKind string
	}{
		{
			name:         "Empty payload",
			payload:      "",
			expectedKind: "EmptyImage",
		},
		{
			name:         "Data URL prefix not stripped",
			payload:      "data:image/jpeg;base64,/9j/AAAA",
			expectedKind: "UnstrippedDataUrl",
		},
		{
			name:         "Unrecognized format",
			payload:      "R0lGODlhAQABAAAAACw=", // GIF signature, not supported
			expectedKind: "UnrecognizedFormat",
		},
		{
			name:         "Oversized payload",
			payload:      "data:" + strings.Repeat("A", 15*1024*1024),
			expectedKind: "ImageTooLarge",
		},
		{
			name:    "Valid JPEG payload",
			payload: jpegPayload,
		},
		{
			name:    "Valid PNG payload",
			payload: "iVBORw0KGgoAAAANSUhEUg",
		},
		{
			name:    "Valid WebP payload",
			payload: "UklGRiQAAABXRUJQVlA4IA",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := client.ValidateImage(tc.payload)

			if tc.expectedKind == "" {
				assert.NoError(t, err, "A recognized payload under the size limit should validate")
				return
			}

			require.Error(t, err, "A defective payload should be rejected")
			assert.Equal(t, tc.expectedKind, utils.ErrorKind(err), "Each defect should map to its own error kind")
			assert.True(t, utils.IsValidationError(err), "Pre-flight failures are validation errors")
		})
	}
}

func TestValidateImage_TooLargeMessageNamesLimit(t *testing.T) {
	err := client.ValidateImage(strings.Repeat("/9j/", 4*1024*1024))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "10MB", "The error message should name the configured limit in MiB")
}

func TestScan_ValidationFailsBeforeDispatch(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	profile := models.NewUserProfile()

	result := c.Scan(context.Background(), "", profile)

	require.NotNil(t, result)
	assert.False(t, result.Success, "An empty payload should fail")
	assert.Equal(t, "No image data provided", result.Error, "The failure message is part of the contract")
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "No outbound request should be made for an invalid payload")
}

func TestScan_Success(t *testing.T) {
	var gotBody models.ScanRequest
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/scan", r.URL.Path, "Scan should hit the scan endpoint")
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(models.ScanResult{
			Success:          true,
			DetectedLanguage: "en",
			DietVerdict: &models.DietVerdict{
				Halal: &models.ProductVerdict{Status: "HALAL", Confidence: "HIGH"},
			},
			Ingredients: []models.Ingredient{{English: "Sugar", Normalized: "sugar"}},
			Analysis: []models.IngredientAnalysis{
				{Name: "sugar", Halal: &models.HalalVerdict{Status: "HALAL"}},
			},
		})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, staticToken("session-token"))
	profile := &models.UserProfile{Diet: "halal", Allergies: []string{"soy"}}

	result := c.Scan(context.Background(), jpegPayload, profile)

	require.True(t, result.Success, "A 2xx response with a success body should succeed")
	assert.Equal(t, "en", result.DetectedLanguage)
	require.NotNil(t, result.DietVerdict)
	assert.Equal(t, "HALAL", result.DietVerdict.Halal.Status)

	assert.Equal(t, jpegPayload, gotBody.Image, "The raw base64 payload should be forwarded")
	require.NotNil(t, gotBody.Profile, "The profile should travel with the request")
	assert.Equal(t, "halal", gotBody.Profile.Diet)
	assert.Equal(t, []string{"soy"}, gotBody.Profile.Allergies)
	assert.Equal(t, "Bearer session-token", gotAuth, "The session token should be attached as a bearer credential")
}

func TestScan_AnonymousKeyFallback(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(models.ScanResult{Success: true})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)

	result := c.Scan(context.Background(), jpegPayload, models.NewUserProfile())

	require.True(t, result.Success)
	assert.Equal(t, "Bearer anon-key", gotAuth, "An anonymous session should fall back to the public key")
}

func TestScan_ServerErrorFoldsIntoResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream OCR unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)

	result := c.Scan(context.Background(), jpegPayload, models.NewUserProfile())

	require.NotNil(t, result)
	assert.False(t, result.Success, "A non-2xx response should fail")
	assert.Contains(t, result.Error, "502", "The message should carry the status code")
	assert.Contains(t, result.Error, "upstream OCR unavailable", "The message should carry the body text")
}

func TestScan_MalformedBodyFoldsIntoResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)

	result := c.Scan(context.Background(), jpegPayload, models.NewUserProfile())

	assert.False(t, result.Success, "A malformed body should fail")
	assert.NotEmpty(t, result.Error, "The failure should carry a message")
}

func TestScan_TransportErrorFoldsIntoResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // immediately unreachable

	c := newTestClient(t, server.URL, nil)

	result := c.Scan(context.Background(), jpegPayload, models.NewUserProfile())

	assert.False(t, result.Success, "An unreachable backend should fail, not panic or propagate")
	assert.Contains(t, result.Error, "Network error", "Transport failures get a human-readable message")
}

func TestHealth(t *testing.T) {
	testCases := []struct {
		name     string
		handler  http.HandlerFunc
		expected bool
	}{
		{
			name: "Healthy backend reporting ok",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(models.HealthResponse{Status: "ok"})
			},
			expected: true,
		},
		{
			name: "Healthy backend reporting healthy",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(models.HealthResponse{Status: "healthy"})
			},
			expected: true,
		},
		{
			name: "Unhealthy status value",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(models.HealthResponse{Status: "degraded"})
			},
			expected: false,
		},
		{
			name: "Non-2xx response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			expected: false,
		},
		{
			name: "Malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("nope"))
			},
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			c := newTestClient(t, server.URL, nil)

			assert.Equal(t, tc.expected, c.Health(context.Background()),
				"Health should report reachability as a plain boolean")
		})
	}
}

func TestHealth_TransportFailureIsFalse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := newTestClient(t, server.URL, nil)

	assert.False(t, c.Health(context.Background()), "Transport failure yields false, never an error")
}

func TestSubmitFeedback(t *testing.T) {
	var got models.FeedbackRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/submit_feedback", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(models.FeedbackResult{Success: true})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)

	result := c.SubmitFeedback(context.Background(), "bug", "  scan misread the label  ", nil)

	require.True(t, result.Success)
	assert.NotEmpty(t, got.ID, "Each feedback submission should carry a generated id")
	assert.NotZero(t, got.Timestamp, "Each feedback submission should carry a timestamp")
	assert.Equal(t, "bug", got.Category)
	assert.Equal(t, "scan misread the label", got.Message, "The message should be trimmed")
}

func TestSubmitFeedback_ValidationFailsBeforeDispatch(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)

	result := c.SubmitFeedback(context.Background(), "rant", "message", nil)

	assert.False(t, result.Success, "An unknown category should be rejected")
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "No outbound request should be made for invalid feedback")

	result = c.SubmitFeedback(context.Background(), "bug", "   ", nil)

	assert.False(t, result.Success, "A blank message should be rejected")
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}
