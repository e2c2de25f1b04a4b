package analysis

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/jonwraymond/resumekit/cache"
)

const (
	analysesPath = "/v1/analyses"

	headerRemaining  = "X-RateLimit-Remaining"
	headerReset      = "X-RateLimit-Reset"
	headerRetryAfter = "Retry-After"

	// maxBodyBytes bounds how much of a response body is read.
	maxBodyBytes = 1 << 20

	// defaultRetryAfter is the backoff assumed for a 429 with no reset hint.
	defaultRetryAfter = time.Minute
)

type requestBody struct {
	ResumeID string `json:"resume_id"`
	Target   string `json:"target,omitempty"`
	Tier     string `json:"tier,omitempty"`
}

type responseBody struct {
	Result    *Analysis `json:"result"`
	ExpiresAt time.Time `json:"expires_at"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func encodeRequest(r Request) ([]byte, error) {
	return json.Marshal(requestBody{ResumeID: r.ResumeID, Target: r.Target, Tier: r.Tier})
}

func decodeResponse(body io.Reader) (Analysis, time.Time, error) {
	var out responseBody
	if err := json.NewDecoder(io.LimitReader(body, maxBodyBytes)).Decode(&out); err != nil {
		return Analysis{}, time.Time{}, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	if out.Result == nil {
		return Analysis{}, time.Time{}, fmt.Errorf("%w: missing result", ErrBadResponse)
	}
	return *out.Result, out.ExpiresAt, nil
}

// errorMessage extracts a short message from an error body. Non-JSON bodies
// are used as-is, truncated.
func errorMessage(body io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(body, 4096))
	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// parseRateLimit reads the call budget headers. ok is false when the
// response carries neither header. A 429 always yields a snapshot with no
// calls remaining.
func parseRateLimit(h http.Header, status int, now time.Time) (cache.RateLimit, bool) {
	remainingRaw := h.Get(headerRemaining)
	resetRaw := h.Get(headerReset)

	var rl cache.RateLimit
	found := false
	if n, err := strconv.Atoi(strings.TrimSpace(remainingRaw)); err == nil {
		rl.Remaining = n
		found = true
	}
	if secs, err := strconv.ParseInt(strings.TrimSpace(resetRaw), 10, 64); err == nil {
		rl.ResetAt = time.Unix(secs, 0)
		found = true
	}

	if status == http.StatusTooManyRequests {
		rl.Remaining = 0
		if rl.ResetAt.IsZero() || !rl.ResetAt.After(now) {
			rl.ResetAt = now.Add(retryAfter(h))
		}
		return rl, true
	}
	return rl, found
}

func retryAfter(h http.Header) time.Duration {
	if secs, err := strconv.Atoi(strings.TrimSpace(h.Get(headerRetryAfter))); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultRetryAfter
}
