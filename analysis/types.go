package analysis

import (
	"strings"

	"github.com/jonwraymond/resumekit/cache"
)

// Request asks for one analysis of a resume against a target role.
type Request struct {
	// ResumeID is the resume identifier or a codec token for it.
	ResumeID string

	// Target is the role or job description id the resume is scored against.
	Target string

	// Tier selects the analysis variant, e.g. "basic" or "premium". Results
	// for different tiers are cached separately.
	Tier string
}

// Validate reports whether the request can be sent.
func (r Request) Validate() error {
	if strings.TrimSpace(r.ResumeID) == "" {
		return ErrInvalidRequest
	}
	return nil
}

// Key returns the cache key for r. r.ResumeID must already be decoded.
func (r Request) Key() (cache.Key, error) {
	return cache.NewKey(map[string]string{
		"resume_id": r.ResumeID,
		"target":    r.Target,
	}, r.Tier)
}

// Analysis is the remote result, cached verbatim.
type Analysis struct {
	ResumeID  string   `json:"resume_id"`
	Target    string   `json:"target,omitempty"`
	Tier      string   `json:"tier,omitempty"`
	Score     float64  `json:"score"`
	Summary   string   `json:"summary,omitempty"`
	Strengths []string `json:"strengths,omitempty"`
	Gaps      []string `json:"gaps,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
}

// Result is what Analyze returns.
type Result struct {
	Analysis

	// Cached reports whether the analysis was served from the cache.
	Cached bool
}
