package health

import (
	"fmt"
	"io"
	"time"

	json "github.com/goccy/go-json"
)

// NamedResult pairs a result with the checker that produced it.
type NamedResult struct {
	Name string
	Result
}

// Report is the outcome of Aggregator.CheckAll.
type Report struct {
	Status    Status
	Timestamp time.Time
	Checks    []NamedResult
}

// Healthy reports whether the overall status is not unhealthy. Degraded
// components still serve requests.
func (r Report) Healthy() bool {
	return r.Status != StatusUnhealthy
}

type reportJSON struct {
	Status    string      `json:"status"`
	Timestamp string      `json:"timestamp"`
	Checks    []checkJSON `json:"checks,omitempty"`
}

type checkJSON struct {
	Name     string         `json:"name"`
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// MarshalJSON encodes the report with string statuses and RFC 3339 time.
func (r Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		Status:    r.Status.String(),
		Timestamp: r.Timestamp.UTC().Format(time.RFC3339),
		Checks:    make([]checkJSON, 0, len(r.Checks)),
	}
	for _, c := range r.Checks {
		check := checkJSON{
			Name:     c.Name,
			Status:   c.Status.String(),
			Message:  c.Message,
			Duration: c.Duration.String(),
			Details:  c.Details,
		}
		if c.Error != nil {
			check.Error = c.Error.Error()
		}
		out.Checks = append(out.Checks, check)
	}
	return json.Marshal(out)
}

// WriteJSON writes the report as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText writes one line per check followed by the overall status.
func (r Report) WriteText(w io.Writer) error {
	for _, c := range r.Checks {
		line := fmt.Sprintf("%-10s %-9s %s", c.Name, c.Status, c.Message)
		if c.Error != nil {
			line += ": " + c.Error.Error()
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "overall: %s\n", r.Status)
	return err
}
