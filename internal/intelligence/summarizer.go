package intelligence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/LohithR22/DoseWise/internal/health"
)

// Summarizer produces the caregiver-facing plain-language report. The
// external service is optional; FallbackSummary is the deterministic
// rule-based rendering used when it is unavailable. Neither path feeds
// back into classification.

// SummarizerConfig holds summarizer client configuration
type SummarizerConfig struct {
	BaseURL string
	Enabled bool
	Timeout time.Duration
}

// Summarizer is an HTTP client for the external summary service
type Summarizer struct {
	baseURL    string
	enabled    bool
	httpClient *http.Client
}

// NewSummarizer creates a summarizer client. Construct and inject it;
// there is no package-level instance.
func NewSummarizer(cfg SummarizerConfig) *Summarizer {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Summarizer{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		enabled:    cfg.Enabled,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type summaryRequest struct {
	Profile    health.Profile    `json:"profile"`
	Alerts     []string          `json:"alerts"`
	Historical HistoricalContext `json:"historical,omitempty"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

// NoAlertsSummary is returned for an empty alert list on every summary
// path, service-backed or fallback.
const NoAlertsSummary = "No alerts at this time. Patient data is within expected ranges."

// GenerateCaregiverSummary returns a summary for the given alerts. The
// service is consulted when enabled; any failure falls back to the
// deterministic summary, never to an error the caller must handle.
func (s *Summarizer) GenerateCaregiverSummary(
	ctx context.Context,
	profile health.Profile,
	alerts []string,
	historical HistoricalContext,
) string {
	if len(alerts) == 0 {
		return NoAlertsSummary
	}
	if !s.enabled || s.baseURL == "" {
		return FallbackSummary(alerts, profile, historical)
	}

	body, err := json.Marshal(summaryRequest{Profile: profile, Alerts: alerts, Historical: historical})
	if err != nil {
		return FallbackSummary(alerts, profile, historical)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/summarize", bytes.NewReader(body))
	if err != nil {
		return FallbackSummary(alerts, profile, historical)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return FallbackSummary(alerts, profile, historical)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return FallbackSummary(alerts, profile, historical)
	}

	var out summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Summary == "" {
		return FallbackSummary(alerts, profile, historical)
	}
	return out.Summary
}

// FallbackSummary renders a deterministic caregiver report from the
// rule-based alerts and historical analytics.
func FallbackSummary(alerts []string, profile health.Profile, historical HistoricalContext) string {
	var b strings.Builder

	b.WriteString("PATIENT INTELLIGENCE REPORT\n\n")
	if profile.Name != "" {
		fmt.Fprintf(&b, "Patient: %s\n\n", profile.Name)
	}

	b.WriteString("CURRENT ALERTS:\n")
	for _, alert := range alerts {
		fmt.Fprintf(&b, "- %s\n", alert)
	}
	b.WriteString("\n")

	b.WriteString("HISTORICAL TRENDS (7 days):\n")
	fmt.Fprintf(&b, "- Medication adherence: %.1f%%\n", historical.Adherence.OverallRate)

	metrics := make([]string, 0, len(historical.VitalTrends.Metrics))
	for metric := range historical.VitalTrends.Metrics {
		metrics = append(metrics, metric)
	}
	sort.Strings(metrics)
	for _, metric := range metrics {
		summary := historical.VitalTrends.Metrics[metric]
		fmt.Fprintf(&b, "- %s: average %.1f, trend %s\n",
			strings.ReplaceAll(metric, "_", " "), summary.Average, summary.Trend)
	}
	b.WriteString("\n")

	b.WriteString("RECOMMENDATIONS:\n")
	b.WriteString("- Monitor the patient closely for the noted alerts\n")
	b.WriteString("- Ensure medications are taken as prescribed\n")
	b.WriteString("- Track vital signs regularly\n")
	b.WriteString("- Consider a routine checkup if patterns persist\n\n")

	b.WriteString("Note: This is automated analysis, not medical advice. Consult healthcare professionals for medical decisions.")
	return b.String()
}
