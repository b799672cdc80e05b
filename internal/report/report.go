// Package report aggregates a run's result records into summary statistics,
// per-bucket performance figures, and advisory findings.
package report

import (
	"fmt"
	"time"

	"github.com/bartekus/boltzsuite/internal/backoff"
	"github.com/bartekus/boltzsuite/internal/suite"
)

// Report is the aggregate view of one run.
type Report struct {
	RunID          string   `json:"run_id,omitempty"`
	Total          int      `json:"total"`
	Succeeded      int      `json:"succeeded"`
	Failed         int      `json:"failed"`
	Skipped        int      `json:"skipped"`
	SuccessRate    float64  `json:"success_rate"` // percent
	ElapsedSeconds float64  `json:"elapsed_seconds"`
	Rows           []Row    `json:"rows"`
	Buckets        []Bucket `json:"buckets,omitempty"`
	Findings       []string `json:"findings,omitempty"`
	Verdict        string   `json:"verdict"`
}

// Row is the per-record detail listing.
type Row struct {
	Name       string          `json:"name"`
	Interface  suite.Interface `json:"interface"`
	Endpoint   suite.Endpoint  `json:"endpoint"`
	Status     suite.Status    `json:"status"`
	Seconds    float64         `json:"seconds"`
	Confidence *float64        `json:"confidence,omitempty"`
	Structures *int            `json:"structures,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

// Bucket groups successful records by (interface, endpoint). Confidence is
// averaged only over records that actually carry a value.
type Bucket struct {
	Interface     suite.Interface `json:"interface"`
	Endpoint      suite.Endpoint  `json:"endpoint"`
	Count         int             `json:"count"`
	AvgSeconds    float64         `json:"avg_seconds"`
	AvgConfidence *float64        `json:"avg_confidence,omitempty"`
}

// Summarize builds the report from a finished run's records. It never
// divides by zero: an empty run reports a 0% success rate.
func Summarize(runID string, records []*suite.Result, elapsed time.Duration) *Report {
	rep := &Report{
		RunID:          runID,
		Total:          len(records),
		ElapsedSeconds: elapsed.Seconds(),
	}

	for _, rec := range records {
		switch rec.Status {
		case suite.StatusSuccess:
			rep.Succeeded++
		case suite.StatusFailed:
			rep.Failed++
		case suite.StatusSkipped:
			rep.Skipped++
		}
		rep.Rows = append(rep.Rows, Row{
			Name:       rec.Name,
			Interface:  rec.Interface,
			Endpoint:   rec.Endpoint,
			Status:     rec.Status,
			Seconds:    rec.Seconds(),
			Confidence: rec.Confidence,
			Structures: rec.Structures,
			Notes:      notes(rec),
		})
	}

	if rep.Total > 0 {
		rep.SuccessRate = float64(rep.Succeeded) / float64(rep.Total) * 100
	}

	rep.Buckets = buckets(records)
	rep.Findings = findings(records, rep)
	rep.Verdict = verdict(rep)
	return rep
}

func notes(rec *suite.Result) string {
	if rec.Error != "" {
		msg := rec.Error
		if len(msg) > 60 {
			msg = msg[:57] + "..."
		}
		return msg
	}
	if len(rec.Details) == 0 {
		return ""
	}
	// Surface the stable annotation keys only; values are free-form.
	for _, key := range []string{"alignment_guided", "ligand_type", "bond_type", "complex_type", "config_type"} {
		if v, ok := rec.Details[key]; ok {
			return key + "=" + v
		}
	}
	return ""
}

func buckets(records []*suite.Result) []Bucket {
	var out []Bucket
	for _, iface := range []suite.Interface{suite.InterfaceAPI, suite.InterfaceCLI} {
		for _, ep := range []suite.Endpoint{suite.EndpointLocal, suite.EndpointNvidia} {
			var durSum float64
			var confSum float64
			count, confCount := 0, 0
			for _, rec := range records {
				if rec.Interface != iface || rec.Endpoint != ep || rec.Status != suite.StatusSuccess {
					continue
				}
				count++
				durSum += rec.Seconds()
				if rec.Confidence != nil {
					confCount++
					confSum += *rec.Confidence
				}
			}
			if count == 0 {
				continue
			}
			b := Bucket{
				Interface:  iface,
				Endpoint:   ep,
				Count:      count,
				AvgSeconds: durSum / float64(count),
			}
			if confCount > 0 {
				avg := confSum / float64(confCount)
				b.AvgConfidence = &avg
			}
			out = append(out, b)
		}
	}
	return out
}

// findings derives the advisory observations. They are informational text,
// never pass/fail gates.
func findings(records []*suite.Result, rep *Report) []string {
	var out []string

	var hostedFailures, rateLimited int
	for _, rec := range records {
		if rec.Endpoint == suite.EndpointNvidia && rec.Status == suite.StatusFailed {
			hostedFailures++
			if backoff.RateLimitedMessage(rec.Error) {
				rateLimited++
			}
		}
	}
	if rateLimited > 0 {
		out = append(out, fmt.Sprintf("%d rate-limit failures on the hosted endpoint - backoff delays may be insufficient", rateLimited))
	} else if hostedFailures > 0 {
		out = append(out, "hosted failures occurred but none were rate-limit-related - backoff protection effective")
	}

	if countSuccesses(records, func(r *suite.Result) bool { return r.Name == "04_covalent_complex" }) > 0 {
		out = append(out, "covalent complex predictions accepted the residue/ligand atom pairing")
	}

	if n := countSuccesses(records, func(r *suite.Result) bool { return r.Endpoint == suite.EndpointLocal }); n > 0 {
		out = append(out, fmt.Sprintf("local endpoint: %d successful cases", n))
	}
	if n := countSuccesses(records, func(r *suite.Result) bool { return r.Endpoint == suite.EndpointNvidia }); n > 0 {
		out = append(out, fmt.Sprintf("hosted endpoint: %d successful cases", n))
	}
	if n := countSuccesses(records, func(r *suite.Result) bool { return r.Interface == suite.InterfaceAPI }); n > 0 {
		out = append(out, fmt.Sprintf("direct API: %d successful cases", n))
	}
	if n := countSuccesses(records, func(r *suite.Result) bool { return r.Interface == suite.InterfaceCLI }); n > 0 {
		out = append(out, fmt.Sprintf("CLI: %d successful cases", n))
	}

	if rep.Failed > 0 {
		out = append(out, fmt.Sprintf("%d cases failed - see the detail listing", rep.Failed))
	}
	return out
}

func countSuccesses(records []*suite.Result, match func(*suite.Result) bool) int {
	n := 0
	for _, rec := range records {
		if rec.Status == suite.StatusSuccess && match(rec) {
			n++
		}
	}
	return n
}

func verdict(rep *Report) string {
	switch {
	case rep.Total == 0:
		return "no cases were executed"
	case rep.Failed == 0:
		return "all executed cases passed"
	case float64(rep.Failed) < float64(rep.Total)/2:
		return "mostly successful, some failures need review"
	default:
		return "significant issues detected"
	}
}
