package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"stopsim/internal/core"
)

// histogramWidth is the widest bar FormatText draws.
const histogramWidth = 40

// Report is everything the presentation layer shows after one run.
type Report struct {
	Params       core.Params
	Seed         uint64
	Elapsed      time.Duration
	Summary      *Summary
	Histograms   *Histograms
	Expectations *ExpectationResults
}

type jsonReport struct {
	Params         core.Params         `json:"params"`
	Seed           uint64              `json:"seed"`
	Elapsed        string              `json:"elapsed"`
	ElapsedSeconds float64             `json:"elapsed_seconds"`
	Summary        *Summary            `json:"summary"`
	Histograms     *Histograms         `json:"histograms,omitempty"`
	Expectations   *ExpectationResults `json:"expectations,omitempty"`
}

// MarshalJSON renders the report with a human-readable elapsed time.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonReport{
		Params:         r.Params,
		Seed:           r.Seed,
		Elapsed:        r.Elapsed.Round(time.Millisecond).String(),
		ElapsedSeconds: r.Elapsed.Seconds(),
		Summary:        r.Summary,
		Histograms:     r.Histograms,
		Expectations:   r.Expectations,
	})
}

// CheckExpectations evaluates exp against the JSON form of the report and
// attaches the results.
func (r *Report) CheckExpectations(exp Expectations) (*ExpectationResults, error) {
	if len(exp) == 0 {
		return nil, nil
	}
	doc, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	r.Expectations = exp.Check(doc)
	return r.Expectations, nil
}

// FormatJSON writes the report as indented JSON.
func FormatJSON(w io.Writer, r *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// FormatText writes the report in human-readable format.
func FormatText(w io.Writer, r *Report) {
	if r.Summary == nil || r.Summary.Trials == 0 {
		fmt.Fprintln(w, "No trials simulated")
		return
	}
	s := r.Summary

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Optimal Stopping - Simulation Results")
	fmt.Fprintln(w, "=====================================")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Items:          %s\n", FormatNumber(r.Params.Items))
	fmt.Fprintf(w, "Simulations:    %s\n", FormatNumber(s.Trials))
	fmt.Fprintf(w, "Look Ratio:     %s\n", FormatPercent(r.Params.LookRatio))
	fmt.Fprintf(w, "Threshold:      %s\n", FormatPercent(r.Params.ThresholdRatio))
	fmt.Fprintf(w, "Seed:           %d\n", r.Seed)
	fmt.Fprintf(w, "Duration:       %v\n", r.Elapsed.Round(time.Millisecond))
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Mean Statistics:")
	fmt.Fprintf(w, "  Best Option Pick Rate:       %s\n", FormatPercent(s.SuccessRate))
	fmt.Fprintf(w, "  Failure Rate (none matched): %s\n", FormatPercent(s.FailureRate))
	fmt.Fprintf(w, "  Average Stopping Position:   %s\n", ordinal(s.AvgPosition))
	fmt.Fprintf(w, "  Selected Value / Best Value: %s\n", FormatPercent(s.BestValueRate))
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Median Statistics:")
	fmt.Fprintf(w, "  Median Stopping Position:    %s\n", ordinal(s.MedianPosition))
	fmt.Fprintf(w, "  Median Selected Value:       %.2f\n", s.MedianValue)
	fmt.Fprintf(w, "  Median Best Possible Value:  %.2f\n", s.MedianBestPossible)
	fmt.Fprintf(w, "  Median Value / Best Value:   %.2f\n", s.MedianValueRate)

	if r.Histograms != nil {
		formatHistogram(w, "Selected Values", r.Histograms.SelectedValues, 2)
		formatHistogram(w, "Maximum Values", r.Histograms.MaximumValues, 2)
		formatHistogram(w, "Selected Positions", r.Histograms.Positions, 0)
	}

	if r.Expectations != nil && len(r.Expectations.Results) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Expectations:")
		for _, result := range r.Expectations.Results {
			symbol := "✓"
			if !result.Passed {
				symbol = "✗"
			}
			fmt.Fprintf(w, "  %s %s %s (actual: %s)\n",
				symbol, result.Name, result.Expected, result.Actual)
		}
	}
}

func formatHistogram(w io.Writer, title string, h Histogram, precision int) {
	if len(h.Counts) == 0 {
		return
	}
	peak := 0.0
	for _, c := range h.Counts {
		peak = max(peak, c)
	}

	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "%s:\n", title)
	for i, c := range h.Counts {
		if c == 0 {
			continue
		}
		bar := 0
		if peak > 0 {
			bar = int(c / peak * histogramWidth)
		}
		fmt.Fprintf(w, "  %8s  %-*s %s\n",
			strconv.FormatFloat(h.Dividers[i], 'f', precision, 64),
			histogramWidth, strings.Repeat("#", max(bar, 1)),
			FormatNumber(int(c)))
	}
}

// FormatPercent renders a [0,1] rate as a percentage with two decimals.
func FormatPercent(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}

// FormatNumber renders n with thousands separators.
func FormatNumber(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// ordinal renders a 0-based position as a rounded "Nth item".
func ordinal(pos float64) string {
	n := int(pos + 0.5)
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s item", n, suffix)
}
