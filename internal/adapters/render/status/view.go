package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/stwcert/internal/application"
	"github.com/bnema/stwcert/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// validityWindow is the span the remaining-validity bar is drawn against.
const validityWindow = 90 * 24 * time.Hour

type RenderOptions struct {
	Now       time.Time
	Threshold time.Duration
}

// Render draws the renewal decision of every checked domain.
func Render(results []application.CheckResult, opts RenderOptions) (string, error) {
	return run(func(s styles) string {
		return renderChecks(results, opts, s)
	})
}

// RenderBatch summarizes a batch renewal run.
func RenderBatch(results []application.BatchResult) (string, error) {
	return run(func(s styles) string {
		return renderBatch(results, s)
	})
}

func renderChecks(results []application.CheckResult, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Certificate status"),
		s.header.Render(fmt.Sprintf("domains: %d, renew within %s", len(results), formatDuration(opts.Threshold))),
	}

	if len(results) == 0 {
		lines = append(lines, s.empty.Render("No domains checked."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, result := range results {
		lines = append(lines, s.section.Render(renderCheck(result, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderCheck(result application.CheckResult, opts RenderOptions, s styles) string {
	parts := []string{s.domain.Render(result.Domain)}

	switch {
	case result.Err != nil:
		parts = append(parts, s.failure.Render("error: "+result.Err.Error()))
	case result.Decision.CurrentExpiry == nil:
		parts = append(parts, s.warning.Render("no certificate on panel, renewal needed"))
	default:
		parts = append(parts, expiryLine(result.Decision, opts, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func expiryLine(decision domain.RenewalDecision, opts RenderOptions, s styles) string {
	expiry := *decision.CurrentExpiry
	remaining := expiry.Sub(opts.Now)

	bar := renderProgressBar(remaining, validityWindow, 24, s)
	dateStyle := lipgloss.NewStyle().Foreground(interpolateColor(remaining.Hours(), 0, validityWindow.Hours()))
	date := dateStyle.Render(fmt.Sprintf("expires %s (%s)", expiry.UTC().Format(domain.ValidityLayout), formatRemaining(expiry, opts.Now)))

	verdict := s.ok.Render("ok")
	if decision.NeedsUpdate {
		verdict = s.warning.Render("renewal needed")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, bar, " ", date, " ", verdict)
}

func renderBatch(results []application.BatchResult, s styles) string {
	counts := map[domain.UploadAction]int{}
	failed := 0
	lines := []string{s.title.Render("Renewal summary")}

	for _, result := range results {
		name := s.domain.Render(result.Entry.Domain)
		if result.Err != nil {
			failed++
			lines = append(lines, name+" "+s.failure.Render("failed: "+result.Err.Error()))
			continue
		}

		counts[result.Outcome.Action]++
		line := name + " " + s.detail.Render(string(result.Outcome.Action))
		if result.Outcome.LogicalID != "" {
			line += " " + s.header.Render("("+result.Outcome.LogicalID+")")
		}
		lines = append(lines, line)
	}

	lines = append(lines, s.section.Render(s.header.Render(fmt.Sprintf(
		"registered: %d, updated: %d, skipped: %d, failed: %d",
		counts[domain.ActionRegistered], counts[domain.ActionUpdated], counts[domain.ActionSkipped], failed,
	))))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderProgressBar(remaining, window time.Duration, width int, s styles) string {
	if width <= 0 || window <= 0 {
		return ""
	}

	fraction := clamp(remaining.Seconds()/window.Seconds(), 0, 1)
	filled := int(math.Round(float64(width) * fraction))
	empty := width - filled

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", empty)),
		s.barBracket.Render("]"),
	)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func formatRemaining(expiry, now time.Time) string {
	if now.IsZero() {
		return "unknown"
	}
	if !expiry.After(now) {
		return "expired"
	}

	remaining := expiry.Sub(now)
	if remaining < 24*time.Hour {
		hours := int(math.Ceil(remaining.Hours()))
		if hours == 1 {
			return "in 1 hour"
		}
		return fmt.Sprintf("in %d hours", hours)
	}

	days := int(remaining.Hours() / 24)
	if days == 1 {
		return "in 1 day"
	}
	return fmt.Sprintf("in %d days", days)
}

func formatDuration(d time.Duration) string {
	if d > 0 && d%(24*time.Hour) == 0 {
		return fmt.Sprintf("%d days", int(d/(24*time.Hour)))
	}
	return d.String()
}

// interpolateColor maps value onto the 240..255 greyscale ramp, brighter as
// value approaches hi.
func interpolateColor(value, lo, hi float64) lipgloss.Color {
	if hi == lo {
		return lipgloss.Color("255")
	}

	normalized := clamp((value-lo)/(hi-lo), 0, 1)
	return lipgloss.Color(fmt.Sprintf("%d", int(240+15*normalized)))
}
