package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/polidigest/internal/core/domain"
)

// palette holds the digest colours.
type palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
}

func defaultPalette() palette {
	return palette{
		Primary:   lipgloss.Color("#7C3AED"), // Purple
		Secondary: lipgloss.Color("#06B6D4"), // Cyan
		Muted:     lipgloss.Color("#6C7086"), // Medium gray
		Success:   lipgloss.Color("#A6E3A1"), // Green
		Warning:   lipgloss.Color("#F9E2AF"), // Yellow
		Error:     lipgloss.Color("#F38BA8"), // Red
	}
}

// styles renders digest output. The zero value prints plain text.
type styles struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

func plainStyles() styles {
	plain := lipgloss.NewStyle()
	return styles{Title: plain, Heading: plain, Muted: plain, Success: plain, Warning: plain, Error: plain}
}

func colourStyles(p palette) styles {
	return styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(p.Primary),
		Heading: lipgloss.NewStyle().Bold(true).Foreground(p.Secondary),
		Muted:   lipgloss.NewStyle().Foreground(p.Muted),
		Success: lipgloss.NewStyle().Foreground(p.Success),
		Warning: lipgloss.NewStyle().Foreground(p.Warning),
		Error:   lipgloss.NewStyle().Foreground(p.Error),
	}
}

// stylesFor colours output only when w is a terminal.
func stylesFor(w io.Writer) styles {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return colourStyles(defaultPalette())
	}
	return plainStyles()
}

// status picks the style matching a compliance tier.
func (s styles) status(status domain.ComplianceStatus) lipgloss.Style {
	switch status {
	case domain.StatusCompliant:
		return s.Success
	case domain.StatusReviewRecommended:
		return s.Warning
	default:
		return s.Error
	}
}

func (s styles) severity(sev domain.Severity) lipgloss.Style {
	switch sev {
	case domain.SeverityHigh:
		return s.Error
	case domain.SeverityMedium:
		return s.Warning
	default:
		return s.Muted
	}
}

func renderDigest(w io.Writer, r *domain.AnalysisResult, st styles) {
	fmt.Fprintf(w, "%s %s\n\n", st.Title.Render("Policy digest"), st.Muted.Render(r.URI))

	if !r.Success {
		fmt.Fprintf(w, "%s %s\n", st.Error.Render("Analysis failed:"), r.Error)
		return
	}

	if r.Summary != nil {
		renderSummary(w, r.Summary, st)
	} else {
		fmt.Fprintln(w, st.Muted.Render("Summary skipped: no LLM provider configured."))
		fmt.Fprintln(w)
	}

	renderEntities(w, r.Entities, st)
	if r.Compliance != nil {
		renderCompliance(w, r.Compliance, st)
	}

	m := r.Metrics
	fmt.Fprintln(w, st.Muted.Render(fmt.Sprintf(
		"%d words -> %d words, %d chunks (%d fell back), %s",
		m.OriginalWords, m.SummaryWords, m.Chunks, m.ChunkFallbacks, m.Duration.Round(time.Millisecond))))
}

func renderSummary(w io.Writer, s *domain.SummaryResult, st styles) {
	fmt.Fprintln(w, st.Heading.Render(fmt.Sprintf("Summary (%d words, readability %.1f)", s.WordCount, s.Readability)))
	fmt.Fprintln(w, s.Text)
	fmt.Fprintln(w)

	for _, name := range []string{domain.SectionIntroduction, domain.SectionKeyInsights, domain.SectionConclusion} {
		sentences := s.Sections[name]
		if len(sentences) == 0 {
			continue
		}
		fmt.Fprintln(w, st.Heading.Render(name))
		for _, sentence := range sentences {
			fmt.Fprintf(w, "  %s.\n", sentence)
		}
		fmt.Fprintln(w)
	}

	if len(s.KeyFindings) > 0 {
		fmt.Fprintln(w, st.Heading.Render("Key findings"))
		for _, f := range s.KeyFindings {
			fmt.Fprintf(w, "  - %s\n", f)
		}
		fmt.Fprintln(w)
	}

	if len(s.PolicySections) > 0 {
		fmt.Fprintln(w, st.Heading.Render("Policy sections"))
		titles := make([]string, 0, len(s.PolicySections))
		for title := range s.PolicySections {
			titles = append(titles, title)
		}
		sort.Strings(titles)
		for _, title := range titles {
			section := s.PolicySections[title]
			label := title
			if section.Fallback {
				label += " " + st.Muted.Render("(excerpt)")
			}
			fmt.Fprintf(w, "  %s\n    %s\n", label, section.Text)
		}
		fmt.Fprintln(w)
	}
}

func renderEntities(w io.Writer, e domain.Entities, st styles) {
	fmt.Fprintln(w, st.Heading.Render("Entities"))
	if len(e) == 0 {
		fmt.Fprintln(w, st.Muted.Render("  none found"))
		fmt.Fprintln(w)
		return
	}
	for _, c := range domain.AllEntityCategories() {
		if v, ok := e.Get(c); ok {
			fmt.Fprintf(w, "  %-16s %s\n", entityLabel(c)+":", v)
		}
	}
	fmt.Fprintln(w)
}

func renderCompliance(w io.Writer, r *domain.ComplianceReport, st styles) {
	fmt.Fprintf(w, "%s %s\n",
		st.Heading.Render(fmt.Sprintf("Compliance %d/100", r.Score)),
		st.status(r.Status).Render(r.Status.Description()))

	if missing := r.Missing(); len(missing) > 0 {
		fmt.Fprintf(w, "  Missing clauses: %s\n", strings.Join(missing, ", "))
	}
	for _, f := range r.RiskFlags {
		fmt.Fprintf(w, "  %s %s: %s\n", st.severity(f.Severity).Render("["+string(f.Severity)+"]"), f.Phrase, f.Description)
	}
	for _, rec := range r.Recommendations {
		fmt.Fprintf(w, "  > %s\n", rec)
	}
	fmt.Fprintln(w)
}

// entityLabel turns "premium_amount" into "Premium amount".
func entityLabel(c domain.EntityCategory) string {
	s := strings.ReplaceAll(string(c), "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
