package telegram

import (
	"fmt"
	"strings"

	"monthlymix/internal/model"
	"monthlymix/internal/service"
)

// maxErrorsShown ограничивает число ошибок в отчете
const maxErrorsShown = 5

// FormatReport форматирует отчет о запуске
func FormatReport(report *model.Report) string {
	var b strings.Builder

	status := "✅"
	if !report.Success {
		status = "❌"
	}
	fmt.Fprintf(&b, "%s %s\n", status, report.Message)
	if report.Month != "" {
		fmt.Fprintf(&b, "Month: %s\n", report.Month)
	}
	if report.Playlist != nil {
		fmt.Fprintf(&b, "Playlist: %s\n%s\n", report.Playlist.Name, report.Playlist.URL)
	}

	s := report.Stats
	fmt.Fprintf(&b, "Scanned %d, candidates %d, matched %d, added %d, skipped %d\n",
		s.ItemsScanned, s.CandidatesExtracted, s.TracksMatched, s.TracksAdded, s.TracksSkippedDuplicate)

	if len(s.Errors) > 0 {
		fmt.Fprintf(&b, "Errors (%d):\n", len(s.Errors))
		for i, e := range s.Errors {
			if i == maxErrorsShown {
				fmt.Fprintf(&b, "… and %d more\n", len(s.Errors)-maxErrorsShown)
				break
			}
			fmt.Fprintf(&b, "• %s\n", e)
		}
	}

	fmt.Fprintf(&b, "Run %s, %d ms", report.RunID, report.DurationMS)
	return b.String()
}

// FormatSummary форматирует статистику истории
func FormatSummary(summary *service.Summary) string {
	var b strings.Builder

	h := summary.History
	fmt.Fprintf(&b, "Playlists: %d, tracks: %d\n", h.Playlists, h.Tracks)
	if h.LastMonth != "" {
		fmt.Fprintf(&b, "Last month: %s\n", h.LastMonth)
	}
	if len(h.TopArtists) > 0 {
		b.WriteString("Top artists:\n")
		for i, a := range h.TopArtists {
			fmt.Fprintf(&b, "%d. %s (%d)\n", i+1, a.Artist, a.Tracks)
		}
	}
	if len(summary.Runs) > 0 {
		b.WriteString("Recent runs:\n")
		for _, r := range summary.Runs {
			mark := "✅"
			if !r.Success {
				mark = "❌"
			}
			fmt.Fprintf(&b, "%s %s %s (%s)\n", mark, r.MonthKey, r.Trigger, r.StartedAt.Format("2006-01-02 15:04"))
		}
	}

	return strings.TrimSpace(b.String())
}
