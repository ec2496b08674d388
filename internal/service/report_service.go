package service

import (
	"context"
	"fmt"
	"strings"

	"group-stats-bot/internal/repository"
)

// ReportService renders per-user activity breakdowns for one day.
type ReportService struct {
	stats *repository.StatsRepository
}

func NewReportService(stats *repository.StatsRepository) *ReportService {
	return &ReportService{stats: stats}
}

type kindCount struct {
	kind  string
	count int64
}

type userTotals struct {
	display string
	kinds   []kindCount
}

// Generate builds the report text for one date. Users appear in the order
// the day query returns them (ascending user id), each with a Markdown
// mention link and its kind counts. A day with no counters yields only the
// header line.
func (s *ReportService) Generate(ctx context.Context, date string) (string, error) {
	rows, err := s.stats.QueryDay(ctx, date)
	if err != nil {
		return "", err
	}

	order := make([]int64, 0, len(rows))
	byUser := make(map[int64]*userTotals)
	for _, row := range rows {
		totals, ok := byUser[row.UserID]
		if !ok {
			totals = &userTotals{display: displayName(row)}
			byUser[row.UserID] = totals
			order = append(order, row.UserID)
		}
		totals.kinds = append(totals.kinds, kindCount{kind: row.MessageType, count: row.Count})
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Statistics for %s in the bound group:\n", date))
	for _, userID := range order {
		totals := byUser[userID]
		parts := make([]string, 0, len(totals.kinds))
		for _, kc := range totals.kinds {
			parts = append(parts, fmt.Sprintf("%s: %d", kc.kind, kc.count))
		}
		builder.WriteString(fmt.Sprintf("\n[%s](tg://user?id=%d): %s", totals.display, userID, strings.Join(parts, ", ")))
	}

	return builder.String(), nil
}

// displayName prefers "@username", falls back to "first last" trimmed, and
// collapses to an empty string when the user has no profile at all.
func displayName(row repository.DayRow) string {
	if row.Username != nil && *row.Username != "" {
		return "@" + *row.Username
	}
	var first, last string
	if row.FirstName != nil {
		first = *row.FirstName
	}
	if row.LastName != nil {
		last = *row.LastName
	}
	return strings.TrimSpace(first + " " + last)
}
