// Package engine implements the user directory query engine: multi-field
// search, status filtering, stable multi-key sorting and aggregate
// statistics. All functions are pure; the input collection is never mutated.
package engine

import (
	"math"
	"sort"
	"strings"
	"time"

	"huntboard/internal/directory/models"
)

// Search returns the records matching the query, ordered by the query's sort
// key. A record passes when it matches both the search term and the status
// filter. The input slice is left untouched; the result is a fresh slice.
func Search(users []models.UserRecord, q models.DirectoryQuery) []models.UserRecord {
	term := strings.ToLower(strings.TrimSpace(q.Search))

	result := make([]models.UserRecord, 0, len(users))
	for _, u := range users {
		if !matchesTerm(u, term) {
			continue
		}
		if !matchesStatus(u, q.Status) {
			continue
		}
		result = append(result, u)
	}

	sortRecords(result, q.Sort)
	return result
}

// matchesTerm reports whether the term is a case-insensitive substring of the
// record's email, display name or id. An empty term matches everything.
func matchesTerm(u models.UserRecord, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(u.Email), term) ||
		strings.Contains(strings.ToLower(u.DisplayName), term) ||
		strings.Contains(strings.ToLower(u.ID), term)
}

func matchesStatus(u models.UserRecord, filter models.StatusFilter) bool {
	if filter == "" || filter == models.FilterAll {
		return true
	}
	return string(u.Status) == string(filter)
}

// sortRecords stably sorts descending by the selected key. An unknown key
// preserves the input order. Zero timestamps compare as oldest, so records
// with missing data sink to the bottom instead of breaking the sort.
func sortRecords(records []models.UserRecord, key models.SortKey) {
	switch key {
	case models.SortByLastActive:
		sort.SliceStable(records, func(i, j int) bool {
			return moreRecent(records[i].LastActiveAt, records[j].LastActiveAt)
		})
	case models.SortByJoinDate:
		sort.SliceStable(records, func(i, j int) bool {
			return moreRecent(records[i].JoinedAt, records[j].JoinedAt)
		})
	case models.SortByApplications:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].TotalApplications > records[j].TotalApplications
		})
	}
}

// moreRecent is a strict "greater" comparator on timestamps: equal values
// (including two zero times) report false so the stable sort keeps input order.
func moreRecent(a, b time.Time) bool {
	return a.After(b)
}

// Aggregate derives summary statistics over the FULL user collection.
// Aggregate figures are independent of any filtered view; callers must pass
// the unfiltered snapshot.
func Aggregate(users []models.UserRecord, now time.Time) models.AggregateStats {
	stats := models.AggregateStats{
		TotalUsers:     len(users),
		MostActiveUser: "N/A",
	}

	weekAgo := now.Add(-7 * 24 * time.Hour)
	maxApplications := -1
	for _, u := range users {
		if u.Status == models.StatusActive {
			stats.ActiveUsers++
		}
		if !u.JoinedAt.Before(weekAgo) {
			stats.NewUsersThisWeek++
		}
		stats.TotalApplications += u.TotalApplications
		// Ties keep the first occurrence in input order.
		if u.TotalApplications > maxApplications {
			maxApplications = u.TotalApplications
			stats.MostActiveUser = displayLabel(u)
		}
	}

	if stats.TotalUsers > 0 {
		stats.AvgApplicationsPerUser = int(math.Round(float64(stats.TotalApplications) / float64(stats.TotalUsers)))
	}
	return stats
}

func displayLabel(u models.UserRecord) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}
