// Package export assembles the downloadable JSON snapshot documents.
// Documents are pretty-printed UTF-8 JSON with stable keys; raw provider
// metadata never crosses this boundary.
package export

import (
	"encoding/json"
	"fmt"
	"time"

	"huntboard/internal/directory/models"
	dErrors "huntboard/pkg/domain-errors"
)

// product is the filename prefix for every export.
const product = "huntboard"

// SystemInfo describes the exporting service.
type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

// UserExport is the user-directory snapshot document.
type UserExport struct {
	ExportDate      time.Time             `json:"exportDate"`
	UserStats       models.AggregateStats `json:"userStats"`
	AllUsers        []models.UserRecord   `json:"allUsers"`
	SystemInfo      SystemInfo            `json:"systemInfo"`
	RefreshMetadata models.RefreshState   `json:"refreshMetadata"`
}

// AnalyticsData summarizes the application collection.
type AnalyticsData struct {
	TotalApplications    int            `json:"totalApplications"`
	ByStatus             map[string]int `json:"byStatus"`
	ApplicationsThisWeek int            `json:"applicationsThisWeek"`
	DistinctCompanies    int            `json:"distinctCompanies"`
}

// AnalyticsExport is the analytics snapshot document.
type AnalyticsExport struct {
	ExportDate      time.Time             `json:"exportDate"`
	TimeRange       string                `json:"timeRange"`
	Analytics       AnalyticsData         `json:"analytics"`
	Summary         models.AggregateStats `json:"summary"`
	RefreshMetadata models.RefreshState   `json:"refreshMetadata"`
}

// Exporter builds export documents stamped with system information.
type Exporter struct {
	info SystemInfo
}

// New constructs an Exporter.
func New(version, environment string) *Exporter {
	return &Exporter{info: SystemInfo{Version: version, Environment: environment}}
}

// BuildUserExport assembles the user snapshot document. An empty collection
// produces a valid document with an empty (never null) allUsers array.
func (e *Exporter) BuildUserExport(users []models.UserRecord, stats models.AggregateStats, state models.RefreshState, now time.Time) UserExport {
	if users == nil {
		users = []models.UserRecord{}
	}
	return UserExport{
		ExportDate:      now.UTC(),
		UserStats:       stats,
		AllUsers:        users,
		SystemInfo:      e.info,
		RefreshMetadata: state,
	}
}

// BuildAnalyticsExport assembles the analytics document over the application
// collection.
func (e *Exporter) BuildAnalyticsExport(apps []models.RawApplication, stats models.AggregateStats, state models.RefreshState, timeRange string, now time.Time) AnalyticsExport {
	byStatus := make(map[string]int)
	companies := make(map[string]struct{})
	thisWeek := 0
	weekAgo := now.Add(-7 * 24 * time.Hour)
	for _, app := range apps {
		status := app.Status
		if status == "" {
			status = "unknown"
		}
		byStatus[status]++
		if app.Company != "" {
			companies[app.Company] = struct{}{}
		}
		if !app.CreatedAt.Before(weekAgo) {
			thisWeek++
		}
	}
	if timeRange == "" {
		timeRange = "all"
	}
	return AnalyticsExport{
		ExportDate: now.UTC(),
		TimeRange:  timeRange,
		Analytics: AnalyticsData{
			TotalApplications:    len(apps),
			ByStatus:             byStatus,
			ApplicationsThisWeek: thisWeek,
			DistinctCompanies:    len(companies),
		},
		Summary:         stats,
		RefreshMetadata: state,
	}
}

// Marshal renders a document as pretty-printed JSON with 2-space indent.
func Marshal(doc any) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to serialize export")
	}
	return data, nil
}

// Filename returns the download filename for a subject, e.g.
// "huntboard-users-2025-06-15.json".
func Filename(subject string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s.json", product, subject, now.UTC().Format("2006-01-02"))
}
