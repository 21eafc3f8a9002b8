// Package models defines the user directory domain types shared by the
// enrichment, engine, service and export layers.
package models

import "time"

// Device is the device category derived from a user agent string.
type Device string

const (
	DeviceMobile  Device = "mobile"
	DeviceDesktop Device = "desktop"
	DeviceTablet  Device = "tablet"
)

// AuthMode distinguishes fully authenticated accounts from local-only ones.
type AuthMode string

const (
	AuthModeAuthenticated AuthMode = "authenticated"
	AuthModeLocal         AuthMode = "local"
)

// Status is the derived activity status of a user.
// It is a pure function of the record's timestamps and application activity
// against a reference time, re-derived on every load.
type Status string

const (
	StatusNew      Status = "new"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// UserRecord is one enriched directory entry. Records are constructed once
// per load cycle and never mutated in place; a refresh replaces the whole
// collection.
type UserRecord struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`

	JoinedAt     time.Time `json:"joinDate"`
	LastActiveAt time.Time `json:"lastActive"`
	LastSignInAt time.Time `json:"lastSignIn,omitzero"`

	TotalApplications int `json:"totalApplications"`

	Device      Device   `json:"deviceType"`
	DeviceLabel string   `json:"deviceLabel,omitempty"`
	AuthMode    AuthMode `json:"authMode"`
	Status      Status   `json:"status"`
	Admin       bool     `json:"isAdmin"`

	// Session fields are zero when the source carries no instrumentation.
	// They are never fabricated.
	SessionCount       int           `json:"sessionCount"`
	AvgSessionDuration time.Duration `json:"avgSessionDuration"`

	// Metadata holds raw provider-specific attributes. It never crosses the
	// export boundary.
	Metadata map[string]string `json:"-"`
}

// RawUser is the untrusted source-of-record shape, validated once at the
// enrichment boundary. Pointer fields model genuinely optional attributes.
type RawUser struct {
	ID            string    `validate:"required,notblank"`
	Email         *string   `validate:"omitempty,email"`
	DisplayName   *string
	CreatedAt     time.Time `validate:"required"`
	LastSignInAt  *time.Time
	UserAgent     string
	Authenticated bool
	Admin         bool
	SessionCount  *int   `validate:"omitempty,gte=0"`
	AvgSessionMS  *int64 `validate:"omitempty,gte=0"`
	Metadata      map[string]string
}

// RawApplication is one job application as delivered by the source of record.
type RawApplication struct {
	ID        string `validate:"required,notblank"`
	UserID    string `validate:"required,notblank"`
	Company   string
	Role      string
	Status    string
	CreatedAt time.Time `validate:"required"`
}

// SortKey selects the directory ordering.
type SortKey string

const (
	SortByLastActive   SortKey = "lastActive"
	SortByJoinDate     SortKey = "joinDate"
	SortByApplications SortKey = "applications"
)

// StatusFilter restricts the directory to one activity status.
type StatusFilter string

const (
	FilterAll      StatusFilter = "all"
	FilterActive   StatusFilter = "active"
	FilterInactive StatusFilter = "inactive"
	FilterNew      StatusFilter = "new"
)

// DirectoryQuery is the transient query state applied to a directory view.
type DirectoryQuery struct {
	Search string
	Status StatusFilter
	Sort   SortKey
}

// AggregateStats is a derived, read-only summary over the full, unfiltered
// user collection.
type AggregateStats struct {
	TotalUsers             int    `json:"totalUsers"`
	ActiveUsers            int    `json:"activeUsers"`
	NewUsersThisWeek       int    `json:"newUsersThisWeek"`
	TotalApplications      int    `json:"totalApplications"`
	AvgApplicationsPerUser int    `json:"averageApplicationsPerUser"`
	MostActiveUser         string `json:"mostActiveUser"`
}

// RefreshStatus describes the outcome of the most recent load.
type RefreshStatus string

const (
	RefreshIdle    RefreshStatus = "idle"
	RefreshSuccess RefreshStatus = "success"
	RefreshError   RefreshStatus = "error"
)

// RefreshState is the observable load/refresh status of the directory.
type RefreshState struct {
	IsRefreshing        bool          `json:"isRefreshing"`
	LastRefresh         time.Time     `json:"lastRefreshTimestamp"`
	Status              RefreshStatus `json:"refreshStatus"`
	AutoRefreshEnabled  bool          `json:"autoRefreshEnabled"`
	AutoRefreshInterval time.Duration `json:"autoRefreshInterval"`
	Errors              []string      `json:"refreshErrors"`
}
