// Package classifier derives device categories and activity status from raw
// user attributes. All functions are pure and total.
package classifier

import (
	"strings"
	"time"

	"github.com/mssola/useragent"

	"huntboard/internal/directory/models"
)

const (
	// NewUserWindow is how long after signup a user counts as new.
	NewUserWindow = 24 * time.Hour
	// ActivityWindow is how far back sign-ins and applications count as recent.
	ActivityWindow = 7 * 24 * time.Hour
)

// tabletMarkers are checked before any mobile signal: a user agent matching
// both is a tablet.
var tabletMarkers = []string{"ipad", "tablet", "kindle", "silk", "playbook"}

// ClassifyDevice maps a user agent string to a device category.
// Tablet detection takes precedence over the generic mobile signal; absence
// of both yields desktop. Never fails, including on empty input.
func ClassifyDevice(userAgentString string) models.Device {
	if userAgentString == "" {
		return models.DeviceDesktop
	}

	lowered := strings.ToLower(userAgentString)
	for _, marker := range tabletMarkers {
		if strings.Contains(lowered, marker) {
			return models.DeviceTablet
		}
	}
	// Android tablets carry "Android" without the "Mobile" token.
	if strings.Contains(lowered, "android") && !strings.Contains(lowered, "mobile") {
		return models.DeviceTablet
	}

	if useragent.New(userAgentString).Mobile() {
		return models.DeviceMobile
	}
	return models.DeviceDesktop
}

// DetermineStatus derives the activity status of a user against a reference
// time. Precedence: joined within the last 24 hours wins; otherwise a sign-in
// or application within the last 7 days means active; everything else is
// inactive. Zero timestamps are absent signals, never errors.
func DetermineStatus(joinedAt, lastSignIn time.Time, recentApplication bool, now time.Time) models.Status {
	if withinWindow(joinedAt, now, NewUserWindow) {
		return models.StatusNew
	}
	if withinWindow(lastSignIn, now, ActivityWindow) || recentApplication {
		return models.StatusActive
	}
	return models.StatusInactive
}

func withinWindow(t, now time.Time, window time.Duration) bool {
	if t.IsZero() {
		return false
	}
	return !t.After(now) && now.Sub(t) <= window
}

// DisplayDevice extracts a human-readable device label from a user agent
// string, in the form "Browser on OS".
func DisplayDevice(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgentString)
	browser, _ := ua.Browser()
	os := ua.OS()

	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}

	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.TrimSpace(browser + " on " + os)
}
