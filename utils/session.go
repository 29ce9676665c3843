package utils

import (
	"fmt"
	"net"
	"strings"

	ua "github.com/mileusna/useragent"
)

// ParseUserAgent extracts browser, OS and device class from a User-Agent.
func ParseUserAgent(userAgent string) (browser, os, device string) {
	if userAgent == "" {
		return "Unknown Browser", "Unknown OS", "Desktop"
	}

	parsed := ua.Parse(userAgent)

	browser = "Unknown Browser"
	if parsed.Name != "" {
		browser = parsed.Name
	}
	os = "Unknown OS"
	if parsed.OS != "" {
		os = parsed.OS
	}

	device = "Desktop"
	switch {
	case parsed.Mobile && strings.Contains(userAgent, "iPhone"):
		device = "iPhone"
	case parsed.Mobile:
		device = "Mobile"
	case parsed.Tablet:
		device = "Tablet"
	case parsed.Bot:
		device = "Bot"
	}

	return strings.TrimSpace(browser), strings.TrimSpace(os), device
}

// NetworkLabel describes where a client address sits without calling out to
// a geolocation service.
func NetworkLabel(ip string) string {
	addr := net.ParseIP(ip)
	switch {
	case addr == nil:
		return "Unknown Network"
	case addr.IsLoopback():
		return "This Device"
	case addr.IsPrivate():
		return "Local Network"
	default:
		return "Internet"
	}
}

// GenerateSessionName builds the label shown in the active sessions list,
// e.g. "Firefox on Linux (Local Network)".
func GenerateSessionName(userAgent, ip string) string {
	browser, os, _ := ParseUserAgent(userAgent)
	return fmt.Sprintf("%s on %s (%s)", browser, os, NetworkLabel(ip))
}
