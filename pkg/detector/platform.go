package detector

import (
	"strings"

	surfer "github.com/avct/uasurfer"
)

// Platform labels used to pick the redirect destination.
const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
	PlatformDesktop = "desktop"
)

// iOS tokens are checked before the android token: iPads can advertise
// desktop-class engines, and the dispatch contract resolves them to ios.
var iosTokens = []string{"iphone", "ipad", "ipod"}

// Platform classifies the user agent into ios, android or desktop.
// Anything unrecognised, including an empty user agent, is desktop.
func Platform(userAgent string) string {
	ua := strings.ToLower(userAgent)

	for _, token := range iosTokens {
		if strings.Contains(ua, token) {
			return PlatformIOS
		}
	}

	if strings.Contains(ua, "android") {
		return PlatformAndroid
	}

	return PlatformDesktop
}

// DeviceInfo carries the platform decision plus browser and OS names parsed
// from the user agent. Browser and OS are advisory fields for the audit log
// and never influence the redirect itself.
type DeviceInfo struct {
	Platform string
	Browser  string
	OS       string
}

// Describe augments Platform with browser and OS names.
func Describe(userAgent string) DeviceInfo {
	info := DeviceInfo{Platform: Platform(userAgent)}
	if userAgent == "" {
		return info
	}

	ua := surfer.Parse(userAgent)
	if ua.Browser.Name != surfer.BrowserUnknown {
		info.Browser = strings.TrimPrefix(ua.Browser.Name.String(), "Browser")
	}
	if ua.OS.Name != surfer.OSUnknown {
		info.OS = strings.TrimPrefix(ua.OS.Name.String(), "OS")
	}

	return info
}
