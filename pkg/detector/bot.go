package detector

import (
	"regexp"
	"strings"
)

// botTokens is the ordered catalog of crawler and previewer tokens, matched
// case-insensitively against the user agent. First match wins and the token
// itself is reported as the bot name, so specific product names sit before
// the deliberately broad generic tokens.
var botTokens = []string{
	// Social and messaging link previewers.
	"facebookexternalhit", "whatsapp", "telegrambot", "twitterbot",
	"linkedinbot", "slackbot", "discordbot", "pinterest",

	// Search engine crawlers.
	"googlebot", "bingbot", "yandex", "baiduspider", "duckduckbot", "applebot",

	// SEO and backlink scanners.
	"ahrefsbot", "semrushbot", "mj12bot", "dotbot", "petalbot",

	// Embed and app-level preview fetchers.
	"iframely", "embedly", "vkshare", "snapchat", "mastodon",

	// Generic tokens.
	"crawler", "spider", "scraper", "curl", "wget",
}

// botWordPattern catches user agents that advertise a standalone "bot"
// token without carrying any of the catalog names.
var botWordPattern = regexp.MustCompile(`\bbot\b`)

// Bot reports whether the user agent belongs to an automated crawler or
// link previewer, along with the token that matched. An empty user agent
// is never classified as a bot.
func Bot(userAgent string) (bool, string) {
	if userAgent == "" {
		return false, ""
	}

	ua := strings.ToLower(userAgent)

	for _, token := range botTokens {
		if strings.Contains(ua, token) {
			return true, token
		}
	}

	if botWordPattern.MatchString(ua) {
		return true, "bot"
	}

	return false, ""
}
