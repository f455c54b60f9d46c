// Package builder constructs the platform-specific destination URL for a
// resolved link and enforces the redirect host allowlist.
package builder

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/MediumMasala/branch-redirect-service/internal/domain"
)

// waPhonePath matches a wa.me path that already carries a phone number.
var waPhonePath = regexp.MustCompile(`^/\d+$`)

// Build resolves phone and text from the query parameters and the link's
// defaults, shapes the platform's base URL around them, and appends every
// remaining non-empty query parameter without overwriting keys the
// destination already carries. The resulting host must be on the allowlist.
func Build(platform domain.Platform, link *domain.LinkEntry, params map[string]string, hosts domain.AllowedHosts) (string, error) {
	phone := params[domain.ParamPhone]
	if phone == "" {
		phone = link.DefaultPhone
	}
	if phone == "" {
		return "", domain.ErrPhoneRequired
	}

	text := params[domain.ParamText]
	if text == "" {
		text = link.DefaultText
	}

	passthrough := passthroughParams(params)

	var (
		dest *url.URL
		err  error
	)
	switch platform {
	case domain.PlatformAndroid:
		dest, err = buildGeneric(link.AndroidFlowURL, phone, text, passthrough)
	case domain.PlatformIOS:
		dest, err = buildWhatsApp(link.IOSWhatsAppBaseURL, phone, text, passthrough)
	default:
		dest, err = buildWhatsApp(link.DesktopWhatsAppBaseURL, phone, text, passthrough)
	}
	if err != nil {
		return "", err
	}

	host := strings.ToLower(dest.Hostname())
	if !hosts.Contains(host) {
		return "", &domain.HostNotAllowedError{Host: host}
	}

	return dest.String(), nil
}

// buildWhatsApp shapes a WhatsApp base URL. wa.me carries the phone in the
// path, api.whatsapp.com and web.whatsapp.com carry it as a query parameter
// on /send, and any other host keeps its path and gets plain phone and text
// parameters.
func buildWhatsApp(base, phone, text string, passthrough map[string]string) (*url.URL, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse whatsapp base url %q: %w", base, err)
	}

	q := u.Query()

	switch strings.ToLower(u.Hostname()) {
	case "wa.me":
		if !waPhonePath.MatchString(u.Path) {
			u.Path = "/" + phone
		}
	case "api.whatsapp.com", "web.whatsapp.com":
		if !strings.Contains(u.Path, "/send") {
			u.Path = "/send"
		}
		q.Set(domain.ParamPhone, phone)
	default:
		q.Set(domain.ParamPhone, phone)
	}

	if text != "" {
		q.Set(domain.ParamText, text)
	}

	appendPassthrough(q, passthrough)
	u.RawQuery = q.Encode()

	return u, nil
}

// buildGeneric treats the base as an opaque flow URL: phone and text become
// query parameters and the path is left alone. Query keys already present
// on the base win over passthrough values.
func buildGeneric(base, phone, text string, passthrough map[string]string) (*url.URL, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse flow base url %q: %w", base, err)
	}

	q := u.Query()
	q.Set(domain.ParamPhone, phone)
	if text != "" {
		q.Set(domain.ParamText, text)
	}

	appendPassthrough(q, passthrough)
	u.RawQuery = q.Encode()

	return u, nil
}

func appendPassthrough(q url.Values, params map[string]string) {
	for key, value := range params {
		if _, exists := q[key]; !exists {
			q.Set(key, value)
		}
	}
}

// passthroughParams drops the reserved phone and text keys and every
// empty-valued entry from the raw query map.
func passthroughParams(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for key, value := range params {
		if key == domain.ParamPhone || key == domain.ParamText || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}
