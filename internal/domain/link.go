package domain

import "strings"

// LinkEntry is one slug's redirect configuration. The three URL templates
// must be valid absolute URLs; this is enforced once at load time, never
// per request.
type LinkEntry struct {
	Slug                   string `json:"slug" yaml:"-" validate:"required,slug"`
	AndroidFlowURL         string `json:"android_flow_url" yaml:"android_flow_url" validate:"required,url"`
	IOSWhatsAppBaseURL     string `json:"ios_whatsapp_base_url" yaml:"ios_whatsapp_base_url" validate:"required,url"`
	DesktopWhatsAppBaseURL string `json:"desktop_whatsapp_base_url" yaml:"desktop_whatsapp_base_url" validate:"required,url"`
	DefaultPhone           string `json:"default_phone,omitempty" yaml:"default_phone" validate:"omitempty,phone"`
	DefaultText            string `json:"default_text,omitempty" yaml:"default_text"`
	OGTitle                string `json:"og_title,omitempty" yaml:"og_title"`
	OGDescription          string `json:"og_description,omitempty" yaml:"og_description"`
	OGImage                string `json:"og_image,omitempty" yaml:"og_image" validate:"omitempty,url"`
}

// LinkSet is the slug-keyed catalog, loaded once at startup and read-only
// for the life of the process.
type LinkSet map[string]*LinkEntry

func (s LinkSet) Lookup(slug string) (*LinkEntry, bool) {
	entry, ok := s[slug]
	return entry, ok
}

// AllowedHosts is the set of hostnames a built redirect URL may point at.
type AllowedHosts map[string]struct{}

func NewAllowedHosts(hosts []string) AllowedHosts {
	set := make(AllowedHosts, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			set[h] = struct{}{}
		}
	}
	return set
}

func (a AllowedHosts) Contains(host string) bool {
	_, ok := a[strings.ToLower(host)]
	return ok
}

// Platform is the redirect target class derived from the user agent.
// Desktop is the fallback, never an error.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformDesktop Platform = "desktop"
)
