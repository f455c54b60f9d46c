package service

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MediumMasala/branch-redirect-service/internal/audit"
	"github.com/MediumMasala/branch-redirect-service/internal/builder"
	"github.com/MediumMasala/branch-redirect-service/internal/domain"
	"github.com/MediumMasala/branch-redirect-service/internal/preview"
	"github.com/MediumMasala/branch-redirect-service/pkg/detector"
)

// AuditSink receives one structured record per terminal redirect outcome.
// Implementations must not block the caller.
type AuditSink interface {
	BotPreview(slug, botName, clientIP string)
	Redirect(info audit.RedirectInfo)
	RedirectError(slug, platform, clientIP string, err error)
	PreviewView(slug, clientIP string)
}

// ResolverService turns an inbound redirect request into either a preview
// document for crawlers or a destination URL for everyone else. The link
// catalog and host allowlist are read-only after construction, so a single
// instance serves concurrent requests without locking.
type ResolverService struct {
	links   domain.LinkSet
	hosts   domain.AllowedHosts
	baseURL string
	audit   AuditSink
}

func NewResolverService(links domain.LinkSet, hosts domain.AllowedHosts, baseURL string, audit AuditSink) *ResolverService {
	return &ResolverService{
		links:   links,
		hosts:   hosts,
		baseURL: baseURL,
		audit:   audit,
	}
}

// Resolve classifies the request and produces the terminal outcome. Crawlers
// get the preview document unless the continuation flag is set; everyone
// else gets a destination URL for their platform.
func (s *ResolverService) Resolve(req *domain.RedirectRequest) (*domain.RedirectResult, error) {
	start := time.Now()

	link, ok := s.links.Lookup(req.Slug)
	if !ok {
		return nil, domain.ErrLinkNotFound
	}

	if isBot, botName := detector.Bot(req.UserAgent); isBot && !req.Continuation() {
		html, err := preview.Render(req.Slug, link, previewQuery(req.Query), s.baseURL)
		if err != nil {
			return nil, fmt.Errorf("render bot preview: %w", err)
		}

		s.audit.BotPreview(req.Slug, botName, req.ClientIP)

		return &domain.RedirectResult{
			Action:  domain.ActionPreview,
			HTML:    html,
			BotName: botName,
		}, nil
	}

	info := detector.Describe(req.UserAgent)
	platform := domain.Platform(info.Platform)

	location, err := builder.Build(platform, link, req.Query, s.hosts)
	if err != nil {
		s.audit.RedirectError(req.Slug, info.Platform, req.ClientIP, err)
		return nil, err
	}

	s.audit.Redirect(audit.RedirectInfo{
		Slug:     req.Slug,
		Platform: info.Platform,
		Host:     destinationHost(location),
		Browser:  info.Browser,
		OS:       info.OS,
		ClientIP: req.ClientIP,
		Latency:  time.Since(start),
	})

	return &domain.RedirectResult{
		Action:   domain.ActionRedirect,
		Location: location,
		Platform: platform,
	}, nil
}

// Preview renders the preview document for any caller, bypassing bot and
// platform classification entirely.
func (s *ResolverService) Preview(slug string, query map[string]string, clientIP string) ([]byte, error) {
	link, ok := s.links.Lookup(slug)
	if !ok {
		return nil, domain.ErrLinkNotFound
	}

	html, err := preview.Render(slug, link, previewQuery(query), s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}

	s.audit.PreviewView(slug, clientIP)

	return html, nil
}

// previewQuery converts the raw query map for the renderer, dropping the
// continuation key so the continue link never carries a stale flag.
func previewQuery(params map[string]string) url.Values {
	q := url.Values{}
	for key, value := range params {
		if key == domain.ContinueKey {
			continue
		}
		q.Set(key, value)
	}

	return q
}

func destinationHost(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return ""
	}

	return strings.ToLower(u.Hostname())
}
