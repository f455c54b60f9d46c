// Package preview renders the crawler-facing HTML document for a link:
// Open Graph and Twitter card metadata plus a continue link that replays
// the original request with the bot check bypassed.
package preview

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"

	"github.com/MediumMasala/branch-redirect-service/internal/domain"
)

//go:embed templates/preview.html
var templateFS embed.FS

var previewTmpl = template.Must(template.ParseFS(templateFS, "templates/preview.html"))

const (
	defaultTitle       = "Continue to WhatsApp"
	defaultDescription = "Tap continue to open the conversation in WhatsApp."
)

type previewData struct {
	Title        string
	Description  string
	Image        string
	CanonicalURL string
	ContinueURL  string
}

// Render produces the preview document for one link. query must already
// have the continuation key stripped; Render sets a fresh one on the
// continue link. Template interpolation escapes every field, so catalog
// and query data cannot inject markup.
func Render(slug string, link *domain.LinkEntry, query url.Values, baseURL string) ([]byte, error) {
	data := previewData{
		Title:        link.OGTitle,
		Description:  link.OGDescription,
		Image:        link.OGImage,
		CanonicalURL: baseURL + "/r/" + slug,
		ContinueURL:  continueURL(slug, query, baseURL),
	}
	if data.Title == "" {
		data.Title = defaultTitle
	}
	if data.Description == "" {
		data.Description = defaultDescription
	}

	var buf bytes.Buffer
	if err := previewTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render preview for %q: %w", slug, err)
	}

	return buf.Bytes(), nil
}

func continueURL(slug string, query url.Values, baseURL string) string {
	q := url.Values{}
	for key, values := range query {
		q[key] = values
	}
	q.Set(domain.ContinueKey, "1")

	return baseURL + "/r/" + slug + "?" + q.Encode()
}
