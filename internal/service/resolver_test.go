package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MediumMasala/branch-redirect-service/internal/audit"
	"github.com/MediumMasala/branch-redirect-service/internal/domain"
	"github.com/MediumMasala/branch-redirect-service/tests/mocks"
)

const (
	iosUA     = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	androidUA = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	botUA     = "facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)"

	testIP      = "203.0.113.9"
	testBaseURL = "http://localhost:8080"
)

func testLinks() domain.LinkSet {
	return domain.LinkSet{
		"promo": {
			Slug:                   "promo",
			AndroidFlowURL:         "https://flow.example.com/start",
			IOSWhatsAppBaseURL:     "https://wa.me/",
			DesktopWhatsAppBaseURL: "https://web.whatsapp.com/",
			DefaultPhone:           "919999999999",
			DefaultText:            "Hello",
			OGTitle:                "Summer promo",
		},
		"nophone": {
			Slug:                   "nophone",
			AndroidFlowURL:         "https://flow.example.com/start",
			IOSWhatsAppBaseURL:     "https://wa.me/",
			DesktopWhatsAppBaseURL: "https://web.whatsapp.com/",
		},
		"rogue": {
			Slug:                   "rogue",
			AndroidFlowURL:         "https://evil.com/x",
			IOSWhatsAppBaseURL:     "https://evil.com/x",
			DesktopWhatsAppBaseURL: "https://evil.com/x",
			DefaultPhone:           "1",
		},
	}
}

func testHosts() domain.AllowedHosts {
	return domain.NewAllowedHosts([]string{"wa.me", "api.whatsapp.com", "web.whatsapp.com", "flow.example.com"})
}

func newTestService(sink *mocks.MockAuditSink) *ResolverService {
	return NewResolverService(testLinks(), testHosts(), testBaseURL, sink)
}

func TestResolve_NotFound(t *testing.T) {
	mockAudit := new(mocks.MockAuditSink)
	svc := newTestService(mockAudit)

	result, err := svc.Resolve(&domain.RedirectRequest{Slug: "missing", UserAgent: iosUA, ClientIP: testIP})

	assert.ErrorIs(t, err, domain.ErrLinkNotFound)
	assert.Nil(t, result)
	mockAudit.AssertNotCalled(t, "Redirect")
	mockAudit.AssertNotCalled(t, "RedirectError")
	mockAudit.AssertNotCalled(t, "BotPreview")
}

func TestResolve_BotGetsPreview(t *testing.T) {
	mockAudit := new(mocks.MockAuditSink)
	svc := newTestService(mockAudit)

	mockAudit.On("BotPreview", "promo", "facebookexternalhit", testIP).Return().Once()

	result, err := svc.Resolve(&domain.RedirectRequest{
		Slug:      "promo",
		UserAgent: botUA,
		Query:     map[string]string{"utm_source": "qr"},
		ClientIP:  testIP,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ActionPreview, result.Action)
	assert.Equal(t, "facebookexternalhit", result.BotName)
	assert.Contains(t, string(result.HTML), "Summer promo")
	assert.Contains(t, string(result.HTML), "_continue=1")
	mockAudit.AssertExpectations(t)
}

func TestResolve_ContinueFlagBypassesBotCheck(t *testing.T) {
	mockAudit := new(mocks.MockAuditSink)
	svc := newTestService(mockAudit)

	mockAudit.On("Redirect", mock.AnythingOfType("audit.RedirectInfo")).Return().Once()

	result, err := svc.Resolve(&domain.RedirectRequest{
		Slug:      "promo",
		UserAgent: botUA,
		Query:     map[string]string{domain.ContinueKey: "1"},
		ClientIP:  testIP,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ActionRedirect, result.Action)
	assert.Equal(t, "https://web.whatsapp.com/send?_continue=1&phone=919999999999&text=Hello", result.Location)
	mockAudit.AssertNotCalled(t, "BotPreview")
	mockAudit.AssertExpectations(t)
}

func TestResolve_ContinueFlagMustBeExactlyOne(t *testing.T) {
	mockAudit := new(mocks.MockAuditSink)
	svc := newTestService(mockAudit)

	mockAudit.On("BotPreview", "promo", "facebookexternalhit", testIP).Return().Once()

	result, err := svc.Resolve(&domain.RedirectRequest{
		Slug:      "promo",
		UserAgent: botUA,
		Query:     map[string]string{domain.ContinueKey: "yes"},
		ClientIP:  testIP,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ActionPreview, result.Action)
	mockAudit.AssertExpectations(t)
}

func TestResolve_PlatformDispatch(t *testing.T) {
	tests := []struct {
		name         string
		userAgent    string
		wantPlatform domain.Platform
		wantLocation string
	}{
		{
			name:         "ios",
			userAgent:    iosUA,
			wantPlatform: domain.PlatformIOS,
			wantLocation: "https://wa.me/919999999999?text=Hello",
		},
		{
			name:         "android",
			userAgent:    androidUA,
			wantPlatform: domain.PlatformAndroid,
			wantLocation: "https://flow.example.com/start?phone=919999999999&text=Hello",
		},
		{
			name:         "desktop",
			userAgent:    desktopUA,
			wantPlatform: domain.PlatformDesktop,
			wantLocation: "https://web.whatsapp.com/send?phone=919999999999&text=Hello",
		},
		{
			name:         "missing user agent falls back to desktop",
			userAgent:    "",
			wantPlatform: domain.PlatformDesktop,
			wantLocation: "https://web.whatsapp.com/send?phone=919999999999&text=Hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAudit := new(mocks.MockAuditSink)
			svc := newTestService(mockAudit)

			mockAudit.On("Redirect", mock.MatchedBy(func(info audit.RedirectInfo) bool {
				return info.Platform == string(tt.wantPlatform)
			})).Return().Once()

			result, err := svc.Resolve(&domain.RedirectRequest{
				Slug:      "promo",
				UserAgent: tt.userAgent,
				ClientIP:  testIP,
			})

			require.NoError(t, err)
			assert.Equal(t, domain.ActionRedirect, result.Action)
			assert.Equal(t, tt.wantPlatform, result.Platform)
			assert.Equal(t, tt.wantLocation, result.Location)
			mockAudit.AssertExpectations(t)
		})
	}
}

func TestResolve_RedirectAuditFields(t *testing.T) {
	mockAudit := new(mocks.MockAuditSink)
	svc := newTestService(mockAudit)

	mockAudit.On("Redirect", mock.MatchedBy(func(info audit.RedirectInfo) bool {
		return info.Slug == "promo" &&
			info.Platform == "ios" &&
			info.Host == "wa.me" &&
			info.Browser == "Safari" &&
			info.OS == "iOS" &&
			info.ClientIP == testIP &&
			info.Latency >= 0
	})).Return().Once()

	_, err := svc.Resolve(&domain.RedirectRequest{Slug: "promo", UserAgent: iosUA, ClientIP: testIP})

	require.NoError(t, err)
	mockAudit.AssertExpectations(t)
}

func TestResolve_PhoneRequired(t *testing.T) {
	mockAudit := new(mocks.MockAuditSink)
	svc := newTestService(mockAudit)

	mockAudit.On("RedirectError", "nophone", "ios", testIP, mock.MatchedBy(func(err error) bool {
		return errors.Is(err, domain.ErrPhoneRequired)
	})).Return().Once()

	result, err := svc.Resolve(&domain.RedirectRequest{Slug: "nophone", UserAgent: iosUA, ClientIP: testIP})

	assert.ErrorIs(t, err, domain.ErrPhoneRequired)
	assert.Nil(t, result)
	mockAudit.AssertNotCalled(t, "Redirect")
	mockAudit.AssertExpectations(t)
}

func TestResolve_HostNotAllowed(t *testing.T) {
	mockAudit := new(mocks.MockAuditSink)
	svc := newTestService(mockAudit)

	mockAudit.On("RedirectError", "rogue", "android", testIP, mock.MatchedBy(func(err error) bool {
		var hostErr *domain.HostNotAllowedError
		return errors.As(err, &hostErr) && hostErr.Host == "evil.com"
	})).Return().Once()

	result, err := svc.Resolve(&domain.RedirectRequest{Slug: "rogue", UserAgent: androidUA, ClientIP: testIP})

	var hostErr *domain.HostNotAllowedError
	require.ErrorAs(t, err, &hostErr)
	assert.Equal(t, "evil.com", hostErr.Host)
	assert.Nil(t, result)
	mockAudit.AssertExpectations(t)
}

func TestResolve_QueryPassthrough(t *testing.T) {
	mockAudit := new(mocks.MockAuditSink)
	svc := newTestService(mockAudit)

	mockAudit.On("Redirect", mock.AnythingOfType("audit.RedirectInfo")).Return().Once()

	result, err := svc.Resolve(&domain.RedirectRequest{
		Slug:      "promo",
		UserAgent: iosUA,
		Query:     map[string]string{"utm_source": "qr", "utm_medium": "poster"},
		ClientIP:  testIP,
	})

	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/919999999999?text=Hello&utm_medium=poster&utm_source=qr", result.Location)
	mockAudit.AssertExpectations(t)
}

func TestPreview_Success(t *testing.T) {
	mockAudit := new(mocks.MockAuditSink)
	svc := newTestService(mockAudit)

	mockAudit.On("PreviewView", "promo", testIP).Return().Once()

	html, err := svc.Preview("promo", map[string]string{"a": "1"}, testIP)

	require.NoError(t, err)
	assert.Contains(t, string(html), "Summer promo")
	assert.Contains(t, string(html), `/r/promo?_continue=1&amp;a=1`)
	mockAudit.AssertExpectations(t)
}

func TestPreview_NotFound(t *testing.T) {
	mockAudit := new(mocks.MockAuditSink)
	svc := newTestService(mockAudit)

	html, err := svc.Preview("missing", nil, testIP)

	assert.ErrorIs(t, err, domain.ErrLinkNotFound)
	assert.Nil(t, html)
	mockAudit.AssertNotCalled(t, "PreviewView")
}

func TestPreview_StripsStaleContinueFlag(t *testing.T) {
	mockAudit := new(mocks.MockAuditSink)
	svc := newTestService(mockAudit)

	mockAudit.On("PreviewView", "promo", testIP).Return().Once()

	html, err := svc.Preview("promo", map[string]string{domain.ContinueKey: "1", "a": "1"}, testIP)

	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(html), "_continue="))
	mockAudit.AssertExpectations(t)
}

func TestResolve_Latency(t *testing.T) {
	mockAudit := new(mocks.MockAuditSink)
	svc := newTestService(mockAudit)

	var captured audit.RedirectInfo
	mockAudit.On("Redirect", mock.AnythingOfType("audit.RedirectInfo")).
		Run(func(args mock.Arguments) {
			captured = args.Get(0).(audit.RedirectInfo)
		}).Return().Once()

	_, err := svc.Resolve(&domain.RedirectRequest{Slug: "promo", UserAgent: iosUA, ClientIP: testIP})

	require.NoError(t, err)
	assert.Less(t, captured.Latency, time.Second)
	mockAudit.AssertExpectations(t)
}
