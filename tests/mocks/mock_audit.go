package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/MediumMasala/branch-redirect-service/internal/audit"
)

type MockAuditSink struct {
	mock.Mock
}

func (m *MockAuditSink) BotPreview(slug, botName, clientIP string) {
	m.Called(slug, botName, clientIP)
}

func (m *MockAuditSink) Redirect(info audit.RedirectInfo) {
	m.Called(info)
}

func (m *MockAuditSink) RedirectError(slug, platform, clientIP string, err error) {
	m.Called(slug, platform, clientIP, err)
}

func (m *MockAuditSink) PreviewView(slug, clientIP string) {
	m.Called(slug, clientIP)
}
