package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/MediumMasala/branch-redirect-service/internal/domain"
)

type MockResolverService struct {
	mock.Mock
}

var _ interface {
	Resolve(req *domain.RedirectRequest) (*domain.RedirectResult, error)
	Preview(slug string, query map[string]string, clientIP string) ([]byte, error)
} = (*MockResolverService)(nil)

func (m *MockResolverService) Resolve(req *domain.RedirectRequest) (*domain.RedirectResult, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RedirectResult), args.Error(1)
}

func (m *MockResolverService) Preview(slug string, query map[string]string, clientIP string) ([]byte, error) {
	args := m.Called(slug, query, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
