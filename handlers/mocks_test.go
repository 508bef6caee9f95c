package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/VyaparSathi/vyapar-sathi-backend/middleware"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

const (
	testUserID     = "11111111-1111-1111-1111-111111111111"
	testBusinessID = "22222222-2222-2222-2222-222222222222"
	testDocID      = "33333333-3333-3333-3333-333333333333"
)

// MockBusinessService implements BusinessServiceInterface for handler tests.
type MockBusinessService struct {
	mock.Mock
}

func (m *MockBusinessService) CreateBusiness(ctx context.Context, ownerID string, create *types.BusinessCreate) (*types.Business, error) {
	args := m.Called(ctx, ownerID, create)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Business), args.Error(1)
}

func (m *MockBusinessService) GetBusiness(ctx context.Context, id, userID string) (*types.Business, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Business), args.Error(1)
}

func (m *MockBusinessService) GetMyBusiness(ctx context.Context, ownerID string) (*types.Business, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Business), args.Error(1)
}

func (m *MockBusinessService) UpdateBusiness(ctx context.Context, id, userID string, update *types.BusinessUpdate) (*types.Business, error) {
	args := m.Called(ctx, id, userID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Business), args.Error(1)
}

var _ BusinessServiceInterface = (*MockBusinessService)(nil)
var _ BusinessAuthorizer = (*MockBusinessService)(nil)

// MockCredibilityService implements CredibilityServiceInterface.
type MockCredibilityService struct {
	mock.Mock
}

func (m *MockCredibilityService) GetScore(ctx context.Context, businessID string) (*types.CredibilityScore, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.CredibilityScore), args.Error(1)
}

func (m *MockCredibilityService) Recalculate(ctx context.Context, businessID string, userID string) (*types.CredibilityScore, error) {
	args := m.Called(ctx, businessID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.CredibilityScore), args.Error(1)
}

var _ CredibilityServiceInterface = (*MockCredibilityService)(nil)

// MockDocumentService implements DocumentServiceInterface.
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) UploadDocument(ctx context.Context, userID, businessID string, file io.Reader, fileSize int64, create *types.DocumentCreate) (*types.DocumentResponse, error) {
	args := m.Called(ctx, userID, businessID, file, fileSize, create)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.DocumentResponse), args.Error(1)
}

func (m *MockDocumentService) GetDocument(ctx context.Context, id, userID string) (*types.DocumentResponse, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.DocumentResponse), args.Error(1)
}

func (m *MockDocumentService) ListDocuments(ctx context.Context, businessID, userID string) ([]types.Document, error) {
	args := m.Called(ctx, businessID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Document), args.Error(1)
}

func (m *MockDocumentService) UpdateDocument(ctx context.Context, id, userID string, update *types.DocumentUpdate) (*types.Document, error) {
	args := m.Called(ctx, id, userID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Document), args.Error(1)
}

func (m *MockDocumentService) DeleteDocument(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockDocumentService) HandleExtractionResult(ctx context.Context, result *types.ExtractionResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

var _ DocumentServiceInterface = (*MockDocumentService)(nil)

// MockProofService implements ProofServiceInterface.
type MockProofService struct {
	mock.Mock
}

func (m *MockProofService) ListProofs(ctx context.Context, businessID, userID string) ([]types.VerificationProof, error) {
	args := m.Called(ctx, businessID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.VerificationProof), args.Error(1)
}

var _ ProofServiceInterface = (*MockProofService)(nil)

// buildRouter wraps a handler in a Gin router with the error handler
// middleware, matching the production setup so c.Error() calls produce the
// correct HTTP status.
func buildRouter(path, method string, handler gin.HandlerFunc, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set(string(middleware.UserIDKey), userID)
		}
		c.Next()
	})
	switch method {
	case http.MethodGet:
		r.GET(path, handler)
	case http.MethodPost:
		r.POST(path, handler)
	case http.MethodPut:
		r.PUT(path, handler)
	case http.MethodPatch:
		r.PATCH(path, handler)
	case http.MethodDelete:
		r.DELETE(path, handler)
	}
	return r
}
