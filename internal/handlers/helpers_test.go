package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nvtienanh/metagate/internal/entities"
	"github.com/nvtienanh/metagate/internal/infrastructure/auth"
	"github.com/nvtienanh/metagate/internal/infrastructure/config"
	"github.com/nvtienanh/metagate/internal/repositories"
	"go.uber.org/zap"
)

// mockMetadataService implements services.MetadataServiceInterface
type mockMetadataService struct {
	readFunc   func(ctx context.Context, r *entities.Requester, class entities.ResourceClass, id string, partition entities.Partition) (entities.Metadata, error)
	updateFunc func(ctx context.Context, r *entities.Requester, class entities.ResourceClass, id string, partition entities.Partition, items []entities.MetadataItem) (entities.Metadata, error)
	deleteFunc func(ctx context.Context, r *entities.Requester, class entities.ResourceClass, id string, partition entities.Partition, keys []string) (entities.Metadata, error)
}

func (m *mockMetadataService) Read(ctx context.Context, r *entities.Requester, class entities.ResourceClass, id string, partition entities.Partition) (entities.Metadata, error) {
	return m.readFunc(ctx, r, class, id, partition)
}

func (m *mockMetadataService) Update(ctx context.Context, r *entities.Requester, class entities.ResourceClass, id string, partition entities.Partition, items []entities.MetadataItem) (entities.Metadata, error) {
	return m.updateFunc(ctx, r, class, id, partition, items)
}

func (m *mockMetadataService) Delete(ctx context.Context, r *entities.Requester, class entities.ResourceClass, id string, partition entities.Partition, keys []string) (entities.Metadata, error) {
	return m.deleteFunc(ctx, r, class, id, partition, keys)
}

// mockEntityService implements services.EntityServiceInterface
type mockEntityService struct {
	registerFunc func(ctx context.Context, r *entities.Requester, class entities.ResourceClass, id string, ownerID string, ownerToken string) (*entities.Entity, error)
	removeFunc   func(ctx context.Context, r *entities.Requester, class entities.ResourceClass, id string) error
}

func (m *mockEntityService) Register(ctx context.Context, r *entities.Requester, class entities.ResourceClass, id string, ownerID string, ownerToken string) (*entities.Entity, error) {
	return m.registerFunc(ctx, r, class, id, ownerID, ownerToken)
}

func (m *mockEntityService) Remove(ctx context.Context, r *entities.Requester, class entities.ResourceClass, id string) error {
	return m.removeFunc(ctx, r, class, id)
}

// mockPermissionRepository implements repositories.PermissionRepository
type mockPermissionRepository struct {
	accounts     map[string]*entities.Account
	accountPerms map[string][]entities.Permission
	appsByToken  map[string]*entities.App
	appPerms     map[string][]entities.Permission
}

func newMockPermissionRepository() *mockPermissionRepository {
	return &mockPermissionRepository{
		accounts:     make(map[string]*entities.Account),
		accountPerms: make(map[string][]entities.Permission),
		appsByToken:  make(map[string]*entities.App),
		appPerms:     make(map[string][]entities.Permission),
	}
}

func (m *mockPermissionRepository) GetAccount(ctx context.Context, accountID string) (*entities.Account, error) {
	if a, ok := m.accounts[accountID]; ok {
		return a, nil
	}
	return nil, repositories.ErrAccountNotFound
}

func (m *mockPermissionRepository) PermissionsForAccount(ctx context.Context, accountID string) ([]entities.Permission, error) {
	return m.accountPerms[accountID], nil
}

func (m *mockPermissionRepository) GetAppByToken(ctx context.Context, token string) (*entities.App, error) {
	if a, ok := m.appsByToken[token]; ok {
		return a, nil
	}
	return nil, repositories.ErrAppNotFound
}

func (m *mockPermissionRepository) PermissionsForApp(ctx context.Context, appID string) ([]entities.Permission, error) {
	return m.appPerms[appID], nil
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(&config.AuthConfig{
		JWTSecret: "handler-test-secret",
		JWTIssuer: "metagate-test",
		TokenTTL:  time.Hour,
	})
}

// captureRequester mounts a route that records the resolved requester
func captureRequester(jwtService *auth.JWTService, permRepo repositories.PermissionRepository) (*gin.Engine, **entities.Requester) {
	gin.SetMode(gin.TestMode)
	var captured *entities.Requester

	router := gin.New()
	router.Use(RequesterMiddleware(jwtService, permRepo))
	router.GET("/probe", func(c *gin.Context) {
		captured = GetRequester(c)
		c.Status(http.StatusOK)
	})
	return router, &captured
}

func testRouter(metadataService *mockMetadataService, entityService *mockEntityService, permRepo repositories.PermissionRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if permRepo == nil {
		permRepo = newMockPermissionRepository()
	}
	return NewRouter(&RouterConfig{
		Logger:          zap.NewNop(),
		JWTService:      newTestJWTService(),
		PermissionRepo:  permRepo,
		MetadataHandler: NewMetadataHandler(metadataService),
		EntityHandler:   NewEntityHandler(entityService),
		HealthHandler:   NewHealthHandler(nil),
	})
}

func doRequest(router *gin.Engine, method, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, newBodyReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	router.ServeHTTP(w, req)
	return w
}

func newBodyReader(body string) io.Reader {
	return strings.NewReader(body)
}
