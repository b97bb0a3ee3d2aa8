package e2e

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nvtienanh/metagate/internal/entities"
	"github.com/nvtienanh/metagate/internal/handlers"
	"github.com/nvtienanh/metagate/internal/infrastructure/auth"
	"github.com/nvtienanh/metagate/internal/infrastructure/config"
	"github.com/nvtienanh/metagate/internal/infrastructure/database"
	"github.com/nvtienanh/metagate/internal/repositories/postgres"
	"github.com/nvtienanh/metagate/internal/services"
	"github.com/nvtienanh/metagate/internal/services/visibility"
)

// E2ETestServer represents an end-to-end test environment backed by a real
// database and an in-process HTTP server.
type E2ETestServer struct {
	Server     *httptest.Server
	DB         *sql.DB
	JWTService *auth.JWTService
	pg         *database.Postgres
}

// SetupE2ETest sets up an E2E test environment. Skips the test when the
// test database is not reachable.
func SetupE2ETest(t *testing.T) *E2ETestServer {
	t.Helper()

	config.InitConfig("test")
	cfg, err := config.Load()
	if err != nil {
		t.Skipf("skipping e2e: config incomplete: %v", err)
	}

	pg, err := database.NewPostgres(&cfg.Database)
	if err != nil {
		t.Skipf("skipping e2e: database unavailable: %v", err)
	}

	// Run migrations (use absolute path)
	projectRoot, err := findProjectRoot()
	if err != nil {
		t.Fatalf("failed to find project root: %v", err)
	}
	migrationsPath := projectRoot + "/internal/infrastructure/database/migrations/postgres"
	if err := pg.RunMigrations(migrationsPath); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanupDatabase(t, pg.DB)

	entityRepo := postgres.NewPostgresEntityRepository(pg.DB)
	permissionRepo := postgres.NewPostgresPermissionRepository(pg.DB)

	evaluator := visibility.NewEvaluator()
	metadataService := services.NewMetadataService(entityRepo, evaluator)
	entityService := services.NewEntityService(entityRepo)
	jwtService := auth.NewJWTService(&cfg.Auth)

	router := handlers.NewRouter(&handlers.RouterConfig{
		Logger:          zap.NewNop(),
		JWTService:      jwtService,
		PermissionRepo:  permissionRepo,
		MetadataHandler: handlers.NewMetadataHandler(metadataService),
		EntityHandler:   handlers.NewEntityHandler(entityService),
		HealthHandler:   handlers.NewHealthHandler(pg),
	})

	return &E2ETestServer{
		Server:     httptest.NewServer(router),
		DB:         pg.DB,
		JWTService: jwtService,
		pg:         pg,
	}
}

// Teardown tears down the test environment
func (s *E2ETestServer) Teardown(t *testing.T) {
	t.Helper()
	s.Server.Close()
	if err := s.pg.Close(); err != nil {
		t.Errorf("failed to close database: %v", err)
	}
}

func cleanupDatabase(t *testing.T, db *sql.DB) {
	t.Helper()
	for _, table := range []string{"account_permissions", "app_permissions", "entities", "apps", "accounts"} {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("failed to clean table %s: %v", table, err)
		}
	}
}

// SeedAccount inserts an account with the given permissions and returns a
// bearer token for it.
func (s *E2ETestServer) SeedAccount(t *testing.T, id, email string, isStaff bool, perms ...entities.Permission) string {
	t.Helper()

	_, err := s.DB.Exec(
		`INSERT INTO accounts (id, email, is_staff, is_active, created_at) VALUES ($1, $2, $3, TRUE, $4)`,
		id, email, isStaff, time.Now(),
	)
	if err != nil {
		t.Fatalf("failed to seed account %s: %v", id, err)
	}
	for _, p := range perms {
		if _, err := s.DB.Exec(
			`INSERT INTO account_permissions (account_id, permission) VALUES ($1, $2)`,
			id, string(p),
		); err != nil {
			t.Fatalf("failed to seed permission %s for %s: %v", p, id, err)
		}
	}

	token, _, err := s.JWTService.GenerateToken(auth.GenerateTokenInput{
		AccountID: id,
		Email:     email,
		IsStaff:   isStaff,
	})
	if err != nil {
		t.Fatalf("failed to issue token for %s: %v", id, err)
	}
	return token
}

// SeedApp inserts an active app with the given permissions and returns its auth token.
func (s *E2ETestServer) SeedApp(t *testing.T, id, name string, perms ...entities.Permission) string {
	t.Helper()

	token := fmt.Sprintf("app-token-%s", id)
	_, err := s.DB.Exec(
		`INSERT INTO apps (id, name, auth_token, is_active, created_at) VALUES ($1, $2, $3, TRUE, $4)`,
		id, name, token, time.Now(),
	)
	if err != nil {
		t.Fatalf("failed to seed app %s: %v", id, err)
	}
	for _, p := range perms {
		if _, err := s.DB.Exec(
			`INSERT INTO app_permissions (app_id, permission) VALUES ($1, $2)`,
			id, string(p),
		); err != nil {
			t.Fatalf("failed to seed permission %s for app %s: %v", p, id, err)
		}
	}
	return token
}

// SeedEntity inserts an entity row directly.
func (s *E2ETestServer) SeedEntity(t *testing.T, class entities.ResourceClass, id, ownerID, ownerToken string) {
	t.Helper()

	var owner, token interface{}
	if ownerID != "" {
		owner = ownerID
	}
	if ownerToken != "" {
		token = ownerToken
	}
	now := time.Now()
	_, err := s.DB.Exec(
		`INSERT INTO entities (class, id, owner_id, owner_token, metadata, private_metadata, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, '{}'::jsonb, '{}'::jsonb, $5, $5)`,
		string(class), id, owner, token, now,
	)
	if err != nil {
		t.Fatalf("failed to seed entity %s:%s: %v", class, id, err)
	}
}

// apiResponse mirrors the standard response envelope
type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Do performs an HTTP request against the test server.
func (s *E2ETestServer) Do(t *testing.T, method, path, body string, headers map[string]string) (int, apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, s.Server.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("failed to parse response %q: %v", raw, err)
	}
	return resp.StatusCode, parsed
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		goModPath := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(goModPath); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found in any parent directory")
		}
		dir = parent
	}
}
