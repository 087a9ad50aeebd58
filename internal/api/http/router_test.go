package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/persistence"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service"
)

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeAssetRepo struct {
	assets map[string]*domain.Asset
}

func (r *fakeAssetRepo) Create(_ context.Context, asset *domain.Asset) error {
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	r.assets[asset.ID] = asset
	return nil
}

func (r *fakeAssetRepo) GetByID(_ context.Context, id string) (*domain.Asset, error) {
	asset, ok := r.assets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return asset, nil
}

func (r *fakeAssetRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Asset, error) {
	var result []domain.Asset
	for _, asset := range r.assets {
		if asset.OwnerID == ownerID {
			result = append(result, *asset)
		}
	}
	return result, nil
}

type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket
	order   []string
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	r.order = append(r.order, ticket.ID)
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *fakeTicketRepo) ListAll(_ context.Context) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, id := range r.order {
		result = append(result, *r.tickets[id])
	}
	return result, nil
}

func (r *fakeTicketRepo) ListByAsset(_ context.Context, assetID string) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, id := range r.order {
		ticket := r.tickets[id]
		if ticket.AssetID != nil && *ticket.AssetID == assetID {
			result = append(result, *ticket)
		}
	}
	return result, nil
}

func (r *fakeTicketRepo) UpdateStatus(_ context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	ticket.Status = status
	ticket.UpdatedAt = time.Now()
	clone := *ticket
	return &clone, nil
}

var (
	_ repository.UserRepository   = (*fakeUserRepo)(nil)
	_ repository.AssetRepository  = (*fakeAssetRepo)(nil)
	_ repository.TicketRepository = (*fakeTicketRepo)(nil)
)

type testEnv struct {
	app     *fiber.App
	users   *fakeUserRepo
	assets  *fakeAssetRepo
	tickets *fakeTicketRepo
	tokens  *auth.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := &fakeUserRepo{users: map[string]*domain.User{}}
	assets := &fakeAssetRepo{assets: map[string]*domain.Asset{}}
	tickets := &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}

	authService := service.NewAuthService(config.AuthConfig{
		JWTSecret:         "test-secret",
		SessionTTLMinutes: 60,
		SessionCookieName: "session_token",
		BcryptCost:        4,
	}, users)
	authenticator := auth.NewAuthenticator(authService.TokenManager(), users)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: tickets,
		UserRepo:   users,
		AssetRepo:  assets,
	})
	assetService := service.NewAssetService(assets)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", &persistence.Postgres{}, &persistence.Redis{}),
		Auth:           handlers.NewAuthHandler(authService, "session_token"),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Assets:         handlers.NewAssetsHandler(assetService),
		AuthMiddleware: auth.NewMiddleware(authenticator, "session_token"),
	})

	return &testEnv{app: app, users: users, assets: assets, tickets: tickets, tokens: authService.TokenManager()}
}

func (e *testEnv) addUser(t *testing.T, id, name, email string, role domain.Role) string {
	t.Helper()
	e.users.users[id] = &domain.User{ID: id, Name: name, Email: email, Role: role}
	token, _, err := e.tokens.GenerateToken(id, role)
	require.NoError(t, err)
	return token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestRoutesRejectMissingToken(t *testing.T) {
	env := newTestEnv(t)

	for _, tc := range []struct{ method, path string }{
		{fiber.MethodPost, "/tickets/"},
		{fiber.MethodGet, "/tickets/"},
		{fiber.MethodGet, "/tickets/some-id"},
		{fiber.MethodPatch, "/tickets/some-id"},
		{fiber.MethodPost, "/tickets/some-id/close"},
		{fiber.MethodGet, "/assets/some-id/tickets"},
	} {
		resp := env.request(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", tc.method, tc.path)
	}
}

func TestCreateTicketEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.addUser(t, "u1", "Ada", "ada@x.com", domain.RoleUser)
	env.assets.assets["A1"] = &domain.Asset{ID: "A1", OwnerID: "u1", Name: "Laptop"}

	resp := env.request(t, fiber.MethodPost, "/tickets/", token, fiber.Map{
		"subject":  "Laptop won't boot",
		"message":  "Help",
		"asset_id": "A1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	ticket, ok := body["ticket"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "u1", ticket["user"])
	assert.Equal(t, "Ada", ticket["user_name"])
	assert.Equal(t, "ada@x.com", ticket["user_email"])
	assert.Equal(t, "open", ticket["status"])
}

func TestCreateTicketUnknownAsset(t *testing.T) {
	env := newTestEnv(t)
	token := env.addUser(t, "u1", "Ada", "ada@x.com", domain.RoleUser)

	resp := env.request(t, fiber.MethodPost, "/tickets/", token, fiber.Map{
		"subject":  "Broken",
		"message":  "Help",
		"asset_id": "missing",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, env.tickets.tickets)
}

func TestListAllEnforcesStoredRole(t *testing.T) {
	env := newTestEnv(t)
	userToken := env.addUser(t, "u1", "Ada", "ada@x.com", domain.RoleUser)
	supportToken := env.addUser(t, "s1", "Sam", "sam@x.com", domain.RoleSupport)

	resp := env.request(t, fiber.MethodGet, "/tickets/", userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.request(t, fiber.MethodGet, "/tickets/", supportToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// a token still claiming Support must not pass once the stored
	// record has been demoted
	env.users.users["s1"].Role = domain.RoleUser
	resp = env.request(t, fiber.MethodGet, "/tickets/", supportToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestResolveAliasesAndVisibility(t *testing.T) {
	env := newTestEnv(t)
	userToken := env.addUser(t, "u1", "Ada", "ada@x.com", domain.RoleUser)
	supportToken := env.addUser(t, "s1", "Sam", "sam@x.com", domain.RoleSupport)

	resp := env.request(t, fiber.MethodPost, "/tickets/", userToken, fiber.Map{
		"subject": "Broken",
		"message": "Help",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)["ticket"].(map[string]any)
	ticketID := created["id"].(string)

	// owner can read while open
	resp = env.request(t, fiber.MethodGet, "/tickets/"+ticketID, userToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// regular users cannot resolve
	resp = env.request(t, fiber.MethodPatch, "/tickets/"+ticketID, userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// support resolves via the update alias
	resp = env.request(t, fiber.MethodPatch, "/tickets/"+ticketID, supportToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resolved := decodeBody(t, resp)["ticket"].(map[string]any)
	assert.Equal(t, "resolved", resolved["status"])

	// the close alias is idempotent over the same transition
	resp = env.request(t, fiber.MethodPost, "/tickets/"+ticketID+"/close", supportToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	closed := decodeBody(t, resp)["ticket"].(map[string]any)
	assert.Equal(t, "resolved", closed["status"])

	// the owner has lost visibility of their resolved ticket
	resp = env.request(t, fiber.MethodGet, "/tickets/"+ticketID, userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// support still reads it
	resp = env.request(t, fiber.MethodGet, "/tickets/"+ticketID, supportToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListByAssetEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.addUser(t, "u1", "Ada", "ada@x.com", domain.RoleUser)
	env.assets.assets["A1"] = &domain.Asset{ID: "A1", OwnerID: "u1", Name: "Laptop"}

	resp := env.request(t, fiber.MethodPost, "/tickets/", token, fiber.Map{
		"subject":  "Broken",
		"message":  "Help",
		"asset_id": "A1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.request(t, fiber.MethodGet, "/assets/A1/tickets", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	tickets, ok := body["tickets"].([]any)
	require.True(t, ok)
	assert.Len(t, tickets, 1)

	// unmatched asset yields an empty list, not an error
	resp = env.request(t, fiber.MethodGet, "/assets/other/tickets", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	tickets, ok = body["tickets"].([]any)
	require.True(t, ok)
	assert.Empty(t, tickets)
}

func TestRegisterLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, fiber.MethodPost, "/auth/register", "", fiber.Map{
		"name":     "Ada",
		"email":    "ada@x.com",
		"password": "s3cret!pass",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.request(t, fiber.MethodPost, "/auth/login", "", fiber.Map{
		"email":    "ada@x.com",
		"password": "s3cret!pass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := decodeBody(t, resp)["data"].(map[string]any)
	authData := data["auth"].(map[string]any)
	token := authData["token"].(string)
	require.NotEmpty(t, token)

	// the issued token authenticates ticket creation
	resp = env.request(t, fiber.MethodPost, "/tickets/", token, fiber.Map{
		"subject": "Hello",
		"message": "World",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestHealthLive(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, fiber.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
