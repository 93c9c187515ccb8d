package marketplaceserver_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	marketplaceserver "github.com/Apurer/pet-marketplace/go"
	"github.com/Apurer/pet-marketplace/internal/app/api"
	userapp "github.com/Apurer/pet-marketplace/internal/domains/users/application"
	"github.com/Apurer/pet-marketplace/internal/platform/auth"
	"github.com/Apurer/pet-marketplace/internal/platform/memdb"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	issuer, err := auth.NewIssuer("handler-test-secret", time.Hour)
	require.NoError(t, err)
	services := api.NewServices(api.MemoryRepositories(memdb.New()), api.ServiceOptions{
		Tokens: issuer,
		Hasher: userapp.BcryptHasher{Cost: bcrypt.MinCost},
	})
	router := marketplaceserver.NewRouterWithGinEngine(gin.New(), api.Handlers(services))
	return &testServer{t: t, router: router}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// signUp registers and logs in a user, returning the bearer token.
func (s *testServer) signUp(name string, roles ...string) string {
	s.t.Helper()
	email := name + "@example.com"
	rec := s.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": name, "email": email, "password": "correct-horse", "roles": roles,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": email, "password": "correct-horse"})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var login struct {
		Token string `json:"token"`
	}
	decode(s.t, rec, &login)
	require.NotEmpty(s.t, login.Token)
	return login.Token
}

func (s *testServer) listPet(token, name string, priceCents int64) int64 {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/catalog/pets", token, map[string]any{
		"name": name, "type": "dog", "priceCents": priceCents,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var pet struct {
		ID int64 `json:"id"`
	}
	decode(s.t, rec, &pet)
	return pet.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into), rec.Body.String())
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signUp("alice", "seller")

	rec := srv.do(http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var me struct {
		Name  string   `json:"name"`
		Email string   `json:"email"`
		Roles []string `json:"roles"`
	}
	decode(t, rec, &me)
	assert.Equal(t, "alice", me.Name)
	assert.Equal(t, "alice@example.com", me.Email)
	assert.ElementsMatch(t, []string{"customer", "seller"}, me.Roles)

	rec = srv.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "again", "email": "ALICE@example.com", "password": "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.do(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "alice@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = srv.do(http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRejectMissingOrMalformedTokens(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	rec = srv.do(http.MethodGet, "/api/sales/orders", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/catalog/pets", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	out := httptest.NewRecorder()
	srv.router.ServeHTTP(out, req)
	assert.Equal(t, http.StatusUnauthorized, out.Code, "malformed credentials fail even on public routes")
}

func TestUpdateProfileAndPublicView(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signUp("bob")

	rec := srv.do(http.MethodPut, "/api/users/me/profile", token, map[string]any{
		"bio": "dog person", "phoneNumber": "+48 600 000 000", "addressCity": "Kraków",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var me struct {
		ID      string `json:"id"`
		Profile struct {
			Bio         string `json:"bio"`
			PhoneNumber string `json:"phoneNumber"`
		} `json:"profile"`
	}
	decode(t, srv.do(http.MethodGet, "/api/users/me", token, nil), &me)
	assert.Equal(t, "dog person", me.Profile.Bio)
	assert.Equal(t, "+48 600 000 000", me.Profile.PhoneNumber)

	rec = srv.do(http.MethodGet, "/api/users/"+me.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "600 000 000")
}

func TestCheckoutReservesPets(t *testing.T) {
	srv := newTestServer(t)
	seller := srv.signUp("sam", "seller")
	buyer := srv.signUp("beth")
	rival := srv.signUp("rita")
	petID := srv.listPet(seller, "Rex", 50000)

	rec := srv.do(http.MethodPost, "/api/sales/orders", buyer, map[string]any{"petIds": []int64{petID}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order struct {
		ID               int64  `json:"id"`
		Status           string `json:"status"`
		TotalAmountCents int64  `json:"totalAmountCents"`
	}
	decode(t, rec, &order)
	assert.Equal(t, "pending_payment", order.Status)
	assert.Equal(t, int64(50000), order.TotalAmountCents)

	var pet struct {
		Status string `json:"status"`
	}
	decode(t, srv.do(http.MethodGet, fmt.Sprintf("/api/catalog/pets/%d", petID), "", nil), &pet)
	assert.Equal(t, "pending", pet.Status)

	rec = srv.do(http.MethodPost, "/api/sales/orders", rival, map[string]any{"petIds": []int64{petID}})
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	var problem struct {
		Extensions struct {
			UnavailablePets []struct {
				ID     int64  `json:"id"`
				Status string `json:"status"`
			} `json:"unavailablePets"`
		} `json:"extensions"`
	}
	decode(t, rec, &problem)
	require.Len(t, problem.Extensions.UnavailablePets, 1)
	assert.Equal(t, petID, problem.Extensions.UnavailablePets[0].ID)
	assert.Equal(t, "pending", problem.Extensions.UnavailablePets[0].Status)

	rec = srv.do(http.MethodGet, fmt.Sprintf("/api/sales/orders/%d", order.ID), rival, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(http.MethodPatch, fmt.Sprintf("/api/sales/orders/%d/status", order.ID), buyer, map[string]any{"status": "paid"})
	assert.Equal(t, http.StatusForbidden, rec.Code, "only admins move orders forward")

	rec = srv.do(http.MethodPost, fmt.Sprintf("/api/sales/orders/%d/cancel", order.ID), buyer, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, srv.do(http.MethodGet, fmt.Sprintf("/api/catalog/pets/%d", petID), "", nil), &pet)
	assert.Equal(t, "available", pet.Status)
}

func TestCheckoutIdempotencyKey(t *testing.T) {
	srv := newTestServer(t)
	seller := srv.signUp("sam", "seller")
	buyer := srv.signUp("beth")
	petID := srv.listPet(seller, "Rex", 1000)

	place := func() *httptest.ResponseRecorder {
		var payload bytes.Buffer
		require.NoError(t, json.NewEncoder(&payload).Encode(map[string]any{"petIds": []int64{petID}}))
		req := httptest.NewRequest(http.MethodPost, "/api/sales/orders", &payload)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+buyer)
		req.Header.Set(marketplaceserver.IdempotencyKeyHeader, "checkout-1")
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)
		return rec
	}
	first := place()
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := place()
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestInvalidPathParameters(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(http.MethodGet, "/api/catalog/pets/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = srv.do(http.MethodGet, "/api/catalog/pets/0", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = srv.do(http.MethodGet, "/api/catalog/pets/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFavoritesToggle(t *testing.T) {
	srv := newTestServer(t)
	seller := srv.signUp("sam", "seller")
	fan := srv.signUp("fred")
	petID := srv.listPet(seller, "Rex", 1000)
	path := fmt.Sprintf("/api/favorites/%d", petID)

	var toggled struct {
		Result     string `json:"result"`
		IsFavorite bool   `json:"isFavorite"`
	}
	rec := srv.do(http.MethodPost, path+"/toggle", fan, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &toggled)
	assert.Equal(t, "added", toggled.Result)
	assert.True(t, toggled.IsFavorite)

	var list struct {
		Total int64 `json:"total"`
	}
	decode(t, srv.do(http.MethodGet, "/api/favorites", fan, nil), &list)
	assert.Equal(t, int64(1), list.Total)

	decode(t, srv.do(http.MethodPost, path+"/toggle", fan, nil), &toggled)
	assert.Equal(t, "removed", toggled.Result)

	var status struct {
		IsFavorite bool `json:"isFavorite"`
	}
	decode(t, srv.do(http.MethodGet, path, fan, nil), &status)
	assert.False(t, status.IsFavorite)

	rec = srv.do(http.MethodPost, "/api/favorites/999/toggle", fan, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCommunityPostOwnership(t *testing.T) {
	srv := newTestServer(t)
	author := srv.signUp("gina")
	other := srv.signUp("hank")

	rec := srv.do(http.MethodPost, "/api/community/posts", author, map[string]any{
		"title": "Looking for a cat", "content": "Calm adult preferred", "lookingForType": "cat",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &post)
	path := fmt.Sprintf("/api/community/posts/%d", post.ID)

	rec = srv.do(http.MethodPost, path+"/comments", other, map[string]any{"content": "I have one"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var listed []struct {
		ID           int64 `json:"id"`
		CommentCount int64 `json:"commentCount"`
	}
	decode(t, srv.do(http.MethodGet, "/api/community/posts?type=cat", "", nil), &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, int64(1), listed[0].CommentCount)

	rec = srv.do(http.MethodDelete, path, other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = srv.do(http.MethodDelete, path, author, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = srv.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCaretakingRequiresCaretakerRole(t *testing.T) {
	srv := newTestServer(t)
	customer := srv.signUp("dave")
	caretaker := srv.signUp("carol", "caretaker")
	service := map[string]any{"title": "Dog hotel", "type": "boarding", "basePriceCents": 3000}

	rec := srv.do(http.MethodPost, "/api/caretaking/services", customer, service)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = srv.do(http.MethodPost, "/api/caretaking/services", caretaker, service)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var services []struct {
		Title string `json:"title"`
	}
	decode(t, srv.do(http.MethodGet, "/api/caretaking/services?type=boarding", "", nil), &services)
	require.Len(t, services, 1)
	assert.Equal(t, "Dog hotel", services[0].Title)
}
