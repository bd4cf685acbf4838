package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/dealroom-client/internal/api"
	"github.com/spec-kit/dealroom-client/internal/collabtest"
	"github.com/spec-kit/dealroom-client/internal/domain"
	"github.com/spec-kit/dealroom-client/pkg/util"
)

type staticTokens struct {
	token string
}

func (s staticTokens) Token() string { return s.token }

func TestRequestsCarryBearerTokenAndRequestID(t *testing.T) {
	var captured http.Header
	fake := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	defer fake.Close()

	deals := api.NewDealsAPI(api.NewClient(api.Options{
		BaseURL: fake.URL,
		Timeout: time.Second,
		Tokens:  staticTokens{token: "tok-abc"},
	}))

	_, err := deals.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-abc", captured.Get("Authorization"))
	assert.NotEmpty(t, captured.Get("X-Request-ID"))
}

func TestRequestsWithoutSessionGoOutBare(t *testing.T) {
	var captured http.Header
	fake := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	defer fake.Close()

	deals := api.NewDealsAPI(api.NewClient(api.Options{BaseURL: fake.URL, Timeout: time.Second}))

	_, err := deals.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, captured.Get("Authorization"), "no session means no credential")
}

func TestUnauthorizedFiresExpiryHookOnce(t *testing.T) {
	srv := collabtest.NewServer(t)

	var hookCalls int
	deals := api.NewDealsAPI(api.NewClient(api.Options{
		BaseURL:       srv.URL(),
		Timeout:       5 * time.Second,
		Tokens:        staticTokens{token: "stale"},
		OnAuthFailure: func(context.Context) { hookCalls++ },
	}))

	_, err := deals.List(context.Background())
	require.Error(t, err)
	assert.True(t, util.IsCode(err, util.CodeSessionExpired))
	assert.Equal(t, 1, hookCalls, "no retry means exactly one rejection")
}

func TestServerMessageSurfacesOnFailure(t *testing.T) {
	srv := collabtest.NewServer(t)
	userID := srv.SeedUser(t, "alice", "x", domain.RoleBuyer)

	deals := api.NewDealsAPI(api.NewClient(api.Options{
		BaseURL: srv.URL(),
		Timeout: 5 * time.Second,
		Tokens:  staticTokens{token: srv.IssueToken(userID, domain.RoleBuyer)},
	}))

	_, err := deals.Get(context.Background(), "missing-deal")
	require.Error(t, err)
	assert.True(t, util.IsCode(err, util.CodeRequestFailed))
	assert.Equal(t, "deal not found", util.ToClientError(err).Message)
}

func TestUnreachableBackendIsNetworkError(t *testing.T) {
	deals := api.NewDealsAPI(api.NewClient(api.Options{
		BaseURL: "http://127.0.0.1:1",
		Timeout: time.Second,
	}))

	_, err := deals.List(context.Background())
	require.Error(t, err)
	assert.True(t, util.IsCode(err, util.CodeNetworkError))
}

func TestDealsRoundTrip(t *testing.T) {
	srv := collabtest.NewServer(t)
	sellerID := srv.SeedUser(t, "bob", "x", domain.RoleSeller)

	deals := api.NewDealsAPI(api.NewClient(api.Options{
		BaseURL: srv.URL(),
		Timeout: 5 * time.Second,
		Tokens:  staticTokens{token: srv.IssueToken(sellerID, domain.RoleSeller)},
	}))

	created, err := deals.Create(context.Background(), api.CreateDealRequest{
		Title: "Bulk monitors", Description: "24 inch, refurbished", Price: 1200, Seller: sellerID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DealStatusPending, created.Status, "deals start pending")

	fetched, err := deals.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)

	listed, err := deals.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestLoginAgainstFakeBackend(t *testing.T) {
	srv := collabtest.NewServer(t)
	srv.SeedUser(t, "alice", "pw", domain.RoleBuyer)

	auth := api.NewAuthAPI(api.NewClient(api.Options{BaseURL: srv.URL(), Timeout: 5 * time.Second}))

	token, err := auth.Login(context.Background(), domain.Credentials{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = auth.Login(context.Background(), domain.Credentials{Username: "alice", Password: "nope"})
	require.Error(t, err)
	assert.True(t, util.IsCode(err, util.CodeAuthFailed))
}

func TestMessagesRoundTrip(t *testing.T) {
	srv := collabtest.NewServer(t)
	buyerID := srv.SeedUser(t, "alice", "x", domain.RoleBuyer)

	messages := api.NewMessagesAPI(api.NewClient(api.Options{
		BaseURL: srv.URL(),
		Timeout: 5 * time.Second,
		Tokens:  staticTokens{token: srv.IssueToken(buyerID, domain.RoleBuyer)},
	}))

	sent, err := messages.Send(context.Background(), "d1", "is this still available?")
	require.NoError(t, err)
	assert.Equal(t, buyerID, sent.Sender, "sender comes from the token, not the payload")

	history, err := messages.List(context.Background(), "d1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "is this still available?", history[0].Content)
}

func TestRegisterConflictSurfacesMessage(t *testing.T) {
	srv := collabtest.NewServer(t)
	srv.SeedUser(t, "alice", "pw", domain.RoleBuyer)

	auth := api.NewAuthAPI(api.NewClient(api.Options{BaseURL: srv.URL(), Timeout: 5 * time.Second}))

	err := auth.Register(context.Background(), domain.Credentials{Username: "alice", Password: "pw2"}, domain.RoleSeller)
	require.Error(t, err)
	assert.Equal(t, "username already taken", util.ToClientError(err).Message)
}
