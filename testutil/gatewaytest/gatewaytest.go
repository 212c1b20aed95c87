// Package gatewaytest starts a seeded in-process gateway for tests that need the real backend contract.
package gatewaytest

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
	"github.com/AntonStoeckl/circulation-desk/gateway"
	"github.com/AntonStoeckl/circulation-desk/gateway/memstore"
)

const (
	// Secret signs the tokens of the test gateway.
	Secret = "gatewaytest-signing-secret-0123456789"

	// Issuer is the token issuer of the test gateway.
	Issuer = "gatewaytest"

	tokenTTL = time.Hour
)

// Env is a running test gateway backed by a seeded memstore.
type Env struct {
	Server *httptest.Server
	Store  *memstore.Store
	Tokens *gateway.TokenIssuer
}

// Start runs a gateway seeded with gateway.SeedDemoData until the test ends.
func Start(t *testing.T, opts ...gateway.Option) *Env {
	t.Helper()

	store := memstore.New(memstore.WithPasswordCost(bcrypt.MinCost))
	require.NoError(t, gateway.SeedDemoData(context.Background(), store, store))

	tokens, err := gateway.NewTokenIssuer(Secret, Issuer, tokenTTL, nil)
	require.NoError(t, err)

	server, err := gateway.NewServer(store, store, tokens, opts...)
	require.NoError(t, err)

	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)

	return &Env{Server: httpServer, Store: store, Tokens: tokens}
}

// URL returns the base URL of the gateway.
func (e *Env) URL() string {
	return e.Server.URL
}

// Token issues a valid bearer token for the account with email.
func (e *Env) Token(t *testing.T, email string) string {
	t.Helper()

	account, err := e.Store.AccountByEmail(context.Background(), email)
	require.NoError(t, err)

	token, err := e.Tokens.Issue(account)
	require.NoError(t, err)

	return token
}

// ExpiredToken issues a token for email that expired an hour ago.
func (e *Env) ExpiredToken(t *testing.T, email string) string {
	t.Helper()

	past := func() time.Time { return time.Now().Add(-2 * tokenTTL) }
	issuer, err := gateway.NewTokenIssuer(Secret, Issuer, tokenTTL, past)
	require.NoError(t, err)

	account, err := e.Store.AccountByEmail(context.Background(), email)
	require.NoError(t, err)

	token, err := issuer.Issue(account)
	require.NoError(t, err)

	return token
}

// Client creates an apiclient.Client for the gateway with a memory session store.
func (e *Env) Client(t *testing.T, opts ...apiclient.Option) *apiclient.Client {
	t.Helper()

	opts = append([]apiclient.Option{apiclient.WithSessionStore(apiclient.NewMemorySessionStore())}, opts...)

	client, err := apiclient.NewClient(e.URL(), opts...)
	require.NoError(t, err)

	return client
}

// LoginClient creates a client and logs in as email with gateway.DemoPassword.
func (e *Env) LoginClient(t *testing.T, email string, opts ...apiclient.Option) (*apiclient.Client, apiclient.Session) {
	t.Helper()

	client := e.Client(t, opts...)

	session, err := client.Login(context.Background(), email, gateway.DemoPassword)
	require.NoError(t, err)

	return client, session
}
