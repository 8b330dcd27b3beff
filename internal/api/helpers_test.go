package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stayfinder/internal/config"
	"stayfinder/internal/database"
	"stayfinder/internal/events"
	"stayfinder/internal/repository"
	"stayfinder/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

type testEnv struct {
	db       *database.DB
	services Services
	server   *HTTPServer
	ts       *httptest.Server
}

func newTestEnv(t *testing.T, cfg config.APIConfig, checks ...ReadinessCheck) *testEnv {
	t.Helper()
	logger := zerolog.Nop()

	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	bus := events.NewEventBus()
	svc := Services{
		Auth: service.NewAuthService(db, repository.NewMemoryAttemptStore(), bus, config.AuthConfig{
			JWTSecret:     "api-test-secret-0123456789",
			BcryptCost:    bcrypt.MinCost,
			LoginAttempts: 3,
		}, &logger).WithClock(testClock),
		Listings: service.NewListingService(db, bus, config.CatalogConfig{}, &logger).WithClock(testClock),
		Bookings: service.NewBookingService(db, bus, config.BookingConfig{}, &logger).WithClock(testClock),
	}

	env := &testEnv{db: db, services: svc}
	env.server = NewHTTPServer(cfg, svc, &logger, checks...)
	env.ts = httptest.NewServer(env.server.Handler())
	t.Cleanup(env.ts.Close)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req, err := http.NewRequestWithContext(context.Background(), method, e.ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// register creates an account over HTTP and returns its token and id.
func (e *testEnv) register(t *testing.T, name, email string, isHost bool) (string, string) {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": name, "email": email, "password": "password123", "isHost": isHost,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decode[authResponse](t, resp)
	return body.Token, body.User.ID
}

func (e *testEnv) createProperty(t *testing.T, token, title string, price, maxGuests int) map[string]any {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/host/properties", token, map[string]any{
		"title": title, "location": "New York, NY", "price": price, "type": "apartment",
		"maxGuests": maxGuests, "amenities": []string{"WiFi"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[map[string]any](t, resp)
}
