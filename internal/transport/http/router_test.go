package httptransport

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofregistry/internal/jwttoken"
	"proofregistry/internal/platform/metrics"
	"proofregistry/internal/registry/clock"
	"proofregistry/internal/registry/ledger"
	registrymetrics "proofregistry/internal/registry/metrics"
	"proofregistry/internal/registry/models"
	"proofregistry/internal/registry/service"
	"proofregistry/internal/registry/store"
	"proofregistry/pkg/domain"
	"proofregistry/pkg/testutil"
)

const (
	authority domain.Principal = "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"
	alice     domain.Principal = "ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG"
)

type fixture struct {
	router http.Handler
	tokens *jwttoken.JWTService
	ledger *ledger.InMemoryLedger
}

func newFixture(t *testing.T, health map[string]HealthCheck) fixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fees := ledger.NewInMemory()

	svc, err := service.New(store.NewInMemory(), fees, clock.NewManual(10),
		service.WithLogger(logger),
		service.WithMetrics(registrymetrics.New(reg)),
	)
	require.NoError(t, err)

	tokens := jwttoken.NewJWTService("router-test-key", "proofregistry", "proofregistry")
	return fixture{
		router: NewRouter(Deps{
			Logger:    logger,
			Metrics:   metrics.New(reg),
			Gatherer:  reg,
			Validator: jwttoken.NewPrincipalValidator(tokens),
			Registry:  svc,
			Health:    health,
		}),
		tokens: tokens,
		ledger: fees,
	}
}

func (f fixture) bearer(t *testing.T, req *http.Request, p domain.Principal) *http.Request {
	t.Helper()
	token, err := f.tokens.GenerateAccessToken(p, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func fill(b byte, n int) string {
	return hex.EncodeToString(bytes.Repeat([]byte{b}, n))
}

func TestRouter(t *testing.T) {
	testutil.Given(t, "a router backed by an in-memory registry", func(t *testing.T) {
		f := newFixture(t, nil)

		testutil.When(t, "the authority bootstraps and alice submits a proof", func(t *testing.T) {
			rr := testutil.DoRequest(f.router, f.bearer(t,
				testutil.NewJSONRequest(t, http.MethodPost, "/registry/authority", map[string]any{"principal": authority}), authority))
			testutil.AssertStatus(t, rr, http.StatusNoContent)

			submit := map[string]any{
				"proof_type":   "encounter",
				"commitment":   fill(0x01, 32),
				"challenge":    fill(0x02, 32),
				"response":     fill(0x03, 32),
				"verifier_key": fill(0x04, 33),
			}
			rr = testutil.DoRequest(f.router, f.bearer(t,
				testutil.NewJSONRequest(t, http.MethodPost, "/proofs", submit), alice))

			testutil.Then(t, "the proof is created and the fee recorded", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusCreated)
				testutil.AssertJSONContains(t, rr, "id", float64(0))
				require.Len(t, f.ledger.Transfers(), 1)
				assert.Equal(t, alice, f.ledger.Transfers()[0].From)
			})

			testutil.Then(t, "the proof is publicly readable", func(t *testing.T) {
				rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/proofs/0"))
				testutil.AssertStatus(t, rr, http.StatusOK)
				testutil.AssertJSONContains(t, rr, "submitter", string(alice))

				rr = testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/commitments/"+fill(0x01, 32)))
				testutil.AssertJSONContains(t, rr, "exists", true)
			})

			testutil.Then(t, "resubmitting the commitment is a conflict", func(t *testing.T) {
				rr := testutil.DoRequest(f.router, f.bearer(t,
					testutil.NewJSONRequest(t, http.MethodPost, "/proofs", submit), alice))
				testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
				testutil.AssertReason(t, rr, string(models.ReasonProofAlreadyExists), 106)
			})
		})

		testutil.When(t, "a write arrives without a token", func(t *testing.T) {
			rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodPost, "/proofs/0/verify"))

			testutil.Then(t, "it is rejected as unauthorized", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
			})
		})

		testutil.When(t, "any request is served", func(t *testing.T) {
			req := testutil.NewRequest(t, http.MethodGet, "/proofs/count")
			req.Header.Set("X-Request-ID", "trace-123")
			rr := testutil.DoRequest(f.router, req)

			testutil.Then(t, "the request id is echoed", func(t *testing.T) {
				assert.Equal(t, "trace-123", rr.Header().Get("X-Request-ID"))
			})
		})

		testutil.When(t, "metrics are scraped", func(t *testing.T) {
			rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/metrics"))

			testutil.Then(t, "registry and http series are exposed", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusOK)
				body := rr.Body.String()
				assert.Contains(t, body, "proofregistry_http_request_duration_seconds")
				assert.Contains(t, body, "registry_proof_submissions_total")
			})
		})
	})
}

func TestHealthz(t *testing.T) {
	testutil.Given(t, "a healthy dependency", func(t *testing.T) {
		f := newFixture(t, map[string]HealthCheck{
			"store": func(context.Context) error { return nil },
		})
		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/healthz"))

		testutil.Then(t, "it reports ok", func(t *testing.T) {
			testutil.AssertStatus(t, rr, http.StatusOK)
			testutil.AssertJSONContains(t, rr, "store", "ok")
		})
	})

	testutil.Given(t, "a failing dependency", func(t *testing.T) {
		f := newFixture(t, map[string]HealthCheck{
			"redis": func(context.Context) error { return errors.New("connection refused") },
		})
		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/healthz"))

		testutil.Then(t, "it reports degraded", func(t *testing.T) {
			testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
			testutil.AssertJSONContains(t, rr, "status", "degraded")
			testutil.AssertJSONContains(t, rr, "redis", "connection refused")
		})
	})
}
