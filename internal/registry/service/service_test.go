package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"proofregistry/internal/registry/clock"
	"proofregistry/internal/registry/ledger"
	"proofregistry/internal/registry/metrics"
	"proofregistry/internal/registry/models"
	"proofregistry/internal/registry/service/mocks"
	"proofregistry/internal/registry/store"
	"proofregistry/pkg/domain"
	dErrors "proofregistry/pkg/domain-errors"
	"proofregistry/pkg/platform/audit"
	auditmemory "proofregistry/pkg/platform/audit/store/memory"
	"proofregistry/pkg/requestcontext"
)

const (
	authority domain.Principal = "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"
	alice     domain.Principal = "ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG"
	bob       domain.Principal = "ST2JHG361ZXG51QTKY2NQCVBPPRRE2KZB1HR05NNC"
)

// =============================================================================
// Registry Service Test Suite
// =============================================================================
// The suite runs the service over the in-memory store and ledger so that
// atomicity and fee accounting are observed on real state. Collaborator
// failures are injected with gomock.

type RegistryServiceSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	ledger  *ledger.InMemoryLedger
	clock   *clock.Manual
	audit   *auditmemory.InMemoryStore
	service *Service
}

func TestRegistryServiceSuite(t *testing.T) {
	suite.Run(t, new(RegistryServiceSuite))
}

func (s *RegistryServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.ledger = ledger.NewInMemory()
	s.clock = clock.NewManual(10)
	s.audit = auditmemory.NewInMemoryStore()

	var err error
	s.service, err = New(s.store, s.ledger, s.clock,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(metrics.New(prometheus.NewRegistry())),
		WithAuditPublisher(auditPublisherFunc(s.audit.Append)),
	)
	s.Require().NoError(err)
}

type auditPublisherFunc func(ctx context.Context, event audit.Event) error

func (f auditPublisherFunc) Emit(ctx context.Context, event audit.Event) error {
	return f(ctx, event)
}

func as(p domain.Principal) context.Context {
	return requestcontext.WithCaller(context.Background(), p)
}

func fill(b byte, n int) []byte {
	return bytes.Repeat([]byte{b}, n)
}

func submission(commitment byte) models.SubmitRequest {
	return models.SubmitRequest{
		ProofType:   string(models.ProofTypeEncounter),
		Commitment:  fill(commitment, 32),
		Challenge:   fill(0x02, 32),
		Response:    fill(0x03, 32),
		VerifierKey: fill(0x04, 33),
	}
}

func (s *RegistryServiceSuite) bootstrap() {
	s.Require().NoError(s.service.SetAuthority(context.Background(), authority))
}

func (s *RegistryServiceSuite) submit(p domain.Principal, req models.SubmitRequest) uint64 {
	id, err := s.service.SubmitProof(as(p), req)
	s.Require().NoError(err)
	return id
}

func (s *RegistryServiceSuite) count() uint64 {
	n, err := s.service.GetProofCount(context.Background())
	s.Require().NoError(err)
	return n
}

func (s *RegistryServiceSuite) auditActions() []string {
	events, err := s.audit.ListAll(context.Background())
	s.Require().NoError(err)
	actions := make([]string, 0, len(events))
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	return actions
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *RegistryServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil, s.ledger, s.clock)
		s.ErrorContains(err, "store is required")
	})

	s.Run("nil ledger returns error", func() {
		_, err := New(s.store, nil, s.clock)
		s.ErrorContains(err, "ledger is required")
	})

	s.Run("nil clock returns error", func() {
		_, err := New(s.store, s.ledger, nil)
		s.ErrorContains(err, "clock is required")
	})
}

// =============================================================================
// Bootstrap & Configuration
// =============================================================================

func (s *RegistryServiceSuite) TestSetAuthority() {
	ctx := context.Background()

	s.Run("burn principal is rejected", func() {
		err := s.service.SetAuthority(ctx, domain.BurnPrincipal)
		s.ErrorIs(err, models.ReasonInvalidPrincipal)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("empty principal is rejected", func() {
		err := s.service.SetAuthority(ctx, "")
		s.ErrorIs(err, models.ReasonInvalidPrincipal)
	})

	s.Run("first call succeeds", func() {
		s.Require().NoError(s.service.SetAuthority(ctx, authority))
		cfg, err := s.service.GetConfig(ctx)
		s.Require().NoError(err)
		s.True(cfg.IsAuthority(authority))
	})

	s.Run("every later call fails regardless of argument", func() {
		for _, p := range []domain.Principal{authority, alice, bob} {
			err := s.service.SetAuthority(ctx, p)
			s.ErrorIs(err, models.ReasonAuthorityAlreadySet)
			s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		}
		cfg, err := s.service.GetConfig(ctx)
		s.Require().NoError(err)
		s.True(cfg.IsAuthority(authority))
	})

	s.Run("burn check precedes already-set check", func() {
		err := s.service.SetAuthority(ctx, domain.BurnPrincipal)
		s.ErrorIs(err, models.ReasonInvalidPrincipal)
	})

	s.Contains(s.auditActions(), string(audit.EventAuthoritySet))
}

func (s *RegistryServiceSuite) TestConfigSettersRequireAuthority() {
	s.Run("fail before authority is set", func() {
		err := s.service.SetMaxProofs(as(authority), 5)
		s.ErrorIs(err, models.ReasonUnauthorized)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.ErrorIs(s.service.SetVerificationFee(as(authority), 5), models.ReasonUnauthorized)
		s.ErrorIs(s.service.SetCurveParams(as(authority), fill(1, 33), fill(1, 33), fill(1, 32)), models.ReasonUnauthorized)
	})

	cfg, err := s.service.GetConfig(context.Background())
	s.Require().NoError(err)
	s.Equal(models.DefaultMaxProofs, cfg.MaxProofs)
	s.Equal(models.DefaultVerificationFee, cfg.VerificationFee)
	s.Equal(models.DefaultGenerator, cfg.Curve.Generator)
}

func (s *RegistryServiceSuite) TestConfigSettersOpenToAnyCallerOnceAuthoritySet() {
	s.bootstrap()

	s.Run("non-authority caller changes the fee", func() {
		s.Require().NoError(s.service.SetVerificationFee(as(alice), 200))
	})

	s.Run("non-authority caller changes max proofs", func() {
		s.Require().NoError(s.service.SetMaxProofs(as(bob), 7))
	})

	s.Run("non-authority caller changes the curve", func() {
		s.Require().NoError(s.service.SetCurveParams(as(alice), fill(7, 33), fill(8, 33), fill(9, 32)))
	})

	s.Run("caller identity is not required", func() {
		s.Require().NoError(s.service.SetVerificationFee(context.Background(), 300))
	})

	cfg, err := s.service.GetConfig(context.Background())
	s.Require().NoError(err)
	s.True(cfg.IsAuthority(authority), "authority is unchanged")
	s.Equal(uint64(300), cfg.VerificationFee)
	s.Equal(uint64(7), cfg.MaxProofs)
	s.Equal(byte(7), cfg.Curve.Generator[0])

	id := s.submit(bob, submission(1))
	transfers := s.ledger.Transfers()
	s.Require().Len(transfers, 1)
	s.Equal(models.FeeTransfer{Amount: 300, From: bob, To: authority, ProofID: id, Height: 10}, transfers[0])
}

func (s *RegistryServiceSuite) TestSetMaxProofs() {
	s.Run("zero is rejected before the authority check", func() {
		err := s.service.SetMaxProofs(as(authority), 0)
		s.ErrorIs(err, models.ReasonInvalidParam)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.bootstrap()

	s.Run("zero is rejected", func() {
		s.ErrorIs(s.service.SetMaxProofs(as(authority), 0), models.ReasonInvalidParam)
	})

	s.Run("positive value is applied", func() {
		s.Require().NoError(s.service.SetMaxProofs(as(authority), 3))
		cfg, err := s.service.GetConfig(context.Background())
		s.Require().NoError(err)
		s.Equal(uint64(3), cfg.MaxProofs)
	})
}

func (s *RegistryServiceSuite) TestSetVerificationFee() {
	s.bootstrap()

	s.Require().NoError(s.service.SetVerificationFee(as(authority), 0))
	s.submit(alice, submission(1))

	transfers := s.ledger.Transfers()
	s.Require().Len(transfers, 1)
	s.Zero(transfers[0].Amount, "a zero fee is still recorded as a transfer")
}

func (s *RegistryServiceSuite) TestSetCurveParams() {
	s.bootstrap()
	ctx := as(authority)

	s.Run("authority check precedes length checks", func() {
		svc, err := New(store.NewInMemory(), s.ledger, s.clock)
		s.Require().NoError(err)
		s.ErrorIs(svc.SetCurveParams(ctx, fill(1, 1), fill(1, 1), fill(1, 1)), models.ReasonUnauthorized)
	})

	s.Run("length checks in order", func() {
		s.ErrorIs(s.service.SetCurveParams(ctx, fill(1, 32), fill(1, 32), fill(1, 31)), models.ReasonInvalidGenerator)
		s.ErrorIs(s.service.SetCurveParams(ctx, fill(1, 33), fill(1, 32), fill(1, 31)), models.ReasonInvalidBase)
		s.ErrorIs(s.service.SetCurveParams(ctx, fill(1, 33), fill(1, 33), fill(1, 31)), models.ReasonInvalidOrder)
	})

	s.Run("failed update leaves all parameters unchanged", func() {
		cfg, err := s.service.GetConfig(ctx)
		s.Require().NoError(err)
		s.Equal(models.DefaultGenerator, cfg.Curve.Generator)
		s.Equal(models.DefaultBase, cfg.Curve.Base)
		s.Equal(models.DefaultOrder, cfg.Curve.Order)
	})

	s.Run("valid parameters replace all three", func() {
		s.Require().NoError(s.service.SetCurveParams(ctx, fill(7, 33), fill(8, 33), fill(9, 32)))
		cfg, err := s.service.GetConfig(ctx)
		s.Require().NoError(err)
		s.Equal(byte(7), cfg.Curve.Generator[0])
		s.Equal(byte(8), cfg.Curve.Base[32])
		s.Equal(byte(9), cfg.Curve.Order[31])
	})
}

// =============================================================================
// Submission
// =============================================================================

func (s *RegistryServiceSuite) TestSubmitValidationOrder() {
	s.bootstrap()

	cases := []struct {
		name   string
		mutate func(*models.SubmitRequest)
		want   models.Reason
	}{
		{"unknown proof type", func(r *models.SubmitRequest) { r.ProofType = "contact" }, models.ReasonInvalidProofType},
		{"short commitment", func(r *models.SubmitRequest) { r.Commitment = fill(1, 31) }, models.ReasonInvalidCommitment},
		{"short challenge", func(r *models.SubmitRequest) { r.Challenge = fill(2, 31) }, models.ReasonInvalidChallenge},
		{"short response", func(r *models.SubmitRequest) { r.Response = fill(3, 31) }, models.ReasonInvalidResponse},
		{"short verifier key", func(r *models.SubmitRequest) { r.VerifierKey = fill(4, 32) }, models.ReasonInvalidVerifierKey},
		{"bad encounter hash", func(r *models.SubmitRequest) { r.EncounterHash = fill(5, 16) }, models.ReasonInvalidHash},
		{"bad infection proof", func(r *models.SubmitRequest) { r.InfectionProof = fill(6, 63) }, models.ReasonInvalidSignature},
		{"bad exposure query", func(r *models.SubmitRequest) { r.ExposureQuery = fill(7, 33) }, models.ReasonInvalidHash},
		{"type precedes lengths", func(r *models.SubmitRequest) {
			r.ProofType = ""
			r.VerifierKey = nil
		}, models.ReasonInvalidProofType},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			req := submission(0x01)
			tc.mutate(&req)
			_, err := s.service.SubmitProof(as(alice), req)
			s.ErrorIs(err, tc.want)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}

	s.Zero(s.count())
	s.Empty(s.ledger.Transfers(), "no rejected submission is charged")
}

func (s *RegistryServiceSuite) TestSubmitWithoutAuthority() {
	_, err := s.service.SubmitProof(as(alice), submission(1))
	s.ErrorIs(err, models.ReasonAuthorityNotVerified)
	s.Zero(s.count())
	s.Empty(s.ledger.Transfers())

	s.Run("capacity precedes every other check", func() {
		s.bootstrap()
		s.Require().NoError(s.service.SetMaxProofs(as(authority), 1))
		s.submit(alice, submission(1))

		req := submission(1)
		req.ProofType = "bogus"
		_, err := s.service.SubmitProof(as(alice), req)
		s.ErrorIs(err, models.ReasonMaxProofsExceeded)
	})
}

func (s *RegistryServiceSuite) TestSubmitDuplicateBeforeAuthorityCheck() {
	s.bootstrap()
	s.submit(alice, submission(1))

	_, err := s.service.SubmitProof(as(bob), submission(1))
	s.ErrorIs(err, models.ReasonProofAlreadyExists)
	s.Equal(uint32(106), models.ReasonProofAlreadyExists.ReasonCode())
}

func (s *RegistryServiceSuite) TestSubmitRequiresCaller() {
	s.bootstrap()
	_, err := s.service.SubmitProof(context.Background(), submission(1))
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.Zero(s.count())
}

func (s *RegistryServiceSuite) TestSubmitStoresOptionalPayloads() {
	s.bootstrap()
	req := submission(1)
	req.ProofType = string(models.ProofTypeInfection)
	req.InfectionProof = fill(0x0a, 64)
	id := s.submit(alice, req)

	proof, found, err := s.service.GetProof(context.Background(), id)
	s.Require().NoError(err)
	s.Require().True(found)
	s.Equal(models.ProofTypeInfection, proof.Type)
	s.Require().NotNil(proof.InfectionProof)
	s.Equal(byte(0x0a), proof.InfectionProof[63])
	s.Nil(proof.EncounterHash)
	s.Equal(uint64(10), proof.Timestamp)
}

func (s *RegistryServiceSuite) TestCapacityMonotonicity() {
	s.bootstrap()
	s.Require().NoError(s.service.SetMaxProofs(as(authority), 2))
	s.submit(alice, submission(1))
	s.submit(alice, submission(2))

	for i := byte(3); i < 8; i++ {
		_, err := s.service.SubmitProof(as(alice), submission(i))
		s.ErrorIs(err, models.ReasonMaxProofsExceeded)
		s.Equal(uint64(2), s.count())
	}
	s.Len(s.ledger.Transfers(), 2)

	s.Run("raising capacity reopens submissions", func() {
		s.Require().NoError(s.service.SetMaxProofs(as(authority), 3))
		s.Equal(uint64(2), s.submit(alice, submission(9)))
	})
}

func (s *RegistryServiceSuite) TestFeeChargedIffAccepted() {
	s.bootstrap()
	s.Require().NoError(s.service.SetVerificationFee(as(authority), 25))

	attempts := []models.SubmitRequest{submission(1), submission(1), submission(2)}
	attempts[2].Challenge = nil
	attempts = append(attempts, submission(3))

	var accepted []uint64
	for _, req := range attempts {
		if id, err := s.service.SubmitProof(as(alice), req); err == nil {
			accepted = append(accepted, id)
		}
	}

	transfers := s.ledger.Transfers()
	s.Require().Len(transfers, len(accepted))
	for i, t := range transfers {
		s.Equal(accepted[i], t.ProofID)
		s.Equal(uint64(25), t.Amount)
		s.Equal(alice, t.From)
		s.Equal(authority, t.To)
	}
	s.Equal(int64(-50), s.ledger.Balance(alice))
}

func (s *RegistryServiceSuite) TestConcurrentDuplicateSubmissions() {
	s.bootstrap()
	const goroutines = 32

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.service.SubmitProof(as(alice), submission(0x42)); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, accepted)
	s.Equal(uint64(1), s.count())
	s.Len(s.ledger.Transfers(), 1)
}

// =============================================================================
// Verification
// =============================================================================

func (s *RegistryServiceSuite) TestVerifyProof() {
	s.bootstrap()

	s.Run("unknown id", func() {
		err := s.service.VerifyProof(as(alice), 99)
		s.ErrorIs(err, models.ReasonProofNotFound)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("non-zero challenge fails without mutation", func() {
		id := s.submit(alice, submission(1))
		err := s.service.VerifyProof(as(alice), id)
		s.ErrorIs(err, models.ReasonVerificationFailed)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		proof, _, err := s.service.GetProof(context.Background(), id)
		s.Require().NoError(err)
		s.False(proof.Verified)
	})
}

// =============================================================================
// Update
// =============================================================================

func (s *RegistryServiceSuite) TestUpdateProof() {
	s.bootstrap()
	first := s.submit(alice, submission(1))
	second := s.submit(bob, submission(2))

	s.Run("unknown id", func() {
		err := s.service.UpdateProof(as(alice), 99, fill(5, 32), fill(5, 32), fill(5, 32))
		s.ErrorIs(err, models.ReasonProofNotFound)
	})

	s.Run("ownership precedes length checks", func() {
		err := s.service.UpdateProof(as(bob), first, nil, nil, nil)
		s.ErrorIs(err, models.ReasonUnauthorized)
	})

	s.Run("length checks in order", func() {
		s.ErrorIs(s.service.UpdateProof(as(alice), first, fill(5, 31), nil, nil), models.ReasonInvalidCommitment)
		s.ErrorIs(s.service.UpdateProof(as(alice), first, fill(5, 32), nil, nil), models.ReasonInvalidChallenge)
		s.ErrorIs(s.service.UpdateProof(as(alice), first, fill(5, 32), fill(5, 32), nil), models.ReasonInvalidResponse)
	})

	s.Run("collision with another proof", func() {
		err := s.service.UpdateProof(as(alice), first, fill(2, 32), fill(5, 32), fill(5, 32))
		s.ErrorIs(err, models.ReasonProofAlreadyExists)
	})

	s.Run("own commitment may be resubmitted", func() {
		s.clock.Advance(1)
		s.Require().NoError(s.service.UpdateProof(as(alice), first, fill(1, 32), fill(6, 32), fill(6, 32)))
		proof, _, err := s.service.GetProof(context.Background(), first)
		s.Require().NoError(err)
		s.Equal(byte(6), proof.Challenge[0])
		s.Equal(uint64(11), proof.Timestamp)
	})

	s.Run("new commitment moves the index entry", func() {
		s.clock.Advance(1)
		s.Require().NoError(s.service.UpdateProof(as(alice), first, fill(9, 32), fill(0, 32), fill(7, 32)))

		ctx := context.Background()
		oldExists, err := s.service.CheckProofExistence(ctx, fill(1, 32))
		s.Require().NoError(err)
		s.False(oldExists)
		newExists, err := s.service.CheckProofExistence(ctx, fill(9, 32))
		s.Require().NoError(err)
		s.True(newExists)

		update, found, err := s.service.GetProofUpdate(ctx, first)
		s.Require().NoError(err)
		s.Require().True(found)
		s.Equal(alice, update.Updater)
		s.Equal(uint64(12), update.Timestamp)
		s.Equal(byte(9), update.Commitment[0])

		_, found, err = s.service.GetProofUpdate(ctx, second)
		s.Require().NoError(err)
		s.False(found)
	})

	s.Run("update keeps verification status", func() {
		s.Require().NoError(s.service.VerifyProof(as(bob), first))
		s.Require().NoError(s.service.UpdateProof(as(alice), first, fill(9, 32), fill(1, 32), fill(1, 32)))
		proof, _, err := s.service.GetProof(context.Background(), first)
		s.Require().NoError(err)
		s.True(proof.Verified)
	})

	s.Len(s.ledger.Transfers(), 2, "updates are free")
}

func (s *RegistryServiceSuite) TestOwnershipOnUpdate() {
	s.bootstrap()
	ids := map[domain.Principal]uint64{
		alice: s.submit(alice, submission(1)),
		bob:   s.submit(bob, submission(2)),
	}
	callers := []domain.Principal{alice, bob, authority}

	for owner, id := range ids {
		for i, caller := range callers {
			commitment := fill(byte(0x10+i)+byte(id)*0x10, 32)
			err := s.service.UpdateProof(as(caller), id, commitment, fill(1, 32), fill(1, 32))
			if caller == owner {
				s.NoError(err, "owner %s updating %d", caller, id)
			} else {
				s.ErrorIs(err, models.ReasonUnauthorized, "caller %s updating %d", caller, id)
			}
		}
	}
}

// =============================================================================
// Queries
// =============================================================================

func (s *RegistryServiceSuite) TestQueries() {
	ctx := context.Background()

	_, found, err := s.service.GetProof(ctx, 0)
	s.Require().NoError(err)
	s.False(found, "a miss is not an error")

	exists, err := s.service.CheckProofExistence(ctx, fill(1, 5))
	s.Require().NoError(err)
	s.False(exists)

	s.bootstrap()
	s.submit(alice, submission(1))
	exists, err = s.service.CheckProofExistence(ctx, fill(1, 32))
	s.Require().NoError(err)
	s.True(exists)
	s.Equal(uint64(1), s.count())
}

// =============================================================================
// Collaborator failures (gomock)
// =============================================================================

func (s *RegistryServiceSuite) TestLedgerFailureAbortsSubmission() {
	ctrl := gomock.NewController(s.T())
	mockLedger := mocks.NewMockLedger(ctrl)
	svc, err := New(s.store, mockLedger, s.clock)
	s.Require().NoError(err)
	s.bootstrap()

	mockLedger.EXPECT().
		Transfer(gomock.Any(), gomock.Any()).
		Return(errors.New("ledger unavailable"))

	_, err = svc.SubmitProof(as(alice), submission(1))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	s.Zero(s.count(), "id allocation rolled back")
	exists, err := svc.CheckProofExistence(context.Background(), fill(1, 32))
	s.Require().NoError(err)
	s.False(exists, "index entry rolled back")
	_, found, err := svc.GetProof(context.Background(), 0)
	s.Require().NoError(err)
	s.False(found)
}

// cancellingLedger records the transfer and then cancels the request context,
// as a client disconnecting right after the fee moved would.
type cancellingLedger struct {
	*ledger.InMemoryLedger
	cancel context.CancelFunc
}

func (l cancellingLedger) Transfer(ctx context.Context, t models.FeeTransfer) error {
	if err := l.InMemoryLedger.Transfer(ctx, t); err != nil {
		return err
	}
	l.cancel()
	return nil
}

func (s *RegistryServiceSuite) TestCancelAfterTransferKeepsSubmission() {
	ctx, cancel := context.WithCancel(as(alice))
	defer cancel()
	svc, err := New(s.store, cancellingLedger{InMemoryLedger: s.ledger, cancel: cancel}, s.clock)
	s.Require().NoError(err)
	s.bootstrap()

	id, err := svc.SubmitProof(ctx, submission(1))
	s.Require().NoError(err)
	s.Require().Error(ctx.Err())

	s.Equal(uint64(1), s.count())
	proof, found, err := svc.GetProof(context.Background(), id)
	s.Require().NoError(err)
	s.Require().True(found)
	s.Equal(alice, proof.Submitter)
	s.Len(s.ledger.Transfers(), 1, "one transfer for one stored proof")
}

func (s *RegistryServiceSuite) TestLedgerNotCalledOnRejection() {
	ctrl := gomock.NewController(s.T())
	mockLedger := mocks.NewMockLedger(ctrl)
	svc, err := New(s.store, mockLedger, s.clock)
	s.Require().NoError(err)

	mockLedger.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)

	_, err = svc.SubmitProof(as(alice), submission(1))
	s.ErrorIs(err, models.ReasonAuthorityNotVerified)
}

func (s *RegistryServiceSuite) TestLedgerReceivesTransfer() {
	ctrl := gomock.NewController(s.T())
	mockLedger := mocks.NewMockLedger(ctrl)
	mockClock := mocks.NewMockClock(ctrl)
	svc, err := New(s.store, mockLedger, mockClock)
	s.Require().NoError(err)
	s.bootstrap()

	mockClock.EXPECT().Height(gomock.Any()).Return(uint64(77))
	mockLedger.EXPECT().
		Transfer(gomock.Any(), models.FeeTransfer{
			Amount: models.DefaultVerificationFee, From: alice, To: authority, ProofID: 0, Height: 77,
		}).
		Return(nil)

	id, err := svc.SubmitProof(as(alice), submission(1))
	s.Require().NoError(err)
	s.Zero(id)
}

func (s *RegistryServiceSuite) TestCustomVerifier() {
	ctrl := gomock.NewController(s.T())
	mockVerifier := mocks.NewMockVerifier(ctrl)
	svc, err := New(s.store, s.ledger, s.clock, WithVerifier(mockVerifier))
	s.Require().NoError(err)
	s.bootstrap()
	id := s.submit(alice, submission(1))

	mockVerifier.EXPECT().Verify(gomock.Any()).Return(true)
	s.Require().NoError(svc.VerifyProof(as(alice), id))

	s.ErrorIs(svc.VerifyProof(as(alice), id), models.ReasonInvalidProofStatus, "verifier is not consulted twice")
}

func (s *RegistryServiceSuite) TestAuditEvents() {
	ctrl := gomock.NewController(s.T())
	publisher := mocks.NewMockAuditPublisher(ctrl)
	svc, err := New(s.store, s.ledger, s.clock,
		WithAuditPublisher(publisher),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(err)

	gomock.InOrder(
		publisher.EXPECT().Emit(gomock.Any(), gomock.Cond(func(e audit.Event) bool {
			return e.Action == string(audit.EventAuthoritySet) && e.Principal == authority
		})).Return(nil),
		publisher.EXPECT().Emit(gomock.Any(), gomock.Cond(func(e audit.Event) bool {
			return e.Action == string(audit.EventProofSubmitted) && e.ProofID != nil && *e.ProofID == 0 && e.Principal == alice
		})).Return(errors.New("audit sink down")),
		publisher.EXPECT().Emit(gomock.Any(), gomock.Cond(func(e audit.Event) bool {
			return e.Action == string(audit.EventSubmissionRejected) && e.Reason == string(models.ReasonProofAlreadyExists)
		})).Return(nil),
	)

	s.Require().NoError(svc.SetAuthority(context.Background(), authority))
	_, err = svc.SubmitProof(as(alice), submission(1))
	s.Require().NoError(err, "audit failures never fail the operation")
	_, err = svc.SubmitProof(as(alice), submission(1))
	s.ErrorIs(err, models.ReasonProofAlreadyExists)
}
