// Package handler exposes the registry operations over HTTP.
package handler

import (
	"context"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"proofregistry/internal/registry/models"
	"proofregistry/pkg/domain"
	dErrors "proofregistry/pkg/domain-errors"
	"proofregistry/pkg/platform/httputil"
	"proofregistry/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the registry operations served by the handler.
type Service interface {
	SetAuthority(ctx context.Context, principal domain.Principal) error
	SetMaxProofs(ctx context.Context, n uint64) error
	SetVerificationFee(ctx context.Context, fee uint64) error
	SetCurveParams(ctx context.Context, generator, base, order []byte) error
	GetConfig(ctx context.Context) (*models.Config, error)
	SubmitProof(ctx context.Context, req models.SubmitRequest) (uint64, error)
	VerifyProof(ctx context.Context, id uint64) error
	UpdateProof(ctx context.Context, id uint64, commitment, challenge, response []byte) error
	GetProof(ctx context.Context, id uint64) (*models.Proof, bool, error)
	GetProofUpdate(ctx context.Context, id uint64) (*models.ProofUpdate, bool, error)
	GetProofCount(ctx context.Context) (uint64, error)
	CheckProofExistence(ctx context.Context, commitment []byte) (bool, error)
}

// Handler handles registry endpoints.
type Handler struct {
	registry      Service
	logger        *slog.Logger
	requireCaller func(http.Handler) http.Handler
}

// New creates a registry Handler. requireCaller guards every state-changing
// route; reads are public.
func New(registry Service, logger *slog.Logger, requireCaller func(http.Handler) http.Handler) *Handler {
	return &Handler{
		registry:      registry,
		logger:        logger,
		requireCaller: requireCaller,
	}
}

// Register registers the registry routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/registry/config", h.handleGetConfig)
	r.Get("/proofs/count", h.handleGetProofCount)
	r.Get("/proofs/{id}", h.handleGetProof)
	r.Get("/proofs/{id}/update", h.handleGetProofUpdate)
	r.Get("/commitments/{commitment}", h.handleCheckExistence)

	r.Group(func(r chi.Router) {
		if h.requireCaller != nil {
			r.Use(h.requireCaller)
		}
		r.Post("/registry/authority", h.handleSetAuthority)
		r.Put("/registry/config/max-proofs", h.handleSetMaxProofs)
		r.Put("/registry/config/verification-fee", h.handleSetVerificationFee)
		r.Put("/registry/config/curve", h.handleSetCurveParams)
		r.Post("/proofs", h.handleSubmitProof)
		r.Post("/proofs/{id}/verify", h.handleVerifyProof)
		r.Put("/proofs/{id}", h.handleUpdateProof)
	})
}

func (h *Handler) handleSetAuthority(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.SetAuthorityRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.registry.SetAuthority(ctx, domain.Principal(req.Principal)); err != nil {
		h.fail(ctx, w, "failed to set authority", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetMaxProofs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.SetValueRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.registry.SetMaxProofs(ctx, *req.Value); err != nil {
		h.fail(ctx, w, "failed to set max proofs", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetVerificationFee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.SetValueRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.registry.SetVerificationFee(ctx, *req.Value); err != nil {
		h.fail(ctx, w, "failed to set verification fee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetCurveParams(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.CurveRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.registry.SetCurveParams(ctx, req.Generator, req.Base, req.Order); err != nil {
		h.fail(ctx, w, "failed to set curve parameters", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg, err := h.registry.GetConfig(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to read config", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cfg)
}

func (h *Handler) handleSubmitProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	id, err := h.registry.SubmitProof(ctx, *req)
	if err != nil {
		h.fail(ctx, w, "proof submission rejected", err)
		return
	}
	h.logger.InfoContext(ctx, "proof submitted",
		"request_id", requestID,
		"caller", requestcontext.Caller(ctx),
		"proof_id", id,
	)
	httputil.WriteJSON(w, http.StatusCreated, models.SubmitResponse{ID: id})
}

func (h *Handler) handleVerifyProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.proofID(w, r)
	if !ok {
		return
	}
	if err := h.registry.VerifyProof(ctx, id); err != nil {
		h.fail(ctx, w, "proof verification rejected", err, "proof_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUpdateProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.proofID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.registry.UpdateProof(ctx, id, req.Commitment, req.Challenge, req.Response); err != nil {
		h.fail(ctx, w, "proof update rejected", err, "proof_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.proofID(w, r)
	if !ok {
		return
	}
	proof, found, err := h.registry.GetProof(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to read proof", err, "proof_id", id)
		return
	}
	if !found {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "proof not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, proof)
}

func (h *Handler) handleGetProofUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.proofID(w, r)
	if !ok {
		return
	}
	update, found, err := h.registry.GetProofUpdate(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to read proof update", err, "proof_id", id)
		return
	}
	if !found {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "proof update not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, update)
}

func (h *Handler) handleGetProofCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	count, err := h.registry.GetProofCount(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to read proof count", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.CountResponse{Count: count})
}

func (h *Handler) handleCheckExistence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	commitment, err := hex.DecodeString(chi.URLParam(r, "commitment"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "commitment must be hex encoded"))
		return
	}
	exists, err := h.registry.CheckProofExistence(ctx, commitment)
	if err != nil {
		h.fail(ctx, w, "failed to check commitment", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ExistenceResponse{
		Commitment: commitment,
		Exists:     exists,
	})
}

func (h *Handler) proofID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.logger.WarnContext(r.Context(), "invalid proof id",
			"request_id", requestcontext.RequestID(r.Context()),
			"id", chi.URLParam(r, "id"),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid proof id"))
		return 0, false
	}
	return id, true
}

// fail writes err and logs it; rejections are warnings, infrastructure
// failures are errors.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	attrs = append(attrs,
		"request_id", requestcontext.RequestID(ctx),
		"caller", requestcontext.Caller(ctx),
		"error", err,
	)
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeUnavailable, dErrors.CodeTimeout:
		h.logger.ErrorContext(ctx, msg, attrs...)
	default:
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
