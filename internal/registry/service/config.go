package service

import (
	"context"
	"fmt"
	"time"

	"proofregistry/internal/registry/models"
	"proofregistry/internal/registry/store"
	"proofregistry/pkg/domain"
	dErrors "proofregistry/pkg/domain-errors"
	"proofregistry/pkg/platform/audit"
	"proofregistry/pkg/requestcontext"
)

// SetAuthority installs the write-once registry authority. The burn principal
// and the empty principal are rejected before the already-set check.
func (s *Service) SetAuthority(ctx context.Context, principal domain.Principal) error {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "SetAuthority")
	var err error
	defer func() {
		endSpan(span, err)
		s.metrics.ObserveOperation("set_authority", start)
	}()

	if principal.IsNil() {
		err = reject(models.ReasonInvalidPrincipal)
		s.logFailure(ctx, "authority rejected", err, "principal", principal.String())
		return err
	}

	err = s.repo.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		cfg, err := tx.LoadConfig(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry config")
		}
		if err := cfg.SetAuthority(principal); err != nil {
			return rejectErr(err, "failed to set authority")
		}
		if err := tx.SaveConfig(ctx, cfg); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save registry config")
		}
		return nil
	})
	if err != nil {
		err = asDomain(err, "failed to set authority")
		s.logFailure(ctx, "authority rejected", err, "principal", principal.String())
		return err
	}

	s.logger.InfoContext(ctx, "registry authority set",
		"authority", principal.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.metrics.RecordConfigChange("authority")
	s.emit(ctx, audit.EventAuthoritySet, audit.Event{Principal: principal})
	return nil
}

// SetMaxProofs changes the capacity once an authority is set. n must be
// positive, which is checked before the authority. Lowering it below the
// allocated count freezes submissions.
func (s *Service) SetMaxProofs(ctx context.Context, n uint64) error {
	validate := func() error {
		if n == 0 {
			return reject(models.ReasonInvalidParam)
		}
		return nil
	}
	return s.updateConfig(ctx, "max_proofs", fmt.Sprintf("max_proofs=%d", n), validate, func(cfg *models.Config) error {
		cfg.MaxProofs = n
		return nil
	})
}

// SetVerificationFee changes the fee charged per accepted submission. Zero is
// allowed.
func (s *Service) SetVerificationFee(ctx context.Context, fee uint64) error {
	return s.updateConfig(ctx, "verification_fee", fmt.Sprintf("verification_fee=%d", fee), nil, func(cfg *models.Config) error {
		cfg.VerificationFee = fee
		return nil
	})
}

// SetCurveParams replaces all three curve parameters or none of them.
func (s *Service) SetCurveParams(ctx context.Context, generator, base, order []byte) error {
	req := models.CurveRequest{Generator: generator, Base: base, Order: order}
	return s.updateConfig(ctx, "curve", "curve parameters replaced", nil, func(cfg *models.Config) error {
		params, err := req.Params()
		if err != nil {
			return rejectErr(err, "invalid curve parameters")
		}
		cfg.Curve = params
		return nil
	})
}

// updateConfig runs validate, then gates the change on an authority having
// been set and applies mutate inside a transaction. The caller's identity is
// not compared with the authority.
func (s *Service) updateConfig(ctx context.Context, field, detail string, validate func() error, mutate func(cfg *models.Config) error) error {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "SetConfig")
	span.SetAttributes(configFieldAttr(field))
	var err error
	defer func() {
		endSpan(span, err)
		s.metrics.ObserveOperation("set_"+field, start)
	}()

	if validate != nil {
		if err = validate(); err != nil {
			s.logFailure(ctx, "config change rejected", err, "field", field)
			return err
		}
	}

	err = s.repo.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		cfg, err := tx.LoadConfig(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry config")
		}
		if !cfg.HasAuthority() {
			return reject(models.ReasonUnauthorized)
		}
		if err := mutate(cfg); err != nil {
			return err
		}
		if err := tx.SaveConfig(ctx, cfg); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save registry config")
		}
		return nil
	})
	if err != nil {
		err = asDomain(err, "failed to update registry config")
		s.logFailure(ctx, "config change rejected", err, "field", field)
		return err
	}

	s.logger.InfoContext(ctx, "registry config changed",
		"field", field,
		"detail", detail,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.metrics.RecordConfigChange(field)
	s.emit(ctx, audit.EventConfigChanged, audit.Event{Detail: detail})
	return nil
}
