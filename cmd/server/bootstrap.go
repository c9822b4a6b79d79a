package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"proofregistry/internal/platform/config"
	"proofregistry/internal/registry/models"
	"proofregistry/pkg/domain"
	"proofregistry/pkg/requestcontext"
)

// registryBootstrap is the subset of the registry used at startup.
type registryBootstrap interface {
	SetAuthority(ctx context.Context, principal domain.Principal) error
	SetMaxProofs(ctx context.Context, n uint64) error
	SetVerificationFee(ctx context.Context, fee uint64) error
}

// bootstrap installs the configured authority and applies the configured
// limits. An authority already present from a previous run is left alone and
// the limits are still applied.
func bootstrap(ctx context.Context, registry registryBootstrap, cfg config.RegistryConfig, log *slog.Logger) error {
	if cfg.Authority == "" {
		if cfg.MaxProofs != nil || cfg.VerificationFee != nil {
			log.Warn("registry limits configured without REGISTRY_AUTHORITY; skipping")
		}
		return nil
	}

	authority := domain.Principal(cfg.Authority)
	err := registry.SetAuthority(ctx, authority)
	switch {
	case err == nil:
		log.Info("registry authority installed", "authority", authority)
	case errors.Is(err, models.ReasonAuthorityAlreadySet):
		log.Info("registry authority already set", "authority", authority)
	default:
		return fmt.Errorf("bootstrap authority: %w", err)
	}

	ctx = requestcontext.WithCaller(ctx, authority)
	if cfg.MaxProofs != nil {
		if err := registry.SetMaxProofs(ctx, *cfg.MaxProofs); err != nil {
			return fmt.Errorf("bootstrap max proofs: %w", err)
		}
	}
	if cfg.VerificationFee != nil {
		if err := registry.SetVerificationFee(ctx, *cfg.VerificationFee); err != nil {
			return fmt.Errorf("bootstrap verification fee: %w", err)
		}
	}
	return nil
}
