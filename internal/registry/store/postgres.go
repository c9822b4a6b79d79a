package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"proofregistry/internal/registry/models"
	"proofregistry/pkg/domain"
	dErrors "proofregistry/pkg/domain-errors"
	"proofregistry/pkg/platform/sentinel"
	txcontext "proofregistry/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// Migrate creates the registry tables and seeds the default configuration
// row. It is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply registry schema: %w", err)
	}
	def := models.DefaultConfig()
	_, err := db.ExecContext(ctx, `
		INSERT INTO registry_config (id, next_proof_id, max_proofs, verification_fee, authority, curve_generator, curve_base, curve_order)
		VALUES (1, 0, $1::numeric, $2::numeric, NULL, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		u64(def.MaxProofs), u64(def.VerificationFee),
		def.Curve.Generator[:], def.Curve.Base[:], def.Curve.Order[:],
	)
	if err != nil {
		return fmt.Errorf("seed registry config: %w", err)
	}
	return nil
}

// PostgresStore persists registry state in PostgreSQL. Transactions lock the
// singleton config row, which serializes every mutation.
type PostgresStore struct {
	db        *sql.DB
	txTimeout time.Duration
}

// NewPostgres constructs a PostgreSQL-backed store. Call Migrate first.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, txTimeout: defaultTxTimeout}
}

// RunInTx runs fn inside a SQL transaction carried in the callback context so
// that a SQL ledger can join it.
func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin registry tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = sqlTx.Rollback()
		}
	}()

	if _, err := sqlTx.ExecContext(ctx, `SELECT id FROM registry_config WHERE id = 1 FOR UPDATE`); err != nil {
		return fmt.Errorf("lock registry config: %w", err)
	}

	txCtx := txcontext.WithTx(ctx, sqlTx)
	if err := fn(txCtx, &pgRunner{q: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "registry transaction timed out")
		}
		return fmt.Errorf("commit registry tx: %w", err)
	}
	committed = true
	return nil
}

func (s *PostgresStore) runner() *pgRunner {
	return &pgRunner{q: s.db}
}

func (s *PostgresStore) LoadConfig(ctx context.Context) (*models.Config, error) {
	return s.runner().LoadConfig(ctx)
}

func (s *PostgresStore) SaveConfig(ctx context.Context, cfg *models.Config) error {
	return s.runner().SaveConfig(ctx, cfg)
}

func (s *PostgresStore) FindProof(ctx context.Context, id uint64) (*models.Proof, error) {
	return s.runner().FindProof(ctx, id)
}

func (s *PostgresStore) FindProofIDByCommitment(ctx context.Context, commitment models.Bytes32) (uint64, error) {
	return s.runner().FindProofIDByCommitment(ctx, commitment)
}

func (s *PostgresStore) InsertProof(ctx context.Context, proof *models.Proof) error {
	return s.runner().InsertProof(ctx, proof)
}

func (s *PostgresStore) UpdateProof(ctx context.Context, proof *models.Proof) error {
	return s.runner().UpdateProof(ctx, proof)
}

func (s *PostgresStore) FindProofUpdate(ctx context.Context, id uint64) (*models.ProofUpdate, error) {
	return s.runner().FindProofUpdate(ctx, id)
}

func (s *PostgresStore) SaveProofUpdate(ctx context.Context, id uint64, update *models.ProofUpdate) error {
	return s.runner().SaveProofUpdate(ctx, id, update)
}

// pgRunner executes store operations against either the pool or an open
// transaction.
type pgRunner struct {
	q txcontext.Executor
}

func (r *pgRunner) LoadConfig(ctx context.Context) (*models.Config, error) {
	var (
		next, maxProofs, fee string
		authority            sql.NullString
		gen, base, order     []byte
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT next_proof_id::text, max_proofs::text, verification_fee::text, authority,
		       curve_generator, curve_base, curve_order
		FROM registry_config WHERE id = 1`,
	).Scan(&next, &maxProofs, &fee, &authority, &gen, &base, &order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("registry config missing: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("load registry config: %w", err)
	}

	cfg := &models.Config{}
	if cfg.NextProofID, err = parseU64(next); err != nil {
		return nil, err
	}
	if cfg.MaxProofs, err = parseU64(maxProofs); err != nil {
		return nil, err
	}
	if cfg.VerificationFee, err = parseU64(fee); err != nil {
		return nil, err
	}
	if authority.Valid {
		p := domain.Principal(authority.String)
		cfg.Authority = &p
	}
	copy(cfg.Curve.Generator[:], gen)
	copy(cfg.Curve.Base[:], base)
	copy(cfg.Curve.Order[:], order)
	return cfg, nil
}

func (r *pgRunner) SaveConfig(ctx context.Context, cfg *models.Config) error {
	var authority sql.NullString
	if cfg.Authority != nil {
		authority = sql.NullString{String: cfg.Authority.String(), Valid: true}
	}
	_, err := r.q.ExecContext(ctx, `
		UPDATE registry_config
		SET next_proof_id = $1::numeric, max_proofs = $2::numeric, verification_fee = $3::numeric,
		    authority = $4, curve_generator = $5, curve_base = $6, curve_order = $7
		WHERE id = 1`,
		u64(cfg.NextProofID), u64(cfg.MaxProofs), u64(cfg.VerificationFee), authority,
		cfg.Curve.Generator[:], cfg.Curve.Base[:], cfg.Curve.Order[:],
	)
	if err != nil {
		return fmt.Errorf("save registry config: %w", err)
	}
	return nil
}

const proofColumns = `id::text, proof_type, commitment, challenge, response, verifier_key,
	encounter_hash, infection_proof, exposure_query, block_height::text, submitter, verified`

func (r *pgRunner) FindProof(ctx context.Context, id uint64) (*models.Proof, error) {
	var (
		idText, heightText, proofType, submitter string
		commitment, challenge, response, key     []byte
		encounter, infection, exposure           []byte
		verified                                 bool
	)
	err := r.q.QueryRowContext(ctx, `SELECT `+proofColumns+` FROM proofs WHERE id = $1::numeric`, u64(id)).
		Scan(&idText, &proofType, &commitment, &challenge, &response, &key,
			&encounter, &infection, &exposure, &heightText, &submitter, &verified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find proof: %w", err)
	}

	p := &models.Proof{
		Type:      models.ProofType(proofType),
		Submitter: domain.Principal(submitter),
		Verified:  verified,
	}
	if p.ID, err = parseU64(idText); err != nil {
		return nil, err
	}
	if p.Timestamp, err = parseU64(heightText); err != nil {
		return nil, err
	}
	copy(p.Commitment[:], commitment)
	copy(p.Challenge[:], challenge)
	copy(p.Response[:], response)
	copy(p.VerifierKey[:], key)
	if encounter != nil {
		var h models.Bytes32
		copy(h[:], encounter)
		p.EncounterHash = &h
	}
	if infection != nil {
		var ip models.Bytes64
		copy(ip[:], infection)
		p.InfectionProof = &ip
	}
	if exposure != nil {
		var q models.Bytes32
		copy(q[:], exposure)
		p.ExposureQuery = &q
	}
	return p, nil
}

func (r *pgRunner) FindProofIDByCommitment(ctx context.Context, commitment models.Bytes32) (uint64, error) {
	var idText string
	err := r.q.QueryRowContext(ctx, `SELECT id::text FROM proofs WHERE commitment = $1`, commitment[:]).Scan(&idText)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("find proof by commitment: %w", err)
	}
	return parseU64(idText)
}

func (r *pgRunner) InsertProof(ctx context.Context, p *models.Proof) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO proofs (id, proof_type, commitment, challenge, response, verifier_key,
		                    encounter_hash, infection_proof, exposure_query, block_height, submitter, verified)
		VALUES ($1::numeric, $2, $3, $4, $5, $6, $7, $8, $9, $10::numeric, $11, $12)`,
		u64(p.ID), string(p.Type), p.Commitment[:], p.Challenge[:], p.Response[:], p.VerifierKey[:],
		optional32(p.EncounterHash), optional64(p.InfectionProof), optional32(p.ExposureQuery),
		u64(p.Timestamp), p.Submitter.String(), p.Verified,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert proof: %w", err)
	}
	return nil
}

// UpdateProof relies on the unique commitment index to move the index entry.
func (r *pgRunner) UpdateProof(ctx context.Context, p *models.Proof) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE proofs
		SET commitment = $2, challenge = $3, response = $4, block_height = $5::numeric, verified = $6
		WHERE id = $1::numeric`,
		u64(p.ID), p.Commitment[:], p.Challenge[:], p.Response[:], u64(p.Timestamp), p.Verified,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update proof: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update proof: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (r *pgRunner) FindProofUpdate(ctx context.Context, id uint64) (*models.ProofUpdate, error) {
	var (
		commitment, challenge, response []byte
		heightText, updater             string
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT new_commitment, new_challenge, new_response, block_height::text, updater
		FROM proof_updates WHERE proof_id = $1::numeric`, u64(id),
	).Scan(&commitment, &challenge, &response, &heightText, &updater)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find proof update: %w", err)
	}
	u := &models.ProofUpdate{Updater: domain.Principal(updater)}
	if u.Timestamp, err = parseU64(heightText); err != nil {
		return nil, err
	}
	copy(u.Commitment[:], commitment)
	copy(u.Challenge[:], challenge)
	copy(u.Response[:], response)
	return u, nil
}

func (r *pgRunner) SaveProofUpdate(ctx context.Context, id uint64, u *models.ProofUpdate) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO proof_updates (proof_id, new_commitment, new_challenge, new_response, block_height, updater)
		VALUES ($1::numeric, $2, $3, $4, $5::numeric, $6)
		ON CONFLICT (proof_id) DO UPDATE
		SET new_commitment = EXCLUDED.new_commitment,
		    new_challenge = EXCLUDED.new_challenge,
		    new_response = EXCLUDED.new_response,
		    block_height = EXCLUDED.block_height,
		    updater = EXCLUDED.updater`,
		u64(id), u.Commitment[:], u.Challenge[:], u.Response[:], u64(u.Timestamp), u.Updater.String(),
	)
	if err != nil {
		return fmt.Errorf("save proof update: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// u64 renders an unsigned value for a NUMERIC(20,0) column. BIGINT cannot hold
// the full uint64 range.
func u64(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func parseU64(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode numeric column %q: %w", s, err)
	}
	return v, nil
}

func optional32(b *models.Bytes32) []byte {
	if b == nil {
		return nil
	}
	return b[:]
}

func optional64(b *models.Bytes64) []byte {
	if b == nil {
		return nil
	}
	return b[:]
}
