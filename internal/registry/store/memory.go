package store

import (
	"context"
	"sync"
	"time"

	"proofregistry/internal/registry/models"
	dErrors "proofregistry/pkg/domain-errors"
	"proofregistry/pkg/platform/sentinel"
)

// defaultTxTimeout bounds a transaction when the caller set no deadline.
const defaultTxTimeout = 5 * time.Second

// InMemoryStore keeps registry state in maps. All transactions are
// serialized behind one lock and stage their writes in an overlay that is
// applied only when the callback succeeds.
type InMemoryStore struct {
	mu        sync.RWMutex
	config    models.Config
	proofs    map[uint64]*models.Proof
	index     map[models.Bytes32]uint64
	updates   map[uint64]*models.ProofUpdate
	txTimeout time.Duration
}

// NewInMemory returns a store holding the default configuration.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		config:    models.DefaultConfig(),
		proofs:    make(map[uint64]*models.Proof),
		index:     make(map[models.Bytes32]uint64),
		updates:   make(map[uint64]*models.ProofUpdate),
		txTimeout: defaultTxTimeout,
	}
}

func cloneConfig(cfg models.Config) *models.Config {
	out := cfg
	if cfg.Authority != nil {
		a := *cfg.Authority
		out.Authority = &a
	}
	return &out
}

func (s *InMemoryStore) LoadConfig(_ context.Context) (*models.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneConfig(s.config), nil
}

func (s *InMemoryStore) SaveConfig(ctx context.Context, cfg *models.Config) error {
	return s.RunInTx(ctx, func(ctx context.Context, tx Store) error {
		return tx.SaveConfig(ctx, cfg)
	})
}

func (s *InMemoryStore) FindProof(_ context.Context, id uint64) (*models.Proof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.proofs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *InMemoryStore) FindProofIDByCommitment(_ context.Context, commitment models.Bytes32) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.index[commitment]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	return id, nil
}

func (s *InMemoryStore) InsertProof(ctx context.Context, proof *models.Proof) error {
	return s.RunInTx(ctx, func(ctx context.Context, tx Store) error {
		return tx.InsertProof(ctx, proof)
	})
}

func (s *InMemoryStore) UpdateProof(ctx context.Context, proof *models.Proof) error {
	return s.RunInTx(ctx, func(ctx context.Context, tx Store) error {
		return tx.UpdateProof(ctx, proof)
	})
}

func (s *InMemoryStore) FindProofUpdate(_ context.Context, id uint64) (*models.ProofUpdate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.updates[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *InMemoryStore) SaveProofUpdate(ctx context.Context, id uint64, update *models.ProofUpdate) error {
	return s.RunInTx(ctx, func(ctx context.Context, tx Store) error {
		return tx.SaveProofUpdate(ctx, id, update)
	})
}

// RunInTx holds the store lock for the whole callback. Once fn returns nil
// the staged writes are committed even if ctx was cancelled meanwhile.
func (s *InMemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	ov := &overlay{
		base:    s,
		proofs:  make(map[uint64]*models.Proof),
		index:   make(map[models.Bytes32]indexEntry),
		updates: make(map[uint64]*models.ProofUpdate),
	}
	if err := fn(ctx, ov); err != nil {
		return err
	}
	ov.commit()
	return nil
}

type indexEntry struct {
	id      uint64
	deleted bool
}

// overlay stages writes over the locked base store. Reads see staged values
// first.
type overlay struct {
	base    *InMemoryStore
	config  *models.Config
	proofs  map[uint64]*models.Proof
	index   map[models.Bytes32]indexEntry
	updates map[uint64]*models.ProofUpdate
}

func (o *overlay) LoadConfig(_ context.Context) (*models.Config, error) {
	if o.config != nil {
		return cloneConfig(*o.config), nil
	}
	return cloneConfig(o.base.config), nil
}

func (o *overlay) SaveConfig(_ context.Context, cfg *models.Config) error {
	o.config = cloneConfig(*cfg)
	return nil
}

func (o *overlay) proof(id uint64) (*models.Proof, bool) {
	if p, ok := o.proofs[id]; ok {
		return p, true
	}
	p, ok := o.base.proofs[id]
	return p, ok
}

func (o *overlay) FindProof(_ context.Context, id uint64) (*models.Proof, error) {
	p, ok := o.proof(id)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

func (o *overlay) lookup(commitment models.Bytes32) (uint64, bool) {
	if e, ok := o.index[commitment]; ok {
		return e.id, !e.deleted
	}
	id, ok := o.base.index[commitment]
	return id, ok
}

func (o *overlay) FindProofIDByCommitment(_ context.Context, commitment models.Bytes32) (uint64, error) {
	id, ok := o.lookup(commitment)
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	return id, nil
}

func (o *overlay) InsertProof(_ context.Context, proof *models.Proof) error {
	if _, ok := o.lookup(proof.Commitment); ok {
		return sentinel.ErrConflict
	}
	if _, ok := o.proof(proof.ID); ok {
		return sentinel.ErrConflict
	}
	o.proofs[proof.ID] = proof.Clone()
	o.index[proof.Commitment] = indexEntry{id: proof.ID}
	return nil
}

func (o *overlay) UpdateProof(_ context.Context, proof *models.Proof) error {
	current, ok := o.proof(proof.ID)
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Commitment != proof.Commitment {
		if id, taken := o.lookup(proof.Commitment); taken && id != proof.ID {
			return sentinel.ErrConflict
		}
		o.index[current.Commitment] = indexEntry{deleted: true}
		o.index[proof.Commitment] = indexEntry{id: proof.ID}
	}
	o.proofs[proof.ID] = proof.Clone()
	return nil
}

func (o *overlay) FindProofUpdate(_ context.Context, id uint64) (*models.ProofUpdate, error) {
	u, ok := o.updates[id]
	if !ok {
		u, ok = o.base.updates[id]
	}
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (o *overlay) SaveProofUpdate(_ context.Context, id uint64, update *models.ProofUpdate) error {
	if _, ok := o.proof(id); !ok {
		return sentinel.ErrNotFound
	}
	cp := *update
	o.updates[id] = &cp
	return nil
}

func (o *overlay) commit() {
	s := o.base
	if o.config != nil {
		s.config = *o.config
	}
	for id, p := range o.proofs {
		s.proofs[id] = p
	}
	for c, e := range o.index {
		if e.deleted {
			delete(s.index, c)
			continue
		}
		s.index[c] = e.id
	}
	for id, u := range o.updates {
		s.updates[id] = u
	}
}
