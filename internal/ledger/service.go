package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Service is the orchestration layer over the project aggregates. Every
// public call runs under one mutex, so load, transform and store form a
// single critical section.
type Service struct {
	mu      sync.Mutex
	store   Store
	logger  Logger
	clock   Clock
	idgen   TxIDGenerator
	metrics Metrics
}

// NewService creates a new Service with the provided dependencies.
// A nil metrics falls back to NopMetrics.
func NewService(store Store, logger Logger, clock Clock, idgen TxIDGenerator, metrics Metrics) *Service {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Service{
		store:   store,
		logger:  logger,
		clock:   clock,
		idgen:   idgen,
		metrics: metrics,
	}
}

// transform mutates a private copy of a project. stamp is the audit record
// for any entity the transform creates.
type transform func(p *Project, stamp UpdateLog) outcome

// AddProject creates the project keyed by hash(logo, name). The hash is
// returned on conflict as well.
func (s *Service) AddProject(ctx context.Context, name, logo, createdBy string) (ProjectReturnMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash := ProjectHash(logo, name)
	stamp := s.stamp(TypeAddProject)

	existing, err := s.store.Get(ctx, hash)
	if err != nil {
		return ProjectReturnMessage{}, fmt.Errorf("loading project: %w", err)
	}

	out := applied(msgProjectAdded)
	if existing != nil {
		out = conflict(msgProjectExists)
	} else {
		p := newProject(hash, createdBy, stamp)
		err = s.store.Create(ctx, p, s.transaction(stamp, hash, out))
		switch {
		case errors.Is(err, ErrProjectExists):
			out = conflict(msgProjectExists)
		case err != nil:
			return ProjectReturnMessage{}, fmt.Errorf("creating project: %w", err)
		}
	}

	if !out.changed {
		if err := s.store.Record(ctx, s.transaction(stamp, hash, out)); err != nil {
			return ProjectReturnMessage{}, fmt.Errorf("recording transaction: %w", err)
		}
	}
	s.observe(stamp, hash, out)

	return ProjectReturnMessage{ReturnMessage: out.result(stamp.TransactionHash), Hash: hash}, nil
}

// QueryProject reports whether a project exists. The result code is 200 in
// both cases. Queries are not journaled.
func (s *Service) QueryProject(ctx context.Context, projectHash string) (ProjectQuery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.store.Get(ctx, projectHash)
	if err != nil {
		return ProjectQuery{}, fmt.Errorf("loading project: %w", err)
	}

	q := ProjectQuery{
		ReturnMessage: ReturnMessage{
			Result:          CodeOK,
			Message:         msgProjectNotFound,
			TransactionHash: s.idgen.New(),
			Kind:            KindParentNotFound,
		},
	}
	if p != nil {
		q.Message = msgProjectFound
		q.Kind = KindOK
		q.Found = true
		q.CreatedBy = p.CreatedBy
		q.Created = p.UpdateLogs
	}
	return q, nil
}

// GetProject returns a copy of the stored project.
func (s *Service) GetProject(ctx context.Context, projectHash string) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.store.Get(ctx, projectHash)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}
	return p.Clone(), nil
}

// History returns the most recent journal entries, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]*Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.store.ListTransactions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return txs, nil
}

// mutate runs fn against a copy of the project and persists the copy only
// when fn reports a change. The journal entry is written either way. A write
// from another process between the load and the update surfaces as
// ErrProjectModified and nothing is persisted.
func (s *Service) mutate(ctx context.Context, typ TransactionType, projectHash string, fn transform) (ReturnMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp := s.stamp(typ)

	current, err := s.store.Get(ctx, projectHash)
	if err != nil {
		return ReturnMessage{}, fmt.Errorf("loading project: %w", err)
	}

	var (
		out  outcome
		next *Project
	)
	if current == nil {
		out = missing(KindParentNotFound, CodeNotFound, msgProjectNotFound)
	} else {
		next = current.Clone()
		next.Version = current.Version + 1
		out = fn(next, stamp)
	}

	tx := s.transaction(stamp, projectHash, out)
	if out.changed {
		if err := s.store.Update(ctx, next, tx); err != nil {
			return ReturnMessage{}, fmt.Errorf("updating project: %w", err)
		}
	} else if err := s.store.Record(ctx, tx); err != nil {
		return ReturnMessage{}, fmt.Errorf("recording transaction: %w", err)
	}
	s.observe(stamp, projectHash, out)

	return out.result(stamp.TransactionHash), nil
}

func (s *Service) stamp(typ TransactionType) UpdateLog {
	return UpdateLog{
		TimeStamp:       s.clock.Now(),
		TransactionHash: s.idgen.New(),
		TransactionType: typ,
	}
}

func (s *Service) transaction(stamp UpdateLog, projectHash string, out outcome) *Transaction {
	return &Transaction{
		Hash:        stamp.TransactionHash,
		Type:        stamp.TransactionType,
		ProjectHash: projectHash,
		Result:      out.code,
		Kind:        out.kind,
		Message:     out.message,
		CreatedAt:   stamp.TimeStamp,
	}
}

func (s *Service) observe(stamp UpdateLog, projectHash string, out outcome) {
	s.metrics.ObserveOperation(stamp.TransactionType, out.code)
	args := []any{
		"operation", string(stamp.TransactionType),
		"project", projectHash,
		"tx", stamp.TransactionHash,
		"code", out.code,
		"kind", string(out.kind),
	}
	if out.changed {
		s.logger.Info(out.message, args...)
		return
	}
	s.logger.Debug(out.message, args...)
}
