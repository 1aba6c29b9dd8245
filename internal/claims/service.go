package claims

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/anycompany/claims-processing/internal/models"
)

// Store is the versioned claim store the services run against. GetLatest
// returns models.ErrNotFound when the claim has never been written; any
// other error is a storage failure and must abort the operation instead of
// degrading to "no existing claim".
type Store interface {
	GetLatest(ctx context.Context, claimID string) (models.ClaimVersion, error)
	GetAllVersions(ctx context.Context, claimID string) ([]models.ClaimVersion, error)
	Put(ctx context.Context, v models.ClaimVersion) error
	Demote(ctx context.Context, claimID, version string) error
	SwapLatest(ctx context.Context, next models.ClaimVersion, priorVersion string) error
}

// maxWriteAttempts bounds re-merge retries after a concurrent latest swap.
const maxWriteAttempts = 3

// WriteService reconciles incoming partial updates against the latest
// stored version and installs the merged result as a new immutable version.
type WriteService struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

// NewWriteService returns a WriteService using the wall clock.
func NewWriteService(store Store, log *zap.Logger) *WriteService {
	if log == nil {
		log = zap.NewNop()
	}
	return &WriteService{store: store, log: log, now: time.Now}
}

// WriteResult describes the version installed by a write.
type WriteResult struct {
	ClaimID string
	Version string
	Data    models.ClaimData
}

// Write merges upd against the current latest version and persists the
// result. When a prior latest exists the demote+put pair runs atomically;
// losing a concurrent race re-reads and re-merges up to maxWriteAttempts.
func (s *WriteService) Write(ctx context.Context, upd UpdateRequest) (WriteResult, error) {
	var lastErr error
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		var existing *models.ClaimVersion
		prior, err := s.store.GetLatest(ctx, upd.ClaimID)
		switch {
		case errors.Is(err, models.ErrNotFound):
			// First version of this claim.
		case err != nil:
			return WriteResult{}, eris.Wrapf(err, "look up latest version of %s", upd.ClaimID)
		default:
			existing = &prior
		}

		token := nextVersionToken(s.now(), priorToken(existing))
		next := Merge(existing, upd, token)

		if existing == nil {
			err = s.store.Put(ctx, next)
		} else {
			err = s.store.SwapLatest(ctx, next, existing.Version)
		}
		if err == nil {
			s.log.Info("claim version installed",
				zap.String("claim_id", next.ClaimID),
				zap.String("version", next.Version),
				zap.String("status", string(next.Status)),
				zap.Bool("merged", existing != nil))
			return WriteResult{ClaimID: next.ClaimID, Version: next.Version, Data: next.Data()}, nil
		}
		if !errors.Is(err, models.ErrLatestConflict) {
			return WriteResult{}, eris.Wrapf(err, "persist version %s of %s", next.Version, next.ClaimID)
		}

		lastErr = err
		s.log.Warn("lost latest-version race, re-merging",
			zap.String("claim_id", upd.ClaimID),
			zap.Int("attempt", attempt))
	}
	return WriteResult{}, eris.Wrapf(lastErr, "write of %s kept losing latest-version races", upd.ClaimID)
}

func priorToken(existing *models.ClaimVersion) string {
	if existing == nil {
		return ""
	}
	return existing.Version
}

// ReadService serves latest-plus-history claim lookups.
type ReadService struct {
	store Store
	log   *zap.Logger
}

// NewReadService returns a ReadService.
func NewReadService(store Store, log *zap.Logger) *ReadService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReadService{store: store, log: log}
}

// ReadResult is the outcome of a claim lookup. An unknown claim is a
// result with Exists false, not an error.
type ReadResult struct {
	Exists  bool
	ClaimID string
	Latest  models.ClaimVersion
	History []models.HistoryEntry
}

// GetClaim fetches the latest version and the reduced history of every
// non-latest version. History order is storage order; entries carry
// timestamp-derived version tokens so callers can sort.
func (s *ReadService) GetClaim(ctx context.Context, claimID string) (ReadResult, error) {
	latest, err := s.store.GetLatest(ctx, claimID)
	if errors.Is(err, models.ErrNotFound) {
		return ReadResult{ClaimID: claimID}, nil
	}
	if err != nil {
		return ReadResult{}, eris.Wrapf(err, "look up latest version of %s", claimID)
	}

	versions, err := s.store.GetAllVersions(ctx, claimID)
	if err != nil {
		return ReadResult{}, eris.Wrapf(err, "fetch version history of %s", claimID)
	}

	history := make([]models.HistoryEntry, 0, len(versions))
	for _, v := range versions {
		if v.Version == latest.Version {
			continue
		}
		history = append(history, models.HistoryEntry{
			Version:        v.Version,
			VersionSummary: v.VersionSummary,
			Documents:      v.Documents.CurrentUploadedDocuments,
		})
	}

	s.log.Info("claim read",
		zap.String("claim_id", claimID),
		zap.Int("versions", len(versions)))
	return ReadResult{Exists: true, ClaimID: claimID, Latest: latest, History: history}, nil
}
