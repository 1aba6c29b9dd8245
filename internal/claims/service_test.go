package claims

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anycompany/claims-processing/internal/models"
)

// memStore is an in-memory Store with the same latest/demote semantics as
// the DynamoDB implementation, plus failure injection for the error paths.
type memStore struct {
	versions map[string][]models.ClaimVersion

	getLatestErr  error // injected storage failure on GetLatest
	swapConflicts int   // number of SwapLatest calls that lose the race
}

func newMemStore() *memStore {
	return &memStore{versions: map[string][]models.ClaimVersion{}}
}

func (m *memStore) GetLatest(_ context.Context, claimID string) (models.ClaimVersion, error) {
	if m.getLatestErr != nil {
		return models.ClaimVersion{}, m.getLatestErr
	}
	for _, v := range m.versions[claimID] {
		if v.IsLatest {
			return v, nil
		}
	}
	return models.ClaimVersion{}, models.ErrNotFound
}

func (m *memStore) GetAllVersions(_ context.Context, claimID string) ([]models.ClaimVersion, error) {
	return m.versions[claimID], nil
}

func (m *memStore) Put(_ context.Context, v models.ClaimVersion) error {
	for _, e := range m.versions[v.ClaimID] {
		if e.Version == v.Version {
			return models.ErrLatestConflict
		}
	}
	m.versions[v.ClaimID] = append(m.versions[v.ClaimID], v)
	return nil
}

func (m *memStore) Demote(_ context.Context, claimID, version string) error {
	for i, v := range m.versions[claimID] {
		if v.Version == version {
			m.versions[claimID][i].IsLatest = false
		}
	}
	return nil
}

func (m *memStore) SwapLatest(ctx context.Context, next models.ClaimVersion, priorVersion string) error {
	if m.swapConflicts > 0 {
		m.swapConflicts--
		return models.ErrLatestConflict
	}
	prior := false
	for _, v := range m.versions[next.ClaimID] {
		if v.Version == priorVersion && v.IsLatest {
			prior = true
		}
	}
	if !prior {
		return models.ErrLatestConflict
	}
	if err := m.Demote(ctx, next.ClaimID, priorVersion); err != nil {
		return err
	}
	return m.Put(ctx, next)
}

func (m *memStore) latestCount(claimID string) (count int, latest models.ClaimVersion) {
	for _, v := range m.versions[claimID] {
		if v.IsLatest {
			count++
			latest = v
		}
	}
	return count, latest
}

func testClock() func() time.Time {
	t := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Millisecond)
		return t
	}
}

func newWriteService(store Store) *WriteService {
	svc := NewWriteService(store, zap.NewNop())
	svc.now = testClock()
	return svc
}

func TestWrite_NewClaim(t *testing.T) {
	store := newMemStore()
	svc := newWriteService(store)

	res, err := svc.Write(context.Background(), UpdateRequest{
		ClaimID:        "CLM-100",
		ClaimDetails:   map[string]any{"policy_number": "P1"},
		VersionSummary: map[string]any{"claim_status": "PENDING"},
	})
	require.NoError(t, err)

	assert.Equal(t, "CLM-100", res.ClaimID)
	assert.NotEmpty(t, res.Version)

	count, latest := store.latestCount("CLM-100")
	assert.Equal(t, 1, count)
	assert.Equal(t, res.Version, latest.Version)
	assert.Equal(t, "P1", latest.ClaimDetails["policy_number"])
}

func TestWrite_MonotonicLatest(t *testing.T) {
	store := newMemStore()
	svc := newWriteService(store)

	var lastVersion string
	for i := 0; i < 5; i++ {
		res, err := svc.Write(context.Background(), UpdateRequest{
			ClaimID:        "CLM-101",
			VersionSummary: map[string]any{"claim_status": "PENDING"},
		})
		require.NoError(t, err)

		count, latest := store.latestCount("CLM-101")
		require.Equal(t, 1, count, "exactly one latest after write %d", i+1)
		require.Equal(t, res.Version, latest.Version, "latest is the most recent write")
		require.Greater(t, res.Version, lastVersion, "version tokens are monotonic")
		lastVersion = res.Version
	}
	assert.Len(t, store.versions["CLM-101"], 5)
}

func TestWrite_MergesAgainstLatest(t *testing.T) {
	store := newMemStore()
	svc := newWriteService(store)

	_, err := svc.Write(context.Background(), UpdateRequest{
		ClaimID:      "CLM-102",
		ClaimDetails: map[string]any{"policy_number": "P1"},
		Documents:    models.Documents{CurrentUploadedDocuments: []string{"a.pdf"}},
	})
	require.NoError(t, err)

	res, err := svc.Write(context.Background(), UpdateRequest{
		ClaimID:      "CLM-102",
		ClaimDetails: map[string]any{"policy_number": "P2", "claim_type": "accident"},
		Documents:    models.Documents{CurrentUploadedDocuments: []string{"a.pdf", "b.png"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "P1", res.Data.ClaimDetails["policy_number"])
	assert.Equal(t, "accident", res.Data.ClaimDetails["claim_type"])
	assert.Equal(t, []string{"a.pdf", "b.png"}, res.Data.Documents.CurrentUploadedDocuments)
}

func TestWrite_StorageErrorAborts(t *testing.T) {
	store := newMemStore()
	store.getLatestErr = eris.New("dynamodb unavailable")
	svc := newWriteService(store)

	_, err := svc.Write(context.Background(), UpdateRequest{ClaimID: "CLM-103"})
	require.Error(t, err)

	// A transient outage must not be treated as "no existing claim":
	// nothing may be written.
	assert.Empty(t, store.versions["CLM-103"])
}

func TestWrite_ConflictRetriesThenSucceeds(t *testing.T) {
	store := newMemStore()
	svc := newWriteService(store)

	_, err := svc.Write(context.Background(), UpdateRequest{ClaimID: "CLM-104"})
	require.NoError(t, err)

	store.swapConflicts = 1
	res, err := svc.Write(context.Background(), UpdateRequest{ClaimID: "CLM-104"})
	require.NoError(t, err)

	count, latest := store.latestCount("CLM-104")
	assert.Equal(t, 1, count)
	assert.Equal(t, res.Version, latest.Version)
}

func TestWrite_ConflictExhaustsAttempts(t *testing.T) {
	store := newMemStore()
	svc := newWriteService(store)

	_, err := svc.Write(context.Background(), UpdateRequest{ClaimID: "CLM-105"})
	require.NoError(t, err)

	store.swapConflicts = maxWriteAttempts
	_, err = svc.Write(context.Background(), UpdateRequest{ClaimID: "CLM-105"})
	require.Error(t, err)

	count, _ := store.latestCount("CLM-105")
	assert.Equal(t, 1, count, "failed write leaves the prior latest intact")
}

func TestGetClaim_NotFound(t *testing.T) {
	svc := NewReadService(newMemStore(), zap.NewNop())

	res, err := svc.GetClaim(context.Background(), "no-such-id")
	require.NoError(t, err, "unknown claim is a result, not an error")
	assert.False(t, res.Exists)
	assert.Equal(t, "no-such-id", res.ClaimID)
}

func TestGetClaim_LatestAndHistory(t *testing.T) {
	store := newMemStore()
	write := newWriteService(store)

	_, err := write.Write(context.Background(), UpdateRequest{
		ClaimID:        "CLM-106",
		Documents:      models.Documents{CurrentUploadedDocuments: []string{"a.pdf"}},
		VersionSummary: map[string]any{"claim_status": "PENDING", "document_uploaded": "a.pdf"},
	})
	require.NoError(t, err)
	second, err := write.Write(context.Background(), UpdateRequest{
		ClaimID:        "CLM-106",
		Documents:      models.Documents{CurrentUploadedDocuments: []string{"b.png"}},
		VersionSummary: map[string]any{"claim_status": "APPROVED", "document_uploaded": "b.png"},
	})
	require.NoError(t, err)

	res, err := NewReadService(store, zap.NewNop()).GetClaim(context.Background(), "CLM-106")
	require.NoError(t, err)

	assert.True(t, res.Exists)
	assert.Equal(t, second.Version, res.Latest.Version)
	assert.Equal(t, models.StatusApproved, res.Latest.Status)

	// History holds only the demoted version, reduced to its summary view.
	require.Len(t, res.History, 1)
	assert.NotEqual(t, second.Version, res.History[0].Version)
	assert.Equal(t, "a.pdf", res.History[0].VersionSummary["document_uploaded"])
	assert.Equal(t, []string{"a.pdf"}, res.History[0].Documents)
}
