package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/FarmState_Go/internal/domain"
)

func openTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "session.db")
	s, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func sampleSession() domain.PersistedSession {
	at := time.Date(2024, time.July, 1, 10, 0, 0, 0, time.UTC)
	return domain.PersistedSession{
		FarmID:    "farm-1",
		SessionID: "session-1",
		Version:   7,
		State: domain.GameState{
			Balance:   decimal.RequireFromString("12.5"),
			Inventory: domain.Inventory{"Apple Seed": decimal.NewFromInt(3)},
			FruitPatches: map[int]domain.FruitPatch{
				0: {Width: 2, Height: 2, Fruit: &domain.FruitPlanting{Name: "Apple", Amount: decimal.RequireFromString("1.25"), PlantedAt: at.UnixMilli(), HarvestsLeft: 3}},
			},
			Bumpkin: &domain.Bumpkin{Experience: 10},
		},
		Pending: []domain.Action{
			domain.MustAction(domain.ActionFruitHarvested, at, domain.HarvestFruitAction{Index: "0"}),
		},
		SavedAt: at,
	}
}

func TestSQLiteStore_LoadMissing(t *testing.T) {
	s, _ := openTestStore(t)

	_, err := s.Load(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrNoPersistedSession)
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	want := sampleSession()

	require.NoError(t, s.Save(ctx, want))
	got, err := s.Load(ctx, want.FarmID)
	require.NoError(t, err)

	assert.Equal(t, want.SessionID, got.SessionID)
	assert.Equal(t, want.Version, got.Version)
	assert.True(t, want.State.Balance.Equal(got.State.Balance))
	require.Len(t, got.Pending, 1)
	assert.Equal(t, want.Pending[0].ID, got.Pending[0].ID)
	assert.True(t, want.Pending[0].CreatedAt.Equal(got.Pending[0].CreatedAt))
	assert.Equal(t, "Apple", got.State.FruitPatches[0].Fruit.Name)
}

func TestSQLiteStore_SaveReplaces(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	first := sampleSession()
	require.NoError(t, s.Save(ctx, first))

	second := sampleSession()
	second.Version = 8
	second.Pending = nil
	require.NoError(t, s.Save(ctx, second))

	got, err := s.Load(ctx, first.FarmID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), got.Version)
	assert.Empty(t, got.Pending)
}

func TestSQLiteStore_Delete(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleSession()))
	require.NoError(t, s.Delete(ctx, "farm-1"))
	require.NoError(t, s.Delete(ctx, "farm-1"))

	_, err := s.Load(ctx, "farm-1")
	assert.ErrorIs(t, err, domain.ErrNoPersistedSession)
}

func TestSQLiteStore_CorruptBlob(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (farm_id, session_id, version, pending, format, blob, saved_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"farm-1", "s", 1, 0, FormatV1, []byte("not zstd"), "2024-01-01T00:00:00Z")
	require.NoError(t, err)

	_, err = s.Load(ctx, "farm-1")
	assert.ErrorIs(t, err, domain.ErrCorruptSession)
}

func TestSQLiteStore_UnknownFormat(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	blob, err := s.codec.encode(sampleSession())
	require.NoError(t, err)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (farm_id, session_id, version, pending, format, blob, saved_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"farm-1", "s", 1, 0, FormatV1+1, blob, "2024-01-01T00:00:00Z")
	require.NoError(t, err)

	_, err = s.Load(ctx, "farm-1")
	assert.ErrorIs(t, err, domain.ErrCorruptSession)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	s, path := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sampleSession()))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx, "farm-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Version)
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), "")
	assert.Error(t, err)
}
