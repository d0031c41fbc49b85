package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/livepulse/ingest"
)

func parsed(t *testing.T, name, csv string) ingest.FileResult {
	t.Helper()
	res := ingest.ParseBytes(name, []byte(csv), func() time.Time { return fixedNow })
	require.NoError(t, res.Err)
	return res
}

func TestStoreSnapshotsAreIsolated(t *testing.T) {
	s := NewStore()
	b := s.Create([]ingest.FileResult{parsed(t, "revenue.csv", revenueCSV)})

	b.Files[0].Name = "changed.csv"
	b.Files = append(b.Files, ingest.FileResult{ID: "extra"})

	got, err := s.Get(b.ID)
	require.NoError(t, err)
	require.Len(t, got.Files, 1)
	assert.Equal(t, "revenue.csv", got.Files[0].Name)
}

func TestStoreRemoveFileRebuildsDataset(t *testing.T) {
	s := NewStore()
	eng := parsed(t, "engagement.csv", engagementCSV)
	rev := parsed(t, "revenue.csv", revenueCSV)
	b := s.Create([]ingest.FileResult{eng, rev})
	require.Len(t, b.Dataset.Revenue, 2)

	next, err := s.RemoveFile(b.ID, rev.ID)
	require.NoError(t, err)
	assert.Empty(t, next.Dataset.Revenue)
	assert.Len(t, next.Dataset.Engagement, 2)
	assert.Equal(t, b.CreatedAt, next.CreatedAt)

	assert.Len(t, b.Dataset.Revenue, 2, "earlier snapshots keep their dataset")

	_, err = s.RemoveFile(b.ID, rev.ID)
	assert.ErrorIs(t, err, ErrFileNotFound)
	_, err = s.RemoveFile("missing", rev.ID)
	assert.ErrorIs(t, err, ErrBatchNotFound)
}

func TestStoreListNewestFirst(t *testing.T) {
	s := NewStore()
	clock := fixedNow
	s.now = func() time.Time { return clock }

	first := s.Create(nil)
	clock = clock.Add(time.Minute)
	second := s.Create(nil)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestStoreDelete(t *testing.T) {
	s := NewStore()
	b := s.Create(nil)

	require.NoError(t, s.Delete(b.ID))
	_, err := s.Get(b.ID)
	assert.ErrorIs(t, err, ErrBatchNotFound)
	assert.ErrorIs(t, s.Delete(b.ID), ErrBatchNotFound)
}
