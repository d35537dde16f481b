package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dukex/docflow/pkg/mocks"
	"github.com/dukex/docflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccessSweeper_Sweep(t *testing.T) {
	store := newTestStore(t)

	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Hour)
	valid := now.Add(time.Hour)

	document := testutil.CreateTestDocument(
		testutil.WithAccess("expired", &expired),
		testutil.WithAccess("valid", &valid),
		testutil.WithAccess("forever", nil),
	)

	uow, err := store.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, uow.Documents().Add(context.Background(), document))
	require.NoError(t, uow.Commit())

	sweeper := NewAccessSweeper(store, testLogger())
	sweeper.now = func() time.Time { return now }

	deleted, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	deleted, err = sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)

	view, err := store.Documents().View(context.Background(), document.ID, document.CreatorID)
	require.NoError(t, err)

	users := make([]string, 0, len(view.Accesses))
	for _, access := range view.Accesses {
		users = append(users, access.UserID)
	}

	assert.ElementsMatch(t, []string{"valid", "forever"}, users)
}

func TestAccessSweeper_SweepFailure(t *testing.T) {
	t.Parallel()

	accesses := &mocks.MockAccessRepository{}
	accesses.On("DeleteExpired", mock.Anything, mock.Anything).Return(int64(0), errors.New("database is locked"))

	store := &mocks.MockPersistence{}
	store.On("Accesses").Return(accesses)

	_, err := NewAccessSweeper(store, testLogger()).Sweep(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
}
