package sqlite_test

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/persistence"
	"github.com/dukex/docflow/pkg/persistence/sqlite"
	"github.com/dukex/docflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPersistence_FileSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	databaseURL := sqlite.Scheme + filepath.Join(t.TempDir(), "docflow.db")

	store, err := sqlite.NewPersistence(ctx, slog.Default(), databaseURL)
	require.NoError(t, err)

	document := testutil.CreateTestDocument(testutil.WithRecipient("alice", false, nil))

	uow, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Documents().Add(ctx, document))
	require.NoError(t, uow.Commit())
	require.NoError(t, store.Close(ctx))

	// migrations are not re-applied on an existing file
	store, err = sqlite.NewPersistence(ctx, slog.Default(), databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close(ctx) })

	view, err := store.Documents().View(ctx, document.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, document.SystemNumber, view.SystemNumber)
	assert.Len(t, view.Recipients(), 1)
}

func TestNewPersistence_ForeignKeysEnforced(t *testing.T) {
	ctx := context.Background()

	store, err := sqlite.NewPersistence(ctx, slog.Default(), "sqlite://:memory:")
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close(ctx) })

	uow, err := store.Begin(ctx)
	require.NoError(t, err)

	defer func() { _ = uow.Rollback() }()

	orphan := testutil.CreateTestWorkflow("missing-document", testutil.CreateTestStep(models.StepTypeSigning, 1, "bob"))
	assert.Error(t, uow.Workflows().Add(ctx, orphan))
}

func TestNewPersistence_DuplicateSystemNumber(t *testing.T) {
	ctx := context.Background()

	store, err := sqlite.NewPersistence(ctx, slog.Default(), "sqlite://:memory:")
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close(ctx) })

	first := testutil.CreateTestDocument()
	second := testutil.CreateTestDocument()
	second.SystemNumber = first.SystemNumber

	uow, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Documents().Add(ctx, first))
	require.NoError(t, uow.Commit())

	uow, err = store.Begin(ctx)
	require.NoError(t, err)

	defer func() { _ = uow.Rollback() }()

	err = uow.Documents().Add(ctx, second)
	require.Error(t, err)
	assert.True(t, persistence.IsDuplicateSystemNumber(err))

	// other constraint failures keep their own error
	third := testutil.CreateTestDocument()
	third.PaperCount = 0

	err = uow.Documents().Add(ctx, third)
	require.Error(t, err)
	assert.False(t, persistence.IsDuplicateSystemNumber(err))
}

func TestNewPersistence_MissingPath(t *testing.T) {
	_, err := sqlite.NewPersistence(context.Background(), slog.Default(), sqlite.Scheme)
	assert.Error(t, err)
}
