package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/dukex/docflow/pkg/directory"
	"github.com/dukex/docflow/pkg/eventbus"
	"github.com/dukex/docflow/pkg/events"
	"github.com/dukex/docflow/pkg/mocks"
	"github.com/dukex/docflow/pkg/otelhelper"
	"github.com/dukex/docflow/pkg/persistence/sqlbase"
	"github.com/dukex/docflow/pkg/persistence/sqlite"
	"github.com/dukex/docflow/pkg/workflow"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const registrarRole = "ROLE_VSM_DOCFLOW_REGISTRATOR"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestStore(t *testing.T) *sqlbase.Store {
	t.Helper()

	store, err := sqlite.NewPersistence(context.Background(), testLogger(), "sqlite://:memory:")
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close(context.Background()) })

	return store
}

func newTestBus() *mocks.MockEventBus {
	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	return bus
}

func publishedTypes(bus *mocks.MockEventBus) []events.EventType {
	var types []events.EventType

	for _, call := range bus.Calls {
		if call.Method != "Publish" {
			continue
		}

		types = append(types, call.Arguments.Get(2).(eventbus.Event).GetType())
	}

	return types
}

type testServices struct {
	store        *sqlbase.Store
	directory    *mocks.MockDirectory
	bus          *mocks.MockEventBus
	documents    *Document
	workflows    *Workflow
	registration *Registration
	history      *History
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	store := newTestStore(t)
	dir := &mocks.MockDirectory{}
	bus := newTestBus()
	logger := testLogger()
	tracer := otelhelper.NoopTracer()
	activator := workflow.NewActivator(logger)

	return &testServices{
		store:        store,
		directory:    dir,
		bus:          bus,
		documents:    NewDocument(store, dir, workflow.NewBuilder(dir, registrarRole, logger), activator, bus, tracer, logger),
		workflows:    NewWorkflow(store, activator, bus, tracer, logger),
		registration: NewRegistration(store, bus, registrarRole, tracer, logger),
		history:      NewHistory(store, tracer, logger),
	}
}

func user(id string, roles ...string) *directory.User {
	return &directory.User{ID: id, Username: id, Roles: roles}
}

// allowPartyLookups answers every party lookup with nobody.
func (s *testServices) allowPartyLookups() {
	s.directory.On("Users", mock.Anything, mock.Anything).Return(map[string]*directory.User{}, nil)
	s.directory.On("Organizations", mock.Anything, mock.Anything).Return(map[string]*directory.Organization{}, nil)
	s.directory.On("ExternalUsers", mock.Anything, mock.Anything).Return(map[string]*directory.ExternalUser{}, nil)
}
