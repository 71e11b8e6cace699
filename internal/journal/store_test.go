package journal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/udisondev/sarsim/internal/config"
	"github.com/udisondev/sarsim/internal/model"
	"github.com/udisondev/sarsim/internal/testutil"
	"github.com/udisondev/sarsim/internal/world"
)

var testStart = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// StoreSuite: общие проверки для всех backend'ов журнала.
type StoreSuite struct {
	suite.Suite
	ctx      context.Context
	newStore func(t *testing.T) Store
	store    Store
}

// SetupTest создаёт свежий store перед каждым тестом.
func (s *StoreSuite) SetupTest() {
	s.ctx = testutil.ContextWithTimeout(s.T(), 30*time.Second)
	s.store = s.newStore(s.T())
	s.Require().NoError(s.store.Init(s.ctx))
	s.Require().NoError(s.store.Init(s.ctx), "Init must be idempotent")
}

func (s *StoreSuite) TearDownTest() {
	if s.store != nil {
		s.NoError(s.store.Close())
	}
}

func (s *StoreSuite) startRun() Run {
	cfg := config.Default()
	cfg.Simulation.Seed = 99
	run := NewRun(cfg, testStart)
	s.Require().NoError(s.store.StartRun(s.ctx, run))
	return run
}

func (s *StoreSuite) TestAppendAndRead() {
	run := s.startRun()

	batch := []Record{
		RecordFromEvent(1, world.Event{
			Tick:     12,
			At:       testStart.Add(time.Second),
			Kind:     world.EventVictimDiscovered,
			AgentID:  "uav1",
			VictimID: "victim3",
			Position: model.NewPosition(512.25, 400.5),
			Detail:   "distress=4",
		}),
		RecordFromEvent(2, world.Event{
			Tick:     40,
			At:       testStart.Add(2 * time.Second),
			Kind:     world.EventVictimRescued,
			AgentID:  "boat2",
			VictimID: "victim3",
			Position: model.NewPosition(513, 401),
		}),
	}
	s.Require().NoError(s.store.Append(s.ctx, run.ID, batch[1:]))
	s.Require().NoError(s.store.Append(s.ctx, run.ID, batch[:1]))
	s.Require().NoError(s.store.Append(s.ctx, run.ID, nil))

	got, err := s.store.Records(s.ctx, run.ID)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(batch[0], got[0])
	s.Equal(batch[1], got[1])
}

func (s *StoreSuite) TestRunsAreIsolated() {
	a := s.startRun()
	b := s.startRun()

	s.Require().NoError(s.store.Append(s.ctx, a.ID, []Record{{Seq: 1, At: testStart, Kind: world.EventCommand, AgentID: "uav1"}}))

	got, err := s.store.Records(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *StoreSuite) TestAppendUnknownRun() {
	err := s.store.Append(s.ctx, uuid.New(), []Record{{Seq: 1, At: testStart, Kind: world.EventCommand}})
	s.ErrorIs(err, ErrUnknownRun)
}

func (s *StoreSuite) TestStartRunTwice() {
	run := s.startRun()
	s.Error(s.store.StartRun(s.ctx, run))
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &StoreSuite{
		newStore: func(*testing.T) Store { return NewMemoryStore() },
	})
}

func TestSQLiteStore(t *testing.T) {
	suite.Run(t, &StoreSuite{
		newStore: func(t *testing.T) Store {
			return NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
		},
	})
}

func TestSQLiteStore_RequiresPath(t *testing.T) {
	store := NewSQLiteStore("")
	if err := store.Init(context.Background()); err == nil {
		t.Fatal("Init() with empty path should fail")
	}
	if _, err := store.Records(context.Background(), uuid.New()); err == nil {
		t.Error("Records() on uninitialized store should fail")
	}
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("postgres journal needs docker")
	}

	// Если DB_ADDR задан вручную, используем его (для CI/CD)
	dsn := os.Getenv("DB_ADDR")
	if dsn == "" {
		dsn = startPostgres(t)
	}

	var schemaN int
	suite.Run(t, &StoreSuite{
		newStore: func(t *testing.T) Store {
			schemaN++
			return NewPostgresStore(isolatedSchema(t, dsn, schemaN))
		},
	})
}

// startPostgres запускает PostgreSQL testcontainer и возвращает DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("getting container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("getting container port: %v", err)
	}
	return fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())
}
