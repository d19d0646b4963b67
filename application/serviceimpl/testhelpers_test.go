package serviceimpl

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/models"
	"screw-inspection/domain/repositories"
	"screw-inspection/domain/services"
	"screw-inspection/infrastructure/postgres"
	"screw-inspection/infrastructure/storage"
)

const testMaxArtifactBytes = 1 << 20

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), postgres.GormConfig(gormlogger.Default.LogMode(gormlogger.Silent)))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, postgres.Migrate(db))
	return db
}

type fakeDetector struct {
	engineID uuid.UUID
	dets     []services.RawDetection
	err      error
	closed   atomic.Bool
}

func (d *fakeDetector) Detect(context.Context, []byte, services.DetectParams) ([]services.RawDetection, error) {
	return d.dets, d.err
}

func (d *fakeDetector) Close(context.Context) error {
	d.closed.Store(true)
	return nil
}

type fakeLoader struct {
	mu     sync.Mutex
	calls  int
	fail   map[string]error
	delay  time.Duration
	onLoad func()
	loaded []*fakeDetector
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{fail: map[string]error{}}
}

func (l *fakeLoader) Load(_ context.Context, engine *models.InferenceEngine) (services.Detector, error) {
	l.mu.Lock()
	l.calls++
	err := l.fail[engine.ArtifactName]
	delay, onLoad := l.delay, l.onLoad
	l.onLoad = nil
	l.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if onLoad != nil {
		onLoad()
	}
	if err != nil {
		return nil, err
	}

	d := &fakeDetector{engineID: engine.ID}
	l.mu.Lock()
	l.loaded = append(l.loaded, d)
	l.mu.Unlock()
	return d, nil
}

func (l *fakeLoader) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

type fakeInvalidator struct {
	mu     sync.Mutex
	topics []services.InvalidationTopic
}

func (f *fakeInvalidator) Publish(_ context.Context, topic services.InvalidationTopic) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	return nil
}

func (f *fakeInvalidator) Topics() []services.InvalidationTopic {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]services.InvalidationTopic(nil), f.topics...)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []dto.InspectionEvent
}

func (f *fakePublisher) PublishInspection(_ context.Context, event dto.InspectionEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

type testEnv struct {
	db       *gorm.DB
	tx       repositories.Transactor
	users    repositories.UserRepository
	engines  repositories.InferenceEngineRepository
	acModels repositories.ACModelRepository
	settings repositories.SettingsRepository
	records  repositories.InspectionRepository
	audits   repositories.AuditLogRepository
	storage  *storage.LocalStorage

	loader      *fakeLoader
	invalidator *fakeInvalidator
	publisher   *fakePublisher
	handle      *DetectorHandleImpl
	audit       services.AuditService
	engineSvc   *EngineServiceImpl
	resolver    *ConfigResolverImpl
	acModelSvc  services.ACModelService
	settingsSvc services.SettingsService
	inspections *InspectionServiceImpl
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	artifacts, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	env := &testEnv{
		db:          db,
		tx:          postgres.NewTransactionManager(db),
		users:       postgres.NewUserRepository(db),
		engines:     postgres.NewInferenceEngineRepository(db),
		acModels:    postgres.NewACModelRepository(db),
		settings:    postgres.NewSettingsRepository(db),
		records:     postgres.NewInspectionRepository(db),
		audits:      postgres.NewAuditLogRepository(db),
		storage:     artifacts,
		loader:      newFakeLoader(),
		invalidator: &fakeInvalidator{},
		publisher:   &fakePublisher{},
	}
	env.audit = NewAuditService(env.audits)
	env.handle = NewDetectorHandle(env.engines, env.loader, nil, time.Minute)
	env.engineSvc = NewEngineService(env.engines, env.tx, env.storage, env.audit, env.handle, env.invalidator, testMaxArtifactBytes)
	env.resolver = NewConfigResolver(env.settings, env.acModels, time.Minute)
	env.acModelSvc = NewACModelService(env.acModels, env.engines, env.tx, env.audit, env.resolver, env.invalidator)
	env.settingsSvc = NewSettingsService(env.settings, env.acModels, env.tx, env.audit, env.resolver, env.invalidator)
	env.inspections = NewInspectionService(env.records, env.acModels, env.engines, env.users, nil, env.publisher)
	return env
}

func (env *testEnv) seedUser(t *testing.T, username, team string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@plant.local",
		PasswordHash: "x",
		Team:         team,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, env.users.Create(context.Background(), user))
	return user
}

func actorFor(u *models.User) services.Actor {
	return services.Actor{ID: u.ID, Username: u.Username, Role: u.Role, Team: u.Team, IP: "127.0.0.1"}
}

func (env *testEnv) register(t *testing.T, actor services.Actor, kind, version string) *models.InferenceEngine {
	t.Helper()
	engine, err := env.engineSvc.Register(context.Background(), actor, services.RegisterEngineInput{
		Kind:     kind,
		Version:  version,
		FileName: "weights" + mustSuffix(t, kind),
		Size:     -1,
		Content:  bytes.NewReader([]byte("weights-" + version)),
	})
	require.NoError(t, err)
	return engine
}

func mustSuffix(t *testing.T, kind string) string {
	t.Helper()
	k, ok := models.ParseEngineKind(kind)
	require.True(t, ok)
	return k.ArtifactSuffix()
}

func (env *testEnv) createModel(t *testing.T, actor services.Actor, name string, engine *models.InferenceEngine) *models.ACModel {
	t.Helper()
	model, err := env.acModelSvc.Create(context.Background(), actor, &dto.CreateACModelRequest{
		Name:     name,
		EngineID: engine.ID.String(),
	})
	require.NoError(t, err)
	return model
}

func countActive(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.InferenceEngine{}).Where("active = ?", true).Count(&n).Error)
	return n
}
