package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"survey-match-service/internal/app"
	"survey-match-service/internal/domain"
	"survey-match-service/internal/infra/memory"
	pgstore "survey-match-service/internal/infra/postgres"
	pgmigrations "survey-match-service/internal/infra/postgres/migrations"
	redisstore "survey-match-service/internal/infra/redis"
	"survey-match-service/internal/logging"
)

func TestSurveyEndToEndPostgres(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	docs := pgstore.NewDocuments(pool)
	bank := pgstore.NewQuestionBank(docs)
	if n, err := bank.ImportQuestions(ctx, sampleDataset()); err != nil || n != 2 {
		t.Fatalf("import questions: n=%d err=%v", n, err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	questions := redisstore.NewQuestionCache(redisClient, bank, 5*time.Minute)
	users := app.NewUserStore(pgstore.NewUserRepository(docs))
	sessions := redisstore.NewSessionStore(redisClient, 5*time.Minute)
	service := app.NewSurveyService(sessions, questions, users, logging.Nop())

	complete(t, service, "tok-a", "alice", 0, 1)
	complete(t, service, "tok-b", "bob", 0, 0)
	complete(t, service, "tok-c", "cara", 1, 1)

	matches, err := service.Matches(ctx, "alice")
	if err != nil {
		t.Fatalf("matches: %v", err)
	}
	want := []domain.Match{{Username: "bob", Score: 1}, {Username: "cara", Score: 1}}
	if fmt.Sprint(matches.Entries) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, matches.Entries)
	}

	// document order survives the json column
	dir, err := users.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load users: %v", err)
	}
	var names []string
	for _, e := range dir.Entries() {
		names = append(names, e.Username)
	}
	if strings.Join(names, ",") != "alice,bob,cara" {
		t.Fatalf("unexpected order %v", names)
	}
}

func TestRedisUserStoreEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	questions, err := domain.DecodeQuestions("sample", sampleDataset())
	if err != nil {
		t.Fatalf("decode sample: %v", err)
	}
	users := app.NewUserStore(redisstore.NewUserRepository(redisClient, ""), app.SerializeCommits(true))
	service := app.NewSurveyService(memory.NewSessionStore(), memory.NewStaticQuestionBank(questions), users, logging.Nop())

	complete(t, service, "tok-1", "dan", 1, 0)
	complete(t, service, "tok-2", "eve", 1, 1)

	matches, err := service.Matches(ctx, "eve")
	if err != nil {
		t.Fatalf("matches: %v", err)
	}
	if len(matches.Entries) != 1 || matches.Entries[0].Username != "dan" || matches.Entries[0].Score != 1 {
		t.Fatalf("unexpected matches %+v", matches.Entries)
	}
}

func complete(t *testing.T, service *app.SurveyService, token, username string, answers ...int) {
	t.Helper()
	ctx := context.Background()
	if _, err := service.Begin(ctx, token, username, false); err != nil {
		t.Fatalf("begin %s: %v", username, err)
	}
	var view domain.SurveyView
	var err error
	for _, a := range answers {
		if view, err = service.Next(ctx, token, a, false); err != nil {
			t.Fatalf("next %s: %v", username, err)
		}
	}
	if view.Status != domain.StatusCompleted {
		t.Fatalf("expected %s to complete, got %s", username, view.Status)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "survey", "POSTGRES_PASSWORD": "surveypass", "POSTGRES_DB": "surveydb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://survey:surveypass@%s:%s/surveydb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func sampleDataset() []byte {
	return []byte(`{"questions":[
		{"id":"q1","question":"Cats or dogs?","choices":["Cats","Dogs"]},
		{"id":"q2","question":"Tea or coffee?","choices":["Tea","Coffee"]}
	]}`)
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
