//go:build integration

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/saturnino-fabrica-de-software/iris/internal/database"
	"github.com/saturnino-fabrica-de-software/iris/internal/domain"
	"github.com/saturnino-fabrica-de-software/iris/internal/face"
	"github.com/saturnino-fabrica-de-software/iris/internal/fetcher"
	"github.com/saturnino-fabrica-de-software/iris/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/iris/internal/repository"
	"github.com/saturnino-fabrica-de-software/iris/internal/service"
)

var testDB *pgxpool.Pool

func TestMain(m *testing.M) {
	os.Exit(runWithDatabase(m))
}

func runWithDatabase(m *testing.M) int {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "iris_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Printf("Failed to start container: %v\n", err)
		return 1
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Printf("Failed to terminate container: %v\n", err)
		}
	}()

	host, _ := container.Host(ctx)
	port, _ := container.MappedPort(ctx, "5432")
	connStr := fmt.Sprintf("postgres://test:test@%s:%s/iris_test?sslmode=disable", host, port.Port())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := database.MigrateUp(connStr, logger); err != nil {
		fmt.Printf("Failed to run migrations: %v\n", err)
		return 1
	}

	testDB, err = database.NewPool(ctx, database.DefaultPoolConfig(connStr))
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		return 1
	}
	defer testDB.Close()

	return m.Run()
}

func gradientPNG(seed uint8) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x*4) + seed, G: uint8(y*4) ^ seed, B: seed, A: 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func solidPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// newImageServer serves the target face, a different face and a faceless image
func newImageServer(t *testing.T) *httptest.Server {
	t.Helper()

	images := map[string][]byte{
		"/target.png": gradientPNG(7),
		"/same.png":   gradientPNG(7),
		"/other.png":  gradientPNG(91),
		"/blank.png":  solidPNG(),
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := images[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func newPipelineRouter(t *testing.T) *Router {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	guard := face.NewEngineGuard(mock.New())
	t.Cleanup(func() { _ = guard.Close() })

	compareService := service.NewCompareService(
		fetcher.New(fetcher.DefaultConfig()),
		face.NewExtractor(guard),
		face.NewComparator(mock.New(), face.DefaultMatchThreshold),
		logger,
	).WithAudit(repository.NewComparisonAuditRepository(testDB), guard.EngineName())

	router := NewRouter(logger, &Dependencies{
		CompareService: compareService,
		EngineName:     guard.EngineName(),
		DB:             testDB,
	})
	router.Setup()
	t.Cleanup(func() { _ = router.Shutdown() })
	return router
}

func TestIntegration_CompareEndToEnd(t *testing.T) {
	images := newImageServer(t)
	router := newPipelineRouter(t)

	body := fmt.Sprintf(`{
		"target_url": "%[1]s/target.png",
		"people": [
			{"name": "Other", "image_url": "%[1]s/other.png"},
			{"name": "Same", "image_url": "%[1]s/same.png"},
			{"name": "Blank", "image_url": "%[1]s/blank.png"},
			{"name": "Missing", "image_url": "%[1]s/missing.png"}
		]
	}`, images.URL)

	req := httptest.NewRequest("POST", "/compare", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := router.App().Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result domain.ComparisonResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, []domain.MatchResult{{Name: "Same", Probability: 100}}, result.Matches)

	var (
		status                       string
		candidates, matches, skipped int
		topName                      *string
	)
	err = testDB.QueryRow(context.Background(), `
		SELECT target_status, candidates_count, matches_count, skipped_count, top_match_name
		FROM comparison_audits ORDER BY created_at DESC LIMIT 1
	`).Scan(&status, &candidates, &matches, &skipped, &topName)
	require.NoError(t, err)

	assert.Equal(t, "ok", status)
	assert.Equal(t, 4, candidates)
	assert.Equal(t, 1, matches)
	assert.Equal(t, 2, skipped)
	require.NotNil(t, topName)
	assert.Equal(t, "Same", *topName)
}

func TestIntegration_UnreachableTargetReturnsEmpty(t *testing.T) {
	images := newImageServer(t)
	router := newPipelineRouter(t)

	body := fmt.Sprintf(`{"target_url":"%[1]s/missing.png","people":[{"name":"Same","image_url":"%[1]s/same.png"}]}`, images.URL)

	req := httptest.NewRequest("POST", "/compare", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := router.App().Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"matches":[]}`, string(raw))
}

func TestIntegration_ReadyChecksDatabase(t *testing.T) {
	router := newPipelineRouter(t)

	resp, err := router.App().Test(httptest.NewRequest("GET", "/ready", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "up", body["database"])
	assert.Equal(t, "mock", body["engine"])
}

func TestIntegration_RetentionPrunesOldAudits(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewComparisonAuditRepository(testDB)

	_, err := testDB.Exec(ctx, `
		INSERT INTO comparison_audits (id, target_status, candidates_count, matches_count, skipped_count,
			threshold, engine, latency_ms, client_ip, created_at)
		VALUES (gen_random_uuid(), 'ok', 1, 0, 0, 0.363, 'mock', 5, '', NOW() - INTERVAL '40 days')
	`)
	require.NoError(t, err)

	deleted, err := repo.DeleteOlderThan(ctx, time.Now().Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, deleted, int64(1))
}
