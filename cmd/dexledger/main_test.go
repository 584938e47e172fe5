package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alejandrodnm/dexledger/internal/adapters/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPool = "0x197d7010147df7b99e9025c724f13723b29313f8"

const snapshot = `{
  "data": {
    "EVM": {
      "DEXTradeByTokens": [
        {
          "Block": {"Number": "101", "Time": "2024-01-01T00:01:00Z"},
          "Trade": {
            "Amount": "4", "Buyer": "` + testPool + `", "Seller": "0xa",
            "Dex": {"Pair": {"SmartContract": "` + testPool + `"}},
            "Side": {"Amount": "12"}
          },
          "Transaction": {"Hash": "0x02", "From": "0xa"}
        },
        {
          "Block": {"Number": "100", "Time": "2024-01-01T00:00:00Z"},
          "Trade": {
            "Amount": "10", "Buyer": "0xa", "Seller": "` + testPool + `",
            "Dex": {"Pair": {"SmartContract": "` + testPool + `"}},
            "Side": {"Amount": "10"}
          },
          "Transaction": {"Hash": "0x01", "From": "0xa"}
        }
      ]
    }
  }
}`

// writeConfig crea un config.yaml con cache, export y DB en dir.
func writeConfig(t *testing.T, dir, endpoint string) string {
	t.Helper()
	yaml := `
source:
  token: "0xa41d2f8ee4f47d3b860a149765a7df8c3287b7f0"
  pool: "` + testPool + `"
  endpoint: "` + endpoint + `"
  cache_dir: "` + filepath.Join(dir, "cache") + `"
export:
  dir: "` + filepath.Join(dir, "out") + `"
  formats: [json]
storage:
  dsn: "` + filepath.Join(dir, "runs.db") + `"
log:
  level: error
`
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func storedRuns(t *testing.T, dir string) int {
	t.Helper()
	db, err := storage.NewSQLiteStorage(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	defer db.Close()

	runs, err := db.GetRuns(context.Background())
	require.NoError(t, err)
	return len(runs)
}

func TestRun_FromSnapshotPersistsRun(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "http://127.0.0.1:1/unused")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "cache"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cache", testPool+".json"), []byte(snapshot), 0o644))

	assert.Equal(t, 0, run([]string{"-config", cfgPath, "-quiet"}))

	_, err := os.Stat(filepath.Join(dir, "out", "analysis.json"))
	assert.NoError(t, err)
	assert.Equal(t, 1, storedRuns(t, dir))

	assert.Equal(t, 0, run([]string{"-config", cfgPath, "-runs"}))
}

func TestRun_FailedRunReturnsExitCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, srv.URL)

	assert.Equal(t, 1, run([]string{"-config", cfgPath, "-quiet"}))

	// la DB se cerró limpia y no tiene runs
	assert.Equal(t, 0, storedRuns(t, dir))
}

func TestRun_ListRunsWithoutStorage(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "http://127.0.0.1:1/unused")

	assert.Equal(t, 1, run([]string{"-config", cfgPath, "-runs", "-no-store"}))
}

func TestRun_MissingConfig(t *testing.T) {
	assert.Equal(t, 1, run([]string{"-config", filepath.Join(t.TempDir(), "nope.yaml")}))
}

func TestRun_BadFlag(t *testing.T) {
	assert.Equal(t, 2, run([]string{"-nope"}))
}
