package bitquery

// source.go: carga un snapshot en disco si existe; si no, consulta Bitquery y
// guarda la respuesta cruda como snapshot para las siguientes ejecuciones.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alejandrodnm/dexledger/internal/domain"
)

// Source implementa ports.TradeSource sobre Bitquery con snapshot local.
type Source struct {
	client   *Client
	vars     QueryVariables
	cacheDir string
	refresh  bool
}

// NewSource crea un Source. Con refresh=true el snapshot existente se ignora y se reescribe.
func NewSource(client *Client, vars QueryVariables, cacheDir string, refresh bool) *Source {
	return &Source{client: client, vars: vars, cacheDir: cacheDir, refresh: refresh}
}

// SnapshotPath devuelve la ruta del snapshot del pool.
func (s *Source) SnapshotPath() string {
	return filepath.Join(s.cacheDir, s.vars.Pool+".json")
}

// LoadTrades devuelve los trades del pool en orden cronológico.
func (s *Source) LoadTrades(ctx context.Context) ([]domain.TradeRecord, error) {
	resp, err := s.loadOrFetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("bitquery.LoadTrades: %w", err)
	}
	records, err := toRecords(resp, s.vars.Network)
	if err != nil {
		return nil, fmt.Errorf("bitquery.LoadTrades: %w", err)
	}
	return records, nil
}

func (s *Source) loadOrFetch(ctx context.Context) (*response, error) {
	path := s.SnapshotPath()

	if !s.refresh {
		resp, err := readSnapshot(path)
		if err == nil {
			slog.Info("loading trades snapshot", "path", path)
			return resp, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	slog.Info("fetching trades", "network", s.vars.Network, "pool", s.vars.Pool, "limit", s.vars.Limit)
	resp, err := s.client.fetchTrades(ctx, s.vars)
	if err != nil {
		return nil, err
	}
	if err := writeSnapshot(path, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func readSnapshot(path string) (*response, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var resp response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode snapshot %q: %w", path, err)
	}
	return &resp, nil
}

func writeSnapshot(path string, resp *response) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %q: %w", path, err)
	}
	return nil
}
