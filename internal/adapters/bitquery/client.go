package bitquery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultEndpoint = "https://streaming.bitquery.io/graphql"

	// Bitquery limita por plan; 1 req/s con burst 2 queda holgado para una query por ejecución.
	requestsPerSec = 1
	requestBurst   = 2

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client es el HTTP client GraphQL de Bitquery con rate limiting y retries.
type Client struct {
	http     *http.Client
	endpoint string
	apiKey   string
	limiter  *rate.Limiter
}

// NewClient crea un Client. Si endpoint está vacío usa el de producción.
func NewClient(endpoint, apiKey string) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		http:     &http.Client{Timeout: 60 * time.Second},
		endpoint: endpoint,
		apiKey:   apiKey,
		limiter:  rate.NewLimiter(requestsPerSec, requestBurst),
	}
}

// fetchTrades ejecuta la query de trades y devuelve la respuesta cruda.
func (c *Client) fetchTrades(ctx context.Context, vars QueryVariables) (*response, error) {
	var resp response
	body := graphQLRequest{Query: tradesQuery, Variables: vars}
	if err := c.post(ctx, body, &resp); err != nil {
		return nil, fmt.Errorf("bitquery.fetchTrades: %w", err)
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("bitquery.fetchTrades: graphql: %s", strings.Join(msgs, "; "))
	}
	return &resp, nil
}

// post hace un POST JSON con rate limiting y retries.
func (c *Client) post(ctx context.Context, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	return c.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("X-API-KEY", c.apiKey)
		}
		return c.http.Do(req)
	}, out)
}

// doWithRetry ejecuta la función con backoff exponencial.
func (c *Client) doWithRetry(ctx context.Context, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by API", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial y jitter, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	select {
	case <-time.After(backoff(attempt)):
	case <-ctx.Done():
	}
}

// backoff devuelve 2^attempt × baseRetryWait más un jitter en [0, mitad).
func backoff(attempt int) time.Duration {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	return wait + rand.N(wait/2)
}
