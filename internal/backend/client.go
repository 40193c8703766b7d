// Package backend is the client for the hosted durable store: per-user ledger
// documents, the shared archetype collection, the pack-purchase audit log and
// the archetype generator function. Every call is bounded by the caller's
// context; absence (404) is reported as a nil record, not an error.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/hoopcrest/hoopcrest/internal/config"
	"github.com/hoopcrest/hoopcrest/internal/domain"
)

type Client struct {
	endpoint  string
	projectID string
	apiKey    string
	client    *fasthttp.Client
	logger    zerolog.Logger
}

func NewClient(cfg *config.Config, logger zerolog.Logger) *Client {
	return &Client{
		endpoint:  cfg.BackendEndpoint,
		projectID: cfg.BackendProjectID,
		apiKey:    cfg.BackendAPIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

// GetLedger fetches a user's ledger document. A never-synced user yields
// (nil, nil).
func (c *Client) GetLedger(ctx context.Context, userID string) (*domain.GameState, error) {
	return doRequest[domain.GameState](ctx, c, fasthttp.MethodGet,
		fmt.Sprintf("/v1/ledgers/%s", userID), nil)
}

// PutLedger upserts the full ledger snapshot for a user.
func (c *Client) PutLedger(ctx context.Context, userID string, state domain.GameState) error {
	_, err := doRequest[struct{}](ctx, c, fasthttp.MethodPut,
		fmt.Sprintf("/v1/ledgers/%s", userID), state)
	return err
}

// GetArchetype fetches one cached archetype record; absent records yield
// (nil, nil).
func (c *Client) GetArchetype(ctx context.Context, playerID string) (*domain.ArchetypeRecord, error) {
	return doRequest[domain.ArchetypeRecord](ctx, c, fasthttp.MethodGet,
		fmt.Sprintf("/v1/archetypes/%s", playerID), nil)
}

type archetypeListResponse struct {
	Archetypes []domain.ArchetypeRecord `json:"archetypes"`
}

// ListArchetypes dumps the full remote archetype collection, keyed by player.
func (c *Client) ListArchetypes(ctx context.Context) (map[string]domain.ArchetypeRecord, error) {
	resp, err := doRequest[archetypeListResponse](ctx, c, fasthttp.MethodGet, "/v1/archetypes", nil)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.ArchetypeRecord)
	if resp == nil {
		return out, nil
	}
	for _, rec := range resp.Archetypes {
		out[rec.PlayerID] = rec
	}
	return out, nil
}

// PutArchetype upserts a record in the remote cache tier.
func (c *Client) PutArchetype(ctx context.Context, rec domain.ArchetypeRecord) error {
	_, err := doRequest[struct{}](ctx, c, fasthttp.MethodPut,
		fmt.Sprintf("/v1/archetypes/%s", rec.PlayerID), rec)
	return err
}

// DeleteArchetype removes a record from the remote cache tier.
func (c *Client) DeleteArchetype(ctx context.Context, playerID string) error {
	_, err := doRequest[struct{}](ctx, c, fasthttp.MethodDelete,
		fmt.Sprintf("/v1/archetypes/%s", playerID), nil)
	return err
}

// CreatePurchase appends one pack-purchase audit record.
func (c *Client) CreatePurchase(ctx context.Context, p domain.PackPurchase) error {
	_, err := doRequest[struct{}](ctx, c, fasthttp.MethodPost, "/v1/purchases", p)
	return err
}

type purchaseListResponse struct {
	Purchases []domain.PackPurchase `json:"purchases"`
}

// ListPurchases returns a user's purchase history, most recent first.
func (c *Client) ListPurchases(ctx context.Context, userID string) ([]domain.PackPurchase, error) {
	resp, err := doRequest[purchaseListResponse](ctx, c, fasthttp.MethodGet,
		fmt.Sprintf("/v1/purchases?userId=%s", userID), nil)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}
	return resp.Purchases, nil
}

// doRequest issues one JSON call against the backend. 404 means "absent" and
// returns (nil, nil); other non-2xx statuses are errors.
func doRequest[T any](ctx context.Context, c *Client, method, path string, body any) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.endpoint + path)
	req.Header.SetMethod(method)
	req.Header.Set("X-Project-ID", c.projectID)
	req.Header.Set("X-API-Key", c.apiKey)

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := c.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	status := resp.StatusCode()
	if status == fasthttp.StatusNotFound {
		return nil, nil
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("backend error: %d", status)
	}

	var result T
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &result); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	return &result, nil
}
