package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/hoopcrest/hoopcrest/internal/constants"
	"github.com/hoopcrest/hoopcrest/internal/domain"
)

// The generator runs as an async backend function. A synchronous execution
// hits the platform's 30s limit well before image generation finishes, so the
// client starts an async execution and polls it.

type generateRequest struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	StatHints  string `json:"statHints"`
}

type execution struct {
	ID           string `json:"id"`
	Status       string `json:"status"` // waiting, processing, completed, failed
	ResponseBody string `json:"responseBody"`
}

type generateResponse struct {
	Success   bool                    `json:"success"`
	Archetype *domain.ArchetypeRecord `json:"archetype"`
}

// GenerateArchetype asks the backend to generate an archetype for a player.
// It returns (nil, nil) when the generator produced nothing before the
// context's patience ran out; callers treat that as a retryable gap, never
// as a failed card grant.
func (c *Client) GenerateArchetype(ctx context.Context, playerID, playerName, statHints string) (*domain.ArchetypeRecord, error) {
	exec, err := doRequest[execution](ctx, c, fasthttp.MethodPost,
		"/v1/functions/generate-archetype/executions",
		generateRequest{PlayerID: playerID, PlayerName: playerName, StatHints: statHints})
	if err != nil || exec == nil {
		c.logger.Warn().Err(err).Str("player_id", playerID).Msg("generation request failed to start")
		return c.lookupAfterGeneration(ctx, playerID)
	}

	c.logger.Debug().
		Str("player_id", playerID).
		Str("execution_id", exec.ID).
		Msg("generation execution started")

	exec, err = c.pollExecution(ctx, exec.ID)
	if err != nil || exec == nil || exec.Status != "completed" {
		// The function may still have written its result to the remote
		// cache before timing out; check there before giving up.
		return c.lookupAfterGeneration(ctx, playerID)
	}

	if exec.ResponseBody != "" {
		var parsed generateResponse
		if err := json.Unmarshal([]byte(exec.ResponseBody), &parsed); err == nil &&
			parsed.Success && parsed.Archetype != nil {
			rec := *parsed.Archetype
			if rec.PlayerID == "" {
				rec.PlayerID = playerID
			}
			if rec.PlayerName == "" {
				rec.PlayerName = playerName
			}
			if rec.CreatedAt.IsZero() {
				rec.CreatedAt = time.Now().UTC()
			}
			return &rec, nil
		}
	}

	return c.lookupAfterGeneration(ctx, playerID)
}

func (c *Client) pollExecution(ctx context.Context, executionID string) (*execution, error) {
	ticker := time.NewTicker(constants.GenerationPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		exec, err := doRequest[execution](ctx, c, fasthttp.MethodGet,
			fmt.Sprintf("/v1/functions/generate-archetype/executions/%s", executionID), nil)
		if err != nil {
			return nil, err
		}
		if exec == nil {
			return nil, nil
		}
		if exec.Status == "completed" || exec.Status == "failed" {
			return exec, nil
		}
	}
}

// lookupAfterGeneration is the shared fallback: whatever went wrong with the
// execution itself, the generated record may already be in the remote cache.
func (c *Client) lookupAfterGeneration(ctx context.Context, playerID string) (*domain.ArchetypeRecord, error) {
	rec, err := c.GetArchetype(ctx, playerID)
	if err != nil {
		c.logger.Warn().Err(err).Str("player_id", playerID).Msg("post-generation cache lookup failed")
		return nil, nil
	}
	return rec, nil
}
