package graph

import (
	"context"
	"encoding/json"
	"net/http"
)

// Graph caps $batch at 20 sub-requests.
const batchLimit = 20

// BatchRequest is a single sub-request of a $batch call.
type BatchRequest struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	URL    string `json:"url"`
}

// BatchResponse is a single sub-response of a $batch call.
type BatchResponse struct {
	ID     string          `json:"id"`
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// Batch executes sub-requests via the $batch endpoint. The caller must stay
// within batchLimit per call.
func (c *Client) Batch(ctx context.Context, requests []BatchRequest) ([]BatchResponse, error) {
	payload := map[string]any{"requests": requests}
	var result struct {
		Responses []BatchResponse `json:"responses"`
	}
	if err := c.do(ctx, http.MethodPost, "/$batch", nil, payload, &result); err != nil {
		return nil, err
	}
	return result.Responses, nil
}
