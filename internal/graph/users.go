package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// UserProfile is the directory information served to the client.
type UserProfile struct {
	DisplayName string `json:"displayName"`
	Mail        string `json:"mail"`
	Upn         string `json:"upn"`
}

// GetDisplayNames resolves UPNs to display names via $batch, in chunks of 20.
// A UPN the directory does not know (guests, stale entries) is echoed back as
// its own display name.
func (c *Client) GetDisplayNames(ctx context.Context, upns []string) (map[string]string, error) {
	names := make(map[string]string, len(upns))

	for start := 0; start < len(upns); start += batchLimit {
		end := start + batchLimit
		if end > len(upns) {
			end = len(upns)
		}
		chunk := upns[start:end]

		requests := make([]BatchRequest, len(chunk))
		for i, upn := range chunk {
			requests[i] = BatchRequest{
				ID:     strconv.Itoa(i),
				Method: http.MethodGet,
				URL:    "/users/" + url.PathEscape(upn) + "?$select=displayName",
			}
		}

		responses, err := c.Batch(ctx, requests)
		if err != nil {
			return nil, fmt.Errorf("display name lookup: %w", err)
		}

		for _, resp := range responses {
			idx, err := strconv.Atoi(resp.ID)
			if err != nil || idx < 0 || idx >= len(chunk) {
				continue
			}
			upn := chunk[idx]
			if resp.Status == http.StatusNotFound {
				names[upn] = upn
				continue
			}
			var body struct {
				DisplayName string `json:"displayName"`
			}
			if json.Unmarshal(resp.Body, &body) == nil && body.DisplayName != "" {
				names[upn] = body.DisplayName
			} else {
				names[upn] = upn
			}
		}
	}

	return names, nil
}

// GetUserProfiles resolves UPNs to profiles (display name and mail) via
// $batch, in chunks of 20. Unknown UPNs fall back to the UPN itself.
func (c *Client) GetUserProfiles(ctx context.Context, upns []string) ([]UserProfile, error) {
	profiles := make([]UserProfile, 0, len(upns))

	for start := 0; start < len(upns); start += batchLimit {
		end := start + batchLimit
		if end > len(upns) {
			end = len(upns)
		}
		chunk := upns[start:end]

		requests := make([]BatchRequest, len(chunk))
		for i, upn := range chunk {
			requests[i] = BatchRequest{
				ID:     strconv.Itoa(i),
				Method: http.MethodGet,
				URL:    "/users/" + url.PathEscape(upn) + "?$select=displayName,mail",
			}
		}

		responses, err := c.Batch(ctx, requests)
		if err != nil {
			return nil, fmt.Errorf("profile lookup: %w", err)
		}

		chunkProfiles := make([]UserProfile, len(chunk))
		for i, upn := range chunk {
			chunkProfiles[i] = UserProfile{DisplayName: upn, Mail: upn, Upn: upn}
		}
		for _, resp := range responses {
			idx, err := strconv.Atoi(resp.ID)
			if err != nil || idx < 0 || idx >= len(chunk) {
				continue
			}
			if resp.Status == http.StatusNotFound {
				continue
			}
			var body struct {
				DisplayName string `json:"displayName"`
				Mail        string `json:"mail"`
			}
			if json.Unmarshal(resp.Body, &body) == nil {
				if body.DisplayName != "" {
					chunkProfiles[idx].DisplayName = body.DisplayName
				}
				if body.Mail != "" {
					chunkProfiles[idx].Mail = body.Mail
				}
			}
		}
		profiles = append(profiles, chunkProfiles...)
	}

	return profiles, nil
}

// GetUserID resolves a UPN to the directory object id.
func (c *Client) GetUserID(ctx context.Context, upn string) (string, error) {
	var body struct {
		ID string `json:"id"`
	}
	query := url.Values{"$select": {"id"}}
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(upn), query, nil, &body); err != nil {
		return "", err
	}
	return body.ID, nil
}
