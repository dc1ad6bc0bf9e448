/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"goscreenwriter/internal/storage"
)

// Client is a minimal HTTP client for the sync server API.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a new sync client. baseURL may include a trailing slash; it will be normalized.
func NewClient(baseURL string, token string) *Client {
	b := strings.TrimRight(baseURL, "/")
	return &Client{
		BaseURL: b,
		Token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body []byte, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rd *bytes.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	if dest == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}

// FetchToken obtains a bearer token and stores it on the client.
func (c *Client) FetchToken(ctx context.Context, subject string) error {
	body, err := json.Marshal(map[string]any{"subject": subject})
	if err != nil {
		return err
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/token", body, &resp); err != nil {
		return err
	}
	if resp.Token == "" {
		return fmt.Errorf("empty token from server")
	}
	c.Token = resp.Token
	return nil
}

// ListScripts returns the script versions known to the server.
func (c *Client) ListScripts(ctx context.Context) ([]ScriptInfo, error) {
	var list []ScriptInfo
	if err := c.doJSON(ctx, http.MethodGet, "/api/scripts", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// PushBundle uploads one script version. The server replaces any bundle it
// already holds for the same script id.
func (c *Client) PushBundle(ctx context.Context, b storage.Bundle) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	path := "/api/scripts/" + url.PathEscape(b.Script.ID) + "/bundle"
	return c.doJSON(ctx, http.MethodPut, path, raw, nil)
}

// GetBundle fetches the stored bundle for a script version.
func (c *Client) GetBundle(ctx context.Context, scriptID string) (storage.Bundle, error) {
	var b storage.Bundle
	path := "/api/scripts/" + url.PathEscape(scriptID) + "/bundle"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &b); err != nil {
		return storage.Bundle{}, err
	}
	return b, nil
}

// Preview fetches the server-rendered HTML view of one beat.
func (c *Client) Preview(ctx context.Context, scriptID, beatID string) (BeatPreview, error) {
	var p BeatPreview
	path := "/api/scripts/" + url.PathEscape(scriptID) + "/preview?beat=" + url.QueryEscape(beatID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &p); err != nil {
		return BeatPreview{}, err
	}
	return p, nil
}

// Search runs a beat search on the server. q.ScriptID selects the script.
func (c *Client) Search(ctx context.Context, q storage.SearchQuery) ([]storage.SearchResult, error) {
	v := url.Values{}
	if q.Text != "" {
		v.Set("q", q.Text)
	}
	if q.Character != "" {
		v.Set("character", q.Character)
	}
	if q.Tag != "" {
		v.Set("tag", q.Tag)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	path := "/api/scripts/" + url.PathEscape(q.ScriptID) + "/search"
	if enc := v.Encode(); enc != "" {
		path += "?" + enc
	}
	var res []storage.SearchResult
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}
