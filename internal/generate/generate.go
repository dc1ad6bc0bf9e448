/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package generate talks to the external image-generation service. The
// Client satisfies the editor's Generator contract, so batch storyboard
// generation is wired straight to it.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"goscreenwriter/internal/domain"
)

// DefaultTimeout bounds a single generation call. Image backends are slow;
// callers wanting batch-level control pass a ctx with their own deadline.
const DefaultTimeout = 120 * time.Second

// Client calls the generation service's HTTP API.
type Client struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

// NewClient creates a generation client. baseURL may include a trailing
// slash; it will be normalized.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
}

type generateRequest struct {
	Prompt      string `json:"prompt"`
	StylePrompt string `json:"style_prompt,omitempty"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	StylePreset string `json:"style_preset,omitempty"`
}

type generateResponse struct {
	ID          string `json:"id"`
	ImageURL    string `json:"image_url"`
	StoragePath string `json:"storage_path"`
	Error       string `json:"error"`
}

// Generate submits one brief and returns the resulting frame reference.
// The returned frame carries no beat or scene attribution; the caller
// annotates it.
func (c *Client) Generate(ctx context.Context, brief string, style domain.StoryboardStyle) (domain.StoryboardFrame, error) {
	reqBody, err := json.Marshal(generateRequest{
		Prompt:      brief,
		StylePrompt: style.Prompt,
		AspectRatio: style.AspectRatio,
		StylePreset: style.Preset,
	})
	if err != nil {
		return domain.StoryboardFrame{}, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/images", bytes.NewReader(reqBody))
	if err != nil {
		return domain.StoryboardFrame{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return domain.StoryboardFrame{}, fmt.Errorf("generation request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.StoryboardFrame{}, fmt.Errorf("read response: %w", err)
	}
	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return domain.StoryboardFrame{}, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if gr.Error != "" {
			return domain.StoryboardFrame{}, fmt.Errorf("generation service: %s", gr.Error)
		}
		return domain.StoryboardFrame{}, fmt.Errorf("generation service: %s", resp.Status)
	}
	if gr.ImageURL == "" {
		return domain.StoryboardFrame{}, fmt.Errorf("generation service returned no image")
	}
	id := gr.ID
	if id == "" {
		id = uuid.NewString()
	}
	return domain.StoryboardFrame{
		ID:          id,
		ScriptID:    style.ScriptID,
		ImageURL:    gr.ImageURL,
		StoragePath: gr.StoragePath,
		Source:      "generated",
		CreatedAt:   time.Now().UTC(),
	}, nil
}
