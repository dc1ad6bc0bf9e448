/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"goscreenwriter/internal/domain"
)

func TestGenerateSendsBriefAndStyle(t *testing.T) {
	var got generateRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/images" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(generateResponse{ID: "f1", ImageURL: "https://img/f1.png", StoragePath: "frames/f1.png"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "key-123")
	style := domain.StoryboardStyle{ScriptID: "script-1", Prompt: "film noir", AspectRatio: "16:9", Preset: "cinematic"}
	frame, err := c.Generate(context.Background(), "the brief", style)
	if err != nil {
		t.Fatal(err)
	}
	if auth != "Bearer key-123" {
		t.Fatalf("auth header = %q", auth)
	}
	if got.Prompt != "the brief" || got.StylePrompt != "film noir" || got.AspectRatio != "16:9" || got.StylePreset != "cinematic" {
		t.Fatalf("request = %+v", got)
	}
	if frame.ID != "f1" || frame.ImageURL != "https://img/f1.png" || frame.ScriptID != "script-1" || frame.Source != "generated" {
		t.Fatalf("frame = %+v", frame)
	}
}

func TestGenerateServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(generateResponse{Error: "rate limited"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.Generate(context.Background(), "brief", domain.StoryboardStyle{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestGenerateEmptyImageRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(generateResponse{ID: "f2"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.Generate(context.Background(), "brief", domain.StoryboardStyle{}); err == nil {
		t.Fatal("expected error for missing image url")
	}
}

func TestGenerateHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewClient(srv.URL, "")
	if _, err := c.Generate(ctx, "brief", domain.StoryboardStyle{}); err == nil {
		t.Fatal("expected context error")
	}
}
