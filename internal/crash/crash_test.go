/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"goscreenwriter/internal/domain"
	"goscreenwriter/internal/editor"
	"goscreenwriter/internal/order"
)

// noopStore satisfies editor.Store and records beat field writes.
type noopStore struct {
	mu     sync.Mutex
	writes []string
}

func (s *noopStore) CreateScene(ctx context.Context, sc domain.Scene) error { return nil }
func (s *noopStore) UpdateScene(ctx context.Context, sc domain.Scene) error { return nil }
func (s *noopStore) DeleteScene(ctx context.Context, id string) error       { return nil }
func (s *noopStore) ReorderScenes(ctx context.Context, scriptID string, ups []order.Update) error {
	return nil
}
func (s *noopStore) CreateBeat(ctx context.Context, b domain.Beat) error { return nil }
func (s *noopStore) UpdateBeatField(ctx context.Context, beatID string, f domain.BeatField, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, beatID+"="+value)
	return nil
}
func (s *noopStore) DeleteBeat(ctx context.Context, id string) error { return nil }
func (s *noopStore) ReorderBeats(ctx context.Context, sceneID string, ups []order.Update) error {
	return nil
}

func stubExit(t *testing.T) *int {
	t.Helper()
	code := -1
	old := exitFn
	exitFn = func(c int) { code = c }
	t.Cleanup(func() { exitFn = old })
	return &code
}

func findCrashReport(t *testing.T, dir string) string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(dir, BackupsDirName))
	if err != nil {
		t.Fatalf("backups dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "crash-") && strings.HasSuffix(e.Name(), ".log") {
			return filepath.Join(dir, BackupsDirName, e.Name())
		}
	}
	t.Fatal("no crash report written")
	return ""
}

func TestRecoverWritesReport(t *testing.T) {
	code := stubExit(t)
	ws := t.TempDir()

	func() {
		defer Recover(nil, ws)
		panic("boom")
	}()

	if *code != 2 {
		t.Fatalf("exit code = %d, want 2", *code)
	}
	data, err := os.ReadFile(findCrashReport(t, ws))
	if err != nil {
		t.Fatal(err)
	}
	report := string(data)
	if !strings.Contains(report, "Panic: boom") || !strings.Contains(report, "Stack:") {
		t.Fatalf("incomplete report:\n%s", report)
	}
	if !strings.Contains(report, "Workspace: "+ws) {
		t.Fatalf("workspace missing from report:\n%s", report)
	}
}

func TestRecoverFlushesPendingEdits(t *testing.T) {
	stubExit(t)
	ws := t.TempDir()
	store := &noopStore{}
	co := editor.New(store, nil, domain.Script{ID: "script-1"},
		[]domain.Scene{{ID: "s1", ScriptID: "script-1"}},
		map[string][]domain.Beat{"s1": {{ID: "b1", SceneID: "s1"}}},
		editor.Config{Debounce: time.Hour, SafetyInterval: time.Hour})
	defer func() { _ = co.Close(context.Background()) }()

	if err := co.SetBeatField("b1", domain.FieldAudio, "typed right before the crash"); err != nil {
		t.Fatal(err)
	}

	func() {
		defer Recover(co, ws)
		panic("boom")
	}()

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.writes) != 1 || store.writes[0] != "b1=typed right before the crash" {
		t.Fatalf("pending edit not flushed: %v", store.writes)
	}
}

func TestRecoverNoPanicIsNoop(t *testing.T) {
	code := stubExit(t)
	func() {
		defer Recover(nil, "")
	}()
	if *code != -1 {
		t.Fatalf("Recover exited without a panic (code %d)", *code)
	}
}
