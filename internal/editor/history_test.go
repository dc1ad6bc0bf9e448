/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"context"
	"testing"

	"goscreenwriter/internal/domain"
)

func beatContent(t *testing.T, c *Coordinator, beatID string, f domain.BeatField) string {
	t.Helper()
	for _, cs := range c.Computed() {
		for _, b := range cs.Beats {
			if b.ID == beatID {
				return b.Content(f)
			}
		}
	}
	t.Fatalf("beat %q not found", beatID)
	return ""
}

func TestUndoRestoresPreviousText(t *testing.T) {
	store := &fakeStore{}
	c := newTestCoordinator(t, store)

	if err := c.SetBeatField("b1", domain.FieldAudio, "rewritten line"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := c.UndoBeatField("b1", domain.FieldAudio)
	if err != nil || !ok {
		t.Fatalf("undo: %v, %v", ok, err)
	}
	if v != "one" {
		t.Fatalf("undo restored %q, want one", v)
	}
	if got := beatContent(t, c, "b1", domain.FieldAudio); got != "one" {
		t.Fatalf("local state = %q, want one", got)
	}

	// The restore rides the normal debounce path.
	if err := c.FlushAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	writes := store.writes()
	last := writes[len(writes)-1]
	if last.beatID != "b1" || last.value != "one" {
		t.Fatalf("last persisted write = %+v, want b1=one", last)
	}
}

func TestRedoReappliesUndoneEdit(t *testing.T) {
	store := &fakeStore{}
	c := newTestCoordinator(t, store)

	if err := c.SetBeatField("b1", domain.FieldAudio, "rewritten line"); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.UndoBeatField("b1", domain.FieldAudio); err != nil || !ok {
		t.Fatalf("undo: %v, %v", ok, err)
	}
	v, ok, err := c.RedoBeatField("b1", domain.FieldAudio)
	if err != nil || !ok {
		t.Fatalf("redo: %v, %v", ok, err)
	}
	if v != "rewritten line" {
		t.Fatalf("redo restored %q", v)
	}
	if got := beatContent(t, c, "b1", domain.FieldAudio); got != "rewritten line" {
		t.Fatalf("local state = %q", got)
	}
}

func TestUndoCoalescesKeystrokeBurst(t *testing.T) {
	store := &fakeStore{}
	c := newTestCoordinator(t, store)

	for _, v := range []string{"h", "he", "hello"} {
		if err := c.SetBeatField("b1", domain.FieldAudio, v); err != nil {
			t.Fatal(err)
		}
	}
	// One undo step jumps back past the whole burst.
	v, ok, err := c.UndoBeatField("b1", domain.FieldAudio)
	if err != nil || !ok {
		t.Fatalf("undo: %v, %v", ok, err)
	}
	if v != "one" {
		t.Fatalf("undo restored %q, want pre-burst value one", v)
	}
}

func TestUndoIsPerField(t *testing.T) {
	store := &fakeStore{}
	c := newTestCoordinator(t, store)

	if err := c.SetBeatField("b1", domain.FieldAudio, "new audio"); err != nil {
		t.Fatal(err)
	}
	if err := c.SetBeatField("b1", domain.FieldVisual, "new visual"); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.UndoBeatField("b1", domain.FieldVisual); err != nil || !ok {
		t.Fatalf("undo visual: %v, %v", ok, err)
	}
	if got := beatContent(t, c, "b1", domain.FieldAudio); got != "new audio" {
		t.Fatalf("audio changed by visual undo: %q", got)
	}
	if got := beatContent(t, c, "b1", domain.FieldVisual); got != "" {
		t.Fatalf("visual = %q, want empty", got)
	}
}

func TestUndoWithoutHistory(t *testing.T) {
	store := &fakeStore{}
	c := newTestCoordinator(t, store)

	if _, ok, err := c.UndoBeatField("b3", domain.FieldVisual); err != nil || ok {
		t.Fatalf("undo on untouched beat = %v, %v", ok, err)
	}
	if _, ok, err := c.RedoBeatField("b3", domain.FieldVisual); err != nil || ok {
		t.Fatalf("redo on untouched beat = %v, %v", ok, err)
	}
}

func TestUndoUnknownBeat(t *testing.T) {
	store := &fakeStore{}
	c := newTestCoordinator(t, store)

	if _, _, err := c.UndoBeatField("missing", domain.FieldAudio); err == nil {
		t.Fatal("expected error for unknown beat")
	}
}
