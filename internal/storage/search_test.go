/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"strings"
	"testing"

	"goscreenwriter/internal/domain"
)

func seedSearchData(t *testing.T, s *Store) domain.Script {
	t.Helper()
	ctx := context.Background()
	sc := mustCreateScript(t, s)
	if err := s.CreateScene(ctx, domain.Scene{ID: "s1", ScriptID: sc.ID, SortOrder: 0, IntExt: domain.Interior, LocationName: "CAFE"}); err != nil {
		t.Fatal(err)
	}
	beats := []domain.Beat{
		{ID: "b1", SceneID: "s1", SortOrder: 0, Audio: "**Opening** line with @[Sam](c1)"},
		{ID: "b2", SceneID: "s1", SortOrder: 1, Visual: "pan across the harbor, #[broll]"},
		{ID: "b3", SceneID: "s1", SortOrder: 2, Notes: "silent beat"},
	}
	for _, b := range beats {
		if err := s.CreateBeat(ctx, b); err != nil {
			t.Fatal(err)
		}
	}
	return sc
}

func TestSearchBeatsFullText(t *testing.T) {
	s := openTestStore(t)
	sc := seedSearchData(t, s)

	got, err := s.SearchBeats(context.Background(), SearchQuery{ScriptID: sc.ID, Text: "harbor"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].BeatID != "b2" {
		t.Fatalf("got %+v", got)
	}
	if !strings.Contains(got[0].Snippet, "[harbor]") {
		t.Fatalf("snippet not highlighted: %q", got[0].Snippet)
	}
}

func TestSearchIgnoresMarkup(t *testing.T) {
	s := openTestStore(t)
	sc := seedSearchData(t, s)

	// Bold markers are stripped before indexing, so the term matches.
	got, err := s.SearchBeats(context.Background(), SearchQuery{ScriptID: sc.ID, Text: "Opening"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].BeatID != "b1" {
		t.Fatalf("got %+v", got)
	}
}

func TestSearchByCharacterAndTag(t *testing.T) {
	s := openTestStore(t)
	sc := seedSearchData(t, s)
	ctx := context.Background()

	got, err := s.SearchBeats(ctx, SearchQuery{ScriptID: sc.ID, Character: "Sam"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].BeatID != "b1" {
		t.Fatalf("got %+v", got)
	}

	got, err = s.SearchBeats(ctx, SearchQuery{ScriptID: sc.ID, Tag: "broll"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].BeatID != "b2" {
		t.Fatalf("got %+v", got)
	}
}

func TestSearchFollowsEdits(t *testing.T) {
	s := openTestStore(t)
	sc := seedSearchData(t, s)
	ctx := context.Background()

	if err := s.UpdateBeatField(ctx, "b3", domain.FieldNotes, "mention the lighthouse"); err != nil {
		t.Fatal(err)
	}
	got, err := s.SearchBeats(ctx, SearchQuery{ScriptID: sc.ID, Text: "lighthouse"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].BeatID != "b3" {
		t.Fatalf("index not updated on edit: %+v", got)
	}

	if err := s.DeleteBeat(ctx, "b3"); err != nil {
		t.Fatal(err)
	}
	got, err = s.SearchBeats(ctx, SearchQuery{ScriptID: sc.ID, Text: "lighthouse"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("deleted beat still indexed: %+v", got)
	}
}

func TestSearchScopedToScript(t *testing.T) {
	s := openTestStore(t)
	sc1 := seedSearchData(t, s)
	ctx := context.Background()

	sc2 := mustCreateScript(t, s)
	if err := s.CreateScene(ctx, domain.Scene{ID: "other-s", ScriptID: sc2.ID, IntExt: domain.Exterior}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateBeat(ctx, domain.Beat{ID: "other-b", SceneID: "other-s", Audio: "harbor too"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.SearchBeats(ctx, SearchQuery{ScriptID: sc1.ID, Text: "harbor"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].BeatID != "b2" {
		t.Fatalf("search leaked across scripts: %+v", got)
	}
}
