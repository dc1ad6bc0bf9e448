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

func TestForkVersion(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sc := mustCreateScript(t, s)

	char, err := s.CreateCharacter(ctx, domain.Character{ScriptID: sc.ID, Name: "Sam"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetCastAssignments(ctx, char.ID, []domain.CastAssignment{
		{CharacterID: char.ID, ContactID: "p1", Featured: true, AppearancePrompt: "tall"},
	}); err != nil {
		t.Fatal(err)
	}
	loc, err := s.CreateLocation(ctx, domain.Location{ScriptID: sc.ID, Name: "Cafe", Description: "corner cafe"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.CreateScene(ctx, domain.Scene{ID: "s1", ScriptID: sc.ID, IntExt: domain.Interior, LocationName: "CAFE", LocationID: loc.ID, TimeOfDay: "DAY"}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateBeat(ctx, domain.Beat{ID: "b1", SceneID: "s1", Audio: "Hi @[Sam](" + char.ID + "), check #[urgent]"}); err != nil {
		t.Fatal(err)
	}

	fork, err := s.ForkVersion(ctx, sc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fork.ID == sc.ID || fork.GroupID != sc.GroupID {
		t.Fatalf("fork identity wrong: %+v", fork)
	}
	if fork.Version != 2 || fork.Status != domain.StatusDraft {
		t.Fatalf("fork must be the next draft version: %+v", fork)
	}

	// The fork has its own copies of every entity.
	chars, err := s.ListCharacters(ctx, fork.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(chars) != 1 || chars[0].ID == char.ID || chars[0].Name != "Sam" {
		t.Fatalf("characters not copied under fresh ids: %+v", chars)
	}
	cast, err := s.ListCast(ctx, fork.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(cast[chars[0].ID]) != 1 || cast[chars[0].ID][0].AppearancePrompt != "tall" {
		t.Fatalf("cast not copied: %+v", cast)
	}
	tags, err := s.ListTags(ctx, fork.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != len(domain.DefaultTags) {
		t.Fatalf("tags not copied: %d", len(tags))
	}

	// Mention targets are rewritten to the fork's character ids.
	beats, err := s.ListBeats(ctx, fork.ID)
	if err != nil {
		t.Fatal(err)
	}
	var forkBeat domain.Beat
	for _, bs := range beats {
		forkBeat = bs[0]
	}
	if !strings.Contains(forkBeat.Audio, "@[Sam]("+chars[0].ID+")") {
		t.Fatalf("mention id not rewritten: %q", forkBeat.Audio)
	}
	if strings.Contains(forkBeat.Audio, char.ID) {
		t.Fatalf("old character id leaked into fork: %q", forkBeat.Audio)
	}
	if !strings.Contains(forkBeat.Audio, "#[urgent]") {
		t.Fatalf("tag mention must stay slug-based: %q", forkBeat.Audio)
	}

	// Scene location reference follows the copied location.
	scenes, err := s.ListScenes(ctx, fork.ID)
	if err != nil {
		t.Fatal(err)
	}
	if scenes[0].LocationID == loc.ID || scenes[0].LocationID == "" {
		t.Fatalf("location reference not remapped: %+v", scenes[0])
	}

	// Editing the fork leaves the original untouched.
	if err := s.UpdateBeatField(ctx, forkBeat.ID, domain.FieldAudio, "rewritten"); err != nil {
		t.Fatal(err)
	}
	origBeats, err := s.ListBeats(ctx, sc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if origBeats["s1"][0].Audio == "rewritten" {
		t.Fatal("fork edit bled into the original version")
	}

	// A second fork gets version 3.
	fork2, err := s.ForkVersion(ctx, sc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fork2.Version != 3 {
		t.Fatalf("version = %d, want 3", fork2.Version)
	}
	versions, err := s.ListVersions(ctx, sc.GroupID)
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 3 || versions[0].Version != 3 {
		t.Fatalf("got %+v", versions)
	}
}
