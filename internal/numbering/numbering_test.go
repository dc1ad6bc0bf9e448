/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package numbering

import (
	"testing"

	"goscreenwriter/internal/domain"
)

func TestBeatLetterSequence(t *testing.T) {
	want := []string{
		"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
		"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
		"AA", "AB",
	}
	for i, w := range want {
		if got := BeatLetter(i + 1); got != w {
			t.Fatalf("BeatLetter(%d) = %q, want %q", i+1, got, w)
		}
	}
	if got := BeatLetter(52); got != "AZ" {
		t.Fatalf("BeatLetter(52) = %q, want AZ", got)
	}
	if got := BeatLetter(53); got != "BA" {
		t.Fatalf("BeatLetter(53) = %q, want BA", got)
	}
	if got := BeatLetter(702); got != "ZZ" {
		t.Fatalf("BeatLetter(702) = %q, want ZZ", got)
	}
	if got := BeatLetter(703); got != "AAA" {
		t.Fatalf("BeatLetter(703) = %q, want AAA", got)
	}
	if got := BeatLetter(0); got != "" {
		t.Fatalf("BeatLetter(0) = %q, want empty", got)
	}
}

func TestComputeLocationGroups(t *testing.T) {
	scenes := []domain.Scene{
		{ID: "s1", SortOrder: 0, IntExt: domain.Interior, LocationName: "Cafe"},
		{ID: "s2", SortOrder: 1, IntExt: domain.Interior, LocationName: "Cafe"},
		{ID: "s3", SortOrder: 2, IntExt: domain.Exterior, LocationName: "Street"},
		{ID: "s4", SortOrder: 3, IntExt: domain.Interior, LocationName: "Cafe"},
	}
	got := Compute(scenes, nil)
	if len(got) != 4 {
		t.Fatalf("expected 4 scenes, got %d", len(got))
	}
	wantNumbers := []int{101, 102, 201, 301}
	for i, w := range wantNumbers {
		if got[i].Number != w {
			t.Fatalf("scene %d number = %d, want %d", i, got[i].Number, w)
		}
		if got[i].Display != i+1 {
			t.Fatalf("scene %d display = %d, want %d", i, got[i].Display, i+1)
		}
	}
	// returning to a seen location starts a fresh group
	if got[3].LocationGroup != 3 || got[3].GroupIndex != 1 {
		t.Fatalf("scene 4 grouping = %d/%d", got[3].LocationGroup, got[3].GroupIndex)
	}
}

func TestComputeOrdersScenesAndBeats(t *testing.T) {
	scenes := []domain.Scene{
		{ID: "s2", SortOrder: 1, IntExt: domain.Interior, LocationName: "Cafe"},
		{ID: "s1", SortOrder: 0, IntExt: domain.Interior, LocationName: "Cafe"},
	}
	beats := map[string][]domain.Beat{
		"s1": {
			{ID: "b2", SceneID: "s1", SortOrder: 1},
			{ID: "b1", SceneID: "s1", SortOrder: 0},
		},
	}
	got := Compute(scenes, beats)
	if got[0].ID != "s1" || got[1].ID != "s2" {
		t.Fatalf("scenes not ordered: %s, %s", got[0].ID, got[1].ID)
	}
	if len(got[0].Beats) != 2 || got[0].Beats[0].ID != "b1" {
		t.Fatalf("beats not ordered: %+v", got[0].Beats)
	}
	if got[1].Beats == nil || len(got[1].Beats) != 0 {
		t.Fatalf("scene without beats should carry an empty list")
	}
}

func TestComputeTieBreakByID(t *testing.T) {
	scenes := []domain.Scene{
		{ID: "zz", SortOrder: 3, IntExt: domain.Interior, LocationName: "A"},
		{ID: "aa", SortOrder: 3, IntExt: domain.Interior, LocationName: "A"},
	}
	got := Compute(scenes, nil)
	if got[0].ID != "aa" || got[1].ID != "zz" {
		t.Fatalf("tie not broken by id: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestHeading(t *testing.T) {
	cases := []struct {
		sc   domain.Scene
		want string
	}{
		{domain.Scene{IntExt: domain.Interior, LocationName: "CAFE", TimeOfDay: "DAY"}, "INT. CAFE - DAY"},
		{domain.Scene{IntExt: domain.Exterior, LocationName: "STREET"}, "EXT. STREET"},
		{domain.Scene{IntExt: domain.Interior, TimeOfDay: "NIGHT"}, "INT - NIGHT"},
		{domain.Scene{IntExt: domain.IntExterior, LocationName: "CAR", TimeOfDay: "DUSK"}, "INT/EXT. CAR - DUSK"},
	}
	for _, c := range cases {
		if got := Heading(c.sc); got != c.want {
			t.Fatalf("Heading(%+v) = %q, want %q", c.sc, got, c.want)
		}
	}
}
