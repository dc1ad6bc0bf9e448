/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package numbering derives display numbers for scenes and letters for
// beats from the current ordering. Everything here is a pure function of
// its inputs, recomputed on every render and never persisted, so reordering
// never needs a migration step.
package numbering

import (
	"strings"

	"goscreenwriter/internal/domain"
)

// ComputedScene is a scene annotated with its derived numbering and its
// ordered beats.
type ComputedScene struct {
	domain.Scene

	// Display is the 1-based sequential number following script order.
	Display int
	// LocationGroup increments whenever the int/ext+location pair changes,
	// even when returning to a previously seen location.
	LocationGroup int
	// GroupIndex is the 1-based position within the location group.
	GroupIndex int
	// Number is the production scene number: group*100 + index,
	// e.g. INT. CAFE scenes 101, 102; EXT. STREET 201; back to the cafe 301.
	Number int

	Beats []domain.Beat
}

// BeatLetter converts a 1-based beat position to its letter label using the
// spreadsheet-column convention: 1..26 map to A..Z and the sequence then
// grows a letter (27 is AA, 52 AZ, 53 BA). This is bijective base-26 with
// digits 1..26; there is no zero digit. Positions below 1 yield "".
func BeatLetter(n int) string {
	if n < 1 {
		return ""
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// Compute orders scenes and their beats and derives scene numbering.
// beatsByScene may contain unordered beats; they are sorted by sort key
// with ID as tie-break. Scenes with no beats get an empty beat list.
func Compute(scenes []domain.Scene, beatsByScene map[string][]domain.Beat) []ComputedScene {
	ordered := sortScenes(scenes)

	out := make([]ComputedScene, 0, len(ordered))
	group := 0
	groupIdx := 0
	lastKey := ""
	for i, sc := range ordered {
		key := strings.ToLower(strings.TrimSpace(string(sc.IntExt) + "|" + sc.LocationName))
		if key != lastKey {
			group++
			groupIdx = 0
		}
		lastKey = key
		groupIdx++

		out = append(out, ComputedScene{
			Scene:         sc,
			Display:       i + 1,
			LocationGroup: group,
			GroupIndex:    groupIdx,
			Number:        group*100 + groupIdx,
			Beats:         sortBeats(beatsByScene[sc.ID]),
		})
	}
	return out
}

// Heading formats a scene heading string, e.g. "INT. CAFE - DAY".
func Heading(sc domain.Scene) string {
	parts := []string{string(sc.IntExt)}
	if sc.LocationName != "" {
		parts = append(parts, sc.LocationName)
	}
	if sc.TimeOfDay != "" {
		parts = append(parts, "- "+sc.TimeOfDay)
	}
	return strings.Replace(strings.Join(parts, ". "), ". -", " -", 1)
}

func sortScenes(scenes []domain.Scene) []domain.Scene {
	out := append([]domain.Scene(nil), scenes...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && sceneLess(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func sceneLess(a, b domain.Scene) bool {
	if a.SortOrder != b.SortOrder {
		return a.SortOrder < b.SortOrder
	}
	return a.ID < b.ID
}

func sortBeats(beats []domain.Beat) []domain.Beat {
	out := append([]domain.Beat(nil), beats...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && beatLess(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if out == nil {
		out = []domain.Beat{}
	}
	return out
}

func beatLess(a, b domain.Beat) bool {
	if a.SortOrder != b.SortOrder {
		return a.SortOrder < b.SortOrder
	}
	return a.ID < b.ID
}
