/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package prompt assembles the textual brief handed to the storyboard
// generation service. Build is a pure function: same inputs produce a
// byte-identical string, which callers rely on to decide whether a frame
// for an unchanged beat can be reused instead of regenerated.
package prompt

import (
	"fmt"
	"strings"

	"goscreenwriter/internal/domain"
	"goscreenwriter/internal/numbering"
)

// EmptyBeatFallback is emitted when all three content channels of the beat
// are blank. Exact wording is part of the dedupe contract.
const EmptyBeatFallback = "Empty beat — generate a neutral establishing shot"

// Input is everything Build reads. Characters and Locations are the full
// script-level lists in their stored sort order; Cast maps character id to
// its cast assignments.
type Input struct {
	Beat       domain.Beat
	BeatIndex  int
	Scene      numbering.ComputedScene
	Characters []domain.Character
	Locations  []domain.Location
	Cast       map[string][]domain.CastAssignment
}

// Build produces the generation brief: scene context, the full character
// roster with appearance notes, the beat's position among its siblings,
// the neighboring beats' content and the beat's own three channels.
func Build(in Input) string {
	if in.Beat.Empty() {
		return EmptyBeatFallback
	}

	var parts []string

	parts = append(parts, "SCENE CONTEXT:")
	parts = append(parts, fmt.Sprintf("Scene %d — %s. %s — %s",
		in.Scene.Number, in.Scene.IntExt, in.Scene.LocationName, in.Scene.TimeOfDay))
	if loc, ok := findLocation(in.Locations, in.Scene.LocationID); ok && loc.Description != "" {
		parts = append(parts, "Location: "+loc.Description)
	}
	if in.Scene.Notes != "" {
		parts = append(parts, "Scene notes: "+in.Scene.Notes)
	}
	parts = append(parts, "")

	if len(in.Characters) > 0 {
		parts = append(parts, "CHARACTERS IN THIS SCRIPT:")
		for _, ch := range in.Characters {
			parts = append(parts, characterLine(ch, in.Cast[ch.ID]))
		}
		parts = append(parts, "")
	}

	parts = append(parts, fmt.Sprintf("BEAT %d OF %d IN THIS SCENE:", in.BeatIndex+1, len(in.Scene.Beats)))
	parts = append(parts, "")

	if prev, ok := neighbor(in.Scene.Beats, in.BeatIndex-1); ok {
		if c := neighborContent(prev); c != "" {
			parts = append(parts, "Previous beat: "+c)
		}
	}

	parts = append(parts, "Current beat:")
	if in.Beat.Audio != "" {
		parts = append(parts, "Audio: "+in.Beat.Audio)
	}
	if in.Beat.Visual != "" {
		parts = append(parts, "Visual: "+in.Beat.Visual)
	}
	if in.Beat.Notes != "" {
		parts = append(parts, "Notes: "+in.Beat.Notes)
	}

	if next, ok := neighbor(in.Scene.Beats, in.BeatIndex+1); ok {
		if c := neighborContent(next); c != "" {
			parts = append(parts, "\nNext beat: "+c)
		}
	}

	return strings.Join(parts, "\n")
}

// characterLine renders one roster entry, e.g.
// "- Sam: the host Physical appearance: tall, grey coat (Actor)".
func characterLine(ch domain.Character, cast []domain.CastAssignment) string {
	var b strings.Builder
	b.WriteString("- ")
	b.WriteString(ch.Name)
	if ch.Description != "" {
		b.WriteString(": ")
		b.WriteString(ch.Description)
	}
	for _, ca := range cast {
		if ca.Featured && ca.AppearancePrompt != "" {
			b.WriteString(" Physical appearance: ")
			b.WriteString(ca.AppearancePrompt)
			break
		}
	}
	b.WriteString(" (")
	b.WriteString(typeLabel(ch.Type))
	b.WriteString(")")
	return b.String()
}

func typeLabel(t domain.CharacterType) string {
	switch t {
	case domain.CharacterVoice:
		return "VO"
	case domain.CharacterAnimated:
		return "Animated"
	}
	return "Actor"
}

func findLocation(locs []domain.Location, id string) (domain.Location, bool) {
	if id == "" {
		return domain.Location{}, false
	}
	for _, l := range locs {
		if l.ID == id {
			return l, true
		}
	}
	return domain.Location{}, false
}

func neighbor(beats []domain.Beat, i int) (domain.Beat, bool) {
	if i < 0 || i >= len(beats) {
		return domain.Beat{}, false
	}
	return beats[i], true
}

// neighborContent joins a neighbor's audio and visual channels with " | ",
// skipping blank channels. Notes are deliberately excluded for neighbors.
func neighborContent(b domain.Beat) string {
	var parts []string
	if b.Audio != "" {
		parts = append(parts, b.Audio)
	}
	if b.Visual != "" {
		parts = append(parts, b.Visual)
	}
	return strings.Join(parts, " | ")
}
