/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model for the screenwriting tool: a Script
// owns ordered Scenes, each Scene owns ordered Beats, and Characters, Tags
// and Locations are owned by the Script but only weakly referenced (by id or
// slug) from beat text, so entity lists and text content can be edited and
// persisted independently.

import "time"

// ScriptStatus is the editorial state of a script version.
type ScriptStatus string

const (
	StatusDraft  ScriptStatus = "draft"
	StatusReview ScriptStatus = "review"
	StatusLocked ScriptStatus = "locked"
)

// Valid reports whether s is one of the known statuses.
func (s ScriptStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusReview, StatusLocked:
		return true
	}
	return false
}

// IntExt marks a scene heading as interior, exterior, or both.
type IntExt string

const (
	Interior    IntExt = "INT"
	Exterior    IntExt = "EXT"
	IntExterior IntExt = "INT/EXT"
)

func (ie IntExt) Valid() bool {
	switch ie {
	case Interior, Exterior, IntExterior:
		return true
	}
	return false
}

// CharacterType distinguishes on-screen actors, voice-over and animated
// characters.
type CharacterType string

const (
	CharacterActor    CharacterType = "actor"
	CharacterVoice    CharacterType = "vo"
	CharacterAnimated CharacterType = "animated"
)

func (ct CharacterType) Valid() bool {
	switch ct {
	case CharacterActor, CharacterVoice, CharacterAnimated:
		return true
	}
	return false
}

// Script is one version of a screenplay. Versions are full-copy forks that
// share a GroupID; history is never mutated in place.
type Script struct {
	ID        string       `json:"id"`
	GroupID   string       `json:"groupId,omitempty"`
	ProjectID string       `json:"projectId,omitempty"`
	Title     string       `json:"title"`
	Status    ScriptStatus `json:"status"`
	Version   int          `json:"version"`
	Notes     string       `json:"notes,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Scene belongs to exactly one Script. SortOrder values among siblings are
// contiguous small integers recomputed on reorder; ties are broken by ID at
// read time. Deleting a scene cascades to its beats.
type Scene struct {
	ID           string    `json:"id"`
	ScriptID     string    `json:"scriptId"`
	SortOrder    int       `json:"sortOrder"`
	IntExt       IntExt    `json:"intExt"`
	LocationName string    `json:"locationName"`
	LocationID   string    `json:"locationId,omitempty"`
	TimeOfDay    string    `json:"timeOfDay"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// BeatField names one of a beat's three parallel text channels. The values
// match the persisted column names.
type BeatField string

const (
	FieldAudio  BeatField = "audio_content"
	FieldVisual BeatField = "visual_content"
	FieldNotes  BeatField = "notes_content"
)

func (f BeatField) Valid() bool {
	switch f {
	case FieldAudio, FieldVisual, FieldNotes:
		return true
	}
	return false
}

// Beat is the smallest addressable unit of screenplay content. The three
// content fields hold storage markup: **bold**, @[Name](id) character
// mentions and #[slug] tag mentions, everything else literal.
type Beat struct {
	ID        string    `json:"id"`
	SceneID   string    `json:"sceneId"`
	SortOrder int       `json:"sortOrder"`
	Audio     string    `json:"audioContent"`
	Visual    string    `json:"visualContent"`
	Notes     string    `json:"notesContent"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Content returns the named channel.
func (b Beat) Content(f BeatField) string {
	switch f {
	case FieldAudio:
		return b.Audio
	case FieldVisual:
		return b.Visual
	case FieldNotes:
		return b.Notes
	}
	return ""
}

// SetContent updates the named channel in place.
func (b *Beat) SetContent(f BeatField, v string) {
	switch f {
	case FieldAudio:
		b.Audio = v
	case FieldVisual:
		b.Visual = v
	case FieldNotes:
		b.Notes = v
	}
}

// Empty reports whether all three channels are blank.
func (b Beat) Empty() bool {
	return b.Audio == "" && b.Visual == "" && b.Notes == ""
}

// Character is referenced from beat text by ID, never by name, so renames do
// not require rewriting stored content.
type Character struct {
	ID           string        `json:"id"`
	ScriptID     string        `json:"scriptId"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Color        string        `json:"color"`
	Type         CharacterType `json:"characterType"`
	SortOrder    int           `json:"sortOrder"`
	MaxCastSlots int           `json:"maxCastSlots,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Tag is referenced from beat text by slug. Slugs of default tags are
// stable; renaming a custom tag may re-slug it, which orphans existing
// mentions (kept as-is, see DESIGN.md).
type Tag struct {
	ID        string    `json:"id"`
	ScriptID  string    `json:"scriptId"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Category  string    `json:"category"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

// Location is an optional named place a scene heading can link to.
type Location struct {
	ID               string    `json:"id"`
	ScriptID         string    `json:"scriptId"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	SortOrder        int       `json:"sortOrder"`
	GlobalLocationID string    `json:"globalLocationId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// CastAssignment maps a Character to a real person. The featured assignment
// supplies the appearance text used by prompt assembly.
type CastAssignment struct {
	ID               string    `json:"id"`
	CharacterID      string    `json:"characterId"`
	ContactID        string    `json:"contactId"`
	SlotOrder        int       `json:"slotOrder"`
	Featured         bool      `json:"isFeatured"`
	AppearancePrompt string    `json:"appearancePrompt,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// StoryboardStyle holds per-script generation parameters.
type StoryboardStyle struct {
	ID          string    `json:"id"`
	ScriptID    string    `json:"scriptId"`
	Prompt      string    `json:"prompt"`
	AspectRatio string    `json:"aspectRatio"`
	Preset      string    `json:"stylePreset,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// StoryboardFrame is an image reference returned by the generation service.
// PromptUsed records the exact brief so regeneration can be skipped when the
// beat has not changed since.
type StoryboardFrame struct {
	ID          string    `json:"id"`
	ScriptID    string    `json:"scriptId"`
	BeatID      string    `json:"beatId,omitempty"`
	SceneID     string    `json:"sceneId,omitempty"`
	ImageURL    string    `json:"imageUrl"`
	StoragePath string    `json:"storagePath,omitempty"`
	Source      string    `json:"source"`
	PromptUsed  string    `json:"promptUsed,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
