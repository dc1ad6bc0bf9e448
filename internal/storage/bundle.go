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
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"goscreenwriter/internal/domain"
)

// Bundle is the portable JSON form of one script version, used for
// export, backup and transfer between workspaces. Ids are carried verbatim
// so mention targets keep resolving after an import.
type Bundle struct {
	FormatVersion int                      `json:"formatVersion"`
	Script        domain.Script            `json:"script"`
	Scenes        []domain.Scene           `json:"scenes"`
	Beats         []domain.Beat            `json:"beats"`
	Characters    []domain.Character       `json:"characters"`
	Tags          []domain.Tag             `json:"tags"`
	Locations     []domain.Location        `json:"locations"`
	Cast          []domain.CastAssignment  `json:"cast"`
	Styles        []domain.StoryboardStyle `json:"styles,omitempty"`
}

// BundleFormatVersion is written to every exported bundle.
const BundleFormatVersion = 1

// bundleSchema validates the structural shape of an imported bundle before
// any row touches the database. Field-level semantics (valid status values,
// markup grammar) are checked by the domain code afterwards.
const bundleSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["formatVersion", "script", "scenes", "beats"],
	"properties": {
		"formatVersion": {"type": "integer", "minimum": 1},
		"script": {
			"type": "object",
			"required": ["id", "title"],
			"properties": {
				"id": {"type": "string", "minLength": 1},
				"title": {"type": "string"}
			}
		},
		"scenes": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "scriptId", "sortOrder"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"scriptId": {"type": "string", "minLength": 1},
					"sortOrder": {"type": "integer", "minimum": 0}
				}
			}
		},
		"beats": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "sceneId", "sortOrder"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"sceneId": {"type": "string", "minLength": 1},
					"sortOrder": {"type": "integer", "minimum": 0}
				}
			}
		},
		"characters": {"type": "array"},
		"tags": {"type": "array"},
		"locations": {"type": "array"},
		"cast": {"type": "array"},
		"styles": {"type": "array"}
	}
}`

// ExportBundle collects one script version into a Bundle.
func (s *Store) ExportBundle(ctx context.Context, scriptID string) (Bundle, error) {
	script, err := s.GetScript(ctx, scriptID)
	if err != nil {
		return Bundle{}, err
	}
	scenes, err := s.ListScenes(ctx, scriptID)
	if err != nil {
		return Bundle{}, err
	}
	beatsByScene, err := s.ListBeats(ctx, scriptID)
	if err != nil {
		return Bundle{}, err
	}
	var beats []domain.Beat
	for _, sc := range scenes {
		beats = append(beats, beatsByScene[sc.ID]...)
	}
	chars, err := s.ListCharacters(ctx, scriptID)
	if err != nil {
		return Bundle{}, err
	}
	tags, err := s.ListTags(ctx, scriptID)
	if err != nil {
		return Bundle{}, err
	}
	locs, err := s.ListLocations(ctx, scriptID)
	if err != nil {
		return Bundle{}, err
	}
	castByChar, err := s.ListCast(ctx, scriptID)
	if err != nil {
		return Bundle{}, err
	}
	var cast []domain.CastAssignment
	for _, c := range chars {
		cast = append(cast, castByChar[c.ID]...)
	}
	b := Bundle{
		FormatVersion: BundleFormatVersion,
		Script:        script,
		Scenes:        scenes,
		Beats:         beats,
		Characters:    chars,
		Tags:          tags,
		Locations:     locs,
		Cast:          cast,
	}
	if st, err := s.GetStyle(ctx, scriptID); err == nil {
		b.Styles = []domain.StoryboardStyle{st}
	}
	return b, nil
}

// ValidateBundle checks raw bundle JSON against the bundle schema and
// returns the decoded bundle.
func ValidateBundle(raw []byte) (Bundle, error) {
	res, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(bundleSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return Bundle{}, fmt.Errorf("validate bundle: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Bundle{}, fmt.Errorf("bundle is invalid: %v", msgs)
	}
	var b Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return Bundle{}, fmt.Errorf("decode bundle: %w", err)
	}
	return b, nil
}

// ImportBundle validates and inserts a bundle as a new script version.
// The bundle's own ids are kept; importing the same bundle twice fails on
// the primary key rather than silently duplicating.
func (s *Store) ImportBundle(ctx context.Context, raw []byte) (domain.Script, error) {
	b, err := ValidateBundle(raw)
	if err != nil {
		return domain.Script{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Script{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := nowRFC3339()
	sc := b.Script
	if sc.GroupID == "" {
		sc.GroupID = sc.ID
	}
	if sc.Status == "" || !sc.Status.Valid() {
		sc.Status = domain.StatusDraft
	}
	if sc.Version <= 0 {
		sc.Version = 1
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO scripts (id, group_id, project_id, title, status, version, notes, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		sc.ID, sc.GroupID, sc.ProjectID, sc.Title, string(sc.Status), sc.Version, sc.Notes, now, now); err != nil {
		return domain.Script{}, fmt.Errorf("import script: %w", err)
	}
	for _, c := range b.Characters {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO characters (id, script_id, name, description, color, character_type, sort_order, max_cast_slots, created_at)
			 VALUES (?,?,?,?,?,?,?,?,?)`,
			c.ID, sc.ID, c.Name, c.Description, c.Color, string(c.Type), c.SortOrder, c.MaxCastSlots, now); err != nil {
			return domain.Script{}, fmt.Errorf("import character: %w", err)
		}
	}
	for _, t := range b.Tags {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO tags (id, script_id, name, slug, category, color, created_at) VALUES (?,?,?,?,?,?,?)`,
			t.ID, sc.ID, t.Name, t.Slug, t.Category, t.Color, now); err != nil {
			return domain.Script{}, fmt.Errorf("import tag: %w", err)
		}
	}
	for _, l := range b.Locations {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO locations (id, script_id, name, description, sort_order, global_location_id, created_at)
			 VALUES (?,?,?,?,?,?,?)`,
			l.ID, sc.ID, l.Name, l.Description, l.SortOrder, nullable(l.GlobalLocationID), now); err != nil {
			return domain.Script{}, fmt.Errorf("import location: %w", err)
		}
	}
	for _, scn := range b.Scenes {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO scenes (id, script_id, sort_order, int_ext, location_name, location_id, time_of_day, notes, created_at)
			 VALUES (?,?,?,?,?,?,?,?,?)`,
			scn.ID, sc.ID, scn.SortOrder, string(scn.IntExt), scn.LocationName,
			nullable(scn.LocationID), scn.TimeOfDay, scn.Notes, now); err != nil {
			return domain.Script{}, fmt.Errorf("import scene: %w", err)
		}
	}
	for _, bt := range b.Beats {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO beats (id, scene_id, sort_order, audio_content, visual_content, notes_content, created_at, updated_at)
			 VALUES (?,?,?,?,?,?,?,?)`,
			bt.ID, bt.SceneID, bt.SortOrder, bt.Audio, bt.Visual, bt.Notes, now, now); err != nil {
			return domain.Script{}, fmt.Errorf("import beat: %w", err)
		}
		if err = upsertSearchRow(ctx, tx, bt.ID, searchText(bt.Audio, bt.Visual, bt.Notes)); err != nil {
			return domain.Script{}, err
		}
	}
	for _, ca := range b.Cast {
		featured := 0
		if ca.Featured {
			featured = 1
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO cast_assignments (id, character_id, contact_id, slot_order, is_featured, appearance_prompt, created_at)
			 VALUES (?,?,?,?,?,?,?)`,
			ca.ID, ca.CharacterID, ca.ContactID, ca.SlotOrder, featured, ca.AppearancePrompt, now); err != nil {
			return domain.Script{}, fmt.Errorf("import cast: %w", err)
		}
	}
	for _, st := range b.Styles {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO storyboard_styles (id, script_id, prompt, aspect_ratio, style_preset, created_at, updated_at)
			 VALUES (?,?,?,?,?,?,?)`,
			st.ID, sc.ID, st.Prompt, st.AspectRatio, nullable(st.Preset), now, now); err != nil {
			return domain.Script{}, fmt.Errorf("import style: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return domain.Script{}, fmt.Errorf("commit import: %w", err)
	}
	return sc, nil
}
