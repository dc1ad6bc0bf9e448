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
	"database/sql"
	"fmt"
)

// ensureSchema creates the entity tables and the beat search index if they
// do not exist. All content tables hang off scripts via cascading foreign
// keys, so deleting a script version removes its whole tree.
func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS scripts (
			id         TEXT PRIMARY KEY,
			group_id   TEXT NOT NULL,
			project_id TEXT,
			title      TEXT NOT NULL,
			status     TEXT NOT NULL DEFAULT 'draft',
			version    INTEGER NOT NULL DEFAULT 1,
			notes      TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_scripts_group ON scripts(group_id, version);`,

		`CREATE TABLE IF NOT EXISTS scenes (
			id            TEXT PRIMARY KEY,
			script_id     TEXT NOT NULL REFERENCES scripts(id) ON DELETE CASCADE,
			sort_order    INTEGER NOT NULL,
			int_ext       TEXT NOT NULL,
			location_name TEXT NOT NULL DEFAULT '',
			location_id   TEXT,
			time_of_day   TEXT NOT NULL DEFAULT '',
			notes         TEXT,
			created_at    TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_scenes_script ON scenes(script_id, sort_order);`,

		`CREATE TABLE IF NOT EXISTS beats (
			id             TEXT PRIMARY KEY,
			scene_id       TEXT NOT NULL REFERENCES scenes(id) ON DELETE CASCADE,
			sort_order     INTEGER NOT NULL,
			audio_content  TEXT NOT NULL DEFAULT '',
			visual_content TEXT NOT NULL DEFAULT '',
			notes_content  TEXT NOT NULL DEFAULT '',
			created_at     TEXT NOT NULL,
			updated_at     TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_beats_scene ON beats(scene_id, sort_order);`,

		`CREATE TABLE IF NOT EXISTS characters (
			id             TEXT PRIMARY KEY,
			script_id      TEXT NOT NULL REFERENCES scripts(id) ON DELETE CASCADE,
			name           TEXT NOT NULL,
			description    TEXT,
			color          TEXT NOT NULL DEFAULT '',
			character_type TEXT NOT NULL DEFAULT 'actor',
			sort_order     INTEGER NOT NULL DEFAULT 0,
			max_cast_slots INTEGER NOT NULL DEFAULT 0,
			created_at     TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_characters_script ON characters(script_id, sort_order);`,

		`CREATE TABLE IF NOT EXISTS tags (
			id         TEXT PRIMARY KEY,
			script_id  TEXT NOT NULL REFERENCES scripts(id) ON DELETE CASCADE,
			name       TEXT NOT NULL,
			slug       TEXT NOT NULL,
			category   TEXT NOT NULL DEFAULT 'custom',
			color      TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			UNIQUE(script_id, slug)
		);`,

		`CREATE TABLE IF NOT EXISTS locations (
			id                 TEXT PRIMARY KEY,
			script_id          TEXT NOT NULL REFERENCES scripts(id) ON DELETE CASCADE,
			name               TEXT NOT NULL,
			description        TEXT,
			sort_order         INTEGER NOT NULL DEFAULT 0,
			global_location_id TEXT,
			created_at         TEXT NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS cast_assignments (
			id                TEXT PRIMARY KEY,
			character_id      TEXT NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
			contact_id        TEXT NOT NULL,
			slot_order        INTEGER NOT NULL DEFAULT 0,
			is_featured       INTEGER NOT NULL DEFAULT 0,
			appearance_prompt TEXT,
			created_at        TEXT NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS storyboard_styles (
			id           TEXT PRIMARY KEY,
			script_id    TEXT NOT NULL REFERENCES scripts(id) ON DELETE CASCADE,
			prompt       TEXT NOT NULL DEFAULT '',
			aspect_ratio TEXT NOT NULL DEFAULT '16:9',
			style_preset TEXT,
			created_at   TEXT NOT NULL,
			updated_at   TEXT NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS storyboard_frames (
			id           TEXT PRIMARY KEY,
			script_id    TEXT NOT NULL REFERENCES scripts(id) ON DELETE CASCADE,
			beat_id      TEXT REFERENCES beats(id) ON DELETE CASCADE,
			scene_id     TEXT,
			image_url    TEXT NOT NULL,
			storage_path TEXT,
			source       TEXT NOT NULL DEFAULT 'generated',
			prompt_used  TEXT,
			created_at   TEXT NOT NULL
		);`,

		// Search rows: one per beat, text filled with markup-stripped
		// content. Kept in a side table so the FTS index can stay
		// contentless and trigger-fed like the rest of the rowid plumbing.
		`CREATE TABLE IF NOT EXISTS beat_search (
			rowid   INTEGER PRIMARY KEY,
			beat_id TEXT NOT NULL UNIQUE,
			text    TEXT NOT NULL
		);`,

		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_beats USING fts5(
			text,
			content='',
			tokenize = 'unicode61'
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS beat_search_ai AFTER INSERT ON beat_search BEGIN
			INSERT INTO fts_beats(rowid, text) VALUES (new.rowid, new.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS beat_search_ad AFTER DELETE ON beat_search BEGIN
			INSERT INTO fts_beats(fts_beats, rowid, text) VALUES ('delete', old.rowid, old.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS beat_search_au AFTER UPDATE OF text ON beat_search BEGIN
			INSERT INTO fts_beats(fts_beats, rowid, text) VALUES ('delete', old.rowid, old.text);
			INSERT INTO fts_beats(rowid, text) VALUES (new.rowid, new.text);
		END;`,
	}
	for _, q := range triggers {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts triggers: %w", err)
		}
	}
	return nil
}
