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
	"strings"

	"goscreenwriter/internal/domain"
	"goscreenwriter/internal/mention"
	"goscreenwriter/internal/order"
)

// The scene and beat methods implement the editor coordinator's Store
// interface plus the loaders the UI layer needs to open a script.

// CreateScene inserts a scene row.
func (s *Store) CreateScene(ctx context.Context, sc domain.Scene) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scenes (id, script_id, sort_order, int_ext, location_name, location_id, time_of_day, notes, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		sc.ID, sc.ScriptID, sc.SortOrder, string(sc.IntExt), sc.LocationName,
		nullable(sc.LocationID), sc.TimeOfDay, sc.Notes, nowRFC3339())
	if err != nil {
		return fmt.Errorf("insert scene: %w", err)
	}
	return nil
}

// UpdateScene updates a scene's heading fields.
func (s *Store) UpdateScene(ctx context.Context, sc domain.Scene) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scenes SET int_ext=?, location_name=?, location_id=?, time_of_day=?, notes=? WHERE id=?`,
		string(sc.IntExt), sc.LocationName, nullable(sc.LocationID), sc.TimeOfDay, sc.Notes, sc.ID)
	if err != nil {
		return fmt.Errorf("update scene: %w", err)
	}
	return requireRow(res, "scene "+sc.ID)
}

// DeleteScene removes a scene; its beats go with it via the cascade and
// their search rows are cleared in the same transaction.
func (s *Store) DeleteScene(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM beat_search WHERE beat_id IN (SELECT id FROM beats WHERE scene_id=?)`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear search rows: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM scenes WHERE id=?`, id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete scene: %w", err)
	}
	if err := requireRow(res, "scene "+id); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ReorderScenes writes a batch of sort-key updates in one transaction.
func (s *Store) ReorderScenes(ctx context.Context, scriptID string, ups []order.Update) error {
	return s.applyOrder(ctx, "scenes", "script_id", scriptID, ups)
}

// CreateBeat inserts a beat row and its search row.
func (s *Store) CreateBeat(ctx context.Context, b domain.Beat) error {
	now := nowRFC3339()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO beats (id, scene_id, sort_order, audio_content, visual_content, notes_content, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		b.ID, b.SceneID, b.SortOrder, b.Audio, b.Visual, b.Notes, now, now); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert beat: %w", err)
	}
	if err := upsertSearchRow(ctx, tx, b.ID, searchText(b.Audio, b.Visual, b.Notes)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// UpdateBeatField writes one content channel and refreshes the beat's
// search row. The field name is validated against the known channels
// before being spliced into SQL.
func (s *Store) UpdateBeatField(ctx context.Context, beatID string, f domain.BeatField, value string) error {
	if !f.Valid() {
		return fmt.Errorf("update beat %s: unknown field %q", beatID, f)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE beats SET `+string(f)+`=?, updated_at=? WHERE id=?`, value, nowRFC3339(), beatID)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update beat field: %w", err)
	}
	if err := requireRow(res, "beat "+beatID); err != nil {
		_ = tx.Rollback()
		return err
	}
	var audio, visual, notes string
	if err := tx.QueryRowContext(ctx,
		`SELECT audio_content, visual_content, notes_content FROM beats WHERE id=?`, beatID).
		Scan(&audio, &visual, &notes); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("reread beat: %w", err)
	}
	if err := upsertSearchRow(ctx, tx, beatID, searchText(audio, visual, notes)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// DeleteBeat removes a beat and its search row.
func (s *Store) DeleteBeat(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM beat_search WHERE beat_id=?`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear search row: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM beats WHERE id=?`, id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete beat: %w", err)
	}
	if err := requireRow(res, "beat "+id); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ReorderBeats writes a batch of sort-key updates in one transaction.
func (s *Store) ReorderBeats(ctx context.Context, sceneID string, ups []order.Update) error {
	return s.applyOrder(ctx, "beats", "scene_id", sceneID, ups)
}

// applyOrder updates sort keys for rows of one sibling group. The parent
// column guard keeps a stray update from touching another group's rows.
func (s *Store) applyOrder(ctx context.Context, table, parentCol, parentID string, ups []order.Update) error {
	if len(ups) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	for _, u := range ups {
		res, err := tx.ExecContext(ctx,
			`UPDATE `+table+` SET sort_order=? WHERE id=? AND `+parentCol+`=?`, u.SortOrder, u.ID, parentID)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("reorder %s: %w", table, err)
		}
		if err := requireRow(res, table+" "+u.ID); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// ListScenes loads a script's scenes in display order.
func (s *Store) ListScenes(ctx context.Context, scriptID string) ([]domain.Scene, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, script_id, sort_order, int_ext, location_name, location_id, time_of_day, notes, created_at
		 FROM scenes WHERE script_id=? ORDER BY sort_order, id`, scriptID)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()
	var out []domain.Scene
	for rows.Next() {
		var sc domain.Scene
		var intExt, created string
		var locID, notes sql.NullString
		if err := rows.Scan(&sc.ID, &sc.ScriptID, &sc.SortOrder, &intExt, &sc.LocationName, &locID, &sc.TimeOfDay, &notes, &created); err != nil {
			return nil, fmt.Errorf("scan scene: %w", err)
		}
		sc.IntExt = domain.IntExt(intExt)
		sc.LocationID = locID.String
		sc.Notes = notes.String
		sc.CreatedAt = parseTime(created)
		out = append(out, sc)
	}
	return out, rows.Err()
}

// ListBeats loads all beats of a script keyed by scene id, each scene's
// list in display order.
func (s *Store) ListBeats(ctx context.Context, scriptID string) (map[string][]domain.Beat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT b.id, b.scene_id, b.sort_order, b.audio_content, b.visual_content, b.notes_content, b.created_at, b.updated_at
		 FROM beats b JOIN scenes sc ON b.scene_id = sc.id
		 WHERE sc.script_id=? ORDER BY b.scene_id, b.sort_order, b.id`, scriptID)
	if err != nil {
		return nil, fmt.Errorf("list beats: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]domain.Beat)
	for rows.Next() {
		var b domain.Beat
		var created, updated string
		if err := rows.Scan(&b.ID, &b.SceneID, &b.SortOrder, &b.Audio, &b.Visual, &b.Notes, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan beat: %w", err)
		}
		b.CreatedAt = parseTime(created)
		b.UpdatedAt = parseTime(updated)
		out[b.SceneID] = append(out[b.SceneID], b)
	}
	return out, rows.Err()
}

// searchText flattens the three channels to markup-free text for the FTS
// index, keeping @Name and #slug tokens searchable.
func searchText(audio, visual, notes string) string {
	parts := make([]string, 0, 3)
	for _, c := range []string{audio, visual, notes} {
		if t := strings.TrimSpace(mention.StripMarkup(c)); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

func upsertSearchRow(ctx context.Context, tx *sql.Tx, beatID, text string) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO beat_search (beat_id, text) VALUES (?,?)
		 ON CONFLICT(beat_id) DO UPDATE SET text=excluded.text`, beatID, text); err != nil {
		return fmt.Errorf("upsert search row: %w", err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
