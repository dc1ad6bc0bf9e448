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
	"errors"
	"fmt"

	"log/slog"

	"github.com/google/uuid"

	"goscreenwriter/internal/domain"
	"goscreenwriter/internal/mention"
)

// CreateScript inserts a script version and seeds the default tag set.
// Missing IDs, group id, status and version get sensible defaults.
func (s *Store) CreateScript(ctx context.Context, sc domain.Script) (domain.Script, error) {
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	if sc.GroupID == "" {
		sc.GroupID = sc.ID
	}
	if sc.Status == "" {
		sc.Status = domain.StatusDraft
	}
	if sc.Version <= 0 {
		sc.Version = 1
	}
	now := nowRFC3339()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Script{}, fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO scripts (id, group_id, project_id, title, status, version, notes, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		sc.ID, sc.GroupID, sc.ProjectID, sc.Title, string(sc.Status), sc.Version, sc.Notes, now, now); err != nil {
		_ = tx.Rollback()
		return domain.Script{}, fmt.Errorf("insert script: %w", err)
	}
	for _, t := range domain.DefaultTags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tags (id, script_id, name, slug, category, color, created_at) VALUES (?,?,?,?,?,?,?)`,
			uuid.NewString(), sc.ID, t.Name, t.Slug, t.Category, t.Color, now); err != nil {
			_ = tx.Rollback()
			return domain.Script{}, fmt.Errorf("seed tag %s: %w", t.Slug, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.Script{}, fmt.Errorf("commit: %w", err)
	}
	sc.CreatedAt = parseTime(now)
	sc.UpdatedAt = sc.CreatedAt
	s.log.Info("script created", slog.String("script", sc.ID), slog.Int("version", sc.Version))
	return sc, nil
}

// GetScript loads one script version header.
func (s *Store) GetScript(ctx context.Context, id string) (domain.Script, error) {
	var sc domain.Script
	var status, created, updated string
	var projectID, notes sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, project_id, title, status, version, notes, created_at, updated_at
		 FROM scripts WHERE id=?`, id).
		Scan(&sc.ID, &sc.GroupID, &projectID, &sc.Title, &status, &sc.Version, &notes, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Script{}, fmt.Errorf("script %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Script{}, fmt.Errorf("read script: %w", err)
	}
	sc.ProjectID = projectID.String
	sc.Notes = notes.String
	sc.Status = domain.ScriptStatus(status)
	sc.CreatedAt = parseTime(created)
	sc.UpdatedAt = parseTime(updated)
	return sc, nil
}

// ListScripts returns every script version in the workspace, most recently
// updated first.
func (s *Store) ListScripts(ctx context.Context) ([]domain.Script, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, project_id, title, status, version, notes, created_at, updated_at
		 FROM scripts ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list scripts: %w", err)
	}
	defer rows.Close()
	var out []domain.Script
	for rows.Next() {
		var sc domain.Script
		var status, created, updated string
		var projectID, notes sql.NullString
		if err := rows.Scan(&sc.ID, &sc.GroupID, &projectID, &sc.Title, &status, &sc.Version, &notes, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan script: %w", err)
		}
		sc.ProjectID = projectID.String
		sc.Notes = notes.String
		sc.Status = domain.ScriptStatus(status)
		sc.CreatedAt = parseTime(created)
		sc.UpdatedAt = parseTime(updated)
		out = append(out, sc)
	}
	return out, rows.Err()
}

// ListVersions returns all versions in a script group, newest first.
func (s *Store) ListVersions(ctx context.Context, groupID string) ([]domain.Script, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM scripts WHERE group_id=? ORDER BY version DESC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.Script, 0, len(ids))
	for _, id := range ids {
		sc, err := s.GetScript(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}

// UpdateScript updates the mutable header fields of a script version.
func (s *Store) UpdateScript(ctx context.Context, sc domain.Script) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scripts SET title=?, status=?, notes=?, updated_at=? WHERE id=?`,
		sc.Title, string(sc.Status), sc.Notes, nowRFC3339(), sc.ID)
	if err != nil {
		return fmt.Errorf("update script: %w", err)
	}
	return requireRow(res, "script "+sc.ID)
}

// DeleteScript removes a script version and, via cascades, everything it
// owns. Search rows for its beats are cleaned up explicitly since they are
// keyed by beat id, not foreign key.
func (s *Store) DeleteScript(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM beat_search WHERE beat_id IN (
			SELECT b.id FROM beats b JOIN scenes sc ON b.scene_id = sc.id WHERE sc.script_id=?
		)`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear search rows: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM scripts WHERE id=?`, id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete script: %w", err)
	}
	if err := requireRow(res, "script "+id); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ForkVersion copies a full script version into a new draft with the next
// version number in the group. All owned rows are duplicated under fresh
// ids; character mention targets inside beat text are rewritten to the new
// character ids so mentions keep resolving in the fork.
func (s *Store) ForkVersion(ctx context.Context, scriptID string) (domain.Script, error) {
	src, err := s.GetScript(ctx, scriptID)
	if err != nil {
		return domain.Script{}, err
	}
	var maxVer int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version),0) FROM scripts WHERE group_id=?`, src.GroupID).Scan(&maxVer); err != nil {
		return domain.Script{}, fmt.Errorf("read max version: %w", err)
	}

	fork := src
	fork.ID = uuid.NewString()
	fork.Version = maxVer + 1
	fork.Status = domain.StatusDraft
	now := nowRFC3339()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Script{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO scripts (id, group_id, project_id, title, status, version, notes, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		fork.ID, fork.GroupID, fork.ProjectID, fork.Title, string(fork.Status), fork.Version, fork.Notes, now, now); err != nil {
		return domain.Script{}, fmt.Errorf("insert fork: %w", err)
	}

	charIDMap, err := forkCopy(ctx, tx, "characters", scriptID, fork.ID,
		[]string{"name", "description", "color", "character_type", "sort_order", "max_cast_slots"})
	if err != nil {
		return domain.Script{}, err
	}
	locIDMap, err := forkCopy(ctx, tx, "locations", scriptID, fork.ID,
		[]string{"name", "description", "sort_order", "global_location_id"})
	if err != nil {
		return domain.Script{}, err
	}
	if _, err = forkCopy(ctx, tx, "tags", scriptID, fork.ID,
		[]string{"name", "slug", "category", "color"}); err != nil {
		return domain.Script{}, err
	}
	if _, err = forkCopy(ctx, tx, "storyboard_styles", scriptID, fork.ID,
		[]string{"prompt", "aspect_ratio", "style_preset"}); err != nil {
		return domain.Script{}, err
	}

	// Cast assignments hang off characters, not the script.
	for oldChar, newChar := range charIDMap {
		rows, qerr := tx.QueryContext(ctx,
			`SELECT contact_id, slot_order, is_featured, appearance_prompt FROM cast_assignments WHERE character_id=?`, oldChar)
		if qerr != nil {
			err = fmt.Errorf("read cast: %w", qerr)
			return domain.Script{}, err
		}
		type castRow struct {
			contact  string
			slot     int
			featured int
			app      sql.NullString
		}
		var cast []castRow
		for rows.Next() {
			var r castRow
			if err = rows.Scan(&r.contact, &r.slot, &r.featured, &r.app); err != nil {
				rows.Close()
				return domain.Script{}, fmt.Errorf("scan cast: %w", err)
			}
			cast = append(cast, r)
		}
		rows.Close()
		if err = rows.Err(); err != nil {
			return domain.Script{}, err
		}
		for _, r := range cast {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO cast_assignments (id, character_id, contact_id, slot_order, is_featured, appearance_prompt, created_at)
				 VALUES (?,?,?,?,?,?,?)`,
				uuid.NewString(), newChar, r.contact, r.slot, r.featured, r.app, now); err != nil {
				return domain.Script{}, fmt.Errorf("copy cast: %w", err)
			}
		}
	}

	// Scenes and beats, preserving order and remapping location references.
	sceneRows, qerr := tx.QueryContext(ctx,
		`SELECT id, sort_order, int_ext, location_name, location_id, time_of_day, notes
		 FROM scenes WHERE script_id=? ORDER BY sort_order, id`, scriptID)
	if qerr != nil {
		err = fmt.Errorf("read scenes: %w", qerr)
		return domain.Script{}, err
	}
	type sceneRow struct {
		id, intExt, locName, timeOfDay string
		locID, notes                   sql.NullString
		sortOrder                      int
	}
	var srcScenes []sceneRow
	for sceneRows.Next() {
		var r sceneRow
		if err = sceneRows.Scan(&r.id, &r.sortOrder, &r.intExt, &r.locName, &r.locID, &r.timeOfDay, &r.notes); err != nil {
			sceneRows.Close()
			return domain.Script{}, fmt.Errorf("scan scene: %w", err)
		}
		srcScenes = append(srcScenes, r)
	}
	sceneRows.Close()
	if err = sceneRows.Err(); err != nil {
		return domain.Script{}, err
	}

	for _, sr := range srcScenes {
		newSceneID := uuid.NewString()
		locID := sr.locID
		if locID.Valid {
			if mapped, ok := locIDMap[locID.String]; ok {
				locID = sql.NullString{String: mapped, Valid: true}
			}
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO scenes (id, script_id, sort_order, int_ext, location_name, location_id, time_of_day, notes, created_at)
			 VALUES (?,?,?,?,?,?,?,?,?)`,
			newSceneID, fork.ID, sr.sortOrder, sr.intExt, sr.locName, locID, sr.timeOfDay, sr.notes, now); err != nil {
			return domain.Script{}, fmt.Errorf("copy scene: %w", err)
		}

		beatRows, qerr := tx.QueryContext(ctx,
			`SELECT sort_order, audio_content, visual_content, notes_content FROM beats WHERE scene_id=? ORDER BY sort_order, id`, sr.id)
		if qerr != nil {
			err = fmt.Errorf("read beats: %w", qerr)
			return domain.Script{}, err
		}
		type beatRow struct {
			sortOrder            int
			audio, visual, notes string
		}
		var srcBeats []beatRow
		for beatRows.Next() {
			var r beatRow
			if err = beatRows.Scan(&r.sortOrder, &r.audio, &r.visual, &r.notes); err != nil {
				beatRows.Close()
				return domain.Script{}, fmt.Errorf("scan beat: %w", err)
			}
			srcBeats = append(srcBeats, r)
		}
		beatRows.Close()
		if err = beatRows.Err(); err != nil {
			return domain.Script{}, err
		}

		for _, br := range srcBeats {
			audio := mention.RewriteCharacterIDs(br.audio, charIDMap)
			visual := mention.RewriteCharacterIDs(br.visual, charIDMap)
			notes := mention.RewriteCharacterIDs(br.notes, charIDMap)
			newBeatID := uuid.NewString()
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO beats (id, scene_id, sort_order, audio_content, visual_content, notes_content, created_at, updated_at)
				 VALUES (?,?,?,?,?,?,?,?)`,
				newBeatID, newSceneID, br.sortOrder, audio, visual, notes, now, now); err != nil {
				return domain.Script{}, fmt.Errorf("copy beat: %w", err)
			}
			if err = upsertSearchRow(ctx, tx, newBeatID, searchText(audio, visual, notes)); err != nil {
				return domain.Script{}, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return domain.Script{}, fmt.Errorf("commit fork: %w", err)
	}
	s.log.Info("script forked",
		slog.String("from", scriptID), slog.String("to", fork.ID), slog.Int("version", fork.Version))
	fork.CreatedAt = parseTime(now)
	fork.UpdatedAt = fork.CreatedAt
	return fork, nil
}

// forkCopy duplicates script-owned rows of one table under fresh ids and
// returns the old-to-new id mapping. cols are the payload columns carried
// over verbatim.
func forkCopy(ctx context.Context, tx *sql.Tx, table, fromScript, toScript string, cols []string) (map[string]string, error) {
	colList := ""
	for _, c := range cols {
		colList += ", " + c
	}
	rows, err := tx.QueryContext(ctx,
		`SELECT id`+colList+` FROM `+table+` WHERE script_id=?`, fromScript)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	var ids []string
	var payloads [][]any
	for rows.Next() {
		vals := make([]any, len(cols)+1)
		ptrs := make([]any, len(cols)+1)
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		id, _ := vals[0].(string)
		ids = append(ids, id)
		payloads = append(payloads, vals[1:])
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	idMap := make(map[string]string, len(ids))
	now := nowRFC3339()
	placeholders := ""
	for range cols {
		placeholders += ",?"
	}
	hasUpdated := table == "storyboard_styles"
	for i, id := range ids {
		newID := uuid.NewString()
		idMap[id] = newID
		args := append([]any{newID, toScript}, payloads[i]...)
		q := `INSERT INTO ` + table + ` (id, script_id` + colList + `, created_at) VALUES (?,?` + placeholders + `,?)`
		args = append(args, now)
		if hasUpdated {
			q = `INSERT INTO ` + table + ` (id, script_id` + colList + `, created_at, updated_at) VALUES (?,?` + placeholders + `,?,?)`
			args = append(args, now)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return nil, fmt.Errorf("copy %s row: %w", table, err)
		}
	}
	return idMap, nil
}

func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
