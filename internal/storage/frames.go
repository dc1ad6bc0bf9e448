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

	"github.com/google/uuid"

	"goscreenwriter/internal/domain"
)

// Storyboard styles and frames. One style row per script; one frame per
// beat, replaced on regeneration.

// GetStyle returns a script's storyboard style, or ErrNotFound.
func (s *Store) GetStyle(ctx context.Context, scriptID string) (domain.StoryboardStyle, error) {
	var st domain.StoryboardStyle
	var preset sql.NullString
	var created, updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, script_id, prompt, aspect_ratio, style_preset, created_at, updated_at
		 FROM storyboard_styles WHERE script_id=?`, scriptID).
		Scan(&st.ID, &st.ScriptID, &st.Prompt, &st.AspectRatio, &preset, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StoryboardStyle{}, fmt.Errorf("style for script %q: %w", scriptID, ErrNotFound)
	}
	if err != nil {
		return domain.StoryboardStyle{}, fmt.Errorf("read style: %w", err)
	}
	st.Preset = preset.String
	st.CreatedAt = parseTime(created)
	st.UpdatedAt = parseTime(updated)
	return st, nil
}

// PutStyle inserts or replaces a script's storyboard style.
func (s *Store) PutStyle(ctx context.Context, st domain.StoryboardStyle) (domain.StoryboardStyle, error) {
	now := nowRFC3339()
	existing, err := s.GetStyle(ctx, st.ScriptID)
	switch {
	case errors.Is(err, ErrNotFound):
		if st.ID == "" {
			st.ID = uuid.NewString()
		}
		if st.AspectRatio == "" {
			st.AspectRatio = "16:9"
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO storyboard_styles (id, script_id, prompt, aspect_ratio, style_preset, created_at, updated_at)
			 VALUES (?,?,?,?,?,?,?)`,
			st.ID, st.ScriptID, st.Prompt, st.AspectRatio, nullable(st.Preset), now, now); err != nil {
			return domain.StoryboardStyle{}, fmt.Errorf("insert style: %w", err)
		}
		return st, nil
	case err != nil:
		return domain.StoryboardStyle{}, err
	default:
		st.ID = existing.ID
		if _, err := s.db.ExecContext(ctx,
			`UPDATE storyboard_styles SET prompt=?, aspect_ratio=?, style_preset=?, updated_at=? WHERE id=?`,
			st.Prompt, st.AspectRatio, nullable(st.Preset), now, st.ID); err != nil {
			return domain.StoryboardStyle{}, fmt.Errorf("update style: %w", err)
		}
		return st, nil
	}
}

// PutFrame records a frame for a beat, replacing a previous one.
func (s *Store) PutFrame(ctx context.Context, f domain.StoryboardFrame) (domain.StoryboardFrame, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Source == "" {
		f.Source = "generated"
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.StoryboardFrame{}, fmt.Errorf("begin tx: %w", err)
	}
	if f.BeatID != "" {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM storyboard_frames WHERE beat_id=?`, f.BeatID); err != nil {
			_ = tx.Rollback()
			return domain.StoryboardFrame{}, fmt.Errorf("replace frame: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO storyboard_frames (id, script_id, beat_id, scene_id, image_url, storage_path, source, prompt_used, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		f.ID, f.ScriptID, nullable(f.BeatID), nullable(f.SceneID), f.ImageURL,
		nullable(f.StoragePath), f.Source, nullable(f.PromptUsed), nowRFC3339()); err != nil {
		_ = tx.Rollback()
		return domain.StoryboardFrame{}, fmt.Errorf("insert frame: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.StoryboardFrame{}, fmt.Errorf("commit: %w", err)
	}
	return f, nil
}

// DeleteFrame removes one frame.
func (s *Store) DeleteFrame(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM storyboard_frames WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete frame: %w", err)
	}
	return requireRow(res, "frame "+id)
}

// ListFrames returns a script's frames keyed by beat id. Frames without a
// beat reference (scene-level uploads) are keyed by scene id instead.
func (s *Store) ListFrames(ctx context.Context, scriptID string) (map[string]domain.StoryboardFrame, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, script_id, beat_id, scene_id, image_url, storage_path, source, prompt_used, created_at
		 FROM storyboard_frames WHERE script_id=?`, scriptID)
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	defer rows.Close()
	out := make(map[string]domain.StoryboardFrame)
	for rows.Next() {
		var f domain.StoryboardFrame
		var beatID, sceneID, path, promptUsed sql.NullString
		var created string
		if err := rows.Scan(&f.ID, &f.ScriptID, &beatID, &sceneID, &f.ImageURL, &path, &f.Source, &promptUsed, &created); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		f.BeatID = beatID.String
		f.SceneID = sceneID.String
		f.StoragePath = path.String
		f.PromptUsed = promptUsed.String
		f.CreatedAt = parseTime(created)
		key := f.BeatID
		if key == "" {
			key = f.SceneID
		}
		out[key] = f
	}
	return out, rows.Err()
}
