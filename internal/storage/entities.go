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

	"github.com/google/uuid"

	"goscreenwriter/internal/domain"
)

// Characters, tags, locations and cast assignments. These are the entity
// lists mention rendering resolves against; beat text references them only
// by id or slug, so every operation here is independent of beat content.

// CreateCharacter inserts a character; a missing id or color gets defaults.
func (s *Store) CreateCharacter(ctx context.Context, c domain.Character) (domain.Character, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Type == "" {
		c.Type = domain.CharacterActor
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO characters (id, script_id, name, description, color, character_type, sort_order, max_cast_slots, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		c.ID, c.ScriptID, c.Name, c.Description, c.Color, string(c.Type), c.SortOrder, c.MaxCastSlots, nowRFC3339())
	if err != nil {
		return domain.Character{}, fmt.Errorf("insert character: %w", err)
	}
	return c, nil
}

// UpdateCharacter updates a character's editable fields. Renames take
// effect everywhere at the next render because mentions store the id.
func (s *Store) UpdateCharacter(ctx context.Context, c domain.Character) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE characters SET name=?, description=?, color=?, character_type=?, sort_order=?, max_cast_slots=? WHERE id=?`,
		c.Name, c.Description, c.Color, string(c.Type), c.SortOrder, c.MaxCastSlots, c.ID)
	if err != nil {
		return fmt.Errorf("update character: %w", err)
	}
	return requireRow(res, "character "+c.ID)
}

// DeleteCharacter removes a character. Stored mentions of it orphan and
// degrade to plain text at render time; nothing rewrites beat content.
func (s *Store) DeleteCharacter(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM characters WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	return requireRow(res, "character "+id)
}

// ListCharacters returns a script's characters in stored order.
func (s *Store) ListCharacters(ctx context.Context, scriptID string) ([]domain.Character, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, script_id, name, description, color, character_type, sort_order, max_cast_slots, created_at
		 FROM characters WHERE script_id=? ORDER BY sort_order, created_at, id`, scriptID)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()
	var out []domain.Character
	for rows.Next() {
		var c domain.Character
		var typ, created string
		var desc sql.NullString
		if err := rows.Scan(&c.ID, &c.ScriptID, &c.Name, &desc, &c.Color, &typ, &c.SortOrder, &c.MaxCastSlots, &created); err != nil {
			return nil, fmt.Errorf("scan character: %w", err)
		}
		c.Description = desc.String
		c.Type = domain.CharacterType(typ)
		c.CreatedAt = parseTime(created)
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateTag inserts a custom tag. The slug is derived from the name when
// absent and must be unique within the script.
func (s *Store) CreateTag(ctx context.Context, t domain.Tag) (domain.Tag, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Slug == "" {
		t.Slug = domain.Slugify(t.Name)
	}
	if t.Category == "" {
		t.Category = "custom"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tags (id, script_id, name, slug, category, color, created_at) VALUES (?,?,?,?,?,?,?)`,
		t.ID, t.ScriptID, t.Name, t.Slug, t.Category, t.Color, nowRFC3339())
	if err != nil {
		return domain.Tag{}, fmt.Errorf("insert tag: %w", err)
	}
	return t, nil
}

// UpdateTag updates name and color. The slug is immutable here: re-slugging
// a renamed tag would orphan every stored #[slug] mention of it.
func (s *Store) UpdateTag(ctx context.Context, t domain.Tag) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tags SET name=?, color=? WHERE id=?`, t.Name, t.Color, t.ID)
	if err != nil {
		return fmt.Errorf("update tag: %w", err)
	}
	return requireRow(res, "tag "+t.ID)
}

// DeleteTag removes a tag. Default tags are protected.
func (s *Store) DeleteTag(ctx context.Context, id string) error {
	var slug string
	err := s.db.QueryRowContext(ctx, `SELECT slug FROM tags WHERE id=?`, id).Scan(&slug)
	if err == sql.ErrNoRows {
		return fmt.Errorf("tag %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read tag: %w", err)
	}
	if domain.IsDefaultSlug(slug) {
		return fmt.Errorf("tag %q is a default tag and cannot be deleted", slug)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return requireRow(res, "tag "+id)
}

// ListTags returns a script's tags, defaults first in their seeded order.
func (s *Store) ListTags(ctx context.Context, scriptID string) ([]domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, script_id, name, slug, category, color, created_at
		 FROM tags WHERE script_id=? ORDER BY created_at, id`, scriptID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()
	var out []domain.Tag
	for rows.Next() {
		var t domain.Tag
		var created string
		if err := rows.Scan(&t.ID, &t.ScriptID, &t.Name, &t.Slug, &t.Category, &t.Color, &created); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		t.CreatedAt = parseTime(created)
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateLocation inserts a location.
func (s *Store) CreateLocation(ctx context.Context, l domain.Location) (domain.Location, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO locations (id, script_id, name, description, sort_order, global_location_id, created_at)
		 VALUES (?,?,?,?,?,?,?)`,
		l.ID, l.ScriptID, l.Name, l.Description, l.SortOrder, nullable(l.GlobalLocationID), nowRFC3339())
	if err != nil {
		return domain.Location{}, fmt.Errorf("insert location: %w", err)
	}
	return l, nil
}

// UpdateLocation updates a location's fields.
func (s *Store) UpdateLocation(ctx context.Context, l domain.Location) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE locations SET name=?, description=?, sort_order=?, global_location_id=? WHERE id=?`,
		l.Name, l.Description, l.SortOrder, nullable(l.GlobalLocationID), l.ID)
	if err != nil {
		return fmt.Errorf("update location: %w", err)
	}
	return requireRow(res, "location "+l.ID)
}

// DeleteLocation removes a location and detaches scenes pointing at it.
func (s *Store) DeleteLocation(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE scenes SET location_id=NULL WHERE location_id=?`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("detach scenes: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM locations WHERE id=?`, id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete location: %w", err)
	}
	if err := requireRow(res, "location "+id); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ListLocations returns a script's locations in stored order.
func (s *Store) ListLocations(ctx context.Context, scriptID string) ([]domain.Location, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, script_id, name, description, sort_order, global_location_id, created_at
		 FROM locations WHERE script_id=? ORDER BY sort_order, created_at, id`, scriptID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()
	var out []domain.Location
	for rows.Next() {
		var l domain.Location
		var created string
		var desc, global sql.NullString
		if err := rows.Scan(&l.ID, &l.ScriptID, &l.Name, &desc, &l.SortOrder, &global, &created); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		l.Description = desc.String
		l.GlobalLocationID = global.String
		l.CreatedAt = parseTime(created)
		out = append(out, l)
	}
	return out, rows.Err()
}

// SetCastAssignments replaces a character's cast list. Marking one
// assignment featured clears the flag on the others.
func (s *Store) SetCastAssignments(ctx context.Context, characterID string, cast []domain.CastAssignment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cast_assignments WHERE character_id=?`, characterID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear cast: %w", err)
	}
	now := nowRFC3339()
	for _, ca := range cast {
		id := ca.ID
		if id == "" {
			id = uuid.NewString()
		}
		featured := 0
		if ca.Featured {
			featured = 1
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cast_assignments (id, character_id, contact_id, slot_order, is_featured, appearance_prompt, created_at)
			 VALUES (?,?,?,?,?,?,?)`,
			id, characterID, ca.ContactID, ca.SlotOrder, featured, ca.AppearancePrompt, now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert cast: %w", err)
		}
	}
	return tx.Commit()
}

// ListCast returns all cast assignments of a script keyed by character id.
func (s *Store) ListCast(ctx context.Context, scriptID string) (map[string][]domain.CastAssignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ca.id, ca.character_id, ca.contact_id, ca.slot_order, ca.is_featured, ca.appearance_prompt, ca.created_at
		 FROM cast_assignments ca JOIN characters c ON ca.character_id = c.id
		 WHERE c.script_id=? ORDER BY ca.character_id, ca.slot_order`, scriptID)
	if err != nil {
		return nil, fmt.Errorf("list cast: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]domain.CastAssignment)
	for rows.Next() {
		var ca domain.CastAssignment
		var featured int
		var app sql.NullString
		var created string
		if err := rows.Scan(&ca.ID, &ca.CharacterID, &ca.ContactID, &ca.SlotOrder, &featured, &app, &created); err != nil {
			return nil, fmt.Errorf("scan cast: %w", err)
		}
		ca.Featured = featured != 0
		ca.AppearancePrompt = app.String
		ca.CreatedAt = parseTime(created)
		out[ca.CharacterID] = append(out[ca.CharacterID], ca)
	}
	return out, rows.Err()
}
