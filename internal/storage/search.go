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
	"fmt"
	"strings"
)

// SearchQuery describes an in-app beat search request. Text uses SQLite
// FTS5 syntax (simple terms, phrases in quotes, AND/OR/NOT). ScriptID is
// required; the remaining filters are optional. Character and Tag match
// the stripped @Name and #slug tokens in the indexed text.
type SearchQuery struct {
	ScriptID  string
	Text      string
	Character string
	Tag       string
	Limit     int
	Offset    int
}

// SearchResult is a single matching beat.
// Snippet is a highlighted excerpt using [ ] markers when FTS is used.
type SearchResult struct {
	BeatID  string
	SceneID string
	Snippet string
}

// SearchBeats performs full-text search over a script's beats. When
// q.Text is empty it falls back to a plain scan with filters applied.
func (s *Store) SearchBeats(ctx context.Context, q SearchQuery) ([]SearchResult, error) {
	if strings.TrimSpace(q.ScriptID) == "" {
		return nil, fmt.Errorf("script id is required")
	}
	var args []any
	var sb strings.Builder
	useFTS := strings.TrimSpace(q.Text) != ""
	if useFTS {
		sb.WriteString("SELECT b.id, b.scene_id, snippet(fts_beats, 0, '[', ']', '…', 10)\n")
		sb.WriteString("FROM fts_beats\n")
		sb.WriteString("JOIN beat_search bs ON fts_beats.rowid = bs.rowid\n")
		sb.WriteString("JOIN beats b ON b.id = bs.beat_id\n")
		sb.WriteString("JOIN scenes sc ON sc.id = b.scene_id\n")
		sb.WriteString("WHERE fts_beats MATCH ? AND sc.script_id = ?\n")
		args = append(args, q.Text, q.ScriptID)
	} else {
		sb.WriteString("SELECT b.id, b.scene_id, ''\n")
		sb.WriteString("FROM beats b\n")
		sb.WriteString("JOIN beat_search bs ON bs.beat_id = b.id\n")
		sb.WriteString("JOIN scenes sc ON sc.id = b.scene_id\n")
		sb.WriteString("WHERE sc.script_id = ?\n")
		args = append(args, q.ScriptID)
	}
	if c := strings.TrimSpace(q.Character); c != "" {
		sb.WriteString(" AND lower(bs.text) LIKE ?\n")
		args = append(args, likeContains("@"+strings.ToLower(c)))
	}
	if t := strings.TrimSpace(q.Tag); t != "" {
		sb.WriteString(" AND lower(bs.text) LIKE ?\n")
		args = append(args, likeContains("#"+strings.ToLower(t)))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	sb.WriteString("ORDER BY sc.sort_order, b.sort_order, b.id\n")
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.BeatID, &r.SceneID, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func likeContains(s string) string { return "%" + s + "%" }
