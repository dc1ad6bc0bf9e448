/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"goscreenwriter/internal/storage"
)

// SearchPG executes a beat search over the Postgres beat_texts table using
// tsvector and returns results mapped to storage.SearchResult, so client
// code can treat local and server search uniformly. Snippets use the same
// [ ] highlight markers as the SQLite side.
func SearchPG(ctx context.Context, db *sql.DB, q storage.SearchQuery) ([]storage.SearchResult, error) {
	if strings.TrimSpace(q.ScriptID) == "" {
		return nil, fmt.Errorf("script id is required")
	}
	var (
		args []any
		b    strings.Builder
	)
	useFTS := strings.TrimSpace(q.Text) != ""
	if useFTS {
		b.WriteString("SELECT bt.beat_id, bt.scene_id, ")
		b.WriteString("COALESCE(ts_headline('simple', bt.raw_text, plainto_tsquery('simple', $1), 'StartSel=[, StopSel=], MaxFragments=1, MaxWords=12'), '') AS snippet ")
		b.WriteString("FROM beat_texts bt WHERE bt.script_id = $2 AND bt.search_vector @@ plainto_tsquery('simple', $1) ")
		args = append(args, q.Text, q.ScriptID)
	} else {
		b.WriteString("SELECT bt.beat_id, bt.scene_id, '' AS snippet ")
		b.WriteString("FROM beat_texts bt WHERE bt.script_id = $1 ")
		args = append(args, q.ScriptID)
	}

	place := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if c := strings.TrimSpace(q.Character); c != "" {
		b.WriteString(" AND lower(bt.raw_text) LIKE " + place("%@"+strings.ToLower(c)+"%") + " ")
	}
	if t := strings.TrimSpace(q.Tag); t != "" {
		b.WriteString(" AND lower(bt.raw_text) LIKE " + place("%#"+strings.ToLower(t)+"%") + " ")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	b.WriteString(" ORDER BY bt.scene_sort, bt.beat_sort, bt.beat_id ")
	b.WriteString(" LIMIT " + place(limit) + " OFFSET " + place(offset))

	rows, err := db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search pg query: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []storage.SearchResult
	for rows.Next() {
		var r storage.SearchResult
		if err := rows.Scan(&r.BeatID, &r.SceneID, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
