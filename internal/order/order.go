/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package order implements sequence reindexing for sibling groups of scenes
// and beats. Sort keys are kept as contiguous integers 0..n-1 and recomputed
// on every structural change; sibling groups are small (tens of items) and
// reorders are rare relative to edits, so the simple scheme wins over
// fractional keys.
package order

import (
	"errors"
	"fmt"
	"sort"
)

// ErrOutOfRange is returned for invalid indices or unknown item IDs.
// It indicates a caller bug; callers are expected to clamp before invoking.
var ErrOutOfRange = errors.New("order: index out of range")

// Item is an opaque sequence member: an entity ID plus its current sort key.
type Item struct {
	ID        string
	SortOrder int
}

// Update reports a changed sort key for one item.
type Update struct {
	ID        string
	SortOrder int
}

// Sorted returns items ordered by SortOrder, ties broken by ID so the result
// is total and stable regardless of input order.
func Sorted(items []Item) []Item {
	out := append([]Item(nil), items...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// reindex assigns contiguous keys 0..n-1 following the slice order and
// collects updates for every item whose key changed.
func reindex(items []Item) ([]Item, []Update) {
	out := make([]Item, len(items))
	var ups []Update
	for i, it := range items {
		out[i] = Item{ID: it.ID, SortOrder: i}
		if it.SortOrder != i {
			ups = append(ups, Update{ID: it.ID, SortOrder: i})
		}
	}
	return out, ups
}

// Move relocates the item at index from to index to, returning the new
// sequence and the sort-key updates to persist. Moving an item onto its own
// position is a no-op with zero updates.
func Move(items []Item, from, to int) ([]Item, []Update, error) {
	n := len(items)
	if from < 0 || from >= n {
		return nil, nil, fmt.Errorf("move from %d of %d: %w", from, n, ErrOutOfRange)
	}
	if to < 0 || to >= n {
		return nil, nil, fmt.Errorf("move to %d of %d: %w", to, n, ErrOutOfRange)
	}
	if from == to {
		return append([]Item(nil), items...), nil, nil
	}
	seq := append([]Item(nil), items...)
	it := seq[from]
	seq = append(seq[:from], seq[from+1:]...)
	seq = append(seq[:to], append([]Item{it}, seq[to:]...)...)
	out, ups := reindex(seq)
	return out, ups, nil
}

// Append returns a new item for id placed at the end of the sibling group,
// with key max+1 (0 for an empty group). Existing items are untouched.
func Append(items []Item, id string) Item {
	max := -1
	for _, it := range items {
		if it.SortOrder > max {
			max = it.SortOrder
		}
	}
	return Item{ID: id, SortOrder: max + 1}
}

// InsertBefore inserts id immediately before the sibling with the given ID.
func InsertBefore(items []Item, id, siblingID string) ([]Item, []Update, error) {
	return insertAt(items, id, siblingID, 0)
}

// InsertAfter inserts id immediately after the sibling with the given ID.
func InsertAfter(items []Item, id, siblingID string) ([]Item, []Update, error) {
	return insertAt(items, id, siblingID, 1)
}

func insertAt(items []Item, id, siblingID string, offset int) ([]Item, []Update, error) {
	seq := Sorted(items)
	pos := -1
	for i, it := range seq {
		if it.ID == siblingID {
			pos = i + offset
			break
		}
	}
	if pos < 0 {
		return nil, nil, fmt.Errorf("insert near %q: %w", siblingID, ErrOutOfRange)
	}
	seq = append(seq[:pos], append([]Item{{ID: id, SortOrder: -1}}, seq[pos:]...)...)
	out, ups := reindex(seq)
	return out, ups, nil
}

// Apply reorders items to match orderedIDs, the full result of a drag
// gesture. Every item must appear exactly once in orderedIDs.
func Apply(items []Item, orderedIDs []string) ([]Item, []Update, error) {
	if len(orderedIDs) != len(items) {
		return nil, nil, fmt.Errorf("apply %d ids to %d items: %w", len(orderedIDs), len(items), ErrOutOfRange)
	}
	byID := make(map[string]Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	seq := make([]Item, 0, len(orderedIDs))
	for _, id := range orderedIDs {
		it, ok := byID[id]
		if !ok {
			return nil, nil, fmt.Errorf("apply unknown id %q: %w", id, ErrOutOfRange)
		}
		delete(byID, id)
		seq = append(seq, it)
	}
	out, ups := reindex(seq)
	return out, ups, nil
}
