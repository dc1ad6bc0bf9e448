/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package mention converts beat text between its persisted storage markup
// and the rich edit-surface form, and drives the @/# autocomplete.
//
// Storage markup is a restricted, persisted grammar that must stay
// bit-exact for existing content:
//
//	**text**            bold
//	@[DisplayName](id)  character mention
//	#[slug]             tag mention
//
// Every other character is literal. Both conversion directions are total:
// anything that does not fully match the grammar is treated as literal
// text, never an error.
package mention

import (
	"fmt"

	"goscreenwriter/internal/domain"
)

// Kind discriminates mention targets.
type Kind int

const (
	KindCharacter Kind = iota
	KindTag
)

func (k Kind) String() string {
	switch k {
	case KindCharacter:
		return "character"
	case KindTag:
		return "tag"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Default display colors used when a resolved entity has none set.
const (
	DefaultCharacterColor = "#a14dfd"
	DefaultTagColor       = "#38bdf8"
)

// Mention is an inline token referencing a Character (by id) or a Tag (by
// slug). Label and Color are resolved against the live entity lists when
// the surface is built, so renames and recolors propagate without touching
// stored text.
type Mention struct {
	Kind   Kind
	Target string
	Label  string
	Color  string
}

// Node is one run of the edit surface: either literal text or a mention
// token, optionally bold.
type Node struct {
	Bold    bool
	Text    string
	Mention *Mention
}

// Surface is the rich in-memory form of one beat field while editing.
type Surface []Node

// Normalize merges adjacent text runs with equal styling and drops empty
// text runs, yielding the canonical structural form used for equality.
func (s Surface) Normalize() Surface {
	var out Surface
	for _, n := range s {
		if n.Mention == nil && n.Text == "" {
			continue
		}
		if n.Mention == nil && len(out) > 0 {
			last := &out[len(out)-1]
			if last.Mention == nil && last.Bold == n.Bold {
				last.Text += n.Text
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// Index is a read-only lookup over the current Character and Tag lists.
// Build a fresh one per render pass; holding an Index across entity edits
// reintroduces the staleness this type exists to avoid.
type Index struct {
	chars map[string]domain.Character
	tags  map[string]domain.Tag
}

// Resolve builds an Index from the live entity lists.
func Resolve(chars []domain.Character, tags []domain.Tag) *Index {
	ix := &Index{
		chars: make(map[string]domain.Character, len(chars)),
		tags:  make(map[string]domain.Tag, len(tags)),
	}
	for _, c := range chars {
		ix.chars[c.ID] = c
	}
	for _, t := range tags {
		ix.tags[t.Slug] = t
	}
	return ix
}

// Character looks up a character by id.
func (ix *Index) Character(id string) (domain.Character, bool) {
	if ix == nil {
		return domain.Character{}, false
	}
	c, ok := ix.chars[id]
	return c, ok
}

// Tag looks up a tag by slug.
func (ix *Index) Tag(slug string) (domain.Tag, bool) {
	if ix == nil {
		return domain.Tag{}, false
	}
	t, ok := ix.tags[slug]
	return t, ok
}

func colorOr(c, fallback string) string {
	if c == "" {
		return fallback
	}
	return c
}
