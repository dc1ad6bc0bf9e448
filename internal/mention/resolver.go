/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mention

import (
	"regexp"
	"strings"

	"goscreenwriter/internal/domain"
)

// An unterminated trigger is an @ or # with only word characters between it
// and the caret. Anything else (a space, punctuation, a completed token)
// breaks the trigger.
var (
	reCharTrigger = regexp.MustCompile(`@(\w*)$`)
	reTagTrigger  = regexp.MustCompile(`#(\w*)$`)
)

// Trigger describes an active autocomplete trigger: the kind of entity
// being mentioned, the partial query typed since the trigger character, and
// the byte offset of that character within the field text.
type Trigger struct {
	Kind  Kind
	Query string
	Start int
}

// DetectTrigger reports whether the caret sits at the end of an
// unterminated @ or # trigger within the current word. caret is a byte
// offset and is clamped defensively to the text bounds. The @ form wins
// when both could match.
func DetectTrigger(text string, caret int) (Trigger, bool) {
	if caret < 0 {
		caret = 0
	}
	if caret > len(text) {
		caret = len(text)
	}
	before := text[:caret]
	if m := reCharTrigger.FindStringSubmatchIndex(before); m != nil {
		return Trigger{Kind: KindCharacter, Query: before[m[2]:m[3]], Start: m[0]}, true
	}
	if m := reTagTrigger.FindStringSubmatchIndex(before); m != nil {
		return Trigger{Kind: KindTag, Query: before[m[2]:m[3]], Start: m[0]}, true
	}
	return Trigger{}, false
}

// FilterCharacters returns the characters whose name contains query,
// case-insensitively, in source order. An empty query keeps everything.
func FilterCharacters(chars []domain.Character, query string) []domain.Character {
	q := strings.ToLower(query)
	var out []domain.Character
	for _, c := range chars {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}

// FilterTags matches query against tag name or slug, case-insensitively,
// preserving source order.
func FilterTags(tags []domain.Tag, query string) []domain.Tag {
	q := strings.ToLower(query)
	var out []domain.Tag
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t.Name), q) || strings.Contains(strings.ToLower(t.Slug), q) {
			out = append(out, t)
		}
	}
	return out
}

// State is the resolver's answer for one keystroke.
type State int

const (
	// NoTrigger: the caret is not inside an unterminated trigger.
	NoTrigger State = iota
	// NoMatches: a trigger is active but no candidate matches the query.
	// The dropdown is hidden in this state; it is still distinct from
	// NoTrigger so callers can keep watching the same trigger as the user
	// keeps typing.
	NoMatches
	// Active: a trigger is active and candidates are available.
	Active
)

// Suggestion carries the filtered candidates for an active trigger.
// Exactly one of Characters or Tags is populated, per Trigger.Kind.
type Suggestion struct {
	Trigger    Trigger
	Characters []domain.Character
	Tags       []domain.Tag
}

// Count returns the number of candidates.
func (s Suggestion) Count() int {
	if s.Trigger.Kind == KindCharacter {
		return len(s.Characters)
	}
	return len(s.Tags)
}

// Suggest runs trigger detection and candidate filtering in one step
// against the live entity lists.
func Suggest(text string, caret int, chars []domain.Character, tags []domain.Tag) (Suggestion, State) {
	tr, ok := DetectTrigger(text, caret)
	if !ok {
		return Suggestion{}, NoTrigger
	}
	sug := Suggestion{Trigger: tr}
	switch tr.Kind {
	case KindCharacter:
		sug.Characters = FilterCharacters(chars, tr.Query)
	case KindTag:
		sug.Tags = FilterTags(tags, tr.Query)
	}
	if sug.Count() == 0 {
		return sug, NoMatches
	}
	return sug, Active
}

// Session is the dropdown's highlighted-index cursor. Up and Down clamp to
// [0, Count-1] with no wraparound; Enter commits the candidate at Index;
// Escape discards the session without touching the text.
type Session struct {
	Count int
	Index int
}

// NewSession starts a session with the highlight on the first candidate.
func NewSession(count int) Session {
	if count < 0 {
		count = 0
	}
	return Session{Count: count}
}

// Down moves the highlight toward the last candidate.
func (s Session) Down() Session {
	if s.Index < s.Count-1 {
		s.Index++
	}
	return s
}

// Up moves the highlight toward the first candidate.
func (s Session) Up() Session {
	if s.Index > 0 {
		s.Index--
	}
	return s
}

// CommitCharacter replaces the trigger and query with a serialized
// character mention plus one trailing space, returning the new text and
// caret position (immediately after the space).
func CommitCharacter(text string, caret int, tr Trigger, ch domain.Character) (string, int) {
	return commit(text, caret, tr, "@["+ch.Name+"]("+ch.ID+")")
}

// CommitTag does the same for a tag mention.
func CommitTag(text string, caret int, tr Trigger, tag domain.Tag) (string, int) {
	return commit(text, caret, tr, "#["+tag.Slug+"]")
}

func commit(text string, caret int, tr Trigger, token string) (string, int) {
	if caret < 0 {
		caret = 0
	}
	if caret > len(text) {
		caret = len(text)
	}
	start := tr.Start
	if start < 0 || start > caret {
		start = caret
	}
	out := text[:start] + token + " " + text[caret:]
	return out, start + len(token) + 1
}
