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
)

// The grammar patterns. Non-greedy, single-line, exactly as persisted
// content was written: a token that does not fully match stays literal.
var (
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reCharTok = regexp.MustCompile(`@\[(.+?)\]\((.+?)\)`)
	reTagTok  = regexp.MustCompile(`#\[(.+?)\]`)
)

// ToSurface parses storage markup into the edit surface, resolving mention
// tokens against ix. A token whose id/slug no longer resolves degrades to a
// plain text run holding its stored label; once re-serialized the original
// token is gone for good, which is acceptable because the target itself is
// unrecoverable. ToSurface is total: it never fails, for any input.
func ToSurface(md string, ix *Index) Surface {
	var out Surface
	last := 0
	for _, m := range reBold.FindAllStringSubmatchIndex(md, -1) {
		out = append(out, parseMentions(md[last:m[0]], false, ix)...)
		out = append(out, parseMentions(md[m[2]:m[3]], true, ix)...)
		last = m[1]
	}
	out = append(out, parseMentions(md[last:], false, ix)...)
	return out.Normalize()
}

// parseMentions splits a bold-free region into text runs and mention
// tokens. Character tokens are matched first, then tag tokens in the
// remaining stretches, mirroring the order the storage format was defined
// in.
func parseMentions(text string, bold bool, ix *Index) Surface {
	var out Surface
	last := 0
	for _, m := range reCharTok.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, parseTagTokens(text[last:m[0]], bold, ix)...)
		label, id := text[m[2]:m[3]], text[m[4]:m[5]]
		if ch, ok := ix.Character(id); ok {
			out = append(out, Node{Bold: bold, Mention: &Mention{
				Kind:   KindCharacter,
				Target: id,
				Label:  ch.Name,
				Color:  colorOr(ch.Color, DefaultCharacterColor),
			}})
		} else {
			// Orphaned mention: the character is gone, keep the label as text.
			out = append(out, Node{Bold: bold, Text: label})
		}
		last = m[1]
	}
	return append(out, parseTagTokens(text[last:], bold, ix)...)
}

func parseTagTokens(text string, bold bool, ix *Index) Surface {
	var out Surface
	last := 0
	for _, m := range reTagTok.FindAllStringSubmatchIndex(text, -1) {
		if text[last:m[0]] != "" {
			out = append(out, Node{Bold: bold, Text: text[last:m[0]]})
		}
		slug := text[m[2]:m[3]]
		if tag, ok := ix.Tag(slug); ok {
			out = append(out, Node{Bold: bold, Mention: &Mention{
				Kind:   KindTag,
				Target: slug,
				Label:  tag.Name,
				Color:  colorOr(tag.Color, DefaultTagColor),
			}})
		} else {
			out = append(out, Node{Bold: bold, Text: slug})
		}
		last = m[1]
	}
	if text[last:] != "" {
		out = append(out, Node{Bold: bold, Text: text[last:]})
	}
	return out
}

// ToStorage serializes a surface back to storage markup. Consecutive bold
// runs share one **...** wrapper. Character tokens are written with the
// label the index resolved when the surface was built, so a stale cached
// name can never leak back into storage as long as surfaces are rebuilt
// per render. Total: never fails.
func ToStorage(s Surface) string {
	nodes := s.Normalize()
	var b strings.Builder
	for i := 0; i < len(nodes); {
		if !nodes[i].Bold {
			b.WriteString(nodeText(nodes[i]))
			i++
			continue
		}
		j := i
		var inner strings.Builder
		for j < len(nodes) && nodes[j].Bold {
			inner.WriteString(nodeText(nodes[j]))
			j++
		}
		if inner.Len() > 0 {
			b.WriteString("**")
			b.WriteString(inner.String())
			b.WriteString("**")
		}
		i = j
	}
	return b.String()
}

func nodeText(n Node) string {
	if n.Mention == nil {
		return n.Text
	}
	switch n.Mention.Kind {
	case KindCharacter:
		return "@[" + n.Mention.Label + "](" + n.Mention.Target + ")"
	case KindTag:
		return "#[" + n.Mention.Target + "]"
	}
	return n.Text
}

// StripMarkup reduces storage markup to plain text for search, previews
// and the FTS index: bold markers dropped, mentions reduced to @Name and
// #slug.
func StripMarkup(md string) string {
	out := reBold.ReplaceAllString(md, "$1")
	out = reCharTok.ReplaceAllString(out, "@$1")
	out = reTagTok.ReplaceAllString(out, "#$1")
	return out
}

// RewriteCharacterIDs replaces mention target ids according to idMap,
// leaving labels and everything else byte-identical. Used when forking a
// script version: the fork's characters get fresh ids and stored mentions
// must follow or they would orphan. Ids absent from the map stay unchanged.
func RewriteCharacterIDs(md string, idMap map[string]string) string {
	if len(idMap) == 0 {
		return md
	}
	return reCharTok.ReplaceAllStringFunc(md, func(tok string) string {
		m := reCharTok.FindStringSubmatch(tok)
		if newID, ok := idMap[m[2]]; ok {
			return "@[" + m[1] + "](" + newID + ")"
		}
		return tok
	})
}
