/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mention

import (
	"reflect"
	"testing"

	"goscreenwriter/internal/domain"
)

func testIndex() *Index {
	return Resolve(
		[]domain.Character{
			{ID: "char-1", Name: "Sam", Color: "#ff0000"},
			{ID: "char-2", Name: "Alex"},
		},
		[]domain.Tag{
			{ID: "t1", Name: "Urgent", Slug: "urgent", Color: "#00ff00"},
			{ID: "t2", Name: "B-Roll", Slug: "broll"},
		},
	)
}

func TestToSurfaceEmpty(t *testing.T) {
	if s := ToSurface("", testIndex()); len(s) != 0 {
		t.Fatalf("empty input should yield empty surface, got %+v", s)
	}
}

func TestToSurfacePlainText(t *testing.T) {
	s := ToSurface("hello world", testIndex())
	want := Surface{{Text: "hello world"}}
	if !reflect.DeepEqual(s, want) {
		t.Fatalf("got %+v", s)
	}
}

func TestToSurfaceCharacterMention(t *testing.T) {
	s := ToSurface("Hi @[Sam](char-1)!", testIndex())
	if len(s) != 3 {
		t.Fatalf("expected 3 nodes, got %+v", s)
	}
	m := s[1].Mention
	if m == nil || m.Kind != KindCharacter || m.Target != "char-1" || m.Label != "Sam" || m.Color != "#ff0000" {
		t.Fatalf("unexpected mention node: %+v", s[1])
	}
	if s[0].Text != "Hi " || s[2].Text != "!" {
		t.Fatalf("unexpected text nodes: %+v", s)
	}
}

func TestToSurfaceUsesLiveName(t *testing.T) {
	// The stored label says Old; the live list says New. Display must
	// follow the live list, proving resolution is id-based at render time.
	ix := Resolve([]domain.Character{{ID: "x", Name: "New"}}, nil)
	s := ToSurface("@[Old](x)", ix)
	if len(s) != 1 || s[0].Mention == nil || s[0].Mention.Label != "New" {
		t.Fatalf("rename did not propagate: %+v", s)
	}
	if s[0].Mention.Color != DefaultCharacterColor {
		t.Fatalf("missing color should fall back, got %q", s[0].Mention.Color)
	}
}

func TestToSurfaceOrphanedMention(t *testing.T) {
	// char gone from the live list: degrade to the stored label as text.
	s := ToSurface("cue @[Old](gone) end", testIndex())
	want := Surface{{Text: "cue Old end"}}
	if !reflect.DeepEqual(s, want) {
		t.Fatalf("orphan should degrade to text, got %+v", s)
	}

	s = ToSurface("#[deleted-tag]", testIndex())
	want = Surface{{Text: "deleted-tag"}}
	if !reflect.DeepEqual(s, want) {
		t.Fatalf("orphan tag should degrade to slug text, got %+v", s)
	}
}

func TestToSurfaceTagMention(t *testing.T) {
	s := ToSurface("check #[urgent] now", testIndex())
	if len(s) != 3 || s[1].Mention == nil {
		t.Fatalf("got %+v", s)
	}
	m := s[1].Mention
	if m.Kind != KindTag || m.Target != "urgent" || m.Label != "Urgent" || m.Color != "#00ff00" {
		t.Fatalf("unexpected tag mention: %+v", m)
	}
}

func TestToSurfaceBold(t *testing.T) {
	s := ToSurface("a **loud** b", testIndex())
	want := Surface{{Text: "a "}, {Bold: true, Text: "loud"}, {Text: " b"}}
	if !reflect.DeepEqual(s, want) {
		t.Fatalf("got %+v", s)
	}
}

func TestToSurfaceBoldWithMentionInside(t *testing.T) {
	s := ToSurface("**ask @[Sam](char-1)**", testIndex())
	if len(s) != 2 {
		t.Fatalf("expected 2 nodes, got %+v", s)
	}
	if !s[0].Bold || s[0].Text != "ask " {
		t.Fatalf("unexpected bold text: %+v", s[0])
	}
	if !s[1].Bold || s[1].Mention == nil || s[1].Mention.Target != "char-1" {
		t.Fatalf("mention inside bold lost: %+v", s[1])
	}
}

func TestToSurfaceMalformedIsLiteral(t *testing.T) {
	// Totality: nothing here may panic, and partial tokens stay literal.
	cases := []string{
		"@",
		"#",
		"lone @ end",
		"@[no-close",
		"@[name]",
		"@[name](",
		"#[",
		"**no close",
		"**",
		"***",
		"@[]()",
		"a @[x]() b",
	}
	for _, c := range cases {
		s := ToSurface(c, testIndex())
		if got := ToStorage(s); got != c {
			t.Fatalf("malformed %q did not stay literal: %q (surface %+v)", c, got, s)
		}
		for _, n := range s {
			if n.Mention != nil {
				t.Fatalf("malformed %q produced a mention: %+v", c, s)
			}
		}
	}
}

func TestAdjacentMentionsDoNotMerge(t *testing.T) {
	s := ToSurface("@[Sam](char-1)@[Alex](char-2)", testIndex())
	if len(s) != 2 || s[0].Mention == nil || s[1].Mention == nil {
		t.Fatalf("adjacent mentions merged: %+v", s)
	}
	if s[0].Mention.Target != "char-1" || s[1].Mention.Target != "char-2" {
		t.Fatalf("wrong targets: %+v", s)
	}

	s = ToSurface("#[urgent]#[broll]", testIndex())
	if len(s) != 2 || s[0].Mention == nil || s[1].Mention == nil {
		t.Fatalf("adjacent tags merged: %+v", s)
	}
}

func TestToStorageMentions(t *testing.T) {
	s := Surface{
		{Text: "Hello "},
		{Mention: &Mention{Kind: KindCharacter, Target: "char-1", Label: "Sam", Color: "#ff0000"}},
		{Text: ", check "},
		{Mention: &Mention{Kind: KindTag, Target: "urgent", Label: "Urgent", Color: "#00ff00"}},
	}
	want := "Hello @[Sam](char-1), check #[urgent]"
	if got := ToStorage(s); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestToStorageBoldRunGrouping(t *testing.T) {
	s := Surface{
		{Bold: true, Text: "a "},
		{Bold: true, Mention: &Mention{Kind: KindTag, Target: "vfx", Label: "VFX"}},
		{Text: " tail"},
	}
	want := "**a #[vfx]** tail"
	if got := ToStorage(s); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestToStorageEmptySurface(t *testing.T) {
	if got := ToStorage(nil); got != "" {
		t.Fatalf("got %q", got)
	}
	if got := ToStorage(Surface{{Bold: true, Text: ""}}); got != "" {
		t.Fatalf("empty bold run should serialize to nothing, got %q", got)
	}
}

func TestRoundTripResolvable(t *testing.T) {
	ix := testIndex()
	cases := []string{
		"Hello @[Sam](char-1), check #[urgent]",
		"plain",
		"**bold** and @[Alex](char-2)",
		"**ask @[Sam](char-1) about #[broll]** then cut",
		"@[Sam](char-1)@[Alex](char-2)",
		"#[urgent] #[broll]",
		"multi\nline with @[Sam](char-1)",
	}
	for _, c := range cases {
		s := ToSurface(c, ix)
		out := ToStorage(s)
		if out != c {
			t.Fatalf("storage round trip changed %q to %q", c, out)
		}
		again := ToSurface(out, ix)
		if !reflect.DeepEqual(s.Normalize(), again.Normalize()) {
			t.Fatalf("surface round trip differs for %q:\n%+v\n%+v", c, s, again)
		}
	}
}

func TestRoundTripOrphanIsLossy(t *testing.T) {
	ix := testIndex()
	s := ToSurface("@[Old](gone)", ix)
	out := ToStorage(s)
	if out != "Old" {
		t.Fatalf("orphan should re-serialize as plain label, got %q", out)
	}
	// And it stays plain from here on.
	if got := ToStorage(ToSurface(out, ix)); got != "Old" {
		t.Fatalf("degradation not permanent: %q", got)
	}
}

func TestEndToEndBeatScenario(t *testing.T) {
	// Scene with two beats; beat 1 audio references a character and a tag.
	stored := "Hello @[Sam](char-1), check #[urgent]"
	ix := testIndex()
	s := ToSurface(stored, ix)

	var chars, tags, texts int
	for _, n := range s {
		switch {
		case n.Mention != nil && n.Mention.Kind == KindCharacter:
			chars++
		case n.Mention != nil && n.Mention.Kind == KindTag:
			tags++
		default:
			texts++
		}
	}
	if chars != 1 || tags != 1 || texts != 2 {
		t.Fatalf("expected 1 character, 1 tag, 2 text runs; got %d/%d/%d (%+v)", chars, tags, texts, s)
	}
	if got := ToStorage(s); got != stored {
		t.Fatalf("serialization is not byte-identical: %q", got)
	}
}

func TestStripMarkup(t *testing.T) {
	cases := []struct{ in, want string }{
		{"**bold** text", "bold text"},
		{"@[Sam](char-1) waves", "@Sam waves"},
		{"cut to #[broll]", "cut to #broll"},
		{"@ # ** plain", "@ # ** plain"},
		{"", ""},
	}
	for _, c := range cases {
		if got := StripMarkup(c.in); got != c.want {
			t.Fatalf("StripMarkup(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
