/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mention

import (
	"strings"
	"testing"
)

func TestRenderHTMLPlain(t *testing.T) {
	got := RenderHTML(Surface{{Text: "hello"}})
	if got != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderHTMLBoldRun(t *testing.T) {
	s := Surface{{Text: "a "}, {Bold: true, Text: "b"}, {Bold: true, Text: " c"}, {Text: " d"}}
	got := RenderHTML(s)
	want := "a <strong>b c</strong> d"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderHTMLCharacterMention(t *testing.T) {
	s := Surface{{Mention: &Mention{Kind: KindCharacter, Target: "c1", Label: "Sam", Color: "#ff0000"}}}
	got := RenderHTML(s)
	want := `<span class="script-mention" data-character-id="c1" style="color:#ff0000;font-weight:600">@Sam</span>`
	if got != want {
		t.Fatalf("got %q", got)
	}
}

func TestRenderHTMLTagMention(t *testing.T) {
	s := Surface{{Mention: &Mention{Kind: KindTag, Target: "broll", Label: "B-Roll", Color: "#38bdf8"}}}
	got := RenderHTML(s)
	want := `<span class="script-tag" data-tag-slug="broll" style="color:#38bdf8;font-weight:600">#B-Roll</span>`
	if got != want {
		t.Fatalf("got %q", got)
	}
}

func TestRenderHTMLEscapesLiterals(t *testing.T) {
	got := RenderHTML(Surface{{Text: `<script>alert("x")</script> & more`}})
	if strings.Contains(got, "<script>") {
		t.Fatalf("markup leaked through: %q", got)
	}
	if !strings.Contains(got, "&lt;script&gt;") || !strings.Contains(got, "&amp; more") {
		t.Fatalf("escaping incomplete: %q", got)
	}
}

func TestRenderHTMLEscapesMentionFields(t *testing.T) {
	s := Surface{{Mention: &Mention{
		Kind:   KindCharacter,
		Target: `x" onmouseover="evil()`,
		Label:  `<b>Sam</b>`,
		Color:  `red"><script>`,
	}}}
	got := RenderHTML(s)
	if strings.Contains(got, `onmouseover="evil()"`) || strings.Contains(got, "<script>") || strings.Contains(got, "<b>") {
		t.Fatalf("attribute injection: %q", got)
	}
}

func TestRenderHTMLNewlines(t *testing.T) {
	got := RenderHTML(Surface{{Text: "line1\nline2"}})
	if got != "line1<br>line2" {
		t.Fatalf("got %q", got)
	}
}
