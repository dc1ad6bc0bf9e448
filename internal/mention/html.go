/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mention

import (
	"html"
	"strings"
)

// RenderHTML renders a surface as display HTML: bold runs as <strong>,
// mention tokens as colored spans, newlines as <br>. Every literal
// character is escaped, so user-entered text can never inject markup. The
// output vocabulary is limited to strong, br and span with class/data/style
// attributes.
func RenderHTML(s Surface) string {
	nodes := s.Normalize()
	var b strings.Builder
	for i := 0; i < len(nodes); {
		if !nodes[i].Bold {
			b.WriteString(nodeHTML(nodes[i]))
			i++
			continue
		}
		b.WriteString("<strong>")
		for i < len(nodes) && nodes[i].Bold {
			b.WriteString(nodeHTML(nodes[i]))
			i++
		}
		b.WriteString("</strong>")
	}
	return b.String()
}

func nodeHTML(n Node) string {
	if n.Mention == nil {
		return strings.ReplaceAll(html.EscapeString(n.Text), "\n", "<br>")
	}
	m := n.Mention
	switch m.Kind {
	case KindCharacter:
		return `<span class="script-mention" data-character-id="` + html.EscapeString(m.Target) +
			`" style="color:` + html.EscapeString(m.Color) + `;font-weight:600">@` +
			html.EscapeString(m.Label) + `</span>`
	case KindTag:
		return `<span class="script-tag" data-tag-slug="` + html.EscapeString(m.Target) +
			`" style="color:` + html.EscapeString(m.Color) + `;font-weight:600">#` +
			html.EscapeString(m.Label) + `</span>`
	}
	return ""
}
