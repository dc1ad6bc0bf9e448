/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a script bundle to portable output formats. All
// exporters work from a storage.Bundle, so the same code path serves local
// workspaces and bundles fetched from the sync server. Markup is stripped
// to plain text; mentions appear as @Name and #slug.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"goscreenwriter/internal/domain"
	"goscreenwriter/internal/mention"
	"goscreenwriter/internal/numbering"
	"goscreenwriter/internal/storage"
)

// Text renders the script as a plain-text outline: one heading line per
// scene with its production number, then lettered beats with their audio,
// visual and notes channels.
func Text(b storage.Bundle) string {
	var sb strings.Builder
	sb.WriteString(strings.ToUpper(strings.TrimSpace(b.Script.Title)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Version %d (%s)\n", b.Script.Version, b.Script.Status))

	for _, scene := range computedScenes(b) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%d  %s\n", scene.Number, numbering.Heading(scene.Scene)))
		if scene.Notes != "" {
			sb.WriteString("    (" + scene.Notes + ")\n")
		}
		for i, beat := range scene.Beats {
			sb.WriteString("\n")
			sb.WriteString("  " + numbering.BeatLetter(i+1) + "\n")
			writeChannel(&sb, "Audio", beat.Audio)
			writeChannel(&sb, "Visual", beat.Visual)
			writeChannel(&sb, "Notes", beat.Notes)
		}
	}
	return sb.String()
}

// WriteText renders the script and writes it to outPath, creating parent
// directories as needed.
func WriteText(b storage.Bundle, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(Text(b)), 0o644); err != nil {
		return fmt.Errorf("write text export: %w", err)
	}
	return nil
}

func writeChannel(sb *strings.Builder, label, md string) {
	text := strings.TrimSpace(mention.StripMarkup(md))
	if text == "" {
		return
	}
	for i, line := range strings.Split(text, "\n") {
		if i == 0 {
			sb.WriteString("    " + label + ": " + line + "\n")
			continue
		}
		sb.WriteString("      " + line + "\n")
	}
}

func computedScenes(b storage.Bundle) []numbering.ComputedScene {
	byScene := make(map[string][]domain.Beat, len(b.Scenes))
	for _, bt := range b.Beats {
		byScene[bt.SceneID] = append(byScene[bt.SceneID], bt)
	}
	return numbering.Compute(b.Scenes, byScene)
}
