/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"goscreenwriter/internal/domain"
	"goscreenwriter/internal/storage"
)

func sampleBundle() storage.Bundle {
	return storage.Bundle{
		FormatVersion: storage.BundleFormatVersion,
		Script:        domain.Script{ID: "script-1", Title: "Harbor Pilot", Version: 1, Status: domain.StatusDraft},
		Scenes: []domain.Scene{
			{ID: "s1", ScriptID: "script-1", SortOrder: 0, IntExt: domain.Interior, LocationName: "CAFE", TimeOfDay: "DAY"},
			{ID: "s2", ScriptID: "script-1", SortOrder: 1, IntExt: domain.Exterior, LocationName: "STREET", TimeOfDay: "NIGHT"},
		},
		Beats: []domain.Beat{
			{ID: "b1", SceneID: "s1", SortOrder: 0, Audio: "**Hi** @[Sam](c1)", Visual: "close on cup"},
			{ID: "b2", SceneID: "s1", SortOrder: 1, Notes: "check continuity"},
			{ID: "b3", SceneID: "s2", SortOrder: 0, Visual: "wide shot, #[broll]"},
		},
		Characters: []domain.Character{{ID: "c1", ScriptID: "script-1", Name: "Sam"}},
	}
}

func TestTextExport(t *testing.T) {
	got := Text(sampleBundle())

	for _, want := range []string{
		"HARBOR PILOT",
		"Version 1 (draft)",
		"101  INT. CAFE - DAY",
		"201  EXT. STREET - NIGHT",
		"  A\n",
		"  B\n",
		"Audio: Hi @Sam",
		"Visual: close on cup",
		"Notes: check continuity",
		"Visual: wide shot, #broll",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "**") || strings.Contains(got, "@[") {
		t.Fatalf("markup leaked into export:\n%s", got)
	}
}

func TestWriteText(t *testing.T) {
	out := filepath.Join(t.TempDir(), "exports", "script.txt")
	if err := WriteText(sampleBundle(), out); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != Text(sampleBundle()) {
		t.Fatal("file content differs from rendered text")
	}
}
