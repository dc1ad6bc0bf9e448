/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"goscreenwriter/internal/mention"
	"goscreenwriter/internal/numbering"
	"goscreenwriter/internal/storage"
)

// PDFOptions controls PDF export behavior.
// Built-in Helvetica keeps text vector without embedding; font embedding
// can be added later using TTFs.
type PDFOptions struct {
	PageSize     string // "A4" (default) or "Letter"
	IncludeNotes bool
	Scenes       []int // 0-based scene indexes in script order; empty exports all
}

// PDF exports the script to a multi-page PDF at outPath. Relative paths
// are created under the current directory; parent directories are ensured.
func PDF(b storage.Bundle, outPath string, opt PDFOptions) error {
	size := opt.PageSize
	if size == "" {
		size = "A4"
	}
	pdf := gofpdf.New("P", "pt", size, "")
	pdf.SetTitle(b.Script.Title, true)
	pdf.SetAuthor("Go Screenwriter", false)
	pdf.SetMargins(54, 54, 54)
	pdf.SetAutoPageBreak(true, 54)

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.MultiCell(0, 26, b.Script.Title, "", "C", false)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 14, fmt.Sprintf("Version %d (%s)", b.Script.Version, b.Script.Status), "", "C", false)
	pdf.Ln(10)

	scenes := computedScenes(b)
	for _, idx := range sceneIndexes(len(scenes), opt.Scenes) {
		if idx < 0 || idx >= len(scenes) {
			continue
		}
		scene := scenes[idx]

		pdf.Ln(12)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 16, fmt.Sprintf("%d  %s", scene.Number, numbering.Heading(scene.Scene)), "", "L", false)
		if scene.Notes != "" {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.MultiCell(0, 13, scene.Notes, "", "L", false)
		}

		for i, beat := range scene.Beats {
			pdf.Ln(6)
			pdf.SetFont("Helvetica", "B", 10)
			pdf.MultiCell(0, 13, numbering.BeatLetter(i+1), "", "L", false)
			pdf.SetFont("Helvetica", "", 10)
			writePDFChannel(pdf, "Audio", beat.Audio)
			writePDFChannel(pdf, "Visual", beat.Visual)
			if opt.IncludeNotes {
				writePDFChannel(pdf, "Notes", beat.Notes)
			}
		}
	}

	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func writePDFChannel(pdf *gofpdf.Fpdf, label, md string) {
	text := strings.TrimSpace(mention.StripMarkup(md))
	if text == "" {
		return
	}
	pdf.MultiCell(0, 13, label+": "+text, "", "L", false)
}

func sceneIndexes(total int, specific []int) []int {
	if len(specific) == 0 {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out
	}
	return specific
}
