/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package script parses plain-text outlines into scenes and beats.
//
// Supported syntax:
//
//	Title: Harbor Pilot            optional, before the first scene
//	INT. CAFE - DAY                slugline starts a scene ("#" prefix allowed)
//	- beat audio text              bullet starts a beat; text goes to Audio
//	  Visual: pan across the room  labeled lines fill the other channels
//	  Notes: keep it quiet
//	  more audio text              unlabeled continuation appends to Audio
//	; scene-level note             attaches to the current scene
//
// Blank lines separate beats but carry no content.
package script

import (
	"bufio"
	"regexp"
	"strings"

	"goscreenwriter/internal/domain"
)

var (
	reTitle   = regexp.MustCompile(`^(?i)Title:\s*(.+)$`)
	reSlug    = regexp.MustCompile(`^(?i)(INT/EXT|INT|EXT)[.\s]+\s*([^-]+?)(?:\s+-\s+(.+))?$`)
	reBullet  = regexp.MustCompile(`^[-*]\s+(.*)$`)
	reChannel = regexp.MustCompile(`^(?i)(Audio|Visual|Notes):\s*(.*)$`)
)

// Parse reads an outline text. It is total: malformed lines produce Error
// entries and the rest of the document still parses.
func Parse(input string) (Outline, []Error) {
	var (
		o    Outline
		errs []Error
	)

	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	var scene *Scene
	var beat *Beat
	lastChannel := ""

	startScene := func(sc Scene) {
		o.Scenes = append(o.Scenes, sc)
		scene = &o.Scenes[len(o.Scenes)-1]
		beat = nil
		lastChannel = ""
	}
	appendChannel := func(b *Beat, channel, text string) {
		var dst *string
		switch channel {
		case "visual":
			dst = &b.Visual
		case "notes":
			dst = &b.Notes
		default:
			dst = &b.Audio
		}
		if *dst == "" {
			*dst = text
		} else {
			*dst += "\n" + text
		}
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		trim := strings.TrimSpace(line)
		if trim == "" {
			beat = nil
			lastChannel = ""
			continue
		}

		if scene == nil && o.Title == "" {
			if m := reTitle.FindStringSubmatch(trim); m != nil {
				o.Title = strings.TrimSpace(m[1])
				continue
			}
		}

		heading := trim
		if strings.HasPrefix(heading, "#") {
			heading = strings.TrimSpace(strings.TrimLeft(heading, "#"))
		}
		if m := reSlug.FindStringSubmatch(heading); m != nil {
			startScene(Scene{
				IntExt:    domain.IntExt(strings.ToUpper(m[1])),
				Location:  strings.ToUpper(strings.TrimSpace(m[2])),
				TimeOfDay: strings.ToUpper(strings.TrimSpace(m[3])),
				LineNo:    lineNo,
			})
			continue
		}

		if strings.HasPrefix(trim, ";") {
			note := strings.TrimSpace(strings.TrimPrefix(trim, ";"))
			if scene == nil {
				errs = append(errs, Error{Line: lineNo, Message: "note before the first scene heading"})
				continue
			}
			if scene.Notes == "" {
				scene.Notes = note
			} else {
				scene.Notes += "\n" + note
			}
			continue
		}

		if m := reBullet.FindStringSubmatch(trim); m != nil {
			if scene == nil {
				errs = append(errs, Error{Line: lineNo, Message: "beat before the first scene heading"})
				startScene(Scene{IntExt: domain.Interior, Location: "UNTITLED", LineNo: lineNo})
			}
			scene.Beats = append(scene.Beats, Beat{LineNo: lineNo})
			beat = &scene.Beats[len(scene.Beats)-1]
			lastChannel = "audio"
			text := strings.TrimSpace(m[1])
			if cm := reChannel.FindStringSubmatch(text); cm != nil {
				lastChannel = strings.ToLower(cm[1])
				text = strings.TrimSpace(cm[2])
			}
			if text != "" {
				appendChannel(beat, lastChannel, text)
			}
			continue
		}

		if beat != nil {
			text := trim
			if cm := reChannel.FindStringSubmatch(text); cm != nil {
				lastChannel = strings.ToLower(cm[1])
				text = strings.TrimSpace(cm[2])
			}
			if text != "" {
				appendChannel(beat, lastChannel, text)
			}
			continue
		}

		errs = append(errs, Error{Line: lineNo, Message: "unrecognized line outside a beat: " + trim})
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, Error{Line: lineNo, Message: err.Error()})
	}
	return o, errs
}
