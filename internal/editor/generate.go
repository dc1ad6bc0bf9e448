/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"context"

	"goscreenwriter/internal/domain"
	"goscreenwriter/internal/prompt"
)

// Generator is the external image-generation collaborator. It receives the
// assembled brief as an opaque payload and returns a frame reference.
type Generator interface {
	Generate(ctx context.Context, brief string, style domain.StoryboardStyle) (domain.StoryboardFrame, error)
}

// GenerateInput carries the script-level entity lists the prompt assembler
// needs plus the existing frames keyed by beat id for dedupe.
type GenerateInput struct {
	Style      domain.StoryboardStyle
	Characters []domain.Character
	Locations  []domain.Location
	Cast       map[string][]domain.CastAssignment
	Existing   map[string]domain.StoryboardFrame
}

// GenerateResult reports the outcome for one beat.
type GenerateResult struct {
	BeatID string
	Frame  domain.StoryboardFrame
	// Skipped is set when the existing frame was generated from an
	// identical brief, so regeneration would reproduce it.
	Skipped bool
	Err     error
}

// GenerateAll builds a brief for every beat in script order and calls the
// generator for each one whose brief differs from its existing frame's.
// Pending text edits are flushed first so briefs reflect what the user
// sees. Cancellation is cooperative per beat: ctx is checked between beats
// and a cancel never abandons a beat mid-call beyond what the generator
// itself honors.
func (c *Coordinator) GenerateAll(ctx context.Context, gen Generator, in GenerateInput) ([]GenerateResult, error) {
	if err := c.FlushAll(ctx); err != nil {
		return nil, err
	}

	var results []GenerateResult
	for _, scene := range c.Computed() {
		for i, beat := range scene.Beats {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			brief := prompt.Build(prompt.Input{
				Beat:       beat,
				BeatIndex:  i,
				Scene:      scene,
				Characters: in.Characters,
				Locations:  in.Locations,
				Cast:       in.Cast,
			})
			if prev, ok := in.Existing[beat.ID]; ok && prev.PromptUsed == brief {
				results = append(results, GenerateResult{BeatID: beat.ID, Frame: prev, Skipped: true})
				continue
			}
			frame, err := gen.Generate(ctx, brief, in.Style)
			if err != nil {
				c.log.Error("frame generation failed", "beat", beat.ID, "err", err)
				results = append(results, GenerateResult{BeatID: beat.ID, Err: err})
				continue
			}
			frame.BeatID = beat.ID
			frame.SceneID = scene.ID
			frame.PromptUsed = brief
			results = append(results, GenerateResult{BeatID: beat.ID, Frame: frame})
		}
	}
	return results, nil
}
