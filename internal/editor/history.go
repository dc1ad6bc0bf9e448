/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"fmt"

	"goscreenwriter/internal/domain"
)

func (k FieldKey) historyKey() string {
	return k.BeatID + "/" + string(k.Field)
}

// UndoBeatField reverts a beat field to the value it held before the most
// recent edit. The restored text goes through the normal debounce path, so
// it persists like any other edit. Returns the restored value and false
// when there is nothing to undo.
func (c *Coordinator) UndoBeatField(beatID string, f domain.BeatField) (string, bool, error) {
	return c.stepHistory(beatID, f, true)
}

// RedoBeatField reapplies the last undone edit of a beat field.
func (c *Coordinator) RedoBeatField(beatID string, f domain.BeatField) (string, bool, error) {
	return c.stepHistory(beatID, f, false)
}

func (c *Coordinator) stepHistory(beatID string, f domain.BeatField, back bool) (string, bool, error) {
	if !f.Valid() {
		return "", false, fmt.Errorf("history for field %q: unknown field", f)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return "", false, ErrClosed
	}
	sceneID, i := c.findBeatLocked(beatID)
	if i < 0 {
		return "", false, fmt.Errorf("history for beat %q: %w", beatID, ErrBeatNotFound)
	}
	key := FieldKey{BeatID: beatID, Field: f}
	current := c.beats[sceneID][i].Content(f)

	step := c.history.Redo
	if back {
		step = c.history.Undo
	}
	s, ok := step(key.historyKey(), current)
	if !ok {
		return "", false, nil
	}
	c.applyFieldLocked(sceneID, i, key, s.Value)
	return s.Value, true, nil
}
