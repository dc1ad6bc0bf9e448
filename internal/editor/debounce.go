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
	"errors"
	"fmt"
	"time"

	"goscreenwriter/internal/domain"
	"goscreenwriter/internal/undo"
)

// FieldKey identifies one debounced edit stream: a beat plus one of its
// three content channels.
type FieldKey struct {
	BeatID string
	Field  domain.BeatField
}

type pendingEdit struct {
	key   FieldKey
	value string
	timer *time.Timer
}

// SetBeatField applies a text edit to local state and re-arms the field's
// debounce timer. The store write happens after the quiet period, or earlier
// via FlushAll or the safety flush. A failed write never reverts the typed
// text; the edit stays pending and the failure is reported through
// Config.OnSaveError.
func (c *Coordinator) SetBeatField(beatID string, f domain.BeatField, value string) error {
	if !f.Valid() {
		return fmt.Errorf("set beat field %q: unknown field", f)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	sceneID, i := c.findBeatLocked(beatID)
	if i < 0 {
		return fmt.Errorf("set beat field on %q: %w", beatID, ErrBeatNotFound)
	}
	key := FieldKey{BeatID: beatID, Field: f}
	if prev := c.beats[sceneID][i].Content(f); prev != value {
		c.history.Push(undo.Snapshot{Key: key.historyKey(), Value: prev, TS: time.Now()})
	}
	c.applyFieldLocked(sceneID, i, key, value)
	return nil
}

// applyFieldLocked mutates local beat state and arms or re-arms the field's
// debounce timer. Caller holds c.mu.
func (c *Coordinator) applyFieldLocked(sceneID string, i int, key FieldKey, value string) {
	c.beats[sceneID][i].SetContent(key.Field, value)
	c.beats[sceneID][i].UpdatedAt = time.Now()

	if p, ok := c.pending[key]; ok {
		p.value = value
		p.timer.Reset(c.cfg.Debounce)
		return
	}
	p := &pendingEdit{key: key, value: value}
	p.timer = time.AfterFunc(c.cfg.Debounce, func() { c.flushOne(key) })
	c.pending[key] = p
}

// Dirty reports whether any edits are waiting to be persisted.
func (c *Coordinator) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending) > 0
}

// FlushAll synchronously persists every pending edit. Edits that fail stay
// pending for a later retry; the combined error is returned.
func (c *Coordinator) FlushAll(ctx context.Context) error {
	c.mu.Lock()
	edits := make([]pendingEdit, 0, len(c.pending))
	for _, p := range c.pending {
		p.timer.Stop()
		edits = append(edits, pendingEdit{key: p.key, value: p.value})
	}
	c.mu.Unlock()

	var errs []error
	for _, e := range edits {
		if err := c.persistEdit(ctx, e.key, e.value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// flushOne is the debounce timer callback.
func (c *Coordinator) flushOne(key FieldKey) {
	c.mu.Lock()
	p, ok := c.pending[key]
	if !ok {
		c.mu.Unlock()
		return
	}
	value := p.value
	c.mu.Unlock()

	if err := c.persistEdit(context.Background(), key, value); err != nil {
		c.log.Error("debounced save failed", "beat", key.BeatID, "field", string(key.Field), "err", err)
		if c.cfg.OnSaveError != nil {
			c.cfg.OnSaveError(err)
		}
	}
}

// persistEdit writes one field value and clears its pending entry on
// success. A newer value armed while the write was in flight is kept
// pending.
func (c *Coordinator) persistEdit(ctx context.Context, key FieldKey, value string) error {
	if err := c.store.UpdateBeatField(ctx, key.BeatID, key.Field, value); err != nil {
		return fmt.Errorf("save %s of beat %s: %w", key.Field, key.BeatID, err)
	}
	c.mu.Lock()
	if p, ok := c.pending[key]; ok && p.value == value {
		p.timer.Stop()
		delete(c.pending, key)
	}
	c.mu.Unlock()
	return nil
}

// dropPendingForBeatsLocked cancels pending edits for beats that no longer
// exist. Caller holds c.mu.
func (c *Coordinator) dropPendingForBeatsLocked(beats []domain.Beat) {
	for _, b := range beats {
		for _, f := range []domain.BeatField{domain.FieldAudio, domain.FieldVisual, domain.FieldNotes} {
			key := FieldKey{BeatID: b.ID, Field: f}
			if p, ok := c.pending[key]; ok {
				p.timer.Stop()
				delete(c.pending, key)
			}
			c.history.Clear(key.historyKey())
		}
	}
}

// safetyLoop periodically flushes pending edits so a crash can lose at most
// one interval's worth of typing.
func (c *Coordinator) safetyLoop() {
	t := time.NewTicker(c.cfg.SafetyInterval)
	defer t.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-t.C:
			if err := c.FlushAll(context.Background()); err != nil {
				c.log.Error("safety flush failed", "err", err)
			}
		}
	}
}

// Close stops the safety loop, flushes everything still pending and marks
// the coordinator unusable for further mutations.
func (c *Coordinator) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	return c.FlushAll(ctx)
}
