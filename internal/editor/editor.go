/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor coordinates in-memory script state with the external store.
// Mutations apply to local state synchronously so a UI layer can render them
// with zero latency; structural changes (add, delete, reorder) persist
// immediately and are reverted if the store rejects them, while text edits
// are debounced per beat field and coalesced into single writes.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"goscreenwriter/internal/domain"
	"goscreenwriter/internal/numbering"
	"goscreenwriter/internal/order"
	"goscreenwriter/internal/undo"
)

var (
	// ErrSceneNotFound is returned when an operation names an unknown scene.
	ErrSceneNotFound = errors.New("editor: scene not found")
	// ErrBeatNotFound is returned when an operation names an unknown beat.
	ErrBeatNotFound = errors.New("editor: beat not found")
	// ErrLastBeat is returned when deleting would leave a scene with no
	// beats. Enforced here rather than in storage so imports and cascaded
	// scene deletes stay unconstrained.
	ErrLastBeat = errors.New("editor: cannot delete the last beat of a scene")
	// ErrClosed is returned from mutations after Close.
	ErrClosed = errors.New("editor: coordinator is closed")
)

// Store is the persistence collaborator. Calls are fallible and not
// transactional across entities; the coordinator never assumes a failed call
// left partial state behind.
type Store interface {
	CreateScene(ctx context.Context, sc domain.Scene) error
	UpdateScene(ctx context.Context, sc domain.Scene) error
	DeleteScene(ctx context.Context, id string) error
	ReorderScenes(ctx context.Context, scriptID string, ups []order.Update) error

	CreateBeat(ctx context.Context, b domain.Beat) error
	UpdateBeatField(ctx context.Context, beatID string, f domain.BeatField, value string) error
	DeleteBeat(ctx context.Context, id string) error
	ReorderBeats(ctx context.Context, sceneID string, ups []order.Update) error
}

// Config controls debounce behavior.
type Config struct {
	// Debounce is the quiet period after the last keystroke before a text
	// edit is written to the store.
	Debounce time.Duration
	// SafetyInterval periodically flushes all pending edits regardless of
	// typing activity, bounding the data-loss window on a crash.
	SafetyInterval time.Duration
	// OnSaveError, if set, is invoked for persistence failures on the
	// debounce path, where no caller is waiting for an error return. The
	// edit stays pending so a later flush can retry it.
	OnSaveError func(err error)
}

// Coordinator owns the in-memory state of one script version and schedules
// its persistence. Safe for concurrent use.
type Coordinator struct {
	cfg   Config
	store Store
	log   *slog.Logger

	mu     sync.Mutex
	script domain.Script
	scenes []domain.Scene
	beats  map[string][]domain.Beat

	pending map[FieldKey]*pendingEdit
	history *undo.Manager
	closed  bool
	done    chan struct{}

	newID func() string
}

// New builds a coordinator for the given script state. beatsBySceneID may be
// nil. A nil logger falls back to slog.Default().
func New(store Store, logger *slog.Logger, script domain.Script, scenes []domain.Scene, beatsBySceneID map[string][]domain.Beat, cfg Config) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 1500 * time.Millisecond
	}
	if cfg.SafetyInterval <= 0 {
		cfg.SafetyInterval = 30 * time.Second
	}
	c := &Coordinator{
		cfg:     cfg,
		store:   store,
		log:     logger,
		script:  script,
		scenes:  append([]domain.Scene(nil), scenes...),
		beats:   make(map[string][]domain.Beat, len(beatsBySceneID)),
		pending: make(map[FieldKey]*pendingEdit),
		history: undo.NewManager(undo.Config{MaxPerKey: 100}),
		done:    make(chan struct{}),
		newID:   uuid.NewString,
	}
	for id, bs := range beatsBySceneID {
		c.beats[id] = append([]domain.Beat(nil), bs...)
	}
	go c.safetyLoop()
	return c
}

// Script returns the script header.
func (c *Coordinator) Script() domain.Script {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.script
}

// Computed returns the ordered, numbered view of the current state.
func (c *Coordinator) Computed() []numbering.ComputedScene {
	c.mu.Lock()
	scenes := append([]domain.Scene(nil), c.scenes...)
	beats := make(map[string][]domain.Beat, len(c.beats))
	for id, bs := range c.beats {
		beats[id] = append([]domain.Beat(nil), bs...)
	}
	c.mu.Unlock()
	return numbering.Compute(scenes, beats)
}

// AddScene appends a new scene after all existing ones and persists it
// immediately. On store failure the optimistic insert is reverted.
func (c *Coordinator) AddScene(ctx context.Context, sc domain.Scene) (domain.Scene, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.Scene{}, ErrClosed
	}
	if sc.ID == "" {
		sc.ID = c.newID()
	}
	sc.ScriptID = c.script.ID
	sc.SortOrder = order.Append(sceneItems(c.scenes), sc.ID).SortOrder
	c.scenes = append(c.scenes, sc)
	c.mu.Unlock()

	if err := c.store.CreateScene(ctx, sc); err != nil {
		c.mu.Lock()
		c.scenes = removeScene(c.scenes, sc.ID)
		c.mu.Unlock()
		return domain.Scene{}, fmt.Errorf("create scene: %w", err)
	}
	c.log.Info("scene added", "scene", sc.ID, "sortOrder", sc.SortOrder)
	return sc, nil
}

// UpdateScene replaces a scene's heading fields and persists immediately,
// reverting on failure.
func (c *Coordinator) UpdateScene(ctx context.Context, sc domain.Scene) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	i := sceneIndex(c.scenes, sc.ID)
	if i < 0 {
		c.mu.Unlock()
		return fmt.Errorf("update scene %q: %w", sc.ID, ErrSceneNotFound)
	}
	prev := c.scenes[i]
	sc.ScriptID = prev.ScriptID
	sc.SortOrder = prev.SortOrder
	sc.CreatedAt = prev.CreatedAt
	c.scenes[i] = sc
	c.mu.Unlock()

	if err := c.store.UpdateScene(ctx, sc); err != nil {
		c.mu.Lock()
		if j := sceneIndex(c.scenes, sc.ID); j >= 0 {
			c.scenes[j] = prev
		}
		c.mu.Unlock()
		return fmt.Errorf("update scene: %w", err)
	}
	return nil
}

// DeleteScene removes a scene and its beats. The store is expected to
// cascade the beat rows; local beat state is dropped together with the
// scene and restored if the delete fails.
func (c *Coordinator) DeleteScene(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	i := sceneIndex(c.scenes, id)
	if i < 0 {
		c.mu.Unlock()
		return fmt.Errorf("delete scene %q: %w", id, ErrSceneNotFound)
	}
	prevScene := c.scenes[i]
	prevBeats := c.beats[id]
	c.scenes = removeScene(c.scenes, id)
	delete(c.beats, id)
	c.dropPendingForBeatsLocked(prevBeats)
	c.mu.Unlock()

	if err := c.store.DeleteScene(ctx, id); err != nil {
		c.mu.Lock()
		c.scenes = append(c.scenes, prevScene)
		c.beats[id] = prevBeats
		c.mu.Unlock()
		return fmt.Errorf("delete scene: %w", err)
	}
	c.log.Info("scene deleted", "scene", id, "beats", len(prevBeats))
	return nil
}

// MoveScene relocates the scene at position from to position to within the
// ordered sequence and persists the resulting key updates immediately.
func (c *Coordinator) MoveScene(ctx context.Context, from, to int) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	prev := append([]domain.Scene(nil), c.scenes...)
	seq, ups, err := order.Move(order.Sorted(sceneItems(c.scenes)), from, to)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if len(ups) == 0 {
		c.mu.Unlock()
		return nil
	}
	c.scenes = applySceneKeys(c.scenes, seq)
	c.mu.Unlock()

	if err := c.store.ReorderScenes(ctx, c.script.ID, ups); err != nil {
		c.mu.Lock()
		c.scenes = prev
		c.mu.Unlock()
		return fmt.Errorf("reorder scenes: %w", err)
	}
	return nil
}

// ApplySceneOrder persists the full ordering produced by a drag gesture.
func (c *Coordinator) ApplySceneOrder(ctx context.Context, orderedIDs []string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	prev := append([]domain.Scene(nil), c.scenes...)
	seq, ups, err := order.Apply(sceneItems(c.scenes), orderedIDs)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if len(ups) == 0 {
		c.mu.Unlock()
		return nil
	}
	c.scenes = applySceneKeys(c.scenes, seq)
	c.mu.Unlock()

	if err := c.store.ReorderScenes(ctx, c.script.ID, ups); err != nil {
		c.mu.Lock()
		c.scenes = prev
		c.mu.Unlock()
		return fmt.Errorf("reorder scenes: %w", err)
	}
	return nil
}

// AddBeat appends an empty beat to a scene and persists it immediately.
func (c *Coordinator) AddBeat(ctx context.Context, sceneID string) (domain.Beat, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.Beat{}, ErrClosed
	}
	if sceneIndex(c.scenes, sceneID) < 0 {
		c.mu.Unlock()
		return domain.Beat{}, fmt.Errorf("add beat to %q: %w", sceneID, ErrSceneNotFound)
	}
	b := domain.Beat{
		ID:        c.newID(),
		SceneID:   sceneID,
		SortOrder: order.Append(beatItems(c.beats[sceneID]), "").SortOrder,
	}
	c.beats[sceneID] = append(c.beats[sceneID], b)
	c.mu.Unlock()

	if err := c.store.CreateBeat(ctx, b); err != nil {
		c.mu.Lock()
		c.beats[sceneID] = removeBeat(c.beats[sceneID], b.ID)
		c.mu.Unlock()
		return domain.Beat{}, fmt.Errorf("create beat: %w", err)
	}
	return b, nil
}

// DeleteBeat removes a beat, refusing to remove a scene's last one.
func (c *Coordinator) DeleteBeat(ctx context.Context, beatID string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	sceneID, i := c.findBeatLocked(beatID)
	if i < 0 {
		c.mu.Unlock()
		return fmt.Errorf("delete beat %q: %w", beatID, ErrBeatNotFound)
	}
	if len(c.beats[sceneID]) == 1 {
		c.mu.Unlock()
		return ErrLastBeat
	}
	prev := c.beats[sceneID][i]
	c.beats[sceneID] = removeBeat(c.beats[sceneID], beatID)
	c.dropPendingForBeatsLocked([]domain.Beat{prev})
	c.mu.Unlock()

	if err := c.store.DeleteBeat(ctx, beatID); err != nil {
		c.mu.Lock()
		c.beats[sceneID] = append(c.beats[sceneID], prev)
		c.mu.Unlock()
		return fmt.Errorf("delete beat: %w", err)
	}
	return nil
}

// MoveBeat relocates a beat within its scene.
func (c *Coordinator) MoveBeat(ctx context.Context, sceneID string, from, to int) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	bs, ok := c.beats[sceneID]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("move beat in %q: %w", sceneID, ErrSceneNotFound)
	}
	prev := append([]domain.Beat(nil), bs...)
	seq, ups, err := order.Move(order.Sorted(beatItems(bs)), from, to)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if len(ups) == 0 {
		c.mu.Unlock()
		return nil
	}
	c.beats[sceneID] = applyBeatKeys(bs, seq)
	c.mu.Unlock()

	if err := c.store.ReorderBeats(ctx, sceneID, ups); err != nil {
		c.mu.Lock()
		c.beats[sceneID] = prev
		c.mu.Unlock()
		return fmt.Errorf("reorder beats: %w", err)
	}
	return nil
}

// ApplyBeatOrder persists the full beat ordering of one scene after a drag.
func (c *Coordinator) ApplyBeatOrder(ctx context.Context, sceneID string, orderedIDs []string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	bs, ok := c.beats[sceneID]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("reorder beats in %q: %w", sceneID, ErrSceneNotFound)
	}
	prev := append([]domain.Beat(nil), bs...)
	seq, ups, err := order.Apply(beatItems(bs), orderedIDs)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if len(ups) == 0 {
		c.mu.Unlock()
		return nil
	}
	c.beats[sceneID] = applyBeatKeys(bs, seq)
	c.mu.Unlock()

	if err := c.store.ReorderBeats(ctx, sceneID, ups); err != nil {
		c.mu.Lock()
		c.beats[sceneID] = prev
		c.mu.Unlock()
		return fmt.Errorf("reorder beats: %w", err)
	}
	return nil
}

func (c *Coordinator) findBeatLocked(beatID string) (string, int) {
	for sceneID, bs := range c.beats {
		for i, b := range bs {
			if b.ID == beatID {
				return sceneID, i
			}
		}
	}
	return "", -1
}

func sceneIndex(scenes []domain.Scene, id string) int {
	for i, sc := range scenes {
		if sc.ID == id {
			return i
		}
	}
	return -1
}

func removeScene(scenes []domain.Scene, id string) []domain.Scene {
	out := scenes[:0]
	for _, sc := range scenes {
		if sc.ID != id {
			out = append(out, sc)
		}
	}
	return out
}

func removeBeat(beats []domain.Beat, id string) []domain.Beat {
	out := beats[:0]
	for _, b := range beats {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}

func sceneItems(scenes []domain.Scene) []order.Item {
	out := make([]order.Item, len(scenes))
	for i, sc := range scenes {
		out[i] = order.Item{ID: sc.ID, SortOrder: sc.SortOrder}
	}
	return out
}

func beatItems(beats []domain.Beat) []order.Item {
	out := make([]order.Item, len(beats))
	for i, b := range beats {
		out[i] = order.Item{ID: b.ID, SortOrder: b.SortOrder}
	}
	return out
}

func applySceneKeys(scenes []domain.Scene, seq []order.Item) []domain.Scene {
	keys := make(map[string]int, len(seq))
	for _, it := range seq {
		keys[it.ID] = it.SortOrder
	}
	out := append([]domain.Scene(nil), scenes...)
	for i := range out {
		if k, ok := keys[out[i].ID]; ok {
			out[i].SortOrder = k
		}
	}
	return out
}

func applyBeatKeys(beats []domain.Beat, seq []order.Item) []domain.Beat {
	keys := make(map[string]int, len(seq))
	for _, it := range seq {
		keys[it.ID] = it.SortOrder
	}
	out := append([]domain.Beat(nil), beats...)
	for i := range out {
		if k, ok := keys[out[i].ID]; ok {
			out[i].SortOrder = k
		}
	}
	return out
}
