/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"fmt"
	"testing"
	"time"
)

func TestUndoRedoRoundTrip(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Nanosecond})
	base := time.Now()

	m.Push(Snapshot{Key: "b1/audio", Value: "first", TS: base})
	m.Push(Snapshot{Key: "b1/audio", Value: "second", TS: base.Add(time.Second)})

	s, ok := m.Undo("b1/audio", "third")
	if !ok || s.Value != "second" {
		t.Fatalf("Undo = %+v, %v; want second", s, ok)
	}
	s, ok = m.Undo("b1/audio", "second")
	if !ok || s.Value != "first" {
		t.Fatalf("Undo = %+v, %v; want first", s, ok)
	}
	if _, ok := m.Undo("b1/audio", "first"); ok {
		t.Fatal("Undo on empty stack should report false")
	}

	s, ok = m.Redo("b1/audio", "first")
	if !ok || s.Value != "second" {
		t.Fatalf("Redo = %+v, %v; want second", s, ok)
	}
	s, ok = m.Redo("b1/audio", "second")
	if !ok || s.Value != "third" {
		t.Fatalf("Redo = %+v, %v; want third", s, ok)
	}
	if _, ok := m.Redo("b1/audio", "third"); ok {
		t.Fatal("Redo on empty stack should report false")
	}
}

func TestPushClearsRedo(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Nanosecond})
	base := time.Now()
	m.Push(Snapshot{Key: "k", Value: "a", TS: base})
	if _, ok := m.Undo("k", "b"); !ok {
		t.Fatal("undo failed")
	}
	m.Push(Snapshot{Key: "k", Value: "a", TS: base.Add(time.Second)})
	if _, ok := m.Redo("k", "a"); ok {
		t.Fatal("redo stack should be cleared by a new push")
	}
}

func TestBurstCoalescing(t *testing.T) {
	m := NewManager(Config{MinInterval: 100 * time.Millisecond})
	base := time.Now()
	// Three keystrokes inside the interval; only the pre-burst value stays.
	m.Push(Snapshot{Key: "k", Value: "hel", TS: base})
	m.Push(Snapshot{Key: "k", Value: "hell", TS: base.Add(10 * time.Millisecond)})
	m.Push(Snapshot{Key: "k", Value: "hello", TS: base.Add(20 * time.Millisecond)})

	if _, _, n := m.Stats(); n != 1 {
		t.Fatalf("snapshots = %d, want 1", n)
	}
	s, ok := m.Undo("k", "hello w")
	if !ok || s.Value != "hel" {
		t.Fatalf("Undo = %+v, %v; want pre-burst value hel", s, ok)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Nanosecond})
	base := time.Now()
	m.Push(Snapshot{Key: "b1/audio", Value: "a", TS: base})
	m.Push(Snapshot{Key: "b1/visual", Value: "v", TS: base})

	if _, ok := m.Undo("b1/notes", "n"); ok {
		t.Fatal("untouched key should have no history")
	}
	s, ok := m.Undo("b1/visual", "v2")
	if !ok || s.Value != "v" {
		t.Fatalf("Undo visual = %+v, %v", s, ok)
	}
	s, ok = m.Undo("b1/audio", "a2")
	if !ok || s.Value != "a" {
		t.Fatalf("Undo audio = %+v, %v", s, ok)
	}
}

func TestMaxPerKeyDropsOldest(t *testing.T) {
	m := NewManager(Config{MaxPerKey: 2, MinInterval: time.Nanosecond})
	base := time.Now()
	for i := 0; i < 4; i++ {
		m.Push(Snapshot{Key: "k", Value: fmt.Sprintf("v%d", i), TS: base.Add(time.Duration(i) * time.Second)})
	}
	if _, _, n := m.Stats(); n != 2 {
		t.Fatalf("snapshots = %d, want 2", n)
	}
	s, _ := m.Undo("k", "cur")
	if s.Value != "v3" {
		t.Fatalf("top = %q, want v3", s.Value)
	}
	s, _ = m.Undo("k", "v3")
	if s.Value != "v2" {
		t.Fatalf("next = %q, want v2", s.Value)
	}
}

func TestGlobalByteCapPrunesOldestAcrossKeys(t *testing.T) {
	m := NewManager(Config{MaxBytes: 10, MinInterval: time.Nanosecond})
	base := time.Now()
	m.Push(Snapshot{Key: "old", Value: "aaaaaa", TS: base})
	m.Push(Snapshot{Key: "new", Value: "bbbbbb", TS: base.Add(time.Second)})

	if _, ok := m.Undo("old", "x"); ok {
		t.Fatal("oldest snapshot should have been pruned")
	}
	s, ok := m.Undo("new", "x")
	if !ok || s.Value != "bbbbbb" {
		t.Fatalf("newest snapshot lost: %+v, %v", s, ok)
	}
}

func TestClearAndStats(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Nanosecond})
	base := time.Now()
	m.Push(Snapshot{Key: "k1", Value: "abcd", TS: base})
	m.Push(Snapshot{Key: "k2", Value: "ef", TS: base})

	bytes, keys, snaps := m.Stats()
	if bytes != 6 || keys != 2 || snaps != 2 {
		t.Fatalf("Stats = %d, %d, %d", bytes, keys, snaps)
	}
	m.Clear("k1")
	bytes, keys, snaps = m.Stats()
	if bytes != 2 || keys != 1 || snaps != 1 {
		t.Fatalf("Stats after Clear = %d, %d, %d", bytes, keys, snaps)
	}
	if _, ok := m.Undo("k1", "x"); ok {
		t.Fatal("cleared key should have no history")
	}
}
