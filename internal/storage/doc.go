/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists scripts and everything they own in a single
// SQLite database per workspace (WAL mode, pure-Go driver). Scenes, beats,
// characters, tags, locations, cast, styles and frames hang off a script
// version via cascading foreign keys; a contentless FTS5 index over
// markup-stripped beat text powers in-app search. Script versions are
// full-copy forks sharing a group id; history is never rewritten.
package storage
