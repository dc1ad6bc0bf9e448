/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import "goscreenwriter/internal/domain"

// Outline is a parsed plain-text script outline: sluglines with beat
// bullets underneath, ready to be loaded into a workspace.
type Outline struct {
	Title  string
	Scenes []Scene
}

// Scene is one slugline plus its beats. LineNo is the 1-based source line
// of the heading.
type Scene struct {
	IntExt    domain.IntExt
	Location  string
	TimeOfDay string
	Notes     string
	Beats     []Beat
	LineNo    int
}

// Beat carries the three text channels of one bullet. Channel text keeps
// the author's markup untouched.
type Beat struct {
	Audio  string
	Visual string
	Notes  string
	LineNo int
}

// Error is a parse diagnostic with position context. Parsing never aborts;
// errors accumulate and the outline keeps whatever was readable.
type Error struct {
	Line    int
	Message string
}
