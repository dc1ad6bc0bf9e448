/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"regexp"
	"strings"
)

// DefaultTag describes one of the tags seeded on every new script.
// Slugs of default tags are stable and must not change.
type DefaultTag struct {
	Name     string
	Slug     string
	Category string
	Color    string
}

// DefaultTags is the standard tag set for a fresh script. Colors are
// reserved for these tags.
var DefaultTags = []DefaultTag{
	{Name: "Interview", Slug: "interview", Category: "general", Color: "#f97316"},
	{Name: "B-Roll", Slug: "broll", Category: "general", Color: "#3b82f6"},
	{Name: "Graphics", Slug: "gfx", Category: "general", Color: "#22c55e"},
	{Name: "Overlay Graphics", Slug: "gfx-overlay", Category: "general", Color: "#84cc16"},
	{Name: "Stock", Slug: "stock", Category: "general", Color: "#38bdf8"},
	{Name: "Transition", Slug: "transition", Category: "general", Color: "#14b8a6"},
	{Name: "VFX", Slug: "vfx", Category: "general", Color: "#8b5cf6"},
}

var (
	slugInvalid  = regexp.MustCompile(`[^a-z0-9]+`)
	slugTrimDash = regexp.MustCompile(`^-+|-+$`)
)

// Slugify derives a tag slug from a display name: lower-case, runs of
// non-alphanumerics collapsed to a single dash, leading/trailing dashes
// stripped. An all-invalid name yields "tag".
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugTrimDash.ReplaceAllString(s, "")
	if s == "" {
		return "tag"
	}
	return s
}

// IsDefaultSlug reports whether slug belongs to the seeded default tag set.
func IsDefaultSlug(slug string) bool {
	for _, t := range DefaultTags {
		if t.Slug == slug {
			return true
		}
	}
	return false
}
