/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"goscreenwriter/internal/backend"
	"goscreenwriter/internal/config"
	"goscreenwriter/internal/crash"
	"goscreenwriter/internal/domain"
	"goscreenwriter/internal/editor"
	"goscreenwriter/internal/export"
	"goscreenwriter/internal/generate"
	applog "goscreenwriter/internal/log"
	"goscreenwriter/internal/numbering"
	"goscreenwriter/internal/order"
	"goscreenwriter/internal/script"
	"goscreenwriter/internal/storage"
	"goscreenwriter/internal/stylepack"
	"goscreenwriter/internal/version"
)

func usage() {
	fmt.Println("Go Screenwriter - beat and scene editor")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  goscreenwriter version|-v|--version            Show version")
	fmt.Println("  goscreenwriter init <dir> <title>              Create a workspace with a new script")
	fmt.Println("  goscreenwriter scripts <dir>                   List script versions in a workspace")
	fmt.Println("  goscreenwriter open <dir> <script-id>          Print the numbered scene/beat outline")
	fmt.Println("  goscreenwriter fork <dir> <script-id>          Fork a new draft version of a script")
	fmt.Println("  goscreenwriter search <dir> <script-id> <q>    Full-text search over beats")
	fmt.Println("  goscreenwriter import <dir> <outline.txt>      Import a plain-text outline as a new script")
	fmt.Println("  goscreenwriter export <dir> <script-id> <out>  Export to .pdf, .txt or .json bundle")
	fmt.Println("  goscreenwriter styles export <dir> <pack.zip>  Zip the workspace styles directory")
	fmt.Println("  goscreenwriter styles install <dir> <pack.zip> Install a style pack into a workspace")
	fmt.Println("  goscreenwriter generate <dir> <script-id>      Generate storyboard frames for changed beats")
	fmt.Println("  goscreenwriter push <dir> <script-id>          Upload a script version to the sync server")
	fmt.Println("  goscreenwriter pull <dir> <script-id>          Download a script version from the sync server")
	fmt.Println("  goscreenwriter serve-sync                      Run the sync server in the foreground")
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	defer func() { crash.Recover(nil, "") }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}

	ctx := context.Background()
	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("Go Screenwriter - beat and scene editor")
		fmt.Println(version.String())

	case "init":
		if len(args) < 4 {
			fmt.Println("init requires <dir> and <title>")
			usage()
			os.Exit(2)
		}
		abs, _ := filepath.Abs(args[2])
		st := mustOpen(l, abs)
		defer closeStore(l, st)
		sc, err := st.CreateScript(ctx, domain.Script{Title: args[3]})
		if err != nil {
			fail(l, "init failed", err)
		}
		fmt.Println("Created workspace at", abs)
		fmt.Println("Script id:", sc.ID)

	case "scripts":
		if len(args) < 3 {
			fmt.Println("scripts requires <dir>")
			os.Exit(2)
		}
		st := mustOpen(l, mustAbs(args[2]))
		defer closeStore(l, st)
		list, err := st.ListScripts(ctx)
		if err != nil {
			fail(l, "list failed", err)
		}
		for _, sc := range list {
			fmt.Printf("%s  v%d  %-8s  %s\n", sc.ID, sc.Version, sc.Status, sc.Title)
		}

	case "open":
		if len(args) < 4 {
			fmt.Println("open requires <dir> and <script-id>")
			os.Exit(2)
		}
		st := mustOpen(l, mustAbs(args[2]))
		defer closeStore(l, st)
		printOutline(ctx, l, st, args[3])

	case "fork":
		if len(args) < 4 {
			fmt.Println("fork requires <dir> and <script-id>")
			os.Exit(2)
		}
		st := mustOpen(l, mustAbs(args[2]))
		defer closeStore(l, st)
		fork, err := st.ForkVersion(ctx, args[3])
		if err != nil {
			fail(l, "fork failed", err)
		}
		fmt.Printf("Forked version %d: %s\n", fork.Version, fork.ID)

	case "search":
		if len(args) < 5 {
			fmt.Println("search requires <dir>, <script-id> and <query>")
			os.Exit(2)
		}
		st := mustOpen(l, mustAbs(args[2]))
		defer closeStore(l, st)
		res, err := st.SearchBeats(ctx, storage.SearchQuery{ScriptID: args[3], Text: strings.Join(args[4:], " ")})
		if err != nil {
			fail(l, "search failed", err)
		}
		for _, r := range res {
			fmt.Printf("%s  %s\n", r.BeatID, r.Snippet)
		}
		if len(res) == 0 {
			fmt.Println("no matches")
		}

	case "import":
		if len(args) < 4 {
			fmt.Println("import requires <dir> and <outline.txt>")
			os.Exit(2)
		}
		st := mustOpen(l, mustAbs(args[2]))
		defer closeStore(l, st)
		runImport(ctx, l, st, args[3])

	case "styles":
		if len(args) < 5 || (args[2] != "export" && args[2] != "install") {
			fmt.Println("styles requires export|install, <dir> and <pack.zip>")
			os.Exit(2)
		}
		ws := mustAbs(args[3])
		switch args[2] {
		case "export":
			if err := stylepack.Export(ws, args[4]); err != nil {
				fail(l, "style pack export failed", err)
			}
			fmt.Println("Exported style pack to", args[4])
		case "install":
			n, err := stylepack.Install(ws, args[4])
			if err != nil {
				fail(l, "style pack install failed", err)
			}
			fmt.Printf("Installed %d files\n", n)
		}

	case "export":
		if len(args) < 5 {
			fmt.Println("export requires <dir>, <script-id> and <out>")
			os.Exit(2)
		}
		st := mustOpen(l, mustAbs(args[2]))
		defer closeStore(l, st)
		b, err := st.ExportBundle(ctx, args[3])
		if err != nil {
			fail(l, "export failed", err)
		}
		out := args[4]
		switch strings.ToLower(filepath.Ext(out)) {
		case ".pdf":
			err = export.PDF(b, out, export.PDFOptions{IncludeNotes: true})
		case ".txt":
			err = export.WriteText(b, out)
		case ".json":
			var raw []byte
			if raw, err = json.MarshalIndent(b, "", "  "); err == nil {
				err = os.WriteFile(out, raw, 0o644)
			}
		default:
			err = fmt.Errorf("unsupported export format %q (use .pdf, .txt or .json)", filepath.Ext(out))
		}
		if err != nil {
			fail(l, "export failed", err)
		}
		fmt.Println("Exported to", out)

	case "generate":
		if len(args) < 4 {
			fmt.Println("generate requires <dir> and <script-id>")
			os.Exit(2)
		}
		st := mustOpen(l, mustAbs(args[2]))
		defer closeStore(l, st)
		runGenerate(ctx, l, st, args[3])

	case "serve-sync":
		if err := backend.Start(); err != nil {
			fail(l, "sync server failed", err)
		}

	case "push", "pull":
		if len(args) < 4 {
			fmt.Printf("%s requires <dir> and <script-id>\n", args[1])
			os.Exit(2)
		}
		st := mustOpen(l, mustAbs(args[2]))
		defer closeStore(l, st)
		runSync(ctx, l, st, args[1], args[3])

	default:
		usage()
		os.Exit(2)
	}
}

func mustAbs(dir string) string {
	abs, _ := filepath.Abs(dir)
	return abs
}

func mustOpen(l *slog.Logger, dir string) *storage.Store {
	st, err := storage.Open(dir)
	if err != nil {
		fail(l, "open workspace failed", err)
	}
	return st
}

func closeStore(l *slog.Logger, st *storage.Store) {
	if err := st.Close(); err != nil {
		l.Error("close store", slog.Any("err", err))
	}
}

func fail(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}

func printOutline(ctx context.Context, l *slog.Logger, st *storage.Store, scriptID string) {
	sc, err := st.GetScript(ctx, scriptID)
	if err != nil {
		fail(l, "open script failed", err)
	}
	scenes, err := st.ListScenes(ctx, scriptID)
	if err != nil {
		fail(l, "list scenes failed", err)
	}
	beats, err := st.ListBeats(ctx, scriptID)
	if err != nil {
		fail(l, "list beats failed", err)
	}
	fmt.Printf("%s (v%d, %s)\n", sc.Title, sc.Version, sc.Status)
	for _, cs := range numbering.Compute(scenes, beats) {
		fmt.Printf("%d  %s\n", cs.Number, numbering.Heading(cs.Scene))
		for i, b := range cs.Beats {
			fmt.Printf("  %s  %s\n", numbering.BeatLetter(i+1), b.ID)
		}
	}
}

func runImport(ctx context.Context, l *slog.Logger, st *storage.Store, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fail(l, "read outline failed", err)
	}
	o, perrs := script.Parse(string(data))
	for _, pe := range perrs {
		fmt.Printf("line %d: %s\n", pe.Line, pe.Message)
	}
	if len(o.Scenes) == 0 {
		fail(l, "import failed", errors.New("outline has no scenes"))
	}
	title := o.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	sc, err := st.CreateScript(ctx, domain.Script{Title: title})
	if err != nil {
		fail(l, "create script failed", err)
	}
	var sceneItems []order.Item
	beats := 0
	for _, osc := range o.Scenes {
		scene := domain.Scene{
			ID:           uuid.NewString(),
			ScriptID:     sc.ID,
			IntExt:       osc.IntExt,
			LocationName: osc.Location,
			TimeOfDay:    osc.TimeOfDay,
			Notes:        osc.Notes,
		}
		it := order.Append(sceneItems, scene.ID)
		scene.SortOrder = it.SortOrder
		sceneItems = append(sceneItems, it)
		if err := st.CreateScene(ctx, scene); err != nil {
			fail(l, "create scene failed", err)
		}
		var beatItems []order.Item
		for _, ob := range osc.Beats {
			b := domain.Beat{
				ID:      uuid.NewString(),
				SceneID: scene.ID,
				Audio:   ob.Audio,
				Visual:  ob.Visual,
				Notes:   ob.Notes,
			}
			bit := order.Append(beatItems, b.ID)
			b.SortOrder = bit.SortOrder
			beatItems = append(beatItems, bit)
			if err := st.CreateBeat(ctx, b); err != nil {
				fail(l, "create beat failed", err)
			}
			beats++
		}
	}
	fmt.Printf("Imported %q: %d scenes, %d beats\n", title, len(o.Scenes), beats)
	fmt.Println("Script id:", sc.ID)
}

func runGenerate(ctx context.Context, l *slog.Logger, st *storage.Store, scriptID string) {
	cfg, sec, err := config.Load()
	if err != nil {
		fail(l, "load config failed", err)
	}
	if cfg.Generation.BaseURL == "" {
		fail(l, "generation not configured", errors.New("set generation.base_url or "+config.EnvGenerationURL))
	}
	gen := generate.NewClient(cfg.Generation.BaseURL, sec.GenerationAPIKey)

	sc, err := st.GetScript(ctx, scriptID)
	if err != nil {
		fail(l, "open script failed", err)
	}
	scenes, err := st.ListScenes(ctx, scriptID)
	if err != nil {
		fail(l, "list scenes failed", err)
	}
	beats, err := st.ListBeats(ctx, scriptID)
	if err != nil {
		fail(l, "list beats failed", err)
	}
	co := editor.New(st, l, sc, scenes, beats, editor.Config{
		Debounce:       time.Duration(cfg.Editor.DebounceMs) * time.Millisecond,
		SafetyInterval: time.Duration(cfg.Editor.SafetyIntervalSec) * time.Second,
	})
	defer func() { _ = co.Close(ctx) }()

	chars, err := st.ListCharacters(ctx, scriptID)
	if err != nil {
		fail(l, "list characters failed", err)
	}
	locs, err := st.ListLocations(ctx, scriptID)
	if err != nil {
		fail(l, "list locations failed", err)
	}
	cast, err := st.ListCast(ctx, scriptID)
	if err != nil {
		fail(l, "list cast failed", err)
	}
	style, err := st.GetStyle(ctx, scriptID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		fail(l, "load style failed", err)
	}
	style.ScriptID = scriptID
	existing, err := st.ListFrames(ctx, scriptID)
	if err != nil {
		fail(l, "list frames failed", err)
	}

	results, err := co.GenerateAll(ctx, gen, editor.GenerateInput{
		Style:      style,
		Characters: chars,
		Locations:  locs,
		Cast:       cast,
		Existing:   existing,
	})
	if err != nil {
		fail(l, "generate failed", err)
	}
	generated, skipped, failed := 0, 0, 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			fmt.Printf("beat %s: %v\n", r.BeatID, r.Err)
		case r.Skipped:
			skipped++
		default:
			generated++
			if _, err := st.PutFrame(ctx, r.Frame); err != nil {
				fail(l, "store frame failed", err)
			}
		}
	}
	fmt.Printf("Generated %d frames (%d unchanged, %d failed)\n", generated, skipped, failed)
}

func runSync(ctx context.Context, l *slog.Logger, st *storage.Store, verb, scriptID string) {
	cfg, sec, err := config.Load()
	if err != nil {
		fail(l, "load config failed", err)
	}
	if !cfg.General.EnableSync {
		fail(l, "sync disabled", errors.New("enable_sync is off (set general.enable_sync or "+config.EnvEnableSync+")"))
	}
	c := backend.NewClient(cfg.Backend.BaseURL, sec.BackendToken)
	if c.Token == "" {
		if err := c.FetchToken(ctx, "cli"); err != nil {
			fail(l, "auth failed", err)
		}
	}

	switch verb {
	case "push":
		b, err := st.ExportBundle(ctx, scriptID)
		if err != nil {
			fail(l, "export failed", err)
		}
		if err := c.PushBundle(ctx, b); err != nil {
			fail(l, "push failed", err)
		}
		fmt.Println("Pushed", scriptID)
	case "pull":
		b, err := c.GetBundle(ctx, scriptID)
		if err != nil {
			fail(l, "pull failed", err)
		}
		raw, err := json.Marshal(b)
		if err != nil {
			fail(l, "encode bundle failed", err)
		}
		sc, err := st.ImportBundle(ctx, raw)
		if err != nil {
			fail(l, "import failed", err)
		}
		fmt.Printf("Pulled %s (v%d)\n", sc.ID, sc.Version)
	}
}
