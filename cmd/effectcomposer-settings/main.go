/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"effectcomposer/internal/config"
	"effectcomposer/internal/crash"
	"effectcomposer/internal/effects"
	"effectcomposer/internal/kvstore"
	applog "effectcomposer/internal/log"
	"effectcomposer/internal/model"
	"effectcomposer/internal/settings"
	"effectcomposer/internal/ui"
	"effectcomposer/internal/version"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "Effect Composer preferences tool")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  effectcomposer-settings version                      Show version")
	fmt.Fprintln(w, "  effectcomposer-settings sources [list]               List source images")
	fmt.Fprintln(w, "  effectcomposer-settings sources add <path>           Add a custom source image")
	fmt.Fprintln(w, "  effectcomposer-settings sources remove <index>       Remove the source image at <index>")
	fmt.Fprintln(w, "  effectcomposer-settings backgrounds                  List background images")
	fmt.Fprintln(w, "  effectcomposer-settings recent [list]                List recent projects")
	fmt.Fprintln(w, "  effectcomposer-settings recent open <name> <file>    Move a project to the top of the list")
	fmt.Fprintln(w, "  effectcomposer-settings recent remove <file>         Remove a project from the list")
	fmt.Fprintln(w, "  effectcomposer-settings recent clear                 Clear the list")
	fmt.Fprintln(w, "  effectcomposer-settings shaders [legacy on|off]      Show or set the legacy shader mode")
	fmt.Fprintln(w, "  effectcomposer-settings font [set <file>|size <n>|reset]")
	fmt.Fprintln(w, "  effectcomposer-settings export                       Write settings as JSON to stdout")
	fmt.Fprintln(w, "  effectcomposer-settings import <file>                Merge settings from a JSON export")
	fmt.Fprintln(w, "  effectcomposer-settings keys [list]                  List keys held by the settings store")
	fmt.Fprintln(w, "  effectcomposer-settings keys unset <key>             Drop a stored key so it reads back as its default")
	fmt.Fprintln(w, "  effectcomposer-settings config [show]                Show the configuration and environment overrides")
	fmt.Fprintln(w, "  effectcomposer-settings config set <key> <value>     Persist a configuration value")
	fmt.Fprintln(w, "  effectcomposer-settings ui                           Launch the preferences window (build with -tags fyne)")
}

// errUsage marks bad invocations; main prints usage and exits with 2.
var errUsage = errors.New("usage")

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	l := applog.WithComponent("cli")

	target := &crash.Target{}
	if dir, err := config.Dir(); err == nil {
		target.ReportDir = dir
	}
	defer crash.Recover(target)

	args := os.Args[1:]
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) == 0 {
		usage(os.Stdout)
		return
	}
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Println("Effect Composer preferences tool")
		fmt.Println(version.String())
		return
	case "help", "--help", "-h":
		usage(os.Stdout)
		return
	case "config":
		exitOnError(runConfig(os.Stdout, args[1:]), args[0])
		return
	}

	store, err := openStore(cfg)
	if err != nil {
		l.Error("open settings store failed", slog.Any("err", err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	target.Store = store
	target.StorePath = store.Location()

	if args[0] == "ui" {
		if err := launchUI(cfg.General.DataRoot, store, ui.Run); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		return
	}

	err = run(os.Stdout, cfg, store, args)
	closeStore(store)
	exitOnError(err, args[0])
}

// exitOnError prints err and exits: 2 for usage errors, 1 otherwise.
func exitOnError(err error, cmd string) {
	switch {
	case err == nil:
		return
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		usage(os.Stderr)
		os.Exit(2)
	default:
		applog.WithComponent("cli").Error("command failed", slog.String("cmd", cmd), slog.Any("err", err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openStore opens the configured settings backend.
func openStore(cfg config.AppConfig) (*kvstore.Store, error) {
	switch cfg.Settings.Backend {
	case config.BackendMemory:
		return kvstore.New(kvstore.NewMemory()), nil
	case config.BackendPrefs:
		// The UI owns toolkit preferences; other commands work on an empty store.
		return kvstore.New(prefsPlaceholder{kvstore.NewMemory()}), nil
	}
	path, err := cfg.SettingsPath()
	if err != nil {
		return nil, err
	}
	if cfg.Settings.Backend == config.BackendSQLite {
		b, err := kvstore.OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return kvstore.New(b), nil
	}
	b, err := kvstore.OpenYAML(path)
	if err != nil {
		return nil, err
	}
	return kvstore.New(b), nil
}

func closeStore(store *kvstore.Store) {
	if err := store.Close(); err != nil {
		applog.WithComponent("cli").Error("close settings store failed", slog.Any("err", err))
	}
}

// launchUI runs the window and closes store once it returns, on success or
// failure. The toolkit preferences backend is opened by the window itself.
func launchUI(dataRoot string, store *kvstore.Store, runUI func(string, *kvstore.Store) error) error {
	defer closeStore(store)
	uiStore := store
	if store.Location() == config.BackendPrefs {
		uiStore = nil
	}
	return runUI(dataRoot, uiStore)
}

type prefsPlaceholder struct{ *kvstore.Memory }

func (prefsPlaceholder) Location() string { return config.BackendPrefs }

// newSettings builds the facade with the effect manager reading the legacy flag back from it.
func newSettings(cfg config.AppConfig, store *kvstore.Store) (*settings.Settings, *effects.Manager) {
	mgr := effects.NewManager(nil)
	st := settings.New(settings.Options{
		Store:    store,
		DataRoot: cfg.General.DataRoot,
		Resolver: effects.Resolver{DataRoot: cfg.General.DataRoot},
		Effects:  mgr,
	})
	mgr.SetLegacySource(st.UseLegacyShaders)
	mgr.UpdateBakedShaderVersions()
	return st, mgr
}

func run(out io.Writer, cfg config.AppConfig, store *kvstore.Store, args []string) error {
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}
	rest := args[min(2, len(args)):]
	if args[0] == "keys" {
		return runKeys(out, store, sub, rest)
	}
	st, mgr := newSettings(cfg, store)
	switch args[0] {
	case "sources":
		return runSources(out, st, sub, rest)
	case "backgrounds":
		printImages(out, st.BackgroundImages())
		return nil
	case "recent":
		return runRecent(out, st, sub, rest)
	case "shaders":
		return runShaders(out, st, mgr, args[1:])
	case "font":
		return runFont(out, st, sub, rest)
	case "export":
		return st.Export(out)
	case "import":
		if len(args) < 2 {
			return fmt.Errorf("%w: import requires <file>", errUsage)
		}
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		return st.Import(f)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
}

func runSources(out io.Writer, st *settings.Settings, sub string, rest []string) error {
	switch sub {
	case "", "list":
		printImages(out, st.SourceImages())
		return nil
	case "add":
		if len(rest) < 1 {
			return fmt.Errorf("%w: sources add requires <path>", errUsage)
		}
		p := rest[0]
		if abs, err := filepath.Abs(p); err == nil && !isURL(p) {
			p = abs
		}
		if !st.AddSourceImage(p, true) {
			return fmt.Errorf("image %s not added (empty or already listed)", p)
		}
		fmt.Fprintln(out, "Added", p)
		return nil
	case "remove":
		if len(rest) < 1 {
			return fmt.Errorf("%w: sources remove requires <index>", errUsage)
		}
		idx, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("%w: bad index %q", errUsage, rest[0])
		}
		if e, err := st.SourceImages().At(idx); err == nil && !e.CanRemove {
			return fmt.Errorf("image %d is built in and cannot be removed", idx)
		}
		if !st.RemoveSourceImage(idx) {
			return fmt.Errorf("no source image at index %d", idx)
		}
		fmt.Fprintln(out, "Removed", idx)
		return nil
	}
	return fmt.Errorf("%w: unknown sources command %q", errUsage, sub)
}

func runRecent(out io.Writer, st *settings.Settings, sub string, rest []string) error {
	switch sub {
	case "", "list":
		for i, e := range st.RecentProjects().Entries() {
			fmt.Fprintf(out, "%d\t%s\t%s\n", i, e.Name, e.File)
		}
		return nil
	case "open":
		if len(rest) < 2 {
			return fmt.Errorf("%w: recent open requires <name> <file>", errUsage)
		}
		st.UpdateRecentProjects(rest[0], rest[1])
		return nil
	case "remove":
		if len(rest) < 1 {
			return fmt.Errorf("%w: recent remove requires <file>", errUsage)
		}
		st.RemoveRecentProject(rest[0])
		return nil
	case "clear":
		st.ClearRecentProjects()
		return nil
	}
	return fmt.Errorf("%w: unknown recent command %q", errUsage, sub)
}

func runShaders(out io.Writer, st *settings.Settings, mgr *effects.Manager, rest []string) error {
	if len(rest) >= 2 && rest[0] == "legacy" {
		switch rest[1] {
		case "on", "true", "1":
			st.SetUseLegacyShaders(true)
		case "off", "false", "0":
			st.SetUseLegacyShaders(false)
		default:
			return fmt.Errorf("%w: shaders legacy expects on|off", errUsage)
		}
	} else if len(rest) > 0 {
		return fmt.Errorf("%w: unknown shaders command %q", errUsage, rest[0])
	}
	fmt.Fprintf(out, "legacy: %t\n", st.UseLegacyShaders())
	fmt.Fprintf(out, "bake generation: %d\n", mgr.Generation())
	for _, t := range mgr.Targets() {
		fmt.Fprintf(out, "target: %s\n", t)
	}
	return nil
}

func runFont(out io.Writer, st *settings.Settings, sub string, rest []string) error {
	switch sub {
	case "":
	case "set":
		if len(rest) < 1 {
			return fmt.Errorf("%w: font set requires <file>", errUsage)
		}
		st.SetCodeFontFile(rest[0])
	case "size":
		if len(rest) < 1 {
			return fmt.Errorf("%w: font size requires <n>", errUsage)
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil || !settings.ValidCodeFontSize(n) {
			return fmt.Errorf("%w: font size must be %d..%d, got %q", errUsage, settings.MinCodeFontSize, settings.MaxCodeFontSize, rest[0])
		}
		st.SetCodeFontSize(n)
	case "reset":
		st.ResetCodeFont()
	default:
		return fmt.Errorf("%w: unknown font command %q", errUsage, sub)
	}
	fmt.Fprintf(out, "file: %s\nsize: %d\n", st.CodeFontFile(), st.CodeFontSize())
	return nil
}

func runKeys(out io.Writer, store *kvstore.Store, sub string, rest []string) error {
	switch sub {
	case "", "list":
		if loc := store.Location(); loc != "" {
			fmt.Fprintf(out, "# %s\n", loc)
		}
		for _, k := range store.Keys() {
			fmt.Fprintln(out, k)
		}
		return nil
	case "unset":
		if len(rest) < 1 {
			return fmt.Errorf("%w: keys unset requires <key>", errUsage)
		}
		if !slices.Contains(settings.StoredKeys, rest[0]) {
			return fmt.Errorf("%w: unknown key %q (one of %s)", errUsage, rest[0], strings.Join(settings.StoredKeys, ", "))
		}
		if err := store.Remove(rest[0]); err != nil {
			return err
		}
		fmt.Fprintln(out, "Unset", rest[0])
		return nil
	}
	return fmt.Errorf("%w: unknown keys command %q", errUsage, sub)
}

// runConfig shows the effective configuration or edits the config file.
// Edits never write values that only come from the environment.
func runConfig(out io.Writer, rest []string) error {
	sub := ""
	if len(rest) > 0 {
		sub = rest[0]
	}
	switch sub {
	case "", "show":
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		for _, k := range config.Keys {
			v, _ := cfg.Get(k)
			if env, ok := config.EnvOverrideFor(k); ok {
				fmt.Fprintf(out, "%s\t%s\t(from %s)\n", k, v, env)
				continue
			}
			fmt.Fprintf(out, "%s\t%s\n", k, v)
		}
		return nil
	case "set":
		if len(rest) < 3 {
			return fmt.Errorf("%w: config set requires <key> <value>", errUsage)
		}
		cfg, err := config.LoadFile()
		if err != nil {
			return err
		}
		if err := cfg.Set(rest[1], rest[2]); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		v, _ := cfg.Get(rest[1])
		fmt.Fprintf(out, "%s = %s\n", rest[1], v)
		if env, ok := config.EnvOverrideFor(rest[1]); ok {
			fmt.Fprintf(out, "note: %s is set and takes precedence\n", env)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown config command %q", errUsage, sub)
}

func printImages(out io.Writer, list *model.ImageList) {
	for i, e := range list.Entries() {
		flag := ""
		if !e.CanRemove {
			flag = " (built in)"
		}
		fmt.Fprintf(out, "%d\t%s\t%dx%d\t%s%s\n", i, e.Name, e.Width, e.Height, e.File, flag)
	}
}

func isURL(s string) bool {
	return len(s) > 5 && strings.EqualFold(s[:5], "file:")
}
