//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"effectcomposer/internal/effects"
	"effectcomposer/internal/kvstore"
	applog "effectcomposer/internal/log"
	"effectcomposer/internal/model"
	"effectcomposer/internal/settings"
)

// Run opens the preferences window and blocks until it is closed. A nil store
// keeps settings in the toolkit's own preferences; a store passed in is left
// open for the caller to close.
func Run(dataRoot string, store *kvstore.Store) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("data_root", dataRoot))

	fyneApp := app.NewWithID("effectcomposer")
	owned := store == nil
	if owned {
		store = kvstore.New(NewPrefsBackend(fyneApp.Preferences()))
	}
	mgr := effects.NewManager(nil)
	st := settings.New(settings.Options{
		Store:    store,
		DataRoot: dataRoot,
		Effects:  mgr,
	})
	mgr.SetLegacySource(st.UseLegacyShaders)
	mgr.UpdateBakedShaderVersions()

	w := fyneApp.NewWindow("Effect Composer Preferences")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 720)
	winH := prefs.IntWithFallback("window.height", 520)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	tabs := container.NewAppTabs(
		container.NewTabItem("Sources", sourcesTab(w, st, status)),
		container.NewTabItem("Backgrounds", backgroundsTab(st)),
		container.NewTabItem("Recent", recentTab(w, st, status)),
		container.NewTabItem("Editor", editorTab(st, mgr, status)),
	)
	w.SetContent(container.NewBorder(nil, status, nil, nil, tabs))
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		if !owned {
			return
		}
		if err := store.Close(); err != nil {
			l.Error("close settings store failed", slog.Any("err", err))
		}
	})
	w.ShowAndRun()
	return nil
}

// refreshOnReset re-reads a list widget once a bracketed change has finished.
func refreshOnReset(list *widget.List) model.ResetListener {
	return model.ResetFuncs{Ended: list.Refresh}
}

func imageRow() fyne.CanvasObject {
	return container.NewBorder(nil, nil, nil, widget.NewLabel(""), widget.NewLabel(""))
}

func bindImageRow(images *model.ImageList, id widget.ListItemID, o fyne.CanvasObject) {
	e, err := images.At(id)
	if err != nil {
		return
	}
	c := o.(*fyne.Container)
	name := c.Objects[0].(*widget.Label)
	size := c.Objects[1].(*widget.Label)
	name.SetText(e.Name)
	if e.Width == 0 && e.Height == 0 {
		size.SetText("unreadable")
	} else {
		size.SetText(fmt.Sprintf("%d×%d", e.Width, e.Height))
	}
}

func sourcesTab(w fyne.Window, st *settings.Settings, status *widget.Label) fyne.CanvasObject {
	images := st.SourceImages()
	list := widget.NewList(images.Len, imageRow, func(id widget.ListItemID, o fyne.CanvasObject) {
		bindImageRow(images, id, o)
	})
	images.OnReset(refreshOnReset(list))

	remove := widget.NewButton("Remove", nil)
	remove.Disable()
	list.OnSelected = func(id widget.ListItemID) {
		images.SetSelectedIndex(id)
		e, err := images.At(id)
		if err == nil && e.CanRemove {
			remove.Enable()
		} else {
			remove.Disable()
		}
		status.SetText(images.SelectedFile())
	}
	remove.OnTapped = func() {
		idx := images.SelectedIndex()
		if st.RemoveSourceImage(idx) {
			list.UnselectAll()
			remove.Disable()
			status.SetText("Image removed")
		}
	}
	add := widget.NewButton("Add image…", func() {
		dialog.ShowFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil || rc == nil {
				return
			}
			defer rc.Close()
			file := rc.URI().String()
			if st.AddSourceImage(file, true) {
				status.SetText("Added " + rc.URI().Name())
			} else {
				status.SetText("Image already in the list")
			}
		}, w)
	})
	return container.NewBorder(nil, container.NewHBox(add, remove), nil, nil, list)
}

func backgroundsTab(st *settings.Settings) fyne.CanvasObject {
	images := st.BackgroundImages()
	list := widget.NewList(images.Len, imageRow, func(id widget.ListItemID, o fyne.CanvasObject) {
		bindImageRow(images, id, o)
	})
	images.OnReset(refreshOnReset(list))
	list.OnSelected = func(id widget.ListItemID) { images.SetSelectedIndex(id) }
	return list
}

func recentTab(w fyne.Window, st *settings.Settings, status *widget.Label) fyne.CanvasObject {
	recent := st.RecentProjects()
	list := widget.NewList(recent.Len,
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, o fyne.CanvasObject) {
			if e, err := recent.At(id); err == nil {
				o.(*widget.Label).SetText(e.Name + "  ·  " + e.File)
			}
		})
	recent.OnReset(refreshOnReset(list))

	selected := -1
	list.OnSelected = func(id widget.ListItemID) { selected = id }
	open := widget.NewButton("Open project…", func() {
		dialog.ShowFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil || rc == nil {
				return
			}
			defer rc.Close()
			path := rc.URI().Path()
			name := filepath.Base(path)
			name = name[:len(name)-len(filepath.Ext(name))]
			st.UpdateRecentProjects(name, path)
			status.SetText("Opened " + name)
		}, w)
	})
	remove := widget.NewButton("Remove", func() {
		e, err := recent.At(selected)
		if err != nil {
			return
		}
		st.RemoveRecentProject(e.File)
		list.UnselectAll()
		selected = -1
	})
	clearAll := widget.NewButton("Clear", func() {
		dialog.ShowConfirm("Clear recent projects", "Remove all entries from the recent projects list?", func(ok bool) {
			if ok {
				st.ClearRecentProjects()
			}
		}, w)
	})
	return container.NewBorder(nil, container.NewHBox(open, remove, clearAll), nil, nil, list)
}

func editorTab(st *settings.Settings, mgr *effects.Manager, status *widget.Label) fyne.CanvasObject {
	syncing := false
	legacy := widget.NewCheck("Use legacy shaders (GLSL 100es/120)", func(v bool) {
		if syncing {
			return
		}
		st.SetUseLegacyShaders(v)
	})
	legacy.SetChecked(st.UseLegacyShaders())

	fontFile := widget.NewEntry()
	fontFile.SetText(st.CodeFontFile())
	fontFile.OnSubmitted = st.SetCodeFontFile

	fontSize := widget.NewEntry()
	fontSize.SetText(strconv.Itoa(st.CodeFontSize()))
	fontSize.OnSubmitted = func(s string) {
		n, err := strconv.Atoi(s)
		if err != nil || !settings.ValidCodeFontSize(n) {
			fontSize.SetText(strconv.Itoa(st.CodeFontSize()))
			return
		}
		st.SetCodeFontSize(n)
	}

	st.OnPropertyChanged(func(p settings.Property) {
		syncing = true
		defer func() { syncing = false }()
		switch p {
		case settings.PropUseLegacyShaders:
			legacy.SetChecked(st.UseLegacyShaders())
			status.SetText(fmt.Sprintf("Shaders rebaked: generation %d, %d targets", mgr.Generation(), len(mgr.Targets())))
		case settings.PropCodeFontFile:
			fontFile.SetText(st.CodeFontFile())
		case settings.PropCodeFontSize:
			fontSize.SetText(strconv.Itoa(st.CodeFontSize()))
		}
	})

	reset := widget.NewButton("Reset font", st.ResetCodeFont)
	form := widget.NewForm(
		widget.NewFormItem("Code font", fontFile),
		widget.NewFormItem("Font size", fontSize),
	)
	return container.NewVBox(legacy, form, reset)
}
