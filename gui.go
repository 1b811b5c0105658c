//go:build gui

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/metcalfc/spex/internal/reader"
	"github.com/metcalfc/spex/internal/spectrum"
	"github.com/metcalfc/spex/internal/state"
)

type model struct {
	path       string
	series     *spectrum.Series
	meta       [][2]string
	row        int
	showMeta   bool
	stateStore *state.StateStore
	fileHash   string
}

func newModel(path string, s *spectrum.Series, md *spectrum.Metadata, v state.ViewState) *model {
	n := 0
	if s != nil {
		n = s.Len()
	}
	return &model{
		path:     path,
		series:   s,
		meta:     metadataRows(md),
		row:      clampRow(v.Row, n),
		showMeta: v.ShowMetadata || s == nil,
	}
}

func (m *model) rows() int {
	if m.series == nil {
		return 0
	}
	return m.series.Len()
}

func (m *model) status() string {
	if m.series == nil {
		return filepath.Base(m.path)
	}
	return fmt.Sprintf("%s | %s | %d/%d", filepath.Base(m.path), m.series.Column(), m.row+1, m.series.Len())
}

func (m *model) save() {
	if m.stateStore == nil || m.fileHash == "" {
		return
	}
	m.stateStore.Set(m.fileHash, state.ViewState{Row: m.row, ShowMetadata: m.showMeta})
}

func main() {
	c, err := parseFlags("spex-gui", os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Try: spex-gui -h")
		os.Exit(1)
	}

	logger := newLogger(os.Stderr, c.verbose)
	done, err := run(c, os.Stdout, logger)
	if err != nil {
		fatal(err)
	}
	if done {
		return
	}

	path := c.files[0]
	s, md, err := reader.Read(path, c.readOptions(logger)...)
	if err != nil {
		fatal(err)
	}

	store, hash, v := viewState(path, c.fresh)
	m := newModel(path, s, md, v)
	m.stateStore = store
	m.fileHash = hash

	a := app.New()
	w := a.NewWindow("spex - " + filepath.Base(path))

	statusLabel := widget.NewLabel(m.status())
	statusLabel.Alignment = fyne.TextAlignCenter

	controlsLabel := widget.NewLabel("↑/↓: row  M: metadata  R: reset  F: fullscreen  Q: quit")
	controlsLabel.Alignment = fyne.TextAlignCenter

	metaList := widget.NewList(
		func() int { return len(m.meta) },
		func() fyne.CanvasObject {
			key := widget.NewLabel("key")
			key.TextStyle.Bold = true
			return container.NewHBox(key, widget.NewLabel("value"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			hbox := obj.(*fyne.Container)
			hbox.Objects[0].(*widget.Label).SetText(m.meta[id][0])
			hbox.Objects[1].(*widget.Label).SetText(m.meta[id][1])
		},
	)

	valueTitle := "value"
	if s != nil {
		valueTitle = s.Column().String()
	}
	table := widget.NewTableWithHeaders(
		func() (int, int) { return m.rows(), 2 },
		func() fyne.CanvasObject { return widget.NewLabel("0000.000000") },
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			wl, val := formatPoint(m.series.Point(id.Row))
			if id.Col == 0 {
				obj.(*widget.Label).SetText(wl)
			} else {
				obj.(*widget.Label).SetText(val)
			}
		},
	)
	table.ShowHeaderColumn = false
	table.UpdateHeader = func(id widget.TableCellID, obj fyne.CanvasObject) {
		if id.Col == 0 {
			obj.(*widget.Label).SetText("nm")
		} else {
			obj.(*widget.Label).SetText(valueTitle)
		}
	}

	selecting := false
	selectRow := func(row int) {
		m.row = clampRow(row, m.rows())
		if m.rows() > 0 {
			selecting = true
			table.Select(widget.TableCellID{Row: m.row, Col: 0})
			selecting = false
		}
		statusLabel.SetText(m.status())
	}
	table.OnSelected = func(id widget.TableCellID) {
		if selecting {
			return
		}
		m.row = id.Row
		statusLabel.SetText(m.status())
	}

	metaPanel := container.NewBorder(widget.NewLabel("Metadata"), nil, nil, nil, metaList)
	split := container.NewHSplit(table, metaPanel)
	split.Offset = 0.5
	if !m.showMeta {
		metaPanel.Hide()
	}

	content := container.NewBorder(statusLabel, controlsLabel, nil, nil, split)

	quit := func() {
		m.save()
		a.Quit()
	}

	w.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeyUp:
			selectRow(m.row - 1)
		case fyne.KeyDown:
			selectRow(m.row + 1)
		case fyne.KeyPageUp:
			selectRow(m.row - 20)
		case fyne.KeyPageDown:
			selectRow(m.row + 20)
		case fyne.KeyHome:
			selectRow(0)
		case fyne.KeyEnd:
			selectRow(m.rows() - 1)
		case fyne.KeyF:
			w.SetFullScreen(!w.FullScreen())
		case fyne.KeyQ:
			quit()
		}
	})

	w.Canvas().SetOnTypedRune(func(r rune) {
		switch r {
		case 'm', 'M':
			m.showMeta = !m.showMeta
			if m.showMeta {
				metaPanel.Show()
			} else {
				metaPanel.Hide()
			}
			split.Refresh()

		case 'r', 'R':
			if m.stateStore != nil && m.fileHash != "" {
				m.stateStore.Clear(m.fileHash)
			}
			selectRow(0)
		}
	})

	w.SetOnClosed(m.save)
	w.Resize(fyne.NewSize(800, 600))
	w.SetContent(content)
	selectRow(m.row)

	w.ShowAndRun()
}
