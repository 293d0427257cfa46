package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"planner/internal/config"
)

type keyMap struct {
	Quit     key.Binding
	Add      key.Binding
	Up       key.Binding
	Down     key.Binding
	Toggle   key.Binding
	Start    key.Binding
	Stop     key.Binding
	Delete   key.Binding
	Edit     key.Binding
	Notes    key.Binding
	Move     key.Binding
	PrevDay  key.Binding
	NextDay  key.Binding
	PrevWeek key.Binding
	NextWeek key.Binding
	Today    key.Binding
	Calendar key.Binding
	NextTab  key.Binding
	Save     key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
}

func newKeyMap(k config.Keymap) keyMap {
	bind := func(help string, keys ...string) key.Binding {
		return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
	}
	return keyMap{
		Quit:     bind("quit", k.Quit, "ctrl+c"),
		Add:      bind("add", k.Add),
		Up:       bind("up", k.Up, "up"),
		Down:     bind("down", k.Down, "down"),
		Toggle:   key.NewBinding(key.WithKeys(k.Toggle), key.WithHelp(displayKey(k.Toggle), "done/undo")),
		Start:    bind("start timer", k.Start),
		Stop:     bind("stop timer", k.Stop),
		Delete:   bind("delete", k.Delete),
		Edit:     bind("edit", k.Edit),
		Notes:    bind("notes", k.Notes),
		Move:     bind("move", k.Move),
		PrevDay:  bind("prev day", k.PrevDay, "left"),
		NextDay:  bind("next day", k.NextDay, "right"),
		PrevWeek: bind("prev week", k.PrevWeek),
		NextWeek: bind("next week", k.NextWeek),
		Today:    bind("today", k.Today),
		Calendar: bind("calendar", k.Calendar),
		NextTab:  bind("switch list", k.NextTab),
		Save:     bind("save", k.Save),
		Confirm:  bind("confirm", k.Confirm),
		Cancel:   bind("cancel", k.Cancel),
	}
}

func displayKey(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Start, k.Stop, k.Edit, k.Delete, k.Notes, k.Move, k.Calendar, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevDay, k.NextDay, k.PrevWeek, k.NextWeek, k.Today, k.Calendar},
		{k.Add, k.Edit, k.Delete, k.Toggle, k.Move, k.NextTab},
		{k.Start, k.Stop, k.Notes, k.Quit},
	}
}
