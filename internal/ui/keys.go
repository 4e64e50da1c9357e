// internal/ui/keys.go
package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/nhath/ezlite/internal/config"
)

type keyMap struct {
	Refresh       key.Binding
	Exit          key.Binding
	NextView      key.Binding
	NextTable     key.Binding
	PrevTable     key.Binding
	NextConn      key.Binding
	GrowSidebar   key.Binding
	ShrinkSidebar key.Binding
	Query         key.Binding
	AddConn       key.Binding
}

func newKeyMap(k config.KeyMap) keyMap {
	return keyMap{
		Refresh:       binding(k.Refresh, "refresh"),
		Exit:          binding(k.Exit, "quit"),
		NextView:      binding(k.NextView, "next tab"),
		NextTable:     binding(k.NextTable, "next table"),
		PrevTable:     binding(k.PrevTable, "prev table"),
		NextConn:      binding(k.NextConn, "next database"),
		GrowSidebar:   binding(k.GrowSidebar, "wider sidebar"),
		ShrinkSidebar: binding(k.ShrinkSidebar, "narrower sidebar"),
		Query:         binding([]string{"i", "/"}, "edit query"),
		AddConn:       binding([]string{"a"}, "add database"),
	}
}

func binding(keys []string, desc string) key.Binding {
	b := key.NewBinding(key.WithKeys(keys...))
	if len(keys) > 0 {
		b.SetHelp(keys[0], desc)
	}
	return b
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTable, k.NextView, k.Refresh, k.Query, k.NextConn, k.Exit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTable, k.PrevTable, k.NextView},
		{k.Refresh, k.Query, k.NextConn, k.AddConn},
		{k.GrowSidebar, k.ShrinkSidebar, k.Exit},
	}
}
