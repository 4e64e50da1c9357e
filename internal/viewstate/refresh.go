package viewstate

import tea "github.com/charmbracelet/bubbletea"

// RefreshSlot holds the action that reloads whatever is on screen. The
// action is a message the coordinator knows how to run. It belongs to the
// coordinator and is only touched from Update.
type RefreshSlot struct {
	action tea.Msg
}

// Set replaces the current action
func (s *RefreshSlot) Set(action tea.Msg) {
	s.action = action
}

// Current returns the installed action, nil when empty
func (s *RefreshSlot) Current() tea.Msg {
	return s.action
}

// Reset empties the slot
func (s *RefreshSlot) Reset() {
	s.action = nil
}

// Invoke hands the current action to run. An empty slot does nothing and
// returns nil.
func (s *RefreshSlot) Invoke(run func(action tea.Msg) tea.Cmd) tea.Cmd {
	if s.action == nil {
		return nil
	}
	return run(s.action)
}
