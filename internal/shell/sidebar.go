package shell

import (
	"errors"
	"fmt"
)

// Group names an expandable sidebar submenu.
type Group string

const (
	GroupNone     Group = ""
	GroupReports  Group = "reports"
	GroupSettings Group = "settings"
)

var ErrUnknownGroup = errors.New("unknown sidebar group")

// ParseGroup accepts "reports" or "settings".
func ParseGroup(s string) (Group, error) {
	switch Group(s) {
	case GroupReports, GroupSettings:
		return Group(s), nil
	default:
		return GroupNone, fmt.Errorf("%w: %q", ErrUnknownGroup, s)
	}
}

// SidebarState holds the collapse toggle and the single open group.
type SidebarState struct {
	Collapsed   bool  `json:"collapsed"`
	ActiveGroup Group `json:"active_group"`
}

// ToggleGroup opens g, or closes it when it is already open.
// Opening a group closes whichever group was open before.
func (s *SidebarState) ToggleGroup(g Group) {
	if g == GroupNone {
		return
	}
	if s.ActiveGroup == g {
		s.ActiveGroup = GroupNone
		return
	}
	s.ActiveGroup = g
}

// ToggleCollapsed flips between the full and the icon-only sidebar.
func (s *SidebarState) ToggleCollapsed() {
	s.Collapsed = !s.Collapsed
}

func (s SidebarState) IsOpen(g Group) bool {
	return g != GroupNone && s.ActiveGroup == g
}
