// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

// Tab is one section of the admin panel.
type Tab int

const (
	TabDashboard Tab = iota
	TabJuries
	TabTeams
	TabConfig
	TabExports
	TabCriteria
)

// Tabs lists every tab in navigation order.
var Tabs = []Tab{TabDashboard, TabJuries, TabTeams, TabConfig, TabExports, TabCriteria}

// ParseTab maps a query key to a tab. Unknown keys fall back to the dashboard.
func ParseTab(key string) (Tab, bool) {
	for _, t := range Tabs {
		if t.Key() == key {
			return t, true
		}
	}
	return TabDashboard, false
}

func (t Tab) Key() string {
	switch t {
	case TabDashboard:
		return "dashboard"
	case TabJuries:
		return "juries"
	case TabTeams:
		return "teams"
	case TabConfig:
		return "config"
	case TabExports:
		return "exports"
	case TabCriteria:
		return "criteria"
	}
	return ""
}

func (t Tab) Label() string {
	switch t {
	case TabDashboard:
		return "Dashboard"
	case TabJuries:
		return "Manage Juries"
	case TabTeams:
		return "Manage Teams"
	case TabConfig:
		return "Configuration"
	case TabExports:
		return "Export Data"
	case TabCriteria:
		return "Criteria"
	}
	return ""
}

// Delegated reports whether the tab body comes from the admin panel
// template rather than a page-local section.
func (t Tab) Delegated() bool {
	switch t {
	case TabJuries, TabTeams, TabConfig, TabExports:
		return true
	}
	return false
}

// Body names the template for the tab's page-local section, if any.
// Exports has both a local section and the delegated panel.
func (t Tab) Body() string {
	switch t {
	case TabDashboard:
		return "tab-dashboard"
	case TabExports:
		return "tab-exports"
	case TabCriteria:
		return "tab-criteria"
	}
	return ""
}

func (t Tab) String() string { return t.Key() }
