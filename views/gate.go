// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"net/url"

	"github.com/danielhkuo/markboard/auth"
	"github.com/danielhkuo/markboard/models"
)

// MsgIncorrectPassword is the inline gate error.
const MsgIncorrectPassword = "Incorrect password. Please try again."

// JuryPath is the marking route for a jury.
func JuryPath(name string) string {
	return "/jury/" + url.PathEscape(name)
}

// Gate is the jury landing modal: idle until a jury is selected, then open
// until the typed input unlocks it or the user cancels.
type Gate struct {
	Jury  *models.Jury
	Input string
	Error string
}

// Open reports whether the modal is showing.
func (g Gate) Open() bool {
	return g.Jury != nil
}

// Select opens the modal for a jury with empty input.
func (g *Gate) Select(j models.Jury) {
	g.Jury = &j
	g.Input = ""
	g.Error = ""
}

// Submit checks input against the selected jury. On success it returns the
// marking route and the gate goes back to idle; on failure the modal stays
// open with an inline error.
func (g *Gate) Submit(input, masterKey string) (string, bool) {
	if g.Jury == nil {
		return "", false
	}
	if !auth.CheckJuryAccess(g.Jury.Name, input, masterKey) {
		g.Input = input
		g.Error = MsgIncorrectPassword
		return "", false
	}
	path := JuryPath(g.Jury.Name)
	g.Cancel()
	return path, true
}

// Cancel closes the modal and discards the typed input.
func (g *Gate) Cancel() {
	g.Jury = nil
	g.Input = ""
	g.Error = ""
}
