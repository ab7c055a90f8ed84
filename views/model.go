// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/markboard/criteria"
	"github.com/danielhkuo/markboard/dashboard"
	"github.com/danielhkuo/markboard/models"
)

var ErrResetNotConfirmed = errors.New("reset not confirmed")

// Messages shown to the admin
const (
	MsgLoadFailed = "Failed to load admin data. Please try again."
	MsgBlankInput = "Please enter a valid criterion"
	MsgResetDone  = "All data reset!"
)

const (
	genericFailure = "unexpected error"
	levelSuccess   = "success"
	levelError     = "error"
)

// Store is what the admin panel reads and mutates.
type Store interface {
	dashboard.Source
	ListCriteria(ctx context.Context) ([]string, error)
	AddCriterion(ctx context.Context, label string) error
	RemoveCriterion(ctx context.Context, index int) error
	Reset(ctx context.Context, at time.Time) error
}

// Notice is a transient message shown above the tab content.
type Notice struct {
	Level string
	Text  string
}

func (n Notice) IsError() bool { return n.Level == levelError }

func Success(text string) Notice { return Notice{Level: levelSuccess, Text: text} }

func Failure(text string) Notice { return Notice{Level: levelError, Text: text} }

// AdminModel is the state behind the admin panel page. Every write is
// followed by a re-fetch; nothing is updated optimistically.
type AdminModel struct {
	store Store

	Tab       Tab
	Snapshot  dashboard.Snapshot
	Stats     models.DashboardStats
	Criteria  []string
	LoadError string
	Notice    Notice
}

func NewAdminModel(store Store) *AdminModel {
	return &AdminModel{store: store, Tab: TabDashboard}
}

// SelectTab switches the visible tab. It never fetches.
func (m *AdminModel) SelectTab(t Tab) {
	m.Tab = t
}

// Refresh reloads juries, teams and config together. On failure the
// previous snapshot is dropped so no stale data is rendered.
func (m *AdminModel) Refresh(ctx context.Context) error {
	snap, err := dashboard.Load(ctx, m.store)
	if err != nil {
		m.Snapshot = dashboard.Snapshot{}
		m.Stats = models.DashboardStats{}
		m.LoadError = MsgLoadFailed
		return err
	}
	m.Snapshot = snap
	m.Stats = snap.Stats()
	m.LoadError = ""
	return nil
}

// LoadCriteria fetches the criteria list on its own.
func (m *AdminModel) LoadCriteria(ctx context.Context) error {
	list, err := m.store.ListCriteria(ctx)
	if err != nil {
		m.Notice = Failure("Failed to load criteria: " + message(err))
		return err
	}
	m.Criteria = list
	return nil
}

// AddCriterion validates and normalizes input, stores it, then re-fetches.
// Blank input never reaches the store.
func (m *AdminModel) AddCriterion(ctx context.Context, input string) error {
	label, err := criteria.Normalize(input)
	if err != nil {
		m.Notice = Failure(MsgBlankInput)
		return err
	}
	if err := m.store.AddCriterion(ctx, label); err != nil {
		m.Notice = Failure("Failed to add criterion: " + message(err))
		return err
	}
	m.Notice = Success("Added " + label)
	return m.LoadCriteria(ctx)
}

// RemoveCriterion removes by position, then re-fetches.
func (m *AdminModel) RemoveCriterion(ctx context.Context, index int) error {
	if err := m.store.RemoveCriterion(ctx, index); err != nil {
		m.Notice = Failure("Failed to remove criterion: " + message(err))
		return err
	}
	m.Notice = Success("Criterion removed")
	return m.LoadCriteria(ctx)
}

// Reset wipes all data once confirmed. Unconfirmed calls touch nothing.
func (m *AdminModel) Reset(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrResetNotConfirmed
	}
	if err := m.store.Reset(ctx, time.Now()); err != nil {
		m.Notice = Failure("Failed to reset: " + message(err))
		return fmt.Errorf("reset: %w", err)
	}
	m.Notice = Success(MsgResetDone)
	return m.Refresh(ctx)
}

func message(err error) string {
	if err == nil || err.Error() == "" {
		return genericFailure
	}
	return err.Error()
}
