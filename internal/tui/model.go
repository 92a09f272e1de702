// Package tui provides the Bubble Tea coin interface.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/verte-zerg/tuicoin/internal/logging"
	"github.com/verte-zerg/tuicoin/internal/model"
	"github.com/verte-zerg/tuicoin/internal/outcome"
	"github.com/verte-zerg/tuicoin/internal/render"
	"github.com/verte-zerg/tuicoin/internal/spin"
	"github.com/verte-zerg/tuicoin/internal/store"
)

const defaultFPS = 60

type frameMsg time.Time

type fetchedMsg struct {
	id         string
	face       spin.Outcome
	err        error
	resolvedAt time.Time
}

type revealMsg struct {
	id string
}

// Model implements the Bubble Tea coin UI.
type Model struct {
	config model.Config
	source outcome.Source
	store  *store.Store
	logger *slog.Logger

	coin *spin.Controller
	keys keyMap
	help help.Model

	loading     bool
	result      spin.Outcome
	pending     spin.Outcome
	tossID      string
	requestedAt time.Time

	startedAt time.Time
	lastFrame time.Time

	width  int
	height int

	session model.OutcomeCounts
	allTime model.OutcomeCounts
}

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	loadingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	landedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a coin TUI model. A nil store disables history.
func NewModel(cfg model.Config, source outcome.Source, st *store.Store, logger *slog.Logger) *Model {
	if logger == nil {
		logger = logging.Discard()
	}
	if cfg.FPS <= 0 {
		cfg.FPS = defaultFPS
	}
	m := &Model{
		config:    cfg,
		source:    source,
		store:     st,
		logger:    logger,
		coin:      spin.NewController(cfg.Spin),
		keys:      newKeyMap(),
		help:      help.New(),
		startedAt: time.Now(),
	}
	m.loadFooterStats()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.nextFrame()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toss):
			return m, m.toss()
		}
		return m, nil
	case frameMsg:
		m.advance(time.Time(msg))
		return m, m.nextFrame()
	case fetchedMsg:
		return m, m.handleFetched(msg)
	case revealMsg:
		m.handleReveal(msg)
		return m, nil
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	state := m.coin.State()
	face := spin.FaceUp(state.Angle)
	status := m.renderStatus()
	footer := m.renderFooter()
	helpLine := m.help.View(m.keys)

	if m.width == 0 || m.height == 0 {
		coin := render.Style(render.Coin(state.Angle, state.Yaw, state.Wobble, render.FitRadius(40, 17)), face)
		return strings.Join([]string{coin, status, footer, helpLine}, "\n")
	}

	bodyHeight := m.height - 3
	if bodyHeight < 3 {
		coin := render.Style(render.Coin(state.Angle, state.Yaw, state.Wobble, 1), face)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, coin+"\n"+status)
	}
	radius := render.FitRadius(m.width, bodyHeight)
	coin := render.Style(render.Coin(state.Angle, state.Yaw, state.Wobble, radius), face)
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, coin)
	lines := []string{
		body,
		lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, status),
		lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer),
		lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, helpLine),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) nextFrame() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.config.FPS), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// advance feeds one frame to the spin controller.
func (m *Model) advance(now time.Time) {
	var dt float64
	if !m.lastFrame.IsZero() {
		dt = now.Sub(m.lastFrame).Seconds()
	}
	m.lastFrame = now
	m.coin.Update(spin.Input{
		Loading: m.loading,
		Result:  m.result,
		Delta:   dt,
		Elapsed: now.Sub(m.startedAt).Seconds(),
	})
}

func (m *Model) toss() tea.Cmd {
	if m.loading || m.source == nil {
		return nil
	}
	m.tossID = uuid.NewString()
	m.loading = true
	m.result = spin.Unknown
	m.pending = spin.Unknown
	m.requestedAt = time.Now()
	m.logger.Debug("toss requested", "id", m.tossID, "source", m.source.Name())
	return fetchCmd(m.source, m.tossID, m.config.Timeout)
}

func fetchCmd(source outcome.Source, id string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		face, err := source.Flip(ctx)
		return fetchedMsg{id: id, face: face, err: err, resolvedAt: time.Now()}
	}
}

func (m *Model) handleFetched(msg fetchedMsg) tea.Cmd {
	if !m.loading || msg.id != m.tossID {
		m.logger.Debug("dropping stale flip", "id", msg.id)
		return nil
	}
	if msg.err == nil && !msg.face.IsFace() {
		msg.err = fmt.Errorf("%w: source %s returned %s", outcome.ErrMalformed, m.source.Name(), msg.face)
	}
	m.recordToss(msg)
	if msg.err != nil {
		m.logger.Error("flip failed", "id", msg.id, "err", msg.err)
		m.loading = false
		m.result = spin.Error
		m.session.Errors++
		m.allTime.Errors++
		return nil
	}
	m.pending = msg.face
	id := msg.id
	if m.config.RevealDelay <= 0 {
		return func() tea.Msg { return revealMsg{id: id} }
	}
	return tea.Tick(m.config.RevealDelay, func(time.Time) tea.Msg {
		return revealMsg{id: id}
	})
}

func (m *Model) handleReveal(msg revealMsg) {
	if !m.loading || msg.id != m.tossID || !m.pending.IsFace() {
		return
	}
	m.loading = false
	m.result = m.pending
	switch m.result {
	case spin.Heads:
		m.session.Heads++
		m.allTime.Heads++
	case spin.Tails:
		m.session.Tails++
		m.allTime.Tails++
	}
	m.logger.Info("toss revealed", "id", msg.id, "result", m.result.String())
}

func (m *Model) recordToss(msg fetchedMsg) {
	if m.store == nil {
		return
	}
	toss := model.Toss{
		ID:          msg.id,
		RequestedAt: m.requestedAt,
		ResolvedAt:  msg.resolvedAt,
		Outcome:     msg.face.String(),
		Source:      m.source.Name(),
		LatencyMs:   msg.resolvedAt.Sub(m.requestedAt).Milliseconds(),
	}
	if msg.err != nil {
		toss.Outcome = spin.Error.String()
		toss.Error = msg.err.Error()
	}
	if err := m.store.InsertToss(context.Background(), toss); err != nil {
		m.logger.Error("failed to save toss", "id", msg.id, "err", err)
	}
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	counts, err := m.store.Counts(context.Background())
	if err != nil {
		m.logger.Warn("failed to load toss history", "err", err)
		return
	}
	m.allTime = counts
}

func (m *Model) renderStatus() string {
	if m.loading {
		return loadingStyle.Render("STATUS: TOSSING…")
	}
	var status string
	switch m.result {
	case spin.Heads, spin.Tails:
		status = statusStyle.Render("RESULT: " + m.result.String())
		if m.coin.Settled() {
			status += landedStyle.Render(" · landed")
		}
	case spin.Error:
		status = errorStyle.Render("RESULT: ERROR")
	default:
		status = statusStyle.Render("RESULT: READY")
	}
	return status
}

func (m *Model) renderFooter() string {
	segments := []string{
		"Session " + formatCounts(m.session),
		"All-time " + formatCounts(m.allTime),
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func formatCounts(c model.OutcomeCounts) string {
	return fmt.Sprintf("H %d · T %d · E %d", c.Heads, c.Tails, c.Errors)
}
