package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/calebdray/storywalk/internal/handlers"
	"github.com/calebdray/storywalk/pkg/progression"
)

const (
	AppTitle        = "STORYWALK"
	PlaceHolderText = "Type your answer here..."
)

type consoleTab int

const (
	tabStories consoleTab = iota
	tabPuzzles
	tabExchange
)

var tabNames = []string{"Stories", "Puzzles", "Exchange"}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config *ConsoleConfig
	client *http.Client

	activeTab consoleTab
	stories   []handlers.StoryView
	puzzles   []handlers.PuzzleView
	balance   int
	catalog   progression.Catalog

	// Per-tab list cursors
	storyCursor    int
	puzzleCursor   int
	exchangeCursor int

	detailViewport viewport.Model
	showingDetail  bool

	answerInput textinput.Model
	answering   bool

	status string

	// Purchase confirmation state
	showConfirmModal bool
	confirmEntry     progression.CatalogEntry

	// Reset confirmation state
	showResetModal bool

	// Quit confirmation state
	showQuitModal bool

	ready   bool
	loading bool
	width   int
	height  int
	err     error
}

type dataLoadedMsg struct {
	stories []handlers.StoryView
	puzzles []handlers.PuzzleView
	tickets *handlers.BalanceResponse
	err     error
}

type storyDetailMsg struct {
	story *handlers.StoryView
	err   error
}

type answerResultMsg struct {
	puzzleKey string
	outcome   *progression.Outcome
	err       error
}

type exchangeResultMsg struct {
	result *progression.PurchaseResult
	err    error
}

type resetResultMsg struct {
	snapshot *progression.Snapshot
	err      error
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	balanceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // yellow
			Bold(true)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")). // dark grey
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("205")).
			Bold(true).
			Padding(0, 2)

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	solvedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	lockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ti := textinput.New()
	ti.Placeholder = PlaceHolderText
	ti.Prompt = promptStyle.Render(":: ")
	ti.CharLimit = 64
	ti.Width = 40

	vp := viewport.New(60, 20)
	vp.MouseWheelEnabled = true

	return ConsoleUI{
		config:         cfg,
		client:         client,
		answerInput:    ti,
		detailViewport: vp,
		loading:        true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.loadData()
}

func (m ConsoleUI) loadData() tea.Cmd {
	return func() tea.Msg {
		stories, err := fetchStories(m.client, m.config.APIBaseURL)
		if err != nil {
			return dataLoadedMsg{err: err}
		}
		puzzles, err := fetchPuzzles(m.client, m.config.APIBaseURL)
		if err != nil {
			return dataLoadedMsg{err: err}
		}
		tickets, err := fetchTickets(m.client, m.config.APIBaseURL)
		if err != nil {
			return dataLoadedMsg{err: err}
		}
		return dataLoadedMsg{stories: stories, puzzles: puzzles, tickets: tickets}
	}
}

func (m ConsoleUI) openStory(id string) tea.Cmd {
	return func() tea.Msg {
		story, err := fetchStory(m.client, m.config.APIBaseURL, id)
		return storyDetailMsg{story, err}
	}
}

func (m ConsoleUI) sendAnswer(puzzleKey, answer string) tea.Cmd {
	return func() tea.Msg {
		outcome, err := submitAnswer(m.client, m.config.APIBaseURL, puzzleKey, answer)
		return answerResultMsg{puzzleKey, outcome, err}
	}
}

func (m ConsoleUI) sendExchange(catalogKey string) tea.Cmd {
	return func() tea.Msg {
		result, err := exchangeTickets(m.client, m.config.APIBaseURL, catalogKey)
		return exchangeResultMsg{result, err}
	}
}

func (m ConsoleUI) sendReset() tea.Cmd {
	return func() tea.Msg {
		snap, err := resetProgress(m.client, m.config.APIBaseURL)
		return resetResultMsg{snap, err}
	}
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}
	if m.showConfirmModal {
		return m.updateConfirmModal(msg)
	}
	if m.showResetModal {
		return m.updateResetModal(msg)
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		var vpCmd tea.Cmd
		m.detailViewport, vpCmd = m.detailViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detailViewport.Width = m.width - 8
		m.detailViewport.Height = m.height - 8
		m.answerInput.Width = m.width - 12
		m.ready = true

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.stories = msg.stories
		m.puzzles = msg.puzzles
		m.balance = msg.tickets.Balance
		m.catalog = msg.tickets.Catalog

	case storyDetailMsg:
		m.loading = false
		if msg.err != nil {
			m.status = errorStyle.Render(msg.err.Error())
			return m, nil
		}
		m.showingDetail = true
		m.detailViewport.SetContent(m.renderStoryDetail(msg.story))
		m.detailViewport.GotoTop()

	case answerResultMsg:
		m.loading = false
		m.answering = false
		m.answerInput.Blur()
		m.answerInput.Reset()
		if msg.err != nil {
			m.status = errorStyle.Render(msg.err.Error())
			return m, nil
		}
		m.status = formatOutcome(msg.outcome)
		if msg.outcome.Correct {
			return m, m.loadData()
		}

	case exchangeResultMsg:
		m.loading = false
		if msg.err != nil {
			m.status = errorStyle.Render(msg.err.Error())
			return m, nil
		}
		m.status = solvedStyle.Render(fmt.Sprintf("Unlocked %q for %d tickets. Balance: %d",
			msg.result.Entry.Title, msg.result.Entry.Cost, msg.result.Balance))
		return m, m.loadData()

	case resetResultMsg:
		m.loading = false
		if msg.err != nil {
			m.status = errorStyle.Render(msg.err.Error())
			return m, nil
		}
		m.status = loadingStyle.Render("All progress has been reset.")
		return m, m.loadData()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.answering {
		var tiCmd tea.Cmd
		m.answerInput, tiCmd = m.answerInput.Update(msg)
		return m, tiCmd
	}
	return m, nil
}

func (m ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The answer input captures everything except escape and quit.
	if m.answering {
		switch msg.Type {
		case tea.KeyCtrlC:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEsc:
			m.answering = false
			m.answerInput.Blur()
			m.answerInput.Reset()
			return m, nil
		case tea.KeyEnter:
			answer := strings.TrimSpace(m.answerInput.Value())
			if answer == "" {
				return m, nil
			}
			p := m.puzzles[m.puzzleCursor]
			m.loading = true
			return m, m.sendAnswer(p.Key, answer)
		}
		var tiCmd tea.Cmd
		m.answerInput, tiCmd = m.answerInput.Update(msg)
		return m, tiCmd
	}

	if m.showingDetail {
		switch msg.Type {
		case tea.KeyCtrlC:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEsc, tea.KeyEnter:
			m.showingDetail = false
			return m, nil
		}
		var vpCmd tea.Cmd
		m.detailViewport, vpCmd = m.detailViewport.Update(msg)
		return m, vpCmd
	}

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.showQuitModal = true
		return m, nil
	case tea.KeyTab, tea.KeyRight:
		m.activeTab = (m.activeTab + 1) % consoleTab(len(tabNames))
		m.status = ""
	case tea.KeyShiftTab, tea.KeyLeft:
		m.activeTab = (m.activeTab + consoleTab(len(tabNames)) - 1) % consoleTab(len(tabNames))
		m.status = ""
	case tea.KeyUp:
		m.moveCursor(-1)
	case tea.KeyDown:
		m.moveCursor(1)
	case tea.KeyEnter:
		return m.activate()
	}

	switch msg.String() {
	case "r":
		m.loading = true
		return m, m.loadData()
	case "ctrl+r":
		m.showResetModal = true
	}

	return m, nil
}

func (m *ConsoleUI) moveCursor(delta int) {
	move := func(cursor *int, length int) {
		next := *cursor + delta
		if next >= 0 && next < length {
			*cursor = next
		}
	}
	switch m.activeTab {
	case tabStories:
		move(&m.storyCursor, len(m.stories))
	case tabPuzzles:
		move(&m.puzzleCursor, len(m.puzzles))
	case tabExchange:
		move(&m.exchangeCursor, len(m.catalog))
	}
}

func (m ConsoleUI) activate() (tea.Model, tea.Cmd) {
	switch m.activeTab {
	case tabStories:
		if len(m.stories) == 0 {
			return m, nil
		}
		story := m.stories[m.storyCursor]
		if story.Locked {
			m.status = lockedStyle.Render("This story is locked. Unlock it in the Exchange tab.")
			return m, nil
		}
		m.loading = true
		return m, m.openStory(story.ID)

	case tabPuzzles:
		if len(m.puzzles) == 0 {
			return m, nil
		}
		puzzle := m.puzzles[m.puzzleCursor]
		if puzzle.Locked {
			m.status = lockedStyle.Render("This puzzle is locked. Unlock it in the Exchange tab.")
			return m, nil
		}
		m.answering = true
		m.status = ""
		m.answerInput.Focus()
		return m, textinput.Blink

	case tabExchange:
		if len(m.catalog) == 0 {
			return m, nil
		}
		entry := m.catalog[m.exchangeCursor]
		if m.isUnlocked(entry) {
			m.status = solvedStyle.Render("Already unlocked.")
			return m, nil
		}
		m.showConfirmModal = true
		m.confirmEntry = entry
		return m, nil
	}
	return m, nil
}

// isUnlocked derives owned state from the views the API already returned,
// so the exchange list stays honest without an extra round trip.
func (m ConsoleUI) isUnlocked(entry progression.CatalogEntry) bool {
	switch entry.Kind {
	case progression.KindStory:
		for _, s := range m.stories {
			if s.ID == entry.TargetID && s.Gated && !s.Locked {
				return true
			}
		}
	case progression.KindExtra:
		for _, p := range m.puzzles {
			if p.Key == entry.TargetID && !p.Locked {
				return true
			}
		}
	}
	return false
}

func (m ConsoleUI) updateConfirmModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showConfirmModal = false
			return m, nil
		case tea.KeyEnter:
			m.showConfirmModal = false
			m.loading = true
			return m, m.sendExchange(m.confirmEntry.Key)
		}
		switch msg.String() {
		case "y", "Y":
			m.showConfirmModal = false
			m.loading = true
			return m, m.sendExchange(m.confirmEntry.Key)
		case "n", "N":
			m.showConfirmModal = false
		}
	}
	return m, nil
}

func (m ConsoleUI) updateResetModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y":
			m.showResetModal = false
			m.loading = true
			return m, m.sendReset()
		default:
			m.showResetModal = false
		}
	}
	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		}
		switch msg.String() {
		case "y", "Y":
			return m, tea.Quit
		case "n", "N":
			m.showQuitModal = false
			if m.answering {
				m.answerInput.Focus()
				return m, textinput.Blink
			}
		}
	}
	return m, nil
}

func formatOutcome(outcome *progression.Outcome) string {
	switch {
	case outcome.Correct && outcome.FirstTime:
		return solvedStyle.Render(fmt.Sprintf("Correct! +%d tickets. Balance: %d", outcome.Reward, outcome.Balance))
	case outcome.Correct:
		return solvedStyle.Render(fmt.Sprintf("Correct (already solved). Balance: %d", outcome.Balance))
	default:
		return errorStyle.Render("Not quite. Try again.")
	}
}

func (m ConsoleUI) renderStoryDetail(story *handlers.StoryView) string {
	width := m.detailViewport.Width - 4
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(story.Title) + "\n")
	if story.CoordsText != "" {
		content.WriteString(promptStyle.Render(story.CoordsText) + "\n")
	}
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")
	content.WriteString(wordwrap.String(story.Description, width))
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Esc to go back"))
	return content.String()
}

func (m ConsoleUI) renderTabBar() string {
	var tabs []string
	for i, name := range tabNames {
		if consoleTab(i) == m.activeTab {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, tabStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m ConsoleUI) renderStoriesTab() string {
	var content strings.Builder
	for i, story := range m.stories {
		marker := ""
		if story.Locked {
			marker = lockedStyle.Render("  [locked]")
		}
		if i == m.storyCursor {
			content.WriteString(selectedItemStyle.Render("▶ " + story.Title))
		} else {
			content.WriteString(itemStyle.Render("  " + story.Title))
		}
		content.WriteString(marker + "\n")
	}
	content.WriteString("\n")
	content.WriteString(promptStyle.Render("Enter to read a story"))
	return content.String()
}

func (m ConsoleUI) renderPuzzlesTab() string {
	var content strings.Builder
	for i, puzzle := range m.puzzles {
		marker := ""
		switch {
		case puzzle.Solved:
			marker = solvedStyle.Render("  ✓ solved")
		case puzzle.Locked:
			marker = lockedStyle.Render("  [locked]")
		}
		if i == m.puzzleCursor {
			content.WriteString(selectedItemStyle.Render("▶ " + puzzle.Title))
		} else {
			content.WriteString(itemStyle.Render("  " + puzzle.Title))
		}
		content.WriteString(marker + "\n")
	}

	if len(m.puzzles) > 0 && !m.answering {
		p := m.puzzles[m.puzzleCursor]
		if !p.Locked {
			width := m.width - 8
			if width < 20 {
				width = 20
			}
			content.WriteString("\n" + wordwrap.String(p.Question, width) + "\n")
		}
	}

	if m.answering {
		content.WriteString("\n" + m.answerInput.View() + "\n")
		content.WriteString(promptStyle.Render("Enter to submit, Esc to cancel"))
	} else {
		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Enter to answer the selected puzzle"))
	}
	return content.String()
}

func (m ConsoleUI) renderExchangeTab() string {
	var content strings.Builder
	for i, entry := range m.catalog {
		label := fmt.Sprintf("%s — %d tickets", entry.Title, entry.Cost)
		marker := ""
		if m.isUnlocked(entry) {
			marker = solvedStyle.Render("  ✓ owned")
		}
		if i == m.exchangeCursor {
			content.WriteString(selectedItemStyle.Render("▶ " + label))
		} else {
			content.WriteString(itemStyle.Render("  " + label))
		}
		content.WriteString(marker + "\n")
	}
	content.WriteString("\n")
	content.WriteString(promptStyle.Render("Enter to exchange tickets for the selected item"))
	return content.String()
}

func (m ConsoleUI) renderConfirmModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Confirm Exchange"))
	content.WriteString("\n\n")
	content.WriteString(fmt.Sprintf("Unlock %q for %d tickets?\n", m.confirmEntry.Title, m.confirmEntry.Cost))
	content.WriteString(fmt.Sprintf("Your balance: %d tickets", m.balance))
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to confirm, N to cancel"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderResetModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Reset All Progress?"))
	content.WriteString("\n\n")
	content.WriteString("Tickets, unlocks and solved puzzles will all be cleared.\nThis cannot be undone.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to reset, any other key to cancel"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderQuitModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Your progress is saved on the server.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if m.showConfirmModal {
		return m.renderConfirmModal()
	}
	if m.showResetModal {
		return m.renderResetModal()
	}

	if m.err != nil {
		return fmt.Sprintf("\n  %s\n\n  %s\n",
			errorStyle.Render("Error: "+m.err.Error()),
			promptStyle.Render("Press r to retry, Ctrl+C to quit"))
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render(AppTitle),
		"   ",
		balanceStyle.Render(fmt.Sprintf("🎫 %d tickets", m.balance)),
	)

	var body string
	switch {
	case m.showingDetail:
		body = m.detailViewport.View()
	case m.loading:
		body = loadingStyle.Render("Loading...")
	default:
		switch m.activeTab {
		case tabStories:
			body = m.renderStoriesTab()
		case tabPuzzles:
			body = m.renderPuzzlesTab()
		case tabExchange:
			body = m.renderExchangeTab()
		}
	}

	footer := promptStyle.Render("Tab: switch view • ↑/↓: navigate • r: refresh • Ctrl+R: reset progress • Ctrl+C: quit")
	if m.status != "" {
		footer = m.status + "\n" + footer
	}

	sepWidth := m.width - 4
	if sepWidth < 10 {
		sepWidth = 10
	}
	sep := separatorStyle.Render(strings.Repeat("─", sepWidth))

	return lipgloss.NewStyle().Padding(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			m.renderTabBar(),
			sep,
			body,
			"",
			sep,
			footer,
		),
	)
}
