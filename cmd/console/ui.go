package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/hollowayink/wayfarer/internal/engine"
	"github.com/hollowayink/wayfarer/pkg/audio"
	"github.com/hollowayink/wayfarer/pkg/game"
)

const (
	AgentName       = "Narrator"
	PlaceHolderText = "What do you do?"
)

// presetThemes seed the opening modal. Enter on "Something else..."
// lets the player type their own.
var presetThemes = []string{
	"haunted lighthouse",
	"derelict space freighter",
	"sunken pirate cove",
	"clockwork city",
	"Something else...",
}

// verbs that pair with a numbered hotspot: typing "use" then "2" sends
// "use <hotspot 2>".
var verbs = map[string]bool{
	"look":    true,
	"examine": true,
	"take":    true,
	"use":     true,
	"open":    true,
	"talk":    true,
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	orchestrator *engine.Orchestrator
	narrator     *audio.Narrator

	st            game.State
	chatViewport  viewport.Model
	sceneViewport viewport.Model
	textarea      textarea.Model
	ready         bool
	width         int
	height        int
	err           error
	loading       bool

	// Theme selection state
	showThemeModal bool
	selectedTheme  int
	typingTheme    bool
	customTheme    string

	// Quit confirmation state
	showQuitModal bool

	// A verb waiting for a hotspot number; cleared after every turn.
	pendingVerb string

	muted        bool
	progressTick int
}

type gameStartedMsg struct {
	ok bool
	st game.State
}

type turnDoneMsg struct {
	ok bool
	st game.State
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	scenePanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	hotspotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")) // purple

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

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(o *engine.Orchestrator, narrator *audio.Narrator) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	sceneVp := viewport.New(20, 20)

	return ConsoleUI{
		orchestrator:   o,
		narrator:       narrator,
		textarea:       ta,
		chatViewport:   chatVp,
		sceneViewport:  sceneVp,
		showThemeModal: true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) startGame(theme string) tea.Cmd {
	return func() tea.Msg {
		ok := m.orchestrator.StartGame(context.Background(), theme)
		return gameStartedMsg{ok, m.orchestrator.Snapshot()}
	}
}

func (m ConsoleUI) executeTurn(command string) tea.Cmd {
	return func() tea.Msg {
		ok := m.orchestrator.ExecuteTurn(context.Background(), command)
		return turnDoneMsg{ok, m.orchestrator.Snapshot()}
	}
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showThemeModal {
		return m.updateThemeModal(msg)
	}
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		svCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.writeTranscript()
		m.sceneViewport.SetContent(m.writeScenePanel())
		m.ready = true

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}
			return m.handlePlayerInput(input)
		}

	case turnDoneMsg:
		m.loading = false
		m.pendingVerb = "" // selections never outlive a turn
		if msg.ok {
			m.st = msg.st
			m.err = nil
		} else {
			m.err = fmt.Errorf("command rejected")
		}
		m.writeTranscript()
		m.sceneViewport.SetContent(m.writeScenePanel())
		m.chatViewport.GotoBottom()
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeTranscript()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.sceneViewport, svCmd = m.sceneViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, svCmd)
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.72) - 4
	sceneWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.sceneViewport.Width = sceneWidth - 2
	m.sceneViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

// handlePlayerInput turns typed text into a command for the engine.
// A bare verb arms a hotspot selection, a bare number completes it,
// and "#N" anywhere is replaced by the Nth hotspot's name.
func (m ConsoleUI) handlePlayerInput(input string) (tea.Model, tea.Cmd) {
	lower := strings.ToLower(input)

	if verbs[lower] {
		m.pendingVerb = lower
		m.textarea.Reset()
		m.sceneViewport.SetContent(m.writeScenePanel())
		return m, nil
	}

	if n, err := strconv.Atoi(lower); err == nil && m.pendingVerb != "" {
		if n >= 1 && n <= len(m.st.Hotspots) {
			input = m.pendingVerb + " " + m.st.Hotspots[n-1].Name
		}
		m.pendingVerb = ""
	}

	input = m.expandHotspotRefs(input)

	m.textarea.Reset()
	m.loading = true
	m.progressTick = 0
	m.writeTranscript()
	return m, tea.Batch(m.executeTurn(input), progressTick())
}

// expandHotspotRefs replaces "#N" tokens with the Nth hotspot's name.
func (m ConsoleUI) expandHotspotRefs(input string) string {
	fields := strings.Fields(input)
	for i, f := range fields {
		if !strings.HasPrefix(f, "#") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(f, "#"))
		if err != nil || n < 1 || n > len(m.st.Hotspots) {
			continue
		}
		fields[i] = m.st.Hotspots[n-1].Name
	}
	return strings.Join(fields, " ")
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))
	m.textarea.Reset()

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /help - Show this help
• /copy - Copy the last narration to the clipboard
• /mute - Toggle narration audio
• Ctrl+C - Quit game

How to play:
• Type your actions and press Enter
• Type a verb (look, take, use...) then a hotspot number
• Use #N in a sentence to name hotspot N
`
		current := m.chatViewport.View()
		m.chatViewport.SetContent(current + titleStyle.Render("Help:") + helpText + "\n")
		m.chatViewport.GotoBottom()

	case "/copy":
		if text := lastNarration(m.st); text != "" {
			if err := clipboard.WriteAll(text); err != nil {
				m.err = fmt.Errorf("clipboard unavailable: %w", err)
			}
		}

	case "/mute":
		m.muted = !m.muted
		m.narrator.SetMuted(m.muted)
		m.sceneViewport.SetContent(m.writeScenePanel())
	}

	return m, nil
}

func lastNarration(st game.State) string {
	for i := len(st.History) - 1; i >= 0; i-- {
		if st.History[i].Kind == game.LogNarrator {
			return st.History[i].Text
		}
	}
	return ""
}

func (m *ConsoleUI) writeTranscript() {
	chatWidth := m.chatViewport.Width - 6

	var content strings.Builder
	content.WriteString(titleStyle.Render("WAYFARER") + "\n\n")
	content.WriteString("Type your actions below to play.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	for _, entry := range m.st.History {
		switch entry.Kind {
		case game.LogCommand:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(entry.Text, chatWidth-6) + "\n\n")
		case game.LogError:
			content.WriteString(errorStyle.Render(wordwrap.String(entry.Text, chatWidth)) + "\n\n")
		default:
			prefix := narratorStyle.Render(AgentName + ": ")
			content.WriteString(prefix + wordwrap.String(entry.Text, chatWidth-len(AgentName)-2) + "\n\n")
		}
	}

	if m.st.GameOver {
		content.WriteString(titleStyle.Render("THE END") + "\n\n")
	}

	if m.loading {
		if m.st.LoadingMessage != "" {
			content.WriteString(loadingStyle.Render(m.st.LoadingMessage) + "\n")
		}
		content.WriteString(m.renderProgressBar())
	} else if m.err != nil {
		content.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m ConsoleUI) writeScenePanel() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("SCENE") + "\n\n")

	content.WriteString("Location:\n")
	if m.st.CurrentSceneID != "" {
		content.WriteString(m.st.CurrentSceneID + "\n\n")
	} else {
		content.WriteString("unknown\n\n")
	}

	if m.st.ImageURL != "" {
		content.WriteString(fmt.Sprintf("Art: rendered (%d scenes cached)\n\n", len(m.st.SceneCache)))
	} else {
		content.WriteString("Art: none yet\n\n")
	}

	content.WriteString("Hotspots:\n")
	if len(m.st.Hotspots) == 0 {
		content.WriteString("Nothing catches your eye.\n")
	} else {
		for i, h := range m.st.Hotspots {
			content.WriteString(hotspotStyle.Render(fmt.Sprintf("%d", i+1)) + " " + h.Name + "\n")
		}
	}
	content.WriteString("\n")

	content.WriteString("Inventory:\n")
	if len(m.st.Inventory) == 0 {
		content.WriteString("Empty\n")
	} else {
		for _, item := range m.st.Inventory {
			content.WriteString("• " + item + "\n")
		}
	}
	content.WriteString("\n")

	if m.pendingVerb != "" {
		content.WriteString(loadingStyle.Render(m.pendingVerb+" what? Type a number.") + "\n\n")
	}

	if m.muted {
		content.WriteString(promptStyle.Render("Narration: muted") + "\n")
	} else {
		content.WriteString(promptStyle.Render("Narration: on") + "\n")
	}
	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")

	return content.String()
}

func (m ConsoleUI) updateThemeModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case gameStartedMsg:
		m.loading = false
		if !msg.ok {
			m.err = fmt.Errorf("could not start the game")
			return m, nil
		}
		m.st = msg.st
		m.showThemeModal = false
		m.resize()
		m.writeTranscript()
		m.sceneViewport.SetContent(m.writeScenePanel())
		m.textarea.Focus()
		m.ready = true
		return m, textarea.Blink

	case tea.KeyMsg:
		if m.loading {
			if msg.Type == tea.KeyCtrlC {
				return m, tea.Quit
			}
			return m, nil
		}

		if m.typingTheme {
			switch msg.Type {
			case tea.KeyCtrlC, tea.KeyEsc:
				m.typingTheme = false
				m.customTheme = ""
			case tea.KeyEnter:
				theme := strings.TrimSpace(m.customTheme)
				if theme != "" {
					m.loading = true
					return m, m.startGame(theme)
				}
			case tea.KeyBackspace:
				if len(m.customTheme) > 0 {
					m.customTheme = m.customTheme[:len(m.customTheme)-1]
				}
			case tea.KeyRunes, tea.KeySpace:
				m.customTheme += string(msg.Runes)
				if msg.Type == tea.KeySpace {
					m.customTheme += " "
				}
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.selectedTheme > 0 {
				m.selectedTheme--
			}
		case tea.KeyDown:
			if m.selectedTheme < len(presetThemes)-1 {
				m.selectedTheme++
			}
		case tea.KeyEnter:
			if m.selectedTheme == len(presetThemes)-1 {
				m.typingTheme = true
				return m, nil
			}
			m.loading = true
			return m, m.startGame(presetThemes[m.selectedTheme])
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
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderThemeModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch {
	case m.loading:
		content.WriteString(modalTitleStyle.Render("Starting Your Adventure..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("The narrator is setting the scene..."))
	case m.typingTheme:
		content.WriteString(modalTitleStyle.Render("Describe Your Adventure"))
		content.WriteString("\n\n")
		content.WriteString(m.customTheme + "█")
		content.WriteString("\n\n")
		content.WriteString(promptStyle.Render("Enter to begin, Esc to go back"))
	default:
		content.WriteString(modalTitleStyle.Render("Choose a Theme"))
		content.WriteString("\n\n")
		for i, theme := range presetThemes {
			if i == m.selectedTheme {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", theme)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", theme)))
			}
			content.WriteString("\n")
		}
		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
		if m.err != nil {
			content.WriteString("\n\n")
			content.WriteString(errorStyle.Render(m.err.Error()))
		}
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to abandon your adventure?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showThemeModal {
		return m.renderThemeModal()
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.72) - 4
	sceneWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	scenePanel := scenePanelStyle.Width(sceneWidth).Height(m.height - 2).Render(
		m.sceneViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, scenePanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
