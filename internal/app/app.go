package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/chatter/remap/internal/config"
	"github.com/chatter/remap/internal/firmware"
	"github.com/chatter/remap/internal/hid"
	"github.com/chatter/remap/internal/keycodes"
	"github.com/chatter/remap/internal/keymap"
	"github.com/chatter/remap/internal/labellang"
	"github.com/chatter/remap/internal/logger"
	"github.com/chatter/remap/internal/ui"
	"github.com/chatter/remap/internal/ui/help"
)

// storeTimeout bounds a single firmware store call.
const storeTimeout = 30 * time.Second

// FocusedPane represents which pane has focus
type FocusedPane int

const (
	PaneKeymap   FocusedPane = iota // [1] Keymap or macro editor
	PaneKeycodes                    // [2] Keycode picker
	PaneFirmware                    // [3] Firmware form and history
	paneCount
)

// Options are the collaborators the model drives.
type Options struct {
	Config  config.Config
	Version string
	State   *keymap.State
	Store   firmware.Store
	// Drops delivers files settled in the drop directory. Nil disables it.
	Drops <-chan []firmware.File
	Log   *logger.Logger
}

// Model is the main application model
type Model struct {
	// Core state
	cfg  config.Config
	keys KeyMap
	log  *logger.Logger
	lang labellang.Lang

	// Keyboard and firmware collaborators
	state   *keymap.State
	builder *keycodes.Builder
	picker  *keycodes.Picker
	store   firmware.Store
	drops   <-chan []firmware.File

	// View state
	focusedPane FocusedPane
	showHelp    bool

	// Panels
	styles        *ui.Styles
	keymapPanel   *ui.KeymapPanel
	macroEditor   *ui.MacroEditor
	keycodesPanel *ui.KeycodesPanel
	firmwarePanel *ui.FirmwarePanel

	// Help
	statusBar    *help.StatusBar
	floatingHelp *help.FloatingHelp

	// Window size
	width  int
	height int

	// Error state
	lastError string
}

// New creates a new application model
func New(opts Options) Model {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	lang := opts.Config.Lang()

	builder := keycodes.NewBuilder(hid.NewCatalog(), log)
	builder.Rebuild(keycodes.Params{
		Lang:        lang,
		LayerCount:  opts.State.LayerCount(),
		BleMicroPro: opts.Config.Device.BleMicroPro,
	})
	picker := keycodes.NewPicker(builder.Map())

	styles := ui.DefaultStyles()
	keymapPanel := ui.NewKeymapPanel(styles, opts.State, lang)
	macroEditor := ui.NewMacroEditor(styles)
	keycodesPanel := ui.NewKeycodesPanel(styles, picker)
	firmwarePanel := ui.NewFirmwarePanel(styles, &firmware.Form{})

	// Set initial focus - keymap panel starts focused
	keymapPanel.SetFocused(true)
	macroEditor.SetFocused(true)

	return Model{
		cfg:           opts.Config,
		keys:          DefaultKeyMap(),
		log:           log,
		lang:          lang,
		state:         opts.State,
		builder:       builder,
		picker:        picker,
		store:         opts.Store,
		drops:         opts.Drops,
		focusedPane:   PaneKeymap,
		styles:        styles,
		keymapPanel:   &keymapPanel,
		macroEditor:   &macroEditor,
		keycodesPanel: &keycodesPanel,
		firmwarePanel: &firmwarePanel,
		statusBar:     help.NewStatusBar("remap " + opts.Version),
		floatingHelp:  help.NewFloatingHelp(),
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadHistory(),
		m.waitForDrop(),
	)
}

// Message types
type historyLoadedMsg struct {
	list []firmware.Firmware
}

type uploadedMsg struct {
	fw firmware.Firmware
}

type deletedMsg struct {
	fw firmware.Firmware
}

type downloadedMsg struct {
	path string
}

type pickedMsg struct {
	file firmware.File
}

type dropMsg struct {
	files []firmware.File
}

type errMsg struct {
	err error
}

// loadHistory lists the stored firmwares of the configured definition.
func (m Model) loadHistory() tea.Cmd {
	if m.store == nil {
		return nil
	}
	store, definitionID := m.store, m.cfg.Firmware.DefinitionID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		list, err := store.List(ctx, definitionID)
		if err != nil {
			return errMsg{err}
		}
		return historyLoadedMsg{list: list}
	}
}

func (m Model) upload(upload firmware.Upload) tea.Cmd {
	if m.store == nil {
		return nil
	}
	store, definitionID := m.store, m.cfg.Firmware.DefinitionID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		fw, err := store.Upload(ctx, definitionID, upload)
		if err != nil {
			return errMsg{err}
		}
		return uploadedMsg{fw: fw}
	}
}

func (m Model) deleteFirmware(fw firmware.Firmware) tea.Cmd {
	if m.store == nil {
		return nil
	}
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := store.Delete(ctx, fw); err != nil {
			return errMsg{err}
		}
		return deletedMsg{fw: fw}
	}
}

func (m Model) download(fw firmware.Firmware) tea.Cmd {
	if m.store == nil {
		return nil
	}
	store, dir := m.store, m.cfg.Firmware.DownloadDir
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		path, err := firmware.Download(ctx, store, fw, dir)
		if err != nil {
			return errMsg{err}
		}
		return downloadedMsg{path: path}
	}
}

// pickFile opens the native file dialog.
func (m Model) pickFile() tea.Cmd {
	return func() tea.Msg {
		file, err := firmware.PickFile("Select firmware")
		switch {
		case errors.Is(err, firmware.ErrPickCancelled):
			return nil
		case err != nil:
			return errMsg{err}
		}
		return pickedMsg{file: file}
	}
}

// waitForDrop waits for the next batch of dropped files
func (m Model) waitForDrop() tea.Cmd {
	if m.drops == nil {
		return nil
	}
	drops := m.drops
	return func() tea.Msg {
		files, ok := <-drops
		if !ok {
			return nil
		}
		return dropMsg{files: files}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		// When help modal is open, only handle ? and esc
		if m.showHelp {
			if newModel, cmd := dispatchKey(&m, msg, m.helpBindings()); newModel != nil {
				return *newModel, cmd
			}
			// Absorb all other keys
			return m, nil
		}

		if m.capturing() {
			if newModel, cmd := dispatchKey(&m, msg, m.captureBindings()); newModel != nil {
				return *newModel, cmd
			}
			cmds = append(cmds, m.updateFocusedPanel(msg))
			break
		}

		// Try active bindings first
		if newModel, cmd := dispatchKey(&m, msg, m.activeBindings()); newModel != nil {
			m = *newModel
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
		} else {
			// No binding matched, pass to focused panel
			cmds = append(cmds, m.updateFocusedPanel(msg))
		}

	case tea.PasteStartMsg, tea.PasteMsg, tea.PasteEndMsg:
		// A paste outside a text field is a file dropped onto the terminal
		if !m.capturing() && m.focusedPane != PaneFirmware {
			m.focusedPane = PaneFirmware
			m.updatePanelFocus()
		}
		cmds = append(cmds, m.updateFocusedPanel(msg))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updatePanelSizes()

	case ui.StatusMsg:
		m.statusBar.SetMessage(msg.Text)

	case ui.KeyChosenMsg:
		m.chooseKey(msg.Key)

	case ui.EditMacroMsg:
		cmds = append(cmds, m.openMacro(msg.Key))

	case ui.MacroSavedMsg:
		if err := m.state.SetMacro(msg.Name, msg.Text); err != nil {
			m.statusBar.SetMessage(err.Error())
		} else {
			m.statusBar.SetMessage("macro " + msg.Name + " updated, press s to save")
		}
		m.closeMacro()

	case ui.MacroClosedMsg:
		m.closeMacro()

	case ui.AddAnyKeyMsg:
		if k := m.builder.AddAnyKey(msg.Code); k != nil {
			m.statusBar.SetMessage("added " + k.Meta)
		} else {
			m.statusBar.SetMessage(fmt.Sprintf("0x%04X is already listed", msg.Code))
		}
		m.picker.SetMap(m.builder.Map())
		m.keycodesPanel.Refresh()

	case ui.CopiedMsg:
		if msg.Err != nil {
			m.statusBar.SetMessage("copy failed: " + msg.Err.Error())
		} else {
			m.statusBar.SetMessage("copied " + msg.Text)
		}

	case ui.SaveKeymapMsg:
		m.saveKeymap()

	case ui.PickFileMsg:
		cmds = append(cmds, m.pickFile())

	case pickedMsg:
		m.firmwarePanel.Form().SetFile(msg.file)
		m.statusBar.SetMessage("selected " + msg.file.Name)

	case dropMsg:
		if m.firmwarePanel.Drop(msg.files) {
			m.statusBar.SetMessage("dropped " + msg.files[0].Name)
		}
		cmds = append(cmds, m.waitForDrop())

	case ui.UploadMsg:
		m.statusBar.SetMessage("uploading " + msg.Upload.Name + "...")
		cmds = append(cmds, m.upload(msg.Upload))

	case uploadedMsg:
		m.firmwarePanel.ClearForm()
		m.statusBar.SetMessage("uploaded " + msg.fw.Name)
		cmds = append(cmds, m.loadHistory())

	case ui.DeleteFirmwareMsg:
		cmds = append(cmds, m.deleteFirmware(msg.Firmware))

	case deletedMsg:
		m.statusBar.SetMessage("deleted " + msg.fw.Name)
		cmds = append(cmds, m.loadHistory())

	case ui.DownloadFirmwareMsg:
		cmds = append(cmds, m.download(msg.Firmware))

	case downloadedMsg:
		m.statusBar.SetMessage("saved " + msg.path)

	case historyLoadedMsg:
		m.firmwarePanel.SetHistory(msg.list)

	case errMsg:
		m.lastError = msg.err.Error()
		m.statusBar.SetMessage(m.lastError)
		m.log.Error("command failed", "error", msg.err)

	default:
		// Non-key messages such as cursor blinks go to the focused panel
		cmds = append(cmds, m.updateFocusedPanel(msg))
	}

	return m, tea.Batch(cmds...)
}

// capturing reports whether the focused panel consumes typed keys.
func (m *Model) capturing() bool {
	switch m.focusedPane {
	case PaneKeymap:
		return m.macroEditor.Capturing()
	case PaneKeycodes:
		return m.keycodesPanel.Capturing()
	case PaneFirmware:
		return m.firmwarePanel.Capturing()
	}
	return false
}

// chooseKey assigns a picked key to the selected position, or appends it to
// the macro being edited.
func (m *Model) chooseKey(k *keycodes.Key) {
	if m.macroEditor.IsOpen() {
		m.macroEditor.AppendKey(k.Meta)
		return
	}

	pos := m.state.SelectedPos()
	if !m.state.Assign(k) {
		m.statusBar.SetMessage("select a key on the keymap first")
		return
	}
	m.statusBar.SetMessage(fmt.Sprintf("%s -> layer %d key %s", k.Meta, m.state.SelectedLayer(), pos))
}

// openMacro shows the macro editor over the keymap and switches the picker
// to macro-safe keycodes.
func (m *Model) openMacro(k *keycodes.Key) tea.Cmd {
	m.setMacroEditMode(true)
	m.focusedPane = PaneKeymap
	m.updatePanelFocus()
	return m.macroEditor.Open(k.Meta, k.Label, m.state.Macro(k.Meta))
}

func (m *Model) closeMacro() {
	m.macroEditor.Close()
	m.setMacroEditMode(false)
	m.updatePanelFocus()
}

func (m *Model) setMacroEditMode(on bool) {
	params := m.builder.Params()
	if params.MacroEditMode == on {
		return
	}
	params.MacroEditMode = on
	m.picker.SetMacroEditMode(on)
	m.picker.SetMap(m.builder.Rebuild(params))
	m.keycodesPanel.Refresh()
}

// saveKeymap writes the keymap dump. The state is mutated by the save, so it
// runs on the update goroutine.
func (m *Model) saveKeymap() {
	n := m.state.RemapCount()
	if err := m.state.Save(m.cfg.Device.DumpPath); err != nil {
		m.lastError = err.Error()
		m.statusBar.SetMessage(m.lastError)
		m.log.Error("save keymap", "path", m.cfg.Device.DumpPath, "error", err)
		return
	}
	m.statusBar.SetMessage(fmt.Sprintf("saved %d change(s) to %s", n, m.cfg.Device.DumpPath))
}

func (m *Model) updateFocusedPanel(msg tea.Msg) tea.Cmd {
	switch m.focusedPane {
	case PaneKeymap:
		if m.macroEditor.IsOpen() {
			return m.macroEditor.Update(msg)
		}
		return m.keymapPanel.Update(msg)
	case PaneKeycodes:
		return m.keycodesPanel.Update(msg)
	case PaneFirmware:
		return m.firmwarePanel.Update(msg)
	}
	return nil
}

func (m *Model) updatePanelFocus() tea.Cmd {
	m.keymapPanel.SetFocused(m.focusedPane == PaneKeymap)
	m.keycodesPanel.SetFocused(m.focusedPane == PaneKeycodes)
	m.firmwarePanel.SetFocused(m.focusedPane == PaneFirmware)
	return m.macroEditor.SetFocused(m.focusedPane == PaneKeymap)
}

// Action methods for keybindings

func (m *Model) actionQuit() (Model, tea.Cmd) {
	return *m, tea.Quit
}

func (m *Model) focus(pane FocusedPane) (Model, tea.Cmd) {
	m.focusedPane = pane
	cmd := m.updatePanelFocus()
	return *m, cmd
}

func (m *Model) actionFocusKeymap() (Model, tea.Cmd) {
	return m.focus(PaneKeymap)
}

func (m *Model) actionFocusKeycodes() (Model, tea.Cmd) {
	return m.focus(PaneKeycodes)
}

func (m *Model) actionFocusFirmware() (Model, tea.Cmd) {
	return m.focus(PaneFirmware)
}

func (m *Model) actionNextPane() (Model, tea.Cmd) {
	return m.focus((m.focusedPane + 1) % paneCount)
}

func (m *Model) actionPrevPane() (Model, tea.Cmd) {
	return m.focus((m.focusedPane + paneCount - 1) % paneCount)
}

func (m *Model) actionCycleLang() (Model, tea.Cmd) {
	all := labellang.All()
	m.lang = all[(slices.Index(all, m.lang)+1)%len(all)]

	params := m.builder.Params()
	params.Lang = m.lang
	m.picker.SetMap(m.builder.Rebuild(params))
	m.keycodesPanel.Refresh()
	m.keymapPanel.SetLang(m.lang)
	m.statusBar.SetMessage("labels: " + m.lang.Title())
	return *m, nil
}

// actionReloadKeymap rereads the device dump, dropping pending changes. A
// changed layer count only regenerates the Layer keycodes.
func (m *Model) actionReloadKeymap() (Model, tea.Cmd) {
	path := m.cfg.Device.DumpPath
	state, err := keymap.LoadOrDefault(path, m.cfg.Device.LayerCount, m.log)
	if err != nil {
		m.lastError = err.Error()
		m.statusBar.SetMessage(m.lastError)
		m.log.Error("reload keymap", "path", path, "error", err)
		return *m, nil
	}

	m.state = state
	m.keymapPanel.SetState(state)
	if n := state.LayerCount(); n != m.builder.Params().LayerCount {
		m.picker.SetMap(m.builder.UpdateLayerCount(n))
		m.keycodesPanel.Refresh()
	}
	if m.width > 0 {
		m.updatePanelSizes()
	}

	m.statusBar.SetMessage(fmt.Sprintf("reloaded keymap: %d layer(s)", state.LayerCount()))
	return *m, nil
}

func (m *Model) actionToggleHelp() (Model, tea.Cmd) {
	m.showHelp = !m.showHelp
	return *m, nil
}

// activeBindings returns all currently active keybindings for dispatch.
// Panel bindings are handled by updateFocusedPanel().
func (m *Model) activeBindings() []ActionBinding {
	return m.globalBindings()
}

// captureBindings are the only global bindings honoured while a text field
// has focus.
func (m *Model) captureBindings() []ActionBinding {
	return []ActionBinding{
		{Binding: help.Binding{Key: m.keys.ForceQuit, Category: help.CategoryActions}, Action: (*Model).actionQuit},
	}
}

// helpBindings are active while the help modal is open.
func (m *Model) helpBindings() []ActionBinding {
	return []ActionBinding{
		{Binding: help.Binding{Key: m.keys.CloseHelp, Category: help.CategoryActions}, Action: (*Model).actionToggleHelp},
		{Binding: help.Binding{Key: m.keys.ForceQuit, Category: help.CategoryActions}, Action: (*Model).actionQuit},
	}
}

// activeHelpBindings returns all display bindings for the current context.
// Used by the status bar to show context-sensitive help.
func (m *Model) activeHelpBindings() []help.Binding {
	var bindings []help.Binding
	if !m.capturing() {
		bindings = ToHelpBindings(m.globalBindings())
	}

	// Add panel-specific bindings based on focus
	switch m.focusedPane {
	case PaneKeymap:
		if m.macroEditor.IsOpen() {
			bindings = append(bindings, m.macroEditor.HelpBindings()...)
		} else {
			bindings = append(bindings, m.keymapPanel.HelpBindings()...)
		}
	case PaneKeycodes:
		bindings = append(bindings, m.keycodesPanel.HelpBindings()...)
	case PaneFirmware:
		bindings = append(bindings, m.firmwarePanel.HelpBindings()...)
	}

	return bindings
}

// globalBindings returns the app-level keybindings with their actions.
func (m *Model) globalBindings() []ActionBinding {
	return []ActionBinding{
		// Quit - highest order (always visible)
		{
			Binding: help.Binding{
				Key:      m.keys.Quit,
				Category: help.CategoryActions,
				Order:    100,
			},
			Action: (*Model).actionQuit,
		},
		// Pane focus
		{
			Binding: help.Binding{
				Key:      m.keys.FocusKeymap,
				Category: help.CategoryNavigation,
				Order:    50,
			},
			Action: (*Model).actionFocusKeymap,
		},
		{
			Binding: help.Binding{
				Key:      m.keys.FocusKeycodes,
				Category: help.CategoryNavigation,
				Order:    51,
			},
			Action: (*Model).actionFocusKeycodes,
		},
		{
			Binding: help.Binding{
				Key:      m.keys.FocusFirmware,
				Category: help.CategoryNavigation,
				Order:    52,
			},
			Action: (*Model).actionFocusFirmware,
		},
		{
			Binding: help.Binding{
				Key:      m.keys.NextPane,
				Category: help.CategoryNavigation,
				Order:    20,
			},
			Action: (*Model).actionNextPane,
		},
		{
			Binding: help.Binding{
				Key:      m.keys.PrevPane,
				Category: help.CategoryNavigation,
				Order:    21,
			},
			Action: (*Model).actionPrevPane,
		},
		// Actions
		{
			Binding: help.Binding{
				Key:      m.keys.CycleLang,
				Category: help.CategoryActions,
				Order:    60,
			},
			Action: (*Model).actionCycleLang,
		},
		{
			Binding: help.Binding{
				Key:      m.keys.ReloadKeymap,
				Category: help.CategoryActions,
				Order:    61,
			},
			Action: (*Model).actionReloadKeymap,
		},
		// Help toggle - pinned, always visible
		{
			Binding: help.Binding{
				Key:      m.keys.Help,
				Category: help.CategoryActions,
				Order:    99,
				Pinned:   true, // Always visible in status bar
			},
			Action: (*Model).actionToggleHelp,
		},
	}
}

func (m *Model) updatePanelSizes() {
	// Leave room for status bar
	contentHeight := m.height - 1

	// Split horizontally: left column ~65%, firmware column ~35%
	leftWidth := m.width * 65 / 100
	rightWidth := m.width - leftWidth

	// The keymap gets its rows plus chrome, the picker the rest
	keymapHeight := min(len(m.state.Keyboard().Rows)+ui.PanelChromeHeight+3, contentHeight/2)
	keycodesHeight := contentHeight - keymapHeight

	m.keymapPanel.SetSize(leftWidth, keymapHeight)
	m.macroEditor.SetSize(leftWidth, keymapHeight)
	m.keycodesPanel.SetSize(leftWidth, keycodesHeight)
	m.firmwarePanel.SetSize(rightWidth, contentHeight)
}

// View renders the application
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m Model) render() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	top := m.keymapPanel.View()
	if m.macroEditor.IsOpen() {
		top = m.macroEditor.View()
	}
	left := lipgloss.JoinVertical(lipgloss.Left, top, m.keycodesPanel.View())

	// Join panels horizontally
	panels := lipgloss.JoinHorizontal(lipgloss.Top, left, m.firmwarePanel.View())

	// Join vertically
	base := lipgloss.JoinVertical(lipgloss.Left, panels, m.renderStatusBar())

	// Show floating help modal if active
	if m.showHelp {
		return m.renderWithOverlay()
	}

	return base
}

func (m Model) renderWithOverlay() string {
	// Calculate modal size (centered, ~80% of screen)
	modalWidth := m.width * 80 / 100
	modalHeight := m.height * 70 / 100

	if modalWidth < 40 {
		modalWidth = min(40, m.width-4)
	}
	if modalHeight < 10 {
		modalHeight = min(10, m.height-4)
	}

	// Set up and render floating help
	m.floatingHelp.SetSize(modalWidth, modalHeight)
	m.floatingHelp.SetBindings(m.activeHelpBindings())
	modal := m.floatingHelp.View()

	// Center the modal on the screen
	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
	)
}

func (m Model) renderStatusBar() string {
	m.statusBar.SetWidth(m.width)
	m.statusBar.SetBindings(m.activeHelpBindings())
	return m.styles.StatusBar.Render(m.statusBar.View())
}
