package ui

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/chatter/remap/internal/firmware"
	"github.com/chatter/remap/internal/ui/help"
)

// PickFileMsg asks the app to open the native file dialog.
type PickFileMsg struct{}

// UploadMsg asks the app to upload a submitted form.
type UploadMsg struct {
	Upload firmware.Upload
}

// DeleteFirmwareMsg asks the app to delete a stored firmware.
type DeleteFirmwareMsg struct {
	Firmware firmware.Firmware
}

// DownloadFirmwareMsg asks the app to save a stored firmware locally.
type DownloadFirmwareMsg struct {
	Firmware firmware.Firmware
}

type firmwareField int

const (
	fieldNone firmwareField = iota
	fieldName
	fieldDescription
)

type firmwareKeys struct {
	pick        key.Binding
	editName    key.Binding
	editDesc    key.Binding
	upload      key.Binding
	clear       key.Binding
	up          key.Binding
	down        key.Binding
	delete      key.Binding
	download    key.Binding
	finish      key.Binding
	finishMulti key.Binding
}

func defaultFirmwareKeys() firmwareKeys {
	return firmwareKeys{
		pick:        key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pick file")),
		editName:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "name")),
		editDesc:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "description")),
		upload:      key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upload")),
		clear:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear form")),
		up:          key.NewBinding(key.WithKeys("k", "up")),
		down:        key.NewBinding(key.WithKeys("j", "down")),
		delete:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		download:    key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "download")),
		finish:      key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("⏎", "done")),
		finishMulti: key.NewBinding(key.WithKeys("esc"), key.WithHelp("⎋", "done")),
	}
}

// FirmwarePanel is the firmware upload form above the upload history.
type FirmwarePanel struct {
	form        *firmware.Form
	styles      *Styles
	keys        firmwareKeys
	name        textinput.Model
	description textarea.Model
	history     viewport.Model
	list        []firmware.Firmware
	selected    int
	confirmDel  bool
	editing     firmwareField
	focused     bool
	width       int
	height      int
}

// NewFirmwarePanel creates the panel over form.
func NewFirmwarePanel(styles *Styles, form *firmware.Form) FirmwarePanel {
	name := textinput.New()
	name.Prompt = ""
	name.Placeholder = "Firmware name"
	name.CharLimit = 64

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.ShowLineNumbers = false
	desc.SetHeight(3)

	return FirmwarePanel{
		form:        form,
		styles:      styles,
		keys:        defaultFirmwareKeys(),
		name:        name,
		description: desc,
		history:     viewport.New(),
	}
}

// formHeight is the rows used by the form above the history.
const formHeight = 10

// SetSize sets the panel dimensions.
func (p *FirmwarePanel) SetSize(width, height int) {
	p.width = width
	p.height = height

	inner := max(width-PanelBorderWidth, 10)
	p.name.SetWidth(max(inner-lipgloss.Width("Name: ")-1, 1))
	p.description.SetWidth(inner)
	p.history.SetWidth(inner)
	p.history.SetHeight(max(height-PanelChromeHeight-formHeight, 1))
	p.renderHistory()
}

// SetFocused sets the focus state.
func (p *FirmwarePanel) SetFocused(focused bool) {
	p.focused = focused
	if !focused {
		p.stopEditing()
		p.confirmDel = false
	}
}

// Capturing reports whether typed keys go to a text field.
func (p *FirmwarePanel) Capturing() bool {
	return p.editing != fieldNone
}

// Form returns the upload form.
func (p *FirmwarePanel) Form() *firmware.Form {
	return p.form
}

// SetHistory replaces the listed firmwares. They are shown newest first.
func (p *FirmwarePanel) SetHistory(list []firmware.Firmware) {
	p.list = firmware.SortedHistory(list)
	p.selected = min(p.selected, max(len(p.list)-1, 0))
	p.confirmDel = false
	p.renderHistory()
}

// History returns the listed firmwares, newest first.
func (p *FirmwarePanel) History() []firmware.Firmware {
	return p.list
}

// Selected returns the highlighted history entry.
func (p *FirmwarePanel) Selected() (firmware.Firmware, bool) {
	if p.selected < 0 || p.selected >= len(p.list) {
		return firmware.Firmware{}, false
	}
	return p.list[p.selected], true
}

// Drop offers dropped files to the form. Only a single file is taken.
func (p *FirmwarePanel) Drop(files []firmware.File) bool {
	return p.form.Drop(files)
}

// ClearForm empties the form and its fields.
func (p *FirmwarePanel) ClearForm() {
	p.form.Clear()
	p.name.SetValue("")
	p.description.SetValue("")
	p.stopEditing()
}

// Update handles input.
func (p *FirmwarePanel) Update(msg tea.Msg) tea.Cmd {
	if !p.focused {
		return nil
	}

	switch msg := msg.(type) {
	case tea.PasteStartMsg:
		if p.editing == fieldNone {
			p.form.DragOver()
		}
	case tea.PasteEndMsg:
		p.form.DragLeave()
	case tea.PasteMsg:
		if p.editing != fieldNone {
			return p.updateField(msg)
		}
		return p.paste(msg.Content)
	case tea.KeyPressMsg:
		if p.editing != fieldNone {
			return p.updateField(msg)
		}
		return p.updateBrowse(msg)
	}
	return nil
}

func (p *FirmwarePanel) paste(content string) tea.Cmd {
	// Some terminals paste a single path with spaces as is.
	if raw := strings.TrimSpace(content); raw != "" && !strings.ContainsAny(raw, "\r\n") {
		if file, err := firmware.FileFromPath(raw); err == nil {
			return p.drop([]firmware.File{file})
		}
	}

	paths := DroppedPaths(content)
	if len(paths) != 1 {
		// Zero or several files: ignored without a message.
		p.form.Drop(nil)
		return nil
	}

	file, err := firmware.FileFromPath(paths[0])
	if err != nil {
		p.form.DragLeave()
		return status(err.Error())
	}
	return p.drop([]firmware.File{file})
}

func (p *FirmwarePanel) drop(files []firmware.File) tea.Cmd {
	if !p.form.Drop(files) {
		return nil
	}
	file, _ := p.form.File()
	return status("selected " + file.Name)
}

func (p *FirmwarePanel) updateBrowse(msg tea.KeyPressMsg) tea.Cmd {
	confirming := p.confirmDel
	p.confirmDel = false

	switch {
	case key.Matches(msg, p.keys.pick):
		return func() tea.Msg { return PickFileMsg{} }
	case key.Matches(msg, p.keys.editName):
		p.editing = fieldName
		return p.name.Focus()
	case key.Matches(msg, p.keys.editDesc):
		p.editing = fieldDescription
		return p.description.Focus()
	case key.Matches(msg, p.keys.upload):
		upload, ok := p.form.Submit()
		if !ok {
			// Disabled until the form is complete.
			return nil
		}
		return func() tea.Msg { return UploadMsg{Upload: upload} }
	case key.Matches(msg, p.keys.clear):
		p.ClearForm()
	case key.Matches(msg, p.keys.up):
		p.selectEntry(p.selected - 1)
	case key.Matches(msg, p.keys.down):
		p.selectEntry(p.selected + 1)
	case key.Matches(msg, p.keys.delete):
		fw, ok := p.Selected()
		if !ok {
			return nil
		}
		if !confirming {
			p.confirmDel = true
			p.renderHistory()
			return status(fmt.Sprintf("press x again to delete %q", fw.Name))
		}
		p.renderHistory()
		return func() tea.Msg { return DeleteFirmwareMsg{Firmware: fw} }
	case key.Matches(msg, p.keys.download):
		if fw, ok := p.Selected(); ok {
			return func() tea.Msg { return DownloadFirmwareMsg{Firmware: fw} }
		}
	}

	if confirming {
		p.renderHistory()
	}
	return nil
}

func (p *FirmwarePanel) updateField(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	switch p.editing {
	case fieldName:
		if k, ok := msg.(tea.KeyPressMsg); ok && key.Matches(k, p.keys.finish) {
			p.stopEditing()
			return nil
		}
		p.name, cmd = p.name.Update(msg)
		p.form.SetName(strings.TrimSpace(p.name.Value()))
	case fieldDescription:
		if k, ok := msg.(tea.KeyPressMsg); ok && key.Matches(k, p.keys.finishMulti) {
			p.stopEditing()
			return nil
		}
		p.description, cmd = p.description.Update(msg)
		p.form.SetDescription(strings.TrimSpace(p.description.Value()))
	}
	return cmd
}

func (p *FirmwarePanel) stopEditing() {
	p.editing = fieldNone
	p.name.Blur()
	p.description.Blur()
}

func (p *FirmwarePanel) selectEntry(i int) {
	if len(p.list) == 0 {
		return
	}
	p.selected = min(max(i, 0), len(p.list)-1)
	p.renderHistory()
}

// cardHeight is the rendered height of one history card: border (2), name,
// description, date and hash lines.
const cardHeight = 6

func (p *FirmwarePanel) renderHistory() {
	if len(p.list) == 0 {
		p.history.SetContent(p.styles.Hint.Render("no firmware uploaded yet"))
		return
	}

	width := max(p.history.Width()-2, 10)
	cards := make([]string, 0, len(p.list))
	for i, fw := range p.list {
		cards = append(cards, p.card(fw, i == p.selected, width))
	}
	p.history.SetContent(strings.Join(cards, "\n"))

	top := p.selected * cardHeight
	switch {
	case top < p.history.YOffset():
		p.history.SetYOffset(top)
	case top+cardHeight > p.history.YOffset()+p.history.Height():
		p.history.SetYOffset(top + cardHeight - p.history.Height())
	}
}

func (p *FirmwarePanel) card(fw firmware.Firmware, selected bool, width int) string {
	name := p.styles.Label.Render(FitCell(fw.Name, width-2))
	desc := FitCell(strings.ReplaceAll(fw.Description, "\n", " "), width-2)
	date := p.styles.Dim.Render(fw.CreatedAt.Local().Format("2006-01-02 15:04") + fmt.Sprintf("  %d bytes", fw.Size))
	hash := p.styles.Dim.Render(FitCell(fw.HashLabel(), width-2))

	style := p.styles.Card.Width(width)
	if selected && p.focused {
		style = style.BorderForeground(accentColor)
		if p.confirmDel {
			style = style.BorderForeground(errorColor)
		}
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, name, desc, date, hash))
}

// View renders the panel.
func (p *FirmwarePanel) View() string {
	label := func(s string, f firmwareField) string {
		if p.editing == f {
			return p.styles.FocusedTitle.UnsetPadding().Render(s)
		}
		return p.styles.Label.Render(s)
	}

	drop := p.styles.Hint.Render("Drop a firmware file here or press p to pick one")
	switch {
	case p.form.Dragging():
		drop = p.styles.Mark.Render("Release to select the file")
	case p.form.FileInfo() != "":
		drop = p.form.FileInfo()
	}

	upload := p.styles.Dim.Render("[ Upload ]")
	if p.form.CanUpload() {
		upload = p.styles.FocusedTitle.UnsetPadding().Render("[ Upload ]")
	}

	lines := []string{
		p.styles.PanelTitle(3, "Firmware", p.focused),
		drop,
		label("Name: ", fieldName) + p.name.View(),
		label("Description", fieldDescription),
		p.description.View(),
		upload,
		p.styles.Label.Render("History"),
		p.history.View(),
	}

	return p.styles.PanelFrame(p.focused, p.width, p.height).Render(strings.Join(lines, "\n"))
}

// HelpBindings returns the keybindings for this panel (display-only, for status bar).
func (p *FirmwarePanel) HelpBindings() []help.Binding {
	switch p.editing {
	case fieldName:
		return []help.Binding{{Key: p.keys.finish, Category: help.CategoryFirmware, Order: PanelOrderPrimary}}
	case fieldDescription:
		return []help.Binding{{Key: p.keys.finishMulti, Category: help.CategoryFirmware, Order: PanelOrderPrimary}}
	}

	upload := p.keys.upload
	upload.SetEnabled(p.form.CanUpload())
	_, hasSelection := p.Selected()
	del, dl := p.keys.delete, p.keys.download
	del.SetEnabled(hasSelection)
	dl.SetEnabled(hasSelection)

	return []help.Binding{
		{Key: p.keys.pick, Category: help.CategoryFirmware, Order: PanelOrderPrimary},
		{Key: upload, Category: help.CategoryFirmware, Order: PanelOrderPrimary},
		{Key: p.keys.editName, Category: help.CategoryFirmware, Order: PanelOrderSecondary},
		{Key: p.keys.editDesc, Category: help.CategoryFirmware, Order: PanelOrderSecondary},
		{Key: p.keys.clear, Category: help.CategoryFirmware, Order: PanelOrderSecondary},
		{
			Key:      key.NewBinding(key.WithKeys("j", "k"), key.WithHelp("j/k", "history")),
			Category: help.CategoryNavigation,
			Order:    PanelOrderSecondary,
		},
		{Key: del, Category: help.CategoryFirmware, Order: PanelOrderSecondary},
		{Key: dl, Category: help.CategoryFirmware, Order: PanelOrderSecondary},
	}
}

// DroppedPaths extracts file paths from text a terminal pastes when files are
// dragged onto it. Paths are separated by whitespace or newlines and may be
// quoted, backslash-escaped or file:// URLs, so "'/a b.hex' /c.hex" and
// "/a\ b.hex /c.hex" both yield two paths.
func DroppedPaths(content string) []string {
	var (
		paths   []string
		token   strings.Builder
		quote   rune
		escaped bool
	)
	flush := func() {
		if token.Len() > 0 {
			paths = append(paths, fromFileURL(token.String()))
		}
		token.Reset()
	}

	for _, r := range content {
		switch {
		case escaped:
			token.WriteRune(r)
			escaped = false
		case quote != 0:
			switch {
			case r == quote:
				quote = 0
			case r == '\\' && quote == '"':
				escaped = true
			default:
				token.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '\\':
			escaped = true
		case unicode.IsSpace(r):
			flush()
		default:
			token.WriteRune(r)
		}
	}
	flush()

	return paths
}

func fromFileURL(path string) string {
	if !strings.HasPrefix(path, "file://") {
		return path
	}
	if u, err := url.Parse(path); err == nil {
		return u.Path
	}
	return path
}
