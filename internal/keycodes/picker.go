package keycodes

// Mode is what drives the displayed key list: Browsing or Searching.
type Mode interface {
	// Active is the category shown when no query is active.
	Active() string
	isMode()
}

// Browsing shows one category's keys.
type Browsing struct {
	Category string
}

// Searching shows search results. Category is restored when the query is
// cleared.
type Searching struct {
	Query    string
	Category string
}

func (b Browsing) Active() string  { return b.Category }
func (s Searching) Active() string { return s.Category }

func (Browsing) isMode()  {}
func (Searching) isMode() {}

// Picker is the category selector and search box state.
type Picker struct {
	categories    *CategoryMap
	mode          Mode
	macroEditMode bool
}

// NewPicker starts browsing Basic.
func NewPicker(m *CategoryMap) *Picker {
	return &Picker{
		categories: m,
		mode:       Browsing{Category: Basic},
	}
}

// Mode returns the current display mode.
func (p *Picker) Mode() Mode {
	return p.mode
}

// Map returns the category map being browsed.
func (p *Picker) Map() *CategoryMap {
	return p.categories
}

// Category returns the selected category.
func (p *Picker) Category() string {
	return p.mode.Active()
}

// SearchText returns the active query, or "" when browsing.
func (p *Picker) SearchText() string {
	if s, ok := p.mode.(Searching); ok {
		return s.Query
	}
	return ""
}

// Searching reports whether a query drives the key list.
func (p *Picker) Searching() bool {
	_, ok := p.mode.(Searching)
	return ok
}

// CategoryEnabled reports whether the category can be selected: it must
// have keys and must not be the selected one.
func (p *Picker) CategoryEnabled(name string) bool {
	return p.categories.Len(name) > 0 && name != p.Category()
}

// SelectCategory switches to browsing name and clears the search text.
// Disabled categories are ignored.
func (p *Picker) SelectCategory(name string) bool {
	if !p.CategoryEnabled(name) {
		return false
	}
	p.mode = Browsing{Category: name}
	return true
}

// SetSearchText updates the query. An empty query returns to browsing.
func (p *Picker) SetSearchText(query string) {
	active := p.Category()
	if query == "" {
		p.mode = Browsing{Category: active}
		return
	}
	p.mode = Searching{Query: query, Category: active}
}

// Keys returns the keys to display.
func (p *Picker) Keys() []*Key {
	return Filter(p.categories, p.SearchText(), p.Category())
}

// ShowsAddKey reports whether the add-key control follows the key list.
func (p *Picker) ShowsAddKey() bool {
	b, ok := p.mode.(Browsing)
	return ok && b.Category == Any
}

// SetMacroEditMode records whether a macro is being edited.
func (p *Picker) SetMacroEditMode(on bool) {
	p.macroEditMode = on
}

// MacroEditMode reports whether a macro is being edited.
func (p *Picker) MacroEditMode() bool {
	return p.macroEditMode
}

// Clickable reports whether clicking the key opens it. Only macro keys are
// clickable, and not while a macro is being edited.
func (p *Picker) Clickable(key *Key) bool {
	return key.IsMacro() && !p.macroEditMode
}

// SetMap swaps in a rebuilt category map and keeps the mode. If the active
// category no longer exists the picker falls back to Basic.
func (p *Picker) SetMap(m *CategoryMap) {
	p.categories = m
	if m.Has(p.Category()) {
		return
	}
	switch mode := p.mode.(type) {
	case Searching:
		p.mode = Searching{Query: mode.Query, Category: Basic}
	default:
		p.mode = Browsing{Category: Basic}
	}
}
