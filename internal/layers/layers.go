// Package layers tracks which plan layers are visible and which layer
// receives newly inserted markers. Visibility is mirrored into URLs via
// the hide_layers query parameter so it survives reloads and is shared
// through sibling-page links.
package layers

import (
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// HideParam is the query parameter carrying hidden layer titles,
// space separated.
const HideParam = "hide_layers"

// Registry holds visibility and active state for an ordered layer list.
type Registry struct {
	mu      sync.Mutex
	order   []string
	hidden  map[string]bool
	active  string
	onShift func(from, to string)
}

type Option func(*Registry)

// WithShiftNotify installs a callback fired when the active layer is
// moved off a hidden layer.
func WithShiftNotify(fn func(from, to string)) Option {
	return func(r *Registry) {
		r.onShift = fn
	}
}

// NewRegistry builds a registry for layers in display order. All layers
// start visible and the first one is active.
func NewRegistry(order []string, opts ...Option) *Registry {
	r := &Registry{
		order:  slices.Clone(order),
		hidden: map[string]bool{},
	}
	if len(order) > 0 {
		r.active = order[0]
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Restore applies a hidden set previously encoded into a URL.
func (r *Registry) Restore(hiddenTitles []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, title := range hiddenTitles {
		if slices.Contains(r.order, title) {
			r.hidden[title] = true
		}
	}
	r.shiftActiveLocked()
}

func (r *Registry) Visible(title string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.hidden[title]
}

func (r *Registry) Active() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Titles returns the layer order.
func (r *Registry) Titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

// Toggle flips a layer's visibility. Hiding the active layer advances
// the active pointer to the next visible layer, wrapping to the start;
// if every layer ends up hidden the toggled layer is forced back to
// visible so an insert target always exists.
func (r *Registry) Toggle(title string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !slices.Contains(r.order, title) {
		return false
	}
	r.hidden[title] = !r.hidden[title]
	if r.hidden[title] {
		r.shiftActiveLocked()
		if r.allHiddenLocked() {
			r.hidden[title] = false
			r.setActiveLocked(title)
			return true
		}
	}
	return !r.hidden[title]
}

// ToggleAll shows every layer when any is hidden, otherwise hides all
// but the active one. Returns the resulting direction (true = shown).
func (r *Registry) ToggleAll() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	anyHidden := false
	for _, title := range r.order {
		if r.hidden[title] {
			anyHidden = true
			break
		}
	}
	if anyHidden {
		r.hidden = map[string]bool{}
		return true
	}
	for _, title := range r.order {
		if title != r.active {
			r.hidden[title] = true
		}
	}
	return false
}

// SetActive marks the layer that receives new marker inserts. A hidden
// layer becomes visible when activated.
func (r *Registry) SetActive(title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !slices.Contains(r.order, title) {
		return
	}
	r.hidden[title] = false
	r.setActiveLocked(title)
}

// ShiftActiveToVisible advances the active pointer if it sits on a
// hidden layer, wrapping through the layer order.
func (r *Registry) ShiftActiveToVisible() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shiftActiveLocked()
}

func (r *Registry) setActiveLocked(title string) {
	if r.active == title {
		return
	}
	from := r.active
	r.active = title
	if r.onShift != nil {
		r.onShift(from, title)
	}
}

func (r *Registry) shiftActiveLocked() {
	if r.active == "" || !r.hidden[r.active] {
		return
	}
	start := slices.Index(r.order, r.active)
	for step := 1; step <= len(r.order); step++ {
		title := r.order[(start+step)%len(r.order)]
		if !r.hidden[title] {
			r.setActiveLocked(title)
			return
		}
	}
}

func (r *Registry) allHiddenLocked() bool {
	for _, title := range r.order {
		if !r.hidden[title] {
			return false
		}
	}
	return true
}

// HiddenTitles lists hidden layers in display order.
func (r *Registry) HiddenTitles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, title := range r.order {
		if r.hidden[title] {
			out = append(out, title)
		}
	}
	return out
}

// EncodeURL rewrites rawURL's hide_layers parameter to match the
// current hidden set. Encoding the same state twice yields the same
// URL.
func (r *Registry) EncodeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	hidden := r.HiddenTitles()
	if len(hidden) == 0 {
		q.Del(HideParam)
	} else {
		q.Set(HideParam, strings.Join(hidden, " "))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// DecodeURL extracts the hidden layer titles from a URL.
func DecodeURL(rawURL string) ([]string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	raw := u.Query().Get(HideParam)
	if raw == "" {
		return nil, nil
	}
	return strings.Fields(raw), nil
}

// toggleAllStateFile records the last ToggleAll direction across runs,
// one file per project page.
func toggleAllStateFile(page string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "planedit", "toggle-all-"+page), nil
}

// SaveToggleAll persists the last bulk-toggle direction for a page.
func SaveToggleAll(page string, shown bool) error {
	path, err := toggleAllStateFile(page)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	val := "hidden"
	if shown {
		val = "shown"
	}
	return os.WriteFile(path, []byte(val), 0o644)
}

// LoadToggleAll reads the persisted bulk-toggle direction; defaults to
// shown when never recorded.
func LoadToggleAll(page string) bool {
	path, err := toggleAllStateFile(page)
	if err != nil {
		return true
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return true
	}
	return strings.TrimSpace(string(data)) != "hidden"
}
