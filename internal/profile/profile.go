// Package profile keeps the user's cosmetic preferences and the destructive
// "erase my records" action.
package profile

import (
	"strings"
	"unicode/utf8"

	"focusplan/internal/confirm"
	appLog "focusplan/internal/log"
	"focusplan/internal/model"
)

const (
	DefaultUsername  = "user"
	DefaultTheme     = "blue"
	MaxUsernameRunes = 20

	actionReset = "reset_records"
)

// ColorOption is one selectable theme color.
type ColorOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ColorOptions is the fixed theme palette.
var ColorOptions = []ColorOption{
	{ID: "blue", Name: "Blue", Color: "#1E90FF"},
	{ID: "green", Name: "Green", Color: "#20B2AA"},
	{ID: "purple", Name: "Purple", Color: "#9370DB"},
	{ID: "pink", Name: "Pink", Color: "#FF69B4"},
	{ID: "orange", Name: "Orange", Color: "#FF8C00"},
	{ID: "red", Name: "Red", Color: "#FF4444"},
	{ID: "yellow", Name: "Yellow", Color: "#FFD700"},
	{ID: "gray", Name: "Gray", Color: "#808080"},
}

// Resetter erases user records. The App implements it.
type Resetter interface {
	ResetRecords() error
}

// ResetFunc adapts a function to Resetter.
type ResetFunc func() error

func (f ResetFunc) ResetRecords() error { return f() }

// Snapshot is the JSON view of a profile.
type Snapshot struct {
	Username   string        `json:"username"`
	Theme      string        `json:"theme"`
	ThemeColor string        `json:"theme_color"`
	Options    []ColorOption `json:"options"`
}

// Profile is not safe for concurrent use.
type Profile struct {
	username string
	theme    string
	resetter Resetter
	gate     *confirm.Gate
}

// New creates a profile. Invalid username or theme values fall back to the
// defaults.
func New(username, theme string, r Resetter, gate *confirm.Gate) *Profile {
	if gate == nil {
		gate = confirm.NewGate()
	}
	p := &Profile{
		username: DefaultUsername,
		theme:    DefaultTheme,
		resetter: r,
		gate:     gate,
	}
	_ = p.SetUsername(username)
	_ = p.SetTheme(theme)
	return p
}

func (p *Profile) Username() string { return p.username }
func (p *Profile) Theme() string    { return p.theme }

// ThemeColor returns the hex color of the current theme.
func (p *Profile) ThemeColor() string {
	if opt, ok := lookupColor(p.theme); ok {
		return opt.Color
	}
	return ColorOptions[0].Color
}

func (p *Profile) Snapshot() Snapshot {
	return Snapshot{
		Username:   p.username,
		Theme:      p.theme,
		ThemeColor: p.ThemeColor(),
		Options:    ColorOptions,
	}
}

// SetUsername validates and stores a new username.
func (p *Profile) SetUsername(name string) error {
	name, err := cleanUsername(name)
	if err != nil {
		return err
	}
	p.username = name
	return nil
}

// SetTheme selects a theme color by ID.
func (p *Profile) SetTheme(id string) error {
	id, err := cleanTheme(id)
	if err != nil {
		return err
	}
	p.theme = id
	return nil
}

// Update changes the non-nil fields. Both are validated first; on error
// nothing changes.
func (p *Profile) Update(username, theme *string) error {
	name, id := p.username, p.theme
	var err error
	if username != nil {
		if name, err = cleanUsername(*username); err != nil {
			return err
		}
	}
	if theme != nil {
		if id, err = cleanTheme(*theme); err != nil {
			return err
		}
	}
	p.username, p.theme = name, id
	return nil
}

func cleanUsername(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", model.Invalid("username", "username cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxUsernameRunes {
		return "", model.Invalid("username", "username must be at most 20 characters")
	}
	return name, nil
}

func cleanTheme(id string) (string, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if _, ok := lookupColor(id); !ok {
		return "", model.Invalid("theme", "unknown theme color")
	}
	return id, nil
}

func lookupColor(id string) (ColorOption, bool) {
	for _, opt := range ColorOptions {
		if opt.ID == id {
			return opt, true
		}
	}
	return ColorOption{}, false
}

// RequestReset asks for confirmation before erasing every record.
func (p *Profile) RequestReset() confirm.Ticket {
	return p.gate.Request(actionReset, "", "erase all records? this cannot be undone", func() error {
		if p.resetter == nil {
			return nil
		}
		if err := p.resetter.ResetRecords(); err != nil {
			return err
		}
		appLog.Info("records erased", "username", p.username)
		return nil
	})
}

// ConfirmReset runs a pending reset.
func (p *Profile) ConfirmReset(ticketID string) error {
	_, err := p.gate.ConfirmAction(ticketID, actionReset)
	return err
}
