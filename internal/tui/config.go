// Package tui provides the interactive terminal intake form.
package tui

import "github.com/Veraticus/immowert/internal/model"

// Config holds TUI configuration.
type Config struct {
	Theme     Theme
	Validate  func(model.ValuationRequest) error
	Width     int
	Height    int
	AltScreen bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:     DefaultTheme,
		Width:     80,
		Height:    24,
		AltScreen: true,
	}
}

// WithTheme sets the theme.
func WithTheme(theme Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithValidator runs validate on submit; a non-nil error keeps the form open.
func WithValidator(validate func(model.ValuationRequest) error) Option {
	return func(c *Config) {
		c.Validate = validate
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithAltScreen toggles the alternate screen buffer.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) {
		c.AltScreen = enabled
	}
}
