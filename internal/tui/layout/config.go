package layout

// Config holds all layout-related configuration values.
type Config struct {
	List  ListConfig
	Modal ModalConfig
	Input InputConfig
	Text  TextConfig
}

// ListConfig holds list pane dimension configuration.
type ListConfig struct {
	// HeightReduction is subtracted from terminal height for list content.
	// Accounts for: app padding (1) + header (2) + notice bar (1) + help bar (2)
	HeightReduction int

	// MinHeight is the minimum visible row count.
	MinHeight int

	// ContentPadding is subtracted from terminal width for row rendering.
	ContentPadding int
}

// ModalConfig holds modal dialog configuration.
type ModalConfig struct {
	// WidthPercent is the modal width as percentage of terminal width.
	WidthPercent int

	// MinWidth and MaxWidth clamp the computed width, in characters.
	MinWidth int
	MaxWidth int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	TitleCharLimit  int
	URLCharLimit    int
	FilterCharLimit int

	StandardWidth int
	FilterWidth   int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() Config {
	return Config{
		List: ListConfig{
			HeightReduction: 6,
			MinHeight:       3,
			ContentPadding:  6,
		},
		Modal: ModalConfig{
			WidthPercent: 40,
			MinWidth:     50,
			MaxWidth:     80,
		},
		Input: InputConfig{
			TitleCharLimit:  100,
			URLCharLimit:    500,
			FilterCharLimit: 50,
			StandardWidth:   40,
			FilterWidth:     30,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
