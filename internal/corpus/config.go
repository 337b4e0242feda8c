package corpus

// DefaultMaxFileSize bounds the size of a single document.
const DefaultMaxFileSize int64 = 5 << 20

// Config holds the corpus sources and read limits.
type Config struct {
	// Sources are scanned in order; labels must be unique.
	Sources []Source `json:"sources" yaml:"sources" mapstructure:"sources"`

	// MaxFileSize skips larger files. Zero means DefaultMaxFileSize.
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size" mapstructure:"max_file_size"`
}
