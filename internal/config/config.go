package config

import (
	"errors"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"
)

// Config holds the server settings. Loading a file overlays only the keys it
// sets; keys absent from the file keep their default values.
type Config struct {
	// MaxOpenDocuments bounds the document store.
	MaxOpenDocuments int `toml:"max_open_documents"`
	// TabSize and InsertSpaces are the indentation defaults fed to the
	// guesser.
	TabSize      int  `toml:"tab_size"`
	InsertSpaces bool `toml:"insert_spaces"`
	// DetectIndentation toggles guessing on didOpen.
	DetectIndentation bool `toml:"detect_indentation"`
}

func NewConfig() *Config {
	return &Config{
		MaxOpenDocuments:  1000,
		TabSize:           4,
		InsertSpaces:      true,
		DetectIndentation: true,
	}
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if c.MaxOpenDocuments <= 0 {
		return errors.New("max_open_documents must be positive")
	}
	if c.TabSize < 1 || c.TabSize > 16 {
		return errors.New("tab_size must be between 1 and 16")
	}
	return nil
}

// LoadFile overlays settings from a TOML file onto the defaults. A missing
// or invalid file is reported and otherwise ignored.
func (c *Config) LoadFile(path string) {
	logger := commonlog.GetLoggerf("textbuf.config")
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warningf("could not read config file '%s': %v", path, err)
		return
	}

	loaded := *c
	if err := toml.Unmarshal(data, &loaded); err != nil {
		logger.Warningf("could not parse config file '%s': %v", path, err)
		return
	}
	if err := loaded.Validate(); err != nil {
		logger.Warningf("invalid config file '%s': %v", path, err)
		return
	}

	*c = loaded
	logger.Infof("loaded config from '%s'", path)
}
