// Package config stores and exports the configuration of the instance and the
// hot-reloadable site configuration
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/bakape/forum/common"
	"github.com/bakape/forum/util"
)

var (
	// Ensures no reads happen, while the configuration is reloading
	globalMu sync.RWMutex

	// Contains currently loaded global site configuration
	global *Configs

	// Defaults contains the default site configuration values
	Defaults = Configs{
		TopicsPerPage:   50,
		MessagesPerPage: 15,
		FaviconSize:     common.FaviconSize,
		TitleSeparators: map[string]string{
			"bulbapedia.bulbagarden.net": " - ",
		},
	}
)

// Configs stores the global site configuration
type Configs struct {
	EmailErr        bool              `json:"email_errors"`
	EmailErrPort    uint              `json:"email_errors_server_port"`
	TopicsPerPage   int               `json:"topics_per_page"`
	MessagesPerPage int               `json:"messages_per_page"`
	FaviconSize     int               `json:"favicon_size"`
	EmailErrMail    string            `json:"email_errors_address"`
	EmailErrPass    string            `json:"email_errors_password"`
	EmailErrSub     string            `json:"email_errors_server_address"`
	TitleSeparators map[string]string `json:"title_separators"`
}

func init() {
	global = &Configs{}
	*global = Defaults
}

// Get returns a pointer to the current site configuration struct. Callers
// should not modify this struct.
func Get() *Configs {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// Set sets the internal configuration struct and notifies any listeners
func Set(c Configs) error {
	globalMu.Lock()
	global = &c
	globalMu.Unlock()

	return util.Trigger("config.changed")
}

// Load reads site configurations from a JSON file at path, applied over
// Defaults. A missing file is searched for in parent directories up to the
// project root. If none is found, Defaults are used.
func Load(path string) (err error) {
	c := Defaults
	c.TitleSeparators = make(map[string]string, len(Defaults.TitleSeparators))
	for k, v := range Defaults.TitleSeparators {
		c.TitleSeparators[k] = v
	}

	f, err := find(path)
	switch {
	case err != nil:
		return
	case f != nil:
		defer f.Close()
		err = json.NewDecoder(f).Decode(&c)
		if err != nil {
			return
		}
	}
	return Set(c)
}

// Walk up the directory tree looking for path. Returns nil, if the file does
// not exist.
func find(path string) (f *os.File, err error) {
	if filepath.IsAbs(path) {
		f, err = os.Open(path)
		if os.IsNotExist(err) {
			return nil, nil
		}
		return
	}

	var prefix, abs string
try:
	f, err = os.Open(filepath.Join(prefix, path))
	if err == nil || !os.IsNotExist(err) {
		return
	}
	_, err = os.Stat(filepath.Join(prefix, "go.mod"))
	switch {
	case err == nil:
		return nil, nil // Reached the project root dir
	case os.IsNotExist(err):
		abs, err = filepath.Abs(prefix)
		if err != nil {
			return
		}
		if abs == "/" {
			return nil, nil // Reached the system root dir
		}
		// Go up one dir
		prefix = filepath.Join("..", prefix)
		goto try
	default:
		return
	}
}

// Clear resets package state. Only use in tests.
func Clear() {
	globalMu.Lock()
	defer globalMu.Unlock()

	global = &Configs{}
	*global = Defaults
}
