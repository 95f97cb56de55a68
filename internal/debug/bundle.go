// Package debug collects a JSON diagnostics bundle for support requests.
// Bundles hold counts and paths, never customer records.
package debug

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

type Check struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// StoreInfo summarises the ledger store without exposing its rows.
type StoreInfo struct {
	Path          string `json:"path"`
	SchemaVersion int    `json:"schema_version"`
	Accounts      int    `json:"accounts"`
	Transactions  int    `json:"transactions"`
	Users         int    `json:"users"`
}

type Bundle struct {
	GeneratedAt string            `json:"generated_at"`
	GOOS        string            `json:"goos"`
	GOARCH      string            `json:"goarch"`
	GoVersion   string            `json:"go_version"`
	Version     map[string]string `json:"version,omitempty"`
	Store       *StoreInfo        `json:"store,omitempty"`
	Checks      []Check           `json:"checks"`
}

func NewBundle(now time.Time) Bundle {
	return Bundle{
		GeneratedAt: now.UTC().Format(time.RFC3339Nano),
		GOOS:        runtime.GOOS,
		GOARCH:      runtime.GOARCH,
		GoVersion:   runtime.Version(),
		Checks:      []Check{},
	}
}

// AddCheck records the outcome of one check. A nil err is a pass and okMsg
// becomes the message.
func (b *Bundle) AddCheck(name string, err error, okMsg string) {
	if err != nil {
		b.Checks = append(b.Checks, Check{Name: name, OK: false, Message: err.Error()})
		return
	}
	b.Checks = append(b.Checks, Check{Name: name, OK: true, Message: okMsg})
}

// Healthy reports whether every recorded check passed.
func (b Bundle) Healthy() bool {
	for _, check := range b.Checks {
		if !check.OK {
			return false
		}
	}
	return true
}

func WriteBundle(outputPath string, bundle Bundle) error {
	if outputPath == "" {
		return errors.New("write debug bundle: output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o700); err != nil {
		return fmt.Errorf("write debug bundle: create output directory: %w", err)
	}

	payload, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("write debug bundle: marshal json: %w", err)
	}
	if err := os.WriteFile(outputPath, payload, 0o600); err != nil {
		return fmt.Errorf("write debug bundle: %w", err)
	}
	return nil
}
