// Package store persists key mappings under the output base directory.
package store

import (
	"path/filepath"
	"strings"

	"teakeys/internal/config"
	"teakeys/pkg/utils"
)

const processedSuffix = " Processed Keys"

// Layout resolves output locations for mappings and renamed datasets.
type Layout struct {
	Base      string
	Generated string
	Processed string
	Renamed   string

	names *utils.StringHelper
}

// NewLayout builds a layout from the output settings. Empty directory names
// fall back to the defaults.
func NewLayout(cfg config.OutputConfig) Layout {
	def := config.Default().Output

	return Layout{
		Base:      orDefault(cfg.BasePath, def.BasePath),
		Generated: orDefault(cfg.GeneratedDir, def.GeneratedDir),
		Processed: orDefault(cfg.ProcessedDir, def.ProcessedDir),
		Renamed:   orDefault(cfg.RenamedDir, def.RenamedDir),
		names:     utils.NewStringHelper(),
	}
}

// Dirs returns the three output directories.
func (l Layout) Dirs() []string {
	return []string{l.GeneratedDir(), l.ProcessedDir(), l.RenamedDir()}
}

// GeneratedDir is where raw mappings are written.
func (l Layout) GeneratedDir() string {
	return filepath.Join(l.Base, l.Generated)
}

// ProcessedDir is where cleaned mappings are written.
func (l Layout) ProcessedDir() string {
	return filepath.Join(l.Base, l.Processed)
}

// RenamedDir is where remapped datasets are written.
func (l Layout) RenamedDir() string {
	return filepath.Join(l.Base, l.Renamed)
}

// GeneratedPath returns "<base>/<generated>/<title>.json".
func (l Layout) GeneratedPath(title string) string {
	return filepath.Join(l.GeneratedDir(), l.fileStem(title)+".json")
}

// ProcessedPath returns "<base>/<processed>/<title> Processed Keys.json".
func (l Layout) ProcessedPath(title string) string {
	return filepath.Join(l.ProcessedDir(), l.fileStem(title)+processedSuffix+".json")
}

// RenamedPath returns the output path for a dataset, keeping its file name.
func (l Layout) RenamedPath(datasetPath string) string {
	return filepath.Join(l.RenamedDir(), filepath.Base(datasetPath))
}

// TitleFromPath recovers a mapping title from a generated or processed file name.
func TitleFromPath(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	return strings.TrimSuffix(stem, processedSuffix)
}

func (l Layout) fileStem(title string) string {
	names := l.names
	if names == nil {
		names = utils.NewStringHelper()
	}

	return names.SanitizeFilename(title)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}

	return v
}
