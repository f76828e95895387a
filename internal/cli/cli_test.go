package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teakeys/internal/config"
	"teakeys/internal/store"
)

// writeConfig saves a default config whose outputs live under a temp dir.
func writeConfig(t *testing.T, mutate func(*config.Config)) (string, *config.Config) {
	t.Helper()

	cfg := config.Default()
	cfg.Output.BasePath = filepath.Join(t.TempDir(), "out")

	if mutate != nil {
		mutate(cfg)
	}

	path := filepath.Join(t.TempDir(), "teakeys.yaml")
	require.NoError(t, cfg.SaveConfig(path))

	return path, cfg
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func fixture(name string) string {
	return filepath.Join("testdata", name)
}

func TestInit_CreatesDirectoriesAndConfig(t *testing.T) {
	cfgPath, cfg := writeConfig(t, nil)
	starter := filepath.Join(t.TempDir(), "starter.toml")

	out, err := execute(t, "--config", cfgPath, "init", "--write-config", starter)
	require.NoError(t, err)

	for _, d := range store.NewLayout(cfg.Output).Dirs() {
		assert.DirExists(t, d)
		assert.Contains(t, out, d)
	}

	loaded, err := config.LoadConfig(starter)
	require.NoError(t, err)
	assert.Equal(t, cfg.Output.BasePath, loaded.Output.BasePath)

	_, err = execute(t, "--config", cfgPath, "init", "--write-config", starter)
	assert.Error(t, err)
}

func TestScrapeCleanRemapShow(t *testing.T) {
	cfgPath, cfg := writeConfig(t, nil)
	layout := store.NewLayout(cfg.Output)

	out, err := execute(t, "-c", cfgPath, "scrape", fixture("keys.html"), "--preview")
	require.NoError(t, err)

	generated := layout.GeneratedPath("Campus Student Information")
	assert.Contains(t, out, generated)
	assert.Contains(t, out, "| CPETALLC | All Students")
	assert.FileExists(t, generated)

	out, err = execute(t, "-c", cfgPath, "clean", generated, "--preview")
	require.NoError(t, err)

	processed := layout.ProcessedPath("Campus Student Information")
	assert.Contains(t, out, processed)
	assert.Contains(t, out, "Avg M")

	out, err = execute(t, "-c", cfgPath, "remap", processed, fixture("campus.csv"))
	require.NoError(t, err)

	renamed := layout.RenamedPath("campus.csv")
	assert.Equal(t, renamed, strings.TrimSpace(out))

	data, err := os.ReadFile(renamed)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "CAMPUS,All,Avg M\n"))

	out, err = execute(t, "-c", cfgPath, "show", generated, "--compare", processed)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Campus Student Information\n\n| Key"))
	assert.Contains(t, out, "| Raw")
}

func TestRemap_ExplicitOut(t *testing.T) {
	cfgPath, _ := writeConfig(t, nil)

	keys := filepath.Join(t.TempDir(), "Keys.json")
	require.NoError(t, os.WriteFile(keys, []byte(`{"CPETALLC": "All"}`), 0o644))

	dst := filepath.Join(t.TempDir(), "renamed.csv")

	_, err := execute(t, "-c", cfgPath, "remap", keys, fixture("campus.csv"), "-o", dst)
	require.NoError(t, err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "CAMPUS,All,CPETHISC\n001,10,5\n002,12,7\n", string(data))
}

func TestRun_FromConfig(t *testing.T) {
	cfgPath, cfg := writeConfig(t, func(c *config.Config) {
		c.Sources = []config.SourceConfig{
			{Name: "campus", File: fixture("keys.html"), Dataset: fixture("campus.csv"), UseCleaned: true, Enabled: true},
			{Name: "disabled", URL: "https://example.com/keys.html", Enabled: false},
		}
	})

	out, err := execute(t, "-c", cfgPath, "run")
	require.NoError(t, err)
	assert.Contains(t, out, "campus\tCampus Student Information\t3 keys")

	assert.FileExists(t, store.NewLayout(cfg.Output).RenamedPath("campus.csv"))
}

func TestRun_RequiresSources(t *testing.T) {
	cfgPath, _ := writeConfig(t, nil)

	_, err := execute(t, "-c", cfgPath, "run")
	assert.ErrorIs(t, err, config.ErrNoSources)
}

func TestLogFlagsAreValidated(t *testing.T) {
	cfgPath, _ := writeConfig(t, nil)

	_, err := execute(t, "-c", cfgPath, "--log-level", "loud", "init")
	assert.ErrorIs(t, err, config.ErrInvalidLogLevel)
}

func TestSourceFromArg(t *testing.T) {
	assert.Equal(t, "https://example.com/k.html", sourceFromArg("https://example.com/k.html").URL)
	assert.Equal(t, "keys.html", sourceFromArg("keys.html").File)
}

func TestClean_RuleFlags(t *testing.T) {
	cfgPath, cfg := writeConfig(t, nil)
	layout := store.NewLayout(cfg.Output)

	_, err := execute(t, "-c", cfgPath, "scrape", fixture("keys.html"))
	require.NoError(t, err)

	generated := layout.GeneratedPath("Campus Student Information")

	_, err = execute(t, "-c", cfgPath, "clean", generated, "--no-defaults", "--rule", "Students=Pupils", "--rule", "African American=AA")
	require.NoError(t, err)

	cleaned, err := store.LoadMapping(layout.ProcessedPath("Campus Student Information"))
	require.NoError(t, err)

	v, _ := cleaned.Get("CPETALLC")
	assert.Equal(t, "All Pupils", v)

	v, _ = cleaned.Get("CPETBLAC")
	assert.Equal(t, "AA Pupils", v)

	v, _ = cleaned.Get("CPETHISC")
	assert.Equal(t, "Average  Male Pupils", v)

	_, err = execute(t, "-c", cfgPath, "clean", generated, "--rule", "=x")
	assert.ErrorIs(t, err, ErrInvalidRuleFlag)
}

func TestParseRules(t *testing.T) {
	rs, err := parseRules([]string{"a=b=c", "Students="})
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, "a", rs[0].Pattern)
	assert.Equal(t, "b=c", rs[0].Replacement)
	assert.Equal(t, "", rs[1].Replacement)

	_, err = parseRules([]string{"no-separator"})
	assert.ErrorIs(t, err, ErrInvalidRuleFlag)
}
