package cliapp

import (
	"testing"

	"pylens/internal/core/config"
)

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{"-once", "-json", "-file", "app.py", "-highlight", "area", "./proj"})
	if err != nil {
		t.Fatal(err)
	}
	if !opts.once || !opts.jsonOut {
		t.Errorf("flags not parsed: %+v", opts)
	}
	if opts.file != "app.py" || opts.highlight != "area" {
		t.Errorf("string flags not parsed: %+v", opts)
	}
	if len(opts.args) != 1 || opts.args[0] != "./proj" {
		t.Errorf("positional args = %v", opts.args)
	}
}

func TestParseOptionsRejectsUnknownFlag(t *testing.T) {
	if _, err := parseOptions([]string{"-bogus"}); err == nil {
		t.Fatal("unknown flag must fail")
	}
}

func TestApplyModeOptions(t *testing.T) {
	cfg := config.DefaultConfig()

	opts := cliOptions{highlight: "area"}
	if err := applyModeOptions(&opts, cfg); err == nil {
		t.Error("-highlight without -file must fail")
	}

	opts = cliOptions{ui: true, file: "app.py"}
	if err := applyModeOptions(&opts, cfg); err == nil {
		t.Error("-ui with -file must fail")
	}

	opts = cliOptions{args: []string{"./somewhere"}}
	if err := applyModeOptions(&opts, cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Paths.ProjectRoot != "./somewhere" {
		t.Errorf("project root override failed: %q", cfg.Paths.ProjectRoot)
	}
}

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	cfg, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.CacheTimeoutMS != 5000 {
		t.Errorf("default cache timeout = %d", cfg.Engine.CacheTimeoutMS)
	}

	if _, err := loadConfig("./definitely-missing.toml"); err == nil {
		t.Error("explicit missing config path must fail")
	}
}
