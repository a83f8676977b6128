package cliapp

import "flag"

const versionString = "1.0.0"
const defaultConfigPath = "./pylens.toml"

type cliOptions struct {
	configPath string
	once       bool
	ui         bool
	file       string
	highlight  string
	trend      bool
	jsonOut    bool
	verbose    bool
	version    bool
	args       []string
}

func parseOptions(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("pylens", flag.ContinueOnError)

	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	fs.BoolVar(&opts.once, "once", false, "Run single project analysis and exit")
	fs.BoolVar(&opts.ui, "ui", false, "Enable terminal UI mode")
	fs.StringVar(&opts.file, "file", "", "Analyze a single file instead of the project")
	fs.StringVar(&opts.highlight, "highlight", "", "Print highlight ranges for a function (requires -file)")
	fs.BoolVar(&opts.trend, "trend", false, "Print history trend and exit")
	fs.BoolVar(&opts.jsonOut, "json", false, "Emit JSON instead of styled text")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.args = fs.Args()
	return opts, nil
}
