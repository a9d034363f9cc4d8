package main

import (
	"github.com/spf13/cobra"
)

// appFlags holds persistent flags shared by every subcommand. Non-empty values
// override the config file.
type appFlags struct {
	GlobalConfigFile string
	URL              string
	StorePath        string
	LogLevel         string
}

func (f *appFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.GlobalConfigFile, "config", "c", "", "Path to the YAML/JSON configuration file. If not set, searches default locations.")
	pf.StringVarP(&f.URL, "url", "u", "", "URL of the resource to watch (overrides monitor_config.url)")
	pf.StringVarP(&f.StorePath, "store", "s", "", "Path of the SQLite etag store (overrides monitor_config.store_path)")
	pf.StringVar(&f.LogLevel, "log-level", "", "Log level: trace, debug, info, warn, error (overrides log_config.log_level)")
}
