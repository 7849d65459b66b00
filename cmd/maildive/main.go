package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/maildive/maildive/internal/log"
	"github.com/maildive/maildive/internal/model"
	"github.com/maildive/maildive/internal/service"
	"gopkg.in/yaml.v3"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	userConfigPath string // /default/config/path/maildive on given OS
	configPath     string // actual config file used (if loaded)
	config         model.Config

	flagConfigFilePath string // value of --config flag
	flagVerbose        bool   // value of --verbose flag
)

func init() {
	d, err := os.UserConfigDir()
	if err != nil {
		panic(err)
	}
	userConfigPath = filepath.Join(d, "maildive")
}

func main() {
	// root flags
	rootCmd.PersistentFlags().StringVar(&flagConfigFilePath, "config", "", "Config file to load - default is maildive.yaml in current directory or in "+userConfigPath)
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "verbose logging")

	// command flags
	scanCmd.Flags().StringSliceVar(&flagScanTools, "tools", nil, "run only the given tools, e.g. --tools holehe,sherlock")
	scanCmd.Flags().BoolVar(&flagScanNoProbes, "no-probes", false, "skip the signup page probes")
	scanCmd.Flags().BoolVar(&flagScanNoWhois, "no-whois", false, "skip the whois lookup")
	scanCmd.Flags().StringVar(&flagScanFormat, "format", "", "export format: json, text, pdf or all")
	scanCmd.Flags().StringVar(&flagScanOut, "out", "", "directory for the export files")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "number of rows to print")
	historyCmd.Flags().StringVar(&flagHistoryEmail, "email", "", "only scans of the given address")
	historyShowCmd.Flags().StringVar(&flagHistoryFormat, "format", model.FormatText, "render format: json, text or pdf")
	watchCmd.Flags().BoolVar(&flagWatchNow, "now", false, "run one round right away instead of waiting for the schedule")

	// never print messages
	rootCmd.SilenceErrors = true

	// parse or create a config, setup logging
	rootCmd.PersistentPreRunE = initMaildive

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("maildive failed", "err", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "maildive",
	Short:        "Email OSINT tool checking where an address has accounts",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// bare maildive on a terminal drops into the menu
		if interactive() {
			return doMenu(cmd, args)
		}
		return cmd.Help()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "version provides version of a maildive",
	Run: func(cmd *cobra.Command, args []string) {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			fmt.Println("maildive: version info not available")
		}

		if configPath != "" {
			fmt.Printf("config:   %s\n", configPath)
		}
		fmt.Printf("maildive: %s\n", info.Main.Version)
		fmt.Printf("go:       %s\n", info.GoVersion)
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				fmt.Printf("commit:   %s\n", s.Value)
			case "vcs.time":
				fmt.Printf("date:     %s\n", s.Value)
			case "vcs.modified":
				fmt.Printf("dirty:    %s\n", s.Value)
			}
		}
		fmt.Println()
	},
}

func initMaildive(cmd *cobra.Command, _ []string) error {
	if envConfig, ok := os.LookupEnv("MAILDIVE_CONFIG"); ok {
		configPath = envConfig
	} else if flagConfigFilePath != "" {
		configPath = flagConfigFilePath
	} else {
		for _, d := range []string{userConfigPath, "."} {
			path := filepath.Join(d, "maildive.yaml")
			if exists(path) {
				configPath = path
				break
			}
		}
	}

	// store default configuration
	if configPath == "" {
		config = model.DefaultConfig()
		configPath = filepath.Join(userConfigPath, "maildive.yaml")
		err := os.MkdirAll(filepath.Dir(configPath), 0755)
		if err != nil {
			return fmt.Errorf("creating directory %s: %w", filepath.Dir(configPath), err)
		}

		f, err := os.Create(configPath)
		if err != nil {
			return fmt.Errorf("creating file %s: %w", configPath, err)
		}
		defer func() {
			_ = f.Close()
		}()
		enc := yaml.NewEncoder(f)
		err = enc.Encode(config)
		if err != nil {
			return fmt.Errorf("storing configuration: %w", err)
		}
	} else {
		var err error
		f, err := os.Open(configPath)
		if err != nil {
			return fmt.Errorf("opening config file: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		config, err = model.LoadConfig(f)
		if err != nil {
			for _, d := range model.CueErrDetails(err) {
				slog.Error(d.Message, d.Attr("detail"))
			}
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	// service options merge the config file, MAILDIVE_* environment and
	// flags, the later one wins
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	viper.SetDefault("service.verbose", false)
	viper.SetDefault("service.log", model.LogStderr)
	viper.SetEnvPrefix("MAILDIVE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlag("service.verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		return fmt.Errorf("binding verbose flag: %w", err)
	}
	opts, err := service.ParseOptions("service")
	if err != nil {
		return fmt.Errorf("parsing service options: %w", err)
	}
	config.Service.Verbose = &opts.Verbose
	config.Service.Log = &opts.Log

	// initialize logging
	slog.SetDefault(log.NewWriter(logDestination(opts.Log), opts.Verbose))

	slog.Debug("maildive run", "configPath", configPath)
	slog.Debug("maildive run", "config", config)
	return nil
}

func logDestination(name string) io.Writer {
	switch name {
	case model.LogStdout:
		return os.Stdout
	case model.LogDiscard:
		return io.Discard
	default:
		return os.Stderr
	}
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
