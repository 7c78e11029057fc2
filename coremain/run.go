package coremain

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/kardianos/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pmkol/poollist/mlog"
	"github.com/pmkol/poollist/pkg/safe_close"
)

var version = "dev"

type serverFlags struct {
	c         string
	dir       string
	cpu       int
	asService bool
}

type runFlags struct {
	heads    int
	nodes    int
	isolate  bool
	watch    bool
	logLevel string
	api      string
}

var rootCmd = &cobra.Command{
	Use: "poollist",
}

func init() {
	sf := new(serverFlags)
	startCmd := &cobra.Command{
		Use:   "start [-c config_file] [-d working_dir]",
		Short: "Run the scripts of a config file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sf.asService {
				svc, err := service.New(&serverService{f: sf}, svcCfg)
				if err != nil {
					return fmt.Errorf("failed to init service, %w", err)
				}
				return svc.Run()
			}
			return StartServer(sf)
		},
		DisableFlagsInUseLine: true,
		SilenceUsage:          true,
	}
	rootCmd.AddCommand(startCmd)
	fs := startCmd.Flags()
	fs.StringVarP(&sf.c, "config", "c", "", "config file")
	fs.StringVarP(&sf.dir, "dir", "d", "", "working dir")
	fs.IntVar(&sf.cpu, "cpu", 0, "set runtime.GOMAXPROCS")
	fs.BoolVar(&sf.asService, "as-service", false, "start as a service")
	fs.MarkHidden("as-service")

	serviceCmd := &cobra.Command{
		Use:   "service",
		Short: "Manage poollist as a system service.",
	}
	serviceCmd.PersistentPreRunE = initService
	serviceCmd.AddCommand(
		newSvcInstallCmd(),
		newSvcUninstallCmd(),
		newSvcStartCmd(),
		newSvcStopCmd(),
		newSvcRestartCmd(),
		newSvcStatusCmd(),
	)
	rootCmd.AddCommand(serviceCmd)

	rf := new(runFlags)
	runCmd := &cobra.Command{
		Use:   "run [flags] script...",
		Short: "Run scripts without a config file.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunPoollist(rf.config(args))
		},
		SilenceUsage: true,
	}
	rootCmd.AddCommand(runCmd)
	fs = runCmd.Flags()
	fs.IntVar(&rf.heads, "heads", defaultMaxHeads, "max number of lists")
	fs.IntVar(&rf.nodes, "nodes", defaultMaxNodes, "max number of items over all lists")
	fs.BoolVar(&rf.isolate, "isolate", false, "run every script on its own context")
	fs.BoolVar(&rf.watch, "watch", false, "rerun scripts when a file changes")
	fs.StringVar(&rf.logLevel, "log-level", "info", "log level")
	fs.StringVar(&rf.api, "api", "", "metrics and pprof http address")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
}

func (rf *runFlags) config(scripts []string) *Config {
	return &Config{
		Log:     mlog.LogConfig{Level: rf.logLevel},
		Pool:    PoolConfig{MaxHeads: rf.heads, MaxNodes: rf.nodes},
		Isolate: rf.isolate,
		Scripts: scripts,
		Watch:   rf.watch,
		API:     APIConfig{HTTP: rf.api},
	}
}

func AddSubCmd(c *cobra.Command) {
	rootCmd.AddCommand(c)
}

func Run() error {
	return rootCmd.Execute()
}

func StartServer(sf *serverFlags) error {
	return startServer(sf, safe_close.NewSafeClose())
}

func startServer(sf *serverFlags, sc *safe_close.SafeClose) error {
	if sf.cpu > 0 {
		runtime.GOMAXPROCS(sf.cpu)
	}

	if len(sf.dir) > 0 {
		err := os.Chdir(sf.dir)
		if err != nil {
			return fmt.Errorf("failed to change the current working directory, %w", err)
		}
		mlog.L().Info("working directory changed", zap.String("path", sf.dir))
	}

	cfg, fileUsed, err := loadConfig(sf.c)
	if err != nil {
		return fmt.Errorf("fail to load config, %w", err)
	}

	if err := mergeInclude(cfg, 0, []string{fileUsed}); err != nil {
		return fmt.Errorf("failed to load sub config file, %w", err)
	}

	if err := runPoollist(cfg, sc); err != nil {
		return fmt.Errorf("poollist exited, %w", err)
	}
	return nil
}

// loadConfig load a config from a file. If filePath is empty, it will
// automatically search and load a file which name start with "config".
func loadConfig(filePath string) (*Config, string, error) {
	v := viper.New()

	if len(filePath) > 0 {
		v.SetConfigFile(filePath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	decoderOpt := func(cfg *mapstructure.DecoderConfig) {
		cfg.ErrorUnused = true
		cfg.TagName = "yaml"
		cfg.WeaklyTypedInput = true
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg, decoderOpt); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, v.ConfigFileUsed(), nil
}

// mergeInclude prepends the scripts of included configs. Only scripts are
// merged, pool and api settings always come from the top level file.
func mergeInclude(cfg *Config, depth int, paths []string) error {
	depth++
	if depth > 8 {
		return fmt.Errorf("maximum include depth reached, include path is %s", strings.Join(paths, " -> "))
	}

	var included []string
	for _, subCfgFile := range cfg.Include {
		subPaths := append(paths, subCfgFile)
		mlog.L().Info("reading sub config", zap.String("file", subCfgFile))
		subCfg, _, err := loadConfig(subCfgFile)
		if err != nil {
			return fmt.Errorf("failed to load sub config, %w", err)
		}
		if err := mergeInclude(subCfg, depth, subPaths); err != nil {
			return err
		}
		included = append(included, subCfg.Scripts...)
	}

	cfg.Scripts = append(included, cfg.Scripts...)
	return nil
}
