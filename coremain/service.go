package coremain

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pmkol/poollist/mlog"
	"github.com/pmkol/poollist/pkg/safe_close"
)

var (
	svcCfg = &service.Config{
		Name:        "poollist",
		DisplayName: "poollist",
		Description: "Runs list scripts on bounded pools and serves pool metrics.",
	}
	svc service.Service
)

// serverService runs the start command under the system service manager.
// The config should enable watch or the api, otherwise the run ends right
// after the scripts and the service idles until it is stopped.
type serverService struct {
	f    *serverFlags
	sc   *safe_close.SafeClose
	done chan struct{}
}

func (ss *serverService) Start(s service.Service) error {
	ss.sc = safe_close.NewSafeClose()
	ss.done = make(chan struct{})
	go func() {
		defer close(ss.done)
		if err := startServer(ss.f, ss.sc); err != nil {
			mlog.L().Fatal("server exited", zap.Error(err))
		}
		mlog.L().Info("server exited")
	}()
	return nil
}

func (ss *serverService) Stop(s service.Service) error {
	ss.sc.SendCloseSignal(nil)
	<-ss.done
	return nil
}

func initService(_ *cobra.Command, _ []string) error {
	s, err := service.New(&serverService{f: new(serverFlags)}, svcCfg)
	if err != nil {
		return fmt.Errorf("cannot init service, %w", err)
	}
	svc = s
	return nil
}

func newSvcInstallCmd() *cobra.Command {
	sf := new(serverFlags)
	c := &cobra.Command{
		Use:   "install [-d working_dir] [-c config_file]",
		Short: "Install poollist as a system service.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(sf.dir) == 0 {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get current working directory, %w", err)
				}
				sf.dir = wd
			}
			dir, err := filepath.Abs(sf.dir)
			if err != nil {
				return fmt.Errorf("failed to resolve working directory, %w", err)
			}
			svcCfg.Arguments = serviceArgs(dir, sf.c)
			s, err := service.New(&serverService{f: sf}, svcCfg)
			if err != nil {
				return fmt.Errorf("cannot init service, %w", err)
			}
			return s.Install()
		},
		SilenceUsage: true,
	}
	c.Flags().StringVarP(&sf.dir, "dir", "d", "", "working dir")
	c.Flags().StringVarP(&sf.c, "config", "c", "", "config path")
	return c
}

// serviceArgs builds the arguments the service manager starts the binary
// with.
func serviceArgs(dir, config string) []string {
	args := []string{"start", "--as-service", "-d", dir}
	if len(config) > 0 {
		args = append(args, "-c", config)
	}
	return args
}

func newSvcUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Uninstall poollist from system service.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return svc.Uninstall()
		},
		SilenceUsage: true,
	}
}

func newSvcStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start poollist system service.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return svc.Start()
		},
		SilenceUsage: true,
	}
}

func newSvcStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop poollist system service.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return svc.Stop()
		},
		SilenceUsage: true,
	}
}

func newSvcRestartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart poollist system service.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return svc.Restart()
		},
		SilenceUsage: true,
	}
}

func newSvcStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Status of poollist system service.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := svc.Status()
			if err != nil {
				return fmt.Errorf("cannot get service status, %w", err)
			}
			var out string
			switch s {
			case service.StatusRunning:
				out = "running"
			case service.StatusStopped:
				out = "stopped"
			default:
				out = "unknown"
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
		SilenceUsage: true,
	}
}
