package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/controlroom/internal/infrastructure/config"
	"github.com/GriffinCanCode/controlroom/internal/infrastructure/logging"
	"github.com/GriffinCanCode/controlroom/internal/infrastructure/server"
	"github.com/GriffinCanCode/controlroom/internal/shared/types"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var (
	cfg *config.Config

	flagConfigFilePath string
	flagHost           string
	flagPort           string
	flagDev            bool
	flagLogLevel       string
)

func main() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFilePath, "config", "", "control room file to load - default is controlroom.config.{json,yaml,yml,toml} in the current or parent directory")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentPreRunE = loadConfig

	serveCmd.Flags().StringVar(&flagHost, "host", "", "listen host (overrides HOST)")
	serveCmd.Flags().StringVar(&flagPort, "port", "", "listen port (overrides PORT)")
	serveCmd.Flags().BoolVar(&flagDev, "dev", false, "development logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(servicesCmd)
	rootCmd.AddCommand(versionCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "controlroom: %v\n", err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "controlroom",
	Short:         "Local control plane for development services and ad-hoc commands",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the REST and WebSocket control plane",
	RunE:  doServe,
}

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "List the services defined in the control room file",
	RunE:  doServices,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "controlroom: %s\n", version)
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		fmt.Fprintf(out, "go:          %s\n", info.GoVersion)
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				fmt.Fprintf(out, "commit:      %s\n", s.Value)
			case "vcs.time":
				fmt.Fprintf(out, "date:        %s\n", s.Value)
			}
		}
	},
}

// loadConfig reads the environment, then applies flag overrides
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load()
	if err != nil {
		return err
	}
	if flagConfigFilePath != "" {
		c.ControlRoom.Path = flagConfigFilePath
	}
	if flagLogLevel != "" {
		c.Logging.Level = flagLogLevel
	}
	if flagHost != "" {
		c.Server.Host = flagHost
	}
	if flagPort != "" {
		c.Server.Port = flagPort
	}
	if flagDev {
		c.Logging.Development = true
	}
	cfg = c
	return nil
}

func doServe(cmd *cobra.Command, args []string) error {
	srv, err := server.NewServer(cfg, version)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Run(cmd.Context())
}

func doServices(cmd *cobra.Command, args []string) error {
	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := config.NewStore(cfg.ControlRoom.Path, logger.Logger)
	if err != nil {
		return err
	}
	if store.Path() == "" {
		return config.ErrNoConfigFile
	}
	current, err := store.Reload()
	if err != nil {
		return err
	}
	logger.Debug("listing services", zap.String("path", store.Path()))

	defs := current.Services
	types.SortDefinitions(defs)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIER\tCOMMAND")
	for _, d := range defs {
		command := strings.TrimSpace(d.Start.Program + " " + strings.Join(d.Start.Args, " "))
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Tier, command)
	}
	return w.Flush()
}
