package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/calvinmclean/teststand/bus"
	"github.com/calvinmclean/teststand/config"
	"github.com/calvinmclean/teststand/control"
	"github.com/calvinmclean/teststand/driver"
	"github.com/calvinmclean/teststand/hardware"
	"github.com/calvinmclean/teststand/sim"
	"github.com/calvinmclean/teststand/ui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const appID = "com.calvinmclean.teststand"

var (
	flagConfig   string
	flagHardware string
	flagLogLevel string
	flagDemo     bool
	flagSetup    bool
)

func main() {
	env, err := hardware.EnvFromOS()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "teststand",
		Short: "Motor test stand driver control panel",
		Long: `teststand drives a motor under test through one of its driver backends
and shows the readback the backend reports.

The panel settings are restored from the configuration file on start and
stored again on exit. Use --demo to run against simulated hardware.`,
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.Flags().StringVar(&flagConfig, "config", env.ConfigFile, "Configuration file for panel settings")
	rootCmd.Flags().StringVar(&flagHardware, "hardware", env.HardwareFile, "YAML hardware profile")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", env.LogLevel, "Log level")
	rootCmd.Flags().BoolVar(&flagDemo, "demo", env.Demo, "Run with simulated drivers (no hardware required)")
	rootCmd.Flags().BoolVar(&flagSetup, "setup", false, "Edit the hardware profile before starting")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	log := logrus.StandardLogger()
	level, err := hardware.Env{LogLevel: flagLogLevel}.Level()
	if err != nil {
		return err
	}
	log.SetLevel(level)

	profile, err := hardware.LoadProfile(flagHardware)
	if err != nil {
		return err
	}

	// ctx quits the panel. The loop keeps running until the settings are saved.
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	g, loopCtx := errgroup.WithContext(loopCtx)

	cfg := config.Default
	application := app.NewWithID(appID)

	var panel *ui.DriverPanel
	start := func(p hardware.Profile) {
		links := p.Links()
		if flagDemo {
			links = sim.Links()
		}
		panel = startPanel(ctx, loopCtx, g, application, log, cfg, links)
	}

	if flagSetup {
		setup := ui.NewSetupWindow(application)
		setup.OnSubmit = func(p hardware.Profile) {
			if err := p.Save(flagHardware); err != nil {
				log.WithError(err).Error("error saving hardware profile")
			}
			start(p)
		}
		setup.Show(&profile)
	} else {
		application.Lifecycle().SetOnStarted(func() {
			start(profile)
		})
	}

	application.Run()
	log.ReplaceHooks(make(logrus.LevelHooks))

	if panel != nil {
		panel.Close()
		if err := cfg.SaveFile(flagConfig); err != nil {
			log.WithError(err).Error("error saving configuration")
		}
	}
	stopLoop()

	return g.Wait()
}

func startPanel(ctx, loopCtx context.Context, g *errgroup.Group, application fyne.App, log *logrus.Logger, cfg *config.Registry, links driver.Links) *ui.DriverPanel {
	panel := ui.NewDriverPanel(application, driver.Default)
	log.AddHook(panel.Logs())

	loop := control.New(control.Options{
		Drivers: driver.Default,
		Env: driver.Env{
			Surface: panel.Surface(),
			Size:    driver.PanelSize,
			Links:   links,
			Bus:     bus.NewMutex(),
			Config:  cfg,
			Log:     log,
		},
		Panel:  panel.Panel(),
		Dialog: panel,
		Config: cfg,
		Log:    log,
	})

	panel.OnSave = func() error {
		return cfg.SaveFile(flagConfig)
	}
	panel.OnLoad = func() error {
		return cfg.LoadFile(loopCtx, flagConfig)
	}
	panel.Bind(loop)
	panel.Show(ctx)

	g.Go(func() error {
		return loop.Run(loopCtx)
	})
	g.Go(func() error {
		err := cfg.LoadFile(loopCtx, flagConfig)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.WithField("file", flagConfig).Info("no configuration file, using defaults")
		case err != nil:
			log.WithError(err).Warn("error restoring configuration")
		}
		return nil
	})

	return panel
}
