// Command flexswd runs the software match-action switch daemon.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/flexsw/flexsw/core/logging"
	"github.com/flexsw/flexsw/core/version"
	"github.com/flexsw/flexsw/mgmt"
	"github.com/flexsw/flexsw/mgmt/configmgmt"
	"github.com/flexsw/flexsw/mgmt/reconfigmgmt"
	"github.com/flexsw/flexsw/mgmt/statemgmt"
	"github.com/flexsw/flexsw/mgmt/tablemgmt"
	"github.com/flexsw/flexsw/mgmt/versionmgmt"
	"github.com/flexsw/flexsw/sw"
)

var logger = logging.New("main")

// options are daemon settings loadable from a YAML file.
type options struct {
	RequiredFields []struct {
		Header string `yaml:"header"`
		Field  string `yaml:"field"`
	} `yaml:"requiredFields"`
	ConfigOptions map[string]interface{} `yaml:"configOptions"`
}

func main() {
	app := &cli.App{
		Name:    "flexswd",
		Usage:   "software match-action switch daemon",
		Version: version.V.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "initial config JSON `FILE`", Required: true},
			&cli.Uint64Flag{Name: "device-id", Usage: "device id", Value: 0},
			&cli.IntFlag{Name: "num-contexts", Usage: "number of contexts", Value: 1},
			&cli.BoolFlag{Name: "enable-swap", Usage: "permit live config swaps"},
			&cli.StringFlag{Name: "options", Usage: "daemon options YAML `FILE`"},
		},
		Action: run,
	}
	if e := app.Run(os.Args); e != nil {
		logger.Fatal("startup failed", zap.Error(e))
	}
}

func run(c *cli.Context) error {
	blob, e := os.ReadFile(c.String("config"))
	if e != nil {
		return e
	}

	s := sw.New(c.Int("num-contexts"), c.Bool("enable-swap"))

	if optFile := c.String("options"); optFile != "" {
		optBytes, e := os.ReadFile(optFile)
		if e != nil {
			return e
		}
		var opts options
		if e := yaml.Unmarshal(optBytes, &opts); e != nil {
			return e
		}
		for _, rf := range opts.RequiredFields {
			s.AddRequiredField(rf.Header, rf.Field)
		}
		s.SetDefaultConfigOptions(opts.ConfigOptions)
	}

	if e := s.Init(blob, c.Uint64("device-id"), nil); e != nil {
		return e
	}

	for _, mg := range []interface{}{
		tablemgmt.TableMgmt{Sw: s},
		tablemgmt.ActProfMgmt{Sw: s},
		statemgmt.CounterMgmt{Sw: s},
		statemgmt.MeterMgmt{Sw: s},
		statemgmt.RegisterMgmt{Sw: s},
		statemgmt.VsetMgmt{Sw: s},
		statemgmt.CrcMgmt{Sw: s},
		configmgmt.ConfigMgmt{Sw: s},
		reconfigmgmt.ReconfigMgmt{Sw: s},
		versionmgmt.VersionMgmt{},
	} {
		if e := mgmt.Register(mg); e != nil {
			return e
		}
	}
	if e := mgmt.Start(); e != nil {
		return e
	}
	defer mgmt.Stop()

	s.StartAndReturn()
	logger.Info("switch running", zap.Uint64("deviceID", s.DeviceID()))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")
	return nil
}
