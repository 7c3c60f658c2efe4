package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/imglink/pkg/config"
	"github.com/robotalks/imglink/pkg/device"
	"github.com/robotalks/imglink/pkg/framework"
	"github.com/robotalks/imglink/pkg/link/dial"
	"github.com/robotalks/imglink/pkg/transfer"
)

func init() {
	config.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf, err := config.Load()
	if err != nil {
		glog.Exit(err)
	}
	height, width, format, err := conf.Shape()
	if err != nil {
		glog.Exit(err)
	}
	op, err := conf.Operation()
	if err != nil {
		glog.Exit(err)
	}

	runner := framework.NewRunner().HandleSignals()
	conn, err := dial.Open(runner.Context, conf.Link)
	if err != nil {
		glog.Exitf("open %s: %v", conf.Link, err)
	}
	app, err := device.NewApp(transfer.New(conn, &conf.Transfer), height, width, format, op)
	if err != nil {
		conn.Close()
		glog.Exit(err)
	}
	runner.Go(framework.NamedRun("device", framework.RunFunc(func(ctx context.Context) error {
		return framework.RunWithContextCloser(ctx, conn, func() error {
			return app.Run(ctx)
		})
	})))
	err = runner.Wait()
	stats := app.Stats()
	glog.Infof("%d cycles, %d failures", stats.Cycles, stats.Failures)
	if err != nil {
		glog.Exit(err)
	}
}
