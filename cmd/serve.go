package main

import (
	"context"
	"net"
	"strconv"

	"github.com/dovermoor/cinefetch/internal/server"
	"github.com/dovermoor/cinefetch/internal/shared"
	"github.com/dovermoor/cinefetch/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve starts the dashboard HTTP server and blocks until a shutdown signal.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	host := cmd.String("host")
	port := cmd.Int("port")
	outputDir := cmd.String("output-dir")

	engine, err := r.requireEngine()
	if err != nil {
		return err
	}

	dashboard := web.NewServer(engine, r.logger, outputDir)
	srv := server.NewServer(net.JoinHostPort(host, strconv.Itoa(port)), dashboard.Routes(), r.logger)

	if err := srv.Start(); err != nil {
		return err
	}

	url := "http://" + srv.Addr()
	r.writePlain("Dashboard running at %s\n", url)
	r.writePlain("Press Ctrl+C to stop\n")

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	return srv.Wait(ctx)
}

// serveCommand builds the dashboard server command.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web dashboard for launching and monitoring harvests",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to bind",
				Value: r.config.Server.Host,
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on",
				Value:   r.config.Server.Port,
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the dashboard in the default browser",
			},
			&cli.StringFlag{
				Name:  "output-dir",
				Usage: "Directory for dashboard exports",
				Value: ".",
			},
		},
		Action: r.Serve,
	}
}
