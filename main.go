// Package main -----------------------------
// @file      : main.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2023/12/15 20:23
// -------------------------------------------
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := app().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func app() *cli.App {
	return &cli.App{
		Name:  "redis-go",
		Usage: "redis client and development server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file",
				EnvVars: []string{"REDISGO_CONFIG"},
				Value:   "redis.yaml",
			},
			&cli.StringFlag{
				Name:    "url",
				Aliases: []string{"u"},
				Usage:   "redis://[[user]:password@]host[:port][/db], rediss://... or unix:///path.sock",
				EnvVars: []string{"REDISGO_URL"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "trace, debug, info, warn or error",
				EnvVars: []string{"REDISGO_LOG__LEVEL"},
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "serve prometheus metrics on this address, e.g. :9121",
			},
		},
		Before: setup,
		After:  teardown,
		Commands: []*cli.Command{
			execCommand(),
			pipelineCommand(),
			subscribeCommand(),
			serveCommand(),
		},
	}
}
