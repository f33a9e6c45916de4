// Package main -----------------------------
// @file      : cli.go
// @author    : hcjjj
// @contact   : hcjjj@foxmail.com
// @time      : 2024/1/23 10:05
// -------------------------------------------
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"redis-go-client/database"
	"redis-go-client/interface/resp"
	"redis-go-client/lib/config"
	"redis-go-client/lib/logger"
	"redis-go-client/lib/metrics"
	"redis-go-client/pubsub"
	"redis-go-client/resp/client"
	"redis-go-client/resp/handler"
	"redis-go-client/resp/reply"
	"redis-go-client/tcp"
)

// env 命令之间共享的运行环境，由 setup 放入 App.Metadata
type env struct {
	props   *config.Properties
	log     hclog.Logger
	metrics *metrics.Metrics
	server  *http.Server
}

func getEnv(c *cli.Context) *env {
	return c.App.Metadata["env"].(*env)
}

func setup(c *cli.Context) error {
	props, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("url") {
		props.URL = c.String("url")
	}
	if c.IsSet("log-level") {
		props.Log.Level = c.String("log-level")
	}
	l, err := logger.Setup(&props.Log)
	if err != nil {
		return err
	}
	e := &env{props: props, log: l}
	if addr := c.String("metrics-addr"); addr != "" {
		reg := prometheus.NewRegistry()
		e.metrics = metrics.New(reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		e.server = &http.Server{Addr: addr, Handler: mux}
		go func() {
			if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				l.Error("metrics server stopped", "error", err)
			}
		}()
	}
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]interface{})
	}
	c.App.Metadata["env"] = e
	return nil
}

func teardown(c *cli.Context) error {
	e, ok := c.App.Metadata["env"].(*env)
	if !ok || e.server == nil {
		return nil
	}
	return e.server.Close()
}

func (e *env) newClient() (*client.Client, error) {
	opts, err := client.FromProperties(e.props)
	if err != nil {
		return nil, err
	}
	opts = append(opts, client.WithLogger(e.log), client.WithMetrics(e.metrics))
	return client.MakeClient(e.props.URL, opts...)
}

// printReply 与 redis-cli 的输出格式一致
func printReply(w io.Writer, r resp.Reply, err error) error {
	var serverErr *client.ServerError
	switch {
	case errors.As(err, &serverErr):
		fmt.Fprintln(w, "(error) "+serverErr.Msg)
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintln(w, reply.Format(r))
	return nil
}

func toArgs(ss []string) []interface{} {
	args := make([]interface{}, len(ss))
	for i, s := range ss {
		args[i] = s
	}
	return args
}

func execCommand() *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Usage:     "execute one command",
		ArgsUsage: "COMMAND [ARG...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("missing command", 2)
			}
			cl, err := getEnv(c).newClient()
			if err != nil {
				return err
			}
			defer cl.Close()
			args := c.Args().Slice()
			r, err := cl.Execute(c.Context, args[0], toArgs(args[1:])...)
			return printReply(c.App.Writer, r, err)
		},
	}
}

func pipelineCommand() *cli.Command {
	return &cli.Command{
		Name:  "pipeline",
		Usage: "read commands from stdin, one per line, and send them in one batch",
		Action: func(c *cli.Context) error {
			cl, err := getEnv(c).newClient()
			if err != nil {
				return err
			}
			defer cl.Close()
			return runPipeline(c.Context, cl, os.Stdin, c.App.Writer)
		},
	}
}

func runPipeline(ctx context.Context, cl *client.Client, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	err := cl.Pipeline(func() error {
		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) == 0 {
				continue
			}
			if _, err := cl.Execute(ctx, fields[0], toArgs(fields[1:])...); err != nil {
				return err
			}
		}
		return scanner.Err()
	})
	if err != nil {
		cl.PipelineClear()
		return err
	}
	replies, err := cl.PipelineExecute(ctx)
	if err != nil {
		return err
	}
	for _, r := range replies {
		fmt.Fprintln(out, reply.Format(r))
	}
	return nil
}

func subscribeCommand() *cli.Command {
	return &cli.Command{
		Name:      "subscribe",
		Usage:     "subscribe to channels and print messages until interrupted",
		ArgsUsage: "CHANNEL...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "pattern",
				Usage: "treat arguments as glob patterns",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("missing channel", 2)
			}
			cl, err := getEnv(c).newClient()
			if err != nil {
				return err
			}
			defer cl.Close()
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			queue := cl.Messages()
			var r resp.Reply
			if c.Bool("pattern") {
				r, err = cl.PSubscribe(ctx, c.Args().Slice()...)
			} else {
				r, err = cl.Subscribe(ctx, c.Args().Slice()...)
			}
			if err := printReply(c.App.Writer, r, err); err != nil {
				return err
			}
			err = queue.Range(ctx, func(msg *pubsub.Message) bool {
				fmt.Fprintln(c.App.Writer, msg.String())
				return true
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the in-memory development server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "listen address"},
			&cli.IntFlag{Name: "port", Usage: "listen port"},
			&cli.StringFlag{Name: "requirepass", Usage: "password required by AUTH"},
		},
		Action: func(c *cli.Context) error {
			props := getEnv(c).props.Server
			if c.IsSet("bind") {
				props.Bind = c.String("bind")
			}
			if c.IsSet("port") {
				props.Port = c.Int("port")
			}
			if c.IsSet("requirepass") {
				props.RequirePass = c.String("requirepass")
			}
			db := database.NewStandaloneDatabase(&props)
			return tcp.ListenAndServeWithSignal(
				&tcp.Config{Address: fmt.Sprintf("%s:%d", props.Bind, props.Port)},
				handler.MakeHandler(db))
		},
	}
}
