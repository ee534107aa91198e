package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/goliatone/go-print"
	admin "github.com/goliatone/go-school-admin"
	"github.com/goliatone/go-school-admin/config"
	"github.com/goliatone/go-school-admin/console"
	"go.uber.org/zap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx     context.Context
	Config  config.Config
	Runtime *runtime
	Out     io.Writer
}

const shutdownTimeout = 10 * time.Second

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(2)
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmdName)
		printUsage(os.Stderr)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		os.Exit(1)
	}

	cmdCtx := &commandContext{Ctx: ctx, Config: cfg, Runtime: rt, Out: os.Stdout}
	runErr := cmd.run(cmdCtx, os.Args[2:])
	if runErr != nil {
		rt.logger.Error("command failed", zap.String("command", cmdName), zap.Error(runErr))
	}
	rt.Close()

	if runErr != nil {
		os.Exit(1)
	}
}

func commands() map[string]command {
	return map[string]command{
		"serve": {
			name:        "serve",
			description: "Verify the stored session and serve the web console",
			run:         runServe,
		},
		"status": {
			name:        "status",
			description: "Verify the stored session and print the resulting auth state",
			run:         runStatus,
		},
		"login": {
			name:        "login",
			description: "Exchange credentials with the API and store the token",
			run:         runLogin,
		},
		"logout": {
			name:        "logout",
			description: "Clear the stored token",
			run:         runLogout,
		},
		"sessions": {
			name:        "sessions",
			description: "List the academic sessions offered at login",
			run:         runSessions,
		},
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: school-admin <command> [flags]\n\nAvailable commands:\n")

	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(tw, "  %s\t%s\n", name, cmds[name].description)
	}
	_ = tw.Flush()
}

func runServe(c *commandContext, _ []string) error {
	rt := c.Runtime

	go rt.sessions.Start(c.Ctx)

	ctrl, err := console.NewController(rt.sessions, rt.api, rt.api,
		console.WithLogger(rt.adapter("console")),
		console.WithActivitySink(rt.activity),
		console.WithLoginPath(c.Config.GetLoginPath()),
		console.WithDebug(c.Config.Log.Level == "debug"),
	)
	if err != nil {
		return err
	}

	app, err := console.NewApp(ctrl)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		rt.logger.Info("console listening", zap.String("addr", c.Config.Console.Addr))
		errCh <- app.Listen(c.Config.Console.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-c.Ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	rt.logger.Info("console shutting down")
	return app.ShutdownWithContext(shutdownCtx)
}

func runStatus(c *commandContext, _ []string) error {
	state := c.Runtime.sessions.Start(c.Ctx)
	fmt.Fprintln(c.Out, print.MaybePrettyJSON(state))
	fmt.Fprintf(c.Out, "route guard: %s\n", admin.NewRouteGuard(c.Config.GetLoginPath()).Evaluate(state).Outcome)
	return nil
}

func runLogin(c *commandContext, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "admin email")
	password := fs.String("password", os.Getenv("SCHOOL_ADMIN_PASSWORD"), "admin password (defaults to SCHOOL_ADMIN_PASSWORD)")
	session := fs.Int64("session", 0, "academic session id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rt := c.Runtime
	rt.sessions.Start(c.Ctx)

	handler := admin.NewLoginHandler(rt.api, rt.sessions)
	handler.Logger = rt.adapter("login")
	handler.ActivitySink = rt.activity

	err := handler.Execute(c.Ctx, admin.LoginMessage{
		Email:     *email,
		Password:  *password,
		SessionID: *session,
	})
	if err != nil {
		var failure *admin.LoginFailure
		if errors.As(err, &failure) {
			fmt.Fprintln(c.Out, failure.Message)
		}
		return err
	}

	fmt.Fprintf(c.Out, "logged in as %s\n", rt.sessions.State().AdminEmail())
	return nil
}

func runLogout(c *commandContext, _ []string) error {
	if err := c.Runtime.sessions.Logout(c.Ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.Out, "logged out")
	return nil
}

func runSessions(c *commandContext, _ []string) error {
	sessions, err := c.Runtime.api.ListSessions(c.Ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%d\t%s\n", s.ID, s.Name)
	}
	return tw.Flush()
}
