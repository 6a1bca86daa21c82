package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"

	"github.com/jmanzanog/instrument-catalog/internal/client"
)

var (
	serverURL     = flag.String("server", envOrDefault("CATALOG_SERVER", client.DefaultBaseURL), "Base URL of the catalog service")
	sessionToken  = flag.String("session", os.Getenv("CATALOG_SESSION"), "Session cookie value sent with every request")
	sessionCookie = flag.String("cookie", client.DefaultSessionCookie, "Name of the session cookie")
	verbose       = flag.Bool("v", false, "Log requests and refreshes")
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	Register(commander, newEnv(os.Stdout, os.Stderr, func() *client.Mirror {
		c := client.NewClient(*serverURL)
		c.SetSession(*sessionCookie, *sessionToken)
		return client.NewMirror(c)
	}))

	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(int(commander.Execute(ctx)))
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
