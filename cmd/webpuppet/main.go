package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"webpuppet/internal/config"
	"webpuppet/internal/driver"
	"webpuppet/internal/logger"
	"webpuppet/internal/profiles"
	"webpuppet/internal/session"
)

type runFlags struct {
	screenshotPath string
	sourcePath     string
	cleanSource    bool
	runTimeout     time.Duration
}

func main() {
	config.LoadEnv()

	f := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	config.RegisterFlags(f)

	var rf runFlags
	f.StringVar(&rf.screenshotPath, "screenshot", "", "Save a screenshot of the loaded page to this file")
	f.StringVar(&rf.sourcePath, "source", "", "Save the page source to this file")
	f.BoolVar(&rf.cleanSource, "clean-source", false, "Strip scripts and styles when saving the source")
	f.DurationVar(&rf.runTimeout, "run-timeout", 5*time.Minute, "Overall run timeout")

	if err := f.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}

	args := f.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <url>\n", os.Args[0])
		f.PrintDefaults()
		os.Exit(2)
	}

	if err := run(f, rf, args[0]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(f *pflag.FlagSet, rf runFlags, url string) error {
	cfg, err := config.New(f)
	if err != nil {
		return err
	}

	log := logger.New(cfg.LogLevel(), cfg.LogFormat())
	defer func() { _ = log.Sync() }()

	typ := cfg.Browser()
	opts := cfg.DriverOptions()
	if path := cfg.ProfilesFile(); path != "" {
		catalog, err := profiles.LoadFile(path)
		if err != nil {
			return err
		}
		prof, err := catalog.Lookup(cfg.Profile())
		if err != nil {
			return err
		}
		if typ, opts, err = prof.Apply(typ, opts); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), rf.runTimeout)
	defer cancel()

	manager := session.NewManager(driver.NewFactory(log), log)
	defer manager.CloseAll()

	sess, err := manager.Open(ctx, typ, opts)
	if err != nil {
		return err
	}
	d := sess.Driver

	if err := d.Navigate(ctx, url); err != nil {
		log.Error("navigation failed", zap.Error(err))
		return err
	}

	title, _ := d.Title()
	current, _ := d.URL()
	fmt.Printf("%s (%s)\n", title, current)

	if rf.screenshotPath != "" {
		if err := d.SaveScreenshot(ctx, rf.screenshotPath); err != nil {
			return err
		}
	}
	if rf.sourcePath != "" {
		if err := d.SaveSource(ctx, rf.sourcePath, rf.cleanSource); err != nil {
			return err
		}
	}
	return nil
}
