package main

import (
	"context"
	"io"
	"os"
	"strings"

	"ArticleEnhancer/internal/app"
	"ArticleEnhancer/internal/config"
	"ArticleEnhancer/internal/logging"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	// load and logOut are swapped in tests.
	load   func(path string) config.Config
	logOut io.Writer
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		load:         config.LoadFile,
		logOut:       os.Stderr,
	}
}

func (c *commandContext) config() config.Config {
	var path string
	if c.configFlag != nil {
		path = strings.TrimSpace(*c.configFlag)
	}
	cfg := c.load(path)
	if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
		cfg.Logging.Level = strings.TrimSpace(*c.logLevelFlag)
	}
	return cfg
}

// withApp builds the application for one command and closes it afterwards.
// Logs go to stderr so command output stays pipeable.
func (c *commandContext) withApp(ctx context.Context, fn func(*app.Application) error) error {
	cfg := c.config()
	application, err := app.New(ctx, cfg, logging.NewWithWriter(c.logOut, cfg.Logging.Level))
	if err != nil {
		return err
	}
	defer application.Close()
	return fn(application)
}
