package main

import (
	"fmt"
	"os"

	"github.com/ItsRikan/aware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

func getClient(c *cli.Context) (aware.Client, error) {
	config, err := aware.GetConfigFromEnvironment()
	if err != nil {
		return nil, errors.Wrap(err, "error reading aware configuration")
	}
	config.TokenBackend = &fileTokenBackend{}
	if c.Bool(flagInsecure) {
		config.AllowInsecure = true
	}
	logger := zerolog.New(
		zerolog.ConsoleWriter{Out: os.Stderr},
	).With().Timestamp().Logger()
	if !c.Bool(flagVerbose) {
		logger = logger.Level(zerolog.ErrorLevel)
	}
	config.Logger = &logger
	return aware.NewClient(config), nil
}

// getAuthenticatedClient additionally resumes the persisted session; commands
// that hit authenticated endpoints start here.
func getAuthenticatedClient(c *cli.Context) (aware.Client, error) {
	client, err := getClient(c)
	if err != nil {
		return nil, err
	}
	if _, ok := client.Sessions().Resume(c.Context); !ok {
		return nil, errors.New(
			"no session found; please use `aware login` to continue",
		)
	}
	return client, nil
}

// progressLine renders upload/analysis progress on a single terminal line.
func progressLine(label string) aware.ProgressFunc {
	return func(percent int) {
		fmt.Printf("\r%s... %3d%%", label, percent)
		if percent >= 100 {
			fmt.Println()
		}
	}
}
