package main

import (
	"fmt"
	"os"

	"github.com/ItsRikan/aware/pkg/signals"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()
	app.Name = "aware"
	app.Usage = "Scan consumer product labels for AI-derived health analysis"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    flagInsecure,
			Aliases: []string{"k"},
			Usage:   "Allow insecure API server connections when using TLS",
		},
		&cli.BoolFlag{
			Name:    flagVerbose,
			Aliases: []string{"v"},
			Usage:   "Log secondary diagnostics to stderr",
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:      "login",
			Usage:     "Log in to Aware",
			ArgsUsage: "EMAIL",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    flagPassword,
					Aliases: []string{"p"},
					Usage:   "Specify the password non-interactively",
				},
			},
			Action: login,
		},
		{
			Name:   "logout",
			Usage:  "Log out of Aware",
			Action: logout,
		},
		{
			Name:      "signup",
			Usage:     "Register a new Aware account",
			ArgsUsage: "EMAIL NAME",
			Description: "Registration requires email confirmation before " +
				"logging in. Use `aware confirm` with the token from the " +
				"confirmation email.",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    flagPassword,
					Aliases: []string{"p"},
					Usage:   "Specify the password non-interactively",
				},
			},
			Action: signup,
		},
		{
			Name:      "confirm",
			Usage:     "Confirm a new account's email address",
			ArgsUsage: "TOKEN",
			Action:    confirm,
		},
		{
			Name:   "whoami",
			Usage:  "Show the logged-in user",
			Action: whoami,
		},
		{
			Name:      "scan",
			Usage:     "Scan a product image for ingredient and health analysis",
			ArgsUsage: "IMAGE_FILE",
			Flags: []cli.Flag{
				cliFlagCategory,
				&cli.StringFlag{
					Name:    flagAllergy,
					Aliases: []string{"a"},
					Usage:   "Free-text allergy profile to scan against",
				},
				cliFlagOutput,
			},
			Action: scan,
		},
		{
			Name:      "compare",
			Usage:     "Compare two product images",
			ArgsUsage: "IMAGE_FILE_1 IMAGE_FILE_2",
			Flags: []cli.Flag{
				cliFlagCategory,
				&cli.StringFlag{
					Name:    flagAllergy,
					Aliases: []string{"a"},
					Usage:   "Free-text allergy profile to compare against",
				},
				&cli.StringFlag{
					Name:    flagUsecase,
					Aliases: []string{"u"},
					Usage:   "What the product will be used for",
				},
				cliFlagOutput,
			},
			Action: compare,
		},
		{
			Name:  "history",
			Usage: "List past scans",
			Flags: []cli.Flag{
				cliFlagOutput,
			},
			Action: history,
		},
	}
	fmt.Println()
	if err := app.RunContext(signals.Context(), os.Args); err != nil {
		fmt.Printf("\n%s\n\n", err)
		os.Exit(1)
	}
	fmt.Println()
}
