package main

import "github.com/urfave/cli/v2"

const (
	flagAllergy  = "allergy"
	flagCategory = "category"
	flagInsecure = "insecure"
	flagOutput   = "output"
	flagPassword = "password"
	flagUsecase  = "usecase"
	flagVerbose  = "verbose"
)

var (
	cliFlagOutput = &cli.StringFlag{
		Name:    flagOutput,
		Aliases: []string{"o"},
		Usage:   "Return output in another format. Supported formats: table, json",
		Value:   "table",
	}
	cliFlagCategory = &cli.StringFlag{
		Name:    flagCategory,
		Aliases: []string{"c"},
		Usage: "Product category. Supported: General, Food, Cosmetics, " +
			"Pet Food, Pet Cosmetics",
		Value: "General",
	}
)
