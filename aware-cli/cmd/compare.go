package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ItsRikan/aware"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func compare(c *cli.Context) error {
	// Args
	if c.Args().Len() != 2 {
		return errors.New("compare requires two arguments-- two image files")
	}
	imagePath1 := c.Args().Get(0)
	imagePath2 := c.Args().Get(1)

	// Command-specific flags
	output := c.String(flagOutput)
	category := c.String(flagCategory)
	allergy := c.String(flagAllergy)
	usecase := c.String(flagUsecase)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	file1, err := loadImageFile(imagePath1)
	if err != nil {
		return err
	}
	file2, err := loadImageFile(imagePath2)
	if err != nil {
		return err
	}

	client, err := getAuthenticatedClient(c)
	if err != nil {
		return err
	}

	result, err := client.Scans().Compare(
		c.Context,
		file1,
		file2,
		aware.CompareRequest{
			Category: aware.Category(category),
			Allergy:  allergy,
			Usecase:  usecase,
		},
		progressLine("Comparing"),
	)
	if err != nil {
		return err
	}

	switch strings.ToLower(output) {
	case "table":
		table := uitable.New()
		table.MaxColWidth = 50
		table.Wrap = true
		table.AddRow("", "PRODUCT 1", "PRODUCT 2")
		table.AddRow("SAFE", result.IsSafe1, result.IsSafe2)
		table.AddRow("SCORE", result.HealthScore1, result.HealthScore2)
		table.AddRow("NOTES", result.Description1, result.Description2)
		fmt.Println(table)
		fmt.Printf(
			"\nBest product: %s\nPreferred for you: %s\n",
			result.BestProduct,
			result.PreferredForYou,
		)

	case "json":
		resultJSON, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from compare operation",
			)
		}
		fmt.Println(string(resultJSON))
	}

	return nil
}
