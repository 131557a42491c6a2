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

func scan(c *cli.Context) error {
	// Args
	if c.Args().Len() != 1 {
		return errors.New("scan requires one argument-- an image file")
	}
	imagePath := c.Args().Get(0)

	// Command-specific flags
	output := c.String(flagOutput)
	category := c.String(flagCategory)
	allergy := c.String(flagAllergy)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	file, err := loadImageFile(imagePath)
	if err != nil {
		return err
	}

	client, err := getAuthenticatedClient(c)
	if err != nil {
		return err
	}

	imageURL, err := client.Uploads().Upload(
		c.Context,
		file,
		progressLine("Uploading"),
	)
	if err != nil {
		return err
	}

	result, err := client.Scans().Scan(
		c.Context,
		aware.ScanRequest{
			URL:      imageURL,
			Category: aware.Category(category),
			Allergy:  allergy,
		},
	)
	if err != nil {
		return err
	}

	switch strings.ToLower(output) {
	case "table":
		printScanResult(result)

	case "json":
		resultJSON, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from scan operation",
			)
		}
		fmt.Println(string(resultJSON))
	}

	return nil
}

func printScanResult(result aware.ScanResult) {
	safety := "NOT SAFE for you"
	if result.IsSafe {
		safety = "Safe for you"
	}
	fmt.Printf(
		"%s (health score %d/10): %s\n\n%s\n\n",
		result.ProductName,
		result.HealthScore,
		safety,
		result.Description,
	)
	if len(result.Ingredients) == 0 {
		return
	}
	table := uitable.New()
	table.MaxColWidth = 60
	table.Wrap = true
	table.AddRow("INGREDIENT", "TYPE", "SCORE", "NOTES")
	for _, ingredient := range result.Ingredients {
		table.AddRow(
			ingredient.Name,
			ingredient.Itype,
			ingredient.HealthScore,
			ingredient.Description,
		)
	}
	fmt.Println(table)
}
