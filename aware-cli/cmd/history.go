package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func history(c *cli.Context) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("history requires no arguments")
	}

	// Command-specific flags
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	client, err := getAuthenticatedClient(c)
	if err != nil {
		return err
	}

	items := client.Scans().History(c.Context)

	if len(items) == 0 {
		fmt.Println("No scans found.")
		return nil
	}

	switch strings.ToLower(output) {
	case "table":
		table := uitable.New()
		table.AddRow("ID", "WHEN", "PRODUCT", "SCORE", "CALORIES", "PROTEIN")
		for _, item := range items {
			table.AddRow(
				item.ID,
				item.CreatedAt,
				item.Name,
				item.HealthScore,
				item.Calory,
				item.Protein,
			)
		}
		fmt.Println(table)

	case "json":
		itemsJSON, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from history operation",
			)
		}
		fmt.Println(string(itemsJSON))
	}

	return nil
}
