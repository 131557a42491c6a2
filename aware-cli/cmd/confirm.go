package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func confirm(c *cli.Context) error {
	// Args
	if c.Args().Len() != 1 {
		return errors.New(
			"confirm requires one argument-- the confirmation token",
		)
	}
	token := c.Args().Get(0)

	client, err := getClient(c)
	if err != nil {
		return errors.Wrap(err, "error getting aware client")
	}

	result := client.Sessions().Confirm(c.Context, token)
	if !result.Success {
		if result.Message != "" {
			return errors.New(result.Message)
		}
		return errors.New("confirmation failed")
	}

	fmt.Println("Email confirmed. You can now use `aware login`.")

	return nil
}
