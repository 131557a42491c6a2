package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func signup(c *cli.Context) error {
	// Args
	if c.Args().Len() != 2 {
		return errors.New(
			"signup requires two arguments-- an email address and a name",
		)
	}
	email := c.Args().Get(0)
	name := c.Args().Get(1)

	password := c.String(flagPassword)
	if password == "" {
		var err error
		if password, err = promptPassword(); err != nil {
			return err
		}
	}

	client, err := getClient(c)
	if err != nil {
		return errors.Wrap(err, "error getting aware client")
	}

	if err := client.Sessions().Signup(
		c.Context,
		email,
		password,
		name,
	); err != nil {
		return err
	}

	fmt.Println(
		"Registration accepted. Check your email for a confirmation link, " +
			"then use `aware confirm` before logging in.",
	)

	return nil
}
