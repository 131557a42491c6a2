package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func logout(c *cli.Context) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("logout requires no arguments")
	}

	client, err := getClient(c)
	if err != nil {
		return errors.Wrap(err, "error getting aware client")
	}

	// Resume first so the backend can be notified; even if that fails, Logout
	// still destroys the local session.
	client.Sessions().Resume(c.Context)
	client.Sessions().Logout(c.Context)

	fmt.Println("Logout was successful.")

	return nil
}
