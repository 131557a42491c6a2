package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func whoami(c *cli.Context) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("whoami requires no arguments")
	}

	client, err := getAuthenticatedClient(c)
	if err != nil {
		return err
	}

	user, ok := client.Sessions().CurrentUser()
	if !ok {
		return errors.New("no session found; please use `aware login`")
	}

	fmt.Printf("%s <%s>\n", user.Name, user.Email)

	return nil
}
