package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func login(c *cli.Context) error {
	// Args
	if c.Args().Len() != 1 {
		return errors.New("login requires one argument-- an email address")
	}
	email := c.Args().Get(0)

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

	user, err := client.Sessions().Login(c.Context, email, password)
	if err != nil {
		return err
	}

	fmt.Printf("Logged in as %s.\n", user.Email)

	return nil
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	password, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", errors.Wrap(err, "error reading password")
	}
	return strings.TrimSpace(password), nil
}
