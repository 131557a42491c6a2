package main

import (
	"encoding/json"
	"os"
	"path"

	"github.com/ItsRikan/aware/pkg/file"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

// sessionFile is the durable tier of the SDK's token store: one JSON document
// under ~/.aware holding the refresh token and user ID. The access token is
// deliberately never written here.
type sessionFile struct {
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
}

type fileTokenBackend struct{}

func (f *fileTokenBackend) WriteSession(refreshToken, userID string) error {
	awareHome, err := getAwareHome()
	if err != nil {
		return err
	}
	if _, err := os.Stat(awareHome); err != nil {
		if !os.IsNotExist(err) {
			return errors.Wrapf(
				err,
				"error checking for existence of aware home at %s",
				awareHome,
			)
		}
		if err := os.MkdirAll(awareHome, 0755); err != nil {
			return errors.Wrapf(
				err,
				"error creating aware home at %s",
				awareHome,
			)
		}
	}
	sessionBytes, err := json.Marshal(
		sessionFile{
			RefreshToken: refreshToken,
			UserID:       userID,
		},
	)
	if err != nil {
		return errors.Wrap(err, "error marshaling session")
	}
	sessionFilePath := path.Join(awareHome, "session")
	if err := os.WriteFile(sessionFilePath, sessionBytes, 0600); err != nil {
		return errors.Wrapf(err, "error writing to %s", sessionFilePath)
	}
	return nil
}

func (f *fileTokenBackend) ReadSession() (string, string, error) {
	awareHome, err := getAwareHome()
	if err != nil {
		return "", "", err
	}
	sessionFilePath := path.Join(awareHome, "session")
	if !file.Exists(sessionFilePath) {
		return "", "", nil
	}
	sessionBytes, err := os.ReadFile(sessionFilePath)
	if err != nil {
		return "", "", errors.Wrapf(
			err,
			"error reading session file at %s",
			sessionFilePath,
		)
	}
	session := sessionFile{}
	if err := json.Unmarshal(sessionBytes, &session); err != nil {
		return "", "", errors.Wrapf(
			err,
			"error parsing session file at %s",
			sessionFilePath,
		)
	}
	return session.RefreshToken, session.UserID, nil
}

func (f *fileTokenBackend) DeleteSession() error {
	awareHome, err := getAwareHome()
	if err != nil {
		return err
	}
	sessionFilePath := path.Join(awareHome, "session")
	if !file.Exists(sessionFilePath) {
		return nil
	}
	if err := os.Remove(sessionFilePath); err != nil {
		return errors.Wrap(err, "error deleting session")
	}
	return nil
}

func getAwareHome() (string, error) {
	homeDir, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "error locating user's home directory")
	}
	return path.Join(homeDir, ".aware"), nil
}
