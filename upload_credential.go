package aware

import "time"

// UploadCredential is a short-lived authorization to write one object to the
// external storage provider. Credentials are fetched fresh per upload attempt
// and never reused across files.
type UploadCredential struct {
	Token       string `json:"token"`
	Signature   string `json:"signature"`
	Expire      int64  `json:"expire"`
	PublicKey   string `json:"publicKey"`
	URLEndpoint string `json:"urlEndpoint"`
	// MockMode signals that the storage provider should be bypassed entirely
	// and the backend-mediated path used instead.
	MockMode bool `json:"mock_mode"`
}

// Complete returns true if the credential carries everything a signed direct
// upload needs.
func (c UploadCredential) Complete() bool {
	return c.Token != "" && c.Signature != "" && c.Expire != 0
}

// Expired returns true once the credential's expiry timestamp (unix seconds)
// has passed. An expired credential must not be used for an upload attempt;
// the caller fetches a fresh one instead.
func (c UploadCredential) Expired(now time.Time) bool {
	return now.Unix() >= c.Expire
}
