package aware

import (
	"crypto/tls"
	"net/http"

	"github.com/rs/zerolog"
)

// Client is the root of the SDK: one shared token store and dispatcher with
// the domain clients layered on top.
type Client interface {
	Sessions() SessionsClient
	Uploads() UploadsClient
	Scans() ScansClient
	// Tokens exposes the session's single source of truth.
	Tokens() *TokenStore
	// OnSessionInvalidated registers fn to run when a failed token refresh
	// invalidates the session. Each invalidation event notifies fn exactly
	// once.
	OnSessionInvalidated(fn func())
}

type client struct {
	*baseClient
	sessionsClient SessionsClient
	uploadsClient  UploadsClient
	scansClient    ScansClient
}

// NewClient assembles a Client from the given config. Unlike a per-domain
// split of HTTP clients, there is exactly one base client underneath: the
// token store and the in-flight refresh are system-wide state and must not be
// duplicated.
func NewClient(config ClientConfig) Client {
	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}
	timeout := config.RequestTimeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}
	base := &baseClient{
		apiAddress: config.APIAddress,
		tokens:     NewTokenStore(config.TokenBackend),
		timeout:    timeout,
		logger:     logger,
		httpClient: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: config.AllowInsecure, // nolint: gosec
				},
			},
		},
	}
	uploadsClient := newUploadsClient(
		base,
		config.ImageKitUploadURL,
		config.ImageKitPublicKey,
		config.ImageKitURLEndpoint,
	)
	return &client{
		baseClient:     base,
		sessionsClient: newSessionsClient(base),
		uploadsClient:  uploadsClient,
		scansClient:    newScansClient(base, uploadsClient),
	}
}

func (c *client) Sessions() SessionsClient {
	return c.sessionsClient
}

func (c *client) Uploads() UploadsClient {
	return c.uploadsClient
}

func (c *client) Scans() ScansClient {
	return c.scansClient
}

func (c *client) Tokens() *TokenStore {
	return c.tokens
}

func (c *client) OnSessionInvalidated(fn func()) {
	c.onSessionInvalidated(fn)
}
