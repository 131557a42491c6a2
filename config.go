package aware

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

const envconfigPrefix = "AWARE"

// ClientConfig configures a Client. Environment-backed fields use the AWARE_
// prefix. Absence of the storage provider's public key simply forces every
// upload through the mock/fallback path; it is never an error.
type ClientConfig struct {
	APIAddress          string        `envconfig:"API_ADDRESS" default:"https://aware-india-backend-nogs.vercel.app"`
	ImageKitPublicKey   string        `envconfig:"IMAGEKIT_PUBLIC_KEY"`
	ImageKitURLEndpoint string        `envconfig:"IMAGEKIT_URL_ENDPOINT"`
	ImageKitUploadURL   string        `envconfig:"IMAGEKIT_UPLOAD_URL" default:"https://upload.imagekit.io/api/v1/files/upload"`
	RequestTimeout      time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`
	AllowInsecure       bool          `envconfig:"ALLOW_INSECURE"`

	// TokenBackend is the durable tier for the refresh token. Nil means
	// sessions do not survive the process.
	TokenBackend TokenBackend `ignored:"true"`
	// Logger receives secondary diagnostics. Nil means silent.
	Logger *zerolog.Logger `ignored:"true"`
}

// GetConfigFromEnvironment returns a ClientConfig populated from AWARE_*
// environment variables.
func GetConfigFromEnvironment() (ClientConfig, error) {
	c := ClientConfig{}
	err := envconfig.Process(envconfigPrefix, &c)
	return c, err
}
