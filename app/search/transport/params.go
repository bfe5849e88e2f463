package transport

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// supported engine clients
const (
	VersionV7         = "v7"
	VersionV8         = "v8"
	VersionOpenSearch = "opensearch"
)

// Params configures connection to the engine
type Params struct {
	Version string   `long:"version" env:"VERSION" choice:"v7" choice:"v8" choice:"opensearch" default:"v7" description:"engine client"`
	URLs    []string `long:"url" env:"URL" env-delim:"," description:"engine url, overrides host/port/path/scheme"`
	Host    string   `long:"host" env:"HOST" default:"localhost" description:"engine host"`
	Port    int      `long:"port" env:"PORT" default:"9200" description:"engine port"`
	Path    string   `long:"path" env:"URL_PATH" description:"url path prefix"`
	Scheme  string   `long:"scheme" env:"SCHEME" choice:"http" choice:"https" default:"http" description:"url scheme"`
	User    string   `long:"user" env:"USER" description:"basic auth user"`
	Pass    string   `long:"pass" env:"PASS" description:"basic auth password"`
	Secret  string   `long:"secret" env:"SECRET" description:"credentials, basic:user:pass or token:api-key"`
	Retries int      `long:"retries" env:"RETRIES" default:"5" description:"attempts to reach the engine on start"`
	DryRun  bool     `long:"dry-run" env:"DRY_RUN" description:"log requests instead of sending"`

	Transport http.RoundTripper `no-flag:"true"` // custom http transport, i.e. for tests
}

type credentials struct {
	username string
	password string
	apiKey   string
}

// Addresses returns engine urls, composed from host, port, path and scheme if no url set
func (p Params) Addresses() []string {
	if len(p.URLs) > 0 {
		return p.URLs
	}
	scheme := p.Scheme
	if scheme == "" {
		scheme = "http"
	}
	host := p.Host
	if host == "" {
		host = "localhost"
	}
	addr := fmt.Sprintf("%s://%s", scheme, host)
	if p.Port != 0 {
		addr = fmt.Sprintf("%s:%d", addr, p.Port)
	}
	if path := strings.Trim(p.Path, "/"); path != "" {
		addr += "/" + path
	}
	return []string{addr}
}

func (p Params) credentials() (credentials, error) {
	if p.Secret == "" {
		return credentials{username: p.User, password: p.Pass}, nil
	}
	switch {
	case strings.HasPrefix(p.Secret, "basic:"):
		userpass := strings.SplitN(strings.TrimPrefix(p.Secret, "basic:"), ":", 2)
		if len(userpass) != 2 {
			return credentials{}, errors.Errorf("secret for basic auth should have format 'basic:user:pass'")
		}
		return credentials{username: userpass[0], password: userpass[1]}, nil
	case strings.HasPrefix(p.Secret, "token:"):
		return credentials{apiKey: strings.TrimPrefix(p.Secret, "token:")}, nil
	}
	allowed := []string{"basic:", "token:"}
	return credentials{}, errors.Errorf("secret should starts with one of prefixes: %v", allowed)
}

// New makes transport for configured engine client
func New(p Params) (Interface, error) {
	if p.DryRun {
		return NewDryRun(nil), nil
	}
	creds, err := p.credentials()
	if err != nil {
		return nil, err
	}
	switch p.Version {
	case VersionV7, "":
		return newElasticV7(p.Addresses(), creds, p.Transport)
	case VersionV8:
		return newElasticV8(p.Addresses(), creds, p.Transport)
	case VersionOpenSearch:
		return newOpenSearch(p.Addresses(), creds, p.Transport)
	}
	return nil, errors.Errorf("unknown engine client %q", p.Version)
}
