package wikibase

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/ppiankov/wikitree/internal/errors"
	"github.com/ppiankov/wikitree/internal/model"
	"golang.org/x/net/publicsuffix"
)

// NewHTTPClient builds the HTTP client shared by the API calls. MediaWiki
// hands out session and load-balancer cookies; the jar keeps them scoped to
// their registrable domain.
func NewHTTPClient(cfg model.APIConfig) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errors.Wrap(err, "create cookie jar")
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy)

	return &http.Client{
		Timeout:   cfg.Timeout,
		Jar:       jar,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return errors.New("stopped after 3 redirects")
			}
			return nil
		},
	}, nil
}

// NewProxyFunc returns the proxy selection for the configured proxies,
// falling back to the environment when none is set.
func NewProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
