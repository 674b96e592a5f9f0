// Package envcfg resolves backend settings from the process environment.
package envcfg

import "github.com/kelseyhightower/envconfig"

type env struct {
	BaseURL string `envconfig:"TEMPO_BASE_URL"`
	URL     string `envconfig:"TEMPO_URL"`
}

// BaseURL returns the backend base URL from TEMPO_BASE_URL or TEMPO_URL,
// falling back to def when neither is set.
func BaseURL(def string) string {
	var e env
	if err := envconfig.Process("", &e); err != nil {
		return def
	}
	switch {
	case e.BaseURL != "":
		return e.BaseURL
	case e.URL != "":
		return e.URL
	default:
		return def
	}
}
