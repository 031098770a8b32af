package config

import "strings"

// Environment describes how the app is reachable by deep links.
// It is resolved once at startup and passed to everything that builds links.
type Environment struct {
	Scheme     string
	DevHost    string
	Production bool
}

// RedirectURL returns the app link for path.
// Production builds use the app scheme, development builds go through the Expo dev host.
func (e Environment) RedirectURL(path string) string {
	path = strings.Trim(path, "/")
	if e.Production {
		return e.Scheme + "://" + path
	}
	return "exp://" + e.DevHost + "/--/" + path
}
