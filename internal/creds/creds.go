// Package creds embeds and masks access tokens so a PAT embedded in a
// clone URL never reaches the terminal or the log pane.
package creds

import (
	"net/url"
	"strings"
)

// Redaction replaces the secret in all displayed text
const Redaction = "***"

// Mask replaces every occurrence of secret in text with the redaction
// marker. An empty secret returns text unchanged.
func Mask(text, secret string) string {
	if secret == "" {
		return text
	}
	return strings.ReplaceAll(text, secret, Redaction)
}

// Embed inserts username:secret into the authority of an http/https URL
func Embed(rawURL, username, secret string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &InvalidSchemeError{URL: rawURL, Scheme: u.Scheme}
	}

	u.User = url.UserPassword(username, secret)
	return u.String(), nil
}

// InvalidSchemeError indicates a clone URL whose scheme cannot carry an
// embedded credential
type InvalidSchemeError struct {
	URL    string
	Scheme string
}

func (e *InvalidSchemeError) Error() string {
	return "unsupported URL scheme " + e.Scheme + ": " + e.URL
}
