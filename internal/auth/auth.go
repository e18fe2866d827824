// Package auth resolves credentials for authenticated media endpoints. It
// stays outside the chunk loop: the result is either a Bearer header on the
// HTTP client or a key parameter on the target URL.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/ivannaranjo/gmedia/internal/output"
)

const tokenFile = ".gmedia-token.json"

const readonlyScope = "https://www.googleapis.com/auth/drive.readonly"

// AccessTokenFromCredentials runs the OAuth flow for a client-secret
// credentials file, reusing and refreshing a locally cached token when one
// exists.
func AccessTokenFromCredentials(ctx context.Context, credentialsFile string) (string, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", fmt.Errorf("unable to read credentials file: %v", err)
	}
	log.Debug().Str("op", "auth").Msgf("using credentials from %s", credentialsFile)
	config, err := google.ConfigFromJSON(b, readonlyScope)
	if err != nil {
		return "", fmt.Errorf("unable to parse client secret file: %v", err)
	}

	token, err := getOAuthToken(ctx, config)
	if err != nil {
		return "", fmt.Errorf("unable to get OAuth token: %v", err)
	}
	if !token.Valid() {
		if token.RefreshToken == "" {
			return "", errors.New("OAuth token is expired and cannot be refreshed")
		}
		newToken, err := config.TokenSource(ctx, token).Token()
		if err != nil {
			return "", fmt.Errorf("unable to refresh token: %v", err)
		}
		token = newToken
		if err := saveToken(tokenFile, token); err != nil {
			log.Warn().Str("op", "auth").Msgf("unable to save refreshed token: %v", err)
		}
	}
	return token.AccessToken, nil
}

func getOAuthToken(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	token, err := tokenFromFile(tokenFile)
	if err == nil {
		log.Debug().Str("op", "auth").Msgf("existing token retrieved")
		return token, nil
	}
	log.Debug().Str("op", "auth").Msgf("no cached token, starting OAuth flow")
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	output.PrintDetail("\nVisit this URL to get the authorization code:\n")
	fmt.Printf("%s\n", authURL)
	output.PrintDetail("\nAfter authorizing, enter the authorization code:")
	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		return nil, fmt.Errorf("unable to read authorization code: %v", err)
	}
	token, err = config.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("unable to exchange auth code for token: %v", err)
	}
	if err := saveToken(tokenFile, token); err != nil {
		log.Warn().Str("op", "auth").Msgf("unable to save new token: %v", err)
	}
	return token, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	token := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(token)
	return token, err
}

func saveToken(file string, token *oauth2.Token) error {
	f, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %v", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("unable to encode token: %v", err)
	}
	return nil
}

// WithAPIKey appends a key parameter to the target URL, preserving the
// existing query string verbatim like the downloader does for alt=media.
func WithAPIKey(rawURL, key string) string {
	switch {
	case strings.HasSuffix(rawURL, "?") || strings.HasSuffix(rawURL, "&"):
		return rawURL + "key=" + key
	case strings.Contains(rawURL, "?"):
		return rawURL + "&key=" + key
	default:
		return rawURL + "?key=" + key
	}
}
