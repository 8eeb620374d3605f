// Command generatejwt prints a bearer token accepted by the sessions API.
package main

import (
	"flag"
	"fmt"
	"os"

	"chargestats/backend/libs/auth"
	"chargestats/backend/services/sessions-service/internal/config"
)

func main() {
	subject := flag.String("sub", "operator", "token subject")
	role := flag.String("role", "", "optional role claim")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to jwt.expiresInMinutes)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if !cfg.AuthEnabled() {
		fmt.Fprintln(os.Stderr, "SESSIONS_JWT_SECRET is not set")
		os.Exit(1)
	}

	lifetime := cfg.TokenTTL()
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, err := auth.NewTokenService(cfg.JWT.Secret, lifetime).GenerateToken(*subject, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Bearer %s\n", token)
}
