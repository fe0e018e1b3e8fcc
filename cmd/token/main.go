// Command token mints an HS256 access token signed with JWT_SECRET, for local
// development against a blog that has no identity provider configured.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gogotex/gogoblog/internal/config"
	"github.com/gogotex/gogoblog/internal/models"
	"github.com/gogotex/gogoblog/internal/tokens"
	"github.com/gogotex/gogoblog/pkg/logger"
)

func main() {
	sub := flag.String("sub", "", "subject (user id) of the token")
	name := flag.String("name", "", "display name claim")
	email := flag.String("email", "", "email claim")
	ttl := flag.Duration("ttl", 0, "token lifetime (default JWT_ACCESS_TOKEN_TTL)")
	flag.Parse()

	if *sub == "" {
		fmt.Fprintln(os.Stderr, "usage: token -sub <subject> [-name N] [-email E] [-ttl 1h]")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if *ttl <= 0 {
		*ttl = cfg.JWT.AccessTokenTTL
	}

	tok, err := tokens.GenerateAccessToken(cfg, &models.User{Sub: *sub, Name: *name, Email: *email}, *ttl)
	if err != nil {
		logger.Fatalf("failed to mint token: %v", err)
	}
	fmt.Println(tok)
	logger.Debugf("minted token for sub=%s expiring in %s", *sub, ttl.String())
}
