package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	adapthttp "mindcare/internal/adapter/http"
	"mindcare/internal/adapter/blob"
	"mindcare/internal/adapter/postgres"
	"mindcare/internal/app"
	"mindcare/internal/config"
	"mindcare/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() { _ = db.Close() }()

	var blobs domain.BlobStore
	if cfg.BlobEnabled() {
		s3Store, err := blob.New(ctx, blob.Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
		if err != nil {
			log.Fatalf("blob store: %v", err)
		}
		blobs = s3Store
	}

	oidcCfg, err := setupOIDC(ctx, cfg)
	if err != nil {
		log.Fatalf("oidc setup: %v", err)
	}

	sessionRepo := postgres.NewSessionRepo(db)

	diarySvc := app.NewDiaryService(db, blobs)
	moodSvc := app.NewMoodService(db)
	authSvc := app.NewAuthService(db, sessionRepo)

	h := adapthttp.New(diarySvc, moodSvc, authSvc, oidcCfg).Handler()
	log.Printf("listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func setupOIDC(ctx context.Context, cfg config.Config) (adapthttp.OIDCConfig, error) {
	if !cfg.SSOEnabled() {
		return adapthttp.OIDCConfig{}, nil
	}

	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return adapthttp.OIDCConfig{}, err
	}

	return adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			RedirectURL:  cfg.OIDCRedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
	}, nil
}
