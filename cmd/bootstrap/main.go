// Command bootstrap provisions the remote record service: it
// authenticates as a superuser and recreates the items and prices
// collections with owner-scoped access rules. Intended for out-of-band
// setup only; the client application never needs superuser access.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"pricetrail/internal/adapters/pocketbase"
	"pricetrail/internal/config"
	"pricetrail/internal/domain/shared"
)

// Bootstrap-only configuration constants
const (
	AdminEmail    = "ADMIN_EMAIL"
	AdminPassword = "ADMIN_PASSWORD"
)

// usersCollectionID is the service's built-in auth collection
const usersCollectionID = "_pb_users_auth_"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	adminEmail := viper.GetString(AdminEmail)
	adminPassword := viper.GetString(AdminPassword)
	if adminEmail == "" || adminPassword == "" {
		log.Fatal().Msg("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	client := pocketbase.NewClient(pocketbase.ClientParams{
		BaseURL: cfg.Remote.BaseURL,
		Timeout: cfg.Remote.Timeout,
		Logger:  log.Logger,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := client.AuthSuperuser(ctx, adminEmail, adminPassword); err != nil {
		log.Fatal().Err(err).Msg("Superuser authentication failed")
	}
	log.Info().Str("base_url", cfg.Remote.BaseURL).Msg("Authenticated as superuser")

	// Prices reference items, so drop them first and recreate last
	for _, name := range []string{"prices", "items"} {
		if err := deleteCollectionIfExists(ctx, client, name); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("Failed to delete existing collection")
		}
	}

	items, err := client.CreateCollection(ctx, itemsCollection())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create items collection")
	}
	log.Info().Str("collection_id", items.ID).Msg("Created items collection")

	prices, err := client.CreateCollection(ctx, pricesCollection(items.ID))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create prices collection")
	}
	log.Info().Str("collection_id", prices.ID).Msg("Created prices collection")

	log.Info().Msg("Bootstrap complete")
}

func deleteCollectionIfExists(ctx context.Context, client *pocketbase.Client, name string) error {
	existing, err := client.FindCollection(ctx, name)
	if err != nil {
		if errors.Is(err, shared.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if err := client.DeleteCollection(ctx, existing.ID); err != nil {
		return err
	}

	log.Info().Str("collection", name).Msg("Deleted existing collection")
	return nil
}

func itemsCollection() pocketbase.CollectionDefinition {
	ownerScoped := `@request.auth.id != "" && @request.auth.id = User.id`
	authenticated := `@request.auth.id != ""`

	return pocketbase.CollectionDefinition{
		Name: "items",
		Type: "base",
		Fields: []pocketbase.CollectionField{
			{Name: "name", Type: "text", Required: true},
			{Name: "description", Type: "text"},
			{Name: "category", Type: "text"},
			{Name: "User", Type: "relation", Required: true, MaxSelect: 1, CollectionID: usersCollectionID},
			{Name: "created_at", Type: "autodate", OnCreate: true},
			{Name: "updated_at", Type: "autodate", OnCreate: true, OnUpdate: true},
		},
		ListRule:   &ownerScoped,
		ViewRule:   &ownerScoped,
		CreateRule: &authenticated,
		UpdateRule: &ownerScoped,
		DeleteRule: &ownerScoped,
	}
}

func pricesCollection(itemsCollectionID string) pocketbase.CollectionDefinition {
	// Price access follows the owning item's owner; prices are not a
	// shared resource across users
	ownerScoped := `@request.auth.id != "" && @request.auth.id = item.User.id`
	authenticated := `@request.auth.id != ""`

	return pocketbase.CollectionDefinition{
		Name: "prices",
		Type: "base",
		Fields: []pocketbase.CollectionField{
			{Name: "price", Type: "number", Required: true},
			{Name: "item", Type: "relation", Required: true, MaxSelect: 1, CollectionID: itemsCollectionID},
			{Name: "created_at", Type: "autodate", OnCreate: true},
			{Name: "updated_at", Type: "autodate", OnCreate: true, OnUpdate: true},
		},
		ListRule:   &ownerScoped,
		ViewRule:   &ownerScoped,
		CreateRule: &authenticated,
		UpdateRule: &ownerScoped,
		DeleteRule: &ownerScoped,
	}
}
