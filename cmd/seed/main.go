// cmd/seed fills an empty database with a demo catalog and directory.
// Usage: go run ./cmd/seed   (reads DATABASE_URL like the server)
package main

import (
	"context"
	"os"
	"time"

	"gestionstock/internal/config"
	"gestionstock/internal/infra"
	"gestionstock/internal/model"
	"gestionstock/internal/repository"
	"gestionstock/internal/store"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var demoProducts = []model.Product{
	{Name: "Huile Lesieur 1L", BuyPrice: d("16.50"), SellPriceGros: d("18.00"), SellPriceDetail: d("20.00"), Stock: 48},
	{Name: "Sucre Cosumar 1kg", BuyPrice: d("7.80"), SellPriceGros: d("8.50"), SellPriceDetail: d("9.50"), Stock: 120},
	{Name: "Thé vert Sultan 200g", BuyPrice: d("11.00"), SellPriceGros: d("12.50"), SellPriceDetail: d("14.00"), Stock: 60},
	{Name: "Farine Mouna 5kg", BuyPrice: d("32.00"), SellPriceGros: d("35.00"), SellPriceDetail: d("38.00"), Stock: 25},
	{Name: "Lait Centrale 1L", BuyPrice: d("6.20"), SellPriceGros: d("6.80"), SellPriceDetail: d("7.50"), Stock: 0},
}

var demoClients = []model.Client{
	{Name: "Client comptoir", Phone: "-", Address: "-", Type: model.ClientDetail},
	{Name: "Epicerie Nour", Phone: "0522000000", Address: "Derb Sultan, Casablanca", Type: model.ClientGros},
	{Name: "Karim Benali", Phone: "0661000000", Address: "Maarif, Casablanca", Type: model.ClientDetail},
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	st := repository.NewStore(db, store.NewLocalNotifier())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	existing, err := st.ListProducts(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list products")
	}
	if len(existing) > 0 {
		log.Info().Int("products", len(existing)).Msg("seed: catalog not empty, nothing to do")
		return
	}

	for i := range demoProducts {
		if err := st.CreateProduct(ctx, &demoProducts[i]); err != nil {
			log.Fatal().Err(err).Str("product", demoProducts[i].Name).Msg("seed: create product")
		}
	}
	for i := range demoClients {
		if err := st.CreateClient(ctx, &demoClients[i]); err != nil {
			log.Fatal().Err(err).Str("client", demoClients[i].Name).Msg("seed: create client")
		}
	}
	log.Info().Int("products", len(demoProducts)).Int("clients", len(demoClients)).Msg("seed: done")
}
