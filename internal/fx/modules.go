package fx

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/hoopcrest/hoopcrest/internal/backend"
	"github.com/hoopcrest/hoopcrest/internal/catalog"
	"github.com/hoopcrest/hoopcrest/internal/config"
	"github.com/hoopcrest/hoopcrest/internal/database"
	"github.com/hoopcrest/hoopcrest/internal/gacha"
	"github.com/hoopcrest/hoopcrest/internal/logger"
	"github.com/hoopcrest/hoopcrest/internal/packs"
	"github.com/hoopcrest/hoopcrest/internal/repository"
	"github.com/hoopcrest/hoopcrest/internal/server"
	"github.com/hoopcrest/hoopcrest/internal/service"
)

func ProvidePlayerCatalog(cfg *config.Config, packCatalog *packs.Catalog, log zerolog.Logger) (*catalog.Catalog, error) {
	return catalog.LoadFile(cfg.RosterPath, packCatalog.RarityTable(), log)
}

func ProvideRNG() gacha.RandomSource {
	return gacha.DefaultRNG()
}

func ProvideManager(
	packCatalog *packs.Catalog,
	players *catalog.Catalog,
	rng gacha.RandomSource,
	ledgers *repository.LedgerRepository,
	arches *repository.ArchetypeRepository,
	purchases *repository.PurchaseRepository,
	client *backend.Client,
	log zerolog.Logger,
) *service.Manager {
	return service.NewManager(service.ManagerParams{
		Packs:     packCatalog,
		Players:   players,
		RNG:       rng,
		Ledgers:   ledgers,
		Arches:    arches,
		Purchases: purchases,
		Client:    client,
	}, log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// static tables
	fx.Provide(packs.New),
	fx.Provide(ProvidePlayerCatalog),
	fx.Provide(ProvideRNG),
	// repos
	fx.Provide(repository.NewLedgerRepository),
	fx.Provide(repository.NewArchetypeRepository),
	fx.Provide(repository.NewPurchaseRepository),
	// remote backend client
	fx.Provide(backend.NewClient),
	// svc
	fx.Provide(ProvideManager),
	// server
	fx.Provide(server.New),
)
