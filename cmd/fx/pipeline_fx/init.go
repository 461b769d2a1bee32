package pipeline_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"wayfare/internal/repositories"
	"wayfare/internal/services"
	"wayfare/pkg/cache"
	"wayfare/pkg/telemetry"
	"wayfare/pkg/utils"
)

var Module = fx.Provide(
	provideVenueRepo,
	provideEmbeddingRepo,
	provideRetrievalService,
	provideFilterChain,
	provideReorderService,
	provideItineraryService,
)

func provideVenueRepo(db *gorm.DB) repositories.IVenueRepository {
	return repositories.NewVenueRepository(db)
}

func provideEmbeddingRepo(db *gorm.DB) repositories.IVenueEmbeddingRepository {
	return repositories.NewVenueEmbeddingRepository(db)
}

func provideRetrievalService(
	embedding utils.EmbeddingClientInterface,
	embeddingRepo repositories.IVenueEmbeddingRepository,
	places services.PlacesClientInterface,
	venueRepo repositories.IVenueRepository,
) services.RetrievalServiceInterface {
	return services.NewRetrievalService(embedding, embeddingRepo, places, venueRepo)
}

func provideFilterChain(matrix services.DurationMatrixService) *services.FilterChain {
	return services.NewFilterChain(matrix)
}

func provideReorderService(completion utils.CompletionClientInterface, store cache.Store) services.ReorderServiceInterface {
	return services.NewReorderService(completion, store)
}

func provideItineraryService(
	retrieval services.RetrievalServiceInterface,
	miner services.RuleMinerServiceInterface,
	filters *services.FilterChain,
	reorder services.ReorderServiceInterface,
	store cache.Store,
	emitter *telemetry.Emitter,
) services.ItineraryServiceInterface {
	return services.NewItineraryService(retrieval, miner, filters, reorder, store, emitter)
}
