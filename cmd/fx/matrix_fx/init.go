package matrix_fx

import (
	"os"

	"go.uber.org/fx"

	"wayfare/internal/services"
	"wayfare/pkg/cache"
)

var Module = fx.Provide(provideMatrixClient)

func provideMatrixClient(store cache.Store) services.DurationMatrixService {
	return services.NewMapboxMatrixClient(os.Getenv("MAPBOX_ACCESS_TOKEN"), store)
}
