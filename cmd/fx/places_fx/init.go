package places_fx

import (
	"os"

	"go.uber.org/fx"

	"wayfare/internal/services"
)

var Module = fx.Provide(providePlacesClient)

func providePlacesClient() services.PlacesClientInterface {
	return services.NewGeoapifyPlacesClient(os.Getenv("GEOAPIFY_API_KEY"))
}
