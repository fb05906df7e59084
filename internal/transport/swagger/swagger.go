package swagger

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Handler serves Swagger UI for the OpenAPI document at specURL, with the
// operation list collapsed and the bearer token kept across reloads.
func Handler(specURL string) http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL(specURL),
		httpSwagger.DocExpansion("none"),
		httpSwagger.PersistAuthorization(true),
	)
}
