package web

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// SwaggerUI serves the Swagger UI mounted at prefix. The document registered
// with swag under instanceName is served as prefix/doc.json.
func SwaggerUI(prefix, instanceName string) http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL(prefix+"/doc.json"),
		httpSwagger.InstanceName(instanceName),
		httpSwagger.DocExpansion("list"),
	)
}
