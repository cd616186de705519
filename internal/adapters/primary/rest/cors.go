package rest

import (
	"slices"

	"github.com/rs/cors"
)

// CORSOptions : credentials uniquement avec une liste d'origines explicite, jamais avec "*".
func CORSOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "baggage", "sentry-trace"},
		AllowCredentials: !slices.Contains(origins, "*"),
	}
}
