package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	log.Debug().Strs("origins", allowedOrigins).Msg("cors allowed origins")

	// 空の場合はすべて許可（開発用）
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
