package config

import (
	"log"

	"go.uber.org/zap"
)

var Logger *zap.Logger

// InitLogger sets up the global structured logger. The ledger consistency
// checks depend on it for operator alerting, so it must run before any
// service is used.
func InitLogger() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("não foi possível inicializar o logger: %v", err)
	}
	Logger = logger
}
