package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/quorumledger/joint-account-ledger/internal/events"
	eventskafka "github.com/quorumledger/joint-account-ledger/internal/events/kafka"
	eventsmemory "github.com/quorumledger/joint-account-ledger/internal/events/memory"
	"github.com/quorumledger/joint-account-ledger/internal/interfaces"
	"github.com/quorumledger/joint-account-ledger/internal/server"
	"github.com/quorumledger/joint-account-ledger/internal/service"
	storagememory "github.com/quorumledger/joint-account-ledger/internal/storage/memory"
	storagepostgres "github.com/quorumledger/joint-account-ledger/internal/storage/postgres"
	"go.uber.org/zap"
)

// The service runs with no required configuration: an empty environment
// gives an in-memory store, an in-process event bus, and port 8080.
//
//	PORT           listen port
//	DATABASE_URL   postgres DSN; enables the durable store
//	KAFKA_BROKERS  comma-separated brokers; enables Kafka event delivery
func main() {
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	var store interfaces.AccountStore = storagememory.NewAccountStore()
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			log.Fatal("open database", zap.Error(err))
		}
		pg := storagepostgres.NewAccountStore(db)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			log.Fatal("ensure schema", zap.Error(err))
		}
		store = pg
		log.Info("using postgres store")
	}

	var publisher interfaces.EventPublisher = eventsmemory.NewBus()
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		kp := eventskafka.NewPublisher(strings.Split(brokers, ","))
		defer kp.Close()
		publisher = events.NewLoggingPublisher(kp, log)
		log.Info("publishing events to kafka", zap.String("brokers", brokers))
	}

	svc := service.New(store, publisher)
	srv := server.New(svc, log)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Info("starting server", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, srv.Router()); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
