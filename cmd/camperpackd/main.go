// Command camperpackd runs the cloud side of the sync protocol: an HTTP
// server that accepts pushed change batches and serves the full dataset.
//
// Configuration comes from the environment:
//
//	CAMPERPACK_DSN      Postgres DSN; with no DSN the server keeps data in memory
//	CAMPERPACK_API_KEY  Optional bearer token clients must present
//	PORT                Listen port (default 8080)
package main

import (
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/camperpack/camperpack/internal/server"
)

func main() {
	var repo server.Repository

	if dsn := os.Getenv("CAMPERPACK_DSN"); dsn != "" {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			log.Fatalf("connect database: %v", err)
		}
		repo, err = server.NewGormRepository(db)
		if err != nil {
			log.Fatalf("prepare database: %v", err)
		}
	} else {
		log.Println("CAMPERPACK_DSN not set; using in-memory storage")
		repo = server.NewMemoryRepository()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	e := server.New(repo, os.Getenv("CAMPERPACK_API_KEY"))
	e.Logger.Fatal(e.Start(":" + port))
}
