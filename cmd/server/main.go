package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/duochat/internal/server"
	"github.com/dmitrijs2005/duochat/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Fatal(err)
	}

	app.Run(context.Background())
}
