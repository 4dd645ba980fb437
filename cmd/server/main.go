package main

import (
	"log"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/sugit/boardsync/internal/config"
	"github.com/sugit/boardsync/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	if len(os.Args) > 1 {
		rootPath := os.Args[1]
		if rootPath == "" {
			log.Fatal("root directory path is empty")
		}

		if err := godotenv.Load(path.Join(rootPath, "config.env")); err != nil {
			log.Fatal(err)
		}
	}

	config, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	syncServer, err := server.NewSyncServer(config)
	if err != nil {
		log.Fatal(err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-stop
		if err := syncServer.Stop(); err != nil {
			log.Fatal(err)
		}
	}()

	if err := syncServer.Start(); err != nil {
		log.Fatal(err)
	}
}
