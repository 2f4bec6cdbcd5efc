package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load() // optional .env, flags still win

	addr := flag.String("addr", envDefault("CS2_ADDR", ":8080"), "HTTP listen address")
	clientDir := flag.String("client", envDefault("CS2_CLIENT", "./client"), "Path to client directory")
	dbPath := flag.String("db", envDefault("CS2_DB", "cestrike.db"), "Path to SQLite database")
	logPath := flag.String("log", envDefault("CS2_LOG", "cestrike.log"), "Path to log file")
	flag.Parse()

	if err := InitLogger(*logPath); err != nil {
		panic(err)
	}
	defer SyncLogger()

	db, err := OpenDB(*dbPath)
	if err != nil {
		Log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	hub := NewHub(db)
	go hub.Run()

	mux := SetupRoutes(hub, *clientDir)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		Log.Infof("ce-strike-2 listening on %s", *addr)
		Log.Infof("serving client files from %s", *clientDir)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			Log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop
	Log.Info("shutting down...")
	hub.Stop()
	server.Close()
}
