package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mfraser/taskdeck/internal/model"
	"github.com/mfraser/taskdeck/internal/server"
	"github.com/mfraser/taskdeck/internal/storage"
	"github.com/spf13/cobra"
)

var (
	listenAddr string
	serveDB    string
	serveToken string
	serveName  string
	serveEmail string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the taskdeck API server",
	Long:  `Starts the HTTP API server that remote clients sync against.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "127.0.0.1:5050", "Listen address for the API server")
	serveCmd.Flags().StringVar(&serveDB, "server-db", "", "Path to the server database (default: <db dir>/server.db)")
	serveCmd.Flags().StringVar(&serveToken, "token", "", "Bearer token clients must present (empty disables auth)")
	serveCmd.Flags().StringVar(&serveName, "name", "taskdeck", "Profile name reported to clients")
	serveCmd.Flags().StringVar(&serveEmail, "email", "", "Profile email reported to clients")
}

// defaultServerDB keeps the server database next to the client one.
func defaultServerDB() string {
	return filepath.Join(filepath.Dir(dbPath), "server.db")
}

func runServe(cmd *cobra.Command, args []string) error {
	log.Println("Starting taskdeck server...")

	path := serveDB
	if path == "" {
		path = defaultServerDB()
	}
	store, err := storage.New(path)
	if err != nil {
		return err
	}
	defer store.Close()

	user := model.User{ID: "1", Name: serveName, Email: serveEmail}
	service := server.NewService(store)
	srv := server.NewServer(service, listenAddr, serveToken, user)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("API server listening on %s", listenAddr)
		errCh <- srv.Start()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case s := <-sig:
		log.Printf("Received %v, shutting down...", s)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	log.Println("Server stopped")
	return nil
}
