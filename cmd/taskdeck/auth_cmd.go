package main

import (
	"fmt"

	"github.com/mfraser/taskdeck/internal/auth"
	"github.com/mfraser/taskdeck/internal/localstore"
	"github.com/mfraser/taskdeck/internal/remote"
	"github.com/spf13/cobra"
)

var loginToken string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store credentials for a remote API",
	Long:  `Validates the bearer token against the remote API and caches the session locally.`,
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the cached session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the cached session",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Bearer token for the remote API (required)")
	loginCmd.MarkFlagRequired("token")
}

func openAuth() (*localstore.Store, *auth.Manager, error) {
	store, err := localstore.New(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open local store: %w", err)
	}
	mgr, err := auth.NewManager(store)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, mgr, nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	if apiAddr == "" {
		return fmt.Errorf("login requires --api")
	}

	ctx, cancel := commandContext()
	defer cancel()

	store, mgr, err := openAuth()
	if err != nil {
		return err
	}
	defer store.Close()

	client := remote.NewClient(apiAddr, remote.StaticToken(loginToken))
	user, err := client.Profile(ctx)
	if err != nil {
		return fmt.Errorf("validate token: %w", err)
	}

	if err := mgr.Save(loginToken, user); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s\n", user.Name)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	store, mgr, err := openAuth()
	if err != nil {
		return err
	}
	defer store.Close()

	if !mgr.IsAuthenticated() {
		fmt.Println("Not logged in")
		return nil
	}
	if err := mgr.Clear(); err != nil {
		return err
	}

	fmt.Println("Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	store, mgr, err := openAuth()
	if err != nil {
		return err
	}
	defer store.Close()

	sess := mgr.Session()
	if sess == nil {
		fmt.Println("Not logged in")
		return nil
	}

	fmt.Printf("Name:  %s\n", sess.User.Name)
	if sess.User.Email != "" {
		fmt.Printf("Email: %s\n", sess.User.Email)
	}
	fmt.Printf("ID:    %s\n", sess.User.ID)
	return nil
}
