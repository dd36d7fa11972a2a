package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/altura-labs/go-token-auth/accounts/repofake"
	"github.com/altura-labs/go-token-auth/credentials"
	"github.com/altura-labs/go-token-auth/internal/config"
	"github.com/altura-labs/go-token-auth/provider"
	"github.com/altura-labs/go-token-auth/provider/google"
	"github.com/altura-labs/go-token-auth/server"
	"github.com/altura-labs/go-token-auth/session"
	"github.com/altura-labs/go-token-auth/token"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load() // optional .env, env vars win

	c := config.New()
	configureLogging(c)
	displayAppname(c.GetAppName())

	handler, err := buildServer(c)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func buildServer(c config.Config) (*server.Server, error) {
	codec, err := token.NewCodec(
		c.GetAccessTokenSecret(),
		c.GetRefreshTokenSecret(),
		token.WithTokenExpiry(c.GetAccessTokenExpiry(), c.GetRefreshTokenExpiry()),
	)
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}

	verifier := credentials.NewVerifier(credentials.WithCost(c.GetBcryptCost()))
	store := fakeaccountstore.NewFakeAccountStore()

	sessions, err := session.NewManager(store, codec, verifier,
		session.WithRefreshRotation(c.GetRotateRefreshTokens()),
	)
	if err != nil {
		return nil, fmt.Errorf("session manager: %w", err)
	}

	var idp provider.Provider
	if c.GetGoogleClientID() != "" {
		redirectURL := c.GetGoogleRedirectURL()
		if redirectURL == "" {
			redirectURL = c.GetBaseURL() + "/auth/google/callback"
		}
		googleProvider, err := google.New(context.Background(), c.GetGoogleClientID(), c.GetGoogleClientSecret(), redirectURL)
		if err != nil {
			return nil, fmt.Errorf("google provider: %w", err)
		}
		idp = googleProvider
	}

	return server.New(c, sessions, idp), nil
}

func configureLogging(c config.Config) {
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
