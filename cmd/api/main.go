package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/parlorchat/parlor/backend/internal/config"
	"github.com/parlorchat/parlor/backend/internal/handler"
	"github.com/parlorchat/parlor/backend/internal/service/ai"
	chatservice "github.com/parlorchat/parlor/backend/internal/service/chat"
	"github.com/parlorchat/parlor/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	messageStore, closeStore, err := newStore(cfg.Store)
	if err != nil {
		log.Fatalf("failed to initialize message store: %v", err)
	}
	defer closeStore()

	completer := newCompleter(ctx, cfg.AI)
	if completer == nil {
		log.Println("no completion provider configured, serving history reads only")
	}

	chatService := chatservice.NewService(messageStore, completer, cfg.AI.Timeout)
	router := handler.NewRouter(chatService)

	startServer(ctx, cfg.Server, router)
}

// newStore builds the configured message store and a cleanup func.
func newStore(cfg config.StoreConfig) (store.Store, func(), error) {
	switch cfg.Backend {
	case config.StoreSQLite:
		sqliteStore, err := store.OpenSQLiteStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("sqlite message store opened at %s", cfg.Path)
		return sqliteStore, func() { _ = sqliteStore.Close() }, nil
	default:
		log.Println("in-memory message store initialized")
		return store.NewMemoryStore(), func() {}, nil
	}
}

// newCompleter builds the configured completion provider, or nil when no
// credentials are present. A provider init failure degrades the same way the
// missing-credentials case does.
func newCompleter(ctx context.Context, cfg config.AIConfig) chatservice.Completer {
	switch cfg.ResolveProvider() {
	case config.ProviderArk:
		chatModel, err := cfg.NewChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to create ark chat model: %v", err)
			return nil
		}
		completer, err := ai.NewArkCompleter(ctx, chatModel)
		if err != nil {
			log.Printf("warning: failed to initialize ark completer: %v", err)
			return nil
		}
		log.Println("ark completion provider initialized")
		return completer
	case config.ProviderOpenAI:
		completer := ai.NewOpenAICompleter(ai.OpenAIOptions{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			MaxTokens:   cfg.OpenAIMaxTokens,
			Temperature: float32(cfg.OpenAITemperature),
		})
		log.Println("openai completion provider initialized")
		return completer
	default:
		return nil
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Parlor backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
