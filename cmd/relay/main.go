package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"wtl-assistant/handler"
	"wtl-assistant/internal/config"
	"wtl-assistant/internal/integrations/openai"
	"wtl-assistant/internal/integrations/paramstore"
	"wtl-assistant/internal/usecase"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	apiKey, err := resolveAPIKey(ctx, cfg.Upstream)
	if err != nil {
		slog.Error("failed to resolve completion service credential", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	llm, err := openai.NewClient(apiKey,
		openai.WithBaseURL(cfg.Upstream.BaseURL),
		openai.WithHTTPClient(&http.Client{Timeout: cfg.Upstream.Timeout}),
		openai.WithAppIdentity(cfg.Upstream.Referer, cfg.Upstream.Title),
	)
	if err != nil {
		slog.Error("failed to create completion client", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	relay, err := usecase.NewRelayService(llm, usecase.DefaultPolicy(), cfg.Upstream.Model, cfg.Relay.MaxContextMessages)
	if err != nil {
		slog.Error("failed to create relay service", "err", err)
		os.Exit(1)
	}
	h, err := handler.NewHandler(relay)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		lambda.Start(h.Handle)
		return
	}
	if err := serve(cfg.Relay.ListenAddr, handler.Routes(h)); err != nil {
		slog.Error("relay server stopped", "err", err)
		os.Exit(1)
	}
}

// loadConfig reads the optional YAML file named by CONFIG_PATH on top of the
// environment.
func loadConfig() (*config.Config, error) {
	return config.Load(os.Getenv("CONFIG_PATH"))
}

// resolveAPIKey prefers the environment and falls back to SSM.
func resolveAPIKey(ctx context.Context, up config.Upstream) (string, error) {
	if !up.HasCredential() {
		return "", errors.New("set OPENAI_API_KEY or OPENAI_API_KEY_PARAM")
	}
	if up.APIKey != "" {
		return up.APIKey, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return "", err
	}
	params, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return "", err
	}
	return params.Credential(ctx, up.APIKeyParam)
}

func serve(addr string, routes http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           routes,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("relay listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
