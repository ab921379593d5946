// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	fitcoach_routers "github.com/rapidaai/fitcoach/api/routers"
	"github.com/rapidaai/fitcoach/config"
	inference_client "github.com/rapidaai/fitcoach/pkg/clients/inference"
	"github.com/rapidaai/fitcoach/pkg/commons"
	"golang.org/x/sync/errgroup"
)

func main() {
	vConfig, err := config.InitConfig()
	if err != nil {
		log.Fatalf("unable to read config: %v", err)
	}
	cfg, err := config.GetApplicationConfig(vConfig)
	if err != nil {
		log.Fatalf("invalid application config: %v", err)
	}

	logger := commons.NewLogger(cfg.Name, cfg.LogLevel, cfg.IsDebug())
	defer logger.Sync()

	if !cfg.HasApiKey() {
		// boot anyway so /api/health can report the misconfiguration
		logger.Warn("inference api key is not configured; webrtc proxying is disabled")
	}

	if !cfg.IsDebug() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	client := inference_client.NewProviderClient(cfg, logger)
	fitcoach_routers.HealthCheckRoutes(cfg, engine, logger)
	fitcoach_routers.InferenceApiRoutes(cfg, engine, logger, client)
	fitcoach_routers.StaticRoutes(cfg, engine, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Infof("%s %s listening on %s", cfg.Name, cfg.Version, server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}
