package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"job-board/internal/api"
	"job-board/internal/applications"
	"job-board/internal/blob"
	"job-board/internal/cache"
	"job-board/internal/config"
	"job-board/internal/jobs"
	"job-board/internal/store"
)

// recordStore is everything the repository and workflow need from a backend.
type recordStore interface {
	jobs.Store
	applications.Store
}

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	var st recordStore
	if cfg.PostgresDSN == "memory" {
		log.Printf("store: using in-memory backend")
		st = store.NewMemory()
	} else {
		pg, err := store.NewPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pg.Close()
		if err := pg.RunMigrations(ctx); err != nil {
			log.Fatalf("migrations: %v", err)
		}
		st = pg
	}

	facade := cache.NewFacade(cache.Select(ctx, cfg))

	resumes, err := blob.NewS3Store(ctx, cfg)
	if err != nil {
		log.Fatalf("init resume storage: %v", err)
	}
	var uploader blob.Uploader
	if resumes != nil {
		uploader = resumes
	}

	repo := jobs.NewRepository(st, facade)
	wf := applications.NewWorkflow(st, facade, uploader)

	server := api.New(repo, wf)
	httpServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: server.Router(),
	}

	log.Printf("api listening on :%s", cfg.HTTPPort)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = httpServer.Shutdown(shutdownCtx)
}
