package main

import (
	"context"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"MapVision/servidor/internal/feed"
	"MapVision/shared/config"
	"MapVision/shared/mapdata"
	"MapVision/shared/poi"
)

func main() {
	// Garante que o working directory é o mesmo diretório do executável,
	// para que caminhos relativos (data/, saves/, tmp/) funcionem corretamente.
	if exePath, err := os.Executable(); err == nil {
		os.Chdir(filepath.Dir(exePath))
	}

	log.SetFlags(log.Ltime | log.Lshortfile)

	// Log em arquivo para depuração de crash
	if err := os.MkdirAll("tmp", 0755); err == nil {
		logFile, err := os.OpenFile("tmp/server.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			log.SetOutput(io.MultiWriter(os.Stdout, logFile))
		}
	}
	log.Println("╔══════════════════════════════════════╗")
	log.Println("║      MapVision SERVER v0.1.0         ║")
	log.Println("╚══════════════════════════════════════╝")

	cfg := config.Load()
	if err := cfg.ApplyEnv(".env"); err != nil {
		log.Fatalf("[Config] %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := openStore(cfg)
	if store != nil {
		defer store.Close()
	}

	source := mapdata.NewFileProvider(cfg.SnapshotURL)
	cache := mapdata.NewCachedProvider(source, store)
	log.Printf("[Startup] Snapshots em %s", cfg.SnapshotURL)

	rules := poi.DefaultRules()
	if cfg.RulesURL != "" {
		loaded, err := poi.LoadRules(ctx, cfg.RulesURL)
		if err != nil {
			log.Fatalf("[Startup] Regras inválidas: %v", err)
		}
		rules = loaded
		log.Printf("[Startup] Regras carregadas de %s (%d hubs)", cfg.RulesURL, len(rules.Hubs))
	}
	assembler := poi.NewAssembler(rules)
	assembler.Parallelism = cfg.TombParallelism

	hub := feed.NewHub()
	go hub.Run(ctx)

	tracker := feed.NewTracker(cfg.CurrentAreaURL, cache, assembler, hub, cfg.PollInterval())
	hub.SetHandler(tracker.HandleMessage)
	go tracker.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)

	// Verifica a porta antes para dar uma mensagem clara
	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.Printf("╔══════════════════════════════════════════════════════════════╗")
		log.Printf("║ ERRO CRÍTICO: Não foi possível abrir %-24s║", cfg.ListenAddr)
		log.Printf("║ Provavelmente há outra instância do servidor rodando.        ║")
		log.Printf("╚══════════════════════════════════════════════════════════════╝")
		log.Fatalf("Erro ao iniciar servidor: %v", err)
	}

	srv := &http.Server{Handler: mux}
	go func() {
		<-ctx.Done()
		log.Println("[Startup] Encerrando...")
		srv.Close()
	}()

	log.Printf("Servidor MapVision iniciado em %s", cfg.ListenAddr)
	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Erro fatal no servidor HTTP: %v", err)
	}
}

// openStore abre o cache persistente: Postgres se configurado, senão SQLite.
// Falha ao abrir não impede o servidor de subir, só desliga a persistência.
func openStore(cfg *config.Config) mapdata.SnapshotStore {
	if cfg.PostgresDSN != "" {
		store, err := mapdata.OpenPostgresStore(cfg.PostgresDSN)
		if err != nil {
			log.Printf("[Persistence] Erro ao abrir Postgres: %v (sem cache persistente)", err)
			return nil
		}
		log.Println("[Persistence] Cache de snapshots no Postgres")
		return store
	}

	store, err := mapdata.OpenSQLiteStore(cfg.CacheDBPath)
	if err != nil {
		log.Printf("[Persistence] Erro ao abrir SQLite: %v (sem cache persistente)", err)
		return nil
	}
	if count, err := store.SnapshotCount(); err == nil {
		log.Printf("[Persistence] %s: %d snapshots persistidos", cfg.CacheDBPath, count)
	}
	return store
}
