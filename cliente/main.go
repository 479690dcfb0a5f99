package main

import (
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"MapVision/cliente/internal/app"
	"MapVision/shared/config"
)

func main() {
	// Raylib/OpenGL exige rodar na thread principal do SO
	runtime.LockOSThread()

	serverURL := flag.String("server", "", "URL do servidor MapVision (padrão: ws://127.0.0.1:8080/ws)")
	fullscreen := flag.Bool("fullscreen", false, "Iniciar em tela cheia")
	debug := flag.Bool("debug", false, "Mostrar POIs de debug")
	width := flag.Int("width", 0, "Largura da janela")
	height := flag.Int("height", 0, "Altura da janela")
	flag.Parse()

	if exePath, err := os.Executable(); err == nil {
		os.Chdir(filepath.Dir(exePath))
	}

	log.SetFlags(log.Ltime | log.Lshortfile)
	if err := os.MkdirAll("tmp", 0755); err == nil {
		f, err := os.OpenFile("tmp/client.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}
	log.Println("╔══════════════════════════════════════╗")
	log.Println("║          MapVision v0.1.0            ║")
	log.Println("║     Overlay de pontos de interesse   ║")
	log.Println("╚══════════════════════════════════════╝")

	cfg := config.Load()
	if err := cfg.ApplyEnv(".env"); err != nil {
		log.Fatalf("[Config] %v", err)
	}

	// Flags sobrescrevem config e ambiente
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}
	if *fullscreen {
		cfg.Fullscreen = true
	}
	if *debug {
		cfg.ShowDebugPOIs = true
	}
	if *width > 0 {
		cfg.WindowWidth = int32(*width)
	}
	if *height > 0 {
		cfg.WindowHeight = int32(*height)
	}

	application := app.New(cfg)
	application.Run()
}
