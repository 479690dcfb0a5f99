package app

import (
	"log"
	"sync"

	"MapVision/cliente/internal/client"
	"MapVision/cliente/internal/overlay"
	"MapVision/cliente/internal/render"
	"MapVision/shared/config"
	"MapVision/shared/game"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// App é o overlay do MapVision.
type App struct {
	Config *config.Config

	netClient *client.NetworkClient
	renderer  *render.Renderer
	proj      *overlay.Projection

	// Lista exibida e a que chegou da rede e ainda não foi aplicada
	mu      sync.Mutex
	pending *client.AreaPOIs
	shown   *client.AreaPOIs

	// Pré-visualização da próxima área (tecla N); termina quando chega outra área
	previewTarget game.Area
	previewing    bool

	status      string
	dragging    bool
	frameCount  int
	lastWidth   int32
	lastHeight  int32
	statusColor rl.Color
}

// New cria uma nova instância da aplicação.
func New(cfg *config.Config) *App {
	return &App{
		Config:      cfg,
		status:      "Conectando ao servidor...",
		statusColor: rl.Yellow,
	}
}

// Run inicia o loop principal da aplicação.
func (a *App) Run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro fatal recuperado: %v", r)
			panic(r)
		}
	}()

	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(a.Config.WindowWidth, a.Config.WindowHeight, a.Config.WindowTitle)
	rl.SetTraceLogLevel(rl.LogWarning)

	if a.Config.Fullscreen {
		rl.ToggleFullscreen()
	}
	rl.SetTargetFPS(a.Config.TargetFPS)

	log.Println("[MapVision] Janela inicializada com sucesso")
	log.Printf("[MapVision] Resolução: %dx%d", a.Config.WindowWidth, a.Config.WindowHeight)

	a.renderer = render.NewRenderer()
	a.lastWidth, a.lastHeight = a.renderer.Width, a.renderer.Height
	a.proj = overlay.NewProjection(a.Config.MapScale, a.lastWidth, a.lastHeight)

	a.netClient = client.NewNetworkClient(a.Config.ServerURL)
	go a.connectServer()

	for !rl.WindowShouldClose() {
		a.update()
		a.draw()
	}

	a.shutdown()
	rl.CloseWindow()
}

// update atualiza o estado a cada frame.
func (a *App) update() {
	a.frameCount++

	a.renderer.Resize()
	if a.renderer.Width != a.lastWidth || a.renderer.Height != a.lastHeight {
		a.lastWidth, a.lastHeight = a.renderer.Width, a.renderer.Height
		a.proj.Resize(a.lastWidth, a.lastHeight)
	}

	a.applyPending()
	a.updateInput()
}

// shutdown realiza a limpeza de recursos.
func (a *App) shutdown() {
	log.Println("[App] Finalizando aplicação...")

	if a.netClient != nil {
		a.netClient.Close()
	}

	// Guarda zoom e toggles para a próxima sessão
	a.Config.MapScale = a.proj.Scale
	if err := a.Config.Save(); err != nil {
		log.Printf("[MapVision] Erro ao salvar configurações: %v", err)
	}
}
