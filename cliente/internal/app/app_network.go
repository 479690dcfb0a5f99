package app

import (
	"fmt"
	"log"

	"MapVision/cliente/internal/client"
	"MapVision/cliente/internal/overlay"
	"MapVision/shared/game"
	"MapVision/shared/proto/poinet"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// connectServer conecta ao servidor de POIs. Roda fora da thread do Raylib:
// os callbacks só guardam os dados e o loop principal aplica em applyPending.
func (a *App) connectServer() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro em connectServer: %v", r)
		}
	}()

	a.netClient.OnPOIs = func(pois *client.AreaPOIs) {
		a.mu.Lock()
		a.pending = pois
		a.mu.Unlock()
	}
	a.netClient.OnStatus = func(status *poinet.ServerStatus) {
		log.Printf("[Server] Status: %s (%d áreas em cache, %d clientes)",
			status.Message, status.CachedAreas, status.Clients)
		a.setStatus(status.Message, rl.Green)
	}

	if err := a.netClient.Connect(); err != nil {
		log.Printf("[Server] Erro ao conectar: %v", err)
		a.setStatus("Erro ao conectar ao servidor. Verifique se o servidor está rodando.", rl.Red)
		return
	}
	log.Printf("[Server] Conectado a %s", a.Config.ServerURL)
}

func (a *App) setStatus(msg string, color rl.Color) {
	a.mu.Lock()
	a.status = msg
	a.statusColor = color
	a.mu.Unlock()
}

// applyPending troca a lista exibida pela última recebida. A câmera só
// recentraliza quando muda a área ou a sessão.
func (a *App) applyPending() {
	a.mu.Lock()
	next := a.pending
	a.pending = nil
	a.mu.Unlock()
	if next == nil {
		return
	}

	if a.previewTarget != game.AreaNone {
		if next.Area == a.previewTarget {
			a.previewing = true
		} else if a.previewing {
			a.previewing = false
			a.previewTarget = game.AreaNone
		}
	}

	prev := a.shown
	a.shown = next
	if prev == nil || prev.Area != next.Area || prev.Session != next.Session {
		a.proj.SetOrigin(overlay.Centroid(next.Points))
		log.Printf("[App] Área %s: %d POIs", game.AreaName(next.Area), len(next.Points))
	}
}

// requestPreview pede ao servidor os POIs da próxima área da lista atual.
func (a *App) requestPreview() {
	if a.shown == nil {
		return
	}
	target, ok := overlay.NextTarget(a.shown.Points)
	if !ok {
		a.setStatus("Nenhuma próxima área nesta área.", rl.Yellow)
		return
	}
	a.previewTarget = target
	a.netClient.RequestArea(target)
	a.setStatus(fmt.Sprintf("Pré-visualizando %s", game.AreaName(target)), rl.SkyBlue)
}
