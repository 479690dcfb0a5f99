package app

import (
	"log"

	"MapVision/cliente/internal/overlay"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const zoomStep = 1.15

// updateInput processa mouse e teclado.
func (a *App) updateInput() {
	// Zoom com a roda do mouse
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		factor := float32(zoomStep)
		if wheel < 0 {
			factor = 1 / factor
		}
		a.proj.Zoom(factor)
	}

	// Arrastar com o botão esquerdo move o mapa
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		a.dragging = true
	}
	if rl.IsMouseButtonReleased(rl.MouseLeftButton) {
		a.dragging = false
	}
	if a.dragging {
		d := rl.GetMouseDelta()
		if d.X != 0 || d.Y != 0 {
			a.proj.Pan(-d.X, -d.Y)
		}
	}

	// Recentralizar
	if rl.IsKeyPressed(rl.KeyC) && a.shown != nil {
		a.proj.SetOrigin(overlay.Centroid(a.shown.Points))
	}

	if rl.IsKeyPressed(rl.KeyL) {
		a.Config.ShowLabels = !a.Config.ShowLabels
	}

	if rl.IsKeyPressed(rl.KeyF3) {
		a.Config.ShowDebugPOIs = !a.Config.ShowDebugPOIs
		log.Printf("[App] POIs de debug: %v", a.Config.ShowDebugPOIs)
	}

	if rl.IsKeyPressed(rl.KeyN) {
		a.requestPreview()
	}

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
}
