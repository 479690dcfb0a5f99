package app

import (
	"fmt"

	"MapVision/cliente/internal/overlay"
	"MapVision/shared/game"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// draw renderiza o frame.
func (a *App) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(30, 30, 40, 255))

	if a.shown != nil {
		scene := overlay.BuildScene(a.shown.Points, a.proj, overlay.Options{
			ShowLabels:    a.Config.ShowLabels,
			ShowDebugPOIs: a.Config.ShowDebugPOIs,
		})
		a.renderer.Draw(scene)
	}
	a.drawHUD()

	rl.EndDrawing()
}

// drawHUD desenha o painel de informações no canto superior esquerdo.
func (a *App) drawHUD() {
	width := int32(360)
	height := int32(150)
	x := int32(10)
	y := int32(10)

	rl.DrawRectangle(x, y, width, height, rl.NewColor(0, 0, 0, 180))
	rl.DrawRectangleLines(x, y, width, height, rl.NewColor(50, 50, 50, 255))

	fps := rl.GetFPS()
	fpsColor := rl.Green
	if fps < 30 {
		fpsColor = rl.Red
	}
	rl.DrawText(fmt.Sprintf("FPS: %d", fps), x+width-80, y+10, 16, fpsColor)

	if a.shown == nil {
		rl.DrawText("Aguardando área...", x+10, y+10, 20, rl.LightGray)
	} else {
		title := game.AreaName(a.shown.Area)
		if a.previewing {
			title += " (prévia)"
		}
		rl.DrawText(title, x+10, y+10, 20, rl.Gold)
		rl.DrawText(fmt.Sprintf("Seed: %d  Dificuldade: %s", a.shown.Session.Seed, game.DifficultyName(a.shown.Session.Difficulty)),
			x+10, y+35, 14, rl.LightGray)
		rl.DrawText(fmt.Sprintf("POIs: %d  Escala: %.2f", len(a.shown.Points), a.proj.Scale),
			x+10, y+52, 14, rl.LightGray)
	}

	rl.DrawLine(x+10, y+75, x+width-10, y+75, rl.NewColor(100, 100, 100, 100))

	a.mu.Lock()
	status, statusColor := a.status, a.statusColor
	a.mu.Unlock()
	conn := "Offline"
	if a.netClient != nil && a.netClient.IsConnected() {
		conn = "Conectado"
	}
	rl.DrawText(fmt.Sprintf("[%s] %s", conn, status), x+10, y+85, 14, statusColor)

	rl.DrawText("Scroll: Zoom | Arrastar: Mover | C: Centralizar", x+10, y+110, 14, rl.LightGray)
	rl.DrawText("L: Rótulos | N: Próxima área | F3: Debug | F11: Tela cheia", x+10, y+127, 14, rl.SkyBlue)

	// Legenda das categorias abaixo do painel
	legendY := y + height + 8
	rl.DrawRectangle(x, legendY, 160, 176, rl.NewColor(0, 0, 0, 140))
	a.renderer.DrawLegend(x+6, legendY+8)
}
