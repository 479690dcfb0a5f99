package render

import (
	"MapVision/cliente/internal/overlay"
	"MapVision/shared/poi"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const labelFontSize = 14

// Renderer desenha a cena do overlay. Não guarda estado entre frames além do tamanho da tela.
type Renderer struct {
	Width  int32
	Height int32
}

// NewRenderer cria o renderizador para a tela atual.
func NewRenderer() *Renderer {
	r := &Renderer{}
	r.Resize()
	return r
}

// Resize lê o tamanho atual da janela.
func (r *Renderer) Resize() {
	r.Width = int32(rl.GetScreenWidth())
	r.Height = int32(rl.GetScreenHeight())
}

// Draw desenha a linha-guia, os marcadores e os rótulos, nessa ordem.
func (r *Renderer) Draw(scene overlay.Scene) {
	center := rl.Vector2{X: float32(r.Width) / 2, Y: float32(r.Height) / 2}
	if scene.HasGuide {
		guide := rl.Vector2{X: scene.Guide.X(), Y: scene.Guide.Y()}
		rl.DrawLineEx(center, guide, 2, rl.Fade(StyleFor(poi.NextArea).Color, 0.6))
	}

	for _, m := range scene.Markers {
		drawMarker(rl.Vector2{X: m.Screen.X(), Y: m.Screen.Y()}, StyleFor(m.Category))
	}

	// Rótulos por cima de todos os marcadores
	for _, m := range scene.Markers {
		if m.Label == "" {
			continue
		}
		style := StyleFor(m.Category)
		w := rl.MeasureText(m.Label, labelFontSize)
		x := int32(m.Screen.X()) - w/2
		y := int32(m.Screen.Y()) - int32(style.Radius) - labelFontSize - 2
		rl.DrawText(m.Label, x+1, y+1, labelFontSize, rl.Black)
		rl.DrawText(m.Label, x, y, labelFontSize, style.Color)
	}
}

func drawMarker(pos rl.Vector2, style Style) {
	if style.Sides >= 3 {
		rl.DrawPoly(pos, style.Sides, style.Radius, 0, style.Color)
	} else {
		rl.DrawCircleV(pos, style.Radius, style.Color)
	}
}

// DrawLegend desenha uma linha por categoria exibível a partir de (x, y).
func (r *Renderer) DrawLegend(x, y int32) {
	const rowHeight = 16
	for i, c := range poi.Categories() {
		row := y + int32(i)*rowHeight
		drawMarker(rl.Vector2{X: float32(x + 8), Y: float32(row + rowHeight/2)}, StyleFor(c))
		rl.DrawText(c.String(), x+20, row+2, 12, rl.LightGray)
	}
}
