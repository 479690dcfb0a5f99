package overlay

import (
	"MapVision/shared/game"
	"MapVision/shared/mapdata"
	"MapVision/shared/poi"

	"github.com/go-gl/mathgl/mgl32"
)

// Options controla o que entra na cena.
type Options struct {
	ShowLabels    bool
	ShowDebugPOIs bool
}

// Marker é um POI já projetado na tela.
type Marker struct {
	Screen   mgl32.Vec2
	Label    string // vazio quando os rótulos estão desligados
	Category poi.Category
}

// Scene é o que o renderer desenha num frame.
type Scene struct {
	Markers []Marker
	// Guide é a posição do POI NextArea, se houver; o renderer traça uma linha até ele
	Guide    mgl32.Vec2
	HasGuide bool
}

// Centroid retorna o centro da caixa que contém todos os POIs.
func Centroid(points []poi.PointOfInterest) mapdata.Point {
	if len(points) == 0 {
		return mapdata.Point{}
	}
	minP, maxP := points[0].Position, points[0].Position
	for _, p := range points[1:] {
		minP.X = min(minP.X, p.Position.X)
		minP.Y = min(minP.Y, p.Position.Y)
		maxP.X = max(maxP.X, p.Position.X)
		maxP.Y = max(maxP.Y, p.Position.Y)
	}
	return mapdata.Point{X: (minP.X + maxP.X) / 2, Y: (minP.Y + maxP.Y) / 2}
}

// BuildScene projeta os POIs na ordem recebida. POIs Debug só entram com ShowDebugPOIs.
func BuildScene(points []poi.PointOfInterest, proj *Projection, opts Options) Scene {
	var scene Scene
	for _, p := range points {
		if p.Category == poi.Debug && !opts.ShowDebugPOIs {
			continue
		}
		m := Marker{Screen: proj.ToScreen(p.Position), Category: p.Category}
		if opts.ShowLabels {
			m.Label = p.Label
		}
		scene.Markers = append(scene.Markers, m)

		if p.Category == poi.NextArea && !scene.HasGuide {
			scene.Guide = m.Screen
			scene.HasGuide = true
		}
	}
	return scene
}

// NextTarget retorna a área alvo do primeiro POI NextArea.
func NextTarget(points []poi.PointOfInterest) (game.Area, bool) {
	for _, p := range points {
		if p.Category == poi.NextArea && p.Target != game.AreaNone {
			return p.Target, true
		}
	}
	return game.AreaNone, false
}
