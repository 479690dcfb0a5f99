// Package overlay converte POIs do espaço da área para a tela do overlay.
// Não depende do Raylib: a parte de desenho fica em render.
package overlay

import (
	"math"

	"MapVision/shared/mapdata"

	"github.com/go-gl/mathgl/mgl32"
)

// Projeção isométrica padrão do mapa do jogo: 45 graus e achatamento vertical pela metade.
const (
	DefaultAngle  = math.Pi / 4
	DefaultSquash = 0.5
)

// Projection leva coordenadas da área para pixels. Origin é o ponto da área que
// fica no centro da tela.
type Projection struct {
	Scale  float32
	Angle  float32
	Squash float32
	Center mgl32.Vec2
	Origin mgl32.Vec2

	m     mgl32.Mat3
	inv   mgl32.Mat3
	dirty bool
}

// NewProjection cria a projeção para uma tela width x height.
func NewProjection(scale float32, width, height int32) *Projection {
	return &Projection{
		Scale:  scale,
		Angle:  DefaultAngle,
		Squash: DefaultSquash,
		Center: mgl32.Vec2{float32(width) / 2, float32(height) / 2},
		dirty:  true,
	}
}

// SetOrigin centraliza a tela no ponto da área.
func (p *Projection) SetOrigin(pt mapdata.Point) {
	p.Origin = mgl32.Vec2{float32(pt.X), float32(pt.Y)}
	p.dirty = true
}

// Resize atualiza o centro quando a janela muda de tamanho.
func (p *Projection) Resize(width, height int32) {
	p.Center = mgl32.Vec2{float32(width) / 2, float32(height) / 2}
	p.dirty = true
}

// Zoom multiplica a escala, limitada a [0.25, 64].
func (p *Projection) Zoom(factor float32) {
	p.Scale = mgl32.Clamp(p.Scale*factor, 0.25, 64)
	p.dirty = true
}

// Pan desloca a origem em pixels de tela.
func (p *Projection) Pan(dx, dy float32) {
	p.update()
	delta := p.inv.Mul3x1(mgl32.Vec3{p.Center.X() + dx, p.Center.Y() + dy, 1})
	p.Origin = mgl32.Vec2{delta.X(), delta.Y()}
	p.dirty = true
}

func (p *Projection) update() {
	if !p.dirty {
		return
	}
	p.m = mgl32.Translate2D(p.Center.X(), p.Center.Y()).
		Mul3(mgl32.Scale2D(p.Scale, p.Scale*p.Squash)).
		Mul3(mgl32.HomogRotate2D(p.Angle)).
		Mul3(mgl32.Translate2D(-p.Origin.X(), -p.Origin.Y()))
	p.inv = p.m.Inv()
	p.dirty = false
}

// ToScreen converte um ponto da área em pixels.
func (p *Projection) ToScreen(pt mapdata.Point) mgl32.Vec2 {
	p.update()
	v := p.m.Mul3x1(mgl32.Vec3{float32(pt.X), float32(pt.Y), 1})
	return mgl32.Vec2{v.X(), v.Y()}
}

// ToArea converte pixels de volta para o ponto da área mais próximo.
func (p *Projection) ToArea(screen mgl32.Vec2) mapdata.Point {
	p.update()
	v := p.inv.Mul3x1(mgl32.Vec3{screen.X(), screen.Y(), 1})
	return mapdata.Point{X: int(math.Round(float64(v.X()))), Y: int(math.Round(float64(v.Y())))}
}
