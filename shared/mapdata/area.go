package mapdata

import (
	"fmt"
	"sort"

	"MapVision/shared/game"
)

// Point é uma coordenada 2D no espaço local da área.
type Point struct {
	X int
	Y int
}

// String retorna a representação em string do ponto.
func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// AdjacentLevel descreve uma área vizinha e os pontos da área ATUAL que levam até ela.
type AdjacentLevel struct {
	Area  game.Area
	Exits []Point
}

// AreaData é o retrato (snapshot) de uma área: objetos estáticos e conectividade.
// É montado pelo provedor a cada consulta e tratado como imutável daqui em diante.
type AreaData struct {
	Area           game.Area
	Objects        map[game.Object][]Point
	AdjacentLevels map[game.Area]AdjacentLevel
}

// NewAreaData cria um snapshot vazio para a área.
func NewAreaData(area game.Area) *AreaData {
	return &AreaData{
		Area:           area,
		Objects:        make(map[game.Object][]Point),
		AdjacentLevels: make(map[game.Area]AdjacentLevel),
	}
}

// HasObject informa se o tipo aparece como chave em Objects (mesmo sem posições).
func (d *AreaData) HasObject(obj game.Object) bool {
	_, ok := d.Objects[obj]
	return ok
}

// ObjectKinds retorna as chaves de Objects em ordem crescente de id.
// Essa é a ordem de iteração usada em todo o sistema.
func (d *AreaData) ObjectKinds() []game.Object {
	kinds := make([]game.Object, 0, len(d.Objects))
	for k := range d.Objects {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// AdjacentAreas retorna as áreas vizinhas em ordem crescente de id.
func (d *AreaData) AdjacentAreas() []game.Area {
	areas := make([]game.Area, 0, len(d.AdjacentLevels))
	for a := range d.AdjacentLevels {
		areas = append(areas, a)
	}
	sort.Slice(areas, func(i, j int) bool { return areas[i] < areas[j] })
	return areas
}

// ExitsTo retorna as saídas da área atual que levam a target.
func (d *AreaData) ExitsTo(target game.Area) []Point {
	return d.AdjacentLevels[target].Exits
}

// Session identifica uma partida. A mesma área gera mapas diferentes para
// seeds/dificuldades diferentes, então caches são separados por sessão.
type Session struct {
	Seed       uint32
	Difficulty game.Difficulty
}

// String retorna a sessão formatada ("seed/dificuldade").
func (s Session) String() string {
	return fmt.Sprintf("%d/%s", s.Seed, game.DifficultyName(s.Difficulty))
}
