package render

import (
	"MapVision/shared/poi"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Style define como cada categoria aparece no overlay.
type Style struct {
	Color  rl.Color
	Radius float32
	// Sides 0 desenha círculo; 3+ desenha polígono (losango para transições)
	Sides int32
}

var palette = map[poi.Category]Style{
	poi.NextArea:        {rl.NewColor(255, 0, 255, 255), 7, 4},
	poi.PreviousArea:    {rl.NewColor(170, 110, 255, 220), 5, 4},
	poi.Waypoint:        {rl.NewColor(30, 144, 255, 255), 6, 0},
	poi.Quest:           {rl.NewColor(0, 255, 0, 255), 6, 0},
	poi.SuperChest:      {rl.NewColor(255, 215, 0, 255), 5, 0},
	poi.NormalChest:     {rl.NewColor(255, 165, 0, 220), 4, 0},
	poi.CommonContainer: {rl.NewColor(200, 200, 200, 180), 3, 0},
	poi.ArmorWeaponRack: {rl.NewColor(176, 196, 222, 200), 3, 0},
	poi.Shrine:          {rl.NewColor(0, 255, 255, 255), 5, 6},
	poi.Debug:           {rl.NewColor(255, 60, 60, 160), 2, 0},
}

// StyleFor retorna o estilo da categoria; categorias desconhecidas usam o de Debug.
func StyleFor(c poi.Category) Style {
	if s, ok := palette[c]; ok {
		return s
	}
	return palette[poi.Debug]
}
