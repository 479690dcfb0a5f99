// Package poi transforma o snapshot de uma área numa lista ordenada de pontos de
// interesse (POIs) para o overlay: transições entre áreas e objetos classificados.
package poi

import (
	"fmt"

	"MapVision/shared/game"
	"MapVision/shared/mapdata"
)

// Category é a categoria de renderização de um POI.
// Skip só aparece na classificação: nenhum POI é emitido com ela.
type Category uint8

const (
	NextArea Category = iota
	PreviousArea
	Waypoint
	Quest
	SuperChest
	NormalChest
	CommonContainer
	ArmorWeaponRack
	Shrine
	Debug
	Skip
)

var categoryNames = [...]string{
	NextArea:        "NextArea",
	PreviousArea:    "PreviousArea",
	Waypoint:        "Waypoint",
	Quest:           "Quest",
	SuperChest:      "SuperChest",
	NormalChest:     "NormalChest",
	CommonContainer: "CommonContainer",
	ArmorWeaponRack: "ArmorWeaponRack",
	Shrine:          "Shrine",
	Debug:           "Debug",
	Skip:            "Skip",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

// Categories lista as categorias que podem aparecer num POI, na ordem de declaração.
func Categories() []Category {
	return []Category{NextArea, PreviousArea, Waypoint, Quest, SuperChest, NormalChest,
		CommonContainer, ArmorWeaponRack, Shrine, Debug}
}

// singlePoint informa se a categoria mostra só a primeira posição do objeto.
// Waypoints e objetos de quest são únicos na prática; um rótulo basta.
func (c Category) singlePoint() bool {
	return c == Waypoint || c == Quest
}

// PointOfInterest é um ponto rotulado e categorizado para o overlay.
type PointOfInterest struct {
	Label    string
	Position mapdata.Point
	Category Category

	// Target é a área de destino para NextArea/PreviousArea.
	Target game.Area
	// Object é o tipo do objeto para POIs de objeto.
	Object game.Object
}

func (p PointOfInterest) String() string {
	return fmt.Sprintf("%s %q @ %s", p.Category, p.Label, p.Position)
}
