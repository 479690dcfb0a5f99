package poi

import (
	"MapVision/shared/game"
	"MapVision/shared/mapdata"
)

// ResolveTransitions gera os POIs de transição da área atual.
//
// A vizinha de maior id é tratada como o caminho "para frente": vira NextArea
// na primeira saída, mas só se o id for maior que o da área atual. As demais
// vizinhas viram PreviousArea, um POI por saída.
func ResolveTransitions(current *mapdata.AreaData) []PointOfInterest {
	neighbours := current.AdjacentAreas()
	if len(neighbours) == 0 {
		return nil
	}

	highest := neighbours[len(neighbours)-1]
	var out []PointOfInterest
	if highest > current.Area {
		if p, ok := nextAreaPOI(current, highest); ok {
			out = append(out, p)
		}
	}

	for _, prev := range neighbours[:len(neighbours)-1] {
		for _, exit := range current.ExitsTo(prev) {
			out = append(out, PointOfInterest{
				Label:    game.AreaName(prev),
				Position: exit,
				Category: PreviousArea,
				Target:   prev,
			})
		}
	}
	return out
}

// nextAreaPOI monta o POI NextArea na primeira saída da área atual para target.
// Sem saídas, não há POI.
func nextAreaPOI(current *mapdata.AreaData, target game.Area) (PointOfInterest, bool) {
	exits := current.ExitsTo(target)
	if len(exits) == 0 {
		return PointOfInterest{}, false
	}
	return PointOfInterest{
		Label:    game.AreaName(target),
		Position: exits[0],
		Category: NextArea,
		Target:   target,
	}, true
}
