package mapdata

import (
	"encoding/json"
	"fmt"

	"MapVision/shared/game"
)

// Formato JSON dos snapshots exportados pelo servidor de mapas:
//
//	{
//	  "id": 46, "name": "Canyon of the Magi",
//	  "objects": [{"id": 152, "name": "HoradricOrifice", "positions": [{"x": 10, "y": 20}]}],
//	  "adjacentLevels": [{"id": 66, "exits": [{"x": 5, "y": 7}]}]
//	}
type snapshotDoc struct {
	ID             int              `json:"id"`
	Name           string           `json:"name,omitempty"`
	Objects        []snapshotObject `json:"objects"`
	AdjacentLevels []snapshotLevel  `json:"adjacentLevels"`
}

type snapshotObject struct {
	ID        int             `json:"id"`
	Name      string          `json:"name,omitempty"`
	Positions []snapshotPoint `json:"positions"`
}

type snapshotLevel struct {
	ID    int             `json:"id"`
	Exits []snapshotPoint `json:"exits"`
}

type snapshotPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DecodeSnapshot converte um documento JSON em AreaData.
// Entradas repetidas do mesmo objeto são concatenadas na ordem em que aparecem.
func DecodeSnapshot(data []byte) (*AreaData, error) {
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("falha ao parsear snapshot: %w", err)
	}

	area := NewAreaData(game.Area(doc.ID))
	for _, obj := range doc.Objects {
		kind := game.Object(obj.ID)
		points := area.Objects[kind]
		for _, p := range obj.Positions {
			points = append(points, Point{X: p.X, Y: p.Y})
		}
		area.Objects[kind] = points
	}

	for _, lvl := range doc.AdjacentLevels {
		target := game.Area(lvl.ID)
		if _, dup := area.AdjacentLevels[target]; dup {
			return nil, fmt.Errorf("snapshot da área %d: vizinho %d repetido", doc.ID, lvl.ID)
		}
		exits := make([]Point, 0, len(lvl.Exits))
		for _, p := range lvl.Exits {
			exits = append(exits, Point{X: p.X, Y: p.Y})
		}
		area.AdjacentLevels[target] = AdjacentLevel{Area: target, Exits: exits}
	}

	return area, nil
}

// EncodeSnapshot serializa AreaData no mesmo formato lido por DecodeSnapshot.
// Objetos e vizinhos saem em ordem crescente de id.
func EncodeSnapshot(area *AreaData) ([]byte, error) {
	doc := snapshotDoc{
		ID:             int(area.Area),
		Name:           game.AreaName(area.Area),
		Objects:        make([]snapshotObject, 0, len(area.Objects)),
		AdjacentLevels: make([]snapshotLevel, 0, len(area.AdjacentLevels)),
	}

	for _, kind := range area.ObjectKinds() {
		obj := snapshotObject{ID: int(kind), Name: game.ObjectIdent(kind), Positions: []snapshotPoint{}}
		for _, p := range area.Objects[kind] {
			obj.Positions = append(obj.Positions, snapshotPoint{X: p.X, Y: p.Y})
		}
		doc.Objects = append(doc.Objects, obj)
	}

	for _, target := range area.AdjacentAreas() {
		lvl := snapshotLevel{ID: int(target), Exits: []snapshotPoint{}}
		for _, p := range area.AdjacentLevels[target].Exits {
			lvl.Exits = append(lvl.Exits, snapshotPoint{X: p.X, Y: p.Y})
		}
		doc.AdjacentLevels = append(doc.AdjacentLevels, lvl)
	}

	return json.MarshalIndent(doc, "", "  ")
}
