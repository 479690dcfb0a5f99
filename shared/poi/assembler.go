package poi

import (
	"context"
	"strconv"

	"MapVision/shared/game"
	"MapVision/shared/mapdata"
)

// DefaultParallelism é o limite padrão de buscas simultâneas na desambiguação de hubs.
const DefaultParallelism = 8

// Assembler monta a lista de POIs de uma área a partir das tabelas de regras.
// É seguro para uso concorrente depois de criado.
type Assembler struct {
	registry *Registry
	hubs     map[game.Area]HubRule

	// Parallelism limita as buscas simultâneas de candidatas (< 1 vira 1)
	Parallelism int
}

// NewAssembler cria um Assembler para as regras dadas. rules nil usa DefaultRules.
func NewAssembler(rules *Rules) *Assembler {
	if rules == nil {
		rules = DefaultRules()
	}
	a := &Assembler{
		registry:    NewRegistry(rules),
		hubs:        make(map[game.Area]HubRule, len(rules.Hubs)),
		Parallelism: DefaultParallelism,
	}
	for _, h := range rules.Hubs {
		a.hubs[h.Hub] = h
	}
	return a
}

// Assemble gera os POIs da área atual: primeiro as transições, depois os objetos
// em ordem crescente de id. fetch só é usado quando a área é um hub; com fetch nil
// o hub fica sem POI de transição.
//
// O único erro possível é o cancelamento de ctx durante a desambiguação.
func (a *Assembler) Assemble(ctx context.Context, current *mapdata.AreaData, fetch mapdata.Provider) ([]PointOfInterest, error) {
	var out []PointOfInterest

	if hub, ok := a.hubs[current.Area]; ok {
		canonical, found, err := ResolveCanonical(ctx, hub.Candidates, hub.Marker, fetch, a.Parallelism)
		if err != nil {
			return nil, err
		}
		if found {
			if p, ok := nextAreaPOI(current, canonical); ok {
				out = append(out, p)
			}
		}
	} else {
		out = append(out, ResolveTransitions(current)...)
	}

	for _, kind := range current.ObjectKinds() {
		points := current.Objects[kind]
		if len(points) == 0 {
			continue
		}

		category := a.registry.Classify(kind)
		switch {
		case category == Skip:
			continue
		case category.singlePoint():
			out = append(out, objectPOI(kind, category, points[0]))
		default:
			for _, p := range points {
				out = append(out, objectPOI(kind, category, p))
			}
		}
	}
	return out, nil
}

func objectPOI(kind game.Object, category Category, pos mapdata.Point) PointOfInterest {
	label := game.ObjectName(kind)
	if category == Debug {
		// Objetos não classificados mostram o id bruto
		label = strconv.Itoa(int(kind))
	}
	return PointOfInterest{
		Label:    label,
		Position: pos,
		Category: category,
		Object:   kind,
	}
}

var defaultAssembler = NewAssembler(DefaultRules())

// Assemble usa as regras padrão. Veja Assembler.Assemble.
func Assemble(ctx context.Context, current *mapdata.AreaData, fetch mapdata.Provider) ([]PointOfInterest, error) {
	return defaultAssembler.Assemble(ctx, current, fetch)
}
