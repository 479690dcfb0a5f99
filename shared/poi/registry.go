package poi

import "MapVision/shared/game"

type rule struct {
	category Category
	match    func(game.Object) bool
}

// Registry classifica tipos de objeto em categorias. As regras são avaliadas em
// ordem e a primeira que casar vence; o que não casar com nenhuma vira Debug.
type Registry struct {
	rules []rule
}

// NewRegistry monta as regras a partir das tabelas. Ordem de precedência:
// waypoint, quest, super baú, baú normal, contêiner comum, armaduras/armas,
// santuário, skip.
func NewRegistry(r *Rules) *Registry {
	return &Registry{
		rules: []rule{
			{Waypoint, game.IsWaypoint},
			{Quest, setOf(r.QuestObjects)},
			{SuperChest, setOf(r.SuperChests)},
			{NormalChest, setOf(r.NormalChests)},
			{CommonContainer, setOf(r.CommonContainers)},
			{ArmorWeaponRack, setOf(r.ArmorWeaponRacks)},
			{Shrine, setOf(r.Shrines)},
			{Skip, setOf(r.SkipObjects)},
		},
	}
}

func setOf(objects []game.Object) func(game.Object) bool {
	set := make(map[game.Object]struct{}, len(objects))
	for _, o := range objects {
		set[o] = struct{}{}
	}
	return func(o game.Object) bool {
		_, ok := set[o]
		return ok
	}
}

// Classify retorna a categoria do objeto. Nunca falha: desconhecidos caem em Debug.
func (r *Registry) Classify(obj game.Object) Category {
	for _, rl := range r.rules {
		if rl.match(obj) {
			return rl.category
		}
	}
	return Debug
}
