package poi

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"MapVision/shared/game"

	"github.com/hectorgimenez/d2go/pkg/data/area"
	"github.com/hectorgimenez/d2go/pkg/data/object"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// HubRule descreve uma área "hub" ambígua: das áreas candidatas, estruturalmente
// idênticas, só a que contém o objeto Marker é a verdadeira.
type HubRule struct {
	Hub        game.Area
	Candidates []game.Area
	Marker     game.Object
}

// Rules são as tabelas de classificação e de hubs usadas pelo Assembler.
type Rules struct {
	QuestObjects     []game.Object
	SuperChests      []game.Object
	NormalChests     []game.Object
	CommonContainers []game.Object
	ArmorWeaponRacks []game.Object
	Shrines          []game.Object
	SkipObjects      []game.Object

	Hubs []HubRule
}

// DefaultRules retorna as tabelas padrão do jogo.
func DefaultRules() *Rules {
	return &Rules{
		QuestObjects: []game.Object{
			object.HoradricCubeChest,
			object.HoradricScrollChest,
			object.StaffOfKingsChest,
			object.HoradricOrifice,
			object.YetAnotherTome, // Summoner no Arcane Sanctuary
			object.FrozenAnya,
			object.InifussTree,
			object.CairnStoneAlpha,
			object.WirtCorpse,
			object.HellForge,
			object.NihlathakWildernessStartPosition,
		},
		SuperChests: []game.Object{
			object.GoodChest,
			object.SparklyChest,
			object.ArcaneLargeChestLeft,
			object.ArcaneLargeChestRight,
			object.ArcaneSmallChestLeft,
			object.ArcaneSmallChestRight,
		},
		NormalChests: []game.Object{
			object.NotSoGoodChest,
			object.JungleStashObject1,
			object.JungleStashObject2,
			object.JungleStashObject3,
			object.JungleStashObject4,
			object.LargeChestLeft,
			object.JungleMediumChestLeft,
			object.MediumChestLeft,
			object.MafistoLargeChestLeft,
			object.MafistoLargeChestRight,
			object.MafistoMediumChestLeft,
			object.MafistoMediumChestRight,
			object.SpiderLairLargeChestLeft,
			object.SpiderLairTallChestLeft,
			object.SpiderLairMediumChestRight,
			object.SpiderLairTallChestRight,
		},
		CommonContainers: []game.Object{
			object.HollowLog,
			object.DeadVillager1,
			object.DeadVillager2,
			object.SkeletonCorpseIsAnOxymoron,
			object.StashAltar,
			object.StashBox,
			object.MephistoLair,
		},
		ArmorWeaponRacks: []game.Object{
			object.ExpansionArmorStandRight,
			object.ExpansionArmorStandLeft,
			object.ArmorStandRight,
			object.ArmorStandLeft,
			object.ExpansionWeaponRackRight,
			object.ExpansionWeaponRackLeft,
			object.WeaponRackRight,
			object.WeaponRackLeft,
		},
		Shrines: []game.Object{
			object.Shrine,
			object.HornShrine,
			object.ForestAltar,
			object.DesertShrine1,
			object.DesertShrine2,
			object.DesertShrine3,
			object.DesertShrine4,
			object.DesertShrine5,
			object.SteleDesertMagicShrine,
		},
		SkipObjects: []game.Object{
			object.JungleTorch,
			object.SmallFire,
			object.Basket1,
			object.Basket2,
			object.Act3TownTorch,
			object.Torch1Tiki,
			object.FloorBrazier,
			object.Act3KurastTorch,
			object.Act2BrazierCeller,
		},
		Hubs: []HubRule{
			{
				// Só uma das sete tumbas tem o Orifício Horádrico
				Hub: area.CanyonOfTheMagi,
				Candidates: []game.Area{
					area.TalRashasTomb1, area.TalRashasTomb2, area.TalRashasTomb3, area.TalRashasTomb4,
					area.TalRashasTomb5, area.TalRashasTomb6, area.TalRashasTomb7,
				},
				Marker: object.HoradricOrifice,
			},
		},
	}
}

// Validate confere a consistência das tabelas: um objeto em no máximo uma
// categoria, hubs únicos, cada hub com candidatas e marcador.
func (r *Rules) Validate() error {
	seen := make(map[game.Object]string)
	sections := []struct {
		name    string
		objects []game.Object
	}{
		{"quest", r.QuestObjects},
		{"super_chests", r.SuperChests},
		{"normal_chests", r.NormalChests},
		{"common_containers", r.CommonContainers},
		{"armor_weapon_racks", r.ArmorWeaponRacks},
		{"shrines", r.Shrines},
		{"skip", r.SkipObjects},
	}
	for _, sec := range sections {
		for _, obj := range sec.objects {
			if prev, dup := seen[obj]; dup && prev != sec.name {
				return fmt.Errorf("objeto %s listado em %s e %s", game.ObjectIdent(obj), prev, sec.name)
			}
			seen[obj] = sec.name
		}
	}

	hubs := make(map[game.Area]bool)
	for _, h := range r.Hubs {
		if hubs[h.Hub] {
			return fmt.Errorf("hub %s definido mais de uma vez", game.AreaIdent(h.Hub))
		}
		hubs[h.Hub] = true
		if len(h.Candidates) == 0 {
			return fmt.Errorf("hub %s sem áreas candidatas", game.AreaIdent(h.Hub))
		}
		if h.Marker == game.ObjectNone {
			return fmt.Errorf("hub %s sem objeto marcador", game.AreaIdent(h.Hub))
		}
	}
	return nil
}

// --- Formato YAML ---

// rulesDoc é o formato do rules.yaml. Seções ausentes mantêm a tabela padrão;
// uma seção presente (mesmo vazia) a substitui inteira.
type rulesDoc struct {
	Quest            []string `yaml:"quest"`
	SuperChests      []string `yaml:"super_chests"`
	NormalChests     []string `yaml:"normal_chests"`
	CommonContainers []string `yaml:"common_containers"`
	ArmorWeaponRacks []string `yaml:"armor_weapon_racks"`
	Shrines          []string `yaml:"shrines"`
	Skip             []string `yaml:"skip"`
	Hubs             []hubDoc `yaml:"hubs"`
}

type hubDoc struct {
	Hub        string   `yaml:"hub"`
	Marker     string   `yaml:"marker"`
	Candidates []string `yaml:"candidates"`
}

// ParseRules lê as tabelas em YAML sobre as tabelas padrão.
// Nomes de objeto aceitam curingas (ex: "DesertShrine*").
func ParseRules(data []byte) (*Rules, error) {
	var doc rulesDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("falha ao parsear regras: %w", err)
	}

	rules := DefaultRules()
	targets := []struct {
		names []string
		dest  *[]game.Object
	}{
		{doc.Quest, &rules.QuestObjects},
		{doc.SuperChests, &rules.SuperChests},
		{doc.NormalChests, &rules.NormalChests},
		{doc.CommonContainers, &rules.CommonContainers},
		{doc.ArmorWeaponRacks, &rules.ArmorWeaponRacks},
		{doc.Shrines, &rules.Shrines},
		{doc.Skip, &rules.SkipObjects},
	}
	for _, t := range targets {
		if t.names == nil {
			continue
		}
		objects, err := expandObjects(t.names)
		if err != nil {
			return nil, err
		}
		*t.dest = objects
	}

	if doc.Hubs != nil {
		rules.Hubs = make([]HubRule, 0, len(doc.Hubs))
		for _, h := range doc.Hubs {
			hub, err := parseHub(h)
			if err != nil {
				return nil, err
			}
			rules.Hubs = append(rules.Hubs, hub)
		}
	}

	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return rules, nil
}

// LoadRules baixa e parseia o arquivo de regras de qualquer URL suportada pelo afs.
func LoadRules(ctx context.Context, location string) (*Rules, error) {
	data, err := afs.New().DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler regras %s: %w", location, err)
	}
	rules, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return rules, nil
}

func parseHub(h hubDoc) (HubRule, error) {
	hub, err := game.ParseArea(h.Hub)
	if err != nil {
		return HubRule{}, err
	}
	marker, err := game.ParseObject(h.Marker)
	if err != nil {
		return HubRule{}, fmt.Errorf("hub %s: %w", h.Hub, err)
	}
	rule := HubRule{Hub: hub, Marker: marker}
	for _, name := range h.Candidates {
		candidate, err := game.ParseArea(name)
		if err != nil {
			return HubRule{}, fmt.Errorf("hub %s: %w", h.Hub, err)
		}
		rule.Candidates = append(rule.Candidates, candidate)
	}
	return rule, nil
}

var errNoMatch = errors.New("curinga não casou com nenhum objeto")

// expandObjects converte nomes (ou curingas) em objetos, sem repetições.
func expandObjects(names []string) ([]game.Object, error) {
	out := make([]game.Object, 0, len(names))
	seen := make(map[game.Object]bool)
	add := func(o game.Object) {
		if !seen[o] {
			seen[o] = true
			out = append(out, o)
		}
	}

	for _, name := range names {
		if !strings.ContainsAny(name, "*?[") {
			obj, err := game.ParseObject(name)
			if err != nil {
				return nil, err
			}
			add(obj)
			continue
		}

		matched := false
		for _, ident := range game.ObjectIdents() {
			ok, err := path.Match(name, ident)
			if err != nil {
				return nil, fmt.Errorf("padrão %q inválido: %w", name, err)
			}
			if ok {
				obj, _ := game.ParseObject(ident)
				add(obj)
				matched = true
			}
		}
		if !matched {
			return nil, fmt.Errorf("%q: %w", name, errNoMatch)
		}
	}
	return out, nil
}
