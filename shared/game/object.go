package game

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/hectorgimenez/d2go/pkg/data"
	"github.com/hectorgimenez/d2go/pkg/data/object"
)

// Object é o tipo de objeto do d2go. O valor numérico é o id bruto do jogo e
// aparece como rótulo de depuração.
type Object = object.Name

// ObjectNone é o id zero.
const ObjectNone Object = 0

// objectIdents nomeia os objetos que os arquivos de regras podem citar.
var objectIdents = map[Object]string{
	object.Shrine:                           "Shrine",
	object.LargeChestRight:                  "LargeChestRight",
	object.LargeChestLeft:                   "LargeChestLeft",
	object.Barrel:                           "Barrel",
	object.Urn2:                             "Urn2",
	object.Bench:                            "Bench",
	object.CairnStoneAlpha:                  "CairnStoneAlpha",
	object.InifussTree:                      "InifussTree",
	object.Torch1Tiki:                       "Torch1Tiki",
	object.ForestAltar:                      "ForestAltar",
	object.HornShrine:                       "HornShrine",
	object.FloorBrazier:                     "FloorBrazier",
	object.ArmorStandRight:                  "ArmorStandRight",
	object.ArmorStandLeft:                   "ArmorStandLeft",
	object.WeaponRackRight:                  "WeaponRackRight",
	object.WeaponRackLeft:                   "WeaponRackLeft",
	object.WaypointPortal:                   "WaypointPortal",
	object.DesertShrine1:                    "DesertShrine1",
	object.DesertShrine2:                    "DesertShrine2",
	object.DesertShrine3:                    "DesertShrine3",
	object.DesertShrine4:                    "DesertShrine4",
	object.DesertShrine5:                    "DesertShrine5",
	object.Act2BrazierCeller:                "Act2BrazierCeller",
	object.MediumChestLeft:                  "MediumChestLeft",
	object.HoradricOrifice:                  "HoradricOrifice",
	object.Act2Waypoint:                     "Act2Waypoint",
	object.Act1WildernessWaypoint:           "Act1WildernessWaypoint",
	object.SmallFire:                        "SmallFire",
	object.HollowLog:                        "HollowLog",
	object.SteleDesertMagicShrine:           "SteleDesertMagicShrine",
	object.DeadVillager1:                    "DeadVillager1",
	object.DeadVillager2:                    "DeadVillager2",
	object.SkeletonCorpseIsAnOxymoron:       "SkeletonCorpseIsAnOxymoron",
	object.JungleStashObject1:               "JungleStashObject1",
	object.JungleStashObject2:               "JungleStashObject2",
	object.JungleStashObject3:               "JungleStashObject3",
	object.JungleStashObject4:               "JungleStashObject4",
	object.StashAltar:                       "StashAltar",
	object.StashBox:                         "StashBox",
	object.MephistoLair:                     "MephistoLair",
	object.JungleTorch:                      "JungleTorch",
	object.JungleMediumChestLeft:            "JungleMediumChestLeft",
	object.Basket1:                          "Basket1",
	object.Basket2:                          "Basket2",
	object.WirtCorpse:                       "WirtCorpse",
	object.Act3TownTorch:                    "Act3TownTorch",
	object.Act3KurastTorch:                  "Act3KurastTorch",
	object.ArcaneLargeChestLeft:             "ArcaneLargeChestLeft",
	object.ArcaneLargeChestRight:            "ArcaneLargeChestRight",
	object.ArcaneSmallChestLeft:             "ArcaneSmallChestLeft",
	object.ArcaneSmallChestRight:            "ArcaneSmallChestRight",
	object.Act3Waypoint:                     "Act3Waypoint",
	object.HoradricCubeChest:                "HoradricCubeChest",
	object.HoradricScrollChest:              "HoradricScrollChest",
	object.StaffOfKingsChest:                "StaffOfKingsChest",
	object.YetAnotherTome:                   "YetAnotherTome",
	object.MafistoLargeChestLeft:            "MafistoLargeChestLeft",
	object.MafistoLargeChestRight:           "MafistoLargeChestRight",
	object.HellForge:                        "HellForge",
	object.MafistoMediumChestLeft:           "MafistoMediumChestLeft",
	object.MafistoMediumChestRight:          "MafistoMediumChestRight",
	object.SpiderLairLargeChestLeft:         "SpiderLairLargeChestLeft",
	object.SpiderLairTallChestLeft:          "SpiderLairTallChestLeft",
	object.SpiderLairMediumChestRight:       "SpiderLairMediumChestRight",
	object.SpiderLairTallChestRight:         "SpiderLairTallChestRight",
	object.ExpansionArmorStandRight:         "ExpansionArmorStandRight",
	object.ExpansionArmorStandLeft:          "ExpansionArmorStandLeft",
	object.ExpansionWeaponRackRight:         "ExpansionWeaponRackRight",
	object.ExpansionWeaponRackLeft:          "ExpansionWeaponRackLeft",
	object.FrozenAnya:                       "FrozenAnya",
	object.NihlathakWildernessStartPosition: "NihlathakWildernessStartPosition",
	object.NotSoGoodChest:                   "NotSoGoodChest",
	object.GoodChest:                        "GoodChest",
	object.SparklyChest:                     "SparklyChest",
}

// objectLabels substitui o rótulo derivado do identificador.
var objectLabels = map[Object]string{
	object.YetAnotherTome:                   "Summoner",
	object.NihlathakWildernessStartPosition: "Nihlathak",
	object.FrozenAnya:                       "Anya",
	object.WirtCorpse:                       "Wirt's Body",
	object.CairnStoneAlpha:                  "Cairn Stones",
	object.InifussTree:                      "Tree of Inifuss",
	object.HoradricCubeChest:                "Horadric Cube",
	object.HoradricScrollChest:              "Horadric Scroll",
	object.StaffOfKingsChest:                "Staff of Kings",
	object.MephistoLair:                     "Mephisto's Chest",
	object.Torch1Tiki:                       "Tiki Torch",
}

var objectByIdent = func() map[string]Object {
	m := make(map[string]Object, len(objectIdents))
	for obj, ident := range objectIdents {
		m[ident] = obj
	}
	return m
}()

// IsWaypoint informa se o objeto é um waypoint (qualquer ato), segundo o d2go.
func IsWaypoint(o Object) bool {
	obj := data.Object{Name: o}
	return obj.IsWaypoint()
}

// knownObject informa se o objeto tem identificador.
func knownObject(o Object) bool {
	_, ok := objectIdents[o]
	return ok
}

// ObjectName retorna o nome exibido do objeto. Objetos sem identificador viram o id bruto.
func ObjectName(o Object) string {
	if label, ok := objectLabels[o]; ok {
		return label
	}
	if ident, ok := objectIdents[o]; ok {
		return labelFromIdent(ident)
	}
	return strconv.Itoa(int(o))
}

// labelFromIdent separa as palavras e descarta o número de variante: "DesertShrine3" vira "Desert Shrine".
func labelFromIdent(ident string) string {
	ident = strings.TrimRightFunc(ident, unicode.IsDigit)
	var b strings.Builder
	for i, r := range ident {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ObjectIdent retorna o identificador do objeto (ex: "HoradricOrifice").
func ObjectIdent(o Object) string {
	if ident, ok := objectIdents[o]; ok {
		return ident
	}
	return strconv.Itoa(int(o))
}

// ParseObject converte o identificador (ou o id numérico) em Object.
func ParseObject(s string) (Object, error) {
	if o, ok := objectByIdent[s]; ok {
		return o, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Object(n), nil
	}
	return ObjectNone, fmt.Errorf("objeto %q: %w", s, ErrUnknownName)
}

// ObjectIdents lista os identificadores de objeto, em ordem alfabética.
func ObjectIdents() []string {
	out := make([]string, 0, len(objectByIdent))
	for ident := range objectByIdent {
		out = append(out, ident)
	}
	sort.Strings(out)
	return out
}
