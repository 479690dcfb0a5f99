package poi

import (
	"bytes"
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"MapVision/shared/game"
	"MapVision/shared/mapdata"

	"github.com/hectorgimenez/d2go/pkg/data/area"
	"github.com/hectorgimenez/d2go/pkg/data/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func areaWith(id game.Area, objects map[game.Object][]mapdata.Point, levels ...mapdata.AdjacentLevel) *mapdata.AreaData {
	d := mapdata.NewAreaData(id)
	for k, v := range objects {
		d.Objects[k] = v
	}
	for _, l := range levels {
		d.AdjacentLevels[l.Area] = l
	}
	return d
}

func level(id game.Area, exits ...mapdata.Point) mapdata.AdjacentLevel {
	return mapdata.AdjacentLevel{Area: id, Exits: exits}
}

func countCategory(pois []PointOfInterest, c Category) int {
	n := 0
	for _, p := range pois {
		if p.Category == c {
			n++
		}
	}
	return n
}

func TestClassifyPrecedence(t *testing.T) {
	reg := NewRegistry(DefaultRules())

	tests := []struct {
		obj  game.Object
		want Category
	}{
		{object.Act2Waypoint, Waypoint},
		{object.WaypointPortal, Waypoint},
		{object.HoradricOrifice, Quest},
		{object.GoodChest, SuperChest},
		{object.NotSoGoodChest, NormalChest},
		{object.HollowLog, CommonContainer},
		{object.WeaponRackLeft, ArmorWeaponRack},
		{object.DesertShrine3, Shrine},
		{object.JungleTorch, Skip},
		{object.Barrel, Debug},
		{game.Object(9999), Debug},
	}
	for _, tt := range tests {
		t.Run(game.ObjectIdent(tt.obj), func(t *testing.T) {
			assert.Equal(t, tt.want, reg.Classify(tt.obj))
		})
	}
}

func TestCategoriesAreDrawable(t *testing.T) {
	cats := Categories()
	assert.NotContains(t, cats, Skip)
	assert.Len(t, cats, int(Skip))
	for _, c := range cats {
		assert.NotContains(t, c.String(), "Category(")
	}
}

func TestClassifyWaypointBeatsSets(t *testing.T) {
	rules := DefaultRules()
	rules.SkipObjects = append(rules.SkipObjects, object.Act2Waypoint)
	rules.QuestObjects = append(rules.QuestObjects, object.Act3Waypoint)

	reg := NewRegistry(rules)
	assert.Equal(t, Waypoint, reg.Classify(object.Act2Waypoint))
	assert.Equal(t, Waypoint, reg.Classify(object.Act3Waypoint))
}

func TestAssembleEmptyArea(t *testing.T) {
	pois, err := Assemble(context.Background(), mapdata.NewAreaData(area.Travincal), nil)
	require.NoError(t, err)
	assert.Empty(t, pois)
}

func TestAssembleObjectRules(t *testing.T) {
	pts := []mapdata.Point{{1, 2}, {3, 4}, {5, 6}}
	current := areaWith(area.Travincal, map[game.Object][]mapdata.Point{
		object.Act3Waypoint:    pts,
		object.HellForge:       pts,
		object.SparklyChest:    pts,
		object.MediumChestLeft: pts,
		object.StashBox:        pts,
		object.ArmorStandLeft:  pts,
		object.Shrine:          pts,
		object.Act3TownTorch:   pts,
		object.Barrel:          pts,
		object.Bench:           {},
	})

	pois, err := Assemble(context.Background(), current, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, countCategory(pois, Waypoint))
	assert.Equal(t, 1, countCategory(pois, Quest))
	for _, c := range []Category{SuperChest, NormalChest, CommonContainer, ArmorWeaponRack, Shrine, Debug} {
		assert.Equal(t, len(pts), countCategory(pois, c), c.String())
	}
	assert.Equal(t, 2+6*len(pts), len(pois))

	for _, p := range pois {
		assert.NotEqual(t, object.Act3TownTorch, p.Object, "objeto de skip não gera POI")
		assert.NotEqual(t, object.Bench, p.Object, "lista vazia não gera POI")
		switch p.Category {
		case Waypoint, Quest:
			assert.Equal(t, pts[0], p.Position)
		case Debug:
			assert.Equal(t, "7", p.Label)
		}
	}
}

func TestAssembleOrdersObjectsById(t *testing.T) {
	current := areaWith(area.Travincal, map[game.Object][]mapdata.Point{
		object.GoodChest: {{9, 9}},
		object.Shrine:    {{1, 1}},
		object.HollowLog: {{5, 5}},
	})

	pois, err := Assemble(context.Background(), current, nil)
	require.NoError(t, err)
	require.Len(t, pois, 3)
	assert.Equal(t, []game.Object{object.Shrine, object.HollowLog, object.GoodChest},
		[]game.Object{pois[0].Object, pois[1].Object, pois[2].Object})
	assert.Equal(t, "Shrine", pois[0].Label)
}

func TestSkipObjectsNeverEmitted(t *testing.T) {
	for _, obj := range DefaultRules().SkipObjects {
		current := areaWith(area.RogueEncampment, map[game.Object][]mapdata.Point{obj: {{1, 1}, {2, 2}}})
		pois, err := Assemble(context.Background(), current, nil)
		require.NoError(t, err)
		assert.Empty(t, pois, game.ObjectIdent(obj))
	}
}

func TestResolveTransitionsForwardOnly(t *testing.T) {
	a3, a9 := game.Area(3), game.Area(9)

	current := areaWith(game.Area(6), nil,
		level(a3, mapdata.Point{X: 1, Y: 1}, mapdata.Point{X: 2, Y: 2}),
		level(a9, mapdata.Point{X: 90, Y: 91}, mapdata.Point{X: 92, Y: 93}))

	pois := ResolveTransitions(current)
	require.Len(t, pois, 3)
	assert.Equal(t, NextArea, pois[0].Category)
	assert.Equal(t, a9, pois[0].Target)
	assert.Equal(t, mapdata.Point{X: 90, Y: 91}, pois[0].Position)
	assert.Equal(t, game.AreaName(a9), pois[0].Label)
	assert.Equal(t, 2, countCategory(pois, PreviousArea))

	// Área atual com id maior que todas as vizinhas: sem NextArea
	current.Area = game.Area(10)
	pois = ResolveTransitions(current)
	assert.Zero(t, countCategory(pois, NextArea))
	assert.Equal(t, 2, countCategory(pois, PreviousArea), "a vizinha mais alta nunca vira PreviousArea")
}

func TestResolveTransitionsWithoutExits(t *testing.T) {
	current := areaWith(game.Area(6), nil, level(game.Area(3)), level(game.Area(9)))
	assert.Empty(t, ResolveTransitions(current))
	assert.Empty(t, ResolveTransitions(mapdata.NewAreaData(game.Area(6))))
}

// tombWorld monta o cânion com as sete tumbas; marked recebe o marcador.
func tombWorld(marked game.Area, returnExit bool) (*mapdata.AreaData, mapdata.StaticProvider) {
	hub := DefaultRules().Hubs[0]
	provider := mapdata.StaticProvider{}
	var levels []mapdata.AdjacentLevel
	for i, tomb := range hub.Candidates {
		data := mapdata.NewAreaData(tomb)
		data.Objects[object.Shrine] = []mapdata.Point{{i, i}}
		if tomb == marked {
			data.Objects[hub.Marker] = []mapdata.Point{{100, 100}}
		}
		provider[tomb] = data

		l := level(tomb, mapdata.Point{X: 10 * i, Y: 10*i + 1})
		if tomb == marked && !returnExit {
			l = level(tomb)
		}
		levels = append(levels, l)
	}
	levels = append(levels, level(area.ValleyOfSnakes, mapdata.Point{X: 1, Y: 1}))
	return areaWith(area.CanyonOfTheMagi, nil, levels...), provider
}

func TestAssembleHubPicksMarkedTomb(t *testing.T) {
	canyon, provider := tombWorld(area.TalRashasTomb5, true)

	pois, err := Assemble(context.Background(), canyon, provider)
	require.NoError(t, err)
	require.Len(t, pois, 1, "só o POI canônico, sem PreviousArea")
	assert.Equal(t, NextArea, pois[0].Category)
	assert.Equal(t, area.TalRashasTomb5, pois[0].Target)
	assert.Equal(t, canyon.ExitsTo(area.TalRashasTomb5)[0], pois[0].Position)
}

func TestAssembleHubWithoutMarker(t *testing.T) {
	canyon, provider := tombWorld(game.AreaNone, true)
	pois, err := Assemble(context.Background(), canyon, provider)
	require.NoError(t, err)
	assert.Zero(t, countCategory(pois, NextArea))
}

func TestAssembleHubWithoutReturnExit(t *testing.T) {
	canyon, provider := tombWorld(area.TalRashasTomb2, false)
	pois, err := Assemble(context.Background(), canyon, provider)
	require.NoError(t, err)
	assert.Zero(t, countCategory(pois, NextArea))
}

func TestAssembleHubNilFetch(t *testing.T) {
	canyon, _ := tombWorld(area.TalRashasTomb2, true)
	pois, err := Assemble(context.Background(), canyon, nil)
	require.NoError(t, err)
	assert.Empty(t, pois)
}

func TestAssembleIsIdempotent(t *testing.T) {
	canyon, provider := tombWorld(area.TalRashasTomb7, true)
	canyon.Objects[object.Shrine] = []mapdata.Point{{1, 1}, {2, 2}}
	canyon.Objects[object.Barrel] = []mapdata.Point{{3, 3}}
	canyon.Objects[object.Act2Waypoint] = []mapdata.Point{{4, 4}, {5, 5}}

	first, err := Assemble(context.Background(), canyon, provider)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Assemble(context.Background(), canyon, provider)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestResolveCanonicalSwallowsCandidateFailures(t *testing.T) {
	_, provider := tombWorld(area.TalRashasTomb6, true)
	failing := mapdata.ProviderFunc(func(ctx context.Context, id game.Area) (*mapdata.AreaData, error) {
		if id == area.TalRashasTomb1 || id == area.TalRashasTomb3 {
			return nil, errors.New("falha de leitura")
		}
		return provider.GetAreaData(ctx, id)
	})

	hub := DefaultRules().Hubs[0]
	got, ok, err := ResolveCanonical(context.Background(), hub.Candidates, hub.Marker, failing, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, area.TalRashasTomb6, got)

	allFail := mapdata.ProviderFunc(func(context.Context, game.Area) (*mapdata.AreaData, error) {
		return nil, mapdata.ErrAreaUnavailable
	})
	_, ok, err = ResolveCanonical(context.Background(), hub.Candidates, hub.Marker, allFail, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolveCanonicalLogsCandidateIdent(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	_, provider := tombWorld(game.AreaNone, true)
	failing := mapdata.ProviderFunc(func(ctx context.Context, id game.Area) (*mapdata.AreaData, error) {
		if id == area.TalRashasTomb3 {
			return nil, errors.New("falha de leitura")
		}
		return provider.GetAreaData(ctx, id)
	})

	hub := DefaultRules().Hubs[0]
	_, ok, err := ResolveCanonical(context.Background(), hub.Candidates, hub.Marker, failing, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "Falha ao buscar TalRashasTomb3")
	assert.NotContains(t, buf.String(), "TalRashasTomb4")
}

func TestResolveCanonicalAmbiguousPicksOne(t *testing.T) {
	_, provider := tombWorld(area.TalRashasTomb1, true)
	hub := DefaultRules().Hubs[0]
	provider[area.TalRashasTomb4].Objects[hub.Marker] = []mapdata.Point{{1, 1}}

	got, ok, err := ResolveCanonical(context.Background(), hub.Candidates, hub.Marker, provider, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, []game.Area{area.TalRashasTomb1, area.TalRashasTomb4}, got)
}

func TestResolveCanonicalCancelled(t *testing.T) {
	hub := DefaultRules().Hubs[0]
	blocking := mapdata.ProviderFunc(func(ctx context.Context, _ game.Area) (*mapdata.AreaData, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, ok, err := ResolveCanonical(ctx, hub.Candidates, hub.Marker, blocking, 0)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	canyon, _ := tombWorld(game.AreaNone, true)
	_, err = Assemble(ctx, canyon, blocking)
	assert.Error(t, err)
}

func TestResolveCanonicalNonPositiveLimitIsSequential(t *testing.T) {
	hub := DefaultRules().Hubs[0]
	_, provider := tombWorld(area.TalRashasTomb7, true)

	for _, limit := range []int{0, -3} {
		var inFlight, peak atomic.Int32
		tracking := mapdata.ProviderFunc(func(ctx context.Context, id game.Area) (*mapdata.AreaData, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			return provider.GetAreaData(ctx, id)
		})

		got, ok, err := ResolveCanonical(context.Background(), hub.Candidates, hub.Marker, tracking, limit)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, area.TalRashasTomb7, got)
		assert.Equal(t, int32(1), peak.Load(), "limit %d", limit)
	}
}

func TestResolveCanonicalUnderRandomLatency(t *testing.T) {
	hub := DefaultRules().Hubs[0]

	for run := 0; run < 1000; run++ {
		want := hub.Candidates[run%len(hub.Candidates)]
		_, provider := tombWorld(want, true)

		jittery := mapdata.ProviderFunc(func(ctx context.Context, id game.Area) (*mapdata.AreaData, error) {
			select {
			case <-time.After(time.Duration(rand.IntN(200)) * time.Microsecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return provider.GetAreaData(ctx, id)
		})

		got, ok, err := ResolveCanonical(context.Background(), hub.Candidates, hub.Marker, jittery, 4)
		require.NoError(t, err)
		require.True(t, ok, "run %d", run)
		require.Equal(t, want, got, "run %d", run)
	}
}

func TestParseRules(t *testing.T) {
	doc := []byte(`
shrines: ["DesertShrine*", "Shrine"]
skip: ["Barrel", "JungleTorch"]
hubs:
  - hub: CanyonOfTheMagi
    marker: HoradricOrifice
    candidates: [TalRashasTomb1, TalRashasTomb2]
`)
	rules, err := ParseRules(doc)
	require.NoError(t, err)

	assert.ElementsMatch(t, []game.Object{
		object.DesertShrine1, object.DesertShrine2, object.DesertShrine3, object.DesertShrine4, object.DesertShrine5, object.Shrine,
	}, rules.Shrines)
	assert.Equal(t, DefaultRules().QuestObjects, rules.QuestObjects, "seção ausente mantém o padrão")
	require.Len(t, rules.Hubs, 1)
	assert.Equal(t, []game.Area{area.TalRashasTomb1, area.TalRashasTomb2}, rules.Hubs[0].Candidates)

	reg := NewRegistry(rules)
	assert.Equal(t, Skip, reg.Classify(object.Barrel))
	assert.Equal(t, Debug, reg.Classify(object.HornShrine))
}

func TestParseRulesRejectsBadInput(t *testing.T) {
	tests := map[string]string{
		"nome desconhecido":  `quest: [NaoExiste]`,
		"curinga sem match":  `shrines: ["Xyz*"]`,
		"duas categorias":    `skip: [GoodChest]`,
		"hub repetido":       "hubs:\n  - {hub: CanyonOfTheMagi, marker: HoradricOrifice, candidates: [TalRashasTomb1]}\n  - {hub: CanyonOfTheMagi, marker: HoradricOrifice, candidates: [TalRashasTomb2]}",
		"hub sem candidatas": "hubs:\n  - {hub: CanyonOfTheMagi, marker: HoradricOrifice}",
		"hub sem marcador":   "hubs:\n  - {hub: CanyonOfTheMagi, candidates: [TalRashasTomb1]}",
		"yaml inválido":      `quest: [`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRules([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadRulesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("skip: [Barrel]\n"), 0644))

	rules, err := LoadRules(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []game.Object{object.Barrel}, rules.SkipObjects)

	_, err = LoadRules(context.Background(), filepath.Join(t.TempDir(), "nada.yaml"))
	assert.Error(t, err)
}

func TestDefaultRulesAreValid(t *testing.T) {
	assert.NoError(t, DefaultRules().Validate())
}
