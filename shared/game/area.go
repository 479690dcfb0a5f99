// Package game adapta a taxonomia do d2go (áreas, objetos e dificuldades) ao
// MapVision: nomes exibidos no overlay, identificadores usados nos arquivos de
// regras e o predicado de waypoint.
package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/hectorgimenez/d2go/pkg/data/area"
)

// ErrUnknownName é retornado quando um nome não corresponde a nenhuma área/objeto.
var ErrUnknownName = errors.New("nome desconhecido")

// Area é o id de área do d2go. A ordem numérica acompanha a progressão do jogo
// e é usada como critério de desempate para "próxima área".
type Area = area.ID

// AreaNone é o id zero, sem área.
const AreaNone Area = 0

// maxAreaID limita a varredura do catálogo do d2go.
const maxAreaID Area = 255

// areaCatalog guarda os identificadores derivados dos nomes do d2go.
// Nomes repetidos (as sete tumbas de Tal Rasha) ganham um sufixo ordinal em ordem de id.
type areaCatalog struct {
	idents  map[Area]string
	byIdent map[string]Area // chave em minúsculas
	order   []Area
}

var areas = buildAreaCatalog()

func buildAreaCatalog() *areaCatalog {
	bases := make(map[Area]string)
	count := make(map[string]int)
	var order []Area
	for id := AreaNone + 1; id <= maxAreaID; id++ {
		name := id.Area().Name
		if name == "" {
			continue
		}
		base := identFromName(name)
		bases[id] = base
		count[base]++
		order = append(order, id)
	}

	c := &areaCatalog{
		idents:  make(map[Area]string, len(order)),
		byIdent: make(map[string]Area, len(order)),
		order:   order,
	}
	seen := make(map[string]int)
	for _, id := range order {
		ident := bases[id]
		if count[ident] > 1 {
			seen[ident]++
			sep := ""
			if last := ident[len(ident)-1]; last >= '0' && last <= '9' {
				sep = "_"
			}
			ident = ident + sep + strconv.Itoa(seen[ident])
		}
		c.idents[id] = ident
		c.byIdent[strings.ToLower(ident)] = id
	}
	return c
}

// identFromName transforma "Tal Rasha's Tomb" em "TalRashasTomb".
func identFromName(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if upper {
				r = unicode.ToUpper(r)
				upper = false
			}
			b.WriteRune(r)
		case r == '\'':
		default:
			upper = true
		}
	}
	return b.String()
}

// KnownArea informa se o id existe no catálogo do d2go.
func KnownArea(a Area) bool {
	_, ok := areas.idents[a]
	return ok
}

// AreaName retorna o nome exibido da área. Áreas fora do catálogo viram "Area <id>".
func AreaName(a Area) string {
	if name := a.Area().Name; name != "" {
		return name
	}
	return "Area " + strconv.Itoa(int(a))
}

// AreaIdent retorna o identificador da área (ex: "CanyonOfTheMagi", "TalRashasTomb3").
func AreaIdent(a Area) string {
	if ident, ok := areas.idents[a]; ok {
		return ident
	}
	return strconv.Itoa(int(a))
}

// ParseArea converte o identificador (sem diferenciar maiúsculas) ou o id numérico em Area.
func ParseArea(s string) (Area, error) {
	if a, ok := areas.byIdent[strings.ToLower(s)]; ok {
		return a, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Area(n), nil
	}
	return AreaNone, fmt.Errorf("área %q: %w", s, ErrUnknownName)
}

// areaIdents lista os identificadores de área conhecidos, em ordem de id.
func areaIdents() []string {
	out := make([]string, len(areas.order))
	for i, id := range areas.order {
		out[i] = areas.idents[id]
	}
	return out
}
