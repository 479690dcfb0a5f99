package mapdata

import (
	"context"
	"errors"

	"MapVision/shared/game"
)

// ErrAreaUnavailable indica que o provedor não tem dados para a área pedida
// (área inacessível ou ainda não carregada).
var ErrAreaUnavailable = errors.New("dados da área indisponíveis")

// Provider entrega o snapshot de uma área. Implementações precisam aceitar
// chamadas concorrentes: a desambiguação de tumbas consulta várias áreas ao mesmo tempo.
type Provider interface {
	GetAreaData(ctx context.Context, area game.Area) (*AreaData, error)
}

// ProviderFunc adapta uma função comum para a interface Provider.
type ProviderFunc func(ctx context.Context, area game.Area) (*AreaData, error)

// GetAreaData chama f(ctx, area).
func (f ProviderFunc) GetAreaData(ctx context.Context, area game.Area) (*AreaData, error) {
	return f(ctx, area)
}

// StaticProvider serve snapshots já montados em memória. Útil para replays e testes.
type StaticProvider map[game.Area]*AreaData

// GetAreaData retorna o snapshot registrado ou ErrAreaUnavailable.
func (p StaticProvider) GetAreaData(_ context.Context, area game.Area) (*AreaData, error) {
	if data, ok := p[area]; ok {
		return data, nil
	}
	return nil, ErrAreaUnavailable
}
