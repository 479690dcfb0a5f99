package poi

import (
	"context"
	"log"
	"sync/atomic"

	"MapVision/shared/game"
	"MapVision/shared/mapdata"

	"golang.org/x/sync/errgroup"
)

// ResolveCanonical descobre qual das áreas candidatas contém o objeto marker.
//
// As candidatas são buscadas em paralelo, no máximo limit ao mesmo tempo. limit < 1
// vira 1 (busca sequencial). A primeira busca que encontrar o marcador vence e as restantes são
// canceladas. Falha ao buscar uma candidata conta apenas como "não tem o marcador".
// O erro só é retornado quando ctx é cancelado antes de haver um vencedor.
func ResolveCanonical(ctx context.Context, candidates []game.Area, marker game.Object, fetch mapdata.Provider, limit int) (game.Area, bool, error) {
	if len(candidates) == 0 || fetch == nil {
		return game.AreaNone, false, nil
	}

	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		hits   atomic.Int32
		winner game.Area
	)

	var g errgroup.Group
	g.SetLimit(max(limit, 1))

	for _, candidate := range candidates {
		g.Go(func() error {
			if searchCtx.Err() != nil {
				return nil
			}

			data, err := fetch.GetAreaData(searchCtx, candidate)
			if err != nil {
				if searchCtx.Err() == nil {
					log.Printf("[Tomb] Falha ao buscar %s, ignorando candidata: %v", game.AreaIdent(candidate), err)
				}
				return nil
			}
			if data == nil || !data.HasObject(marker) {
				return nil
			}

			// Só o primeiro acerto grava o vencedor
			if hits.Add(1) == 1 {
				winner = candidate
				cancel()
				return nil
			}
			log.Printf("[Tomb] AVISO: %s também contém %s; mantendo o primeiro resultado", game.AreaIdent(candidate), game.ObjectIdent(marker))
			return nil
		})
	}
	g.Wait()

	if hits.Load() > 0 {
		return winner, true, nil
	}
	if err := ctx.Err(); err != nil {
		return game.AreaNone, false, err
	}
	return game.AreaNone, false, nil
}
