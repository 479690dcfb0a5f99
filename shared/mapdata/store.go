package mapdata

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"MapVision/shared/game"

	"golang.org/x/sync/singleflight"
)

// CachedProvider guarda em memória os snapshots já buscados na sessão atual e,
// opcionalmente, os persiste num SnapshotStore para a próxima execução.
// Chamadas concorrentes para a mesma área resultam numa única busca na fonte.
type CachedProvider struct {
	Mu sync.RWMutex

	// LoadTimeout limita a busca compartilhada, que não herda o cancelamento de
	// nenhum chamador. Zero usa DefaultLoadTimeout.
	LoadTimeout time.Duration

	source  Provider
	persist SnapshotStore // pode ser nil
	session Session

	// areas armazena os snapshots da sessão atual
	areas map[game.Area]*AreaData

	group singleflight.Group
}

// DefaultLoadTimeout é o limite padrão de uma busca compartilhada na fonte.
const DefaultLoadTimeout = 30 * time.Second

// NewCachedProvider cria o cache sobre source. persist pode ser nil.
func NewCachedProvider(source Provider, persist SnapshotStore) *CachedProvider {
	return &CachedProvider{
		LoadTimeout: DefaultLoadTimeout,
		source:      source,
		persist:     persist,
		areas:       make(map[game.Area]*AreaData),
	}
}

// Session retorna a sessão atual do cache.
func (c *CachedProvider) Session() Session {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.session
}

// SetSession troca a partida corrente. Snapshots em memória de outra sessão são descartados.
func (c *CachedProvider) SetSession(session Session) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	if c.session == session {
		return
	}
	log.Printf("[Cache] Nova sessão %s (descartando %d áreas)", session, len(c.areas))
	c.session = session
	c.areas = make(map[game.Area]*AreaData)
}

// GetAreaData retorna o snapshot da memória, do store persistente ou da fonte, nessa ordem.
//
// A busca é compartilhada entre chamadores da mesma área e roda com o contexto
// do primeiro sem o cancelamento dele: quem desiste recebe ctx.Err() e os
// demais continuam esperando o resultado.
func (c *CachedProvider) GetAreaData(ctx context.Context, area game.Area) (*AreaData, error) {
	c.Mu.RLock()
	session := c.session
	data, ok := c.areas[area]
	c.Mu.RUnlock()
	if ok {
		return data, nil
	}

	key := fmt.Sprintf("%s/%d", session, area)
	ch := c.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout())
		defer cancel()
		return c.load(loadCtx, session, area)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*AreaData), nil
	}
}

func (c *CachedProvider) loadTimeout() time.Duration {
	if c.LoadTimeout <= 0 {
		return DefaultLoadTimeout
	}
	return c.LoadTimeout
}

func (c *CachedProvider) load(ctx context.Context, session Session, area game.Area) (*AreaData, error) {
	// Outra busca pode ter terminado entre o RUnlock e o Do
	c.Mu.RLock()
	data, ok := c.areas[area]
	c.Mu.RUnlock()
	if ok && c.Session() == session {
		return data, nil
	}

	if c.persist != nil {
		data, err := c.persist.LoadSnapshot(session, area)
		if err == nil {
			c.put(session, data)
			return data, nil
		}
		if !errors.Is(err, ErrSnapshotNotFound) {
			// Falha do store vira cache miss; a fonte ainda pode responder
			log.Printf("[Cache] Erro ao ler snapshot %s/%s do store: %v", session, game.AreaIdent(area), err)
		}
	}

	data, err := c.source.GetAreaData(ctx, area)
	if err != nil {
		return nil, err
	}

	if c.persist != nil {
		if err := c.persist.SaveSnapshot(session, data); err != nil {
			log.Printf("[Cache] Erro ao persistir snapshot %s/%s: %v", session, game.AreaIdent(area), err)
		}
	}
	c.put(session, data)
	return data, nil
}

// put só grava se a sessão não mudou durante a busca.
func (c *CachedProvider) put(session Session, data *AreaData) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	if c.session != session {
		return
	}
	c.areas[data.Area] = data
}

// Len retorna quantas áreas estão em memória.
func (c *CachedProvider) Len() int {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return len(c.areas)
}

// Purge descarta todos os snapshots em memória. O store persistente não é afetado.
func (c *CachedProvider) Purge() {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.areas = make(map[game.Area]*AreaData)
}
