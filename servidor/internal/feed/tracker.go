package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"MapVision/shared/game"
	"MapVision/shared/mapdata"
	"MapVision/shared/poi"
	"MapVision/shared/proto/poinet"

	"github.com/viant/afs"
)

// CurrentArea é o arquivo escrito pelo leitor do jogo com a posição do jogador.
type CurrentArea struct {
	Area       game.Area `json:"area"`
	Seed       uint32    `json:"seed"`
	Difficulty int       `json:"difficulty"` // 0 Normal, 1 Nightmare, 2 Hell
}

// Session retorna a sessão correspondente.
func (c CurrentArea) Session() mapdata.Session {
	d, _ := game.DifficultyAt(c.Difficulty)
	return mapdata.Session{Seed: c.Seed, Difficulty: d}
}

// Publisher recebe os frames gerados pelo Tracker. Publish guarda o frame como
// estado atual; Broadcast só avisa quem já está conectado.
type Publisher interface {
	Publish(frame []byte)
	Broadcast(frame []byte)
}

// Tracker acompanha a área atual do jogador e publica a lista de POIs sempre
// que ela muda (área, sessão ou conteúdo).
type Tracker struct {
	fs         afs.Service
	currentURL string
	cache      *mapdata.CachedProvider
	assembler  *poi.Assembler
	out        Publisher
	interval   time.Duration

	lastFingerprint uint64
	lastErr         string
}

// NewTracker cria o tracker. currentURL aceita qualquer URL suportada pelo afs.
func NewTracker(currentURL string, cache *mapdata.CachedProvider, assembler *poi.Assembler, out Publisher, interval time.Duration) *Tracker {
	return &Tracker{
		fs:         afs.New(),
		currentURL: currentURL,
		cache:      cache,
		assembler:  assembler,
		out:        out,
		interval:   interval,
	}
}

// Run consulta a área atual a cada intervalo até ctx ser cancelado.
func (t *Tracker) Run(ctx context.Context) {
	log.Printf("[Tracker] Acompanhando %s a cada %v", t.currentURL, t.interval)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		t.pollSafe(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (t *Tracker) pollSafe(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Tracker] Recuperado de pânico: %v", r)
		}
	}()

	_, err := t.Poll(ctx)
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	// Erros repetidos (arquivo ainda não existe, área sem snapshot) são logados e avisados uma vez
	if msg != t.lastErr {
		if msg != "" {
			log.Printf("[Tracker] %s", msg)
			t.out.Broadcast(poinet.Wrap(t.status(msg)))
		} else if t.lastErr != "" {
			log.Printf("[Tracker] Recuperado")
		}
		t.lastErr = msg
	}
}

// Poll lê a área atual, monta os POIs e publica o frame se ele mudou.
// Retorna true quando publicou.
func (t *Tracker) Poll(ctx context.Context) (bool, error) {
	current, err := t.ReadCurrent(ctx)
	if err != nil {
		return false, err
	}
	t.cache.SetSession(current.Session())

	frame, err := t.Frame(ctx, current.Area)
	if err != nil {
		return false, err
	}

	fp := poinet.Fingerprint(frame)
	if fp == t.lastFingerprint {
		return false, nil
	}
	t.lastFingerprint = fp
	t.out.Publish(frame)
	return true, nil
}

// ReadCurrent lê e decodifica o arquivo de área atual.
func (t *Tracker) ReadCurrent(ctx context.Context) (*CurrentArea, error) {
	data, err := t.fs.DownloadWithURL(ctx, t.currentURL)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler área atual: %w", err)
	}
	var current CurrentArea
	if err := json.Unmarshal(data, &current); err != nil {
		return nil, fmt.Errorf("área atual inválida: %w", err)
	}
	if !game.KnownArea(current.Area) {
		return nil, fmt.Errorf("área atual desconhecida: %d", current.Area)
	}
	if _, ok := game.DifficultyAt(current.Difficulty); !ok {
		return nil, fmt.Errorf("dificuldade inválida: %d", current.Difficulty)
	}
	return &current, nil
}

// Frame monta o frame POIList de uma área na sessão atual do cache.
func (t *Tracker) Frame(ctx context.Context, area game.Area) ([]byte, error) {
	data, err := t.cache.GetAreaData(ctx, area)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", game.AreaName(area), err)
	}
	pois, err := t.assembler.Assemble(ctx, data, t.cache)
	if err != nil {
		return nil, err
	}
	return poinet.Wrap(poinet.NewPOIList(area, t.cache.Session(), pois)), nil
}

// HandleMessage responde aos pedidos dos clientes (MessageHandler do Hub).
func (t *Tracker) HandleMessage(env *poinet.Envelope, reply func(frame []byte) error) {
	if env.Type != poinet.MsgRequestArea {
		return
	}
	var req poinet.RequestArea
	if err := env.Decode(&req); err != nil {
		log.Printf("[Network] Erro ao ler RequestArea: %v", err)
		return
	}

	area := game.Area(req.Area)
	log.Printf("[Network] Cliente pediu %s", game.AreaName(area))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	frame, err := t.Frame(ctx, area)
	if err != nil {
		frame = poinet.Wrap(t.status(err.Error()))
	}
	if err := reply(frame); err != nil {
		log.Printf("[Network] Erro ao responder cliente: %v", err)
	}
}

func (t *Tracker) status(msg string) *poinet.ServerStatus {
	return &poinet.ServerStatus{
		Session:     t.cache.Session().String(),
		CachedAreas: int32(t.cache.Len()),
		Message:     msg,
	}
}
