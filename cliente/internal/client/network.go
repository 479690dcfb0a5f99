package client

import (
	"fmt"
	"log"
	"sync"
	"time"

	"MapVision/shared/game"
	"MapVision/shared/mapdata"
	"MapVision/shared/poi"
	"MapVision/shared/proto/poinet"

	"github.com/gorilla/websocket"
)

// AreaPOIs é a última lista de POIs recebida do servidor.
type AreaPOIs struct {
	Area    game.Area
	Session mapdata.Session
	Points  []poi.PointOfInterest
}

// NetworkClient lida com a comunicação com o servidor MapVision
type NetworkClient struct {
	conn      *websocket.Conn
	url       string
	connected bool
	mu        sync.RWMutex
	writeMu   sync.Mutex

	current *AreaPOIs
	status  string

	// Callbacks para o App (chamados na goroutine de leitura)
	OnPOIs   func(pois *AreaPOIs)
	OnStatus func(status *poinet.ServerStatus)

	// MaxRetries e RetryDelay controlam a espera pelo servidor em Connect
	MaxRetries int
	RetryDelay time.Duration
}

func NewNetworkClient(url string) *NetworkClient {
	return &NetworkClient{
		url:        url,
		MaxRetries: 10,
		RetryDelay: 2 * time.Second,
	}
}

func (c *NetworkClient) Connect() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	var (
		conn *websocket.Conn
		err  error
	)
	for i := 0; i < c.MaxRetries; i++ {
		log.Printf("[Network] Tentativa de conexão %d/%d em %s...", i+1, c.MaxRetries, c.url)
		conn, _, err = dialer.Dial(c.url, nil)
		if err == nil {
			break
		}
		log.Printf("[Network] Servidor ainda não está pronto: %v. Aguardando...", err)
		time.Sleep(c.RetryDelay)
	}
	if conn == nil {
		if err == nil {
			err = fmt.Errorf("nenhuma tentativa de conexão")
		}
		log.Printf("[Network] ERRO CRÍTICO após %d tentativas: %v", c.MaxRetries, err)
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readLoop(conn)
	return nil
}

func (c *NetworkClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Current retorna a última lista de POIs recebida (nil antes da primeira).
func (c *NetworkClient) Current() *AreaPOIs {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Status retorna a última mensagem de status do servidor.
func (c *NetworkClient) Status() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// RequestArea pede os POIs de uma área específica (ex: pré-visualizar a próxima).
func (c *NetworkClient) RequestArea(area game.Area) {
	c.Send(&poinet.RequestArea{Area: int32(area)})
}

func (c *NetworkClient) Send(msg poinet.Message) {
	c.mu.RLock()
	conn, connected := c.conn, c.connected
	c.mu.RUnlock()
	if !connected {
		return
	}

	c.writeMu.Lock()
	err := conn.WriteMessage(websocket.BinaryMessage, poinet.Wrap(msg))
	c.writeMu.Unlock()

	if err != nil {
		log.Printf("[Network] Erro ao enviar mensagem: %v", err)
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}
}

// Close encerra a conexão.
func (c *NetworkClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *NetworkClient) readLoop(conn *websocket.Conn) {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		conn.Close()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Printf("[Network] Conexão perdida: %v", err)
			return
		}

		env, err := poinet.Open(message)
		if err != nil {
			log.Printf("[Network] Erro ao desempacotar envelope: %v", err)
			continue
		}
		c.handleMessage(env)
	}
}

func (c *NetworkClient) handleMessage(env *poinet.Envelope) {
	switch env.Type {
	case poinet.MsgServerStatus:
		var status poinet.ServerStatus
		if err := env.Decode(&status); err != nil {
			log.Printf("[Network] Status inválido: %v", err)
			return
		}
		c.mu.Lock()
		c.status = status.Message
		c.mu.Unlock()
		if c.OnStatus != nil {
			c.OnStatus(&status)
		}
	case poinet.MsgPOIList:
		var list poinet.POIList
		if err := env.Decode(&list); err != nil {
			log.Printf("[Network] Lista de POIs inválida: %v", err)
			return
		}
		pois := &AreaPOIs{
			Area:    game.Area(list.Area),
			Session: list.Session(),
			Points:  list.PointsOfInterest(),
		}
		log.Printf("[Network] %d POIs recebidos para %s", len(pois.Points), game.AreaName(pois.Area))

		c.mu.Lock()
		c.current = pois
		c.mu.Unlock()
		if c.OnPOIs != nil {
			c.OnPOIs(pois)
		}
	}
}
