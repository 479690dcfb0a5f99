// Package feed distribui as listas de POIs para os overlays conectados por WebSocket.
package feed

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"MapVision/shared/proto/poinet"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// MessageHandler trata uma mensagem recebida de um cliente. reply envia um frame
// só para esse cliente.
type MessageHandler func(env *poinet.Envelope, reply func(frame []byte) error)

type outgoing struct {
	frame []byte
	// keep marca o frame como o último estado, reenviado a quem conectar depois
	keep bool
}

// Hub gerencia as conexões WebSocket ativas
type Hub struct {
	clients   map[*websocket.Conn]*sync.Mutex
	broadcast chan outgoing
	done      chan struct{}
	mu        sync.Mutex

	lastFrame []byte
	handler   MessageHandler
}

// NewHub cria o hub. Chame Run numa goroutine antes de servir conexões.
func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]*sync.Mutex),
		broadcast: make(chan outgoing, 64), // Bufferizado para o tracker não travar em cliente lento
		done:      make(chan struct{}),
	}
}

// SetHandler define quem trata as mensagens dos clientes.
func (h *Hub) SetHandler(fn MessageHandler) {
	h.mu.Lock()
	h.handler = fn
	h.mu.Unlock()
}

// Run processa os broadcasts até ctx ser cancelado. Depois disso Publish e
// Broadcast viram no-op.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Hub] Recuperado de pânico fatal: %v", r)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case msg := <-h.broadcast:
			h.send(msg)
		}
	}
}

func (h *Hub) send(msg outgoing) {
	type clientEntry struct {
		conn *websocket.Conn
		lock *sync.Mutex
	}

	// lastFrame e a lista de destinos mudam juntos: quem conectar depois recebe o frame novo
	h.mu.Lock()
	if msg.keep {
		h.lastFrame = msg.frame
	}
	targets := make([]clientEntry, 0, len(h.clients))
	for c, l := range h.clients {
		targets = append(targets, clientEntry{c, l})
	}
	h.mu.Unlock()

	for _, target := range targets {
		target.lock.Lock()
		err := target.conn.WriteMessage(websocket.BinaryMessage, msg.frame)
		target.lock.Unlock()
		if err != nil {
			log.Printf("[Hub] Erro ao enviar para cliente %s: %v", target.conn.RemoteAddr(), err)
			h.drop(target.conn)
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
		log.Printf("[Hub] Cliente desregistrado: %s", conn.RemoteAddr())
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, lock := range h.clients {
		lock.Lock()
		conn.Close()
		lock.Unlock()
	}
	h.clients = make(map[*websocket.Conn]*sync.Mutex)
}

// Publish envia o frame para todos e o guarda como estado atual.
func (h *Hub) Publish(frame []byte) {
	h.enqueue(outgoing{frame: frame, keep: true})
}

// Broadcast envia o frame para todos sem guardá-lo (avisos, status).
func (h *Hub) Broadcast(frame []byte) {
	h.enqueue(outgoing{frame: frame})
}

func (h *Hub) enqueue(msg outgoing) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// WriteSafe garante que apenas uma goroutine escreva no WebSocket por vez
func (h *Hub) WriteSafe(conn *websocket.Conn, data []byte) error {
	h.mu.Lock()
	lock, ok := h.clients[conn]
	h.mu.Unlock()

	if !ok {
		return fmt.Errorf("cliente não encontrado no hub")
	}

	lock.Lock()
	defer lock.Unlock()
	return conn.WriteMessage(websocket.BinaryMessage, data)
}

// ClientCount retorna o número de clientes conectados.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP faz o upgrade para WebSocket, envia o status e o último frame, e
// passa a ler as mensagens do cliente.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Hub] Erro no upgrade do WebSocket: %v", err)
		return
	}

	// Registro e envio inicial sob o lock da conexão: um broadcast concorrente
	// só chega depois do estado atual
	lock := &sync.Mutex{}
	lock.Lock()
	h.mu.Lock()
	h.clients[conn] = lock
	last := h.lastFrame
	clients := len(h.clients)
	h.mu.Unlock()
	log.Printf("[Hub] Cliente registrado: %s", conn.RemoteAddr())

	status := &poinet.ServerStatus{Message: "Conectado ao servidor MapVision", Clients: int32(clients)}
	err = conn.WriteMessage(websocket.BinaryMessage, poinet.Wrap(status))
	if err == nil && last != nil {
		err = conn.WriteMessage(websocket.BinaryMessage, last)
	}
	lock.Unlock()
	if err != nil {
		log.Printf("[Hub] Erro ao enviar estado inicial para %s: %v", conn.RemoteAddr(), err)
		h.drop(conn)
		return
	}

	go h.readLoop(conn)
}

func (h *Hub) readLoop(conn *websocket.Conn) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Hub] Recuperado de pânico na leitura: %v", r)
		}
		h.drop(conn)
	}()

	reply := func(frame []byte) error {
		return h.WriteSafe(conn, frame)
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[Hub] Erro ao ler mensagem: %v", err)
			}
			return
		}

		env, err := poinet.Open(message)
		if err != nil {
			log.Printf("[Hub] %v", err)
			continue
		}

		h.mu.Lock()
		handler := h.handler
		h.mu.Unlock()
		if handler == nil {
			continue
		}
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[Hub] Recuperado de pânico no handler: %v", r)
				}
			}()
			handler(env, reply)
		}()
	}
}
