// Package poinet define as mensagens binárias trocadas entre o servidor de POIs
// e o overlay. O formato é o wire format do protobuf, codificado à mão.
package poinet

import (
	"errors"
	"fmt"

	"MapVision/shared/game"
	"MapVision/shared/mapdata"
	"MapVision/shared/poi"

	"github.com/minio/highwayhash"
)

// MessageType identifica o conteúdo do Envelope.
type MessageType uint32

const (
	MsgPOIList      MessageType = 1
	MsgRequestArea  MessageType = 2
	MsgServerStatus MessageType = 3
)

func (t MessageType) String() string {
	switch t {
	case MsgPOIList:
		return "POIList"
	case MsgRequestArea:
		return "RequestArea"
	case MsgServerStatus:
		return "ServerStatus"
	}
	return fmt.Sprintf("MessageType(%d)", uint32(t))
}

// ErrUnexpectedType indica que o envelope traz outro tipo de mensagem.
var ErrUnexpectedType = errors.New("tipo de mensagem inesperado")

// Message é qualquer mensagem que pode ir dentro de um Envelope.
type Message interface {
	Type() MessageType
	Marshal() []byte
	Unmarshal(data []byte) error
}

// Envelope é o frame enviado pelo WebSocket.
type Envelope struct {
	Type    MessageType
	Payload []byte
}

// Wrap serializa a mensagem já envelopada.
func Wrap(m Message) []byte {
	env := Envelope{Type: m.Type(), Payload: m.Marshal()}
	return env.Marshal()
}

// Open lê o envelope de um frame recebido.
func Open(data []byte) (*Envelope, error) {
	var env Envelope
	if err := env.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("envelope inválido: %w", err)
	}
	return &env, nil
}

// Decode preenche m com o payload, conferindo o tipo.
func (e *Envelope) Decode(m Message) error {
	if e.Type != m.Type() {
		return fmt.Errorf("%w: esperado %s, recebido %s", ErrUnexpectedType, m.Type(), e.Type)
	}
	return m.Unmarshal(e.Payload)
}

func (e *Envelope) Marshal() []byte {
	enc := newEncoder()
	enc.EncodeUvarint(1, uint64(e.Type))
	enc.EncodeBytes(2, e.Payload)
	return enc.Bytes()
}

func (e *Envelope) Unmarshal(data []byte) error {
	d := newDecoder(data)
	for !d.Done() {
		num, typ, err := d.ReadTag()
		if err != nil {
			return err
		}
		switch num {
		case 1:
			v, err := d.ReadUvarint()
			if err != nil {
				return err
			}
			e.Type = MessageType(v)
		case 2:
			v, err := d.ReadBytes()
			if err != nil {
				return err
			}
			e.Payload = v
		default:
			if err := d.SkipField(num, typ); err != nil {
				return err
			}
		}
	}
	return nil
}

// --- POIList ---

// POIItem é um POI no fio.
type POIItem struct {
	Label    string
	X        int32
	Y        int32
	Category uint32
	Target   int32
	Object   int32
}

// POIList é a lista de POIs de uma área numa sessão.
type POIList struct {
	Area       int32
	Seed       uint32
	Difficulty int32
	Items      []POIItem
}

// NewPOIList converte a saída do Assembler para o formato de rede.
func NewPOIList(area game.Area, session mapdata.Session, pois []poi.PointOfInterest) *POIList {
	list := &POIList{
		Area:       int32(area),
		Seed:       session.Seed,
		Difficulty: int32(game.DifficultyIndex(session.Difficulty)),
		Items:      make([]POIItem, 0, len(pois)),
	}
	for _, p := range pois {
		list.Items = append(list.Items, POIItem{
			Label:    p.Label,
			X:        int32(p.Position.X),
			Y:        int32(p.Position.Y),
			Category: uint32(p.Category),
			Target:   int32(p.Target),
			Object:   int32(p.Object),
		})
	}
	return list
}

// PointsOfInterest converte de volta para os tipos do domínio.
func (m *POIList) PointsOfInterest() []poi.PointOfInterest {
	out := make([]poi.PointOfInterest, 0, len(m.Items))
	for _, it := range m.Items {
		out = append(out, poi.PointOfInterest{
			Label:    it.Label,
			Position: mapdata.Point{X: int(it.X), Y: int(it.Y)},
			Category: poi.Category(it.Category),
			Target:   game.Area(it.Target),
			Object:   game.Object(it.Object),
		})
	}
	return out
}

// Session retorna a sessão da lista.
func (m *POIList) Session() mapdata.Session {
	d, _ := game.DifficultyAt(int(m.Difficulty))
	return mapdata.Session{Seed: m.Seed, Difficulty: d}
}

func (m *POIList) Type() MessageType { return MsgPOIList }

func (m *POIList) Marshal() []byte {
	e := newEncoder()
	e.EncodeVarint(1, int64(m.Area))
	e.EncodeUvarint(2, uint64(m.Seed))
	e.EncodeVarint(3, int64(m.Difficulty))
	for _, it := range m.Items {
		e.EncodeSubmessage(4, it.marshal())
	}
	return e.Bytes()
}

func (m *POIList) Unmarshal(data []byte) error {
	d := newDecoder(data)
	for !d.Done() {
		num, typ, err := d.ReadTag()
		if err != nil {
			return err
		}
		switch num {
		case 1:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			m.Area = int32(v)
		case 2:
			v, err := d.ReadUvarint()
			if err != nil {
				return err
			}
			m.Seed = uint32(v)
		case 3:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			m.Difficulty = int32(v)
		case 4:
			sub, err := d.ReadBytes()
			if err != nil {
				return err
			}
			var it POIItem
			if err := it.unmarshal(sub); err != nil {
				return err
			}
			m.Items = append(m.Items, it)
		default:
			if err := d.SkipField(num, typ); err != nil {
				return err
			}
		}
	}
	return nil
}

func (it *POIItem) marshal() []byte {
	e := newEncoder()
	e.EncodeString(1, it.Label)
	e.EncodeSint(2, int64(it.X))
	e.EncodeSint(3, int64(it.Y))
	e.EncodeUvarint(4, uint64(it.Category))
	e.EncodeVarint(5, int64(it.Target))
	e.EncodeVarint(6, int64(it.Object))
	return e.Bytes()
}

func (it *POIItem) unmarshal(data []byte) error {
	d := newDecoder(data)
	for !d.Done() {
		num, typ, err := d.ReadTag()
		if err != nil {
			return err
		}
		switch num {
		case 1:
			v, err := d.ReadString()
			if err != nil {
				return err
			}
			it.Label = v
		case 2:
			v, err := d.ReadSint()
			if err != nil {
				return err
			}
			it.X = int32(v)
		case 3:
			v, err := d.ReadSint()
			if err != nil {
				return err
			}
			it.Y = int32(v)
		case 4:
			v, err := d.ReadUvarint()
			if err != nil {
				return err
			}
			it.Category = uint32(v)
		case 5:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			it.Target = int32(v)
		case 6:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			it.Object = int32(v)
		default:
			if err := d.SkipField(num, typ); err != nil {
				return err
			}
		}
	}
	return nil
}

// --- RequestArea ---

// RequestArea pede ao servidor os POIs de uma área específica da sessão atual.
type RequestArea struct {
	Area int32
}

func (m *RequestArea) Type() MessageType { return MsgRequestArea }

func (m *RequestArea) Marshal() []byte {
	e := newEncoder()
	e.EncodeVarint(1, int64(m.Area))
	return e.Bytes()
}

func (m *RequestArea) Unmarshal(data []byte) error {
	d := newDecoder(data)
	for !d.Done() {
		num, typ, err := d.ReadTag()
		if err != nil {
			return err
		}
		if num != 1 {
			if err := d.SkipField(num, typ); err != nil {
				return err
			}
			continue
		}
		v, err := d.ReadVarint()
		if err != nil {
			return err
		}
		m.Area = int32(v)
	}
	return nil
}

// --- ServerStatus ---

// ServerStatus informa o estado do servidor (enviado na conexão e em erros).
type ServerStatus struct {
	Session     string
	CachedAreas int32
	Clients     int32
	Message     string
}

func (m *ServerStatus) Type() MessageType { return MsgServerStatus }

func (m *ServerStatus) Marshal() []byte {
	e := newEncoder()
	e.EncodeString(1, m.Session)
	e.EncodeVarint(2, int64(m.CachedAreas))
	e.EncodeVarint(3, int64(m.Clients))
	e.EncodeString(4, m.Message)
	return e.Bytes()
}

func (m *ServerStatus) Unmarshal(data []byte) error {
	d := newDecoder(data)
	for !d.Done() {
		num, typ, err := d.ReadTag()
		if err != nil {
			return err
		}
		switch num {
		case 1:
			v, err := d.ReadString()
			if err != nil {
				return err
			}
			m.Session = v
		case 2:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			m.CachedAreas = int32(v)
		case 3:
			v, err := d.ReadVarint()
			if err != nil {
				return err
			}
			m.Clients = int32(v)
		case 4:
			v, err := d.ReadString()
			if err != nil {
				return err
			}
			m.Message = v
		default:
			if err := d.SkipField(num, typ); err != nil {
				return err
			}
		}
	}
	return nil
}

// --- Fingerprint ---

// fingerprintKey é fixa: o fingerprint só compara frames do mesmo processo.
var fingerprintKey = []byte("MapVision-POI-frame-fingerprint!")

// Fingerprint resume um payload em 64 bits para detectar frames repetidos.
func Fingerprint(payload []byte) uint64 {
	return highwayhash.Sum64(payload, fingerprintKey)
}
