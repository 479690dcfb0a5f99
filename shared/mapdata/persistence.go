package mapdata

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"MapVision/shared/game"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrSnapshotNotFound indica que o store não tem o snapshot pedido.
var ErrSnapshotNotFound = errors.New("snapshot não encontrado")

// SnapshotStore persiste snapshots de área entre execuções, separados por sessão.
type SnapshotStore interface {
	LoadSnapshot(session Session, area game.Area) (*AreaData, error)
	SaveSnapshot(session Session, data *AreaData) error
	Close() error
}

// SnapshotModel representa o esquema do banco de dados para um snapshot de área
type SnapshotModel struct {
	ID         string `gorm:"primaryKey"` // "seed_dificuldade_area"
	Seed       uint32 `gorm:"index:idx_session"`
	Difficulty int    `gorm:"index:idx_session"`
	Area       int
	Data       []byte    // AreaData serializado em GOB
	UpdatedAt  time.Time // Para controle interno do GORM
}

// StoreMetadata armazena informações globais do cache no banco
type StoreMetadata struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

const CurrentFormatVersion = 1

// SQLiteStore guarda snapshots em um arquivo SQLite via GORM.
type SQLiteStore struct {
	DB *gorm.DB

	// mu serializa escritas no banco SQLite (impede "database is locked")
	mu sync.Mutex
}

// OpenSQLiteStore abre (ou cria) o banco de dados SQLite e roda migrações.
func OpenSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	// Logger silencioso: erros relevantes já são logados aqui
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no SQLite: %w", err)
	}

	if err := db.AutoMigrate(&SnapshotModel{}, &StoreMetadata{}); err != nil {
		return nil, fmt.Errorf("falha na migração do banco: %w", err)
	}

	db.Save(&StoreMetadata{Key: "FormatVersion", Value: fmt.Sprint(CurrentFormatVersion)})

	log.Printf("[Persistence] Banco de dados SQLite aberto: %s", dbPath)
	return &SQLiteStore{DB: db}, nil
}

func snapshotID(session Session, area game.Area) string {
	return fmt.Sprintf("%d_%d_%d", session.Seed, game.DifficultyIndex(session.Difficulty), area)
}

// SaveSnapshot grava (upsert) o snapshot da área para a sessão.
func (s *SQLiteStore) SaveSnapshot(session Session, data *AreaData) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return fmt.Errorf("falha ao serializar snapshot %s: %w", game.AreaIdent(data.Area), err)
	}

	model := SnapshotModel{
		ID:         snapshotID(session, data.Area),
		Seed:       session.Seed,
		Difficulty: game.DifficultyIndex(session.Difficulty),
		Area:       int(data.Area),
		Data:       buf.Bytes(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.DB.Save(&model).Error; err != nil {
		return fmt.Errorf("falha ao salvar snapshot %s: %w", model.ID, err)
	}
	return nil
}

// LoadSnapshot lê o snapshot da área. Retorna ErrSnapshotNotFound se não existir.
func (s *SQLiteStore) LoadSnapshot(session Session, area game.Area) (*AreaData, error) {
	var model SnapshotModel
	err := s.DB.First(&model, "id = ?", snapshotID(session, area)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeGob(model.Data)
}

// SnapshotCount retorna quantos snapshots estão persistidos.
func (s *SQLiteStore) SnapshotCount() (int64, error) {
	var count int64
	err := s.DB.Model(&SnapshotModel{}).Count(&count).Error
	return count, err
}

// Close fecha a conexão com o banco.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func decodeGob(data []byte) (*AreaData, error) {
	var area AreaData
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&area); err != nil {
		return nil, fmt.Errorf("falha ao decodificar snapshot: %w", err)
	}
	// GOB não transmite mapas vazios
	if area.Objects == nil {
		area.Objects = make(map[game.Object][]Point)
	}
	if area.AdjacentLevels == nil {
		area.AdjacentLevels = make(map[game.Area]AdjacentLevel)
	}
	return &area, nil
}
