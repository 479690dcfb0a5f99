package mapdata

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"MapVision/shared/game"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore guarda snapshots em PostgreSQL, no formato JSON dos snapshots (JSONB).
// Permite compartilhar o cache entre várias máquinas.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgresStore conecta no banco e garante o esquema.
func OpenPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir banco: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao pingar banco: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao inicializar esquema: %w", err)
	}

	log.Printf("[Persistence] PostgreSQL conectado")
	return store, nil
}

func (s *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS area_snapshots (
		seed BIGINT NOT NULL,
		difficulty INTEGER NOT NULL,
		area INTEGER NOT NULL,
		data JSONB NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		PRIMARY KEY (seed, difficulty, area)
	);`
	_, err := s.db.Exec(schema)
	return err
}

// SaveSnapshot grava (upsert) o snapshot da área para a sessão.
func (s *PostgresStore) SaveSnapshot(session Session, data *AreaData) error {
	payload, err := EncodeSnapshot(data)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO area_snapshots (seed, difficulty, area, data, updated_at)
	VALUES ($1, $2, $3, $4, NOW())
	ON CONFLICT (seed, difficulty, area)
	DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`

	_, err = s.db.Exec(query, int64(session.Seed), game.DifficultyIndex(session.Difficulty), int(data.Area), payload)
	if err != nil {
		return fmt.Errorf("falha ao salvar snapshot %s/%s: %w", session, data.Area, err)
	}
	return nil
}

// LoadSnapshot lê o snapshot da área. Retorna ErrSnapshotNotFound se não existir.
func (s *PostgresStore) LoadSnapshot(session Session, area game.Area) (*AreaData, error) {
	var payload []byte
	query := `SELECT data FROM area_snapshots WHERE seed = $1 AND difficulty = $2 AND area = $3`
	err := s.db.QueryRow(query, int64(session.Seed), game.DifficultyIndex(session.Difficulty), int(area)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("falha ao carregar snapshot %s/%s: %w", session, area, err)
	}
	return DecodeSnapshot(payload)
}

// Close fecha a conexão com o banco.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
