package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config armazena as configurações do MapVision.
type Config struct {
	// Janela (overlay)
	WindowWidth  int32  `json:"window_width"`
	WindowHeight int32  `json:"window_height"`
	WindowTitle  string `json:"window_title"`
	Fullscreen   bool   `json:"fullscreen"`
	TargetFPS    int32  `json:"target_fps"`

	// Servidor de POIs
	ListenAddr      string `json:"listen_addr"`
	SnapshotURL     string `json:"snapshot_url"`     // Diretório (qualquer URL afs) com <id>.json por área
	CurrentAreaURL  string `json:"current_area_url"` // JSON {"area","seed","difficulty"} escrito pelo leitor do jogo
	RulesURL        string `json:"rules_url"`        // YAML opcional; vazio usa as regras padrão
	CacheDBPath     string `json:"cache_db_path"`
	PostgresDSN     string `json:"postgres_dsn"` // Se definido, substitui o SQLite
	PollIntervalMs  int    `json:"poll_interval_ms"`
	TombParallelism int    `json:"tomb_parallelism"`

	// Cliente
	ServerURL string `json:"server_url"`

	// Renderização
	MapScale      float32 `json:"map_scale"` // Pixels por unidade de área
	ShowLabels    bool    `json:"show_labels"`
	ShowDebugPOIs bool    `json:"show_debug_pois"`
}

// DefaultConfig retorna a configuração padrão.
func DefaultConfig() *Config {
	return &Config{
		WindowWidth:  1280,
		WindowHeight: 720,
		WindowTitle:  "MapVision",
		Fullscreen:   false,
		TargetFPS:    60,

		ListenAddr:      ":8080",
		SnapshotURL:     "data/areas",
		CurrentAreaURL:  "data/current.json",
		CacheDBPath:     "saves/cache.db",
		PollIntervalMs:  500,
		TombParallelism: 8,

		ServerURL: "ws://127.0.0.1:8080/ws",

		MapScale:      4.0,
		ShowLabels:    true,
		ShowDebugPOIs: false,
	}
}

// PollInterval retorna o intervalo de leitura da área atual.
func (c *Config) PollInterval() time.Duration {
	if c.PollIntervalMs <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// configPath retorna o caminho do arquivo de configuração.
func configPath() string {
	execDir, err := os.Executable()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(filepath.Dir(execDir), "config.json")
}

// Load carrega config.json ao lado do executável.
// Se o arquivo não existir, retorna as configurações padrão.
func Load() *Config {
	cfg, err := LoadFrom(configPath())
	if err != nil {
		log.Printf("[Config] %v, usando padrão", err)
		return DefaultConfig()
	}
	return cfg
}

// LoadFrom carrega as configurações de um arquivo JSON sobre os valores padrão.
// Arquivo inexistente não é erro.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config inválida em %s: %w", path, err)
	}
	return cfg, nil
}

// Save salva as configurações em config.json ao lado do executável.
func (c *Config) Save() error {
	return c.SaveTo(configPath())
}

// SaveTo salva as configurações em um arquivo JSON.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv carrega envFile (se existir) e aplica as variáveis MAPVISION_* por cima.
// Variáveis já definidas no ambiente têm prioridade sobre o arquivo.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("falha ao ler %s: %w", envFile, err)
		}
	}

	strs := map[string]*string{
		"MAPVISION_LISTEN_ADDR":      &c.ListenAddr,
		"MAPVISION_SERVER_URL":       &c.ServerURL,
		"MAPVISION_SNAPSHOT_URL":     &c.SnapshotURL,
		"MAPVISION_CURRENT_AREA_URL": &c.CurrentAreaURL,
		"MAPVISION_RULES_URL":        &c.RulesURL,
		"MAPVISION_CACHE_DB":         &c.CacheDBPath,
		"MAPVISION_POSTGRES_DSN":     &c.PostgresDSN,
	}
	for key, dest := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dest = v
		}
	}

	ints := map[string]*int{
		"MAPVISION_POLL_MS":          &c.PollIntervalMs,
		"MAPVISION_TOMB_PARALLELISM": &c.TombParallelism,
	}
	for key, dest := range ints {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		// Intervalo e paralelismo só fazem sentido positivos
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("%s: valor inválido %q", key, v)
		}
		*dest = n
	}
	return nil
}
