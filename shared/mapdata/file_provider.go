package mapdata

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"MapVision/shared/game"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

// FileProvider lê snapshots JSON de um diretório (qualquer URL suportada pelo afs:
// caminho local, file://, mem://...). Cada área fica em "<id>.json".
type FileProvider struct {
	BaseURL string
	fs      afs.Service
}

// NewFileProvider cria um provedor apontando para baseURL.
func NewFileProvider(baseURL string) *FileProvider {
	return &FileProvider{
		BaseURL: baseURL,
		fs:      afs.New(),
	}
}

// SnapshotURL retorna a URL do arquivo de snapshot da área.
func (p *FileProvider) SnapshotURL(area game.Area) string {
	return url.Join(p.BaseURL, strconv.Itoa(int(area))+".json")
}

// GetAreaData baixa e decodifica o snapshot da área.
func (p *FileProvider) GetAreaData(ctx context.Context, area game.Area) (*AreaData, error) {
	location := p.SnapshotURL(area)
	exists, err := p.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("falha ao consultar %s: %w", location, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s (%s): %w", game.AreaIdent(area), location, ErrAreaUnavailable)
	}

	data, err := p.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler %s: %w", location, err)
	}

	snapshot, err := DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	if snapshot.Area != area {
		return nil, fmt.Errorf("%s contém a área %d, esperado %d", location, snapshot.Area, area)
	}
	return snapshot, nil
}

// Export grava o snapshot no diretório do provedor.
func (p *FileProvider) Export(ctx context.Context, area *AreaData) error {
	data, err := EncodeSnapshot(area)
	if err != nil {
		return err
	}
	location := p.SnapshotURL(area.Area)
	if err := p.fs.Upload(ctx, location, 0644, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("falha ao gravar %s: %w", location, err)
	}
	return nil
}
