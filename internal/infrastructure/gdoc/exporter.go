// Package gdoc downloads a shared online document in word-processor form
// via its export endpoint. The document must be link-readable; no OAuth
// flow is performed.
package gdoc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/emilyparentdata/StagingTools/internal/ports"
)

// Exporter fetches documents through a printf-style export URL holding one
// %s verb for the document ID.
type Exporter struct {
	exportURL string
	http      *http.Client
	logger    *slog.Logger
}

var _ ports.DocExporter = (*Exporter)(nil)

// NewExporter builds an exporter around the configured export URL.
func NewExporter(exportURL string, logger *slog.Logger) *Exporter {
	return &Exporter{
		exportURL: exportURL,
		http:      &http.Client{Timeout: 60 * time.Second},
		logger:    logger,
	}
}

// Export downloads the document bytes.
func (e *Exporter) Export(ctx context.Context, docID string) ([]byte, error) {
	url := fmt.Sprintf(e.exportURL, docID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("export document %s: %w", docID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("export document %s: status %d", docID, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read export body: %w", err)
	}
	if e.logger != nil {
		e.logger.Debug("exported shared document", "docId", docID, "bytes", len(data))
	}
	return data, nil
}
