package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"docqa/internal/blob"
	"docqa/internal/config"
	"docqa/internal/models"
	"docqa/internal/providers"
	"docqa/internal/util"
	"docqa/internal/vector"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Ingestion runs uploads through extract, chunk, embed, and index. Documents
// are processed independently: one document failing never aborts the batch,
// and each document's outcome is reported in its summary.
type Ingestion struct {
	extractor    Extractor
	embedder     providers.Embedder
	index        vector.Index
	blobs        blob.Store
	meta         MetadataStore
	chunkMax     int
	docWorkers   int
	embedWorkers int
}

func NewIngestion(cfg config.Config, ex Extractor, em providers.Embedder, idx vector.Index, blobs blob.Store, meta MetadataStore) *Ingestion {
	p := &Ingestion{
		extractor:    ex,
		embedder:     em,
		index:        idx,
		blobs:        blobs,
		meta:         meta,
		chunkMax:     cfg.ChunkMaxChars,
		docWorkers:   cfg.IngestWorkers,
		embedWorkers: cfg.EmbedWorkers,
	}
	if p.chunkMax <= 0 {
		p.chunkMax = util.DefaultChunkSize
	}
	if p.docWorkers <= 0 {
		p.docWorkers = 3
	}
	if p.embedWorkers <= 0 {
		p.embedWorkers = 4
	}
	return p
}

// Ingest processes the batch with bounded parallelism across documents and
// returns one summary per upload, in input order. The returned error is only
// ever the caller's context error; per-document failures live in the
// summaries.
func (p *Ingestion) Ingest(ctx context.Context, uploads []models.Upload) ([]models.DocumentSummary, error) {
	summaries := make([]models.DocumentSummary, len(uploads))

	// A plain group on purpose: a failing document must not cancel its
	// siblings.
	var g errgroup.Group
	g.SetLimit(p.docWorkers)
	for i := range uploads {
		g.Go(func() error {
			summaries[i] = p.ingestOne(ctx, uploads[i])
			return nil
		})
	}
	_ = g.Wait()
	return summaries, ctx.Err()
}

func (p *Ingestion) ingestOne(ctx context.Context, up models.Upload) models.DocumentSummary {
	docID := uuid.NewString()
	sum := models.DocumentSummary{
		DocumentID: docID,
		FileName:   up.FileName,
		Status:     models.StatusCommitted,
	}
	storagePath := docID + "/" + up.FileName

	degraded := false
	if p.blobs != nil {
		if err := p.blobs.Put(ctx, storagePath, up.Data); err != nil {
			log.Printf("blob put failed for %s: %v", storagePath, err)
			degraded = true
		}
	}

	text, err := p.extractor.Extract(up.Data)
	if err != nil {
		sum.Status = models.StatusFailed
		sum.Error = fmt.Sprintf("extract text: %v", err)
		log.Printf("ingest failed for %s: %s", storagePath, sum.Error)
		return sum
	}

	chunks := util.ChunkText(text, p.chunkMax)
	sum.ChunkCount = len(chunks)

	// Blank chunks are skipped without consuming an index slot, so the
	// indexed chunk_index sequence stays dense.
	passages := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c) == "" {
			continue
		}
		passages = append(passages, c)
	}

	records := make([]vector.Record, len(passages))
	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(p.embedWorkers)
	for i := range passages {
		eg.Go(func() error {
			vec, err := p.embedder.Embed(ectx, passages[i])
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", i, err)
			}
			records[i] = vector.Record{
				ID:     fmt.Sprintf("%s_%d", docID, i),
				Vector: vec,
				Metadata: models.PassageMetadata{
					DocumentID: docID,
					FileName:   up.FileName,
					ChunkIndex: i,
					Text:       passages[i],
				},
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		sum.Status = models.StatusFailed
		sum.Error = err.Error()
		log.Printf("ingest failed for %s: %s", storagePath, sum.Error)
		return sum
	}

	if len(records) > 0 {
		if err := p.index.Upsert(ctx, records); err != nil {
			sum.Status = models.StatusFailed
			sum.Error = fmt.Sprintf("index upsert: %v", err)
			log.Printf("ingest failed for %s: %s", storagePath, sum.Error)
			return sum
		}
	}

	if p.meta != nil {
		rec := models.DocumentRecord{ID: docID, FileName: up.FileName, StoragePath: storagePath}
		if err := p.meta.Insert(ctx, rec); err != nil {
			log.Printf("metadata insert failed for %s: %v", storagePath, err)
			degraded = true
		}
	}

	if degraded {
		sum.Status = models.StatusDegraded
	}
	return sum
}
