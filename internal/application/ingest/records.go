package ingest

import (
	"context"
	"fmt"

	"github.com/fieldsales/backend/internal/domain/sales"
	"github.com/fieldsales/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Upload result messages
const (
	MessageInserted   = "Data inserted into database"
	MessageNothingNew = "No new data to insert, all entries already exist."
)

// RecordUploadResult summarizes a sales upload
type RecordUploadResult struct {
	UploadID   uuid.UUID `json:"upload_id"`
	TotalRows  int       `json:"total_rows"`
	Admitted   int64     `json:"admitted"`
	Duplicates int       `json:"duplicates"`
	Message    string    `json:"message"`
}

// UploadRecords stores the rows of a sales file whose identity is new.
// Rows repeated inside the file, rows already stored and rows that lose an
// insert race to a concurrent upload all count as duplicates.
func (s *Service) UploadRecords(ctx context.Context, u Upload) (*RecordUploadResult, error) {
	table, err := s.readTable(u, sales.ColDate)
	if err != nil {
		return nil, err
	}
	if err := requireHeaders(table, sales.ColDate); err != nil {
		return nil, err
	}

	result := &RecordUploadResult{UploadID: uuid.New(), TotalRows: len(table.Rows)}
	createdAt := s.now().UTC()

	seen := make(sales.HashSet, len(table.Rows))
	candidates := make([]*sales.Record, 0, len(table.Rows))
	for _, row := range table.Rows {
		raw := sales.NewRawRow(row.LineNumber, table.Headers, row.Values(table.Headers))
		admitted, ok := sales.ShouldAdmit(raw, seen)
		if !ok {
			result.Duplicates++
			continue
		}
		seen.Add(admitted.IdentityHash)

		rec := sales.NewRecordFromRow(admitted)
		rec.UploadID = result.UploadID
		rec.CreatedAt = createdAt
		candidates = append(candidates, rec)
	}

	fresh, err := s.dropStored(ctx, candidates)
	if err != nil {
		return nil, err
	}
	result.Duplicates += len(candidates) - len(fresh)

	for start := 0; start < len(fresh); start += s.batchSize {
		batch := fresh[start:min(start+s.batchSize, len(fresh))]
		n, err := s.records.InsertIfAbsent(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("failed to store sales records: %w", err)
		}
		result.Admitted += n
		s.cache.Remember(ctx, hashesOf(batch))
	}
	result.Duplicates += len(fresh) - int(result.Admitted)

	result.Message = MessageInserted
	if result.Admitted == 0 {
		result.Message = MessageNothingNew
	}

	s.metrics.RecordsUploaded(ctx, result.Admitted, result.Duplicates)
	logger.For(ctx, s.logger).Info("Sales upload processed",
		zap.String("upload_id", result.UploadID.String()),
		zap.String("file", u.FileName),
		zap.Int("total_rows", result.TotalRows),
		zap.Int64("admitted", result.Admitted),
		zap.Int("duplicates", result.Duplicates),
	)
	return result, nil
}

// dropStored removes the candidates whose identity is already stored,
// asking the cache first and the database for the rest
func (s *Service) dropStored(ctx context.Context, candidates []*sales.Record) ([]*sales.Record, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	hashes := hashesOf(candidates)
	known := s.cache.Known(ctx, hashes)
	if known == nil {
		known = sales.HashSet{}
	}

	unknown := make([]string, 0, len(hashes))
	for _, h := range hashes {
		if !known.Contains(h) {
			unknown = append(unknown, h)
		}
	}

	if len(unknown) > 0 {
		stored, err := s.records.ExistingHashes(ctx, unknown)
		if err != nil {
			return nil, fmt.Errorf("failed to check stored identities: %w", err)
		}
		if len(stored) > 0 {
			confirmed := make([]string, 0, len(stored))
			for h := range stored {
				confirmed = append(confirmed, h)
				known.Add(h)
			}
			s.cache.Remember(ctx, confirmed)
		}
	}

	fresh := make([]*sales.Record, 0, len(candidates))
	for _, r := range candidates {
		if !known.Contains(r.IdentityHash) {
			fresh = append(fresh, r)
		}
	}
	return fresh, nil
}

func hashesOf(records []*sales.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.IdentityHash
	}
	return out
}
