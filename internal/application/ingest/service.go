// Package ingest stores uploaded sales files: sales facts with duplicate
// suppression, and the reference tables reports join against.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fieldsales/backend/internal/domain/sales"
	"github.com/fieldsales/backend/internal/domain/shared"
	csvimport "github.com/fieldsales/backend/internal/infrastructure/import"
	"github.com/fieldsales/backend/internal/infrastructure/spreadsheet"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
)

// DefaultBatchSize is the number of records stored per insert statement
const DefaultBatchSize = 1000

// maxRowErrors caps the row errors reported for one upload
const maxRowErrors = 100

// Upload is one received file
type Upload struct {
	FileName string
	Data     []byte
}

// IdentityCache remembers identity hashes already stored. Lookups that fail
// report nothing known.
type IdentityCache interface {
	Known(ctx context.Context, hashes []string) sales.HashSet
	Remember(ctx context.Context, hashes []string)
}

type noCache struct{}

func (noCache) Known(context.Context, []string) sales.HashSet { return sales.HashSet{} }
func (noCache) Remember(context.Context, []string)            {}

// Metrics counts upload outcomes
type Metrics interface {
	RecordsUploaded(ctx context.Context, admitted int64, duplicates int)
	ReferencesUploaded(ctx context.Context, kind string, upserted int64, rejected int)
}

type noMetrics struct{}

func (noMetrics) RecordsUploaded(context.Context, int64, int)            {}
func (noMetrics) ReferencesUploaded(context.Context, string, int64, int) {}

// Reference kinds reported to Metrics
const (
	KindModelReferences = "model_references"
	KindChannelTargets  = "channel_targets"
	KindEmployees       = "employees"
)

// Option configures a Service
type Option func(*Service)

// WithBatchSize sets the number of records per insert
func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithLegacyEncoding decodes CSV uploads that are not valid UTF-8
func WithLegacyEncoding(enc encoding.Encoding) Option {
	return func(s *Service) { s.legacy = enc }
}

// WithIdentityCache sets the known-identity cache
func WithIdentityCache(c IdentityCache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics sets the upload counters
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// Service handles uploads
type Service struct {
	records    sales.RecordRepository
	employees  sales.EmployeeRepository
	references sales.ModelReferenceRepository
	targets    sales.ChannelTargetRepository
	cache      IdentityCache
	metrics    Metrics
	legacy     encoding.Encoding
	batchSize  int
	now        func() time.Time
	logger     *zap.Logger
}

// NewService creates a new ingest Service
func NewService(
	records sales.RecordRepository,
	employees sales.EmployeeRepository,
	references sales.ModelReferenceRepository,
	targets sales.ChannelTargetRepository,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		records:    records,
		employees:  employees,
		references: references,
		targets:    targets,
		cache:      noCache{},
		metrics:    noMetrics{},
		batchSize:  DefaultBatchSize,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// readTable parses a CSV or XLSX upload. dateColumns name the XLSX columns
// whose serial dates are rendered as M/D/YYYY.
func (s *Service) readTable(u Upload, dateColumns ...string) (*csvimport.Table, error) {
	if len(u.Data) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "No file uploaded")
	}

	var (
		table *csvimport.Table
		err   error
	)
	switch strings.ToLower(filepath.Ext(u.FileName)) {
	case ".csv":
		var opts []csvimport.ParserOption
		if s.legacy != nil {
			opts = append(opts, csvimport.WithFallbackEncoding(s.legacy))
		}
		table, err = csvimport.ReadTable(u.Data, opts...)
	case ".xlsx":
		table, err = spreadsheet.ReadTable(bytes.NewReader(u.Data), spreadsheet.WithDateColumns(dateColumns...))
	default:
		return nil, shared.NewDomainError("INVALID_INPUT", csvimport.ErrUnsupportedFormat.Error())
	}
	if err != nil {
		return nil, uploadError(err)
	}
	return table, nil
}

func uploadError(err error) error {
	switch {
	case errors.Is(err, csvimport.ErrEmptyFile),
		errors.Is(err, csvimport.ErrMissingHeader),
		errors.Is(err, csvimport.ErrInvalidEncoding):
		return shared.NewDomainError("INVALID_INPUT", err.Error())
	}
	return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("failed to parse upload: %v", err))
}

func requireHeaders(table *csvimport.Table, required ...string) error {
	if missing := table.MissingHeaders(required); len(missing) > 0 {
		return shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
	}
	return nil
}
