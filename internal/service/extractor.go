package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jpfielding/dicometa/internal/cache"
	"github.com/jpfielding/dicometa/internal/events"
	"github.com/jpfielding/dicometa/internal/metrics"
	"github.com/jpfielding/dicometa/internal/models"
	"github.com/jpfielding/dicometa/pkg/dicom"
	"github.com/jpfielding/dicometa/pkg/logging"
	"github.com/jpfielding/dicometa/pkg/util"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrInvalidID is returned for package ids that are not uuids
	ErrInvalidID = errors.New("invalid package id")
	// ErrStoreDisabled is returned by lookups when no database is configured
	ErrStoreDisabled = errors.New("package store disabled")
)

// Store persists package records
type Store interface {
	Save(ctx context.Context, rec *models.PackageRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PackageRecord, error)
	List(ctx context.Context, limit, offset int) ([]models.PackageRecord, error)
}

// FileResult is the metadata of one uploaded file
type FileResult struct {
	Digest   string             `json:"digest"`
	Cached   bool               `json:"cached"`
	Metadata dicom.FileMetadata `json:"metadata"`
}

// PackageResult is the metadata of one upload batch
type PackageResult struct {
	ID        string                `json:"id"`
	Digest    string                `json:"digest"`
	Source    string                `json:"source"`
	FileCount int                   `json:"fileCount"`
	Cached    bool                  `json:"cached"`
	Metadata  dicom.PackageMetadata `json:"metadata"`
}

// Options wires the optional collaborators; nil members are skipped
type Options struct {
	Cache     cache.Cache
	CacheTTL  time.Duration
	Store     Store
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

// Extractor runs the core extraction behind caching, persistence, events,
// metrics and tracing.
type Extractor struct {
	cache     cache.Cache
	ttl       time.Duration
	store     Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	core      dicom.Extractor
	tracer    trace.Tracer
}

func NewExtractor(opts Options) *Extractor {
	x := &Extractor{
		cache:     opts.Cache,
		ttl:       opts.CacheTTL,
		store:     opts.Store,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		core:      dicom.Extractor{Now: opts.Now},
		tracer:    otel.Tracer("github.com/jpfielding/dicometa/internal/service"),
	}
	if x.cache == nil {
		x.cache = cache.Nop{}
	}
	if x.publisher == nil {
		x.publisher = events.Nop{}
	}
	return x
}

// ExtractFile parses one file, consulting the cache by content digest
func (x *Extractor) ExtractFile(ctx context.Context, name string, data []byte) (*FileResult, error) {
	ctx, span := x.tracer.Start(ctx, "ExtractFile",
		trace.WithAttributes(attribute.String("file.name", name), attribute.Int("file.size", len(data))))
	defer span.End()

	digest := util.Sum(data).String()
	ctx = logging.AppendCtx(ctx, slog.String("digest", digest))

	res := &FileResult{Digest: digest}
	if x.lookup(ctx, cache.FileKey(digest), &res.Metadata) {
		res.Cached = true
		return res, nil
	}

	start := time.Now()
	res.Metadata = dicom.ParseFile(data)
	x.metrics.ObserveExtraction(time.Since(start))
	x.metrics.FileParsed(!dicom.HasPreamble(data))
	if res.Metadata.IsEmpty() {
		slog.InfoContext(ctx, "no metadata recovered", "name", name)
	}

	x.remember(ctx, cache.FileKey(digest), res.Metadata)
	return res, nil
}

// ExtractPackage aggregates one upload batch. The result is keyed by a
// digest of the names and contents, so a repeated upload is answered from
// the cache and overwrites the same stored record.
func (x *Extractor) ExtractPackage(ctx context.Context, files []dicom.File) (*PackageResult, error) {
	ctx, span := x.tracer.Start(ctx, "ExtractPackage", trace.WithAttributes(attribute.Int("files", len(files))))
	defer span.End()

	d := batchDigest(files)
	res := &PackageResult{
		ID:        d.UUID().String(),
		Digest:    d.String(),
		Source:    source(files),
		FileCount: len(files),
	}
	ctx = logging.AppendCtx(ctx, slog.String("package", res.ID))

	if x.lookup(ctx, cache.PackageKey(res.Digest), &res.Metadata) {
		res.Cached = true
		return res, nil
	}

	start := time.Now()
	res.Metadata = x.core.ExtractPackage(files)
	x.metrics.ObserveExtraction(time.Since(start))
	x.metrics.PackageExtracted(res.Source)
	if res.Source == models.SourceFiles {
		for _, f := range files {
			if dicom.IsDicomName(f.Name) {
				x.metrics.FileParsed(!dicom.HasPreamble(f.Data))
			}
		}
	}
	span.SetAttributes(attribute.String("source", res.Source), attribute.Int("images", res.Metadata.ImageCount))

	if x.store != nil {
		rec := models.NewPackageRecord(d.UUID(), res.Digest, res.Source, res.FileCount, res.Metadata)
		if err := x.store.Save(ctx, rec); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "save failed")
			return nil, fmt.Errorf("saving package %s: %w", res.ID, err)
		}
	}

	if err := x.publisher.Publish(ctx, event(res)); err != nil {
		slog.WarnContext(ctx, "failed to publish package event", "error", err)
	}

	x.remember(ctx, cache.PackageKey(res.Digest), res.Metadata)
	slog.InfoContext(ctx, "package extracted",
		"source", res.Source, "files", res.FileCount, "images", res.Metadata.ImageCount)
	return res, nil
}

// GetPackage returns a stored package by id
func (x *Extractor) GetPackage(ctx context.Context, id string) (*PackageResult, error) {
	ctx, span := x.tracer.Start(ctx, "GetPackage", trace.WithAttributes(attribute.String("id", id)))
	defer span.End()

	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	if x.store == nil {
		return nil, ErrStoreDisabled
	}
	rec, err := x.store.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return fromRecord(rec), nil
}

// ListPackages pages through stored packages, newest first
func (x *Extractor) ListPackages(ctx context.Context, limit, offset int) ([]PackageResult, error) {
	if x.store == nil {
		return nil, ErrStoreDisabled
	}
	recs, err := x.store.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]PackageResult, 0, len(recs))
	for i := range recs {
		out = append(out, *fromRecord(&recs[i]))
	}
	return out, nil
}

func fromRecord(rec *models.PackageRecord) *PackageResult {
	return &PackageResult{
		ID:        rec.ID.String(),
		Digest:    rec.Digest,
		Source:    rec.Source,
		FileCount: rec.FileCount,
		Metadata:  rec.Metadata(),
	}
}

// lookup reports a cache hit; cache errors other than a miss are logged
func (x *Extractor) lookup(ctx context.Context, key string, v any) bool {
	err := cache.GetJSON(ctx, x.cache, key, v)
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		slog.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}
	x.metrics.CacheResult(err == nil)
	return err == nil
}

func (x *Extractor) remember(ctx context.Context, key string, v any) {
	if err := cache.SetJSON(ctx, x.cache, key, v, x.ttl); err != nil {
		slog.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
}

func batchDigest(files []dicom.File) util.Digest {
	parts := make([][]byte, 0, 2*len(files))
	for _, f := range files {
		parts = append(parts, []byte(f.Name), f.Data)
	}
	return util.Sum(parts...)
}

func source(files []dicom.File) string {
	for _, f := range files {
		if dicom.IsDicomDir(f.Name) {
			return models.SourceDicomDir
		}
	}
	return models.SourceFiles
}

func event(res *PackageResult) events.PackageExtracted {
	return events.PackageExtracted{
		ID:          res.ID,
		Digest:      res.Digest,
		Source:      res.Source,
		FileCount:   res.FileCount,
		Modalities:  res.Metadata.Modalities,
		BodyParts:   res.Metadata.BodyParts,
		StudyDate:   res.Metadata.StudyDate,
		Summary:     res.Metadata.Summary,
		ExtractedAt: res.Metadata.ExtractedAt,
	}
}
