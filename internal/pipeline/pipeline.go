// Package pipeline orchestrates the warnings flow: AOI extraction, bounding
// box derivation, cached upstream fetch, property normalization, and response
// assembly. Each request runs the stages strictly in order, synchronously, to
// completion.
package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/datatales/dwd-warnings-service/internal/config"
	"github.com/datatales/dwd-warnings-service/internal/domain"
	"github.com/datatales/dwd-warnings-service/internal/observability"
)

// Feature count bounds per request. The cap matches the ceiling the upstream
// service enforces on its own pagination.
const (
	minFeatureCount = 1
	maxFeatureCount = 2000
)

// Request is one inbound warnings query.
type Request struct {
	AOI         json.RawMessage
	TypeName    string // empty means the configured default layer
	MaxFeatures int    // <= 0 means the configured default
	IncludeRaw  bool   // attach original upstream properties verbatim
}

// Publisher fans out normalized warnings to downstream consumers.
type Publisher interface {
	PublishWarnings(ctx context.Context, typeName string, env domain.Envelope) error
}

// Pipeline executes the full warnings flow against a warning source.
type Pipeline struct {
	source     domain.WarningSource
	normalizer *domain.Normalizer
	publisher  Publisher // nil when fan-out is disabled

	endpoint    string
	defaultType string
	defaultMax  int

	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Pipeline. Pass a nil publisher to disable the Kafka fan-out.
func New(source domain.WarningSource, normalizer *domain.Normalizer, publisher Publisher, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:      source,
		normalizer:  normalizer,
		publisher:   publisher,
		endpoint:    cfg.WFSBaseURL,
		defaultType: cfg.TypeName,
		defaultMax:  cfg.DefaultMaxFeatures,
		logger:      logger,
		metrics:     metrics,
	}
}

// Process runs extract → bbox → cached fetch → normalize → assemble for one
// request. All failures carry a sentinel from the domain error taxonomy.
func (p *Pipeline) Process(ctx context.Context, req Request) (domain.Envelope, error) {
	feature, err := domain.ExtractAOI(req.AOI)
	if err != nil {
		return domain.Envelope{}, err
	}

	bbox, err := domain.BoundsFromFeature(feature)
	if err != nil {
		return domain.Envelope{}, err
	}

	typeName := req.TypeName
	if typeName == "" {
		typeName = p.defaultType
	}
	maxFeatures := req.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = p.defaultMax
	}
	maxFeatures = clampFeatureCount(maxFeatures)

	fc, err := p.source.FetchWarnings(ctx, domain.WarningQuery{
		TypeName:    typeName,
		BBox:        bbox,
		MaxFeatures: maxFeatures,
	})
	if err != nil {
		return domain.Envelope{}, err
	}

	env := p.normalizer.AssembleResponse(domain.AssembleInput{
		Raw:        fc,
		BBox:       bbox,
		Endpoint:   p.endpoint,
		TypeName:   typeName,
		IncludeRaw: req.IncludeRaw,
	})
	p.metrics.WarningsReturned.Observe(float64(env.Meta.Count))

	if p.publisher != nil {
		// Fan-out is best-effort: a broker outage must not fail the API call.
		if err := p.publisher.PublishWarnings(ctx, typeName, env); err != nil {
			p.logger.Warn("warning fan-out failed", "type_name", typeName, "error", err)
			p.metrics.PublishErrors.Inc()
		} else {
			p.metrics.PublishedWarnings.Add(float64(env.Meta.Count))
		}
	}

	return env, nil
}

func clampFeatureCount(n int) int {
	if n < minFeatureCount {
		return minFeatureCount
	}
	if n > maxFeatureCount {
		return maxFeatureCount
	}
	return n
}
