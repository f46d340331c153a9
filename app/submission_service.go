package app

import (
	"context"
	"time"

	"gofaas/domain/core"
	"gofaas/domain/dataset"
	"gofaas/domain/modelspec"
	"gofaas/domain/submission"
	"gofaas/internal"
	"gofaas/internal/config"
	"gofaas/internal/errors"
	"gofaas/internal/payload"
	"gofaas/ports"
)

// Options tweak a single submission
type Options struct {
	SkipValidation bool
	ProxyURL       string
	ProxyPort      string
}

// Proxy returns "url:port", "url" or "" depending on what is set
func (o Options) Proxy() string {
	if o.ProxyURL == "" {
		return ""
	}
	if o.ProxyPort == "" {
		return o.ProxyURL
	}
	return o.ProxyURL + ":" + o.ProxyPort
}

// SubmissionService is the caller-facing entry point for validating and
// running forecasting models
type SubmissionService struct {
	protocol  *Protocol
	tokens    ports.TokenProvider
	transport ports.TransportFactory
	logger    *internal.Logger
}

// NewSubmissionService creates a submission service
func NewSubmissionService(cfg config.APIConfig, tokens ports.TokenProvider, transport ports.TransportFactory, logger *internal.Logger) *SubmissionService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	protocol := NewProtocol(ProtocolConfig{
		ValidateURL: cfg.ValidateURL,
		ModelURL:    cfg.ModelURL,
		UserAgent:   cfg.UserAgent,
		Timeout:     cfg.RequestTimeout,
		MaxAttempts: cfg.MaxAttempts,
		RetryDelay:  cfg.RetryDelay,
	}, logger)
	return &SubmissionService{
		protocol:  protocol,
		tokens:    tokens,
		transport: transport,
		logger:    logger,
	}
}

// WithSleep replaces the wait between retry attempts
func (s *SubmissionService) WithSleep(sleep SleepFunc) *SubmissionService {
	cp := *s
	cp.protocol = s.protocol.WithSleep(sleep)
	return &cp
}

type prepared struct {
	id   core.SubmissionID
	hash core.PayloadHash
	call Call
}

// prepare builds and encodes the payload, then fetches the token and the
// transport. Input errors surface before anything touches the network.
func (s *SubmissionService) prepare(ctx context.Context, datasets []dataset.Dataset, dateVariable, dateFormat string, spec modelspec.ModelSpec, projectName string, opts Options) (*prepared, error) {
	body, err := payload.Build(datasets, dateVariable, dateFormat, spec, projectName)
	if err != nil {
		return nil, err
	}
	encoded, err := payload.Encode(body)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.GetAccessToken(ctx)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.WithCode(errors.CodeUnauthorized, err)
	}

	client, err := s.transport(opts.Proxy())
	if err != nil {
		return nil, errors.Wrap(err, "failed to set up transport")
	}

	p := &prepared{
		id:   core.NewSubmissionID(),
		hash: core.NewPayloadHash(encoded),
		call: Call{Client: client, Token: token, Body: encoded, SkipValidation: opts.SkipValidation},
	}
	s.logger.Info("[SubmissionService] submission %s project=%q datasets=%v payload=%s (%d bytes)",
		p.id, projectName, body.DataList.Keys(), p.hash.Short(), len(encoded))
	return p, nil
}

// Validate sends the submission to the validation endpoint only
func (s *SubmissionService) Validate(ctx context.Context, datasets []dataset.Dataset, dateVariable, dateFormat string, spec modelspec.ModelSpec, projectName string, opts Options) (*ValidationReport, error) {
	start := time.Now()
	p, err := s.prepare(ctx, datasets, dateVariable, dateFormat, spec, projectName, opts)
	if err != nil {
		return nil, err
	}

	out, err := s.protocol.Validate(ctx, p.call)
	if err != nil {
		return nil, err
	}

	outcome := out.Result.Classify()
	s.logger.Info("[SubmissionService] submission %s validation %s (HTTP %d, %d attempts, %v)",
		p.id, outcome.Kind, out.Result.HTTPStatus, out.Attempts, time.Since(start))
	if err := outcome.Err(submission.PhaseValidate); err != nil {
		return nil, err
	}

	return &ValidationReport{
		SubmissionID: p.id,
		PayloadHash:  p.hash,
		Result:       out.Result,
		Outcome:      outcome,
		Attempts:     out.Attempts,
	}, nil
}

// RunModel validates the submission (unless skipped) and, when it passes,
// sends it for modelling
func (s *SubmissionService) RunModel(ctx context.Context, datasets []dataset.Dataset, dateVariable, dateFormat string, spec modelspec.ModelSpec, projectName string, opts Options) (*ModelReport, error) {
	start := time.Now()
	p, err := s.prepare(ctx, datasets, dateVariable, dateFormat, spec, projectName, opts)
	if err != nil {
		return nil, err
	}

	out, err := s.protocol.Run(ctx, p.call)
	if err != nil {
		return nil, err
	}

	report := &ModelReport{
		SubmissionID: p.id,
		PayloadHash:  p.hash,
		Validation:   out.Validation,
		Modelling:    out.Modelling,
		Attempts:     out.Attempts,
	}

	if !out.Validation.Skipped {
		report.ValidationOutcome = out.Validation.Classify()
		if err := report.ValidationOutcome.Err(submission.PhaseValidate); err != nil {
			return nil, err
		}
	}

	if outcome, ok := out.Modelling.Classify(); ok {
		report.ModellingOutcome = &outcome
		s.logger.Info("[SubmissionService] submission %s modelling %s (HTTP %d, %d attempts, %v)",
			p.id, outcome.Kind, out.Modelling.HTTPStatus, out.Attempts, time.Since(start))
		if err := outcome.Err(submission.PhaseModel); err != nil {
			return nil, err
		}
	} else {
		s.logger.Info("[SubmissionService] submission %s stopped at validation (%v)", p.id, time.Since(start))
	}

	return report, nil
}
