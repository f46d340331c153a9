package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"gofaas/domain/submission"
	"gofaas/internal"
	"gofaas/internal/errors"
	"gofaas/ports"
)

// ProtocolConfig holds the endpoints and retry policy of a submission
type ProtocolConfig struct {
	ValidateURL string
	ModelURL    string
	UserAgent   string
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
}

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Protocol runs the validate / validate-then-model exchanges against the
// remote service. It holds no per-call state and is safe for concurrent use.
type Protocol struct {
	cfg    ProtocolConfig
	logger *internal.Logger
	sleep  SleepFunc
}

// NewProtocol creates a protocol runner
func NewProtocol(cfg ProtocolConfig, logger *internal.Logger) *Protocol {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Protocol{cfg: cfg, logger: logger, sleep: contextSleep}
}

// WithSleep replaces the wait between attempts
func (p *Protocol) WithSleep(sleep SleepFunc) *Protocol {
	cp := *p
	cp.sleep = sleep
	return &cp
}

func contextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Call is one submission: encoded body plus credentials and transport
type Call struct {
	Client         ports.HTTPClient
	Token          string
	Body           string
	SkipValidation bool
}

// ValidateOutput is the answer of a validate-only call
type ValidateOutput struct {
	Result   submission.ValidationResult
	Attempts int
}

// RunOutput is the answer of a dual-phase call
type RunOutput struct {
	Validation submission.ValidationResult
	Modelling  submission.ModellingResult
	Attempts   int
}

// Validate posts to the validation endpoint, retrying while it answers 500
func (p *Protocol) Validate(ctx context.Context, call Call) (*ValidateOutput, error) {
	var last submission.ValidationResult
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		resp, err := p.postValidate(ctx, call)
		if err != nil {
			return nil, err
		}
		last = submission.ValidationResult{HTTPStatus: resp.StatusCode, Body: resp.Body}
		if resp.StatusCode != http.StatusInternalServerError {
			return &ValidateOutput{Result: last, Attempts: attempt}, nil
		}

		p.logger.Warn("[Protocol] validate attempt %d/%d answered 500", attempt, p.cfg.MaxAttempts)
		if attempt < p.cfg.MaxAttempts {
			if err := p.sleep(ctx, p.cfg.RetryDelay); err != nil {
				return nil, errors.Wrap(err, "submission cancelled")
			}
		}
	}
	return &ValidateOutput{Result: last, Attempts: p.cfg.MaxAttempts}, nil
}

// Run performs the dual-phase exchange. An attempt is repeated, validation
// included, while the modelling answer carries neither status nor info.
func (p *Protocol) Run(ctx context.Context, call Call) (*RunOutput, error) {
	var out RunOutput
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		v, m, err := p.runOnce(ctx, call)
		if err != nil {
			return nil, err
		}
		out = RunOutput{Validation: v, Modelling: m, Attempts: attempt}
		if submission.HasStatusOrInfo(m.Body) {
			return &out, nil
		}

		p.logger.Warn("[Protocol] modelling attempt %d/%d returned an unexpected body (HTTP %d)", attempt, p.cfg.MaxAttempts, m.HTTPStatus)
		if attempt < p.cfg.MaxAttempts {
			if err := p.sleep(ctx, p.cfg.RetryDelay); err != nil {
				return nil, errors.Wrap(err, "submission cancelled")
			}
		}
	}
	return &out, nil
}

type step int

const (
	stepValidate step = iota
	stepModel
	stepRejected
	stepDone
)

// runOnce walks validate -> model (or validate -> rejected) once
func (p *Protocol) runOnce(ctx context.Context, call Call) (submission.ValidationResult, submission.ModellingResult, error) {
	var v submission.ValidationResult
	var m submission.ModellingResult

	s := stepValidate
	if call.SkipValidation {
		v = submission.SkippedValidation()
		s = stepModel
	}

	for s != stepDone {
		switch s {
		case stepValidate:
			resp, err := p.postValidate(ctx, call)
			if err != nil {
				return v, m, err
			}
			v = submission.ValidationResult{HTTPStatus: resp.StatusCode, Body: resp.Body}
			s = nextAfterValidation(v)

		case stepModel:
			resp, err := p.postModel(ctx, call)
			if err != nil {
				return v, m, err
			}
			m = submission.NewModellingResult(resp.StatusCode, resp.Body)
			s = stepDone

		case stepRejected:
			p.logger.Info("[Protocol] validation did not pass (HTTP %d), modelling skipped", v.HTTPStatus)
			m = submission.ValidationFailed()
			if !submission.HTTPOK(v.HTTPStatus) {
				v = submission.WrapAPIStatus(v.HTTPStatus, v.Body)
			}
			s = stepDone
		}
	}
	return v, m, nil
}

// nextAfterValidation is the only way from validation to modelling: the
// HTTP status and the body status are accepted and error_list is empty.
func nextAfterValidation(v submission.ValidationResult) step {
	if submission.HTTPOK(v.HTTPStatus) && submission.BodyStatusOK(v.Body) && !submission.HasErrors(v.Body) {
		return stepModel
	}
	return stepRejected
}

func (p *Protocol) headers(token, contentType string) map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + token,
		"User-Agent":    p.cfg.UserAgent,
		"Content-Type":  contentType,
	}
}

func (p *Protocol) postValidate(ctx context.Context, call Call) (*ports.HTTPResponse, error) {
	form := url.Values{}
	form.Set("body", call.Body)
	form.Set("check_model_spec", "True")

	p.logger.Debug("[Protocol] POST %s", p.cfg.ValidateURL)
	resp, err := call.Client.Post(ctx, p.cfg.ValidateURL, []byte(form.Encode()),
		p.headers(call.Token, "application/x-www-form-urlencoded"), p.cfg.Timeout)
	if err != nil {
		return nil, errors.Wrap(asTransportError(err), "validation request failed")
	}
	return resp, nil
}

func (p *Protocol) postModel(ctx context.Context, call Call) (*ports.HTTPResponse, error) {
	body, err := json.Marshal(map[string]interface{}{
		"body":            call.Body,
		"skip_validation": true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode modelling request")
	}

	p.logger.Debug("[Protocol] POST %s", p.cfg.ModelURL)
	resp, err := call.Client.Post(ctx, p.cfg.ModelURL, body, p.headers(call.Token, "application/json"), p.cfg.Timeout)
	if err != nil {
		return nil, errors.Wrap(asTransportError(err), "modelling request failed")
	}
	return resp, nil
}

// asTransportError tags errors from clients that do not use AppError
func asTransportError(err error) error {
	if errors.IsAppError(err) {
		return err
	}
	return errors.ExternalServiceError("FaaS", err)
}
