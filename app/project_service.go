package app

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"gofaas/domain/core"
	"gofaas/internal"
	"gofaas/internal/config"
	"gofaas/internal/errors"
	"gofaas/ports"
)

// Project statuses the download flow reacts to
const (
	ProjectStatusSuccess        = "success"
	ProjectStatusPartialSuccess = "partial_success"
	ProjectStatusError          = "error"
	ProjectStatusExcluded       = "excluded"
)

var filenameSpecialChars = regexp.MustCompile(`[@!#$%^&*()<>?/\\|}{~:\[\]]`)

// Project is one entry of the project listing. Raw keeps the full record.
type Project struct {
	ID        string
	Name      string
	Status    string
	CreatedAt string
	Raw       map[string]interface{}
}

// DownloadResult tells whether the archive was written
type DownloadResult struct {
	Status     string
	Path       string
	Downloaded bool
}

// ProjectService lists projects and downloads their results
type ProjectService struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	tokens    ports.TokenProvider
	client    ports.HTTPClient
	logger    *internal.Logger
}

// NewProjectService creates a project service
func NewProjectService(cfg config.APIConfig, tokens ports.TokenProvider, client ports.HTTPClient, logger *internal.Logger) *ProjectService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &ProjectService{
		baseURL:   strings.TrimRight(cfg.ProjectsURL, "/"),
		userAgent: cfg.UserAgent,
		timeout:   cfg.RequestTimeout,
		tokens:    tokens,
		client:    client,
		logger:    logger,
	}
}

// ListProjects returns the projects of the authenticated user
func (s *ProjectService) ListProjects(ctx context.Context) ([]Project, error) {
	resp, err := s.get(ctx, s.baseURL)
	if err != nil {
		return nil, err
	}
	if err := statusError(resp.StatusCode); err != nil {
		return nil, err
	}

	records := gjson.GetBytes(resp.Body, "records")
	if !records.IsArray() {
		return nil, errors.Unmapped(fmt.Sprintf("Status Code: %d. Content: %s.\nUnmapped internal error.", resp.StatusCode, resp.Body))
	}

	var projects []Project
	records.ForEach(func(_, rec gjson.Result) bool {
		raw, _ := rec.Value().(map[string]interface{})
		projects = append(projects, Project{
			ID:        first(rec, "id", "_id", "project_id"),
			Name:      first(rec, "project_name", "name"),
			Status:    rec.Get("status").String(),
			CreatedAt: first(rec, "created_at", "creation_date"),
			Raw:       raw,
		})
		return true
	})
	s.logger.Debug("[ProjectService] listed %d projects", len(projects))
	return projects, nil
}

// Status returns the processing status of a project
func (s *ProjectService) Status(ctx context.Context, projectID string) (string, error) {
	id, err := core.ParseProjectID(projectID)
	if err != nil {
		return "", errors.WithCode(errors.CodeInvalidInput, err)
	}

	resp, err := s.get(ctx, s.baseURL+"/"+url.PathEscape(id.String()))
	if err != nil {
		return "", err
	}
	if err := statusError(resp.StatusCode); err != nil {
		return "", err
	}

	status := gjson.GetBytes(resp.Body, "status")
	if !status.Exists() {
		return "", errors.Unmapped(fmt.Sprintf("Status Code: %d. Content: %s.\nUnmapped internal error.", resp.StatusCode, resp.Body))
	}
	return status.String(), nil
}

// Download saves every output of a finished project as
// <dir>/forecast-<filename>.zip. Projects still running are reported by
// status without downloading anything.
func (s *ProjectService) Download(ctx context.Context, projectID, dir, filename string) (*DownloadResult, error) {
	if filenameSpecialChars.MatchString(filename) {
		return nil, errors.InvalidInput("Variable 'filename' must not contain special characters")
	}

	id, err := core.ParseProjectID(projectID)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	status, err := s.Status(ctx, id.String())
	if err != nil {
		return nil, err
	}

	switch status {
	case ProjectStatusError:
		return nil, errors.ModelingError("There was an error while running your job.")
	case ProjectStatusExcluded:
		return nil, errors.ModelingError("The project with this project_id has been excluded.")
	case ProjectStatusPartialSuccess:
		s.logger.Warn("[ProjectService] At least one of the outputs from project %s is not yet ready, downloading available files.", id)
	case ProjectStatusSuccess:
	default:
		s.logger.Info("[ProjectService] Your request is still being processed, with the following status: %s", status)
		return &DownloadResult{Status: status}, nil
	}

	resp, err := s.get(ctx, s.baseURL+"/"+url.PathEscape(id.String())+"/download")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusInternalServerError {
		return nil, errors.Unmapped("Status Code: 500 - Error downloading file \nCheck your internet connection and try again.")
	}
	if err := statusError(resp.StatusCode); err != nil {
		return nil, err
	}

	path, err := writeArchive(dir, filename, resp.Body)
	if err != nil {
		return nil, err
	}
	s.logger.Info("[ProjectService] File downloaded to %s", path)
	return &DownloadResult{Status: status, Path: path, Downloaded: true}, nil
}

func (s *ProjectService) get(ctx context.Context, target string) (*ports.HTTPResponse, error) {
	token, err := s.tokens.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Get(ctx, target, map[string]string{
		"Authorization": "Bearer " + token,
		"User-Agent":    s.userAgent,
	}, s.timeout)
	if err != nil {
		return nil, errors.Wrap(asTransportError(err), "projects request failed")
	}
	return resp, nil
}

// statusError maps a non-ok HTTP status of the projects API
func statusError(status int) error {
	if status >= 200 && status < 300 {
		return nil
	}
	switch status {
	case http.StatusUnauthorized:
		return errors.Unauthorized("")
	case http.StatusForbidden:
		return errors.Forbidden()
	case http.StatusServiceUnavailable:
		return errors.ServiceUnavailable(fmt.Sprintf("Status code: %d\nContent: Service Unavailable\nPlease try again later", status))
	}
	return errors.Unmapped(fmt.Sprintf("Status code: %d\nAPI Error: An error occurred when trying to retrieve the requested information.\nPlease try again later.", status))
}

func writeArchive(dir, filename string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create %s", dir)
	}
	path := filepath.Join(dir, fmt.Sprintf("forecast-%s.zip", filename))

	tmp, err := os.CreateTemp(dir, ".forecast-*.zip")
	if err != nil {
		return "", errors.Wrap(err, "failed to create download file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", errors.Wrap(err, "failed to write download file")
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(err, "failed to write download file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", errors.Wrap(err, "failed to move download into place")
	}
	return path, nil
}

func first(rec gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := rec.Get(k); v.Exists() {
			return v.String()
		}
	}
	return ""
}
