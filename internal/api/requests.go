// internal/api/requests.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"

	custom_errors "gibwerk/internal/errors"
	"gibwerk/internal/model"
)

var repoFullNamePattern = regexp.MustCompile(`^[^/]+/[^/]+$`)

var (
	dateRules = []validation.Rule{validation.Required, validation.Date(model.DateLayout).Error("must be a valid date in YYYY-MM-DD format")}
	repoRules = []validation.Rule{validation.Required, validation.Match(repoFullNamePattern).Error("must be in 'owner/repo' format")}
)

type exchangeTokenRequest struct {
	Token string `json:"token"`
}

func (r exchangeTokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
	)
}

type syncCommitsRequest struct {
	RepoPath string `json:"repoPath"`
}

func (r syncCommitsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RepoPath, validation.Required),
	)
}

type githubCommitsRequest struct {
	Repo string `json:"repo"`
}

func (r githubCommitsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Repo, repoRules...),
	)
}

type commitSummaryRequest struct {
	CommitID    int64  `json:"commitId"`
	RepoContext string `json:"repoContext"`
}

func (r commitSummaryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CommitID, validation.Required.Error("must be a positive integer"), validation.Min(int64(1)).Error("must be a positive integer")),
	)
}

type dailySummaryRequest struct {
	Date         string `json:"date"`
	RepoFullName string `json:"repoFullName"`
	Force        bool   `json:"force"`
}

func (r dailySummaryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Date, dateRules...),
		validation.Field(&r.RepoFullName, repoRules...),
	)
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

func (r generateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Prompt, validation.Required),
	)
}

type notionSyncRequest struct {
	Date         string `json:"date"`
	RepoFullName string `json:"repoFullName"`
	Summary      string `json:"summary"`
}

func (r notionSyncRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Date, dateRules...),
		validation.Field(&r.RepoFullName, repoRules...),
		validation.Field(&r.Summary, validation.Required),
	)
}

// decodeAndValidate reads a JSON body into dst and validates it.
func decodeAndValidate(r *http.Request, dst validation.Validatable) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &custom_errors.ValidationError{Message: fmt.Sprintf("invalid request body: %v", err)}
	}
	return validate(dst)
}

func validate(v validation.Validatable) error {
	if err := v.Validate(); err != nil {
		return &custom_errors.ValidationError{Message: err.Error()}
	}
	return nil
}
