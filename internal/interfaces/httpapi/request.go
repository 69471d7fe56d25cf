package httpapi

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/cuebook/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

var strictJSON = sonic.Config{DisallowUnknownFields: true}.Froze()

// formBinder is implemented by request types that can also be posted from an
// HTML form.
type formBinder interface {
	bindForm(values url.Values) error
}

// decodeRequest fills dst from a JSON or form-urlencoded body. An empty body
// is accepted when allowEmpty is set.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst formBinder, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	if isFormRequest(r) {
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("%w: invalid form payload: %v", usecase.ErrInvalidInput, err)
		}
		return dst.bindForm(r.PostForm)
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
	}
	if err := strictJSON.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func isFormRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/x-www-form-urlencoded"
}

type submitResultRequest struct {
	PointsA  *int   `json:"points_a" validate:"required,gte=0"`
	PointsB  *int   `json:"points_b" validate:"required,gte=0"`
	Innings  *int   `json:"innings"`
	HighRunA *int   `json:"high_run_a"`
	HighRunB *int   `json:"high_run_b"`
	Notes    string `json:"notes" validate:"max=500"`
}

func (req *submitResultRequest) bindForm(values url.Values) error {
	var err error
	if req.PointsA, err = parseOptionalInt(values, "points_a"); err != nil {
		return err
	}
	if req.PointsB, err = parseOptionalInt(values, "points_b"); err != nil {
		return err
	}
	if req.Innings, err = parseOptionalInt(values, "innings"); err != nil {
		return err
	}
	if req.HighRunA, err = parseOptionalInt(values, "high_run_a"); err != nil {
		return err
	}
	if req.HighRunB, err = parseOptionalInt(values, "high_run_b"); err != nil {
		return err
	}
	req.Notes = values.Get("notes")
	return nil
}

// emptyRequest accepts an optional, field-less body for approve and lock.
type emptyRequest struct{}

func (req *emptyRequest) bindForm(url.Values) error {
	return nil
}

type createSeasonRequest struct {
	Name            string `json:"name" validate:"required,max=120"`
	StartDate       string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate         string `json:"end_date" validate:"required,datetime=2006-01-02"`
	RaceToDefault   int    `json:"race_to_default" validate:"omitempty,gte=1"`
	InningsRequired bool   `json:"innings_required"`
	HighRunEnabled  bool   `json:"high_run_enabled"`
	HandicapMethod  string `json:"handicap_method" validate:"omitempty,oneof=adjusted_race_to spot_points none"`
	SubmissionRule  string `json:"submission_rule" validate:"omitempty,oneof=player_submits scorekeeper_submits"`
}

func (req *createSeasonRequest) bindForm(values url.Values) error {
	req.Name = values.Get("name")
	req.StartDate = values.Get("start_date")
	req.EndDate = values.Get("end_date")
	raceTo, err := parseOptionalInt(values, "race_to_default")
	if err != nil {
		return err
	}
	if raceTo != nil {
		req.RaceToDefault = *raceTo
	}
	req.InningsRequired = parseCheckbox(values.Get("innings_required"))
	req.HighRunEnabled = parseCheckbox(values.Get("high_run_enabled"))
	req.HandicapMethod = values.Get("handicap_method")
	req.SubmissionRule = values.Get("submission_rule")
	return nil
}

type addPlayerRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=80"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"omitempty,max=32"`
	UserID      string `json:"user_id" validate:"omitempty,max=64"`
}

func (req *addPlayerRequest) bindForm(values url.Values) error {
	req.DisplayName = values.Get("display_name")
	req.Email = strings.TrimSpace(values.Get("email"))
	req.Phone = values.Get("phone")
	req.UserID = values.Get("user_id")
	return nil
}

type updateHandicapRequest struct {
	HandicapPoints *int `json:"handicap_points" validate:"required,gte=0"`
}

func (req *updateHandicapRequest) bindForm(values url.Values) error {
	var err error
	req.HandicapPoints, err = parseOptionalInt(values, "handicap_points")
	return err
}

type recomputeJobRequest struct {
	SeasonID   string `json:"season_id"`
	DispatchID string `json:"dispatch_id"`
}

func (req *recomputeJobRequest) bindForm(values url.Values) error {
	req.SeasonID = values.Get("season_id")
	req.DispatchID = values.Get("dispatch_id")
	return nil
}

func parseOptionalInt(values url.Values, field string) (*int, error) {
	raw := strings.TrimSpace(values.Get(field))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a whole number", usecase.ErrInvalidInput, field)
	}
	return &v, nil
}

func parseCheckbox(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "on", "true", "yes":
		return true
	default:
		return false
	}
}
