package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"salarypredict/logging"
	"salarypredict/ml"
	"salarypredict/monitoring"
)

// PredictionResponse 预测响应，同时推送给实时订阅者
type PredictionResponse struct {
	EmployeeID      int64     `json:"employee_id"`
	PredictedSalary float64   `json:"predicted_salary"`
	ModelVersion    string    `json:"model_version"`
	Record          ml.Record `json:"record"`
}

func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	in, err := decodeRecordInput(r)
	if err != nil {
		h.observe(writePredictionError(w, r, err), 0)
		return
	}
	rec, err := ml.ParseRecord(in)
	if err != nil {
		h.observe(writePredictionError(w, r, err), 0)
		return
	}

	pred, err := h.predictor.Predict(rec)
	if err != nil {
		h.observe(writePredictionError(w, r, err), 0)
		return
	}
	if math.IsNaN(pred.Salary) || math.IsInf(pred.Salary, 0) {
		logger.Error("non-finite prediction",
			zap.String("model_version", pred.ModelVersion),
			zap.Any("record", rec),
		)
		respondError(w, http.StatusInternalServerError, "internal model error")
		h.observe(monitoring.OutcomeError, 0)
		return
	}

	employeeID, err := h.store.SavePrediction(ctx, rec, pred.Salary, pred.ModelVersion)
	if err != nil {
		logger.Error("store prediction failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to store prediction")
		h.observe(monitoring.OutcomeStoreError, 0)
		return
	}

	resp := PredictionResponse{
		EmployeeID:      employeeID,
		PredictedSalary: roundCents(pred.Salary),
		ModelVersion:    pred.ModelVersion,
		Record:          rec,
	}
	h.observe(monitoring.OutcomeOK, pred.Salary)
	if h.publisher != nil && !h.publisher.Publish(monitoring.MessagePrediction, resp) {
		h.logger.Debug("live feed full, prediction not broadcast", zap.Int64("employee_id", employeeID))
	}

	logger.Debug("prediction served",
		zap.Int64("employee_id", employeeID),
		zap.String("model_version", pred.ModelVersion),
		zap.Float64("predicted_salary", resp.PredictedSalary),
	)
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) observe(outcome string, salary float64) {
	if h.metrics != nil {
		h.metrics.ObservePrediction(outcome, salary)
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// decodeRecordInput 从JSON请求体或表单读取字段，JSON中数字和字符串都接受
func decodeRecordInput(r *http.Request) (ml.RecordInput, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return decodeJSONInput(r)
	}

	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ml.RecordInput{}, err
		}
		return ml.RecordInput{}, &ml.ParseError{Field: "body", Reason: "malformed form data"}
	}
	return ml.RecordInput{
		Age:               r.PostFormValue(ml.FieldAge),
		Gender:            r.PostFormValue(ml.FieldGender),
		EducationLevel:    r.PostFormValue(ml.FieldEducationLevel),
		JobTitle:          r.PostFormValue(ml.FieldJobTitle),
		YearsOfExperience: r.PostFormValue(ml.FieldYearsOfExperience),
	}, nil
}

func decodeJSONInput(r *http.Request) (ml.RecordInput, error) {
	var body map[string]any
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ml.RecordInput{}, err
		}
		return ml.RecordInput{}, &ml.ParseError{Field: "body", Reason: "malformed JSON"}
	}

	var in ml.RecordInput
	targets := []struct {
		field string
		dst   *string
	}{
		{ml.FieldAge, &in.Age},
		{ml.FieldGender, &in.Gender},
		{ml.FieldEducationLevel, &in.EducationLevel},
		{ml.FieldJobTitle, &in.JobTitle},
		{ml.FieldYearsOfExperience, &in.YearsOfExperience},
	}
	for _, t := range targets {
		switch v := body[t.field].(type) {
		case nil:
		case string:
			*t.dst = v
		case json.Number:
			*t.dst = v.String()
		default:
			return ml.RecordInput{}, &ml.ParseError{
				Field:  t.field,
				Value:  fmt.Sprint(v),
				Reason: "must be a string or number",
			}
		}
	}
	return in, nil
}
