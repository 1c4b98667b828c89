package routes

import (
	"digest/digest/controllers"
	"digest/digest/utils/logging"
	"digest/digest/utils/types"
	"digest/digest/utils/validation"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const summaryIDParam = "summary_id"

func handleJSON(handler func(r *http.Request) (any, int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, status, err := handler(r)
		if err != nil {
			writeError(w, r, status, err)
			return
		}
		writeJSON(w, status, res)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusUnprocessableEntity, types.ErrorResponse{Detail: verrs})
	case errors.Is(err, controllers.ErrSummaryNotFound), errors.Is(err, controllers.ErrArticleNotFound):
		writeJSON(w, http.StatusNotFound, types.ErrorResponse{Detail: err.Error()})
	default:
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
		logging.ErrorLogger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, status, types.ErrorResponse{Detail: http.StatusText(status)})
	}
}

// pathAndBody reports path parameter errors ahead of body errors, together.
func pathAndBody(pathErr, bodyErr error) error {
	var pathErrs, bodyErrs validation.Errors
	if pathErr != nil && !errors.As(pathErr, &pathErrs) {
		return pathErr
	}
	if bodyErr != nil && !errors.As(bodyErr, &bodyErrs) {
		return bodyErr
	}
	if len(pathErrs)+len(bodyErrs) == 0 {
		return nil
	}
	return append(pathErrs, bodyErrs...)
}

func SummaryRoutes(ctrl *controllers.SummariesController, v *validation.Validator) chi.Router {
	r := chi.NewRouter()

	// Create summary; summarization runs in the background
	r.Post("/", handleJSON(func(r *http.Request) (any, int, error) {
		var req types.CreateSummaryRequest
		if err := v.DecodeJSON(r.Body, &req); err != nil {
			return nil, http.StatusUnprocessableEntity, err
		}
		summary, err := ctrl.CreateSummary(r.Context(), *req.URL)
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		return types.SummaryRef{ID: summary.ID, URL: summary.URL}, http.StatusCreated, nil
	}))

	// List summaries
	r.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
		summaries, err := ctrl.ListSummaries(r.Context())
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		return summaries, http.StatusOK, nil
	}))

	r.Route("/{summary_id}", func(r chi.Router) {
		// Get single summary
		r.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
			id, err := validation.PositiveID(summaryIDParam, chi.URLParam(r, summaryIDParam))
			if err != nil {
				return nil, http.StatusUnprocessableEntity, err
			}
			summary, err := ctrl.GetSummary(r.Context(), id)
			if err != nil {
				return nil, http.StatusInternalServerError, err
			}
			return summary, http.StatusOK, nil
		}))

		// Replace url and summary
		r.Put("/", handleJSON(func(r *http.Request) (any, int, error) {
			id, pathErr := validation.PositiveID(summaryIDParam, chi.URLParam(r, summaryIDParam))
			var req types.UpdateSummaryRequest
			bodyErr := v.DecodeJSON(r.Body, &req)
			if err := pathAndBody(pathErr, bodyErr); err != nil {
				return nil, http.StatusUnprocessableEntity, err
			}
			summary, err := ctrl.UpdateSummary(r.Context(), id, *req.URL, *req.Summary)
			if err != nil {
				return nil, http.StatusInternalServerError, err
			}
			return types.SummaryRef{ID: summary.ID, URL: summary.URL}, http.StatusOK, nil
		}))

		// Delete summary
		r.Delete("/", handleJSON(func(r *http.Request) (any, int, error) {
			id, err := validation.PositiveID(summaryIDParam, chi.URLParam(r, summaryIDParam))
			if err != nil {
				return nil, http.StatusUnprocessableEntity, err
			}
			summary, err := ctrl.DeleteSummary(r.Context(), id)
			if err != nil {
				return nil, http.StatusInternalServerError, err
			}
			return types.SummaryRef{ID: summary.ID, URL: summary.URL}, http.StatusOK, nil
		}))

		// Archived article
		r.Get("/article", handleJSON(func(r *http.Request) (any, int, error) {
			id, err := validation.PositiveID(summaryIDParam, chi.URLParam(r, summaryIDParam))
			if err != nil {
				return nil, http.StatusUnprocessableEntity, err
			}
			obj, err := ctrl.GetArticle(r.Context(), id)
			if err != nil {
				return nil, http.StatusInternalServerError, err
			}
			return obj, http.StatusOK, nil
		}))
	})
	return r
}
