package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"ContentPilot/internal/domain"
	"ContentPilot/internal/workflow"
)

// WorkflowRequest is the action envelope for POST /api/v1/workflow.
type WorkflowRequest struct {
	Action     string `json:"action"`
	CampaignID string `json:"campaignId,omitempty"`

	UserID              string   `json:"userId,omitempty"`
	BrandID             string   `json:"brandId,omitempty"`
	WebsiteURL          string   `json:"websiteUrl,omitempty"`
	BusinessDescription string   `json:"businessDescription,omitempty"`
	NumberOfArticles    int      `json:"numberOfArticles,omitempty"`
	ArticleLength       string   `json:"articleLength,omitempty"`
	Language            string   `json:"language,omitempty"`
	TargetCountry       string   `json:"targetCountry,omitempty"`
	SelectedTitles      []string `json:"selectedTitles,omitempty"`
}

// StepView is one tracker step rendered for the caller.
type StepView struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// WorkflowResponse is the success envelope.
type WorkflowResponse struct {
	Success    bool           `json:"success"`
	CampaignID string         `json:"campaignId,omitempty"`
	Status     string         `json:"status,omitempty"`
	Keywords   []string       `json:"keywords,omitempty"`
	Topics     []domain.Topic `json:"topics,omitempty"`
	Steps      []StepView     `json:"steps,omitempty"`
	Generated  *int           `json:"generated,omitempty"`
	Progress   int            `json:"progress,omitempty"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// handleWorkflow dispatches one named action against the orchestrator.
func (s *Server) handleWorkflow(w http.ResponseWriter, r *http.Request) {
	var req WorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Action {
	case "start_workflow":
		s.handleStart(w, r, req)
	case "run_workflow":
		s.handleRun(w, r, req)
	case "generate_articles":
		s.handleGenerate(w, r, req)
	case "check_progress":
		s.handleProgress(w, r, req)
	default:
		s.sendError(w, http.StatusBadRequest, "unknown action: "+req.Action)
	}
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request, req WorkflowRequest) {
	result, err := s.orchestrator.StartWorkflow(r.Context(), domain.CampaignConfig{
		UserID:              req.UserID,
		BrandID:             req.BrandID,
		WebsiteURL:          req.WebsiteURL,
		BusinessDescription: req.BusinessDescription,
		NumberOfArticles:    req.NumberOfArticles,
		ArticleLength:       domain.ArticleLength(req.ArticleLength),
		Language:            req.Language,
		TargetCountry:       req.TargetCountry,
	})
	if err != nil {
		s.sendActionError(w, err)
		return
	}

	s.sendJSON(w, http.StatusOK, WorkflowResponse{
		Success:    true,
		CampaignID: result.Campaign.ID,
		Status:     string(result.Campaign.Status),
		Keywords:   result.Keywords,
		Progress:   result.Progress,
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, req WorkflowRequest) {
	if req.CampaignID == "" {
		s.sendError(w, http.StatusBadRequest, "campaignId is required")
		return
	}

	result, err := s.orchestrator.RunWorkflow(r.Context(), req.CampaignID)
	if err != nil {
		s.sendActionError(w, err)
		return
	}

	s.sendJSON(w, http.StatusOK, WorkflowResponse{
		Success:    true,
		CampaignID: req.CampaignID,
		Status:     string(domain.StatusKeywordResearch),
		Keywords:   result.Keywords,
		Topics:     result.Topics,
		Steps:      toStepViews(result.Steps),
		Progress:   result.Progress,
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, req WorkflowRequest) {
	if req.CampaignID == "" {
		s.sendError(w, http.StatusBadRequest, "campaignId is required")
		return
	}

	generated, err := s.orchestrator.GenerateArticles(r.Context(), req.CampaignID, req.SelectedTitles)
	if err != nil {
		s.sendActionError(w, err)
		return
	}

	s.sendJSON(w, http.StatusOK, WorkflowResponse{
		Success:    true,
		CampaignID: req.CampaignID,
		Generated:  &generated,
	})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request, req WorkflowRequest) {
	if req.CampaignID == "" {
		s.sendError(w, http.StatusBadRequest, "campaignId is required")
		return
	}

	report, err := s.orchestrator.CheckProgress(r.Context(), req.CampaignID)
	if err != nil {
		s.sendActionError(w, err)
		return
	}

	s.sendJSON(w, http.StatusOK, WorkflowResponse{
		Success:    true,
		CampaignID: report.CampaignID,
		Status:     string(report.Status),
		Progress:   report.Progress,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sendActionError maps the workflow error taxonomy onto HTTP statuses.
func (s *Server) sendActionError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, workflow.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, workflow.ErrAuthentication):
		status = http.StatusUnauthorized
	case errors.Is(err, workflow.ErrQuotaExceeded):
		status = http.StatusPaymentRequired
	case errors.Is(err, workflow.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workflow.ErrWorkflowBusy):
		status = http.StatusConflict
	}

	s.sendError(w, status, err.Error())
}

func (s *Server) sendError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, ErrorResponse{Success: false, Error: message})
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func toStepViews(steps []workflow.Step) []StepView {
	views := make([]StepView, 0, len(steps))
	for _, step := range steps {
		views = append(views, StepView{
			ID:      step.ID,
			Title:   step.Title,
			Status:  string(step.Status),
			Message: step.Message,
		})
	}
	return views
}
