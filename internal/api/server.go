package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"paperchat/internal/chat"
	"paperchat/internal/config"
	"paperchat/internal/jobs"
	"paperchat/internal/models"
	"paperchat/internal/providers"
	"paperchat/internal/storage"
	"paperchat/internal/util"
	"paperchat/internal/workflows"

	"github.com/jackc/pgx/v5"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
)

type Server struct {
	cfg         config.Config
	db          *storage.DB
	contentRepo *storage.ContentRepo
	paperRepo   *storage.PaperRepo
	registry    *jobs.Registry
	chatSvc     *chat.Service
	temporal    tclient.Client
}

func NewServer(cfg config.Config) *Server {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		panic(err)
	}
	pm, err := providers.NewManager(cfg.LLMProviders)
	if err != nil {
		panic(err)
	}
	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		panic(err)
	}
	contentRepo := storage.NewContentRepo(db)
	paperRepo := storage.NewPaperRepo(db)
	return &Server{
		cfg:         cfg,
		db:          db,
		contentRepo: contentRepo,
		paperRepo:   paperRepo,
		registry:    jobs.NewRegistry(storage.NewJobRepo(db)),
		chatSvc: chat.NewService(
			contentRepo,
			paperRepo,
			storage.NewSessionRepo(db),
			pm,
			storage.NewModelCallRepo(db),
			cfg.RelevanceFloor,
			cfg.HistoryWindow,
		),
		temporal: tc,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/jobs", s.handleJobs)
	mux.HandleFunc("/jobs/", s.handleJobScoped)
	mux.HandleFunc("/papers/upload", s.handleUpload)
	mux.HandleFunc("/papers/", s.handlePaperScoped)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		SessionID        string `json:"sessionId"`
		PaperID          string `json:"paperId"`
		Question         string `json:"question"`
		SelectedExcerpt  string `json:"selectedExcerpt"`
		SelectionLocator string `json:"selectionLocator"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	req.PaperID = strings.TrimSpace(req.PaperID)
	req.Question = strings.TrimSpace(req.Question)
	if req.PaperID == "" || req.Question == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("paper_id and question are required"))
		return
	}
	resp := s.chatSvc.Answer(r.Context(), chat.Request{
		SessionID: req.SessionID,
		PaperID:   req.PaperID,
		Question: models.Question{
			RawText:          req.Question,
			SelectedExcerpt:  req.SelectedExcerpt,
			SelectionLocator: req.SelectionLocator,
		},
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		Kind      models.JobKind  `json:"kind"`
		SubjectID string          `json:"subjectId"`
		Payload   json.RawMessage `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	req.SubjectID = strings.TrimSpace(req.SubjectID)
	if req.SubjectID == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("kind and subject_id are required"))
		return
	}

	switch req.Kind {
	case models.JobCitationCheck:
		job, err := s.registry.Submit(r.Context(), req.Kind, req.SubjectID, util.SHA256Hex(req.Payload))
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		if err := s.startWorkflow(r.Context(), job, workflows.CitationCheckWorkflow, workflows.CitationCheckInput{
			JobID:   job.JobID,
			PaperID: req.SubjectID,
		}); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"jobId": job.JobID, "state": job.State})
	case models.JobExtraction:
		var payload struct {
			PaperPath string `json:"paper_path"`
			Filename  string `json:"filename"`
		}
		if err := json.Unmarshal(req.Payload, &payload); err != nil || strings.TrimSpace(payload.PaperPath) == "" {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("extraction payload requires paper_path"))
			return
		}
		job, err := s.registry.Submit(r.Context(), req.Kind, req.SubjectID, util.SHA256Hex(req.Payload))
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		filename := payload.Filename
		if filename == "" {
			filename = filepath.Base(payload.PaperPath)
		}
		if err := s.startWorkflow(r.Context(), job, workflows.ExtractionWorkflow, workflows.ExtractionInput{
			JobID:     job.JobID,
			PaperID:   req.SubjectID,
			PaperPath: payload.PaperPath,
			Filename:  filename,
		}); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"jobId": job.JobID, "state": job.State})
	default:
		writeErr(w, http.StatusBadRequest, fmt.Errorf("unsupported job kind: %s", req.Kind))
	}
}

// startWorkflow keys the workflow ID to the job ID, so the deduped submit
// path cannot spawn a second execution for the same job: starting an
// already-running ID just returns the existing run.
func (s *Server) startWorkflow(ctx context.Context, job models.Job, wf any, input any) error {
	_, err := s.temporal.ExecuteWorkflow(ctx, tclient.StartWorkflowOptions{
		ID:                    "job-" + job.JobID,
		TaskQueue:             s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}, wf, input)
	return err
}

func (s *Server) handleJobScoped(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	jobID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/jobs/"), "/")
	if jobID == "" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	job, err := s.registry.Poll(r.Context(), jobID)
	if err != nil {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handlePaperScoped(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/papers/"), "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "units" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	units, err := s.contentRepo.GetContentUnits(r.Context(), parts[0])
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"units": units})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if err := r.ParseMultipartForm(128 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}
	fh := firstFile(r.MultipartForm.File)
	if fh == nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no files provided"))
		return
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("only pdf files are accepted"))
		return
	}
	if err := util.EnsureDir(s.cfg.DataInRoot); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	paperID, savedPath, err := saveUploadedFile(s.cfg.DataInRoot, fh)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.paperRepo.UpsertPaper(r.Context(), models.PaperMetadata{
		PaperID:  paperID,
		Filename: filepath.Base(savedPath),
	}); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	job, err := s.registry.Submit(r.Context(), models.JobExtraction, paperID, paperID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.startWorkflow(r.Context(), job, workflows.ExtractionWorkflow, workflows.ExtractionInput{
		JobID:     job.JobID,
		PaperID:   paperID,
		PaperPath: savedPath,
		Filename:  filepath.Base(savedPath),
	}); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"paperId": paperID,
		"jobId":   job.JobID,
		"state":   job.State,
	})
}

// saveUploadedFile streams the upload to disk, using the sha256 of the
// content as the paper id so re-uploads of the same file converge.
func saveUploadedFile(dstDir string, fh *multipart.FileHeader) (paperID, path string, err error) {
	src, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(dstDir, "upload-*.pdf")
	if err != nil {
		return "", "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
	}()

	hashed := io.TeeReader(src, tmp)
	paperID, err = util.SHA256HexFromReader(hashed)
	if err != nil {
		return "", "", fmt.Errorf("write upload: %w", err)
	}
	finalPath := util.SafeJoin(dstDir, fh.Filename)
	if err := tmp.Close(); err != nil {
		return "", "", err
	}
	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		return "", "", fmt.Errorf("atomic move upload: %w", err)
	}
	return paperID, finalPath, nil
}

func firstFile(m map[string][]*multipart.FileHeader) *multipart.FileHeader {
	if files, ok := m["file"]; ok && len(files) > 0 {
		return files[0]
	}
	for _, v := range m {
		if len(v) > 0 {
			return v[0]
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "PC-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	case status >= 500:
		switch {
		case strings.Contains(raw, "relation") && strings.Contains(raw, "does not exist"):
			return apiError{
				Code:    "PC-DB-5001",
				Message: "Database schema is not initialized. Run migrations and retry.",
			}
		case strings.Contains(raw, "connect"), strings.Contains(raw, "dial tcp"), strings.Contains(raw, "connection refused"):
			return apiError{
				Code:    "PC-DB-5002",
				Message: "Database connection is unavailable. Check local services and retry.",
			}
		default:
			return apiError{
				Code:    "PC-API-5000",
				Message: "Internal server error. Please retry or check service logs.",
			}
		}
	case status == http.StatusBadRequest:
		code = "PC-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "PC-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusConflict:
		code = "PC-API-4009"
		msg = "Operation conflicts with current state. Retry after checking status."
	case status == http.StatusMethodNotAllowed:
		code = "PC-API-4005"
		msg = "This endpoint does not support the requested method."
	}

	if status >= 400 && status < 500 && err != nil {
		switch {
		case strings.Contains(raw, "paper_id and question are required"):
			msg = "Both paper and question are required."
		case strings.Contains(raw, "kind and subject_id are required"):
			msg = "Both job kind and subject are required."
		case strings.Contains(raw, "unsupported job kind"):
			msg = "Job kind must be extraction or citation_check."
		case strings.Contains(raw, "no files provided"):
			msg = "No PDF files were provided."
		case strings.Contains(raw, "only pdf"):
			msg = "Only PDF files are accepted."
		case strings.Contains(raw, "invalid json"):
			msg = "Malformed JSON request body."
		case errors.Is(err, pgx.ErrNoRows), strings.Contains(raw, "not found"):
			msg = "Requested resource was not found."
		}
	}

	return apiError{Code: code, Message: msg}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
