package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studybuddy/internal/app"
	"studybuddy/internal/extract"
	"studybuddy/internal/httputil"
	"studybuddy/internal/llm"
	"studybuddy/internal/queue"
	"studybuddy/internal/quiz"
	"studybuddy/internal/store"
)

const (
	enqueueAttempts = 3
	enqueueBase     = 200 * time.Millisecond
)

var validate = httputil.NewValidator()

type createNoteRequest struct {
	Title string `json:"title" validate:"required,notblank,max=200"`
	Body  string `json:"body"`
}

type textRequest struct {
	Text string `json:"text" validate:"required,notblank"`
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.OK(w, http.StatusOK, map[string]string{"message": "StudyBuddy API is running"})
	}
}

func testAPIHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := deps.Gateway.TestConnection(r.Context())
		if !res.Success {
			httputil.Fail(deps.Log.With("provider", res.Provider), w, "AI service test failed: "+res.Error, nil, http.StatusInternalServerError)
			return
		}
		httputil.OK(w, http.StatusOK, map[string]any{
			"message":  "AI service is working",
			"provider": res.Provider,
			"response": res.Result,
		})
	}
}

func createNoteHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createNoteRequest
		if err := validate.DecodeJSON(w, r, deps.Config.MaxUploadSize, &req); err != nil {
			failValidation(deps.Log, w, err)
			return
		}
		note, err := deps.Store.CreateNote(r.Context(), strings.TrimSpace(req.Title), req.Body)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to create note", err, http.StatusInternalServerError)
			return
		}
		httputil.OK(w, http.StatusCreated, note)
	}
}

func getNoteHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		note, ok := loadNote(deps, w, r)
		if !ok {
			return
		}
		httputil.OK(w, http.StatusOK, note)
	}
}

func summarizeNoteHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		note, ok := loadAINote(deps, w, r)
		if !ok {
			return
		}
		if isAsync(r) {
			enqueue(deps, w, r, queue.TaskTypeSummarize, note.ID)
			return
		}

		log := deps.Log.With("note_id", note.ID)
		start := time.Now()
		summary, err := deps.Gateway.Summarize(r.Context(), note.Body)
		if err != nil {
			httputil.Fail(log, w, llm.Describe(err), err, http.StatusInternalServerError)
			return
		}
		latency := time.Since(start)

		if err := deps.Store.SaveSummary(r.Context(), note.ID, summary); err != nil {
			httputil.Fail(log, w, "failed to save summary", err, http.StatusInternalServerError)
			return
		}
		note.Summary = summary
		httputil.OKTimed(w, http.StatusOK, map[string]any{"note": note}, latency)
	}
}

func quizNoteHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		note, ok := loadAINote(deps, w, r)
		if !ok {
			return
		}
		if isAsync(r) {
			enqueue(deps, w, r, queue.TaskTypeQuiz, note.ID)
			return
		}

		start := time.Now()
		q := deps.Gateway.GenerateQuiz(r.Context(), note.Body)
		latency := time.Since(start)

		if err := deps.Store.SaveQuiz(r.Context(), note.ID, q); err != nil {
			httputil.Fail(deps.Log.With("note_id", note.ID), w, "failed to save quiz", err, http.StatusInternalServerError)
			return
		}
		note.Quiz = q
		httputil.OKTimed(w, http.StatusOK, map[string]any{"note": note, "quiz": q}, latency)
	}
}

func summarizeTextHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, err := readText(deps, w, r)
		if err != nil {
			failValidation(deps.Log, w, err)
			return
		}
		start := time.Now()
		summary, err := deps.Gateway.Summarize(r.Context(), text)
		if err != nil {
			httputil.Fail(deps.Log, w, llm.Describe(err), err, http.StatusInternalServerError)
			return
		}
		httputil.OKTimed(w, http.StatusOK, map[string]string{"summary": summary}, time.Since(start))
	}
}

func quizTextHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, err := readText(deps, w, r)
		if err != nil {
			failValidation(deps.Log, w, err)
			return
		}
		start := time.Now()
		q := deps.Gateway.GenerateQuiz(r.Context(), text)
		httputil.OKTimed(w, http.StatusOK, map[string]quiz.Quiz{"quiz": q}, time.Since(start))
	}
}

// loadNote resolves the {id} URL parameter and writes the error response itself
// when the note cannot be returned.
func loadNote(deps app.Deps, w http.ResponseWriter, r *http.Request) (store.Note, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(deps.Log, w, "invalid note id", err, http.StatusBadRequest)
		return store.Note{}, false
	}
	note, err := deps.Store.GetNote(r.Context(), id)
	if errors.Is(err, store.ErrNoteNotFound) {
		httputil.Fail(deps.Log, w, "Note not found", err, http.StatusNotFound)
		return store.Note{}, false
	}
	if err != nil {
		httputil.Fail(deps.Log, w, "failed to load note", err, http.StatusInternalServerError)
		return store.Note{}, false
	}
	return note, true
}

// loadAINote is loadNote plus the empty-body check that keeps blank notes away
// from the gateway.
func loadAINote(deps app.Deps, w http.ResponseWriter, r *http.Request) (store.Note, bool) {
	note, ok := loadNote(deps, w, r)
	if !ok {
		return store.Note{}, false
	}
	if strings.TrimSpace(note.Body) == "" {
		err := &httputil.ValidationError{Field: "body", Message: "Note body is empty"}
		httputil.Fail(deps.Log.With("note_id", note.ID), w, err.Message, err, http.StatusBadRequest)
		return store.Note{}, false
	}
	return note, true
}

func isAsync(r *http.Request) bool {
	return r.URL.Query().Get("async") == "true"
}

func enqueue(deps app.Deps, w http.ResponseWriter, r *http.Request, taskType queue.TaskType, noteID uuid.UUID) {
	log := deps.Log.With("note_id", noteID, "type", taskType)
	if deps.Queue == nil {
		httputil.Fail(log, w, "async processing is not configured", nil, http.StatusServiceUnavailable)
		return
	}
	task, err := queue.NewNoteTask(taskType, noteID)
	if err != nil {
		httputil.Fail(log, w, "failed to build task", err, http.StatusInternalServerError)
		return
	}
	if err := queue.EnqueueWithRetry(r.Context(), deps.Queue, task, enqueueAttempts, enqueueBase); err != nil {
		httputil.Fail(log, w, "failed to enqueue note; please retry", err, http.StatusInternalServerError)
		return
	}
	httputil.OK(w, http.StatusAccepted, map[string]string{
		"note_id": noteID.String(),
		"status":  "queued",
	})
}

// readText takes the ad-hoc request text from a JSON body or an uploaded "pdf" file.
func readText(deps app.Deps, w http.ResponseWriter, r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req textRequest
		if err := validate.DecodeJSON(w, r, deps.Config.MaxUploadSize, &req); err != nil {
			return "", err
		}
		return req.Text, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, deps.Config.MaxUploadSize)
	file, header, err := r.FormFile("pdf")
	if err != nil {
		return "", &httputil.ValidationError{Field: "pdf", Message: "file is required"}
	}
	defer file.Close()

	contentType, err := extract.ContentType(header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		return "", &httputil.ValidationError{Field: "pdf", Message: err.Error()}
	}
	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	text, err := extract.Text(contentType, content)
	if err != nil {
		return "", &httputil.ValidationError{Field: "pdf", Message: "could not read PDF: " + err.Error()}
	}
	if strings.TrimSpace(text) == "" {
		return "", &httputil.ValidationError{Field: "pdf", Message: "no text found in file"}
	}
	return text, nil
}

func failValidation(log *slog.Logger, w http.ResponseWriter, err error) {
	var ve *httputil.ValidationError
	if errors.As(err, &ve) {
		httputil.Fail(log, w, ve.Error(), err, http.StatusBadRequest)
		return
	}
	httputil.Fail(log, w, "failed to read request", err, http.StatusInternalServerError)
}
