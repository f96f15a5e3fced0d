package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"mindcare-backend/internal/models"
	"mindcare-backend/internal/services"
)

const maxAudioBytes = 10 << 20

type transcriber interface {
	TranscribeAudio(ctx context.Context, audio []byte, mimeType, lang string) (string, error)
}

type VoiceHandler struct {
	transcriber transcriber
}

// NewVoiceHandler accepts a nil transcriber; transcription then answers 503.
func NewVoiceHandler(t transcriber) *VoiceHandler {
	return &VoiceHandler{transcriber: t}
}

func (h *VoiceHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if h.transcriber == nil {
		handleServiceError(w, r, &services.UnavailableError{Message: "Speech transcription is not configured"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid multipart body", r))
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"audio": "Audio file is required"}, r))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil || len(audio) == 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"audio": "Audio file is empty"}, r))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(audio)
	}

	transcript, err := h.transcriber.TranscribeAudio(r.Context(), audio, mimeType, strings.ToLower(r.FormValue("lang")))
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResp("AI_ERROR", "Failed to transcribe audio", r))
		return
	}

	writeJSON(w, http.StatusOK, models.TranscribeResponse{Transcript: transcript})
}
