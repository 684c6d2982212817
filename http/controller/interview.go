package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-travel-service/http/controller/dto"
	"github.com/tnqbao/gau-travel-service/infra"
	"github.com/tnqbao/gau-travel-service/utils"
)

var interviewNamespace = []string{"interviews"}

// TranscribeInterview converts an uploaded recording to text and keeps the
// transcript as interview_{YYYYMMDD}.txt. Several interviews on the same day
// get _1, _2, ... suffixes.
func (ctrl *Controller) TranscribeInterview(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := ctrl.currentUserID(c, "Interview")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Interview] Failed to get audio from form data")
		utils.JSON400(c, "Failed to get audio: "+err.Error())
		return
	}

	maxSize := ctrl.Config.EnvConfig.Upload.MaxAudioSize
	if fileHeader.Size > maxSize {
		utils.JSON413(c, fmt.Sprintf("Audio exceeds the %d byte limit", maxSize))
		return
	}

	format, err := infra.NormalizeAudioFormat(fileHeader.Filename)
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Interview] %v", err)
		utils.JSON400(c, "Unsupported audio format, expected one of .wav .mp3 .ogg .flac .m4a .aac")
		return
	}

	audio, err := readFormFile(fileHeader)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Interview] Failed to read upload: %v", err)
		utils.JSON400(c, "Failed to read audio")
		return
	}

	transcript, err := ctrl.Infra.Speech.Transcribe(ctx, audio, format)
	if err != nil {
		ctrl.respondSpeechError(c, err)
		return
	}

	filename := "interview_" + time.Now().Format("20060102") + ".txt"
	stored, err := ctrl.putBlob(c, userID, interviewNamespace, utils.BlobCategoryTexts, filename, []byte(transcript.Text), "text/plain; charset=utf-8")
	if err != nil {
		ctrl.respondError(c, "Interview", err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Interview] Transcribed %s (%s) to %s", fileHeader.Filename, transcript.Language, stored.Path)
	utils.JSON201(c, dto.TranscriptionResponseDTO{
		Language: transcript.Language,
		Text:     transcript.Text,
		Path:     stored.Path,
	})
}

// SpeakInterview synthesizes text to MP3 and returns a presigned URL for it.
func (ctrl *Controller) SpeakInterview(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := ctrl.currentUserID(c, "Interview")
	if !ok {
		return
	}

	var req dto.SpeakRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Interview] Invalid speak request: %v", err)
		utils.JSON400(c, "Invalid request: "+err.Error())
		return
	}

	language, err := infra.NormalizeLanguage(req.Language)
	if err != nil {
		ctrl.respondError(c, "Interview", err)
		return
	}

	audio, err := ctrl.Infra.Speech.Synthesize(ctx, req.Text, language)
	if err != nil {
		ctrl.respondSpeechError(c, err)
		return
	}

	filename := "speech_" + time.Now().Format("20060102150405") + ".mp3"
	stored, err := ctrl.putBlob(c, userID, interviewNamespace, utils.BlobCategoryOutputs, filename, audio, "audio/mpeg")
	if err != nil {
		ctrl.respondError(c, "Interview", err)
		return
	}
	utils.JSON201(c, stored)
}

func (ctrl *Controller) respondSpeechError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	switch {
	case errors.Is(err, infra.ErrUnsupportedAudioFormat), errors.Is(err, utils.ErrValidation):
		ctrl.respondError(c, "Interview", fmt.Errorf("%w: %w", utils.ErrValidation, err))
	case errors.Is(err, infra.ErrNoSpeech):
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Interview] %v", err)
		utils.JSON422(c, "No speech could be recognized")
	case errors.Is(err, infra.ErrSpeechTimeout):
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Interview] %v", err)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Speech service timed out"})
	case errors.Is(err, infra.ErrProviderUnavailable):
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Interview] %v", err)
		utils.JSON503(c, "Speech service temporarily unavailable")
	default:
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Interview] Speech service failed: %v", err)
		utils.JSON502(c, "Speech service failed")
	}
}
