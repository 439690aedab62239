package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ChaseRain/coverstudio/internal/domain/cover"
	"github.com/ChaseRain/coverstudio/internal/infra/logger"
	"github.com/ChaseRain/coverstudio/internal/service/export"
	"github.com/ChaseRain/coverstudio/internal/service/orchestrator"
	"github.com/ChaseRain/coverstudio/internal/service/studio"
	"github.com/ChaseRain/coverstudio/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	studio   *studio.Controller
	exporter *export.Exporter
	logger   *logger.Logger
}

func NewHandler(ctrl *studio.Controller, exporter *export.Exporter, log *logger.Logger) *Handler {
	return &Handler{
		studio:   ctrl,
		exporter: exporter,
		logger:   log,
	}
}

func (h *Handler) GenerateCover(c *gin.Context) {
	var req GenerateCoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, "", errors.Wrap(err, errors.ErrCodeInvalidReq, "invalid request body"))
		return
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
	}

	genReq, err := toGenerationRequest(req)
	if err != nil {
		h.handleError(c, requestID, err)
		return
	}

	if req.Stream {
		h.handleStreamingResponse(c, requestID, genReq)
		return
	}

	result, err := h.studio.Generate(c.Request.Context(), genReq, nil)
	if err != nil {
		h.handleError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, GenerateCoverResponse{
		RequestID:      requestID,
		Status:         string(result.State),
		Images:         toImageDTOs(result.Images),
		ActiveIndex:    0,
		MissingFormats: formatStrings(result.Missing()),
	})
}

func toGenerationRequest(req GenerateCoverRequest) (cover.GenerationRequest, error) {
	out := cover.GenerationRequest{
		Style:       cover.StylePhotographic,
		Theme:       cover.ThemeNature,
		Format:      cover.FormatSquare,
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Description: req.Description,
		Transparent: req.Transparent,
	}

	var err error
	if req.Style != "" {
		if out.Style, err = cover.ParseStyle(req.Style); err != nil {
			return out, errors.Wrap(err, errors.ErrCodeInvalidReq, "invalid style")
		}
	}
	if req.Theme != "" {
		if out.Theme, err = cover.ParseTheme(req.Theme); err != nil {
			return out, errors.Wrap(err, errors.ErrCodeInvalidReq, "invalid theme")
		}
	}
	if req.Format != "" {
		if out.Format, err = cover.ParseFormat(req.Format); err != nil {
			return out, errors.Wrap(err, errors.ErrCodeInvalidReq, "invalid format")
		}
	}
	if strings.TrimSpace(req.ReferenceImage) != "" {
		ref, err := cover.ParseDataURL(req.ReferenceImage)
		if err != nil {
			return out, errors.Wrap(err, errors.ErrCodeInvalidReq, "invalid reference image")
		}
		out.Reference = ref
	}
	return out, nil
}

func (h *Handler) handleStreamingResponse(c *gin.Context, requestID string, req cover.GenerationRequest) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	sendEvent := func(eventType string, data interface{}) {
		event := StreamEvent{
			Event:     eventType,
			Data:      data,
			RequestID: requestID,
		}
		jsonData, _ := json.Marshal(event)
		fmt.Fprintf(c.Writer, "event: %s\n", eventType)
		fmt.Fprintf(c.Writer, "data: %s\n\n", jsonData)
		c.Writer.Flush()
	}

	onProgress := func(event orchestrator.ProgressEvent) {
		switch event.Stage {
		case orchestrator.StageStart:
			sendEvent(EventTypeStart, EventStart{
				Message:   event.Message,
				Formats:   len(req.Format.Expand()),
				Timestamp: time.Now().Unix(),
			})
		case orchestrator.StageGenerating:
			sendEvent(EventTypeGenerating, EventGenerating{
				Message:  event.Message,
				Format:   string(event.Format),
				Progress: event.Progress,
			})
		case orchestrator.StagePartial:
			sendEvent(EventTypePartial, EventPartial{
				Message:  event.Message,
				Format:   string(event.Format),
				Images:   toImageDTOs(event.Images),
				Progress: event.Progress,
			})
		case orchestrator.StageFormatFailed:
			sendEvent(EventTypeFormatFailed, EventFormatFailed{
				Message:  event.Message,
				Format:   string(event.Format),
				Progress: event.Progress,
			})
		}
	}

	result, err := h.studio.Generate(c.Request.Context(), req, onProgress)
	if err != nil {
		h.logger.Error("streamed generation failed", "request_id", requestID, "error", err)
		sendEvent(EventTypeError, EventError{
			Code:    errors.CodeOf(err),
			Message: userMessage(err),
		})
		return
	}

	sendEvent(EventTypeComplete, EventComplete{
		Message:        "generation complete",
		Status:         string(result.State),
		Images:         toImageDTOs(result.Images),
		MissingFormats: formatStrings(result.Missing()),
	})
}

func (h *Handler) Current(c *gin.Context) {
	snap := h.studio.Snapshot()
	c.JSON(http.StatusOK, SnapshotResponse{
		Status:         string(snap.State),
		Images:         toImageDTOs(snap.Images),
		ActiveIndex:    snap.ActiveIndex,
		MissingFormats: formatStrings(snap.Missing),
		Error:          snap.Error,
	})
}

func (h *Handler) SelectActive(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, "", errors.Wrap(err, errors.ErrCodeInvalidReq, "invalid request body"))
		return
	}
	if err := h.studio.Select(*req.Index); err != nil {
		h.handleError(c, "", err)
		return
	}
	h.Current(c)
}

func (h *Handler) History(c *gin.Context) {
	c.JSON(http.StatusOK, HistoryResponse{Images: toImageDTOs(h.studio.History())})
}

func (h *Handler) Download(c *gin.Context) {
	id := c.Param("id")
	img, ok := h.studio.Find(id)
	if !ok {
		h.handleError(c, "", errors.New(errors.ErrCodeNotFound, "image not found"))
		return
	}

	file, err := h.exporter.Export(c.Request.Context(), img)
	if err != nil {
		h.handleError(c, "", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	if file.URL != "" {
		c.Header("X-Export-URL", file.URL)
	}
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func (h *Handler) Options(c *gin.Context) {
	resp := OptionsResponse{}
	for _, s := range cover.AllStyles {
		resp.Styles = append(resp.Styles, OptionDTO{Value: string(s), Label: s.Label()})
	}
	for _, t := range cover.AllThemes {
		resp.Themes = append(resp.Themes, OptionDTO{Value: string(t), Label: t.Label()})
	}
	for _, f := range cover.SelectableFormats {
		opt := OptionDTO{Value: string(f), Label: f.Label()}
		if f != cover.FormatAll {
			opt.AspectRatio = string(f.AspectRatio())
		}
		resp.Formats = append(resp.Formats, opt)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) handleError(c *gin.Context, requestID string, err error) {
	h.logger.Error("request failed", "error", err, "request_id", requestID, "path", c.Request.URL.Path)

	code := errors.CodeOf(err)
	c.JSON(httpStatus(code), ErrorResponse{
		Status: StatusFailed,
		Error: ErrorDTO{
			Code:    code,
			Message: userMessage(err),
		},
	})
}

func httpStatus(code string) int {
	switch code {
	case errors.ErrCodeInvalidReq:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeBusy:
		return http.StatusConflict
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeGenerationAPI, errors.ErrCodeEmptyResponse, errors.ErrCodeNoImage, errors.ErrCodeNoImagesGenerated:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func userMessage(err error) string {
	if msg := strings.TrimSpace(errors.Reason(err)); msg != "" {
		return msg
	}
	return "generation failed, please try again"
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func toImageDTOs(images []cover.GeneratedImage) []ImageDTO {
	out := make([]ImageDTO, 0, len(images))
	for _, img := range images {
		out = append(out, ImageDTO{
			ID:          img.ID,
			URL:         img.DataURL(),
			DownloadURL: "/v1/covers/" + img.ID + "/download",
			CreatedAt:   img.CreatedAt.UnixMilli(),
			Prompt:      img.Prompt,
			Title:       img.Title,
			Style:       string(img.Style),
			Theme:       string(img.Theme),
			Format:      string(img.Format),
			Transparent: img.Transparent,
		})
	}
	return out
}

func formatStrings(formats []cover.Format) []string {
	if len(formats) == 0 {
		return nil
	}
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}
