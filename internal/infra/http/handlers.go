package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/fitclub-bot/internal/attendance"
	"github.com/Spok95/fitclub-bot/internal/infra/qr"
	"github.com/Spok95/fitclub-bot/internal/report"
	"github.com/Spok95/fitclub-bot/internal/venue"
)

const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeInternalError    = "INTERNAL_ERROR"
)

// ErrorBody {"error":{"code":"...","message":"..."}}
type ErrorBody struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: APIError{Code: code, Message: message}})
}

// internalError детали наружу не отдаём, они уже в логе.
func internalError(c *gin.Context) {
	writeError(c, http.StatusInternalServerError, CodeInternalError, "Internal server error")
}

type handlers struct {
	Deps
}

type attendanceRequest struct {
	ExternalIdentity string `json:"externalIdentity" binding:"required"`
}

type freezeRequest struct {
	ExternalIdentity string                  `json:"externalIdentity" binding:"required"`
	Action           attendance.FreezeAction `json:"action" binding:"required"`
}

// fail ошибка движка: пустой идентификатор это ошибка ввода, остальное внутренняя.
func (h *handlers) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, attendance.ErrEmptyIdentity):
		writeError(c, http.StatusBadRequest, CodeValidationFailed, "externalIdentity is required")
	case errors.Is(err, attendance.ErrUnknownAction):
		writeError(c, http.StatusBadRequest, CodeValidationFailed, "action must be freeze or unfreeze")
	default:
		h.Log.Error("http: attendance failed", "op", op, "err", err)
		internalError(c)
	}
}

func (h *handlers) check(c *gin.Context) {
	var req attendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, CodeValidationFailed, "externalIdentity is required")
		return
	}
	res, err := h.Attendance.Check(c.Request.Context(), req.ExternalIdentity)
	if err != nil {
		h.fail(c, "check", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) commit(c *gin.Context) {
	var req attendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, CodeValidationFailed, "externalIdentity is required")
		return
	}
	res, err := h.Attendance.Commit(c.Request.Context(), req.ExternalIdentity)
	if err != nil {
		h.fail(c, "commit", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) freeze(c *gin.Context) {
	var req freezeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, CodeValidationFailed, "externalIdentity and action are required")
		return
	}
	res, err := h.Attendance.SetFreeze(c.Request.Context(), req.ExternalIdentity, req.Action)
	if err != nil {
		h.fail(c, string(req.Action), err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// exportVisits ?date=YYYY-MM-DD день клуба, по умолчанию сегодня.
func (h *handlers) exportVisits(c *gin.Context) {
	day := h.Clock.Today()
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, CodeValidationFailed, "date must be YYYY-MM-DD")
			return
		}
		day = venue.DayOf(d)
	}

	rows, err := h.Visits.ListBetween(c.Request.Context(), day.Start, day.End)
	if err != nil {
		h.Log.Error("http: list visits failed", "err", err)
		internalError(c)
		return
	}
	data, err := report.Visits(day.Start, rows)
	if err != nil {
		h.Log.Error("http: build report failed", "err", err)
		internalError(c)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+report.VisitsFilename(day.Start)+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *handlers) clientQR(c *gin.Context) {
	identity := strings.TrimSpace(c.Param("identity"))
	client, err := h.Clients.GetByExternalID(c.Request.Context(), identity)
	if err != nil {
		h.Log.Error("http: get client failed", "err", err)
		internalError(c)
		return
	}
	if client == nil {
		writeError(c, http.StatusNotFound, string(attendance.ErrClientNotFound), attendance.ErrClientNotFound.Message())
		return
	}
	png, err := qr.PNG(client.ExternalID, qr.DefaultSize)
	if err != nil {
		h.Log.Error("http: qr encode failed", "err", err)
		internalError(c)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
