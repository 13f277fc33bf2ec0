package attendance

import (
	"net/http"

	attendanceerrors "go-attendance/internal/attendance/errors"
	"go-attendance/internal/shared/apperror"
	"go-attendance/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(s Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("attendance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.handler")
	}
	return &Handler{service: s, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	if httpErr.Status >= http.StatusInternalServerError {
		h.logger.Error("attendance request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) bindPeriod(c *gin.Context) (PeriodQuery, bool) {
	var q PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.logger.Debug("invalid period", zap.Error(err))
		h.writeServiceError(c, attendanceerrors.ErrInvalidPeriod)
		return q, false
	}
	return q, true
}

func (h *Handler) CheckIn(c *gin.Context) {
	res, err := h.service.CheckIn(c.Request.Context(), c.GetString("user_id_validated"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) CheckOut(c *gin.Context) {
	res, err := h.service.CheckOut(c.Request.Context(), c.GetString("user_id_validated"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) MyHistory(c *gin.Context) {
	period, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	res, err := h.service.MyHistory(c.Request.Context(), c.GetString("user_id_validated"), period)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, response.NewListMeta(len(res)))
}

func (h *Handler) MySummary(c *gin.Context) {
	period, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	res, err := h.service.MySummary(c.Request.Context(), c.GetString("user_id_validated"), period)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) Today(c *gin.Context) {
	rec, err := h.service.Today(c.Request.Context(), c.GetString("user_id_validated"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	res := TodayRecordResponse{AttendanceResponse: rec}
	if rec == nil {
		res.Message = "No attendance record for today"
	}
	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	var q AllQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	res, err := h.service.GetAll(c.Request.Context(), q)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, response.NewListMeta(len(res)))
}

func (h *Handler) GetEmployeeHistory(c *gin.Context) {
	period, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	res, err := h.service.GetEmployeeHistory(c.Request.Context(), c.Param("id"), period)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, response.NewListMeta(len(res)))
}

func (h *Handler) TeamSummary(c *gin.Context) {
	period, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	res, err := h.service.TeamSummary(c.Request.Context(), period)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) TodayStatus(c *gin.Context) {
	res, err := h.service.TodayStatus(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) Export(c *gin.Context) {
	var q ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	body, rows, err := h.service.Export(c.Request.Context(), q)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.logger.Debug("export ready", zap.Int("rows", rows), zap.Int("bytes", len(body)))
	c.Header("Content-Disposition", "attachment; filename="+ExportFilename)
	c.Data(http.StatusOK, "text/csv", body)
}
