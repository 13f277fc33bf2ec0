package dashboard_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-attendance/internal/dashboard"
	dashboardMock "go-attendance/internal/dashboard/mock"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestHandler_Manager(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := dashboardMock.NewMockService(ctrl)
		h := dashboard.NewHandler(svc)
		svc.EXPECT().Manager(gomock.Any()).Return(dashboard.ManagerDashboard{
			TotalEmployees: 10,
			TodayStats:     dashboard.TodayStats{Present: 2, Absent: 4, CheckedOut: 4},
		}, nil)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/manager", nil)

		h.Manager(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Ok   bool                       `json:"ok"`
			Data dashboard.ManagerDashboard `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Ok)
		assert.Equal(t, 4, body.Data.TodayStats.CheckedOut)
	})

	t.Run("Internal error hides detail", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := dashboardMock.NewMockService(ctrl)
		h := dashboard.NewHandler(svc)
		svc.EXPECT().Manager(gomock.Any()).Return(dashboard.ManagerDashboard{}, errors.New("pq: connection refused"))

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/manager", nil)

		h.Manager(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestHandler_Employee(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	svc := dashboardMock.NewMockService(ctrl)
	h := dashboard.NewHandler(svc)
	svc.EXPECT().Employee(gomock.Any(), "e-1").Return(dashboard.EmployeeDashboard{TotalHours: 16}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/employee", nil)
	c.Set("user_id_validated", "e-1")

	h.Employee(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalHours":16`)
}
