package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/meinhoongagan/clinic-app/models"
	"github.com/meinhoongagan/clinic-app/services"
	"github.com/meinhoongagan/clinic-app/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GetIncomeReport godoc
// @Summary Income between two dates
// @Tags reports
// @Produce json
// @Param startDate query string true "YYYY-MM-DD"
// @Param endDate query string true "YYYY-MM-DD"
// @Success 200 {object} services.IncomeReport
// @Failure 400 {object} utils.ErrorResponse
// @Router /appointments/report/income [get]
func (h *Controller) GetIncomeReport(c *fiber.Ctx) error {
	report, err := h.svc.Reports.Income(c.UserContext(), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "", report)
}

func revenueFilter(c *fiber.Ctx) services.RevenueFilter {
	return services.RevenueFilter{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		DoctorID:  uint(c.QueryInt("doctor_id", 0)),
		PatientID: uint(c.QueryInt("patient_id", 0)),
		Status:    models.AppointmentStatus(c.Query("status")),
	}
}

// GetRevenueDetail godoc
// @Summary Per-appointment revenue breakdown
// @Tags reports
// @Produce json
// @Param startDate query string true "YYYY-MM-DD"
// @Param endDate query string true "YYYY-MM-DD"
// @Param doctor_id query int false "Doctor ID"
// @Param patient_id query int false "Patient ID"
// @Param status query string false "Appointment status"
// @Success 200 {object} services.RevenueDetailReport
// @Router /reports/revenue-detail [get]
func (h *Controller) GetRevenueDetail(c *fiber.Ctx) error {
	report, err := h.svc.Reports.RevenueDetail(c.UserContext(), revenueFilter(c))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendData(c, fiber.StatusOK, "", report)
}

// ExportRevenueDetail streams the revenue detail report as an xlsx workbook.
func (h *Controller) ExportRevenueDetail(c *fiber.Ctx) error {
	filter := revenueFilter(c)
	report, err := h.svc.Reports.RevenueDetail(c.UserContext(), filter)
	if err != nil {
		return utils.SendError(c, err)
	}
	data, err := services.ExportRevenueDetail(report)
	if err != nil {
		return utils.SendError(c, err)
	}
	h.log.Debug("revenue report exported",
		zap.String("start_date", filter.StartDate),
		zap.String("end_date", filter.EndDate),
		zap.Int("rows", len(report.Rows)),
		zap.Int("bytes", len(data)))

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="doanh-thu_%s_%s.xlsx"`, filter.StartDate, filter.EndDate))
	return c.Status(fiber.StatusOK).Send(data)
}
