package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/meinhoongagan/clinic-app/utils"
)

var revenueHeaders = []string{
	"Mã lịch hẹn", "Thời gian", "Bệnh nhân", "Bác sĩ", "Trạng thái",
	"Loại khám", "Phí khám", "Mã hồ sơ", "Tiền thuốc", "Tổng",
}

var revenueColumnWidths = []float64{12, 18, 25, 25, 12, 20, 14, 10, 14, 14}

// ExportRevenueDetail renders the report as an xlsx workbook.
func ExportRevenueDetail(report *RevenueDetailReport) ([]byte, error) {
	f := excelize.NewFile()

	sheet := "Doanh thu"
	index, err := f.NewSheet(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range revenueHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetColWidth(sheet, col, col, revenueColumnWidths[i]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, r := range report.Rows {
		var recordID any
		if r.MedicalRecordID != nil {
			recordID = *r.MedicalRecordID
		}
		values := []any{
			r.AppointmentID,
			r.AppointmentTime.In(utils.ClinicLocation).Format(timeFormat),
			r.PatientName,
			r.DoctorName,
			string(r.Status),
			r.ExaminationType,
			r.ExaminationFee,
			recordID,
			r.MedicineCost,
			r.Total,
		}
		if err := setRow(f, sheet, i+2, values); err != nil {
			f.Close()
			return nil, err
		}
	}

	summaryRow := len(report.Rows) + 3
	summary := []any{"Tổng cộng", "", "", "", "", "",
		report.Summary.ExaminationIncome, "", report.Summary.MedicineIncome, report.Summary.TotalRevenue}
	if err := setRow(f, sheet, summaryRow, summary); err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		if v == nil || v == "" {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}
