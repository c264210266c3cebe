// Package report выгрузка посещений за день в Excel.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/fitclub-bot/internal/domain/visits"
)

const sheetName = "Посещения"

var header = []string{"Время", "Клиент", "Телефон", "ID клиента", "Тип", "Код"}

// VisitsFilename имя файла выгрузки за день.
func VisitsFilename(day time.Time) string {
	return fmt.Sprintf("visits_%s.xlsx", day.Format("20060102"))
}

// Visits строит xlsx по визитам одного дня клуба. Время визитов уже в поясе клуба.
func Visits(day time.Time, rows []visits.ReportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, err
	}

	if err := f.SetCellValue(sheetName, "A1", fmt.Sprintf("Посещения за %s", day.Format("02.01.2006"))); err != nil {
		return nil, err
	}
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	regular, frozen := 0, 0
	rowIdx := 3
	for _, r := range rows {
		kind := "Посещение"
		if r.IsFreezeDay {
			kind = "Заморозка"
			frozen++
		} else {
			regular++
		}
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIdx), r.VisitDate.Format("15:04"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIdx), r.ClientName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowIdx), r.ClientPhone)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowIdx), r.ExternalID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowIdx), kind)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowIdx), r.QRCode)
		rowIdx++
	}

	rowIdx++
	_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIdx), "Посещений")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIdx), regular)
	rowIdx++
	_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIdx), "Заморозок")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIdx), frozen)

	_ = f.SetColWidth(sheetName, "B", "B", 28)
	_ = f.SetColWidth(sheetName, "C", "D", 16)
	_ = f.SetColWidth(sheetName, "F", "F", 38)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
