package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"

	"restaurant-orders/internal/entities"
)

const (
	exportSheet       = "Заказы"
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportDateTimeFmt = "02.01.2006 15:04"
)

var exportHeaders = []string{
	"№", "ID заказа", "Клиент", "Стол", "Позиции", "Сумма", "Статус", "Создал", "Создан", "Обновлен",
}

// ExportOrders streams every order as an XLSX sheet, one row per order.
func (c *OrderController) ExportOrders(ctx echo.Context) error {
	orders, err := c.orderService.GetOrders(ctx.Request().Context())
	if err != nil {
		return c.fail(ctx, "ExportOrders", err)
	}

	f, err := buildOrdersWorkbook(orders)
	if err != nil {
		return c.fail(ctx, "ExportOrders", err)
	}
	defer f.Close()

	fileName := fmt.Sprintf("orders_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, xlsxContentType)
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}

func buildOrdersWorkbook(orders []entities.Order) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(exportSheet, "A1", lastHeader, style); err != nil {
		return nil, err
	}

	for i, order := range orders {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := orderRow(i+1, order)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	for _, w := range exportColumnWidths {
		if err := f.SetColWidth(exportSheet, w.from, w.to, w.width); err != nil {
			return nil, err
		}
	}
	return f, nil
}

var exportColumnWidths = []struct {
	from, to string
	width    float64
}{
	{"B", "C", 26},
	{"E", "E", 40},
	{"I", "J", 18},
}

func orderRow(n int, order entities.Order) []interface{} {
	items := make([]string, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, fmt.Sprintf("%s x %d", it.Name, it.Quantity))
	}
	return []interface{}{
		n,
		order.ID.Hex(),
		order.CustomerName,
		order.CustomerTable,
		strings.Join(items, ", "),
		order.Total,
		string(order.Status),
		order.CreatedBy,
		formatExportTime(order.CreatedAt),
		formatExportTime(order.UpdatedAt),
	}
}

func formatExportTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(exportDateTimeFmt)
}
