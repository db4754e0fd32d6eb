// Package businessflow contains the core business logic and use cases for operator reports
package businessflow

import (
	"context"
	"fmt"

	"github.com/brandaion/platform/repository"
	"github.com/brandaion/platform/utils"
	"github.com/xuri/excelize/v2"
)

// ReportFlow exports operator-facing reports
type ReportFlow interface {
	ExportPublishedBatches(ctx context.Context, customerID uint, metadata *ClientMetadata) ([]byte, string, error)
}

// ReportFlowImpl implements the report business flow
type ReportFlowImpl struct {
	batchRepo repository.BatchRepository
}

// NewReportFlow creates a new report flow instance
func NewReportFlow(batchRepo repository.BatchRepository) ReportFlow {
	return &ReportFlowImpl{batchRepo: batchRepo}
}

// ExportPublishedBatches renders the customer's published batches as an
// XLSX workbook and returns the file bytes plus a suggested filename
func (r *ReportFlowImpl) ExportPublishedBatches(ctx context.Context, customerID uint, metadata *ClientMetadata) ([]byte, string, error) {
	batches, err := r.batchRepo.ListPublishedByCustomerID(ctx, customerID)
	if err != nil {
		return nil, "", NewBusinessError("REPORT_FAILED", "Failed to list published batches", err)
	}

	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	sheet := "Published Batches"
	file.SetSheetName(file.GetSheetName(0), sheet)

	headers := []string{"Batch ID", "Cluster ID", "Organization", "Brand", "Product", "Audience", "FAQ Pairs", "Published At"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = file.SetCellValue(sheet, cell, header)
	}

	for row, batch := range batches {
		values := []any{
			batch.BatchID.String(),
			batch.BatchClusterID.String(),
			batch.OrganizationName,
			batch.BrandName,
			batch.ProductName,
			batch.AudienceName,
			len(batch.Document.Pairs),
			batch.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = file.SetCellValue(sheet, cell, value)
		}
	}

	buffer, err := file.WriteToBuffer()
	if err != nil {
		return nil, "", NewBusinessError("REPORT_FAILED", "Failed to render report", err)
	}

	filename := fmt.Sprintf("published-batches-%s.xlsx", utils.UTCNow().Format("20060102-150405"))
	return buffer.Bytes(), filename, nil
}
