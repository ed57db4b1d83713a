package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/thesis-registry-api/internal/dto"
	"github.com/noah-isme/thesis-registry-api/internal/models"
	appErrors "github.com/noah-isme/thesis-registry-api/pkg/errors"
)

type pagedLister struct {
	total   int
	queries []dto.ThesisListQuery
}

func (p *pagedLister) List(ctx context.Context, roles *models.RoleContext, query dto.ThesisListQuery) ([]models.ThesisSnapshot, *models.Pagination, error) {
	p.queries = append(p.queries, query)
	start := (query.Page - 1) * query.PageSize
	var items []models.ThesisSnapshot
	for i := start; i < p.total && i < start+query.PageSize; i++ {
		items = append(items, *seedThesis(models.ThesisStatusStarted))
	}
	return items, &models.Pagination{Page: query.Page, PageSize: query.PageSize, TotalCount: p.total}, nil
}

func TestExportServiceCSV(t *testing.T) {
	lister := &pagedLister{total: 450}
	svc := NewExportService(lister, zap.NewNop(), nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	file, err := svc.Export(context.Background(), &models.RoleContext{UserID: supervisorID}, dto.ThesisListQuery{Language: "en"}, "CSV")
	require.NoError(t, err)
	assert.Equal(t, "theses_20260304_050607.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	require.Len(t, lister.queries, 3)
	assert.Equal(t, 3, lister.queries[2].Page)
	assert.Equal(t, exportPageSize, lister.queries[0].PageSize)

	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(file.Content, []byte("\ufeff")))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 451)
	assert.Equal(t, exportHeaders, records[0])
	assert.Equal(t, []string{
		"Formal verification of distributed schedulers",
		"STARTED",
		"Computer Science",
		"Maija Liisa Meikalainen",
		"Sirkka Ohjaaja (100%)",
		"2026-01-10",
		"2026-12-15",
	}, records[1])
}

func TestExportServicePDF(t *testing.T) {
	svc := NewExportService(&pagedLister{total: 2}, nil, nil, nil)

	file, err := svc.Export(context.Background(), &models.RoleContext{UserID: supervisorID}, dto.ThesisListQuery{}, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Content, []byte("%PDF")))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	lister := &pagedLister{total: 2}
	svc := NewExportService(lister, nil, nil, nil)

	_, err := svc.Export(context.Background(), &models.RoleContext{UserID: supervisorID}, dto.ThesisListQuery{}, "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrUnsupportedFormat)
	assert.Empty(t, lister.queries)
}
