package manager

import (
	"context"

	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/model"
	"github.com/openhms/hms/internal/repo"
	hmscontext "github.com/openhms/hms/utils/context"
)

type AuditLogManager struct {
	repo repo.Repo
}

func NewAuditLogManager(r repo.Repo) *AuditLogManager {
	return &AuditLogManager{repo: r}
}

// ListAuditLogs returns the entries of the hospital bound to ctx, newest first.
func (m *AuditLogManager) ListAuditLogs(ctx context.Context, page Page) ([]*model.AuditLog, int, error) {
	hospitalID, err := hmscontext.ExtractHospitalID(ctx)
	if err != nil {
		return nil, 0, errs.Wrap(ErrListAuditLogs, err)
	}

	var entries []*model.AuditLog

	query := whereEq(page.query(), repo.HospitalIDField, hospitalID).
		Order(repo.OrderField{Field: repo.CreatedField, Direction: repo.Desc})

	count, err := m.repo.List(ctx, model.AuditLog{}, &entries, *query)
	if err != nil {
		return nil, 0, errs.Wrap(ErrListAuditLogs, err)
	}

	return entries, count, nil
}
