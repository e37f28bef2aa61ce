package auditor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/internal/log"
	"github.com/openhms/hms/internal/model"
	"github.com/openhms/hms/internal/repo"
	hmscontext "github.com/openhms/hms/utils/context"
)

var (
	ErrCreateEvent         = errors.New("failed to create audit event")
	ErrCreateEventMetadata = errors.New("failed to create event metadata")
	ErrSendEvent           = errors.New("failed to send audit event")
	ErrNilAuditor          = errors.New("auditor is nil")
)

// Event describes a mutation made through the API.
type Event struct {
	Action     model.AuditAction
	Resource   string
	ResourceID string
	Details    any
}

// Auditor appends audit log entries to the central database
type Auditor struct {
	repo repo.Repo
}

func New(r repo.Repo) *Auditor {
	return &Auditor{repo: r}
}

// getEventMetadata builds an entry carrying the hospital, request and caller
// found in ctx
func (a *Auditor) getEventMetadata(ctx context.Context) (*model.AuditLog, error) {
	if a == nil {
		return nil, ErrNilAuditor
	}

	hospitalID, err := hmscontext.ExtractHospitalID(ctx)
	if err != nil {
		return nil, errs.Wrap(ErrCreateEventMetadata, err)
	}

	entry := &model.AuditLog{HospitalID: hospitalID}

	entry.RequestID, _ = hmscontext.GetRequestID(ctx)

	principal, err := hmscontext.ExtractPrincipal(ctx)
	if err == nil {
		entry.Subject = principal.Subject

		userID, err := uuid.Parse(principal.Subject)
		if err == nil && a.isSystemUser(ctx, userID) {
			entry.UserID = &userID
		}
	}

	return entry, nil
}

// isSystemUser reports whether id names a central operator account. Hospital
// staff accounts live in their hospital schema and are kept as Subject only.
func (a *Auditor) isSystemUser(ctx context.Context, id uuid.UUID) bool {
	found, err := a.repo.First(ctx, &model.SystemUser{BaseModel: model.BaseModel{ID: id}}, *repo.NewQuery())
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		log.Warn(ctx, "Failed to look up audit subject", log.ErrorAttr(err))
	}

	return found
}

// Record stores one entry. Entries are written outside the transaction of the
// audited change, which may live in another database.
func (a *Auditor) Record(ctx context.Context, event Event) error {
	entry, err := a.getEventMetadata(ctx)
	if err != nil {
		return err
	}

	entry.Action = event.Action
	entry.Resource = event.Resource
	entry.ResourceID = event.ResourceID

	if event.Details != nil {
		details, err := json.Marshal(event.Details)
		if err != nil {
			return errs.Wrap(ErrCreateEvent, err)
		}

		entry.Details = string(details)
	}

	err = a.repo.Create(ctx, entry)
	if err != nil {
		return errs.Wrap(ErrSendEvent, err)
	}

	log.Debug(ctx, "Audit event recorded",
		slog.String("action", string(entry.Action)),
		slog.String("resource", entry.Resource),
		slog.String("resourceId", entry.ResourceID),
	)

	return nil
}

// RecordOrLog records event and only logs a failure, so an audit outage
// never fails a change that has already been committed.
func (a *Auditor) RecordOrLog(ctx context.Context, event Event) {
	err := a.Record(ctx, event)
	if err != nil {
		log.Error(ctx, "Failed to record audit event", err, slog.String("resource", event.Resource))
	}
}
