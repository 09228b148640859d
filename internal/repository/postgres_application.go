package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/bjarke-xyz/apptrack/internal/domain"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Connection is the subset of pgxpool.Pool the repository needs.
type Connection interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type postgresApplicationRepository struct {
	conn     Connection
	identity domain.IdentityResolver
}

// NewPostgresApplication returns an application repository backed by the
// remote Postgres store. Every call resolves the current user from the
// active session through the identity resolver.
func NewPostgresApplication(conn Connection, identity domain.IdentityResolver) domain.ApplicationRepository {
	return &postgresApplicationRepository{conn: conn, identity: identity}
}

// Create implements domain.ApplicationRepository.
func (p *postgresApplicationRepository) Create(ctx context.Context, in domain.NewApplication) (domain.Application, error) {
	var app domain.Application
	company, role, url, err := normalizeFields(in.Company, in.Role, in.URL)
	if err != nil {
		return app, err
	}
	status := in.Status
	if status == "" {
		status = domain.StatusPending
	}
	if !status.Valid() {
		return app, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, in.Status)
	}

	user, err := p.identity.CurrentUser(ctx)
	if err != nil {
		return app, err
	}

	query := `
		INSERT INTO applications (id, owner_id, company, role, url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING *`
	rows, err := p.conn.Query(ctx, query, uuid.NewString(), user.ID, company, role, url, status)
	if err != nil {
		return app, fmt.Errorf("%w: %v", domain.ErrRemote, err)
	}
	if err := pgxscan.ScanOne(&app, rows); err != nil {
		return app, fmt.Errorf("%w: %v", domain.ErrRemote, err)
	}
	return app, nil
}

// ListAll implements domain.ApplicationRepository.
func (p *postgresApplicationRepository) ListAll(ctx context.Context) ([]domain.Application, error) {
	user, err := p.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	apps := make([]domain.Application, 0)
	err = pgxscan.Select(ctx, p.conn, &apps,
		"SELECT * FROM applications WHERE owner_id = $1 ORDER BY created_at DESC", user.ID)
	if err != nil {
		return apps, fmt.Errorf("%w: %v", domain.ErrRemote, err)
	}
	return apps, nil
}

// ListByStatus implements domain.ApplicationRepository.
func (p *postgresApplicationRepository) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Application, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	user, err := p.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	apps := make([]domain.Application, 0)
	err = pgxscan.Select(ctx, p.conn, &apps,
		"SELECT * FROM applications WHERE owner_id = $1 AND status = $2 ORDER BY created_at DESC", user.ID, status)
	if err != nil {
		return apps, fmt.Errorf("%w: %v", domain.ErrRemote, err)
	}
	return apps, nil
}

// UpdateStatus implements domain.ApplicationRepository.
func (p *postgresApplicationRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	user, err := p.identity.CurrentUser(ctx)
	if err != nil {
		return err
	}
	tag, err := p.conn.Exec(ctx,
		"UPDATE applications SET status = $1, updated_at = NOW() WHERE id = $2 AND owner_id = $3",
		status, id, user.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRemote, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: no owned application %q", domain.ErrRemote, id)
	}
	return nil
}

// UpdateFields implements domain.ApplicationRepository.
func (p *postgresApplicationRepository) UpdateFields(ctx context.Context, id string, in domain.ApplicationUpdate) error {
	if id == "" {
		return domain.ErrMissingID
	}
	company, role, url, err := normalizeFields(in.Company, in.Role, in.URL)
	if err != nil {
		return err
	}
	user, err := p.identity.CurrentUser(ctx)
	if err != nil {
		return err
	}
	tag, err := p.conn.Exec(ctx,
		"UPDATE applications SET company = $1, role = $2, url = $3, updated_at = NOW() WHERE id = $4 AND owner_id = $5",
		company, role, url, id, user.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRemote, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: no owned application %q", domain.ErrRemote, id)
	}
	return nil
}

// Delete implements domain.ApplicationRepository. Deleting an id that no
// longer exists succeeds silently.
func (p *postgresApplicationRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrMissingID
	}
	user, err := p.identity.CurrentUser(ctx)
	if err != nil {
		return err
	}
	_, err = p.conn.Exec(ctx, "DELETE FROM applications WHERE id = $1 AND owner_id = $2", id, user.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRemote, err)
	}
	return nil
}

// normalizeFields trims company and role and rejects empty results. The
// remote store does not re-validate, so this runs before every write.
func normalizeFields(company string, role string, url string) (string, string, *string, error) {
	company = strings.TrimSpace(company)
	role = strings.TrimSpace(role)
	if company == "" {
		return "", "", nil, fmt.Errorf("%w: company", domain.ErrValidation)
	}
	if role == "" {
		return "", "", nil, fmt.Errorf("%w: role", domain.ErrValidation)
	}
	return company, role, normalizeURL(url), nil
}

// normalizeURL returns nil for a blank url so it is stored as null.
func normalizeURL(url string) *string {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
