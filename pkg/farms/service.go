package farms

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/farmhand-io/farmhand/pkg/apperr"
	"github.com/farmhand-io/farmhand/pkg/auth"
	"github.com/farmhand-io/farmhand/pkg/mail"
	"github.com/farmhand-io/farmhand/pkg/observability"
)

// ownerRoleName must match the seeded role catalog.
const ownerRoleName = "OWNER"

// PostgresService implements the Service interface using PostgreSQL
type PostgresService struct {
	db      *sql.DB
	tokens  *auth.InviteTokenIssuer
	mailer  mail.Mailer
	logger  *observability.Logger
	metrics *observability.Metrics
	joinURL string
}

// NewPostgresService creates a new PostgresService. joinURL is the
// base URL invitation links point at.
func NewPostgresService(db *sql.DB, tokens *auth.InviteTokenIssuer, mailer mail.Mailer, logger *observability.Logger, metrics *observability.Metrics, joinURL string) *PostgresService {
	return &PostgresService{
		db:      db,
		tokens:  tokens,
		mailer:  mailer,
		logger:  logger,
		metrics: metrics,
		joinURL: strings.TrimRight(joinURL, "/"),
	}
}

// CreateFarm creates a farm and atomically makes ownerID its owner
// member, with the OWNER role bound to every catalog permission for
// the new farm.
func (s *PostgresService) CreateFarm(ctx context.Context, ownerID int64, name string) (*Farm, error) {
	name = strings.TrimSpace(name)
	if err := validateFarmName(name); err != nil {
		return nil, err
	}

	var owned int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM farms WHERE owner_id = $1`, ownerID).Scan(&owned)
	if err != nil {
		return nil, fmt.Errorf("failed to count owned farms: %w", err)
	}
	if owned >= MaxFarmsPerOwner {
		return nil, apperr.Forbidden("farm quota exceeded: at most %d farms per owner", MaxFarmsPerOwner)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	farm := &Farm{Name: name, OwnerID: ownerID}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO farms (name, owner_id)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, name, ownerID).Scan(&farm.ID, &farm.CreatedAt, &farm.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create farm: %w", err)
	}

	var ownerRoleID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM roles WHERE name = $1`, ownerRoleName).Scan(&ownerRoleID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("role catalog is missing the %s role", ownerRoleName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up owner role: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO farm_members (farm_id, user_id, role_id)
		VALUES ($1, $2, $3)
	`, farm.ID, ownerID, ownerRoleID)
	if err != nil {
		return nil, fmt.Errorf("failed to create owner membership: %w", err)
	}

	// Grant the owner role every catalog permission within this farm.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO role_permissions (role_id, permission_id, farm_id)
		SELECT $1, id, $2 FROM permissions
	`, ownerRoleID, farm.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to seed owner permissions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit farm creation: %w", err)
	}

	s.metrics.MembershipChangesTotal.WithLabelValues("added").Inc()
	s.logger.WithFields(map[string]interface{}{
		"farm_id":  farm.ID,
		"owner_id": ownerID,
	}).Info("Farm created")

	return farm, nil
}

// GetFarm retrieves a farm by ID
func (s *PostgresService) GetFarm(ctx context.Context, id int64) (*Farm, error) {
	farm := &Farm{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, owner_id, created_at, updated_at
		FROM farms
		WHERE id = $1
	`, id).Scan(&farm.ID, &farm.Name, &farm.OwnerID, &farm.CreatedAt, &farm.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("farm", "farm %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get farm: %w", err)
	}

	return farm, nil
}

// ListFarms lists the farms the user is a member of
func (s *PostgresService) ListFarms(ctx context.Context, userID int64) ([]*Farm, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.name, f.owner_id, f.created_at, f.updated_at
		FROM farms f
		JOIN farm_members fm ON fm.farm_id = f.id
		WHERE fm.user_id = $1
		ORDER BY f.created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list farms: %w", err)
	}
	defer rows.Close()

	var farms []*Farm
	for rows.Next() {
		farm := &Farm{}
		if err := rows.Scan(&farm.ID, &farm.Name, &farm.OwnerID, &farm.CreatedAt, &farm.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan farm: %w", err)
		}
		farms = append(farms, farm)
	}

	return farms, rows.Err()
}

// RenameFarm renames a farm. Only the owner may rename.
func (s *PostgresService) RenameFarm(ctx context.Context, farmID, requesterID int64, name string) (*Farm, error) {
	farm, err := s.GetFarm(ctx, farmID)
	if err != nil {
		return nil, err
	}
	if farm.OwnerID != requesterID {
		return nil, apperr.Forbidden("only the farm owner can rename the farm")
	}

	name = strings.TrimSpace(name)
	if err := validateFarmName(name); err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `
		UPDATE farms
		SET name = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING updated_at
	`, name, farmID).Scan(&farm.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to rename farm: %w", err)
	}
	farm.Name = name

	return farm, nil
}

// farmCascade lists the dependent tables to purge before the farm row
// itself, children before parents. Deletions are explicit rather than
// delegated to ON DELETE CASCADE so the order is visible and testable.
var farmCascade = []struct {
	table string
	query string
}{
	{"task_assignees", `DELETE FROM task_assignees WHERE task_id IN (SELECT id FROM tasks WHERE farm_id = $1)`},
	{"tasks", `DELETE FROM tasks WHERE farm_id = $1`},
	{"fields", `DELETE FROM fields WHERE farm_id = $1`},
	{"farm_members", `DELETE FROM farm_members WHERE farm_id = $1`},
	{"equipment", `DELETE FROM equipment WHERE farm_id = $1`},
	{"seasons", `DELETE FROM seasons WHERE farm_id = $1`},
	{"invitations", `DELETE FROM invitations WHERE farm_id = $1`},
	{"role_permissions", `DELETE FROM role_permissions WHERE farm_id = $1`},
}

// DeleteFarm deletes a farm and every dependent record in one
// transaction. Only the owner may delete.
func (s *PostgresService) DeleteFarm(ctx context.Context, farmID, requesterID int64) error {
	farm, err := s.GetFarm(ctx, farmID)
	if err != nil {
		return err
	}
	if farm.OwnerID != requesterID {
		return apperr.Forbidden("only the farm owner can delete the farm")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, step := range farmCascade {
		if _, err := tx.ExecContext(ctx, step.query, farmID); err != nil {
			return fmt.Errorf("failed to delete %s for farm %d: %w", step.table, farmID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM farms WHERE id = $1`, farmID); err != nil {
		return fmt.Errorf("failed to delete farm %d: %w", farmID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit farm deletion: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"farm_id":      farmID,
		"requester_id": requesterID,
	}).Info("Farm deleted")

	return nil
}

func validateFarmName(name string) error {
	if utf8.RuneCountInString(name) < MinFarmNameLength {
		return apperr.Forbidden("farm name must be at least %d characters", MinFarmNameLength)
	}
	return nil
}
