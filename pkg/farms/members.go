package farms

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/farmhand-io/farmhand/pkg/apperr"
)

// ListMembers retrieves all members of a farm with user and role
// details.
func (s *PostgresService) ListMembers(ctx context.Context, farmID int64) ([]*Member, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fm.id, fm.farm_id, fm.user_id, u.username, u.email, fm.role_id, r.name, fm.created_at
		FROM farm_members fm
		JOIN users u ON u.id = fm.user_id
		JOIN roles r ON r.id = fm.role_id
		WHERE fm.farm_id = $1
		ORDER BY fm.created_at ASC
	`, farmID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		member := &Member{}
		var email sql.NullString
		if err := rows.Scan(
			&member.ID, &member.FarmID, &member.UserID, &member.Username,
			&email, &member.RoleID, &member.RoleName, &member.JoinedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		if email.Valid {
			member.Email = email.String
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

// AddMember adds an existing user to a farm under the given role
func (s *PostgresService) AddMember(ctx context.Context, farmID, userID, roleID int64) error {
	if err := s.checkUserExists(ctx, userID); err != nil {
		return err
	}
	if _, err := s.roleName(ctx, roleID); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO farm_members (farm_id, user_id, role_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (farm_id, user_id) DO NOTHING
	`, farmID, userID, roleID)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperr.Conflict("membership", "user %d is already a member of farm %d", userID, farmID)
	}

	s.metrics.MembershipChangesTotal.WithLabelValues("added").Inc()
	return nil
}

// UpdateMemberRole changes a member's role. Members cannot change
// their own role.
func (s *PostgresService) UpdateMemberRole(ctx context.Context, farmID, userID, roleID, requesterID int64) error {
	if userID == requesterID {
		return apperr.Forbidden("cannot change your own role")
	}
	if _, err := s.roleName(ctx, roleID); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE farm_members SET role_id = $1 WHERE farm_id = $2 AND user_id = $3
	`, roleID, farmID, userID)
	if err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperr.NotFound("member", "user %d is not a member of farm %d", userID, farmID)
	}

	s.metrics.MembershipChangesTotal.WithLabelValues("role_changed").Inc()
	return nil
}

// RemoveMember removes a member from a farm. Members cannot remove
// themselves; an absent membership is a no-op, removal is idempotent.
func (s *PostgresService) RemoveMember(ctx context.Context, farmID, userID, requesterID int64) error {
	if userID == requesterID {
		return apperr.Forbidden("cannot remove yourself from the farm")
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM farm_members WHERE farm_id = $1 AND user_id = $2
	`, farmID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		s.metrics.MembershipChangesTotal.WithLabelValues("removed").Inc()
	}

	return nil
}

// Leave removes the caller's own membership. The owner cannot leave;
// they delete the farm instead.
func (s *PostgresService) Leave(ctx context.Context, farmID, userID int64) error {
	farm, err := s.GetFarm(ctx, farmID)
	if err != nil {
		return err
	}

	var membershipID int64
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM farm_members WHERE farm_id = $1 AND user_id = $2`,
		farmID, userID).Scan(&membershipID)
	if err == sql.ErrNoRows {
		return apperr.NotFound("membership", "user %d is not a member of farm %d", userID, farmID)
	}
	if err != nil {
		return fmt.Errorf("failed to get membership: %w", err)
	}

	if farm.OwnerID == userID {
		return apperr.Forbidden("the farm owner cannot leave; delete the farm instead")
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM farm_members WHERE id = $1`, membershipID); err != nil {
		return fmt.Errorf("failed to leave farm: %w", err)
	}

	s.metrics.MembershipChangesTotal.WithLabelValues("left").Inc()
	return nil
}

func (s *PostgresService) checkUserExists(ctx context.Context, userID int64) error {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1`, userID).Scan(&id)
	if err == sql.ErrNoRows {
		return apperr.NotFound("user", "user %d not found", userID)
	}
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	return nil
}

func (s *PostgresService) roleName(ctx context.Context, roleID int64) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM roles WHERE id = $1`, roleID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", apperr.NotFound("role", "role %d not found", roleID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get role: %w", err)
	}
	return name, nil
}
