package farms

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/farmhand-io/farmhand/pkg/apperr"
	"github.com/farmhand-io/farmhand/pkg/async"
	"github.com/farmhand-io/farmhand/pkg/auth"
	"github.com/farmhand-io/farmhand/pkg/mail"
)

const mailDispatchTimeout = 30 * time.Second

// CreateInvitation issues an invitation for email to join a farm
// under roleID. The invitation row is the source of truth; the signed
// token embeds the same facts for cheap rejection of garbage at the
// accept endpoint. Email delivery is asynchronous and best effort.
func (s *PostgresService) CreateInvitation(ctx context.Context, farmID int64, email string, roleID, invitedBy int64) (*Invitation, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperr.Forbidden("invitation email must not be empty")
	}

	farm, err := s.GetFarm(ctx, farmID)
	if err != nil {
		return nil, err
	}
	role, err := s.roleName(ctx, roleID)
	if err != nil {
		return nil, err
	}

	var existingMember int64
	err = s.db.QueryRowContext(ctx, `
		SELECT fm.id
		FROM farm_members fm
		JOIN users u ON u.id = fm.user_id
		WHERE fm.farm_id = $1 AND LOWER(u.email) = LOWER($2)
	`, farmID, email).Scan(&existingMember)
	if err == nil {
		return nil, apperr.Forbidden("already a member: %s", email)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check existing membership: %w", err)
	}

	token, expiresAt, err := s.tokens.Issue(email, farmID, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue invitation token: %w", err)
	}

	invitation := &Invitation{
		FarmID:    farmID,
		Email:     email,
		RoleID:    roleID,
		Token:     token,
		InvitedBy: invitedBy,
		ExpiresAt: expiresAt,
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO invitations (farm_id, email, role_id, token, invited_by, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, farmID, email, roleID, token, invitedBy, expiresAt).Scan(&invitation.ID, &invitation.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	s.metrics.InvitationsCreatedTotal.Inc()
	s.dispatchInvitationMail(invitation, farm.Name, role)

	return invitation, nil
}

// dispatchInvitationMail sends the invitation email without blocking
// the request. A failed send is logged and counted, never surfaced.
func (s *PostgresService) dispatchInvitationMail(invitation *Invitation, farmName, roleName string) {
	message := mail.InvitationEmail{
		To:        invitation.Email,
		FarmName:  farmName,
		RoleName:  roleName,
		JoinURL:   s.joinURL + "/invitations/accept?token=" + url.QueryEscape(invitation.Token),
		ExpiresAt: invitation.ExpiresAt,
	}

	async.SafeGo(context.Background(), mailDispatchTimeout, "invitation-mail", func(ctx context.Context) error {
		if err := s.mailer.SendInvitation(ctx, message); err != nil {
			s.metrics.InvitationMailTotal.WithLabelValues("failed").Inc()
			s.logger.WithError(err).WithField("invitation_id", invitation.ID).
				Warn("Failed to send invitation email")
			return nil
		}
		s.metrics.InvitationMailTotal.WithLabelValues("sent").Inc()
		return nil
	})
}

// VerifyInvitation probes what accepting the token would do, without
// mutating anything. Expiry is decided against the stored row.
func (s *PostgresService) VerifyInvitation(ctx context.Context, token string) (*VerifyResult, error) {
	result := &VerifyResult{}
	err := s.db.QueryRowContext(ctx, `
		SELECT i.farm_id, i.email, i.expires_at, f.name, r.name
		FROM invitations i
		JOIN farms f ON f.id = i.farm_id
		JOIN roles r ON r.id = i.role_id
		WHERE i.token = $1
	`, token).Scan(&result.FarmID, &result.Email, &result.ExpiresAt, &result.FarmName, &result.RoleName)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("invitation", "invitation not found or already processed")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	if time.Now().After(result.ExpiresAt) {
		return nil, apperr.Forbidden("invitation expired")
	}

	var userID int64
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM users WHERE LOWER(email) = LOWER($1)`, result.Email).Scan(&userID)
	if err == sql.ErrNoRows {
		result.Status = VerifyRegistrationRequired
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var membershipID int64
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM farm_members WHERE farm_id = $1 AND user_id = $2`,
		result.FarmID, userID).Scan(&membershipID)
	if err == nil {
		result.Status = VerifyAlreadyProcessed
		return result, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	result.Status = VerifyReadyToAccept
	return result, nil
}

// AcceptInvitation consumes an invitation token for the authenticated
// user. The row is locked for the duration of the transaction so
// concurrent accepts of the same token serialize; the membership
// unique constraint absorbs whichever one lands second.
func (s *PostgresService) AcceptInvitation(ctx context.Context, token string, identity auth.Identity) (*AcceptResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		invitationID int64
		farmID       int64
		invEmail     string
		roleID       int64
		expiresAt    time.Time
	)
	err = tx.QueryRowContext(ctx, `
		SELECT id, farm_id, email, role_id, expires_at
		FROM invitations
		WHERE token = $1
		FOR UPDATE
	`, token).Scan(&invitationID, &farmID, &invEmail, &roleID, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("invitation", "invitation not found or already processed")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	if time.Now().After(expiresAt) {
		return nil, apperr.Forbidden("invitation expired")
	}
	if !strings.EqualFold(identity.Email, invEmail) {
		return nil, apperr.Forbidden("invitation was issued to a different email address")
	}

	var roleName string
	err = tx.QueryRowContext(ctx, `SELECT name FROM roles WHERE id = $1`, roleID).Scan(&roleName)
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO farm_members (farm_id, user_id, role_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (farm_id, user_id) DO NOTHING
	`, farmID, identity.UserID, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM invitations WHERE id = $1`, invitationID); err != nil {
		return nil, fmt.Errorf("failed to delete invitation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit invitation acceptance: %w", err)
	}

	outcome := &AcceptResult{Status: AcceptJoined, FarmID: farmID, RoleName: roleName}
	if rowsAffected == 0 {
		outcome.Status = AcceptAlreadyMember
	} else {
		s.metrics.MembershipChangesTotal.WithLabelValues("added").Inc()
	}
	s.metrics.InvitationsAcceptedTotal.WithLabelValues(string(outcome.Status)).Inc()

	s.logger.WithFields(map[string]interface{}{
		"farm_id": farmID,
		"user_id": identity.UserID,
		"outcome": string(outcome.Status),
	}).Info("Invitation accepted")

	return outcome, nil
}

// GetPendingInvitationsByEmail lists non-expired invitations addressed
// to the given email.
func (s *PostgresService) GetPendingInvitationsByEmail(ctx context.Context, email string) ([]*PendingInvitation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.farm_id, f.name, r.name, i.expires_at
		FROM invitations i
		JOIN farms f ON f.id = i.farm_id
		JOIN roles r ON r.id = i.role_id
		WHERE LOWER(i.email) = LOWER($1) AND i.expires_at > NOW()
		ORDER BY i.created_at DESC
	`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending invitations: %w", err)
	}
	defer rows.Close()

	var invitations []*PendingInvitation
	for rows.Next() {
		inv := &PendingInvitation{}
		if err := rows.Scan(&inv.ID, &inv.FarmID, &inv.FarmName, &inv.RoleName, &inv.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}

	return invitations, rows.Err()
}

// ListInvitations lists all outstanding invitations for a farm
func (s *PostgresService) ListInvitations(ctx context.Context, farmID int64) ([]*Invitation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, farm_id, email, role_id, invited_by, created_at, expires_at
		FROM invitations
		WHERE farm_id = $1
		ORDER BY created_at DESC
	`, farmID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []*Invitation
	for rows.Next() {
		inv := &Invitation{}
		if err := rows.Scan(
			&inv.ID, &inv.FarmID, &inv.Email, &inv.RoleID,
			&inv.InvitedBy, &inv.CreatedAt, &inv.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}

	return invitations, rows.Err()
}

// RevokeInvitation withdraws an outstanding invitation
func (s *PostgresService) RevokeInvitation(ctx context.Context, farmID, invitationID int64) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM invitations WHERE id = $1 AND farm_id = $2`, invitationID, farmID)
	if err != nil {
		return fmt.Errorf("failed to revoke invitation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperr.NotFound("invitation", "invitation not found or already processed")
	}

	return nil
}

// CleanupExpiredInvitations deletes invitations past their expiry and
// returns how many were removed. Expired rows are already inert, this
// only reclaims space.
func (s *PostgresService) CleanupExpiredInvitations(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM invitations WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired invitations: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return removed, nil
}
