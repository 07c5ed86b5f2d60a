package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vostuff/vostuff/internal/domain"
)

// AuthService runs the login decision procedure and organization selection.
// Each call is a single request/response decision over the store's current
// state; nothing is retried and no session state is kept server-side.
type AuthService struct {
	userRepo  domain.UserRepository
	orgRepo   domain.OrganizationRepository
	passwords *PasswordService
	tokens    *TokenService
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	orgRepo domain.OrganizationRepository,
	passwords *PasswordService,
	tokens *TokenService,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		orgRepo:   orgRepo,
		passwords: passwords,
		tokens:    tokens,
	}
}

// SessionResult is a completed login: a session token plus the profile the
// client renders.
type SessionResult struct {
	Token        string
	ExpiresIn    int64
	UserID       string
	Name         string
	Identity     string
	Organization *domain.MembershipView
}

// OrgChoiceResult is returned when the user belongs to several organizations
// and did not pick one: the client re-submits via SelectOrganization using the
// follow-on token. Structurally distinct from SessionResult on purpose.
type OrgChoiceResult struct {
	Organizations []*domain.MembershipView
	FollowOnToken string
}

// LoginResult holds exactly one of the two login outcomes.
type LoginResult struct {
	Session   *SessionResult
	OrgChoice *OrgChoiceResult
}

// Login verifies credentials and resolves the organization scope.
//
// Unknown identity, a user without a password hash and a wrong password all
// return domain.ErrInvalidCredentials; the handler renders them as one
// indistinguishable response so login cannot be used to enumerate accounts.
func (s *AuthService) Login(ctx context.Context, identity, password, targetOrgID string) (*LoginResult, error) {
	user, err := s.userRepo.GetByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user.PasswordHash == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if !s.passwords.Verify(ctx, password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	memberships, err := s.orgRepo.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	if len(memberships) == 0 {
		return nil, domain.ErrNoOrganization
	}

	// Explicit organization choice submitted with the credentials.
	if targetOrgID != "" {
		var selected *domain.MembershipView
		for _, m := range memberships {
			if m.OrganizationID == targetOrgID {
				selected = m
				break
			}
		}
		if selected == nil {
			return nil, domain.ErrInvalidOrganization
		}
		return s.issueSession(user.ID, user.Name, user.Identity, selected)
	}

	// Single membership: auto-select it.
	if len(memberships) == 1 {
		return s.issueSession(user.ID, user.Name, user.Identity, memberships[0])
	}

	// Several memberships, no choice yet: hand back a follow-on token.
	followOn, err := s.tokens.IssueFollowOn(user.ID, user.Identity)
	if err != nil {
		return nil, fmt.Errorf("failed to issue follow-on token: %w", err)
	}
	return &LoginResult{
		OrgChoice: &OrgChoiceResult{
			Organizations: memberships,
			FollowOnToken: followOn,
		},
	}, nil
}

// SelectOrganization redeems a follow-on token for a full session token.
func (s *AuthService) SelectOrganization(ctx context.Context, followOnToken, orgID string) (*SessionResult, error) {
	claims, err := s.tokens.ValidateFollowOn(followOnToken)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// A valid follow-on token already proved a recent credential
			// check, so admitting the subject is gone reveals nothing an
			// attacker could not learn by logging in.
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	membership, err := s.orgRepo.FindMembership(ctx, user.ID, orgID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotMember
		}
		return nil, fmt.Errorf("failed to look up membership: %w", err)
	}

	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to load organization: %w", err)
	}

	result, err := s.issueSession(user.ID, user.Name, claims.Identity, &domain.MembershipView{
		OrganizationID: org.ID,
		Name:           org.Name,
		Description:    org.Description,
		Roles:          membership.Roles,
	})
	if err != nil {
		return nil, err
	}
	return result.Session, nil
}

func (s *AuthService) issueSession(userID, name, identity string, m *domain.MembershipView) (*LoginResult, error) {
	token, err := s.tokens.IssueSession(userID, identity, m.OrganizationID, m.Roles)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}
	return &LoginResult{
		Session: &SessionResult{
			Token:        token,
			ExpiresIn:    int64(s.tokens.SessionTTL().Seconds()),
			UserID:       userID,
			Name:         name,
			Identity:     identity,
			Organization: m,
		},
	}, nil
}
