package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gameclient/internal/client/client"
	"github.com/dmitrijs2005/gameclient/internal/client/models"
	"github.com/dmitrijs2005/gameclient/internal/client/validate"
	"github.com/dmitrijs2005/gameclient/internal/common"
	"github.com/dmitrijs2005/gameclient/internal/logging"
)

// AccountService calls the account endpoints for the signed-in user and
// keeps the auth state in sync with the server's copy of the profile.
type AccountService interface {
	FetchProfile(ctx context.Context) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) models.Result
	ChangePassword(ctx context.Context, c models.PasswordChange) error
	KYCStatus(ctx context.Context) (*KYCInfo, error)
	SubmitKYC(ctx context.Context, sub models.KYCSubmission) (*KYCReceipt, error)
	Referrals(ctx context.Context) (*ReferralSummary, error)
	GenerateReferralCode(ctx context.Context) (string, error)
}

type KYCInfo struct {
	Status          models.KYCStatus
	RejectionReason string
}

// KYCReceipt acknowledges a submission. ID is empty when the server sent none.
type KYCReceipt struct {
	ID     string
	Status models.KYCStatus
}

type ReferralSummary struct {
	Code      string
	Total     int
	Earnings  float64
	Referrals json.RawMessage
}

type accountService struct {
	client client.Client
	auth   AuthService
	log    logging.Logger
}

func NewAccountService(c client.Client, auth AuthService, log logging.Logger) AccountService {
	return &accountService{client: c, auth: auth, log: log.With("component", "account")}
}

// FetchProfile loads the server profile and merges it into the auth state.
func (s *accountService) FetchProfile(ctx context.Context) (*models.UserProfile, error) {
	if err := s.auth.RequireAuth(); err != nil {
		return nil, err
	}

	resp, err := s.client.Get(ctx, common.ProfilePath)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp, MsgProfileFetchFailed); err != nil {
		return nil, err
	}

	var u client.UserPayload
	if err := resp.Decode(&u); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return s.auth.RefreshUser(ctx, &u)
}

// UpdateProfile sends the edit to the server, then applies it locally.
func (s *accountService) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) models.Result {
	cur := s.auth.User()
	if !cur.Authenticated() {
		return models.Failed(MsgNotAuthenticated)
	}
	if v := validateUpdate(upd); !v.Valid {
		return models.Failed(v.Error)
	}
	if upd.Empty() {
		return models.Succeeded(cur)
	}

	next := cur.Apply(upd)
	first, last := splitName(next.Name)
	req := client.ProfileUpdateRequest{FirstName: first, LastName: last, Email: next.Email, Phone: next.Phone}

	resp, err := s.client.Put(ctx, common.ProfilePath, req)
	if err != nil {
		s.log.Warn(ctx, "profile update request failed", "error", err)
		return models.Failed(MsgNetwork)
	}
	if !resp.OK() {
		s.log.Info(ctx, "profile update rejected", "status", resp.StatusCode)
		return models.Failed(orDefault(resp.ErrorMessage(true), MsgProfileUpdateFailed))
	}

	return s.auth.UpdateProfile(ctx, upd)
}

func (s *accountService) ChangePassword(ctx context.Context, c models.PasswordChange) error {
	if v := validate.NewPassword(c); !v.Valid {
		return fmt.Errorf("%w: %s", ErrValidation, v.Error)
	}
	if err := s.auth.RequireAuth(); err != nil {
		return err
	}

	resp, err := s.client.Post(ctx, common.ChangePasswordPath, client.ChangePasswordRequest{
		OldPassword: c.OldPassword,
		NewPassword: c.NewPassword,
	})
	if err != nil {
		return err
	}
	return checkStatus(resp, MsgPasswordFailed)
}

func (s *accountService) KYCStatus(ctx context.Context) (*KYCInfo, error) {
	if err := s.auth.RequireAuth(); err != nil {
		return nil, err
	}

	resp, err := s.client.Get(ctx, common.KYCStatusPath)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp, "Failed to get KYC status"); err != nil {
		return nil, err
	}

	var p client.KYCStatusPayload
	if err := resp.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode kyc status: %w", err)
	}
	return &KYCInfo{Status: models.ParseKYCStatus(p.Status), RejectionReason: p.RejectionReason}, nil
}

// SubmitKYC sends the identity documents for review. A status reported by the
// server is merged into the profile; otherwise the receipt says PENDING.
func (s *accountService) SubmitKYC(ctx context.Context, sub models.KYCSubmission) (*KYCReceipt, error) {
	if v := validate.KYC(sub); !v.Valid {
		return nil, fmt.Errorf("%w: %s", ErrValidation, v.Error)
	}
	cur := s.auth.User()
	if !cur.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	images := sub.DocumentImages
	if images == nil {
		images = []string{}
	}
	resp, err := s.client.Post(ctx, common.KYCSubmitPath, client.KYCSubmitRequest{
		DocumentType:   strings.TrimSpace(sub.DocumentType),
		DocumentNumber: strings.TrimSpace(sub.DocumentNumber),
		DocumentImages: images,
		PersonalInfo: client.KYCPersonalInfo{
			FullName:    strings.TrimSpace(sub.FullName),
			DateOfBirth: strings.TrimSpace(sub.DateOfBirth),
			Address:     strings.TrimSpace(sub.Address),
		},
	})
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp, MsgKYCSubmitFailed); err != nil {
		return nil, err
	}

	var p client.KYCSubmitPayload
	if err := resp.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode kyc submission: %w", err)
	}

	receipt := &KYCReceipt{ID: string(p.ID), Status: models.KYCPending}
	if p.Status == "" {
		return receipt, nil
	}
	receipt.Status = models.ParseKYCStatus(p.Status)

	if _, err := s.auth.RefreshUser(ctx, &client.UserPayload{
		ID:        client.FlexString(cur.ID),
		KYCStatus: p.Status,
	}); err != nil && !errors.Is(err, ErrNotAuthenticated) {
		s.log.Warn(ctx, "storing kyc status failed", "error", err)
	}
	return receipt, nil
}

func (s *accountService) Referrals(ctx context.Context) (*ReferralSummary, error) {
	if err := s.auth.RequireAuth(); err != nil {
		return nil, err
	}

	resp, err := s.client.Get(ctx, common.ReferralsPath)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp, "Failed to get referrals"); err != nil {
		return nil, err
	}

	var p client.ReferralsPayload
	if err := resp.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode referrals: %w", err)
	}
	return &ReferralSummary{
		Code:      p.ReferralCode,
		Total:     p.TotalReferrals,
		Earnings:  float64(p.TotalEarnings),
		Referrals: p.Referrals,
	}, nil
}

// GenerateReferralCode asks the server for a referral code and stores it on
// the profile, replacing any client placeholder.
func (s *accountService) GenerateReferralCode(ctx context.Context) (string, error) {
	cur := s.auth.User()
	if !cur.Authenticated() {
		return "", ErrNotAuthenticated
	}

	resp, err := s.client.Post(ctx, common.ReferralCodePath, struct{}{})
	if err != nil {
		return "", err
	}
	if err := checkStatus(resp, "Failed to generate referral code"); err != nil {
		return "", err
	}

	var p client.ReferralCodePayload
	if err := resp.Decode(&p); err != nil {
		return "", fmt.Errorf("decode referral code: %w", err)
	}
	if p.ReferralCode == "" {
		return "", fmt.Errorf("%w: empty referral code", ErrRequestFailed)
	}

	if _, err := s.auth.RefreshUser(ctx, &client.UserPayload{
		ID:           client.FlexString(cur.ID),
		ReferralCode: p.ReferralCode,
	}); err != nil && !errors.Is(err, ErrNotAuthenticated) {
		s.log.Warn(ctx, "storing referral code failed", "error", err)
	}
	return p.ReferralCode, nil
}

// checkStatus maps a non-2xx response to an error carrying the server
// message, or def when there is none.
func checkStatus(resp *client.Response, def string) error {
	if resp.OK() {
		return nil
	}
	msg := orDefault(resp.ErrorMessage(true), def)
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", ErrNotAuthenticated, msg)
	}
	return fmt.Errorf("%w: %s (status %d)", ErrRequestFailed, msg, resp.StatusCode)
}

func splitName(name string) (first, last string) {
	first, last, _ = strings.Cut(strings.TrimSpace(name), " ")
	return first, strings.TrimSpace(last)
}
