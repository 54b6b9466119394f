package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gameclient/internal/client/client"
	"github.com/dmitrijs2005/gameclient/internal/client/models"
	"github.com/dmitrijs2005/gameclient/internal/common"
)

const referralPrefix = "REF"

// profileFromPayload overlays the server user u onto base. Fields the server
// sends replace base values and lose their synthesized mark. With markMissing
// set, base values kept for absent fields are marked as synthesized. Fields
// missing on both sides get a placeholder and are always marked.
func profileFromPayload(base *models.UserProfile, u *client.UserPayload, now time.Time, markMissing bool) (*models.UserProfile, error) {
	if u == nil {
		return nil, ErrMissingUserID
	}

	p := base.Clone()
	if p == nil {
		p = &models.UserProfile{}
	}

	id := string(u.ID)
	switch {
	case id == "" && p.ID == "":
		return nil, ErrMissingUserID
	case id != "" && p.ID != "" && id != p.ID:
		return nil, fmt.Errorf("%w: %s", ErrUserMismatch, id)
	case id != "":
		p.ID = id
	}

	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		name = u.Username
	}
	overlay(p, &p.Name, name, models.FieldName, markMissing)
	overlay(p, &p.Phone, firstNonEmpty(u.Mobile, u.Phone), models.FieldPhone, markMissing)
	overlay(p, &p.ReferralCode, u.ReferralCode, models.FieldReferralCode, markMissing)

	if u.Email != "" {
		p.Email = u.Email
	}

	if u.KYCStatus != "" {
		p.KYCStatus = models.ParseKYCStatus(u.KYCStatus)
		p.ClearSynthesized(models.FieldKYCStatus)
	} else if p.KYCStatus == "" {
		p.KYCStatus = models.KYCPending
		p.MarkSynthesized(models.FieldKYCStatus)
	}

	if u.WalletBalance != nil {
		p.WalletBalance = float64(*u.WalletBalance)
	}
	if u.IsVerified != nil {
		p.IsVerified = *u.IsVerified
	}

	if joined, ok := parseTime(firstNonEmpty(u.CreatedAt, u.DateJoined)); ok {
		p.JoinedAt = joined
		p.ClearSynthesized(models.FieldJoinedAt)
	} else if p.JoinedAt.IsZero() {
		p.JoinedAt = now.UTC()
		p.MarkSynthesized(models.FieldJoinedAt)
	}

	if p.ReferralCode == "" {
		p.ReferralCode = newReferralPlaceholder(now)
		p.MarkSynthesized(models.FieldReferralCode)
	}

	return p, nil
}

func overlay(p *models.UserProfile, dst *string, server, field string, markMissing bool) {
	if server != "" {
		*dst = server
		p.ClearSynthesized(field)
		return
	}
	if markMissing && *dst != "" {
		p.MarkSynthesized(field)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func newReferralPlaceholder(now time.Time) string {
	suffix, err := common.RandomBase36(6)
	if err != nil {
		suffix = fmt.Sprintf("%06d", now.UnixNano()%1_000_000)
	}
	return referralPrefix + strings.ToUpper(suffix)
}

func lastDigits(phone string, n int) string {
	if len(phone) <= n {
		return phone
	}
	return phone[len(phone)-n:]
}
