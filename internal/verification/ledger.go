package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"

	"gorm.io/gorm"

	"github.com/hrlmwn/feedgram/internal/models"
)

// Codes are generated from a fixed lowercase alphanumeric alphabet, six
// characters long, matching what the verification emails have always carried.
const (
	codeAlphabet = "1234567890qazwsxedcrfvtgbyhnujkilop"
	codeLength   = 6
)

// ErrNotPermitted is the uniform redemption failure. Wrong code, already
// completed and missing entry all collapse into it so a caller learns nothing
// about which precondition failed.
var ErrNotPermitted = errors.New("action not permitted")

// Ledger persists one-time verification codes linked to an account.
type Ledger struct {
	DB *gorm.DB
}

// Issue generates a fresh code for the owner and persists it incomplete.
func (l *Ledger) Issue(ctx context.Context, ownerID string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	entry := models.VerificationCode{
		Code:    code,
		OwnerID: ownerID,
	}
	if err := l.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		return "", err
	}
	return code, nil
}

// Redeem flips the owner's code to complete in a single guarded update.
// It succeeds at most once per code: the update matches only an incomplete
// entry with the exact submitted code, so a replay affects zero rows.
func (l *Ledger) Redeem(ctx context.Context, ownerID, submittedCode string) error {
	result := l.DB.WithContext(ctx).
		Model(&models.VerificationCode{}).
		Where("owner_id = ? AND code = ? AND is_complete = ?", ownerID, submittedCode, false).
		Update("is_complete", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotPermitted
	}
	return nil
}

func generateCode() (string, error) {
	out := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = codeAlphabet[n.Int64()]
	}
	return string(out), nil
}
