package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kendall-kelly/tailor-shop-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	codeScopeCustomer = "customer"
	codeScopeKarigar  = "karigar"

	// maxCodeAttempts bounds the skip-ahead past codes that are already taken
	maxCodeAttempts = 50
)

// nameInitial returns the upper-cased first character of name
func nameInitial(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return ""
	}
	return strings.ToUpper(string(r))
}

// formatCode renders "<Initial>-<NNN>"
func formatCode(initial string, n int) string {
	return fmt.Sprintf("%s-%03d", initial, n)
}

// codeInitial returns the prefix of an existing generated code
func codeInitial(code string) string {
	i := strings.LastIndex(code, "-")
	if i < 0 {
		return code
	}
	return code[:i]
}

// nextCode mints the next generated code for name within scope. It bumps the
// owner's durable (scope, initial) counter and skips any value whose code is
// already held by a row in table/column, so two records never share a code.
// Must run inside the caller's transaction.
func nextCode(tx *gorm.DB, ownerID, scope, name, table, column string) (string, error) {
	initial := nameInitial(name)
	if initial == "" {
		return "", missingField("Name is required")
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		n, err := bumpSequence(tx, ownerID, scope, initial)
		if err != nil {
			return "", err
		}
		code := formatCode(initial, n)

		var taken int64
		if err := tx.Table(table).
			Where("owner_id = ? AND "+column+" = ?", ownerID, code).
			Count(&taken).Error; err != nil {
			return "", fmt.Errorf("failed to check code %s: %w", code, err)
		}
		if taken == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("no free %s code for initial %q after %d attempts", scope, initial, maxCodeAttempts)
}

// bumpSequence increments and returns the counter for (owner, scope, initial).
// The first call for a key yields 1.
func bumpSequence(tx *gorm.DB, ownerID, scope, initial string) (int, error) {
	seq := models.CodeSequence{OwnerID: ownerID, Scope: scope, Initial: initial, Value: 1}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "scope"}, {Name: "initial"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"value": gorm.Expr("code_sequences.value + 1")}),
	}).Create(&seq).Error
	if err != nil {
		return 0, fmt.Errorf("failed to bump %s sequence: %w", scope, err)
	}

	if err := tx.Where("owner_id = ? AND scope = ? AND initial = ?", ownerID, scope, initial).
		First(&seq).Error; err != nil {
		return 0, fmt.Errorf("failed to read %s sequence: %w", scope, err)
	}
	return seq.Value, nil
}
