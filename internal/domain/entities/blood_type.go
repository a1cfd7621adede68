package entities

import (
	"strings"

	apperrors "github.com/zatekoja/blooddonorconnect/backend/pkg/errors"
)

// BloodType is an ABO/Rh blood group, always stored in upper case.
type BloodType string

const (
	BloodTypeOPositive  BloodType = "O+"
	BloodTypeAPositive  BloodType = "A+"
	BloodTypeBPositive  BloodType = "B+"
	BloodTypeABPositive BloodType = "AB+"
	BloodTypeONegative  BloodType = "O-"
	BloodTypeANegative  BloodType = "A-"
	BloodTypeBNegative  BloodType = "B-"
	BloodTypeABNegative BloodType = "AB-"
)

var bloodTypes = []BloodType{
	BloodTypeOPositive,
	BloodTypeAPositive,
	BloodTypeBPositive,
	BloodTypeABPositive,
	BloodTypeONegative,
	BloodTypeANegative,
	BloodTypeBNegative,
	BloodTypeABNegative,
}

// BloodTypes returns the accepted blood types in display order.
func BloodTypes() []BloodType {
	out := make([]BloodType, len(bloodTypes))
	copy(out, bloodTypes)
	return out
}

// BloodTypeNames returns the accepted blood types as strings.
func BloodTypeNames() []string {
	out := make([]string, len(bloodTypes))
	for i, bt := range bloodTypes {
		out[i] = string(bt)
	}
	return out
}

// ParseBloodType normalizes s (trim, upper case) and checks it is a known
// blood type.
func ParseBloodType(s string) (BloodType, error) {
	candidate := BloodType(strings.ToUpper(strings.TrimSpace(s)))
	for _, bt := range bloodTypes {
		if bt == candidate {
			return bt, nil
		}
	}
	return "", apperrors.NewInvalidBloodTypeError(s, BloodTypeNames())
}

// NormalizeRegion lower-cases and trims a region name.
func NormalizeRegion(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
