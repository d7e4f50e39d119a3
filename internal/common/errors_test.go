package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinels_AreDistinct(t *testing.T) {
	all := []error{
		ErrorNotFound, ErrorInternal, ErrInvalidInput, ErrDuplicateEmail,
		ErrInvalidCredentials, ErrEmailNotConfirmed, ErrCorruptHash,
		ErrConfigurationMissing, ErrTimeout, ErrInvalidToken, ErrTokenExpired,
	}
	for i, a := range all {
		for j, b := range all {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v must not match %v", a, b)
		}
	}
}

func TestSentinels_MatchThroughWrapping(t *testing.T) {
	err := fmt.Errorf("lookup: %w", ErrorNotFound)
	assert.ErrorIs(t, err, ErrorNotFound)
	assert.NotErrorIs(t, err, ErrDuplicateEmail)
}
