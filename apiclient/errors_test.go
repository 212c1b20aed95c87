package apiclient_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
)

func Test_APIError_Error_IncludesStatusMessageAndFieldErrors(t *testing.T) {
	apiErr := apiclient.NewAPIError(apiclient.KindValidation, 400, "invalid input",
		apiclient.FieldError{Msg: "dueDate is required"},
		apiclient.FieldError{Msg: "bookId is required"},
	)

	assert.Equal(t, "validation (400): invalid input; dueDate is required; bookId is required", apiErr.Error())
}

func Test_APIError_MatchesKindSentinel(t *testing.T) {
	testCases := []struct {
		kind apiclient.Kind
		want error
	}{
		{kind: apiclient.KindNetwork, want: apiclient.ErrNetwork},
		{kind: apiclient.KindValidation, want: apiclient.ErrValidation},
		{kind: apiclient.KindAuthorization, want: apiclient.ErrAuthorization},
		{kind: apiclient.KindNotFound, want: apiclient.ErrNotFound},
		{kind: apiclient.KindServer, want: apiclient.ErrServer},
	}

	for _, tc := range testCases {
		t.Run(string(tc.kind), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", apiclient.NewAPIError(tc.kind, 0, "x"))

			assert.ErrorIs(t, err, tc.want)
			assert.False(t, errors.Is(err, apiclient.ErrSessionExpired))

			apiErr, ok := apiclient.AsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, tc.kind, apiErr.Kind)
		})
	}
}

func Test_AsAPIError_ReturnsFalseForOtherErrors(t *testing.T) {
	_, ok := apiclient.AsAPIError(apiclient.ErrSessionExpired)

	assert.False(t, ok)
}
