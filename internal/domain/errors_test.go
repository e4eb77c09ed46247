package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsNotFound(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{ErrCustomerNotFound, true},
		{ErrItemNotFound, true},
		{ErrOrderNotFound, true},
		{fmt.Errorf("select item: %w", ErrItemNotFound), true},
		{ErrAlreadyExists, false},
		{errors.New("boom"), false},
		{nil, false},
	}

	for _, tc := range cases {
		if got := IsNotFound(tc.err); got != tc.want {
			t.Errorf("IsNotFound(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
