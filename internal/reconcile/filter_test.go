package reconcile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/APImetrics/apimetrics-deploy/internal/apimetrics"
)

func TestFilter_ShouldProcess(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		exclude []string
		wf      string
		want    bool
	}{
		{"no filter", "", nil, "Anything", true},
		{"search match", "Login", nil, "User Login flow", true},
		{"anchored miss", "^Login", nil, "User Login flow", false},
		{"regex miss", "Checkout", nil, "User Login flow", false},
		{"case sensitive", "login", nil, "User Login flow", false},
		{"case insensitive flag", "(?i)login", nil, "User Login flow", true},
		{"excluded by glob", "", []string{"*staging*"}, "Login staging", false},
		{"glob does not match", "", []string{"*staging*"}, "Login prod", true},
		{"name matches but excluded", "Login", []string{"Login ?ev"}, "Login dev", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFilter(tt.pattern, tt.exclude, false, nil)
			require.NoError(t, err)

			got, err := f.ShouldProcess(workflow("wf", tt.wf))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilter_Interactive(t *testing.T) {
	var asked int
	confirm := ConfirmFunc(func(wf apimetrics.Workflow) (bool, error) {
		asked++
		return wf.Meta.Name == "yes", nil
	})

	f, err := NewFilter("^(yes|no)$", nil, true, confirm)
	require.NoError(t, err)

	ok, err := f.ShouldProcess(workflow("1", "yes"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.ShouldProcess(workflow("2", "no"))
	require.NoError(t, err)
	assert.False(t, ok)

	// Filtered out before the prompt.
	ok, err = f.ShouldProcess(workflow("3", "other"))
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 2, asked)
}

func TestFilter_ConfirmError(t *testing.T) {
	boom := errors.New("stdin closed")
	f, err := NewFilter("", nil, true, ConfirmFunc(func(apimetrics.Workflow) (bool, error) {
		return false, boom
	}))
	require.NoError(t, err)

	_, err = f.ShouldProcess(workflow("1", "x"))
	require.ErrorIs(t, err, boom)
}

func TestNewFilter_Errors(t *testing.T) {
	_, err := NewFilter("[", nil, false, nil)
	require.Error(t, err)

	_, err = NewFilter("", nil, true, nil)
	require.ErrorIs(t, err, ErrNoConfirmer)
}
