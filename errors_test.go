package apidoc_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bjaus/apidoc"
)

func TestErrorStatus(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  error
		want int
	}{
		"http error":   {err: apidoc.Error(http.StatusNotFound, "missing"), want: http.StatusNotFound},
		"formatted":    {err: apidoc.Errorf(http.StatusConflict, "id %d taken", 7), want: http.StatusConflict},
		"wrapped":      {err: fmt.Errorf("lookup: %w", apidoc.Error(http.StatusGone, "gone")), want: http.StatusGone},
		"problem":      {err: &apidoc.ProblemDetail{Status: http.StatusTooManyRequests}, want: http.StatusTooManyRequests},
		"plain error":  {err: errors.New("boom"), want: http.StatusInternalServerError},
		"bind to path": {err: fmt.Errorf("%w: id", apidoc.ErrBindPath), want: http.StatusInternalServerError},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, apidoc.ErrorStatus(tc.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "id 7 taken", apidoc.Errorf(http.StatusConflict, "id %d taken", 7).Error())
	assert.Equal(t, "detail", (&apidoc.ProblemDetail{Title: "title", Detail: "detail"}).Error())
	assert.Equal(t, "title", (&apidoc.ProblemDetail{Title: "title"}).Error())
}
