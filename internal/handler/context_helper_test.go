package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestInstitutionIDPrecedence(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		header string
		query  string
		want   string
	}{
		{name: "header wins", header: "inst-header", query: "inst-query", want: "inst-header"},
		{name: "query beats fallback", query: "inst-query", want: "inst-query"},
		{name: "fallback", want: "inst-default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			target := "/constraints"
			if tc.query != "" {
				target += "?institutionId=" + tc.query
			}
			req, _ := http.NewRequest(http.MethodGet, target, nil)
			if tc.header != "" {
				req.Header.Set("X-Institution-ID", tc.header)
			}
			c.Request = req

			assert.Equal(t, tc.want, institutionID(c, "inst-default"))
		})
	}
}
